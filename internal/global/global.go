package global

import (
	"ticketPlatform/config"
)

var (
	Layout  = "2006-01-02 15:04:05"
	Config  config.App
	Version string
)
