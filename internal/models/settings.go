package models

import "strings"

const (
	DefaultCacheTtl        = 60
	MinCacheTtl            = 5
	DefaultLocalServerName = "Local server"
)

// Settings 插件配置, 单行表
type Settings struct {
	ID              int    `json:"-" gorm:"primaryKey"`
	CacheTtl        int    `json:"cacheTtl"`
	LocalServerName string `json:"localServerName"`
	AppVersion      string `json:"appVersion" gorm:"-"`
}

func (Settings) TableName() string {
	return "w8t_ticket_settings"
}

// DefaultSettings 尚未保存过配置时使用
func DefaultSettings() Settings {
	return Settings{
		ID:              1,
		CacheTtl:        DefaultCacheTtl,
		LocalServerName: DefaultLocalServerName,
	}
}

// Normalize cache_ttl 不低于 5 秒, 本地名称为空时回落到默认值
func (s Settings) Normalize() Settings {
	s.ID = 1
	if s.CacheTtl <= 0 {
		s.CacheTtl = DefaultCacheTtl
	}
	if s.CacheTtl < MinCacheTtl {
		s.CacheTtl = MinCacheTtl
	}
	s.LocalServerName = strings.TrimSpace(s.LocalServerName)
	if s.LocalServerName == "" {
		s.LocalServerName = DefaultLocalServerName
	}
	return s
}
