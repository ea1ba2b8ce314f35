package types

import "ticketPlatform/internal/models"

type RequestSettingsSave struct {
	CacheTtl        int    `json:"cacheTtl"`
	LocalServerName string `json:"localServerName"`
}

type ResponseSettings struct {
	CacheTtl        int                   `json:"cacheTtl"`
	LocalServerName string                `json:"localServerName"`
	Servers         []models.RemoteServer `json:"servers"`
	AppVersion      string                `json:"appVersion"`
}

type RequestServerQuery struct {
	ID string `json:"id" form:"id"`
}

type RequestServerSave struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	ApiUrl           string `json:"apiUrl"`
	ApiToken         string `json:"apiToken"`
	HostGroup        string `json:"hostGroup"`
	IncludeSubgroups bool   `json:"includeSubgroups"`
	Enabled          bool   `json:"enabled"`
	UpdateBy         string `json:"-"`
}

// ResponseConnectionCheck 连接检查结果, 成功与失败都以 200 返回, 由 Ok 区分
type ResponseConnectionCheck struct {
	ServerId   string   `json:"serverId"`
	Ok         bool     `json:"ok"`
	Title      string   `json:"title"`
	Messages   []string `json:"messages"`
	ApiVersion string   `json:"apiVersion,omitempty"`
}

type RequestOperationLogQuery struct {
	UserName string `form:"userName"`
	models.Page
}

type ResponseOperationLogList struct {
	List []models.OperationLog `json:"list"`
	models.Page
}
