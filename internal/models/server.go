package models

import "ticketPlatform/pkg/zabbix"

const (
	ConnectionUnknown = ""
	ConnectionOk      = "ok"
	ConnectionProblem = "problem"

	// LocalServerId 本地 API 端点的固定 ID
	LocalServerId = "local"
)

// RemoteServer 远端监控服务描述, ID 创建后不可变
type RemoteServer struct {
	ID               string `json:"id" gorm:"primaryKey;size:32"`
	Name             string `json:"name"`
	ApiUrl           string `json:"apiUrl"`
	ApiToken         string `json:"apiToken,omitempty"`
	HasToken         bool   `json:"hasToken" gorm:"-"`
	HostGroup        string `json:"hostGroup"`
	IncludeSubgroups *bool  `json:"includeSubgroups"`
	Enabled          *bool  `json:"enabled"`
	ApiVersion       string `json:"apiVersion"`
	ConnectionStatus string `json:"connectionStatus"`
	LastReached      int64  `json:"lastReached"`
	IsLocal          bool   `json:"isLocal" gorm:"-"`
	UpdateBy         string `json:"updateBy"`
	UpdateAt         int64  `json:"updateAt"`
	// CreateAt 纳秒时间戳, 决定注册顺序
	CreateAt int64 `json:"createAt"`
}

func (RemoteServer) TableName() string {
	return "w8t_ticket_servers"
}

func (s RemoteServer) GetEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

func (s RemoteServer) GetIncludeSubgroups() bool {
	return s.IncludeSubgroups != nil && *s.IncludeSubgroups
}

// WebUrl 本地端点没有独立的前端地址
func (s RemoteServer) WebUrl() string {
	if s.IsLocal {
		return ""
	}
	return zabbix.WebUrl(s.ApiUrl)
}

// Redacted 对外展示时隐藏 token
func (s RemoteServer) Redacted() RemoteServer {
	s.HasToken = s.ApiToken != ""
	s.ApiToken = ""
	return s
}

// ServerMeta 查询/探测后顺带回写的元数据, 空字段不更新
type ServerMeta struct {
	ApiVersion       string
	ConnectionStatus string
	LastReached      int64
}

func BoolPtr(b bool) *bool {
	return &b
}
