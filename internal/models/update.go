package models

import "ticketPlatform/pkg/zabbix"

const (
	ScopeSelected = 0
	ScopeProblem  = 1
)

const (
	SuppressTimeIndefinite = 0
	SuppressTimeDefinite   = 1
)

// Capability 调用方角色授予的操作权限
type Capability uint8

const (
	CapAcknowledge Capability = 1 << iota
	CapClose
	CapChangeSeverity
	CapAddComments
	CapSuppress
	CapChangeRank
)

var capabilityNames = map[Capability]string{
	CapAcknowledge:    "acknowledge",
	CapClose:          "close",
	CapChangeSeverity: "change_severity",
	CapAddComments:    "add_comments",
	CapSuppress:       "suppress",
	CapChangeRank:     "change_rank",
}

// AllCapabilities 按固定顺序列出, 用于策略初始化与权限检查
var AllCapabilities = []Capability{
	CapAcknowledge, CapClose, CapChangeSeverity, CapAddComments, CapSuppress, CapChangeRank,
}

func (c Capability) Name() string {
	return capabilityNames[c]
}

// Capabilities 权限集合
type Capabilities uint8

func NewCapabilities(caps ...Capability) Capabilities {
	var s Capabilities
	for _, c := range caps {
		s |= Capabilities(c)
	}
	return s
}

func (s Capabilities) Has(c Capability) bool {
	return s&Capabilities(c) != 0
}

// UpdateRequest 一次更新请求, Requested 为调用方希望执行的操作位
type UpdateRequest struct {
	ServerID  string
	EventIDs  []string
	Requested zabbix.Action
	Severity  int
	Message   string
	// SuppressTimeOption 为 Definite 时 SuppressUntil 为时间表达式
	SuppressTimeOption int
	SuppressUntil      string
	CauseEventID       string
	Scope              int
	UserName           string
}

// UpdateResult 成功时返回
type UpdateResult struct {
	Title    string        `json:"title"`
	EventIDs []string      `json:"eventIds"`
	Action   zabbix.Action `json:"action"`
	Messages []string      `json:"messages,omitempty"`
}
