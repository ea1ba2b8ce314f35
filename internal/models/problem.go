package models

import "ticketPlatform/pkg/zabbix"

// ProblemMode 与前端 show 参数取值一致
type ProblemMode int

const (
	ModeRecentUnresolved ProblemMode = 1
	ModeHistory          ProblemMode = 2
	ModeUnresolved       ProblemMode = 3
)

func (m ProblemMode) Valid() bool {
	return m == ModeRecentUnresolved || m == ModeHistory || m == ModeUnresolved
}

const (
	TagEvalAndOr = 0
	TagEvalOr    = 2
)

const (
	AckStatusAll   = 0
	AckStatusUnack = 1
	AckStatusAck   = 2
)

// CanonicalQuery 归一化后的查询, 时间边界已解析为绝对秒数
type CanonicalQuery struct {
	Mode           ProblemMode        `json:"mode"`
	TimeFrom       *int64             `json:"timeFrom"`
	TimeTill       *int64             `json:"timeTill"`
	Severities     []int              `json:"severities"`
	Name           string             `json:"name"`
	Host           string             `json:"host"`
	Acknowledged   *bool              `json:"acknowledged"`
	ShowSuppressed bool               `json:"showSuppressed"`
	Recent         *bool              `json:"recent"`
	Tags           []zabbix.TagFilter `json:"tags"`
	EvalType       int                `json:"evalType"`
	Limit          int                `json:"limit"`
	ShowTags       bool               `json:"showTags"`
}

type ProblemHost struct {
	HostID string `json:"hostId"`
	Name   string `json:"name"`
}

type ActionsSummary struct {
	Count      int  `json:"count"`
	HasPending bool `json:"hasPending"`
	HasFailed  bool `json:"hasFailed"`
}

// NormalizedProblem 聚合结果中的一条问题, 构造后不再修改
type NormalizedProblem struct {
	EventID         string         `json:"eventId"`
	ServerID        string         `json:"serverId"`
	Clock           int64          `json:"clock"`
	Severity        int            `json:"severity"`
	Name            string         `json:"name"`
	Acknowledged    bool           `json:"acknowledged"`
	RecoveryEventID string         `json:"recoveryEventId"`
	ObjectID        string         `json:"objectId"`
	Tags            []zabbix.Tag   `json:"tags"`
	Hosts           []ProblemHost  `json:"hosts"`
	ServerName      string         `json:"serverName"`
	ServerWebUrl    string         `json:"serverWebUrl"`
	Actions         ActionsSummary `json:"actions"`
}

// HostName 排序用, 取第一个主机名
func (p NormalizedProblem) HostName() string {
	if len(p.Hosts) == 0 {
		return ""
	}
	return p.Hosts[0].Name
}

// ServerError 单个远端服务的失败记录
type ServerError struct {
	Server string `json:"server"`
	Error  string `json:"error"`
}
