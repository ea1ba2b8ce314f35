package zabbix

import (
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// FlexString 远端接口的数字字段多以字符串返回, 个别版本返回数字, 两种都接受
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := sonic.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	*f = FlexString(strings.TrimSpace(string(b)))
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

func (f FlexString) Int() int {
	i, _ := strconv.Atoi(string(f))
	return i
}

func (f FlexString) Int64() int64 {
	i, _ := strconv.ParseInt(string(f), 10, 64)
	return i
}

type Tag struct {
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

// TagFilter problem.get / event.get 的 tags 参数
type TagFilter struct {
	Tag      string `json:"tag"`
	Operator int    `json:"operator"`
	Value    string `json:"value"`
}

type Host struct {
	HostID FlexString `json:"hostid"`
	Name   string     `json:"name"`
	Host   string     `json:"host"`
}

// DisplayName 可见名称为空时使用技术名称
func (h Host) DisplayName() string {
	if h.Name != "" {
		return h.Name
	}
	return h.Host
}

type HostGroup struct {
	GroupID FlexString `json:"groupid"`
	Name    string     `json:"name"`
}

type Acknowledge struct {
	AcknowledgeID FlexString `json:"acknowledgeid,omitempty"`
	UserID        FlexString `json:"userid,omitempty"`
	Clock         FlexString `json:"clock"`
	Action        FlexString `json:"action"`
	Message       string     `json:"message,omitempty"`
	OldSeverity   FlexString `json:"old_severity,omitempty"`
	NewSeverity   FlexString `json:"new_severity,omitempty"`
	SuppressUntil FlexString `json:"suppress_until,omitempty"`
	TaskID        FlexString `json:"taskid,omitempty"`
}

// HasSuppressUntil 远端未返回 suppress_until 字段时为 false
func (a Acknowledge) HasSuppressUntil() bool {
	return a.SuppressUntil != ""
}

type SuppressionData struct {
	MaintenanceID FlexString `json:"maintenanceid"`
	SuppressUntil FlexString `json:"suppress_until"`
}

// Event problem.get 与 event.get 共用的记录, 字段按请求的 output 填充
type Event struct {
	EventID         FlexString        `json:"eventid"`
	ObjectID        FlexString        `json:"objectid,omitempty"`
	Clock           FlexString        `json:"clock,omitempty"`
	Ns              FlexString        `json:"ns,omitempty"`
	Name            string            `json:"name,omitempty"`
	Severity        FlexString        `json:"severity,omitempty"`
	Acknowledged    FlexString        `json:"acknowledged,omitempty"`
	REventID        FlexString        `json:"r_eventid,omitempty"`
	CauseEventID    FlexString        `json:"cause_eventid,omitempty"`
	Value           FlexString        `json:"value,omitempty"`
	Suppressed      FlexString        `json:"suppressed,omitempty"`
	CorrelationID   FlexString        `json:"correlationid,omitempty"`
	UserID          FlexString        `json:"userid,omitempty"`
	Tags            []Tag             `json:"tags,omitempty"`
	Hosts           []Host            `json:"hosts,omitempty"`
	Acknowledges    []Acknowledge     `json:"acknowledges,omitempty"`
	SuppressionData []SuppressionData `json:"suppression_data,omitempty"`
}

type Alert struct {
	AlertID       FlexString `json:"alertid"`
	AlertType     FlexString `json:"alerttype"`
	Clock         FlexString `json:"clock,omitempty"`
	Error         string     `json:"error,omitempty"`
	EventID       FlexString `json:"eventid"`
	EscStep       FlexString `json:"esc_step,omitempty"`
	MediatypeID   FlexString `json:"mediatypeid"`
	Message       string     `json:"message,omitempty"`
	Retries       FlexString `json:"retries,omitempty"`
	SendTo        string     `json:"sendto,omitempty"`
	Status        FlexString `json:"status"`
	Subject       string     `json:"subject,omitempty"`
	UserID        FlexString `json:"userid"`
	PEventID      FlexString `json:"p_eventid,omitempty"`
	AcknowledgeID FlexString `json:"acknowledgeid,omitempty"`
}

// Pending 未发送或待发送
func (a Alert) Pending() bool {
	s := a.Status.Int()
	return s == AlertStatusNew || s == AlertStatusNotSent
}

func (a Alert) Failed() bool {
	return a.Status.Int() == AlertStatusFailed
}

type Trigger struct {
	TriggerID          FlexString `json:"triggerid"`
	Description        string     `json:"description,omitempty"`
	Expression         string     `json:"expression,omitempty"`
	RecoveryExpression string     `json:"recovery_expression,omitempty"`
	Priority           FlexString `json:"priority,omitempty"`
	Type               FlexString `json:"type,omitempty"`
	ManualClose        FlexString `json:"manual_close"`
	Status             FlexString `json:"status,omitempty"`
	Comments           string     `json:"comments,omitempty"`
	Opdata             string     `json:"opdata,omitempty"`
	Hosts              []Host     `json:"hosts,omitempty"`
}

type ValueMapping struct {
	Type     FlexString `json:"type,omitempty"`
	Value    string     `json:"value"`
	NewValue string     `json:"newvalue"`
}

type ValueMap struct {
	ValueMapID FlexString     `json:"valuemapid,omitempty"`
	Name       string         `json:"name,omitempty"`
	Mappings   []ValueMapping `json:"mappings,omitempty"`
}

// Item 仅用于操作数据展示
type Item struct {
	ItemID     FlexString `json:"itemid"`
	Name       string     `json:"name"`
	ValueType  FlexString `json:"value_type"`
	Units      string     `json:"units"`
	LastValue  *string    `json:"lastvalue"`
	LastClock  FlexString `json:"lastclock"`
	ValueMapID FlexString `json:"valuemapid"`
	ValueMap   *ValueMap  `json:"valuemap"`
}

type User struct {
	UserID   FlexString `json:"userid"`
	Username string     `json:"username"`
	Name     string     `json:"name"`
	Surname  string     `json:"surname"`
}

type MediaType struct {
	MediatypeID FlexString `json:"mediatypeid"`
	Name        string     `json:"name"`
	MaxAttempts FlexString `json:"maxattempts"`
}
