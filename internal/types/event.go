package types

import (
	"ticketPlatform/internal/models"
	"ticketPlatform/pkg/zabbix"
)

type RequestEventDetails struct {
	ServerId  string `form:"serverId"`
	EventId   string `form:"eventId"`
	TriggerId string `form:"triggerId"`
}

type RequestActionList struct {
	ServerId string `form:"serverId"`
	EventId  string `form:"eventId"`
}

type RequestItemPopup struct {
	ServerId string `form:"serverId"`
	ItemId   string `form:"itemId"`
}

// EventHistoryAction 事件处理历史中的一条: 问题产生, 恢复, 人工更新或告警发送
type EventHistoryAction struct {
	ActionType    int    `json:"actionType"`
	Clock         int64  `json:"clock"`
	AlertID       string `json:"alertId,omitempty"`
	AlertType     *int   `json:"alertType,omitempty"`
	EventID       string `json:"eventId,omitempty"`
	UserID        string `json:"userId,omitempty"`
	MediatypeID   string `json:"mediatypeId,omitempty"`
	Status        *int   `json:"status,omitempty"`
	Action        *int   `json:"action,omitempty"`
	Message       string `json:"message,omitempty"`
	OldSeverity   *int   `json:"oldSeverity,omitempty"`
	NewSeverity   *int   `json:"newSeverity,omitempty"`
	SuppressUntil *int64 `json:"suppressUntil,omitempty"`
	Error         string `json:"error,omitempty"`
	Retries       *int   `json:"retries,omitempty"`
	SendTo        string `json:"sendTo,omitempty"`
	Subject       string `json:"subject,omitempty"`
	EscStep       *int   `json:"escStep,omitempty"`
}

type EventListRow struct {
	zabbix.Event
	RClock  int64                 `json:"r_clock"`
	Actions models.ActionsSummary `json:"actions"`
}

type ResponseEventDetails struct {
	Server     models.RemoteServer         `json:"server"`
	Trigger    zabbix.Trigger              `json:"trigger"`
	Event      zabbix.Event                `json:"event"`
	CauseEvent *zabbix.Event               `json:"causeEvent"`
	Opdata     string                      `json:"opdata"`
	Actions    []EventHistoryAction        `json:"actions"`
	Users      map[string]zabbix.User      `json:"users"`
	Mediatypes map[string]zabbix.MediaType `json:"mediatypes"`
	EventList  []EventListRow              `json:"eventList"`
}

type ResponseActionList struct {
	Actions    []EventHistoryAction        `json:"actions"`
	Users      map[string]zabbix.User      `json:"users"`
	Mediatypes map[string]zabbix.MediaType `json:"mediatypes"`
	FootNote   string                      `json:"footNote,omitempty"`
}

type ResponseItemPopup struct {
	Server models.RemoteServer    `json:"server"`
	Item   map[string]interface{} `json:"item"`
}
