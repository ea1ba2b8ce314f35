package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"ticketPlatform/internal/cache"
	"ticketPlatform/internal/ctx"
	"ticketPlatform/internal/global"
	"ticketPlatform/internal/models"
	"ticketPlatform/internal/types"
	"ticketPlatform/pkg/zabbix"

	"github.com/zeromicro/go-zero/core/logc"
)

// 处理历史中的记录类型, 同一时刻按类型倒序排列
const (
	HistoryProblem  = 0
	HistoryRecovery = 1
	HistoryUpdate   = 2
	HistoryAlert    = 3

	historyDisplayLimit = 20
	eventListLimit      = 20
)

var acknowledgeOutput = []string{"userid", "clock", "message", "action", "old_severity", "new_severity", "suppress_until"}

var alertOutput = []string{"alertid", "alerttype", "clock", "error", "eventid", "esc_step", "mediatypeid", "message",
	"retries", "sendto", "status", "subject", "userid", "p_eventid", "acknowledgeid"}

type eventService struct {
	ctx         *ctx.Context
	searchLimit int
}

type InterEventService interface {
	Details(reqCtx context.Context, req interface{}) (interface{}, interface{})
	ActionList(reqCtx context.Context, req interface{}) (interface{}, interface{})
}

func newInterEventService(ctx *ctx.Context) InterEventService {
	limit := global.Config.Zabbix.SearchLimit
	if limit <= 0 {
		limit = 1000
	}
	return &eventService{
		ctx:         ctx,
		searchLimit: limit,
	}
}

// Details 事件详情: 触发器, 事件本身, 根因事件, 操作数据, 处理历史以及同一触发器的最近事件
func (es eventService) Details(reqCtx context.Context, req interface{}) (interface{}, interface{}) {
	r := req.(*types.RequestEventDetails)
	title := "Cannot load event details"

	server, ok, err := findServer(es.ctx, r.ServerId, true)
	if err != nil {
		return nil, err
	}
	if !ok || r.EventId == "" || r.TriggerId == "" {
		return nil, validationError(title, "No remote server or event specified.")
	}

	var triggers []zabbix.Trigger
	err = callServer(reqCtx, es.ctx, server, "trigger.get", map[string]interface{}{
		"output": []string{"triggerid", "description", "expression", "recovery_expression", "priority", "type",
			"manual_close", "status", "comments", "opdata"},
		"selectHosts":       []string{"hostid", "name", "host"},
		"triggerids":        []string{r.TriggerId},
		"expandExpression":  true,
		"expandDescription": true,
	}, &triggers)
	if err != nil {
		return nil, remoteError(title, err)
	}
	if len(triggers) == 0 {
		return nil, notFoundError(title, "No permissions to referred object or it does not exist!")
	}
	trigger := triggers[0]

	var events []zabbix.Event
	err = callServer(reqCtx, es.ctx, server, "event.get", map[string]interface{}{
		"output": []string{"eventid", "objectid", "clock", "ns", "name", "severity", "acknowledged", "r_eventid",
			"cause_eventid", "value", "suppressed"},
		"eventids":           []string{r.EventId},
		"objectids":          []string{trigger.TriggerID.String()},
		"value":              zabbix.TriggerValueTrue,
		"selectAcknowledges": acknowledgeOutput,
		"selectTags":         []string{"tag", "value"},
	}, &events)
	if err != nil {
		return nil, remoteError(title, err)
	}
	if len(events) == 0 {
		return nil, notFoundError(title, "No permissions to referred object or it does not exist!")
	}
	event := events[0]

	rClock := int64(0)
	if event.REventID.Int64() > 0 {
		var recovery []zabbix.Event
		err := callServer(reqCtx, es.ctx, server, "event.get", map[string]interface{}{
			"output":   []string{"eventid", "clock", "correlationid", "userid"},
			"eventids": []string{event.REventID.String()},
		}, &recovery)
		if err != nil {
			logc.Infof(reqCtx, "TicketPlatform recovery event.get failed server=%s: %s", server.Name, err.Error())
		} else if len(recovery) > 0 {
			event.CorrelationID = recovery[0].CorrelationID
			event.UserID = recovery[0].UserID
			rClock = recovery[0].Clock.Int64()
		}
	}

	var causeEvent *zabbix.Event
	if event.CauseEventID.Int64() > 0 {
		var causes []zabbix.Event
		err := callServer(reqCtx, es.ctx, server, "event.get", map[string]interface{}{
			"output":   []string{"eventid", "name", "objectid"},
			"eventids": []string{event.CauseEventID.String()},
		}, &causes)
		if err == nil && len(causes) > 0 {
			causeEvent = &causes[0]
		}
	}

	alerts := es.alerts(reqCtx, server, event)
	actions, userIds, mediatypeIds := BuildActionHistory(event, rClock, alerts)

	return types.ResponseEventDetails{
		Server:     server.Redacted(),
		Trigger:    trigger,
		Event:      event,
		CauseEvent: causeEvent,
		Opdata:     es.opdata(reqCtx, server, trigger),
		Actions:    actions,
		Users:      es.users(reqCtx, server, userIds),
		Mediatypes: es.mediatypes(reqCtx, server, mediatypeIds),
		EventList:  es.eventList(reqCtx, server, trigger.TriggerID.String(), event.EventID.String()),
	}, nil
}

// ActionList 单个事件的处理历史, 超过 20 条时只返回最新的 20 条
func (es eventService) ActionList(reqCtx context.Context, req interface{}) (interface{}, interface{}) {
	r := req.(*types.RequestActionList)
	title := "Cannot fetch actions"

	server, ok, err := findServer(es.ctx, r.ServerId, true)
	if err != nil {
		return nil, err
	}
	if !ok || r.EventId == "" {
		return nil, validationError(title, "No remote server or event specified.")
	}

	var events []zabbix.Event
	err = callServer(reqCtx, es.ctx, server, "event.get", map[string]interface{}{
		"output":             []string{"eventid", "r_eventid", "clock"},
		"eventids":           []string{r.EventId},
		"selectAcknowledges": acknowledgeOutput,
	}, &events)
	if err != nil {
		return nil, remoteError(title, err)
	}
	if len(events) == 0 {
		return nil, notFoundError(title, "No remote events found.")
	}
	event := events[0]

	rClock := int64(0)
	if event.REventID.Int64() > 0 {
		var recovery []zabbix.Event
		if err := callServer(reqCtx, es.ctx, server, "event.get", map[string]interface{}{
			"output":   []string{"eventid", "clock"},
			"eventids": []string{event.REventID.String()},
		}, &recovery); err == nil && len(recovery) > 0 {
			rClock = recovery[0].Clock.Int64()
		}
	}

	actions, userIds, mediatypeIds := BuildActionHistory(event, rClock, es.alerts(reqCtx, server, event))

	resp := types.ResponseActionList{
		Actions:    actions,
		Users:      es.users(reqCtx, server, userIds),
		Mediatypes: es.mediatypes(reqCtx, server, mediatypeIds),
	}
	if len(actions) > historyDisplayLimit {
		resp.FootNote = fmt.Sprintf("Displaying %d of %d found", historyDisplayLimit, len(actions))
		resp.Actions = actions[:historyDisplayLimit]
	}

	return resp, nil
}

// alerts 事件及其恢复事件上的告警发送记录, 查询失败时按无告警处理
func (es eventService) alerts(reqCtx context.Context, server models.RemoteServer, event zabbix.Event) []zabbix.Alert {
	ids := []string{event.EventID.String()}
	if event.REventID.Int64() > 0 {
		ids = append(ids, event.REventID.String())
	}

	var alerts []zabbix.Alert
	err := callServer(reqCtx, es.ctx, server, "alert.get", map[string]interface{}{
		"output":   alertOutput,
		"eventids": ids,
		"limit":    es.searchLimit,
	}, &alerts)
	if err != nil {
		logc.Infof(reqCtx, "TicketPlatform alert.get failed server=%s: %s", server.Name, err.Error())
		return nil
	}
	return alerts
}

// BuildActionHistory 合并问题产生, 恢复, 人工更新与告警记录, 按时间, 类型, 告警 ID 倒序.
// 同时返回需要解析名称的用户与媒介类型 ID.
func BuildActionHistory(event zabbix.Event, rClock int64, alerts []zabbix.Alert) ([]types.EventHistoryAction, []string, []string) {
	var (
		actions      []types.EventHistoryAction
		userIds      []string
		mediatypeIds []string
	)

	eventId := event.EventID.String()
	rEventId := ""
	actions = append(actions, types.EventHistoryAction{
		ActionType: HistoryProblem,
		Clock:      event.Clock.Int64(),
		EventID:    eventId,
	})

	if event.REventID.Int64() > 0 {
		rEventId = event.REventID.String()
		actions = append(actions, types.EventHistoryAction{
			ActionType: HistoryRecovery,
			Clock:      rClock,
			EventID:    rEventId,
		})
	}

	for _, ack := range event.Acknowledges {
		a := types.EventHistoryAction{
			ActionType:  HistoryUpdate,
			Clock:       ack.Clock.Int64(),
			UserID:      ack.UserID.String(),
			Action:      intPtr(ack.Action.Int()),
			Message:     ack.Message,
			OldSeverity: intPtr(ack.OldSeverity.Int()),
			NewSeverity: intPtr(ack.NewSeverity.Int()),
		}
		if ack.HasSuppressUntil() {
			v := ack.SuppressUntil.Int64()
			a.SuppressUntil = &v
		}
		actions = append(actions, a)
		if ack.UserID.Int64() != 0 {
			userIds = append(userIds, ack.UserID.String())
		}
	}

	for _, al := range alerts {
		alertEventId := al.EventID.String()
		if alertEventId != eventId && (rEventId == "" || alertEventId != rEventId) {
			continue
		}

		actions = append(actions, types.EventHistoryAction{
			ActionType:  HistoryAlert,
			Clock:       al.Clock.Int64(),
			AlertID:     al.AlertID.String(),
			AlertType:   intPtr(al.AlertType.Int()),
			EventID:     alertEventId,
			UserID:      al.UserID.String(),
			MediatypeID: al.MediatypeID.String(),
			Status:      intPtr(al.Status.Int()),
			Message:     al.Message,
			Error:       al.Error,
			Retries:     intPtr(al.Retries.Int()),
			SendTo:      al.SendTo,
			Subject:     al.Subject,
			EscStep:     intPtr(al.EscStep.Int()),
		})

		if al.AlertType.Int() == zabbix.AlertTypeMessage {
			if al.MediatypeID.Int64() != 0 {
				mediatypeIds = append(mediatypeIds, al.MediatypeID.String())
			}
			if al.UserID.Int64() != 0 {
				userIds = append(userIds, al.UserID.String())
			}
		}
	}

	sort.SliceStable(actions, func(i, j int) bool {
		a, b := actions[i], actions[j]
		if a.Clock != b.Clock {
			return a.Clock > b.Clock
		}
		if a.ActionType != b.ActionType {
			return a.ActionType > b.ActionType
		}
		return zabbix.FlexString(a.AlertID).Int64() > zabbix.FlexString(b.AlertID).Int64()
	})

	return actions, uniqueStrings(userIds), uniqueStrings(mediatypeIds)
}

// users 优先读取目录缓存, 未命中的一次性查询
func (es eventService) users(reqCtx context.Context, server models.RemoteServer, ids []string) map[string]zabbix.User {
	result := make(map[string]zabbix.User, len(ids))
	lookup := es.ctx.Cache.Lookup()

	var missing []string
	for _, id := range ids {
		if v, ok := lookup.Get(server.ID, cache.LookupUser, id); ok {
			result[id] = v.(zabbix.User)
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return result
	}

	var users []zabbix.User
	err := callServer(reqCtx, es.ctx, server, "user.get", map[string]interface{}{
		"output":  []string{"userid", "username", "name", "surname"},
		"userids": missing,
	}, &users)
	if err != nil {
		logc.Infof(reqCtx, "TicketPlatform user.get failed server=%s: %s", server.Name, err.Error())
		return result
	}

	for _, u := range users {
		lookup.Set(server.ID, cache.LookupUser, u.UserID.String(), u)
		result[u.UserID.String()] = u
	}
	return result
}

func (es eventService) mediatypes(reqCtx context.Context, server models.RemoteServer, ids []string) map[string]zabbix.MediaType {
	result := make(map[string]zabbix.MediaType, len(ids))
	lookup := es.ctx.Cache.Lookup()

	var missing []string
	for _, id := range ids {
		if v, ok := lookup.Get(server.ID, cache.LookupMediaType, id); ok {
			result[id] = v.(zabbix.MediaType)
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return result
	}

	var mediatypes []zabbix.MediaType
	err := callServer(reqCtx, es.ctx, server, "mediatype.get", map[string]interface{}{
		"output":       []string{"mediatypeid", "name", "maxattempts"},
		"mediatypeids": missing,
	}, &mediatypes)
	if err != nil {
		logc.Infof(reqCtx, "TicketPlatform mediatype.get failed server=%s: %s", server.Name, err.Error())
		return result
	}

	for _, m := range mediatypes {
		lookup.Set(server.ID, cache.LookupMediaType, m.MediatypeID.String(), m)
		result[m.MediatypeID.String()] = m
	}
	return result
}

// eventList 同一触发器在当前事件之前 (含) 的最近 20 个问题事件
func (es eventService) eventList(reqCtx context.Context, server models.RemoteServer, triggerId, eventId string) []types.EventListRow {
	rows := make([]types.EventListRow, 0)

	var events []zabbix.Event
	err := callServer(reqCtx, es.ctx, server, "event.get", map[string]interface{}{
		"output":             []string{"eventid", "r_eventid", "clock", "ns", "acknowledged", "severity", "name"},
		"selectAcknowledges": []string{"action"},
		"source":             zabbix.EventSourceTriggers,
		"object":             zabbix.EventObjectTrigger,
		"objectids":          []string{triggerId},
		"eventid_till":       eventId,
		"value":              zabbix.TriggerValueTrue,
		"sortfield":          []string{"clock", "eventid"},
		"sortorder":          zabbix.SortDown,
		"limit":              eventListLimit,
	}, &events)
	if err != nil {
		logc.Infof(reqCtx, "TicketPlatform event list failed server=%s: %s", server.Name, err.Error())
		return rows
	}

	var rIds []string
	ackCounts := make(map[string]int, len(events))
	for _, e := range events {
		ackCounts[e.EventID.String()] = len(e.Acknowledges)
		if e.REventID.Int64() > 0 {
			rIds = append(rIds, e.REventID.String())
		}
	}

	rClocks := make(map[string]int64, len(rIds))
	if len(rIds) > 0 {
		var recovery []zabbix.Event
		if err := callServer(reqCtx, es.ctx, server, "event.get", map[string]interface{}{
			"output":   []string{"eventid", "clock"},
			"eventids": rIds,
		}, &recovery); err == nil {
			for _, e := range recovery {
				rClocks[e.EventID.String()] = e.Clock.Int64()
			}
		}
	}

	alerts, err := fetchAlertSummaries(reqCtx, es.ctx, server, events, es.searchLimit)
	if err != nil {
		logc.Infof(reqCtx, "TicketPlatform alert.get failed server=%s: %s", server.Name, err.Error())
	}
	summary := summarizeActions(events, ackCounts, alerts)

	for _, e := range events {
		row := types.EventListRow{
			Event:   e,
			Actions: summary[e.EventID.String()],
		}
		if e.REventID.Int64() > 0 {
			row.RClock = rClocks[e.REventID.String()]
		}
		row.Acknowledges = nil
		rows = append(rows, row)
	}

	return rows
}

// opdata 触发器配置了操作数据时直接使用, 否则列出关联监控项的最新值
func (es eventService) opdata(reqCtx context.Context, server models.RemoteServer, trigger zabbix.Trigger) string {
	if trigger.Opdata != "" {
		return trigger.Opdata
	}

	var items []zabbix.Item
	err := callServer(reqCtx, es.ctx, server, "item.get", map[string]interface{}{
		"output":         []string{"itemid", "name", "value_type", "units", "lastvalue", "lastclock", "valuemapid"},
		"selectValueMap": []string{"mappings"},
		"triggerids":     []string{trigger.TriggerID.String()},
	}, &items)
	if err != nil || len(items) == 0 {
		return "N/A"
	}

	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it.Name+": "+FormatItemValue(it))
	}
	return strings.Join(parts, ", ")
}

// FormatItemValue 最新值展示: 二进制类型不展示内容, 命中值映射时显示映射结果
func FormatItemValue(it zabbix.Item) string {
	if it.ValueType.Int() == zabbix.ItemValueTypeBinary {
		return "binary value"
	}
	if it.LastValue == nil || it.LastClock.Int64() == 0 {
		return "*UNKNOWN*"
	}

	value := *it.LastValue
	if it.ValueMap != nil {
		for _, m := range it.ValueMap.Mappings {
			if m.Type.Int() == 0 && m.Value == value {
				return fmt.Sprintf("%s (%s)", m.NewValue, value)
			}
		}
	}

	if it.Units != "" {
		return value + " " + it.Units
	}
	return value
}

func intPtr(i int) *int {
	return &i
}
