package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ticketPlatform/internal/models"
	"ticketPlatform/internal/types"
	"ticketPlatform/pkg/tools"
	"ticketPlatform/pkg/zabbix"

	"github.com/zeromicro/go-zero/core/logc"
)

const (
	changeRankToCause   = int(zabbix.ActionRankToCause)
	changeRankToSymptom = int(zabbix.ActionRankToSymptom)

	defaultSuppressUntil = "now+1d"
)

func updateTitle(n int, ok bool) string {
	switch {
	case ok && n == 1:
		return "Event updated"
	case ok:
		return "Events updated"
	case n == 1:
		return "Cannot update event"
	}
	return "Cannot update events"
}

// ComposeUpdate 按权限组合操作位, 未授权的操作直接丢弃; 返回的请求尚未做范围扩展
func ComposeUpdate(r *types.RequestAcknowledgeCreate, caps models.Capabilities, now time.Time) (models.UpdateRequest, error) {
	title := updateTitle(len(r.EventIds), false)

	u := models.UpdateRequest{
		ServerID:           r.ServerId,
		EventIDs:           uniqueStrings(r.EventIds),
		Scope:              r.Scope,
		SuppressTimeOption: r.SuppressTimeOption,
		UserName:           r.UserName,
	}

	// 定时抑制的时间先于权限判断校验, 无权限时同样拒绝非法输入
	suppressUntil := "0"
	if r.SuppressProblem && r.SuppressTimeOption == models.SuppressTimeDefinite {
		until, ok := tools.ParseRangeTime(r.SuppressUntilProblem, now, false)
		if !ok || until.Before(now) {
			return models.UpdateRequest{}, validationError(title, `Incorrect value for field "Suppress": invalid time.`)
		}
		suppressUntil = fmt.Sprintf("%d", until.Unix())
	}

	if r.ChangeSeverity && caps.Has(models.CapChangeSeverity) {
		u.Requested = u.Requested.With(zabbix.ActionSeverity)
		u.Severity = r.Severity
	}

	if caps.Has(models.CapAcknowledge) {
		if r.AcknowledgeProblem {
			u.Requested = u.Requested.With(zabbix.ActionAcknowledge)
		}
		if r.UnacknowledgeProblem {
			u.Requested = u.Requested.With(zabbix.ActionUnacknowledge)
		}
	}

	if r.CloseProblem && caps.Has(models.CapClose) {
		u.Requested = u.Requested.With(zabbix.ActionClose)
	}

	if r.Message != "" && caps.Has(models.CapAddComments) {
		u.Requested = u.Requested.With(zabbix.ActionMessage)
		u.Message = r.Message
	}

	if caps.Has(models.CapSuppress) {
		if r.SuppressProblem {
			u.Requested = u.Requested.With(zabbix.ActionSuppress)
			u.SuppressUntil = suppressUntil
		}
		if r.UnsuppressProblem {
			u.Requested = u.Requested.With(zabbix.ActionUnsuppress)
		}
	}

	if caps.Has(models.CapChangeRank) {
		switch r.ChangeRank {
		case changeRankToCause:
			u.Requested = u.Requested.With(zabbix.ActionRankToCause)
		case changeRankToSymptom:
			if strings.TrimSpace(r.CauseEventId) == "" {
				return models.UpdateRequest{}, validationError(title, `Field "cause_eventid" is mandatory.`)
			}
			u.Requested = u.Requested.With(zabbix.ActionRankToSymptom)
			u.CauseEventID = strings.TrimSpace(r.CauseEventId)
		}
	}

	if u.Requested == zabbix.ActionNone {
		return models.UpdateRequest{}, validationError(title, "At least one update operation or message is mandatory")
	}

	return u, nil
}

// acknowledgeParams event.acknowledge 的参数, 只携带与操作位对应的字段
func acknowledgeParams(u models.UpdateRequest) map[string]interface{} {
	params := map[string]interface{}{
		"eventids": u.EventIDs,
		"action":   int(u.Requested),
	}
	if u.Requested.Has(zabbix.ActionMessage) {
		params["message"] = u.Message
	}
	if u.Requested.Has(zabbix.ActionSeverity) {
		params["severity"] = u.Severity
	}
	if u.Requested.Has(zabbix.ActionSuppress) {
		params["suppress_until"] = zabbix.FlexString(u.SuppressUntil).Int64()
	}
	if u.Requested.Has(zabbix.ActionRankToSymptom) {
		params["cause_eventid"] = u.CauseEventID
	}
	return params
}

// AcknowledgeCreate 校验并组合操作后发起一次 event.acknowledge, 成功后清空该服务的结果缓存
func (ps problemService) AcknowledgeCreate(reqCtx context.Context, req interface{}) (interface{}, interface{}) {
	r := req.(*types.RequestAcknowledgeCreate)

	server, ok, err := findServer(ps.ctx, r.ServerId, true)
	if err != nil {
		return nil, err
	}
	if !ok || len(r.EventIds) == 0 {
		return nil, validationError(updateTitle(len(r.EventIds), false), "No remote server or events selected.")
	}

	u, err := ComposeUpdate(r, capabilitiesFor(ps.ctx, r.Role), ps.now())
	if err != nil {
		return nil, err
	}

	if u.Scope == models.ScopeProblem {
		u.EventIDs = ps.expandScope(reqCtx, server, u.EventIDs)
	}

	var result struct {
		EventIDs []zabbix.FlexString `json:"eventids"`
	}
	if err := callServer(reqCtx, ps.ctx, server, "event.acknowledge", acknowledgeParams(u), &result); err != nil {
		return nil, remoteError(updateTitle(len(u.EventIDs), false), err)
	}

	clearServerCache(reqCtx, ps.ctx, server.ID)
	logc.Infof(reqCtx, "事件已更新, server: %s, user: %s, action: %s, events: %d", server.ID, u.UserName, u.Requested.String(), len(u.EventIDs))

	return models.UpdateResult{
		Title:    updateTitle(len(u.EventIDs), true),
		EventIDs: u.EventIDs,
		Action:   u.Requested,
	}, nil
}

// expandScope 选中事件所属触发器下的全部未关闭问题; 查询失败或结果为空时保持原选择
func (ps problemService) expandScope(reqCtx context.Context, server models.RemoteServer, ids []string) []string {
	var events []zabbix.Event
	err := callServer(reqCtx, ps.ctx, server, "event.get", map[string]interface{}{
		"output":   []string{"objectid"},
		"eventids": ids,
		"source":   zabbix.EventSourceTriggers,
		"object":   zabbix.EventObjectTrigger,
	}, &events)
	if err != nil || len(events) == 0 {
		return ids
	}

	objectIds := make([]string, 0, len(events))
	for _, e := range events {
		objectIds = append(objectIds, e.ObjectID.String())
	}

	var problems []zabbix.Event
	err = callServer(reqCtx, ps.ctx, server, "problem.get", map[string]interface{}{
		"output":    []string{"eventid"},
		"objectids": uniqueStrings(objectIds),
	}, &problems)
	if err != nil || len(problems) == 0 {
		return ids
	}

	return eventIds(problems)
}

// AcknowledgeEdit 更新表单的预检查: 当前角色允许的操作与选中事件可执行的操作
func (ps problemService) AcknowledgeEdit(reqCtx context.Context, req interface{}) (interface{}, interface{}) {
	r := req.(*types.RequestAcknowledgeEdit)
	title := updateTitle(len(r.EventIds), false)

	server, ok, err := findServer(ps.ctx, r.ServerId, true)
	if err != nil {
		return nil, err
	}
	if !ok || len(r.EventIds) == 0 {
		return nil, validationError(title, "No remote server or events selected.")
	}

	caps := capabilitiesFor(ps.ctx, r.Role)
	resp := types.ResponseAcknowledgeEdit{
		EventIds:                    r.EventIds,
		ServerId:                    server.ID,
		AllowedAcknowledge:          caps.Has(models.CapAcknowledge),
		AllowedClose:                caps.Has(models.CapClose),
		AllowedChangeSeverity:       caps.Has(models.CapChangeSeverity),
		AllowedAddComments:          caps.Has(models.CapAddComments),
		AllowedSuppress:             caps.Has(models.CapSuppress),
		AllowedChangeProblemRanking: caps.Has(models.CapChangeRank),
		SuppressUntilProblem:        defaultSuppressUntil,
	}

	params := map[string]interface{}{
		"output":             []string{"eventid", "name", "objectid", "acknowledged", "value", "r_eventid", "cause_eventid"},
		"selectAcknowledges": []string{"action"},
		"eventids":           r.EventIds,
		"source":             zabbix.EventSourceTriggers,
		"object":             zabbix.EventObjectTrigger,
	}
	if resp.AllowedSuppress {
		params["selectSuppressionData"] = []string{"maintenanceid", "suppress_until"}
	}

	var events []zabbix.Event
	if err := callServer(reqCtx, ps.ctx, server, "event.get", params, &events); err != nil {
		return nil, remoteError(title, err)
	}
	if len(events) == 0 {
		return nil, notFoundError(title, "No remote events found.")
	}

	objectIds := make([]string, 0, len(events))
	for _, e := range events {
		objectIds = append(objectIds, e.ObjectID.String())
	}
	objectIds = uniqueStrings(objectIds)

	var triggers []zabbix.Trigger
	if err := callServer(reqCtx, ps.ctx, server, "trigger.get", map[string]interface{}{
		"output":     []string{"manual_close"},
		"triggerids": objectIds,
	}, &triggers); err != nil {
		logc.Infof(reqCtx, "TicketPlatform trigger.get failed server=%s: %s", server.Name, err.Error())
	}
	manualClose := make(map[string]int, len(triggers))
	for _, t := range triggers {
		manualClose[t.TriggerID.String()] = t.ManualClose.Int()
	}

	ApplyEventCapabilities(&resp, events, manualClose)
	resp.ProblemSeverityCanBeChanged = len(triggers) > 0

	var related zabbix.FlexString
	if err := callServer(reqCtx, ps.ctx, server, "problem.get", map[string]interface{}{
		"countOutput": true,
		"objectids":   objectIds,
	}, &related); err != nil {
		logc.Infof(reqCtx, "TicketPlatform problem.get failed server=%s: %s", server.Name, err.Error())
	}
	resp.RelatedProblemsCount += related.Int()

	if len(events) == 1 {
		resp.ProblemName = events[0].Name
	} else {
		resp.ProblemName = fmt.Sprintf("%d problems selected.", len(events))
	}

	return resp, nil
}

// ApplyEventCapabilities 汇总选中事件可执行的操作; 已恢复的事件不可关闭也不可抑制.
// manualClose 中缺失的触发器视为不允许手动关闭.
func ApplyEventCapabilities(resp *types.ResponseAcknowledgeEdit, events []zabbix.Event, manualClose map[string]int) {
	for _, e := range events {
		canClose, canSuppress, canUnsuppress := true, true, false

		if e.CauseEventID.Int64() != 0 {
			resp.ProblemCanChangeRank = true
		}

		for _, sd := range e.SuppressionData {
			if sd.MaintenanceID.Int64() == 0 {
				canUnsuppress = true
			}
		}

		switch {
		case e.REventID.Int64() != 0 || e.Value.Int() == zabbix.TriggerValueFalse:
			canClose, canSuppress, canUnsuppress = false, false, false
			resp.RelatedProblemsCount++
		case manualClose[e.ObjectID.String()] == zabbix.TriggerManualCloseNotAllowed:
			canClose = false
		default:
			for _, ack := range e.Acknowledges {
				if zabbix.Action(ack.Action.Int()).Has(zabbix.ActionClose) {
					canClose = false
					break
				}
			}
		}

		resp.ProblemCanBeClosed = resp.ProblemCanBeClosed || canClose
		resp.ProblemCanBeSuppressed = resp.ProblemCanBeSuppressed || canSuppress
		resp.ProblemCanBeUnsuppressed = resp.ProblemCanBeUnsuppressed || canUnsuppress

		if e.Acknowledged.Int() == zabbix.EventAcknowledged {
			resp.HasAckEvents = true
		} else {
			resp.HasUnackEvents = true
		}
	}
}
