package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"ticketPlatform/internal/cache"
	"ticketPlatform/internal/ctx"
	"ticketPlatform/internal/models"
	"ticketPlatform/pkg/executor"
	"ticketPlatform/pkg/metrics"
	"ticketPlatform/pkg/zabbix"

	"github.com/zeromicro/go-zero/core/logc"
)

// errNoMatchingHosts 主机过滤条件在该服务上没有匹配的主机, 该服务不产生问题也不算失败
var errNoMatchingHosts = errors.New("no hosts match the host filter")

// errNoMatchingGroups 配置的主机组在远端不存在, 不能退化为不限范围的查询
var errNoMatchingGroups = errors.New("no host groups match the configured scope")

var (
	problemOutput = []string{"eventid", "clock", "severity", "name", "acknowledged", "r_eventid", "objectid", "suppressed"}
	eventOutput   = []string{"eventid", "clock", "severity", "name", "acknowledged", "r_eventid", "objectid"}
	userGetProbe  = map[string]interface{}{
		"output": []string{"userid", "username", "roleid", "status"},
		"limit":  1,
	}
)

// Aggregator 将一次查询扇出到多个远端服务, 合并结果并收集各服务的失败
type Aggregator struct {
	ctx         *ctx.Context
	executor    *executor.ParallelExecutor
	searchLimit int
	now         func() time.Time
}

func NewAggregator(c *ctx.Context, workers, searchLimit int) *Aggregator {
	if searchLimit <= 0 {
		searchLimit = 1000
	}
	return &Aggregator{
		ctx:         c,
		executor:    executor.NewParallelExecutor(workers),
		searchLimit: searchLimit,
		now:         time.Now,
	}
}

type eventInfo struct {
	hosts      []models.ProblemHost
	objectId   string
	suppressed bool
}

// Fetch 按注册顺序处理启用的服务, 缓存命中时不发起任何远端调用.
// 单个服务失败只产生一条错误记录, 错误顺序与服务顺序一致.
func (a *Aggregator) Fetch(reqCtx context.Context, servers []models.RemoteServer, q models.CanonicalQuery, ttl time.Duration) ([]models.NormalizedProblem, []models.ServerError) {
	enabled := make([]models.RemoteServer, 0, len(servers))
	for _, s := range servers {
		if s.GetEnabled() {
			enabled = append(enabled, s)
		}
	}

	results := executor.Execute(reqCtx, a.executor, len(enabled), func(taskCtx context.Context, i int) ([]models.NormalizedProblem, error) {
		return a.fetchServer(taskCtx, enabled[i], q, ttl)
	})

	problems := make([]models.NormalizedProblem, 0)
	errs := make([]models.ServerError, 0)
	for i, r := range results {
		if r.Err != nil {
			metrics.ServerFetchErrors.WithLabelValues(enabled[i].Name).Inc()
			errs = append(errs, models.ServerError{
				Server: enabled[i].Name,
				Error:  r.Err.Error(),
			})
			continue
		}
		problems = append(problems, r.Value...)
	}

	return problems, errs
}

func (a *Aggregator) fetchServer(reqCtx context.Context, server models.RemoteServer, q models.CanonicalQuery, ttl time.Duration) ([]models.NormalizedProblem, error) {
	if cached, ok := a.ctx.Cache.Result().Get(server.ID, cache.Fingerprint(q, server), ttl); ok {
		return cached, nil
	}

	problems, err := a.fetchRemote(reqCtx, server, q)
	if errors.Is(err, errNoMatchingHosts) || errors.Is(err, errNoMatchingGroups) {
		return []models.NormalizedProblem{}, nil
	}
	if err != nil {
		if !server.IsLocal {
			a.updateServerMeta(reqCtx, server.ID, models.ServerMeta{ConnectionStatus: models.ConnectionProblem}, false)
		}
		return nil, err
	}

	return problems, nil
}

func (a *Aggregator) fetchRemote(reqCtx context.Context, server models.RemoteServer, q models.CanonicalQuery) ([]models.NormalizedProblem, error) {
	if !server.IsLocal {
		version, err := a.ctx.Zabbix.Version(reqCtx, server.ApiUrl)
		if err != nil {
			return nil, err
		}
		if err := callServer(reqCtx, a.ctx, server, "user.get", userGetProbe, nil); err != nil {
			return nil, err
		}
		if server.ApiVersion != version {
			a.updateServerMeta(reqCtx, server.ID, models.ServerMeta{ApiVersion: version}, true)
		}
		server.ApiVersion = version
	}

	groupIds, err := a.resolveGroupIds(reqCtx, server)
	if err != nil {
		return nil, err
	}

	hostIds := a.resolveHostIds(reqCtx, server, q.Host)
	if q.Host != "" && len(hostIds) == 0 {
		return nil, errNoMatchingHosts
	}

	var items []zabbix.Event
	method := "problem.get"
	if q.Mode == models.ModeHistory {
		method = "event.get"
		err = callServer(reqCtx, a.ctx, server, method, buildEventParams(q, groupIds, hostIds), &items)
	} else {
		err = callServer(reqCtx, a.ctx, server, method, buildProblemParams(q, groupIds, hostIds), &items)
	}
	if err != nil {
		return nil, err
	}
	// result 为 null 时列表缺失, 与空列表区分
	if items == nil {
		return nil, &zabbix.ProtocolError{URL: server.ApiUrl, Method: method, Body: "null"}
	}

	info := a.eventInfo(reqCtx, server, items)
	actions := a.actionsSummary(reqCtx, server, items)

	problems := make([]models.NormalizedProblem, 0, len(items))
	for _, item := range items {
		eventId := item.EventID.String()
		ei, hasInfo := info[eventId]

		if !q.ShowSuppressed && (item.Suppressed.Int() == 1 || (hasInfo && ei.suppressed)) {
			continue
		}

		p := models.NormalizedProblem{
			EventID:      eventId,
			ServerID:     server.ID,
			Clock:        item.Clock.Int64(),
			Severity:     item.Severity.Int(),
			Name:         item.Name,
			Acknowledged: item.Acknowledged.Int() == zabbix.EventAcknowledged,
			ObjectID:     item.ObjectID.String(),
			Tags:         make([]zabbix.Tag, 0, len(item.Tags)),
			Hosts:        []models.ProblemHost{},
			ServerName:   server.Name,
			ServerWebUrl: server.WebUrl(),
			Actions:      actions[eventId],
		}
		if item.REventID.Int64() > 0 {
			p.RecoveryEventID = item.REventID.String()
		}
		p.Tags = append(p.Tags, item.Tags...)
		if hasInfo {
			p.Hosts = ei.hosts
			if ei.objectId != "" {
				p.ObjectID = ei.objectId
			}
		}

		problems = append(problems, p)
	}

	if !server.IsLocal {
		a.updateServerMeta(reqCtx, server.ID, models.ServerMeta{
			ConnectionStatus: models.ConnectionOk,
			LastReached:      a.now().Unix(),
			ApiVersion:       server.ApiVersion,
		}, true)
	}

	if err := a.ctx.Cache.Result().Set(server.ID, cache.Fingerprint(q, server), problems); err != nil {
		logc.Errorf(reqCtx, "写入结果缓存失败, server: %s, err: %s", server.ID, err.Error())
	}

	return problems, nil
}

// resolveGroupIds 主机组作用域转换为组 ID, 包含子组时按前缀搜索
func (a *Aggregator) resolveGroupIds(reqCtx context.Context, server models.RemoteServer) ([]string, error) {
	if server.HostGroup == "" {
		return nil, nil
	}

	params := map[string]interface{}{
		"output": []string{"groupid", "name"},
		"search": map[string]string{"name": server.HostGroup},
	}
	if server.GetIncludeSubgroups() {
		params["startSearch"] = true
	} else {
		params["filter"] = map[string]string{"name": server.HostGroup}
	}

	var groups []zabbix.HostGroup
	if err := callServer(reqCtx, a.ctx, server, "hostgroup.get", params, &groups); err != nil {
		return nil, err
	}

	if len(groups) == 0 {
		msg := fmt.Sprintf("Host group %q not found server=%s", server.HostGroup, server.Name)
		zabbix.TrailFromContext(reqCtx).Add(msg)
		logc.Infof(reqCtx, "TicketPlatform %s", msg)
		return nil, errNoMatchingGroups
	}

	ids := make([]string, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.GroupID.String())
	}
	return uniqueStrings(ids), nil
}

// resolveHostIds 主机名或可见名称模糊匹配, 查询失败时按无匹配处理
func (a *Aggregator) resolveHostIds(reqCtx context.Context, server models.RemoteServer, hostQuery string) []string {
	if hostQuery == "" {
		return nil
	}

	var hosts []zabbix.Host
	err := callServer(reqCtx, a.ctx, server, "host.get", map[string]interface{}{
		"output": []string{"hostid", "name", "host"},
		"search": map[string]string{
			"name": "*" + hostQuery + "*",
			"host": "*" + hostQuery + "*",
		},
		"searchWildcardsEnabled": true,
		"searchByAny":            true,
	}, &hosts)
	if err != nil {
		a.degrade(reqCtx, server, "host.get", err)
		return nil
	}

	ids := make([]string, 0, len(hosts))
	for _, h := range hosts {
		ids = append(ids, h.HostID.String())
	}
	return uniqueStrings(ids)
}

func applyCommonFilter(params map[string]interface{}, q models.CanonicalQuery, groupIds, hostIds []string) {
	if len(groupIds) > 0 {
		params["groupids"] = groupIds
	}
	if len(hostIds) > 0 {
		params["hostids"] = hostIds
	}
	if len(q.Severities) > 0 {
		params["severities"] = q.Severities
	}
	if q.Name != "" {
		params["search"] = map[string]string{"name": "*" + q.Name + "*"}
		params["searchWildcardsEnabled"] = true
		params["searchByAny"] = true
	}
	if q.Acknowledged != nil {
		params["acknowledged"] = *q.Acknowledged
	}
	if q.TimeFrom != nil {
		params["time_from"] = *q.TimeFrom
	}
	if q.TimeTill != nil {
		params["time_till"] = *q.TimeTill
	}
	if len(q.Tags) > 0 {
		params["tags"] = q.Tags
		params["evaltype"] = q.EvalType
	}
	if q.Limit > 0 {
		params["limit"] = q.Limit
	}
	if q.ShowTags {
		params["selectTags"] = []string{"tag", "value"}
	}
}

// buildProblemParams 未恢复问题列表 problem.get 的参数
func buildProblemParams(q models.CanonicalQuery, groupIds, hostIds []string) map[string]interface{} {
	params := map[string]interface{}{
		"output":    problemOutput,
		"source":    zabbix.EventSourceTriggers,
		"object":    zabbix.EventObjectTrigger,
		"sortfield": []string{"eventid"},
		"sortorder": zabbix.SortDown,
	}
	applyCommonFilter(params, q, groupIds, hostIds)

	if !q.ShowSuppressed {
		params["suppressed"] = false
	}
	if q.Recent != nil {
		params["recent"] = *q.Recent
	}

	return params
}

// buildEventParams 历史模式查询事件日志, 只取问题事件
func buildEventParams(q models.CanonicalQuery, groupIds, hostIds []string) map[string]interface{} {
	params := map[string]interface{}{
		"output":    eventOutput,
		"source":    zabbix.EventSourceTriggers,
		"object":    zabbix.EventObjectTrigger,
		"value":     zabbix.TriggerValueTrue,
		"sortfield": []string{"eventid"},
		"sortorder": zabbix.SortDown,
	}
	applyCommonFilter(params, q, groupIds, hostIds)

	return params
}

// eventInfo 补充主机, 触发器 ID 与当前抑制状态; 失败时返回空结果
func (a *Aggregator) eventInfo(reqCtx context.Context, server models.RemoteServer, items []zabbix.Event) map[string]eventInfo {
	info := make(map[string]eventInfo, len(items))
	if len(items) == 0 {
		return info
	}

	var events []zabbix.Event
	err := callServer(reqCtx, a.ctx, server, "event.get", map[string]interface{}{
		"output":             []string{"eventid", "objectid"},
		"eventids":           eventIds(items),
		"source":             zabbix.EventSourceTriggers,
		"object":             zabbix.EventObjectTrigger,
		"selectHosts":        []string{"hostid", "name", "host"},
		"selectAcknowledges": []string{"clock", "action", "suppress_until"},
	}, &events)
	if err != nil {
		a.degrade(reqCtx, server, "event.get", err)
		return info
	}

	now := a.now()
	for _, e := range events {
		hosts := make([]models.ProblemHost, 0, len(e.Hosts))
		for _, h := range e.Hosts {
			hosts = append(hosts, models.ProblemHost{HostID: h.HostID.String(), Name: h.DisplayName()})
		}
		info[e.EventID.String()] = eventInfo{
			hosts:      hosts,
			objectId:   e.ObjectID.String(),
			suppressed: isSuppressed(e.Acknowledges, now),
		}
	}

	return info
}

// isSuppressed 按时间倒序查找第一条带有抑制或取消抑制动作的更新记录:
// 取消抑制返回 false, 抑制则在永久或尚未到期时返回 true.
func isSuppressed(acks []zabbix.Acknowledge, now time.Time) bool {
	if len(acks) == 0 {
		return false
	}

	sorted := make([]zabbix.Acknowledge, len(acks))
	copy(sorted, acks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Clock.Int64() > sorted[j].Clock.Int64()
	})

	for _, ack := range sorted {
		action := zabbix.Action(ack.Action.Int())
		if action.Has(zabbix.ActionUnsuppress) {
			return false
		}
		if action.Has(zabbix.ActionSuppress) {
			// 缺少 suppress_until 视为永久抑制
			if !ack.HasSuppressUntil() {
				return true
			}
			until := ack.SuppressUntil.Int64()
			return until == zabbix.SuppressTimeIndefinite || until > now.Unix()
		}
	}

	return false
}

// actionsSummary 统计每个事件的更新记录与告警数量, 已恢复的事件同时计入恢复事件的告警
func (a *Aggregator) actionsSummary(reqCtx context.Context, server models.RemoteServer, items []zabbix.Event) map[string]models.ActionsSummary {
	if len(items) == 0 {
		return map[string]models.ActionsSummary{}
	}

	var events []zabbix.Event
	err := callServer(reqCtx, a.ctx, server, "event.get", map[string]interface{}{
		"output":   []string{"eventid"},
		"eventids": eventIds(items),
		"selectAcknowledges": []string{"userid", "action", "message", "clock", "new_severity", "old_severity",
			"suppress_until"},
	}, &events)
	if err != nil {
		a.degrade(reqCtx, server, "event.get", err)
		return map[string]models.ActionsSummary{}
	}

	ackCounts := make(map[string]int, len(events))
	for _, e := range events {
		ackCounts[e.EventID.String()] = len(e.Acknowledges)
	}

	alerts, err := fetchAlertSummaries(reqCtx, a.ctx, server, items, a.searchLimit)
	if err != nil {
		a.degrade(reqCtx, server, "alert.get", err)
		return map[string]models.ActionsSummary{}
	}

	return summarizeActions(items, ackCounts, alerts)
}

// fetchAlertSummaries 查询事件及其恢复事件的告警记录
func fetchAlertSummaries(reqCtx context.Context, c *ctx.Context, server models.RemoteServer, items []zabbix.Event, limit int) ([]zabbix.Alert, error) {
	ids := eventIds(items)
	for _, item := range items {
		if item.REventID.Int64() > 0 {
			ids = append(ids, item.REventID.String())
		}
	}

	var alerts []zabbix.Alert
	err := callServer(reqCtx, c, server, "alert.get", map[string]interface{}{
		"output":   []string{"alertid", "eventid", "alerttype", "status", "mediatypeid", "userid"},
		"eventids": uniqueStrings(ids),
		"limit":    limit,
	}, &alerts)
	return alerts, err
}

func summarizeActions(items []zabbix.Event, ackCounts map[string]int, alerts []zabbix.Alert) map[string]models.ActionsSummary {
	byEvent := make(map[string][]zabbix.Alert)
	for _, al := range alerts {
		id := al.EventID.String()
		byEvent[id] = append(byEvent[id], al)
	}

	summary := make(map[string]models.ActionsSummary, len(items))
	for _, item := range items {
		eventId := item.EventID.String()
		eventAlerts := byEvent[eventId]
		if item.REventID.Int64() > 0 {
			eventAlerts = append(eventAlerts[:len(eventAlerts):len(eventAlerts)], byEvent[item.REventID.String()]...)
		}

		s := models.ActionsSummary{Count: ackCounts[eventId] + len(eventAlerts)}
		for _, al := range eventAlerts {
			if al.Pending() {
				s.HasPending = true
			} else if al.Failed() {
				s.HasFailed = true
			}
		}
		summary[eventId] = s
	}

	return summary
}

// updateServerMeta 回写服务元数据; 版本发生变化时清空该服务的缓存
func (a *Aggregator) updateServerMeta(reqCtx context.Context, serverId string, meta models.ServerMeta, clearOnVersionChange bool) {
	prev, err := a.ctx.DB.Server().UpdateMeta(serverId, meta)
	if err != nil {
		logc.Errorf(reqCtx, "更新远端服务状态失败, server: %s, err: %s", serverId, err.Error())
		return
	}

	if clearOnVersionChange && meta.ApiVersion != "" && meta.ApiVersion != prev {
		clearServerCache(reqCtx, a.ctx, serverId)
	}
}

// degrade 补充信息查询失败不影响该服务的结果, 只记录诊断信息
func (a *Aggregator) degrade(reqCtx context.Context, server models.RemoteServer, method string, err error) {
	msg := fmt.Sprintf("Enrichment %s failed server=%s: %s", method, server.Name, err.Error())
	zabbix.TrailFromContext(reqCtx).Add(msg)
	logc.Infof(reqCtx, "TicketPlatform %s", msg)
}

// clearServerCache 同时清空结果缓存与目录缓存
func clearServerCache(reqCtx context.Context, c *ctx.Context, serverId string) {
	if err := c.Cache.Result().ClearServer(serverId); err != nil {
		logc.Errorf(reqCtx, "清理结果缓存失败, server: %s, err: %s", serverId, err.Error())
	}
	c.Cache.Lookup().ClearServer(serverId)
}

func eventIds(items []zabbix.Event) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.EventID.String())
	}
	return ids
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
