package services

import (
	"sort"
	"strings"
	"time"

	"ticketPlatform/internal/models"
	"ticketPlatform/internal/types"
	"ticketPlatform/pkg/tools"
	"ticketPlatform/pkg/zabbix"
)

const (
	secondsPerDay = 86400
	defaultAge    = 14

	showTagsNone = 0
	showTagsAll  = 3
)

// NormalizeFilter 将前端过滤条件转换为 CanonicalQuery, 时间边界在此解析为绝对秒数.
// 无法解析的时间边界视为不限制; ageState 开启时下界固定为 now - age 天.
func NormalizeFilter(r types.RequestProblemList, now time.Time, rowsPerPage int, periodDefault string) models.CanonicalQuery {
	q := models.CanonicalQuery{
		Mode:           models.ProblemMode(r.Show),
		Name:           r.Name,
		Host:           strings.TrimSpace(r.Host),
		ShowSuppressed: r.ShowSuppressed == 1,
		EvalType:       models.TagEvalAndOr,
	}

	if !q.Mode.Valid() {
		q.Mode = models.ModeRecentUnresolved
	}

	from := r.From
	if from == "" {
		from = "now-" + periodDefault
	}
	to := r.To
	if to == "" {
		to = "now"
	}

	if t, ok := tools.ParseRangeTime(from, now, true); ok {
		v := t.Unix()
		q.TimeFrom = &v
	}
	if t, ok := tools.ParseRangeTime(to, now, false); ok {
		v := t.Unix()
		q.TimeTill = &v
	}

	if r.AgeState == 1 {
		age := defaultAge
		if r.Age != nil {
			age = *r.Age
		}
		v := now.Unix() - int64(age)*secondsPerDay
		q.TimeFrom = &v
	}

	// 历史与最近问题两种模式都需要包含最近恢复的事件
	switch q.Mode {
	case models.ModeRecentUnresolved, models.ModeHistory:
		q.Recent = models.BoolPtr(true)
	case models.ModeUnresolved:
		q.Recent = models.BoolPtr(false)
	}

	switch r.AcknowledgementStatus {
	case models.AckStatusAck:
		q.Acknowledged = models.BoolPtr(true)
	case models.AckStatusUnack:
		q.Acknowledged = models.BoolPtr(false)
	}

	q.Severities = normalizeSeverities(r.Severities)

	q.Tags = make([]zabbix.TagFilter, 0, len(r.Tags))
	for _, t := range r.Tags {
		if t.Tag == "" {
			continue
		}
		f := zabbix.TagFilter{Tag: t.Tag, Operator: zabbix.TagOperatorLike}
		if t.Operator != nil {
			f.Operator = *t.Operator
		}
		if t.Value != nil {
			f.Value = *t.Value
		}
		q.Tags = append(q.Tags, f)
	}

	if r.EvalType == models.TagEvalOr {
		q.EvalType = models.TagEvalOr
	}

	page := r.Page
	if page < 1 {
		page = 1
	}
	q.Limit = rowsPerPage * page

	showTags := showTagsAll
	if r.ShowTags != nil {
		showTags = *r.ShowTags
	}
	q.ShowTags = showTags != showTagsNone

	return q
}

// normalizeSeverities 去重排序, 丢弃 0..5 以外的取值
func normalizeSeverities(in []int) []int {
	seen := make(map[int]struct{}, len(in))
	out := make([]int, 0, len(in))
	for _, s := range in {
		if s < 0 || s > 5 {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}
