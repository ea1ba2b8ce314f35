package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"ticketPlatform/internal/ctx"
	"ticketPlatform/internal/global"
	"ticketPlatform/internal/models"
	"ticketPlatform/internal/types"
	"ticketPlatform/pkg/tools"
	"ticketPlatform/pkg/zabbix"
)

const defaultRowsPerPage = 50

type problemService struct {
	ctx        *ctx.Context
	aggregator *Aggregator
	now        func() time.Time
}

type InterProblemService interface {
	List(reqCtx context.Context, req interface{}) (interface{}, interface{})
	AcknowledgeEdit(reqCtx context.Context, req interface{}) (interface{}, interface{})
	AcknowledgeCreate(reqCtx context.Context, req interface{}) (interface{}, interface{})
}

func newInterProblemService(ctx *ctx.Context) InterProblemService {
	return &problemService{
		ctx:        ctx,
		aggregator: NewAggregator(ctx, global.Config.Zabbix.Workers, global.Config.Zabbix.SearchLimit),
		now:        time.Now,
	}
}

func rowsPerPage() int {
	if global.Config.Zabbix.RowsPerPage > 0 {
		return global.Config.Zabbix.RowsPerPage
	}
	return defaultRowsPerPage
}

func periodDefault() string {
	if global.Config.Zabbix.PeriodDefault != "" {
		return global.Config.Zabbix.PeriodDefault
	}
	return "1h"
}

// List 合并所有启用服务的问题后统一排序分页, 单个服务失败只体现在 Errors 中
func (ps problemService) List(reqCtx context.Context, req interface{}) (interface{}, interface{}) {
	r := req.(*types.RequestProblemList)

	trail := zabbix.NewTrail()
	reqCtx = zabbix.WithTrail(reqCtx, trail)

	settings, err := ps.ctx.DB.Setting().Get()
	if err != nil {
		return nil, err
	}

	servers, err := listServers(ps.ctx, true)
	if err != nil {
		return nil, err
	}
	servers = filterServers(servers, r.ServerIds)

	size := rowsPerPage()
	q := NormalizeFilter(*r, ps.now(), size, periodDefault())

	problems, errs := ps.aggregator.Fetch(reqCtx, servers, q, time.Duration(settings.CacheTtl)*time.Second)
	SortProblems(problems, r.Sort, r.SortOrder)

	page := r.Page
	if page < 1 {
		page = 1
	}
	list, total := tools.Paginate(problems, page, size)

	redacted := make([]models.RemoteServer, 0, len(servers))
	for _, s := range servers {
		redacted = append(redacted, s.Redacted())
	}

	return types.ResponseProblemList{
		List:    list,
		Total:   total,
		Page:    page,
		Errors:  errs,
		Servers: redacted,
		Filter:  q,
		Debug:   trail.Entries(),
	}, nil
}

// SortProblems 合并后的排序, 默认按时间倒序; 相同键值按时间与事件 ID 倒序保证结果稳定
func SortProblems(problems []models.NormalizedProblem, field, order string) {
	asc := strings.EqualFold(order, zabbix.SortUp)

	var less func(a, b models.NormalizedProblem) int
	switch field {
	case "host":
		less = func(a, b models.NormalizedProblem) int { return strings.Compare(a.HostName(), b.HostName()) }
	case "severity":
		less = func(a, b models.NormalizedProblem) int { return a.Severity - b.Severity }
	case "name":
		less = func(a, b models.NormalizedProblem) int { return strings.Compare(a.Name, b.Name) }
	case "server":
		less = func(a, b models.NormalizedProblem) int { return strings.Compare(a.ServerName, b.ServerName) }
	default:
		less = func(a, b models.NormalizedProblem) int { return compareInt64(a.Clock, b.Clock) }
	}

	sort.SliceStable(problems, func(i, j int) bool {
		c := less(problems[i], problems[j])
		if c == 0 {
			c = compareInt64(problems[i].Clock, problems[j].Clock)
			if c == 0 {
				c = compareInt64(zabbix.FlexString(problems[i].EventID).Int64(), zabbix.FlexString(problems[j].EventID).Int64())
			}
			return c > 0
		}
		if asc {
			return c < 0
		}
		return c > 0
	})
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
