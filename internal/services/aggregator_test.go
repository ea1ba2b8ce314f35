package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"ticketPlatform/internal/models"
	"ticketPlatform/pkg/zabbix"

	"github.com/google/go-cmp/cmp"
)

func testQuery() models.CanonicalQuery {
	return models.CanonicalQuery{
		Mode:     models.ModeRecentUnresolved,
		Recent:   models.BoolPtr(true),
		Limit:    50,
		ShowTags: true,
		Tags:     []zabbix.TagFilter{},
	}
}

func TestAggregatorFetchIsServedFromCacheWithinTtl(t *testing.T) {
	c := newTestContext(t)
	remote := newFakeRemote(t)
	remote.reply("problem.get", problemRows("11", "12"))
	addServer(t, c, "a", "Alpha", remote.url(), 1)

	a := NewAggregator(c, 4, 1000)

	first, errs := a.Fetch(context.Background(), registeredServers(t, c), testQuery(), time.Minute)
	if len(errs) != 0 {
		t.Fatalf("first Fetch() errors = %v", errs)
	}
	if len(first) != 2 {
		t.Fatalf("first Fetch() returned %d problems, want 2", len(first))
	}
	calls := remote.total()

	second, errs := a.Fetch(context.Background(), registeredServers(t, c), testQuery(), time.Minute)
	if len(errs) != 0 {
		t.Fatalf("second Fetch() errors = %v", errs)
	}
	if remote.total() != calls {
		t.Errorf("second Fetch() made %d remote calls, want 0", remote.total()-calls)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached result differs (-first +second):\n%s", diff)
	}
}

func TestAggregatorRecordsServerMeta(t *testing.T) {
	c := newTestContext(t)
	remote := newFakeRemote(t)
	remote.reply("problem.get", problemRows("11"))
	addServer(t, c, "a", "Alpha", remote.url(), 1)

	a := NewAggregator(c, 4, 1000)
	a.now = func() time.Time { return time.Unix(1700001000, 0) }
	a.Fetch(context.Background(), registeredServers(t, c), testQuery(), time.Minute)

	s, _, err := c.DB.Server().Get("a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if s.ApiVersion != testVersion || s.ConnectionStatus != models.ConnectionOk || s.LastReached != 1700001000 {
		t.Errorf("server meta = %q/%q/%d, want %q/ok/1700001000", s.ApiVersion, s.ConnectionStatus, s.LastReached, testVersion)
	}
}

func TestAggregatorPartialFailureKeepsServerOrder(t *testing.T) {
	c := newTestContext(t)

	down := newFakeRemote(t)
	down.fail("user.get", "Not authorized.")
	healthy := newFakeRemote(t)
	healthy.reply("problem.get", problemRows("21", "22"))
	broken := newFakeRemote(t)
	broken.fail("problem.get", "Invalid params.")

	addServer(t, c, "a", "Alpha", down.url(), 1)
	addServer(t, c, "b", "Bravo", healthy.url(), 2)
	addServer(t, c, "c", "Charlie", broken.url(), 3)

	a := NewAggregator(c, 4, 1000)
	problems, errs := a.Fetch(context.Background(), registeredServers(t, c), testQuery(), time.Minute)

	if len(problems) != 2 {
		t.Fatalf("Fetch() returned %d problems, want 2", len(problems))
	}
	for _, p := range problems {
		if p.ServerID != "b" {
			t.Errorf("problem %s from server %s, want b", p.EventID, p.ServerID)
		}
	}

	want := []models.ServerError{
		{Server: "Alpha", Error: "Not authorized."},
		{Server: "Charlie", Error: "Invalid params."},
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}

	for _, id := range []string{"a", "c"} {
		s, _, _ := c.DB.Server().Get(id)
		if s.ConnectionStatus != models.ConnectionProblem {
			t.Errorf("server %s connection status = %q, want problem", id, s.ConnectionStatus)
		}
	}
}

func TestAggregatorTransportFailureInOrder(t *testing.T) {
	c := newTestContext(t)

	first := newFakeRemote(t)
	first.reply("problem.get", problemRows("11"))
	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL + "/api_jsonrpc.php"
	closed.Close()
	last := newFakeRemote(t)
	last.reply("problem.get", problemRows("31"))

	addServer(t, c, "a", "Alpha", first.url(), 1)
	addServer(t, c, "b", "Bravo", closedURL, 2)
	addServer(t, c, "c", "Charlie", last.url(), 3)

	a := NewAggregator(c, 4, 1000)
	problems, errs := a.Fetch(context.Background(), registeredServers(t, c), testQuery(), time.Minute)

	if len(problems) != 2 {
		t.Fatalf("Fetch() returned %d problems, want 2", len(problems))
	}
	if len(errs) != 1 || errs[0].Server != "Bravo" || errs[0].Error == "" {
		t.Fatalf("errors = %+v, want one record for Bravo", errs)
	}

	s, _, _ := c.DB.Server().Get("b")
	if s.ConnectionStatus != models.ConnectionProblem {
		t.Errorf("connection status = %q, want problem", s.ConnectionStatus)
	}
}

func TestAggregatorNullItemListFails(t *testing.T) {
	c := newTestContext(t)
	remote := newFakeRemote(t)
	remote.reply("problem.get", nil)
	addServer(t, c, "a", "Alpha", remote.url(), 1)

	a := NewAggregator(c, 4, 1000)
	problems, errs := a.Fetch(context.Background(), registeredServers(t, c), testQuery(), time.Minute)

	if len(problems) != 0 {
		t.Errorf("Fetch() returned %d problems, want 0", len(problems))
	}
	want := []models.ServerError{{Server: "Alpha", Error: "Invalid JSON-RPC response."}}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}

	s, _, _ := c.DB.Server().Get("a")
	if s.ConnectionStatus != models.ConnectionProblem {
		t.Errorf("connection status = %q, want problem", s.ConnectionStatus)
	}

	// 失败结果不写缓存, 下一次查询重新请求远端
	remote.reply("problem.get", problemRows("1"))
	problems, _ = a.Fetch(context.Background(), registeredServers(t, c), testQuery(), time.Minute)
	if len(problems) != 1 || remote.count("problem.get") != 2 {
		t.Errorf("second fetch returned %d problems after %d calls, want 1 after 2", len(problems), remote.count("problem.get"))
	}
}

func TestAggregatorUnknownHostGroupReturnsNothing(t *testing.T) {
	c := newTestContext(t)
	remote := newFakeRemote(t)
	remote.reply("problem.get", problemRows("1"))
	s := addServer(t, c, "a", "Alpha", remote.url(), 1)
	s.HostGroup = "Missing"
	if err := c.DB.Server().Update(s); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	a := NewAggregator(c, 4, 1000)
	problems, errs := a.Fetch(context.Background(), registeredServers(t, c), testQuery(), time.Minute)
	if len(problems) != 0 || len(errs) != 0 {
		t.Errorf("Fetch() = %d problems, %v errors, want none", len(problems), errs)
	}
	if remote.count("problem.get") != 0 {
		t.Errorf("problem.get called %d times without a resolved scope", remote.count("problem.get"))
	}

	remote.reply("hostgroup.get", []map[string]interface{}{{"groupid": "7", "name": "Missing"}})
	problems, _ = a.Fetch(context.Background(), registeredServers(t, c), testQuery(), time.Minute)
	if len(problems) != 1 {
		t.Fatalf("Fetch() returned %d problems with a resolved group, want 1", len(problems))
	}
	if diff := cmp.Diff([]interface{}{"7"}, remote.lastParams("problem.get")["groupids"]); diff != "" {
		t.Errorf("groupids mismatch:\n%s", diff)
	}
}

func TestAggregatorSkipsDisabledServers(t *testing.T) {
	c := newTestContext(t)
	remote := newFakeRemote(t)
	s := addServer(t, c, "a", "Alpha", remote.url(), 1)
	s.Enabled = models.BoolPtr(false)
	if err := c.DB.Server().Update(s); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	a := NewAggregator(c, 4, 1000)
	problems, errs := a.Fetch(context.Background(), registeredServers(t, c), testQuery(), time.Minute)
	if len(problems) != 0 || len(errs) != 0 || remote.total() != 0 {
		t.Errorf("disabled server produced %d problems, %d errors, %d calls", len(problems), len(errs), remote.total())
	}
}

func TestAggregatorHostFilterWithoutHostsSkipsServer(t *testing.T) {
	c := newTestContext(t)
	remote := newFakeRemote(t)
	remote.reply("host.get", []interface{}{})
	remote.reply("problem.get", problemRows("31"))
	addServer(t, c, "a", "Alpha", remote.url(), 1)

	q := testQuery()
	q.Host = "no-such-host"

	a := NewAggregator(c, 4, 1000)
	for i := 0; i < 2; i++ {
		problems, errs := a.Fetch(context.Background(), registeredServers(t, c), q, time.Minute)
		if len(problems) != 0 || len(errs) != 0 {
			t.Fatalf("Fetch() = %d problems, %v errors, want none", len(problems), errs)
		}
	}

	if n := remote.count("problem.get"); n != 0 {
		t.Errorf("problem.get called %d times, want 0", n)
	}
	if n := remote.count("host.get"); n != 2 {
		t.Errorf("host.get called %d times, want 2 (empty result must not be cached)", n)
	}
}

func TestAggregatorHistoryModeQueriesEventLog(t *testing.T) {
	c := newTestContext(t)
	remote := newFakeRemote(t)
	remote.handle("event.get", func(params map[string]interface{}) (interface{}, error) {
		if _, ok := params["value"]; ok {
			return problemRows("41"), nil
		}
		return []interface{}{}, nil
	})
	addServer(t, c, "a", "Alpha", remote.url(), 1)

	q := testQuery()
	q.Mode = models.ModeHistory

	a := NewAggregator(c, 4, 1000)
	problems, errs := a.Fetch(context.Background(), registeredServers(t, c), q, time.Minute)
	if len(errs) != 0 || len(problems) != 1 {
		t.Fatalf("Fetch() = %d problems, %v errors, want 1 problem", len(problems), errs)
	}
	if n := remote.count("problem.get"); n != 0 {
		t.Errorf("problem.get called %d times in history mode", n)
	}
}

func TestAggregatorDropsSuppressedProblems(t *testing.T) {
	c := newTestContext(t)
	remote := newFakeRemote(t)
	remote.reply("problem.get", problemRows("51", "52"))
	remote.handle("event.get", func(params map[string]interface{}) (interface{}, error) {
		if _, ok := params["selectHosts"]; !ok {
			return []interface{}{}, nil
		}
		return []map[string]interface{}{
			{
				"eventid":  "51",
				"objectid": "90051",
				"hosts":    []map[string]interface{}{{"hostid": "10084", "name": "web-01", "host": "web01"}},
				"acknowledges": []map[string]interface{}{
					{"clock": "1700000100", "action": "32", "suppress_until": "0"},
				},
			},
			{
				"eventid":  "52",
				"objectid": "90052",
				"hosts":    []map[string]interface{}{{"hostid": "10085", "name": "", "host": "db01"}},
			},
		}, nil
	})
	addServer(t, c, "a", "Alpha", remote.url(), 1)

	a := NewAggregator(c, 4, 1000)
	problems, errs := a.Fetch(context.Background(), registeredServers(t, c), testQuery(), time.Minute)
	if len(errs) != 0 {
		t.Fatalf("Fetch() errors = %v", errs)
	}
	if len(problems) != 1 || problems[0].EventID != "52" {
		t.Fatalf("Fetch() = %+v, want only event 52", problems)
	}

	want := []models.ProblemHost{{HostID: "10085", Name: "db01"}}
	if diff := cmp.Diff(want, problems[0].Hosts); diff != "" {
		t.Errorf("hosts mismatch (-want +got):\n%s", diff)
	}
	if problems[0].ObjectID != "90052" {
		t.Errorf("ObjectID = %q, want 90052", problems[0].ObjectID)
	}

	if got := remote.lastParams("problem.get")["suppressed"]; got != false {
		t.Errorf("problem.get suppressed = %v, want false", got)
	}
}

func TestAggregatorEnrichmentFailureDegrades(t *testing.T) {
	c := newTestContext(t)
	remote := newFakeRemote(t)
	remote.reply("problem.get", problemRows("61"))
	remote.fail("event.get", "No permissions.")
	remote.fail("alert.get", "No permissions.")
	addServer(t, c, "a", "Alpha", remote.url(), 1)

	a := NewAggregator(c, 4, 1000)
	problems, errs := a.Fetch(context.Background(), registeredServers(t, c), testQuery(), time.Minute)
	if len(errs) != 0 {
		t.Fatalf("Fetch() errors = %v, want none", errs)
	}
	if len(problems) != 1 {
		t.Fatalf("Fetch() returned %d problems, want 1", len(problems))
	}
	if problems[0].Hosts == nil || problems[0].Tags == nil {
		t.Errorf("Hosts/Tags must be empty slices, got %v/%v", problems[0].Hosts, problems[0].Tags)
	}
	if problems[0].Actions != (models.ActionsSummary{}) {
		t.Errorf("Actions = %+v, want zero value", problems[0].Actions)
	}
}

func TestAggregatorVersionChangeClearsCache(t *testing.T) {
	c := newTestContext(t)
	remote := newFakeRemote(t)
	remote.reply("problem.get", problemRows("71"))
	s := addServer(t, c, "a", "Alpha", remote.url(), 1)

	s.ApiVersion = "5.0.0"
	if err := c.DB.Server().Update(s); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := c.Cache.Result().Set("a", "stale", []models.NormalizedProblem{}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	a := NewAggregator(c, 4, 1000)
	a.Fetch(context.Background(), registeredServers(t, c), testQuery(), time.Minute)

	if _, ok := c.Cache.Result().Get("a", "stale", time.Hour); ok {
		t.Errorf("cache entry survived a version change")
	}
}

func TestIsSuppressed(t *testing.T) {
	now := time.Unix(1700000000, 0)
	ack := func(clock, action int64, until string) zabbix.Acknowledge {
		return zabbix.Acknowledge{
			Clock:         zabbix.FlexString(strconv.FormatInt(clock, 10)),
			Action:        zabbix.FlexString(strconv.FormatInt(action, 10)),
			SuppressUntil: zabbix.FlexString(until),
		}
	}

	tests := []struct {
		name string
		acks []zabbix.Acknowledge
		want bool
	}{
		{"no records", nil, false},
		{"indefinite suppress", []zabbix.Acknowledge{ack(10, 32, "0")}, true},
		{"suppress in future", []zabbix.Acknowledge{ack(10, 32, "1700000500")}, true},
		{"suppress expired", []zabbix.Acknowledge{ack(10, 32, "1699999999")}, false},
		{"latest unsuppress wins", []zabbix.Acknowledge{ack(10, 32, "0"), ack(20, 64, "0")}, false},
		{"latest suppress wins", []zabbix.Acknowledge{ack(30, 34, "0"), ack(20, 64, "0")}, true},
		{"unsuppress without suppress_until wins", []zabbix.Acknowledge{ack(10, 32, "0"), ack(20, 64, "")}, false},
		{"suppress without suppress_until is indefinite", []zabbix.Acknowledge{ack(10, 32, "")}, true},
		{"records without suppression bits are skipped", []zabbix.Acknowledge{ack(40, 4, ""), ack(10, 32, "0")}, true},
		{"message only", []zabbix.Acknowledge{ack(10, 4, "0")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSuppressed(tt.acks, now); got != tt.want {
				t.Errorf("isSuppressed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildProblemParams(t *testing.T) {
	q := testQuery()
	q.Severities = []int{4, 5}
	q.Name = "cpu"
	q.Acknowledged = models.BoolPtr(false)
	q.Tags = []zabbix.TagFilter{{Tag: "service", Operator: 1, Value: "web"}}
	q.EvalType = models.TagEvalOr

	params := buildProblemParams(q, []string{"7"}, nil)

	if diff := cmp.Diff([]int{4, 5}, params["severities"]); diff != "" {
		t.Errorf("severities mismatch:\n%s", diff)
	}
	if params["acknowledged"] != false || params["recent"] != true || params["suppressed"] != false {
		t.Errorf("flags = ack %v recent %v suppressed %v", params["acknowledged"], params["recent"], params["suppressed"])
	}
	if params["evaltype"] != models.TagEvalOr {
		t.Errorf("evaltype = %v, want %d", params["evaltype"], models.TagEvalOr)
	}
	if _, ok := params["hostids"]; ok {
		t.Errorf("hostids set without a host filter")
	}
	if diff := cmp.Diff(map[string]string{"name": "*cpu*"}, params["search"]); diff != "" {
		t.Errorf("search mismatch:\n%s", diff)
	}
}
