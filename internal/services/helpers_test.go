package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"ticketPlatform/config"
	"ticketPlatform/internal/cache"
	"ticketPlatform/internal/ctx"
	"ticketPlatform/internal/global"
	"ticketPlatform/internal/models"
	"ticketPlatform/internal/repo"
	"ticketPlatform/pkg/client"
	"ticketPlatform/pkg/zabbix"

	"github.com/bytedance/sonic"
)

const testVersion = "6.0.25"

type rpcHandler func(params map[string]interface{}) (interface{}, error)

// fakeRemote 最小化的 JSON-RPC 服务端, 按方法名分发, 记录每次调用的参数
type fakeRemote struct {
	mu       sync.Mutex
	calls    []string
	params   map[string][]map[string]interface{}
	handlers map[string]rpcHandler
	server   *httptest.Server
}

func newFakeRemote(t *testing.T) *fakeRemote {
	t.Helper()
	f := &fakeRemote{
		params:   make(map[string][]map[string]interface{}),
		handlers: make(map[string]rpcHandler),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeRemote) url() string {
	return f.server.URL + "/api_jsonrpc.php"
}

func (f *fakeRemote) handle(method string, h rpcHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method] = h
}

// reply 固定返回值
func (f *fakeRemote) reply(method string, result interface{}) {
	f.handle(method, func(map[string]interface{}) (interface{}, error) { return result, nil })
}

func (f *fakeRemote) fail(method, message string) {
	f.handle(method, func(map[string]interface{}) (interface{}, error) { return nil, errors.New(message) })
}

func (f *fakeRemote) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

func (f *fakeRemote) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRemote) lastParams(method string) map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.params[method]
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}

func (f *fakeRemote) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req struct {
		Method string                 `json:"method"`
		Params map[string]interface{} `json:"params"`
		Id     int                    `json:"id"`
	}
	if err := sonic.Unmarshal(body, &req); err != nil {
		// apiinfo.version 的 params 是空数组
		var loose struct {
			Method string `json:"method"`
		}
		_ = sonic.Unmarshal(body, &loose)
		req.Method = loose.Method
	}

	f.mu.Lock()
	f.calls = append(f.calls, req.Method)
	f.params[req.Method] = append(f.params[req.Method], req.Params)
	h, ok := f.handlers[req.Method]
	f.mu.Unlock()

	var (
		result interface{}
		err    error
	)
	switch {
	case ok:
		result, err = h(req.Params)
	case req.Method == "apiinfo.version":
		result = testVersion
	default:
		result = []interface{}{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		out, _ := sonic.Marshal(map[string]interface{}{
			"jsonrpc": "2.0",
			"error":   map[string]interface{}{"code": -32500, "message": "Application error.", "data": err.Error()},
			"id":      1,
		})
		_, _ = w.Write(out)
		return
	}
	out, _ := sonic.Marshal(map[string]interface{}{"jsonrpc": "2.0", "result": result, "id": 1})
	_, _ = w.Write(out)
}

func newTestContext(t *testing.T) *ctx.Context {
	t.Helper()

	global.Config = config.App{
		Zabbix: config.Zabbix{
			Timeout:       5 * time.Second,
			Workers:       4,
			RowsPerPage:   50,
			PeriodDefault: "1h",
			SearchLimit:   1000,
		},
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := client.OpenSQLite(dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := client.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	enforcer, err := client.NewMemoryEnforcer()
	if err != nil {
		t.Fatalf("enforcer: %v", err)
	}

	rc := cache.NewEntryCacheWith(cache.NewFileCache(filepath.Join(t.TempDir(), "cache.json")), cache.NewLookupCache())
	zc := zabbix.NewClient(zabbix.ClientConfig{Timeout: 5 * time.Second})

	c := ctx.NewContext(context.Background(), repo.NewRepoEntry(db), rc, zc, enforcer)
	if err := SeedPolicies(c, []string{"admin"}, []string{"user"}); err != nil {
		t.Fatalf("seed policies: %v", err)
	}
	return c
}

func addServer(t *testing.T, c *ctx.Context, id, name, url string, order int64) models.RemoteServer {
	t.Helper()
	s := models.RemoteServer{
		ID:               id,
		Name:             name,
		ApiUrl:           url,
		ApiToken:         "token-" + id,
		IncludeSubgroups: models.BoolPtr(false),
		Enabled:          models.BoolPtr(true),
		CreateAt:         order,
	}
	if err := c.DB.Server().Create(s); err != nil {
		t.Fatalf("create server %s: %v", id, err)
	}
	return s
}

func registeredServers(t *testing.T, c *ctx.Context) []models.RemoteServer {
	t.Helper()
	servers, err := listServers(c, false)
	if err != nil {
		t.Fatalf("listServers: %v", err)
	}
	return servers
}

func problemRows(ids ...string) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(ids))
	for i, id := range ids {
		rows = append(rows, map[string]interface{}{
			"eventid":      id,
			"clock":        fmt.Sprintf("%d", 1700000000+i),
			"severity":     "3",
			"name":         "Problem " + id,
			"acknowledged": "0",
			"r_eventid":    "0",
			"objectid":     "500" + id,
			"suppressed":   "0",
		})
	}
	return rows
}
