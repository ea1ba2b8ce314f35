package cache

import (
	"path/filepath"
	"testing"
	"time"

	"ticketPlatform/internal/models"
	"ticketPlatform/pkg/zabbix"

	"github.com/google/go-cmp/cmp"
)

func samplePayload() []models.NormalizedProblem {
	return []models.NormalizedProblem{
		{
			EventID:      "1001",
			ServerID:     "a",
			Clock:        1700000000,
			Severity:     4,
			Name:         "High CPU load on web-01",
			Acknowledged: true,
			ObjectID:     "13491",
			Tags:         []zabbix.Tag{{Tag: "service", Value: "web"}},
			Hosts:        []models.ProblemHost{{HostID: "10084", Name: "web-01"}},
			ServerName:   "Main",
			ServerWebUrl: "http://zbx.example.com/",
			Actions:      models.ActionsSummary{Count: 3, HasPending: true},
		},
		{
			EventID:  "1002",
			ServerID: "a",
			Tags:     []zabbix.Tag{},
			Hosts:    []models.ProblemHost{},
		},
	}
}

func newTestFileCache(t *testing.T, now *time.Time) *FileCache {
	t.Helper()
	c := NewFileCache(filepath.Join(t.TempDir(), "cache.json"))
	c.now = func() time.Time { return *now }
	return c
}

func TestFileCacheRoundTrip(t *testing.T) {
	now := time.Unix(1700000000, 0)
	c := newTestFileCache(t, &now)

	want := samplePayload()
	if err := c.Set("a", "fp1", want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok := c.Get("a", "fp1", 60*time.Second)
	if !ok {
		t.Fatal("Get() miss right after Set")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("payload changed through cache (-want +got):\n%s", diff)
	}

	// 新实例读取同一文件, 模拟另一次进程调用
	other := NewFileCache(c.path)
	other.now = c.now
	if _, ok := other.Get("a", "fp1", 60*time.Second); !ok {
		t.Error("entry not visible to a second cache instance")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	now := time.Unix(1700000000, 0)
	c := newTestFileCache(t, &now)

	if err := c.Set("a", "fp1", samplePayload()); err != nil {
		t.Fatal(err)
	}

	now = now.Add(60 * time.Second)
	if _, ok := c.Get("a", "fp1", 60*time.Second); !ok {
		t.Error("entry expired at exactly ttl, want still valid")
	}

	now = now.Add(time.Second)
	if _, ok := c.Get("a", "fp1", 60*time.Second); ok {
		t.Error("entry returned after ttl elapsed")
	}

	if _, ok := c.Get("a", "unknown", 60*time.Second); ok {
		t.Error("unknown fingerprint returned a payload")
	}
}

func TestFileCacheClearServerScopedAndIdempotent(t *testing.T) {
	now := time.Unix(1700000000, 0)
	c := newTestFileCache(t, &now)

	for _, s := range []string{"a", "b"} {
		if err := c.Set(s, "fp", samplePayload()); err != nil {
			t.Fatal(err)
		}
	}

	if err := c.ClearServer("a"); err != nil {
		t.Fatalf("ClearServer() error = %v", err)
	}
	if _, ok := c.Get("a", "fp", time.Minute); ok {
		t.Error("server a entry survived ClearServer")
	}
	if _, ok := c.Get("b", "fp", time.Minute); !ok {
		t.Error("ClearServer(a) removed server b entry")
	}

	if err := c.ClearServer("a"); err != nil {
		t.Errorf("second ClearServer() error = %v", err)
	}
	if err := c.ClearServer("never-seen"); err != nil {
		t.Errorf("ClearServer(unknown) error = %v", err)
	}
}

func TestFileCacheCorruptFileIsEmpty(t *testing.T) {
	now := time.Unix(1700000000, 0)
	c := newTestFileCache(t, &now)

	if err := writeFile(c.path, "{not json"); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("a", "fp", time.Minute); ok {
		t.Error("corrupt cache file produced a hit")
	}
	if err := c.Set("a", "fp", nil); err != nil {
		t.Fatalf("Set() over corrupt file error = %v", err)
	}
	got, ok := c.Get("a", "fp", time.Minute)
	if !ok || got == nil || len(got) != 0 {
		t.Errorf("Get() = %v, %v; want empty non-nil payload", got, ok)
	}
}

func baseQuery() models.CanonicalQuery {
	from, till := int64(1700000000), int64(1700003600)
	return models.CanonicalQuery{
		Mode:       models.ModeRecentUnresolved,
		TimeFrom:   &from,
		TimeTill:   &till,
		Severities: []int{2, 4},
		Tags:       []zabbix.TagFilter{{Tag: "service", Operator: zabbix.TagOperatorLike, Value: "web"}},
		Limit:      50,
	}
}

func baseServer() models.RemoteServer {
	return models.RemoteServer{
		ID:         "a",
		HostGroup:  "Linux servers",
		ApiVersion: "7.0.0",
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	base := Fingerprint(baseQuery(), baseServer())

	if again := Fingerprint(baseQuery(), baseServer()); again != base {
		t.Fatalf("Fingerprint not deterministic: %s != %s", again, base)
	}

	reordered := baseQuery()
	reordered.Severities = []int{4, 2}
	if Fingerprint(reordered, baseServer()) != base {
		t.Error("severity order changed the fingerprint")
	}

	mutations := map[string]func(q *models.CanonicalQuery, s *models.RemoteServer){
		"severities": func(q *models.CanonicalQuery, s *models.RemoteServer) { q.Severities = []int{2} },
		"time from": func(q *models.CanonicalQuery, s *models.RemoteServer) {
			v := *q.TimeFrom - 1
			q.TimeFrom = &v
		},
		"time till unset": func(q *models.CanonicalQuery, s *models.RemoteServer) { q.TimeTill = nil },
		"tag value": func(q *models.CanonicalQuery, s *models.RemoteServer) {
			q.Tags = []zabbix.TagFilter{{Tag: "service", Operator: zabbix.TagOperatorLike, Value: "db"}}
		},
		"no tags":           func(q *models.CanonicalQuery, s *models.RemoteServer) { q.Tags = nil },
		"host group":        func(q *models.CanonicalQuery, s *models.RemoteServer) { s.HostGroup = "Windows" },
		"include subgroups": func(q *models.CanonicalQuery, s *models.RemoteServer) { s.IncludeSubgroups = models.BoolPtr(true) },
		"api version":       func(q *models.CanonicalQuery, s *models.RemoteServer) { s.ApiVersion = "7.2.0" },
		"server id":         func(q *models.CanonicalQuery, s *models.RemoteServer) { s.ID = "b" },
		"acknowledged false": func(q *models.CanonicalQuery, s *models.RemoteServer) {
			q.Acknowledged = models.BoolPtr(false)
		},
		"mode": func(q *models.CanonicalQuery, s *models.RemoteServer) { q.Mode = models.ModeHistory },
	}

	seen := map[string]string{base: "base"}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			q, s := baseQuery(), baseServer()
			mutate(&q, &s)
			fp := Fingerprint(q, s)
			if prev, dup := seen[fp]; dup {
				t.Errorf("fingerprint collides with %q", prev)
			}
			seen[fp] = name
		})
	}
}

func TestLookupCacheClearServer(t *testing.T) {
	l := NewLookupCache()
	l.Set("a", LookupUser, "1", "Admin")
	l.Set("ab", LookupUser, "1", "Other")

	l.ClearServer("a")

	if _, ok := l.Get("a", LookupUser, "1"); ok {
		t.Error("lookup entry for server a survived ClearServer")
	}
	if v, ok := l.Get("ab", LookupUser, "1"); !ok || v != "Other" {
		t.Errorf("server ab entry = %v, %v", v, ok)
	}
}
