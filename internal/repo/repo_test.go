package repo

import (
	"fmt"
	"testing"
	"time"

	"ticketPlatform/internal/models"
	"ticketPlatform/pkg/client"
)

func newTestEntry(t *testing.T) InterEntryRepo {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := client.OpenSQLite(dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := client.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewRepoEntry(db)
}

func TestServerRepoKeepsRegistrationOrder(t *testing.T) {
	r := newTestEntry(t).Server()

	names := []string{"zeta", "alpha", "mid"}
	for i, name := range names {
		err := r.Create(models.RemoteServer{
			ID:       fmt.Sprintf("id-%d", 9-i),
			Name:     name,
			ApiUrl:   "http://" + name + "/api_jsonrpc.php",
			Enabled:  models.BoolPtr(true),
			CreateAt: int64(i + 1),
		})
		if err != nil {
			t.Fatalf("Create(%s) error = %v", name, err)
		}
	}

	list, err := r.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	for i, s := range list {
		if s.Name != names[i] {
			t.Errorf("list[%d] = %s, want %s", i, s.Name, names[i])
		}
	}
}

func TestServerRepoUpdateAndDelete(t *testing.T) {
	r := newTestEntry(t).Server()

	s := models.RemoteServer{ID: "abc", Name: "one", Enabled: models.BoolPtr(true), IncludeSubgroups: models.BoolPtr(true)}
	if err := r.Create(s); err != nil {
		t.Fatal(err)
	}

	s.Name = "renamed"
	s.Enabled = models.BoolPtr(false)
	s.IncludeSubgroups = models.BoolPtr(false)
	if err := r.Update(s); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, ok, err := r.Get("abc")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v", ok, err)
	}
	if got.Name != "renamed" || got.GetEnabled() || got.GetIncludeSubgroups() {
		t.Errorf("Update did not persist zero values: %+v", got)
	}

	if err := r.Delete("abc"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := r.Get("abc"); ok {
		t.Error("server still present after Delete")
	}
}

func TestServerRepoUpdateMeta(t *testing.T) {
	r := newTestEntry(t).Server()
	if err := r.Create(models.RemoteServer{ID: "s1", Name: "one", ApiVersion: "6.0.0"}); err != nil {
		t.Fatal(err)
	}

	prev, err := r.UpdateMeta("s1", models.ServerMeta{ApiVersion: "7.0.0", ConnectionStatus: models.ConnectionOk, LastReached: 42})
	if err != nil {
		t.Fatalf("UpdateMeta() error = %v", err)
	}
	if prev != "6.0.0" {
		t.Errorf("previous version = %q, want 6.0.0", prev)
	}

	got, _, _ := r.Get("s1")
	if got.ApiVersion != "7.0.0" || got.ConnectionStatus != models.ConnectionOk || got.LastReached != 42 {
		t.Errorf("meta not stored: %+v", got)
	}

	// 只更新状态时版本保持不变
	if _, err := r.UpdateMeta("s1", models.ServerMeta{ConnectionStatus: models.ConnectionProblem}); err != nil {
		t.Fatal(err)
	}
	got, _, _ = r.Get("s1")
	if got.ApiVersion != "7.0.0" || got.ConnectionStatus != models.ConnectionProblem {
		t.Errorf("partial meta update = %+v", got)
	}

	if _, err := r.UpdateMeta("missing", models.ServerMeta{ConnectionStatus: models.ConnectionOk}); err != nil {
		t.Errorf("UpdateMeta on unknown server error = %v, want nil", err)
	}
}

func TestSettingRepoDefaultsAndSave(t *testing.T) {
	r := newTestEntry(t).Setting()

	got, err := r.Get()
	if err != nil {
		t.Fatal(err)
	}
	if got.CacheTtl != 60 || got.LocalServerName != "Local server" {
		t.Errorf("defaults = %+v", got)
	}

	if err := r.Save(models.Settings{CacheTtl: 2, LocalServerName: "  HQ  "}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := r.Save(models.Settings{CacheTtl: 120, LocalServerName: "HQ"}); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	got, _ = r.Get()
	if got.CacheTtl != 120 || got.LocalServerName != "HQ" {
		t.Errorf("saved settings = %+v", got)
	}
}

func TestOperationLogList(t *testing.T) {
	r := newTestEntry(t).OperationLog()
	now := time.Now().Unix()
	for i := 0; i < 3; i++ {
		err := r.Create(models.OperationLog{ID: fmt.Sprintf("log-%d", i), UserName: "alice", CreatedAt: now + int64(i)})
		if err != nil {
			t.Fatal(err)
		}
	}

	list, total, err := r.List("alice", models.Page{Index: 1, Size: 2})
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(list) != 2 || list[0].ID != "log-2" {
		t.Errorf("List() = %v (total %d)", list, total)
	}
}
