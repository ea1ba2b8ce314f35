package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInitConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: \"8080\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	app, err := InitConfig(path)
	if err != nil {
		t.Fatalf("InitConfig() error = %v", err)
	}
	if app.Server.Port != "8080" {
		t.Errorf("port = %q, want 8080", app.Server.Port)
	}
	if app.Zabbix.Timeout != 15*time.Second {
		t.Errorf("timeout = %v, want 15s", app.Zabbix.Timeout)
	}
	if app.Zabbix.RowsPerPage != 50 || app.Zabbix.PeriodDefault != "1h" {
		t.Errorf("unexpected zabbix defaults %+v", app.Zabbix)
	}
	if app.Database.Type != "sqlite" || app.Cache.Backend != "file" {
		t.Errorf("unexpected storage defaults %+v %+v", app.Database, app.Cache)
	}
}

func TestValidate(t *testing.T) {
	app := App{
		Database: Database{Type: "postgres"},
		Cache:    Cache{Backend: "file"},
		Zabbix:   Zabbix{RowsPerPage: 50},
	}
	if err := app.Validate(); err == nil {
		t.Error("Validate() accepted an unsupported database type")
	}

	app.Database.Type = "mysql"
	app.Local = Local{Enabled: true}
	if err := app.Validate(); err == nil {
		t.Error("Validate() accepted a local endpoint without url")
	}
}

func TestInitConfigEnvOverride(t *testing.T) {
	t.Setenv("TICKET_CASBIN_ADMINROLES", "admin,ops")
	t.Setenv("TICKET_ZABBIX_TIMEOUT", "3s")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	app, err := InitConfig(path)
	if err != nil {
		t.Fatalf("InitConfig() error = %v", err)
	}
	if len(app.Casbin.AdminRoles) != 2 || app.Casbin.AdminRoles[1] != "ops" {
		t.Errorf("admin roles = %v, want [admin ops]", app.Casbin.AdminRoles)
	}
	if app.Zabbix.Timeout != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", app.Zabbix.Timeout)
	}
}
