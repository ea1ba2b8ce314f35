package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type App struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Redis    Redis    `mapstructure:"redis"`
	Cache    Cache    `mapstructure:"cache"`
	Log      Log      `mapstructure:"log"`
	Zabbix   Zabbix   `mapstructure:"zabbix"`
	Local    Local    `mapstructure:"local"`
	Jobs     Jobs     `mapstructure:"jobs"`
	Casbin   Casbin   `mapstructure:"casbin"`
}

type Server struct {
	Port string `mapstructure:"port"`
	// Mode debug / release
	Mode string `mapstructure:"mode"`
}

type Database struct {
	// Type mysql / sqlite
	Type    string `mapstructure:"type"`
	Host    string `mapstructure:"host"`
	Port    string `mapstructure:"port"`
	User    string `mapstructure:"user"`
	Pass    string `mapstructure:"pass"`
	DBName  string `mapstructure:"dbName"`
	Timeout string `mapstructure:"timeout"`
	Path    string `mapstructure:"path"`
}

type Redis struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Pass string `mapstructure:"pass"`
	DB   int    `mapstructure:"db"`
}

type Cache struct {
	// Backend redis / file
	Backend string `mapstructure:"backend"`
	File    string `mapstructure:"file"`
}

type Log struct {
	Mode     string `mapstructure:"mode"`
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
	Path     string `mapstructure:"path"`
}

type Zabbix struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	Workers     int           `mapstructure:"workers"`
	RowsPerPage int           `mapstructure:"rowsPerPage"`
	// PeriodDefault 未指定 from 时的默认时间范围, 例如 1h
	PeriodDefault string `mapstructure:"periodDefault"`
	SearchLimit   int    `mapstructure:"searchLimit"`
	// ServersFile 启动时导入的服务列表
	ServersFile string `mapstructure:"serversFile"`
}

// Local 部署本服务的主机自身的 API, 不做版本探测
type Local struct {
	Enabled  bool   `mapstructure:"enabled"`
	ApiUrl   string `mapstructure:"apiUrl"`
	ApiToken string `mapstructure:"apiToken"`
}

type Jobs struct {
	ConnectionCheck string `mapstructure:"connectionCheck"`
}

type Casbin struct {
	// AdminRoles 首次启动写入的管理员角色
	AdminRoles []string `mapstructure:"adminRoles"`
	UserRoles  []string `mapstructure:"userRoles"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "9001")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.path", "data/ticket.db")
	v.SetDefault("database.timeout", "10s")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("cache.backend", "file")
	v.SetDefault("cache.file", filepath.Join(os.TempDir(), "ticket_platform_cache.json"))
	v.SetDefault("log.mode", "console")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "plain")
	v.SetDefault("zabbix.timeout", 15*time.Second)
	v.SetDefault("zabbix.workers", 8)
	v.SetDefault("zabbix.rowsPerPage", 50)
	v.SetDefault("zabbix.periodDefault", "1h")
	v.SetDefault("zabbix.searchLimit", 1000)
	v.SetDefault("jobs.connectionCheck", "*/5 * * * *")
	v.SetDefault("casbin.adminRoles", []string{"admin"})
	v.SetDefault("casbin.userRoles", []string{"user"})
}

// InitConfig 读取配置文件, 文件不存在时使用默认值, 环境变量前缀 TICKET
func InitConfig(path string) (App, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("TICKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return App{}, err
		}
	}

	var app App
	// 环境变量中的列表以逗号分隔, 例如 TICKET_CASBIN_ADMINROLES=admin,ops
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&app, hook); err != nil {
		return App{}, err
	}

	return app, app.Validate()
}

func (a App) Validate() error {
	switch a.Database.Type {
	case "mysql", "sqlite":
	default:
		return errors.New("database.type must be mysql or sqlite")
	}
	switch a.Cache.Backend {
	case "redis", "file":
	default:
		return errors.New("cache.backend must be redis or file")
	}
	if a.Zabbix.RowsPerPage <= 0 {
		return errors.New("zabbix.rowsPerPage must be positive")
	}
	if a.Local.Enabled && a.Local.ApiUrl == "" {
		return errors.New("local.apiUrl is required when local.enabled is set")
	}
	return nil
}
