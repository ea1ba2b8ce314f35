package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"ticketPlatform/config"
	"ticketPlatform/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/zeromicro/go-zero/core/logc"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDBClient 按配置打开 MySQL 或 SQLite, 并迁移表结构
func NewDBClient(conf config.Database, mode string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch conf.Type {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&collation=utf8mb4_general_ci&parseTime=True&loc=Local&timeout=%s",
			conf.User,
			conf.Pass,
			conf.Host,
			conf.Port,
			conf.DBName,
			conf.Timeout)
		dialector = mysql.Open(dsn)
	default:
		if dir := filepath.Dir(conf.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		dialector = sqlite.Open(conf.Path)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err == nil && conf.Type != "mysql" {
		err = singleWriter(db)
	}
	if err != nil {
		logc.Errorf(context.Background(), "failed to connect database: %s", err.Error())
		return nil, err
	}

	if err := Migrate(db); err != nil {
		logc.Error(context.Background(), err.Error())
		return nil, err
	}

	if mode == "debug" {
		db = db.Debug()
	} else {
		db.Logger = logger.Default.LogMode(logger.Silent)
	}

	return db, nil
}

// OpenSQLite 打开 SQLite 并限制为单连接, 测试中用于内存库
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := singleWriter(db); err != nil {
		return nil, err
	}
	return db, nil
}

// singleWriter SQLite 同一时刻只允许一个写事务, 并发查询回写元数据时排队执行
func singleWriter(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	return nil
}

// Migrate 检查表结构变化并迁移
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.RemoteServer{},
		&models.Settings{},
		&models.OperationLog{},
	)
}
