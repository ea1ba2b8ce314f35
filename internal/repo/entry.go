package repo

import (
	"gorm.io/gorm"
)

type (
	entryRepo struct {
		g  InterGormDBCli
		db *gorm.DB
	}

	InterEntryRepo interface {
		DB() *gorm.DB
		Server() InterServerRepo
		Setting() InterSettingRepo
		OperationLog() InterOperationLogRepo
	}
)

func NewRepoEntry(db *gorm.DB) InterEntryRepo {
	g := NewInterGormDBCli(db)
	return &entryRepo{
		g:  g,
		db: db,
	}
}

func (e *entryRepo) DB() *gorm.DB                        { return e.db }
func (e *entryRepo) Server() InterServerRepo             { return newServerInterface(e.db, e.g) }
func (e *entryRepo) Setting() InterSettingRepo           { return newSettingInterface(e.db, e.g) }
func (e *entryRepo) OperationLog() InterOperationLogRepo { return newOperationLogInterface(e.db, e.g) }
