package repo

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormDBCli struct {
	db *gorm.DB
}

// InterGormDBCli 写操作统一走事务, 读操作直接使用 *gorm.DB
type InterGormDBCli interface {
	Create(table, value interface{}) error
	Upsert(value Upsert) error
	Updates(value Updates) error
	Delete(value Delete) error
	Transaction(fn func(tx *gorm.DB) error) error
}

func NewInterGormDBCli(db *gorm.DB) InterGormDBCli {
	return &GormDBCli{
		db: db,
	}
}

// Create value 需为指针
func (g GormDBCli) Create(table, value interface{}) error {
	return g.wrap(func(tx *gorm.DB) error {
		return tx.Model(table).Create(value).Error
	}, "数据写入失败")
}

// Upsert 主键冲突时只覆盖 Columns 中的列
func (g GormDBCli) Upsert(value Upsert) error {
	return g.wrap(func(tx *gorm.DB) error {
		keys := make([]clause.Column, 0, len(value.Keys))
		for _, k := range value.Keys {
			keys = append(keys, clause.Column{Name: k})
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   keys,
			DoUpdates: clause.AssignmentColumns(value.Columns),
		}).Create(value.Value).Error
	}, "数据保存失败")
}

// Updates Updates 为 map 时零值字段同样会被写入
func (g GormDBCli) Updates(value Updates) error {
	return g.wrap(func(tx *gorm.DB) error {
		return applyWhere(tx.Model(value.Table), value.Where).Updates(value.Updates).Error
	}, "数据更新失败")
}

func (g GormDBCli) Delete(value Delete) error {
	return g.wrap(func(tx *gorm.DB) error {
		return applyWhere(tx, value.Where).Delete(value.Table).Error
	}, "数据删除失败")
}

// Transaction 多步读写需要在同一事务内完成时使用
func (g GormDBCli) Transaction(fn func(tx *gorm.DB) error) error {
	return g.wrap(fn, "事务执行失败")
}

func (g GormDBCli) wrap(fn func(tx *gorm.DB) error, message string) error {
	if err := g.db.Transaction(fn); err != nil {
		return fmt.Errorf("%s -> %w", message, err)
	}
	return nil
}

func applyWhere(tx *gorm.DB, where map[string]interface{}) *gorm.DB {
	for column, val := range where {
		tx = tx.Where(column, val)
	}
	return tx
}

type Updates struct {
	Table   interface{}
	Where   map[string]interface{}
	Updates interface{}
}

// Delete Table 需为模型指针
type Delete struct {
	Table interface{}
	Where map[string]interface{}
}

// Upsert Value 需为指针, Keys 为冲突判断列
type Upsert struct {
	Value   interface{}
	Keys    []string
	Columns []string
}
