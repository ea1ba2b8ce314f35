package repo

import (
	"ticketPlatform/internal/models"

	"gorm.io/gorm"
)

type (
	OperationLogRepo struct {
		entryRepo
	}

	InterOperationLogRepo interface {
		Create(l models.OperationLog) error
		List(userName string, page models.Page) ([]models.OperationLog, int64, error)
	}
)

func newOperationLogInterface(db *gorm.DB, g InterGormDBCli) InterOperationLogRepo {
	return &OperationLogRepo{
		entryRepo{
			g:  g,
			db: db,
		},
	}
}

func (or OperationLogRepo) Create(l models.OperationLog) error {
	return or.g.Create(&models.OperationLog{}, &l)
}

// List 按时间倒序分页, page.Index 从 1 开始
func (or OperationLogRepo) List(userName string, page models.Page) ([]models.OperationLog, int64, error) {
	var (
		data  []models.OperationLog
		count int64
	)

	db := or.db.Model(&models.OperationLog{})
	if userName != "" {
		db = db.Where("user_name = ?", userName)
	}

	if err := db.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if page.Size <= 0 {
		page.Size = 20
	}
	if page.Index <= 0 {
		page.Index = 1
	}

	err := db.Order("created_at DESC").Limit(int(page.Size)).Offset(int((page.Index - 1) * page.Size)).Find(&data).Error
	if err != nil {
		return nil, 0, err
	}

	return data, count, nil
}
