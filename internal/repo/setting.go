package repo

import (
	"errors"

	"ticketPlatform/internal/models"

	"gorm.io/gorm"
)

type (
	SettingRepo struct {
		entryRepo
	}

	InterSettingRepo interface {
		Get() (models.Settings, error)
		Save(s models.Settings) error
	}
)

func newSettingInterface(db *gorm.DB, g InterGormDBCli) InterSettingRepo {
	return &SettingRepo{
		entryRepo{
			g:  g,
			db: db,
		},
	}
}

// Get 未保存过时返回默认配置
func (sr SettingRepo) Get() (models.Settings, error) {
	var data models.Settings
	err := sr.db.Model(&models.Settings{}).Where("id = ?", 1).First(&data).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.Settings{}, err
	}
	return data.Normalize(), nil
}

func (sr SettingRepo) Save(s models.Settings) error {
	s = s.Normalize()
	return sr.g.Upsert(Upsert{
		Value:   &s,
		Keys:    []string{"id"},
		Columns: []string{"cache_ttl", "local_server_name"},
	})
}
