package repo

import (
	"errors"
	"time"

	"ticketPlatform/internal/models"

	"gorm.io/gorm"
)

type (
	ServerRepo struct {
		entryRepo
	}

	// InterServerRepo 远端服务注册表
	InterServerRepo interface {
		List() ([]models.RemoteServer, error)
		Get(id string) (models.RemoteServer, bool, error)
		Create(s models.RemoteServer) error
		Update(s models.RemoteServer) error
		Delete(id string) error
		UpdateMeta(id string, meta models.ServerMeta) (string, error)
	}
)

func newServerInterface(db *gorm.DB, g InterGormDBCli) InterServerRepo {
	return &ServerRepo{
		entryRepo{
			g:  g,
			db: db,
		},
	}
}

// List 按注册顺序返回
func (sr ServerRepo) List() ([]models.RemoteServer, error) {
	var data []models.RemoteServer
	err := sr.db.Model(&models.RemoteServer{}).Order("create_at ASC").Order("id ASC").Find(&data).Error
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (sr ServerRepo) Get(id string) (models.RemoteServer, bool, error) {
	var data models.RemoteServer
	err := sr.db.Model(&models.RemoteServer{}).Where("id = ?", id).First(&data).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RemoteServer{}, false, nil
	}
	if err != nil {
		return models.RemoteServer{}, false, err
	}
	return data, true, nil
}

func (sr ServerRepo) Create(s models.RemoteServer) error {
	if s.CreateAt == 0 {
		s.CreateAt = time.Now().UnixNano()
	}
	return sr.g.Create(&models.RemoteServer{}, &s)
}

// Update 整体覆盖可编辑字段, ID 与注册顺序不变
func (sr ServerRepo) Update(s models.RemoteServer) error {
	return sr.g.Updates(Updates{
		Table: &models.RemoteServer{},
		Where: map[string]interface{}{
			"id = ?": s.ID,
		},
		Updates: map[string]interface{}{
			"name":              s.Name,
			"api_url":           s.ApiUrl,
			"api_token":         s.ApiToken,
			"host_group":        s.HostGroup,
			"include_subgroups": s.GetIncludeSubgroups(),
			"enabled":           s.GetEnabled(),
			"api_version":       s.ApiVersion,
			"connection_status": s.ConnectionStatus,
			"last_reached":      s.LastReached,
			"update_by":         s.UpdateBy,
			"update_at":         s.UpdateAt,
		},
	})
}

func (sr ServerRepo) Delete(id string) error {
	return sr.g.Delete(Delete{
		Table: &models.RemoteServer{},
		Where: map[string]interface{}{
			"id = ?": id,
		},
	})
}

// UpdateMeta 回写探测结果, 返回更新前记录的版本. 并发写入时以最后一次为准.
func (sr ServerRepo) UpdateMeta(id string, meta models.ServerMeta) (string, error) {
	updates := map[string]interface{}{}
	if meta.ApiVersion != "" {
		updates["api_version"] = meta.ApiVersion
	}
	if meta.ConnectionStatus != "" {
		updates["connection_status"] = meta.ConnectionStatus
	}
	if meta.LastReached != 0 {
		updates["last_reached"] = meta.LastReached
	}

	var previous string
	err := sr.g.Transaction(func(tx *gorm.DB) error {
		var current models.RemoteServer
		err := tx.Model(&models.RemoteServer{}).Where("id = ?", id).First(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		previous = current.ApiVersion

		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.RemoteServer{}).Where("id = ?", id).Updates(updates).Error
	})
	return previous, err
}
