package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/tubebase-backend/internal/domain"
	"github.com/yungbote/tubebase-backend/internal/platform/logger"
)

type SettingRepo interface {
	Get(ctx context.Context, tx *gorm.DB, key string) (string, error)
	Set(ctx context.Context, tx *gorm.DB, key, value string) error
	GetAll(ctx context.Context, tx *gorm.DB) (map[string]string, error)
}

type settingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSettingRepo(db *gorm.DB, baseLog *logger.Logger) SettingRepo {
	return &settingRepo{db: db, log: baseLog.With("repo", "SettingRepo")}
}

// Get returns "" when the key has never been set.
func (r *settingRepo) Get(ctx context.Context, tx *gorm.DB, key string) (string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var setting domain.Setting
	err := transaction.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (r *settingRepo) Set(ctx context.Context, tx *gorm.DB, key, value string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	setting := &domain.Setting{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(setting).Error
}

func (r *settingRepo) GetAll(ctx context.Context, tx *gorm.DB) (map[string]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*domain.Setting
	if err := transaction.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, s := range rows {
		out[s.Key] = s.Value
	}
	return out, nil
}
