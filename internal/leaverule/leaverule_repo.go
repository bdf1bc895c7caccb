package leaverule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository interface {
	Get(ctx context.Context) (*Config, error)
	EnsureDefaults(ctx context.Context, days LeaveDays) error
	Replace(ctx context.Context, days LeaveDays, updatedBy *uuid.UUID) (*Config, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context) (*Config, error) {
	var cfg Config
	err := r.db.WithContext(ctx).
		Where("type = ?", DefaultType).
		First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EnsureDefaults inserts the singleton row unless another writer got there first.
func (r *repository) EnsureDefaults(ctx context.Context, days LeaveDays) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO leave_rule_configs (type, rules, version, created_at, updated_at)
		VALUES (?, ?, 1, NOW(), NOW())
		ON CONFLICT (type) DO NOTHING
	`, DefaultType, datatypes.NewJSONType(days)).Error
}

func (r *repository) Replace(ctx context.Context, days LeaveDays, updatedBy *uuid.UUID) (*Config, error) {
	var cfg Config
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Config{}).
			Where("type = ?", DefaultType).
			Updates(map[string]any{
				"rules":      datatypes.NewJSONType(days),
				"version":    gorm.Expr("version + 1"),
				"updated_by": updatedBy,
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("type = ?", DefaultType).First(&cfg).Error
	})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
