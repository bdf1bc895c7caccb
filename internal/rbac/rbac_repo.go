package rbac

import (
	"context"

	"gorm.io/gorm"
)

type RolePermissionRow struct {
	Role     string `gorm:"type:varchar(32);primaryKey"`
	Resource string `gorm:"type:varchar(64);primaryKey"`
	Action   string `gorm:"type:varchar(32);primaryKey"`
}

func (RolePermissionRow) TableName() string { return "role_permissions" }

type Repository interface {
	ListRolePermissions(ctx context.Context) ([]RolePermissionRow, error)
	ReplaceRolePermissions(ctx context.Context, role string, rows []RolePermissionRow) error
	SeedIfEmpty(ctx context.Context, rows []RolePermissionRow) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListRolePermissions(ctx context.Context) ([]RolePermissionRow, error) {
	var rows []RolePermissionRow
	err := r.db.WithContext(ctx).
		Order("role, resource, action").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ReplaceRolePermissions(ctx context.Context, role string, rows []RolePermissionRow) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role = ?", role).Delete(&RolePermissionRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func (r *repository) SeedIfEmpty(ctx context.Context, rows []RolePermissionRow) (bool, error) {
	seeded := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&RolePermissionRow{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 || len(rows) == 0 {
			return nil
		}
		seeded = true
		return tx.Create(&rows).Error
	})
	return seeded, err
}
