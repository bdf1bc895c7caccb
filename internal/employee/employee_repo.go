package employee

import (
	"context"
	"database/sql"
	"strings"

	"github.com/premidisfinal/premidis-fin/internal/shared/dbtx"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, e *Employee) error
	FindAll(ctx context.Context, filter ListFilter) ([]Employee, int64, error)
	FindOptions(ctx context.Context) ([]Employee, error)
	FindActive(ctx context.Context) ([]Employee, error)
	FindActiveByRoles(ctx context.Context, roles []string) ([]Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	Update(ctx context.Context, e *Employee) error
	AdjustLeaveTaken(ctx context.Context, id, balanceKey string, delta int) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return dbtx.Conn(ctx, r.db, r.tx)
}

func (r *repository) Create(ctx context.Context, e *Employee) error {
	return r.conn(ctx).Create(e).Error
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Employee, int64, error) {
	scoped := func() *gorm.DB {
		q := r.conn(ctx).Model(&Employee{})
		if filter.Department != "" {
			q = q.Where("department = ?", filter.Department)
		}
		if filter.Role != "" {
			q = q.Where("role = ?", filter.Role)
		}
		if filter.ActiveOnly {
			q = q.Where("is_active = ?", true)
		}
		if s := strings.TrimSpace(filter.Query); s != "" {
			like := "%" + strings.ToLower(s) + "%"
			q = q.Where("LOWER(first_name || ' ' || last_name) LIKE ? OR LOWER(email) LIKE ?", like, like)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []Employee
	err := scoped().
		Order("last_name, first_name").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&out).Error
	return out, total, err
}

func (r *repository) FindOptions(ctx context.Context) ([]Employee, error) {
	var out []Employee
	err := r.conn(ctx).
		Select("id", "first_name", "last_name", "department").
		Where("is_active = ?", true).
		Order("last_name, first_name").
		Find(&out).Error
	return out, err
}

func (r *repository) FindActive(ctx context.Context) ([]Employee, error) {
	var out []Employee
	err := r.conn(ctx).
		Where("is_active = ?", true).
		Order("id").
		Find(&out).Error
	return out, err
}

func (r *repository) FindActiveByRoles(ctx context.Context, roles []string) ([]Employee, error) {
	var out []Employee
	err := r.conn(ctx).
		Where("is_active = ? AND role IN ?", true, roles).
		Find(&out).Error
	return out, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var e Employee
	err := r.conn(ctx).First(&e, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Employee, error) {
	var e Employee
	err := r.conn(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Update writes the profile columns. Leave counters are owned by
// AdjustLeaveTaken and are never overwritten here.
func (r *repository) Update(ctx context.Context, e *Employee) error {
	return r.conn(ctx).
		Model(e).
		Select("*").
		Omit("id", "leave_balance", "leave_taken", "rules_version", "created_at", "deleted_at").
		Updates(e).Error
}

// AdjustLeaveTaken adds delta working days to leave_taken[balanceKey] in one
// statement. The counter never goes below zero.
func (r *repository) AdjustLeaveTaken(ctx context.Context, id, balanceKey string, delta int) error {
	res := r.conn(ctx).Exec(`
		UPDATE employees
		SET leave_taken = jsonb_set(
				COALESCE(leave_taken, '{}'::jsonb),
				ARRAY[?]::text[],
				to_jsonb(GREATEST(COALESCE((leave_taken ->> ?)::int, 0) + ?, 0)),
				true
			),
			updated_at = NOW()
		WHERE id = ? AND deleted_at IS NULL
	`, balanceKey, balanceKey, delta, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete soft-deletes the employee and drops their calendar entries in the
// same transaction, so month views stop showing them. Their leave records
// stay for history.
func (r *repository) Delete(ctx context.Context, id string) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&Employee{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Exec(`DELETE FROM calendar_entries WHERE employee_id = ?`, id).Error
	})
}
