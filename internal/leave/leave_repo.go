package leave

import (
	"context"
	"database/sql"
	"time"

	"github.com/premidisfinal/premidis-fin/internal/shared/dbtx"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transition is the outcome of an atomic status swap.
type Transition struct {
	PreviousStatus string
	Leave          Leave
}

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Leave) error
	CreateBatch(ctx context.Context, leaves []Leave) error
	FindByID(ctx context.Context, id string) (*Leave, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Leave, error)
	List(ctx context.Context, filter ListFilter) ([]Leave, int64, error)
	CountByStatus(ctx context.Context, employeeID string) (map[string]int64, error)
	HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error)
	FindApprovedOverlapping(ctx context.Context, excludeEmployeeID string, start, end time.Time) ([]Leave, error)
	TransitionStatus(ctx context.Context, id, status string, comment *string, approvedBy uuid.UUID, at time.Time) (Transition, error)
	UpdateComment(ctx context.Context, id string, comment string) (*Leave, error)
	Delete(ctx context.Context, id string) error

	CreateCalendarEntries(ctx context.Context, entries []CalendarEntry) error
	DeleteCalendarEntries(ctx context.Context, leaveID string) error
	CalendarEntriesBetween(ctx context.Context, start, end time.Time) ([]CalendarEntry, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return dbtx.Conn(ctx, r.db, r.tx)
}

func (r *repository) Create(ctx context.Context, l *Leave) error {
	return r.conn(ctx).Create(l).Error
}

func (r *repository) CreateBatch(ctx context.Context, leaves []Leave) error {
	if len(leaves) == 0 {
		return nil
	}
	return r.conn(ctx).CreateInBatches(leaves, 200).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Leave, error) {
	var l Leave
	if err := r.conn(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*Leave, error) {
	var l Leave
	err := r.conn(ctx).
		Raw(`SELECT * FROM leaves WHERE id = ? AND deleted_at IS NULL FOR UPDATE`, id).
		Scan(&l).Error
	if err != nil {
		return nil, err
	}
	if l.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Leave, int64, error) {
	scoped := func() *gorm.DB {
		q := r.conn(ctx).Model(&Leave{})
		if filter.EmployeeID != "" {
			q = q.Where("employee_id = ?", filter.EmployeeID)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.LeaveType != "" {
			q = q.Where("leave_type = ?", filter.LeaveType)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []Leave
	err := scoped().
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&out).Error
	return out, total, err
}

func (r *repository) CountByStatus(ctx context.Context, employeeID string) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	q := r.conn(ctx).Model(&Leave{}).Select("status, COUNT(*) AS count")
	if employeeID != "" {
		q = q.Where("employee_id = ?", employeeID)
	}
	if err := q.Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// HasOverlap reports a non-rejected request of the employee intersecting
// [start, end].
func (r *repository) HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Model(&Leave{}).
		Where("employee_id = ?", employeeID).
		Where("status <> ?", StatusRejected).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Count(&count).Error
	return count > 0, err
}

// FindApprovedOverlapping lists approved leaves of other active employees
// intersecting [start, end].
func (r *repository) FindApprovedOverlapping(ctx context.Context, excludeEmployeeID string, start, end time.Time) ([]Leave, error) {
	var out []Leave
	err := r.conn(ctx).
		Joins("JOIN employees e ON e.id = leaves.employee_id AND e.is_active = TRUE AND e.deleted_at IS NULL").
		Where("leaves.employee_id <> ?", excludeEmployeeID).
		Where("leaves.status = ?", StatusApproved).
		Where("leaves.start_date <= ? AND leaves.end_date >= ?", end, start).
		Order("leaves.start_date").
		Find(&out).Error
	return out, err
}

// TransitionStatus swaps the status under a row lock and reports the status
// it replaced. Concurrent callers serialise on the lock, so each sees the
// status committed by the previous one.
func (r *repository) TransitionStatus(
	ctx context.Context,
	id, status string,
	comment *string,
	approvedBy uuid.UUID,
	at time.Time,
) (Transition, error) {
	var rows []struct {
		PreviousStatus string
	}
	err := r.conn(ctx).Raw(`
		UPDATE leaves AS l
		SET status = ?,
			admin_comment = COALESCE(?, l.admin_comment),
			approved_by = ?,
			approved_at = ?,
			updated_at = NOW()
		FROM (
			SELECT id, status FROM leaves
			WHERE id = ? AND deleted_at IS NULL
			FOR UPDATE
		) AS old
		WHERE l.id = old.id
		RETURNING old.status AS previous_status
	`, status, comment, approvedBy, at, id).Scan(&rows).Error
	if err != nil {
		return Transition{}, err
	}
	if len(rows) == 0 {
		return Transition{}, gorm.ErrRecordNotFound
	}

	l, err := r.FindByID(ctx, id)
	if err != nil {
		return Transition{}, err
	}
	return Transition{PreviousStatus: rows[0].PreviousStatus, Leave: *l}, nil
}

func (r *repository) UpdateComment(ctx context.Context, id string, comment string) (*Leave, error) {
	res := r.conn(ctx).
		Model(&Leave{}).
		Where("id = ?", id).
		Update("admin_comment", comment)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res := r.conn(ctx).Delete(&Leave{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreateCalendarEntries(ctx context.Context, entries []CalendarEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.conn(ctx).CreateInBatches(entries, 200).Error
}

func (r *repository) DeleteCalendarEntries(ctx context.Context, leaveID string) error {
	return r.conn(ctx).Where("leave_id = ?", leaveID).Delete(&CalendarEntry{}).Error
}

// CalendarEntriesBetween returns entries intersecting [start, end].
func (r *repository) CalendarEntriesBetween(ctx context.Context, start, end time.Time) ([]CalendarEntry, error) {
	var out []CalendarEntry
	err := r.conn(ctx).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Order("start_date, employee_name").
		Find(&out).Error
	return out, err
}
