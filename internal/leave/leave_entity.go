package leave

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Advisory findings stored on a request for the approver.
const (
	WarningInsufficientBalance = "insufficient_balance"
	WarningOverlappingRequest  = "overlapping_request"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Leave struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_employee_dates"`

	// Captured at write time; employees is the canonical record.
	EmployeeName string `gorm:"type:varchar(200);not null"`
	Department   string `gorm:"type:varchar(100)"`

	LeaveType   string    `gorm:"type:varchar(50);not null"`
	StartDate   time.Time `gorm:"type:date;not null;index:idx_leaves_employee_dates"`
	EndDate     time.Time `gorm:"type:date;not null;index:idx_leaves_employee_dates"`
	WorkingDays int       `gorm:"not null"`
	Reason      string    `gorm:"type:text"`

	Status       string         `gorm:"type:varchar(20);not null;index"`
	AdminComment *string        `gorm:"type:text"`
	ApprovedBy   *uuid.UUID     `gorm:"type:uuid"`
	ApprovedAt   *time.Time     `gorm:"type:timestamptz"`
	CreatedBy    uuid.UUID      `gorm:"type:uuid;not null"`
	IsCollective bool           `gorm:"not null;default:false"`
	CollectiveID *uuid.UUID     `gorm:"type:uuid;index"`
	Warnings     pq.StringArray `gorm:"type:text[]"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// CalendarEntry exists exactly while its leave is approved.
type CalendarEntry struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	LeaveID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_calendar_entries_leave"`
	EmployeeID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	EmployeeName string     `gorm:"type:varchar(200);not null"`
	LeaveType    string     `gorm:"type:varchar(50);not null"`
	StartDate    time.Time  `gorm:"type:date;not null;index:idx_calendar_entries_range"`
	EndDate      time.Time  `gorm:"type:date;not null;index:idx_calendar_entries_range"`
	Title        string     `gorm:"type:varchar(255);not null"`
	IsCollective bool       `gorm:"not null;default:false"`
	CollectiveID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time
}

func newCalendarEntry(l Leave) CalendarEntry {
	return CalendarEntry{
		ID:           uuid.New(),
		LeaveID:      l.ID,
		EmployeeID:   l.EmployeeID,
		EmployeeName: l.EmployeeName,
		LeaveType:    l.LeaveType,
		StartDate:    l.StartDate,
		EndDate:      l.EndDate,
		Title:        calendarTitle(l),
		IsCollective: l.IsCollective,
		CollectiveID: l.CollectiveID,
	}
}
