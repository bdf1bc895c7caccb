package employee

import (
	"strings"
	"time"

	"github.com/premidisfinal/premidis-fin/internal/leaverule"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Employee is both the staff record and the login identity.
type Employee struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Email        string          `gorm:"type:varchar(255);not null;uniqueIndex:uq_employees_email"`
	PasswordHash string          `gorm:"type:varchar(255);not null"`
	Role         string          `gorm:"type:varchar(32);not null;index"`
	FirstName    string          `gorm:"type:varchar(100);not null"`
	LastName     string          `gorm:"type:varchar(100);not null"`
	Department   string          `gorm:"type:varchar(100);index"`
	Category     string          `gorm:"type:varchar(100)"`
	Position     string          `gorm:"type:varchar(100)"`
	Phone        string          `gorm:"type:varchar(32)"`
	Salary       decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Currency     string          `gorm:"type:varchar(3);not null"`
	HireDate     *time.Time      `gorm:"type:date"`
	BirthDate    *time.Time      `gorm:"type:date"`
	IsActive     bool            `gorm:"not null"`

	// LeaveBalance is the entitlement per leave type, copied from the rules at
	// creation. LeaveTaken is only written by the leave engine.
	LeaveBalance datatypes.JSONType[leaverule.LeaveDays] `gorm:"type:jsonb;not null"`
	LeaveTaken   datatypes.JSONType[leaverule.LeaveDays] `gorm:"type:jsonb;not null"`
	RulesVersion int                                     `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

func (e Employee) Balance() leaverule.LeaveDays {
	if d := e.LeaveBalance.Data(); d != nil {
		return d
	}
	return leaverule.LeaveDays{}
}

func (e Employee) Taken() leaverule.LeaveDays {
	if d := e.LeaveTaken.Data(); d != nil {
		return d
	}
	return leaverule.LeaveDays{}
}
