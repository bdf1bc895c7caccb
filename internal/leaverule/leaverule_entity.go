package leaverule

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const DefaultType = "default"

// LeaveDays maps a leave type to a number of working days.
type LeaveDays map[string]int

func (d LeaveDays) Clone() LeaveDays {
	out := make(LeaveDays, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

type Config struct {
	Type      string                        `gorm:"type:varchar(32);primaryKey"`
	Rules     datatypes.JSONType[LeaveDays] `gorm:"type:jsonb;not null"`
	Version   int                           `gorm:"not null;default:1"`
	UpdatedBy *uuid.UUID                    `gorm:"type:uuid"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Config) TableName() string { return "leave_rule_configs" }
