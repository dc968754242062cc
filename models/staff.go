package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DefaultLeaveBucket = 20

type LeaveRecord struct {
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Days   int       `json:"days"`
	Reason string    `json:"reason,omitempty"`
}

type Staff struct {
	ID               uuid.UUID                        `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string                           `gorm:"not null" json:"name"`
	Role             string                           `gorm:"size:30" json:"role,omitempty"`
	Contact          string                           `gorm:"size:30" json:"contact,omitempty"`
	Email            string                           `gorm:"index" json:"email,omitempty"`
	LeaveBucket      int                              `json:"leaveBucket"`
	Leaves           datatypes.JSONSlice[LeaveRecord] `json:"leaves"`
	Status           string                           `gorm:"size:20;index;not null" json:"status"`
	Address          string                           `json:"address,omitempty"`
	Salary           decimal.Decimal                  `gorm:"type:decimal(12,2)" json:"salary"`
	JoiningDate      *time.Time                       `json:"joiningDate,omitempty"`
	EmergencyContact string                           `json:"emergencyContact,omitempty"`
	PasswordHash     string                           `json:"-"`
	LastLogin        *time.Time                       `json:"lastLogin,omitempty"`
	CreatedAt        time.Time                        `json:"createdAt"`
	UpdatedAt        time.Time                        `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt                   `gorm:"index" json:"-"`
}

func (s *Staff) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = "active"
	}
	return nil
}

// RequestLeave books the inclusive day range [from, to] against the bucket.
func (s *Staff) RequestLeave(from, to time.Time, reason string) error {
	if to.Before(from) {
		to = from
	}
	days := int(DateOnly(to).Sub(DateOnly(from))/day) + 1
	if days > s.LeaveBucket {
		return ErrInsufficientLeave
	}
	s.LeaveBucket -= days
	s.Leaves = append(s.Leaves, LeaveRecord{From: DateOnly(from), To: DateOnly(to), Days: days, Reason: reason})
	return nil
}

func (s *Staff) OnLeave(t time.Time) bool {
	d := DateOnly(t)
	for _, l := range s.Leaves {
		if !d.Before(l.From) && !d.After(l.To) {
			return true
		}
	}
	return false
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
