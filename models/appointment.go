package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	AppointmentScheduled   AppointmentStatus = "scheduled"
	AppointmentCompleted   AppointmentStatus = "completed"
	AppointmentCancelled   AppointmentStatus = "cancelled"
	AppointmentNoShow      AppointmentStatus = "no-show"
	AppointmentRescheduled AppointmentStatus = "rescheduled"
)

func ValidAppointmentStatus(s AppointmentStatus) bool {
	switch s {
	case AppointmentScheduled, AppointmentCompleted, AppointmentCancelled, AppointmentNoShow, AppointmentRescheduled:
		return true
	}
	return false
}

type Appointment struct {
	ID                      uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	MemberID                uuid.UUID         `gorm:"type:uuid;index;not null" json:"memberId"`
	StaffID                 *uuid.UUID        `gorm:"type:uuid;index" json:"staffId,omitempty"`
	Date                    time.Time         `gorm:"index" json:"date"`
	Time                    string            `gorm:"size:5" json:"time"`
	Type                    string            `gorm:"size:40" json:"type"`
	SessionType             string            `gorm:"size:60;index" json:"sessionType,omitempty"`
	SessionPlanID           *uuid.UUID        `gorm:"type:uuid" json:"sessionPlanId,omitempty"`
	Status                  AppointmentStatus `gorm:"type:varchar(20);index;not null" json:"status"`
	SessionConsumed         bool              `json:"sessionConsumed"`
	MemberSessionsRemaining *int              `json:"memberSessionsRemaining,omitempty"`
	Notes                   string            `json:"notes,omitempty"`
	CancellationReason      string            `json:"cancellationReason,omitempty"`
	CompletedAt             *time.Time        `json:"completedAt,omitempty"`

	Version   int       `gorm:"not null" json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = AppointmentScheduled
	}
	return nil
}
