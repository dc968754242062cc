package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MemberStatus string

const (
	MemberActive    MemberStatus = "active"
	MemberInactive  MemberStatus = "inactive"
	MemberFrozen    MemberStatus = "frozen"
	MemberExpired   MemberStatus = "expired"
	MemberSuspended MemberStatus = "suspended"
)

type MembershipStatus string

const (
	MembershipActive    MembershipStatus = "active"
	MembershipExpired   MembershipStatus = "expired"
	MembershipFrozen    MembershipStatus = "frozen"
	MembershipSuspended MembershipStatus = "suspended"
)

// GeneralSessionType is the credit pool used by session packs without typed sessions.
const GeneralSessionType = "General"

type SessionBalance struct {
	SessionType string `json:"sessionType"`
	Balance     int    `json:"balance"`
}

type SessionRemaining struct {
	SessionType string `json:"sessionType"`
	Remaining   int    `json:"remaining"`
}

type FreezePeriod struct {
	StartDate  time.Time  `json:"startDate"`
	EndDate    time.Time  `json:"endDate"`
	Reason     string     `json:"reason,omitempty"`
	ApprovedBy *uuid.UUID `json:"approvedBy,omitempty"`
}

type MembershipHistoryEntry struct {
	PlanID    *uuid.UUID      `json:"planId,omitempty"`
	StartDate *time.Time      `json:"startDate,omitempty"`
	EndDate   *time.Time      `json:"endDate,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	InvoiceID *uuid.UUID      `json:"invoiceId,omitempty"`
}

// Membership is stored inline on the members row.
type Membership struct {
	CurrentPlanID           *uuid.UUID                                  `gorm:"type:uuid" json:"currentPlan,omitempty"`
	StartDate               *time.Time                                  `json:"startDate,omitempty"`
	EndDate                 *time.Time                                  `gorm:"index" json:"endDate,omitempty"`
	Status                  MembershipStatus                            `gorm:"type:varchar(20)" json:"status,omitempty"`
	Amount                  decimal.Decimal                             `gorm:"type:decimal(12,2)" json:"amount"`
	InvoiceID               *uuid.UUID                                  `gorm:"type:uuid" json:"invoiceId,omitempty"`
	AutoRenew               bool                                        `json:"autoRenew"`
	RenewalReminderDays     int                                         `json:"renewalReminderDays"`
	RenewalNotificationSent bool                                        `json:"renewalNotificationSent"`
	CurrentlyFrozen         bool                                        `json:"currentlyFrozen"`
	FreezeHistory           datatypes.JSONSlice[FreezePeriod]           `json:"freezeHistory"`
	History                 datatypes.JSONSlice[MembershipHistoryEntry] `json:"history"`

	// Legacy per-plan counters, consulted after SessionBalance.
	SessionsTotal  int                                   `json:"sessionsTotal"`
	SessionsByType datatypes.JSONSlice[SessionRemaining] `json:"sessionsByType"`
}

type Member struct {
	ID              uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	MemberCode      string       `gorm:"size:20;uniqueIndex;not null" json:"memberID"`
	Name            string       `gorm:"not null" json:"name"`
	Gender          string       `gorm:"size:10" json:"gender,omitempty"`
	DOB             *time.Time   `json:"dob,omitempty"`
	ProfilePicture  string       `json:"profilePicture,omitempty"`
	Contact1        string       `gorm:"size:30" json:"contact1,omitempty"`
	Contact2        string       `gorm:"size:30" json:"contact2,omitempty"`
	Email           string       `gorm:"index" json:"email,omitempty"`
	Address         string       `json:"address,omitempty"`
	EmergencyName   string       `json:"emergencyName,omitempty"`
	EmergencyNumber string       `json:"emergencyNumber,omitempty"`
	Notes           string       `json:"notes,omitempty"`
	Status          MemberStatus `gorm:"type:varchar(20);index;not null" json:"status"`

	SessionBalance datatypes.JSONSlice[SessionBalance] `json:"sessionBalance"`
	Membership     Membership                          `gorm:"embedded;embeddedPrefix:membership_" json:"membership"`

	BiometricEnrolled   bool       `json:"biometricEnrolled"`
	BiometricEnrolledAt *time.Time `json:"biometricEnrolledAt,omitempty"`

	Version   int            `gorm:"not null" json:"version"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = MemberActive
	}
	if m.Membership.RenewalReminderDays == 0 {
		m.Membership.RenewalReminderDays = 7
	}
	return nil
}

// MemberBiometric is one enrolled fingerprint template.
type MemberBiometric struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MemberID     uuid.UUID `gorm:"type:uuid;index;not null" json:"memberId"`
	TemplateHash string    `gorm:"size:255;uniqueIndex;not null" json:"-"`
	DeviceID     string    `json:"deviceId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (b *MemberBiometric) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
