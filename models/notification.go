package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	NotificationPending   = "pending"
	NotificationScheduled = "scheduled"
	NotificationSent      = "sent"
	NotificationFailed    = "failed"
)

const (
	TriggerManual = "manual"
	TriggerAuto   = "auto"

	EventMembershipExpiry = "membership_expiry"
)

// Notification is a persisted message record. Nothing here delivers it.
type Notification struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientType string            `gorm:"size:10;not null" json:"recipientType"`
	RecipientID   *uuid.UUID        `gorm:"type:uuid;index" json:"recipientID,omitempty"`
	Channel       string            `gorm:"size:10;not null" json:"type"`
	Template      string            `json:"template,omitempty"`
	Subject       string            `json:"subject,omitempty"`
	Message       string            `gorm:"not null" json:"message"`
	ScheduledFor  *time.Time        `gorm:"index:idx_notification_queue,priority:2" json:"scheduledFor,omitempty"`
	SentAt        *time.Time        `json:"sentAt,omitempty"`
	Status        string            `gorm:"size:20;not null;index:idx_notification_queue,priority:1" json:"status"`
	Context       datatypes.JSONMap `json:"context,omitempty"`
	CreatedBy     *uuid.UUID        `gorm:"type:uuid" json:"createdBy,omitempty"`
	Trigger       string            `gorm:"size:10" json:"trigger"`
	TriggerEvent  string            `gorm:"size:40" json:"triggerEvent,omitempty"`
	ErrorMessage  string            `json:"errorMessage,omitempty"`
	CreatedAt     time.Time         `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Trigger == "" {
		n.Trigger = TriggerManual
	}
	return nil
}
