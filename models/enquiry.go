package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EnquiryOpen      = "open"
	EnquiryConverted = "converted"
	EnquiryClosed    = "closed"
)

type Enquiry struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string     `gorm:"not null" json:"name"`
	Contact           string     `gorm:"size:30" json:"contact,omitempty"`
	Email             string     `json:"email,omitempty"`
	Type              string     `gorm:"size:40;index" json:"type,omitempty"`
	Remarks           string     `json:"remarks,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	Status            string     `gorm:"size:20;index;not null" json:"status"`
	ConvertedMemberID *uuid.UUID `gorm:"type:uuid" json:"convertedMemberId,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func (e *Enquiry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Status == "" {
		e.Status = EnquiryOpen
	}
	return nil
}
