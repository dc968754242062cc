package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale is a point-of-sale record. Its invoice and payment are created with it.
type Sale struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	MemberID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"memberId"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index" json:"productId,omitempty"`
	StaffID     *uuid.UUID      `gorm:"type:uuid;index" json:"staffId,omitempty"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Type        string          `gorm:"type:varchar(20);index" json:"type"`
	Description string          `json:"description,omitempty"`
	PaymentMode PaymentMode     `gorm:"type:varchar(20);index;not null" json:"paymentMode"`
	Date        time.Time       `gorm:"index" json:"date"`
	InvoiceID   *uuid.UUID      `gorm:"type:uuid" json:"invoiceId,omitempty"`
	PaymentID   *uuid.UUID      `gorm:"type:uuid" json:"paymentId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
