package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentMode string

const (
	ModeCash       PaymentMode = "cash"
	ModeCard       PaymentMode = "card"
	ModeUPI        PaymentMode = "upi"
	ModeNetBanking PaymentMode = "netbanking"
	ModeCheque     PaymentMode = "cheque"
	ModeOther      PaymentMode = "other"
)

// ParsePaymentMode normalises s; empty means cash.
func ParsePaymentMode(s string) (PaymentMode, error) {
	if s == "" {
		return ModeCash, nil
	}
	m := PaymentMode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModeCash, ModeCard, ModeUPI, ModeNetBanking, ModeCheque, ModeOther:
		return m, nil
	}
	return "", ErrInvalidPaymentMode
}

// Payment is an immutable receipt of money against one invoice.
type Payment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PaymentNumber string          `gorm:"size:32;uniqueIndex;not null" json:"paymentNumber"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"invoiceId"`
	MemberID      uuid.UUID       `gorm:"type:uuid;index;not null" json:"memberId"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentDate   time.Time       `gorm:"index" json:"paymentDate"`
	PaymentMode   PaymentMode     `gorm:"type:varchar(20);index;not null" json:"paymentMode"`
	TransactionID string          `json:"transactionID,omitempty"`
	ChequeNumber  string          `json:"chequeNumber,omitempty"`
	BankName      string          `json:"bankName,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	ReceivedBy    *uuid.UUID      `gorm:"type:uuid" json:"receivedBy,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func FormatPaymentNumber(year int, seq int64) string {
	return fmt.Sprintf("PAY-%d-%04d", year, seq)
}

// Entry is the denormalised copy stored on the invoice.
func (p *Payment) Entry() PaymentEntry {
	return PaymentEntry{
		PaymentID:     p.ID,
		PaymentNumber: p.PaymentNumber,
		Amount:        p.Amount,
		PaymentDate:   p.PaymentDate,
		PaymentMode:   p.PaymentMode,
		TransactionID: p.TransactionID,
		ReceivedBy:    p.ReceivedBy,
	}
}
