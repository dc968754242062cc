package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoicePending   InvoiceStatus = "pending"
	InvoicePartial   InvoiceStatus = "partial"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// PaymentEntry is the invoice's own copy of an applied payment.
type PaymentEntry struct {
	PaymentID     uuid.UUID       `json:"paymentId"`
	PaymentNumber string          `json:"paymentNumber"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"paymentDate"`
	PaymentMode   PaymentMode     `json:"paymentMode"`
	TransactionID string          `json:"transactionID,omitempty"`
	ReceivedBy    *uuid.UUID      `json:"receivedBy,omitempty"`
}

type Invoice struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNumber string        `gorm:"size:32;uniqueIndex;not null" json:"invoiceNumber"`
	MemberID      uuid.UUID     `gorm:"type:uuid;index;not null" json:"memberId"`
	InvoiceDate   time.Time     `gorm:"index" json:"invoiceDate"`
	DueDate       *time.Time    `json:"dueDate,omitempty"`
	Items         []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`

	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"taxRate"`
	Tax           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax"`
	Discount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"paidAmount"`
	BalanceAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"balanceAmount"`

	Status         InvoiceStatus                     `gorm:"type:varchar(20);index;not null" json:"status"`
	PaymentHistory datatypes.JSONSlice[PaymentEntry] `json:"paymentHistory"`
	Notes          string                            `json:"notes,omitempty"`
	SaleID         *uuid.UUID                        `gorm:"type:uuid" json:"saleId,omitempty"`
	CreatedBy      *uuid.UUID                        `gorm:"type:uuid" json:"createdBy,omitempty"`

	Version   int            `gorm:"not null" json:"version"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"invoiceId"`
	Description string          `gorm:"not null" json:"description"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PlanID      *uuid.UUID      `gorm:"type:uuid" json:"planId,omitempty"`
}

func (inv *Invoice) BeforeCreate(tx *gorm.DB) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	return nil
}

func (it *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return nil
}

func FormatInvoiceNumber(year int, seq int64) string {
	return fmt.Sprintf("INV-%d-%04d", year, seq)
}

var hundred = decimal.NewFromInt(100)

// Recalculate derives item amounts, subtotal, tax, total and balance from
// the items, tax rate and discount.
func (inv *Invoice) Recalculate() {
	subtotal := decimal.Zero
	for i := range inv.Items {
		it := &inv.Items[i]
		it.Amount = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(it.Amount)
	}
	inv.Subtotal = subtotal
	inv.Tax = subtotal.Mul(inv.TaxRate).Div(hundred).Round(2)
	inv.TotalAmount = subtotal.Add(inv.Tax).Sub(inv.Discount)
	inv.BalanceAmount = inv.TotalAmount.Sub(inv.PaidAmount)
}

// RefreshStatus recomputes the balance and applies the status rule followed
// by the overdue overlay. Paid, cancelled and draft are never made overdue.
func (inv *Invoice) RefreshStatus(now time.Time) {
	inv.BalanceAmount = inv.TotalAmount.Sub(inv.PaidAmount)

	switch {
	case inv.Status == InvoiceCancelled:
	case inv.PaidAmount.IsZero():
		if inv.Status != InvoiceDraft {
			inv.Status = InvoicePending
		}
	case inv.PaidAmount.GreaterThanOrEqual(inv.TotalAmount):
		inv.Status = InvoicePaid
	default:
		inv.Status = InvoicePartial
	}

	if (inv.Status == InvoicePending || inv.Status == InvoicePartial) &&
		inv.DueDate != nil && inv.DueDate.Before(now) && inv.BalanceAmount.IsPositive() {
		inv.Status = InvoiceOverdue
	}
}

// CheckEditable rejects edits to a settled invoice.
func (inv *Invoice) CheckEditable() error {
	if inv.Status == InvoicePaid {
		return ErrInvoiceLocked
	}
	return nil
}

func (inv *Invoice) CheckDeletable() error {
	if inv.Status == InvoicePaid || inv.PaidAmount.IsPositive() || len(inv.PaymentHistory) > 0 {
		return ErrInvoiceHasPayments
	}
	return nil
}

// ValidatePayment checks amount against the invoice without changing it.
func (inv *Invoice) ValidatePayment(amount decimal.Decimal) error {
	if inv.Status == InvoiceCancelled {
		return ErrInvoiceCancelled
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(inv.BalanceAmount) {
		return ErrExceedsBalance
	}
	return nil
}

// ApplyPayment folds entry into the invoice. On error the invoice is unchanged.
func (inv *Invoice) ApplyPayment(entry PaymentEntry, now time.Time) error {
	if err := inv.ValidatePayment(entry.Amount); err != nil {
		return err
	}
	inv.PaymentHistory = append(inv.PaymentHistory, entry)
	inv.PaidAmount = inv.PaidAmount.Add(entry.Amount)
	inv.RefreshStatus(now)
	return nil
}
