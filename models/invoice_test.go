package models

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRecalculate(t *testing.T) {
	inv := &Invoice{
		TaxRate:  dec("18"),
		Discount: dec("10"),
		Items: []InvoiceItem{
			{Description: "Plan", Quantity: 1, UnitPrice: dec("60")},
			{Description: "Towel", Quantity: 2, UnitPrice: dec("20")},
		},
	}
	inv.Recalculate()

	if !inv.Items[1].Amount.Equal(dec("40")) {
		t.Errorf("item amount = %s, want 40", inv.Items[1].Amount)
	}
	if !inv.Subtotal.Equal(dec("100")) {
		t.Errorf("subtotal = %s, want 100", inv.Subtotal)
	}
	if !inv.Tax.Equal(dec("18")) {
		t.Errorf("tax = %s, want 18", inv.Tax)
	}
	if !inv.TotalAmount.Equal(dec("108")) {
		t.Errorf("total = %s, want 108", inv.TotalAmount)
	}
	if !inv.BalanceAmount.Equal(inv.TotalAmount.Sub(inv.PaidAmount)) {
		t.Errorf("balance = %s", inv.BalanceAmount)
	}
}

func TestPaymentScenario(t *testing.T) {
	now := time.Now()
	inv := &Invoice{
		TaxRate:  dec("18"),
		Discount: dec("10"),
		Items:    []InvoiceItem{{Description: "Plan", Quantity: 1, UnitPrice: dec("100")}},
	}
	inv.Recalculate()
	inv.RefreshStatus(now)
	if inv.Status != InvoicePending {
		t.Fatalf("status = %s, want pending", inv.Status)
	}

	if err := inv.ApplyPayment(PaymentEntry{Amount: dec("50")}, now); err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if inv.Status != InvoicePartial || !inv.BalanceAmount.Equal(dec("58")) {
		t.Fatalf("after 50: status=%s balance=%s", inv.Status, inv.BalanceAmount)
	}

	if err := inv.ApplyPayment(PaymentEntry{Amount: dec("58.01")}, now); !errors.Is(err, ErrExceedsBalance) {
		t.Fatalf("overpayment err = %v", err)
	}
	if !inv.PaidAmount.Equal(dec("50")) || len(inv.PaymentHistory) != 1 {
		t.Fatalf("overpayment mutated invoice: paid=%s history=%d", inv.PaidAmount, len(inv.PaymentHistory))
	}

	if err := inv.ApplyPayment(PaymentEntry{Amount: dec("58")}, now); err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if inv.Status != InvoicePaid || !inv.BalanceAmount.IsZero() {
		t.Fatalf("after 58: status=%s balance=%s", inv.Status, inv.BalanceAmount)
	}
	if err := inv.CheckEditable(); !errors.Is(err, ErrInvoiceLocked) {
		t.Errorf("paid invoice editable: %v", err)
	}
	if err := inv.CheckDeletable(); !errors.Is(err, ErrInvoiceHasPayments) {
		t.Errorf("paid invoice deletable: %v", err)
	}
}

func TestRefreshStatus(t *testing.T) {
	now := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -1)

	tests := []struct {
		name   string
		inv    Invoice
		status InvoiceStatus
	}{
		{"draft stays draft", Invoice{Status: InvoiceDraft, TotalAmount: dec("10"), DueDate: &past}, InvoiceDraft},
		{"unpaid past due", Invoice{Status: InvoicePending, TotalAmount: dec("10"), DueDate: &past}, InvoiceOverdue},
		{"partial past due", Invoice{Status: InvoicePending, TotalAmount: dec("10"), PaidAmount: dec("4"), DueDate: &past}, InvoiceOverdue},
		{"paid never overdue", Invoice{Status: InvoicePartial, TotalAmount: dec("10"), PaidAmount: dec("10"), DueDate: &past}, InvoicePaid},
		{"cancelled kept", Invoice{Status: InvoiceCancelled, TotalAmount: dec("10"), PaidAmount: dec("4"), DueDate: &past}, InvoiceCancelled},
		{"overdue back to pending", Invoice{Status: InvoiceOverdue, TotalAmount: dec("10")}, InvoicePending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := tt.inv
			inv.RefreshStatus(now)
			if inv.Status != tt.status {
				t.Errorf("status = %s, want %s", inv.Status, tt.status)
			}
			if !inv.BalanceAmount.Equal(inv.TotalAmount.Sub(inv.PaidAmount)) {
				t.Errorf("balance = %s", inv.BalanceAmount)
			}
		})
	}
}

func TestValidatePayment(t *testing.T) {
	inv := &Invoice{TotalAmount: dec("100"), BalanceAmount: dec("100"), Status: InvoicePending}
	if err := inv.ValidatePayment(decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount err = %v", err)
	}
	if err := inv.ValidatePayment(dec("-5")); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative amount err = %v", err)
	}
	inv.Status = InvoiceCancelled
	if err := inv.ValidatePayment(dec("5")); !errors.Is(err, ErrInvoiceCancelled) {
		t.Errorf("cancelled err = %v", err)
	}
}
