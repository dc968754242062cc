package services

import (
	"context"
	"errors"
	"testing"

	"gymdesk-backend/models"
)

func newBilling(t *testing.T) (*BillingService, *models.Member) {
	t.Helper()
	db := newTestDB(t)
	svc := NewBillingService(db)
	svc.now = clock
	return svc, seedMember(t, db, "Asha Rao")
}

func createInvoice(t *testing.T, svc *BillingService, m *models.Member) *models.Invoice {
	t.Helper()
	inv, err := svc.CreateInvoice(context.Background(), InvoiceInput{
		MemberRef: m.ID.String(),
		Items:     []ItemInput{{Description: "Monthly plan", Quantity: 1, UnitPrice: dec("100")}},
		TaxRate:   dec("18"),
		Discount:  dec("10"),
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	return inv
}

func TestCreateInvoiceTotals(t *testing.T) {
	svc, m := newBilling(t)
	inv := createInvoice(t, svc, m)

	if !inv.Subtotal.Equal(dec("100")) || !inv.Tax.Equal(dec("18")) || !inv.TotalAmount.Equal(dec("108")) {
		t.Fatalf("totals = %s/%s/%s, want 100/18/108", inv.Subtotal, inv.Tax, inv.TotalAmount)
	}
	if inv.Status != models.InvoicePending {
		t.Errorf("status = %s, want pending", inv.Status)
	}
	if inv.InvoiceNumber != "INV-2025-0001" {
		t.Errorf("invoice number = %s", inv.InvoiceNumber)
	}

	second := createInvoice(t, svc, m)
	if second.InvoiceNumber != "INV-2025-0002" {
		t.Errorf("second invoice number = %s", second.InvoiceNumber)
	}
}

func TestCreateInvoiceByMemberCode(t *testing.T) {
	svc, m := newBilling(t)
	inv, err := svc.CreateInvoice(context.Background(), InvoiceInput{
		MemberRef: m.MemberCode,
		Items:     []ItemInput{{Description: "Towel", Quantity: 2, UnitPrice: dec("15")}},
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if inv.MemberID != m.ID {
		t.Errorf("member = %s, want %s", inv.MemberID, m.ID)
	}
	if !inv.TotalAmount.Equal(dec("30")) {
		t.Errorf("total = %s, want 30", inv.TotalAmount)
	}
}

func TestCreateInvoiceRejectsBadInput(t *testing.T) {
	svc, m := newBilling(t)
	ctx := context.Background()

	if _, err := svc.CreateInvoice(ctx, InvoiceInput{MemberRef: m.ID.String()}); err == nil {
		t.Error("expected error for invoice without items")
	}
	_, err := svc.CreateInvoice(ctx, InvoiceInput{
		MemberRef: "MEM000000",
		Items:     []ItemInput{{Description: "x", Quantity: 1, UnitPrice: dec("10")}},
	})
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown member err = %v, want not found", err)
	}
}

func TestRecordPaymentPartialThenPaid(t *testing.T) {
	svc, m := newBilling(t)
	ctx := context.Background()
	inv := createInvoice(t, svc, m)

	inv, pay, err := svc.RecordPayment(ctx, inv.ID, PaymentInput{Amount: dec("50"), PaymentMode: "cash"})
	if err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if inv.Status != models.InvoicePartial || !inv.BalanceAmount.Equal(dec("58")) {
		t.Fatalf("after 50: status %s balance %s, want partial 58", inv.Status, inv.BalanceAmount)
	}
	if pay.PaymentNumber != "PAY-2025-0001" {
		t.Errorf("payment number = %s", pay.PaymentNumber)
	}

	inv, _, err = svc.RecordPayment(ctx, inv.ID, PaymentInput{Amount: dec("58"), PaymentMode: "upi"})
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if inv.Status != models.InvoicePaid || !inv.BalanceAmount.IsZero() {
		t.Fatalf("after 58: status %s balance %s, want paid 0", inv.Status, inv.BalanceAmount)
	}

	stored, err := svc.GetInvoice(ctx, inv.ID)
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	if len(stored.PaymentHistory) != 2 {
		t.Errorf("payment history = %d entries, want 2", len(stored.PaymentHistory))
	}
	if !stored.PaidAmount.Equal(dec("108")) {
		t.Errorf("paid = %s, want 108", stored.PaidAmount)
	}
}

func TestRecordPaymentRejectsOverpayment(t *testing.T) {
	svc, m := newBilling(t)
	ctx := context.Background()
	inv := createInvoice(t, svc, m)

	_, _, err := svc.RecordPayment(ctx, inv.ID, PaymentInput{Amount: dec("108.01")})
	if !errors.Is(err, models.ErrExceedsBalance) {
		t.Fatalf("err = %v, want exceeds balance", err)
	}

	stored, err := svc.GetInvoice(ctx, inv.ID)
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	if !stored.PaidAmount.IsZero() || stored.Status != models.InvoicePending {
		t.Errorf("invoice changed: paid %s status %s", stored.PaidAmount, stored.Status)
	}
	payments, total, err := svc.ListPayments(ctx, PaymentFilter{})
	if err != nil {
		t.Fatalf("ListPayments: %v", err)
	}
	if total != 0 || len(payments) != 0 {
		t.Errorf("payments = %d, want none", total)
	}
}

func TestRecordPaymentValidation(t *testing.T) {
	svc, m := newBilling(t)
	ctx := context.Background()
	inv := createInvoice(t, svc, m)

	tests := []struct {
		name string
		in   PaymentInput
		want error
	}{
		{"zero amount", PaymentInput{Amount: dec("0")}, models.ErrInvalidAmount},
		{"negative amount", PaymentInput{Amount: dec("-5")}, models.ErrInvalidAmount},
		{"unknown mode", PaymentInput{Amount: dec("5"), PaymentMode: "barter"}, models.ErrInvalidPaymentMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.RecordPayment(ctx, inv.ID, tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSplitPaymentsMatchSinglePayment(t *testing.T) {
	svc, m := newBilling(t)
	ctx := context.Background()

	split := createInvoice(t, svc, m)
	single := createInvoice(t, svc, m)

	if _, _, err := svc.RecordPayment(ctx, split.ID, PaymentInput{Amount: dec("30.25")}); err != nil {
		t.Fatal(err)
	}
	split, _, err := svc.RecordPayment(ctx, split.ID, PaymentInput{Amount: dec("19.75")})
	if err != nil {
		t.Fatal(err)
	}
	single, _, err = svc.RecordPayment(ctx, single.ID, PaymentInput{Amount: dec("50")})
	if err != nil {
		t.Fatal(err)
	}

	if !split.PaidAmount.Equal(single.PaidAmount) || !split.BalanceAmount.Equal(single.BalanceAmount) || split.Status != single.Status {
		t.Errorf("split = %s/%s/%s, single = %s/%s/%s",
			split.PaidAmount, split.BalanceAmount, split.Status,
			single.PaidAmount, single.BalanceAmount, single.Status)
	}
}

func TestDeleteInvoice(t *testing.T) {
	svc, m := newBilling(t)
	ctx := context.Background()

	unpaid := createInvoice(t, svc, m)
	if err := svc.DeleteInvoice(ctx, unpaid.ID); err != nil {
		t.Fatalf("delete unpaid: %v", err)
	}
	if _, err := svc.GetInvoice(ctx, unpaid.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("get deleted invoice err = %v, want not found", err)
	}

	paid := createInvoice(t, svc, m)
	if _, _, err := svc.RecordPayment(ctx, paid.ID, PaymentInput{Amount: dec("10")}); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteInvoice(ctx, paid.ID); err == nil {
		t.Error("expected delete to be refused once payments exist")
	}
}

func TestUpdateInvoiceRecalculates(t *testing.T) {
	svc, m := newBilling(t)
	ctx := context.Background()
	inv := createInvoice(t, svc, m)

	discount := dec("0")
	items := []ItemInput{{Description: "Quarterly plan", Quantity: 1, UnitPrice: dec("200")}}
	inv, err := svc.UpdateInvoice(ctx, inv.ID, InvoiceUpdate{Items: &items, Discount: &discount})
	if err != nil {
		t.Fatalf("UpdateInvoice: %v", err)
	}
	if !inv.TotalAmount.Equal(dec("236")) {
		t.Errorf("total = %s, want 236", inv.TotalAmount)
	}
	if !inv.BalanceAmount.Equal(dec("236")) {
		t.Errorf("balance = %s, want 236", inv.BalanceAmount)
	}
}

func TestCounterNext(t *testing.T) {
	c := NewCounter(newTestDB(t))
	ctx := context.Background()
	for want := int64(1); want <= 3; want++ {
		got, err := c.Next(ctx, "invoice-2030")
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if got != want {
			t.Fatalf("Next = %d, want %d", got, want)
		}
	}
	got, err := c.Next(ctx, "payment-2030")
	if err != nil || got != 1 {
		t.Errorf("independent series = %d, %v; want 1", got, err)
	}
}

func TestNumbersContinueAfterExistingRows(t *testing.T) {
	svc, m := newBilling(t)
	ctx := context.Background()

	imported := []models.Invoice{
		{InvoiceNumber: "INV-2025-0007", MemberID: m.ID, InvoiceDate: fixedNow, Status: models.InvoicePaid},
		{InvoiceNumber: "INV-2025-0009", MemberID: m.ID, InvoiceDate: fixedNow, Status: models.InvoicePending},
		{InvoiceNumber: "INV-2024-0042", MemberID: m.ID, InvoiceDate: fixedNow.AddDate(-1, 0, 0), Status: models.InvoicePaid},
	}
	for i := range imported {
		if err := svc.db.Create(&imported[i]).Error; err != nil {
			t.Fatalf("seed invoice: %v", err)
		}
	}
	if err := svc.db.Delete(&imported[1]).Error; err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	payment := models.Payment{
		PaymentNumber: "PAY-2025-0003",
		InvoiceID:     imported[0].ID,
		MemberID:      m.ID,
		Amount:        dec("10"),
		PaymentDate:   fixedNow,
		PaymentMode:   models.ModeCash,
	}
	if err := svc.db.Create(&payment).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	inv := createInvoice(t, svc, m)
	if inv.InvoiceNumber != "INV-2025-0010" {
		t.Errorf("invoice number = %s, want INV-2025-0010", inv.InvoiceNumber)
	}
	_, pay, err := svc.RecordPayment(ctx, inv.ID, PaymentInput{Amount: dec("20")})
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if pay.PaymentNumber != "PAY-2025-0004" {
		t.Errorf("payment number = %s, want PAY-2025-0004", pay.PaymentNumber)
	}
	if next := createInvoice(t, svc, m); next.InvoiceNumber != "INV-2025-0011" {
		t.Errorf("second invoice number = %s, want INV-2025-0011", next.InvoiceNumber)
	}
}
