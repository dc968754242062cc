package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gymdesk-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BillingService owns invoices and the payments recorded against them.
type BillingService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewBillingService(db *gorm.DB) *BillingService {
	return &BillingService{db: db, now: time.Now}
}

type ItemInput struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	PlanID      *uuid.UUID
}

type InvoiceInput struct {
	MemberRef   string
	Items       []ItemInput
	InvoiceDate *time.Time
	DueDate     *time.Time
	TaxRate     decimal.Decimal
	Discount    decimal.Decimal
	Notes       string
	Draft       bool
	CreatedBy   *uuid.UUID
}

type InvoiceUpdate struct {
	Items    *[]ItemInput
	DueDate  *time.Time
	Notes    *string
	TaxRate  *decimal.Decimal
	Discount *decimal.Decimal
	Status   *models.InvoiceStatus
}

type PaymentInput struct {
	Amount        decimal.Decimal
	PaymentMode   string
	PaymentDate   *time.Time
	TransactionID string
	ChequeNumber  string
	BankName      string
	Notes         string
	ReceivedBy    *uuid.UUID
}

func buildItems(in []ItemInput) ([]models.InvoiceItem, error) {
	if len(in) == 0 {
		return nil, models.NewRuleError("items_required", "at least one item is required")
	}
	items := make([]models.InvoiceItem, 0, len(in))
	for _, it := range in {
		if strings.TrimSpace(it.Description) == "" {
			return nil, models.NewRuleError("invalid_item", "item description is required")
		}
		if it.Quantity < 1 || it.UnitPrice.IsNegative() {
			return nil, models.NewRuleError("invalid_item", "item quantity must be at least 1 and unit price not negative")
		}
		items = append(items, models.InvoiceItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			PlanID:      it.PlanID,
		})
	}
	return items, nil
}

func checkCharges(taxRate, discount decimal.Decimal) error {
	if taxRate.IsNegative() || taxRate.GreaterThan(hundredPct) {
		return models.NewRuleError("invalid_tax_rate", "tax rate must be between 0 and 100")
	}
	if discount.IsNegative() {
		return models.NewRuleError("invalid_discount", "discount cannot be negative")
	}
	return nil
}

var hundredPct = decimal.NewFromInt(100)

func (s *BillingService) CreateInvoice(ctx context.Context, in InvoiceInput) (*models.Invoice, error) {
	items, err := buildItems(in.Items)
	if err != nil {
		return nil, err
	}
	if err := checkCharges(in.TaxRate, in.Discount); err != nil {
		return nil, err
	}

	var out *models.Invoice
	err = withRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			member, err := findMember(tx, in.MemberRef)
			if err != nil {
				return err
			}
			now := s.now()
			number, err := nextInvoiceNumber(tx, now)
			if err != nil {
				return err
			}

			inv := &models.Invoice{
				InvoiceNumber: number,
				MemberID:      member.ID,
				InvoiceDate:   now,
				DueDate:       in.DueDate,
				Items:         append([]models.InvoiceItem(nil), items...),
				TaxRate:       in.TaxRate,
				Discount:      in.Discount,
				Status:        models.InvoicePending,
				Notes:         in.Notes,
				CreatedBy:     in.CreatedBy,
			}
			if in.InvoiceDate != nil {
				inv.InvoiceDate = *in.InvoiceDate
			}
			if in.Draft {
				inv.Status = models.InvoiceDraft
			}
			inv.Recalculate()
			inv.RefreshStatus(now)

			if err := tx.Create(inv).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return models.ErrConflict
				}
				return err
			}
			out = inv
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	slog.Info("invoice created", "invoice", out.InvoiceNumber, "total", out.TotalAmount.String())
	return out, nil
}

func (s *BillingService) GetInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).Preload("Items").First(&inv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NotFound("invoice")
	}
	return &inv, err
}

func (s *BillingService) UpdateInvoice(ctx context.Context, id uuid.UUID, in InvoiceUpdate) (*models.Invoice, error) {
	var items []models.InvoiceItem
	if in.Items != nil {
		var err error
		if items, err = buildItems(*in.Items); err != nil {
			return nil, err
		}
	}
	if in.Status != nil {
		switch *in.Status {
		case models.InvoiceDraft, models.InvoiceCancelled, models.InvoicePending:
		default:
			return nil, models.NewRuleError("invalid_status", "status can only be set to draft, pending or cancelled")
		}
	}

	var out *models.Invoice
	err := withRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var inv models.Invoice
			if err := tx.Preload("Items").First(&inv, "id = ?", id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return models.NotFound("invoice")
				}
				return err
			}
			if err := inv.CheckEditable(); err != nil {
				return err
			}

			if in.TaxRate != nil {
				inv.TaxRate = *in.TaxRate
			}
			if in.Discount != nil {
				inv.Discount = *in.Discount
			}
			if err := checkCharges(inv.TaxRate, inv.Discount); err != nil {
				return err
			}
			if in.DueDate != nil {
				inv.DueDate = in.DueDate
			}
			if in.Notes != nil {
				inv.Notes = *in.Notes
			}
			if in.Status != nil {
				inv.Status = *in.Status
			}
			if in.Items != nil {
				if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
					return err
				}
				inv.Items = make([]models.InvoiceItem, len(items))
				for i, it := range items {
					it.InvoiceID = inv.ID
					inv.Items[i] = it
				}
			}
			inv.Recalculate()
			inv.RefreshStatus(s.now())

			if in.Items != nil {
				if err := tx.Create(&inv.Items).Error; err != nil {
					return err
				}
			}
			if err := updateVersioned(tx, &inv, &inv.Version); err != nil {
				return err
			}
			out = &inv
			return nil
		})
	})
	return out, err
}

func (s *BillingService) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := loadByID[models.Invoice](tx, "invoice", id)
		if err != nil {
			return err
		}
		if err := inv.CheckDeletable(); err != nil {
			return err
		}
		var payments int64
		if err := tx.Model(&models.Payment{}).Where("invoice_id = ?", id).Count(&payments).Error; err != nil {
			return err
		}
		if payments > 0 {
			return models.ErrInvoiceHasPayments
		}
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("version = ?", inv.Version).Delete(inv)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrConflict
		}
		return nil
	})
}

// RecordPayment applies a payment to an invoice. The payment row and the
// invoice update commit together or not at all.
func (s *BillingService) RecordPayment(ctx context.Context, invoiceID uuid.UUID, in PaymentInput) (*models.Invoice, *models.Payment, error) {
	mode, err := models.ParsePaymentMode(in.PaymentMode)
	if err != nil {
		return nil, nil, err
	}

	var (
		invOut *models.Invoice
		payOut *models.Payment
	)
	err = withRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var inv models.Invoice
			if err := tx.Preload("Items").First(&inv, "id = ?", invoiceID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return models.NotFound("invoice")
				}
				return err
			}
			if err := inv.ValidatePayment(in.Amount); err != nil {
				return err
			}

			now := s.now()
			payment, err := s.newPayment(tx, &inv, mode, in, now)
			if err != nil {
				return err
			}
			if err := inv.ApplyPayment(payment.Entry(), now); err != nil {
				return err
			}
			if err := tx.Create(payment).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return models.ErrConflict
				}
				return err
			}
			if err := updateVersioned(tx, &inv, &inv.Version); err != nil {
				return err
			}
			invOut, payOut = &inv, payment
			return nil
		})
	})
	if err != nil {
		return nil, nil, err
	}
	slog.Info("payment recorded", "payment", payOut.PaymentNumber, "invoice", invOut.InvoiceNumber,
		"amount", payOut.Amount.String(), "status", invOut.Status)
	return invOut, payOut, nil
}

func (s *BillingService) newPayment(tx *gorm.DB, inv *models.Invoice, mode models.PaymentMode, in PaymentInput, now time.Time) (*models.Payment, error) {
	number, err := nextPaymentNumber(tx, now)
	if err != nil {
		return nil, err
	}
	date := now
	if in.PaymentDate != nil {
		date = *in.PaymentDate
	}
	return &models.Payment{
		ID:            uuid.New(),
		PaymentNumber: number,
		InvoiceID:     inv.ID,
		MemberID:      inv.MemberID,
		Amount:        in.Amount,
		PaymentDate:   date,
		PaymentMode:   mode,
		TransactionID: in.TransactionID,
		ChequeNumber:  in.ChequeNumber,
		BankName:      in.BankName,
		Notes:         in.Notes,
		ReceivedBy:    in.ReceivedBy,
	}, nil
}

type InvoiceFilter struct {
	Status   string
	MemberID *uuid.UUID
	Start    *time.Time
	End      *time.Time
	Page
}

func (s *BillingService) ListInvoices(ctx context.Context, f InvoiceFilter) ([]models.Invoice, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Invoice{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.MemberID != nil {
		q = q.Where("member_id = ?", *f.MemberID)
	}
	if f.Start != nil {
		q = q.Where("invoice_date >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("invoice_date <= ?", *f.End)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var invoices []models.Invoice
	err := f.Page.apply(q.Preload("Items").Order("invoice_date DESC")).Find(&invoices).Error
	return invoices, total, err
}

type MemberInvoices struct {
	Invoices         []models.Invoice `json:"invoices"`
	TotalOutstanding decimal.Decimal  `json:"totalOutstanding"`
}

func (s *BillingService) MemberInvoices(ctx context.Context, ref string) (*MemberInvoices, error) {
	db := s.db.WithContext(ctx)
	m, err := findMember(db, ref)
	if err != nil {
		return nil, err
	}
	var invoices []models.Invoice
	if err := db.Preload("Items").Where("member_id = ?", m.ID).Order("invoice_date DESC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, inv := range invoices {
		if inv.Status != models.InvoiceCancelled && inv.BalanceAmount.IsPositive() {
			total = total.Add(inv.BalanceAmount)
		}
	}
	return &MemberInvoices{Invoices: invoices, TotalOutstanding: total}, nil
}

type PaymentFilter struct {
	MemberID  *uuid.UUID
	InvoiceID *uuid.UUID
	Mode      string
	Start     *time.Time
	End       *time.Time
	Page
}

func (s *BillingService) ListPayments(ctx context.Context, f PaymentFilter) ([]models.Payment, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Payment{})
	if f.MemberID != nil {
		q = q.Where("member_id = ?", *f.MemberID)
	}
	if f.InvoiceID != nil {
		q = q.Where("invoice_id = ?", *f.InvoiceID)
	}
	if f.Mode != "" {
		q = q.Where("payment_mode = ?", strings.ToLower(f.Mode))
	}
	if f.Start != nil {
		q = q.Where("payment_date >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("payment_date <= ?", *f.End)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var payments []models.Payment
	err := f.Page.apply(q.Order("payment_date DESC")).Find(&payments).Error
	return payments, total, err
}

func (s *BillingService) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return loadByID[models.Payment](s.db.WithContext(ctx), "payment", id)
}

type MemberPayments struct {
	Payments  []models.Payment `json:"payments"`
	TotalPaid decimal.Decimal  `json:"totalPaid"`
}

func (s *BillingService) MemberPayments(ctx context.Context, ref string) (*MemberPayments, error) {
	db := s.db.WithContext(ctx)
	m, err := findMember(db, ref)
	if err != nil {
		return nil, err
	}
	var payments []models.Payment
	if err := db.Where("member_id = ?", m.ID).Order("payment_date DESC").Find(&payments).Error; err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return &MemberPayments{Payments: payments, TotalPaid: total}, nil
}

// RefreshOverdue re-evaluates open invoices whose due date has passed.
func (s *BillingService) RefreshOverdue(ctx context.Context) (int, error) {
	now := s.now()
	var due []models.Invoice
	err := s.db.WithContext(ctx).
		Where("status IN ? AND due_date < ?", []models.InvoiceStatus{models.InvoicePending, models.InvoicePartial}, now).
		Find(&due).Error
	if err != nil {
		return 0, err
	}
	changed := 0
	for i := range due {
		inv := &due[i]
		before := inv.Status
		inv.RefreshStatus(now)
		if inv.Status == before {
			continue
		}
		if err := updateVersioned(s.db.WithContext(ctx), inv, &inv.Version); err != nil {
			if errors.Is(err, models.ErrConflict) {
				continue
			}
			return changed, err
		}
		changed++
	}
	return changed, nil
}
