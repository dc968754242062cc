package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gymdesk-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SalesService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSalesService(db *gorm.DB) *SalesService {
	return &SalesService{db: db, now: time.Now}
}

type SaleInput struct {
	MemberRef   string
	ProductID   *uuid.UUID
	Amount      decimal.Decimal
	StaffID     *uuid.UUID
	PaymentMode string
	Description string
	Type        string
}

type SaleResult struct {
	Sale    *models.Sale    `json:"sale"`
	Invoice *models.Invoice `json:"invoice"`
	Payment *models.Payment `json:"payment"`
}

// RecordSale books a point-of-sale transaction. The sale, a settled
// single-line invoice, its payment and the product's effect on the member
// are written in one transaction.
func (s *SalesService) RecordSale(ctx context.Context, in SaleInput) (*SaleResult, error) {
	if in.MemberRef == "" {
		return nil, models.ErrMemberRequired
	}
	if !in.Amount.IsPositive() {
		return nil, models.ErrInvalidAmount
	}
	mode, err := models.ParsePaymentMode(in.PaymentMode)
	if err != nil {
		return nil, err
	}

	var out *SaleResult
	err = withRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res, err := s.recordSale(tx, in, mode)
			if err != nil {
				return err
			}
			out = res
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	slog.Info("sale recorded", "sale", out.Sale.ID, "invoice", out.Invoice.InvoiceNumber,
		"payment", out.Payment.PaymentNumber, "amount", out.Sale.Amount.String())
	return out, nil
}

func (s *SalesService) recordSale(tx *gorm.DB, in SaleInput, mode models.PaymentMode) (*SaleResult, error) {
	member, err := findMember(tx, in.MemberRef)
	if err != nil {
		return nil, err
	}
	var product *models.Product
	if in.ProductID != nil {
		if product, err = loadByID[models.Product](tx, "product", *in.ProductID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	saleType := in.Type
	description := in.Description
	if product != nil {
		if saleType == "" {
			saleType = string(product.Category)
		}
		if description == "" {
			description = product.Name
		}
	}
	if saleType == "" {
		saleType = string(models.CategoryOther)
	}
	if description == "" {
		description = "Sale Item"
	}

	sale := &models.Sale{
		ID:          uuid.New(),
		MemberID:    member.ID,
		ProductID:   in.ProductID,
		StaffID:     in.StaffID,
		Amount:      in.Amount,
		Type:        saleType,
		Description: description,
		PaymentMode: mode,
		Date:        now,
	}

	number, err := nextInvoiceNumber(tx, now)
	if err != nil {
		return nil, err
	}
	inv := &models.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: number,
		MemberID:      member.ID,
		InvoiceDate:   now,
		DueDate:       &now,
		Items: []models.InvoiceItem{{
			Description: description,
			Quantity:    1,
			UnitPrice:   in.Amount,
			PlanID:      in.ProductID,
		}},
		Status:    models.InvoicePending,
		Notes:     "Auto-generated from sale " + sale.ID.String(),
		SaleID:    &sale.ID,
		CreatedBy: in.StaffID,
	}
	inv.Recalculate()
	inv.RefreshStatus(now)

	payNumber, err := nextPaymentNumber(tx, now)
	if err != nil {
		return nil, err
	}
	payment := &models.Payment{
		ID:            uuid.New(),
		PaymentNumber: payNumber,
		InvoiceID:     inv.ID,
		MemberID:      member.ID,
		Amount:        in.Amount,
		PaymentDate:   now,
		PaymentMode:   mode,
		Notes:         "Sale " + sale.ID.String() + " - " + description,
		ReceivedBy:    in.StaffID,
	}
	if err := inv.ApplyPayment(payment.Entry(), now); err != nil {
		return nil, err
	}
	sale.InvoiceID = &inv.ID
	sale.PaymentID = &payment.ID

	if err := tx.Create(sale).Error; err != nil {
		return nil, err
	}
	if err := tx.Create(inv).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.ErrConflict
		}
		return nil, err
	}
	if err := tx.Create(payment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.ErrConflict
		}
		return nil, err
	}

	if product != nil && applyProduct(member, product, in.Amount, inv.ID, now) {
		if err := updateVersioned(tx, member, &member.Version); err != nil {
			return nil, err
		}
	}
	return &SaleResult{Sale: sale, Invoice: inv, Payment: payment}, nil
}

// applyProduct applies a purchased product to the member and reports whether
// the member changed.
func applyProduct(m *models.Member, p *models.Product, amount decimal.Decimal, invoiceID uuid.UUID, now time.Time) bool {
	switch p.Category {
	case models.CategorySessionPack:
		if len(p.SessionTypes) > 0 {
			for _, st := range p.SessionTypes {
				m.AddSessions(st.Name, st.SessionsIncluded)
			}
			return true
		}
		if p.SessionCredits > 0 {
			m.AddSessions(models.GeneralSessionType, p.SessionCredits)
			return true
		}
		return false
	case models.CategoryMembership:
		m.AssignPlan(p, now, amount, &invoiceID, !p.IsUnlimited)
		return true
	}
	return false
}

type SaleFilter struct {
	MemberID *uuid.UUID
	StaffID  *uuid.UUID
	Type     string
	Mode     string
	Start    *time.Time
	End      *time.Time
	Page
}

func (s *SalesService) List(ctx context.Context, f SaleFilter) ([]models.Sale, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Sale{})
	if f.MemberID != nil {
		q = q.Where("member_id = ?", *f.MemberID)
	}
	if f.StaffID != nil {
		q = q.Where("staff_id = ?", *f.StaffID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Mode != "" {
		q = q.Where("payment_mode = ?", f.Mode)
	}
	if f.Start != nil {
		q = q.Where("date >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("date <= ?", *f.End)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var sales []models.Sale
	err := f.Page.apply(q.Order("date DESC")).Find(&sales).Error
	return sales, total, err
}

func (s *SalesService) Get(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	return loadByID[models.Sale](s.db.WithContext(ctx), "sale", id)
}
