package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gymdesk-backend/models"
	"gymdesk-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MemberService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewMemberService(db *gorm.DB) *MemberService {
	return &MemberService{db: db, now: time.Now}
}

type MemberInput struct {
	Name            string
	Gender          string
	DOB             *time.Time
	Contact1        string
	Contact2        string
	Email           string
	Address         string
	EmergencyName   string
	EmergencyNumber string
	Notes           string
	Status          models.MemberStatus
	PlanID          *uuid.UUID
}

// Create registers a member with a fresh MEMxxxxxx code. When a plan is given
// the membership starts today.
func (s *MemberService) Create(ctx context.Context, in MemberInput) (*models.Member, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, models.NewRuleError("name_required", "name is required")
	}

	var member *models.Member
	err := withRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			m := &models.Member{
				MemberCode:      utils.GenerateMemberCode(),
				Name:            strings.TrimSpace(in.Name),
				Gender:          in.Gender,
				DOB:             in.DOB,
				Contact1:        in.Contact1,
				Contact2:        in.Contact2,
				Email:           strings.ToLower(strings.TrimSpace(in.Email)),
				Address:         in.Address,
				EmergencyName:   in.EmergencyName,
				EmergencyNumber: in.EmergencyNumber,
				Notes:           in.Notes,
				Status:          in.Status,
			}
			if in.PlanID != nil {
				plan, err := loadByID[models.Product](tx, "plan", *in.PlanID)
				if err != nil {
					return err
				}
				m.AssignPlan(plan, s.now(), decimal.Zero, nil, true)
				if in.Status != "" {
					m.Status = in.Status
				}
			}
			if err := tx.Create(m).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return models.ErrConflict
				}
				return err
			}
			member = m
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	slog.Info("member created", "member", member.MemberCode)
	return member, nil
}

func (s *MemberService) Get(ctx context.Context, ref string) (*models.Member, error) {
	return findMember(s.db.WithContext(ctx), ref)
}

type MemberFilter struct {
	Status string
	Search string
	Page
}

func (s *MemberService) List(ctx context.Context, f MemberFilter) ([]models.Member, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Member{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(member_code) LIKE ? OR contact1 LIKE ? OR LOWER(email) LIKE ?", like, like, like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var members []models.Member
	if err := f.Page.apply(q.Order("name ASC")).Find(&members).Error; err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

// MemberUpdate carries optional profile fields; nil means unchanged.
type MemberUpdate struct {
	Name            *string
	Gender          *string
	DOB             *time.Time
	Contact1        *string
	Contact2        *string
	Email           *string
	Address         *string
	EmergencyName   *string
	EmergencyNumber *string
	Notes           *string
	Status          *models.MemberStatus
	AutoRenew       *bool
	ReminderDays    *int
	ProfilePicture  *string
}

func (s *MemberService) Update(ctx context.Context, ref string, in MemberUpdate) (*models.Member, error) {
	return s.mutate(ctx, ref, func(_ *gorm.DB, m *models.Member) error {
		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				return models.NewRuleError("name_required", "name is required")
			}
			m.Name = strings.TrimSpace(*in.Name)
		}
		setString(&m.Gender, in.Gender)
		setString(&m.Contact1, in.Contact1)
		setString(&m.Contact2, in.Contact2)
		setString(&m.Address, in.Address)
		setString(&m.EmergencyName, in.EmergencyName)
		setString(&m.EmergencyNumber, in.EmergencyNumber)
		setString(&m.Notes, in.Notes)
		setString(&m.ProfilePicture, in.ProfilePicture)
		if in.Email != nil {
			m.Email = strings.ToLower(strings.TrimSpace(*in.Email))
		}
		if in.DOB != nil {
			m.DOB = in.DOB
		}
		if in.Status != nil {
			m.Status = *in.Status
		}
		if in.AutoRenew != nil {
			m.Membership.AutoRenew = *in.AutoRenew
		}
		if in.ReminderDays != nil && *in.ReminderDays > 0 {
			m.Membership.RenewalReminderDays = *in.ReminderDays
		}
		return nil
	})
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// mutate loads the member, applies fn and writes it back under the version
// check, retrying the whole read-modify-write on conflict.
func (s *MemberService) mutate(ctx context.Context, ref string, fn func(tx *gorm.DB, m *models.Member) error) (*models.Member, error) {
	var out *models.Member
	err := withRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			m, err := findMember(tx, ref)
			if err != nil {
				return err
			}
			if err := fn(tx, m); err != nil {
				return err
			}
			if err := updateVersioned(tx, m, &m.Version); err != nil {
				return err
			}
			out = m
			return nil
		})
	})
	return out, err
}

// Delete soft-deletes a member that has no invoices or payments.
func (s *MemberService) Delete(ctx context.Context, ref string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := findMember(tx, ref)
		if err != nil {
			return err
		}
		var invoices, payments int64
		if err := tx.Model(&models.Invoice{}).Where("member_id = ?", m.ID).Count(&invoices).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Payment{}).Where("member_id = ?", m.ID).Count(&payments).Error; err != nil {
			return err
		}
		if invoices > 0 || payments > 0 {
			return models.ErrMemberHasRecords
		}
		return tx.Delete(m).Error
	})
}

func (s *MemberService) Renew(ctx context.Context, ref string, planID uuid.UUID, autoRenew *bool) (*models.Member, error) {
	return s.mutate(ctx, ref, func(tx *gorm.DB, m *models.Member) error {
		plan, err := loadByID[models.Product](tx, "plan", planID)
		if err != nil {
			return err
		}
		m.Renew(plan, s.now(), nil)
		if autoRenew != nil {
			m.Membership.AutoRenew = *autoRenew
		}
		return nil
	})
}

func (s *MemberService) Freeze(ctx context.Context, ref string, start, end time.Time, reason string, approvedBy *uuid.UUID) (*models.Member, error) {
	return s.mutate(ctx, ref, func(_ *gorm.DB, m *models.Member) error {
		return m.Freeze(start, end, reason, approvedBy)
	})
}

func (s *MemberService) Unfreeze(ctx context.Context, ref string) (*models.Member, error) {
	return s.mutate(ctx, ref, func(_ *gorm.DB, m *models.Member) error {
		return m.Unfreeze()
	})
}

type ExpiringMember struct {
	models.Member
	DaysRemaining int `json:"daysRemaining"`
}

// Expiring lists active memberships ending within the next days days.
func (s *MemberService) Expiring(ctx context.Context, days int) ([]ExpiringMember, error) {
	if days <= 0 {
		days = 7
	}
	now := s.now()
	var members []models.Member
	err := s.db.WithContext(ctx).
		Where("membership_status = ? AND membership_end_date > ? AND membership_end_date <= ?",
			models.MembershipActive, now, now.AddDate(0, 0, days)).
		Order("membership_end_date ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	out := make([]ExpiringMember, 0, len(members))
	for _, m := range members {
		d, _ := m.DaysRemaining(now)
		out = append(out, ExpiringMember{Member: m, DaysRemaining: d})
	}
	return out, nil
}

func (s *MemberService) Expired(ctx context.Context) ([]models.Member, error) {
	var members []models.Member
	err := s.db.WithContext(ctx).
		Where("membership_end_date < ? OR membership_status = ?", s.now(), models.MembershipExpired).
		Order("membership_end_date DESC").
		Find(&members).Error
	return members, err
}

// EnrollBiometric stores a fingerprint template hash for the member.
func (s *MemberService) EnrollBiometric(ctx context.Context, ref, template, deviceID string) (*models.Member, error) {
	if strings.TrimSpace(template) == "" {
		return nil, models.NewRuleError("template_required", "biometric template is required")
	}
	hash := utils.HashTemplate(template)
	return s.mutate(ctx, ref, func(tx *gorm.DB, m *models.Member) error {
		var existing models.MemberBiometric
		err := tx.Where("template_hash = ?", hash).Take(&existing).Error
		switch {
		case err == nil:
			if existing.MemberID != m.ID {
				return models.NewRuleError("template_in_use", "biometric template already enrolled for another member")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			rec := models.MemberBiometric{MemberID: m.ID, TemplateHash: hash, DeviceID: deviceID}
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("enroll biometric: %w", err)
			}
		default:
			return err
		}
		now := s.now()
		m.BiometricEnrolled = true
		m.BiometricEnrolledAt = &now
		return nil
	})
}

type OutstandingBalance struct {
	MemberID         uuid.UUID        `json:"memberId"`
	TotalOutstanding decimal.Decimal  `json:"totalOutstanding"`
	Invoices         []models.Invoice `json:"invoices"`
}

func (s *MemberService) Outstanding(ctx context.Context, ref string) (*OutstandingBalance, error) {
	db := s.db.WithContext(ctx)
	m, err := findMember(db, ref)
	if err != nil {
		return nil, err
	}
	var invoices []models.Invoice
	err = db.Where("member_id = ? AND status IN ?", m.ID,
		[]models.InvoiceStatus{models.InvoicePending, models.InvoicePartial, models.InvoiceOverdue}).
		Order("invoice_date ASC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, inv := range invoices {
		total = total.Add(inv.BalanceAmount)
	}
	return &OutstandingBalance{MemberID: m.ID, TotalOutstanding: total, Invoices: invoices}, nil
}
