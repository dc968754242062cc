package services

import (
	"context"
	"strings"

	"gymdesk-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EnquiryService struct {
	db      *gorm.DB
	members *MemberService
}

func NewEnquiryService(db *gorm.DB) *EnquiryService {
	return &EnquiryService{db: db, members: NewMemberService(db)}
}

func (s *EnquiryService) Create(ctx context.Context, e *models.Enquiry) error {
	if strings.TrimSpace(e.Name) == "" {
		return models.NewRuleError("name_required", "name is required")
	}
	return s.db.WithContext(ctx).Create(e).Error
}

func (s *EnquiryService) Get(ctx context.Context, id uuid.UUID) (*models.Enquiry, error) {
	return loadByID[models.Enquiry](s.db.WithContext(ctx), "enquiry", id)
}

func (s *EnquiryService) List(ctx context.Context, status, enquiryType string) ([]models.Enquiry, error) {
	q := s.db.WithContext(ctx).Model(&models.Enquiry{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if enquiryType != "" {
		q = q.Where("type = ?", enquiryType)
	}
	var out []models.Enquiry
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

func (s *EnquiryService) Update(ctx context.Context, id uuid.UUID, fn func(e *models.Enquiry)) (*models.Enquiry, error) {
	var out *models.Enquiry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		e, err := loadByID[models.Enquiry](tx, "enquiry", id)
		if err != nil {
			return err
		}
		fn(e)
		e.ID = id
		if err := tx.Select("*").Omit("CreatedAt").Save(e).Error; err != nil {
			return err
		}
		out = e
		return nil
	})
	return out, err
}

func (s *EnquiryService) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Enquiry{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NotFound("enquiry")
	}
	return nil
}

// Convert registers the enquirer as a member, optionally on a plan, and
// closes the enquiry against the new member.
func (s *EnquiryService) Convert(ctx context.Context, id uuid.UUID, planID *uuid.UUID) (*models.Enquiry, *models.Member, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if e.Status == models.EnquiryConverted {
		return nil, nil, models.ErrEnquiryConverted
	}
	m, err := s.members.Create(ctx, MemberInput{
		Name:     e.Name,
		Contact1: e.Contact,
		Email:    e.Email,
		Notes:    e.Notes,
		PlanID:   planID,
	})
	if err != nil {
		return nil, nil, err
	}
	res := s.db.WithContext(ctx).Model(&models.Enquiry{}).
		Where("id = ? AND status <> ?", id, models.EnquiryConverted).
		Updates(map[string]any{"status": models.EnquiryConverted, "converted_member_id": m.ID})
	if res.Error != nil {
		return nil, nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil, models.ErrEnquiryConverted
	}
	e.Status = models.EnquiryConverted
	e.ConvertedMemberID = &m.ID
	return e, m, nil
}
