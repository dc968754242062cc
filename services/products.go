package services

import (
	"context"
	"strings"

	"gymdesk-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func validateProduct(p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return models.NewRuleError("name_required", "name is required")
	}
	if p.Price.IsNegative() {
		return models.NewRuleError("invalid_price", "price cannot be negative")
	}
	if p.Category != "" && !models.ValidCategory(p.Category) {
		return models.NewRuleError("invalid_category", "category must be membership, session_pack, merchandise or other")
	}
	if p.Duration < 0 || p.SessionCredits < 0 || p.TotalSessions < 0 {
		return models.NewRuleError("invalid_product", "duration and session counts cannot be negative")
	}
	for _, st := range p.SessionTypes {
		if strings.TrimSpace(st.Name) == "" || st.SessionsIncluded < 0 {
			return models.NewRuleError("invalid_session_type", "session types need a name and a non-negative count")
		}
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return loadByID[models.Product](s.db.WithContext(ctx), "product", id)
}

// List returns active products unless status is "all" or another status.
func (s *ProductService) List(ctx context.Context, status, category string) ([]models.Product, error) {
	q := s.db.WithContext(ctx).Model(&models.Product{})
	switch status {
	case "":
		q = q.Where("status = ?", models.ProductActive)
	case "all":
	default:
		q = q.Where("status = ?", status)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var out []models.Product
	err := q.Order("name ASC").Find(&out).Error
	return out, err
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, fn func(p *models.Product)) (*models.Product, error) {
	var out *models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := loadByID[models.Product](tx, "product", id)
		if err != nil {
			return err
		}
		fn(p)
		p.ID = id
		if err := validateProduct(p); err != nil {
			return err
		}
		if err := tx.Select("*").Omit("CreatedAt").Save(p).Error; err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

// Delete deactivates the product; sales and memberships keep referencing it.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("status", models.ProductInactive)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NotFound("product")
	}
	return nil
}
