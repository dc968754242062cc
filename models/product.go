package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProductCategory string

const (
	CategoryMembership  ProductCategory = "membership"
	CategorySessionPack ProductCategory = "session_pack"
	CategoryMerchandise ProductCategory = "merchandise"
	CategoryOther       ProductCategory = "other"
)

const (
	ProductActive   = "active"
	ProductInactive = "inactive"
)

type PlanSessionType struct {
	Name             string `json:"name"`
	SessionsIncluded int    `json:"sessionsIncluded"`
	Duration         int    `json:"duration,omitempty"`
	Description      string `json:"description,omitempty"`
}

// Product is a catalog entry: a membership plan, a session pack or a plain item.
type Product struct {
	ID             uuid.UUID                            `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string                               `gorm:"not null" json:"name"`
	Price          decimal.Decimal                      `gorm:"type:decimal(12,2);not null" json:"price"`
	Duration       int                                  `json:"duration"`
	Description    string                               `json:"description,omitempty"`
	Category       ProductCategory                      `gorm:"type:varchar(20);index;not null" json:"category"`
	SessionCredits int                                  `json:"sessionCredits"`
	SessionTypes   datatypes.JSONSlice[PlanSessionType] `json:"sessionTypes"`
	TotalSessions  int                                  `json:"totalSessions"`
	IsUnlimited    bool                                 `json:"isUnlimited"`
	Status         string                               `gorm:"type:varchar(20);index;not null" json:"status"`
	CreatedAt      time.Time                            `json:"createdAt"`
	UpdatedAt      time.Time                            `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = ProductActive
	}
	if p.Category == "" {
		p.Category = CategoryOther
	}
	return nil
}

func ValidCategory(c ProductCategory) bool {
	switch c {
	case CategoryMembership, CategorySessionPack, CategoryMerchandise, CategoryOther:
		return true
	}
	return false
}
