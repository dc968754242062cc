package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ReportSnapshot struct {
	ID                      uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ReportType              string          `gorm:"size:20;index;not null" json:"reportType"`
	GeneratedAt             time.Time       `gorm:"index" json:"generatedAt"`
	GeneratedBy             string          `json:"generatedBy"`
	RangeStart              time.Time       `json:"rangeStart"`
	RangeEnd                time.Time       `json:"rangeEnd"`
	Data                    datatypes.JSON  `json:"data"`
	TotalRevenue            decimal.Decimal `gorm:"type:decimal(14,2)" json:"totalRevenue"`
	TotalTransactions       int64           `json:"totalTransactions"`
	TopProduct              string          `json:"topProduct,omitempty"`
	TopStaff                string          `json:"topStaff,omitempty"`
	AverageTransactionValue decimal.Decimal `gorm:"type:decimal(12,2)" json:"averageTransactionValue"`
	Notes                   string          `json:"notes,omitempty"`
	CreatedAt               time.Time       `json:"createdAt"`
}

func (r *ReportSnapshot) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
