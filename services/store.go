package services

import (
	"errors"
	"strings"

	"gymdesk-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// updateVersioned writes every column of model guarded by its version.
// model must be a pointer with its primary key set; version points at its
// Version field. Losing the race yields models.ErrConflict.
func updateVersioned(tx *gorm.DB, model any, version *int) error {
	prev := *version
	*version = prev + 1
	res := tx.Model(model).
		Where("version = ?", prev).
		Select("*").
		Omit("CreatedAt", clause.Associations).
		Updates(model)
	if res.Error != nil {
		*version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		*version = prev
		return models.ErrConflict
	}
	return nil
}

func loadByID[T any](tx *gorm.DB, entity string, id uuid.UUID) (*T, error) {
	var v T
	if err := tx.First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFound(entity)
		}
		return nil, err
	}
	return &v, nil
}

// findMember resolves a uuid or a member code such as MEM123456.
func findMember(tx *gorm.DB, ref string) (*models.Member, error) {
	ref = strings.TrimSpace(ref)
	if id, err := uuid.Parse(ref); err == nil {
		return loadByID[models.Member](tx, "member", id)
	}
	var m models.Member
	if err := tx.Where("member_code = ?", strings.ToUpper(ref)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFound("member")
		}
		return nil, err
	}
	return &m, nil
}

type Page struct {
	Limit int
	Skip  int
}

func (p Page) normalize() Page {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Limit > 500 {
		p.Limit = 500
	}
	if p.Skip < 0 {
		p.Skip = 0
	}
	return p
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	p = p.normalize()
	return q.Limit(p.Limit).Offset(p.Skip)
}
