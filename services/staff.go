package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gymdesk-backend/models"
	"gymdesk-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type StaffService struct {
	db         *gorm.DB
	bcryptCost int
	now        func() time.Time
}

func NewStaffService(db *gorm.DB, bcryptCost int) *StaffService {
	return &StaffService{db: db, bcryptCost: bcryptCost, now: time.Now}
}

// Create stores a staff record. A non-empty password is hashed for login.
func (s *StaffService) Create(ctx context.Context, st *models.Staff, password string) error {
	if strings.TrimSpace(st.Name) == "" {
		return models.NewRuleError("name_required", "name is required")
	}
	st.Email = strings.ToLower(strings.TrimSpace(st.Email))
	if st.LeaveBucket == 0 {
		st.LeaveBucket = models.DefaultLeaveBucket
	}
	if password != "" {
		hash, err := utils.HashPassword(password, s.bcryptCost)
		if err != nil {
			return err
		}
		st.PasswordHash = hash
	}
	return s.db.WithContext(ctx).Create(st).Error
}

func (s *StaffService) Get(ctx context.Context, id uuid.UUID) (*models.Staff, error) {
	return loadByID[models.Staff](s.db.WithContext(ctx), "staff", id)
}

func (s *StaffService) List(ctx context.Context, status, role string) ([]models.Staff, error) {
	q := s.db.WithContext(ctx).Model(&models.Staff{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var out []models.Staff
	err := q.Order("name ASC").Find(&out).Error
	return out, err
}

func (s *StaffService) update(ctx context.Context, id uuid.UUID, fn func(st *models.Staff) error) (*models.Staff, error) {
	var out *models.Staff
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st, err := loadByID[models.Staff](tx, "staff", id)
		if err != nil {
			return err
		}
		if err := fn(st); err != nil {
			return err
		}
		if err := tx.Select("*").Omit("CreatedAt", "DeletedAt").Save(st).Error; err != nil {
			return err
		}
		out = st
		return nil
	})
	return out, err
}

// Update applies fn and, when password is non-empty, replaces the login hash.
func (s *StaffService) Update(ctx context.Context, id uuid.UUID, password string, fn func(st *models.Staff)) (*models.Staff, error) {
	return s.update(ctx, id, func(st *models.Staff) error {
		fn(st)
		st.ID = id
		if strings.TrimSpace(st.Name) == "" {
			return models.NewRuleError("name_required", "name is required")
		}
		st.Email = strings.ToLower(strings.TrimSpace(st.Email))
		if password != "" {
			hash, err := utils.HashPassword(password, s.bcryptCost)
			if err != nil {
				return err
			}
			st.PasswordHash = hash
		}
		return nil
	})
}

func (s *StaffService) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Staff{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NotFound("staff")
	}
	return nil
}

func (s *StaffService) RequestLeave(ctx context.Context, id uuid.UUID, from, to time.Time, reason string) (*models.Staff, error) {
	return s.update(ctx, id, func(st *models.Staff) error {
		return st.RequestLeave(from, to, reason)
	})
}

// Available lists active staff not on leave on the given day.
func (s *StaffService) Available(ctx context.Context, on time.Time) ([]models.Staff, error) {
	all, err := s.List(ctx, "active", "")
	if err != nil {
		return nil, err
	}
	out := make([]models.Staff, 0, len(all))
	for _, st := range all {
		if !st.OnLeave(on) {
			out = append(out, st)
		}
	}
	return out, nil
}

// Authenticate checks an email and password pair and stamps the login time.
func (s *StaffService) Authenticate(ctx context.Context, email, password string) (*models.Staff, error) {
	var st models.Staff
	err := s.db.WithContext(ctx).Where("email = ? AND status = ?", strings.ToLower(strings.TrimSpace(email)), "active").First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if st.PasswordHash == "" || !utils.CheckPasswordHash(password, st.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	now := s.now()
	if err := s.db.WithContext(ctx).Model(&st).Update("last_login", now).Error; err != nil {
		return nil, err
	}
	st.LastLogin = &now
	return &st, nil
}
