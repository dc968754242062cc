package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"gymdesk-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAppointmentService(db *gorm.DB) *AppointmentService {
	return &AppointmentService{db: db, now: time.Now}
}

var ErrAppointmentCancelled = models.NewRuleError("appointment_cancelled", "cannot complete a cancelled appointment")

type AppointmentInput struct {
	MemberRef     string
	Date          time.Time
	Time          string
	Type          string
	SessionType   string
	SessionPlanID *uuid.UUID
	StaffID       *uuid.UUID
	Notes         string
}

// currentPlan returns the member's current plan, or nil when none is set or
// the product no longer exists.
func currentPlan(tx *gorm.DB, m *models.Member) (*models.Product, error) {
	if m.Membership.CurrentPlanID == nil {
		return nil, nil
	}
	var p models.Product
	err := tx.First(&p, "id = ?", *m.Membership.CurrentPlanID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create books an appointment. A session-typed appointment needs a credit of
// that type unless the member's plan is unlimited.
func (s *AppointmentService) Create(ctx context.Context, in AppointmentInput) (*models.Appointment, error) {
	var out *models.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := findMember(tx, in.MemberRef)
		if err != nil {
			return err
		}
		a := &models.Appointment{
			MemberID:      member.ID,
			StaffID:       in.StaffID,
			Date:          in.Date,
			Time:          in.Time,
			Type:          in.Type,
			SessionType:   strings.TrimSpace(in.SessionType),
			SessionPlanID: in.SessionPlanID,
			Status:        models.AppointmentScheduled,
			Notes:         in.Notes,
		}
		if a.SessionType != "" {
			if a.Type == "" {
				a.Type = a.SessionType
			}
			plan, err := currentPlan(tx, member)
			if err != nil {
				return err
			}
			if plan == nil || !plan.IsUnlimited {
				credit := member.SessionCredit(a.SessionType)
				if credit == 0 {
					return models.ErrNoSessions
				}
				a.MemberSessionsRemaining = &credit
			}
		}
		if a.Type == "" {
			a.Type = "personal_training"
		}
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		out = a
		return nil
	})
	return out, err
}

func (s *AppointmentService) Get(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	return loadByID[models.Appointment](s.db.WithContext(ctx), "appointment", id)
}

// Complete marks the appointment completed and spends one session credit the
// first time it is called. Repeat calls leave the ledger alone.
func (s *AppointmentService) Complete(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var out *models.Appointment
	err := withRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			a, err := loadByID[models.Appointment](tx, "appointment", id)
			if err != nil {
				return err
			}
			if a.Status == models.AppointmentCompleted {
				out = a
				return nil
			}
			if a.Status == models.AppointmentCancelled {
				return ErrAppointmentCancelled
			}

			now := s.now()
			a.Status = models.AppointmentCompleted
			a.CompletedAt = &now

			if !a.SessionConsumed && a.SessionType != "" {
				member, err := loadByID[models.Member](tx, "member", a.MemberID)
				if err != nil {
					return err
				}
				if member.ConsumeSession(a.SessionType) {
					if err := updateVersioned(tx, member, &member.Version); err != nil {
						return err
					}
					a.SessionConsumed = true
				} else {
					slog.Warn("appointment completed without session credit", "appointment", a.ID, "sessionType", a.SessionType)
				}
			}
			if err := updateVersioned(tx, a, &a.Version); err != nil {
				return err
			}
			out = a
			return nil
		})
	})
	return out, err
}

type AppointmentUpdate struct {
	Date               *time.Time
	Time               *string
	StaffID            *uuid.UUID
	Notes              *string
	Status             *models.AppointmentStatus
	CancellationReason *string
}

func (s *AppointmentService) Update(ctx context.Context, id uuid.UUID, in AppointmentUpdate) (*models.Appointment, error) {
	if in.Status != nil {
		if !models.ValidAppointmentStatus(*in.Status) {
			return nil, models.NewRuleError("invalid_status", "unknown appointment status")
		}
		if *in.Status == models.AppointmentCompleted {
			return s.Complete(ctx, id)
		}
	}
	var out *models.Appointment
	err := withRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			a, err := loadByID[models.Appointment](tx, "appointment", id)
			if err != nil {
				return err
			}
			rescheduled := false
			if in.Date != nil {
				a.Date = *in.Date
				rescheduled = true
			}
			if in.Time != nil {
				a.Time = *in.Time
				rescheduled = true
			}
			if in.StaffID != nil {
				a.StaffID = in.StaffID
			}
			if in.Notes != nil {
				a.Notes = *in.Notes
			}
			if in.CancellationReason != nil {
				a.CancellationReason = *in.CancellationReason
			}
			if in.Status != nil {
				a.Status = *in.Status
			} else if rescheduled && a.Status == models.AppointmentScheduled {
				a.Status = models.AppointmentRescheduled
			}
			if err := updateVersioned(tx, a, &a.Version); err != nil {
				return err
			}
			out = a
			return nil
		})
	})
	return out, err
}

func (s *AppointmentService) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Appointment{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NotFound("appointment")
	}
	return nil
}

type AppointmentFilter struct {
	MemberID *uuid.UUID
	StaffID  *uuid.UUID
	Status   string
	Start    *time.Time
	End      *time.Time
	Page
}

func (s *AppointmentService) List(ctx context.Context, f AppointmentFilter) ([]models.Appointment, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Appointment{})
	if f.MemberID != nil {
		q = q.Where("member_id = ?", *f.MemberID)
	}
	if f.StaffID != nil {
		q = q.Where("staff_id = ?", *f.StaffID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
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
	var out []models.Appointment
	err := f.Page.apply(q.Order("date ASC, time ASC")).Find(&out).Error
	return out, total, err
}

type AvailableSessions struct {
	MemberID     uuid.UUID                 `json:"memberId"`
	SessionTypes []models.AvailableSession `json:"sessionTypes"`
	PlanName     string                    `json:"planName"`
	IsUnlimited  bool                      `json:"isUnlimited"`
}

func (s *AppointmentService) AvailableSessions(ctx context.Context, memberRef string) (*AvailableSessions, error) {
	db := s.db.WithContext(ctx)
	member, err := findMember(db, memberRef)
	if err != nil {
		return nil, err
	}
	plan, err := currentPlan(db, member)
	if err != nil {
		return nil, err
	}
	out := &AvailableSessions{MemberID: member.ID, SessionTypes: member.AvailableSessions(), PlanName: "No Active Plan"}
	if plan != nil {
		out.PlanName = plan.Name
		out.IsUnlimited = plan.IsUnlimited
	}
	return out, nil
}

type SessionTypeCount struct {
	SessionType string `json:"sessionType"`
	Count       int    `json:"count"`
}

type SessionTypeSummary struct {
	TotalAppointments int                `json:"totalAppointments"`
	BySessionType     []SessionTypeCount `json:"bySessionType"`
}

func (s *AppointmentService) BySessionType(ctx context.Context, start, end *time.Time) (*SessionTypeSummary, error) {
	q := s.db.WithContext(ctx).Model(&models.Appointment{})
	if start != nil {
		q = q.Where("date >= ?", *start)
	}
	if end != nil {
		q = q.Where("date <= ?", *end)
	}
	var rows []SessionTypeCount
	if err := q.Select("session_type, COUNT(*) AS count").Group("session_type").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := &SessionTypeSummary{}
	merged := make([]SessionTypeCount, 0, len(rows))
	index := map[string]int{}
	for _, r := range rows {
		if r.SessionType == "" {
			r.SessionType = models.GeneralSessionType
		}
		out.TotalAppointments += r.Count
		if i, ok := index[r.SessionType]; ok {
			merged[i].Count += r.Count
			continue
		}
		index[r.SessionType] = len(merged)
		merged = append(merged, r)
	}
	rows = merged
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	out.BySessionType = rows
	return out, nil
}
