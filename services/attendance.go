package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"gymdesk-backend/models"
	"gymdesk-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAttendanceService(db *gorm.DB) *AttendanceService {
	return &AttendanceService{db: db, now: time.Now}
}

type CheckInInput struct {
	MemberRef         string
	BiometricTemplate string
	DeviceID          string
	Method            string
	Location          string
	Timestamp         *time.Time
}

// identify resolves the member either directly or through an enrolled
// biometric template.
func identify(tx *gorm.DB, memberRef, template string) (*models.Member, string, error) {
	if memberRef != "" {
		m, err := findMember(tx, memberRef)
		return m, "", err
	}
	if template == "" {
		return nil, "", models.ErrMemberRequired
	}
	hash := utils.HashTemplate(template)
	var bio models.MemberBiometric
	if err := tx.Where("template_hash = ?", hash).Take(&bio).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", models.NotFound("biometric match")
		}
		return nil, "", err
	}
	m, err := loadByID[models.Member](tx, "member", bio.MemberID)
	return m, hash, err
}

// CheckIn opens today's attendance record for an active member.
func (s *AttendanceService) CheckIn(ctx context.Context, in CheckInInput) (*models.Attendance, *models.Member, error) {
	var (
		rec    *models.Attendance
		member *models.Member
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, hash, err := identify(tx, strings.TrimSpace(in.MemberRef), in.BiometricTemplate)
		if err != nil {
			return err
		}
		if m.Status != models.MemberActive {
			return models.ErrMemberInactive
		}

		at := s.now()
		if in.Timestamp != nil {
			at = *in.Timestamp
		}
		day := models.DateKey(at)

		var open int64
		err = tx.Model(&models.Attendance{}).
			Where("member_id = ? AND date = ? AND status = ?", m.ID, day, models.AttendanceCheckedIn).
			Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return models.ErrAlreadyCheckedIn
		}

		method := in.Method
		if method == "" {
			method = models.MethodManual
			if hash != "" {
				method = models.MethodBiometric
			}
		}
		a := &models.Attendance{
			MemberID:              m.ID,
			Date:                  day,
			CheckInTime:           at,
			Method:                method,
			DeviceID:              in.DeviceID,
			BiometricTemplateHash: hash,
			Status:                models.AttendanceCheckedIn,
			Location:              in.Location,
			OpenKey:               models.OpenAttendanceKey(m.ID, day),
		}
		if err := tx.Create(a).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return models.ErrAlreadyCheckedIn
			}
			return err
		}
		rec, member = a, m
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	slog.Info("member checked in", "member", member.MemberCode, "method", rec.Method)
	return rec, member, nil
}

// CheckOut closes the member's open record for the day of the checkout time.
func (s *AttendanceService) CheckOut(ctx context.Context, memberRef string, ts *time.Time) (*models.Attendance, error) {
	var out *models.Attendance
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := findMember(tx, memberRef)
		if err != nil {
			return err
		}
		at := s.now()
		if ts != nil {
			at = *ts
		}
		var a models.Attendance
		err = tx.Where("member_id = ? AND date = ? AND status = ?", m.ID, models.DateKey(at), models.AttendanceCheckedIn).
			Take(&a).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NotFound("active check-in")
		}
		if err != nil {
			return err
		}
		a.CheckOut(at)
		err = tx.Model(&a).
			Select("check_out_time", "status", "duration", "open_key", "updated_at").
			Updates(&a).Error
		if err != nil {
			return err
		}
		out = &a
		return nil
	})
	return out, err
}

// Current lists records still open today.
func (s *AttendanceService) Current(ctx context.Context) ([]models.Attendance, error) {
	var recs []models.Attendance
	err := s.db.WithContext(ctx).
		Where("date = ? AND status = ?", models.DateKey(s.now()), models.AttendanceCheckedIn).
		Order("check_in_time DESC").
		Find(&recs).Error
	return recs, err
}

func (s *AttendanceService) MemberHistory(ctx context.Context, memberRef string, start, end *time.Time, page Page) ([]models.Attendance, error) {
	db := s.db.WithContext(ctx)
	m, err := findMember(db, memberRef)
	if err != nil {
		return nil, err
	}
	q := dateRange(db.Where("member_id = ?", m.ID), start, end)
	var recs []models.Attendance
	err = page.apply(q.Order("check_in_time DESC")).Find(&recs).Error
	return recs, err
}

type AttendanceFilter struct {
	Date   *time.Time
	Status string
	Page
}

func (s *AttendanceService) List(ctx context.Context, f AttendanceFilter) ([]models.Attendance, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Attendance{})
	if f.Date != nil {
		q = q.Where("date = ?", models.DateKey(*f.Date))
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var recs []models.Attendance
	err := f.Page.apply(q.Order("check_in_time DESC")).Find(&recs).Error
	return recs, total, err
}

func dateRange(q *gorm.DB, start, end *time.Time) *gorm.DB {
	if start != nil {
		q = q.Where("date >= ?", models.DateKey(*start))
	}
	if end != nil {
		q = q.Where("date <= ?", models.DateKey(*end))
	}
	return q
}

type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type AttendanceStats struct {
	TotalVisits     int         `json:"totalVisits"`
	UniqueMembers   int         `json:"uniqueMembers"`
	AverageDuration float64     `json:"averageDuration"`
	MaxDuration     int         `json:"maxDuration"`
	MinDuration     int         `json:"minDuration"`
	PeakHours       []HourCount `json:"peakHours"`
}

// Stats summarises visits in the date range. Peak hours are the five busiest
// check-in hours.
func (s *AttendanceService) Stats(ctx context.Context, start, end *time.Time) (*AttendanceStats, error) {
	var recs []models.Attendance
	if err := dateRange(s.db.WithContext(ctx).Model(&models.Attendance{}), start, end).Find(&recs).Error; err != nil {
		return nil, err
	}

	st := &AttendanceStats{TotalVisits: len(recs)}
	members := map[uuid.UUID]struct{}{}
	hours := map[int]int{}
	sum, n := 0, 0
	for _, r := range recs {
		members[r.MemberID] = struct{}{}
		hours[r.CheckInTime.Hour()]++
		if r.Duration == nil || *r.Duration <= 0 {
			continue
		}
		d := *r.Duration
		sum += d
		n++
		if d > st.MaxDuration {
			st.MaxDuration = d
		}
		if st.MinDuration == 0 || d < st.MinDuration {
			st.MinDuration = d
		}
	}
	st.UniqueMembers = len(members)
	if n > 0 {
		st.AverageDuration = float64(sum) / float64(n)
	}
	for h, c := range hours {
		st.PeakHours = append(st.PeakHours, HourCount{Hour: h, Count: c})
	}
	sort.Slice(st.PeakHours, func(i, j int) bool {
		if st.PeakHours[i].Count != st.PeakHours[j].Count {
			return st.PeakHours[i].Count > st.PeakHours[j].Count
		}
		return st.PeakHours[i].Hour < st.PeakHours[j].Hour
	})
	if len(st.PeakHours) > 5 {
		st.PeakHours = st.PeakHours[:5]
	}
	return st, nil
}
