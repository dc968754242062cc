package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"gymdesk-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClassService schedules classes and manages their per-date bookings. Every
// booking change bumps the class version so writers to one class serialise.
type ClassService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewClassService(db *gorm.DB) *ClassService {
	return &ClassService{db: db, now: time.Now}
}

func (s *ClassService) Create(ctx context.Context, c *models.Class) error {
	if err := validateClass(c); err != nil {
		return err
	}
	c.Version = 0
	return s.db.WithContext(ctx).Create(c).Error
}

func validateClass(c *models.Class) error {
	if c.Name == "" {
		return models.NewRuleError("name_required", "class name is required")
	}
	if c.Capacity < 0 {
		return models.NewRuleError("invalid_capacity", "capacity cannot be negative")
	}
	for _, d := range c.DaysOfWeek {
		if d < 0 || d > 6 {
			return models.NewRuleError("invalid_schedule", "days of week must be between 0 and 6")
		}
	}
	if c.IsRecurring && len(c.DaysOfWeek) == 0 {
		return models.NewRuleError("invalid_schedule", "recurring class needs at least one day of week")
	}
	return nil
}

func (s *ClassService) Get(ctx context.Context, id uuid.UUID) (*models.Class, error) {
	return loadByID[models.Class](s.db.WithContext(ctx), "class", id)
}

func (s *ClassService) List(ctx context.Context, status, classType string) ([]models.Class, error) {
	q := s.db.WithContext(ctx).Model(&models.Class{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if classType != "" {
		q = q.Where("type = ?", classType)
	}
	var classes []models.Class
	err := q.Order("time ASC").Find(&classes).Error
	return classes, err
}

// Update applies fn to the stored class under the version check.
func (s *ClassService) Update(ctx context.Context, id uuid.UUID, fn func(c *models.Class)) (*models.Class, error) {
	var out *models.Class
	err := withRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			c, err := loadByID[models.Class](tx, "class", id)
			if err != nil {
				return err
			}
			prevCapacity := c.Capacity
			fn(c)
			if err := validateClass(c); err != nil {
				return err
			}
			if c.Capacity < prevCapacity {
				booked, err := peakConfirmed(tx, id, models.DateKey(s.now()))
				if err != nil {
					return err
				}
				if booked > c.Capacity {
					return models.ErrCapacityBelowBooked
				}
			}
			if err := updateVersioned(tx, c, &c.Version); err != nil {
				return err
			}
			out = c
			return nil
		})
	})
	return out, err
}

// peakConfirmed returns the largest confirmed booking count over the class's
// dates from fromKey on.
func peakConfirmed(tx *gorm.DB, classID uuid.UUID, fromKey string) (int, error) {
	var counts []int
	err := tx.Model(&models.ClassBooking{}).
		Select("COUNT(*)").
		Where("class_id = ? AND status = ? AND session_date >= ?", classID, models.BookingConfirmed, fromKey).
		Group("session_date").
		Pluck("COUNT(*)", &counts).Error
	if err != nil {
		return 0, err
	}
	peak := 0
	for _, n := range counts {
		peak = max(peak, n)
	}
	return peak, nil
}

func (s *ClassService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := loadByID[models.Class](tx, "class", id)
		if err != nil {
			return err
		}
		var confirmed int64
		err = tx.Model(&models.ClassBooking{}).
			Where("class_id = ? AND status = ?", id, models.BookingConfirmed).
			Count(&confirmed).Error
		if err != nil {
			return err
		}
		if confirmed > 0 {
			return models.ErrClassHasBookings
		}
		if err := tx.Where("class_id = ?", id).Delete(&models.ClassBooking{}).Error; err != nil {
			return err
		}
		return tx.Delete(c).Error
	})
}

type BookingResult struct {
	Booking        *models.ClassBooking `json:"booking"`
	AvailableSpots int                  `json:"availableSpots"`
}

// Book reserves a seat for the member on date, or a waitlist place when the
// date is full.
func (s *ClassService) Book(ctx context.Context, classID uuid.UUID, memberRef string, date time.Time) (*BookingResult, error) {
	key := models.DateKey(date)
	var out *BookingResult
	err := withRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			c, err := loadByID[models.Class](tx, "class", classID)
			if err != nil {
				return err
			}
			if c.Status != models.ClassActive {
				return models.ErrClassInactive
			}
			member, err := findMember(tx, memberRef)
			if err != nil {
				return err
			}

			bookings, err := activeBookings(tx, classID, key)
			if err != nil {
				return err
			}
			confirmed, waitlist := 0, 0
			for _, b := range bookings {
				if b.MemberID == member.ID {
					return models.ErrAlreadyBooked
				}
				if b.Status == models.BookingConfirmed {
					confirmed++
				} else {
					waitlist++
				}
			}

			b := &models.ClassBooking{
				ClassID:     classID,
				SessionDate: key,
				MemberID:    member.ID,
				Status:      models.BookingConfirmed,
				BookingDate: s.now(),
			}
			if confirmed >= c.Capacity {
				pos := waitlist + 1
				b.Status = models.BookingWaitlist
				b.WaitlistPosition = &pos
			} else {
				confirmed++
			}
			if err := tx.Create(b).Error; err != nil {
				return err
			}
			if err := updateVersioned(tx, c, &c.Version); err != nil {
				return err
			}
			out = &BookingResult{Booking: b, AvailableSpots: max(c.Capacity-confirmed, 0)}
			return nil
		})
	})
	return out, err
}

// activeBookings returns confirmed and waitlisted bookings for one class date,
// waitlist entries in position order.
func activeBookings(tx *gorm.DB, classID uuid.UUID, key string) ([]models.ClassBooking, error) {
	var bookings []models.ClassBooking
	err := tx.Where("class_id = ? AND session_date = ? AND status IN ?", classID, key,
		[]models.BookingStatus{models.BookingConfirmed, models.BookingWaitlist}).
		Order("booking_date ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	sort.SliceStable(bookings, func(i, j int) bool {
		return waitRank(bookings[i]) < waitRank(bookings[j])
	})
	return bookings, nil
}

func waitRank(b models.ClassBooking) int {
	if b.WaitlistPosition == nil {
		return 0
	}
	return *b.WaitlistPosition
}

type CancelResult struct {
	Booking  *models.ClassBooking  `json:"booking"`
	Promoted []models.ClassBooking `json:"promoted,omitempty"`
}

// CancelBooking cancels the member's booking for date. Waitlisted members
// move up while confirmed bookings are below capacity, and the remaining
// waitlist is renumbered.
func (s *ClassService) CancelBooking(ctx context.Context, classID uuid.UUID, memberRef string, date time.Time) (*CancelResult, error) {
	key := models.DateKey(date)
	var out *CancelResult
	err := withRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			c, err := loadByID[models.Class](tx, "class", classID)
			if err != nil {
				return err
			}
			member, err := findMember(tx, memberRef)
			if err != nil {
				return err
			}
			bookings, err := activeBookings(tx, classID, key)
			if err != nil {
				return err
			}

			idx := -1
			for i := range bookings {
				if bookings[i].MemberID == member.ID {
					idx = i
					break
				}
			}
			if idx < 0 {
				return models.NotFound("booking")
			}

			cancelled := bookings[idx]
			cancelled.Status = models.BookingCancelled
			cancelled.WaitlistPosition = nil
			if err := saveBooking(tx, &cancelled); err != nil {
				return err
			}
			res := &CancelResult{Booking: &cancelled}

			confirmed := 0
			var waiting []models.ClassBooking
			for i, b := range bookings {
				switch {
				case i == idx:
				case b.Status == models.BookingConfirmed:
					confirmed++
				case b.Status == models.BookingWaitlist:
					waiting = append(waiting, b)
				}
			}
			for confirmed < c.Capacity && len(waiting) > 0 {
				promoted := waiting[0]
				promoted.Status = models.BookingConfirmed
				promoted.WaitlistPosition = nil
				if err := saveBooking(tx, &promoted); err != nil {
					return err
				}
				res.Promoted = append(res.Promoted, promoted)
				waiting = waiting[1:]
				confirmed++
				slog.Info("waitlist promoted", "class", classID, "date", key, "member", promoted.MemberID)
			}
			for i := range waiting {
				pos := i + 1
				if waiting[i].WaitlistPosition != nil && *waiting[i].WaitlistPosition == pos {
					continue
				}
				waiting[i].WaitlistPosition = &pos
				if err := saveBooking(tx, &waiting[i]); err != nil {
					return err
				}
			}

			if err := updateVersioned(tx, c, &c.Version); err != nil {
				return err
			}
			out = res
			return nil
		})
	})
	return out, err
}

func saveBooking(tx *gorm.DB, b *models.ClassBooking) error {
	return tx.Model(b).Select("status", "waitlist_position", "updated_at").Updates(b).Error
}

// MarkAttendance records who attended on date. Confirmed bookings of
// members not listed become no-shows.
func (s *ClassService) MarkAttendance(ctx context.Context, classID uuid.UUID, date time.Time, attendees []uuid.UUID) (int, error) {
	key := models.DateKey(date)
	present := make(map[uuid.UUID]bool, len(attendees))
	for _, id := range attendees {
		present[id] = true
	}

	marked := 0
	err := withRetry(ctx, func() error {
		marked = 0
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			c, err := loadByID[models.Class](tx, "class", classID)
			if err != nil {
				return err
			}
			var bookings []models.ClassBooking
			err = tx.Where("class_id = ? AND session_date = ? AND status IN ?", classID, key,
				[]models.BookingStatus{models.BookingConfirmed, models.BookingAttended, models.BookingNoShow}).
				Find(&bookings).Error
			if err != nil {
				return err
			}
			for i := range bookings {
				b := &bookings[i]
				next := b.Status
				if present[b.MemberID] {
					next = models.BookingAttended
					marked++
				} else if b.Status == models.BookingConfirmed {
					next = models.BookingNoShow
				}
				if next == b.Status {
					continue
				}
				b.Status = next
				if err := saveBooking(tx, b); err != nil {
					return err
				}
			}
			return updateVersioned(tx, c, &c.Version)
		})
	})
	return marked, err
}

type ScheduledSession struct {
	ClassID   uuid.UUID  `json:"classID"`
	ClassName string     `json:"className"`
	Type      string     `json:"type,omitempty"`
	Date      string     `json:"date"`
	Time      string     `json:"time"`
	Duration  int        `json:"duration"`
	TrainerID *uuid.UUID `json:"trainerId,omitempty"`
	Location  string     `json:"location,omitempty"`
	Capacity  int        `json:"capacity"`
	Booked    int        `json:"booked"`
	Available int        `json:"available"`
	Waitlist  int        `json:"waitlist"`
}

// Schedule expands active classes over [start, end] with booking counts.
func (s *ClassService) Schedule(ctx context.Context, start, end time.Time) ([]ScheduledSession, error) {
	db := s.db.WithContext(ctx)
	var classes []models.Class
	if err := db.Where("status = ?", models.ClassActive).Find(&classes).Error; err != nil {
		return nil, err
	}
	from, to := models.DateKey(start), models.DateKey(end)

	type count struct {
		ClassID     uuid.UUID
		SessionDate string
		Status      models.BookingStatus
		N           int
	}
	var counts []count
	err := db.Model(&models.ClassBooking{}).
		Select("class_id, session_date, status, COUNT(*) AS n").
		Where("session_date >= ? AND session_date <= ? AND status IN ?", from, to,
			[]models.BookingStatus{models.BookingConfirmed, models.BookingWaitlist}).
		Group("class_id, session_date, status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	type slot struct {
		id  uuid.UUID
		day string
	}
	booked := map[slot]int{}
	waiting := map[slot]int{}
	for _, c := range counts {
		if c.Status == models.BookingConfirmed {
			booked[slot{c.ClassID, c.SessionDate}] = c.N
		} else {
			waiting[slot{c.ClassID, c.SessionDate}] = c.N
		}
	}

	var out []ScheduledSession
	for d := models.DateOnly(start); !d.After(models.DateOnly(end)); d = d.AddDate(0, 0, 1) {
		for i := range classes {
			c := &classes[i]
			if !c.OccursOn(d) {
				continue
			}
			k := slot{c.ID, models.DateKey(d)}
			out = append(out, ScheduledSession{
				ClassID:   c.ID,
				ClassName: c.Name,
				Type:      c.Type,
				Date:      k.day,
				Time:      c.Time,
				Duration:  c.Duration,
				TrainerID: c.TrainerID,
				Location:  c.Location,
				Capacity:  c.Capacity,
				Booked:    booked[k],
				Available: max(c.Capacity-booked[k], 0),
				Waitlist:  waiting[k],
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (s *ClassService) Bookings(ctx context.Context, classID uuid.UUID, date *time.Time) ([]models.ClassBooking, error) {
	q := s.db.WithContext(ctx).Where("class_id = ?", classID)
	if date != nil {
		q = q.Where("session_date = ?", models.DateKey(*date))
	}
	var bookings []models.ClassBooking
	err := q.Order("session_date ASC, booking_date ASC").Find(&bookings).Error
	return bookings, err
}

type MemberBooking struct {
	models.ClassBooking
	ClassName string `json:"className"`
	Time      string `json:"time"`
}

func (s *ClassService) MemberBookings(ctx context.Context, memberRef string) ([]MemberBooking, error) {
	db := s.db.WithContext(ctx)
	member, err := findMember(db, memberRef)
	if err != nil {
		return nil, err
	}
	var bookings []models.ClassBooking
	if err := db.Where("member_id = ?", member.ID).Order("session_date DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	names := map[uuid.UUID]models.Class{}
	out := make([]MemberBooking, 0, len(bookings))
	for _, b := range bookings {
		c, ok := names[b.ClassID]
		if !ok {
			var cls models.Class
			if err := db.First(&cls, "id = ?", b.ClassID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			c = cls
			names[b.ClassID] = c
		}
		out = append(out, MemberBooking{ClassBooking: b, ClassName: c.Name, Time: c.Time})
	}
	return out, nil
}
