package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingWaitlist  BookingStatus = "waitlist"
	BookingAttended  BookingStatus = "attended"
	BookingNoShow    BookingStatus = "no-show"
)

const (
	ClassActive    = "active"
	ClassInactive  = "inactive"
	ClassCancelled = "cancelled"
)

// Class is a recurring or one-off session template.
type Class struct {
	ID          uuid.UUID                `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string                   `gorm:"not null" json:"name"`
	Type        string                   `json:"type,omitempty"`
	Description string                   `json:"description,omitempty"`
	TrainerID   *uuid.UUID               `gorm:"type:uuid;index" json:"trainerId,omitempty"`
	IsRecurring bool                     `json:"isRecurring"`
	DaysOfWeek  datatypes.JSONSlice[int] `json:"daysOfWeek"`
	Date        string                   `gorm:"size:10" json:"date,omitempty"`
	Time        string                   `gorm:"size:5;not null" json:"time"`
	Duration    int                      `json:"duration"`
	Capacity    int                      `gorm:"not null" json:"capacity"`
	Location    string                   `json:"location,omitempty"`
	Status      string                   `gorm:"type:varchar(20);index;not null" json:"status"`
	Notes       string                   `json:"notes,omitempty"`
	ImageURL    string                   `json:"imageUrl,omitempty"`

	Version   int       `gorm:"not null" json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Class) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = ClassActive
	}
	if c.Capacity == 0 {
		c.Capacity = 20
	}
	return nil
}

// OccursOn reports whether the class runs on the calendar day of t.
// DaysOfWeek uses time.Weekday numbering (0 = Sunday).
func (c *Class) OccursOn(t time.Time) bool {
	if !c.IsRecurring {
		return c.Date == DateKey(t)
	}
	for _, d := range c.DaysOfWeek {
		if time.Weekday(d) == t.Weekday() {
			return true
		}
	}
	return false
}

type ClassBooking struct {
	ID               uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ClassID          uuid.UUID     `gorm:"type:uuid;index:idx_class_session;not null" json:"classId"`
	SessionDate      string        `gorm:"size:10;index:idx_class_session;not null" json:"specificDate"`
	MemberID         uuid.UUID     `gorm:"type:uuid;index;not null" json:"memberId"`
	Status           BookingStatus `gorm:"type:varchar(20);not null" json:"status"`
	WaitlistPosition *int          `json:"waitlistPosition,omitempty"`
	BookingDate      time.Time     `json:"bookingDate"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

func (b *ClassBooking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Active bookings hold a seat or a waitlist place.
func (b *ClassBooking) Active() bool {
	return b.Status == BookingConfirmed || b.Status == BookingWaitlist
}
