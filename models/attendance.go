package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AttendanceCheckedIn  = "checked-in"
	AttendanceCheckedOut = "checked-out"
)

const (
	MethodManual    = "manual"
	MethodBiometric = "biometric"
	MethodQR        = "qr"
	MethodRFID      = "rfid"
)

type Attendance struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	MemberID              uuid.UUID  `gorm:"type:uuid;index:idx_attendance_member_date;not null" json:"memberId"`
	Date                  string     `gorm:"size:10;index:idx_attendance_member_date;not null" json:"date"`
	CheckInTime           time.Time  `json:"checkInTime"`
	CheckOutTime          *time.Time `json:"checkOutTime,omitempty"`
	Method                string     `gorm:"size:20" json:"method"`
	DeviceID              string     `json:"deviceId,omitempty"`
	BiometricTemplateHash string     `json:"-"`
	Status                string     `gorm:"size:20;index;not null" json:"status"`
	Duration              *int       `json:"duration,omitempty"`
	Location              string     `json:"location,omitempty"`
	// OpenKey is member:date while checked in and NULL afterwards.
	OpenKey   *string   `gorm:"size:64;uniqueIndex" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *Attendance) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func OpenAttendanceKey(memberID uuid.UUID, date string) *string {
	k := memberID.String() + ":" + date
	return &k
}

// CheckOut closes the record. Duration is whole minutes, rounded.
func (a *Attendance) CheckOut(at time.Time) {
	if at.Before(a.CheckInTime) {
		at = a.CheckInTime
	}
	a.CheckOutTime = &at
	a.Status = AttendanceCheckedOut
	minutes := int(math.Round(float64(at.Sub(a.CheckInTime)) / float64(time.Minute)))
	a.Duration = &minutes
	a.OpenKey = nil
}

// DateKey is the calendar day of t as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
