package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestAttendanceCheckOut(t *testing.T) {
	in := time.Date(2025, 4, 2, 7, 0, 0, 0, time.UTC)
	a := &Attendance{
		MemberID:    uuid.New(),
		Date:        DateKey(in),
		CheckInTime: in,
		Status:      AttendanceCheckedIn,
	}
	a.OpenKey = OpenAttendanceKey(a.MemberID, a.Date)

	a.CheckOut(in.Add(90*time.Minute + 40*time.Second))
	if a.Duration == nil || *a.Duration != 91 {
		t.Fatalf("duration = %v, want 91", a.Duration)
	}
	if a.Status != AttendanceCheckedOut || a.OpenKey != nil {
		t.Errorf("status = %s open key = %v", a.Status, a.OpenKey)
	}
}

func TestAttendanceCheckOutBeforeCheckIn(t *testing.T) {
	in := time.Date(2025, 4, 2, 7, 0, 0, 0, time.UTC)
	a := &Attendance{CheckInTime: in}
	a.CheckOut(in.Add(-time.Hour))
	if *a.Duration != 0 {
		t.Errorf("duration = %d, want 0", *a.Duration)
	}
}

func TestStaffLeave(t *testing.T) {
	s := &Staff{LeaveBucket: 3}
	from := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	if err := s.RequestLeave(from, from.AddDate(0, 0, 1), "family"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if s.LeaveBucket != 1 {
		t.Errorf("bucket = %d, want 1", s.LeaveBucket)
	}
	if !s.OnLeave(from.AddDate(0, 0, 1)) || s.OnLeave(from.AddDate(0, 0, 2)) {
		t.Errorf("OnLeave range wrong: %+v", s.Leaves)
	}
	if err := s.RequestLeave(from.AddDate(0, 0, 5), from.AddDate(0, 0, 6), ""); err != ErrInsufficientLeave {
		t.Errorf("err = %v, want ErrInsufficientLeave", err)
	}
	if s.LeaveBucket != 1 || len(s.Leaves) != 1 {
		t.Errorf("rejected leave mutated staff: %+v", s)
	}
}

func TestClassOccursOn(t *testing.T) {
	mon := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	recurring := &Class{IsRecurring: true, DaysOfWeek: []int{1, 3}}
	if !recurring.OccursOn(mon) || recurring.OccursOn(mon.AddDate(0, 0, 1)) {
		t.Errorf("recurring OccursOn wrong")
	}
	once := &Class{Date: "2025-06-02"}
	if !once.OccursOn(mon) || once.OccursOn(mon.AddDate(0, 0, 7)) {
		t.Errorf("one-off OccursOn wrong")
	}
}
