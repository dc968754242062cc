package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gymdesk-backend/models"
)

func TestDoubleCheckInRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewAttendanceService(db)
	svc.now = clock
	ctx := context.Background()
	m := seedMember(t, db, "Isha")

	rec, _, err := svc.CheckIn(ctx, CheckInInput{MemberRef: m.MemberCode})
	if err != nil {
		t.Fatalf("first check-in: %v", err)
	}
	if rec.Date != "2025-03-10" || rec.Method != models.MethodManual {
		t.Errorf("record date/method = %s/%s", rec.Date, rec.Method)
	}

	if _, _, err := svc.CheckIn(ctx, CheckInInput{MemberRef: m.MemberCode}); !errors.Is(err, models.ErrAlreadyCheckedIn) {
		t.Fatalf("second check-in err = %v, want already checked in", err)
	}

	out := fixedNow.Add(90 * time.Minute)
	closed, err := svc.CheckOut(ctx, m.MemberCode, &out)
	if err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if closed.Duration == nil || *closed.Duration != 90 {
		t.Errorf("duration = %v, want 90", closed.Duration)
	}

	if _, _, err := svc.CheckIn(ctx, CheckInInput{MemberRef: m.MemberCode}); err != nil {
		t.Errorf("check-in after check-out: %v", err)
	}
}

func TestCheckInByBiometric(t *testing.T) {
	db := newTestDB(t)
	members := NewMemberService(db)
	members.now = clock
	svc := NewAttendanceService(db)
	svc.now = clock
	ctx := context.Background()
	m := seedMember(t, db, "Jaya")

	if _, err := members.EnrollBiometric(ctx, m.ID.String(), "minutiae-template-1", "door-1"); err != nil {
		t.Fatalf("EnrollBiometric: %v", err)
	}
	rec, got, err := svc.CheckIn(ctx, CheckInInput{BiometricTemplate: "minutiae-template-1", DeviceID: "door-1"})
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if got.ID != m.ID || rec.Method != models.MethodBiometric {
		t.Errorf("matched %s via %s", got.ID, rec.Method)
	}

	if _, _, err := svc.CheckIn(ctx, CheckInInput{BiometricTemplate: "unknown"}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown template err = %v, want not found", err)
	}
}

func TestCheckInInactiveMember(t *testing.T) {
	db := newTestDB(t)
	svc := NewAttendanceService(db)
	svc.now = clock
	m := seedMember(t, db, "Kabir")
	if err := db.Model(m).Update("status", models.MemberSuspended).Error; err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.CheckIn(context.Background(), CheckInInput{MemberRef: m.ID.String()}); !errors.Is(err, models.ErrMemberInactive) {
		t.Errorf("err = %v, want member inactive", err)
	}
}
