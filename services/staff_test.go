package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gymdesk-backend/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func TestStaffLeaveAndAvailability(t *testing.T) {
	db := newTestDB(t)
	svc := NewStaffService(db, bcrypt.MinCost)
	svc.now = clock
	ctx := context.Background()

	trainer := &models.Staff{Name: "Deepak", Role: "trainer", LeaveBucket: 3}
	desk := &models.Staff{Name: "Esha", Role: "front_desk"}
	for _, st := range []*models.Staff{trainer, desk} {
		if err := svc.Create(ctx, st, ""); err != nil {
			t.Fatalf("Create %s: %v", st.Name, err)
		}
	}
	if desk.LeaveBucket != models.DefaultLeaveBucket {
		t.Errorf("default leave bucket = %d", desk.LeaveBucket)
	}

	from := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	got, err := svc.RequestLeave(ctx, trainer.ID, from, from.AddDate(0, 0, 1), "family")
	if err != nil {
		t.Fatalf("RequestLeave: %v", err)
	}
	if got.LeaveBucket != 1 || len(got.Leaves) != 1 {
		t.Errorf("bucket %d leaves %d, want 1 and 1", got.LeaveBucket, len(got.Leaves))
	}
	if _, err := svc.RequestLeave(ctx, trainer.ID, from, from.AddDate(0, 0, 4), ""); !errors.Is(err, models.ErrInsufficientLeave) {
		t.Errorf("over-bucket leave err = %v", err)
	}

	available, err := svc.Available(ctx, from.Add(10*time.Hour))
	if err != nil {
		t.Fatalf("Available: %v", err)
	}
	if len(available) != 1 || available[0].ID != desk.ID {
		t.Errorf("available = %+v, want only %s", available, desk.Name)
	}
}

func TestStaffAuthenticate(t *testing.T) {
	db := newTestDB(t)
	svc := NewStaffService(db, bcrypt.MinCost)
	svc.now = clock
	ctx := context.Background()

	st := &models.Staff{Name: "Faiz", Role: "admin", Email: "Faiz@Gym.Example"}
	if err := svc.Create(ctx, st, "correct horse"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.Authenticate(ctx, "faiz@gym.example", "correct horse")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.LastLogin == nil || !got.LastLogin.Equal(fixedNow) {
		t.Errorf("last login = %v", got.LastLogin)
	}
	if _, err := svc.Authenticate(ctx, "faiz@gym.example", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@gym.example", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v", err)
	}
}

func TestConvertEnquiry(t *testing.T) {
	db := newTestDB(t)
	members := NewMemberService(db)
	members.now = clock
	svc := NewEnquiryService(db)
	svc.members = members
	ctx := context.Background()

	e := &models.Enquiry{Name: "Gita", Contact: "9811111111", Type: "walk-in"}
	if err := svc.Create(ctx, e); err != nil {
		t.Fatalf("Create: %v", err)
	}
	plan := seedProduct(t, db, models.Product{Name: "Trial", Price: dec("0"), Duration: 7, Category: models.CategoryMembership})

	converted, m, err := svc.Convert(ctx, e.ID, &plan.ID)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if converted.Status != models.EnquiryConverted || converted.ConvertedMemberID == nil || *converted.ConvertedMemberID != m.ID {
		t.Errorf("enquiry = %s -> %v", converted.Status, converted.ConvertedMemberID)
	}
	if m.Name != "Gita" || m.Membership.CurrentPlanID == nil {
		t.Errorf("member = %q plan %v", m.Name, m.Membership.CurrentPlanID)
	}
	if _, _, err := svc.Convert(ctx, e.ID, nil); !errors.Is(err, models.ErrEnquiryConverted) {
		t.Errorf("second convert err = %v", err)
	}
}

func TestProductSoftDelete(t *testing.T) {
	svc := NewProductService(newTestDB(t))
	ctx := context.Background()

	p := &models.Product{Name: "Gloves", Price: dec("799"), Category: models.CategoryMerchandise}
	if err := svc.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Create(ctx, &models.Product{Name: "Bad", Price: dec("-1")}); err == nil {
		t.Error("expected error for negative price")
	}

	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	active, err := svc.List(ctx, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Errorf("active products = %d, want 0", len(active))
	}
	all, err := svc.List(ctx, "all", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].Status != models.ProductInactive {
		t.Errorf("all products = %+v", all)
	}
	if err := svc.Delete(ctx, uuid.New()); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("delete unknown err = %v", err)
	}
}
