package services

import (
	"context"
	"errors"
	"testing"

	"gymdesk-backend/models"

	"github.com/google/uuid"
)

func TestQueueRenewalReminders(t *testing.T) {
	db := newTestDB(t)
	_, soon := memberOnPlan(t, db, "Sana", 5)
	memberOnPlan(t, db, "Tara", 30)

	svc := NewNotificationService(db)
	svc.now = clock
	ctx := context.Background()

	n, err := svc.QueueRenewalReminders(ctx, fixedNow)
	if err != nil {
		t.Fatalf("QueueRenewalReminders: %v", err)
	}
	if n != 1 {
		t.Fatalf("queued = %d, want 1", n)
	}
	if n, _ := svc.QueueRenewalReminders(ctx, fixedNow); n != 0 {
		t.Errorf("second run queued %d, want 0", n)
	}

	pending, err := svc.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}
	p := pending[0]
	if p.RecipientID == nil || *p.RecipientID != soon.ID || p.TriggerEvent != models.EventMembershipExpiry || p.Channel != "sms" {
		t.Errorf("notification = %+v", p)
	}
	if !reloadMember(t, db, soon).Membership.RenewalNotificationSent {
		t.Error("member not flagged")
	}

	sent, err := svc.MarkSent(ctx, p.ID)
	if err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	if sent.Status != models.NotificationSent || sent.SentAt == nil {
		t.Errorf("after MarkSent: %s %v", sent.Status, sent.SentAt)
	}
}

func TestExpireMemberships(t *testing.T) {
	db := newTestDB(t)
	_, lapsed := memberOnPlan(t, db, "Uma", 5)
	_, current := memberOnPlan(t, db, "Vik", 30)

	svc := NewNotificationService(db)
	later := fixedNow.AddDate(0, 0, 10)
	n, err := svc.ExpireMemberships(context.Background(), later)
	if err != nil {
		t.Fatalf("ExpireMemberships: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired = %d, want 1", n)
	}
	got := reloadMember(t, db, lapsed)
	if got.Membership.Status != models.MembershipExpired || got.Status != models.MemberExpired {
		t.Errorf("lapsed member = %s/%s", got.Status, got.Membership.Status)
	}
	if reloadMember(t, db, current).Membership.Status != models.MembershipActive {
		t.Error("current member expired")
	}
}

func TestSendValidation(t *testing.T) {
	svc := NewNotificationService(newTestDB(t))
	svc.now = clock
	ctx := context.Background()
	id := uuid.New()

	tests := []struct {
		name   string
		in     NotificationInput
		reason string
	}{
		{"bad recipient type", NotificationInput{RecipientType: "vendor", Channel: "sms", Message: "hi", RecipientID: &id}, "invalid_recipient"},
		{"bad channel", NotificationInput{RecipientType: "member", Channel: "fax", Message: "hi", RecipientID: &id}, "invalid_channel"},
		{"no message", NotificationInput{RecipientType: "member", Channel: "sms", RecipientID: &id}, "message_required"},
		{"no recipient", NotificationInput{RecipientType: "member", Channel: "sms", Message: "hi"}, "recipient_required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Send(ctx, tt.in)
			var re *models.RuleError
			if !errors.As(err, &re) || re.Reason != tt.reason {
				t.Errorf("err = %v, want reason %s", err, tt.reason)
			}
		})
	}

	n, err := svc.Send(ctx, NotificationInput{RecipientType: "all", Channel: "whatsapp", Message: "Gym closed on Friday"})
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if n.Status != models.NotificationSent {
		t.Errorf("status = %s, want sent", n.Status)
	}
}

func TestBulkSend(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	svc.now = clock
	ctx := context.Background()

	ids := []uuid.UUID{seedMember(t, db, "W").ID, seedMember(t, db, "X").ID}
	out, err := svc.BulkSend(ctx, "member", ids, NotificationInput{Channel: "email", Subject: "Offer", Message: "20% off PT"})
	if err != nil {
		t.Fatalf("BulkSend: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("sent = %d, want 2", len(out))
	}
	hist, total, err := svc.History(ctx, NotificationFilter{RecipientType: "member", Channel: "email"})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if total != 2 || len(hist) != 2 {
		t.Errorf("history = %d/%d, want 2", total, len(hist))
	}

	if _, err := svc.BulkSend(ctx, "member", nil, NotificationInput{Channel: "email", Message: "x"}); err == nil {
		t.Error("expected error for empty recipient list")
	}
}
