package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gymdesk-backend/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	recipientTypes = map[string]bool{"member": true, "staff": true, "all": true}
	channels       = map[string]bool{"sms": true, "email": true, "whatsapp": true, "push": true}
)

// NotificationService persists outgoing messages. Delivery is out of process;
// a worker marks records sent or failed.
type NotificationService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db, now: time.Now}
}

type NotificationInput struct {
	RecipientType string
	RecipientID   *uuid.UUID
	Channel       string
	Template      string
	Subject       string
	Message       string
	ScheduledFor  *time.Time
	Context       map[string]any
	CreatedBy     *uuid.UUID
}

func (s *NotificationService) build(in NotificationInput, now time.Time) (*models.Notification, error) {
	in.RecipientType = strings.ToLower(in.RecipientType)
	in.Channel = strings.ToLower(in.Channel)
	if !recipientTypes[in.RecipientType] {
		return nil, models.NewRuleError("invalid_recipient", "recipient type must be member, staff or all")
	}
	if !channels[in.Channel] {
		return nil, models.NewRuleError("invalid_channel", "type must be sms, email, whatsapp or push")
	}
	if strings.TrimSpace(in.Message) == "" {
		return nil, models.NewRuleError("message_required", "message is required")
	}
	if in.RecipientType != "all" && in.RecipientID == nil {
		return nil, models.NewRuleError("recipient_required", "recipient id is required")
	}
	n := &models.Notification{
		RecipientType: in.RecipientType,
		RecipientID:   in.RecipientID,
		Channel:       in.Channel,
		Template:      in.Template,
		Subject:       in.Subject,
		Message:       in.Message,
		ScheduledFor:  in.ScheduledFor,
		CreatedBy:     in.CreatedBy,
		Trigger:       models.TriggerManual,
		Context:       datatypes.JSONMap(in.Context),
	}
	if in.ScheduledFor != nil && in.ScheduledFor.After(now) {
		n.Status = models.NotificationPending
	} else {
		n.Status = models.NotificationSent
		n.SentAt = &now
	}
	return n, nil
}

// Send records one notification. It is marked sent straight away unless it
// is scheduled for later.
func (s *NotificationService) Send(ctx context.Context, in NotificationInput) (*models.Notification, error) {
	n, err := s.build(in, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// BulkSend records one notification per recipient in a single transaction.
func (s *NotificationService) BulkSend(ctx context.Context, recipientType string, recipients []uuid.UUID, in NotificationInput) ([]models.Notification, error) {
	if len(recipients) == 0 {
		return nil, models.NewRuleError("recipients_required", "at least one recipient is required")
	}
	now := s.now()
	out := make([]models.Notification, 0, len(recipients))
	for _, id := range recipients {
		id := id
		in.RecipientType = recipientType
		in.RecipientID = &id
		n, err := s.build(in, now)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&out, 100).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type NotificationFilter struct {
	RecipientType string
	RecipientID   *uuid.UUID
	Channel       string
	Status        string
	Start         *time.Time
	End           *time.Time
	Page
}

func (s *NotificationService) History(ctx context.Context, f NotificationFilter) ([]models.Notification, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Notification{})
	if f.RecipientType != "" {
		q = q.Where("recipient_type = ?", f.RecipientType)
	}
	if f.RecipientID != nil {
		q = q.Where("recipient_id = ?", *f.RecipientID)
	}
	if f.Channel != "" {
		q = q.Where("channel = ?", f.Channel)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Start != nil {
		q = q.Where("created_at >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("created_at <= ?", *f.End)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Notification
	err := f.Page.apply(q.Order("created_at DESC")).Find(&out).Error
	return out, total, err
}

// Pending lists queued notifications whose scheduled time has come.
func (s *NotificationService) Pending(ctx context.Context) ([]models.Notification, error) {
	var out []models.Notification
	err := s.db.WithContext(ctx).
		Where("status = ? AND (scheduled_for IS NULL OR scheduled_for <= ?)", models.NotificationPending, s.now()).
		Order("scheduled_for ASC").
		Find(&out).Error
	return out, err
}

func (s *NotificationService) setStatus(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Notification, error) {
	db := s.db.WithContext(ctx)
	n, err := loadByID[models.Notification](db, "notification", id)
	if err != nil {
		return nil, err
	}
	if err := db.Model(n).Updates(fields).Error; err != nil {
		return nil, err
	}
	return loadByID[models.Notification](db, "notification", id)
}

func (s *NotificationService) MarkSent(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	return s.setStatus(ctx, id, map[string]any{
		"status":        models.NotificationSent,
		"sent_at":       s.now(),
		"error_message": "",
	})
}

func (s *NotificationService) MarkFailed(ctx context.Context, id uuid.UUID, reason string) (*models.Notification, error) {
	return s.setStatus(ctx, id, map[string]any{
		"status":        models.NotificationFailed,
		"error_message": reason,
	})
}

// QueueRenewalReminders queues one membership_expiry notification for every
// active member inside their reminder window and flags the member so the
// reminder is not repeated for the same membership term.
func (s *NotificationService) QueueRenewalReminders(ctx context.Context, now time.Time) (int, error) {
	var candidates []models.Member
	err := s.db.WithContext(ctx).
		Where("membership_status = ? AND membership_renewal_notification_sent = ? AND membership_end_date > ?",
			models.MembershipActive, false, now).
		Find(&candidates).Error
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, c := range candidates {
		if !c.IsExpiringSoon(now, c.Membership.RenewalReminderDays) {
			continue
		}
		id := c.ID
		created := false
		err := withRetry(ctx, func() error {
			created = false
			return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				m, err := loadByID[models.Member](tx, "member", id)
				if err != nil {
					return err
				}
				if m.Membership.RenewalNotificationSent {
					return nil
				}
				days, _ := m.DaysRemaining(now)
				channel := "sms"
				if m.Contact1 == "" && m.Email != "" {
					channel = "email"
				}
				n := &models.Notification{
					RecipientType: "member",
					RecipientID:   &m.ID,
					Channel:       channel,
					Template:      "renewal_reminder",
					Subject:       "Membership renewal",
					Message:       fmt.Sprintf("Hi %s, your membership expires in %d day(s). Renew to keep training.", m.Name, days),
					ScheduledFor:  &now,
					Status:        models.NotificationPending,
					Trigger:       models.TriggerAuto,
					TriggerEvent:  models.EventMembershipExpiry,
					Context: datatypes.JSONMap{
						"memberCode":    m.MemberCode,
						"daysRemaining": days,
						"endDate":       m.Membership.EndDate,
					},
				}
				if err := tx.Create(n).Error; err != nil {
					return err
				}
				m.Membership.RenewalNotificationSent = true
				if err := updateVersioned(tx, m, &m.Version); err != nil {
					return err
				}
				created = true
				return nil
			})
		})
		if err != nil {
			return queued, fmt.Errorf("queue reminder for %s: %w", c.MemberCode, err)
		}
		if created {
			queued++
		}
	}
	if queued > 0 {
		slog.Info("renewal reminders queued", "count", queued)
	}
	return queued, nil
}

// ExpireMemberships flags every lapsed, unfrozen membership as expired.
func (s *NotificationService) ExpireMemberships(ctx context.Context, now time.Time) (int, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Member{}).
		Where("membership_end_date < ? AND membership_status = ? AND membership_currently_frozen = ?",
			now, models.MembershipActive, false).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, id := range ids {
		id := id
		changed := false
		err := withRetry(ctx, func() error {
			changed = false
			return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				m, err := loadByID[models.Member](tx, "member", id)
				if err != nil {
					return err
				}
				if !m.Expire(now) {
					return nil
				}
				if err := updateVersioned(tx, m, &m.Version); err != nil {
					return err
				}
				changed = true
				return nil
			})
		})
		if err != nil {
			return expired, err
		}
		if changed {
			expired++
		}
	}
	if expired > 0 {
		slog.Info("memberships expired", "count", expired)
	}
	return expired, nil
}
