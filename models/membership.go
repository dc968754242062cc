package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// HasMembership reports whether a plan has ever been assigned.
func (m *Member) HasMembership() bool {
	return m.Membership.CurrentPlanID != nil || m.Membership.EndDate != nil
}

// AssignPlan makes plan the current membership starting at now. The previous
// assignment, if any, is archived into the history. Legacy session counters
// are re-seeded from the plan when resetSessions is set.
func (m *Member) AssignPlan(plan *Product, now time.Time, amount decimal.Decimal, invoiceID *uuid.UUID, resetSessions bool) {
	ms := &m.Membership
	if m.HasMembership() {
		ms.History = append(ms.History, MembershipHistoryEntry{
			PlanID:    ms.CurrentPlanID,
			StartDate: ms.StartDate,
			EndDate:   ms.EndDate,
			Amount:    ms.Amount,
			InvoiceID: ms.InvoiceID,
		})
	}

	start := now
	end := now.AddDate(0, 0, plan.Duration)
	planID := plan.ID
	ms.CurrentPlanID = &planID
	ms.StartDate = &start
	ms.EndDate = &end
	ms.Status = MembershipActive
	ms.Amount = amount
	ms.InvoiceID = invoiceID
	ms.CurrentlyFrozen = false
	ms.RenewalNotificationSent = false
	m.Status = MemberActive

	if resetSessions {
		ms.SessionsByType = nil
		sum := 0
		for _, st := range plan.SessionTypes {
			ms.SessionsByType = append(ms.SessionsByType, SessionRemaining{SessionType: st.Name, Remaining: st.SessionsIncluded})
			sum += st.SessionsIncluded
		}
		ms.SessionsTotal = sum
		if plan.TotalSessions > 0 {
			ms.SessionsTotal = plan.TotalSessions
		}
	}
}

// Renew restarts the membership on plan, priced at the plan's list price.
func (m *Member) Renew(plan *Product, now time.Time, invoiceID *uuid.UUID) {
	m.AssignPlan(plan, now, plan.Price, invoiceID, true)
}

// Freeze records a freeze period and pushes the end date out by its length
// in whole days, rounded up.
func (m *Member) Freeze(start, end time.Time, reason string, approvedBy *uuid.UUID) error {
	if !m.HasMembership() {
		return ErrNoMembership
	}
	if m.Membership.CurrentlyFrozen {
		return ErrAlreadyFrozen
	}
	if !end.After(start) {
		return ErrInvalidFreeze
	}

	ms := &m.Membership
	ms.FreezeHistory = append(ms.FreezeHistory, FreezePeriod{
		StartDate:  start,
		EndDate:    end,
		Reason:     reason,
		ApprovedBy: approvedBy,
	})
	ms.Status = MembershipFrozen
	ms.CurrentlyFrozen = true
	m.Status = MemberFrozen

	if ms.EndDate != nil {
		days := FreezeDays(start, end)
		extended := ms.EndDate.AddDate(0, 0, days)
		ms.EndDate = &extended
	}
	return nil
}

func (m *Member) Unfreeze() error {
	if !m.Membership.CurrentlyFrozen {
		return ErrNotFrozen
	}
	m.Membership.CurrentlyFrozen = false
	m.Membership.Status = MembershipActive
	m.Status = MemberActive
	return nil
}

// FreezeDays is the freeze length in days, rounded up.
func FreezeDays(start, end time.Time) int {
	return int(math.Ceil(float64(end.Sub(start)) / float64(day)))
}

// DaysRemaining is ceil((endDate - now) / 1 day). ok is false without an end date.
func (m *Member) DaysRemaining(now time.Time) (days int, ok bool) {
	if m.Membership.EndDate == nil {
		return 0, false
	}
	return int(math.Ceil(float64(m.Membership.EndDate.Sub(now)) / float64(day))), true
}

func (m *Member) IsExpiringSoon(now time.Time, within int) bool {
	d, ok := m.DaysRemaining(now)
	return ok && d > 0 && d <= within
}

// Expire marks a lapsed membership. It reports whether anything changed.
func (m *Member) Expire(now time.Time) bool {
	ms := &m.Membership
	if ms.EndDate == nil || !ms.EndDate.Before(now) || ms.Status == MembershipExpired || ms.CurrentlyFrozen {
		return false
	}
	ms.Status = MembershipExpired
	if m.Status == MemberActive {
		m.Status = MemberExpired
	}
	return true
}
