package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped with the entity name by NotFound.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a versioned row changed between read and write.
var ErrConflict = errors.New("concurrent update conflict")

func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// RuleError is a business-rule violation. Reason is stable and machine readable.
type RuleError struct {
	Reason  string
	Message string
}

func (e *RuleError) Error() string { return e.Message }

func (e *RuleError) Is(target error) bool {
	t, ok := target.(*RuleError)
	return ok && t.Reason == e.Reason
}

func NewRuleError(reason, message string) *RuleError {
	return &RuleError{Reason: reason, Message: message}
}

var (
	ErrInvalidAmount       = NewRuleError("invalid_amount", "amount must be greater than zero")
	ErrExceedsBalance      = NewRuleError("exceeds_balance", "payment amount exceeds balance")
	ErrInvoiceLocked       = NewRuleError("invoice_locked", "cannot modify paid invoice")
	ErrInvoiceHasPayments  = NewRuleError("has_payments", "cannot delete invoice with payments")
	ErrInvoiceCancelled    = NewRuleError("invoice_cancelled", "cannot record payment on cancelled invoice")
	ErrMemberRequired      = NewRuleError("member_required", "member is required")
	ErrMemberInactive      = NewRuleError("member_inactive", "member is not active")
	ErrMemberHasRecords    = NewRuleError("member_has_records", "cannot delete member with invoices or payments")
	ErrNoMembership        = NewRuleError("no_membership", "member has no membership")
	ErrAlreadyFrozen       = NewRuleError("already_frozen", "membership is already frozen")
	ErrNotFrozen           = NewRuleError("not_frozen", "membership is not frozen")
	ErrInvalidFreeze       = NewRuleError("invalid_freeze", "freeze end date must be after start date")
	ErrNoSessions          = NewRuleError("no_sessions", "no sessions remaining")
	ErrAlreadyBooked       = NewRuleError("already_booked", "member already booked for this date")
	ErrClassInactive       = NewRuleError("class_inactive", "class is not active")
	ErrClassHasBookings    = NewRuleError("class_has_bookings", "cannot delete class with confirmed bookings")
	ErrCapacityBelowBooked = NewRuleError("capacity_below_booked", "capacity is below confirmed bookings for an upcoming date")
	ErrAlreadyCheckedIn    = NewRuleError("already_checked_in", "member already checked in today")
	ErrInsufficientLeave   = NewRuleError("insufficient_leave", "insufficient leave balance")
	ErrEnquiryConverted    = NewRuleError("enquiry_converted", "enquiry already converted")
	ErrInvalidPaymentMode  = NewRuleError("invalid_payment_mode", "unsupported payment mode")
)
