package model

import "strings"

type PlanStatus string
type PaymentStatus string
type DiscountType string
type DiscountDeadline string
type SplitType string
type EventAction string
type WebhookEventStatus string

const (
	PlanStatusActive    PlanStatus = "ACTIVE"
	PlanStatusCompleted PlanStatus = "COMPLETED"
	PlanStatusCancelled PlanStatus = "CANCELLED"
	PlanStatusSuspended PlanStatus = "SUSPENDED"
)

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusReceived  PaymentStatus = "RECEIVED"
	PaymentStatusOverdue   PaymentStatus = "OVERDUE"
	PaymentStatusConfirmed PaymentStatus = "CONFIRMED"
	PaymentStatusDeleted   PaymentStatus = "DELETED"
)

// ParsePaymentStatus maps a gateway status onto the local set.
// Cash receipts count as RECEIVED; anything unknown is PENDING.
func ParsePaymentStatus(s string) PaymentStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RECEIVED", "RECEIVED_IN_CASH":
		return PaymentStatusReceived
	case "CONFIRMED":
		return PaymentStatusConfirmed
	case "OVERDUE":
		return PaymentStatusOverdue
	case "DELETED", "REFUNDED":
		return PaymentStatusDeleted
	default:
		return PaymentStatusPending
	}
}

// Paid reports whether the payment counts toward plan completion.
func (s PaymentStatus) Paid() bool {
	return s == PaymentStatusReceived || s == PaymentStatusConfirmed
}

const (
	DiscountFixed      DiscountType = "FIXED"
	DiscountPercentage DiscountType = "PERCENTAGE"
)

const (
	DeadlineOnDueDate     DiscountDeadline = "on_due_date"
	DeadlineBeforeDueDate DiscountDeadline = "before_due_date"
	Deadline3DaysBefore   DiscountDeadline = "3_days_before"
	Deadline5DaysBefore   DiscountDeadline = "5_days_before"
)

// DueDateLimitDays is the signed day offset the gateway expects.
func (d DiscountDeadline) DueDateLimitDays() (int, bool) {
	switch d {
	case DeadlineOnDueDate:
		return 0, true
	case DeadlineBeforeDueDate:
		return -1, true
	case Deadline3DaysBefore:
		return -3, true
	case Deadline5DaysBefore:
		return -5, true
	}
	return 0, false
}

const (
	SplitPercentage SplitType = "PERCENTAGE"
	SplitFixed      SplitType = "FIXED"
	SplitMixed      SplitType = "MIXED"
)

const (
	ActionPlanCreated          EventAction = "PLAN_CREATED"
	ActionPlanRestored         EventAction = "PLAN_RESTORED"
	ActionPaymentReceived      EventAction = "PAYMENT_RECEIVED"
	ActionPaymentOverdue       EventAction = "PAYMENT_OVERDUE"
	ActionPaymentDeleted       EventAction = "PAYMENT_DELETED"
	ActionPaymentRestored      EventAction = "PAYMENT_RESTORED"
	ActionStatusChanged        EventAction = "STATUS_CHANGED"
	ActionPaymentBookGenerated EventAction = "PAYMENT_BOOK_GENERATED"
	ActionPaymentsSynced       EventAction = "PAYMENTS_SYNCED"
	ActionSplitsReplaced       EventAction = "SPLITS_REPLACED"
	ActionSuspensionCandidate  EventAction = "SUSPENSION_CANDIDATE"
)

const (
	WebhookEventReceived  WebhookEventStatus = "received"
	WebhookEventProcessed WebhookEventStatus = "processed"
	WebhookEventIgnored   WebhookEventStatus = "ignored"
	WebhookEventFailed    WebhookEventStatus = "failed"
)
