package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"polopay_backend/internals/features/billing/installments/model"
)

const (
	EventPaymentReceived = "PAYMENT_RECEIVED"
	EventPaymentOverdue  = "PAYMENT_OVERDUE"
	EventPaymentDeleted  = "PAYMENT_DELETED"
	EventPaymentRestored = "PAYMENT_RESTORED"
)

type WebhookPayment struct {
	ID          string          `json:"id"`
	Installment string          `json:"installment,omitempty"`
	Status      string          `json:"status,omitempty"`
	Value       decimal.Decimal `json:"value"`
	PaymentDate string          `json:"paymentDate,omitempty"`
}

type WebhookEvent struct {
	ID      string         `json:"id,omitempty"`
	Event   string         `json:"event"`
	Payment WebhookPayment `json:"payment"`
}

type WebhookOutcome struct {
	Status     model.WebhookEventStatus `json:"status"`
	Reason     string                   `json:"reason,omitempty"`
	PlanID     string                   `json:"plan_id,omitempty"`
	Completion decimal.Decimal          `json:"completion,omitempty"`
	PlanStatus model.PlanStatus         `json:"plan_status,omitempty"`

	tenantID *uuid.UUID
}

func ignored(reason string) *WebhookOutcome {
	return &WebhookOutcome{Status: model.WebhookEventIgnored, Reason: reason}
}

// ProcessWebhook logs the raw delivery, applies it and records the result on
// the log row. It never returns an error to the caller: failures are logged
// and reported as a failed outcome.
func (s *InstallmentService) ProcessWebhook(ctx context.Context, raw []byte, headers map[string]string) *WebhookOutcome {
	var ev WebhookEvent
	if err := sonic.Unmarshal(raw, &ev); err != nil {
		webhookEvents.WithLabelValues("invalid", string(model.WebhookEventIgnored)).Inc()
		log.Warn().Err(err).Msg("webhook: undecodable payload")
		return ignored("invalid payload")
	}

	entry := &model.GatewayWebhookEventModel{
		GatewayEventType:    ev.Event,
		GatewayEventPayload: datatypes.JSON(raw),
		GatewayEventStatus:  model.WebhookEventReceived,
	}
	if ev.Payment.ID != "" {
		id := ev.Payment.ID
		entry.GatewayEventPaymentID = &id
	}
	if h, err := sonic.Marshal(headers); err == nil {
		entry.GatewayEventHeaders = datatypes.JSON(h)
	}
	logged := true
	if err := s.Repo.CreateWebhookEvent(ctx, entry); err != nil {
		logged = false
		log.Warn().Err(err).Str("event", ev.Event).Msg("webhook: raw log insert failed")
	}

	out, err := s.HandleWebhook(ctx, ev)
	if err != nil {
		out = &WebhookOutcome{Status: model.WebhookEventFailed, Reason: err.Error()}
		log.Error().Err(err).Str("event", ev.Event).Str("payment_id", ev.Payment.ID).Msg("webhook: processing failed")
	}
	webhookEvents.WithLabelValues(ev.Event, string(out.Status)).Inc()

	if logged {
		var planID *string
		if out.PlanID != "" {
			planID = &out.PlanID
		}
		errMsg := ""
		if out.Status == model.WebhookEventFailed {
			errMsg = out.Reason
		}
		if err := s.Repo.FinishWebhookEvent(ctx, entry.GatewayEventID, out.Status, planID, out.tenantID, errMsg); err != nil {
			log.Warn().Err(err).Msg("webhook: raw log update failed")
		}
	}
	return out
}

// syncForPayment pulls the schedule of a locally known plan whose payment
// has not been stored yet, then looks the payment up again. Plans this panel
// never stored are left alone.
func (s *InstallmentService) syncForPayment(ctx context.Context, p WebhookPayment) (*model.InstallmentPaymentModel, error) {
	planID := strings.TrimSpace(p.Installment)
	if planID == "" {
		return nil, gorm.ErrRecordNotFound
	}
	if _, err := s.Repo.FindPlan(ctx, planID); err != nil {
		return nil, err
	}
	if _, err := s.SyncInstallmentPayments(ctx, planID, GatewayActor); err != nil {
		log.Warn().Err(err).Str("plan_id", planID).Str("payment_id", p.ID).Msg("webhook: on-demand sync failed")
		return nil, gorm.ErrRecordNotFound
	}
	return s.Repo.FindPayment(ctx, p.ID)
}

// HandleWebhook applies one gateway event to the stored payment and its plan.
//
// Completion and the overdue count are recomputed from stored payment rows,
// so delivering the same event twice leaves the same state.
func (s *InstallmentService) HandleWebhook(ctx context.Context, ev WebhookEvent) (*WebhookOutcome, error) {
	event := strings.ToUpper(strings.TrimSpace(ev.Event))
	switch event {
	case EventPaymentReceived, EventPaymentOverdue, EventPaymentDeleted, EventPaymentRestored:
	default:
		return ignored("unhandled event"), nil
	}
	if ev.Payment.ID == "" {
		return ignored("payment id missing"), nil
	}

	payment, err := s.Repo.FindPayment(ctx, ev.Payment.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		payment, err = s.syncForPayment(ctx, ev.Payment)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ignored("payment not found"), nil
	}
	if err != nil {
		return nil, err
	}
	plan, err := s.Repo.FindPlan(ctx, payment.InstallmentPaymentPlanID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ignored("plan not found"), nil
	}
	if err != nil {
		return nil, err
	}

	out := &WebhookOutcome{
		Status:     model.WebhookEventProcessed,
		PlanID:     plan.InstallmentPlanID,
		PlanStatus: plan.InstallmentPlanStatus,
		tenantID:   plan.InstallmentPlanTenantID,
	}
	detail := map[string]any{"payment_id": payment.InstallmentPaymentID, "number": payment.InstallmentPaymentNumber}

	switch event {
	case EventPaymentReceived:
		at := s.paidAt(ev.Payment.PaymentDate)
		if err := s.Repo.SetPaymentStatus(ctx, payment.InstallmentPaymentID, model.PaymentStatusReceived, at); err != nil {
			return nil, err
		}
		if err := s.recomputeCompletion(ctx, plan, out); err != nil {
			return nil, err
		}
		detail["completion"] = out.Completion
		s.audit(ctx, plan, model.ActionPaymentReceived, GatewayActor, detail)

	case EventPaymentOverdue:
		if err := s.Repo.SetPaymentStatus(ctx, payment.InstallmentPaymentID, model.PaymentStatusOverdue, nil); err != nil {
			return nil, err
		}
		overdue, err := s.Repo.CountPaymentsByStatus(ctx, plan.InstallmentPlanID, model.PaymentStatusOverdue)
		if err != nil {
			return nil, err
		}
		detail["overdue_count"] = overdue
		s.audit(ctx, plan, model.ActionPaymentOverdue, GatewayActor, detail)
		if threshold := int64(s.Policy.OverdueSuspensionThreshold); threshold > 0 && overdue >= threshold {
			log.Warn().
				Str("plan_id", plan.InstallmentPlanID).
				Int64("overdue", overdue).
				Msg("plan reached overdue threshold; review for manual suspension")
			s.audit(ctx, plan, model.ActionSuspensionCandidate, GatewayActor, map[string]any{"overdue_count": overdue})
			if s.OnSuspensionCandidate != nil {
				s.OnSuspensionCandidate(ctx, plan, overdue)
			}
		}

	case EventPaymentDeleted:
		if err := s.Repo.SetPaymentStatus(ctx, payment.InstallmentPaymentID, model.PaymentStatusDeleted, nil); err != nil {
			return nil, err
		}
		s.audit(ctx, plan, model.ActionPaymentDeleted, GatewayActor, detail)

	case EventPaymentRestored:
		status := model.ParsePaymentStatus(ev.Payment.Status)
		var at *time.Time
		if status.Paid() {
			at = s.paidAt(ev.Payment.PaymentDate)
		}
		if err := s.Repo.SetPaymentStatus(ctx, payment.InstallmentPaymentID, status, at); err != nil {
			return nil, err
		}
		if err := s.recomputeCompletion(ctx, plan, out); err != nil {
			return nil, err
		}
		detail["status"] = status
		detail["completion"] = out.Completion
		s.audit(ctx, plan, model.ActionPaymentRestored, GatewayActor, detail)
	}

	return out, nil
}

// recomputeCompletion sets out.Completion from stored paid amounts and moves
// an ACTIVE plan to COMPLETED once fully paid.
func (s *InstallmentService) recomputeCompletion(ctx context.Context, plan *model.InstallmentPlanModel, out *WebhookOutcome) error {
	paid, err := s.Repo.SumPaid(ctx, plan.InstallmentPlanID)
	if err != nil {
		return err
	}
	out.Completion = completion(paid, plan.InstallmentPlanTotalValue)
	if out.Completion.LessThan(decimal.NewFromInt(1)) {
		return nil
	}

	moved, err := s.Repo.TransitionPlanStatus(ctx, plan.InstallmentPlanID, model.PlanStatusActive, model.PlanStatusCompleted)
	if err != nil {
		return err
	}
	if moved {
		out.PlanStatus = model.PlanStatusCompleted
		s.audit(ctx, plan, model.ActionStatusChanged, GatewayActor, map[string]any{
			"from": model.PlanStatusActive,
			"to":   model.PlanStatusCompleted,
		})
	}
	return nil
}

// completion is paid/total as a ratio rounded to 4 places; 0 for an empty plan.
func completion(paid, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return paid.Div(total).Round(4)
}
