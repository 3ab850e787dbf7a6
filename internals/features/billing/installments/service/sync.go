package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"polopay_backend/internals/features/billing/gateway"
	"polopay_backend/internals/features/billing/installments/model"
)

// SyncInstallmentPayments pulls the scheduled payments of a plan from the
// gateway and upserts them locally. Entries are numbered by their position in
// the gateway listing. A failing entry is logged and skipped; the count of
// stored entries is returned.
//
// For a master actor a plan missing locally (left behind by a failed local
// save) is rebuilt from the gateway first. Other actors get NotFound.
func (s *InstallmentService) SyncInstallmentPayments(ctx context.Context, planID string, actor ActorContext) (int, error) {
	plan, err := s.loadPlan(ctx, planID, actor)
	var nf *NotFoundError
	if err != nil && !(actor.Master && errors.As(err, &nf)) {
		return 0, err
	}

	remote, err := s.Gateway.ListInstallmentPayments(ctx, planID)
	if err != nil {
		return 0, wrapGateway("list_installment_payments", err)
	}
	if len(remote) == 0 {
		return 0, ErrNoPaymentsFromGateway
	}

	if plan == nil {
		if plan, err = s.restorePlan(ctx, planID, remote, actor); err != nil {
			return 0, err
		}
	}

	synced := 0
	for i, p := range remote {
		row, err := s.paymentRow(plan, i+1, p)
		if err == nil {
			err = s.Repo.UpsertPayment(ctx, row)
		}
		if err != nil {
			log.Warn().Err(err).
				Str("plan_id", planID).
				Str("payment_id", p.ID).
				Int("number", i+1).
				Msg("sync: skipping payment")
			continue
		}
		synced++
	}
	paymentsSynced.Add(float64(synced))

	s.audit(ctx, plan, model.ActionPaymentsSynced, actor, map[string]any{
		"listed": len(remote),
		"synced": synced,
	})
	return synced, nil
}

func (s *InstallmentService) paymentRow(plan *model.InstallmentPlanModel, number int, p gateway.Payment) (*model.InstallmentPaymentModel, error) {
	due, err := time.Parse(dateLayout, p.DueDate)
	if err != nil {
		return nil, err
	}
	status := model.ParsePaymentStatus(p.Status)
	row := &model.InstallmentPaymentModel{
		InstallmentPaymentID:       p.ID,
		InstallmentPaymentPlanID:   plan.InstallmentPlanID,
		InstallmentPaymentNumber:   number,
		InstallmentPaymentTenantID: plan.InstallmentPlanTenantID,
		InstallmentPaymentDueDate:  due,
		InstallmentPaymentValue:    p.Value,
		InstallmentPaymentStatus:   status,
		InstallmentPaymentInvoice:  p.InvoiceURL,
	}
	if status.Paid() {
		row.InstallmentPaymentPaidAt = s.paidAt(p.PaymentDate)
	}
	return row, nil
}

// paidAt uses the gateway's payment date when present, otherwise now.
func (s *InstallmentService) paidAt(paymentDate string) *time.Time {
	if d, err := time.Parse(dateLayout, paymentDate); err == nil {
		return &d
	}
	now := s.Now().UTC()
	return &now
}

// restorePlan recreates the local row of a plan that exists only at the
// gateway. Discount and split metadata cannot be recovered and stay empty.
func (s *InstallmentService) restorePlan(ctx context.Context, planID string, remote []gateway.Payment, actor ActorContext) (*model.InstallmentPlanModel, error) {
	inst, err := s.Gateway.GetInstallment(ctx, planID)
	if err != nil {
		return nil, wrapGateway("get_installment", err)
	}
	if inst.Deleted {
		return nil, &NotFoundError{Resource: "installment plan", ID: planID}
	}
	first := remote[0]
	due, err := time.Parse(dateLayout, first.DueDate)
	if err != nil {
		return nil, err
	}

	count := inst.InstallmentCount
	if count <= 0 {
		count = len(remote)
	}
	value := inst.PaymentValue
	if value.IsZero() {
		value = first.Value
	}
	total := inst.Value
	if total.IsZero() {
		total = value.Mul(decimal.NewFromInt(int64(count)))
	}

	plan := &model.InstallmentPlanModel{
		InstallmentPlanID:             planID,
		InstallmentPlanTenantID:       actor.TenantID,
		InstallmentPlanCustomerRef:    inst.Customer,
		InstallmentPlanCount:          count,
		InstallmentPlanValue:          value,
		InstallmentPlanTotalValue:     total,
		InstallmentPlanFirstDue:       due,
		InstallmentPlanBillingType:    inst.BillingType,
		InstallmentPlanDescription:    inst.Description,
		InstallmentPlanFirstPaymentID: first.ID,
		InstallmentPlanInvoiceURL:     first.InvoiceURL,
		InstallmentPlanStatus:         model.PlanStatusActive,
		InstallmentPlanCreatedBy:      actor.UserID,
	}
	event := s.newEvent(plan, model.ActionPlanRestored, actor, map[string]any{
		"installment_count": count,
		"installment_value": value,
	})
	if err := s.Repo.SavePlanBundle(ctx, plan, nil, nil, event); err != nil {
		return nil, err
	}
	log.Info().Str("plan_id", planID).Str("actor", actor.Label).Msg("plan restored from gateway")
	return plan, nil
}
