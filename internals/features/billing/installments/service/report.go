package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"polopay_backend/internals/features/billing/gateway"
	"polopay_backend/internals/features/billing/installments/model"
	"polopay_backend/internals/features/billing/installments/repository"
)

const detailEventLimit = 50

type PlanDetail struct {
	Plan     *model.InstallmentPlanModel     `json:"plan"`
	Discount *model.InstallmentDiscountModel `json:"discount,omitempty"`
	Splits   []model.InstallmentSplitModel   `json:"splits"`
	Payments []model.InstallmentPaymentModel `json:"payments"`
	Events   []model.InstallmentEventModel   `json:"events"`

	PaidTotal              decimal.Decimal `json:"paid_total"`
	Completion             decimal.Decimal `json:"completion"`
	DiscountPerInstallment decimal.Decimal `json:"discount_per_installment"`
	TotalSavings           decimal.Decimal `json:"total_savings"`
	FinalInstallmentValue  decimal.Decimal `json:"final_installment_value"`

	Remote      *gateway.Installment `json:"remote,omitempty"`
	RemoteError string               `json:"remote_error,omitempty"`
}

// GetInstallmentWithDiscount assembles the stored view of a plan. With
// withRemote set, the gateway's copy is attached as well; a gateway failure
// there only fills RemoteError.
func (s *InstallmentService) GetInstallmentWithDiscount(ctx context.Context, planID string, actor ActorContext, withRemote bool) (*PlanDetail, error) {
	plan, err := s.loadPlan(ctx, planID, actor)
	if err != nil {
		return nil, err
	}
	d := &PlanDetail{Plan: plan}

	if d.Discount, err = s.Repo.FindDiscount(ctx, planID); err != nil {
		return nil, err
	}
	if d.Splits, err = s.Repo.ListSplits(ctx, planID); err != nil {
		return nil, err
	}
	if d.Payments, err = s.Repo.ListPayments(ctx, planID); err != nil {
		return nil, err
	}
	if d.Events, err = s.Repo.ListEvents(ctx, planID, detailEventLimit); err != nil {
		return nil, err
	}
	if d.PaidTotal, err = s.Repo.SumPaid(ctx, planID); err != nil {
		return nil, err
	}
	d.Completion = completion(d.PaidTotal, plan.InstallmentPlanTotalValue)

	d.DiscountPerInstallment = planDiscount(plan)
	d.TotalSavings = d.DiscountPerInstallment.Mul(decimal.NewFromInt(int64(plan.InstallmentPlanCount)))
	d.FinalInstallmentValue = plan.InstallmentPlanValue.Sub(d.DiscountPerInstallment)

	if withRemote {
		remote, err := s.Gateway.GetInstallment(ctx, planID)
		if err != nil {
			d.RemoteError = wrapGateway("get_installment", err).Error()
		} else {
			d.Remote = remote
		}
	}
	return d, nil
}

func planDiscount(plan *model.InstallmentPlanModel) decimal.Decimal {
	if !plan.InstallmentPlanHasDiscount || plan.InstallmentPlanDiscountType == nil || !plan.InstallmentPlanDiscountValue.Valid {
		return decimal.Zero
	}
	return PerInstallmentDiscount(*plan.InstallmentPlanDiscountType, plan.InstallmentPlanDiscountValue.Decimal, plan.InstallmentPlanValue)
}

type PlanQuery struct {
	TenantID *uuid.UUID // master only; ignored for tenant-bound actors
	Status   string
	Customer string
	Search   string
	Offset   int
	Limit    int
}

// ListPlans pages through the plans visible to the actor.
func (s *InstallmentService) ListPlans(ctx context.Context, q PlanQuery, actor ActorContext) ([]model.InstallmentPlanModel, int64, error) {
	f := repository.PlanFilter{Status: q.Status, Customer: q.Customer, Search: q.Search}
	f.TenantID = s.scopeFor(q.TenantID, actor)
	if !actor.Master && f.TenantID == nil {
		return []model.InstallmentPlanModel{}, 0, nil
	}
	return s.Repo.ListPlans(ctx, f, q.Offset, q.Limit)
}

// scopeFor picks the tenant a listing is restricted to.
func (s *InstallmentService) scopeFor(requested *uuid.UUID, actor ActorContext) *uuid.UUID {
	if actor.Master {
		return requested
	}
	return actor.TenantID
}

type Summary struct {
	TenantID          *uuid.UUID       `json:"tenant_id,omitempty"`
	PlansByStatus     map[string]int64 `json:"plans_by_status"`
	TotalPlans        int64            `json:"total_plans"`
	ContractedTotal   decimal.Decimal  `json:"contracted_total"`
	ReceivedTotal     decimal.Decimal  `json:"received_total"`
	OverdueTotal      decimal.Decimal  `json:"overdue_total"`
	PendingTotal      decimal.Decimal  `json:"pending_total"`
	DiscountPotential decimal.Decimal  `json:"discount_potential"`
	CompletionRatio   decimal.Decimal  `json:"completion_ratio"`
}

// Summary aggregates plans and payments of one tenant, or of every tenant for
// a master actor that asks for no tenant.
func (s *InstallmentService) Summary(ctx context.Context, tenantID *uuid.UUID, actor ActorContext) (*Summary, error) {
	scope := s.scopeFor(tenantID, actor)
	if !actor.Master && scope == nil {
		return nil, &NotFoundError{Resource: "tenant", ID: "none"}
	}

	out := &Summary{
		TenantID:          scope,
		PlansByStatus:     map[string]int64{},
		ReceivedTotal:     decimal.Zero,
		OverdueTotal:      decimal.Zero,
		PendingTotal:      decimal.Zero,
		DiscountPotential: decimal.Zero,
	}

	counts, err := s.Repo.CountPlansByStatus(ctx, scope)
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		out.PlansByStatus[c.Status] = c.Total
		out.TotalPlans += c.Total
	}

	if out.ContractedTotal, err = s.Repo.SumPlanTotals(ctx, scope); err != nil {
		return nil, err
	}

	amounts, err := s.Repo.SumPaymentsByStatus(ctx, scope)
	if err != nil {
		return nil, err
	}
	for _, a := range amounts {
		if !a.Amount.Valid {
			continue
		}
		switch status := model.PaymentStatus(a.Status); {
		case status.Paid():
			out.ReceivedTotal = out.ReceivedTotal.Add(a.Amount.Decimal)
		case status == model.PaymentStatusOverdue:
			out.OverdueTotal = out.OverdueTotal.Add(a.Amount.Decimal)
		case status == model.PaymentStatusPending:
			out.PendingTotal = out.PendingTotal.Add(a.Amount.Decimal)
		}
	}

	plans, err := s.Repo.ListDiscountedActivePlans(ctx, scope)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		per := planDiscount(&plans[i])
		if per.IsZero() {
			continue
		}
		open, err := s.Repo.CountOpenPayments(ctx, plans[i].InstallmentPlanID)
		if err != nil {
			log.Warn().Err(err).Str("plan_id", plans[i].InstallmentPlanID).Msg("summary: open payment count failed")
			continue
		}
		if open == 0 {
			// payments not synced yet: every installment is still open
			open = int64(plans[i].InstallmentPlanCount)
		}
		out.DiscountPotential = out.DiscountPotential.Add(per.Mul(decimal.NewFromInt(open)))
	}

	out.CompletionRatio = completion(out.ReceivedTotal, out.ContractedTotal)
	return out, nil
}
