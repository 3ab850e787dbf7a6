package service

import (
	"context"

	"polopay_backend/internals/features/billing/installments/model"
)

// ReplacePaymentSplits swaps the split set stored for one payment of a plan.
// An empty paymentID targets the plan's first payment. The new set is checked
// against the plan's installment value before anything is deleted.
func (s *InstallmentService) ReplacePaymentSplits(ctx context.Context, planID, paymentID string, reqs []SplitRequest, actor ActorContext) ([]NormalizedSplit, error) {
	plan, err := s.loadPlan(ctx, planID, actor)
	if err != nil {
		return nil, err
	}
	if paymentID == "" {
		paymentID = plan.InstallmentPlanFirstPaymentID
	}
	if paymentID == "" {
		return nil, invalid("payment id is required")
	}

	splits, err := NormalizeSplits(reqs, plan.InstallmentPlanValue)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.ReplaceSplits(ctx, planID, paymentID, splitRows(planID, paymentID, splits)); err != nil {
		return nil, err
	}

	s.audit(ctx, plan, model.ActionSplitsReplaced, actor, map[string]any{
		"payment_id": paymentID,
		"count":      len(splits),
	})
	return splits, nil
}
