package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"polopay_backend/internals/features/billing/gateway"
	"polopay_backend/internals/features/billing/installments/model"
)

const dateLayout = "2006-01-02"

type PaymentRequest struct {
	Customer          string     `json:"customer"`
	BillingType       string     `json:"billing_type"`
	Description       string     `json:"description"`
	DueDate           string     `json:"due_date"`
	ExternalReference string     `json:"external_reference,omitempty"`
	TenantID          *uuid.UUID `json:"tenant_id,omitempty"` // honoured for master users only
}

type InstallmentRequest struct {
	Count int             `json:"installment_count"`
	Value decimal.Decimal `json:"installment_value"`
}

type ScheduleEntry struct {
	Number           int             `json:"number"`
	DueDate          string          `json:"due_date"`
	Value            decimal.Decimal `json:"value"`
	DiscountedValue  decimal.Decimal `json:"discounted_value"`
	DiscountDeadline string          `json:"discount_deadline,omitempty"`
}

type PlanCreationResult struct {
	InstallmentID    string           `json:"installment_id"`
	PaymentID        string           `json:"payment_id"`
	InvoiceURL       string           `json:"invoice_url"`
	Status           model.PlanStatus `json:"status"`
	InstallmentCount int              `json:"installment_count"`
	InstallmentValue decimal.Decimal  `json:"installment_value"`
	TotalValue       decimal.Decimal  `json:"total_value"`

	DiscountPerInstallment decimal.Decimal `json:"discount_per_installment"`
	TotalSavings           decimal.Decimal `json:"total_savings"`
	FinalInstallmentValue  decimal.Decimal `json:"final_installment_value"`

	Discount *NormalizedDiscount `json:"discount,omitempty"`
	Splits   []NormalizedSplit   `json:"splits,omitempty"`
	Schedule []ScheduleEntry     `json:"schedule"`
	Gateway  json.RawMessage     `json:"gateway_response,omitempty"`

	// SyncedPayments counts the scheduled payments stored right after creation.
	SyncedPayments int `json:"synced_payments"`

	// Warning is set when the local write failed after the gateway accepted the plan.
	Warning *PersistenceWarning `json:"-"`
}

func (r *PlanCreationResult) WarningMessage() string {
	if r.Warning == nil {
		return ""
	}
	return r.Warning.Error()
}

// CreateInstallmentWithDiscount validates the request, creates the plan at the
// gateway and stores the local copy.
//
// Preconditions fail fast in order. Nothing reaches the gateway unless they
// and both policies pass. Once the gateway accepts the plan the operation
// succeeds; a failed local write only attaches a PersistenceWarning.
func (s *InstallmentService) CreateInstallmentWithDiscount(
	ctx context.Context,
	payment PaymentRequest,
	inst InstallmentRequest,
	splits []SplitRequest,
	discount *DiscountRequest,
	actor ActorContext,
) (*PlanCreationResult, error) {
	dueDate, err := s.checkPreconditions(payment, inst)
	if err != nil {
		return nil, err
	}

	var nd *NormalizedDiscount
	if discount != nil {
		if nd, err = s.discountPolicy().Normalize(*discount, inst.Value); err != nil {
			return nil, err
		}
	}
	normSplits, err := NormalizeSplits(splits, inst.Value)
	if err != nil {
		return nil, err
	}

	tenantID := actor.TenantID
	if actor.Master && payment.TenantID != nil {
		tenantID = payment.TenantID
	}

	req := gateway.CreateInstallmentRequest{
		Customer:          strings.TrimSpace(payment.Customer),
		BillingType:       strings.ToUpper(strings.TrimSpace(payment.BillingType)),
		Description:       strings.TrimSpace(payment.Description),
		DueDate:           dueDate.Format(dateLayout),
		InstallmentCount:  inst.Count,
		InstallmentValue:  inst.Value,
		ExternalReference: payment.ExternalReference,
		IdempotencyKey:    actor.IdempotencyKey,
	}
	if nd != nil {
		d := nd.Gateway()
		req.Discount = &d
	}
	for _, sp := range normSplits {
		req.Splits = append(req.Splits, sp.Gateway())
	}

	remote, err := s.Gateway.CreateInstallment(ctx, req)
	if err != nil {
		return nil, wrapGateway("create_installment", err)
	}

	res := buildResult(remote, inst, dueDate, nd, normSplits)
	plansCreated.WithLabelValues(fmt.Sprint(nd != nil)).Inc()

	plan, disc, splitRows := s.toRows(res, payment, req, tenantID, actor, nd, normSplits)
	event := s.newEvent(plan, model.ActionPlanCreated, actor, map[string]any{
		"payment_id":               res.PaymentID,
		"installment_count":        res.InstallmentCount,
		"installment_value":        res.InstallmentValue,
		"discount_per_installment": res.DiscountPerInstallment,
		"split_count":              len(splitRows),
	})
	if err := s.Repo.SavePlanBundle(ctx, plan, disc, splitRows, event); err != nil {
		res.Warning = &PersistenceWarning{PlanID: res.InstallmentID, Err: err}
		persistenceWarnings.Inc()
		log.Warn().Err(err).
			Str("installment_id", res.InstallmentID).
			Str("payment_id", res.PaymentID).
			Msg("installment created at gateway but local persistence failed")
		return res, nil
	}

	// Webhooks resolve payments through local rows, so pull them now.
	n, err := s.SyncInstallmentPayments(ctx, res.InstallmentID, actor)
	if err != nil {
		log.Warn().Err(err).
			Str("installment_id", res.InstallmentID).
			Msg("initial payment sync failed, webhooks will sync on demand")
	}
	res.SyncedPayments = n

	return res, nil
}

func (s *InstallmentService) checkPreconditions(payment PaymentRequest, inst InstallmentRequest) (time.Time, error) {
	var missing []string
	for _, f := range []struct{ name, val string }{
		{"customer", payment.Customer},
		{"billing_type", payment.BillingType},
		{"description", payment.Description},
		{"due_date", payment.DueDate},
	} {
		if strings.TrimSpace(f.val) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return time.Time{}, invalid("missing required fields: " + strings.Join(missing, ", "))
	}

	if inst.Count < s.Policy.MinInstallments || inst.Count > s.Policy.MaxInstallments {
		return time.Time{}, invalid(fmt.Sprintf("installment count must be between %d and %d", s.Policy.MinInstallments, s.Policy.MaxInstallments))
	}

	if !inst.Value.IsPositive() {
		return time.Time{}, invalid("installment value must be greater than 0")
	}
	if inst.Value.LessThan(s.Policy.MinInstallmentValue) || inst.Value.GreaterThan(s.Policy.MaxInstallmentValue) {
		return time.Time{}, invalid(fmt.Sprintf("installment value must be between %s and %s",
			s.Policy.MinInstallmentValue.StringFixed(2), s.Policy.MaxInstallmentValue.StringFixed(2)))
	}

	due, err := time.Parse(dateLayout, strings.TrimSpace(payment.DueDate))
	if err != nil {
		return time.Time{}, invalid("due date must be formatted as YYYY-MM-DD")
	}
	if due.Before(s.today()) {
		return time.Time{}, invalid("due date cannot be in the past")
	}
	return due, nil
}

func buildResult(remote *gateway.CreateInstallmentResponse, inst InstallmentRequest, due time.Time, nd *NormalizedDiscount, splits []NormalizedSplit) *PlanCreationResult {
	count := decimal.NewFromInt(int64(inst.Count))
	perInst := decimal.Zero
	if nd != nil {
		perInst = nd.PerInstallment
	}

	res := &PlanCreationResult{
		InstallmentID:          remote.InstallmentID,
		PaymentID:              remote.PaymentID,
		InvoiceURL:             remote.InvoiceURL,
		Status:                 model.PlanStatusActive,
		InstallmentCount:       inst.Count,
		InstallmentValue:       inst.Value,
		TotalValue:             inst.Value.Mul(count),
		DiscountPerInstallment: perInst,
		TotalSavings:           perInst.Mul(count),
		FinalInstallmentValue:  inst.Value.Sub(perInst),
		Discount:               nd,
		Splits:                 splits,
		Gateway:                remote.Raw,
	}
	for i := 0; i < inst.Count; i++ {
		d := addMonths(due, i)
		e := ScheduleEntry{
			Number:          i + 1,
			DueDate:         d.Format(dateLayout),
			Value:           inst.Value,
			DiscountedValue: res.FinalInstallmentValue,
		}
		if nd != nil {
			e.DiscountDeadline = d.AddDate(0, 0, nd.DueDateLimitDays).Format(dateLayout)
		}
		res.Schedule = append(res.Schedule, e)
	}
	return res
}

// addMonths moves t by n calendar months, clamping the day to the last day
// of the target month (Jan 31 + 1 = Feb 28/29).
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func (s *InstallmentService) toRows(
	res *PlanCreationResult,
	payment PaymentRequest,
	req gateway.CreateInstallmentRequest,
	tenantID *uuid.UUID,
	actor ActorContext,
	nd *NormalizedDiscount,
	splits []NormalizedSplit,
) (*model.InstallmentPlanModel, *model.InstallmentDiscountModel, []model.InstallmentSplitModel) {
	due, _ := time.Parse(dateLayout, req.DueDate)
	plan := &model.InstallmentPlanModel{
		InstallmentPlanID:             res.InstallmentID,
		InstallmentPlanTenantID:       tenantID,
		InstallmentPlanCustomerRef:    req.Customer,
		InstallmentPlanCount:          res.InstallmentCount,
		InstallmentPlanValue:          res.InstallmentValue,
		InstallmentPlanTotalValue:     res.TotalValue,
		InstallmentPlanFirstDue:       due,
		InstallmentPlanBillingType:    req.BillingType,
		InstallmentPlanDescription:    req.Description,
		InstallmentPlanHasSplit:       len(splits) > 0,
		InstallmentPlanSplitCount:     len(splits),
		InstallmentPlanFirstPaymentID: res.PaymentID,
		InstallmentPlanInvoiceURL:     res.InvoiceURL,
		InstallmentPlanStatus:         model.PlanStatusActive,
		InstallmentPlanCreatedBy:      actor.UserID,
	}

	var disc *model.InstallmentDiscountModel
	if nd != nil {
		t := nd.Type
		plan.InstallmentPlanHasDiscount = true
		plan.InstallmentPlanDiscountType = &t
		plan.InstallmentPlanDiscountValue = decimal.NewNullDecimal(nd.Value)
		disc = &model.InstallmentDiscountModel{
			InstallmentDiscountPlanID: res.InstallmentID,
			InstallmentDiscountType:   nd.Type,
			InstallmentDiscountValue:  nd.Value,
			InstallmentDiscountRule:   nd.Deadline,
			InstallmentDiscountDays:   nd.DueDateLimitDays,
			InstallmentDiscountActive: true,
		}
	}

	rows := splitRows(res.InstallmentID, res.PaymentID, splits)
	return plan, disc, rows
}

func splitRows(planID, paymentID string, splits []NormalizedSplit) []model.InstallmentSplitModel {
	rows := make([]model.InstallmentSplitModel, 0, len(splits))
	for _, sp := range splits {
		rows = append(rows, model.InstallmentSplitModel{
			InstallmentSplitPlanID:    planID,
			InstallmentSplitPaymentID: paymentID,
			InstallmentSplitWalletID:  sp.WalletID,
			InstallmentSplitType:      sp.Type,
			InstallmentSplitPercent:   sp.PercentualValue,
			InstallmentSplitFixed:     sp.FixedValue,
		})
	}
	return rows
}
