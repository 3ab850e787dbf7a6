package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"polopay_backend/internals/features/billing/installments/model"
)

type InstallmentRepository struct {
	DB *gorm.DB
}

func NewInstallmentRepository(db *gorm.DB) *InstallmentRepository {
	return &InstallmentRepository{DB: db}
}

/* ===================== plan bundle ===================== */

// SavePlanBundle writes a new plan with its optional discount, splits and the
// creation audit row in one transaction.
func (r *InstallmentRepository) SavePlanBundle(ctx context.Context, plan *model.InstallmentPlanModel, discount *model.InstallmentDiscountModel, splits []model.InstallmentSplitModel, event *model.InstallmentEventModel) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(plan).Error; err != nil {
			return err
		}
		if discount != nil {
			if err := tx.Create(discount).Error; err != nil {
				return err
			}
		}
		if len(splits) > 0 {
			if err := tx.Create(&splits).Error; err != nil {
				return err
			}
		}
		if event != nil {
			if err := tx.Create(event).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

/* ===================== plans ===================== */

func (r *InstallmentRepository) FindPlan(ctx context.Context, planID string) (*model.InstallmentPlanModel, error) {
	var p model.InstallmentPlanModel
	if err := r.DB.WithContext(ctx).First(&p, "installment_plan_id = ?", planID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// TransitionPlanStatus moves a plan from one status to another. It reports
// false when the plan was not in the expected status, so concurrent callers
// cannot both perform the same transition.
func (r *InstallmentRepository) TransitionPlanStatus(ctx context.Context, planID string, from, to model.PlanStatus) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&model.InstallmentPlanModel{}).
		Where("installment_plan_id = ? AND installment_plan_status = ?", planID, from).
		Updates(map[string]any{
			"installment_plan_status":     to,
			"installment_plan_updated_at": time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}

func (r *InstallmentRepository) UpdatePlanSplitMeta(ctx context.Context, tx *gorm.DB, planID string, count int) error {
	db := r.DB
	if tx != nil {
		db = tx
	}
	return db.WithContext(ctx).Model(&model.InstallmentPlanModel{}).
		Where("installment_plan_id = ?", planID).
		Updates(map[string]any{
			"installment_plan_has_split":   count > 0,
			"installment_plan_split_count": count,
			"installment_plan_updated_at":  time.Now(),
		}).Error
}

type PlanFilter struct {
	TenantID *uuid.UUID // nil = every tenant
	Status   string
	Customer string
	Search   string
}

func (r *InstallmentRepository) ListPlans(ctx context.Context, f PlanFilter, offset, limit int) ([]model.InstallmentPlanModel, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.InstallmentPlanModel{})
	if f.TenantID != nil {
		q = q.Where("installment_plan_tenant_id = ?", *f.TenantID)
	}
	if f.Status != "" {
		q = q.Where("installment_plan_status = ?", strings.ToUpper(f.Status))
	}
	if f.Customer != "" {
		q = q.Where("installment_plan_customer_ref = ?", f.Customer)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(installment_plan_description) LIKE ? OR LOWER(installment_plan_id) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.InstallmentPlanModel
	err := q.Order("installment_plan_created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}

/* ===================== discounts & splits ===================== */

// FindDiscount returns (nil, nil) when the plan has no discount.
func (r *InstallmentRepository) FindDiscount(ctx context.Context, planID string) (*model.InstallmentDiscountModel, error) {
	var d model.InstallmentDiscountModel
	err := r.DB.WithContext(ctx).First(&d, "installment_discount_plan_id = ?", planID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *InstallmentRepository) ListSplits(ctx context.Context, planID string) ([]model.InstallmentSplitModel, error) {
	var rows []model.InstallmentSplitModel
	err := r.DB.WithContext(ctx).
		Where("installment_split_plan_id = ?", planID).
		Order("installment_split_created_at ASC").
		Find(&rows).Error
	return rows, err
}

// ReplaceSplits deletes every split of paymentID and inserts the new set.
func (r *InstallmentRepository) ReplaceSplits(ctx context.Context, planID, paymentID string, splits []model.InstallmentSplitModel) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("installment_split_payment_id = ?", paymentID).
			Delete(&model.InstallmentSplitModel{}).Error; err != nil {
			return err
		}
		if len(splits) > 0 {
			if err := tx.Create(&splits).Error; err != nil {
				return err
			}
		}
		return r.UpdatePlanSplitMeta(ctx, tx, planID, len(splits))
	})
}

/* ===================== scheduled payments ===================== */

func (r *InstallmentRepository) FindPayment(ctx context.Context, paymentID string) (*model.InstallmentPaymentModel, error) {
	var p model.InstallmentPaymentModel
	if err := r.DB.WithContext(ctx).First(&p, "installment_payment_id = ?", paymentID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *InstallmentRepository) ListPayments(ctx context.Context, planID string) ([]model.InstallmentPaymentModel, error) {
	var rows []model.InstallmentPaymentModel
	err := r.DB.WithContext(ctx).
		Where("installment_payment_plan_id = ?", planID).
		Order("installment_payment_number ASC").
		Find(&rows).Error
	return rows, err
}

// UpsertPayment inserts a scheduled payment or refreshes the gateway-owned
// fields of an existing one. The installment number is fixed at first insert.
func (r *InstallmentRepository) UpsertPayment(ctx context.Context, p *model.InstallmentPaymentModel) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "installment_payment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"installment_payment_due_date",
			"installment_payment_value",
			"installment_payment_status",
			"installment_payment_paid_at",
			"installment_payment_invoice_url",
			"installment_payment_updated_at",
		}),
	}).Create(p).Error
}

// SetPaymentStatus updates the status; paidAt, when given, is only written if
// the payment has no paid timestamp yet.
func (r *InstallmentRepository) SetPaymentStatus(ctx context.Context, paymentID string, status model.PaymentStatus, paidAt *time.Time) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.InstallmentPaymentModel{}).
			Where("installment_payment_id = ?", paymentID).
			Updates(map[string]any{
				"installment_payment_status":     status,
				"installment_payment_updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}
		if paidAt == nil {
			return nil
		}
		return tx.Model(&model.InstallmentPaymentModel{}).
			Where("installment_payment_id = ? AND installment_payment_paid_at IS NULL", paymentID).
			Update("installment_payment_paid_at", *paidAt).Error
	})
}

// SumPaid totals the values of RECEIVED and CONFIRMED payments of a plan.
func (r *InstallmentRepository) SumPaid(ctx context.Context, planID string) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.DB.WithContext(ctx).Model(&model.InstallmentPaymentModel{}).
		Select("SUM(installment_payment_value)").
		Where("installment_payment_plan_id = ? AND installment_payment_status IN ?", planID,
			[]model.PaymentStatus{model.PaymentStatusReceived, model.PaymentStatusConfirmed}).
		Row().Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

func (r *InstallmentRepository) CountPaymentsByStatus(ctx context.Context, planID string, status model.PaymentStatus) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.InstallmentPaymentModel{}).
		Where("installment_payment_plan_id = ? AND installment_payment_status = ?", planID, status).
		Count(&n).Error
	return n, err
}

/* ===================== audit ===================== */

func (r *InstallmentRepository) AppendEvent(ctx context.Context, ev *model.InstallmentEventModel) error {
	return r.DB.WithContext(ctx).Create(ev).Error
}

func (r *InstallmentRepository) ListEvents(ctx context.Context, planID string, limit int) ([]model.InstallmentEventModel, error) {
	var rows []model.InstallmentEventModel
	q := r.DB.WithContext(ctx).
		Where("installment_event_plan_id = ?", planID).
		Order("installment_event_created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rows).Error
	return rows, err
}

/* ===================== webhook log ===================== */

func (r *InstallmentRepository) CreateWebhookEvent(ctx context.Context, ev *model.GatewayWebhookEventModel) error {
	return r.DB.WithContext(ctx).Create(ev).Error
}

func (r *InstallmentRepository) FinishWebhookEvent(ctx context.Context, id uuid.UUID, status model.WebhookEventStatus, planID *string, tenantID *uuid.UUID, errMsg string) error {
	now := time.Now()
	updates := map[string]any{
		"gateway_event_status":       status,
		"gateway_event_processed_at": now,
	}
	if planID != nil {
		updates["gateway_event_plan_id"] = *planID
	}
	if tenantID != nil {
		updates["gateway_event_tenant_id"] = *tenantID
	}
	if errMsg != "" {
		updates["gateway_event_error"] = errMsg
	}
	return r.DB.WithContext(ctx).Model(&model.GatewayWebhookEventModel{}).
		Where("gateway_event_id = ?", id).
		Updates(updates).Error
}

/* ===================== reporting ===================== */

type StatusCount struct {
	Status string
	Total  int64
}

type StatusAmount struct {
	Status string
	Amount decimal.NullDecimal
}

func scopeTenant(q *gorm.DB, column string, tenantID *uuid.UUID) *gorm.DB {
	if tenantID == nil {
		return q
	}
	return q.Where(column+" = ?", *tenantID)
}

// CountPlansByStatus groups plans of a tenant (nil = all) by status.
func (r *InstallmentRepository) CountPlansByStatus(ctx context.Context, tenantID *uuid.UUID) ([]StatusCount, error) {
	var rows []StatusCount
	q := r.DB.WithContext(ctx).Model(&model.InstallmentPlanModel{}).
		Select("installment_plan_status AS status, COUNT(*) AS total")
	err := scopeTenant(q, "installment_plan_tenant_id", tenantID).
		Group("installment_plan_status").
		Scan(&rows).Error
	return rows, err
}

// SumPlanTotals returns the contracted amount of non-cancelled plans.
func (r *InstallmentRepository) SumPlanTotals(ctx context.Context, tenantID *uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	q := r.DB.WithContext(ctx).Model(&model.InstallmentPlanModel{}).
		Select("SUM(installment_plan_total_value)").
		Where("installment_plan_status <> ?", model.PlanStatusCancelled)
	if err := scopeTenant(q, "installment_plan_tenant_id", tenantID).Row().Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// SumPaymentsByStatus groups scheduled payment values by status.
func (r *InstallmentRepository) SumPaymentsByStatus(ctx context.Context, tenantID *uuid.UUID) ([]StatusAmount, error) {
	var rows []StatusAmount
	q := r.DB.WithContext(ctx).Model(&model.InstallmentPaymentModel{}).
		Select("installment_payment_status AS status, SUM(installment_payment_value) AS amount")
	err := scopeTenant(q, "installment_payment_tenant_id", tenantID).
		Group("installment_payment_status").
		Scan(&rows).Error
	return rows, err
}

// ListDiscountedActivePlans loads the plans whose discount can still be taken.
func (r *InstallmentRepository) ListDiscountedActivePlans(ctx context.Context, tenantID *uuid.UUID) ([]model.InstallmentPlanModel, error) {
	var rows []model.InstallmentPlanModel
	q := r.DB.WithContext(ctx).
		Where("installment_plan_has_discount = ? AND installment_plan_status = ?", true, model.PlanStatusActive)
	err := scopeTenant(q, "installment_plan_tenant_id", tenantID).Find(&rows).Error
	return rows, err
}

// CountOpenPayments counts payments of a plan still awaiting settlement.
func (r *InstallmentRepository) CountOpenPayments(ctx context.Context, planID string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.InstallmentPaymentModel{}).
		Where("installment_payment_plan_id = ? AND installment_payment_status IN ?", planID,
			[]model.PaymentStatus{model.PaymentStatusPending, model.PaymentStatusOverdue}).
		Count(&n).Error
	return n, err
}
