package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"polopay_backend/internals/features/billing/installments/model"
	"polopay_backend/internals/features/billing/installments/service"
)

/* ===================== action envelope ===================== */

const (
	ActionCreateInstallment   = "create_installment_with_discount"
	ActionGetInstallment      = "get_installment_with_discount"
	ActionGeneratePaymentBook = "generate_payment_book_with_discount"
	ActionSyncPayments        = "sync_installment_payments"
	ActionReplaceSplits       = "replace_payment_splits"
	ActionListInstallments    = "list_installments"
)

// ActionRequest is the discriminator of the action endpoint; the rest of the
// body is decoded into the action's own request type.
type ActionRequest struct {
	Action string `json:"action" validate:"required"`
}

/* ===================== requests ===================== */

type DiscountDTO struct {
	Type     string          `json:"type" validate:"required"`
	Value    decimal.Decimal `json:"value"`
	Deadline string          `json:"deadline" validate:"required"`
}

type SplitDTO struct {
	WalletID        string           `json:"wallet_id" validate:"max=64"`
	PercentualValue *decimal.Decimal `json:"percentual_value,omitempty"`
	FixedValue      *decimal.Decimal `json:"fixed_value,omitempty"`
}

type CreateInstallmentRequest struct {
	Customer          string          `json:"customer" validate:"max=64"`
	BillingType       string          `json:"billing_type" validate:"max=20"`
	Description       string          `json:"description" validate:"max=500"`
	DueDate           string          `json:"due_date"`
	ExternalReference string          `json:"external_reference" validate:"max=100"`
	TenantID          *uuid.UUID      `json:"tenant_id,omitempty"`
	InstallmentCount  int             `json:"installment_count"`
	InstallmentValue  decimal.Decimal `json:"installment_value"`
	Discount          *DiscountDTO    `json:"discount,omitempty"`
	Splits            []SplitDTO      `json:"splits,omitempty" validate:"omitempty,max=20,dive"`
}

func (r CreateInstallmentRequest) Payment() service.PaymentRequest {
	return service.PaymentRequest{
		Customer:          r.Customer,
		BillingType:       r.BillingType,
		Description:       r.Description,
		DueDate:           r.DueDate,
		ExternalReference: r.ExternalReference,
		TenantID:          r.TenantID,
	}
}

func (r CreateInstallmentRequest) Installment() service.InstallmentRequest {
	return service.InstallmentRequest{Count: r.InstallmentCount, Value: r.InstallmentValue}
}

func (r CreateInstallmentRequest) DiscountRequest() *service.DiscountRequest {
	if r.Discount == nil {
		return nil
	}
	return &service.DiscountRequest{Type: r.Discount.Type, Value: r.Discount.Value, Deadline: r.Discount.Deadline}
}

func SplitRequests(in []SplitDTO) []service.SplitRequest {
	out := make([]service.SplitRequest, 0, len(in))
	for _, s := range in {
		out = append(out, service.SplitRequest{WalletID: s.WalletID, PercentualValue: s.PercentualValue, FixedValue: s.FixedValue})
	}
	return out
}

// PlanRef addresses one plan: get, payment book and sync actions.
type PlanRef struct {
	InstallmentID string `json:"installment_id" validate:"required,max=64"`
	IncludeRemote bool   `json:"include_remote"`
}

type ReplaceSplitsRequest struct {
	InstallmentID string     `json:"installment_id" validate:"required,max=64"`
	PaymentID     string     `json:"payment_id" validate:"max=64"`
	Splits        []SplitDTO `json:"splits" validate:"max=20,dive"`
}

type ListInstallmentsRequest struct {
	TenantID *uuid.UUID `json:"tenant_id,omitempty"`
	Status   string     `json:"status" validate:"omitempty,oneof=ACTIVE COMPLETED CANCELLED SUSPENDED active completed cancelled suspended"`
	Customer string     `json:"customer"`
	Search   string     `json:"q"`
	Page     int        `json:"page" validate:"gte=0"`
	PerPage  int        `json:"per_page" validate:"gte=0,lte=100"`
}

/* ===================== responses ===================== */

type PlanResponse struct {
	InstallmentID    string              `json:"installment_id"`
	TenantID         *uuid.UUID          `json:"tenant_id"`
	Customer         string              `json:"customer"`
	BillingType      string              `json:"billing_type"`
	Description      string              `json:"description"`
	InstallmentCount int                 `json:"installment_count"`
	InstallmentValue decimal.Decimal     `json:"installment_value"`
	TotalValue       decimal.Decimal     `json:"total_value"`
	FirstDueDate     string              `json:"first_due_date"`
	HasDiscount      bool                `json:"has_discount"`
	DiscountType     *model.DiscountType `json:"discount_type,omitempty"`
	DiscountValue    decimal.NullDecimal `json:"discount_value"`
	HasSplit         bool                `json:"has_split"`
	SplitCount       int                 `json:"split_count"`
	FirstPaymentID   string              `json:"first_payment_id"`
	InvoiceURL       string              `json:"invoice_url"`
	Status           model.PlanStatus    `json:"status"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

func FromPlanModel(m *model.InstallmentPlanModel) PlanResponse {
	return PlanResponse{
		InstallmentID:    m.InstallmentPlanID,
		TenantID:         m.InstallmentPlanTenantID,
		Customer:         m.InstallmentPlanCustomerRef,
		BillingType:      m.InstallmentPlanBillingType,
		Description:      m.InstallmentPlanDescription,
		InstallmentCount: m.InstallmentPlanCount,
		InstallmentValue: m.InstallmentPlanValue,
		TotalValue:       m.InstallmentPlanTotalValue,
		FirstDueDate:     m.InstallmentPlanFirstDue.Format("2006-01-02"),
		HasDiscount:      m.InstallmentPlanHasDiscount,
		DiscountType:     m.InstallmentPlanDiscountType,
		DiscountValue:    m.InstallmentPlanDiscountValue,
		HasSplit:         m.InstallmentPlanHasSplit,
		SplitCount:       m.InstallmentPlanSplitCount,
		FirstPaymentID:   m.InstallmentPlanFirstPaymentID,
		InvoiceURL:       m.InstallmentPlanInvoiceURL,
		Status:           m.InstallmentPlanStatus,
		CreatedAt:        m.InstallmentPlanCreatedAt,
		UpdatedAt:        m.InstallmentPlanUpdatedAt,
	}
}

func FromPlanModels(rows []model.InstallmentPlanModel) []PlanResponse {
	out := make([]PlanResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromPlanModel(&rows[i]))
	}
	return out
}

// CreateInstallmentResponse is the creation result plus the persistence
// warning text, if any.
type CreateInstallmentResponse struct {
	*service.PlanCreationResult
	Warning string `json:"warning,omitempty"`
}

func FromCreationResult(r *service.PlanCreationResult) CreateInstallmentResponse {
	return CreateInstallmentResponse{PlanCreationResult: r, Warning: r.WarningMessage()}
}
