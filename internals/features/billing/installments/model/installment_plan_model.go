package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentPlanModel is keyed by the gateway-assigned installment id.
type InstallmentPlanModel struct {
	InstallmentPlanID       string     `gorm:"column:installment_plan_id;size:64;primaryKey" json:"installment_plan_id"`
	InstallmentPlanTenantID *uuid.UUID `gorm:"column:installment_plan_tenant_id;type:uuid;index" json:"installment_plan_tenant_id"`

	InstallmentPlanCustomerRef string          `gorm:"column:installment_plan_customer_ref;size:64;not null;index" json:"installment_plan_customer_ref"`
	InstallmentPlanCount       int             `gorm:"column:installment_plan_count;not null" json:"installment_plan_count"`
	InstallmentPlanValue       decimal.Decimal `gorm:"column:installment_plan_value;type:numeric(14,2);not null" json:"installment_plan_value"`
	InstallmentPlanTotalValue  decimal.Decimal `gorm:"column:installment_plan_total_value;type:numeric(14,2);not null" json:"installment_plan_total_value"`
	InstallmentPlanFirstDue    time.Time       `gorm:"column:installment_plan_first_due_date;type:date;not null" json:"installment_plan_first_due_date"`
	InstallmentPlanBillingType string          `gorm:"column:installment_plan_billing_type;size:20;not null" json:"installment_plan_billing_type"`
	InstallmentPlanDescription string          `gorm:"column:installment_plan_description;size:500" json:"installment_plan_description"`

	InstallmentPlanHasSplit   bool `gorm:"column:installment_plan_has_split;not null" json:"installment_plan_has_split"`
	InstallmentPlanSplitCount int  `gorm:"column:installment_plan_split_count;not null" json:"installment_plan_split_count"`

	InstallmentPlanHasDiscount   bool                `gorm:"column:installment_plan_has_discount;not null" json:"installment_plan_has_discount"`
	InstallmentPlanDiscountType  *DiscountType       `gorm:"column:installment_plan_discount_type;size:20" json:"installment_plan_discount_type"`
	InstallmentPlanDiscountValue decimal.NullDecimal `gorm:"column:installment_plan_discount_value;type:numeric(14,2)" json:"installment_plan_discount_value"`

	InstallmentPlanFirstPaymentID string `gorm:"column:installment_plan_first_payment_id;size:64" json:"installment_plan_first_payment_id"`
	InstallmentPlanInvoiceURL     string `gorm:"column:installment_plan_invoice_url;size:500" json:"installment_plan_invoice_url"`

	InstallmentPlanStatus    PlanStatus `gorm:"column:installment_plan_status;size:20;not null;index" json:"installment_plan_status"`
	InstallmentPlanCreatedBy *uuid.UUID `gorm:"column:installment_plan_created_by;type:uuid" json:"installment_plan_created_by"`

	InstallmentPlanCreatedAt time.Time `gorm:"column:installment_plan_created_at;autoCreateTime" json:"installment_plan_created_at"`
	InstallmentPlanUpdatedAt time.Time `gorm:"column:installment_plan_updated_at;autoUpdateTime" json:"installment_plan_updated_at"`
}

func (InstallmentPlanModel) TableName() string {
	return "installment_plans"
}
