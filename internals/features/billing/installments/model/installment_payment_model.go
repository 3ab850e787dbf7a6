package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentPaymentModel is one scheduled payment, keyed by the gateway payment id.
type InstallmentPaymentModel struct {
	InstallmentPaymentID       string          `gorm:"column:installment_payment_id;size:64;primaryKey" json:"installment_payment_id"`
	InstallmentPaymentPlanID   string          `gorm:"column:installment_payment_plan_id;size:64;not null;uniqueIndex:uq_installment_payment_plan_number,priority:1" json:"installment_payment_plan_id"`
	InstallmentPaymentNumber   int             `gorm:"column:installment_payment_number;not null;uniqueIndex:uq_installment_payment_plan_number,priority:2" json:"installment_payment_number"`
	InstallmentPaymentTenantID *uuid.UUID      `gorm:"column:installment_payment_tenant_id;type:uuid;index" json:"installment_payment_tenant_id"`
	InstallmentPaymentDueDate  time.Time       `gorm:"column:installment_payment_due_date;type:date;not null" json:"installment_payment_due_date"`
	InstallmentPaymentValue    decimal.Decimal `gorm:"column:installment_payment_value;type:numeric(14,2);not null" json:"installment_payment_value"`
	InstallmentPaymentStatus   PaymentStatus   `gorm:"column:installment_payment_status;size:20;not null;index" json:"installment_payment_status"`
	InstallmentPaymentPaidAt   *time.Time      `gorm:"column:installment_payment_paid_at" json:"installment_payment_paid_at"`
	InstallmentPaymentInvoice  string          `gorm:"column:installment_payment_invoice_url;size:500" json:"installment_payment_invoice_url"`

	InstallmentPaymentCreatedAt time.Time `gorm:"column:installment_payment_created_at;autoCreateTime" json:"installment_payment_created_at"`
	InstallmentPaymentUpdatedAt time.Time `gorm:"column:installment_payment_updated_at;autoUpdateTime" json:"installment_payment_updated_at"`
}

func (InstallmentPaymentModel) TableName() string {
	return "installment_payments"
}
