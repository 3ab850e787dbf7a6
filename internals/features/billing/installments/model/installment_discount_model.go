package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InstallmentDiscountModel: at most one per plan.
type InstallmentDiscountModel struct {
	InstallmentDiscountID     uuid.UUID        `gorm:"column:installment_discount_id;type:uuid;primaryKey" json:"installment_discount_id"`
	InstallmentDiscountPlanID string           `gorm:"column:installment_discount_plan_id;size:64;not null;uniqueIndex" json:"installment_discount_plan_id"`
	InstallmentDiscountType   DiscountType     `gorm:"column:installment_discount_type;size:20;not null" json:"installment_discount_type"`
	InstallmentDiscountValue  decimal.Decimal  `gorm:"column:installment_discount_value;type:numeric(14,2);not null" json:"installment_discount_value"`
	InstallmentDiscountRule   DiscountDeadline `gorm:"column:installment_discount_deadline;size:20;not null" json:"installment_discount_deadline"`
	InstallmentDiscountDays   int              `gorm:"column:installment_discount_due_date_limit_days;not null" json:"installment_discount_due_date_limit_days"`
	InstallmentDiscountActive bool             `gorm:"column:installment_discount_active;not null" json:"installment_discount_active"`

	InstallmentDiscountCreatedAt time.Time `gorm:"column:installment_discount_created_at;autoCreateTime" json:"installment_discount_created_at"`
}

func (InstallmentDiscountModel) TableName() string {
	return "installment_discounts"
}

func (m *InstallmentDiscountModel) BeforeCreate(*gorm.DB) error {
	if m.InstallmentDiscountID == uuid.Nil {
		m.InstallmentDiscountID = uuid.New()
	}
	return nil
}
