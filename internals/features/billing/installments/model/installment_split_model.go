package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InstallmentSplitModel rows are never updated; a payment's splits are
// replaced by deleting all of them and inserting the new set.
type InstallmentSplitModel struct {
	InstallmentSplitID        uuid.UUID           `gorm:"column:installment_split_id;type:uuid;primaryKey" json:"installment_split_id"`
	InstallmentSplitPlanID    string              `gorm:"column:installment_split_plan_id;size:64;not null;index" json:"installment_split_plan_id"`
	InstallmentSplitPaymentID string              `gorm:"column:installment_split_payment_id;size:64;not null;index" json:"installment_split_payment_id"`
	InstallmentSplitWalletID  string              `gorm:"column:installment_split_wallet_id;size:64;not null" json:"installment_split_wallet_id"`
	InstallmentSplitType      SplitType           `gorm:"column:installment_split_type;size:20;not null" json:"installment_split_type"`
	InstallmentSplitPercent   decimal.NullDecimal `gorm:"column:installment_split_percentual_value;type:numeric(7,4)" json:"installment_split_percentual_value"`
	InstallmentSplitFixed     decimal.NullDecimal `gorm:"column:installment_split_fixed_value;type:numeric(14,2)" json:"installment_split_fixed_value"`

	InstallmentSplitCreatedAt time.Time `gorm:"column:installment_split_created_at;autoCreateTime" json:"installment_split_created_at"`
}

func (InstallmentSplitModel) TableName() string {
	return "installment_splits"
}

func (m *InstallmentSplitModel) BeforeCreate(*gorm.DB) error {
	if m.InstallmentSplitID == uuid.Nil {
		m.InstallmentSplitID = uuid.New()
	}
	return nil
}
