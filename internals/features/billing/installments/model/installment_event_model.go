package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InstallmentEventModel is the append-only audit trail of a plan.
type InstallmentEventModel struct {
	InstallmentEventID       uuid.UUID      `gorm:"column:installment_event_id;type:uuid;primaryKey" json:"installment_event_id"`
	InstallmentEventPlanID   string         `gorm:"column:installment_event_plan_id;size:64;not null;index" json:"installment_event_plan_id"`
	InstallmentEventTenantID *uuid.UUID     `gorm:"column:installment_event_tenant_id;type:uuid;index" json:"installment_event_tenant_id"`
	InstallmentEventAction   EventAction    `gorm:"column:installment_event_action;size:40;not null;index" json:"installment_event_action"`
	InstallmentEventDetail   datatypes.JSON `gorm:"column:installment_event_detail" json:"installment_event_detail"`
	InstallmentEventActorID  *uuid.UUID     `gorm:"column:installment_event_actor_id;type:uuid" json:"installment_event_actor_id"`
	InstallmentEventActor    string         `gorm:"column:installment_event_actor;size:255;not null" json:"installment_event_actor"`

	InstallmentEventCreatedAt time.Time `gorm:"column:installment_event_created_at;autoCreateTime" json:"installment_event_created_at"`
}

func (InstallmentEventModel) TableName() string {
	return "installment_events"
}

func (m *InstallmentEventModel) BeforeCreate(*gorm.DB) error {
	if m.InstallmentEventID == uuid.Nil {
		m.InstallmentEventID = uuid.New()
	}
	return nil
}
