package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/*
  gateway_webhook_events = raw log of every gateway callback
  - many rows per payment (one per delivery)
  - keeps headers and payload for replay and debugging
*/

type GatewayWebhookEventModel struct {
	GatewayEventID uuid.UUID `gorm:"column:gateway_event_id;type:uuid;primaryKey" json:"gateway_event_id"`

	GatewayEventTenantID  *uuid.UUID `gorm:"column:gateway_event_tenant_id;type:uuid" json:"gateway_event_tenant_id"`
	GatewayEventPlanID    *string    `gorm:"column:gateway_event_plan_id;size:64" json:"gateway_event_plan_id"`
	GatewayEventPaymentID *string    `gorm:"column:gateway_event_payment_id;size:64;index" json:"gateway_event_payment_id"`
	GatewayEventType      string     `gorm:"column:gateway_event_type;size:40;not null" json:"gateway_event_type"`

	GatewayEventHeaders datatypes.JSON `gorm:"column:gateway_event_headers" json:"gateway_event_headers"`
	GatewayEventPayload datatypes.JSON `gorm:"column:gateway_event_payload" json:"gateway_event_payload"`

	GatewayEventStatus WebhookEventStatus `gorm:"column:gateway_event_status;size:20;not null" json:"gateway_event_status"`
	GatewayEventError  *string            `gorm:"column:gateway_event_error" json:"gateway_event_error"`

	GatewayEventReceivedAt  time.Time  `gorm:"column:gateway_event_received_at;autoCreateTime" json:"gateway_event_received_at"`
	GatewayEventProcessedAt *time.Time `gorm:"column:gateway_event_processed_at" json:"gateway_event_processed_at"`
}

func (GatewayWebhookEventModel) TableName() string {
	return "gateway_webhook_events"
}

func (m *GatewayWebhookEventModel) BeforeCreate(*gorm.DB) error {
	if m.GatewayEventID == uuid.Nil {
		m.GatewayEventID = uuid.New()
	}
	return nil
}
