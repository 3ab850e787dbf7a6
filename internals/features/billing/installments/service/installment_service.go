package service

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"polopay_backend/internals/configs"
	"polopay_backend/internals/features/billing/gateway"
	"polopay_backend/internals/features/billing/installments/model"
	"polopay_backend/internals/features/billing/installments/repository"
)

// ActorContext is the request-scoped caller identity handed to every operation.
type ActorContext struct {
	UserID         *uuid.UUID
	TenantID       *uuid.UUID
	Role           string
	Label          string
	Master         bool
	IdempotencyKey string
}

// GatewayActor is used for changes driven by gateway callbacks.
var GatewayActor = ActorContext{Label: "gateway", Master: true}

func (a ActorContext) canAccess(tenantID *uuid.UUID) bool {
	if a.Master {
		return true
	}
	if a.TenantID == nil || tenantID == nil {
		return false
	}
	return *a.TenantID == *tenantID
}

// DocumentArchive keeps a copy of generated documents.
type DocumentArchive interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

type InstallmentService struct {
	Repo     *repository.InstallmentRepository
	Gateway  gateway.Client
	Policy   configs.BillingPolicy
	Location *time.Location
	Now      func() time.Time
	Archive  DocumentArchive // optional

	// OnSuspensionCandidate fires when a plan reaches the overdue threshold.
	// Suspension itself stays a manual decision.
	OnSuspensionCandidate func(ctx context.Context, plan *model.InstallmentPlanModel, overdue int64)
}

func NewInstallmentService(repo *repository.InstallmentRepository, gw gateway.Client, policy configs.BillingPolicy, loc *time.Location) *InstallmentService {
	if loc == nil {
		loc = time.UTC
	}
	return &InstallmentService{
		Repo:     repo,
		Gateway:  gw,
		Policy:   policy,
		Location: loc,
		Now:      time.Now,
		OnSuspensionCandidate: func(context.Context, *model.InstallmentPlanModel, int64) {
		},
	}
}

func (s *InstallmentService) discountPolicy() DiscountPolicy {
	return DiscountPolicy{MaxFixedRatio: s.Policy.MaxFixedDiscountRatio}
}

// today is the current calendar date in the service's timezone, at midnight UTC.
func (s *InstallmentService) today() time.Time {
	now := s.Now().In(s.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// loadPlan fetches a plan the actor may see. Plans of other tenants are
// reported as missing.
func (s *InstallmentService) loadPlan(ctx context.Context, planID string, actor ActorContext) (*model.InstallmentPlanModel, error) {
	plan, err := s.Repo.FindPlan(ctx, planID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "installment plan", ID: planID}
	}
	if err != nil {
		return nil, err
	}
	if !actor.canAccess(plan.InstallmentPlanTenantID) {
		return nil, &NotFoundError{Resource: "installment plan", ID: planID}
	}
	return plan, nil
}

func (s *InstallmentService) newEvent(plan *model.InstallmentPlanModel, action model.EventAction, actor ActorContext, detail any) *model.InstallmentEventModel {
	raw, err := sonic.Marshal(detail)
	if err != nil {
		raw = []byte("{}")
	}
	label := actor.Label
	if label == "" {
		label = "system"
	}
	return &model.InstallmentEventModel{
		InstallmentEventPlanID:   plan.InstallmentPlanID,
		InstallmentEventTenantID: plan.InstallmentPlanTenantID,
		InstallmentEventAction:   action,
		InstallmentEventDetail:   datatypes.JSON(raw),
		InstallmentEventActorID:  actor.UserID,
		InstallmentEventActor:    label,
	}
}

// audit appends an event; failures are logged, never surfaced.
func (s *InstallmentService) audit(ctx context.Context, plan *model.InstallmentPlanModel, action model.EventAction, actor ActorContext, detail any) {
	if err := s.Repo.AppendEvent(ctx, s.newEvent(plan, action, actor, detail)); err != nil {
		log.Warn().Err(err).Str("plan_id", plan.InstallmentPlanID).Str("action", string(action)).Msg("audit append failed")
	}
}
