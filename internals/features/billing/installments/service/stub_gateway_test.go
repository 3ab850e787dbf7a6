package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"polopay_backend/internals/configs"
	"polopay_backend/internals/databases/dbtest"
	"polopay_backend/internals/features/billing/gateway"
	"polopay_backend/internals/features/billing/installments/repository"
)

type stubGateway struct {
	CreateInstallmentFunc       func(ctx context.Context, req gateway.CreateInstallmentRequest) (*gateway.CreateInstallmentResponse, error)
	GetInstallmentFunc          func(ctx context.Context, id string) (*gateway.Installment, error)
	ListInstallmentPaymentsFunc func(ctx context.Context, id string) ([]gateway.Payment, error)
	PaymentBookFunc             func(ctx context.Context, id string) ([]byte, error)
	ListSubaccountsFunc         func(ctx context.Context) ([]gateway.Subaccount, error)

	creates []gateway.CreateInstallmentRequest
}

var errNotStubbed = errors.New("not stubbed")

func (g *stubGateway) CreateInstallment(ctx context.Context, req gateway.CreateInstallmentRequest) (*gateway.CreateInstallmentResponse, error) {
	g.creates = append(g.creates, req)
	if g.CreateInstallmentFunc == nil {
		return &gateway.CreateInstallmentResponse{
			InstallmentID: "ins_1",
			PaymentID:     "pay_1",
			InvoiceURL:    "https://pay/ins_1",
			Status:        "PENDING",
			Raw:           []byte(`{"id":"pay_1","installment":"ins_1"}`),
		}, nil
	}
	return g.CreateInstallmentFunc(ctx, req)
}

func (g *stubGateway) GetInstallment(ctx context.Context, id string) (*gateway.Installment, error) {
	if g.GetInstallmentFunc == nil {
		return nil, errNotStubbed
	}
	return g.GetInstallmentFunc(ctx, id)
}

func (g *stubGateway) ListInstallmentPayments(ctx context.Context, id string) ([]gateway.Payment, error) {
	if g.ListInstallmentPaymentsFunc == nil {
		return nil, errNotStubbed
	}
	return g.ListInstallmentPaymentsFunc(ctx, id)
}

func (g *stubGateway) PaymentBook(ctx context.Context, id string) ([]byte, error) {
	if g.PaymentBookFunc == nil {
		return nil, errNotStubbed
	}
	return g.PaymentBookFunc(ctx, id)
}

func (g *stubGateway) ListSubaccounts(ctx context.Context) ([]gateway.Subaccount, error) {
	if g.ListSubaccountsFunc == nil {
		return nil, errNotStubbed
	}
	return g.ListSubaccountsFunc(ctx)
}

// fixedNow is 2030-01-01 12:00 UTC.
var fixedNow = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

func newServiceWithDB(t *testing.T, db *gorm.DB, gw gateway.Client) *InstallmentService {
	t.Helper()
	svc := NewInstallmentService(repository.NewInstallmentRepository(db), gw, configs.DefaultBillingPolicy(), time.UTC)
	svc.Now = func() time.Time { return fixedNow }
	return svc
}

func newTestService(t *testing.T, gw gateway.Client) *InstallmentService {
	t.Helper()
	return newServiceWithDB(t, dbtest.Migrated(t), gw)
}
