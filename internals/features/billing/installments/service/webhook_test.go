package service

import (
	"context"
	"errors"
	"testing"

	"polopay_backend/internals/features/billing/gateway"
	"polopay_backend/internals/features/billing/installments/model"
)

func threePayments() []gateway.Payment {
	return []gateway.Payment{
		{ID: "pay_1", Installment: "ins_1", DueDate: "2030-01-10", Value: dec("100"), Status: "PENDING"},
		{ID: "pay_2", Installment: "ins_1", DueDate: "2030-02-10", Value: dec("100"), Status: "PENDING"},
		{ID: "pay_3", Installment: "ins_1", DueDate: "2030-03-10", Value: dec("100"), Status: "PENDING"},
	}
}

// seededService returns a service holding plan ins_1 (3 x 100) with its
// payments synced.
func seededService(t *testing.T) (*InstallmentService, ActorContext) {
	t.Helper()
	gw := &stubGateway{
		ListInstallmentPaymentsFunc: func(context.Context, string) ([]gateway.Payment, error) {
			return threePayments(), nil
		},
	}
	svc := newTestService(t, gw)
	actor := tenantActor()
	ctx := context.Background()
	if _, err := svc.CreateInstallmentWithDiscount(ctx, basePayment(),
		InstallmentRequest{Count: 3, Value: dec("100")}, nil,
		&DiscountRequest{Type: "FIXED", Value: dec("10"), Deadline: "on_due_date"}, actor); err != nil {
		t.Fatalf("create: %v", err)
	}
	if n, err := svc.SyncInstallmentPayments(ctx, "ins_1", actor); err != nil || n != 3 {
		t.Fatalf("sync: %d %v", n, err)
	}
	return svc, actor
}

func received(id string) WebhookEvent {
	return WebhookEvent{Event: EventPaymentReceived, Payment: WebhookPayment{ID: id, Status: "RECEIVED", PaymentDate: "2030-01-09"}}
}

func countEvents(t *testing.T, svc *InstallmentService, action model.EventAction) int {
	t.Helper()
	events, err := svc.Repo.ListEvents(context.Background(), "ins_1", 0)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	n := 0
	for _, e := range events {
		if e.InstallmentEventAction == action {
			n++
		}
	}
	return n
}

func TestWebhookReceivedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := seededService(t)

	first, err := svc.HandleWebhook(ctx, received("pay_1"))
	if err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	second, err := svc.HandleWebhook(ctx, received("pay_1"))
	if err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if !first.Completion.Equal(second.Completion) || !first.Completion.Equal(dec("0.3333")) {
		t.Fatalf("completion %s then %s", first.Completion, second.Completion)
	}
	if second.PlanStatus != model.PlanStatusActive {
		t.Fatalf("plan status = %s", second.PlanStatus)
	}

	p, _ := svc.Repo.FindPayment(ctx, "pay_1")
	if p.InstallmentPaymentStatus != model.PaymentStatusReceived || p.InstallmentPaymentPaidAt == nil {
		t.Fatalf("payment %+v", p)
	}
}

func TestWebhookCompletesPlanOnce(t *testing.T) {
	ctx := context.Background()
	svc, _ := seededService(t)

	var out *WebhookOutcome
	for _, id := range []string{"pay_1", "pay_2", "pay_3", "pay_3"} {
		var err error
		if out, err = svc.HandleWebhook(ctx, received(id)); err != nil {
			t.Fatalf("%s: %v", id, err)
		}
	}
	if !out.Completion.Equal(dec("1")) {
		t.Fatalf("completion = %s", out.Completion)
	}
	plan, _ := svc.Repo.FindPlan(ctx, "ins_1")
	if plan.InstallmentPlanStatus != model.PlanStatusCompleted {
		t.Fatalf("plan status = %s", plan.InstallmentPlanStatus)
	}
	if n := countEvents(t, svc, model.ActionStatusChanged); n != 1 {
		t.Fatalf("status changes audited = %d", n)
	}
}

func TestWebhookUnknownPaymentIgnored(t *testing.T) {
	ctx := context.Background()
	svc, _ := seededService(t)
	before, _ := svc.Repo.ListEvents(ctx, "ins_1", 0)

	out, err := svc.HandleWebhook(ctx, received("pay_404"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != model.WebhookEventIgnored || out.Reason != "payment not found" {
		t.Fatalf("outcome %+v", out)
	}
	after, _ := svc.Repo.ListEvents(ctx, "ins_1", 0)
	if len(after) != len(before) {
		t.Fatal("ignored event must not be audited")
	}
}

func TestWebhookUnhandledEventIgnored(t *testing.T) {
	svc, _ := seededService(t)
	out, err := svc.HandleWebhook(context.Background(), WebhookEvent{Event: "PAYMENT_CREATED", Payment: WebhookPayment{ID: "pay_1"}})
	if err != nil || out.Status != model.WebhookEventIgnored {
		t.Fatalf("outcome %+v, err %v", out, err)
	}
}

func TestWebhookOverdueThreshold(t *testing.T) {
	ctx := context.Background()
	svc, _ := seededService(t)
	var calls []int64
	svc.OnSuspensionCandidate = func(_ context.Context, _ *model.InstallmentPlanModel, overdue int64) {
		calls = append(calls, overdue)
	}

	for _, id := range []string{"pay_1", "pay_2"} {
		if _, err := svc.HandleWebhook(ctx, WebhookEvent{Event: EventPaymentOverdue, Payment: WebhookPayment{ID: id}}); err != nil {
			t.Fatal(err)
		}
	}
	if len(calls) != 0 {
		t.Fatalf("hook fired below threshold: %v", calls)
	}
	if _, err := svc.HandleWebhook(ctx, WebhookEvent{Event: EventPaymentOverdue, Payment: WebhookPayment{ID: "pay_3"}}); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 1 || calls[0] != 3 {
		t.Fatalf("hook calls = %v", calls)
	}
	plan, _ := svc.Repo.FindPlan(ctx, "ins_1")
	if plan.InstallmentPlanStatus != model.PlanStatusActive {
		t.Fatal("overdue must not change plan status")
	}
}

func TestWebhookDeletedAndRestored(t *testing.T) {
	ctx := context.Background()
	svc, _ := seededService(t)

	if _, err := svc.HandleWebhook(ctx, WebhookEvent{Event: EventPaymentDeleted, Payment: WebhookPayment{ID: "pay_2"}}); err != nil {
		t.Fatal(err)
	}
	p, _ := svc.Repo.FindPayment(ctx, "pay_2")
	if p.InstallmentPaymentStatus != model.PaymentStatusDeleted {
		t.Fatalf("status = %s", p.InstallmentPaymentStatus)
	}

	out, err := svc.HandleWebhook(ctx, WebhookEvent{Event: EventPaymentRestored, Payment: WebhookPayment{ID: "pay_2", Status: "CONFIRMED"}})
	if err != nil {
		t.Fatal(err)
	}
	p, _ = svc.Repo.FindPayment(ctx, "pay_2")
	if p.InstallmentPaymentStatus != model.PaymentStatusConfirmed || !out.Completion.Equal(dec("0.3333")) {
		t.Fatalf("status = %s completion = %s", p.InstallmentPaymentStatus, out.Completion)
	}
}

func TestProcessWebhookLogsDelivery(t *testing.T) {
	ctx := context.Background()
	svc, _ := seededService(t)

	out := svc.ProcessWebhook(ctx, []byte(`{"event":"PAYMENT_RECEIVED","payment":{"id":"pay_1","value":100}}`), map[string]string{"User-Agent": "gw"})
	if out.Status != model.WebhookEventProcessed || out.PlanID != "ins_1" {
		t.Fatalf("outcome %+v", out)
	}
	out = svc.ProcessWebhook(ctx, []byte(`{"event":"PAYMENT_RECEIVED","payment":{"id":"nope"}}`), nil)
	if out.Status != model.WebhookEventIgnored {
		t.Fatalf("outcome %+v", out)
	}

	var rows []model.GatewayWebhookEventModel
	if err := svc.Repo.DB.Order("gateway_event_received_at").Find(&rows).Error; err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("logged %d deliveries", len(rows))
	}
	statuses := map[model.WebhookEventStatus]int{}
	for _, r := range rows {
		statuses[r.GatewayEventStatus]++
		if r.GatewayEventProcessedAt == nil {
			t.Errorf("delivery %s not finished", r.GatewayEventID)
		}
	}
	if statuses[model.WebhookEventProcessed] != 1 || statuses[model.WebhookEventIgnored] != 1 {
		t.Fatalf("statuses = %v", statuses)
	}

	if out := svc.ProcessWebhook(ctx, []byte(`not json`), nil); out.Status != model.WebhookEventIgnored {
		t.Fatalf("outcome %+v", out)
	}
}

func TestSyncInstallmentPayments(t *testing.T) {
	ctx := context.Background()
	svc, actor := seededService(t)

	payments, err := svc.Repo.ListPayments(ctx, "ins_1")
	if err != nil || len(payments) != 3 {
		t.Fatalf("payments %d, err %v", len(payments), err)
	}
	for i, p := range payments {
		if p.InstallmentPaymentNumber != i+1 {
			t.Errorf("payment %s number = %d", p.InstallmentPaymentID, p.InstallmentPaymentNumber)
		}
	}

	// a bad entry is skipped, the rest is stored
	gw := svc.Gateway.(*stubGateway)
	gw.ListInstallmentPaymentsFunc = func(context.Context, string) ([]gateway.Payment, error) {
		list := threePayments()
		list[1].DueDate = "garbage"
		list[2].Status = "RECEIVED"
		return list, nil
	}
	n, err := svc.SyncInstallmentPayments(ctx, "ins_1", actor)
	if err != nil || n != 2 {
		t.Fatalf("resync: %d %v", n, err)
	}
	p3, _ := svc.Repo.FindPayment(ctx, "pay_3")
	if p3.InstallmentPaymentStatus != model.PaymentStatusReceived || p3.InstallmentPaymentNumber != 3 {
		t.Fatalf("pay_3 %+v", p3)
	}

	gw.ListInstallmentPaymentsFunc = func(context.Context, string) ([]gateway.Payment, error) { return nil, nil }
	if _, err := svc.SyncInstallmentPayments(ctx, "ins_1", actor); !errors.Is(err, ErrNoPaymentsFromGateway) {
		t.Fatalf("expected ErrNoPaymentsFromGateway, got %v", err)
	}

	other := tenantActor()
	var nf *NotFoundError
	if _, err := svc.SyncInstallmentPayments(ctx, "ins_1", other); !errors.As(err, &nf) {
		t.Fatalf("foreign tenant should see not found, got %v", err)
	}
}

func TestWebhookRightAfterCreate(t *testing.T) {
	ctx := context.Background()
	gw := &stubGateway{
		ListInstallmentPaymentsFunc: func(context.Context, string) ([]gateway.Payment, error) {
			return threePayments(), nil
		},
	}
	svc := newTestService(t, gw)
	if _, err := svc.CreateInstallmentWithDiscount(ctx, basePayment(),
		InstallmentRequest{Count: 3, Value: dec("100")}, nil, nil, tenantActor()); err != nil {
		t.Fatalf("create: %v", err)
	}

	ev := received("pay_1")
	ev.Payment.Installment = "ins_1"
	out, err := svc.HandleWebhook(ctx, ev)
	if err != nil || out.Status != model.WebhookEventProcessed {
		t.Fatalf("outcome %+v, err %v", out, err)
	}
	if !out.Completion.Equal(dec("0.3333")) {
		t.Fatalf("completion = %s", out.Completion)
	}
}

func TestWebhookSyncsOnDemandWhenPaymentMissing(t *testing.T) {
	ctx := context.Background()
	listing := false
	gw := &stubGateway{
		ListInstallmentPaymentsFunc: func(context.Context, string) ([]gateway.Payment, error) {
			if !listing {
				return nil, &gateway.Error{Op: "list_installment_payments", StatusCode: 503, Message: "down"}
			}
			return threePayments(), nil
		},
	}
	svc := newTestService(t, gw)
	res, err := svc.CreateInstallmentWithDiscount(ctx, basePayment(),
		InstallmentRequest{Count: 3, Value: dec("100")}, nil, nil, tenantActor())
	if err != nil || res.SyncedPayments != 0 {
		t.Fatalf("create: %+v %v", res, err)
	}
	listing = true

	// without the plan reference there is nothing to sync
	out, err := svc.HandleWebhook(ctx, received("pay_2"))
	if err != nil || out.Reason != "payment not found" {
		t.Fatalf("no plan reference: %+v %v", out, err)
	}

	ev := received("pay_2")
	ev.Payment.Installment = "ins_1"
	out, err = svc.HandleWebhook(ctx, ev)
	if err != nil || out.Status != model.WebhookEventProcessed || out.PlanID != "ins_1" {
		t.Fatalf("on-demand sync: %+v %v", out, err)
	}
	p2, err := svc.Repo.FindPayment(ctx, "pay_2")
	if err != nil || p2.InstallmentPaymentStatus != model.PaymentStatusReceived || p2.InstallmentPaymentNumber != 2 {
		t.Fatalf("pay_2 %+v %v", p2, err)
	}

	// plans this panel never stored are not pulled in
	ev = received("pay_x")
	ev.Payment.Installment = "ins_foreign"
	out, err = svc.HandleWebhook(ctx, ev)
	if err != nil || out.Reason != "payment not found" {
		t.Fatalf("foreign plan: %+v %v", out, err)
	}
	if _, err := svc.Repo.FindPlan(ctx, "ins_foreign"); err == nil {
		t.Fatal("foreign plan must not be stored")
	}
}

func TestSyncRestoresPlanMissingLocally(t *testing.T) {
	ctx := context.Background()
	gw := &stubGateway{
		ListInstallmentPaymentsFunc: func(context.Context, string) ([]gateway.Payment, error) {
			return threePayments(), nil
		},
		GetInstallmentFunc: func(_ context.Context, id string) (*gateway.Installment, error) {
			return &gateway.Installment{ID: id, Customer: "cus_1", InstallmentCount: 3,
				PaymentValue: dec("100"), Value: dec("300"), BillingType: "BOLETO", Description: "Course fee"}, nil
		},
	}
	svc := newTestService(t, gw)

	var nf *NotFoundError
	if _, err := svc.SyncInstallmentPayments(ctx, "ins_1", tenantActor()); !errors.As(err, &nf) {
		t.Fatalf("non-master must get not found, got %v", err)
	}

	master := ActorContext{Master: true, Label: "panelctl"}
	n, err := svc.SyncInstallmentPayments(ctx, "ins_1", master)
	if err != nil || n != 3 {
		t.Fatalf("restore sync: %d %v", n, err)
	}
	plan, err := svc.Repo.FindPlan(ctx, "ins_1")
	if err != nil {
		t.Fatalf("plan not restored: %v", err)
	}
	if plan.InstallmentPlanCount != 3 || !plan.InstallmentPlanTotalValue.Equal(dec("300")) ||
		plan.InstallmentPlanFirstPaymentID != "pay_1" || plan.InstallmentPlanFirstDue.Format(dateLayout) != "2030-01-10" {
		t.Fatalf("restored plan %+v", plan)
	}
	if countEvents(t, svc, model.ActionPlanRestored) != 1 || countEvents(t, svc, model.ActionPaymentsSynced) != 1 {
		t.Fatal("restore and sync must be audited once")
	}

	gw.GetInstallmentFunc = func(_ context.Context, id string) (*gateway.Installment, error) {
		return &gateway.Installment{ID: id, Deleted: true}, nil
	}
	if _, err := svc.SyncInstallmentPayments(ctx, "ins_gone", master); !errors.As(err, &nf) {
		t.Fatalf("deleted remote plan: %v", err)
	}
}
