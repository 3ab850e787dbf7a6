package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"polopay_backend/internals/configs"
	"polopay_backend/internals/constants"
	"polopay_backend/internals/databases/dbtest"
	"polopay_backend/internals/features/billing/gateway"
	"polopay_backend/internals/features/billing/installments/repository"
	svc "polopay_backend/internals/features/billing/installments/service"
	authModel "polopay_backend/internals/features/users/auth/model"
	helper "polopay_backend/internals/helpers"
)

type fakeGateway struct {
	created int
}

func (g *fakeGateway) CreateInstallment(context.Context, gateway.CreateInstallmentRequest) (*gateway.CreateInstallmentResponse, error) {
	g.created++
	return &gateway.CreateInstallmentResponse{InstallmentID: "ins_9", PaymentID: "pay_9", InvoiceURL: "https://pay/9", Raw: []byte(`{}`)}, nil
}

func (g *fakeGateway) GetInstallment(context.Context, string) (*gateway.Installment, error) {
	return &gateway.Installment{ID: "ins_9"}, nil
}

func (g *fakeGateway) ListInstallmentPayments(context.Context, string) ([]gateway.Payment, error) {
	return []gateway.Payment{
		{ID: "pay_9", DueDate: "2099-01-10", Value: mustDec("50"), Status: "PENDING"},
		{ID: "pay_10", DueDate: "2099-02-10", Value: mustDec("50"), Status: "PENDING"},
	}, nil
}

func (g *fakeGateway) PaymentBook(context.Context, string) ([]byte, error) {
	return []byte("%PDF-1.4 book"), nil
}

func (g *fakeGateway) ListSubaccounts(context.Context) ([]gateway.Subaccount, error) {
	return nil, nil
}

type harness struct {
	app    *fiber.App
	gw     *fakeGateway
	tenant uuid.UUID
}

func newHarness(t *testing.T, role string) *harness {
	t.Helper()
	gw := &fakeGateway{}
	s := svc.NewInstallmentService(repository.NewInstallmentRepository(dbtest.Migrated(t)), gw, configs.DefaultBillingPolicy(), time.UTC)
	h := &harness{gw: gw, tenant: uuid.New()}

	app := fiber.New(fiber.Config{ErrorHandler: helper.ErrorHandler})
	actor := authModel.Actor{UserID: uuid.New(), TenantID: &h.tenant, Role: role, Email: "ops@example.com"}
	api := app.Group("/api/a", func(c *fiber.Ctx) error {
		c.Locals("actor", actor)
		return c.Next()
	})
	ctl := NewInstallmentController(s)
	api.Post("/installments/actions", ctl.Dispatch)
	api.Get("/installments", ctl.List)
	api.Get("/installments/:id", ctl.Detail)
	api.Get("/installments/:id/payment-book", ctl.PaymentBook)
	api.Post("/installments/:id/sync", ctl.Sync)
	app.Post("/api/webhooks/gateway", NewWebhookController(s, "hook-secret").Receive)
	h.app = app
	return h
}

func (h *harness) do(t *testing.T, method, path, body string, headers map[string]string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := h.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

const createBody = `{
	"action": "create_installment_with_discount",
	"customer": "cus_1",
	"billing_type": "BOLETO",
	"description": "Tuition",
	"due_date": "2099-01-10",
	"installment_count": 2,
	"installment_value": 50,
	"discount": {"type": "FIXED", "value": 5, "deadline": "before_due_date"},
	"splits": [{"wallet_id": "w1", "percentual_value": 10}]
}`

func TestDispatchCreateAndGet(t *testing.T) {
	h := newHarness(t, constants.RoleOperator)

	status, body := h.do(t, http.MethodPost, "/api/a/installments/actions", createBody, nil)
	if status != fiber.StatusCreated || body["success"] != true {
		t.Fatalf("create: %d %v", status, body)
	}
	data := body["data"].(map[string]any)
	if data["installment_id"] != "ins_9" || data["total_savings"] != "10" {
		t.Fatalf("create data %v", data)
	}

	status, body = h.do(t, http.MethodPost, "/api/a/installments/actions",
		`{"action":"get_installment_with_discount","installment_id":"ins_9"}`, nil)
	if status != fiber.StatusOK || body["success"] != true {
		t.Fatalf("get: %d %v", status, body)
	}

	status, body = h.do(t, http.MethodGet, "/api/a/installments?per_page=5", "", nil)
	if status != fiber.StatusOK || body["pagination"].(map[string]any)["total"] != float64(1) {
		t.Fatalf("list: %d %v", status, body)
	}
}

func TestDispatchValidationErrors(t *testing.T) {
	h := newHarness(t, constants.RoleOperator)

	status, body := h.do(t, http.MethodPost, "/api/a/installments/actions", `{
		"action": "create_installment_with_discount",
		"customer": "cus_1", "billing_type": "BOLETO", "description": "x", "due_date": "2099-01-10",
		"installment_count": 2, "installment_value": 50,
		"discount": {"type": "BOGUS", "value": -1, "deadline": "never"}
	}`, nil)
	if status != fiber.StatusUnprocessableEntity || body["success"] != false {
		t.Fatalf("status %d body %v", status, body)
	}
	if errs := body["errors"].([]any); len(errs) != 3 {
		t.Fatalf("errors %v", errs)
	}
	if h.gw.created != 0 {
		t.Fatal("gateway called on invalid input")
	}

	status, _ = h.do(t, http.MethodPost, "/api/a/installments/actions", `{"action":"drop_tables"}`, nil)
	if status != fiber.StatusBadRequest {
		t.Fatalf("unknown action status %d", status)
	}
}

func TestDispatchPermission(t *testing.T) {
	h := newHarness(t, constants.RoleViewer)
	status, body := h.do(t, http.MethodPost, "/api/a/installments/actions", createBody, nil)
	if status != fiber.StatusForbidden || body["success"] != false {
		t.Fatalf("viewer create: %d %v", status, body)
	}
}

func TestDetailNotFoundAndPaymentBook(t *testing.T) {
	h := newHarness(t, constants.RoleAdmin)
	if status, _ := h.do(t, http.MethodGet, "/api/a/installments/nope", "", nil); status != fiber.StatusNotFound {
		t.Fatalf("missing plan status %d", status)
	}

	h.do(t, http.MethodPost, "/api/a/installments/actions", createBody, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/a/installments/ins_9/payment-book", nil)
	resp, err := h.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusOK || resp.Header.Get("Content-Type") != "application/pdf" || string(raw) != "%PDF-1.4 book" {
		t.Fatalf("payment book %d %q %q", resp.StatusCode, resp.Header.Get("Content-Type"), raw)
	}
}

func TestWebhookReceiver(t *testing.T) {
	h := newHarness(t, constants.RoleAdmin)
	h.do(t, http.MethodPost, "/api/a/installments/actions", createBody, nil)
	if status, _ := h.do(t, http.MethodPost, "/api/a/installments/ins_9/sync", "", nil); status != fiber.StatusOK {
		t.Fatalf("sync status %d", status)
	}

	event := `{"event":"PAYMENT_RECEIVED","payment":{"id":"pay_9","value":50}}`
	if status, _ := h.do(t, http.MethodPost, "/api/webhooks/gateway", event, nil); status != fiber.StatusUnauthorized {
		t.Fatalf("missing token status %d", status)
	}

	token := map[string]string{WebhookTokenHeader: "hook-secret"}
	status, body := h.do(t, http.MethodPost, "/api/webhooks/gateway", event, token)
	if status != fiber.StatusOK || body["status"] != "processed" || body["completion"] != "0.5" {
		t.Fatalf("received: %d %v", status, body)
	}

	status, body = h.do(t, http.MethodPost, "/api/webhooks/gateway", `{"event":"PAYMENT_RECEIVED","payment":{"id":"ghost"}}`, token)
	if status != fiber.StatusOK || body["status"] != "ignored" {
		t.Fatalf("unknown payment: %d %v", status, body)
	}
}
