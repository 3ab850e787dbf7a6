package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *RESTClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewRESTClient(Config{BaseURL: srv.URL, APIKey: "key-123", Sandbox: true, Timeout: 5 * time.Second})
}

func TestCreateInstallmentSendsDiscountAndSplits(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/payments" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("access_token") != "key-123" {
			t.Errorf("access_token header = %q", r.Header.Get("access_token"))
		}
		if r.Header.Get("Idempotency-Key") != "idem-1" {
			t.Errorf("Idempotency-Key = %q", r.Header.Get("Idempotency-Key"))
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pay_1","installment":"ins_1","invoiceUrl":"https://pay/1","status":"PENDING"}`))
	})

	res, err := client.CreateInstallment(context.Background(), CreateInstallmentRequest{
		Customer:         "cus_1",
		BillingType:      "BOLETO",
		DueDate:          "2030-01-10",
		InstallmentCount: 3,
		InstallmentValue: decimal.RequireFromString("100.00"),
		Discount:         &Discount{Value: decimal.RequireFromString("20.00"), DueDateLimitDays: -3},
		Splits: []Split{
			{WalletID: "w1", PercentualValue: decimal.NewNullDecimal(decimal.NewFromInt(10))},
		},
		IdempotencyKey: "idem-1",
	})
	if err != nil {
		t.Fatalf("CreateInstallment: %v", err)
	}
	if res.InstallmentID != "ins_1" || res.PaymentID != "pay_1" || res.InvoiceURL != "https://pay/1" {
		t.Fatalf("unexpected response %+v", res)
	}
	if len(res.Raw) == 0 {
		t.Error("raw response not kept")
	}

	disc, _ := got["discount"].(map[string]any)
	if disc["value"] != 20.0 || disc["dueDateLimitDays"] != -3.0 {
		t.Errorf("discount payload = %v", disc)
	}
	splits, _ := got["split"].([]any)
	if len(splits) != 1 {
		t.Fatalf("split payload = %v", got["split"])
	}
	if s := splits[0].(map[string]any); s["walletId"] != "w1" || s["percentualValue"] != 10.0 || s["fixedValue"] != nil {
		t.Errorf("split[0] = %v", s)
	}
	if got["installmentValue"] != 100.0 || got["installmentCount"] != 3.0 {
		t.Errorf("installment fields = %v / %v", got["installmentValue"], got["installmentCount"])
	}
}

func TestCreateInstallmentMapsErrors(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"errors":[{"code":"invalid_customer","description":"customer not found"}]}`))
		})
		_, err := client.CreateInstallment(context.Background(), CreateInstallmentRequest{Customer: "x"})
		var gErr *Error
		if !errors.As(err, &gErr) {
			t.Fatalf("err = %v, want *Error", err)
		}
		if gErr.StatusCode != http.StatusBadRequest || gErr.Op != "create_installment" {
			t.Errorf("got %+v", gErr)
		}
		if gErr.Temporary() {
			t.Error("400 should not be temporary")
		}
	})

	t.Run("missing ids", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"pay_1"}`))
		})
		_, err := client.CreateInstallment(context.Background(), CreateInstallmentRequest{Customer: "x"})
		if !errors.Is(err, ErrUnexpectedResponse) {
			t.Fatalf("err = %v, want ErrUnexpectedResponse", err)
		}
	})
}

func TestListInstallmentPayments(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/installments/ins_1/payments" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hasMore":false,"data":[
			{"id":"pay_1","dueDate":"2030-01-10","value":100,"status":"RECEIVED"},
			{"id":"pay_2","dueDate":"2030-02-10","value":100.5,"status":"PENDING"}]}`))
	})
	payments, err := client.ListInstallmentPayments(context.Background(), "ins_1")
	if err != nil {
		t.Fatalf("ListInstallmentPayments: %v", err)
	}
	if len(payments) != 2 || payments[1].ID != "pay_2" || !payments[1].Value.Equal(decimal.RequireFromString("100.5")) {
		t.Fatalf("payments = %+v", payments)
	}
}

func TestPaymentBookReturnsPDF(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake")
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/installments/ins_1/paymentBook" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdf)
	})
	got, err := client.PaymentBook(context.Background(), "ins_1")
	if err != nil {
		t.Fatalf("PaymentBook: %v", err)
	}
	if string(got) != string(pdf) {
		t.Errorf("body = %q", got)
	}
}

func TestPaymentBookNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	_, err := client.PaymentBook(context.Background(), "ins_x")
	var gErr *Error
	if !errors.As(err, &gErr) || gErr.StatusCode != http.StatusNotFound {
		t.Fatalf("err = %v", err)
	}
}

func TestMissingAPIKeyFailsBeforeNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer srv.Close()
	client := NewRESTClient(Config{BaseURL: srv.URL})
	if _, err := client.ListSubaccounts(context.Background()); err == nil {
		t.Fatal("expected error without api key")
	}
	if called {
		t.Error("request reached the server")
	}
}
