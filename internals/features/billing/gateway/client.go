// Package gateway talks to the payment gateway that owns installment plans,
// their payments and payment books.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

type Client interface {
	CreateInstallment(ctx context.Context, req CreateInstallmentRequest) (*CreateInstallmentResponse, error)
	GetInstallment(ctx context.Context, installmentID string) (*Installment, error)
	ListInstallmentPayments(ctx context.Context, installmentID string) ([]Payment, error)
	PaymentBook(ctx context.Context, installmentID string) ([]byte, error)
	ListSubaccounts(ctx context.Context) ([]Subaccount, error)
}

/* ===================== request shapes ===================== */

// Discount is the gateway's discount block: Value is an absolute amount per
// installment, DueDateLimitDays a signed offset from the due date.
type Discount struct {
	Value            decimal.Decimal
	DueDateLimitDays int
}

type Split struct {
	WalletID        string
	FixedValue      decimal.NullDecimal
	PercentualValue decimal.NullDecimal
}

type CreateInstallmentRequest struct {
	Customer          string
	BillingType       string
	Description       string
	DueDate           string // YYYY-MM-DD
	InstallmentCount  int
	InstallmentValue  decimal.Decimal
	ExternalReference string
	Discount          *Discount
	Splits            []Split
	IdempotencyKey    string
}

/* ===================== response shapes ===================== */

type CreateInstallmentResponse struct {
	InstallmentID string          `json:"installment"`
	PaymentID     string          `json:"id"`
	InvoiceURL    string          `json:"invoiceUrl"`
	Status        string          `json:"status"`
	Raw           json.RawMessage `json:"-"`
}

type Installment struct {
	ID               string          `json:"id"`
	Customer         string          `json:"customer"`
	InstallmentCount int             `json:"installmentCount"`
	PaymentValue     decimal.Decimal `json:"paymentValue"`
	Value            decimal.Decimal `json:"value"`
	BillingType      string          `json:"billingType"`
	Description      string          `json:"description"`
	DateCreated      string          `json:"dateCreated"`
	Deleted          bool            `json:"deleted"`
}

type Payment struct {
	ID                string          `json:"id"`
	Installment       string          `json:"installment"`
	DueDate           string          `json:"dueDate"`
	Value             decimal.Decimal `json:"value"`
	Status            string          `json:"status"`
	InstallmentNumber int             `json:"installmentNumber"`
	InvoiceURL        string          `json:"invoiceUrl"`
	PaymentDate       string          `json:"paymentDate"`
}

type Subaccount struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	WalletID string `json:"walletId"`
}

/* ===================== errors ===================== */

// ErrUnexpectedResponse marks a 2xx answer that lacks the fields we depend on.
var ErrUnexpectedResponse = errors.New("unexpected gateway response")

// Error is returned for every failed gateway call.
type Error struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("gateway %s: status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gateway %s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Temporary reports whether a retry might succeed.
func (e *Error) Temporary() bool {
	return e.StatusCode == 0 || e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
