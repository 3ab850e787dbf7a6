package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/midtrans/midtrans-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const userAgent = "polopay-backend/1.0"

type Config struct {
	BaseURL string
	APIKey  string
	Sandbox bool
	Timeout time.Duration
}

// RESTClient is the HTTP implementation of Client. JSON calls go through
// midtrans-go's transport, which already maps non-2xx answers to *midtrans.Error.
type RESTClient struct {
	baseURL   string
	apiKey    string
	transport *midtrans.HttpClientImplementation
	tracer    trace.Tracer
}

func NewRESTClient(cfg Config) *RESTClient {
	env := midtrans.Production
	if cfg.Sandbox {
		env = midtrans.Sandbox
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	transport := midtrans.GetHttpClient(env)
	transport.HttpClient = &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        50,
			MaxIdleConnsPerHost: 50,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	transport.Logger = &midtrans.LoggerImplementation{LogLevel: midtrans.LogError}

	return &RESTClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		transport: transport,
		tracer:    otel.Tracer("polopay/gateway"),
	}
}

/* ===================== wire payloads ===================== */

type discountPayload struct {
	Value            float64 `json:"value"`
	DueDateLimitDays int     `json:"dueDateLimitDays"`
	Type             string  `json:"type"`
}

type splitPayload struct {
	WalletID        string   `json:"walletId"`
	FixedValue      *float64 `json:"fixedValue,omitempty"`
	PercentualValue *float64 `json:"percentualValue,omitempty"`
}

type createInstallmentPayload struct {
	Customer          string           `json:"customer"`
	BillingType       string           `json:"billingType"`
	Description       string           `json:"description,omitempty"`
	DueDate           string           `json:"dueDate"`
	InstallmentCount  int              `json:"installmentCount"`
	InstallmentValue  float64          `json:"installmentValue"`
	ExternalReference string           `json:"externalReference,omitempty"`
	Discount          *discountPayload `json:"discount,omitempty"`
	Split             []splitPayload   `json:"split,omitempty"`
}

type listEnvelope[T any] struct {
	HasMore bool `json:"hasMore"`
	Data    []T  `json:"data"`
}

func toPayload(req CreateInstallmentRequest) createInstallmentPayload {
	p := createInstallmentPayload{
		Customer:          req.Customer,
		BillingType:       req.BillingType,
		Description:       req.Description,
		DueDate:           req.DueDate,
		InstallmentCount:  req.InstallmentCount,
		InstallmentValue:  req.InstallmentValue.InexactFloat64(),
		ExternalReference: req.ExternalReference,
	}
	if req.Discount != nil {
		// the value is already converted to an absolute amount
		p.Discount = &discountPayload{
			Value:            req.Discount.Value.InexactFloat64(),
			DueDateLimitDays: req.Discount.DueDateLimitDays,
			Type:             "FIXED",
		}
	}
	for _, s := range req.Splits {
		sp := splitPayload{WalletID: s.WalletID}
		if s.FixedValue.Valid {
			v := s.FixedValue.Decimal.InexactFloat64()
			sp.FixedValue = &v
		}
		if s.PercentualValue.Valid {
			v := s.PercentualValue.Decimal.InexactFloat64()
			sp.PercentualValue = &v
		}
		p.Split = append(p.Split, sp)
	}
	return p
}

/* ===================== operations ===================== */

func (c *RESTClient) CreateInstallment(ctx context.Context, req CreateInstallmentRequest) (*CreateInstallmentResponse, error) {
	const op = "create_installment"
	body, err := sonic.Marshal(toPayload(req))
	if err != nil {
		return nil, &Error{Op: op, Message: "encode request", Err: err}
	}

	headers := map[string]string{}
	if req.IdempotencyKey != "" {
		headers["Idempotency-Key"] = req.IdempotencyKey
	}

	var raw json.RawMessage
	if err := c.doJSON(ctx, op, http.MethodPost, "/payments", body, headers, &raw); err != nil {
		return nil, err
	}

	out := &CreateInstallmentResponse{}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return nil, &Error{Op: op, Message: "decode response", Err: errors.Join(ErrUnexpectedResponse, err)}
	}
	if out.InstallmentID == "" || out.PaymentID == "" {
		return nil, &Error{Op: op, Message: "response lacks installment or payment id", Err: ErrUnexpectedResponse}
	}
	out.Raw = raw
	return out, nil
}

func (c *RESTClient) GetInstallment(ctx context.Context, installmentID string) (*Installment, error) {
	var out Installment
	if err := c.doJSON(ctx, "get_installment", http.MethodGet, "/installments/"+url.PathEscape(installmentID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) ListInstallmentPayments(ctx context.Context, installmentID string) ([]Payment, error) {
	var out listEnvelope[Payment]
	path := "/installments/" + url.PathEscape(installmentID) + "/payments"
	if err := c.doJSON(ctx, "list_installment_payments", http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *RESTClient) ListSubaccounts(ctx context.Context) ([]Subaccount, error) {
	var out listEnvelope[Subaccount]
	if err := c.doJSON(ctx, "list_subaccounts", http.MethodGet, "/accounts", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// PaymentBook downloads the PDF carnet. The body is binary, so it bypasses
// the JSON transport and uses the same http.Client directly.
func (c *RESTClient) PaymentBook(ctx context.Context, installmentID string) ([]byte, error) {
	const op = "payment_book"
	path := "/installments/" + url.PathEscape(installmentID) + "/paymentBook"

	ctx, span, finish := c.startSpan(ctx, op, http.MethodGet, path)
	defer span.End()

	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, finish(&Error{Op: op, Message: "build request", Err: err})
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.transport.HttpClient.Do(req)
	if err != nil {
		return nil, finish(&Error{Op: op, Message: err.Error(), Err: err})
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, finish(&Error{Op: op, StatusCode: resp.StatusCode, Message: "read body", Err: err})
	}
	if resp.StatusCode >= 300 {
		return nil, finish(&Error{Op: op, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(truncate(data, 300)))})
	}
	if len(data) == 0 {
		return nil, finish(&Error{Op: op, StatusCode: resp.StatusCode, Message: "empty payment book", Err: ErrUnexpectedResponse})
	}
	return data, finish(nil)
}

/* ===================== plumbing ===================== */

func (c *RESTClient) doJSON(ctx context.Context, op, method, path string, body []byte, headers map[string]string, out any) error {
	ctx, span, finish := c.startSpan(ctx, op, method, path)
	defer span.End()

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := c.newRequest(ctx, method, path, rdr, headers)
	if err != nil {
		return finish(&Error{Op: op, Message: "build request", Err: err})
	}

	if mErr := c.transport.DoRequest(req, out); mErr != nil {
		return finish(&Error{Op: op, StatusCode: mErr.StatusCode, Message: mErr.Message, Err: mErr})
	}
	return finish(nil)
}

func (c *RESTClient) newRequest(ctx context.Context, method, path string, body io.Reader, headers map[string]string) (*http.Request, error) {
	if c.apiKey == "" {
		return nil, errors.New("gateway api key is not configured")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("access_token", c.apiKey)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return req, nil
}

// startSpan opens a client span and returns a finisher that records the
// outcome on the span and in metrics, passing err through.
func (c *RESTClient) startSpan(ctx context.Context, op, method, path string) (context.Context, trace.Span, func(error) error) {
	ctx, span := c.tracer.Start(ctx, "gateway."+op, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.url", c.baseURL+path),
	)
	start := time.Now()

	return ctx, span, func(err error) error {
		requestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		if err != nil {
			requestsTotal.WithLabelValues(op, "error").Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			var gErr *Error
			if errors.As(err, &gErr) && gErr.StatusCode > 0 {
				span.SetAttributes(attribute.Int("http.status_code", gErr.StatusCode))
			}
			return err
		}
		requestsTotal.WithLabelValues(op, "ok").Inc()
		span.SetStatus(codes.Ok, "")
		return nil
	}
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}

var _ Client = (*RESTClient)(nil)
