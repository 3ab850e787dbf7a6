package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"polopay_backend/internals/features/billing/gateway"
	"polopay_backend/internals/features/billing/installments/model"
)

var hundred = decimal.NewFromInt(100)

type DiscountRequest struct {
	Type     string          `json:"type"`
	Value    decimal.Decimal `json:"value"`
	Deadline string          `json:"deadline"`
}

// NormalizedDiscount is a validated discount plus its per-installment amount.
type NormalizedDiscount struct {
	Type             model.DiscountType     `json:"type"`
	Value            decimal.Decimal        `json:"value"`
	Deadline         model.DiscountDeadline `json:"deadline"`
	DueDateLimitDays int                    `json:"due_date_limit_days"`
	PerInstallment   decimal.Decimal        `json:"discount_per_installment"`
}

// Gateway converts to the gateway's shape: an absolute amount and a day offset.
func (d NormalizedDiscount) Gateway() gateway.Discount {
	return gateway.Discount{Value: d.PerInstallment, DueDateLimitDays: d.DueDateLimitDays}
}

type DiscountPolicy struct {
	// MaxFixedRatio caps FIXED discounts at installment*ratio when positive.
	MaxFixedRatio decimal.Decimal
}

// Normalize evaluates every rule and reports all violations together.
func (p DiscountPolicy) Normalize(req DiscountRequest, installmentValue decimal.Decimal) (*NormalizedDiscount, error) {
	var errs []string

	typ := model.DiscountType(strings.ToUpper(strings.TrimSpace(req.Type)))
	if typ != model.DiscountFixed && typ != model.DiscountPercentage {
		errs = append(errs, "invalid discount type")
	}
	if !req.Value.IsPositive() {
		errs = append(errs, "discount value must be positive")
	}
	if typ == model.DiscountFixed {
		if !req.Value.LessThan(installmentValue) {
			errs = append(errs, "fixed discount must be less than installment value")
		} else if p.MaxFixedRatio.IsPositive() && req.Value.GreaterThan(installmentValue.Mul(p.MaxFixedRatio)) {
			errs = append(errs, fmt.Sprintf("fixed discount must not exceed %s%% of installment value", p.MaxFixedRatio.Mul(hundred).String()))
		}
	}
	if typ == model.DiscountPercentage && !req.Value.LessThan(hundred) {
		errs = append(errs, "percentage discount must be less than 100")
	}

	deadline := model.DiscountDeadline(strings.ToLower(strings.TrimSpace(req.Deadline)))
	days, ok := deadline.DueDateLimitDays()
	if !ok {
		errs = append(errs, "invalid discount deadline")
	}

	if len(errs) > 0 {
		return nil, invalid(errs...)
	}

	return &NormalizedDiscount{
		Type:             typ,
		Value:            req.Value,
		Deadline:         deadline,
		DueDateLimitDays: days,
		PerInstallment:   PerInstallmentDiscount(typ, req.Value, installmentValue),
	}, nil
}

// PerInstallmentDiscount is the absolute amount taken off one installment.
func PerInstallmentDiscount(typ model.DiscountType, value, installmentValue decimal.Decimal) decimal.Decimal {
	if typ == model.DiscountPercentage {
		return installmentValue.Mul(value).Div(hundred).Round(2)
	}
	return value
}
