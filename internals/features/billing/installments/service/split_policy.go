package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"polopay_backend/internals/features/billing/gateway"
	"polopay_backend/internals/features/billing/installments/model"
)

type SplitRequest struct {
	WalletID        string           `json:"wallet_id"`
	PercentualValue *decimal.Decimal `json:"percentual_value,omitempty"`
	FixedValue      *decimal.Decimal `json:"fixed_value,omitempty"`
}

type NormalizedSplit struct {
	WalletID        string              `json:"wallet_id"`
	Type            model.SplitType     `json:"type"`
	PercentualValue decimal.NullDecimal `json:"percentual_value"`
	FixedValue      decimal.NullDecimal `json:"fixed_value"`
}

func (s NormalizedSplit) Gateway() gateway.Split {
	return gateway.Split{WalletID: s.WalletID, FixedValue: s.FixedValue, PercentualValue: s.PercentualValue}
}

// NormalizeSplits validates recipients against one installment's value.
//
// Entries without a wallet are dropped. The surviving entries must satisfy
// sum(percent) <= 100 and sum(fixed) < value. When both kinds are present the
// combined amount, fixed + value*percent/100, must also stay below value so the
// plan owner keeps a positive residual.
func NormalizeSplits(reqs []SplitRequest, installmentValue decimal.Decimal) ([]NormalizedSplit, error) {
	var (
		errs     []string
		out      []NormalizedSplit
		sumPct   = decimal.Zero
		sumFixed = decimal.Zero
	)

	for i, r := range reqs {
		wallet := strings.TrimSpace(r.WalletID)
		if wallet == "" {
			continue
		}
		label := fmt.Sprintf("split #%d (%s)", i+1, wallet)
		ns := NormalizedSplit{WalletID: wallet}

		if r.PercentualValue == nil && r.FixedValue == nil {
			errs = append(errs, label+": percentage or fixed value is required")
			continue
		}
		if r.PercentualValue != nil {
			pct := *r.PercentualValue
			if !pct.IsPositive() || pct.GreaterThan(hundred) {
				errs = append(errs, label+": percentage must be greater than 0 and at most 100")
			}
			ns.PercentualValue = decimal.NewNullDecimal(pct)
			sumPct = sumPct.Add(pct)
		}
		if r.FixedValue != nil {
			fixed := *r.FixedValue
			if !fixed.IsPositive() || !fixed.LessThan(installmentValue) {
				errs = append(errs, label+": fixed value must be greater than 0 and less than installment value")
			}
			ns.FixedValue = decimal.NewNullDecimal(fixed)
			sumFixed = sumFixed.Add(fixed)
		}

		switch {
		case ns.PercentualValue.Valid && ns.FixedValue.Valid:
			ns.Type = model.SplitMixed
		case ns.PercentualValue.Valid:
			ns.Type = model.SplitPercentage
		default:
			ns.Type = model.SplitFixed
		}
		out = append(out, ns)
	}

	pctOK := !sumPct.GreaterThan(hundred)
	fixedOK := sumFixed.LessThan(installmentValue)
	if !pctOK {
		errs = append(errs, "sum of split percentages must not exceed 100")
	}
	if !fixedOK {
		errs = append(errs, "sum of split fixed values must be less than installment value")
	}
	if pctOK && fixedOK && sumPct.IsPositive() && sumFixed.IsPositive() {
		combined := sumFixed.Add(installmentValue.Mul(sumPct).Div(hundred))
		if !combined.LessThan(installmentValue) {
			errs = append(errs, "combined split value exceeds installment value")
		}
	}

	if len(errs) > 0 {
		return nil, invalid(errs...)
	}
	return out, nil
}
