package configs

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// BillingPolicy holds the bounds applied when creating installment plans.
type BillingPolicy struct {
	MinInstallments     int             `yaml:"min_installments"`
	MaxInstallments     int             `yaml:"max_installments"`
	MinInstallmentValue decimal.Decimal `yaml:"min_installment_value"`
	MaxInstallmentValue decimal.Decimal `yaml:"max_installment_value"`

	// MaxFixedDiscountRatio caps a FIXED discount relative to the installment
	// value (0.5 = half). Zero disables the cap.
	MaxFixedDiscountRatio decimal.Decimal `yaml:"max_fixed_discount_ratio"`

	// OverdueSuspensionThreshold is the overdue count that flags a plan for review.
	OverdueSuspensionThreshold int `yaml:"overdue_suspension_threshold"`
}

type billingPolicyFile struct {
	MinInstallments            *int    `yaml:"min_installments"`
	MaxInstallments            *int    `yaml:"max_installments"`
	MinInstallmentValue        *string `yaml:"min_installment_value"`
	MaxInstallmentValue        *string `yaml:"max_installment_value"`
	MaxFixedDiscountRatio      *string `yaml:"max_fixed_discount_ratio"`
	OverdueSuspensionThreshold *int    `yaml:"overdue_suspension_threshold"`
}

func DefaultBillingPolicy() BillingPolicy {
	return BillingPolicy{
		MinInstallments:            2,
		MaxInstallments:            24,
		MinInstallmentValue:        decimal.RequireFromString("5.00"),
		MaxInstallmentValue:        decimal.RequireFromString("100000.00"),
		MaxFixedDiscountRatio:      decimal.Zero,
		OverdueSuspensionThreshold: 3,
	}
}

// LoadBillingPolicy reads BILLING_POLICY_FILE when set and overlays it on the defaults.
func LoadBillingPolicy() (BillingPolicy, error) {
	path := GetEnv("BILLING_POLICY_FILE")
	if path == "" {
		return DefaultBillingPolicy(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return BillingPolicy{}, fmt.Errorf("read billing policy: %w", err)
	}
	p, err := ParseBillingPolicy(raw)
	if err != nil {
		return BillingPolicy{}, err
	}
	log.Info().Str("file", path).Int("min", p.MinInstallments).Int("max", p.MaxInstallments).Msg("billing policy loaded")
	return p, nil
}

func ParseBillingPolicy(raw []byte) (BillingPolicy, error) {
	var f billingPolicyFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return BillingPolicy{}, fmt.Errorf("parse billing policy: %w", err)
	}

	p := DefaultBillingPolicy()
	if f.MinInstallments != nil {
		p.MinInstallments = *f.MinInstallments
	}
	if f.MaxInstallments != nil {
		p.MaxInstallments = *f.MaxInstallments
	}
	if f.OverdueSuspensionThreshold != nil {
		p.OverdueSuspensionThreshold = *f.OverdueSuspensionThreshold
	}
	for _, kv := range []struct {
		name string
		src  *string
		dst  *decimal.Decimal
	}{
		{"min_installment_value", f.MinInstallmentValue, &p.MinInstallmentValue},
		{"max_installment_value", f.MaxInstallmentValue, &p.MaxInstallmentValue},
		{"max_fixed_discount_ratio", f.MaxFixedDiscountRatio, &p.MaxFixedDiscountRatio},
	} {
		if kv.src == nil {
			continue
		}
		d, err := decimal.NewFromString(*kv.src)
		if err != nil {
			return BillingPolicy{}, fmt.Errorf("parse billing policy: %s: %w", kv.name, err)
		}
		*kv.dst = d
	}

	if p.MinInstallments < 1 || p.MaxInstallments < p.MinInstallments {
		return BillingPolicy{}, fmt.Errorf("parse billing policy: invalid installment range %d..%d", p.MinInstallments, p.MaxInstallments)
	}
	if p.MaxInstallmentValue.LessThan(p.MinInstallmentValue) {
		return BillingPolicy{}, fmt.Errorf("parse billing policy: invalid value range %s..%s", p.MinInstallmentValue, p.MaxInstallmentValue)
	}
	return p, nil
}
