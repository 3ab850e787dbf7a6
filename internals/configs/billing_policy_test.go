package configs

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseBillingPolicy(t *testing.T) {
	p, err := ParseBillingPolicy([]byte(`
min_installments: 3
max_installments: 12
max_installment_value: "2500.50"
max_fixed_discount_ratio: "0.5"
`))
	if err != nil {
		t.Fatalf("ParseBillingPolicy: %v", err)
	}
	if p.MinInstallments != 3 || p.MaxInstallments != 12 {
		t.Errorf("range = %d..%d, want 3..12", p.MinInstallments, p.MaxInstallments)
	}
	if !p.MaxInstallmentValue.Equal(decimal.RequireFromString("2500.50")) {
		t.Errorf("max value = %s", p.MaxInstallmentValue)
	}
	if !p.MinInstallmentValue.Equal(decimal.RequireFromString("5")) {
		t.Errorf("min value should keep default, got %s", p.MinInstallmentValue)
	}
	if !p.MaxFixedDiscountRatio.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("ratio = %s", p.MaxFixedDiscountRatio)
	}
	if p.OverdueSuspensionThreshold != 3 {
		t.Errorf("threshold = %d, want default 3", p.OverdueSuspensionThreshold)
	}
}

func TestParseBillingPolicyRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"inverted range": "min_installments: 10\nmax_installments: 2\n",
		"bad decimal":    "max_installment_value: \"abc\"\n",
		"bad yaml":       "min_installments: [\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseBillingPolicy([]byte(raw)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
