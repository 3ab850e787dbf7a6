package configs

import "testing"

func TestCheckWebhookToken(t *testing.T) {
	tests := []struct {
		env, token string
		wantErr    bool
	}{
		{"production", "", true},
		{"staging", "", true},
		{"", "", true},
		{"production", "hook-secret", false},
		{"development", "", false},
		{"development", "hook-secret", false},
	}
	for _, tc := range tests {
		err := CheckWebhookToken(tc.env, tc.token)
		if (err != nil) != tc.wantErr {
			t.Errorf("CheckWebhookToken(%q, %q) = %v, wantErr %v", tc.env, tc.token, err, tc.wantErr)
		}
	}
}
