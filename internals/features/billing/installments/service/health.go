package service

import (
	"context"
	"time"
)

type GatewayHealth struct {
	OK          bool   `json:"ok"`
	Subaccounts int    `json:"subaccounts"`
	LatencyMS   int64  `json:"latency_ms"`
	Error       string `json:"error,omitempty"`
}

// CheckGatewayHealth lists sub-accounts as a cheap authenticated round trip.
func (s *InstallmentService) CheckGatewayHealth(ctx context.Context) *GatewayHealth {
	start := time.Now()
	accounts, err := s.Gateway.ListSubaccounts(ctx)
	h := &GatewayHealth{LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		h.Error = wrapGateway("list_subaccounts", err).Error()
		return h
	}
	h.OK = true
	h.Subaccounts = len(accounts)
	return h
}
