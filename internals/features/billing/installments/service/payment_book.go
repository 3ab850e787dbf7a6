package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"polopay_backend/internals/features/billing/installments/model"
)

type PaymentBook struct {
	PlanID     string `json:"plan_id"`
	FileName   string `json:"file_name"`
	PDF        []byte `json:"-"`
	ArchiveURL string `json:"archive_url,omitempty"`
}

// GeneratePaymentBook downloads the printable booklet of a plan. When an
// archive is configured a copy is stored there; archive failures are logged.
func (s *InstallmentService) GeneratePaymentBook(ctx context.Context, planID string, actor ActorContext) (*PaymentBook, error) {
	plan, err := s.loadPlan(ctx, planID, actor)
	if err != nil {
		return nil, err
	}

	pdf, err := s.Gateway.PaymentBook(ctx, planID)
	if err != nil {
		return nil, wrapGateway("payment_book", err)
	}

	book := &PaymentBook{
		PlanID:   planID,
		FileName: fmt.Sprintf("carne-%s.pdf", planID),
		PDF:      pdf,
	}
	if s.Archive != nil {
		name := fmt.Sprintf("%s/%s", planID, book.FileName)
		if url, err := s.Archive.Put(ctx, name, "application/pdf", pdf); err != nil {
			log.Warn().Err(err).Str("plan_id", planID).Msg("payment book archive failed")
		} else {
			book.ArchiveURL = url
		}
	}

	s.audit(ctx, plan, model.ActionPaymentBookGenerated, actor, map[string]any{
		"bytes":       len(pdf),
		"archive_url": book.ArchiveURL,
	})
	return book, nil
}
