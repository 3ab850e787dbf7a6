package controller

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	svc "polopay_backend/internals/features/billing/installments/service"
)

// WebhookTokenHeader carries the shared secret configured on the gateway.
const WebhookTokenHeader = "asaas-access-token"

type WebhookController struct {
	Svc   *svc.InstallmentService
	Token string // empty disables the check
}

func NewWebhookController(s *svc.InstallmentService, token string) *WebhookController {
	return &WebhookController{Svc: s, Token: token}
}

// POST /api/webhooks/gateway
//
// Once the token matches, the answer is always 200 so the gateway stops
// redelivering; the outcome is reported in the body.
func (h *WebhookController) Receive(c *fiber.Ctx) error {
	if h.Token != "" {
		got := c.Get(WebhookTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.Token)) != 1 {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid webhook token")
		}
	}

	headers := map[string]string{}
	c.Request().Header.VisitAll(func(k, v []byte) {
		key := string(k)
		if strings.EqualFold(key, WebhookTokenHeader) || strings.EqualFold(key, fiber.HeaderAuthorization) {
			return
		}
		headers[key] = string(v)
	})

	out := h.Svc.ProcessWebhook(c.UserContext(), utils.CopyBytes(c.Body()), headers)
	return c.Status(fiber.StatusOK).JSON(out)
}
