package controller

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"polopay_backend/internals/constants"
	dto "polopay_backend/internals/features/billing/installments/dto"
	svc "polopay_backend/internals/features/billing/installments/service"
	helper "polopay_backend/internals/helpers"
	authMw "polopay_backend/internals/middlewares/auth"
)

/* =======================================================================
   Controller
======================================================================= */

type InstallmentController struct {
	Svc       *svc.InstallmentService
	Validator *validator.Validate
}

func NewInstallmentController(s *svc.InstallmentService) *InstallmentController {
	return &InstallmentController{Svc: s, Validator: validator.New()}
}

// actorContext converts the session actor into the service's request context.
func actorContext(c *fiber.Ctx) (svc.ActorContext, error) {
	a, ok := authMw.GetActor(c)
	if !ok {
		return svc.ActorContext{}, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized: missing session")
	}
	uid := a.UserID
	label := a.Email
	if label == "" {
		label = a.UserID.String()
	}
	return svc.ActorContext{
		UserID:         &uid,
		TenantID:       a.TenantID,
		Role:           a.Role,
		Label:          label,
		Master:         a.IsMaster(),
		IdempotencyKey: strings.TrimSpace(c.Get("Idempotency-Key")),
	}, nil
}

func requirePerm(c *fiber.Ctx, perm string) error {
	a, ok := authMw.GetActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized: missing session")
	}
	if !a.Can(perm) {
		return fiber.NewError(fiber.StatusForbidden, constants.PermissionError(perm))
	}
	return nil
}

func (h *InstallmentController) decode(c *fiber.Ctx, out any) error {
	if err := sonic.Unmarshal(c.Body(), out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := h.Validator.Struct(out); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fe.Field()+": failed "+fe.Tag())
			}
			return &svc.ValidationError{Errors: msgs}
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// writeError maps service errors to the action envelope.
func writeError(c *fiber.Ctx, err error) error {
	var (
		ve *svc.ValidationError
		nf *svc.NotFoundError
		ge *svc.GatewayError
		fe *fiber.Error
	)
	switch {
	case errors.As(err, &ve):
		return helper.JsonActionError(c, fiber.StatusUnprocessableEntity, "validation failed", ve.Errors)
	case errors.As(err, &nf):
		return helper.JsonActionError(c, fiber.StatusNotFound, nf.Error(), nil)
	case errors.As(err, &ge):
		return helper.JsonActionError(c, fiber.StatusBadGateway, ge.Error(), nil)
	case errors.Is(err, svc.ErrNoPaymentsFromGateway):
		return helper.JsonActionError(c, fiber.StatusNotFound, err.Error(), nil)
	case errors.As(err, &fe):
		return helper.JsonActionError(c, fe.Code, fe.Message, nil)
	case helper.IsUniqueViolation(err), helper.IsForeignKeyViolation(err):
		log.Warn().Err(err).Str("path", c.Path()).Msg("constraint violation")
		return helper.JsonActionError(c, fiber.StatusConflict, "conflicts with existing data", nil)
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("installment request failed")
	return helper.JsonActionError(c, fiber.StatusInternalServerError, "Internal Server Error", nil)
}

/* =======================================================================
   Action dispatch
======================================================================= */

var actionPermissions = map[string]string{
	dto.ActionCreateInstallment:   constants.PermInstallmentsCreate,
	dto.ActionGetInstallment:      constants.PermInstallmentsView,
	dto.ActionGeneratePaymentBook: constants.PermPaymentBookGenerate,
	dto.ActionSyncPayments:        constants.PermInstallmentsSync,
	dto.ActionReplaceSplits:       constants.PermSplitsManage,
	dto.ActionListInstallments:    constants.PermInstallmentsView,
}

// POST /api/a/installments/actions
func (h *InstallmentController) Dispatch(c *fiber.Ctx) error {
	var req dto.ActionRequest
	if err := h.decode(c, &req); err != nil {
		return writeError(c, err)
	}
	perm, ok := actionPermissions[req.Action]
	if !ok {
		return helper.JsonActionError(c, fiber.StatusBadRequest, "unknown action: "+req.Action, nil)
	}
	if err := requirePerm(c, perm); err != nil {
		return writeError(c, err)
	}
	actor, err := actorContext(c)
	if err != nil {
		return writeError(c, err)
	}

	switch req.Action {
	case dto.ActionCreateInstallment:
		return h.create(c, actor)
	case dto.ActionGetInstallment:
		return h.get(c, actor)
	case dto.ActionGeneratePaymentBook:
		return h.paymentBookAction(c, actor)
	case dto.ActionSyncPayments:
		return h.syncAction(c, actor)
	case dto.ActionReplaceSplits:
		return h.replaceSplits(c, actor)
	default:
		return h.listAction(c, actor)
	}
}

func (h *InstallmentController) create(c *fiber.Ctx, actor svc.ActorContext) error {
	var req dto.CreateInstallmentRequest
	if err := h.decode(c, &req); err != nil {
		return writeError(c, err)
	}
	res, err := h.Svc.CreateInstallmentWithDiscount(c.UserContext(),
		req.Payment(), req.Installment(), dto.SplitRequests(req.Splits), req.DiscountRequest(), actor)
	if err != nil {
		return writeError(c, err)
	}
	msg := "installment plan created"
	if res.Warning != nil {
		msg = "installment plan created at gateway; local copy not saved"
	}
	return helper.JsonAction(c, fiber.StatusCreated, msg, dto.FromCreationResult(res))
}

func (h *InstallmentController) get(c *fiber.Ctx, actor svc.ActorContext) error {
	var req dto.PlanRef
	if err := h.decode(c, &req); err != nil {
		return writeError(c, err)
	}
	d, err := h.Svc.GetInstallmentWithDiscount(c.UserContext(), req.InstallmentID, actor, req.IncludeRemote)
	if err != nil {
		return writeError(c, err)
	}
	return helper.JsonAction(c, fiber.StatusOK, "ok", d)
}

func (h *InstallmentController) paymentBookAction(c *fiber.Ctx, actor svc.ActorContext) error {
	var req dto.PlanRef
	if err := h.decode(c, &req); err != nil {
		return writeError(c, err)
	}
	book, err := h.Svc.GeneratePaymentBook(c.UserContext(), req.InstallmentID, actor)
	if err != nil {
		return writeError(c, err)
	}
	return helper.JsonAction(c, fiber.StatusOK, "payment book generated", fiber.Map{
		"installment_id": book.PlanID,
		"file_name":      book.FileName,
		"archive_url":    book.ArchiveURL,
		"pdf_base64":     base64.StdEncoding.EncodeToString(book.PDF),
	})
}

func (h *InstallmentController) syncAction(c *fiber.Ctx, actor svc.ActorContext) error {
	var req dto.PlanRef
	if err := h.decode(c, &req); err != nil {
		return writeError(c, err)
	}
	n, err := h.Svc.SyncInstallmentPayments(c.UserContext(), req.InstallmentID, actor)
	if err != nil {
		return writeError(c, err)
	}
	return helper.JsonAction(c, fiber.StatusOK, "payments synced", fiber.Map{"synced": n})
}

func (h *InstallmentController) replaceSplits(c *fiber.Ctx, actor svc.ActorContext) error {
	var req dto.ReplaceSplitsRequest
	if err := h.decode(c, &req); err != nil {
		return writeError(c, err)
	}
	splits, err := h.Svc.ReplacePaymentSplits(c.UserContext(), req.InstallmentID, req.PaymentID, dto.SplitRequests(req.Splits), actor)
	if err != nil {
		return writeError(c, err)
	}
	return helper.JsonAction(c, fiber.StatusOK, "splits replaced", splits)
}

func (h *InstallmentController) listAction(c *fiber.Ctx, actor svc.ActorContext) error {
	var req dto.ListInstallmentsRequest
	if err := h.decode(c, &req); err != nil {
		return writeError(c, err)
	}
	p := helper.Paging{Page: max(req.Page, 1), PerPage: req.PerPage}
	if p.PerPage == 0 {
		p.PerPage = 20
	}
	p.Offset, p.Limit = (p.Page-1)*p.PerPage, p.PerPage

	rows, total, err := h.Svc.ListPlans(c.UserContext(), svc.PlanQuery{
		TenantID: req.TenantID, Status: req.Status, Customer: req.Customer, Search: req.Search,
		Offset: p.Offset, Limit: p.Limit,
	}, actor)
	if err != nil {
		return writeError(c, err)
	}
	return helper.JsonAction(c, fiber.StatusOK, "ok", fiber.Map{
		"items":      dto.FromPlanModels(rows),
		"pagination": helper.BuildPagination(total, p, len(rows)),
	})
}

/* =======================================================================
   REST handlers
======================================================================= */

func tenantQuery(c *fiber.Ctx) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query("tenant_id"))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid tenant_id")
	}
	return &id, nil
}

// GET /api/a/installments
func (h *InstallmentController) List(c *fiber.Ctx) error {
	actor, err := actorContext(c)
	if err != nil {
		return err
	}
	tenantID, err := tenantQuery(c)
	if err != nil {
		return err
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := h.Svc.ListPlans(c.UserContext(), svc.PlanQuery{
		TenantID: tenantID,
		Status:   c.Query("status"),
		Customer: c.Query("customer"),
		Search:   c.Query("q"),
		Offset:   p.Offset,
		Limit:    p.Limit,
	}, actor)
	if err != nil {
		return writeError(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromPlanModels(rows), helper.BuildPagination(total, p, len(rows)))
}

// GET /api/a/installments/:id?remote=true
func (h *InstallmentController) Detail(c *fiber.Ctx) error {
	actor, err := actorContext(c)
	if err != nil {
		return err
	}
	d, err := h.Svc.GetInstallmentWithDiscount(c.UserContext(), c.Params("id"), actor, c.QueryBool("remote"))
	if err != nil {
		return writeError(c, err)
	}
	return helper.JsonOK(c, "ok", d)
}

// GET /api/a/installments/:id/payment-book
func (h *InstallmentController) PaymentBook(c *fiber.Ctx) error {
	actor, err := actorContext(c)
	if err != nil {
		return err
	}
	book, err := h.Svc.GeneratePaymentBook(c.UserContext(), c.Params("id"), actor)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+book.FileName+`"`)
	return c.Send(book.PDF)
}

// POST /api/a/installments/:id/sync
func (h *InstallmentController) Sync(c *fiber.Ctx) error {
	actor, err := actorContext(c)
	if err != nil {
		return err
	}
	n, err := h.Svc.SyncInstallmentPayments(c.UserContext(), c.Params("id"), actor)
	if err != nil {
		return writeError(c, err)
	}
	return helper.JsonOK(c, "payments synced", fiber.Map{"synced": n})
}

// GET /api/a/reports/installments/summary
func (h *InstallmentController) Summary(c *fiber.Ctx) error {
	actor, err := actorContext(c)
	if err != nil {
		return err
	}
	tenantID, err := tenantQuery(c)
	if err != nil {
		return err
	}
	sum, err := h.Svc.Summary(c.UserContext(), tenantID, actor)
	if err != nil {
		return writeError(c, err)
	}
	return helper.JsonOK(c, "ok", sum)
}

// GET /api/a/gateway/health
func (h *InstallmentController) GatewayHealth(c *fiber.Ctx) error {
	health := h.Svc.CheckGatewayHealth(c.UserContext())
	status := fiber.StatusOK
	if !health.OK {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(health)
}
