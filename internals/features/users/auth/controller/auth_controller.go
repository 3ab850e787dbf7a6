package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"polopay_backend/internals/configs"
	"polopay_backend/internals/features/users/auth/service"
	helper "polopay_backend/internals/helpers"
	authMw "polopay_backend/internals/middlewares/auth"
)

type AuthController struct {
	Svc       *service.AuthService
	Validator *validator.Validate
}

func NewAuthController(svc *service.AuthService) *AuthController {
	return &AuthController{Svc: svc, Validator: validator.New()}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ac.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, fieldErrors(err))
	}

	res, err := ac.Svc.Login(c.UserContext(), req.Email, req.Password, c.Get(fiber.HeaderUserAgent), c.IP())
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrUserInactive):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case err != nil:
		log.Error().Err(err).Msg("login failed")
		return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
	}

	c.Cookie(&fiber.Cookie{
		Name:     authMw.SessionCookieName,
		Value:    res.Token,
		Path:     "/",
		Expires:  res.ExpiresAt,
		HTTPOnly: true,
		Secure:   configs.AppEnv != "development",
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return helper.JsonOK(c, "login success", res)
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	actor, ok := authMw.GetActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized: missing session")
	}
	if err := ac.Svc.Logout(c.UserContext(), actor.SessionID); err != nil {
		log.Error().Err(err).Str("sid", actor.SessionID.String()).Msg("logout failed")
		return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
	}
	c.Cookie(&fiber.Cookie{
		Name:     authMw.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
	})
	return helper.JsonOK(c, "logout success", nil)
}

// GET /api/auth/me
func (ac *AuthController) Me(c *fiber.Ctx) error {
	actor, ok := authMw.GetActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized: missing session")
	}
	return helper.JsonOK(c, "ok", actor)
}

func fieldErrors(err error) map[string][]string {
	out := map[string][]string{}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		out["_"] = []string{err.Error()}
		return out
	}
	for _, fe := range ve {
		key := strings.ToLower(fe.Field())
		out[key] = append(out[key], "failed "+fe.Tag())
	}
	return out
}
