package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/asistenmu/workflow-api/internal/core/domain"
	"github.com/asistenmu/workflow-api/internal/core/ports"
)

// AuthHandler exposes registration, login, and the one-time superadmin claim.
type AuthHandler struct {
	registry ports.RegistryService
}

func NewAuthHandler(registry ports.RegistryService) *AuthHandler {
	return &AuthHandler{registry: registry}
}

// RegisterClient creates a pending client account.
//
// @Summary      Register a client
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerClientRequest  true  "Client registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register/client [post]
func (h *AuthHandler) RegisterClient(c echo.Context) error {
	var req registerClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.registry.RegisterClient(c.Request().Context(), ports.RegisterClientInput{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		Phone:         req.Phone,
		CompanyBisnis: req.CompanyBisnis,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// RegisterPartner creates a pending partner account.
//
// @Summary      Register a partner
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerPartnerRequest  true  "Partner registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register/partner [post]
func (h *AuthHandler) RegisterPartner(c echo.Context) error {
	var req registerPartnerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.registry.RegisterPartner(c.Request().Context(), ports.RegisterPartnerInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Phone:        req.Phone,
		KotaDomisili: req.KotaDomisili,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// RegisterInternal creates a pending internal staff account.
//
// @Summary      Register internal staff
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerInternalRequest  true  "Staff registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register/internal [post]
func (h *AuthHandler) RegisterInternal(c echo.Context) error {
	var req registerInternalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.registry.RegisterInternal(c.Request().Context(), ports.RegisterInternalInput{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		RequestedRole: domain.Role(req.Role),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// Login authenticates a user and returns a JWT.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.registry.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

// ClaimSuperadmin performs the one-time superadmin claim for the caller.
//
// @Summary      Claim the superadmin role (first caller wins)
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /auth/claim-superadmin [post]
func (h *AuthHandler) ClaimSuperadmin(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.registry.ClaimSuperadmin(c.Request().Context(), principal); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "superadmin claimed"})
}

// Me returns the caller's registry record.
//
// @Summary      Get the authenticated user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  authResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	user, err := h.registry.GetUser(c.Request().Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{User: user})
}
