package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/asistenmu/workflow-api/internal/core/domain"
	"github.com/asistenmu/workflow-api/internal/core/ports"
)

// LayananHandler exposes the service-package ledger endpoints.
type LayananHandler struct {
	layanan ports.LayananService
}

func NewLayananHandler(layanan ports.LayananService) *LayananHandler {
	return &LayananHandler{layanan: layanan}
}

type activateLayananRequest struct {
	ClientID     string    `json:"client_id" validate:"required"`
	AsistenmuID  string    `json:"asistenmu_id"`
	Type         string    `json:"type" validate:"required,oneof=reportWriting assistance dataEntry"`
	ResourceType string    `json:"resource_type" validate:"required,oneof=standard dedicated"`
	Units        int64     `json:"units" validate:"required,gt=0"`
	PricePerUnit int64     `json:"price_per_unit" validate:"required,gt=0"`
	Deadline     time.Time `json:"deadline"`
	Scope        string    `json:"scope"`
}

// Activate handles POST /v1/layanan. Each unit grants two effective hours.
//
// @Summary      Activate a service package for a client
// @Tags         layanan
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      activateLayananRequest  true  "Activation details"
// @Success      201   {object}  domain.Layanan
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/layanan [post]
func (h *LayananHandler) Activate(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req activateLayananRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	l, err := h.layanan.Activate(c.Request().Context(), principal, ports.ActivateLayananInput{
		ClientID:     req.ClientID,
		AsistenmuID:  req.AsistenmuID,
		Type:         domain.LayananType(req.Type),
		ResourceType: domain.ResourceType(req.ResourceType),
		Units:        req.Units,
		PricePerUnit: req.PricePerUnit,
		Deadline:     req.Deadline,
		Scope:        req.Scope,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, l)
}

// Mine handles GET /v1/layanan/mine for the authenticated client.
//
// @Summary      List the caller's active service packages
// @Tags         layanan
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Layanan
// @Failure      401  {object}  errorResponse
// @Router       /v1/layanan/mine [get]
func (h *LayananHandler) Mine(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	out, err := h.layanan.MyLayananAktif(c.Request().Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Main handles GET /v1/layanan/main for the authenticated client.
//
// @Summary      Get the caller's primary service package
// @Tags         layanan
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Layanan
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/layanan/main [get]
func (h *LayananHandler) Main(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	l, err := h.layanan.ClientMainService(c.Request().Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, l)
}
