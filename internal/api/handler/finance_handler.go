package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/asistenmu/workflow-api/internal/api/metrics"
	"github.com/asistenmu/workflow-api/internal/core/ports"
)

// FinanceHandler exposes partner balance and withdrawal endpoints.
type FinanceHandler struct {
	finance ports.FinanceService
}

func NewFinanceHandler(finance ports.FinanceService) *FinanceHandler {
	return &FinanceHandler{finance: finance}
}

type withdrawRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type adjustBalanceRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type balanceResponse struct {
	PartnerID string `json:"partner_id"`
	Balance   int64  `json:"balance"`
}

// RequestWithdraw handles POST /v1/withdrawals for the authenticated partner.
//
// @Summary      Request a withdrawal
// @Tags         finance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      withdrawRequest  true  "Amount to withdraw"
// @Success      201   {object}  domain.WithdrawRequest
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/withdrawals [post]
func (h *FinanceHandler) RequestWithdraw(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req withdrawRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	w, err := h.finance.RequestWithdraw(c.Request().Context(), principal, req.Amount)
	if err != nil {
		return err
	}

	metrics.WithdrawRequestsTotal.Inc()
	return c.JSON(http.StatusCreated, w)
}

// Approve handles POST /v1/withdrawals/:id/approve for the finance desk.
//
// @Summary      Approve a withdrawal
// @Tags         finance
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Withdraw request id"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/withdrawals/{id}/approve [post]
func (h *FinanceHandler) Approve(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.finance.ApproveWithdraw(c.Request().Context(), principal, c.Param("id")); err != nil {
		return err
	}

	metrics.WithdrawResolutionsTotal.WithLabelValues("approved").Inc()
	return c.JSON(http.StatusOK, map[string]string{"message": "withdrawal approved"})
}

// Reject handles POST /v1/withdrawals/:id/reject for the finance desk.
//
// @Summary      Reject a withdrawal
// @Tags         finance
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Withdraw request id"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/withdrawals/{id}/reject [post]
func (h *FinanceHandler) Reject(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.finance.RejectWithdraw(c.Request().Context(), principal, c.Param("id")); err != nil {
		return err
	}

	metrics.WithdrawResolutionsTotal.WithLabelValues("rejected").Inc()
	return c.JSON(http.StatusOK, map[string]string{"message": "withdrawal rejected"})
}

// Pending handles GET /v1/withdrawals/pending.
//
// @Summary      List pending withdrawals
// @Tags         finance
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.WithdrawRequest
// @Failure      403  {object}  errorResponse
// @Router       /v1/withdrawals/pending [get]
func (h *FinanceHandler) Pending(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	out, err := h.finance.PendingWithdrawals(c.Request().Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Balance handles GET /v1/partners/:id/balance.
//
// @Summary      Get a partner's accrued balance
// @Tags         finance
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Partner principal"
// @Success      200  {object}  balanceResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/partners/{id}/balance [get]
func (h *FinanceHandler) Balance(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	partnerID := c.Param("id")

	balance, err := h.finance.PartnerBalance(c.Request().Context(), principal, partnerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, balanceResponse{PartnerID: partnerID, Balance: balance})
}

// Adjust handles POST /v1/partners/:id/balance for manual corrections.
//
// @Summary      Credit a partner balance manually
// @Tags         finance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Partner principal"
// @Param        body  body      adjustBalanceRequest  true  "Amount to credit"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/partners/{id}/balance [post]
func (h *FinanceHandler) Adjust(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req adjustBalanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.finance.AddPartnerBalance(c.Request().Context(), principal, c.Param("id"), req.Amount); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "balance adjusted"})
}
