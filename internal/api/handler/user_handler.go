package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/asistenmu/workflow-api/internal/core/domain"
	"github.com/asistenmu/workflow-api/internal/core/ports"
)

// UserHandler exposes the approval workflow and role administration.
type UserHandler struct {
	registry ports.RegistryService
}

func NewUserHandler(registry ports.RegistryService) *UserHandler {
	return &UserHandler{registry: registry}
}

type rejectUserRequest struct {
	Reason string `json:"reason"`
}

type registerStaffRequest struct {
	Principal string `json:"principal" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Role      string `json:"role" validate:"required,oneof=admin finance concierge asistenmu strategicPartner"`
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type approvalRow struct {
	Principal string `json:"principal"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Status    string `json:"status"`
}

// RegisterStaff creates an internal staff account under an admin-chosen
// principal. The account still goes through the approval workflow.
//
// @Summary      Register internal staff as an admin
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerStaffRequest  true  "Staff details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/users/internal [post]
func (h *UserHandler) RegisterStaff(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req registerStaffRequest
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
		Principal:     req.Principal,
		Actor:         actor,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// Pending lists registrations awaiting a decision.
//
// @Summary      List pending registrations
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      403  {object}  errorResponse
// @Router       /v1/users/pending [get]
func (h *UserHandler) Pending(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	users, err := h.registry.PendingRequests(c.Request().Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Approvals lists every user with its registration outcome.
//
// @Summary      List approval states for all users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   approvalRow
// @Failure      403  {object}  errorResponse
// @Router       /v1/users/approvals [get]
func (h *UserHandler) Approvals(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	views, err := h.registry.ListApprovals(c.Request().Context(), principal)
	if err != nil {
		return err
	}

	rows := make([]approvalRow, 0, len(views))
	for _, v := range views {
		rows = append(rows, approvalRow{
			Principal: v.Principal,
			Name:      v.Name,
			Role:      string(v.Role),
			Status:    string(v.Status),
		})
	}
	return c.JSON(http.StatusOK, rows)
}

// Approve activates a pending registration.
//
// @Summary      Approve a pending user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        principal  path  string  true  "User principal"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/users/{principal}/approve [post]
func (h *UserHandler) Approve(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	target := c.Param("principal")

	if err := h.registry.ApproveUser(c.Request().Context(), principal, target); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "user approved"})
}

// Reject permanently rejects a pending registration.
//
// @Summary      Reject a pending user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        principal  path  string             true   "User principal"
// @Param        body       body  rejectUserRequest  false  "Rejection reason"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/users/{principal}/reject [post]
func (h *UserHandler) Reject(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	target := c.Param("principal")

	var req rejectUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.registry.RejectUser(c.Request().Context(), principal, target, req.Reason); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "user rejected"})
}

// UpdateRole replaces a user's role. Superadmin cannot be granted here.
//
// @Summary      Update a user's role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        principal  path  string             true  "User principal"
// @Param        body       body  updateRoleRequest  true  "New role"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{principal}/role [put]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	target := c.Param("principal")

	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.registry.UpdateUserRole(c.Request().Context(), principal, target, domain.Role(req.Role)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "role updated"})
}
