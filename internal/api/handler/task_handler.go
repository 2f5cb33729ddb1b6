package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/asistenmu/workflow-api/internal/api/metrics"
	"github.com/asistenmu/workflow-api/internal/core/domain"
	"github.com/asistenmu/workflow-api/internal/core/ports"
)

// TaskHandler exposes the task lifecycle endpoints.
type TaskHandler struct {
	tasks ports.TaskService
}

func NewTaskHandler(tasks ports.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// Create handles POST /v1/tasks. The reservation of hours happens inside the
// service; an insufficient balance surfaces as 422.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task request"
// @Success      201   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.tasks.CreateTask(c.Request().Context(), principal, ports.CreateTaskInput{
		LayananID:        req.LayananID,
		Judul:            req.Judul,
		DetailPermintaan: req.DetailPermintaan,
	})
	if err != nil {
		return err
	}

	metrics.TasksCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, toTaskResponse(task))
}

// InputEstimasi handles POST /v1/tasks/:id/estimasi.
//
// @Summary      Set the estimated hours
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Task id"
// @Param        body  body      inputEstimasiRequest  true  "Estimated hours"
// @Success      200   {object}  map[string]string
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/tasks/{id}/estimasi [post]
func (h *TaskHandler) InputEstimasi(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req inputEstimasiRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.tasks.InputEstimasiAM(c.Request().Context(), principal, c.Param("id"), req.EstimasiJam); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "estimasi recorded"})
}

// ApproveEstimasi handles POST /v1/tasks/:id/estimasi/approve.
//
// @Summary      Approve the estimate as the owning client
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Task id"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/tasks/{id}/estimasi/approve [post]
func (h *TaskHandler) ApproveEstimasi(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.tasks.ApproveEstimasiClient(c.Request().Context(), principal, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "estimasi approved"})
}

// AssignPartner handles POST /v1/tasks/:id/assign.
//
// @Summary      Delegate the task to a partner
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Task id"
// @Param        body  body      assignPartnerRequest  true  "Delegation details"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/tasks/{id}/assign [post]
func (h *TaskHandler) AssignPartner(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req assignPartnerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err = h.tasks.AssignPartner(c.Request().Context(), principal, ports.AssignPartnerInput{
		TaskID:            c.Param("id"),
		PartnerID:         req.PartnerID,
		ScopeKerja:        req.ScopeKerja,
		Deadline:          req.Deadline,
		LinkDriveInternal: req.LinkDriveInternal,
		JamEfektif:        req.JamEfektif,
		LevelPartner:      req.LevelPartner,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "partner assigned"})
}

// Respond handles POST /v1/tasks/:id/respond for the assigned partner.
//
// @Summary      Accept or reject the delegation
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Task id"
// @Param        body  body      responPartnerRequest  true  "Decision"
// @Success      200   {object}  map[string]string
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/tasks/{id}/respond [post]
func (h *TaskHandler) Respond(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req responPartnerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.tasks.ResponPartner(c.Request().Context(), principal, c.Param("id"), req.Accept); err != nil {
		return err
	}
	if !req.Accept {
		metrics.PartnerRejectionsTotal.Inc()
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "response recorded"})
}

// UpdateStatus handles PUT /v1/tasks/:id/status for the working cycle.
//
// @Summary      Apply a status transition
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Task id"
// @Param        body  body      updateStatusRequest  true  "Target status"
// @Success      200   {object}  map[string]string
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/tasks/{id}/status [put]
func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	next := domain.TaskStatus(req.Status)
	if err := h.tasks.UpdateStatus(c.Request().Context(), principal, c.Param("id"), next); err != nil {
		return err
	}

	metrics.TaskTransitionsTotal.WithLabelValues(string(next)).Inc()
	return c.JSON(http.StatusOK, map[string]string{"message": "status updated"})
}

// Complete handles POST /v1/tasks/:id/complete. Settlement runs exactly once;
// repeats surface as 409.
//
// @Summary      Complete the task and settle fees
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Task id"
// @Success      200  {object}  settlementResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/tasks/{id}/complete [post]
func (h *TaskHandler) Complete(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	result, err := h.tasks.CompleteTask(c.Request().Context(), principal, c.Param("id"))
	if err != nil {
		return err
	}

	metrics.TasksCompletedTotal.Inc()
	metrics.HoursBurnedTotal.Add(float64(result.JamDibakar))
	return c.JSON(http.StatusOK, toSettlementResponse(result))
}

// Settlement handles GET /v1/tasks/:id/settlement.
//
// @Summary      Get the settlement of a completed task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Task id"
// @Success      200  {object}  settlementResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/tasks/{id}/settlement [get]
func (h *TaskHandler) Settlement(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	result, err := h.tasks.Settlement(c.Request().Context(), principal, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSettlementResponse(result))
}

// ListByClient handles GET /v1/clients/:id/tasks. Clients see masked
// statuses and no internal data; internal staff see everything.
//
// @Summary      List a client's tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Client principal"
// @Success      200  {array}   taskClientViewResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/clients/{id}/tasks [get]
func (h *TaskHandler) ListByClient(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	clientID := c.Param("id")

	views, err := h.tasks.ClientTasks(c.Request().Context(), principal, clientID)
	if err != nil {
		return err
	}

	includeInternal := principal != clientID
	out := make([]taskClientViewResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toClientViewResponse(v, includeInternal))
	}
	return c.JSON(http.StatusOK, out)
}
