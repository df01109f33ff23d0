package tasks

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/casework/casework/internal/apperr"
	"github.com/casework/casework/internal/platform/auth"
	"github.com/casework/casework/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/tasks", h.CreateTask)
	api.GET("/tasks", h.ListTasks)
	api.GET("/tasks/counts", h.OpenCounts)
	api.GET("/tasks/:id", h.GetTask)
	api.GET("/tasks/:id/history", h.GetHistory)
	api.GET("/task-types", h.ListTypes)

	api.POST("/tasks/:id/reserve", h.Reserve)
	api.POST("/tasks/:id/unreserve", h.Unreserve)
	api.POST("/tasks/:id/forward", h.Forward)
	api.POST("/tasks/:id/defer", h.Defer)
	api.POST("/tasks/:id/close", h.Close)
}

func (h *Handler) CreateTask(c echo.Context) error {
	var in CreateTaskInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, err := h.svc.Create(c.Request().Context(), in, auth.UserFromContext(c.Request().Context()))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) GetTask(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	t, err := h.svc.GetTask(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, t)
}

// ListTasks filters by queue, assignee, or case_id, whichever is present.
func (h *Handler) ListTasks(c echo.Context) error {
	ctx := c.Request().Context()
	if caseParam := c.QueryParam("case_id"); caseParam != "" {
		caseID, err := uuid.Parse(caseParam)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid case_id")
		}
		items, err := h.svc.ListByCase(ctx, caseID)
		if err != nil {
			return apperr.HTTPError(err)
		}
		return c.JSON(http.StatusOK, items)
	}

	pg := pagination.FromContext(c)
	if assignee := c.QueryParam("assignee"); assignee != "" {
		items, total, err := h.svc.ListByAssignee(ctx, assignee, pg.Limit, pg.Offset)
		if err != nil {
			return apperr.HTTPError(err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}

	queue := c.QueryParam("queue")
	if queue == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "queue, assignee, or case_id is required")
	}
	items, total, err := h.svc.ListByQueue(ctx, queue, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) OpenCounts(c echo.Context) error {
	counts, err := h.svc.OpenCountsByQueue(c.Request().Context())
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, counts)
}

func (h *Handler) GetHistory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.GetHistory(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListTypes(c echo.Context) error {
	items, err := h.svc.ListTypes(c.Request().Context())
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Reserve(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	t, err := h.svc.Reserve(c.Request().Context(), id, auth.UserFromContext(c.Request().Context()))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) Unreserve(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	t, err := h.svc.Unreserve(c.Request().Context(), id, auth.UserFromContext(c.Request().Context()))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, t)
}

type forwardRequest struct {
	Queue    string `json:"queue"`
	Assignee string `json:"assignee"`
}

func (h *Handler) Forward(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req forwardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, err := h.svc.Forward(c.Request().Context(), id, req.Queue, req.Assignee,
		auth.UserFromContext(c.Request().Context()))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, t)
}

type deferRequest struct {
	DueDate time.Time `json:"due_date"`
}

func (h *Handler) Defer(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req deferRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.DueDate.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "due_date is required")
	}
	t, err := h.svc.Defer(c.Request().Context(), id, req.DueDate,
		auth.UserFromContext(c.Request().Context()))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, t)
}

type closeRequest struct {
	Outcome string `json:"outcome"`
}

func (h *Handler) Close(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req closeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, err := h.svc.Close(c.Request().Context(), id, req.Outcome,
		auth.UserFromContext(c.Request().Context()))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, t)
}
