package cases

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
	api.POST("/cases", h.CreateCase)
	api.GET("/cases", h.ListCases)
	api.GET("/cases/:id", h.GetCase)
	api.GET("/cases/:id/history", h.GetHistory)
	api.GET("/cases/:id/rescinds", h.GetRescinds)
	api.GET("/cases/:id/leaves", h.GetLeaves)

	api.POST("/cases/:id/approve", h.Approve)
	api.POST("/cases/:id/deny", h.Deny)
	api.POST("/cases/:id/terminate", h.Terminate)
	api.POST("/cases/:id/leave", h.PlaceOnLeave)
	api.POST("/cases/:id/withdraw", h.Withdraw)
	api.POST("/cases/:id/rescind", h.Rescind)
	api.POST("/cases/:id/reactivate", h.Reactivate)
	api.POST("/cases/:id/transfer", h.InitiateTransfer)
	api.POST("/cases/:id/transfer/complete", h.CompleteTransfer)
}

func (h *Handler) CreateCase(c echo.Context) error {
	var in CreateCaseInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.CreateCase(c.Request().Context(), in, auth.UserFromContext(c.Request().Context()))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetCase(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cs, err := h.svc.GetCase(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, cs)
}

func (h *Handler) ListCases(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListCases(c.Request().Context(),
		c.QueryParam("county"), c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetHistory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.GetStatusHistory(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetRescinds(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.GetRescinds(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetLeaves(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.GetLeaves(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Approve(c echo.Context) error {
	return h.simpleTransition(c, func(ctx echo.Context, id uuid.UUID, actor string) (*Case, error) {
		return h.svc.Approve(ctx.Request().Context(), id, actor)
	})
}

type denyRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) Deny(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req denyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cs, err := h.svc.Deny(c.Request().Context(), id, req.Reason, auth.UserFromContext(c.Request().Context()))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, cs)
}

type terminateRequest struct {
	Reason      string     `json:"reason"`
	AuthEndDate *time.Time `json:"auth_end_date,omitempty"`
}

func (h *Handler) Terminate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req terminateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cs, err := h.svc.Terminate(c.Request().Context(), id, req.Reason, req.AuthEndDate, auth.UserFromContext(c.Request().Context()))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, cs)
}

type leaveRequest struct {
	Reason                string     `json:"reason"`
	AuthEndDate           time.Time  `json:"auth_end_date"`
	ResourceSuspensionEnd *time.Time `json:"resource_suspension_end,omitempty"`
}

func (h *Handler) PlaceOnLeave(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req leaveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cs, err := h.svc.PlaceOnLeave(c.Request().Context(), id, req.Reason, req.AuthEndDate,
		req.ResourceSuspensionEnd, auth.UserFromContext(c.Request().Context()))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, cs)
}

type withdrawRequest struct {
	Reason         string     `json:"reason"`
	WithdrawalDate *time.Time `json:"withdrawal_date,omitempty"`
}

func (h *Handler) Withdraw(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req withdrawRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cs, err := h.svc.Withdraw(c.Request().Context(), id, req.Reason, req.WithdrawalDate, auth.UserFromContext(c.Request().Context()))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, cs)
}

type rescindRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) Rescind(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req rescindRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cs, err := h.svc.Rescind(c.Request().Context(), id, req.Reason, auth.UserFromContext(c.Request().Context()))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, cs)
}

type reactivateRequest struct {
	AssignedWorker string `json:"assigned_worker"`
}

func (h *Handler) Reactivate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req reactivateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cs, err := h.svc.Reactivate(c.Request().Context(), id, req.AssignedWorker, auth.UserFromContext(c.Request().Context()))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, cs)
}

type transferRequest struct {
	ReceivingCounty string `json:"receiving_county"`
}

func (h *Handler) InitiateTransfer(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req transferRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cs, err := h.svc.InitiateTransfer(c.Request().Context(), id, req.ReceivingCounty, auth.UserFromContext(c.Request().Context()))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, cs)
}

type transferCompleteRequest struct {
	NewOwner string `json:"new_owner"`
}

func (h *Handler) CompleteTransfer(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req transferCompleteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cs, err := h.svc.CompleteTransfer(c.Request().Context(), id, req.NewOwner, auth.UserFromContext(c.Request().Context()))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, cs)
}

func (h *Handler) simpleTransition(c echo.Context, fn func(echo.Context, uuid.UUID, string) (*Case, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cs, err := fn(c, id, auth.UserFromContext(c.Request().Context()))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, cs)
}
