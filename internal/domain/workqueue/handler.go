package workqueue

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casework/casework/internal/apperr"
	"github.com/casework/casework/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/queues", h.ListQueues)
	api.GET("/queues/visible", h.VisibleQueues)
	api.GET("/queues/:name", h.GetQueue)
	api.GET("/queues/:name/subscribers", h.ListSubscribers)
	api.POST("/queues/:name/subscriptions", h.Subscribe)
	api.DELETE("/queues/:name/subscriptions/:username", h.Unsubscribe)
	api.GET("/subscriptions", h.MySubscriptions)
}

func viewerFromRequest(c echo.Context) Viewer {
	ctx := c.Request().Context()
	return Viewer{
		Username:   auth.UserFromContext(ctx),
		Roles:      auth.RolesFromContext(ctx),
		Supervisor: auth.IsSupervisor(ctx),
	}
}

func (h *Handler) ListQueues(c echo.Context) error {
	items, err := h.svc.ListQueues(c.Request().Context())
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) VisibleQueues(c echo.Context) error {
	items, err := h.svc.VisibleQueues(c.Request().Context(), viewerFromRequest(c))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetQueue(c echo.Context) error {
	wq, err := h.svc.GetQueue(c.Request().Context(), c.Param("name"))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, wq)
}

func (h *Handler) ListSubscribers(c echo.Context) error {
	items, err := h.svc.ListQueueSubscribers(c.Request().Context(), c.Param("name"))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

type subscribeRequest struct {
	Username string `json:"username"`
}

// Subscribe adds a subscription for the caller, or for another user when the
// caller is a supervisor.
func (h *Handler) Subscribe(c echo.Context) error {
	var req subscribeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	granter := viewerFromRequest(c)
	username := req.Username
	if username == "" {
		username = granter.Username
	}
	sub, err := h.svc.Subscribe(c.Request().Context(), username, c.Param("name"), granter)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, sub)
}

func (h *Handler) Unsubscribe(c echo.Context) error {
	err := h.svc.Unsubscribe(c.Request().Context(), c.Param("username"), c.Param("name"), viewerFromRequest(c))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) MySubscriptions(c echo.Context) error {
	items, err := h.svc.ListUserSubscriptions(c.Request().Context(), auth.UserFromContext(c.Request().Context()))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}
