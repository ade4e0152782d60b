package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the overview endpoint (mounted at /dashboard).
func (h *Handler) RegisterRoutes(g *echo.Group, authn echo.MiddlewareFunc) {
	g.GET("", h.Overview, authn)
}

func (h *Handler) Overview(c echo.Context) error {
	overview, err := h.svc.Overview(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, overview)
}
