package catalog

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/medrec/medrec/internal/platform/apperr"
	"github.com/medrec/medrec/internal/platform/auth"
	"github.com/medrec/medrec/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the catalog endpoints (mounted at /icd-codes and
// /cpt-codes). Reads need any authenticated user; catalog edits are
// admin-only.
func (h *Handler) RegisterRoutes(icd, cpt *echo.Group, authn echo.MiddlewareFunc) {
	icdRead := icd.Group("", authn)
	icdRead.GET("/counts", h.CountICD)
	icdRead.GET("", h.ListICD)
	icdRead.GET("/search", h.SearchICD)
	icdRead.GET("/:id", h.GetICD)

	icdWrite := icd.Group("", authn, auth.RequireRole(auth.RoleAdmin))
	icdWrite.POST("", h.CreateICD)
	icdWrite.PUT("/:id", h.UpdateICD)
	icdWrite.DELETE("/:id", h.DeleteICD)

	cptRead := cpt.Group("", authn)
	cptRead.GET("/counts", h.CountCPT)
	cptRead.GET("", h.ListCPT)
	cptRead.GET("/search", h.SearchCPT)
	cptRead.GET("/:id", h.GetCPT)

	cptWrite := cpt.Group("", authn, auth.RequireRole(auth.RoleAdmin))
	cptWrite.POST("", h.CreateCPT)
	cptWrite.PUT("/:id", h.UpdateCPT)
	cptWrite.DELETE("/:id", h.DeleteCPT)
}

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.Validation("invalid id")
	}
	return id, nil
}

// -- ICD --

func (h *Handler) CreateICD(c echo.Context) error {
	var code ICDCode
	if err := c.Bind(&code); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := h.svc.CreateICD(c.Request().Context(), &code); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, code)
}

func (h *Handler) GetICD(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	code, err := h.svc.GetICD(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, code)
}

func (h *Handler) ListICD(c echo.Context) error {
	p := pagination.FromContext(c)
	codes, total, err := h.svc.ListICD(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"codes": codes, "total": total})
}

func (h *Handler) SearchICD(c echo.Context) error {
	codes, err := h.svc.SearchICD(c.Request().Context(), c.QueryParam("query"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"codes": codes})
}

func (h *Handler) UpdateICD(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var upd ICDCodeUpdate
	if err := c.Bind(&upd); err != nil {
		return apperr.Validation("invalid request body")
	}
	code, err := h.svc.UpdateICD(c.Request().Context(), id, upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, code)
}

func (h *Handler) DeleteICD(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteICD(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ICD code deleted"})
}

func (h *Handler) CountICD(c echo.Context) error {
	n, err := h.svc.CountICD(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"total": n})
}

// -- CPT --

func (h *Handler) CreateCPT(c echo.Context) error {
	var code CPTCode
	if err := c.Bind(&code); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := h.svc.CreateCPT(c.Request().Context(), &code); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, code)
}

func (h *Handler) GetCPT(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	code, err := h.svc.GetCPT(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, code)
}

func (h *Handler) ListCPT(c echo.Context) error {
	p := pagination.FromContext(c)
	codes, total, err := h.svc.ListCPT(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"codes": codes, "total": total})
}

func (h *Handler) SearchCPT(c echo.Context) error {
	codes, err := h.svc.SearchCPT(c.Request().Context(), c.QueryParam("query"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"codes": codes})
}

func (h *Handler) UpdateCPT(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var upd CPTCodeUpdate
	if err := c.Bind(&upd); err != nil {
		return apperr.Validation("invalid request body")
	}
	code, err := h.svc.UpdateCPT(c.Request().Context(), id, upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, code)
}

func (h *Handler) DeleteCPT(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteCPT(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "CPT code deleted"})
}

func (h *Handler) CountCPT(c echo.Context) error {
	n, err := h.svc.CountCPT(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"total": n})
}
