package encounter

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medrec/medrec/internal/platform/apperr"
	"github.com/medrec/medrec/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the encounter endpoints plus the flat diagnosis and
// procedure groups (mounted at /encounters, /diagnoses and /procedures). All
// of them require an authenticated caller.
func (h *Handler) RegisterRoutes(enc, diag, proc *echo.Group, authn echo.MiddlewareFunc) {
	g := enc.Group("", authn)
	g.GET("/search", h.Search)
	g.GET("/count", h.Count)
	g.GET("", h.List)
	g.GET("/:id", h.GetDetails)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/diagnoses", h.DiagnosesByEncounter)
	g.POST("/:id/diagnoses", h.AddDiagnosisNested)
	g.GET("/:id/procedures", h.ProceduresByEncounter)
	g.POST("/:id/procedures", h.AddProcedureNested)

	d := diag.Group("", authn)
	d.POST("", h.AddDiagnosis)
	d.GET("", h.ListDiagnoses)
	d.GET("/:id", h.DiagnosesByEncounterParam)
	d.PUT("/:id", h.UpdateDiagnosis)
	d.DELETE("/:id", h.DeleteDiagnosis)

	p := proc.Group("", authn)
	p.POST("", h.AddProcedure)
	p.GET("", h.ListProcedures)
	p.GET("/:id", h.ProceduresByEncounterParam)
	p.PUT("/:id", h.UpdateProcedure)
	p.DELETE("/:id", h.DeleteProcedure)
}

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.Validation("invalid id")
	}
	return id, nil
}

func (h *Handler) Create(c echo.Context) error {
	var e Encounter
	if err := c.Bind(&e); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := h.svc.Create(c.Request().Context(), &e); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) GetDetails(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	details, err := h.svc.Details(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, details)
}

func (h *Handler) List(c echo.Context) error {
	f, err := filtersFromQuery(c)
	if err != nil {
		return err
	}
	p := pagination.FromContext(c)
	encounters, total, err := h.svc.List(c.Request().Context(), f, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"encounters": encounters, "total": total})
}

func filtersFromQuery(c echo.Context) (Filters, error) {
	var f Filters
	f.Status = c.QueryParam("status")
	if v := c.QueryParam("patient_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, apperr.Validation("invalid patient_id filter")
		}
		f.PatientID = id
	}
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, apperr.Validation("from must be YYYY-MM-DD")
		}
		f.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, apperr.Validation("to must be YYYY-MM-DD")
		}
		f.To = &t
	}
	return f, nil
}

func (h *Handler) Search(c echo.Context) error {
	p := pagination.FromContext(c)
	encounters, total, err := h.svc.Search(c.Request().Context(), c.QueryParam("query"), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"encounters": encounters, "total": total})
}

func (h *Handler) Update(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var upd Update
	if err := c.Bind(&upd); err != nil {
		return apperr.Validation("invalid request body")
	}
	e, err := h.svc.Update(c.Request().Context(), id, upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "encounter deleted"})
}

func (h *Handler) Count(c echo.Context) error {
	n, err := h.svc.Count(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"total": n})
}

// -- diagnoses --

func (h *Handler) AddDiagnosis(c echo.Context) error {
	var d Diagnosis
	if err := c.Bind(&d); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := h.svc.AddDiagnosis(c.Request().Context(), &d); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

// AddDiagnosisNested takes the encounter id from the path instead of the
// body.
func (h *Handler) AddDiagnosisNested(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var d Diagnosis
	if err := c.Bind(&d); err != nil {
		return apperr.Validation("invalid request body")
	}
	d.EncounterID = id
	if err := h.svc.AddDiagnosis(c.Request().Context(), &d); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) ListDiagnoses(c echo.Context) error {
	p := pagination.FromContext(c)
	diagnoses, total, err := h.svc.ListDiagnoses(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"diagnoses": diagnoses, "total": total})
}

func (h *Handler) DiagnosesByEncounter(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	diagnoses, err := h.svc.DiagnosesByEncounter(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"diagnoses": diagnoses})
}

// DiagnosesByEncounterParam serves the flat route, where :id is an encounter
// id as in the nested route.
func (h *Handler) DiagnosesByEncounterParam(c echo.Context) error {
	return h.DiagnosesByEncounter(c)
}

func (h *Handler) UpdateDiagnosis(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var upd DiagnosisUpdate
	if err := c.Bind(&upd); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := h.svc.UpdateDiagnosis(c.Request().Context(), id, upd); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "diagnosis updated"})
}

func (h *Handler) DeleteDiagnosis(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteDiagnosis(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "diagnosis deleted"})
}

// -- procedures --

func (h *Handler) AddProcedure(c echo.Context) error {
	var p Procedure
	if err := c.Bind(&p); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := h.svc.AddProcedure(c.Request().Context(), &p); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) AddProcedureNested(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var p Procedure
	if err := c.Bind(&p); err != nil {
		return apperr.Validation("invalid request body")
	}
	p.EncounterID = id
	if err := h.svc.AddProcedure(c.Request().Context(), &p); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) ListProcedures(c echo.Context) error {
	p := pagination.FromContext(c)
	procedures, total, err := h.svc.ListProcedures(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"procedures": procedures, "total": total})
}

func (h *Handler) ProceduresByEncounter(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	procedures, err := h.svc.ProceduresByEncounter(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"procedures": procedures})
}

func (h *Handler) ProceduresByEncounterParam(c echo.Context) error {
	return h.ProceduresByEncounter(c)
}

func (h *Handler) UpdateProcedure(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var upd ProcedureUpdate
	if err := c.Bind(&upd); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := h.svc.UpdateProcedure(c.Request().Context(), id, upd); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "procedure updated"})
}

func (h *Handler) DeleteProcedure(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteProcedure(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "procedure deleted"})
}
