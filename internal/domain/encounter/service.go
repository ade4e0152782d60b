package encounter

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/medrec/medrec/internal/platform/apperr"
	"github.com/medrec/medrec/pkg/pagination"
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "encounter").Logger(),
	}
}

func (s *Service) Create(ctx context.Context, e *Encounter) error {
	if e.PatientID == 0 {
		return apperr.Validation("patient id is required")
	}
	if e.DateOfService.IsZero() {
		return apperr.Validation("date of service is required")
	}
	if strings.TrimSpace(e.ProviderName) == "" {
		return apperr.Validation("provider name is required")
	}
	if e.Status == "" {
		e.Status = StatusPending
	}
	if !ValidStatus(e.Status) {
		return apperr.Validation("status must be one of pending, coded, billed, completed")
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return apperr.Internal("creating encounter", err)
	}
	s.logger.Info().Int64("encounter_id", e.ID).Int64("patient_id", e.PatientID).Msg("encounter created")
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Encounter, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("looking up encounter", err)
	}
	if e == nil {
		return nil, apperr.NotFound("encounter not found")
	}
	return e, nil
}

// Details returns the encounter with its coded diagnoses and procedures.
func (s *Service) Details(ctx context.Context, id int64) (*Details, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, e)
}

func (s *Service) details(ctx context.Context, e *Encounter) (*Details, error) {
	diagnoses, err := s.repo.DiagnosesByEncounter(ctx, e.ID)
	if err != nil {
		return nil, apperr.Internal("loading diagnoses", err)
	}
	procedures, err := s.repo.ProceduresByEncounter(ctx, e.ID)
	if err != nil {
		return nil, apperr.Internal("loading procedures", err)
	}
	return &Details{Encounter: e, Diagnoses: diagnoses, Procedures: procedures}, nil
}

// DetailsByPatient returns every encounter for the patient, newest first,
// each enriched with its diagnoses and procedures.
func (s *Service) DetailsByPatient(ctx context.Context, patientID int64) ([]Details, error) {
	encounters, err := s.repo.ByPatient(ctx, patientID)
	if err != nil {
		return nil, apperr.Internal("loading patient encounters", err)
	}
	out := make([]Details, 0, len(encounters))
	for _, e := range encounters {
		d, err := s.details(ctx, e)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

func (s *Service) List(ctx context.Context, f Filters, p pagination.Params) ([]*Encounter, int, error) {
	if f.Status != "" && !ValidStatus(f.Status) {
		return nil, 0, apperr.Validation("status must be one of pending, coded, billed, completed")
	}
	encounters, total, err := s.repo.List(ctx, f, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, apperr.Internal("listing encounters", err)
	}
	return encounters, total, nil
}

func (s *Service) Search(ctx context.Context, query string, p pagination.Params) ([]*Encounter, int, error) {
	if strings.TrimSpace(query) == "" {
		return nil, 0, apperr.Validation("search query is required")
	}
	encounters, total, err := s.repo.Search(ctx, query, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, apperr.Internal("searching encounters", err)
	}
	return encounters, total, nil
}

func (s *Service) Update(ctx context.Context, id int64, upd Update) (*Encounter, error) {
	if upd.Status != nil && !ValidStatus(*upd.Status) {
		return nil, apperr.Validation("status must be one of pending, coded, billed, completed")
	}
	if upd.ProviderName != nil && strings.TrimSpace(*upd.ProviderName) == "" {
		return nil, apperr.Validation("provider name cannot be empty")
	}
	ok, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, apperr.Internal("updating encounter", err)
	}
	if !ok {
		return nil, apperr.NotFound("encounter not found")
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperr.Internal("deleting encounter", err)
	}
	if !ok {
		return apperr.NotFound("encounter not found")
	}
	return nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, apperr.Internal("counting encounters", err)
	}
	return n, nil
}

// -- diagnoses --

func (s *Service) AddDiagnosis(ctx context.Context, d *Diagnosis) error {
	if d.EncounterID == 0 {
		return apperr.Validation("encounter id is required")
	}
	if d.ICDCodeID == 0 {
		return apperr.Validation("icd code id is required")
	}
	if _, err := s.Get(ctx, d.EncounterID); err != nil {
		return err
	}
	if err := s.repo.AddDiagnosis(ctx, d); err != nil {
		return apperr.Internal("adding diagnosis", err)
	}
	return nil
}

func (s *Service) DiagnosesByEncounter(ctx context.Context, encounterID int64) ([]Diagnosis, error) {
	diagnoses, err := s.repo.DiagnosesByEncounter(ctx, encounterID)
	if err != nil {
		return nil, apperr.Internal("loading diagnoses", err)
	}
	return diagnoses, nil
}

func (s *Service) ListDiagnoses(ctx context.Context, p pagination.Params) ([]Diagnosis, int, error) {
	diagnoses, total, err := s.repo.ListDiagnoses(ctx, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, apperr.Internal("listing diagnoses", err)
	}
	return diagnoses, total, nil
}

func (s *Service) UpdateDiagnosis(ctx context.Context, id int64, upd DiagnosisUpdate) error {
	ok, err := s.repo.UpdateDiagnosis(ctx, id, upd)
	if err != nil {
		return apperr.Internal("updating diagnosis", err)
	}
	if !ok {
		return apperr.NotFound("diagnosis not found")
	}
	return nil
}

func (s *Service) DeleteDiagnosis(ctx context.Context, id int64) error {
	ok, err := s.repo.DeleteDiagnosis(ctx, id)
	if err != nil {
		return apperr.Internal("deleting diagnosis", err)
	}
	if !ok {
		return apperr.NotFound("diagnosis not found")
	}
	return nil
}

// -- procedures --

func (s *Service) AddProcedure(ctx context.Context, p *Procedure) error {
	if p.EncounterID == 0 {
		return apperr.Validation("encounter id is required")
	}
	if p.CPTCodeID == 0 {
		return apperr.Validation("cpt code id is required")
	}
	if p.Quantity < 1 {
		p.Quantity = 1
	}
	if _, err := s.Get(ctx, p.EncounterID); err != nil {
		return err
	}
	if err := s.repo.AddProcedure(ctx, p); err != nil {
		return apperr.Internal("adding procedure", err)
	}
	return nil
}

func (s *Service) ProceduresByEncounter(ctx context.Context, encounterID int64) ([]Procedure, error) {
	procedures, err := s.repo.ProceduresByEncounter(ctx, encounterID)
	if err != nil {
		return nil, apperr.Internal("loading procedures", err)
	}
	return procedures, nil
}

func (s *Service) ListProcedures(ctx context.Context, p pagination.Params) ([]Procedure, int, error) {
	procedures, total, err := s.repo.ListProcedures(ctx, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, apperr.Internal("listing procedures", err)
	}
	return procedures, total, nil
}

func (s *Service) UpdateProcedure(ctx context.Context, id int64, upd ProcedureUpdate) error {
	ok, err := s.repo.UpdateProcedure(ctx, id, upd)
	if err != nil {
		return apperr.Internal("updating procedure", err)
	}
	if !ok {
		return apperr.NotFound("procedure not found")
	}
	return nil
}

func (s *Service) DeleteProcedure(ctx context.Context, id int64) error {
	ok, err := s.repo.DeleteProcedure(ctx, id)
	if err != nil {
		return apperr.Internal("deleting procedure", err)
	}
	if !ok {
		return apperr.NotFound("procedure not found")
	}
	return nil
}
