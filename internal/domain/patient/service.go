package patient

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/medrec/medrec/internal/domain/encounter"
	"github.com/medrec/medrec/internal/platform/apperr"
	"github.com/medrec/medrec/pkg/pagination"
)

// EncounterSource provides the encounter history used by the details view.
// Satisfied by encounter.Service.
type EncounterSource interface {
	DetailsByPatient(ctx context.Context, patientID int64) ([]encounter.Details, error)
}

type Service struct {
	repo       Repository
	encounters EncounterSource
	logger     zerolog.Logger
}

func NewService(repo Repository, encounters EncounterSource, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		encounters: encounters,
		logger:     logger.With().Str("component", "patient").Logger(),
	}
}

// Details is a patient together with their full encounter history.
type Details struct {
	Patient    *Patient            `json:"patient"`
	Encounters []encounter.Details `json:"encounters"`
}

func validatePatient(p *Patient) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.Name == "" {
		return apperr.Validation("name is required")
	}
	if p.DateOfBirth.IsZero() {
		return apperr.Validation("date of birth is required")
	}
	if p.Gender == "" {
		return apperr.Validation("gender is required")
	}
	if !strings.Contains(p.Email, "@") {
		return apperr.Validation("a valid email is required")
	}
	if p.EmergencyContactName == "" || p.EmergencyContactPhone == "" {
		return apperr.Validation("emergency contact name and phone are required")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if err := validatePatient(p); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return err
		}
		return apperr.Internal("creating patient", err)
	}
	s.logger.Info().Int64("patient_id", p.ID).Msg("patient created")
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("looking up patient", err)
	}
	if p == nil {
		return nil, apperr.NotFound("patient not found")
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, p pagination.Params) ([]*Patient, int, error) {
	patients, total, err := s.repo.List(ctx, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, apperr.Internal("listing patients", err)
	}
	return patients, total, nil
}

// Update applies a partial update. A name change is guarded against
// colliding with another patient's name, matching how chart lookups are done
// by name downstream.
func (s *Service) Update(ctx context.Context, id int64, upd Update) (*Patient, error) {
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		matches, err := s.repo.SearchByName(ctx, name)
		if err != nil {
			return nil, apperr.Internal("checking for duplicate name", err)
		}
		for _, m := range matches {
			if m.ID != id && strings.EqualFold(m.Name, name) {
				return nil, apperr.Conflict("patient with this name already exists")
			}
		}
	}
	if upd.Email != nil && !strings.Contains(*upd.Email, "@") {
		return nil, apperr.Validation("a valid email is required")
	}

	ok, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return nil, err
		}
		return nil, apperr.Internal("updating patient", err)
	}
	if !ok {
		return nil, apperr.NotFound("patient not found")
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperr.Internal("deleting patient", err)
	}
	if !ok {
		return apperr.NotFound("patient not found")
	}
	return nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, apperr.Internal("counting patients", err)
	}
	return n, nil
}

func (s *Service) Search(ctx context.Context, query string) ([]*Patient, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("search query is required")
	}
	patients, err := s.repo.SearchByName(ctx, query)
	if err != nil {
		return nil, apperr.Internal("searching patients", err)
	}
	return patients, nil
}

// Details returns the patient with every encounter enriched with its
// diagnoses and procedures.
func (s *Service) Details(ctx context.Context, id int64) (*Details, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	encounters, err := s.encounters.DetailsByPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Details{Patient: p, Encounters: encounters}, nil
}
