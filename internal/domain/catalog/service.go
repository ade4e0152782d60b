package catalog

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/medrec/medrec/internal/platform/apperr"
	"github.com/medrec/medrec/pkg/pagination"
)

// Service manages the ICD-10 and CPT code catalogs. Both sides share the
// same shape: CRUD, paged list, substring search and a pre-checked unique
// code, with the store constraint as the real guarantee.
type Service struct {
	icd    ICDRepository
	cpt    CPTRepository
	logger zerolog.Logger
}

func NewService(icd ICDRepository, cpt CPTRepository, logger zerolog.Logger) *Service {
	return &Service{
		icd:    icd,
		cpt:    cpt,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

// -- ICD --

func (s *Service) CreateICD(ctx context.Context, c *ICDCode) error {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	if c.Code == "" {
		return apperr.Validation("code is required")
	}
	if strings.TrimSpace(c.Description) == "" {
		return apperr.Validation("description is required")
	}

	existing, err := s.icd.GetByCode(ctx, c.Code)
	if err != nil {
		return apperr.Internal("checking ICD code", err)
	}
	if existing != nil {
		return apperr.Conflict("ICD code already exists")
	}
	if err := s.icd.Create(ctx, c); err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return err
		}
		return apperr.Internal("creating ICD code", err)
	}
	s.logger.Info().Str("code", c.Code).Msg("ICD code created")
	return nil
}

func (s *Service) GetICD(ctx context.Context, id int64) (*ICDCode, error) {
	c, err := s.icd.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("looking up ICD code", err)
	}
	if c == nil {
		return nil, apperr.NotFound("ICD code not found")
	}
	return c, nil
}

func (s *Service) ListICD(ctx context.Context, p pagination.Params) ([]*ICDCode, int, error) {
	codes, total, err := s.icd.List(ctx, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, apperr.Internal("listing ICD codes", err)
	}
	return codes, total, nil
}

func (s *Service) SearchICD(ctx context.Context, query string) ([]*ICDCode, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("search query is required")
	}
	codes, err := s.icd.Search(ctx, query)
	if err != nil {
		return nil, apperr.Internal("searching ICD codes", err)
	}
	return codes, nil
}

func (s *Service) UpdateICD(ctx context.Context, id int64, upd ICDCodeUpdate) (*ICDCode, error) {
	if upd.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*upd.Code))
		if code == "" {
			return nil, apperr.Validation("code cannot be empty")
		}
		upd.Code = &code
		existing, err := s.icd.GetByCode(ctx, code)
		if err != nil {
			return nil, apperr.Internal("checking ICD code", err)
		}
		if existing != nil && existing.ID != id {
			return nil, apperr.Conflict("ICD code already exists")
		}
	}
	ok, err := s.icd.Update(ctx, id, upd)
	if err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return nil, err
		}
		return nil, apperr.Internal("updating ICD code", err)
	}
	if !ok {
		return nil, apperr.NotFound("ICD code not found")
	}
	return s.GetICD(ctx, id)
}

func (s *Service) DeleteICD(ctx context.Context, id int64) error {
	ok, err := s.icd.Delete(ctx, id)
	if err != nil {
		return apperr.Internal("deleting ICD code", err)
	}
	if !ok {
		return apperr.NotFound("ICD code not found")
	}
	return nil
}

func (s *Service) CountICD(ctx context.Context) (int, error) {
	n, err := s.icd.Count(ctx)
	if err != nil {
		return 0, apperr.Internal("counting ICD codes", err)
	}
	return n, nil
}

// -- CPT --

func (s *Service) CreateCPT(ctx context.Context, c *CPTCode) error {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	if c.Code == "" {
		return apperr.Validation("code is required")
	}
	if strings.TrimSpace(c.Description) == "" {
		return apperr.Validation("description is required")
	}
	if c.RelativeValueUnit < 0 {
		return apperr.Validation("relative value unit cannot be negative")
	}

	existing, err := s.cpt.GetByCode(ctx, c.Code)
	if err != nil {
		return apperr.Internal("checking CPT code", err)
	}
	if existing != nil {
		return apperr.Conflict("CPT code already exists")
	}
	if err := s.cpt.Create(ctx, c); err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return err
		}
		return apperr.Internal("creating CPT code", err)
	}
	s.logger.Info().Str("code", c.Code).Msg("CPT code created")
	return nil
}

func (s *Service) GetCPT(ctx context.Context, id int64) (*CPTCode, error) {
	c, err := s.cpt.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("looking up CPT code", err)
	}
	if c == nil {
		return nil, apperr.NotFound("CPT code not found")
	}
	return c, nil
}

func (s *Service) ListCPT(ctx context.Context, p pagination.Params) ([]*CPTCode, int, error) {
	codes, total, err := s.cpt.List(ctx, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, apperr.Internal("listing CPT codes", err)
	}
	return codes, total, nil
}

func (s *Service) SearchCPT(ctx context.Context, query string) ([]*CPTCode, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("search query is required")
	}
	codes, err := s.cpt.Search(ctx, query)
	if err != nil {
		return nil, apperr.Internal("searching CPT codes", err)
	}
	return codes, nil
}

func (s *Service) UpdateCPT(ctx context.Context, id int64, upd CPTCodeUpdate) (*CPTCode, error) {
	if upd.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*upd.Code))
		if code == "" {
			return nil, apperr.Validation("code cannot be empty")
		}
		upd.Code = &code
		existing, err := s.cpt.GetByCode(ctx, code)
		if err != nil {
			return nil, apperr.Internal("checking CPT code", err)
		}
		if existing != nil && existing.ID != id {
			return nil, apperr.Conflict("CPT code already exists")
		}
	}
	if upd.RelativeValueUnit != nil && *upd.RelativeValueUnit < 0 {
		return nil, apperr.Validation("relative value unit cannot be negative")
	}
	ok, err := s.cpt.Update(ctx, id, upd)
	if err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return nil, err
		}
		return nil, apperr.Internal("updating CPT code", err)
	}
	if !ok {
		return nil, apperr.NotFound("CPT code not found")
	}
	return s.GetCPT(ctx, id)
}

func (s *Service) DeleteCPT(ctx context.Context, id int64) error {
	ok, err := s.cpt.Delete(ctx, id)
	if err != nil {
		return apperr.Internal("deleting CPT code", err)
	}
	if !ok {
		return apperr.NotFound("CPT code not found")
	}
	return nil
}

func (s *Service) CountCPT(ctx context.Context) (int, error) {
	n, err := s.cpt.Count(ctx)
	if err != nil {
		return 0, apperr.Internal("counting CPT codes", err)
	}
	return n, nil
}
