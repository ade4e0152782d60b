// Package dashboard aggregates counts across the clinical domains into a
// single overview payload.
package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/medrec/medrec/internal/platform/apperr"
)

// Summary holds the headline counts.
type Summary struct {
	TotalPatients    int `json:"total_patients"`
	ActiveEncounters int `json:"active_encounters"`
	ICDCodes         int `json:"icd_codes"`
	CPTCodes         int `json:"cpt_codes"`
}

// ChartRow is one day of activity.
type ChartRow struct {
	Date       string `json:"date"`
	Encounters int    `json:"encounters"`
	Patients   int    `json:"patients"`
}

// Overview is the full dashboard payload.
type Overview struct {
	Summary Summary    `json:"summary"`
	Chart   []ChartRow `json:"chart"`
}

// DayCount is a raw per-day count from the store.
type DayCount struct {
	Date  time.Time
	Count int
}

// Repository provides the aggregate queries behind the overview.
type Repository interface {
	CountPatients(ctx context.Context) (int, error)
	// CountActiveEncounters counts encounters still in the billing
	// pipeline, i.e. not yet completed.
	CountActiveEncounters(ctx context.Context) (int, error)
	CountICDCodes(ctx context.Context) (int, error)
	CountCPTCodes(ctx context.Context) (int, error)
	// EncountersPerDay groups encounters by service date.
	EncountersPerDay(ctx context.Context) ([]DayCount, error)
	// PatientsPerDay groups patient registrations by creation date.
	PatientsPerDay(ctx context.Context) ([]DayCount, error)
}

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "dashboard").Logger(),
	}
}

const chartDate = "2006-01-02"

// Overview assembles the summary counts and merges the two per-day series
// into one chart, keyed by date.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	var sum Summary
	var err error
	if sum.TotalPatients, err = s.repo.CountPatients(ctx); err != nil {
		return nil, apperr.Internal("counting patients", err)
	}
	if sum.ActiveEncounters, err = s.repo.CountActiveEncounters(ctx); err != nil {
		return nil, apperr.Internal("counting active encounters", err)
	}
	if sum.ICDCodes, err = s.repo.CountICDCodes(ctx); err != nil {
		return nil, apperr.Internal("counting ICD codes", err)
	}
	if sum.CPTCodes, err = s.repo.CountCPTCodes(ctx); err != nil {
		return nil, apperr.Internal("counting CPT codes", err)
	}

	encounters, err := s.repo.EncountersPerDay(ctx)
	if err != nil {
		return nil, apperr.Internal("loading encounter chart", err)
	}
	patients, err := s.repo.PatientsPerDay(ctx)
	if err != nil {
		return nil, apperr.Internal("loading patient chart", err)
	}

	byDate := map[string]*ChartRow{}
	for _, d := range encounters {
		key := d.Date.Format(chartDate)
		byDate[key] = &ChartRow{Date: key, Encounters: d.Count}
	}
	for _, d := range patients {
		key := d.Date.Format(chartDate)
		row, ok := byDate[key]
		if !ok {
			row = &ChartRow{Date: key}
			byDate[key] = row
		}
		row.Patients = d.Count
	}

	chart := make([]ChartRow, 0, len(byDate))
	for _, row := range byDate {
		chart = append(chart, *row)
	}
	sort.Slice(chart, func(i, j int) bool { return chart[i].Date < chart[j].Date })

	return &Overview{Summary: sum, Chart: chart}, nil
}
