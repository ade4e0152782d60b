package catalog

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/medrec/medrec/internal/platform/apperr"
)

type mockICDRepo struct {
	nextID int64
	codes  map[int64]*ICDCode
}

func (m *mockICDRepo) Create(_ context.Context, c *ICDCode) error {
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = time.Now()
	cp := *c
	m.codes[c.ID] = &cp
	return nil
}

func (m *mockICDRepo) GetByID(_ context.Context, id int64) (*ICDCode, error) {
	c, ok := m.codes[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *mockICDRepo) GetByCode(_ context.Context, code string) (*ICDCode, error) {
	for _, c := range m.codes {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockICDRepo) List(_ context.Context, limit, offset int) ([]*ICDCode, int, error) {
	var out []*ICDCode
	for _, c := range m.codes {
		cp := *c
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *mockICDRepo) Search(_ context.Context, query string) ([]*ICDCode, error) {
	var out []*ICDCode
	for _, c := range m.codes {
		if strings.Contains(strings.ToLower(c.Description), strings.ToLower(query)) ||
			strings.Contains(strings.ToLower(c.Code), strings.ToLower(query)) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockICDRepo) Update(_ context.Context, id int64, upd ICDCodeUpdate) (bool, error) {
	c, ok := m.codes[id]
	if !ok {
		return false, nil
	}
	if upd.Code != nil {
		c.Code = *upd.Code
	}
	if upd.Description != nil {
		c.Description = *upd.Description
	}
	return true, nil
}

func (m *mockICDRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := m.codes[id]; !ok {
		return false, nil
	}
	delete(m.codes, id)
	return true, nil
}

func (m *mockICDRepo) Count(_ context.Context) (int, error) {
	return len(m.codes), nil
}

type mockCPTRepo struct {
	nextID int64
	codes  map[int64]*CPTCode
}

func (m *mockCPTRepo) Create(_ context.Context, c *CPTCode) error {
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = time.Now()
	cp := *c
	m.codes[c.ID] = &cp
	return nil
}

func (m *mockCPTRepo) GetByID(_ context.Context, id int64) (*CPTCode, error) {
	c, ok := m.codes[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *mockCPTRepo) GetByCode(_ context.Context, code string) (*CPTCode, error) {
	for _, c := range m.codes {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockCPTRepo) List(_ context.Context, limit, offset int) ([]*CPTCode, int, error) {
	var out []*CPTCode
	for _, c := range m.codes {
		cp := *c
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *mockCPTRepo) Search(_ context.Context, query string) ([]*CPTCode, error) {
	var out []*CPTCode
	for _, c := range m.codes {
		if strings.Contains(strings.ToLower(c.Description), strings.ToLower(query)) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockCPTRepo) Update(_ context.Context, id int64, upd CPTCodeUpdate) (bool, error) {
	c, ok := m.codes[id]
	if !ok {
		return false, nil
	}
	if upd.Code != nil {
		c.Code = *upd.Code
	}
	if upd.RelativeValueUnit != nil {
		c.RelativeValueUnit = *upd.RelativeValueUnit
	}
	return true, nil
}

func (m *mockCPTRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := m.codes[id]; !ok {
		return false, nil
	}
	delete(m.codes, id)
	return true, nil
}

func (m *mockCPTRepo) Count(_ context.Context) (int, error) {
	return len(m.codes), nil
}

func newTestService() (*Service, *mockICDRepo, *mockCPTRepo) {
	icd := &mockICDRepo{codes: map[int64]*ICDCode{}}
	cpt := &mockCPTRepo{codes: map[int64]*CPTCode{}}
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return NewService(icd, cpt, logger), icd, cpt
}

func TestCreateICD_NormalizesAndGuardsDuplicates(t *testing.T) {
	svc, _, _ := newTestService()

	code := &ICDCode{Code: " e11.9 ", Description: "Type 2 diabetes", Category: "Endocrine"}
	if err := svc.CreateICD(context.Background(), code); err != nil {
		t.Fatalf("create: %v", err)
	}
	if code.Code != "E11.9" {
		t.Errorf("expected normalized code E11.9, got %s", code.Code)
	}

	dup := &ICDCode{Code: "E11.9", Description: "Duplicate"}
	err := svc.CreateICD(context.Background(), dup)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateICD_Validation(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.CreateICD(context.Background(), &ICDCode{Code: "", Description: "x"})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error for empty code, got %v", err)
	}
	err = svc.CreateICD(context.Background(), &ICDCode{Code: "A00", Description: " "})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error for empty description, got %v", err)
	}
}

func TestUpdateICD_CodeCollision(t *testing.T) {
	svc, _, _ := newTestService()

	first := &ICDCode{Code: "A00", Description: "Cholera"}
	second := &ICDCode{Code: "B01", Description: "Varicella"}
	for _, c := range []*ICDCode{first, second} {
		if err := svc.CreateICD(context.Background(), c); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	taken := "A00"
	_, err := svc.UpdateICD(context.Background(), second.ID, ICDCodeUpdate{Code: &taken})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// A no-op code update against the same row passes.
	own := "B01"
	if _, err := svc.UpdateICD(context.Background(), second.ID, ICDCodeUpdate{Code: &own}); err != nil {
		t.Fatalf("self update: %v", err)
	}
}

func TestCreateCPT_RejectsNegativeRVU(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.CreateCPT(context.Background(), &CPTCode{Code: "99213", Description: "Office visit", RelativeValueUnit: -1})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSearch_RequiresQuery(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.SearchICD(context.Background(), " "); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := svc.SearchCPT(context.Background(), ""); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestDeleteCPT_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.DeleteCPT(context.Background(), 404)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
