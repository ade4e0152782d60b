package encounter

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/medrec/medrec/internal/platform/apperr"
	"github.com/medrec/medrec/pkg/pagination"
)

type mockRepo struct {
	nextID     int64
	encounters map[int64]*Encounter
	diagnoses  map[int64]*Diagnosis
	procedures map[int64]*Procedure
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		encounters: map[int64]*Encounter{},
		diagnoses:  map[int64]*Diagnosis{},
		procedures: map[int64]*Procedure{},
	}
}

func (m *mockRepo) Create(_ context.Context, e *Encounter) error {
	m.nextID++
	e.ID = m.nextID
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	m.encounters[e.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Encounter, error) {
	e, ok := m.encounters[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (m *mockRepo) List(_ context.Context, f Filters, limit, offset int) ([]*Encounter, int, error) {
	var out []*Encounter
	for _, e := range m.encounters {
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		if f.PatientID != 0 && e.PatientID != f.PatientID {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *mockRepo) Search(_ context.Context, query string, limit, offset int) ([]*Encounter, int, error) {
	var out []*Encounter
	for _, e := range m.encounters {
		if strings.Contains(strings.ToLower(e.ProviderName), strings.ToLower(query)) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) Update(_ context.Context, id int64, upd Update) (bool, error) {
	e, ok := m.encounters[id]
	if !ok {
		return false, nil
	}
	if upd.Status != nil {
		e.Status = *upd.Status
	}
	if upd.ProviderName != nil {
		e.ProviderName = *upd.ProviderName
	}
	return true, nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := m.encounters[id]; !ok {
		return false, nil
	}
	delete(m.encounters, id)
	return true, nil
}

func (m *mockRepo) Count(_ context.Context) (int, error) {
	return len(m.encounters), nil
}

func (m *mockRepo) ByPatient(_ context.Context, patientID int64) ([]*Encounter, error) {
	var out []*Encounter
	for _, e := range m.encounters {
		if e.PatientID == patientID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockRepo) AddDiagnosis(_ context.Context, d *Diagnosis) error {
	m.nextID++
	d.ID = m.nextID
	cp := *d
	m.diagnoses[d.ID] = &cp
	return nil
}

func (m *mockRepo) DiagnosesByEncounter(_ context.Context, encounterID int64) ([]Diagnosis, error) {
	out := []Diagnosis{}
	for _, d := range m.diagnoses {
		if d.EncounterID == encounterID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *mockRepo) ListDiagnoses(_ context.Context, limit, offset int) ([]Diagnosis, int, error) {
	out := []Diagnosis{}
	for _, d := range m.diagnoses {
		out = append(out, *d)
	}
	return out, len(out), nil
}

func (m *mockRepo) UpdateDiagnosis(_ context.Context, id int64, upd DiagnosisUpdate) (bool, error) {
	d, ok := m.diagnoses[id]
	if !ok {
		return false, nil
	}
	if upd.Description != nil {
		d.Description = *upd.Description
	}
	return true, nil
}

func (m *mockRepo) DeleteDiagnosis(_ context.Context, id int64) (bool, error) {
	if _, ok := m.diagnoses[id]; !ok {
		return false, nil
	}
	delete(m.diagnoses, id)
	return true, nil
}

func (m *mockRepo) AddProcedure(_ context.Context, p *Procedure) error {
	m.nextID++
	p.ID = m.nextID
	cp := *p
	m.procedures[p.ID] = &cp
	return nil
}

func (m *mockRepo) ProceduresByEncounter(_ context.Context, encounterID int64) ([]Procedure, error) {
	out := []Procedure{}
	for _, p := range m.procedures {
		if p.EncounterID == encounterID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockRepo) ListProcedures(_ context.Context, limit, offset int) ([]Procedure, int, error) {
	out := []Procedure{}
	for _, p := range m.procedures {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockRepo) UpdateProcedure(_ context.Context, id int64, upd ProcedureUpdate) (bool, error) {
	p, ok := m.procedures[id]
	if !ok {
		return false, nil
	}
	if upd.Quantity != nil {
		p.Quantity = *upd.Quantity
	}
	return true, nil
}

func (m *mockRepo) DeleteProcedure(_ context.Context, id int64) (bool, error) {
	if _, ok := m.procedures[id]; !ok {
		return false, nil
	}
	delete(m.procedures, id)
	return true, nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return NewService(repo, logger), repo
}

func validEncounter() *Encounter {
	return &Encounter{
		PatientID:     1,
		DateOfService: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		ProviderName:  "Dr. Grey",
	}
}

func TestCreate_DefaultsToPending(t *testing.T) {
	svc, _ := newTestService()
	e := validEncounter()

	if err := svc.Create(context.Background(), e); err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.Status != StatusPending {
		t.Errorf("expected status pending, got %s", e.Status)
	}
	if e.ID == 0 {
		t.Error("expected assigned id")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService()

	tests := []struct {
		name   string
		mutate func(*Encounter)
	}{
		{"missing patient", func(e *Encounter) { e.PatientID = 0 }},
		{"missing date", func(e *Encounter) { e.DateOfService = time.Time{} }},
		{"missing provider", func(e *Encounter) { e.ProviderName = "  " }},
		{"bad status", func(e *Encounter) { e.Status = "active" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEncounter()
			tt.mutate(e)
			err := svc.Create(context.Background(), e)
			if !apperr.IsKind(err, apperr.KindValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUpdate_RejectsUnknownStatus(t *testing.T) {
	svc, _ := newTestService()
	e := validEncounter()
	if err := svc.Create(context.Background(), e); err != nil {
		t.Fatalf("create: %v", err)
	}

	bad := "archived"
	_, err := svc.Update(context.Background(), e.ID, Update{Status: &bad})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	good := StatusBilled
	updated, err := svc.Update(context.Background(), e.ID, Update{Status: &good})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != StatusBilled {
		t.Errorf("expected billed, got %s", updated.Status)
	}
}

func TestDetails_EnrichesDiagnosesAndProcedures(t *testing.T) {
	svc, _ := newTestService()
	e := validEncounter()
	if err := svc.Create(context.Background(), e); err != nil {
		t.Fatalf("create: %v", err)
	}

	d := &Diagnosis{EncounterID: e.ID, ICDCodeID: 7, ICDCode: "E11.9", Description: "Type 2 diabetes"}
	if err := svc.AddDiagnosis(context.Background(), d); err != nil {
		t.Fatalf("add diagnosis: %v", err)
	}
	p := &Procedure{EncounterID: e.ID, CPTCodeID: 3, CPTCode: "99213", Description: "Office visit"}
	if err := svc.AddProcedure(context.Background(), p); err != nil {
		t.Fatalf("add procedure: %v", err)
	}

	details, err := svc.Details(context.Background(), e.ID)
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if len(details.Diagnoses) != 1 || details.Diagnoses[0].ICDCode != "E11.9" {
		t.Errorf("unexpected diagnoses: %+v", details.Diagnoses)
	}
	if len(details.Procedures) != 1 || details.Procedures[0].CPTCode != "99213" {
		t.Errorf("unexpected procedures: %+v", details.Procedures)
	}
	if p.Quantity != 1 {
		t.Errorf("expected quantity to default to 1, got %d", p.Quantity)
	}
}

func TestAddDiagnosis_UnknownEncounter(t *testing.T) {
	svc, _ := newTestService()

	err := svc.AddDiagnosis(context.Background(), &Diagnosis{EncounterID: 99, ICDCodeID: 1})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSearch_RequiresQuery(t *testing.T) {
	svc, _ := newTestService()

	_, _, err := svc.Search(context.Background(), "   ", pagination.Clamp(1, 10))
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDetailsByPatient(t *testing.T) {
	svc, _ := newTestService()

	for i := 0; i < 2; i++ {
		e := validEncounter()
		if err := svc.Create(context.Background(), e); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	other := validEncounter()
	other.PatientID = 2
	if err := svc.Create(context.Background(), other); err != nil {
		t.Fatalf("create: %v", err)
	}

	details, err := svc.DetailsByPatient(context.Background(), 1)
	if err != nil {
		t.Fatalf("details by patient: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("expected 2 encounters for patient 1, got %d", len(details))
	}
}
