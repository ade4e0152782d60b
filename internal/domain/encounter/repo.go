package encounter

import (
	"context"
)

// Repository is the persistence boundary for encounters and their coded
// diagnoses and procedures. Lookups return (nil, nil) when no row matches.
type Repository interface {
	Create(ctx context.Context, e *Encounter) error
	GetByID(ctx context.Context, id int64) (*Encounter, error)
	List(ctx context.Context, f Filters, limit, offset int) ([]*Encounter, int, error)
	// Search matches provider name, location and type of service on a
	// substring; a numeric query additionally matches the patient id and a
	// YYYY-MM-DD query the service date.
	Search(ctx context.Context, query string, limit, offset int) ([]*Encounter, int, error)
	Update(ctx context.Context, id int64, upd Update) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
	ByPatient(ctx context.Context, patientID int64) ([]*Encounter, error)

	AddDiagnosis(ctx context.Context, d *Diagnosis) error
	DiagnosesByEncounter(ctx context.Context, encounterID int64) ([]Diagnosis, error)
	ListDiagnoses(ctx context.Context, limit, offset int) ([]Diagnosis, int, error)
	UpdateDiagnosis(ctx context.Context, id int64, upd DiagnosisUpdate) (bool, error)
	DeleteDiagnosis(ctx context.Context, id int64) (bool, error)

	AddProcedure(ctx context.Context, p *Procedure) error
	ProceduresByEncounter(ctx context.Context, encounterID int64) ([]Procedure, error)
	ListProcedures(ctx context.Context, limit, offset int) ([]Procedure, int, error)
	UpdateProcedure(ctx context.Context, id int64, upd ProcedureUpdate) (bool, error)
	DeleteProcedure(ctx context.Context, id int64) (bool, error)
}
