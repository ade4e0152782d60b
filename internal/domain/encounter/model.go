package encounter

import (
	"time"
)

// Encounter statuses follow the billing pipeline: an encounter is recorded,
// coded against ICD/CPT catalogs, billed, and finally completed.
const (
	StatusPending   = "pending"
	StatusCoded     = "coded"
	StatusBilled    = "billed"
	StatusCompleted = "completed"
)

var validStatuses = map[string]bool{
	StatusPending:   true,
	StatusCoded:     true,
	StatusBilled:    true,
	StatusCompleted: true,
}

func ValidStatus(s string) bool {
	return validStatuses[s]
}

type Encounter struct {
	ID            int64      `db:"id" json:"id"`
	PatientID     int64      `db:"patient_id" json:"patient_id"`
	DateOfService time.Time  `db:"date_of_service" json:"date_of_service"`
	ProviderName  string     `db:"provider_name" json:"provider_name"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	Status        string     `db:"status" json:"status"`
	DischargeDate *time.Time `db:"discharge_date" json:"discharge_date,omitempty"`
	TypeOfService *string    `db:"type_of_service" json:"type_of_service,omitempty"`
	Location      *string    `db:"location" json:"location,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Update carries the fields a PUT may change; nil means "leave as is".
type Update struct {
	PatientID     *int64     `json:"patient_id"`
	DateOfService *time.Time `json:"date_of_service"`
	ProviderName  *string    `json:"provider_name"`
	Notes         *string    `json:"notes"`
	Status        *string    `json:"status"`
	DischargeDate *time.Time `json:"discharge_date"`
	TypeOfService *string    `json:"type_of_service"`
	Location      *string    `json:"location"`
}

// Diagnosis links an encounter to an ICD code. Code and description are
// denormalized at coding time so the record survives catalog edits.
type Diagnosis struct {
	ID             int64     `db:"id" json:"id"`
	EncounterID    int64     `db:"encounter_id" json:"encounter_id"`
	ICDCodeID      int64     `db:"icd_code_id" json:"icd_code_id"`
	DiagnosisOrder *int      `db:"diagnosis_order" json:"diagnosis_order,omitempty"`
	ICDCode        string    `db:"icd_code" json:"icd_code"`
	Description    string    `db:"description" json:"description"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

type DiagnosisUpdate struct {
	ICDCodeID      *int64  `json:"icd_code_id"`
	DiagnosisOrder *int    `json:"diagnosis_order"`
	ICDCode        *string `json:"icd_code"`
	Description    *string `json:"description"`
}

// Procedure links an encounter to a CPT code, with the same denormalization
// as Diagnosis.
type Procedure struct {
	ID          int64     `db:"id" json:"id"`
	EncounterID int64     `db:"encounter_id" json:"encounter_id"`
	CPTCodeID   int64     `db:"cpt_code_id" json:"cpt_code_id"`
	Quantity    int       `db:"quantity" json:"quantity"`
	Modifier    *string   `db:"modifier" json:"modifier,omitempty"`
	CPTCode     string    `db:"cpt_code" json:"cpt_code"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type ProcedureUpdate struct {
	CPTCodeID   *int64  `json:"cpt_code_id"`
	Quantity    *int    `json:"quantity"`
	Modifier    *string `json:"modifier"`
	CPTCode     *string `json:"cpt_code"`
	Description *string `json:"description"`
}

// Details is an encounter enriched with its coded diagnoses and procedures.
type Details struct {
	Encounter  *Encounter  `json:"encounter"`
	Diagnoses  []Diagnosis `json:"diagnoses"`
	Procedures []Procedure `json:"procedures"`
}

// Filters narrows encounter listings.
type Filters struct {
	Status    string
	From      *time.Time
	To        *time.Time
	PatientID int64
}
