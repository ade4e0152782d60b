package encounter

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const encCols = `id, patient_id, date_of_service, provider_name, notes, status,
	discharge_date, type_of_service, location, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, e *Encounter) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO encounters (
			patient_id, date_of_service, provider_name, notes, status,
			discharge_date, type_of_service, location
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at`,
		e.PatientID, e.DateOfService, e.ProviderName, e.Notes, e.Status,
		e.DischargeDate, e.TypeOfService, e.Location,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Encounter, error) {
	return scanEnc(r.pool.QueryRow(ctx, `SELECT `+encCols+` FROM encounters WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, f Filters, limit, offset int) ([]*Encounter, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != "" {
		where = append(where, "status = "+arg(f.Status))
	}
	if f.From != nil {
		where = append(where, "date_of_service >= "+arg(*f.From))
	}
	if f.To != nil {
		where = append(where, "date_of_service <= "+arg(*f.To))
	}
	if f.PatientID != 0 {
		where = append(where, "patient_id = "+arg(f.PatientID))
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM encounters WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + encCols + ` FROM encounters WHERE ` + clause +
		` ORDER BY date_of_service DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	encounters, err := collectEncs(rows)
	if err != nil {
		return nil, 0, err
	}
	return encounters, total, nil
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func (r *repoPG) Search(ctx context.Context, query string, limit, offset int) ([]*Encounter, int, error) {
	term := strings.TrimSpace(query)

	where := []string{
		"provider_name ILIKE '%' || $1 || '%'",
		"location ILIKE '%' || $1 || '%'",
		"type_of_service ILIKE '%' || $1 || '%'",
		"status = $1",
	}
	args := []interface{}{term}

	if id, err := strconv.ParseInt(term, 10, 64); err == nil {
		args = append(args, id)
		where = append(where, fmt.Sprintf("patient_id = $%d", len(args)))
	}
	if datePattern.MatchString(term) {
		args = append(args, term)
		where = append(where, fmt.Sprintf("date_of_service::date = $%d::date", len(args)))
	}
	clause := strings.Join(where, " OR ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM encounters WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM encounters WHERE %s ORDER BY date_of_service DESC LIMIT $%d OFFSET $%d`,
		encCols, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	encounters, err := collectEncs(rows)
	if err != nil {
		return nil, 0, err
	}
	return encounters, total, nil
}

func (r *repoPG) Update(ctx context.Context, id int64, upd Update) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE encounters SET
			patient_id      = COALESCE($2, patient_id),
			date_of_service = COALESCE($3, date_of_service),
			provider_name   = COALESCE($4, provider_name),
			notes           = COALESCE($5, notes),
			status          = COALESCE($6, status),
			discharge_date  = COALESCE($7, discharge_date),
			type_of_service = COALESCE($8, type_of_service),
			location        = COALESCE($9, location),
			updated_at = NOW()
		WHERE id = $1`,
		id, upd.PatientID, upd.DateOfService, upd.ProviderName, upd.Notes,
		upd.Status, upd.DischargeDate, upd.TypeOfService, upd.Location,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM encounters WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM encounters`).Scan(&n)
	return n, err
}

func (r *repoPG) ByPatient(ctx context.Context, patientID int64) ([]*Encounter, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+encCols+` FROM encounters
		WHERE patient_id = $1
		ORDER BY date_of_service DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEncs(rows)
}

func scanEnc(row pgx.Row) (*Encounter, error) {
	var e Encounter
	err := row.Scan(
		&e.ID, &e.PatientID, &e.DateOfService, &e.ProviderName, &e.Notes,
		&e.Status, &e.DischargeDate, &e.TypeOfService, &e.Location,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEncs(rows pgx.Rows) ([]*Encounter, error) {
	var encounters []*Encounter
	for rows.Next() {
		var e Encounter
		if err := rows.Scan(
			&e.ID, &e.PatientID, &e.DateOfService, &e.ProviderName, &e.Notes,
			&e.Status, &e.DischargeDate, &e.TypeOfService, &e.Location,
			&e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		encounters = append(encounters, &e)
	}
	return encounters, rows.Err()
}

// -- diagnoses --

const diagCols = `id, encounter_id, icd_code_id, diagnosis_order, icd_code, description, created_at, updated_at`

func (r *repoPG) AddDiagnosis(ctx context.Context, d *Diagnosis) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO encounter_diagnoses (encounter_id, icd_code_id, diagnosis_order, icd_code, description)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at, updated_at`,
		d.EncounterID, d.ICDCodeID, d.DiagnosisOrder, d.ICDCode, d.Description,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *repoPG) DiagnosesByEncounter(ctx context.Context, encounterID int64) ([]Diagnosis, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+diagCols+` FROM encounter_diagnoses
		WHERE encounter_id = $1
		ORDER BY diagnosis_order NULLS LAST, id`, encounterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDiags(rows)
}

func (r *repoPG) ListDiagnoses(ctx context.Context, limit, offset int) ([]Diagnosis, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM encounter_diagnoses`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+diagCols+` FROM encounter_diagnoses
		ORDER BY id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	diagnoses, err := collectDiags(rows)
	if err != nil {
		return nil, 0, err
	}
	return diagnoses, total, nil
}

func (r *repoPG) UpdateDiagnosis(ctx context.Context, id int64, upd DiagnosisUpdate) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE encounter_diagnoses SET
			icd_code_id     = COALESCE($2, icd_code_id),
			diagnosis_order = COALESCE($3, diagnosis_order),
			icd_code        = COALESCE($4, icd_code),
			description     = COALESCE($5, description),
			updated_at = NOW()
		WHERE id = $1`,
		id, upd.ICDCodeID, upd.DiagnosisOrder, upd.ICDCode, upd.Description,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repoPG) DeleteDiagnosis(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM encounter_diagnoses WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func collectDiags(rows pgx.Rows) ([]Diagnosis, error) {
	diagnoses := []Diagnosis{}
	for rows.Next() {
		var d Diagnosis
		if err := rows.Scan(
			&d.ID, &d.EncounterID, &d.ICDCodeID, &d.DiagnosisOrder,
			&d.ICDCode, &d.Description, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		diagnoses = append(diagnoses, d)
	}
	return diagnoses, rows.Err()
}

// -- procedures --

const procCols = `id, encounter_id, cpt_code_id, quantity, modifier, cpt_code, description, created_at, updated_at`

func (r *repoPG) AddProcedure(ctx context.Context, p *Procedure) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO encounter_procedures (encounter_id, cpt_code_id, quantity, modifier, cpt_code, description)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at, updated_at`,
		p.EncounterID, p.CPTCodeID, p.Quantity, p.Modifier, p.CPTCode, p.Description,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) ProceduresByEncounter(ctx context.Context, encounterID int64) ([]Procedure, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+procCols+` FROM encounter_procedures
		WHERE encounter_id = $1
		ORDER BY id`, encounterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProcs(rows)
}

func (r *repoPG) ListProcedures(ctx context.Context, limit, offset int) ([]Procedure, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM encounter_procedures`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+procCols+` FROM encounter_procedures
		ORDER BY id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	procedures, err := collectProcs(rows)
	if err != nil {
		return nil, 0, err
	}
	return procedures, total, nil
}

func (r *repoPG) UpdateProcedure(ctx context.Context, id int64, upd ProcedureUpdate) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE encounter_procedures SET
			cpt_code_id = COALESCE($2, cpt_code_id),
			quantity    = COALESCE($3, quantity),
			modifier    = COALESCE($4, modifier),
			cpt_code    = COALESCE($5, cpt_code),
			description = COALESCE($6, description),
			updated_at = NOW()
		WHERE id = $1`,
		id, upd.CPTCodeID, upd.Quantity, upd.Modifier, upd.CPTCode, upd.Description,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repoPG) DeleteProcedure(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM encounter_procedures WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func collectProcs(rows pgx.Rows) ([]Procedure, error) {
	procedures := []Procedure{}
	for rows.Next() {
		var p Procedure
		if err := rows.Scan(
			&p.ID, &p.EncounterID, &p.CPTCodeID, &p.Quantity, &p.Modifier,
			&p.CPTCode, &p.Description, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		procedures = append(procedures, p)
	}
	return procedures, rows.Err()
}
