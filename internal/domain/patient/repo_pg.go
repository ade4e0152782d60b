package patient

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medrec/medrec/internal/platform/apperr"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const patientCols = `id, name, date_of_birth, gender, address, phone_number, email,
	insurance_number, emergency_contact_name, emergency_contact_relationship,
	emergency_contact_phone, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO patients (
			name, date_of_birth, gender, address, phone_number, email,
			insurance_number, emergency_contact_name,
			emergency_contact_relationship, emergency_contact_phone
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at, updated_at`,
		p.Name, p.DateOfBirth, p.Gender, p.Address, p.PhoneNumber, p.Email,
		p.InsuranceNumber, p.EmergencyContactName,
		p.EmergencyContactRelationship, p.EmergencyContactPhone,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return conflictFromUnique(err)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+patientCols+` FROM patients
		ORDER BY id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	patients, err := collectPatients(rows)
	if err != nil {
		return nil, 0, err
	}
	return patients, total, nil
}

func (r *repoPG) Update(ctx context.Context, id int64, upd Update) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patients SET
			name                           = COALESCE($2, name),
			date_of_birth                  = COALESCE($3, date_of_birth),
			gender                         = COALESCE($4, gender),
			address                        = COALESCE($5, address),
			phone_number                   = COALESCE($6, phone_number),
			email                          = COALESCE($7, email),
			insurance_number               = COALESCE($8, insurance_number),
			emergency_contact_name         = COALESCE($9, emergency_contact_name),
			emergency_contact_relationship = COALESCE($10, emergency_contact_relationship),
			emergency_contact_phone        = COALESCE($11, emergency_contact_phone),
			updated_at = NOW()
		WHERE id = $1`,
		id, upd.Name, upd.DateOfBirth, upd.Gender, upd.Address, upd.PhoneNumber,
		upd.Email, upd.InsuranceNumber, upd.EmergencyContactName,
		upd.EmergencyContactRelationship, upd.EmergencyContactPhone,
	)
	if err != nil {
		return false, conflictFromUnique(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&n)
	return n, err
}

func (r *repoPG) SearchByName(ctx context.Context, name string) ([]*Patient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+patientCols+` FROM patients
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT 50`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPatients(rows)
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.Name, &p.DateOfBirth, &p.Gender, &p.Address, &p.PhoneNumber,
		&p.Email, &p.InsuranceNumber, &p.EmergencyContactName,
		&p.EmergencyContactRelationship, &p.EmergencyContactPhone,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPatients(rows pgx.Rows) ([]*Patient, error) {
	var patients []*Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(
			&p.ID, &p.Name, &p.DateOfBirth, &p.Gender, &p.Address, &p.PhoneNumber,
			&p.Email, &p.InsuranceNumber, &p.EmergencyContactName,
			&p.EmergencyContactRelationship, &p.EmergencyContactPhone,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		patients = append(patients, &p)
	}
	return patients, rows.Err()
}

func conflictFromUnique(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	if pgErr.ConstraintName == "patients_insurance_number_key" {
		return apperr.Conflict("patient with this insurance number already exists")
	}
	return apperr.Conflict("patient with this email already exists")
}
