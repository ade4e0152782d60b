package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medrec/medrec/internal/platform/apperr"
)

const searchLimit = 50

func conflictFromUnique(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Conflict(msg)
	}
	return err
}

// -- ICD --

type icdRepoPG struct {
	pool *pgxpool.Pool
}

func NewICDRepo(pool *pgxpool.Pool) ICDRepository {
	return &icdRepoPG{pool: pool}
}

const icdCols = `id, code, description, category, sub_category, created_at, updated_at`

func (r *icdRepoPG) Create(ctx context.Context, c *ICDCode) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO icd_codes (code, description, category, sub_category)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at, updated_at`,
		c.Code, c.Description, c.Category, c.SubCategory,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return conflictFromUnique(err, "ICD code already exists")
}

func (r *icdRepoPG) GetByID(ctx context.Context, id int64) (*ICDCode, error) {
	return scanICD(r.pool.QueryRow(ctx, `SELECT `+icdCols+` FROM icd_codes WHERE id = $1`, id))
}

func (r *icdRepoPG) GetByCode(ctx context.Context, code string) (*ICDCode, error) {
	return scanICD(r.pool.QueryRow(ctx, `SELECT `+icdCols+` FROM icd_codes WHERE code = $1`, code))
}

func (r *icdRepoPG) List(ctx context.Context, limit, offset int) ([]*ICDCode, int, error) {
	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+icdCols+` FROM icd_codes
		ORDER BY code
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	codes, err := collectICD(rows)
	if err != nil {
		return nil, 0, err
	}
	return codes, total, nil
}

func (r *icdRepoPG) Search(ctx context.Context, query string) ([]*ICDCode, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+icdCols+` FROM icd_codes
		WHERE code ILIKE '%' || $1 || '%'
		   OR description ILIKE '%' || $1 || '%'
		   OR category ILIKE '%' || $1 || '%'
		ORDER BY code
		LIMIT $2`, query, searchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectICD(rows)
}

func (r *icdRepoPG) Update(ctx context.Context, id int64, upd ICDCodeUpdate) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE icd_codes SET
			code         = COALESCE($2, code),
			description  = COALESCE($3, description),
			category     = COALESCE($4, category),
			sub_category = COALESCE($5, sub_category),
			updated_at = NOW()
		WHERE id = $1`,
		id, upd.Code, upd.Description, upd.Category, upd.SubCategory,
	)
	if err != nil {
		return false, conflictFromUnique(err, "ICD code already exists")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *icdRepoPG) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM icd_codes WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *icdRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM icd_codes`).Scan(&n)
	return n, err
}

func scanICD(row pgx.Row) (*ICDCode, error) {
	var c ICDCode
	err := row.Scan(&c.ID, &c.Code, &c.Description, &c.Category, &c.SubCategory, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectICD(rows pgx.Rows) ([]*ICDCode, error) {
	var codes []*ICDCode
	for rows.Next() {
		var c ICDCode
		if err := rows.Scan(&c.ID, &c.Code, &c.Description, &c.Category, &c.SubCategory, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		codes = append(codes, &c)
	}
	return codes, rows.Err()
}

// -- CPT --

type cptRepoPG struct {
	pool *pgxpool.Pool
}

func NewCPTRepo(pool *pgxpool.Pool) CPTRepository {
	return &cptRepoPG{pool: pool}
}

const cptCols = `id, code, description, category, relative_value_unit, created_at, updated_at`

func (r *cptRepoPG) Create(ctx context.Context, c *CPTCode) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO cpt_codes (code, description, category, relative_value_unit)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at, updated_at`,
		c.Code, c.Description, c.Category, c.RelativeValueUnit,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return conflictFromUnique(err, "CPT code already exists")
}

func (r *cptRepoPG) GetByID(ctx context.Context, id int64) (*CPTCode, error) {
	return scanCPT(r.pool.QueryRow(ctx, `SELECT `+cptCols+` FROM cpt_codes WHERE id = $1`, id))
}

func (r *cptRepoPG) GetByCode(ctx context.Context, code string) (*CPTCode, error) {
	return scanCPT(r.pool.QueryRow(ctx, `SELECT `+cptCols+` FROM cpt_codes WHERE code = $1`, code))
}

func (r *cptRepoPG) List(ctx context.Context, limit, offset int) ([]*CPTCode, int, error) {
	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+cptCols+` FROM cpt_codes
		ORDER BY code
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	codes, err := collectCPT(rows)
	if err != nil {
		return nil, 0, err
	}
	return codes, total, nil
}

func (r *cptRepoPG) Search(ctx context.Context, query string) ([]*CPTCode, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+cptCols+` FROM cpt_codes
		WHERE code ILIKE '%' || $1 || '%'
		   OR description ILIKE '%' || $1 || '%'
		   OR category ILIKE '%' || $1 || '%'
		ORDER BY code
		LIMIT $2`, query, searchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCPT(rows)
}

func (r *cptRepoPG) Update(ctx context.Context, id int64, upd CPTCodeUpdate) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE cpt_codes SET
			code                = COALESCE($2, code),
			description         = COALESCE($3, description),
			category            = COALESCE($4, category),
			relative_value_unit = COALESCE($5, relative_value_unit),
			updated_at = NOW()
		WHERE id = $1`,
		id, upd.Code, upd.Description, upd.Category, upd.RelativeValueUnit,
	)
	if err != nil {
		return false, conflictFromUnique(err, "CPT code already exists")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *cptRepoPG) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cpt_codes WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *cptRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cpt_codes`).Scan(&n)
	return n, err
}

func scanCPT(row pgx.Row) (*CPTCode, error) {
	var c CPTCode
	err := row.Scan(&c.ID, &c.Code, &c.Description, &c.Category, &c.RelativeValueUnit, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectCPT(rows pgx.Rows) ([]*CPTCode, error) {
	var codes []*CPTCode
	for rows.Next() {
		var c CPTCode
		if err := rows.Scan(&c.ID, &c.Code, &c.Description, &c.Category, &c.RelativeValueUnit, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		codes = append(codes, &c)
	}
	return codes, rows.Err()
}
