package dashboard

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) count(ctx context.Context, query string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, query).Scan(&n)
	return n, err
}

func (r *repoPG) CountPatients(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM patients`)
}

func (r *repoPG) CountActiveEncounters(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM encounters WHERE status <> 'completed'`)
}

func (r *repoPG) CountICDCodes(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM icd_codes`)
}

func (r *repoPG) CountCPTCodes(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM cpt_codes`)
}

func (r *repoPG) EncountersPerDay(ctx context.Context) ([]DayCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date_of_service::date AS day, COUNT(*)
		FROM encounters
		GROUP BY day
		ORDER BY day`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDays(rows)
}

func (r *repoPG) PatientsPerDay(ctx context.Context) ([]DayCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT created_at::date AS day, COUNT(*)
		FROM patients
		GROUP BY day
		ORDER BY day`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDays(rows)
}

func collectDays(rows pgx.Rows) ([]DayCount, error) {
	var days []DayCount
	for rows.Next() {
		var d DayCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}
