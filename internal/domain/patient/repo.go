package patient

import (
	"context"
)

// Repository is the persistence boundary for patients. Lookups return
// (nil, nil) when no row matches.
type Repository interface {
	// Create inserts the patient and fills in ID and timestamps. Duplicate
	// email or insurance number surfaces as a conflict error.
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	Update(ctx context.Context, id int64, upd Update) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
	// SearchByName matches names case-insensitively on a substring.
	SearchByName(ctx context.Context, name string) ([]*Patient, error)
}
