package catalog

import (
	"context"
)

// ICDRepository is the persistence boundary for the ICD-10 catalog.
// Lookups return (nil, nil) when no row matches.
type ICDRepository interface {
	Create(ctx context.Context, c *ICDCode) error
	GetByID(ctx context.Context, id int64) (*ICDCode, error)
	GetByCode(ctx context.Context, code string) (*ICDCode, error)
	List(ctx context.Context, limit, offset int) ([]*ICDCode, int, error)
	// Search matches code, description and category on a substring.
	Search(ctx context.Context, query string) ([]*ICDCode, error)
	Update(ctx context.Context, id int64, upd ICDCodeUpdate) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
}

// CPTRepository is the persistence boundary for the CPT catalog.
type CPTRepository interface {
	Create(ctx context.Context, c *CPTCode) error
	GetByID(ctx context.Context, id int64) (*CPTCode, error)
	GetByCode(ctx context.Context, code string) (*CPTCode, error)
	List(ctx context.Context, limit, offset int) ([]*CPTCode, int, error)
	Search(ctx context.Context, query string) ([]*CPTCode, error)
	Update(ctx context.Context, id int64, upd CPTCodeUpdate) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
}
