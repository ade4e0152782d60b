package catalog

import (
	"time"
)

// ICDCode is an ICD-10 diagnosis code. Code strings are unique.
type ICDCode struct {
	ID          int64     `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	SubCategory string    `db:"sub_category" json:"sub_category"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type ICDCodeUpdate struct {
	Code        *string `json:"code"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	SubCategory *string `json:"sub_category"`
}

// CPTCode is a CPT procedure code. Code strings are unique; the relative
// value unit feeds billing downstream.
type CPTCode struct {
	ID                int64     `db:"id" json:"id"`
	Code              string    `db:"code" json:"code"`
	Description       string    `db:"description" json:"description"`
	Category          string    `db:"category" json:"category"`
	RelativeValueUnit float64   `db:"relative_value_unit" json:"relative_value_unit"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

type CPTCodeUpdate struct {
	Code              *string  `json:"code"`
	Description       *string  `json:"description"`
	Category          *string  `json:"category"`
	RelativeValueUnit *float64 `json:"relative_value_unit"`
}
