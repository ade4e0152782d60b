package patient

import (
	"time"
)

// Patient is a clinical-record subject. Email and insurance number are
// unique across the table; the emergency contact block is denormalized on
// purpose, it is only ever read together with the patient.
type Patient struct {
	ID                           int64      `db:"id" json:"id"`
	Name                         string     `db:"name" json:"name"`
	DateOfBirth                  time.Time  `db:"date_of_birth" json:"date_of_birth"`
	Gender                       string     `db:"gender" json:"gender"`
	Address                      *string    `db:"address" json:"address,omitempty"`
	PhoneNumber                  *string    `db:"phone_number" json:"phone_number,omitempty"`
	Email                        string     `db:"email" json:"email"`
	InsuranceNumber              *string    `db:"insurance_number" json:"insurance_number,omitempty"`
	EmergencyContactName         string     `db:"emergency_contact_name" json:"emergency_contact_name"`
	EmergencyContactRelationship string     `db:"emergency_contact_relationship" json:"emergency_contact_relationship"`
	EmergencyContactPhone        string     `db:"emergency_contact_phone" json:"emergency_contact_phone"`
	CreatedAt                    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt                    time.Time  `db:"updated_at" json:"updated_at"`
}

// Update carries the fields a PUT may change; nil means "leave as is".
type Update struct {
	Name                         *string    `json:"name"`
	DateOfBirth                  *time.Time `json:"date_of_birth"`
	Gender                       *string    `json:"gender"`
	Address                      *string    `json:"address"`
	PhoneNumber                  *string    `json:"phone_number"`
	Email                        *string    `json:"email"`
	InsuranceNumber              *string    `json:"insurance_number"`
	EmergencyContactName         *string    `json:"emergency_contact_name"`
	EmergencyContactRelationship *string    `json:"emergency_contact_relationship"`
	EmergencyContactPhone        *string    `json:"emergency_contact_phone"`
}
