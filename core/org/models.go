package org

import "time"

// Organization logs community service hours against students. Its access key
// doubles as the bearer credential: there is no password, only key lookup.
type Organization struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Key           string    `json:"-" db:"org_key"`
	ContactPerson string    `json:"contactPerson" db:"contact_person"`
	ContactEmail  string    `json:"contactEmail,omitempty" db:"contact_email"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"` // UTC
}

// NewOrganization contains information needed to register an Organization.
type NewOrganization struct {
	Name          string `json:"name" validate:"required"`
	Key           string `json:"orgKey" validate:"required,min=4"`
	ContactPerson string `json:"contactPerson" validate:"required"`
	ContactEmail  string `json:"contactEmail" validate:"omitempty,email"`
}
