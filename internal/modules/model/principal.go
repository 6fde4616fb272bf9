package model

import "github.com/google/uuid"

// Principal is the authenticated identity every operation authorizes
// against. Password logins and the Google OAuth exchange both map into this
// single shape; there is exactly one identifier field.
type Principal struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}
