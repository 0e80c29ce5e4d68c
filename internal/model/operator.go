package model

import "time"

// Operator is a staff account allowed to mutate seat inventory through the
// HTTP API.  Only the bcrypt hash of the password is ever stored.
type Operator struct {
	ID           uint64    // operators.id
	Email        string    // operators.email
	PasswordHash string    // operators.password_hash
	Role         string    // operators.role
	CreatedAt    time.Time // operators.created_at
}

// Operator roles.  ADMIN may block/release seats and run the expiry sweep on
// demand; OPERATOR may reserve, cancel, transfer and retype.
const (
	RoleAdmin    = "ADMIN"
	RoleOperator = "OPERATOR"
)
