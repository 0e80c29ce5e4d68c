// Package repository provides data access for operator accounts.  Seat and
// audit persistence live in their own packages (store, audit); this package
// covers only the staff accounts that authenticate against the HTTP API.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/seat-inventory/internal/model"
	"github.com/iliyamo/seat-inventory/internal/utils"
)

// ErrEmailExists is returned when registering an email that is already
// taken.
var ErrEmailExists = errors.New("email already exists")

// OperatorRepo mirrors the operators table.
type OperatorRepo struct{ DB *sql.DB }

// NewOperatorRepo returns an OperatorRepo bound to the given DB handle.
func NewOperatorRepo(db *sql.DB) *OperatorRepo { return &OperatorRepo{DB: db} }

// Create inserts an operator with a bcrypt-hashed password and returns its
// ID.
func (r *OperatorRepo) Create(ctx context.Context, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO operators (email, password_hash, role) VALUES (?,?,?)",
		email, hash, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches an operator by normalized email.
func (r *OperatorRepo) GetByEmail(ctx context.Context, email string) (model.Operator, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var op model.Operator
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,created_at FROM operators WHERE email=? LIMIT 1",
		email).Scan(&op.ID, &op.Email, &op.PasswordHash, &op.Role, &op.CreatedAt)
	return op, err
}

// GetByID fetches an operator by id.
func (r *OperatorRepo) GetByID(ctx context.Context, id uint64) (model.Operator, error) {
	var op model.Operator
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,created_at FROM operators WHERE id=? LIMIT 1",
		id).Scan(&op.ID, &op.Email, &op.PasswordHash, &op.Role, &op.CreatedAt)
	return op, err
}

// Schema is the DDL for the operators table.
const Schema = `CREATE TABLE IF NOT EXISTS operators (
	id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	email VARCHAR(190) NOT NULL UNIQUE,
	password_hash VARCHAR(100) NOT NULL,
	role VARCHAR(16) NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
