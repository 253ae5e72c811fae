package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/kodbank/internal/model"
)

// AccountRepo reads and writes the 'accounts' table.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

// Create inserts an account with the starting balance and returns its ID.
// a.PasswordHash must already be a digest.
func (r *AccountRepo) Create(ctx context.Context, a model.Account) (uint64, error) {
	a.Username = strings.TrimSpace(a.Username)
	a.Email = strings.TrimSpace(a.Email)
	if a.Role == "" {
		a.Role = model.RoleCustomer
	}
	var phone sql.NullString
	if a.Phone != nil && strings.TrimSpace(*a.Phone) != "" {
		phone = sql.NullString{String: strings.TrimSpace(*a.Phone), Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO accounts (username, email, phone, password_hash, balance, role) VALUES (?,?,?,?,?,?)",
		a.Username, a.Email, phone, a.PasswordHash, model.StartingBalance, string(a.Role))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches an account by exact username.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (model.Account, error) {
	var (
		a     model.Account
		phone sql.NullString
		role  string
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,email,phone,password_hash,balance,role FROM accounts WHERE username=? LIMIT 1",
		username).Scan(&a.ID, &a.Username, &a.Email, &phone, &a.PasswordHash, &a.Balance, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, err
	}
	if phone.Valid {
		a.Phone = &phone.String
	}
	a.Role = model.Role(role)
	return a, nil
}

// DeleteByUsername removes an account; its sessions go with it through the
// foreign key.  Used by operators and tests, not exposed over HTTP.
func (r *AccountRepo) DeleteByUsername(ctx context.Context, username string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM accounts WHERE username=?", username)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAccountNotFound
	}
	return nil
}
