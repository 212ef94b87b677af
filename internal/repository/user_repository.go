package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/event-seat-reservation/internal/model"
	"github.com/iliyamo/event-seat-reservation/internal/utils"
)

// UserRepo provides access to the users table. Administrators are
// rows with the ADMIN role; there is no separate table for them.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a user with a bcrypt-hashed password and returns its
// ID. It returns ErrLoginNameExists on a duplicate login name.
func (r *UserRepo) Create(ctx context.Context, loginName, password, nickname, role string, cost int) (uint64, error) {
	loginName = strings.TrimSpace(loginName)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (login_name, password_hash, nickname, role) VALUES (?,?,?,?)",
		loginName, hash, nickname, role)
	if err != nil {
		// 1062 is MySQL's duplicate-key error code.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrLoginNameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByLoginName fetches a user by login name.
func (r *UserRepo) GetByLoginName(ctx context.Context, loginName string) (model.User, error) {
	loginName = strings.TrimSpace(loginName)
	var u model.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, login_name, nickname, password_hash, role, created_at, updated_at FROM users WHERE login_name=? LIMIT 1",
		loginName).Scan(&u.ID, &u.LoginName, &u.Nickname, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, login_name, nickname, password_hash, role, created_at, updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.LoginName, &u.Nickname, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
