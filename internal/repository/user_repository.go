package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/greenwork/greenwork-api/internal/model"
	"github.com/greenwork/greenwork-api/internal/utils"
)

// UserRepo provides CRUD access to the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, first_name, last_name, email, password, role, preferred_language, profile_image_id"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password,
		&u.Role, &u.PreferredLanguage, &u.ProfileImageID)
	return u, err
}

// Create hashes the password and inserts the user, returning its ID.
// Emails are matched case-insensitively by normalizing to lower case.
func (r *UserRepo) Create(ctx context.Context, u model.User, password string, cost int) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (first_name, last_name, email, password, role) VALUES (?,?,?,?,?)",
		u.FirstName, u.LastName, email, hash, u.Role)
	if err != nil {
		if isDuplicateKey(err) {
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

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// List returns all users ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password,
			&u.Role, &u.PreferredLanguage, &u.ProfileImageID); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UserPatch carries the optional profile fields of an update; nil
// fields are left untouched.  Role changes are gated in the handler
// (admin only) before this is applied.
type UserPatch struct {
	FirstName         *string
	LastName          *string
	Email             *string
	Password          *string // plain text; hashed here when set
	Role              *string
	PreferredLanguage *string
	ProfileImageID    *uint64
}

// Update applies the non-nil patch fields to the user row.  When the
// email changes it first checks that no other user holds it, and the
// unique index backstops the check.
func (r *UserRepo) Update(ctx context.Context, id uint64, p UserPatch, cost int) error {
	sets := make([]string, 0, 7)
	args := make([]interface{}, 0, 8)
	if p.FirstName != nil {
		sets = append(sets, "first_name=?")
		args = append(args, *p.FirstName)
	}
	if p.LastName != nil {
		sets = append(sets, "last_name=?")
		args = append(args, *p.LastName)
	}
	if p.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*p.Email))
		var other uint64
		err := r.DB.QueryRowContext(ctx,
			"SELECT id FROM users WHERE email=? AND id<>? LIMIT 1", email, id).Scan(&other)
		if err == nil {
			return ErrEmailExists
		}
		if err != sql.ErrNoRows {
			return err
		}
		sets = append(sets, "email=?")
		args = append(args, email)
	}
	if p.Password != nil && *p.Password != "" {
		hash, err := utils.HashPassword(*p.Password, cost)
		if err != nil {
			return err
		}
		sets = append(sets, "password=?")
		args = append(args, hash)
	}
	if p.Role != nil {
		sets = append(sets, "role=?")
		args = append(args, *p.Role)
	}
	if p.PreferredLanguage != nil {
		sets = append(sets, "preferred_language=?")
		args = append(args, *p.PreferredLanguage)
	}
	if p.ProfileImageID != nil {
		sets = append(sets, "profile_image_id=?")
		args = append(args, *p.ProfileImageID)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil && isDuplicateKey(err) {
		return ErrEmailExists
	}
	return err
}

// UpdatePassword replaces the stored hash after verifying the current
// password.  ErrForbidden is returned when the current password does
// not match.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, current, next string, cost int) error {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(u.Password, current) {
		return ErrForbidden
	}
	hash, err := utils.HashPassword(next, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, "UPDATE users SET password=? WHERE id=?", hash, id)
	return err
}

// Delete hard-removes a user row.  sql.ErrNoRows is returned when no
// row matched.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// isDuplicateKey detects MySQL error 1062 (duplicate entry for a
// unique index).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
