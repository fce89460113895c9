package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/greenwork/greenwork-api/internal/model"
)

// CompanyRepo provides CRUD access to the 'companies' table.
type CompanyRepo struct{ DB *sql.DB }

func NewCompanyRepo(db *sql.DB) *CompanyRepo { return &CompanyRepo{DB: db} }

const companyColumns = "id, user_id, name, email, phone, address"

// Create inserts a company and returns its ID.  The company email is
// unique across companies.
func (r *CompanyRepo) Create(ctx context.Context, c model.Company) (uint64, error) {
	var exists uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM companies WHERE email=? LIMIT 1", c.Email).Scan(&exists)
	if err == nil {
		return 0, ErrEmailExists
	}
	if err != sql.ErrNoRows {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO companies (user_id, name, email, phone, address) VALUES (?,?,?,?,?)",
		c.UserID, c.Name, c.Email, c.Phone, c.Address)
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

// GetByID fetches a company by id.
func (r *CompanyRepo) GetByID(ctx context.Context, id uint64) (model.Company, error) {
	var c model.Company
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+companyColumns+" FROM companies WHERE id=? LIMIT 1", id).
		Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Address)
	return c, err
}

// List returns all companies ordered by id.
func (r *CompanyRepo) List(ctx context.Context) ([]model.Company, error) {
	return r.list(ctx, "SELECT "+companyColumns+" FROM companies ORDER BY id")
}

// ListByUser returns the companies owned by a user.
func (r *CompanyRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Company, error) {
	return r.list(ctx, "SELECT "+companyColumns+" FROM companies WHERE user_id=? ORDER BY id", userID)
}

func (r *CompanyRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Company, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	companies := make([]model.Company, 0)
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Address); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// CompanyPatch carries optional update fields; nil fields keep their
// stored value.
type CompanyPatch struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

// Update applies non-nil patch fields.  Changing the email re-checks
// uniqueness against other companies.
func (r *CompanyRepo) Update(ctx context.Context, id uint64, p CompanyPatch) error {
	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	if p.Name != nil {
		sets = append(sets, "name=?")
		args = append(args, *p.Name)
	}
	if p.Email != nil {
		var other uint64
		err := r.DB.QueryRowContext(ctx,
			"SELECT id FROM companies WHERE email=? AND id<>? LIMIT 1", *p.Email, id).Scan(&other)
		if err == nil {
			return ErrEmailExists
		}
		if err != sql.ErrNoRows {
			return err
		}
		sets = append(sets, "email=?")
		args = append(args, *p.Email)
	}
	if p.Phone != nil {
		sets = append(sets, "phone=?")
		args = append(args, *p.Phone)
	}
	if p.Address != nil {
		sets = append(sets, "address=?")
		args = append(args, *p.Address)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE companies SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil && isDuplicateKey(err) {
		return ErrEmailExists
	}
	return err
}

// Delete hard-removes a company.  Rooms are not cascade-deleted; they
// keep their company_id and simply stop resolving to a company row.
func (r *CompanyRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM companies WHERE id=?", id)
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
