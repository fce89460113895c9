package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/greenwork/greenwork-api/internal/model"
)

// RoomRepo provides CRUD access to the 'rooms' table.
type RoomRepo struct{ DB *sql.DB }

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{DB: db} }

const roomColumns = "id, company_id, name, capacity, status, description, price"

// Create inserts a room and returns its ID.  Status defaults to
// "available" when the caller leaves it empty.
func (r *RoomRepo) Create(ctx context.Context, rm model.Room) (uint64, error) {
	if rm.Status == "" {
		rm.Status = model.RoomStatusAvailable
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO rooms (company_id, name, capacity, status, description, price) VALUES (?,?,?,?,?,?)",
		rm.CompanyID, rm.Name, rm.Capacity, rm.Status, rm.Description, rm.Price)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a room by id.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	var rm model.Room
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+roomColumns+" FROM rooms WHERE id=? LIMIT 1", id).
		Scan(&rm.ID, &rm.CompanyID, &rm.Name, &rm.Capacity, &rm.Status, &rm.Description, &rm.Price)
	return rm, err
}

// List returns all rooms ordered by id.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	return r.list(ctx, "SELECT "+roomColumns+" FROM rooms ORDER BY id")
}

// ListByCompany returns the rooms belonging to a company.
func (r *RoomRepo) ListByCompany(ctx context.Context, companyID uint64) ([]model.Room, error) {
	return r.list(ctx, "SELECT "+roomColumns+" FROM rooms WHERE company_id=? ORDER BY id", companyID)
}

func (r *RoomRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Room, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rooms := make([]model.Room, 0)
	for rows.Next() {
		var rm model.Room
		if err := rows.Scan(&rm.ID, &rm.CompanyID, &rm.Name, &rm.Capacity, &rm.Status,
			&rm.Description, &rm.Price); err != nil {
			return nil, err
		}
		rooms = append(rooms, rm)
	}
	return rooms, rows.Err()
}

// RoomPatch carries optional update fields; nil fields keep their
// stored value.
type RoomPatch struct {
	Name        *string
	Capacity    *uint32
	Status      *string
	Description *string
	Price       *float64
}

// Update applies non-nil patch fields to the room row.
func (r *RoomRepo) Update(ctx context.Context, id uint64, p RoomPatch) error {
	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	if p.Name != nil {
		sets = append(sets, "name=?")
		args = append(args, *p.Name)
	}
	if p.Capacity != nil {
		sets = append(sets, "capacity=?")
		args = append(args, *p.Capacity)
	}
	if p.Status != nil {
		sets = append(sets, "status=?")
		args = append(args, *p.Status)
	}
	if p.Description != nil {
		sets = append(sets, "description=?")
		args = append(args, *p.Description)
	}
	if p.Price != nil {
		sets = append(sets, "price=?")
		args = append(args, *p.Price)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE rooms SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	return err
}

// Delete hard-removes a room row.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM rooms WHERE id=?", id)
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
