package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/greenwork/greenwork-api/internal/booking"
	"github.com/greenwork/greenwork-api/internal/model"
)

// ReservationRepo provides CRUD operations for reservations and owns
// the conflict-check-and-write path.  The no-overlap invariant is
// per (room_id, date): the check and the subsequent write run inside
// a transaction on a dedicated connection that first takes a MySQL
// advisory lock named after the room and date, so concurrent bookings
// of the same slot serialize instead of racing.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// ErrLockTimeout is returned when the room/date advisory lock could
// not be acquired in time.  Callers surface it as a server error; the
// client may simply retry.
var ErrLockTimeout = errors.New("timed out waiting for room lock")

const reservationColumns = `r.id, r.user_id, r.room_id,
	DATE_FORMAT(r.date, '%Y-%m-%d'),
	TIME_FORMAT(r.start_time, '%H:%i:%s'), TIME_FORMAT(r.end_time, '%H:%i:%s'),
	r.status, r.total_price, r.payment_status, r.payment_method, r.card_last_digits`

// lockName builds the advisory lock key for a room/date pair.  MySQL
// lock names are server-global, so the prefix keeps them out of the
// way of other applications.
func lockName(roomID uint64, date string) string {
	return fmt.Sprintf("greenwork:resv:%d:%s", roomID, date)
}

// withRoomDateLock pins a connection, acquires the advisory lock for
// the room/date pair, opens a transaction and runs fn inside it.  The
// lock is held until after commit or rollback, which closes the
// read-then-write window between the conflict check and the insert.
func (r *ReservationRepo) withRoomDateLock(ctx context.Context, roomID uint64, date string, fn func(tx *sql.Tx) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	name := lockName(roomID, date)
	var got sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, 5)", name).Scan(&got); err != nil {
		return err
	}
	if !got.Valid || got.Int64 != 1 {
		return ErrLockTimeout
	}
	defer func() {
		var released sql.NullInt64
		// release on the same session; ignore the result, the lock
		// dies with the connection anyway
		_ = conn.QueryRowContext(context.WithoutCancel(ctx),
			"SELECT RELEASE_LOCK(?)", name).Scan(&released)
	}()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// occupiedWindowsTx returns the windows of all non-cancelled
// reservations for a room/date, optionally excluding one reservation
// (the record being updated).  Cancelled rows are filtered out here:
// a cancelled slot frees the room immediately.
func occupiedWindowsTx(ctx context.Context, tx *sql.Tx, roomID uint64, date string, excludeID uint64) ([]booking.Window, error) {
	q := `SELECT TIME_FORMAT(start_time, '%H:%i:%s'), TIME_FORMAT(end_time, '%H:%i:%s')
	      FROM reservations
	      WHERE room_id=? AND date=? AND status<>?`
	args := []interface{}{roomID, date, model.ReservationStatusCancelled}
	if excludeID != 0 {
		q += " AND id<>?"
		args = append(args, excludeID)
	}
	q += " ORDER BY start_time"
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var windows []booking.Window
	for rows.Next() {
		var w booking.Window
		if err := rows.Scan(&w.Start, &w.End); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

// CreateChecked inserts a reservation after verifying its window does
// not collide with any existing non-cancelled reservation on the same
// room and date.  On collision a *TimeConflictError listing the
// occupied windows is returned and nothing is written.  The caller is
// expected to have validated formats and start < end already.
func (r *ReservationRepo) CreateChecked(ctx context.Context, res *model.Reservation) error {
	return r.withRoomDateLock(ctx, res.RoomID, res.Date, func(tx *sql.Tx) error {
		existing, err := occupiedWindowsTx(ctx, tx, res.RoomID, res.Date, 0)
		if err != nil {
			return err
		}
		candidate := booking.Window{Start: res.StartTime, End: res.EndTime}
		if conflicts := booking.Conflicts(candidate, existing); len(conflicts) > 0 {
			return &TimeConflictError{Occupied: conflicts}
		}
		result, err := tx.ExecContext(ctx,
			`INSERT INTO reservations
			 (user_id, room_id, date, start_time, end_time, status, total_price, payment_status, payment_method, card_last_digits)
			 VALUES (?,?,?,?,?,?,?,?,?,?)`,
			res.UserID, res.RoomID, res.Date, res.StartTime, res.EndTime, res.Status,
			res.TotalPrice, res.PaymentStatus, res.PaymentMethod, res.CardLastDigits)
		if err != nil {
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		res.ID = uint64(id)
		return nil
	})
}

// UpdateChecked persists a merged reservation.  When recheck is true
// (the date or window changed) the conflict check re-runs against the
// merged window, excluding the reservation's own prior state.  The
// room of a reservation never changes on update.
func (r *ReservationRepo) UpdateChecked(ctx context.Context, merged model.Reservation, recheck bool) error {
	return r.withRoomDateLock(ctx, merged.RoomID, merged.Date, func(tx *sql.Tx) error {
		if recheck {
			existing, err := occupiedWindowsTx(ctx, tx, merged.RoomID, merged.Date, merged.ID)
			if err != nil {
				return err
			}
			candidate := booking.Window{Start: merged.StartTime, End: merged.EndTime}
			if conflicts := booking.Conflicts(candidate, existing); len(conflicts) > 0 {
				return &TimeConflictError{Occupied: conflicts}
			}
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE reservations
			 SET date=?, start_time=?, end_time=?, status=?, total_price=?, payment_status=?, payment_method=?, card_last_digits=?
			 WHERE id=?`,
			merged.Date, merged.StartTime, merged.EndTime, merged.Status,
			merged.TotalPrice, merged.PaymentStatus, merged.PaymentMethod, merged.CardLastDigits,
			merged.ID)
		return err
	})
}

// Cancel sets a reservation's status to cancelled.  No conflict check
// runs: cancelling frees a slot, it never claims one.  Cancelling an
// already-cancelled reservation is a no-op.
func (r *ReservationRepo) Cancel(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE reservations SET status=? WHERE id=?", model.ReservationStatusCancelled, id)
	return err
}

// Delete hard-removes a reservation row.  Irreversible.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reservations WHERE id=?", id)
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

// GetByID fetches a reservation together with its room (LEFT JOIN so
// reservations survive a deleted room).
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+`, `+joinedRoomColumns+`
		 FROM reservations r
		 LEFT JOIN rooms rm ON rm.id = r.room_id
		 WHERE r.id=? LIMIT 1`, id)
	return scanReservationWithRoom(row.Scan)
}

// List returns all reservations with their rooms, newest date first.
func (r *ReservationRepo) List(ctx context.Context) ([]model.Reservation, error) {
	return r.listWithRoom(ctx, "")
}

// ListByUser returns a user's reservations with their rooms.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return r.listWithRoom(ctx, "WHERE r.user_id=?", userID)
}

// ListByRoom returns a room's reservations.
func (r *ReservationRepo) ListByRoom(ctx context.Context, roomID uint64) ([]model.Reservation, error) {
	return r.listWithRoom(ctx, "WHERE r.room_id=?", roomID)
}

const joinedRoomColumns = "rm.id, rm.company_id, rm.name, rm.capacity, rm.status, rm.description, rm.price"

func scanReservationWithRoom(scan func(dest ...interface{}) error) (model.Reservation, error) {
	var res model.Reservation
	var (
		roomID     sql.NullInt64
		companyID  sql.NullInt64
		roomName   sql.NullString
		capacity   sql.NullInt64
		roomStatus sql.NullString
		desc       sql.NullString
		price      sql.NullFloat64
	)
	err := scan(&res.ID, &res.UserID, &res.RoomID, &res.Date, &res.StartTime, &res.EndTime,
		&res.Status, &res.TotalPrice, &res.PaymentStatus, &res.PaymentMethod, &res.CardLastDigits,
		&roomID, &companyID, &roomName, &capacity, &roomStatus, &desc, &price)
	if err != nil {
		return res, err
	}
	if roomID.Valid {
		rm := model.Room{
			ID:        uint64(roomID.Int64),
			CompanyID: uint64(companyID.Int64),
			Name:      roomName.String,
			Capacity:  uint32(capacity.Int64),
			Status:    roomStatus.String,
		}
		if desc.Valid {
			d := desc.String
			rm.Description = &d
		}
		if price.Valid {
			p := price.Float64
			rm.Price = &p
		}
		res.Room = &rm
	}
	return res, nil
}

func (r *ReservationRepo) listWithRoom(ctx context.Context, where string, args ...interface{}) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + `, ` + joinedRoomColumns + `
	      FROM reservations r
	      LEFT JOIN rooms rm ON rm.id = r.room_id `
	q += where + " ORDER BY r.date DESC, r.start_time"
	q = strings.TrimSpace(q)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservationWithRoom(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
