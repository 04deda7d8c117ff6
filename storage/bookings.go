package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Booking is a hotel booking mirrored from the backend's booking history.
type Booking struct {
	ID           int64   `db:"id" json:"id"`
	BookingCode  string  `db:"booking_code" json:"booking_code"`
	RoomID       int64   `db:"room_id" json:"room_id"`
	RoomTitle    string  `db:"room_title" json:"room_title"`
	RoomTypeName string  `db:"room_type_name" json:"room_type_name"`
	CheckIn      string  `db:"check_in" json:"check_in"`
	CheckOut     string  `db:"check_out" json:"check_out"`
	Nights       int     `db:"nights" json:"nights"`
	Guests       int     `db:"guests" json:"guests"`
	PriceTotal   float64 `db:"price_total" json:"price_total"`
	Status       string  `db:"status" json:"status"`
	CreatedAt    string  `db:"created_at" json:"created_at"`
	SyncedAt     string  `db:"synced_at" json:"synced_at"`
	Source       string  `db:"source" json:"source"`
}

type BookingFilter struct {
	Status   string
	From     string
	To       string
	Past     bool
	Upcoming bool
	NowDate  string
}

func ensureBookingsSchema(db *sqlx.DB) error {
	createTable := `
CREATE TABLE IF NOT EXISTS bookings (
  id INTEGER PRIMARY KEY,
  booking_code TEXT,
  room_id INTEGER,
  room_title TEXT,
  check_in TEXT,
  check_out TEXT,
  nights INTEGER,
  guests INTEGER,
  price_total REAL,
  status TEXT,
  created_at TEXT,
  synced_at TEXT,
  source TEXT
);`

	if _, err := db.Exec(createTable); err != nil {
		return fmt.Errorf("create bookings table: %w", err)
	}

	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_bookings_check_in ON bookings(check_in);"); err != nil {
		return fmt.Errorf("create bookings index: %w", err)
	}

	if err := ensureBookingsColumns(db, []string{"room_type_name"}); err != nil {
		return err
	}

	return nil
}

func ensureBookingsColumns(db *sqlx.DB, columns []string) error {
	rows, err := db.Query("PRAGMA table_info(bookings);")
	if err != nil {
		return fmt.Errorf("inspect bookings table: %w", err)
	}
	defer rows.Close()

	existing := map[string]struct{}{}
	for rows.Next() {
		var cid int
		var name string
		var ctype string
		var notnull int
		var dflt sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return fmt.Errorf("inspect bookings columns: %w", err)
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect bookings columns: %w", err)
	}

	for _, column := range columns {
		if _, ok := existing[column]; ok {
			continue
		}
		_, err := db.Exec(fmt.Sprintf("ALTER TABLE bookings ADD COLUMN %s TEXT NOT NULL DEFAULT '';", column))
		if err != nil {
			return fmt.Errorf("add bookings column %s: %w", column, err)
		}
	}
	return nil
}

// SaveBooking inserts or refreshes a booking. It reports whether the row is new.
func SaveBooking(db *sqlx.DB, booking Booking) (bool, error) {
	var existing int
	err := db.Get(&existing, "SELECT COUNT(1) FROM bookings WHERE id = ?", booking.ID)
	if err != nil {
		return false, err
	}

	query := `
INSERT INTO bookings (
  id, booking_code, room_id, room_title, room_type_name, check_in, check_out, nights, guests, price_total, status, created_at, synced_at, source
) VALUES (
  :id, :booking_code, :room_id, :room_title, :room_type_name, :check_in, :check_out, :nights, :guests, :price_total, :status, :created_at, :synced_at, :source
)
ON CONFLICT(id) DO UPDATE SET
  booking_code = excluded.booking_code,
  room_title = excluded.room_title,
  room_type_name = excluded.room_type_name,
  check_in = excluded.check_in,
  check_out = excluded.check_out,
  nights = excluded.nights,
  guests = excluded.guests,
  price_total = excluded.price_total,
  status = excluded.status,
  synced_at = excluded.synced_at;`

	if _, err := db.NamedExec(query, booking); err != nil {
		return false, err
	}
	return existing == 0, nil
}

func GetBooking(db *sqlx.DB, id int64) (*Booking, error) {
	var booking Booking
	err := db.Get(&booking, "SELECT "+bookingColumns+" FROM bookings WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func SetBookingStatus(db *sqlx.DB, id int64, status string) (bool, error) {
	res, err := db.Exec("UPDATE bookings SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func RemoveBooking(db *sqlx.DB, id int64) (bool, error) {
	res, err := db.Exec("DELETE FROM bookings WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

const bookingColumns = `id, booking_code, room_id, room_title, room_type_name, check_in, check_out, nights, guests, price_total, status, created_at, synced_at, source`

func ListBookings(db *sqlx.DB, filter BookingFilter) ([]Booking, error) {
	conds := []string{}
	args := []any{}

	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, strings.ToLower(filter.Status))
	}
	if filter.From != "" {
		conds = append(conds, "check_in >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		conds = append(conds, "check_in <= ?")
		args = append(args, filter.To)
	}
	if filter.From == "" && filter.To == "" {
		if filter.Past {
			conds = append(conds, "check_out <= ?")
			args = append(args, filter.NowDate)
		}
		if filter.Upcoming {
			conds = append(conds, "check_out > ?")
			args = append(args, filter.NowDate)
		}
	}

	query := "SELECT " + bookingColumns + " FROM bookings"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY check_in, id"

	bookings := []Booking{}
	if err := db.Select(&bookings, query, args...); err != nil {
		return nil, err
	}
	return bookings, nil
}
