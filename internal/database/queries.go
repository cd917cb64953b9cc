package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const holidayColumns = `id, name, name_am, month, day, kind, description, created_at, updated_at`

// =============================================================================
// Holiday Queries
// =============================================================================

// CreateHoliday inserts h and fills in its ID and timestamps.
// Returns ErrDuplicate if a holiday with the same name already exists on
// that month and day.
func (db *DB) CreateHoliday(ctx context.Context, h *Holiday) error {
	return createHoliday(ctx, db.DB, h)
}

// CreateHoliday inserts h within the transaction.
func (tx *Tx) CreateHoliday(ctx context.Context, h *Holiday) error {
	return createHoliday(ctx, tx.Tx, h)
}

func createHoliday(ctx context.Context, q sqlx.ExtContext, h *Holiday) error {
	if h.Kind == "" {
		h.Kind = HolidayKindCustom
	}

	result, err := sqlx.NamedExecContext(ctx, q, `
		INSERT INTO holidays (name, name_am, month, day, kind, description)
		VALUES (:name, :name_am, :month, :day, :kind, :description)
	`, h)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert holiday: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get holiday id: %w", err)
	}

	created, err := getHolidayByID(ctx, q, id)
	if err != nil {
		return fmt.Errorf("reload holiday: %w", err)
	}
	*h = *created

	return nil
}

// GetHolidayByID retrieves a single holiday.
// Returns ErrNotFound if it doesn't exist.
func (db *DB) GetHolidayByID(ctx context.Context, id int64) (*Holiday, error) {
	return getHolidayByID(ctx, db.DB, id)
}

func getHolidayByID(ctx context.Context, q sqlx.QueryerContext, id int64) (*Holiday, error) {
	var h Holiday
	err := sqlx.GetContext(ctx, q, &h, `SELECT `+holidayColumns+` FROM holidays WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query holiday by id: %w", err)
	}
	return &h, nil
}

// ListHolidays returns holidays ordered by month, day and name.
// A month of 0 returns every holiday.
func (db *DB) ListHolidays(ctx context.Context, month int) ([]Holiday, error) {
	query := `SELECT ` + holidayColumns + ` FROM holidays`
	var args []any
	if month != 0 {
		query += ` WHERE month = ?`
		args = append(args, month)
	}
	query += ` ORDER BY month, day, name`

	holidays := []Holiday{}
	if err := db.SelectContext(ctx, &holidays, query, args...); err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	return holidays, nil
}

// GetHolidaysOn returns the holidays recurring on an Ethiopian month and day.
// Returns an empty slice if there are none.
//
// This is the lookup behind the day resolver.
func (db *DB) GetHolidaysOn(ctx context.Context, month, day int) ([]Holiday, error) {
	holidays := []Holiday{}
	err := db.SelectContext(ctx, &holidays, `
		SELECT `+holidayColumns+`
		FROM holidays
		WHERE month = ? AND day = ?
		ORDER BY name
	`, month, day)
	if err != nil {
		return nil, fmt.Errorf("query holidays on %d/%d: %w", day, month, err)
	}
	return holidays, nil
}

// DeleteHoliday removes a holiday by ID.
// Returns ErrNotFound if it doesn't exist.
func (db *DB) DeleteHoliday(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM holidays WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete holiday: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountHolidays returns the number of stored holidays.
func (db *DB) CountHolidays(ctx context.Context) (int, error) {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM holidays`); err != nil {
		return 0, fmt.Errorf("count holidays: %w", err)
	}
	return n, nil
}

// CountHolidaysByKind returns holiday counts keyed by kind.
func (db *DB) CountHolidaysByKind(ctx context.Context) (map[HolidayKind]int, error) {
	var rows []struct {
		Kind  HolidayKind `db:"kind"`
		Count int         `db:"n"`
	}
	if err := db.SelectContext(ctx, &rows, `SELECT kind, COUNT(*) AS n FROM holidays GROUP BY kind`); err != nil {
		return nil, fmt.Errorf("count holidays by kind: %w", err)
	}

	counts := make(map[HolidayKind]int, len(rows))
	for _, r := range rows {
		counts[r.Kind] = r.Count
	}
	return counts, nil
}
