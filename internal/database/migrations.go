package database

// migration is one forward-only schema change.
type migration struct {
	version int
	name    string
	sql     string
}

// migrations are applied in order. Versions must increase and are never
// reused; add new ones at the end.
var migrations = []migration{
	{1, "holidays", migrationV1Holidays},
	{2, "holiday_kind_index", migrationV2HolidayKindIndex},
}

func latestVersion() int {
	return migrations[len(migrations)-1].version
}

// migrationV1Holidays creates the holiday store.
//
// Holidays are keyed by their Ethiopian month and day, not by a Gregorian
// date: an Ethiopian-fixed holiday moves by a day on the Gregorian calendar
// around leap years, so Gregorian dates are computed at runtime.
//
// created_at/updated_at are declared DATETIME so the driver scans them
// into time.Time.
const migrationV1Holidays = `
-- Migration 001: holidays

CREATE TABLE IF NOT EXISTS holidays (
    id INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Latin-script name, e.g. "Adwa Victory Day"
    name TEXT NOT NULL,

    -- Optional Ge'ez-script name, e.g. "የዓድዋ ድል በዓል"
    name_am TEXT,

    -- Ethiopian month (13 = Pagume) and day
    month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 13),
    day INTEGER NOT NULL CHECK (day BETWEEN 1 AND 30),

    kind TEXT NOT NULL DEFAULT 'custom' CHECK (kind IN (
        'public',
        'religious',
        'custom'
    )),

    description TEXT,

    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    updated_at DATETIME NOT NULL DEFAULT (datetime('now')),

    UNIQUE (month, day, name)
);

-- Primary lookup: holidays on a given day
CREATE INDEX IF NOT EXISTS idx_holidays_month_day
    ON holidays(month, day);
`

// migrationV2HolidayKindIndex supports filtering holidays by kind.
const migrationV2HolidayKindIndex = `
-- Migration 002: kind index
CREATE INDEX IF NOT EXISTS idx_holidays_kind
    ON holidays(kind);
`
