package database

import (
	"time"
)

// HolidayKind classifies a holiday.
type HolidayKind string

const (
	HolidayKindPublic    HolidayKind = "public"
	HolidayKindReligious HolidayKind = "religious"
	HolidayKindCustom    HolidayKind = "custom"
)

// ValidHolidayKinds returns all valid holiday kinds.
func ValidHolidayKinds() []HolidayKind {
	return []HolidayKind{
		HolidayKindPublic,
		HolidayKindReligious,
		HolidayKindCustom,
	}
}

// IsValid checks if a holiday kind is valid.
func (k HolidayKind) IsValid() bool {
	for _, valid := range ValidHolidayKinds() {
		if k == valid {
			return true
		}
	}
	return false
}

// Holiday is an observance recurring on an Ethiopian month and day.
type Holiday struct {
	ID          int64       `db:"id" json:"id"`
	Name        string      `db:"name" json:"name"`
	NameAmharic *string     `db:"name_am" json:"name_am,omitempty"`
	Month       int         `db:"month" json:"month"`
	Day         int         `db:"day" json:"day"`
	Kind        HolidayKind `db:"kind" json:"kind"`
	Description *string     `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// -----------------------------------------------------------------
// Import file format (cmd/import)
// -----------------------------------------------------------------

// ImportData is the top-level structure of a holiday JSON file.
type ImportData struct {
	Metadata ImportMetadata  `json:"metadata"`
	Holidays []ImportHoliday `json:"holidays"`
}

// ImportMetadata describes where an import file came from.
type ImportMetadata struct {
	Source      string `json:"source"`
	GeneratedAt string `json:"generated_at"`
}

// ImportHoliday is one holiday entry in an import file.
type ImportHoliday struct {
	Name        string  `json:"name"`
	NameAmharic *string `json:"name_am,omitempty"`
	Month       int     `json:"month"`
	Day         int     `json:"day"`
	Kind        string  `json:"kind"`
	Description *string `json:"description,omitempty"`
}
