package calendar

import (
	"context"
	"fmt"

	"github.com/zapponejosh/ethiocal/internal/database"
)

// ResolvedDay describes a single day in both calendars along with the
// observances that fall on it.
type ResolvedDay struct {
	Ethiopian      EthiopianDate      `json:"ethiopian"`
	Gregorian      GregorianDate      `json:"gregorian"`
	Weekday        string             `json:"weekday"`
	WeekdayAmharic string             `json:"weekday_am"`
	Evangelist     string             `json:"evangelist"`
	LeapYear       bool               `json:"leap_year"`
	Feasts         []Feast            `json:"feasts"`
	Holidays       []database.Holiday `json:"holidays"`
}

// Queryable is the holiday lookup the resolver needs.
// Both *database.DB and test fakes satisfy it.
type Queryable interface {
	GetHolidaysOn(ctx context.Context, month, day int) ([]database.Holiday, error)
}

// Resolver resolves dates to ResolvedDay values.
type Resolver struct {
	db Queryable
}

// NewResolver creates a resolver. db may be nil, in which case stored
// holidays are never looked up.
func NewResolver(db Queryable) *Resolver {
	return &Resolver{db: db}
}

// Resolve describes the Ethiopian date d.
func (r *Resolver) Resolve(ctx context.Context, d EthiopianDate) (*ResolvedDay, error) {
	g, err := EthiopianToGregorian(d)
	if err != nil {
		return nil, err
	}

	feasts, err := FeastsOn(d)
	if err != nil {
		return nil, err
	}
	if feasts == nil {
		feasts = []Feast{}
	}

	holidays := []database.Holiday{}
	if r.db != nil {
		holidays, err = r.db.GetHolidaysOn(ctx, d.Month, d.Day)
		if err != nil {
			return nil, fmt.Errorf("lookup holidays for %s: %w", d, err)
		}
	}

	w := d.Weekday()
	return &ResolvedDay{
		Ethiopian:      d,
		Gregorian:      g,
		Weekday:        WeekdayName(w, StyleLong),
		WeekdayAmharic: WeekdayName(w, StyleAmharic),
		Evangelist:     EvangelistOf(d.Year).String(),
		LeapYear:       IsEthiopianLeapYear(d.Year),
		Feasts:         feasts,
		Holidays:       holidays,
	}, nil
}

// ResolveGregorian describes the Gregorian date g.
func (r *Resolver) ResolveGregorian(ctx context.Context, g GregorianDate) (*ResolvedDay, error) {
	d, err := GregorianToEthiopian(g)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, d)
}
