// Package calendar converts, formats, parses and compares dates in the
// Ethiopian and Gregorian calendars.
//
// Both calendars are bridged through the Julian Day Number (JDN). Every
// conversion is integer arithmetic over JDN, so converting a date to the
// other calendar and back always reproduces it exactly. Dates are civil
// dates: there is no time of day and no time zone.
//
// The Ethiopian calendar has twelve 30-day months followed by Pagume, a
// short thirteenth month of 5 days (6 in a leap year). A year is a leap year
// when year mod 4 == 3.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// EthiopianEpoch is the JDN of Meskerem 1, year 1.
// It falls on August 27, 8 in the proleptic Gregorian calendar.
const EthiopianEpoch = 1724221

const (
	// Pagume is the number of the short thirteenth month.
	Pagume = 13

	// EthiopianMonths is the number of months in an Ethiopian year.
	EthiopianMonths = 13

	daysPerMonth  = 30
	daysPer4Years = 3*365 + 366
)

var (
	// ErrInvalidMonth is returned when a month is outside 1-13 (Ethiopian)
	// or 1-12 (Gregorian).
	ErrInvalidMonth = errors.New("invalid month")

	// ErrInvalidDate is returned when a day or year is outside the valid
	// range for its year and month.
	ErrInvalidDate = errors.New("invalid date")

	// ErrOutOfRange is returned for Gregorian dates that fall before the
	// Ethiopian epoch and so have no Ethiopian equivalent.
	ErrOutOfRange = errors.New("date out of range")
)

// EthiopianDate is a civil date in the Ethiopian calendar.
type EthiopianDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// GregorianDate is a civil date in the proleptic Gregorian calendar.
type GregorianDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// IsEthiopianLeapYear reports whether year ends with a six-day Pagume.
func IsEthiopianLeapYear(year int) bool {
	return floorMod(year, 4) == 3
}

// IsGregorianLeapYear reports whether year is a Gregorian leap year.
func IsGregorianLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInEthiopianMonth returns the length of month in year: 30 for months
// 1-12, and 5 or 6 for Pagume.
func DaysInEthiopianMonth(year, month int) (int, error) {
	switch {
	case month >= 1 && month < Pagume:
		return daysPerMonth, nil
	case month == Pagume:
		if IsEthiopianLeapYear(year) {
			return 6, nil
		}
		return 5, nil
	}
	return 0, fmt.Errorf("%w: %d (want 1-%d)", ErrInvalidMonth, month, EthiopianMonths)
}

var gregorianMonthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysInGregorianMonth returns the length of month in year.
func DaysInGregorianMonth(year, month int) (int, error) {
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("%w: %d (want 1-12)", ErrInvalidMonth, month)
	}
	if month == 2 && IsGregorianLeapYear(year) {
		return 29, nil
	}
	return gregorianMonthDays[month-1], nil
}

// IsValidEthiopianDate reports whether d names a real day.
func IsValidEthiopianDate(d EthiopianDate) bool {
	return d.Validate() == nil
}

// Validate returns an error wrapping ErrInvalidDate if d does not name a
// real day. Month errors also wrap ErrInvalidMonth.
func (d EthiopianDate) Validate() error {
	if d.Year < 1 {
		return fmt.Errorf("%w: year %d is before year 1", ErrInvalidDate, d.Year)
	}
	n, err := DaysInEthiopianMonth(d.Year, d.Month)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDate, err)
	}
	if d.Day < 1 || d.Day > n {
		return fmt.Errorf("%w: day %d of month %d in year %d (want 1-%d)", ErrInvalidDate, d.Day, d.Month, d.Year, n)
	}
	return nil
}

// Validate returns an error wrapping ErrInvalidDate if g does not name a
// real day.
func (g GregorianDate) Validate() error {
	n, err := DaysInGregorianMonth(g.Year, g.Month)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDate, err)
	}
	if g.Day < 1 || g.Day > n {
		return fmt.Errorf("%w: day %d of month %d in year %d (want 1-%d)", ErrInvalidDate, g.Day, g.Month, g.Year, n)
	}
	return nil
}

// GregorianToJDN returns the Julian Day Number of a proleptic Gregorian
// date. The result is exact for years after -4800.
func GregorianToJDN(year, month, day int) int {
	a := (14 - month) / 12
	y := year + 4800 - a
	m := month + 12*a - 3
	return day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
}

// JDNToGregorian is the inverse of GregorianToJDN.
func JDNToGregorian(jdn int) GregorianDate {
	a := jdn + 32044
	b := (4*a + 3) / 146097
	c := a - 146097*b/4
	d := (4*c + 3) / 1461
	e := c - 1461*d/4
	m := (5*e + 2) / 153
	return GregorianDate{
		Year:  100*b + d - 4800 + m/10,
		Month: m + 3 - 12*(m/10),
		Day:   e - (153*m+2)/5 + 1,
	}
}

// EthiopianToJDN returns the Julian Day Number of an Ethiopian date.
// floorDiv(year, 4) counts the leap years before year.
func EthiopianToJDN(year, month, day int) int {
	return EthiopianEpoch + 365*(year-1) + floorDiv(year, 4) + daysPerMonth*(month-1) + day - 1
}

// JDNToEthiopian is the inverse of EthiopianToJDN.
func JDNToEthiopian(jdn int) EthiopianDate {
	n := jdn - EthiopianEpoch
	year := floorDiv(4*n+1463, daysPer4Years)
	dayOfYear := n - (365*(year-1) + floorDiv(year, 4))
	return EthiopianDate{
		Year:  year,
		Month: dayOfYear/daysPerMonth + 1,
		Day:   dayOfYear%daysPerMonth + 1,
	}
}

// JDN returns the Julian Day Number of d. d is assumed valid.
func (d EthiopianDate) JDN() int {
	return EthiopianToJDN(d.Year, d.Month, d.Day)
}

// JDN returns the Julian Day Number of g. g is assumed valid.
func (g GregorianDate) JDN() int {
	return GregorianToJDN(g.Year, g.Month, g.Day)
}

// GregorianToEthiopian converts g to the Ethiopian calendar.
func GregorianToEthiopian(g GregorianDate) (EthiopianDate, error) {
	if err := g.Validate(); err != nil {
		return EthiopianDate{}, err
	}
	jdn := g.JDN()
	if jdn < EthiopianEpoch {
		return EthiopianDate{}, fmt.Errorf("%w: %s is before the Ethiopian epoch", ErrOutOfRange, g.ISO())
	}
	return JDNToEthiopian(jdn), nil
}

// EthiopianToGregorian converts e to the Gregorian calendar.
func EthiopianToGregorian(e EthiopianDate) (GregorianDate, error) {
	if err := e.Validate(); err != nil {
		return GregorianDate{}, err
	}
	return JDNToGregorian(e.JDN()), nil
}

// GregorianFromTime returns the civil date of t in t's own location.
func GregorianFromTime(t time.Time) GregorianDate {
	y, m, d := t.Date()
	return GregorianDate{Year: y, Month: int(m), Day: d}
}

// EthiopianFromTime returns the Ethiopian civil date of t in t's own location.
func EthiopianFromTime(t time.Time) (EthiopianDate, error) {
	return GregorianToEthiopian(GregorianFromTime(t))
}

// Time returns midnight UTC at the start of g.
func (g GregorianDate) Time() time.Time {
	return time.Date(g.Year, time.Month(g.Month), g.Day, 0, 0, 0, 0, time.UTC)
}

// Weekday returns the day of the week of d.
func (d EthiopianDate) Weekday() time.Weekday {
	return weekdayOf(d.JDN())
}

// Weekday returns the day of the week of g.
func (g GregorianDate) Weekday() time.Weekday {
	return weekdayOf(g.JDN())
}

// JDN 0 was a Monday.
func weekdayOf(jdn int) time.Weekday {
	return time.Weekday(floorMod(jdn+1, 7))
}

// String returns d in the numeric day/month/year form.
func (d EthiopianDate) String() string {
	return fmt.Sprintf("%d/%d/%d", d.Day, d.Month, d.Year)
}

// ISO returns g as YYYY-MM-DD.
func (g GregorianDate) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", g.Year, g.Month, g.Day)
}

func (g GregorianDate) String() string {
	return g.ISO()
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - b*floorDiv(a, b)
}
