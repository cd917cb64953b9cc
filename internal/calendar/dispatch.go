package calendar

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCalendar is returned for a CalendarType outside the enumeration.
var ErrUnknownCalendar = errors.New("unknown calendar")

// CalendarType selects Gregorian or Ethiopian behavior.
type CalendarType int

const (
	// Gregorian is the civil calendar, rendered from ISO dates.
	Gregorian CalendarType = iota
	// Ethiopian is the 13-month Ge'ez calendar.
	Ethiopian
)

func (c CalendarType) String() string {
	switch c {
	case Gregorian:
		return "gregorian"
	case Ethiopian:
		return "ethiopian"
	}
	return fmt.Sprintf("CalendarType(%d)", int(c))
}

// ParseCalendarType accepts "gregorian"/"gc" and "ethiopian"/"ec" in any case.
func ParseCalendarType(s string) (CalendarType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gregorian", "gc":
		return Gregorian, nil
	case "ethiopian", "ec":
		return Ethiopian, nil
	}
	return 0, fmt.Errorf("%w: %q (want gregorian or ethiopian)", ErrUnknownCalendar, s)
}

// Date is a civil date in either calendar.
type Date interface {
	// Calendar is the calendar the date is natively expressed in.
	Calendar() CalendarType
	Ethiopian() (EthiopianDate, error)
	Gregorian() (GregorianDate, error)
}

var (
	_ Date = EthiopianDate{}
	_ Date = GregorianDate{}
)

func (d EthiopianDate) Calendar() CalendarType { return Ethiopian }

func (d EthiopianDate) Ethiopian() (EthiopianDate, error) { return d, d.Validate() }

func (d EthiopianDate) Gregorian() (GregorianDate, error) { return EthiopianToGregorian(d) }

func (g GregorianDate) Calendar() CalendarType { return Gregorian }

func (g GregorianDate) Ethiopian() (EthiopianDate, error) { return GregorianToEthiopian(g) }

func (g GregorianDate) Gregorian() (GregorianDate, error) { return g, g.Validate() }

// FormatDateByCalendar renders d in calendar ct, converting it first when
// ct is not d's native calendar.
func FormatDateByCalendar(d Date, ct CalendarType, style Style) (string, error) {
	switch ct {
	case Ethiopian:
		e, err := d.Ethiopian()
		if err != nil {
			return "", err
		}
		return FormatEthiopianDate(e, style)
	case Gregorian:
		g, err := d.Gregorian()
		if err != nil {
			return "", err
		}
		return FormatGregorianDate(g, style)
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownCalendar, ct)
}

// ParseDateByCalendar parses input as an Ethiopian date (numeric or long
// form) or as an ISO Gregorian date. The result is validated.
func ParseDateByCalendar(input string, ct CalendarType) (Date, error) {
	switch ct {
	case Ethiopian:
		d, ok := ParseEthiopianDate(input)
		if !ok {
			return nil, fmt.Errorf("%w: cannot parse %q as an ethiopian date", ErrInvalidDate, input)
		}
		if err := d.Validate(); err != nil {
			return nil, err
		}
		return d, nil
	case Gregorian:
		g, err := ParseISODate(input)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCalendar, ct)
}
