package calendar

import (
	"cmp"
	"time"
)

// CompareEthiopianDates returns -1, 0 or +1 as a is before, equal to, or
// after b.
func CompareEthiopianDates(a, b EthiopianDate) int {
	if c := cmp.Compare(a.Year, b.Year); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Month, b.Month); c != 0 {
		return c
	}
	return cmp.Compare(a.Day, b.Day)
}

// Before reports whether d is before other.
func (d EthiopianDate) Before(other EthiopianDate) bool {
	return CompareEthiopianDates(d, other) < 0
}

// After reports whether d is after other.
func (d EthiopianDate) After(other EthiopianDate) bool {
	return CompareEthiopianDates(d, other) > 0
}

// AddDaysToEthiopian returns the date n days after d (before d when n is
// negative). The arithmetic is done on the Gregorian side with time.Time.
func AddDaysToEthiopian(d EthiopianDate, n int) (EthiopianDate, error) {
	g, err := EthiopianToGregorian(d)
	if err != nil {
		return EthiopianDate{}, err
	}
	return EthiopianFromTime(g.Time().AddDate(0, 0, n))
}

// DaysBetween returns the number of days from a to b, negative when b is
// before a.
func DaysBetween(a, b EthiopianDate) (int, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	return b.JDN() - a.JDN(), nil
}

// MonthDays lists every day of month in year, in order.
func MonthDays(year, month int) ([]EthiopianDate, error) {
	first := EthiopianDate{Year: year, Month: month, Day: 1}
	if err := first.Validate(); err != nil {
		return nil, err
	}
	n, _ := DaysInEthiopianMonth(year, month)
	days := make([]EthiopianDate, n)
	for i := range days {
		days[i] = EthiopianDate{Year: year, Month: month, Day: i + 1}
	}
	return days, nil
}

// Clock supplies the current time to the "today" accessors.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to a Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock returns a Clock that always reports t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// CurrentGregorianDate returns today's civil date according to c.
func CurrentGregorianDate(c Clock) GregorianDate {
	return GregorianFromTime(c.Now())
}

// CurrentEthiopianDate returns today's Ethiopian civil date according to c.
func CurrentEthiopianDate(c Clock) (EthiopianDate, error) {
	return EthiopianFromTime(c.Now())
}
