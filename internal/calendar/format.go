package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnsupportedStyle is returned when a Style is unknown or does not apply
// to the requested calendar.
var ErrUnsupportedStyle = errors.New("unsupported style")

// Style selects how a date is rendered.
type Style int

const (
	// StyleShort renders "{day}/{month}/{year}" with no leading zeros.
	StyleShort Style = iota
	// StyleLong renders "{day} {month name} {year}" in Latin script.
	StyleLong
	// StyleAmharic renders "{day} {month name} {year}" in Ge'ez script.
	// Only Ethiopian dates support it.
	StyleAmharic
)

func (s Style) String() string {
	switch s {
	case StyleShort:
		return "short"
	case StyleLong:
		return "long"
	case StyleAmharic:
		return "amharic"
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// ParseStyle parses "short", "long" or "amharic" in any case.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "short":
		return StyleShort, nil
	case "long":
		return StyleLong, nil
	case "amharic":
		return StyleAmharic, nil
	}
	return 0, fmt.Errorf("%w: %q (want short, long or amharic)", ErrUnsupportedStyle, s)
}

var ethiopianMonthNames = [EthiopianMonths]string{
	"Meskerem", "Tikimt", "Hidar", "Tahsas", "Tir", "Yekatit", "Megabit",
	"Miyazya", "Ginbot", "Sene", "Hamle", "Nehase", "Pagume",
}

var ethiopianMonthNamesGeez = [EthiopianMonths]string{
	"መስከረም", "ጥቅምት", "ኅዳር", "ታኅሣሥ", "ጥር", "የካቲት", "መጋቢት",
	"ሚያዝያ", "ግንቦት", "ሰኔ", "ሐምሌ", "ነሐሴ", "ጳጉሜ",
}

// Indexed by time.Weekday.
var weekdayNames = [7]string{"Ehud", "Segno", "Maksegno", "Rob", "Hamus", "Arb", "Kidame"}

var weekdayNamesGeez = [7]string{"እሑድ", "ሰኞ", "ማክሰኞ", "ረቡዕ", "ሐሙስ", "ዓርብ", "ቅዳሜ"}

// EthiopianMonthName returns the name of month in Latin script for
// StyleShort and StyleLong, or in Ge'ez script for StyleAmharic.
func EthiopianMonthName(month int, style Style) (string, error) {
	if month < 1 || month > EthiopianMonths {
		return "", fmt.Errorf("%w: %d (want 1-%d)", ErrInvalidMonth, month, EthiopianMonths)
	}
	switch style {
	case StyleShort, StyleLong:
		return ethiopianMonthNames[month-1], nil
	case StyleAmharic:
		return ethiopianMonthNamesGeez[month-1], nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedStyle, style)
}

// GregorianMonthName returns the English name of month.
func GregorianMonthName(month int) (string, error) {
	if month < 1 || month > 12 {
		return "", fmt.Errorf("%w: %d (want 1-12)", ErrInvalidMonth, month)
	}
	return time.Month(month).String(), nil
}

// WeekdayName returns the Amharic name of w, transliterated into Latin
// script or, for StyleAmharic, written in Ge'ez script. A w outside
// Sunday..Saturday falls back to w.String().
func WeekdayName(w time.Weekday, style Style) string {
	if w < time.Sunday || w > time.Saturday {
		return w.String()
	}
	if style == StyleAmharic {
		return weekdayNamesGeez[w]
	}
	return weekdayNames[w]
}

// FormatEthiopianDate renders d in the given style.
func FormatEthiopianDate(d EthiopianDate, style Style) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	switch style {
	case StyleShort:
		return d.String(), nil
	case StyleLong:
		return fmt.Sprintf("%d %s %d", d.Day, ethiopianMonthNames[d.Month-1], d.Year), nil
	case StyleAmharic:
		return fmt.Sprintf("%d %s %d", d.Day, ethiopianMonthNamesGeez[d.Month-1], d.Year), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedStyle, style)
}

// FormatEthiopianDateWithWeekday renders d like FormatEthiopianDate,
// prefixed by its weekday name, e.g. "Rob, 1 Meskerem 2017".
func FormatEthiopianDateWithWeekday(d EthiopianDate, style Style) (string, error) {
	s, err := FormatEthiopianDate(d, style)
	if err != nil {
		return "", err
	}
	sep := ", "
	if style == StyleAmharic {
		sep = "፣ "
	}
	return WeekdayName(d.Weekday(), style) + sep + s, nil
}

// FormatGregorianDate renders g as "{day}/{month}/{year}" or
// "{day} {January} {year}". StyleAmharic is not supported.
func FormatGregorianDate(g GregorianDate, style Style) (string, error) {
	if err := g.Validate(); err != nil {
		return "", err
	}
	switch style {
	case StyleShort:
		return fmt.Sprintf("%d/%d/%d", g.Day, g.Month, g.Year), nil
	case StyleLong:
		return fmt.Sprintf("%d %s %d", g.Day, time.Month(g.Month), g.Year), nil
	}
	return "", fmt.Errorf("%w: %s for gregorian dates", ErrUnsupportedStyle, style)
}
