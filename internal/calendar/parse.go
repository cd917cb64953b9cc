package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	// "1/1/2017", "01/13/2015", "1/1/10000"
	numericDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d+)$`)
	// "1 Meskerem 2017", "1 መስከረም 2017"
	longDateRe = regexp.MustCompile(`^(\d{1,2})\s+(\S+)\s+(\d+)$`)
)

// Ge'ez names compared after NFC normalization.
var geezMonthIndex = func() map[string]int {
	idx := make(map[string]int, EthiopianMonths)
	for i, name := range ethiopianMonthNamesGeez {
		idx[norm.NFC.String(name)] = i + 1
	}
	return idx
}()

// LookupEthiopianMonth resolves a month name to its number. Latin names
// match case-insensitively and are tried first; Ge'ez names must match
// exactly.
func LookupEthiopianMonth(name string) (int, bool) {
	// A Caser is stateful, so each call gets its own.
	fold := cases.Fold()
	folded := fold.String(name)
	for i, latin := range ethiopianMonthNames {
		if fold.String(latin) == folded {
			return i + 1, true
		}
	}
	if month, ok := geezMonthIndex[norm.NFC.String(name)]; ok {
		return month, true
	}
	return 0, false
}

// ParseEthiopianDate recognizes "D/M/YYYY" and "D MonthName YYYY".
// It reports false when input matches neither form. The returned date is
// not validated: "31/2/2017" parses, and callers must check it with
// IsValidEthiopianDate or Validate before use.
func ParseEthiopianDate(input string) (EthiopianDate, bool) {
	s := strings.TrimSpace(norm.NFC.String(input))

	if m := numericDateRe.FindStringSubmatch(s); m != nil {
		return EthiopianDate{Year: atoi(m[3]), Month: atoi(m[2]), Day: atoi(m[1])}, true
	}

	if m := longDateRe.FindStringSubmatch(s); m != nil {
		month, ok := LookupEthiopianMonth(m[2])
		if !ok {
			return EthiopianDate{}, false
		}
		return EthiopianDate{Year: atoi(m[3]), Month: month, Day: atoi(m[1])}, true
	}

	return EthiopianDate{}, false
}

// ParseISODate parses a Gregorian date in YYYY-MM-DD format.
func ParseISODate(s string) (GregorianDate, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return GregorianDate{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrInvalidDate, s)
	}
	return GregorianFromTime(t), nil
}

// atoi is only called on regexp-matched digit runs. A run too long for an
// int yields 0, which Validate rejects.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		// Atoi clamps out-of-range input to the int limits.
		return 0
	}
	return n
}
