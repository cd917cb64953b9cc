package calendar

import "fmt"

// Evangelist names the four-year cycle an Ethiopian year belongs to.
type Evangelist int

// The cycle follows year mod 4. Luke's year is the leap year.
const (
	EvangelistJohn Evangelist = iota
	EvangelistMatthew
	EvangelistMark
	EvangelistLuke
)

// EvangelistOf returns the evangelist of an Ethiopian year.
//
// Examples:
//   - 2015: Luke (ends with Pagume 6)
//   - 2016: John
//   - 2017: Matthew
func EvangelistOf(year int) Evangelist {
	return Evangelist(floorMod(year, 4))
}

func (e Evangelist) String() string {
	switch e {
	case EvangelistJohn:
		return "John"
	case EvangelistMatthew:
		return "Matthew"
	case EvangelistMark:
		return "Mark"
	case EvangelistLuke:
		return "Luke"
	}
	return fmt.Sprintf("Evangelist(%d)", int(e))
}

// Amharic returns the Ge'ez-script name.
func (e Evangelist) Amharic() string {
	switch e {
	case EvangelistJohn:
		return "ዮሐንስ"
	case EvangelistMatthew:
		return "ማቴዎስ"
	case EvangelistMark:
		return "ማርቆስ"
	case EvangelistLuke:
		return "ሉቃስ"
	}
	return ""
}

// NewYear returns the Gregorian date of Meskerem 1 of an Ethiopian year.
// It is September 11, or September 12 when the previous year was a leap
// year (until 2100 G.C.).
func NewYear(year int) (GregorianDate, error) {
	return EthiopianToGregorian(EthiopianDate{Year: year, Month: 1, Day: 1})
}
