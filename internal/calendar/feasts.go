package calendar

import (
	"fmt"
	"sort"
)

// Feast is an observance of the Ethiopian Orthodox calendar.
type Feast struct {
	Name        string        `json:"name"`
	NameAmharic string        `json:"name_am"`
	Date        EthiopianDate `json:"date"`
	Movable     bool          `json:"movable"`
}

// Fasika calculates Ethiopian Orthodox Easter for an Ethiopian year.
//
// Easter is computed with the Julian computus (Meeus) for the Julian year
// that Ethiopian year overlaps in spring, then converted through the JDN.
func Fasika(year int) EthiopianDate {
	jy := year + 8

	a := jy % 4
	b := jy % 7
	c := jy % 19
	d := (19*c + 15) % 30
	e := (2*a + 4*b - d + 34) % 7
	month := (d + e + 114) / 31
	day := (d+e+114)%31 + 1

	return JDNToEthiopian(julianToJDN(jy, month, day))
}

// julianToJDN converts a Julian calendar date to its JDN.
func julianToJDN(year, month, day int) int {
	a := (14 - month) / 12
	y := year + 4800 - a
	m := month + 12*a - 3
	return day + (153*m+2)/5 + 365*y + y/4 - 32083
}

// movableFeasts are keyed by their offset in days from Fasika.
var movableFeasts = []struct {
	name, nameAm string
	offset       int
}{
	{"Tsome Nenewe", "ጾመ ነነዌ", -69},
	{"Abiy Tsom", "ዐቢይ ጾም", -55},
	{"Hosanna", "ሆሣዕና", -7},
	{"Siklet", "ስቅለት", -2},
	{"Fasika", "ፋሲካ", 0},
	{"Erget", "ዕርገት", 39},
	{"Paraclete", "ጰራቅሊጦስ", 49},
}

// FeastsOf returns the fixed and movable feasts of year in date order.
//
// Genna falls on Tahsas 29, or Tahsas 28 in the year following a leap year,
// which keeps it on the same Gregorian day.
func FeastsOf(year int) ([]Feast, error) {
	if year < 1 {
		return nil, fmt.Errorf("%w: year %d is before year 1", ErrInvalidDate, year)
	}

	gennaDay := 29
	if IsEthiopianLeapYear(year - 1) {
		gennaDay = 28
	}

	feasts := []Feast{
		{Name: "Enkutatash", NameAmharic: "እንቁጣጣሽ", Date: EthiopianDate{year, 1, 1}},
		{Name: "Meskel", NameAmharic: "መስቀል", Date: EthiopianDate{year, 1, 17}},
		{Name: "Genna", NameAmharic: "ገና", Date: EthiopianDate{year, 4, gennaDay}},
		{Name: "Timket", NameAmharic: "ጥምቀት", Date: EthiopianDate{year, 5, 11}},
	}

	fasika := Fasika(year).JDN()
	for _, m := range movableFeasts {
		feasts = append(feasts, Feast{
			Name:        m.name,
			NameAmharic: m.nameAm,
			Date:        JDNToEthiopian(fasika + m.offset),
			Movable:     true,
		})
	}

	sort.SliceStable(feasts, func(i, j int) bool {
		return feasts[i].Date.Before(feasts[j].Date)
	})
	return feasts, nil
}

// FeastsOn returns the feasts falling on d.
func FeastsOn(d EthiopianDate) ([]Feast, error) {
	all, err := FeastsOf(d.Year)
	if err != nil {
		return nil, err
	}
	var out []Feast
	for _, f := range all {
		if f.Date == d {
			out = append(out, f)
		}
	}
	return out, nil
}
