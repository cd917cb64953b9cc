package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zapponejosh/ethiocal/internal/calendar"
)

// This script prints the shape of an Ethiopian year: where each month
// starts in the Gregorian calendar, the feasts, and a round-trip check of
// every day. Handy for eyeballing a year against a printed calendar.

func main() {
	year := flag.Int("year", 0, "Ethiopian year to print (default: current year)")
	amharic := flag.Bool("amharic", false, "Use Ge'ez script for names")
	flag.Parse()

	y := *year
	if y == 0 {
		today, err := calendar.CurrentEthiopianDate(calendar.SystemClock{})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		y = today.Year
	}

	style := calendar.StyleLong
	if *amharic {
		style = calendar.StyleAmharic
	}

	if err := printYear(os.Stdout, y, style); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printYear(w io.Writer, year int, style calendar.Style) error {
	if year < 1 {
		return fmt.Errorf("year %d is before year 1", year)
	}

	evangelist := calendar.EvangelistOf(year)
	evangelistName := evangelist.String()
	if style == calendar.StyleAmharic {
		evangelistName = evangelist.Amharic()
	}

	fmt.Fprintf(w, "=== Ethiopian Year %d ===\n\n", year)
	fmt.Fprintf(w, "  Evangelist:  %s\n", evangelistName)
	fmt.Fprintf(w, "  Leap year:   %t\n", calendar.IsEthiopianLeapYear(year))

	newYear, err := calendar.NewYear(year)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "  Starts:      %s (%s)\n\n", newYear.ISO(), newYear.Weekday())

	// ==========================================================================
	// Months
	// ==========================================================================
	fmt.Fprintln(w, "Months:")
	for month := 1; month <= calendar.EthiopianMonths; month++ {
		name, err := calendar.EthiopianMonthName(month, style)
		if err != nil {
			return err
		}
		days, err := calendar.DaysInEthiopianMonth(year, month)
		if err != nil {
			return err
		}
		start, err := calendar.EthiopianToGregorian(calendar.EthiopianDate{Year: year, Month: month, Day: 1})
		if err != nil {
			return err
		}
		end, err := calendar.EthiopianToGregorian(calendar.EthiopianDate{Year: year, Month: month, Day: days})
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %2d %-10s %2d days  %s .. %s\n", month, name, days, start.ISO(), end.ISO())
	}
	fmt.Fprintln(w)

	// ==========================================================================
	// Feasts
	// ==========================================================================
	feasts, err := calendar.FeastsOf(year)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Feasts:")
	for _, f := range feasts {
		name := f.Name
		if style == calendar.StyleAmharic {
			name = f.NameAmharic
		}
		date, err := calendar.FormatEthiopianDate(f.Date, style)
		if err != nil {
			return err
		}
		g, err := calendar.EthiopianToGregorian(f.Date)
		if err != nil {
			return err
		}
		marker := ""
		if f.Movable {
			marker = " *"
		}
		fmt.Fprintf(w, "  %-14s %-20s %s %s%s\n", name, date, g.ISO(), g.Weekday().String()[:3], marker)
	}
	fmt.Fprintln(w, "  (* movable, follows Fasika)")
	fmt.Fprintln(w)

	// ==========================================================================
	// Round trip every day of the year
	// ==========================================================================
	failures := checkYear(year)
	if len(failures) == 0 {
		fmt.Fprintln(w, "Round trip: OK")
		return nil
	}
	fmt.Fprintf(w, "Round trip: %d failures\n", len(failures))
	fmt.Fprintf(w, "  %s\n", strings.Join(failures, "\n  "))
	return fmt.Errorf("round trip failed for %d days", len(failures))
}

// checkYear converts each day of year to Gregorian and back.
func checkYear(year int) []string {
	var failures []string
	for month := 1; month <= calendar.EthiopianMonths; month++ {
		days, _ := calendar.DaysInEthiopianMonth(year, month)
		for day := 1; day <= days; day++ {
			e := calendar.EthiopianDate{Year: year, Month: month, Day: day}
			g, err := calendar.EthiopianToGregorian(e)
			if err != nil {
				failures = append(failures, fmt.Sprintf("%s: %v", e, err))
				continue
			}
			back, err := calendar.GregorianToEthiopian(g)
			if err != nil || back != e {
				failures = append(failures, fmt.Sprintf("%s -> %s -> %s (%v)", e, g.ISO(), back, err))
			}
		}
	}
	return failures
}
