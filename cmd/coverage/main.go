package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/zapponejosh/ethiocal/internal/calendar"
)

// This tool walks every Gregorian day of a range through /api/v1/days/{date}
// and checks the server's answer against the local calendar package: the
// Ethiopian date, the weekday, and that consecutive days stay consecutive.

// APIResponse matches the API response structure
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// DayResponse is the part of /days/{date} the sweep checks.
type DayResponse struct {
	Ethiopian calendar.EthiopianDate `json:"ethiopian"`
	Gregorian calendar.GregorianDate `json:"gregorian"`
	Weekday   string                 `json:"weekday"`
	Feasts    []calendar.Feast       `json:"feasts"`
}

// TestResult holds the result for a single date
type TestResult struct {
	Date      string `json:"date"`
	Success   bool   `json:"success"`
	Ethiopian string `json:"ethiopian,omitempty"`
	Month     string `json:"month,omitempty"`
	Feasts    int    `json:"feasts"`
	Error     string `json:"error,omitempty"`
}

// MonthStats tracks statistics for each Ethiopian month name
type MonthStats struct {
	Month       string   `json:"month"`
	TotalDays   int      `json:"total_days"`
	FailedDays  int      `json:"failed_days"`
	FailedDates []string `json:"failed_dates,omitempty"`
}

// Analysis aggregates a sweep.
type Analysis struct {
	TotalDays    int
	TotalSuccess int
	TotalFailed  int
	TotalFeasts  int
	ByMonth      map[string]*MonthStats
	AllFailures  []TestResult
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	startYear := flag.Int("start", 2024, "Start year (Gregorian)")
	years := flag.Int("years", 4, "Number of years to test")
	verbose := flag.Bool("v", false, "Verbose output (show each date)")
	outputFile := flag.String("o", "", "Output results to JSON file")
	flag.Parse()

	endYear := *startYear + *years - 1

	fmt.Println("================================================================")
	fmt.Println("ethiocal API - Full Coverage Test")
	fmt.Println("================================================================")
	fmt.Printf("Base URL:    %s\n", *baseURL)
	fmt.Printf("Date Range:  %d-01-01 to %d-12-31\n", *startYear, endYear)
	fmt.Println()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	start := time.Date(*startYear, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(endYear, 12, 31, 0, 0, 0, 0, time.UTC)

	results := testAllDates(client, *baseURL, start, end, os.Stdout, *verbose)
	analysis := analyzeResults(results)

	printSummary(os.Stdout, analysis)
	printFailuresByMonth(os.Stdout, analysis)

	if *outputFile != "" {
		if err := saveResults(*outputFile, analysis); err != nil {
			fmt.Printf("Error saving results: %v\n", err)
		} else {
			fmt.Printf("Results saved to: %s\n", *outputFile)
		}
	}

	if analysis.TotalFailed > 0 {
		os.Exit(1)
	}
}

func testAllDates(client *http.Client, baseURL string, start, end time.Time, out io.Writer, verbose bool) []TestResult {
	totalDays := int(end.Sub(start).Hours()/24) + 1
	fmt.Fprintf(out, "Testing %d days...\n\n", totalDays)

	var (
		results      []TestResult
		failed       int
		lastProgress = -1
		prevJDN      int
	)

	for current, tested := start, 0; !current.After(end); current, tested = current.AddDate(0, 0, 1), tested+1 {
		g := calendar.GregorianFromTime(current)
		result, day := testDate(client, baseURL, g)

		// Consecutive Gregorian days must be consecutive Ethiopian days.
		if result.Success {
			jdn := day.Ethiopian.JDN()
			if prevJDN != 0 && jdn != prevJDN+1 {
				result.Success = false
				result.Error = fmt.Sprintf("not consecutive with previous day (JDN %d after %d)", jdn, prevJDN)
			}
			prevJDN = jdn
		} else {
			prevJDN = 0
		}

		results = append(results, result)
		if !result.Success {
			failed++
		}

		progress := ((tested + 1) * 100) / totalDays
		if progress != lastProgress && progress%25 == 0 {
			fmt.Fprintf(out, "  Progress: %d%% (%d/%d) - Failures: %d\n", progress, tested+1, totalDays, failed)
			lastProgress = progress
		}

		if verbose {
			status := "✓"
			if !result.Success {
				status = "✗"
			}
			fmt.Fprintf(out, "  %s %s: %s [%d feasts]\n", status, result.Date, result.Ethiopian, result.Feasts)
			if !result.Success {
				fmt.Fprintf(out, "      Error: %s\n", result.Error)
			}
		}
	}

	fmt.Fprintln(out)
	return results
}

func testDate(client *http.Client, baseURL string, g calendar.GregorianDate) (TestResult, *DayResponse) {
	result := TestResult{Date: g.ISO()}

	want, err := calendar.GregorianToEthiopian(g)
	if err != nil {
		result.Error = fmt.Sprintf("local conversion: %v", err)
		return result, nil
	}
	result.Month, _ = calendar.EthiopianMonthName(want.Month, calendar.StyleLong)

	resp, err := client.Get(fmt.Sprintf("%s/api/v1/days/%s", baseURL, g.ISO()))
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result, nil
	}
	defer resp.Body.Close()

	var apiResp APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		result.Error = fmt.Sprintf("parse error: %v", err)
		return result, nil
	}
	if !apiResp.Success {
		result.Error = fmt.Sprintf("HTTP %d", resp.StatusCode)
		if apiResp.Error != nil {
			result.Error += ": " + apiResp.Error.Message
		}
		return result, nil
	}

	var day DayResponse
	if err := json.Unmarshal(apiResp.Data, &day); err != nil {
		result.Error = fmt.Sprintf("parse data: %v", err)
		return result, nil
	}
	result.Ethiopian = day.Ethiopian.String()
	result.Feasts = len(day.Feasts)

	switch {
	case day.Ethiopian != want:
		result.Error = fmt.Sprintf("ethiopian date %s, want %s", day.Ethiopian, want)
	case day.Gregorian != g:
		result.Error = fmt.Sprintf("gregorian date %s, want %s", day.Gregorian, g)
	case day.Weekday != calendar.WeekdayName(g.Weekday(), calendar.StyleLong):
		result.Error = fmt.Sprintf("weekday %s, want %s", day.Weekday, calendar.WeekdayName(g.Weekday(), calendar.StyleLong))
	default:
		result.Success = true
	}
	return result, &day
}

func analyzeResults(results []TestResult) *Analysis {
	analysis := &Analysis{
		ByMonth: make(map[string]*MonthStats),
	}

	for _, r := range results {
		analysis.TotalDays++
		analysis.TotalFeasts += r.Feasts

		month := r.Month
		if month == "" {
			month = "(unresolved)"
		}
		if _, ok := analysis.ByMonth[month]; !ok {
			analysis.ByMonth[month] = &MonthStats{Month: month}
		}
		stats := analysis.ByMonth[month]
		stats.TotalDays++

		if r.Success {
			analysis.TotalSuccess++
			continue
		}
		analysis.TotalFailed++
		stats.FailedDays++
		stats.FailedDates = append(stats.FailedDates, r.Date)
		analysis.AllFailures = append(analysis.AllFailures, r)
	}

	return analysis
}

func printSummary(out io.Writer, analysis *Analysis) {
	fmt.Fprintln(out, "================================================================")
	fmt.Fprintln(out, "SUMMARY")
	fmt.Fprintln(out, "================================================================")
	fmt.Fprintf(out, "Total Days Tested: %d\n", analysis.TotalDays)
	if analysis.TotalDays > 0 {
		fmt.Fprintf(out, "Successful:        %d (%.1f%%)\n", analysis.TotalSuccess,
			float64(analysis.TotalSuccess)/float64(analysis.TotalDays)*100)
	}
	fmt.Fprintf(out, "Failed:            %d\n", analysis.TotalFailed)
	fmt.Fprintf(out, "Feast days seen:   %d\n", analysis.TotalFeasts)
	fmt.Fprintln(out)
}

func printFailuresByMonth(out io.Writer, analysis *Analysis) {
	if analysis.TotalFailed == 0 {
		fmt.Fprintln(out, "No failures!")
		return
	}

	fmt.Fprintln(out, "================================================================")
	fmt.Fprintln(out, "FAILURES BY ETHIOPIAN MONTH")
	fmt.Fprintln(out, "================================================================")

	var months []*MonthStats
	for _, stats := range analysis.ByMonth {
		if stats.FailedDays > 0 {
			months = append(months, stats)
		}
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].FailedDays > months[j].FailedDays
	})

	for _, stats := range months {
		fmt.Fprintf(out, "\n%s: %d failures\n", stats.Month, stats.FailedDays)
		for i, date := range stats.FailedDates {
			if i == 5 {
				fmt.Fprintf(out, "  ... and %d more\n", len(stats.FailedDates)-5)
				break
			}
			fmt.Fprintf(out, "  - %s\n", date)
		}
	}
	fmt.Fprintln(out)
}

func saveResults(filename string, analysis *Analysis) error {
	output := struct {
		GeneratedAt string                 `json:"generated_at"`
		Summary     map[string]any         `json:"summary"`
		ByMonth     map[string]*MonthStats `json:"by_month"`
		Failures    []TestResult           `json:"failures"`
	}{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Summary: map[string]any{
			"total_days":    analysis.TotalDays,
			"total_success": analysis.TotalSuccess,
			"total_failed":  analysis.TotalFailed,
			"total_feasts":  analysis.TotalFeasts,
		},
		ByMonth:  analysis.ByMonth,
		Failures: analysis.AllFailures,
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	return os.WriteFile(filename, data, 0644)
}
