package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/zapponejosh/ethiocal/internal/calendar"
)

// =============================================================================
// Response Types - Match the actual API response structure
// =============================================================================

type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// DateView is the response for the conversion, parse and arithmetic routes.
type DateView struct {
	Ethiopian calendar.EthiopianDate `json:"ethiopian"`
	Gregorian calendar.GregorianDate `json:"gregorian"`
	Calendar  string                 `json:"calendar"`
	Style     string                 `json:"style"`
	Formatted string                 `json:"formatted"`
	Weekday   string                 `json:"weekday"`
	LeapYear  bool                   `json:"leap_year"`
}

// FormatResponse is the response for /format
type FormatResponse struct {
	Formatted string `json:"formatted"`
}

// CompareResponse is the response for /ethiopian/compare
type CompareResponse struct {
	Result      int `json:"result"`
	DaysBetween int `json:"days_between"`
}

// YearResponse is the response for /ethiopian/years/{year}
type YearResponse struct {
	Year       int              `json:"year"`
	Evangelist string           `json:"evangelist"`
	LeapYear   bool             `json:"leap_year"`
	Months     []map[string]any `json:"months"`
	Feasts     []calendar.Feast `json:"feasts"`
}

// DayResponse is the response for /days/{date}
type DayResponse struct {
	Ethiopian calendar.EthiopianDate `json:"ethiopian"`
	Feasts    []calendar.Feast       `json:"feasts"`
}

// HealthResponse is the response for /health
type HealthResponse struct {
	Status   string `json:"status"`
	Holidays *int   `json:"holidays,omitempty"`
}

// =============================================================================
// Test Runner
// =============================================================================

type TestRunner struct {
	baseURL      string
	client       *http.Client
	out          io.Writer
	verbose      bool
	successCount int
	errorCount   int
	errors       []string
}

func NewTestRunner(baseURL string, out io.Writer, verbose bool) *TestRunner {
	return &TestRunner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		out:     out,
		verbose: verbose,
	}
}

func (tr *TestRunner) Run() {
	fmt.Fprintln(tr.out, "==============================================")
	fmt.Fprintln(tr.out, "ethiocal API Test Suite")
	fmt.Fprintln(tr.out, "==============================================")
	fmt.Fprintf(tr.out, "Base URL: %s\n", tr.baseURL)

	tr.testHealth()
	tr.testToday()
	tr.testConversions()
	tr.testFormatAndParse()
	tr.testArithmetic()
	tr.testYearAndDay()
	tr.testEdgeCases()

	tr.printSummary()
}

// =============================================================================
// Test Groups
// =============================================================================

func (tr *TestRunner) testHealth() {
	tr.printSection("Health Check")

	var health HealthResponse
	if err := tr.get("/health", &health); err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	if health.Status == "healthy" {
		msg := "Health check passed"
		if health.Holidays != nil {
			msg += fmt.Sprintf(" (%d holidays stored)", *health.Holidays)
		}
		tr.recordSuccess(msg)
	} else {
		tr.recordError("Health", fmt.Sprintf("Unexpected status: %s", health.Status))
	}
}

func (tr *TestRunner) testToday() {
	tr.printSection("Today")

	var view DateView
	if err := tr.get("/api/v1/today?calendar=ethiopian&style=long", &view); err != nil {
		tr.recordError("Today", err.Error())
		return
	}

	// The server clock may not match ours, so only check consistency.
	back, err := calendar.GregorianToEthiopian(view.Gregorian)
	if err != nil || back != view.Ethiopian {
		tr.recordError("Today", fmt.Sprintf("%s does not convert to %s", view.Gregorian, view.Ethiopian))
		return
	}
	tr.recordSuccess(fmt.Sprintf("Today is %s (%s)", view.Formatted, view.Gregorian))
}

func (tr *TestRunner) testConversions() {
	tr.printSection("Conversions")

	gregorianCases := []struct {
		date string
		want calendar.EthiopianDate
	}{
		{"2023-09-12", calendar.EthiopianDate{Year: 2016, Month: 1, Day: 1}},
		{"2024-01-07", calendar.EthiopianDate{Year: 2016, Month: 4, Day: 28}},
		{"2024-09-10", calendar.EthiopianDate{Year: 2016, Month: 13, Day: 5}},
		{"2025-01-07", calendar.EthiopianDate{Year: 2017, Month: 4, Day: 29}},
		{"2007-09-12", calendar.EthiopianDate{Year: 2000, Month: 1, Day: 1}},
	}
	for _, tc := range gregorianCases {
		var view DateView
		if err := tr.get("/api/v1/convert/gregorian/"+tc.date, &view); err != nil {
			tr.recordError("Gregorian "+tc.date, err.Error())
			continue
		}
		if view.Ethiopian != tc.want {
			tr.recordError("Gregorian "+tc.date, fmt.Sprintf("got %s, want %s", view.Ethiopian, tc.want))
			continue
		}
		tr.recordSuccess(fmt.Sprintf("%s -> %s", tc.date, view.Formatted))
	}

	ethiopianCases := []struct {
		path string
		want string
	}{
		{"2017/1/1", "2024-09-11"},
		{"2015/13/6", "2023-09-11"},
		{"2017/5/11", "2025-01-19"},
		{"2017/6/23", "2025-03-02"},
	}
	for _, tc := range ethiopianCases {
		var view DateView
		if err := tr.get("/api/v1/convert/ethiopian/"+tc.path, &view); err != nil {
			tr.recordError("Ethiopian "+tc.path, err.Error())
			continue
		}
		if view.Gregorian.ISO() != tc.want {
			tr.recordError("Ethiopian "+tc.path, fmt.Sprintf("got %s, want %s", view.Gregorian, tc.want))
			continue
		}
		tr.recordSuccess(fmt.Sprintf("%s -> %s", tc.path, view.Gregorian))
	}
}

func (tr *TestRunner) testFormatAndParse() {
	tr.printSection("Format and Parse")

	formatCases := []struct {
		query string
		want  string
	}{
		{"date=2024-09-11&calendar=ethiopian&style=short", "1/1/2017"},
		{"date=2024-09-11&calendar=ethiopian&style=long", "1 Meskerem 2017"},
		{"date=2024-09-11&calendar=ethiopian&style=amharic", "1 መስከረም 2017"},
		{"date=2024-09-11&calendar=gregorian&style=long", "11 September 2024"},
		{"date=" + url.QueryEscape("1/1/2017") + "&from=ethiopian&calendar=gregorian&style=short", "11/9/2024"},
	}
	for _, tc := range formatCases {
		var resp FormatResponse
		if err := tr.get("/api/v1/format?"+tc.query, &resp); err != nil {
			tr.recordError("Format "+tc.query, err.Error())
			continue
		}
		if resp.Formatted != tc.want {
			tr.recordError("Format "+tc.query, fmt.Sprintf("got %q, want %q", resp.Formatted, tc.want))
			continue
		}
		tr.recordSuccess(fmt.Sprintf("format -> %s", resp.Formatted))
	}

	parseCases := []struct {
		input string
		want  calendar.EthiopianDate
	}{
		{"17/1/2017", calendar.EthiopianDate{Year: 2017, Month: 1, Day: 17}},
		{"17 MESKEREM 2017", calendar.EthiopianDate{Year: 2017, Month: 1, Day: 17}},
		{"29 ታኅሣሥ 2017", calendar.EthiopianDate{Year: 2017, Month: 4, Day: 29}},
	}
	for _, tc := range parseCases {
		var view DateView
		if err := tr.get("/api/v1/parse?q="+url.QueryEscape(tc.input), &view); err != nil {
			tr.recordError("Parse "+tc.input, err.Error())
			continue
		}
		if view.Ethiopian != tc.want {
			tr.recordError("Parse "+tc.input, fmt.Sprintf("got %s, want %s", view.Ethiopian, tc.want))
			continue
		}
		tr.recordSuccess(fmt.Sprintf("parse %q -> %s", tc.input, view.Ethiopian))
	}
}

func (tr *TestRunner) testArithmetic() {
	tr.printSection("Arithmetic")

	var view DateView
	body := `{"date":{"year":2016,"month":13,"day":5},"days":1}`
	if err := tr.post("/api/v1/ethiopian/add", body, &view); err != nil {
		tr.recordError("Add", err.Error())
	} else if want := (calendar.EthiopianDate{Year: 2017, Month: 1, Day: 1}); view.Ethiopian != want {
		tr.recordError("Add", fmt.Sprintf("got %s, want %s", view.Ethiopian, want))
	} else {
		tr.recordSuccess("5/13/2016 + 1 day = 1/1/2017")
	}

	var cmp CompareResponse
	body = `{"a":{"year":2016,"month":1,"day":1},"b":{"year":2017,"month":1,"day":1}}`
	if err := tr.post("/api/v1/ethiopian/compare", body, &cmp); err != nil {
		tr.recordError("Compare", err.Error())
	} else if cmp.Result != -1 || cmp.DaysBetween != 365 {
		tr.recordError("Compare", fmt.Sprintf("got result %d, %d days", cmp.Result, cmp.DaysBetween))
	} else {
		tr.recordSuccess("2016 has 365 days")
	}
}

func (tr *TestRunner) testYearAndDay() {
	tr.printSection("Years and Days")

	var year YearResponse
	if err := tr.get("/api/v1/ethiopian/years/2015", &year); err != nil {
		tr.recordError("Year 2015", err.Error())
	} else if !year.LeapYear || year.Evangelist != "Luke" || len(year.Months) != calendar.EthiopianMonths {
		tr.recordError("Year 2015", fmt.Sprintf("leap=%t evangelist=%s months=%d", year.LeapYear, year.Evangelist, len(year.Months)))
	} else {
		tr.recordSuccess(fmt.Sprintf("2015 is a leap year of %s with %d feasts", year.Evangelist, len(year.Feasts)))
	}

	var day DayResponse
	if err := tr.get("/api/v1/days/2025-04-20", &day); err != nil {
		tr.recordError("Day 2025-04-20", err.Error())
		return
	}
	if !hasFeast(day.Feasts, "Fasika") {
		tr.recordError("Day 2025-04-20", "Fasika missing")
		return
	}
	tr.recordSuccess(fmt.Sprintf("2025-04-20 is Fasika (%s)", day.Ethiopian))
}

func (tr *TestRunner) testEdgeCases() {
	tr.printSection("Edge Cases")

	cases := []struct {
		name   string
		path   string
		status int
		code   string
	}{
		{"Pagume 6 in a common year", "/api/v1/convert/ethiopian/2016/13/6", http.StatusBadRequest, "INVALID_DATE"},
		{"Month 14", "/api/v1/convert/ethiopian/2016/14/1", http.StatusBadRequest, "INVALID_MONTH"},
		{"Before the epoch", "/api/v1/convert/gregorian/0008-08-26", http.StatusUnprocessableEntity, "OUT_OF_RANGE"},
		{"Unknown style", "/api/v1/today?style=fancy", http.StatusBadRequest, "UNSUPPORTED_STYLE"},
		{"Unknown calendar", "/api/v1/today?calendar=julian", http.StatusBadRequest, "UNKNOWN_CALENDAR"},
		{"Amharic Gregorian", "/api/v1/convert/ethiopian/2017/1/1?style=amharic", http.StatusBadRequest, "UNSUPPORTED_STYLE"},
		{"Unparseable text", "/api/v1/parse?q=tomorrow", http.StatusBadRequest, "NO_MATCH"},
	}
	for _, tc := range cases {
		resp, status, err := tr.do(http.MethodGet, tc.path, "")
		if err != nil {
			tr.recordError(tc.name, err.Error())
			continue
		}
		if status != tc.status || resp.Error == nil || resp.Error.Code != tc.code {
			code := ""
			if resp.Error != nil {
				code = resp.Error.Code
			}
			tr.recordError(tc.name, fmt.Sprintf("got %d %s, want %d %s", status, code, tc.status, tc.code))
			continue
		}
		tr.recordSuccess(fmt.Sprintf("%s -> %d %s", tc.name, status, tc.code))
	}
}

// =============================================================================
// Helper Methods
// =============================================================================

func hasFeast(feasts []calendar.Feast, name string) bool {
	for _, f := range feasts {
		if f.Name == name {
			return true
		}
	}
	return false
}

// get fetches path and decodes the data of a successful response into target.
func (tr *TestRunner) get(path string, target any) error {
	return tr.expectData(http.MethodGet, path, "", target)
}

func (tr *TestRunner) post(path, body string, target any) error {
	return tr.expectData(http.MethodPost, path, body, target)
}

func (tr *TestRunner) expectData(method, path, body string, target any) error {
	resp, _, err := tr.do(method, path, body)
	if err != nil {
		return err
	}

	if !resp.Success {
		errMsg := "unknown error"
		if resp.Error != nil {
			errMsg = resp.Error.Message
		}
		return fmt.Errorf("API error: %s", errMsg)
	}

	if tr.verbose {
		fmt.Fprintf(tr.out, "    %s %s\n    %s\n", method, path, resp.Data)
	}

	if err := json.Unmarshal(resp.Data, target); err != nil {
		return fmt.Errorf("parse data: %w", err)
	}
	return nil
}

func (tr *TestRunner) do(method, path, body string) (*APIResponse, int, error) {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, tr.baseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := tr.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read error: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("parse error: %w", err)
	}
	return &apiResp, resp.StatusCode, nil
}

func (tr *TestRunner) printSection(name string) {
	fmt.Fprintln(tr.out)
	fmt.Fprintf(tr.out, "--- %s ---\n", name)
	fmt.Fprintln(tr.out)
}

func (tr *TestRunner) recordSuccess(msg string) {
	tr.successCount++
	fmt.Fprintf(tr.out, "  ✓ %s\n", msg)
}

func (tr *TestRunner) recordError(context, msg string) {
	tr.errorCount++
	errStr := fmt.Sprintf("%s: %s", context, msg)
	tr.errors = append(tr.errors, errStr)
	fmt.Fprintf(tr.out, "  ✗ %s\n", errStr)
}

func (tr *TestRunner) printSummary() {
	fmt.Fprintln(tr.out)
	fmt.Fprintln(tr.out, "==============================================")
	fmt.Fprintln(tr.out, "Summary")
	fmt.Fprintln(tr.out, "==============================================")
	fmt.Fprintf(tr.out, "  Passed: %d\n", tr.successCount)
	fmt.Fprintf(tr.out, "  Failed: %d\n", tr.errorCount)
	fmt.Fprintln(tr.out)

	if tr.errorCount > 0 {
		fmt.Fprintln(tr.out, "Failures:")
		for _, err := range tr.errors {
			fmt.Fprintf(tr.out, "  • %s\n", err)
		}
		fmt.Fprintln(tr.out)
		fmt.Fprintf(tr.out, "Tests completed with %d failure(s)\n", tr.errorCount)
		return
	}

	fmt.Fprintln(tr.out, "All tests passed! ✓")
}

// =============================================================================
// Main
// =============================================================================

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	verbose := flag.Bool("v", false, "Verbose output (show response bodies)")
	flag.Parse()

	// Check if server is reachable
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	runner := NewTestRunner(*baseURL, os.Stdout, *verbose)
	runner.Run()

	if runner.errorCount > 0 {
		os.Exit(1)
	}
}
