package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zapponejosh/ethiocal/internal/api"
	"github.com/zapponejosh/ethiocal/internal/config"
	"github.com/zapponejosh/ethiocal/internal/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		Env:             config.EnvDevelopment,
		DefaultCalendar: "ethiopian",
		DefaultStyle:    "long",
	}
	log := logger.Discard()
	handlers := api.NewHandlers(nil, cfg, log, nil)

	srv := httptest.NewServer(api.SetupRoutes(handlers, cfg, log, nil, nil))
	t.Cleanup(srv.Close)
	return srv
}

func TestTestAllDates(t *testing.T) {
	srv := newTestServer(t)

	// Pagume 2016 through the start of 2017, which crosses a year boundary.
	start := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC)

	var out bytes.Buffer
	results := testAllDates(srv.Client(), srv.URL, start, end, &out, true)
	if len(results) != 30 {
		t.Fatalf("got %d results, want 30", len(results))
	}

	analysis := analyzeResults(results)
	if analysis.TotalFailed != 0 {
		t.Fatalf("unexpected failures: %+v", analysis.AllFailures)
	}
	// Enkutatash on 2024-09-11 and Meskel on 2024-09-27.
	if analysis.TotalFeasts != 2 {
		t.Errorf("TotalFeasts = %d, want 2", analysis.TotalFeasts)
	}
	if got := analysis.ByMonth["Pagume"]; got == nil || got.TotalDays != 5 {
		t.Errorf("Pagume stats = %+v, want 5 days", got)
	}
	if !strings.Contains(out.String(), "✓ 2024-09-11: 1/1/2017") {
		t.Errorf("verbose output missing new year line:\n%s", out.String())
	}
}

func TestTestAllDates_WrongServer(t *testing.T) {
	// Always claims it is 1 Meskerem 2017.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"ethiopian":{"year":2017,"month":1,"day":1},"gregorian":{"year":2024,"month":9,"day":11},"weekday":"Rob"}}`))
	}))
	defer srv.Close()

	start := time.Date(2024, 9, 11, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 9, 13, 0, 0, 0, 0, time.UTC)

	results := testAllDates(srv.Client(), srv.URL, start, end, &bytes.Buffer{}, false)
	analysis := analyzeResults(results)

	if analysis.TotalSuccess != 1 || analysis.TotalFailed != 2 {
		t.Fatalf("success=%d failed=%d, want 1 and 2", analysis.TotalSuccess, analysis.TotalFailed)
	}
	if got := analysis.ByMonth["Meskerem"].FailedDays; got != 2 {
		t.Errorf("Meskerem failures = %d, want 2", got)
	}

	var out bytes.Buffer
	printFailuresByMonth(&out, analysis)
	if !strings.Contains(out.String(), "Meskerem: 2 failures") {
		t.Errorf("failure report missing month line:\n%s", out.String())
	}
}

func TestSaveResults(t *testing.T) {
	analysis := analyzeResults([]TestResult{
		{Date: "2024-09-11", Success: true, Month: "Meskerem", Feasts: 1},
		{Date: "2024-09-12", Month: "Meskerem", Error: "boom"},
	})

	path := filepath.Join(t.TempDir(), "results.json")
	if err := saveResults(path, analysis); err != nil {
		t.Fatalf("saveResults: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"total_failed": 1`, `"boom"`, `"Meskerem"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("results file missing %s", want)
		}
	}
}
