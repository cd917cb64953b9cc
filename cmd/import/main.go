// Command import loads a holiday JSON file into the SQLite database.
//
// Usage:
//
//	go run ./cmd/import -json data/holidays.json -db data/ethiocal.db
//
// This tool:
// 1. Parses and validates the holiday JSON file
// 2. Creates/opens the SQLite database and runs migrations
// 3. Imports all holidays in a single transaction
//
// Holidays that already exist (same name, month and day) are skipped, so
// the import can be run repeatedly against the same database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/zapponejosh/ethiocal/internal/calendar"
	"github.com/zapponejosh/ethiocal/internal/database"
)

func main() {
	jsonPath := flag.String("json", "data/holidays.json", "Path to holiday JSON file")
	dbPath := flag.String("db", "data/ethiocal.db", "Path to SQLite database")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	if err := run(*jsonPath, *dbPath, logger, os.Stdout); err != nil {
		logger.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("import complete")
}

func run(jsonPath, dbPath string, logger *slog.Logger, out io.Writer) error {
	ctx := context.Background()
	startTime := time.Now()

	// =========================================================================
	// Step 1: Read and validate JSON
	// =========================================================================
	logger.Info("reading JSON file", slog.String("path", jsonPath))

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("read JSON file: %w", err)
	}

	importData, err := parseImport(data)
	if err != nil {
		return err
	}

	logger.Info("parsed JSON",
		slog.Int("holidays", len(importData.Holidays)),
		slog.String("source", importData.Metadata.Source),
		slog.String("generated_at", importData.Metadata.GeneratedAt),
	)

	// =========================================================================
	// Step 2: Open database and run migrations
	// =========================================================================
	logger.Info("opening database", slog.String("path", dbPath))

	db, err := database.Open(database.DefaultConfig(dbPath), logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	migrated, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("migrations complete", slog.Int("applied", migrated))

	// =========================================================================
	// Step 3: Import in a transaction
	// =========================================================================
	var stats ImportStats
	err = db.WithTx(ctx, func(tx *database.Tx) error {
		return importHolidays(ctx, tx, importData.Holidays, logger, &stats)
	})
	if err != nil {
		return fmt.Errorf("import data: %w", err)
	}

	// =========================================================================
	// Step 4: Verify
	// =========================================================================
	byKind, err := db.CountHolidaysByKind(ctx)
	if err != nil {
		return fmt.Errorf("count holidays: %w", err)
	}

	elapsed := time.Since(startTime)
	total := 0
	for _, n := range byKind {
		total += n
	}

	logger.Info("import verified",
		slog.Int("total_holidays", total),
		slog.Duration("elapsed", elapsed),
	)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "=== Import Summary ===")
	fmt.Fprintf(out, "Holidays imported:   %d\n", stats.Imported)
	fmt.Fprintf(out, "Already present:     %d\n", stats.Skipped)
	for _, kind := range database.ValidHolidayKinds() {
		fmt.Fprintf(out, "Total %-14s %d\n", string(kind)+":", byKind[kind])
	}
	fmt.Fprintf(out, "Time elapsed:        %v\n", elapsed.Round(time.Millisecond))

	return nil
}

// ImportStats tracks import statistics.
type ImportStats struct {
	Imported int
	Skipped  int
}

// parseImport decodes an import file and checks every entry before anything
// touches the database.
func parseImport(data []byte) (*database.ImportData, error) {
	var importData database.ImportData
	if err := json.Unmarshal(data, &importData); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}

	var problems []string
	for i, h := range importData.Holidays {
		if err := validateHoliday(h); err != nil {
			problems = append(problems, fmt.Sprintf("holiday %d (%q): %v", i+1, h.Name, err))
		}
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid import file:\n  %s", strings.Join(problems, "\n  "))
	}

	return &importData, nil
}

// validateHoliday checks a single entry. Day limits use a leap year so that
// Pagume 6 is accepted.
func validateHoliday(h database.ImportHoliday) error {
	if strings.TrimSpace(h.Name) == "" {
		return errors.New("name is required")
	}
	if h.Kind != "" && !database.HolidayKind(h.Kind).IsValid() {
		return fmt.Errorf("unknown kind %q", h.Kind)
	}
	return calendar.EthiopianDate{Year: 2015, Month: h.Month, Day: h.Day}.Validate()
}

// importHolidays creates each holiday, counting duplicates as skipped.
func importHolidays(ctx context.Context, tx *database.Tx, holidays []database.ImportHoliday, logger *slog.Logger, stats *ImportStats) error {
	for i, h := range holidays {
		holiday := &database.Holiday{
			Name:        strings.TrimSpace(h.Name),
			NameAmharic: h.NameAmharic,
			Month:       h.Month,
			Day:         h.Day,
			Kind:        database.HolidayKind(h.Kind),
			Description: h.Description,
		}

		err := tx.CreateHoliday(ctx, holiday)
		switch {
		case errors.Is(err, database.ErrDuplicate):
			logger.Debug("holiday already present",
				slog.String("name", holiday.Name),
				slog.Int("month", holiday.Month),
				slog.Int("day", holiday.Day),
			)
			stats.Skipped++
			continue
		case err != nil:
			return fmt.Errorf("create holiday %d (%s): %w", i+1, holiday.Name, err)
		}

		stats.Imported++
		logger.Debug("holiday imported",
			slog.Int64("id", holiday.ID),
			slog.String("name", holiday.Name),
		)
	}

	return nil
}
