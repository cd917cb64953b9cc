package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zapponejosh/ethiocal/internal/calendar"
	"github.com/zapponejosh/ethiocal/internal/config"
	"github.com/zapponejosh/ethiocal/internal/database"
)

// =============================================================================
// TEST SETUP HELPERS
// =============================================================================

const testAPIKey = "test-admin-key"

// testEnv is a complete server backed by an in-memory database, with the
// clock fixed at 2024-09-11 10:00 UTC (Meskerem 1, 2017).
type testEnv struct {
	db      *database.DB
	cfg     *config.Config
	metrics *Metrics
	router  http.Handler
}

func testConfig() *config.Config {
	return &config.Config{
		Port:            8080,
		Env:             config.EnvDevelopment,
		DatabasePath:    ":memory:",
		APIKey:          testAPIKey,
		LogLevel:        "error",
		LogFormat:       "text",
		MetricsEnabled:  true,
		DefaultCalendar: "ethiopian",
		DefaultStyle:    "long",
	}
}

// setupTest creates a fresh test environment. modify, if given, adjusts
// the config before the router is built.
func setupTest(t *testing.T, modify ...func(*config.Config)) *testEnv {
	t.Helper()

	dbCfg := database.DefaultConfig(":memory:")

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Quiet during tests
	}))

	db, err := database.Open(dbCfg, logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	cfg := testConfig()
	for _, m := range modify {
		m(cfg)
	}

	metrics := NewMetrics()
	handlers := NewHandlers(db, cfg, logger, metrics).
		WithClock(calendar.FixedClock(time.Date(2024, 9, 11, 10, 0, 0, 0, time.UTC)))

	return &testEnv{
		db:      db,
		cfg:     cfg,
		metrics: metrics,
		router:  SetupRoutes(handlers, cfg, logger, metrics, NewRateLimiterFromConfig(cfg)),
	}
}

// do sends a request through the full router.
func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

// makeRequest is a helper to make HTTP requests with optional API key
func makeRequest(method, path string, body any, apiKey string) *http.Request {
	var bodyReader io.Reader
	if body != nil {
		jsonData, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonData)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")

	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	return req
}

// apiResponse mirrors Response with Data left raw.
type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *ErrorInfo      `json:"error"`
}

// parseResponse decodes the envelope and, if v is non-nil, its data.
func parseResponse(t *testing.T, rr *httptest.ResponseRecorder, v any) apiResponse {
	t.Helper()
	var resp apiResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v, body: %s", err, rr.Body.String())
	}
	if v != nil {
		if err := json.Unmarshal(resp.Data, v); err != nil {
			t.Fatalf("decode data: %v, data: %s", err, resp.Data)
		}
	}
	return resp
}

// expectError checks the status and error code of a failed request.
func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status = %d, want %d, body: %s", rr.Code, status, rr.Body.String())
	}
	resp := parseResponse(t, rr, nil)
	if resp.Success {
		t.Error("success = true, want false")
	}
	if resp.Error == nil || resp.Error.Code != code {
		t.Errorf("error = %+v, want code %s", resp.Error, code)
	}
}

func query(path string, params map[string]string) string {
	v := url.Values{}
	for k, val := range params {
		v.Set(k, val)
	}
	return path + "?" + v.Encode()
}

// =============================================================================
// HEALTH AND MIDDLEWARE TESTS
// =============================================================================

func TestHealthCheck(t *testing.T) {
	env := setupTest(t)

	rr := env.do(makeRequest(http.MethodGet, "/health", nil, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var data HealthStatus
	parseResponse(t, rr, &data)
	if data.Status != "healthy" {
		t.Errorf("status = %q, want healthy", data.Status)
	}
	if data.Holidays == nil || *data.Holidays != 0 {
		t.Errorf("holidays = %v, want 0", data.Holidays)
	}

	if err := env.db.CreateHoliday(context.Background(), &database.Holiday{
		Name: "Victory of Adwa", Month: 6, Day: 23, Kind: database.HolidayKindPublic,
	}); err != nil {
		t.Fatal(err)
	}
	rr = env.do(makeRequest(http.MethodGet, "/health", nil, ""))
	data = HealthStatus{}
	parseResponse(t, rr, &data)
	if data.Holidays == nil || *data.Holidays != 1 {
		t.Errorf("holidays = %v, want 1", data.Holidays)
	}
}

func TestHealthCheck_NoStore(t *testing.T) {
	cfg := testConfig()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := SetupRoutes(NewHandlers(nil, cfg, log, nil), cfg, log, nil, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, makeRequest(http.MethodGet, "/health", nil, ""))

	var data HealthStatus
	parseResponse(t, rr, &data)
	if data.Status != "healthy" || data.Holidays != nil {
		t.Errorf("health = %+v, want healthy without holidays", data)
	}
}

func TestChainMiddleware_Order(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := ChainMiddleware(tag("first"), tag("second"), tag("third"))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got := strings.Join(order, ","); got != "first,second,third,handler" {
		t.Errorf("order = %s", got)
	}
}

func TestNotFoundRoute(t *testing.T) {
	env := setupTest(t)
	rr := env.do(makeRequest(http.MethodGet, "/api/v1/nope", nil, ""))
	expectError(t, rr, http.StatusNotFound, "NOT_FOUND")
}

func TestRequestIDMiddleware(t *testing.T) {
	env := setupTest(t)

	rr := env.do(makeRequest(http.MethodGet, "/health", nil, ""))
	id := rr.Header().Get("X-Request-ID")
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("X-Request-ID = %q, not a UUID", id)
	}

	incoming := uuid.NewString()
	req := makeRequest(http.MethodGet, "/health", nil, "")
	req.Header.Set("X-Request-ID", incoming)
	rr = env.do(req)
	if got := rr.Header().Get("X-Request-ID"); got != incoming {
		t.Errorf("X-Request-ID = %q, want echoed %q", got, incoming)
	}

	req = makeRequest(http.MethodGet, "/health", nil, "")
	req.Header.Set("X-Request-ID", "not a uuid\r\n")
	rr = env.do(req)
	if got := rr.Header().Get("X-Request-ID"); got == "not a uuid\r\n" {
		t.Error("malformed X-Request-ID was echoed")
	}
}

func TestCORSPreflight(t *testing.T) {
	env := setupTest(t)

	rr := env.do(makeRequest(http.MethodOptions, "/api/v1/holidays", nil, ""))
	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing Access-Control-Allow-Origin")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := RecoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	expectError(t, rr, http.StatusInternalServerError, "INTERNAL_ERROR")
}

func TestRateLimitMiddleware(t *testing.T) {
	env := setupTest(t, func(c *config.Config) {
		c.RateLimitRPS = 1
		c.RateLimitBurst = 2
	})

	for i := 0; i < 2; i++ {
		rr := env.do(makeRequest(http.MethodGet, "/api/v1/today", nil, ""))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rr.Code)
		}
	}

	rr := env.do(makeRequest(http.MethodGet, "/api/v1/today", nil, ""))
	expectError(t, rr, http.StatusTooManyRequests, "RATE_LIMITED")

	// Another client has its own bucket.
	req := makeRequest(http.MethodGet, "/api/v1/today", nil, "")
	req.RemoteAddr = "198.51.100.7:4444"
	if rr := env.do(req); rr.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", rr.Code)
	}

	// Health checks are never limited.
	if rr := env.do(makeRequest(http.MethodGet, "/health", nil, "")); rr.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rr.Code)
	}
}

func TestIPRateLimiter_Sweep(t *testing.T) {
	now := time.Date(2024, 9, 11, 0, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(1, 1, time.Minute)
	l.now = func() time.Time { return now }

	l.Allow("192.0.2.1")
	now = now.Add(30 * time.Second)
	l.Allow("192.0.2.2")
	now = now.Add(45 * time.Second)

	if removed := l.Sweep(); removed != 1 {
		t.Errorf("Sweep() = %d, want 1", removed)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTest(t)

	env.do(makeRequest(http.MethodGet, "/api/v1/convert/gregorian/2024-09-11", nil, ""))

	rr := env.do(makeRequest(http.MethodGet, "/metrics", nil, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	body := rr.Body.String()
	for _, want := range []string{
		`ethiocal_conversions_total{direction="gregorian_to_ethiopian"} 1`,
		`path="/api/v1/convert/gregorian/{date}"`,
		"http_request_duration_seconds",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}

func TestMetrics_ConversionCounter(t *testing.T) {
	env := setupTest(t)

	env.do(makeRequest(http.MethodGet, "/api/v1/convert/gregorian/2024-09-11", nil, ""))
	env.do(makeRequest(http.MethodGet, "/api/v1/convert/gregorian/2024-09-12", nil, ""))

	families, err := env.metrics.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	var total float64
	for _, mf := range families {
		if mf.GetName() != "ethiocal_conversions_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "direction" && lp.GetValue() == "gregorian_to_ethiopian" {
					total += m.GetCounter().GetValue()
				}
			}
		}
	}
	if total != 2 {
		t.Errorf("ethiocal_conversions_total{gregorian_to_ethiopian} = %v, want 2", total)
	}
}

func TestMetricsDisabled(t *testing.T) {
	env := setupTest(t, func(c *config.Config) { c.MetricsEnabled = false })

	rr := env.do(makeRequest(http.MethodGet, "/metrics", nil, ""))
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

// =============================================================================
// CONVERSION TESTS
// =============================================================================

func TestGetToday(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*config.Config)
		path      string
		formatted string
	}{
		{"defaults", nil, "/api/v1/today", "1 Meskerem 2017"},
		{"gregorian short", nil, "/api/v1/today?calendar=gregorian&style=short", "11/9/2024"},
		{"amharic", nil, "/api/v1/today?style=amharic", "1 መስከረም 2017"},
		{"amharic default falls back for gregorian", func(c *config.Config) {
			c.DefaultStyle = "amharic"
			c.DefaultCalendar = "gregorian"
		}, "/api/v1/today", "11 September 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var env *testEnv
			if tt.modify != nil {
				env = setupTest(t, tt.modify)
			} else {
				env = setupTest(t)
			}

			rr := env.do(makeRequest(http.MethodGet, tt.path, nil, ""))
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
			}

			var view DateView
			parseResponse(t, rr, &view)
			if view.Formatted != tt.formatted {
				t.Errorf("formatted = %q, want %q", view.Formatted, tt.formatted)
			}
			if view.Ethiopian != (calendar.EthiopianDate{Year: 2017, Month: 1, Day: 1}) {
				t.Errorf("ethiopian = %v, want 1/1/2017", view.Ethiopian)
			}
			if view.Weekday != "Rob" {
				t.Errorf("weekday = %q, want Rob", view.Weekday)
			}
		})
	}
}

func TestGetToday_BadOptions(t *testing.T) {
	env := setupTest(t)

	rr := env.do(makeRequest(http.MethodGet, "/api/v1/today?calendar=julian", nil, ""))
	expectError(t, rr, http.StatusBadRequest, "UNKNOWN_CALENDAR")

	rr = env.do(makeRequest(http.MethodGet, "/api/v1/today?style=medium", nil, ""))
	expectError(t, rr, http.StatusBadRequest, "UNSUPPORTED_STYLE")

	rr = env.do(makeRequest(http.MethodGet, "/api/v1/today?calendar=gregorian&style=amharic", nil, ""))
	expectError(t, rr, http.StatusBadRequest, "UNSUPPORTED_STYLE")
}

func TestConvertGregorian(t *testing.T) {
	env := setupTest(t)

	rr := env.do(makeRequest(http.MethodGet, "/api/v1/convert/gregorian/2023-09-12", nil, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}

	var view DateView
	parseResponse(t, rr, &view)
	if view.Ethiopian != (calendar.EthiopianDate{Year: 2016, Month: 1, Day: 1}) {
		t.Errorf("ethiopian = %v, want 1/1/2016", view.Ethiopian)
	}
	if view.Formatted != "1 Meskerem 2016" || view.Calendar != "ethiopian" {
		t.Errorf("formatted = %q in %s", view.Formatted, view.Calendar)
	}
	if view.Weekday != "Maksegno" {
		t.Errorf("weekday = %q, want Maksegno", view.Weekday)
	}
}

func TestConvertGregorian_Errors(t *testing.T) {
	env := setupTest(t)

	rr := env.do(makeRequest(http.MethodGet, "/api/v1/convert/gregorian/2023-02-30", nil, ""))
	expectError(t, rr, http.StatusBadRequest, "BAD_REQUEST")

	rr = env.do(makeRequest(http.MethodGet, "/api/v1/convert/gregorian/0005-01-01", nil, ""))
	expectError(t, rr, http.StatusUnprocessableEntity, "OUT_OF_RANGE")
}

func TestConvertEthiopian(t *testing.T) {
	env := setupTest(t)

	rr := env.do(makeRequest(http.MethodGet, "/api/v1/convert/ethiopian/2017/4/29", nil, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}

	var view DateView
	parseResponse(t, rr, &view)
	if view.Gregorian != (calendar.GregorianDate{Year: 2025, Month: 1, Day: 7}) {
		t.Errorf("gregorian = %v, want 2025-01-07", view.Gregorian)
	}
	if view.Formatted != "7 January 2025" {
		t.Errorf("formatted = %q, want 7 January 2025", view.Formatted)
	}
}

func TestConvertEthiopian_Errors(t *testing.T) {
	env := setupTest(t)

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/api/v1/convert/ethiopian/2016/13/6", http.StatusBadRequest, "INVALID_DATE"},
		{"/api/v1/convert/ethiopian/2016/14/1", http.StatusBadRequest, "INVALID_MONTH"},
		{"/api/v1/convert/ethiopian/2016/1/31", http.StatusBadRequest, "INVALID_DATE"},
		{"/api/v1/convert/ethiopian/year/1/1", http.StatusBadRequest, "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			expectError(t, env.do(makeRequest(http.MethodGet, tt.path, nil, "")), tt.status, tt.code)
		})
	}
}

func TestFormatDate(t *testing.T) {
	env := setupTest(t)

	tests := []struct {
		name   string
		params map[string]string
		want   string
	}{
		{"iso to amharic", map[string]string{"date": "2024-09-11", "calendar": "ethiopian", "style": "amharic"}, "1 መስከረም 2017"},
		{"iso to gregorian long", map[string]string{"date": "2024-09-11", "calendar": "gregorian", "style": "long"}, "11 September 2024"},
		{"ethiopian input", map[string]string{"date": "1/1/2017", "from": "ethiopian", "calendar": "gregorian", "style": "short"}, "11/9/2024"},
		{"ethiopian long input", map[string]string{"date": "6 Pagume 2015", "from": "ec", "calendar": "ec", "style": "short"}, "6/13/2015"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(makeRequest(http.MethodGet, query("/api/v1/format", tt.params), nil, ""))
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
			}
			var data map[string]string
			parseResponse(t, rr, &data)
			if data["formatted"] != tt.want {
				t.Errorf("formatted = %q, want %q", data["formatted"], tt.want)
			}
		})
	}
}

func TestFormatDate_Errors(t *testing.T) {
	env := setupTest(t)

	rr := env.do(makeRequest(http.MethodGet, "/api/v1/format", nil, ""))
	expectError(t, rr, http.StatusBadRequest, "BAD_REQUEST")

	rr = env.do(makeRequest(http.MethodGet, query("/api/v1/format", map[string]string{"date": "13/13/2016", "from": "ethiopian"}), nil, ""))
	expectError(t, rr, http.StatusBadRequest, "INVALID_DATE")

	rr = env.do(makeRequest(http.MethodGet, query("/api/v1/format", map[string]string{"date": "2024-09-11", "from": "mayan"}), nil, ""))
	expectError(t, rr, http.StatusBadRequest, "UNKNOWN_CALENDAR")
}

func TestParseDate(t *testing.T) {
	env := setupTest(t)

	rr := env.do(makeRequest(http.MethodGet, query("/api/v1/parse", map[string]string{"q": "1 Meskerem 2017"}), nil, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}
	var view DateView
	parseResponse(t, rr, &view)
	if view.Gregorian != (calendar.GregorianDate{Year: 2024, Month: 9, Day: 11}) {
		t.Errorf("gregorian = %v, want 2024-09-11", view.Gregorian)
	}

	rr = env.do(makeRequest(http.MethodGet, query("/api/v1/parse", map[string]string{"q": "next tuesday"}), nil, ""))
	expectError(t, rr, http.StatusBadRequest, "NO_MATCH")

	rr = env.do(makeRequest(http.MethodGet, query("/api/v1/parse", map[string]string{"q": "31/1/2017"}), nil, ""))
	expectError(t, rr, http.StatusBadRequest, "INVALID_DATE")

	rr = env.do(makeRequest(http.MethodGet, "/api/v1/parse", nil, ""))
	expectError(t, rr, http.StatusBadRequest, "BAD_REQUEST")
}

// =============================================================================
// ARITHMETIC TESTS
// =============================================================================

func TestAddDays(t *testing.T) {
	env := setupTest(t)

	body := map[string]any{
		"date": map[string]int{"year": 2016, "month": 13, "day": 5},
		"days": 1,
	}
	rr := env.do(makeRequest(http.MethodPost, "/api/v1/ethiopian/add", body, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}

	var view DateView
	parseResponse(t, rr, &view)
	if view.Ethiopian != (calendar.EthiopianDate{Year: 2017, Month: 1, Day: 1}) {
		t.Errorf("ethiopian = %v, want 1/1/2017", view.Ethiopian)
	}
}

func TestAddDays_Validation(t *testing.T) {
	env := setupTest(t)

	tests := []struct {
		name string
		body any
		code string
	}{
		{"missing days", map[string]any{"date": map[string]int{"year": 2016, "month": 1, "day": 1}}, "VALIDATION_FAILED"},
		{"month 14", map[string]any{"date": map[string]int{"year": 2016, "month": 14, "day": 1}, "days": 1}, "VALIDATION_FAILED"},
		{"missing date", map[string]any{"days": 1}, "VALIDATION_FAILED"},
		{"unknown field", map[string]any{"date": map[string]int{"year": 2016, "month": 1, "day": 1}, "days": 1, "hours": 3}, "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(makeRequest(http.MethodPost, "/api/v1/ethiopian/add", tt.body, ""))
			expectError(t, rr, http.StatusBadRequest, tt.code)
		})
	}

	// Passes field validation but is not a real day.
	body := map[string]any{"date": map[string]int{"year": 2016, "month": 13, "day": 6}, "days": 1}
	expectError(t, env.do(makeRequest(http.MethodPost, "/api/v1/ethiopian/add", body, "")), http.StatusBadRequest, "INVALID_DATE")
}

func TestCompareDates(t *testing.T) {
	env := setupTest(t)

	body := map[string]any{
		"a": map[string]int{"year": 2016, "month": 13, "day": 5},
		"b": map[string]int{"year": 2017, "month": 1, "day": 1},
	}
	rr := env.do(makeRequest(http.MethodPost, "/api/v1/ethiopian/compare", body, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}

	var data struct {
		Result      int `json:"result"`
		DaysBetween int `json:"days_between"`
	}
	parseResponse(t, rr, &data)
	if data.Result != -1 || data.DaysBetween != 1 {
		t.Errorf("result = %d, days_between = %d; want -1, 1", data.Result, data.DaysBetween)
	}
}

// =============================================================================
// YEAR, MONTH AND DAY TESTS
// =============================================================================

func TestGetYear(t *testing.T) {
	env := setupTest(t)

	rr := env.do(makeRequest(http.MethodGet, "/api/v1/ethiopian/years/2015", nil, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}

	var year YearView
	parseResponse(t, rr, &year)
	if !year.LeapYear || year.Evangelist != "Luke" {
		t.Errorf("leap = %v, evangelist = %q; want true, Luke", year.LeapYear, year.Evangelist)
	}
	if len(year.Months) != 13 || year.Months[12].Days != 6 || year.Months[12].Name != "Pagume" {
		t.Errorf("months = %+v", year.Months)
	}
	if year.NewYear != (calendar.GregorianDate{Year: 2022, Month: 9, Day: 11}) {
		t.Errorf("new_year = %v, want 2022-09-11", year.NewYear)
	}
	if len(year.Feasts) == 0 {
		t.Error("feasts empty")
	}

	expectError(t, env.do(makeRequest(http.MethodGet, "/api/v1/ethiopian/years/0", nil, "")), http.StatusBadRequest, "BAD_REQUEST")
}

func TestGetMonth(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	if err := env.db.CreateHoliday(ctx, &database.Holiday{Name: "Pagume Picnic", Month: 13, Day: 2}); err != nil {
		t.Fatalf("create holiday: %v", err)
	}

	rr := env.do(makeRequest(http.MethodGet, "/api/v1/ethiopian/months/2017/13", nil, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}

	var data struct {
		Name     string             `json:"name"`
		Days     []MonthDay         `json:"days"`
		Holidays []database.Holiday `json:"holidays"`
	}
	parseResponse(t, rr, &data)
	if data.Name != "Pagume" || len(data.Days) != 5 {
		t.Errorf("name = %q, days = %d; want Pagume, 5", data.Name, len(data.Days))
	}
	if len(data.Days) > 0 && data.Days[0].Gregorian != (calendar.GregorianDate{Year: 2025, Month: 9, Day: 6}) {
		t.Errorf("first day = %v, want 2025-09-06", data.Days[0].Gregorian)
	}
	if len(data.Holidays) != 1 {
		t.Errorf("holidays = %d, want 1", len(data.Holidays))
	}

	expectError(t, env.do(makeRequest(http.MethodGet, "/api/v1/ethiopian/months/2017/14", nil, "")), http.StatusBadRequest, "INVALID_MONTH")
}

func TestGetDay(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	if err := env.db.CreateHoliday(ctx, &database.Holiday{Name: "Adwa Victory Day", Month: 6, Day: 23, Kind: database.HolidayKindPublic}); err != nil {
		t.Fatalf("create holiday: %v", err)
	}

	rr := env.do(makeRequest(http.MethodGet, "/api/v1/days/2025-03-02", nil, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}

	var day calendar.ResolvedDay
	parseResponse(t, rr, &day)
	if day.Ethiopian != (calendar.EthiopianDate{Year: 2017, Month: 6, Day: 23}) {
		t.Errorf("ethiopian = %v, want 23/6/2017", day.Ethiopian)
	}
	if len(day.Holidays) != 1 || day.Holidays[0].Name != "Adwa Victory Day" {
		t.Errorf("holidays = %+v", day.Holidays)
	}

	rr = env.do(makeRequest(http.MethodGet, "/api/v1/days/2025-01-07", nil, ""))
	parseResponse(t, rr, &day)
	if len(day.Feasts) != 1 || day.Feasts[0].Name != "Genna" {
		t.Errorf("feasts = %+v, want Genna", day.Feasts)
	}
}

// =============================================================================
// HOLIDAY TESTS
// =============================================================================

func TestHolidays_RequireAPIKey(t *testing.T) {
	env := setupTest(t)

	expectError(t, env.do(makeRequest(http.MethodGet, "/api/v1/holidays", nil, "")), http.StatusUnauthorized, "UNAUTHORIZED")
	expectError(t, env.do(makeRequest(http.MethodGet, "/api/v1/holidays", nil, "wrong-key")), http.StatusUnauthorized, "UNAUTHORIZED")

	rr := env.do(makeRequest(http.MethodGet, "/api/v1/holidays", nil, testAPIKey))
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

func TestHolidays_OpenInDevelopmentWithoutKey(t *testing.T) {
	env := setupTest(t, func(c *config.Config) { c.APIKey = "" })

	rr := env.do(makeRequest(http.MethodGet, "/api/v1/holidays", nil, ""))
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

func TestHolidays_CRUD(t *testing.T) {
	env := setupTest(t)

	body := map[string]any{
		"name":    "Adwa Victory Day",
		"name_am": "የዓድዋ ድል በዓል",
		"month":   6,
		"day":     23,
		"kind":    "public",
	}
	rr := env.do(makeRequest(http.MethodPost, "/api/v1/holidays", body, testAPIKey))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body: %s", rr.Code, rr.Body.String())
	}
	var created database.Holiday
	parseResponse(t, rr, &created)
	if created.ID == 0 || created.Kind != database.HolidayKindPublic {
		t.Errorf("created = %+v", created)
	}

	// Duplicate
	rr = env.do(makeRequest(http.MethodPost, "/api/v1/holidays", body, testAPIKey))
	expectError(t, rr, http.StatusConflict, "CONFLICT")

	// List
	rr = env.do(makeRequest(http.MethodGet, "/api/v1/holidays?month=6", nil, testAPIKey))
	var list struct {
		Holidays []database.Holiday `json:"holidays"`
		Count    int                `json:"count"`
	}
	parseResponse(t, rr, &list)
	if list.Count != 1 {
		t.Errorf("count = %d, want 1", list.Count)
	}

	expectError(t, env.do(makeRequest(http.MethodGet, "/api/v1/holidays?month=99", nil, testAPIKey)), http.StatusBadRequest, "BAD_REQUEST")

	// Delete
	path := "/api/v1/holidays/" + strconv.FormatInt(created.ID, 10)
	rr = env.do(makeRequest(http.MethodDelete, path, nil, testAPIKey))
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body: %s", rr.Code, rr.Body.String())
	}
	expectError(t, env.do(makeRequest(http.MethodDelete, path, nil, testAPIKey)), http.StatusNotFound, "NOT_FOUND")
	expectError(t, env.do(makeRequest(http.MethodDelete, "/api/v1/holidays/abc", nil, testAPIKey)), http.StatusBadRequest, "BAD_REQUEST")
}

func TestCreateHoliday_Validation(t *testing.T) {
	env := setupTest(t)

	tests := []struct {
		name string
		body map[string]any
		code string
	}{
		{"missing name", map[string]any{"month": 1, "day": 1}, "VALIDATION_FAILED"},
		{"month 14", map[string]any{"name": "x", "month": 14, "day": 1}, "VALIDATION_FAILED"},
		{"bad kind", map[string]any{"name": "x", "month": 1, "day": 1, "kind": "secret"}, "VALIDATION_FAILED"},
		{"pagume 7", map[string]any{"name": "x", "month": 13, "day": 7}, "INVALID_DATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(makeRequest(http.MethodPost, "/api/v1/holidays", tt.body, testAPIKey))
			expectError(t, rr, http.StatusBadRequest, tt.code)
		})
	}
}
