package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/zapponejosh/ethiocal/internal/calendar"
	"github.com/zapponejosh/ethiocal/internal/config"
	"github.com/zapponejosh/ethiocal/internal/database"
	"github.com/zapponejosh/ethiocal/internal/logger"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	db              *database.DB
	resolver        *calendar.Resolver
	cfg             *config.Config
	logger          *slog.Logger
	metrics         *Metrics
	clock           calendar.Clock
	validate        *validator.Validate
	defaultCalendar calendar.CalendarType
}

// NewHandlers creates a new Handlers instance. db may be nil, which
// disables the holiday endpoints. metrics may be nil.
func NewHandlers(db *database.DB, cfg *config.Config, log *slog.Logger, metrics *Metrics) *Handlers {
	resolver := calendar.NewResolver(nil)
	if db != nil {
		resolver = calendar.NewResolver(db)
	}

	// cfg has been validated, so the error case only happens for
	// hand-built configs in tests.
	ct, err := calendar.ParseCalendarType(cfg.DefaultCalendar)
	if err != nil {
		ct = calendar.Ethiopian
	}

	return &Handlers{
		db:              db,
		resolver:        resolver,
		cfg:             cfg,
		logger:          log,
		metrics:         metrics,
		clock:           calendar.SystemClock{},
		validate:        newValidator(),
		defaultCalendar: ct,
	}
}

// WithClock replaces the clock used for "today".
func (h *Handlers) WithClock(c calendar.Clock) *Handlers {
	h.clock = c
	return h
}

// newValidator reports field errors by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// =============================================================================
// Views
// =============================================================================

// DateView is a single day rendered for API clients.
type DateView struct {
	Ethiopian      calendar.EthiopianDate `json:"ethiopian"`
	Gregorian      calendar.GregorianDate `json:"gregorian"`
	Calendar       string                 `json:"calendar"`
	Style          string                 `json:"style"`
	Formatted      string                 `json:"formatted"`
	Weekday        string                 `json:"weekday"`
	WeekdayAmharic string                 `json:"weekday_am"`
	LeapYear       bool                   `json:"leap_year"`
}

func newDateView(e calendar.EthiopianDate, g calendar.GregorianDate, ct calendar.CalendarType, style calendar.Style) (*DateView, error) {
	var d calendar.Date = e
	if ct == calendar.Gregorian {
		d = g
	}
	formatted, err := calendar.FormatDateByCalendar(d, ct, style)
	if err != nil {
		return nil, err
	}

	w := e.Weekday()
	return &DateView{
		Ethiopian:      e,
		Gregorian:      g,
		Calendar:       ct.String(),
		Style:          style.String(),
		Formatted:      formatted,
		Weekday:        calendar.WeekdayName(w, calendar.StyleLong),
		WeekdayAmharic: calendar.WeekdayName(w, calendar.StyleAmharic),
		LeapYear:       calendar.IsEthiopianLeapYear(e.Year),
	}, nil
}

// renderOptions reads ?calendar= and ?style=. Without an explicit style a
// Gregorian rendering falls back to StyleLong when the configured default
// is Amharic, which only Ethiopian dates support.
func (h *Handlers) renderOptions(r *http.Request, fallback calendar.CalendarType) (calendar.CalendarType, calendar.Style, error) {
	q := r.URL.Query()

	ct := fallback
	if s := q.Get("calendar"); s != "" {
		parsed, err := calendar.ParseCalendarType(s)
		if err != nil {
			return 0, 0, err
		}
		ct = parsed
	}

	styleStr := q.Get("style")
	explicit := styleStr != ""
	if !explicit {
		styleStr = h.cfg.DefaultStyle
	}
	style, err := calendar.ParseStyle(styleStr)
	if err != nil {
		return 0, 0, err
	}
	if !explicit && ct == calendar.Gregorian && style == calendar.StyleAmharic {
		style = calendar.StyleLong
	}

	return ct, style, nil
}

// fail writes err as a client error when it is a known calendar or
// database error, and as a 500 otherwise.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if WriteCalendarError(w, err) {
		return
	}
	logger.Error(r.Context(), msg, err)
	WriteInternalError(w, "Internal server error")
}

// =============================================================================
// Health
// =============================================================================

// HealthStatus is the body of GET /health. Holidays is omitted when the
// server runs without a store.
type HealthStatus struct {
	Status   string `json:"status"`
	Holidays *int   `json:"holidays,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{Status: "healthy"}

	if h.db != nil {
		if err := h.db.Health(r.Context()); err != nil {
			h.logger.Warn("health check failed", slog.Any("error", err))
			WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", "HEALTH_CHECK_FAILED")
			return
		}
		n, err := h.db.CountHolidays(r.Context())
		if err != nil {
			h.logger.Warn("health check failed", slog.Any("error", err))
			WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", "HEALTH_CHECK_FAILED")
			return
		}
		status.Holidays = &n
	}

	WriteSuccess(w, status)
}

// =============================================================================
// Conversion
// =============================================================================

// GetToday handles GET /api/v1/today?calendar=&style=
func (h *Handlers) GetToday(w http.ResponseWriter, r *http.Request) {
	ct, style, err := h.renderOptions(r, h.defaultCalendar)
	if err != nil {
		h.fail(w, r, "render options", err)
		return
	}

	// One clock read so both calendars name the same day.
	g := calendar.GregorianFromTime(h.clock.Now())
	e, err := calendar.GregorianToEthiopian(g)
	if err != nil {
		h.fail(w, r, "convert today", err)
		return
	}

	view, err := newDateView(e, g, ct, style)
	if err != nil {
		h.fail(w, r, "render today", err)
		return
	}

	WriteSuccess(w, view)
}

// ConvertGregorian handles GET /api/v1/convert/gregorian/{date}
func (h *Handlers) ConvertGregorian(w http.ResponseWriter, r *http.Request) {
	dateStr := chi.URLParam(r, "date")
	g, err := calendar.ParseISODate(dateStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid date format: %s. Use YYYY-MM-DD", dateStr))
		return
	}

	ct, style, err := h.renderOptions(r, calendar.Ethiopian)
	if err != nil {
		h.fail(w, r, "render options", err)
		return
	}

	e, err := calendar.GregorianToEthiopian(g)
	if err != nil {
		h.fail(w, r, "convert gregorian date", err)
		return
	}
	h.metrics.ObserveConversion("gregorian_to_ethiopian")

	view, err := newDateView(e, g, ct, style)
	if err != nil {
		h.fail(w, r, "render converted date", err)
		return
	}

	WriteSuccess(w, view)
}

// ConvertEthiopian handles GET /api/v1/convert/ethiopian/{year}/{month}/{day}
func (h *Handlers) ConvertEthiopian(w http.ResponseWriter, r *http.Request) {
	e, ok := ethiopianFromPath(w, r)
	if !ok {
		return
	}

	ct, style, err := h.renderOptions(r, calendar.Gregorian)
	if err != nil {
		h.fail(w, r, "render options", err)
		return
	}

	g, err := calendar.EthiopianToGregorian(e)
	if err != nil {
		h.fail(w, r, "convert ethiopian date", err)
		return
	}
	h.metrics.ObserveConversion("ethiopian_to_gregorian")

	view, err := newDateView(e, g, ct, style)
	if err != nil {
		h.fail(w, r, "render converted date", err)
		return
	}

	WriteSuccess(w, view)
}

// FormatDate handles GET /api/v1/format?date=&from=&calendar=&style=
//
// date is read in the "from" calendar (default gregorian, so an ISO date)
// and rendered in "calendar".
func (h *Handlers) FormatDate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := q.Get("date")
	if input == "" {
		WriteBadRequest(w, "date parameter is required")
		return
	}

	from := calendar.Gregorian
	if s := q.Get("from"); s != "" {
		parsed, err := calendar.ParseCalendarType(s)
		if err != nil {
			h.fail(w, r, "parse from calendar", err)
			return
		}
		from = parsed
	}

	ct, style, err := h.renderOptions(r, h.defaultCalendar)
	if err != nil {
		h.fail(w, r, "render options", err)
		return
	}

	d, err := calendar.ParseDateByCalendar(input, from)
	if err != nil {
		h.fail(w, r, "parse date", err)
		return
	}

	formatted, err := calendar.FormatDateByCalendar(d, ct, style)
	if err != nil {
		h.fail(w, r, "format date", err)
		return
	}
	if from != ct {
		h.metrics.ObserveConversion(from.String() + "_to_" + ct.String())
	}

	WriteSuccess(w, map[string]string{
		"input":     input,
		"from":      from.String(),
		"calendar":  ct.String(),
		"style":     style.String(),
		"formatted": formatted,
	})
}

// ParseDate handles GET /api/v1/parse?q=
func (h *Handlers) ParseDate(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("q")
	if strings.TrimSpace(input) == "" {
		WriteBadRequest(w, "q parameter is required")
		return
	}

	e, ok := calendar.ParseEthiopianDate(input)
	if !ok {
		WriteError(w, http.StatusBadRequest,
			fmt.Sprintf("%q is not a date like 1/1/2017 or 1 Meskerem 2017", input), "NO_MATCH")
		return
	}

	ct, style, err := h.renderOptions(r, calendar.Ethiopian)
	if err != nil {
		h.fail(w, r, "render options", err)
		return
	}

	g, err := calendar.EthiopianToGregorian(e)
	if err != nil {
		h.fail(w, r, "convert parsed date", err)
		return
	}

	view, err := newDateView(e, g, ct, style)
	if err != nil {
		h.fail(w, r, "render parsed date", err)
		return
	}

	WriteSuccess(w, view)
}

// =============================================================================
// Arithmetic
// =============================================================================

// ethiopianDateRequest is an Ethiopian date in a JSON body. Day-of-month
// limits beyond 1-30 are checked by the calendar package.
type ethiopianDateRequest struct {
	Year  int `json:"year" validate:"required,min=1,max=9999"`
	Month int `json:"month" validate:"required,min=1,max=13"`
	Day   int `json:"day" validate:"required,min=1,max=30"`
}

func (d ethiopianDateRequest) date() calendar.EthiopianDate {
	return calendar.EthiopianDate{Year: d.Year, Month: d.Month, Day: d.Day}
}

// addDaysRequest is the body of POST /api/v1/ethiopian/add.
type addDaysRequest struct {
	Date ethiopianDateRequest `json:"date"`
	Days *int                 `json:"days" validate:"required,min=-1000000,max=1000000"`
}

// compareRequest is the body of POST /api/v1/ethiopian/compare.
type compareRequest struct {
	A ethiopianDateRequest `json:"a"`
	B ethiopianDateRequest `json:"b"`
}

// AddDays handles POST /api/v1/ethiopian/add
func (h *Handlers) AddDays(w http.ResponseWriter, r *http.Request) {
	var req addDaysRequest
	if !h.decode(w, r, &req) {
		return
	}

	ct, style, err := h.renderOptions(r, calendar.Ethiopian)
	if err != nil {
		h.fail(w, r, "render options", err)
		return
	}

	e, err := calendar.AddDaysToEthiopian(req.Date.date(), *req.Days)
	if err != nil {
		h.fail(w, r, "add days", err)
		return
	}
	g, err := calendar.EthiopianToGregorian(e)
	if err != nil {
		h.fail(w, r, "convert sum", err)
		return
	}

	view, err := newDateView(e, g, ct, style)
	if err != nil {
		h.fail(w, r, "render sum", err)
		return
	}

	WriteSuccess(w, view)
}

// CompareDates handles POST /api/v1/ethiopian/compare
func (h *Handlers) CompareDates(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !h.decode(w, r, &req) {
		return
	}

	a, b := req.A.date(), req.B.date()
	days, err := calendar.DaysBetween(a, b)
	if err != nil {
		h.fail(w, r, "compare dates", err)
		return
	}

	WriteSuccess(w, map[string]any{
		"a":            a,
		"b":            b,
		"result":       calendar.CompareEthiopianDates(a, b),
		"days_between": days,
	})
}

// decode reads a JSON body into dst and validates it, writing a 400 and
// returning false on failure.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid JSON body: %v", err))
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			WriteError(w, http.StatusBadRequest, "validation failed: "+strings.Join(msgs, "; "), "VALIDATION_FAILED")
			return false
		}
		WriteBadRequest(w, err.Error())
		return false
	}

	return true
}

// =============================================================================
// Year and month views
// =============================================================================

// MonthSummary describes one month of an Ethiopian year.
type MonthSummary struct {
	Month       int                    `json:"month"`
	Name        string                 `json:"name"`
	NameAmharic string                 `json:"name_am"`
	Days        int                    `json:"days"`
	Starts      calendar.GregorianDate `json:"starts"`
}

// YearView describes an Ethiopian year.
type YearView struct {
	Year         int                    `json:"year"`
	LeapYear     bool                   `json:"leap_year"`
	Evangelist   string                 `json:"evangelist"`
	EvangelistAm string                 `json:"evangelist_am"`
	NewYear      calendar.GregorianDate `json:"new_year"`
	Months       []MonthSummary         `json:"months"`
	Feasts       []calendar.Feast       `json:"feasts"`
}

// GetYear handles GET /api/v1/ethiopian/years/{year}
func (h *Handlers) GetYear(w http.ResponseWriter, r *http.Request) {
	year, ok := intParam(w, r, "year")
	if !ok {
		return
	}
	if year < 1 || year > 9999 {
		WriteBadRequest(w, "year must be between 1 and 9999")
		return
	}

	newYear, err := calendar.NewYear(year)
	if err != nil {
		h.fail(w, r, "new year", err)
		return
	}
	feasts, err := calendar.FeastsOf(year)
	if err != nil {
		h.fail(w, r, "feasts", err)
		return
	}

	months := make([]MonthSummary, 0, calendar.EthiopianMonths)
	for m := 1; m <= calendar.EthiopianMonths; m++ {
		n, _ := calendar.DaysInEthiopianMonth(year, m)
		name, _ := calendar.EthiopianMonthName(m, calendar.StyleLong)
		nameAm, _ := calendar.EthiopianMonthName(m, calendar.StyleAmharic)
		starts, err := calendar.EthiopianToGregorian(calendar.EthiopianDate{Year: year, Month: m, Day: 1})
		if err != nil {
			h.fail(w, r, "month start", err)
			return
		}
		months = append(months, MonthSummary{
			Month:       m,
			Name:        name,
			NameAmharic: nameAm,
			Days:        n,
			Starts:      starts,
		})
	}

	ev := calendar.EvangelistOf(year)
	WriteSuccess(w, YearView{
		Year:         year,
		LeapYear:     calendar.IsEthiopianLeapYear(year),
		Evangelist:   ev.String(),
		EvangelistAm: ev.Amharic(),
		NewYear:      newYear,
		Months:       months,
		Feasts:       feasts,
	})
}

// MonthDay is one cell of a month grid.
type MonthDay struct {
	Ethiopian calendar.EthiopianDate `json:"ethiopian"`
	Gregorian calendar.GregorianDate `json:"gregorian"`
	Weekday   string                 `json:"weekday"`
}

// GetMonth handles GET /api/v1/ethiopian/months/{year}/{month}
func (h *Handlers) GetMonth(w http.ResponseWriter, r *http.Request) {
	year, ok := intParam(w, r, "year")
	if !ok {
		return
	}
	month, ok := intParam(w, r, "month")
	if !ok {
		return
	}

	days, err := calendar.MonthDays(year, month)
	if err != nil {
		h.fail(w, r, "month days", err)
		return
	}

	grid := make([]MonthDay, 0, len(days))
	for _, d := range days {
		g, err := calendar.EthiopianToGregorian(d)
		if err != nil {
			h.fail(w, r, "convert month day", err)
			return
		}
		grid = append(grid, MonthDay{
			Ethiopian: d,
			Gregorian: g,
			Weekday:   calendar.WeekdayName(d.Weekday(), calendar.StyleLong),
		})
	}

	holidays := []database.Holiday{}
	if h.db != nil {
		holidays, err = h.db.ListHolidays(r.Context(), month)
		if err != nil {
			h.fail(w, r, "list holidays for month", err)
			return
		}
	}

	name, _ := calendar.EthiopianMonthName(month, calendar.StyleLong)
	nameAm, _ := calendar.EthiopianMonthName(month, calendar.StyleAmharic)

	WriteSuccess(w, map[string]any{
		"year":     year,
		"month":    month,
		"name":     name,
		"name_am":  nameAm,
		"days":     grid,
		"holidays": holidays,
	})
}

// GetDay handles GET /api/v1/days/{date}
func (h *Handlers) GetDay(w http.ResponseWriter, r *http.Request) {
	dateStr := chi.URLParam(r, "date")
	g, err := calendar.ParseISODate(dateStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid date format: %s. Use YYYY-MM-DD", dateStr))
		return
	}

	day, err := h.resolver.ResolveGregorian(r.Context(), g)
	if err != nil {
		h.fail(w, r, "resolve day", err)
		return
	}

	WriteSuccess(w, day)
}

// =============================================================================
// Holidays (admin)
// =============================================================================

// createHolidayRequest is the body of POST /api/v1/holidays.
type createHolidayRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	NameAmharic *string `json:"name_am" validate:"omitempty,max=200"`
	Month       int     `json:"month" validate:"required,min=1,max=13"`
	Day         int     `json:"day" validate:"required,min=1,max=30"`
	Kind        string  `json:"kind" validate:"omitempty,oneof=public religious custom"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

// ListHolidays handles GET /api/v1/holidays?month=
func (h *Handlers) ListHolidays(w http.ResponseWriter, r *http.Request) {
	month := 0
	if s := r.URL.Query().Get("month"); s != "" {
		m, err := strconv.Atoi(s)
		if err != nil || m < 1 || m > calendar.EthiopianMonths {
			WriteBadRequest(w, "month must be between 1 and 13")
			return
		}
		month = m
	}

	holidays, err := h.db.ListHolidays(r.Context(), month)
	if err != nil {
		h.fail(w, r, "list holidays", err)
		return
	}

	WriteSuccess(w, map[string]any{
		"holidays": holidays,
		"count":    len(holidays),
	})
}

// CreateHoliday handles POST /api/v1/holidays
func (h *Handlers) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req createHolidayRequest
	if !h.decode(w, r, &req) {
		return
	}

	// Pagume 6 exists in leap years, so that is the widest check possible
	// for a recurring holiday.
	if req.Month == calendar.Pagume && req.Day > 6 {
		WriteError(w, http.StatusBadRequest, "Pagume has at most 6 days", "INVALID_DATE")
		return
	}

	holiday := &database.Holiday{
		Name:        strings.TrimSpace(req.Name),
		NameAmharic: req.NameAmharic,
		Month:       req.Month,
		Day:         req.Day,
		Kind:        database.HolidayKind(req.Kind),
		Description: req.Description,
	}

	if err := h.db.CreateHoliday(r.Context(), holiday); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			WriteConflict(w, fmt.Sprintf("A holiday named %q already exists on %d/%d", holiday.Name, holiday.Day, holiday.Month))
			return
		}
		h.fail(w, r, "create holiday", err)
		return
	}

	logger.Info(r.Context(), "holiday created",
		slog.Int64("id", holiday.ID),
		slog.String("name", holiday.Name),
	)

	WriteCreated(w, holiday)
}

// DeleteHoliday handles DELETE /api/v1/holidays/{id}
func (h *Handlers) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		WriteBadRequest(w, "Invalid holiday ID")
		return
	}

	if err := h.db.DeleteHoliday(r.Context(), id); err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "Holiday not found")
			return
		}
		h.fail(w, r, "delete holiday", err)
		return
	}

	WriteSuccess(w, map[string]int64{"deleted": id})
}

// =============================================================================
// Path helpers
// =============================================================================

// intParam reads an integer URL parameter, writing a 400 on failure.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid %s: %q", name, raw))
		return 0, false
	}
	return n, true
}

func ethiopianFromPath(w http.ResponseWriter, r *http.Request) (calendar.EthiopianDate, bool) {
	year, ok := intParam(w, r, "year")
	if !ok {
		return calendar.EthiopianDate{}, false
	}
	month, ok := intParam(w, r, "month")
	if !ok {
		return calendar.EthiopianDate{}, false
	}
	day, ok := intParam(w, r, "day")
	if !ok {
		return calendar.EthiopianDate{}, false
	}
	return calendar.EthiopianDate{Year: year, Month: month, Day: day}, true
}
