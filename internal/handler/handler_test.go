package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/rental-pricing/internal/config"
	"github.com/iliyamo/rental-pricing/internal/middleware"
	"github.com/iliyamo/rental-pricing/internal/model"
	"github.com/iliyamo/rental-pricing/internal/pricing"
	"github.com/iliyamo/rental-pricing/internal/queue"
	"github.com/iliyamo/rental-pricing/internal/repository"
)

var testPricingCfg = config.PricingConfig{
	MaxCalendarDays:       365,
	DefaultCalendarDays:   30,
	MaxForecastMonths:     24,
	DefaultForecastMonths: 12,
}

func testEngine() *pricing.Engine {
	now := time.Date(2026, time.October, 16, 10, 0, 0, 0, time.UTC)
	return pricing.NewEngine(nil, pricing.WithClock(func() time.Time { return now }))
}

type fakeProperties map[uint64]model.Property

func (f fakeProperties) GetByIDAndOwner(_ context.Context, id, ownerID uint64) (*model.Property, error) {
	p, ok := f[id]
	if !ok || p.OwnerID != ownerID {
		return nil, repository.ErrPropertyNotFound
	}
	return &p, nil
}

type fakeRevenue struct {
	total float64
	err   error
}

func (f fakeRevenue) EarnedRevenueByOwner(context.Context, uint64) (float64, error) {
	return f.total, f.err
}

type fakePublisher struct {
	events []queue.PricingCalendarGenerated
	err    error
}

func (f *fakePublisher) PublishCalendarGenerated(_ context.Context, ev queue.PricingCalendarGenerated) error {
	f.events = append(f.events, ev)
	return f.err
}

func asUser(id float64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.CtxUserID, id)
			return next(c)
		}
	}
}

func newPublicServer() *echo.Echo {
	h := NewPricingHandler(testEngine(), testPricingCfg)
	e := echo.New()
	e.POST("/v1/pricing/quote", h.Quote)
	e.GET("/v1/pricing/calendar", h.Calendar)
	e.GET("/v1/market/benchmarks/:area", h.Benchmark)
	e.GET("/v1/market/forecast", h.Forecast)
	e.GET("/v1/market/seasons", h.Seasons)
	e.GET("/v1/market/areas", h.Areas)
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestQuote(t *testing.T) {
	e := newPublicServer()
	rec := do(e, http.MethodPost, "/v1/pricing/quote", `{"base_rate":100,"area":"Marina","date":"2025-02-01","bedrooms":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Date   string                `json:"date"`
		Result pricing.PricingResult `json:"result"`
	}
	decode(t, rec, &out)
	if out.Date != "2025-02-01" || out.Result.SuggestedPrice != 288 {
		t.Errorf("quote = %s %v, want 2025-02-01 288", out.Date, out.Result.SuggestedPrice)
	}
	if len(out.Result.Breakdown) != 7 || out.Result.DemandLevel != pricing.DemandHigh {
		t.Errorf("result = %+v", out.Result)
	}
}

func TestQuoteErrors(t *testing.T) {
	e := newPublicServer()
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"zero base rate", `{"base_rate":0,"area":"marina","date":"2025-02-01"}`, http.StatusBadRequest},
		{"negative bedrooms", `{"base_rate":100,"area":"marina","date":"2025-02-01","bedrooms":-1}`, http.StatusBadRequest},
		{"unknown area", `{"base_rate":100,"area":"atlantis","date":"2025-02-01"}`, http.StatusUnprocessableEntity},
		{"missing area", `{"base_rate":100,"date":"2025-02-01"}`, http.StatusBadRequest},
		{"bad date", `{"base_rate":100,"area":"marina","date":"01/02/2025"}`, http.StatusBadRequest},
		{"outside calendar", `{"base_rate":100,"area":"marina","date":"2031-01-01"}`, http.StatusBadRequest},
		{"malformed json", `{"base_rate":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/v1/pricing/quote", tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestCalendar(t *testing.T) {
	e := newPublicServer()
	rec := do(e, http.MethodGet, "/v1/pricing/calendar?base_rate=100&area=jlt&days_ahead=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		DaysAhead int                   `json:"days_ahead"`
		Calendar  []pricing.CalendarDay `json:"pricing_calendar"`
	}
	decode(t, rec, &out)
	if out.DaysAhead != 3 || len(out.Calendar) != 3 {
		t.Fatalf("days = %d/%d, want 3", out.DaysAhead, len(out.Calendar))
	}
	want := []float64{192, 120, 100}
	for i, d := range out.Calendar {
		if d.SuggestedPrice != want[i] {
			t.Errorf("%s price = %v, want %v", d.Date, d.SuggestedPrice, want[i])
		}
	}

	rec = do(e, http.MethodGet, "/v1/pricing/calendar?base_rate=100&area=jlt", "")
	decode(t, rec, &out)
	if len(out.Calendar) != testPricingCfg.DefaultCalendarDays {
		t.Errorf("default calendar length = %d", len(out.Calendar))
	}
}

func TestCalendarErrors(t *testing.T) {
	e := newPublicServer()
	tests := []struct {
		query  string
		status int
	}{
		{"area=jlt", http.StatusBadRequest},
		{"base_rate=abc&area=jlt", http.StatusBadRequest},
		{"base_rate=100", http.StatusBadRequest},
		{"base_rate=100&area=jlt&days_ahead=0", http.StatusBadRequest},
		{"base_rate=100&area=jlt&days_ahead=366", http.StatusBadRequest},
		{"base_rate=-1&area=jlt", http.StatusBadRequest},
		{"base_rate=100&area=atlantis", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		if rec := do(e, http.MethodGet, "/v1/pricing/calendar?"+tt.query, ""); rec.Code != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.query, rec.Code, tt.status)
		}
	}
}

func TestBenchmark(t *testing.T) {
	e := newPublicServer()
	rec := do(e, http.MethodGet, "/v1/market/benchmarks/marina?property_type=villa", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var b pricing.MarketBenchmark
	decode(t, rec, &b)
	if b.AverageDailyRate != 192 || b.Tier != pricing.TierPremium || b.PropertyType != "villa" {
		t.Errorf("benchmark = %+v", b)
	}
	if rec := do(e, http.MethodGet, "/v1/market/benchmarks/atlantis", ""); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown area status = %d", rec.Code)
	}
}

func TestForecast(t *testing.T) {
	e := newPublicServer()
	rec := do(e, http.MethodGet, "/v1/market/forecast", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var f pricing.Forecast
	decode(t, rec, &f)
	if len(f.Months) != 12 || f.Months[0].Revenue != 5000 {
		t.Errorf("forecast = %d months, first %v", len(f.Months), f.Months[0].Revenue)
	}

	rec = do(e, http.MethodGet, "/v1/market/forecast?months_ahead=1&baseline=1000", "")
	decode(t, rec, &f)
	if len(f.Months) != 1 || f.Months[0].Revenue != 1000 {
		t.Errorf("baseline forecast = %+v", f.Months)
	}

	for _, q := range []string{"months_ahead=0", "months_ahead=25", "baseline=-5", "baseline=x"} {
		if rec := do(e, http.MethodGet, "/v1/market/forecast?"+q, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}
}

func TestSeasonsAndAreas(t *testing.T) {
	e := newPublicServer()
	var seasons struct {
		Seasons []pricing.SeasonInfo `json:"seasons"`
	}
	decode(t, do(e, http.MethodGet, "/v1/market/seasons", ""), &seasons)
	if len(seasons.Seasons) != 4 || seasons.Seasons[0].Period != pricing.SeasonPeakWinter {
		t.Errorf("seasons = %+v", seasons.Seasons)
	}
	var areas struct {
		Areas []pricing.Area `json:"areas"`
	}
	decode(t, do(e, http.MethodGet, "/v1/market/areas", ""), &areas)
	if len(areas.Areas) != 10 {
		t.Errorf("len(areas) = %d, want 10", len(areas.Areas))
	}
}

func newOwnerServer(pub *fakePublisher, rev fakeRevenue, user float64) *echo.Echo {
	props := fakeProperties{
		12: {ID: 12, OwnerID: 7, Title: "Marina view", Address: "Marina Gate 1", City: "Dubai", PricePerNight: 250, PropertyType: "apartment", Bedrooms: 1},
		13: {ID: 13, OwnerID: 8, Title: "Not yours", Address: "Deira", PricePerNight: 90, Bedrooms: 1},
	}
	h := NewPropertyPricingHandler(NewPricingHandler(testEngine(), testPricingCfg), props, rev, pub, zerolog.Nop())
	e := echo.New()
	g := e.Group("/v1")
	if user > 0 {
		g.Use(asUser(user))
	}
	g.GET("/properties/:id/pricing-calendar", h.PricingCalendar)
	g.GET("/properties/:id/market-comparison", h.MarketComparison)
	g.GET("/owner/forecast", h.OwnerForecast)
	return e
}

func TestPropertyPricingCalendar(t *testing.T) {
	pub := &fakePublisher{}
	e := newOwnerServer(pub, fakeRevenue{}, 7)
	rec := do(e, http.MethodGet, "/v1/properties/12/pricing-calendar?days_ahead=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Area     pricing.AreaTag       `json:"area"`
		Calendar []pricing.CalendarDay `json:"pricing_calendar"`
	}
	decode(t, rec, &out)
	if out.Area != pricing.AreaMarina || len(out.Calendar) != 5 {
		t.Errorf("area %s, %d days", out.Area, len(out.Calendar))
	}
	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	ev := pub.events[0]
	if ev.PropertyID != 12 || ev.OwnerID != 7 || ev.Days != 5 || ev.Area != "marina" || ev.From != "2026-10-16" || ev.To != "2026-10-20" {
		t.Errorf("event = %+v", ev)
	}
	if ev.TablesVer == "" || ev.MaxPrice < ev.MinPrice {
		t.Errorf("event summary = %+v", ev)
	}
}

func TestPropertyPricingCalendarPublishFailureIgnored(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	e := newOwnerServer(pub, fakeRevenue{}, 7)
	if rec := do(e, http.MethodGet, "/v1/properties/12/pricing-calendar", ""); rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestPropertyEndpointsAccess(t *testing.T) {
	tests := []struct {
		name   string
		user   float64
		target string
		status int
	}{
		{"other owner's property", 7, "/v1/properties/13/pricing-calendar", http.StatusNotFound},
		{"missing property", 7, "/v1/properties/99/market-comparison", http.StatusNotFound},
		{"bad id", 7, "/v1/properties/abc/pricing-calendar", http.StatusBadRequest},
		{"no identity", 0, "/v1/properties/12/pricing-calendar", http.StatusUnauthorized},
		{"days out of range", 7, "/v1/properties/12/pricing-calendar?days_ahead=1000", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{}
			rec := do(newOwnerServer(pub, fakeRevenue{}, tt.user), http.MethodGet, tt.target, "")
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if len(pub.events) != 0 {
				t.Error("event published for a failed request")
			}
		})
	}
}

func TestMarketComparison(t *testing.T) {
	e := newOwnerServer(&fakePublisher{}, fakeRevenue{}, 7)
	rec := do(e, http.MethodGet, "/v1/properties/12/market-comparison", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out struct {
		Benchmarks pricing.MarketBenchmark  `json:"benchmarks"`
		Comparison pricing.MarketComparison `json:"comparison"`
	}
	decode(t, rec, &out)
	if out.Benchmarks.Area != pricing.AreaMarina {
		t.Errorf("area = %s", out.Benchmarks.Area)
	}
	c := out.Comparison
	if c.UserRate != 250 || c.MarketRate != 192 || c.VariancePercent != 30.2 || c.Position != "Above Market" {
		t.Errorf("comparison = %+v", c)
	}
}

func TestOwnerForecast(t *testing.T) {
	tests := []struct {
		name     string
		rev      fakeRevenue
		status   int
		baseline float64
	}{
		{"with revenue", fakeRevenue{total: 60000}, http.StatusOK, 5000},
		{"no revenue", fakeRevenue{}, http.StatusOK, 1000},
		{"store error", fakeRevenue{err: errors.New("connection refused")}, http.StatusInternalServerError, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(newOwnerServer(&fakePublisher{}, tt.rev, 7), http.MethodGet, "/v1/owner/forecast?months_ahead=3", "")
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}
			var out struct {
				Baseline    float64          `json:"monthly_baseline"`
				NextQuarter float64          `json:"next_quarter_revenue"`
				Forecast    pricing.Forecast `json:"forecast"`
			}
			decode(t, rec, &out)
			if out.Baseline != tt.baseline || len(out.Forecast.Months) != 3 {
				t.Errorf("baseline %v, %d months", out.Baseline, len(out.Forecast.Months))
			}
			var sum float64
			for _, m := range out.Forecast.Months {
				sum += m.Revenue
			}
			if diff := sum - out.NextQuarter; diff > 0.01 || diff < -0.01 {
				t.Errorf("next quarter = %v, months sum to %v", out.NextQuarter, sum)
			}
		})
	}
}

func TestGetUserID(t *testing.T) {
	e := echo.New()
	tests := []struct {
		v    any
		want uint64
		ok   bool
	}{
		{float64(42), 42, true},
		{uint64(7), 7, true},
		{"15", 15, true},
		{float64(-1), 0, false},
		{1.5, 0, false},
		{nil, 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.Set(middleware.CtxUserID, tt.v)
		got, err := getUserID(c)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("getUserID(%v) = %d, %v", tt.v, got, err)
		}
	}
}
