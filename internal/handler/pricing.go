package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rental-pricing/internal/config"
	"github.com/iliyamo/rental-pricing/internal/pricing"
)

const (
	defaultPropertyType = "apartment"
	defaultBedrooms     = 1
	maxBedrooms         = 20
)

// PricingHandler serves the public pricing and market endpoints. All of them
// are pure functions of the request and the engine's tables.
type PricingHandler struct {
	Engine *pricing.Engine
	Cfg    config.PricingConfig
}

func NewPricingHandler(engine *pricing.Engine, cfg config.PricingConfig) *PricingHandler {
	if engine == nil {
		panic("nil engine passed to NewPricingHandler")
	}
	return &PricingHandler{Engine: engine, Cfg: cfg}
}

// quoteRequest is the body of POST /v1/pricing/quote. Date is YYYY-MM-DD and
// defaults to today; Bedrooms defaults to 1.
type quoteRequest struct {
	BaseRate     float64 `json:"base_rate"`
	Area         string  `json:"area"`
	Date         string  `json:"date"`
	PropertyType string  `json:"property_type"`
	Bedrooms     *int    `json:"bedrooms"`
}

// Quote prices a single night.
func (h *PricingHandler) Quote(c echo.Context) error {
	var in quoteRequest
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON body"})
	}
	if strings.TrimSpace(in.Area) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "area is required"})
	}
	date := h.Engine.Today()
	if in.Date != "" {
		d, err := time.Parse("2006-01-02", in.Date)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
		date = d
	}
	bedrooms := defaultBedrooms
	if in.Bedrooms != nil {
		bedrooms = *in.Bedrooms
	}
	propertyType := in.PropertyType
	if propertyType == "" {
		propertyType = defaultPropertyType
	}

	res, err := h.Engine.ComputePrice(pricing.PricingRequest{
		BaseRate:     in.BaseRate,
		Area:         pricing.AreaTag(strings.ToLower(strings.TrimSpace(in.Area))),
		Date:         date,
		PropertyType: propertyType,
		Bedrooms:     bedrooms,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"date":   date.Format("2006-01-02"),
		"area":   strings.ToLower(strings.TrimSpace(in.Area)),
		"result": res,
	})
}

// calendarParams are the listing attributes shared by the calendar routes.
type calendarParams struct {
	days         int
	propertyType string
	bedrooms     int
}

func (h *PricingHandler) readCalendarParams(c echo.Context) (calendarParams, error) {
	days, err := queryInt(c, "days_ahead", h.Cfg.DefaultCalendarDays, 1, h.Cfg.MaxCalendarDays)
	if err != nil {
		return calendarParams{}, err
	}
	bedrooms, err := queryInt(c, "bedrooms", defaultBedrooms, 0, maxBedrooms)
	if err != nil {
		return calendarParams{}, err
	}
	pt := c.QueryParam("property_type")
	if pt == "" {
		pt = defaultPropertyType
	}
	return calendarParams{days: days, propertyType: pt, bedrooms: bedrooms}, nil
}

// Calendar prices consecutive days starting today for an ad-hoc listing.
func (h *PricingHandler) Calendar(c echo.Context) error {
	rate, ok, err := queryFloat(c, "base_rate")
	if err != nil {
		return writeError(c, err)
	}
	if !ok {
		return writeError(c, fmt.Errorf("%w: base_rate is required", errBadQuery))
	}
	area := pricing.AreaTag(strings.ToLower(c.QueryParam("area")))
	if area == "" {
		return writeError(c, fmt.Errorf("%w: area is required", errBadQuery))
	}
	p, err := h.readCalendarParams(c)
	if err != nil {
		return writeError(c, err)
	}
	cal, err := h.Engine.GeneratePricingCalendar(rate, area, p.days, p.propertyType, p.bedrooms)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"area":             area,
		"base_rate":        rate,
		"days_ahead":       p.days,
		"pricing_calendar": cal,
	})
}

// Benchmark returns the market snapshot of one area.
func (h *PricingHandler) Benchmark(c echo.Context) error {
	area := pricing.AreaTag(strings.ToLower(c.Param("area")))
	b, err := h.Engine.MarketBenchmark(area, c.QueryParam("property_type"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Forecast projects market revenue. An optional baseline replaces the
// tables' default monthly revenue.
func (h *PricingHandler) Forecast(c echo.Context) error {
	months, err := queryInt(c, "months_ahead", h.Cfg.DefaultForecastMonths, 1, h.Cfg.MaxForecastMonths)
	if err != nil {
		return writeError(c, err)
	}
	baseline, ok, err := queryFloat(c, "baseline")
	if err != nil {
		return writeError(c, err)
	}
	var f pricing.Forecast
	if ok {
		f, err = h.Engine.ForecastFrom(baseline, months)
	} else {
		f, err = h.Engine.Forecast(months)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

// Seasons lists the season table, strongest first.
func (h *PricingHandler) Seasons(c echo.Context) error {
	t := h.Engine.Tables()
	return c.JSON(http.StatusOK, echo.Map{
		"tables_version": t.Version,
		"seasons":        t.Seasons(),
	})
}

// Areas lists the supported market areas.
func (h *PricingHandler) Areas(c echo.Context) error {
	t := h.Engine.Tables()
	return c.JSON(http.StatusOK, echo.Map{
		"tables_version": t.Version,
		"areas":          t.Areas(),
	})
}
