package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/rental-pricing/internal/model"
	"github.com/iliyamo/rental-pricing/internal/pricing"
	"github.com/iliyamo/rental-pricing/internal/queue"
	"github.com/iliyamo/rental-pricing/internal/service"
)

// PropertyFinder loads a listing owned by a given user.
type PropertyFinder interface {
	GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Property, error)
}

// RevenueSource reports an owner's earned booking revenue.
type RevenueSource interface {
	EarnedRevenueByOwner(ctx context.Context, ownerID uint64) (float64, error)
}

// EventPublisher emits pricing events.
type EventPublisher interface {
	PublishCalendarGenerated(ctx context.Context, ev queue.PricingCalendarGenerated) error
}

const publishTimeout = 3 * time.Second

// PropertyPricingHandler prices listings stored in the row store on behalf
// of their owner.
type PropertyPricingHandler struct {
	*PricingHandler
	Properties PropertyFinder
	Revenue    RevenueSource
	Events     EventPublisher
	Logger     zerolog.Logger
}

func NewPropertyPricingHandler(ph *PricingHandler, properties PropertyFinder, revenue RevenueSource, events EventPublisher, logger zerolog.Logger) *PropertyPricingHandler {
	if ph == nil || properties == nil || revenue == nil {
		panic("nil dependency passed to NewPropertyPricingHandler")
	}
	if events == nil {
		events = service.NopPublisher{}
	}
	return &PropertyPricingHandler{
		PricingHandler: ph,
		Properties:     properties,
		Revenue:        revenue,
		Events:         events,
		Logger:         logger.With().Str("component", "property-pricing").Logger(),
	}
}

// loadOwned resolves the caller and the :id listing they own.
func (h *PropertyPricingHandler) loadOwned(c echo.Context) (*model.Property, uint64, error) {
	ownerID, err := getUserID(c)
	if err != nil {
		return nil, 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return nil, 0, err
	}
	p, err := h.Properties.GetByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		return nil, 0, err
	}
	return p, ownerID, nil
}

func (h *PropertyPricingHandler) fail(c echo.Context, err error) error {
	if he, ok := err.(*echo.HTTPError); ok {
		return c.JSON(he.Code, echo.Map{"error": he.Message})
	}
	return writeError(c, err)
}

// PricingCalendar generates the listing's calendar from its nightly rate and
// announces it on the broker. A failed publish does not fail the request.
func (h *PropertyPricingHandler) PricingCalendar(c echo.Context) error {
	p, ownerID, err := h.loadOwned(c)
	if err != nil {
		return h.fail(c, err)
	}
	params, err := h.readCalendarParams(c)
	if err != nil {
		return writeError(c, err)
	}
	area := service.ResolveAreaTag(p.Address, p.City)
	propertyType := p.PropertyType
	if propertyType == "" {
		propertyType = defaultPropertyType
	}

	cal, err := h.Engine.GeneratePricingCalendar(p.PricePerNight, area, params.days, propertyType, p.Bedrooms)
	if err != nil {
		return writeError(c, err)
	}

	ev := service.SummarizeCalendar(cal)
	ev.PropertyID = p.ID
	ev.OwnerID = ownerID
	ev.Area = string(area)
	ev.BaseRate = p.PricePerNight
	ev.TablesVer = h.Engine.Tables().Version
	ctx, cancel := context.WithTimeout(c.Request().Context(), publishTimeout)
	defer cancel()
	if err := h.Events.PublishCalendarGenerated(ctx, ev); err != nil {
		h.Logger.Warn().Err(err).Uint64("property_id", p.ID).Msg("calendar event not published")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"property_id":      p.ID,
		"area":             area,
		"base_rate":        p.PricePerNight,
		"pricing_calendar": cal,
	})
}

// MarketComparison benchmarks the listing's area and positions its nightly
// rate against the market ADR.
func (h *PropertyPricingHandler) MarketComparison(c echo.Context) error {
	p, _, err := h.loadOwned(c)
	if err != nil {
		return h.fail(c, err)
	}
	area := service.ResolveAreaTag(p.Address, p.City)
	b, err := h.Engine.MarketBenchmark(area, p.PropertyType)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"property_id": p.ID,
		"area":        area,
		"benchmarks":  b,
		"comparison":  h.Engine.CompareToMarket(p.PricePerNight, b),
	})
}

// OwnerForecast projects the caller's revenue using a monthly baseline
// derived from their earned bookings.
func (h *PropertyPricingHandler) OwnerForecast(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	months, err := queryInt(c, "months_ahead", h.Cfg.DefaultForecastMonths, 1, h.Cfg.MaxForecastMonths)
	if err != nil {
		return writeError(c, err)
	}
	revenue, err := h.Revenue.EarnedRevenueByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return writeError(c, err)
	}
	baseline := service.MonthlyBaseline(revenue)
	f, err := h.Engine.ForecastFrom(baseline, months)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"monthly_baseline":     baseline,
		"next_quarter_revenue": nextQuarter(f),
		"forecast":             f,
	})
}

func nextQuarter(f pricing.Forecast) float64 {
	sum := decimal.Zero
	for i, m := range f.Months {
		if i == 3 {
			break
		}
		sum = sum.Add(decimal.NewFromFloat(m.Revenue))
	}
	return sum.Round(2).InexactFloat64()
}
