package pricing

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Breakdown factor names, in the order they are applied.
const (
	FactorBaseRate     = "base_rate"
	FactorArea         = "area"
	FactorSeason       = "season"
	FactorEvent        = "event"
	FactorWeekend      = "weekend"
	FactorPropertyType = "property_type"
	FactorBedrooms     = "bedrooms"
)

// DemandLevel is the temporal market-pressure label of a priced date.
type DemandLevel string

const (
	DemandVeryHigh DemandLevel = "Very High"
	DemandHigh     DemandLevel = "High"
	DemandMedium   DemandLevel = "Medium"
	DemandLow      DemandLevel = "Low"
)

// PricingRequest is the input of a single-date price computation.
type PricingRequest struct {
	BaseRate     float64   `json:"base_rate"`
	Area         AreaTag   `json:"area"`
	Date         time.Time `json:"date"`
	PropertyType string    `json:"property_type"`
	Bedrooms     int       `json:"bedrooms"`
}

// Factor is one named step of the price composition.
type Factor struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// PricingResult is a suggested nightly price with its full audit trail.
type PricingResult struct {
	SuggestedPrice  float64       `json:"suggested_price"`
	Breakdown       []Factor      `json:"breakdown"`
	Season          Season        `json:"season"`
	ActiveEvents    []ActiveEvent `json:"active_events"`
	DemandLevel     DemandLevel   `json:"demand_level"`
	Recommendations []string      `json:"recommendations"`
}

// Factor returns the value recorded under name in the breakdown.
func (r PricingResult) Factor(name string) (float64, bool) {
	for _, f := range r.Breakdown {
		if f.Name == name {
			return f.Value, true
		}
	}
	return 0, false
}

// EventNames lists the names of the active events.
func (r PricingResult) EventNames() []string {
	names := make([]string, 0, len(r.ActiveEvents))
	for _, ev := range r.ActiveEvents {
		names = append(names, ev.Name)
	}
	return names
}

// ComputePrice composes the suggested nightly price for req. Multipliers are
// applied strictly in breakdown order and the result is rounded to cents.
func (e *Engine) ComputePrice(req PricingRequest) (PricingResult, error) {
	if err := e.validate(req.BaseRate, req.Bedrooms); err != nil {
		return PricingResult{}, err
	}
	areaMult, err := e.tables.areaMultiplier(req.Area)
	if err != nil {
		return PricingResult{}, err
	}
	date := dateOf(req.Date)
	if y := date.Year(); y < e.tables.firstYear || y > e.tables.lastYear {
		return PricingResult{}, fmt.Errorf("%w: date %s outside supported calendar %d-%d",
			ErrInvalidPricingInput, date.Format("2006-01-02"), e.tables.firstYear, e.tables.lastYear)
	}

	season := e.ResolveSeason(date)
	seasonMult := e.tables.seasonMultiplier(season)
	events := e.ResolveEvents(date)
	eventMult := strongestEvent(events)
	weekendMult := 1.0
	if e.isWeekend(date) {
		weekendMult = e.tables.weekendPremium
	}
	typeMult := e.tables.propertyTypeMultiplier(req.PropertyType)
	bedroomMult := bedroomMultiplier(req.Bedrooms)

	breakdown := []Factor{
		{FactorBaseRate, req.BaseRate},
		{FactorArea, areaMult},
		{FactorSeason, seasonMult},
		{FactorEvent, eventMult},
		{FactorWeekend, weekendMult},
		{FactorPropertyType, typeMult},
		{FactorBedrooms, bedroomMult},
	}
	price := req.BaseRate
	for _, f := range breakdown[1:] {
		price *= f.Value
	}

	return PricingResult{
		SuggestedPrice:  round2(price),
		Breakdown:       breakdown,
		Season:          season,
		ActiveEvents:    events,
		DemandLevel:     demandLevel(seasonMult, eventMult),
		Recommendations: recommendations(req.BaseRate, price, events, season),
	}, nil
}

func (e *Engine) validate(baseRate float64, bedrooms int) error {
	if math.IsNaN(baseRate) || math.IsInf(baseRate, 0) || baseRate <= 0 {
		return fmt.Errorf("%w: base rate must be positive, got %v", ErrInvalidPricingInput, baseRate)
	}
	if bedrooms < 0 {
		return fmt.Errorf("%w: bedrooms must not be negative, got %d", ErrInvalidPricingInput, bedrooms)
	}
	return nil
}

// bedroomMultiplier is 0.7 + 0.3 per bedroom, clamped to [0.5, 3.0].
func bedroomMultiplier(bedrooms int) float64 {
	return math.Max(0.5, math.Min(3.0, 0.7+0.3*float64(bedrooms)))
}

// demandLevel labels season and event pressure only; area, weekend and
// property attributes never move it.
func demandLevel(seasonMult, eventMult float64) DemandLevel {
	total := seasonMult * eventMult
	switch {
	case total >= 2.5:
		return DemandVeryHigh
	case total >= 1.5:
		return DemandHigh
	case total >= 1.0:
		return DemandMedium
	default:
		return DemandLow
	}
}

func recommendations(baseRate, price float64, events []ActiveEvent, season Season) []string {
	out := []string{}
	if (price-baseRate)/baseRate*100 > 50 {
		out = append(out, "High demand period - consider premium positioning")
	}
	if len(events) > 0 {
		names := make([]string, 0, len(events))
		for _, ev := range events {
			names = append(names, ev.Name)
		}
		out = append(out, "Major events active: "+strings.Join(names, ", "))
	}
	switch season {
	case SeasonPeakWinter:
		out = append(out, "Peak winter season - maximize revenue with premium rates")
	case SeasonLowSummer:
		out = append(out, "Summer season - consider longer stay discounts")
	}
	return out
}
