package pricing

import (
	"fmt"
	"math"
)

const (
	forecastStepDays   = 30
	confidenceStart    = 95
	confidenceDecay    = 3
	confidenceFloor    = 60
	variationAmplitude = 0.1
	variationFrequency = 0.5
)

// ForecastMonth is one projected month.
type ForecastMonth struct {
	Month              string  `json:"month"`
	MonthShort         string  `json:"month_short"`
	Revenue            float64 `json:"forecasted_revenue"`
	Confidence         int     `json:"confidence"`
	Season             Season  `json:"season"`
	SeasonalMultiplier float64 `json:"seasonal_multiplier"`
}

// Forecast is a month-by-month revenue projection with summary insights.
type Forecast struct {
	Months            []ForecastMonth `json:"forecast_data"`
	Peak              ForecastMonth   `json:"peak_month"`
	Trough            ForecastMonth   `json:"low_month"`
	AverageConfidence float64         `json:"average_confidence"`
}

// Forecast projects monthsAhead months from the tables' baseline revenue.
func (e *Engine) Forecast(monthsAhead int) (Forecast, error) {
	return e.ForecastFrom(e.tables.baselineRevenue, monthsAhead)
}

// ForecastFrom projects monthsAhead months from baseline. Month i is dated
// today + 30*i days; its revenue is baseline * season multiplier *
// (1 + 0.1*sin(0.5*i)) and its confidence max(60, 95 - 3i). The variation
// term is deterministic so identical inputs give identical forecasts.
func (e *Engine) ForecastFrom(baseline float64, monthsAhead int) (Forecast, error) {
	if monthsAhead < 1 {
		return Forecast{}, fmt.Errorf("%w: months ahead must be at least 1, got %d", ErrInvalidPricingInput, monthsAhead)
	}
	if math.IsNaN(baseline) || math.IsInf(baseline, 0) || baseline <= 0 {
		return Forecast{}, fmt.Errorf("%w: baseline revenue must be positive, got %v", ErrInvalidPricingInput, baseline)
	}

	start := e.Today()
	f := Forecast{Months: make([]ForecastMonth, 0, monthsAhead)}
	confidenceSum := 0
	for i := 0; i < monthsAhead; i++ {
		date := start.AddDate(0, 0, forecastStepDays*i)
		season := e.ResolveSeason(date)
		mult := e.tables.seasonMultiplier(season)
		variation := math.Sin(float64(i)*variationFrequency)*variationAmplitude + 1

		m := ForecastMonth{
			Month:              date.Format("Jan 2006"),
			MonthShort:         date.Format("Jan"),
			Revenue:            round2(baseline * mult * variation),
			Confidence:         confidence(i),
			Season:             season,
			SeasonalMultiplier: mult,
		}
		if i == 0 || m.Revenue > f.Peak.Revenue {
			f.Peak = m
		}
		if i == 0 || m.Revenue < f.Trough.Revenue {
			f.Trough = m
		}
		confidenceSum += m.Confidence
		f.Months = append(f.Months, m)
	}
	f.AverageConfidence = round1(float64(confidenceSum) / float64(monthsAhead))
	return f, nil
}

func confidence(i int) int {
	c := confidenceStart - confidenceDecay*i
	if c < confidenceFloor {
		return confidenceFloor
	}
	return c
}
