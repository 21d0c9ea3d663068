package pricing

import "fmt"

// CalendarDay is one row of a pricing calendar.
type CalendarDay struct {
	Date    string `json:"date"`
	DayName string `json:"day_name"`
	PricingResult
}

// GeneratePricingCalendar prices daysAhead consecutive days starting today.
// Each day is priced independently; no smoothing is applied across days.
// Either the whole calendar is returned or an error.
func (e *Engine) GeneratePricingCalendar(baseRate float64, area AreaTag, daysAhead int, propertyType string, bedrooms int) ([]CalendarDay, error) {
	if daysAhead <= 0 {
		return nil, fmt.Errorf("%w: days ahead must be positive, got %d", ErrInvalidPricingInput, daysAhead)
	}
	start := e.Today()
	out := make([]CalendarDay, 0, daysAhead)
	for i := 0; i < daysAhead; i++ {
		date := start.AddDate(0, 0, i)
		res, err := e.ComputePrice(PricingRequest{
			BaseRate:     baseRate,
			Area:         area,
			Date:         date,
			PropertyType: propertyType,
			Bedrooms:     bedrooms,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, CalendarDay{
			Date:          date.Format("2006-01-02"),
			DayName:       date.Weekday().String(),
			PricingResult: res,
		})
	}
	return out, nil
}
