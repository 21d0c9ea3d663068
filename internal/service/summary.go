package service

import (
	"github.com/shopspring/decimal"

	"github.com/iliyamo/rental-pricing/internal/pricing"
	"github.com/iliyamo/rental-pricing/internal/queue"
)

// SummarizeCalendar fills the price statistics of a calendar event. cal must
// not be empty.
func SummarizeCalendar(cal []pricing.CalendarDay) queue.PricingCalendarGenerated {
	ev := queue.PricingCalendarGenerated{
		Days:     len(cal),
		From:     cal[0].Date,
		To:       cal[len(cal)-1].Date,
		MinPrice: cal[0].SuggestedPrice,
		MaxPrice: cal[0].SuggestedPrice,
	}
	sum := decimal.Zero
	for _, d := range cal {
		if d.SuggestedPrice < ev.MinPrice {
			ev.MinPrice = d.SuggestedPrice
		}
		if d.SuggestedPrice > ev.MaxPrice {
			ev.MaxPrice = d.SuggestedPrice
		}
		if d.DemandLevel == pricing.DemandVeryHigh {
			ev.PeakDays++
		}
		sum = sum.Add(decimal.NewFromFloat(d.SuggestedPrice))
	}
	ev.AvgPrice = sum.Div(decimal.NewFromInt(int64(len(cal)))).Round(2).InexactFloat64()
	return ev
}

// MonthlyBaseline converts an owner's lifetime earned revenue into the
// monthly baseline of a revenue forecast. Owners without revenue get a
// nominal baseline of 1000.
func MonthlyBaseline(totalRevenue float64) float64 {
	if totalRevenue <= 0 {
		return 1000
	}
	return decimal.NewFromFloat(totalRevenue).Div(decimal.NewFromInt(12)).Round(2).InexactFloat64()
}
