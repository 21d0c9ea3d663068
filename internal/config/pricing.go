package config

// PricingConfig bounds the pricing endpoints and optionally points at a
// replacement reference-table document.
type PricingConfig struct {
	TablesPath            string // empty means the embedded tables
	MaxCalendarDays       int
	DefaultCalendarDays   int
	MaxForecastMonths     int
	DefaultForecastMonths int
}

func LoadPricingConfig() PricingConfig {
	c := PricingConfig{
		TablesPath:            envStr("PRICING_TABLES_PATH", ""),
		MaxCalendarDays:       envInt("PRICING_MAX_CALENDAR_DAYS", 365),
		DefaultCalendarDays:   envInt("PRICING_DEFAULT_CALENDAR_DAYS", 30),
		MaxForecastMonths:     envInt("PRICING_MAX_FORECAST_MONTHS", 24),
		DefaultForecastMonths: envInt("PRICING_DEFAULT_FORECAST_MONTHS", 12),
	}
	if c.MaxCalendarDays < 1 {
		c.MaxCalendarDays = 365
	}
	if c.MaxForecastMonths < 1 {
		c.MaxForecastMonths = 24
	}
	c.DefaultCalendarDays = clamp(c.DefaultCalendarDays, 1, c.MaxCalendarDays)
	c.DefaultForecastMonths = clamp(c.DefaultForecastMonths, 1, c.MaxForecastMonths)
	return c
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
