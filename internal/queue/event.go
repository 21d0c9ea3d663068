// Package queue defines the pricing events exchanged over the message broker
// and the background consumer that records them.
package queue

import "time"

// EventPricingCalendarGenerated is the routing key and default queue name of
// PricingCalendarGenerated.
const EventPricingCalendarGenerated = "pricing.calendar.generated"

// PricingCalendarGenerated is published after a calendar has been produced
// for an owner's property. It summarises the calendar so consumers can log
// or alert without recomputing prices.
type PricingCalendarGenerated struct {
	EventID     string    `json:"event_id"`
	PropertyID  uint64    `json:"property_id"`
	OwnerID     uint64    `json:"owner_id"`
	Area        string    `json:"area"`
	BaseRate    float64   `json:"base_rate"`
	Days        int       `json:"days"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	MinPrice    float64   `json:"min_price"`
	MaxPrice    float64   `json:"max_price"`
	AvgPrice    float64   `json:"avg_price"`
	PeakDays    int       `json:"peak_days"`
	TablesVer   string    `json:"tables_version"`
	GeneratedAt time.Time `json:"generated_at"`
}
