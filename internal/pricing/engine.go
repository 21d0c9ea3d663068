package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Engine evaluates pricing, calendar, benchmark and forecast requests against
// one set of reference tables. The clock is consulted only to find "today"
// for the calendar and forecast windows.
type Engine struct {
	tables *Tables
	now    func() time.Time
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock replaces time.Now as the source of the current date.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine builds an Engine over t. A nil t selects DefaultTables.
func NewEngine(t *Tables, opts ...Option) *Engine {
	if t == nil {
		t = DefaultTables()
	}
	e := &Engine{tables: t, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tables exposes the reference data the engine was built with.
func (e *Engine) Tables() *Tables { return e.tables }

// Today returns the current date at midnight UTC in the clock's calendar.
func (e *Engine) Today() time.Time {
	return dateOf(e.now())
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 { return decimal.NewFromFloat(v).Round(2).InexactFloat64() }

func round1(v float64) float64 { return decimal.NewFromFloat(v).Round(1).InexactFloat64() }
