package pricing

import "time"

// ActiveEvent is one event window in effect on a given date.
type ActiveEvent struct {
	Name       string    `json:"name"`
	Type       EventType `json:"type"`
	Multiplier float64   `json:"multiplier"`
}

// ResolveSeason returns the season covering date. Only the month is
// consulted, and every month belongs to exactly one season.
func (e *Engine) ResolveSeason(date time.Time) Season {
	return e.tables.seasonByMonth[date.Month()]
}

// ResolveEvents returns every event window registered for the date's month
// whose day span contains the date, in calendar order. It returns an empty,
// non-nil slice when nothing is active.
func (e *Engine) ResolveEvents(date time.Time) []ActiveEvent {
	out := []ActiveEvent{}
	idx := e.tables.byMonth[monthKey(date.Year(), date.Month())]
	for _, i := range idx {
		w := e.tables.windows[i]
		if !w.contains(date.Day()) {
			continue
		}
		m, _ := e.tables.eventTable.lookup(string(w.Type))
		out = append(out, ActiveEvent{Name: w.Name, Type: w.Type, Multiplier: m})
	}
	return out
}

// strongestEvent returns the largest multiplier among events, or 1.0 when
// there are none. Concurrent events do not stack.
func strongestEvent(events []ActiveEvent) float64 {
	strongest := 1.0
	for i, ev := range events {
		if i == 0 || ev.Multiplier > strongest {
			strongest = ev.Multiplier
		}
	}
	return strongest
}

func (e *Engine) isWeekend(date time.Time) bool {
	return e.tables.weekendDays[date.Weekday()]
}
