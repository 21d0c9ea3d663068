// Package pricing is the dynamic pricing and demand-forecasting engine. It
// turns a base nightly rate, an area tag, a calendar date and a few property
// attributes into a recommended price, and derives pricing calendars, market
// benchmarks and month-ahead revenue forecasts from the same reference tables.
//
// Everything in this package is a pure computation over immutable tables, so
// an Engine may be shared freely between goroutines.
package pricing

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

// AreaTag identifies a geographic submarket.
type AreaTag string

const (
	AreaPalmJumeirah AreaTag = "palm_jumeirah"
	AreaMarina       AreaTag = "marina"
	AreaDowntown     AreaTag = "downtown"
	AreaJBR          AreaTag = "jbr"
	AreaJumeirah     AreaTag = "jumeirah"
	AreaBusinessBay  AreaTag = "business_bay"
	AreaJLT          AreaTag = "jlt"
	AreaSiliconOasis AreaTag = "silicon_oasis"
	AreaDeira        AreaTag = "deira"
	AreaBurDubai     AreaTag = "bur_dubai"
)

// Season is one of the four demand periods of the year.
type Season string

const (
	SeasonPeakWinter Season = "peak_winter" // Dec-Feb
	SeasonHighWinter Season = "high_winter" // Mar, Nov
	SeasonShoulder   Season = "shoulder"    // Apr, Oct
	SeasonLowSummer  Season = "low_summer"  // May-Sep
)

// EventType names a recurring market event with its own demand multiplier.
type EventType string

const (
	EventShoppingFestival EventType = "shopping_festival"
	EventF1GrandPrix      EventType = "f1_grand_prix"
	EventGitex            EventType = "gitex"
	EventArabHealth       EventType = "arab_health"
	EventRamadan          EventType = "ramadan"
	EventEidAlFitr        EventType = "eid_al_fitr"
	EventEidAlAdha        EventType = "eid_al_adha"
	EventNationalDay      EventType = "uae_national_day"
	EventNewYear          EventType = "new_year"
)

// Area is one row of the area table.
type Area struct {
	Tag           AreaTag  `json:"tag"`
	Name          string   `json:"name"`
	Multiplier    float64  `json:"multiplier"`
	DemandProfile string   `json:"demand_profile"`
	Hints         []string `json:"hints,omitempty"`
}

// SeasonInfo is one row of the season table.
type SeasonInfo struct {
	Period     Season  `json:"period"`
	Multiplier float64 `json:"multiplier"`
	Months     []int   `json:"months"`
}

// EventWindow binds an event type to the days [From, To] of one calendar
// month.
type EventWindow struct {
	Year  int       `json:"year"`
	Month int       `json:"month"`
	Name  string    `json:"name"`
	Type  EventType `json:"type"`
	From  int       `json:"from"`
	To    int       `json:"to"`
}

// contains reports whether day-of-month d falls inside the window.
func (w EventWindow) contains(d int) bool { return d >= w.From && d <= w.To }

// multiplierTable is a keyed multiplier lookup. A strict table (fallback nil)
// reports unknown keys as missing; a table with a fallback answers every key.
type multiplierTable struct {
	name     string
	values   map[string]float64
	fallback *float64
}

func (t multiplierTable) lookup(key string) (float64, bool) {
	if v, ok := t.values[key]; ok {
		return v, true
	}
	if t.fallback != nil {
		return *t.fallback, true
	}
	return 0, false
}

// Tables is the loaded, validated reference data. It is read-only after
// construction.
type Tables struct {
	Version string

	areas         map[AreaTag]Area
	areaOrder     []AreaTag
	areaTable     multiplierTable // strict
	seasons       []SeasonInfo
	seasonByMonth [13]Season
	seasonTable   multiplierTable // strict
	eventTable    multiplierTable // strict
	propertyTable multiplierTable // fallback "other"

	weekendDays    map[time.Weekday]bool
	weekendPremium float64

	baseADR         float64
	baselineRevenue float64

	firstYear int
	lastYear  int
	windows   []EventWindow
	byMonth   map[string][]int // "YYYY-MM" -> indexes into windows
}

type eventDoc struct {
	Type       EventType `json:"type"`
	Multiplier float64   `json:"multiplier"`
}

type propertyTypesDoc struct {
	Multipliers map[string]float64 `json:"multipliers"`
	Fallback    float64            `json:"fallback"`
}

type weekendDoc struct {
	Days    []string `json:"days"`
	Premium float64  `json:"premium"`
}

type benchmarkDoc struct {
	BaseADR float64 `json:"base_adr"`
}

type forecastDoc struct {
	BaselineRevenue float64 `json:"baseline_revenue"`
}

type calendarDoc struct {
	FirstYear int           `json:"first_year"`
	LastYear  int           `json:"last_year"`
	Windows   []EventWindow `json:"windows"`
}

type tablesDoc struct {
	Version       string           `json:"version"`
	Areas         []Area           `json:"areas"`
	Seasons       []SeasonInfo     `json:"seasons"`
	Events        []eventDoc       `json:"events"`
	PropertyTypes propertyTypesDoc `json:"property_types"`
	Weekend       weekendDoc       `json:"weekend"`
	Benchmark     benchmarkDoc     `json:"benchmark"`
	Forecast      forecastDoc      `json:"forecast"`
	Calendar      calendarDoc      `json:"calendar"`
}

//go:embed data/reference.json
var referenceJSON []byte

// DefaultTables returns the reference tables compiled into the binary.
func DefaultTables() *Tables {
	t, err := LoadTables(bytes.NewReader(referenceJSON))
	if err != nil {
		panic(fmt.Sprintf("pricing: embedded reference tables: %v", err))
	}
	return t
}

// LoadTablesFile reads a reference table document from disk.
func LoadTablesFile(path string) (*Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadTables(f)
}

// LoadTables decodes and validates a reference table document.
func LoadTables(r io.Reader) (*Tables, error) {
	var doc tablesDoc
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidTables, err)
	}
	return buildTables(doc)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTables, fmt.Sprintf(format, args...))
}

func buildTables(doc tablesDoc) (*Tables, error) {
	t := &Tables{
		Version:     doc.Version,
		areas:       make(map[AreaTag]Area, len(doc.Areas)),
		areaTable:   multiplierTable{name: "area", values: map[string]float64{}},
		seasonTable: multiplierTable{name: "season", values: map[string]float64{}},
		eventTable:  multiplierTable{name: "event", values: map[string]float64{}},
		weekendDays: map[time.Weekday]bool{},
		byMonth:     map[string][]int{},
	}

	if len(doc.Areas) == 0 {
		return nil, invalid("no areas")
	}
	for _, a := range doc.Areas {
		if a.Tag == "" || a.Multiplier <= 0 {
			return nil, invalid("area %q: empty tag or non-positive multiplier", a.Tag)
		}
		if _, dup := t.areas[a.Tag]; dup {
			return nil, invalid("duplicate area %q", a.Tag)
		}
		t.areas[a.Tag] = a
		t.areaOrder = append(t.areaOrder, a.Tag)
		t.areaTable.values[string(a.Tag)] = a.Multiplier
	}

	for _, s := range doc.Seasons {
		if s.Multiplier <= 0 {
			return nil, invalid("season %q: non-positive multiplier", s.Period)
		}
		if _, dup := t.seasonTable.values[string(s.Period)]; dup {
			return nil, invalid("duplicate season %q", s.Period)
		}
		t.seasonTable.values[string(s.Period)] = s.Multiplier
		for _, m := range s.Months {
			if m < 1 || m > 12 {
				return nil, invalid("season %q: month %d out of range", s.Period, m)
			}
			if t.seasonByMonth[m] != "" {
				return nil, invalid("month %d mapped to both %q and %q", m, t.seasonByMonth[m], s.Period)
			}
			t.seasonByMonth[m] = s.Period
		}
		t.seasons = append(t.seasons, s)
	}
	for m := 1; m <= 12; m++ {
		if t.seasonByMonth[m] == "" {
			return nil, invalid("month %d has no season", m)
		}
	}

	for _, e := range doc.Events {
		if e.Type == "" || e.Multiplier <= 0 {
			return nil, invalid("event %q: empty type or non-positive multiplier", e.Type)
		}
		t.eventTable.values[string(e.Type)] = e.Multiplier
	}

	fallback := doc.PropertyTypes.Fallback
	if fallback <= 0 {
		return nil, invalid("property type fallback must be positive")
	}
	t.propertyTable = multiplierTable{name: "property_type", values: map[string]float64{}, fallback: &fallback}
	for k, v := range doc.PropertyTypes.Multipliers {
		if v <= 0 {
			return nil, invalid("property type %q: non-positive multiplier", k)
		}
		t.propertyTable.values[strings.ToLower(k)] = v
	}

	if doc.Weekend.Premium <= 0 {
		return nil, invalid("weekend premium must be positive")
	}
	t.weekendPremium = doc.Weekend.Premium
	for _, d := range doc.Weekend.Days {
		wd, ok := parseWeekday(d)
		if !ok {
			return nil, invalid("unknown weekday %q", d)
		}
		t.weekendDays[wd] = true
	}

	if doc.Benchmark.BaseADR <= 0 || doc.Forecast.BaselineRevenue <= 0 {
		return nil, invalid("base ADR and baseline revenue must be positive")
	}
	t.baseADR = doc.Benchmark.BaseADR
	t.baselineRevenue = doc.Forecast.BaselineRevenue

	cal := doc.Calendar
	if cal.FirstYear <= 0 || cal.LastYear < cal.FirstYear {
		return nil, invalid("calendar range %d-%d", cal.FirstYear, cal.LastYear)
	}
	t.firstYear, t.lastYear = cal.FirstYear, cal.LastYear
	for _, w := range cal.Windows {
		if w.Year < cal.FirstYear || w.Year > cal.LastYear || w.Month < 1 || w.Month > 12 {
			return nil, invalid("event %q: %04d-%02d outside calendar", w.Name, w.Year, w.Month)
		}
		if w.From < 1 || w.To > 31 || w.From > w.To {
			return nil, invalid("event %q: bad day span %d-%d", w.Name, w.From, w.To)
		}
		if _, ok := t.eventTable.lookup(string(w.Type)); !ok {
			return nil, invalid("event %q: unknown type %q", w.Name, w.Type)
		}
		t.windows = append(t.windows, w)
		key := monthKey(w.Year, time.Month(w.Month))
		t.byMonth[key] = append(t.byMonth[key], len(t.windows)-1)
	}
	return t, nil
}

func parseWeekday(s string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), s) {
			return d, true
		}
	}
	return 0, false
}

func monthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// Area returns the area row for tag.
func (t *Tables) Area(tag AreaTag) (Area, error) {
	a, ok := t.areas[tag]
	if !ok {
		return Area{}, fmt.Errorf("%w: %q", ErrUnknownAreaTag, tag)
	}
	return a, nil
}

// Areas returns every area in table order.
func (t *Tables) Areas() []Area {
	out := make([]Area, 0, len(t.areaOrder))
	for _, tag := range t.areaOrder {
		out = append(out, t.areas[tag])
	}
	return out
}

// Seasons returns the season table sorted by multiplier, strongest first.
func (t *Tables) Seasons() []SeasonInfo {
	out := make([]SeasonInfo, len(t.seasons))
	copy(out, t.seasons)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Multiplier > out[j].Multiplier })
	return out
}

// YearRange reports the first and last year covered by the event calendar.
func (t *Tables) YearRange() (first, last int) { return t.firstYear, t.lastYear }

func (t *Tables) areaMultiplier(tag AreaTag) (float64, error) {
	v, ok := t.areaTable.lookup(string(tag))
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAreaTag, tag)
	}
	return v, nil
}

func (t *Tables) seasonMultiplier(s Season) float64 {
	// every season reachable from seasonByMonth is in the table
	v, _ := t.seasonTable.lookup(string(s))
	return v
}

func (t *Tables) propertyTypeMultiplier(propertyType string) float64 {
	v, _ := t.propertyTable.lookup(strings.ToLower(strings.TrimSpace(propertyType)))
	return v
}
