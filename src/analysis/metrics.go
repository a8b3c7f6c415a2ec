package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/mjanssen/SupportTicketAnalytics/src/tickets"
)

// Metrics are the KPI aggregates over a filtered subset. All fields are NaN
// when the subset is empty (or, for AvgTicketsPerDay, when no row carries a
// parsed date); use Format* helpers for display.
type Metrics struct {
	Rows             int
	AvgCSAT          float64
	AvgResolutionMin float64
	AvgTicketsPerDay float64
	HappyPct         float64
}

// ComputeMetrics aggregates the subset. It never fails: degenerate inputs
// degrade to NaN fields.
func ComputeMetrics(rows []tickets.Ticket) Metrics {
	m := Metrics{
		Rows:             len(rows),
		AvgCSAT:          math.NaN(),
		AvgResolutionMin: math.NaN(),
		AvgTicketsPerDay: math.NaN(),
		HappyPct:         math.NaN(),
	}
	if len(rows) == 0 {
		return m
	}
	csat := make([]float64, len(rows))
	res := make([]float64, len(rows))
	happy := make([]float64, len(rows))
	for i, t := range rows {
		csat[i] = t.CSAT
		res[i] = t.ResolutionMinutes
		happy[i] = float64(t.Happy)
	}
	m.AvgCSAT = stat.Mean(csat, nil)
	m.AvgResolutionMin = stat.Mean(res, nil)
	m.HappyPct = stat.Mean(happy, nil) * 100

	if counts := DailyCounts(rows); len(counts) > 0 {
		perDay := make([]float64, 0, len(counts))
		for _, c := range counts {
			perDay = append(perDay, float64(c.Count))
		}
		m.AvgTicketsPerDay = stat.Mean(perDay, nil)
	}
	return m
}

// DayCount is the number of tickets created on one calendar day.
type DayCount struct {
	Day   string // yyyy-mm-dd
	Count int
}

// DailyCounts groups rows by calendar date and counts per date, ascending by
// day. Rows with a missing creation timestamp are skipped.
func DailyCounts(rows []tickets.Ticket) []DayCount {
	byDay := map[string]int{}
	for _, t := range rows {
		if !t.HasCreated() {
			continue
		}
		byDay[t.CreatedDate().Format("2006-01-02")]++
	}
	out := make([]DayCount, 0, len(byDay))
	for day, n := range byDay {
		out = append(out, DayCount{Day: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// CountBy tallies rows per value of key, sorted by value for stable display.
func CountBy(rows []tickets.Ticket, key func(tickets.Ticket) string) ([]string, []int) {
	counts := map[string]int{}
	for _, t := range rows {
		counts[key(t)]++
	}
	vals := make([]string, 0, len(counts))
	for v := range counts {
		vals = append(vals, v)
	}
	sort.Strings(vals)
	ns := make([]int, len(vals))
	for i, v := range vals {
		ns[i] = counts[v]
	}
	return vals, ns
}

// FormatValue renders v with the given precision, or "no data" when v is NaN.
func FormatValue(v float64, decimals int) string {
	if math.IsNaN(v) {
		return "no data"
	}
	return fmt.Sprintf("%.*f", decimals, v)
}
