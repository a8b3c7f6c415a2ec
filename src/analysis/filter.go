// Package analysis implements the filtering, aggregation and comparison
// pipeline over a loaded ticket Dataset. Every function here is a pure
// function of its inputs; empty results are valid values, never errors.
package analysis

import (
	"time"

	"github.com/mjanssen/SupportTicketAnalytics/src/tickets"
)

// FilterSpec enumerates the allowed values per categorical column plus an
// inclusive date-only interval. Allowed sets are explicit: an empty set matches
// nothing, and "all values" is a caller-constructed default (see AllOf).
type FilterSpec struct {
	Channels   map[string]struct{}
	IssueTypes map[string]struct{}
	From, To   time.Time // compared by calendar date, inclusive
}

// AllOf builds the default spec allowing every channel and issue type present
// in the dataset over its full date range.
func AllOf(ds *tickets.Dataset) FilterSpec {
	spec := FilterSpec{
		Channels:   ToSet(ds.Channels()),
		IssueTypes: ToSet(ds.IssueTypes()),
	}
	if min, max, ok := ds.DateRange(); ok {
		spec.From, spec.To = min, max
	}
	return spec
}

// ToSet converts a value list into a membership set.
func ToSet(vals []string) map[string]struct{} {
	set := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		set[v] = struct{}{}
	}
	return set
}

// Filter returns the rows satisfying all three predicates: channel membership,
// issue-type membership, and creation date within [From, To]. Rows with a
// missing creation timestamp never satisfy the date predicate.
func Filter(rows []tickets.Ticket, spec FilterSpec) []tickets.Ticket {
	out := make([]tickets.Ticket, 0, len(rows))
	for _, t := range rows {
		if _, ok := spec.Channels[t.Channel]; !ok {
			continue
		}
		if _, ok := spec.IssueTypes[t.IssueType]; !ok {
			continue
		}
		if !t.HasCreated() {
			continue
		}
		d := t.CreatedDate()
		if dateBefore(d, spec.From) || dateAfter(d, spec.To) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func dateBefore(a, b time.Time) bool { return dateKey(a) < dateKey(b) }
func dateAfter(a, b time.Time) bool  { return dateKey(a) > dateKey(b) }

// dateKey collapses a timestamp to a comparable yyyymmdd ordinal so that
// wall-clock time and location never influence the range check.
func dateKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
