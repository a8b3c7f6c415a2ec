package tickets

import (
	"sort"
	"time"
)

// Expected CSV column headers. Load maps columns by header name, so column
// order in the file does not matter.
const (
	ColTicketID          = "Ticket_ID"
	ColCreatedAt         = "Created_At"
	ColChannel           = "Channel"
	ColIssueType         = "Issue_Type"
	ColResponseMinutes   = "Response_Time_Minutes"
	ColResolutionMinutes = "Resolution_Time_Minutes"
	ColCSATScore         = "CSAT_Score"
	ColCSATBinary        = "CSAT_Binary"
)

// RequiredColumns lists every header Load must find in the input file.
var RequiredColumns = []string{
	ColTicketID, ColCreatedAt, ColChannel, ColIssueType,
	ColResponseMinutes, ColResolutionMinutes, ColCSATScore, ColCSATBinary,
}

// Ticket is one support ticket row. Created is the zero time when the source
// value failed to parse; the row itself is always kept.
type Ticket struct {
	ID                string
	Created           time.Time
	Channel           string
	IssueType         string
	ResponseMinutes   float64
	ResolutionMinutes float64
	CSAT              float64
	Happy             int // CSAT_Binary flag, 0 or 1
}

// HasCreated reports whether the creation timestamp parsed.
func (t Ticket) HasCreated() bool { return !t.Created.IsZero() }

// CreatedDate returns the calendar date (time-of-day dropped, original location
// kept) of the creation timestamp. Only meaningful when HasCreated is true.
func (t Ticket) CreatedDate() time.Time {
	y, m, d := t.Created.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Created.Location())
}

// Dataset is the full ticket table, loaded once and immutable for the session.
type Dataset struct {
	Path    string
	Tickets []Ticket
}

// Len returns the number of rows.
func (ds *Dataset) Len() int { return len(ds.Tickets) }

// Channels returns the sorted unique channel values (used to seed the filter
// controls with "all channels").
func (ds *Dataset) Channels() []string {
	return uniqueSorted(ds.Tickets, func(t Ticket) string { return t.Channel })
}

// IssueTypes returns the sorted unique issue types.
func (ds *Dataset) IssueTypes() []string {
	return uniqueSorted(ds.Tickets, func(t Ticket) string { return t.IssueType })
}

// DateRange returns the min and max creation dates across rows with a parsed
// timestamp. ok is false when no row has one.
func (ds *Dataset) DateRange() (min, max time.Time, ok bool) {
	for _, t := range ds.Tickets {
		if !t.HasCreated() {
			continue
		}
		d := t.CreatedDate()
		if !ok {
			min, max, ok = d, d, true
			continue
		}
		if d.Before(min) {
			min = d
		}
		if d.After(max) {
			max = d
		}
	}
	return min, max, ok
}

func uniqueSorted(rows []Ticket, key func(Ticket) string) []string {
	set := map[string]struct{}{}
	for _, t := range rows {
		if v := key(t); v != "" {
			set[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
