package analysis

import (
	"time"

	"github.com/mjanssen/SupportTicketAnalytics/src/tickets"
)

// AnomalyDisplayCap bounds the number of projected rows returned for display.
// Total always reflects the true match count.
const AnomalyDisplayCap = 20

// AnomalyRow is the fixed column projection shown for a flagged ticket.
type AnomalyRow struct {
	ID                string
	Created           time.Time
	Channel           string
	IssueType         string
	ResponseMinutes   float64
	ResolutionMinutes float64
	CSAT              float64
}

// Anomalies is the result of a threshold scan.
type Anomalies struct {
	Threshold float64
	Total     int
	Rows      []AnomalyRow // at most AnomalyDisplayCap, in subset order
}

// ScanThreshold selects every row whose resolution time strictly exceeds
// threshold. An empty result is a valid, common case.
func ScanThreshold(rows []tickets.Ticket, threshold float64) Anomalies {
	out := Anomalies{Threshold: threshold}
	for _, t := range rows {
		if t.ResolutionMinutes <= threshold {
			continue
		}
		out.Total++
		if len(out.Rows) < AnomalyDisplayCap {
			out.Rows = append(out.Rows, AnomalyRow{
				ID:                t.ID,
				Created:           t.Created,
				Channel:           t.Channel,
				IssueType:         t.IssueType,
				ResponseMinutes:   t.ResponseMinutes,
				ResolutionMinutes: t.ResolutionMinutes,
				CSAT:              t.CSAT,
			})
		}
	}
	return out
}
