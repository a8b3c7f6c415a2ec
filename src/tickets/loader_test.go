package tickets

import (
	"os"
	"path/filepath"
	"testing"
)

const header = "Ticket_ID,Created_At,Channel,Issue_Type,Response_Time_Minutes,Resolution_Time_Minutes,CSAT_Score,CSAT_Binary\n"

// helper to write a synthetic ticket CSV
func writeCSV(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tickets.csv")
	body := header
	for _, l := range lines {
		body += l + "\n"
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadParsesRows(t *testing.T) {
	path := writeCSV(t,
		"T-1,2024-03-01 10:30:00,Chatbot,Billing,5,120,4,1",
		"T-2,2024-03-02,Live Agent,Refund,12.5,240,2,0",
		"T-3,not-a-date,Email,Billing,8,60,5,1",
	)
	ds, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Len() != 3 {
		t.Fatalf("expected 3 rows got %d", ds.Len())
	}
	r0 := ds.Tickets[0]
	if r0.ID != "T-1" || r0.Channel != "Chatbot" || r0.IssueType != "Billing" {
		t.Fatalf("row 0 fields: %+v", r0)
	}
	if !r0.HasCreated() || r0.Created.Hour() != 10 {
		t.Fatalf("row 0 timestamp not parsed: %v", r0.Created)
	}
	if r0.ResolutionMinutes != 120 || r0.CSAT != 4 || r0.Happy != 1 {
		t.Fatalf("row 0 numerics: %+v", r0)
	}
	if ds.Tickets[1].ResponseMinutes != 12.5 {
		t.Fatalf("row 1 fractional response time: %+v", ds.Tickets[1])
	}
	// unparsable Created_At is kept as missing, not dropped
	if ds.Tickets[2].HasCreated() {
		t.Fatalf("row 2 should have a missing timestamp: %v", ds.Tickets[2].Created)
	}
	if ds.Tickets[2].CSAT != 5 {
		t.Fatalf("row 2 must survive the bad timestamp: %+v", ds.Tickets[2])
	}
}

func TestLoadMemoizesAndInvalidates(t *testing.T) {
	path := writeCSV(t, "T-1,2024-03-01,Chatbot,Billing,5,120,4,1")
	first, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	second, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if first != second {
		t.Fatalf("expected cache hit to return the same Dataset")
	}
	Invalidate(path)
	third, err := Load(path)
	if err != nil {
		t.Fatalf("load after invalidate: %v", err)
	}
	if third == first {
		t.Fatalf("expected invalidate to force a re-parse")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("Ticket_ID,Channel\nT-1,Chatbot\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for missing required columns")
	}
}

func TestLoadBadNumeric(t *testing.T) {
	path := writeCSV(t, "T-1,2024-03-01,Chatbot,Billing,5,not-a-number,4,1")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for malformed numeric column")
	}
}

func TestDatasetHelpers(t *testing.T) {
	path := writeCSV(t,
		"T-1,2024-03-05,Chatbot,Billing,5,120,4,1",
		"T-2,2024-03-01,Live Agent,Refund,12,240,2,0",
		"T-3,bogus,Email,Billing,8,60,5,1",
	)
	ds, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ch := ds.Channels()
	if len(ch) != 3 || ch[0] != "Chatbot" || ch[1] != "Email" || ch[2] != "Live Agent" {
		t.Fatalf("channels: %v", ch)
	}
	it := ds.IssueTypes()
	if len(it) != 2 || it[0] != "Billing" || it[1] != "Refund" {
		t.Fatalf("issue types: %v", it)
	}
	min, max, ok := ds.DateRange()
	if !ok {
		t.Fatalf("expected a date range")
	}
	// the bogus-date row must not contribute to the range
	if min.Format("2006-01-02") != "2024-03-01" || max.Format("2006-01-02") != "2024-03-05" {
		t.Fatalf("date range %v .. %v", min, max)
	}
}
