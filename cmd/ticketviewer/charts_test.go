package main

import (
	"image"
	"math"
	"testing"
	"time"

	"github.com/mjanssen/SupportTicketAnalytics/src/analysis"
	"github.com/mjanssen/SupportTicketAnalytics/src/tickets"
)

func testTicket(id, day, channel, issue string, resolution, csat float64) tickets.Ticket {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return tickets.Ticket{
		ID: id, Created: d, Channel: channel, IssueType: issue,
		ResponseMinutes: 10, ResolutionMinutes: resolution, CSAT: csat,
	}
}

func testState(rows []tickets.Ticket) *uiState {
	return &uiState{cfg: tickets.DefaultConfig(), filtered: rows}
}

func TestScoreDistribution(t *testing.T) {
	rows := []tickets.Ticket{
		testTicket("T-1", "2024-03-01", "Chatbot", "Billing", 100, 5),
		testTicket("T-2", "2024-03-01", "Chatbot", "Billing", 100, 1),
		testTicket("T-3", "2024-03-01", "Chatbot", "Billing", 100, 5),
	}
	labels, counts := scoreDistribution(rows)
	if len(labels) != 2 || labels[0] != "1" || labels[1] != "5" {
		t.Fatalf("labels: %v", labels)
	}
	if counts[0] != 1 || counts[1] != 2 {
		t.Fatalf("counts: %v", counts)
	}
}

func TestRenderChartsProduceImages(t *testing.T) {
	state := testState([]tickets.Ticket{
		testTicket("T-1", "2024-03-01", "Chatbot", "Billing", 100, 5),
		testTicket("T-2", "2024-03-02", "Live Agent", "Refund", 250, 2),
		testTicket("T-3", "2024-03-02", "Chatbot", "Billing", 90, 4),
	})
	for name, img := range map[string]image.Image{
		"csat":    renderCSATChart(state),
		"channel": renderChannelChart(state),
		"trend":   renderTrendChart(state),
	} {
		if img == nil {
			t.Fatalf("%s chart returned nil image", name)
		}
		if img.Bounds().Dx() < 100 || img.Bounds().Dy() < 100 {
			t.Fatalf("%s chart suspiciously small: %v", name, img.Bounds())
		}
	}
}

func TestRenderChartsEmptySubsetFallsBack(t *testing.T) {
	state := testState(nil)
	// empty subsets must render a blank placeholder, not panic or error
	for name, img := range map[string]image.Image{
		"csat":  renderCSATChart(state),
		"trend": renderTrendChart(state),
	} {
		if img == nil {
			t.Fatalf("%s chart returned nil image for empty subset", name)
		}
	}
}

func TestRenderTrendSingleDay(t *testing.T) {
	// a lone day is padded to two points so go-chart accepts the series
	state := testState([]tickets.Ticket{
		testTicket("T-1", "2024-03-01", "Chatbot", "Billing", 100, 5),
	})
	if img := renderTrendChart(state); img == nil {
		t.Fatalf("single-day trend returned nil")
	}
}

func TestRenderGroupMeansGuarded(t *testing.T) {
	state := testState(nil)
	c := analysis.Comparison{Insufficient: true, MeanA: math.NaN(), MeanB: math.NaN()}
	if img := renderGroupMeansChart(state, c); img == nil {
		t.Fatalf("guarded comparison must still yield a placeholder image")
	}
}

func TestDrawHintKeepsBounds(t *testing.T) {
	base := blank(400, 200)
	out := drawHint(base, "Hint: test caption")
	if out.Bounds() != base.Bounds() {
		t.Fatalf("hint changed bounds: %v vs %v", out.Bounds(), base.Bounds())
	}
	if drawHint(base, "  ") != base {
		t.Fatalf("empty hint must return the original image")
	}
}

func TestClampThreshold(t *testing.T) {
	cfg := tickets.DefaultConfig() // 60..300 step 10
	cases := []struct{ in, want float64 }{
		{50, 60},
		{60, 60},
		{184, 180},
		{186, 190},
		{300, 300},
		{400, 300},
	}
	for _, c := range cases {
		if got := clampThreshold(c.in, cfg); got != c.want {
			t.Fatalf("clamp(%.0f) = %.0f, want %.0f", c.in, got, c.want)
		}
	}
}

func TestNiceAxisBoundsNonNegative(t *testing.T) {
	a, b := niceAxisBounds(0, 7)
	if a < 0 {
		t.Fatalf("lower bound must not dip below zero for count axes: %.2f", a)
	}
	if b < 7 {
		t.Fatalf("upper bound must cover the max: %.2f", b)
	}
}

func TestNiceTicksCoverRange(t *testing.T) {
	ticks := niceTicks(0, 10, 6)
	if len(ticks) < 2 {
		t.Fatalf("expected at least 2 ticks, got %d", len(ticks))
	}
	if ticks[0].Value > 0 || ticks[len(ticks)-1].Value < 10 {
		t.Fatalf("ticks do not cover range: first=%.2f last=%.2f", ticks[0].Value, ticks[len(ticks)-1].Value)
	}
	for i := 1; i < len(ticks); i++ {
		if ticks[i].Value <= ticks[i-1].Value {
			t.Fatalf("ticks not increasing at %d", i)
		}
	}
}

func TestFormatTick(t *testing.T) {
	if got := formatTick(0); got != "0" {
		t.Fatalf("zero: %q", got)
	}
	if got := formatTick(150); got != "150" {
		t.Fatalf("hundreds: %q", got)
	}
	if got := formatTick(2.5); got != "2.50" {
		t.Fatalf("small: %q", got)
	}
}

func TestAnomalyCell(t *testing.T) {
	r := analysis.AnomalyRow{
		ID: "T-7", Channel: "Email", IssueType: "Refund",
		ResponseMinutes: 12, ResolutionMinutes: 200, CSAT: 2,
	}
	want := []string{"T-7", "-", "Email", "Refund", "12", "200", "2"}
	for col, w := range want {
		if got := anomalyCell(r, col); got != w {
			t.Fatalf("col %d: got %q want %q", col, got, w)
		}
	}
	r.Created = time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC)
	if got := anomalyCell(r, 1); got != "2024-03-01" {
		t.Fatalf("created col: %q", got)
	}
}

func TestTruncatePath(t *testing.T) {
	if got := truncatePath("short.csv", 40); got != "short.csv" {
		t.Fatalf("short path: %q", got)
	}
	long := "/very/long/path/to/some/deeply/nested/ticket/data/file.csv"
	got := truncatePath(long, 20)
	if len([]rune(got)) != 21 { // ellipsis + tail
		t.Fatalf("truncated length: %q", got)
	}
}
