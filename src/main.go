// Support ticket analytics, headless entrypoint.
//
// Loads the ticket CSV, applies the categorical/date filters given as flags,
// and prints the KPI summary, the Chatbot-vs-Live-Agent Welch comparison and
// the slow-resolution scan to stdout. The interactive dashboard lives in
// cmd/ticketviewer and calls into the same src/analysis pipeline.
//
// Design notes:
// - The load is the only failure-prone step and is fatal; every downstream
//   stage degrades to "no data" / "insufficient data" text instead of erroring.
// - Filter defaults are caller-constructed "all values" sets, so running with
//   no filter flags reports over the whole file.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mjanssen/SupportTicketAnalytics/src/analysis"
	"github.com/mjanssen/SupportTicketAnalytics/src/tickets"
)

func main() {
	configPath := flag.String("config", "dashboard.yaml", "Path to optional dashboard config YAML")
	filePath := flag.String("file", "", "Path to ticket CSV (overrides config csv_path)")
	channels := flag.String("channels", "", "Comma-separated allowed channels (empty = all)")
	issues := flag.String("issues", "", "Comma-separated allowed issue types (empty = all)")
	fromFlag := flag.String("from", "", "Start date YYYY-MM-DD inclusive (empty = dataset min)")
	toFlag := flag.String("to", "", "End date YYYY-MM-DD inclusive (empty = dataset max)")
	threshold := flag.Float64("threshold", 0, "Resolution time anomaly threshold in minutes (0 = config default)")
	logLevel := flag.String("log-level", "info", "Log level (debug|info|warn|error)")
	flag.Parse()

	tickets.SetLogLevel(*logLevel)

	cfg, err := tickets.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	path := cfg.CSVPath
	if *filePath != "" {
		path = *filePath
	}
	ds, err := tickets.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", path, err)
		os.Exit(1)
	}

	spec := analysis.AllOf(ds)
	if *channels != "" {
		spec.Channels = analysis.ToSet(splitList(*channels))
	}
	if *issues != "" {
		spec.IssueTypes = analysis.ToSet(splitList(*issues))
	}
	if *fromFlag != "" {
		if spec.From, err = parseDay(*fromFlag); err != nil {
			fmt.Fprintf(os.Stderr, "bad -from: %v\n", err)
			os.Exit(2)
		}
	}
	if *toFlag != "" {
		if spec.To, err = parseDay(*toFlag); err != nil {
			fmt.Fprintf(os.Stderr, "bad -to: %v\n", err)
			os.Exit(2)
		}
	}
	if spec.From.After(spec.To) {
		fmt.Fprintf(os.Stderr, "date range start %s after end %s\n", spec.From.Format("2006-01-02"), spec.To.Format("2006-01-02"))
		os.Exit(2)
	}
	thr := cfg.ThresholdDefault
	if *threshold > 0 {
		thr = *threshold
	}

	rows := analysis.Filter(ds.Tickets, spec)
	fmt.Printf("Filtered tickets: %d (out of %d)\n\n", len(rows), ds.Len())

	m := analysis.ComputeMetrics(rows)
	fmt.Println("KPIs")
	fmt.Printf("  Avg CSAT:                 %s\n", analysis.FormatValue(m.AvgCSAT, 2))
	fmt.Printf("  Avg Resolution Time (min): %s\n", analysis.FormatValue(m.AvgResolutionMin, 1))
	fmt.Printf("  Tickets per Day (avg):    %s\n", analysis.FormatValue(m.AvgTicketsPerDay, 1))
	fmt.Printf("  Happy Customers:          %s%%\n", analysis.FormatValue(m.HappyPct, 1))
	fmt.Println()

	printComparison(analysis.CompareGroups(rows, cfg.CompareColumn, cfg.CompareGroupA, cfg.CompareGroupB))
	printAnomalies(analysis.ScanThreshold(rows, thr))
}

func printComparison(c analysis.Comparison) {
	fmt.Printf("A/B: %s vs %s (CSAT)\n", c.LabelA, c.LabelB)
	fmt.Printf("  Group sizes: %s=%d %s=%d\n", c.LabelA, c.SizeA, c.LabelB, c.SizeB)
	if c.Insufficient {
		fmt.Println("  Not enough data for the comparison with current filters.")
		fmt.Println()
		return
	}
	fmt.Printf("  Mean CSAT:   %s=%s %s=%s\n", c.LabelA, analysis.FormatValue(c.MeanA, 2), c.LabelB, analysis.FormatValue(c.MeanB, 2))
	if c.Degenerate {
		fmt.Println("  Samples are degenerate (empty or zero-variance group); no verdict.")
		fmt.Println()
		return
	}
	fmt.Printf("  Welch t-test: t=%.4f df=%.1f p=%.4f\n", c.TStat, c.DF, c.PValue)
	if c.Significant {
		fmt.Printf("  Significant difference in CSAT (p < %.2f).\n", analysis.Alpha)
	} else {
		fmt.Printf("  No significant difference in CSAT (p >= %.2f).\n", analysis.Alpha)
	}
	fmt.Println()
}

func printAnomalies(a analysis.Anomalies) {
	fmt.Printf("Tickets with resolution time > %.0f min: %d\n", a.Threshold, a.Total)
	if a.Total == 0 {
		return
	}
	if a.Total > len(a.Rows) {
		fmt.Printf("  (showing first %d)\n", len(a.Rows))
	}
	fmt.Printf("  %-10s %-12s %-12s %-14s %8s %8s %5s\n", "Ticket", "Created", "Channel", "Issue", "Resp", "Resol", "CSAT")
	for _, r := range a.Rows {
		created := "-"
		if !r.Created.IsZero() {
			created = r.Created.Format("2006-01-02")
		}
		fmt.Printf("  %-10s %-12s %-12s %-14s %8.0f %8.0f %5.0f\n",
			r.ID, created, r.Channel, r.IssueType, r.ResponseMinutes, r.ResolutionMinutes, r.CSAT)
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}
