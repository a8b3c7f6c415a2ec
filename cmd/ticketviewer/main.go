// Ticket Viewer: interactive analytics dashboard over a support ticket CSV.
//
// Sidebar filters (channel, issue type, date range) drive a full synchronous
// recomputation of the KPI row, the charts and the tables on every change;
// all pipeline logic lives in src/analysis and is pure, the viewer only holds
// the operator-adjustable parameters.
package main

import (
	"flag"
	"fmt"
	"image"
	"time"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/mjanssen/SupportTicketAnalytics/src/analysis"
	"github.com/mjanssen/SupportTicketAnalytics/src/tickets"
)

type uiState struct {
	app      fyne.App
	window   fyne.Window
	cfg      tickets.Config
	filePath string

	ds       *tickets.Dataset
	filtered []tickets.Ticket

	// operator-adjustable parameters
	selChannels []string
	selIssues   []string
	from, to    time.Time
	threshold   float64
	showHints   bool

	// widgets
	countLabel    *widget.Label
	kpiCSAT       *widget.Label
	kpiResolution *widget.Label
	kpiPerDay     *widget.Label
	kpiHappy      *widget.Label

	channelChecks *widget.CheckGroup
	issueChecks   *widget.CheckGroup
	fromEntry     *widget.Entry
	toEntry       *widget.Entry

	csatImgCanvas    *canvas.Image
	channelImgCanvas *canvas.Image
	trendImgCanvas   *canvas.Image
	abImgCanvas      *canvas.Image

	abSizes   *widget.Label
	abMeans   *widget.Label
	abTest    *widget.Label
	abVerdict *widget.Label

	anomalyCount *widget.Label
	anomalyTable *widget.Table
	anomalies    analysis.Anomalies
}

func main() {
	var fileFlag, configFlag, logLevel string
	flag.StringVar(&fileFlag, "file", "", "Path to ticket CSV (overrides config csv_path)")
	flag.StringVar(&configFlag, "config", "dashboard.yaml", "Path to optional dashboard config YAML")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	flag.Parse()
	tickets.SetLogLevel(logLevel)

	a := app.NewWithID("com.supportdesk.ticketviewer")
	w := a.NewWindow("Customer Support Analytics")
	w.Resize(fyne.NewSize(1200, 820))

	cfg, err := tickets.LoadConfig(configFlag)
	if err != nil {
		tickets.Errorf("config: %v", err)
		cfg = tickets.DefaultConfig()
	}
	state := &uiState{
		app:       a,
		window:    w,
		cfg:       cfg,
		filePath:  fileFlag,
		threshold: cfg.ThresholdDefault,
	}
	state.showHints = a.Preferences().BoolWithFallback("showHints", false)
	state.threshold = clampThreshold(a.Preferences().FloatWithFallback("threshold", cfg.ThresholdDefault), cfg)
	if state.filePath == "" {
		state.filePath = a.Preferences().StringWithFallback("lastFile", cfg.CSVPath)
	}

	// KPI row
	state.countLabel = widget.NewLabel("Filtered tickets: -")
	state.kpiCSAT = widget.NewLabel("Avg CSAT: -")
	state.kpiResolution = widget.NewLabel("Avg Resolution (min): -")
	state.kpiPerDay = widget.NewLabel("Tickets/Day (avg): -")
	state.kpiHappy = widget.NewLabel("Happy Customers: -")
	kpiRow := container.NewHBox(state.countLabel, widget.NewSeparator(),
		state.kpiCSAT, state.kpiResolution, state.kpiPerDay, state.kpiHappy)

	// sidebar filter controls (callbacks wired after canvases exist)
	state.channelChecks = widget.NewCheckGroup(nil, nil)
	state.issueChecks = widget.NewCheckGroup(nil, nil)
	state.fromEntry = widget.NewEntry()
	state.fromEntry.SetPlaceHolder("YYYY-MM-DD")
	state.toEntry = widget.NewEntry()
	state.toEntry.SetPlaceHolder("YYYY-MM-DD")
	resetBtn := widget.NewButton("Reset filters", func() { resetFilters(state) })
	hintsChk := widget.NewCheck("Hints", nil)
	hintsChk.SetChecked(state.showHints)

	fileLabel := widget.NewLabel(truncatePath(state.filePath, 40))
	sidebar := container.NewVBox(
		widget.NewButton("Open…", func() { openFileDialog(state, fileLabel) }),
		widget.NewButton("Reload", func() { reload(state, fileLabel) }),
		fileLabel,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Channel", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		state.channelChecks,
		widget.NewLabelWithStyle("Issue Type", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		state.issueChecks,
		widget.NewLabelWithStyle("Date range", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		state.fromEntry,
		state.toEntry,
		widget.NewSeparator(),
		resetBtn,
		hintsChk,
	)

	// chart placeholders
	state.csatImgCanvas = newChartCanvas()
	state.channelImgCanvas = newChartCanvas()
	state.trendImgCanvas = newChartCanvas()
	state.abImgCanvas = newChartCanvas()

	trendsTab := container.NewVScroll(container.NewVBox(
		state.csatImgCanvas,
		widget.NewSeparator(),
		state.channelImgCanvas,
		widget.NewSeparator(),
		state.trendImgCanvas,
	))

	// A/B tab
	state.abSizes = widget.NewLabel("")
	state.abMeans = widget.NewLabel("")
	state.abTest = widget.NewLabel("")
	state.abVerdict = widget.NewLabel("")
	abTab := container.NewVScroll(container.NewVBox(
		widget.NewLabelWithStyle(
			fmt.Sprintf("A/B Testing: %s vs %s (CSAT)", cfg.CompareGroupA, cfg.CompareGroupB),
			fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		state.abSizes,
		state.abMeans,
		state.abTest,
		state.abVerdict,
		state.abImgCanvas,
	))

	// anomalies tab
	state.anomalyCount = widget.NewLabel("")
	thresholdLabel := widget.NewLabel(fmt.Sprintf("Threshold: %.0f min", state.threshold))
	slider := widget.NewSlider(cfg.ThresholdMin, cfg.ThresholdMax)
	slider.Step = cfg.ThresholdStep
	slider.Value = state.threshold
	state.anomalyTable = newAnomalyTable(state)
	anomaliesTab := container.NewBorder(
		container.NewVBox(
			widget.NewLabelWithStyle("High Resolution Time", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			thresholdLabel,
			slider,
			state.anomalyCount,
		),
		nil, nil, nil,
		state.anomalyTable,
	)

	tabs := container.NewAppTabs(
		container.NewTabItem("Trends & EDA", trendsTab),
		container.NewTabItem("A/B Test", abTab),
		container.NewTabItem("Anomalies", anomaliesTab),
	)
	tabs.SetTabLocation(container.TabLocationTop)
	tabs.OnSelected = func(*container.TabItem) {
		state.app.Preferences().SetInt("selectedTabIndex", tabs.SelectedIndex())
	}
	if ix := a.Preferences().IntWithFallback("selectedTabIndex", 0); ix >= 0 && ix < len(tabs.Items) {
		tabs.SelectIndex(ix)
	}

	content := container.NewBorder(kpiRow, nil, container.NewVScroll(sidebar), nil, tabs)
	w.SetContent(content)

	// callbacks, now that every canvas exists
	state.channelChecks.OnChanged = func(sel []string) {
		state.selChannels = sel
		recompute(state)
	}
	state.issueChecks.OnChanged = func(sel []string) {
		state.selIssues = sel
		recompute(state)
	}
	state.fromEntry.OnSubmitted = func(s string) { onDateEdited(state) }
	state.toEntry.OnSubmitted = func(s string) { onDateEdited(state) }
	hintsChk.OnChanged = func(b bool) {
		state.showHints = b
		state.app.Preferences().SetBool("showHints", b)
		if state.ds != nil {
			refreshComparison(state)
			redrawCharts(state)
		}
	}
	slider.OnChanged = func(v float64) {
		state.threshold = clampThreshold(v, state.cfg)
		thresholdLabel.SetText(fmt.Sprintf("Threshold: %.0f min", state.threshold))
		state.app.Preferences().SetFloat("threshold", state.threshold)
		refreshAnomalies(state)
	}
	w.SetOnClosed(func() { savePrefs(state) })

	reload(state, fileLabel)
	w.ShowAndRun()
}

func newChartCanvas() *canvas.Image {
	c := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 100, 60)))
	c.FillMode = canvas.ImageFillContain
	c.SetMinSize(fyne.NewSize(860, 300))
	return c
}

// reload loads (or re-loads) the dataset and resets filters to "all".
func reload(state *uiState, fileLabel *widget.Label) {
	if state.filePath == "" {
		return
	}
	tickets.Invalidate(state.filePath)
	ds, err := tickets.Load(state.filePath)
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	state.ds = ds
	if fileLabel != nil {
		fileLabel.SetText(truncatePath(state.filePath, 40))
	}
	tickets.Infof("viewer: loaded %s (%d rows)", state.filePath, ds.Len())

	channels := ds.Channels()
	issues := ds.IssueTypes()
	state.channelChecks.Options = channels
	state.issueChecks.Options = issues
	state.selChannels = channels
	state.selIssues = issues
	state.channelChecks.SetSelected(channels)
	state.issueChecks.SetSelected(issues)

	if min, max, ok := ds.DateRange(); ok {
		state.from, state.to = min, max
		state.fromEntry.SetText(min.Format("2006-01-02"))
		state.toEntry.SetText(max.Format("2006-01-02"))
	} else {
		state.from, state.to = time.Time{}, time.Time{}
		state.fromEntry.SetText("")
		state.toEntry.SetText("")
	}
	savePrefs(state)
	recompute(state)
}

func resetFilters(state *uiState) {
	if state.ds == nil {
		return
	}
	state.selChannels = state.ds.Channels()
	state.selIssues = state.ds.IssueTypes()
	state.channelChecks.SetSelected(state.selChannels)
	state.issueChecks.SetSelected(state.selIssues)
	if min, max, ok := state.ds.DateRange(); ok {
		state.from, state.to = min, max
		state.fromEntry.SetText(min.Format("2006-01-02"))
		state.toEntry.SetText(max.Format("2006-01-02"))
	}
	recompute(state)
}

func onDateEdited(state *uiState) {
	from, err1 := time.Parse("2006-01-02", state.fromEntry.Text)
	to, err2 := time.Parse("2006-01-02", state.toEntry.Text)
	if err1 != nil || err2 != nil {
		tickets.Warnf("viewer: unparsable date entry %q / %q, keeping previous range", state.fromEntry.Text, state.toEntry.Text)
		return
	}
	if from.After(to) {
		tickets.Warnf("viewer: date range start after end, keeping previous range")
		return
	}
	state.from, state.to = from, to
	recompute(state)
}

// currentSpec builds the filter specification from the operator's selections.
func currentSpec(state *uiState) analysis.FilterSpec {
	return analysis.FilterSpec{
		Channels:   analysis.ToSet(state.selChannels),
		IssueTypes: analysis.ToSet(state.selIssues),
		From:       state.from,
		To:         state.to,
	}
}

// recompute re-derives everything downstream of the filter specification.
func recompute(state *uiState) {
	if state.ds == nil {
		return
	}
	state.filtered = analysis.Filter(state.ds.Tickets, currentSpec(state))
	refreshKPIs(state)
	refreshComparison(state)
	refreshAnomalies(state)
	redrawCharts(state)
}

func refreshKPIs(state *uiState) {
	m := analysis.ComputeMetrics(state.filtered)
	state.countLabel.SetText(fmt.Sprintf("Filtered tickets: %d (out of %d)", m.Rows, state.ds.Len()))
	state.kpiCSAT.SetText("Avg CSAT: " + analysis.FormatValue(m.AvgCSAT, 2))
	state.kpiResolution.SetText("Avg Resolution (min): " + analysis.FormatValue(m.AvgResolutionMin, 1))
	state.kpiPerDay.SetText("Tickets/Day (avg): " + analysis.FormatValue(m.AvgTicketsPerDay, 1))
	state.kpiHappy.SetText("Happy Customers: " + analysis.FormatValue(m.HappyPct, 1) + "%")
}

func refreshComparison(state *uiState) {
	c := analysis.CompareGroups(state.filtered, state.cfg.CompareColumn, state.cfg.CompareGroupA, state.cfg.CompareGroupB)
	state.abSizes.SetText(fmt.Sprintf("Group sizes: %s=%d, %s=%d", c.LabelA, c.SizeA, c.LabelB, c.SizeB))
	switch {
	case c.Insufficient:
		state.abMeans.SetText("")
		state.abTest.SetText("")
		state.abVerdict.SetText("Not enough data for the comparison with current filters.")
	case c.Degenerate:
		state.abMeans.SetText(fmt.Sprintf("Mean CSAT: %s=%s, %s=%s",
			c.LabelA, analysis.FormatValue(c.MeanA, 2), c.LabelB, analysis.FormatValue(c.MeanB, 2)))
		state.abTest.SetText("")
		state.abVerdict.SetText("Samples are degenerate (empty or zero-variance group); no verdict.")
	default:
		state.abMeans.SetText(fmt.Sprintf("Mean CSAT: %s=%.2f, %s=%.2f", c.LabelA, c.MeanA, c.LabelB, c.MeanB))
		state.abTest.SetText(fmt.Sprintf("Welch t-test: t=%.4f, df=%.1f, p=%.4f", c.TStat, c.DF, c.PValue))
		if c.Significant {
			state.abVerdict.SetText(fmt.Sprintf("There IS a statistically significant difference in CSAT (p < %.2f).", analysis.Alpha))
		} else {
			state.abVerdict.SetText(fmt.Sprintf("There is NO statistically significant difference in CSAT (p >= %.2f).", analysis.Alpha))
		}
	}
	if img := renderGroupMeansChart(state, c); img != nil {
		state.abImgCanvas.Image = img
		state.abImgCanvas.Refresh()
	}
}

func refreshAnomalies(state *uiState) {
	state.anomalies = analysis.ScanThreshold(state.filtered, state.threshold)
	if state.anomalies.Total == 0 {
		state.anomalyCount.SetText(fmt.Sprintf("No tickets above %.0f minutes in current filters.", state.threshold))
	} else if state.anomalies.Total > len(state.anomalies.Rows) {
		state.anomalyCount.SetText(fmt.Sprintf("Tickets with resolution time > %.0f min: %d (showing first %d)",
			state.threshold, state.anomalies.Total, len(state.anomalies.Rows)))
	} else {
		state.anomalyCount.SetText(fmt.Sprintf("Tickets with resolution time > %.0f min: %d", state.threshold, state.anomalies.Total))
	}
	state.anomalyTable.Refresh()
}

var anomalyHeaders = []string{"Ticket", "Created", "Channel", "Issue Type", "Response (min)", "Resolution (min)", "CSAT"}

func newAnomalyTable(state *uiState) *widget.Table {
	t := widget.NewTable(
		func() (int, int) { return len(state.anomalies.Rows) + 1, len(anomalyHeaders) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.TableCellID, o fyne.CanvasObject) {
			lbl := o.(*widget.Label)
			if id.Row == 0 {
				lbl.SetText(anomalyHeaders[id.Col])
				return
			}
			rix := id.Row - 1
			if rix < 0 || rix >= len(state.anomalies.Rows) {
				lbl.SetText("")
				return
			}
			lbl.SetText(anomalyCell(state.anomalies.Rows[rix], id.Col))
		},
	)
	widths := []float32{110, 110, 110, 140, 120, 130, 60}
	for i, w := range widths {
		t.SetColumnWidth(i, w)
	}
	return t
}

func anomalyCell(r analysis.AnomalyRow, col int) string {
	switch col {
	case 0:
		return r.ID
	case 1:
		if r.Created.IsZero() {
			return "-"
		}
		return r.Created.Format("2006-01-02")
	case 2:
		return r.Channel
	case 3:
		return r.IssueType
	case 4:
		return fmt.Sprintf("%.0f", r.ResponseMinutes)
	case 5:
		return fmt.Sprintf("%.0f", r.ResolutionMinutes)
	case 6:
		return fmt.Sprintf("%.0f", r.CSAT)
	}
	return ""
}

func openFileDialog(state *uiState, fileLabel *widget.Label) {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer rc.Close()
		state.filePath = rc.URI().Path()
		savePrefs(state)
		reload(state, fileLabel)
	}, state.window)
	d.Show()
}

func savePrefs(state *uiState) {
	if state == nil || state.app == nil {
		return
	}
	p := state.app.Preferences()
	p.SetString("lastFile", state.filePath)
	p.SetFloat("threshold", state.threshold)
	p.SetBool("showHints", state.showHints)
}

// clampThreshold snaps v into the configured slider range and step grid.
func clampThreshold(v float64, cfg tickets.Config) float64 {
	if v < cfg.ThresholdMin {
		return cfg.ThresholdMin
	}
	if v > cfg.ThresholdMax {
		return cfg.ThresholdMax
	}
	steps := (v - cfg.ThresholdMin) / cfg.ThresholdStep
	return cfg.ThresholdMin + float64(int(steps+0.5))*cfg.ThresholdStep
}

func truncatePath(p string, n int) string {
	if len(p) <= n {
		return p
	}
	return "…" + p[len(p)-n:]
}
