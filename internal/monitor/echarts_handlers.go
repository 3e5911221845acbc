package monitor

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/formsense-data/form.report/internal/httputil"
)

const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// handleSessionChart renders per-rep score charts for one session using
// go-echarts. Debugging-only endpoint (no auth) for a quick look at a
// workout without a frontend.
// Query params:
//
//	id (required)
func (ws *WebServer) handleSessionChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		httputil.BadRequest(w, "missing 'id' parameter")
		return
	}
	if ws.db == nil {
		httputil.InternalServerError(w, "no database configured for session lookup")
		return
	}
	summary, err := ws.db.GetSession(id)
	if err != nil {
		httputil.NotFound(w, fmt.Sprintf("get session: %v", err))
		return
	}

	var labels []string
	var avg, best, worst []opts.BarData
	for _, set := range summary.Sets {
		for _, rep := range set.Reps {
			labels = append(labels, fmt.Sprintf("S%d R%d", set.SetNumber, rep.RepNumber))
			avg = append(avg, opts.BarData{Value: rep.AvgScore})
			best = append(best, opts.BarData{Value: rep.BestScore})
			worst = append(worst, opts.BarData{Value: rep.WorstScore})
		}
	}
	if len(labels) == 0 {
		httputil.NotFound(w, "session has no completed reps")
		return
	}

	subtitle := fmt.Sprintf(
		"%s reps=%d avg=%.1f started=%s",
		summary.ExerciseType,
		summary.TotalReps,
		summary.AvgScore,
		time.UnixMilli(summary.StartedAtMs).Format(time.RFC3339),
	)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Session Rep Scores", Width: "100%", Height: "720px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Rep Scores", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100, Name: "Score"}),
	)
	bar.SetXAxis(labels).
		AddSeries("avg", avg, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"})).
		AddSeries("best", best).
		AddSeries("worst", worst)

	issueBar := charts.NewBar()
	var issueLabels []string
	var issueCounts []opts.BarData
	for _, ic := range summary.IssueFrequency {
		issueLabels = append(issueLabels, ic.Type)
		issueCounts = append(issueCounts, opts.BarData{Value: ic.Count})
	}
	issueBar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Form Issues", Subtitle: "frames flagged per issue type"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	issueBar.SetXAxis(issueLabels).
		AddSeries("frames", issueCounts,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.SetAssetsHost(echartsAssetsPrefix)
	page.AddCharts(bar)
	if len(issueLabels) > 0 {
		page.AddCharts(issueBar)
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("render error: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
