package reporthttp

import (
	"sort"

	"tradecheck/internal/runlog"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// buildSummaryChart renders pass/fail counts per scenario as a stacked bar
// chart over the given verdicts.
func buildSummaryChart(verdicts []runlog.VerdictModel) *charts.Bar {
	type tally struct {
		passed int
		failed int
	}
	counts := make(map[string]*tally)
	for _, v := range verdicts {
		t, ok := counts[v.Scenario]
		if !ok {
			t = &tally{}
			counts[v.Scenario] = t
		}
		if v.Passed {
			t.passed++
		} else {
			t.failed++
		}
	}
	scenarios := make([]string, 0, len(counts))
	for name := range counts {
		scenarios = append(scenarios, name)
	}
	sort.Strings(scenarios)

	passed := make([]opts.BarData, len(scenarios))
	failed := make([]opts.BarData, len(scenarios))
	for i, name := range scenarios {
		passed[i] = opts.BarData{Value: counts[name].passed, ItemStyle: &opts.ItemStyle{Color: "#3daf7a"}}
		failed[i] = opts.BarData{Value: counts[name].failed, ItemStyle: &opts.ItemStyle{Color: "#d9534f"}}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Verification verdicts by scenario",
			Subtitle: "pass/fail counts over the most recent runs",
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	bar.SetXAxis(scenarios).
		AddSeries("passed", passed).
		AddSeries("failed", failed)
	bar.SetSeriesOptions(charts.WithBarChartOpts(opts.BarChart{Stack: "verdicts"}))
	return bar
}
