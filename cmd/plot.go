package cmd

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/epidemic-sim/epidemic-sim/epi"
)

// renderPlot writes an HTML line chart of every compartment in the run.
func renderPlot(run *epi.SimulationRun, path string) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: run.Spec().Name, Width: "1100px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s model", run.Spec().Name),
			Subtitle: fmt.Sprintf("population=%g days=%g", run.Population, run.Times[len(run.Times)-1]),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "day"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "population"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	days := make([]string, len(run.Times))
	for i, t := range run.Times {
		days[i] = fmt.Sprintf("%g", t)
	}
	line.SetXAxis(days)

	for _, code := range run.Spec().Codes() {
		series, err := run.Get(code)
		if err != nil {
			return err
		}
		data := make([]opts.LineData, len(series.Values))
		for i, v := range series.Values {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(code, data)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating plot file: %w", err)
	}
	defer f.Close()
	if err := line.Render(f); err != nil {
		return fmt.Errorf("rendering plot: %w", err)
	}
	return nil
}
