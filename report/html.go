package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/sartorproj/ridecast/model"
	"github.com/sartorproj/ridecast/timeseries"
)

// RenderHTML writes the forecast chart as a standalone interactive page.
func RenderHTML(w io.Writer, frame *model.Frame, forecast *timeseries.Series, logged bool) error {
	c, err := newChart(frame, forecast, logged)
	if err != nil {
		return err
	}

	// One category per day; each series leaves "-" where it has no value.
	var days []string
	index := make(map[string]int)
	for _, group := range [][]point{c.train, c.test, c.predicted} {
		for _, p := range group {
			key := p.t.Format(time.DateOnly)
			if _, ok := index[key]; !ok {
				index[key] = -1
				days = append(days, key)
			}
		}
	}
	sort.Strings(days)
	for i, d := range days {
		index[d] = i
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: c.title, Width: "1000px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: c.title, Subtitle: fmt.Sprintf("train=%d test=%d", len(c.train), len(c.test))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)
	line.SetXAxis(days).
		AddSeries(labelTrain, lineData(c.train, index, len(days)),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#0000ff"}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: "#0000ff"})).
		AddSeries(labelTest, lineData(c.test, index, len(days)),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "rgba(0,0,255,0.5)"}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: "rgba(0,0,255,0.5)"})).
		AddSeries(labelPredicted, lineData(c.predicted, index, len(days)),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#008000"}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: "#008000"}))

	page := components.NewPage()
	page.PageTitle = c.title
	page.AddCharts(line)
	return page.Render(w)
}

func lineData(points []point, index map[string]int, n int) []opts.LineData {
	data := make([]opts.LineData, n)
	for i := range data {
		data[i] = opts.LineData{Value: "-"}
	}
	for _, p := range points {
		data[index[p.t.Format(time.DateOnly)]] = opts.LineData{Value: p.v}
	}
	return data
}
