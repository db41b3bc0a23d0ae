// Package report renders an analysis result as a self-contained HTML page
// of charts, meant for quick human review rather than dashboards.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/parkvision/parking-backend-go/internal/occupancy"
	"github.com/parkvision/parking-backend-go/internal/service"
)

// Render writes the occupancy report for one video's analytics to w.
func Render(w io.Writer, analytics *service.VideoAnalytics) error {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Occupancy report %s", analytics.VideoID)

	page.AddCharts(
		timelineChart(analytics.Result),
		slotChart(analytics.Rollup),
		breakdownChart(analytics.Rollup),
	)
	return page.Render(w)
}

// timelineChart plots the per-frame occupancy rate over the video.
func timelineChart(result *occupancy.Result) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Occupancy over time",
			Subtitle: fmt.Sprintf("status: %s", result.Status),
		}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 1}),
	)

	xAxis := make([]string, 0, len(result.Timeline))
	rates := make([]opts.LineData, 0, len(result.Timeline))
	vehicles := make([]opts.LineData, 0, len(result.Timeline))
	for _, snapshot := range result.Timeline {
		xAxis = append(xAxis, fmt.Sprintf("f%d", snapshot.FrameNumber))
		rates = append(rates, opts.LineData{Value: snapshot.OccupancyRate})
		vehicles = append(vehicles, opts.LineData{Value: snapshot.TotalDetections})
	}

	line.SetXAxis(xAxis).
		AddSeries("occupancy rate", rates).
		AddSeries("vehicles", vehicles)
	return line
}

// slotChart shows each slot's occupancy rate over the analyzed timeline.
func slotChart(rollup *occupancy.Rollup) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Slot occupancy rates"}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 1}),
	)

	names := make([]string, 0, len(rollup.Slots))
	values := make([]opts.BarData, 0, len(rollup.Slots))
	for _, slot := range rollup.Slots {
		names = append(names, slot.SlotName)
		values = append(values, opts.BarData{Value: slot.OccupancyRate})
	}

	bar.SetXAxis(names).AddSeries("occupancy rate", values)
	return bar
}

// breakdownChart shows the vehicle class mix of all analyzed detections.
func breakdownChart(rollup *occupancy.Rollup) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Vehicle classes"}))

	items := make([]opts.PieData, 0, len(rollup.VehicleBreakdown))
	for _, class := range rollup.VehicleBreakdown {
		items = append(items, opts.PieData{Name: class.ClassName, Value: class.Count})
	}

	pie.AddSeries("vehicles", items)
	return pie
}
