package telemetry

import (
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/driveline/internal/geo"
)

// DistancePlot renders the distance from a target over time.
func DistancePlot(samples []Sample, target geo.Point) string {
	if len(samples) == 0 {
		return ""
	}
	dist := make([]float64, len(samples))
	for i, s := range samples {
		dist[i] = geo.Point{X: s.X, Y: s.Y}.Distance(target)
	}
	return asciigraph.Plot(dist,
		asciigraph.Height(12),
		asciigraph.Caption("distance to target"),
	)
}

// SpeedPlot renders both wheel speed traces.
func SpeedPlot(samples []Sample) string {
	if len(samples) == 0 {
		return ""
	}
	left := make([]float64, len(samples))
	right := make([]float64, len(samples))
	for i, s := range samples {
		left[i] = s.Left
		right[i] = s.Right
	}
	return asciigraph.PlotMany([][]float64{left, right},
		asciigraph.Height(12),
		asciigraph.Caption("wheel speeds (%), left/right"),
	)
}

// HeadingPlot renders heading in degrees over time.
func HeadingPlot(samples []Sample) string {
	if len(samples) == 0 {
		return ""
	}
	deg := make([]float64, len(samples))
	for i, s := range samples {
		deg[i] = geo.ToDeg(s.Theta)
	}
	return asciigraph.Plot(deg,
		asciigraph.Height(12),
		asciigraph.Caption("heading (deg)"),
	)
}
