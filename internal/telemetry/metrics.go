package telemetry

import (
	"math"

	"github.com/san-kum/driveline/internal/geo"
)

// Report summarizes the quality of one recorded motion.
type Report struct {
	// PathLength is the total distance traveled, in field units.
	PathLength float64
	// FinalError is the distance from the last sample to the target.
	FinalError float64
	// SettleTime is the elapsed time at which the robot entered the
	// tolerance radius and stayed inside it. When the trace never
	// settles it equals the trace duration and Settled is false.
	SettleTime float64
	// PeakSpeed is the largest commanded wheel speed magnitude.
	PeakSpeed float64
	Settled   bool
}

// Analyze scores a recorded trace against a target point and settle
// tolerance.
func Analyze(samples []Sample, target geo.Point, tolerance float64) Report {
	if len(samples) == 0 {
		return Report{}
	}

	var r Report
	prev := geo.Point{X: samples[0].X, Y: samples[0].Y}
	for _, s := range samples {
		p := geo.Point{X: s.X, Y: s.Y}
		r.PathLength += prev.Distance(p)
		prev = p

		if speed := math.Max(math.Abs(s.Left), math.Abs(s.Right)); speed > r.PeakSpeed {
			r.PeakSpeed = speed
		}
	}

	last := samples[len(samples)-1]
	r.FinalError = geo.Point{X: last.X, Y: last.Y}.Distance(target)

	// Scan backward for the first sample after which the trace never
	// leaves the tolerance radius.
	settleIdx := -1
	for i := len(samples) - 1; i >= 0; i-- {
		p := geo.Point{X: samples[i].X, Y: samples[i].Y}
		if p.Distance(target) >= tolerance {
			break
		}
		settleIdx = i
	}

	if settleIdx >= 0 {
		r.Settled = true
		r.SettleTime = samples[settleIdx].T
	} else {
		r.SettleTime = last.T
	}
	return r
}
