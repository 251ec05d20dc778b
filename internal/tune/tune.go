package tune

import (
	"math"

	"github.com/san-kum/driveline/internal/control"
	"github.com/san-kum/driveline/internal/geo"
	"github.com/san-kum/driveline/internal/simbot"
)

// Candidate is one gain set under evaluation.
type Candidate struct {
	Lin control.Gains
	Ang control.Gains
}

// Grid spans the candidate space as the cartesian product of the
// per-gain value lists. Empty lists pin that gain to zero.
type Grid struct {
	LinKp []float64
	LinKd []float64
	AngKp []float64
	AngKd []float64
}

func orZero(vals []float64) []float64 {
	if len(vals) == 0 {
		return []float64{0}
	}
	return vals
}

// Candidates enumerates the full grid.
func (g Grid) Candidates() []Candidate {
	var out []Candidate
	for _, lkp := range orZero(g.LinKp) {
		for _, lkd := range orZero(g.LinKd) {
			for _, akp := range orZero(g.AngKp) {
				for _, akd := range orZero(g.AngKd) {
					out = append(out, Candidate{
						Lin: control.Gains{Kp: lkp, Kd: lkd},
						Ang: control.Gains{Kp: akp, Kd: akd},
					})
				}
			}
		}
	}
	return out
}

// Trial is one reproducible closed-loop episode: drive a fresh
// kinematic model at the target and score how it settles.
type Trial struct {
	// Target is the field point to reach from the origin.
	Target geo.Point
	// Tolerance is the settle radius in field units.
	Tolerance float64
	// Speed caps the commanded output in percent.
	Speed float64
	// Duration is the simulated episode length in seconds.
	Duration float64
	// Step is the simulated tick in seconds.
	Step float64
}

// DefaultTrial is a diagonal point-to-point episode sized so a sane
// gain set settles with seconds to spare.
func DefaultTrial() Trial {
	return Trial{
		Target:    geo.Point{X: 30, Y: 20},
		Tolerance: 1.0,
		Speed:     80,
		Duration:  8,
		Step:      0.01,
	}
}

// Cost simulates the episode under the candidate gains and returns the
// settle time plus a penalty on the remaining error, so unsettled runs
// always score worse than settled ones.
func (t Trial) Cost(c Candidate) float64 {
	robot := simbot.New()
	drive := robot.Drivetrain()
	lin := control.NewPID(c.Lin)
	ang := control.NewPID(c.Ang)

	linErr, angErr := t.errors(robot.Pose())
	lin.Reset(linErr)
	ang.Reset(angErr)

	settle := t.Duration
	settled := false
	for elapsed := 0.0; elapsed < t.Duration; elapsed += t.Step {
		linErr, angErr = t.errors(robot.Pose())

		if math.Abs(linErr) < t.Tolerance {
			if !settled {
				settle = elapsed
				settled = true
			}
		} else {
			settle = t.Duration
			settled = false
		}

		linSpeed := clamp(lin.Update(linErr, t.Step), t.Speed)
		angSpeed := clamp(ang.Update(angErr, t.Step), t.Speed)

		left := clamp(linSpeed-angSpeed, t.Speed)
		right := clamp(linSpeed+angSpeed, t.Speed)
		drive.SetVoltage(left*120, right*120)

		robot.Step(t.Step)
	}

	final := robot.Pose().Point().Distance(t.Target)
	return settle + 5*final
}

// errors mirrors the executor's point-move error law, including the
// automatic reverse approach.
func (t Trial) errors(pose geo.Pose) (linErr, angErr float64) {
	linErr = pose.Distance(t.Target)
	angErr = pose.AngleTo(t.Target)
	if math.Abs(angErr) > math.Pi/2 {
		if angErr > 0 {
			angErr -= math.Pi
		} else {
			angErr += math.Pi
		}
		linErr = -linErr
	}
	return linErr, angErr
}

func clamp(v, max float64) float64 {
	if v > max {
		return max
	}
	if v < -max {
		return -max
	}
	return v
}
