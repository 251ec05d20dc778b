package chassis

import (
	"math"

	"github.com/san-kum/driveline/internal/control"
	"github.com/san-kum/driveline/internal/geo"
)

type motionKind int

const (
	movePoint motionKind = iota
	movePose
	turnHeading
	followPath
)

func (k motionKind) String() string {
	switch k {
	case movePoint:
		return "move"
	case movePose:
		return "move-pose"
	case turnHeading:
		return "turn"
	case followPath:
		return "follow"
	default:
		return "unknown"
	}
}

// motion is the per-command state of the control loop: an immutable
// target and parameter snapshot plus the PID instances owned by this
// motion.
type motion struct {
	kind     motionKind
	target   geo.Pose
	path     []geo.Point
	waypoint int
	p        params

	lin *control.PID
	ang *control.PID
}

// prepare resolves relative targets against the starting pose and seeds
// both controllers from the initial error.
func (m *motion) prepare(pose geo.Pose) {
	if m.p.relative {
		switch m.kind {
		case turnHeading:
			m.target.Theta = geo.WrapAngle(m.target.Theta + pose.Theta)
		case followPath:
			for i, wp := range m.path {
				m.path[i] = pose.Point().Add(wp.Rotate(pose.Theta))
			}
		default:
			p := pose.Point().Add(m.target.Point().Rotate(pose.Theta))
			m.target.X, m.target.Y = p.X, p.Y
			if m.kind == movePose {
				m.target.Theta = geo.WrapAngle(m.target.Theta + pose.Theta)
			}
		}
	}
	if m.kind == turnHeading && m.p.dir == Reverse {
		m.target.Theta = geo.WrapAngle(m.target.Theta + math.Pi)
	}

	m.lin = control.NewPID(m.p.lin)
	m.ang = control.NewPID(m.p.ang)

	linErr, angErr := m.errors(pose)
	m.lin.Reset(linErr)
	m.ang.Reset(angErr)
}

// carrot returns the steering target. Pose moves lead the robot to a
// point offset behind the target along its heading so the approach
// settles onto the commanded heading.
func (m *motion) carrot(pose geo.Pose) geo.Point {
	switch m.kind {
	case movePose:
		d := pose.Distance(m.target.Point())
		lead := geo.Point{X: m.p.lead * d}.Rotate(m.target.Theta)
		return m.target.Point().Sub(lead)
	case followPath:
		return m.path[m.waypoint]
	default:
		return m.target.Point()
	}
}

// errors computes the signed linear and angular error for the current
// pose, including auto/forced direction resolution.
func (m *motion) errors(pose geo.Pose) (linErr, angErr float64) {
	if m.kind == turnHeading {
		angErr = geo.WrapAngle(m.target.Theta - pose.Theta)
		// A forced sense takes the long way around when the short path
		// has the wrong sign.
		if m.p.turn == CW && angErr > 0 {
			angErr -= 2 * math.Pi
		} else if m.p.turn == CCW && angErr < 0 {
			angErr += 2 * math.Pi
		}
		return 0, angErr
	}

	carrot := m.carrot(pose)
	linErr = pose.Distance(carrot)
	if m.kind == movePose {
		linErr = pose.Distance(m.target.Point())
	}
	angErr = pose.AngleTo(carrot)

	dir := m.p.dir
	if dir == Auto {
		// Reversal strictly beyond 90 degrees; at exactly 90 the move
		// stays forward.
		if math.Abs(angErr) > math.Pi/2 {
			dir = Reverse
		} else {
			dir = Forward
		}
	}
	if dir == Reverse {
		if angErr > 0 {
			angErr -= math.Pi
		} else {
			angErr += math.Pi
		}
		linErr = -linErr
	}
	return linErr, angErr
}

// step advances the motion one control tick: error, PID, clamping,
// differential mixing and ratio-preserving rescale. It returns the wheel
// speed pair before slew limiting and whether the exit condition fired.
func (m *motion) step(pose geo.Pose, dt float64) (left, right float64, done bool) {
	linErr, angErr := m.errors(pose)

	if m.kind == turnHeading {
		var angSpeed float64
		if m.p.thru {
			angSpeed = math.Copysign(m.p.speed, angErr)
		} else {
			angSpeed = m.ang.Update(angErr, dt)
		}
		angSpeed = limit(angSpeed, m.p.speed)
		return -angSpeed, angSpeed, math.Abs(angErr) < m.p.exit
	}

	// Intermediate waypoints are always taken thru-style; PID braking
	// only applies to the final point of a path.
	thru := m.p.thru
	if m.kind == followPath && m.waypoint < len(m.path)-1 {
		thru = true
	}

	var linSpeed float64
	if thru {
		linSpeed = math.Copysign(m.p.speed, linErr)
	} else {
		linSpeed = m.lin.Update(linErr, dt)
	}
	angSpeed := m.ang.Update(angErr, dt)

	linSpeed = limit(linSpeed, m.p.speed)
	angSpeed = limit(angSpeed, m.p.speed)

	left, right = mix(linSpeed, angSpeed, m.p.speed)

	within := math.Abs(linErr) < m.p.exit
	if m.kind == followPath {
		if within {
			if m.waypoint < len(m.path)-1 {
				m.waypoint++
			} else {
				done = true
			}
		}
		return left, right, done
	}
	return left, right, within
}

// mix converts linear and angular speed into a differential wheel pair.
// When either side exceeds max, both rescale from the pre-clamp
// magnitude so the left/right ratio, and with it the turn radius,
// survives the clamp.
func mix(linSpeed, angSpeed, max float64) (left, right float64) {
	left = linSpeed - angSpeed
	right = linSpeed + angSpeed
	if mag := math.Max(math.Abs(left), math.Abs(right)); mag > max {
		k := max / mag
		left *= k
		right *= k
	}
	return left, right
}

func limit(v, max float64) float64 {
	if v > max {
		return max
	}
	if v < -max {
		return -max
	}
	return v
}

// slew caps the change from prev to next at step, in either direction.
func slew(prev, next, step float64) float64 {
	if step <= 0 {
		return next
	}
	if next-prev > step {
		return prev + step
	}
	if next-prev < -step {
		return prev - step
	}
	return next
}
