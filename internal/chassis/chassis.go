package chassis

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"

	"github.com/san-kum/driveline/internal/device"
	"github.com/san-kum/driveline/internal/geo"
	"github.com/san-kum/driveline/internal/odom"
)

// Period is the control loop cadence.
const Period = 10 * time.Millisecond

// mvPerPercent converts percent speed to drivetrain millivolts (12 V
// full scale).
const mvPerPercent = 120.0

// Observer receives one callback per control tick with the pose read
// this tick, the wheel speeds actually commanded, and the elapsed time
// since the motion started.
type Observer interface {
	OnTick(pose geo.Pose, left, right float64, elapsed time.Duration)
}

// handle owns one motion task: cancel requests cooperative shutdown,
// done closes when the loop has fully exited.
type handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Chassis executes motions on a differential drivetrain, reading pose
// from the odometry estimator. At most one motion runs at a time;
// issuing a new one cancels the in-flight motion and waits for its loop
// to exit before the replacement may command the motors.
type Chassis struct {
	logger golog.Logger
	clk    clock.Clock
	drive  device.Drivetrain
	odom   *odom.Estimator

	dfMove Options
	dfTurn Options
	df     Options

	mu        sync.Mutex
	prevLeft  float64
	prevRight float64
	active    *handle
	observers []Observer
}

// New builds a chassis with per-robot default options for moves, turns,
// and both.
func New(drive device.Drivetrain, od *odom.Estimator, moveDefaults, turnDefaults, defaults Options, logger golog.Logger) *Chassis {
	c := &Chassis{
		logger: logger,
		clk:    clock.New(),
		drive:  drive,
		odom:   od,
		dfMove: moveDefaults,
		dfTurn: turnDefaults,
		df:     defaults,
	}
	c.drive.SetBrakeMode(device.BrakeCoast)
	return c
}

// SetClock replaces the wall clock driving motion loops. Must be called
// before any motion is issued.
func (c *Chassis) SetClock(clk clock.Clock) { c.clk = clk }

// AddObserver registers a per-tick telemetry callback. Not safe to call
// while a motion is running.
func (c *Chassis) AddObserver(o Observer) {
	c.observers = append(c.observers, o)
}

// Move drives to a field-frame point.
func (c *Chassis) Move(target geo.Point, opts ...Options) {
	p := resolve(first(opts), c.dfMove, c.df)
	c.start(&motion{
		kind:   movePoint,
		target: geo.Pose{X: target.X, Y: target.Y},
		p:      p,
	})
}

// MoveDistance drives the given distance along the current heading;
// negative distances back up.
func (c *Chassis) MoveDistance(dist float64, opts ...Options) {
	o := first(opts)
	o.Relative = Ptr(true)
	c.Move(geo.Point{X: dist}, o)
}

// MovePose drives to a point and settles onto its heading using a
// carrot point led ahead of the robot.
func (c *Chassis) MovePose(target geo.Pose, opts ...Options) {
	p := resolve(first(opts), c.dfMove, c.df)
	c.start(&motion{kind: movePose, target: target, p: p})
}

// Turn rotates in place to the given field heading in degrees.
func (c *Chassis) Turn(headingDeg float64, opts ...Options) {
	p := resolve(first(opts), c.dfTurn, c.df)
	c.start(&motion{
		kind:   turnHeading,
		target: geo.Pose{Theta: geo.WrapAngle(geo.ToRad(headingDeg))},
		p:      p,
	})
}

// TurnPoint rotates in place to face a field point.
func (c *Chassis) TurnPoint(target geo.Point, opts ...Options) {
	heading := c.odom.Pose().Point().Bearing(target)
	p := resolve(first(opts), c.dfTurn, c.df)
	// The bearing is already absolute; a relative flag would resolve it
	// twice.
	p.relative = false
	c.start(&motion{kind: turnHeading, target: geo.Pose{Theta: heading}, p: p})
}

// Follow drives through a list of waypoints as a single motion,
// carrying speed through intermediate points.
func (c *Chassis) Follow(path []geo.Point, opts ...Options) {
	if len(path) == 0 {
		return
	}
	p := resolve(first(opts), c.dfMove, c.df)
	waypoints := make([]geo.Point, len(path))
	copy(waypoints, path)
	c.start(&motion{kind: followPath, path: waypoints, p: p})
}

// start replaces any active motion with m, then runs it synchronously
// or in the background per the resolved options.
func (c *Chassis) start(m *motion) {
	c.cancelActive()

	ctx, cancel := context.WithCancel(context.Background())
	h := &handle{cancel: cancel, done: make(chan struct{})}
	c.mu.Lock()
	c.active = h
	c.mu.Unlock()

	if m.p.async {
		go c.run(ctx, m, h)
		return
	}
	c.run(ctx, m, h)
}

// cancelActive requests cooperative shutdown of the running motion and
// blocks until its loop has exited, so two loops never write motor
// commands concurrently.
func (c *Chassis) cancelActive() {
	c.mu.Lock()
	h := c.active
	c.mu.Unlock()
	if h == nil {
		return
	}
	h.cancel()
	<-h.done
}

// Wait blocks until the active motion terminates, normally or by
// cancellation. It returns immediately if the chassis is idle.
func (c *Chassis) Wait() {
	c.mu.Lock()
	h := c.active
	c.mu.Unlock()
	if h == nil {
		return
	}
	<-h.done
}

// run is the motion control loop.
func (c *Chassis) run(ctx context.Context, m *motion, h *handle) {
	defer close(h.done)

	c.logger.Debugw("motion started", "kind", m.kind.String())

	m.prepare(c.odom.Pose())

	ticker := c.clk.Ticker(Period)
	defer ticker.Stop()

	start := c.clk.Now()
	dt := Period.Seconds()
	accelStep := m.p.accel * dt

	for {
		select {
		case <-ctx.Done():
			c.logger.Debugw("motion canceled", "kind", m.kind.String())
			return
		default:
		}

		pose := c.odom.Pose()
		left, right, done := m.step(pose, dt)
		left, right = c.apply(left, right, accelStep)

		elapsed := c.clk.Now().Sub(start)
		for _, obs := range c.observers {
			obs.OnTick(pose, left, right, elapsed)
		}

		if done {
			break
		}
		if m.p.timeout > 0 && elapsed > m.p.timeout {
			// Timeout is a normal exit, indistinguishable from settling.
			break
		}

		select {
		case <-ctx.Done():
			c.logger.Debugw("motion canceled", "kind", m.kind.String())
			return
		case <-ticker.C:
		}
	}

	// Thru motions chain into the next command instead of braking.
	if !m.p.thru {
		c.Tank(0, 0)
	}
	c.logger.Debugw("motion finished", "kind", m.kind.String())
}

// apply slew-limits the commanded pair against the shared previous
// speeds and writes it to the drivetrain. It returns the speeds actually
// issued.
func (c *Chassis) apply(left, right, accelStep float64) (float64, float64) {
	c.mu.Lock()
	left = slew(c.prevLeft, left, accelStep)
	right = slew(c.prevRight, right, accelStep)
	c.prevLeft, c.prevRight = left, right
	c.mu.Unlock()

	c.drive.SetVoltage(left*mvPerPercent, right*mvPerPercent)
	return left, right
}

// Tank commands raw wheel speeds in percent. The pair is recorded as
// the previous speeds so slew limiting stays consistent across manual
// and automatic driving.
func (c *Chassis) Tank(left, right float64) {
	c.mu.Lock()
	c.prevLeft, c.prevRight = left, right
	c.mu.Unlock()
	c.drive.SetVoltage(left*mvPerPercent, right*mvPerPercent)
}

// Arcade commands linear and angular speed in percent.
func (c *Chassis) Arcade(linear, angular float64) {
	c.Tank(linear-angular, linear+angular)
}

// Stop zeroes the drivetrain; with cancelTask it also cancels the
// active motion and waits for its loop to exit first.
func (c *Chassis) Stop(cancelTask bool) {
	if cancelTask {
		c.cancelActive()
	}
	c.Tank(0, 0)
}

// SetBrakeMode forwards the brake mode to both motor groups.
func (c *Chassis) SetBrakeMode(mode device.BrakeMode) {
	c.drive.SetBrakeMode(mode)
}
