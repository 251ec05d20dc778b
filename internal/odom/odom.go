package odom

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"go.uber.org/atomic"

	"github.com/san-kum/driveline/internal/device"
	"github.com/san-kum/driveline/internal/geo"
	"github.com/san-kum/driveline/internal/task"
)

// Period is the sampling cadence of the estimator task.
const Period = 5 * time.Millisecond

// ErrCalibration indicates the heading sensor failed to calibrate and
// odometry was left un-started. Callers may retry by calling Start again.
var ErrCalibration = errors.New("odom: imu calibration failed")

// debugEvery throttles the debug pose trace to one line per N ticks.
const debugEvery = 20

// Estimator fuses two perpendicular tracking-wheel encoders and an
// inertial heading sensor into a field-frame pose estimate.
//
// The estimate is updated by a periodic sampling task and guarded by a
// mutex held only for the duration of a read or write, so readers get a
// consistent snapshot without stalling the sampler.
type Estimator struct {
	logger golog.Logger
	clk    clock.Clock

	xEnc device.Encoder
	yEnc device.Encoder
	imu  device.IMU
	tpu  float64

	mu            sync.Mutex
	pose          geo.Pose
	linearOffset  geo.Point
	angularOffset float64

	// prevTrack is owned by the sampling task.
	prevTrack geo.Pose

	running atomic.Bool
	debug   atomic.Bool
	ticks   atomic.Int64
	cancel  context.CancelFunc
}

// New builds an estimator over the given sensors. tpu is encoder ticks
// per field unit; linearOffset is the displacement from the tracker
// center to the robot reference point in the robot frame; angularOffset
// is the tracker mounting angle in degrees relative to the robot's
// forward axis.
func New(xEnc, yEnc device.Encoder, imu device.IMU, tpu float64, linearOffset geo.Point, angularOffsetDeg float64, logger golog.Logger) *Estimator {
	return &Estimator{
		logger:        logger,
		clk:           clock.New(),
		xEnc:          xEnc,
		yEnc:          yEnc,
		imu:           imu,
		tpu:           tpu,
		linearOffset:  linearOffset,
		angularOffset: geo.ToRad(angularOffsetDeg),
	}
}

// SetClock replaces the wall clock driving the sampling task. Must be
// called before Start.
func (o *Estimator) SetClock(clk clock.Clock) { o.clk = clk }

// Start calibrates the heading sensor, zeroes the pose and spawns the
// sampling task. Calibration blocks; on failure odometry is not started
// and no retry is attempted. Calling Start with the task already running
// is a no-op.
func (o *Estimator) Start() error {
	return o.StartAt(geo.Pose{})
}

// StartAt is Start with a caller-chosen initial pose.
func (o *Estimator) StartAt(initial geo.Pose) error {
	if o.running.Load() {
		return nil
	}

	o.logger.Info("calibrating imu...")
	if err := o.imu.Calibrate(); err != nil {
		o.logger.Errorw("imu calibration failed, odometry not started", "error", err)
		return fmt.Errorf("%w: %v", ErrCalibration, err)
	}
	o.logger.Info("imu calibrated")

	o.SetPose(At(initial))

	if !o.running.CompareAndSwap(false, true) {
		return nil
	}

	// Seed the previous sample so the first tick integrates a zero delta.
	o.prevTrack = o.sample()

	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	go task.Periodic(ctx, o.clk, Period, func(time.Duration) { o.step() })

	o.logger.Info("odometry started")
	return nil
}

// Stop cancels the sampling task. The pose remains readable.
func (o *Estimator) Stop() {
	if o.running.CompareAndSwap(true, false) {
		o.cancel()
	}
}

// SetDebug toggles the periodic pose trace.
func (o *Estimator) SetDebug(on bool) { o.debug.Store(on) }

func (o *Estimator) sample() geo.Pose {
	return geo.Pose{
		X:     float64(o.xEnc.Ticks()) / o.tpu,
		Y:     float64(o.yEnc.Ticks()) / o.tpu,
		Theta: geo.ToRad(o.imu.Heading()),
	}
}

// step integrates one sensor sample into the shared pose.
func (o *Estimator) step() {
	track := o.sample()

	dtrack := track.Point().Sub(o.prevTrack.Point())
	dtheta := track.Theta - o.prevTrack.Theta
	o.prevTrack = track

	// Arc-chord correction: the straight-line delta between samples
	// understates the chord of a circular-arc segment when the robot
	// turns while translating.
	if dtheta != 0 {
		dtrack = dtrack.Scale(2 * math.Sin(dtheta/2) / dtheta)
	}

	// Rotate the tracker delta into the field frame. Heading is taken
	// absolutely from the sensor each tick rather than integrated, so
	// that axis does not accumulate drift.
	dtrack = dtrack.Rotate(track.Theta + o.angularOffset)

	o.mu.Lock()
	o.pose.X += dtrack.X
	o.pose.Y += dtrack.Y
	o.pose.Theta = track.Theta
	o.mu.Unlock()

	if n := o.ticks.Inc(); o.debug.Load() && n%debugEvery == 0 {
		p := o.Pose()
		o.logger.Debugf("pose (%6.2f, %6.2f, %7.2f)", p.X, p.Y, geo.ToDeg(p.Theta))
	}
}

// Pose returns the robot-frame pose: the tracker pose with the linear
// offset rotated by the current heading applied.
func (o *Estimator) Pose() geo.Pose {
	o.mu.Lock()
	defer o.mu.Unlock()
	off := o.linearOffset.Rotate(o.pose.Theta)
	return o.pose.Add(off)
}

// LocalPose returns the raw tracker-frame pose.
func (o *Estimator) LocalPose() geo.Pose {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pose
}

// PoseUpdate is a per-axis pose mutation request. Nil axes keep their
// current value; this replaces the historical NaN sentinel so a
// legitimate NaN elsewhere can never be mistaken for "leave unchanged".
type PoseUpdate struct {
	X     *float64
	Y     *float64
	Theta *float64
}

// At requests all three axes of p.
func At(p geo.Pose) PoseUpdate {
	return PoseUpdate{X: &p.X, Y: &p.Y, Theta: &p.Theta}
}

// AtPoint requests only the positional axes of p.
func AtPoint(p geo.Point) PoseUpdate {
	return PoseUpdate{X: &p.X, Y: &p.Y}
}

// SetPose applies a robot-frame pose update: positional axes are
// translated back into the tracker frame before being stored.
func (o *Estimator) SetPose(u PoseUpdate) {
	o.mu.Lock()
	theta := o.pose.Theta
	if u.Theta != nil {
		// Rotate by the heading being set so Set then Pose round-trips.
		theta = *u.Theta
	}
	off := o.linearOffset.Rotate(theta)
	o.mu.Unlock()

	if u.X != nil {
		x := *u.X - off.X
		u.X = &x
	}
	if u.Y != nil {
		y := *u.Y - off.Y
		u.Y = &y
	}
	o.SetLocalPose(u)
}

// SetLocalPose applies a tracker-frame pose update. Setting the heading
// also re-seeds the sensor so subsequent raw reads stay consistent with
// the logical pose.
func (o *Estimator) SetLocalPose(u PoseUpdate) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if u.X != nil {
		o.pose.X = *u.X
	}
	if u.Y != nil {
		o.pose.Y = *u.Y
	}
	if u.Theta != nil {
		theta := geo.WrapAngle(*u.Theta)
		o.imu.SetHeading(geo.ToDeg(theta))
		o.pose.Theta = theta
	}
}

func (o *Estimator) SetX(x float64) { o.SetLocalPose(PoseUpdate{X: &x}) }
func (o *Estimator) SetY(y float64) { o.SetLocalPose(PoseUpdate{Y: &y}) }

// SetHeading sets the tracker heading in radians.
func (o *Estimator) SetHeading(theta float64) {
	o.SetLocalPose(PoseUpdate{Theta: &theta})
}

// SetOffset replaces the tracker-to-robot linear offset, effective on
// subsequent Pose calls.
func (o *Estimator) SetOffset(linear geo.Point) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.linearOffset = linear
}
