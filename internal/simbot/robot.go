package simbot

import (
	"math"
	"sync"

	"github.com/san-kum/driveline/internal/device"
	"github.com/san-kum/driveline/internal/geo"
)

// Robot is a kinematic differential-drive model exposing the encoder,
// IMU and drivetrain capabilities the controller consumes. It is the
// plant for the CLI demo and the integration tests.
type Robot struct {
	// TrackWidth is the wheel separation in field units.
	TrackWidth float64
	// MaxSpeed is the wheel surface speed in units/s at full voltage.
	MaxSpeed float64
	// TPU is tracking-encoder ticks per field unit.
	TPU float64
	// CalibrateErr, when set, is returned from IMU calibration.
	CalibrateErr error

	mu       sync.Mutex
	pose     geo.Pose
	leftMV   float64
	rightMV  float64
	xDist    float64
	yDist    float64
	imuBias  float64
	brake    device.BrakeMode
	maxVolts float64
}

func New() *Robot {
	return &Robot{
		TrackWidth: 12,
		MaxSpeed:   60,
		TPU:        300,
		maxVolts:   12000,
	}
}

// Step advances the model by dt seconds under the commanded voltages.
func (r *Robot) Step(dt float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	vl := r.leftMV / r.maxVolts * r.MaxSpeed
	vr := r.rightMV / r.maxVolts * r.MaxSpeed

	v := (vl + vr) / 2
	w := (vr - vl) / r.TrackWidth

	// Integrate along the arc midpoint so the ground truth matches what
	// the arc-chord correction reconstructs.
	mid := r.pose.Theta + w*dt/2
	r.pose.X += v * math.Cos(mid) * dt
	r.pose.Y += v * math.Sin(mid) * dt
	r.pose.Theta = geo.WrapAngle(r.pose.Theta + w*dt)

	// The forward (x) tracker accumulates arc length; the lateral (y)
	// tracker is mounted at the tracking center and sees no slip in
	// this model.
	r.xDist += v * dt
}

// Pose returns the ground-truth pose.
func (r *Robot) Pose() geo.Pose {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pose
}

// SetPose teleports the ground truth, for test setup.
func (r *Robot) SetPose(p geo.Pose) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pose = p
}

// Voltages returns the last commanded pair in millivolts.
func (r *Robot) Voltages() (left, right float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leftMV, r.rightMV
}

// BrakeMode returns the last commanded brake mode.
func (r *Robot) BrakeMode() device.BrakeMode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.brake
}

type encoderFunc func() int64

func (f encoderFunc) Ticks() int64 { return f() }

// XEncoder returns the forward tracking encoder.
func (r *Robot) XEncoder() device.Encoder {
	return encoderFunc(func() int64 {
		r.mu.Lock()
		defer r.mu.Unlock()
		return int64(r.xDist * r.TPU)
	})
}

// YEncoder returns the lateral tracking encoder.
func (r *Robot) YEncoder() device.Encoder {
	return encoderFunc(func() int64 {
		r.mu.Lock()
		defer r.mu.Unlock()
		return int64(r.yDist * r.TPU)
	})
}

type imu struct{ r *Robot }

func (m imu) Calibrate() error { return m.r.CalibrateErr }

func (m imu) Heading() float64 {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	return geo.ToDeg(m.r.pose.Theta) + m.r.imuBias
}

func (m imu) SetHeading(deg float64) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	m.r.imuBias = deg - geo.ToDeg(m.r.pose.Theta)
}

// IMU returns the heading sensor.
func (r *Robot) IMU() device.IMU { return imu{r} }

type drivetrain struct{ r *Robot }

func (d drivetrain) SetVoltage(left, right float64) {
	d.r.mu.Lock()
	defer d.r.mu.Unlock()
	d.r.leftMV = clampVolts(left, d.r.maxVolts)
	d.r.rightMV = clampVolts(right, d.r.maxVolts)
}

func (d drivetrain) SetBrakeMode(mode device.BrakeMode) {
	d.r.mu.Lock()
	defer d.r.mu.Unlock()
	d.r.brake = mode
}

// Drivetrain returns the motor output stage.
func (r *Robot) Drivetrain() device.Drivetrain { return drivetrain{r} }

func clampVolts(v, max float64) float64 {
	if v > max {
		return max
	}
	if v < -max {
		return -max
	}
	return v
}
