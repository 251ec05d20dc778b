package simbot

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/driveline/internal/device"
	"github.com/san-kum/driveline/internal/geo"
)

func almost(a, b, tol float64) bool { return math.Abs(a-b) < tol }

func TestStraightDrive(t *testing.T) {
	r := New()
	r.Drivetrain().SetVoltage(12000, 12000)

	for i := 0; i < 100; i++ {
		r.Step(0.01)
	}

	p := r.Pose()
	if !almost(p.X, r.MaxSpeed, 1e-6) || !almost(p.Y, 0, 1e-6) {
		t.Errorf("expected (%f, 0), got (%f, %f)", r.MaxSpeed, p.X, p.Y)
	}
	if !almost(p.Theta, 0, 1e-9) {
		t.Errorf("heading drifted: %f", p.Theta)
	}
}

func TestSpinInPlace(t *testing.T) {
	r := New()
	r.Drivetrain().SetVoltage(-6000, 6000)

	for i := 0; i < 50; i++ {
		r.Step(0.01)
	}

	p := r.Pose()
	if !almost(p.X, 0, 1e-9) || !almost(p.Y, 0, 1e-9) {
		t.Errorf("spin moved the robot: (%f, %f)", p.X, p.Y)
	}
	// w = (vr - vl) / track = 60 / 12 = 5 rad/s for 0.5 s.
	if !almost(p.Theta, geo.WrapAngle(2.5), 1e-6) {
		t.Errorf("expected heading %f, got %f", geo.WrapAngle(2.5), p.Theta)
	}
}

func TestVoltageClamp(t *testing.T) {
	r := New()
	r.Drivetrain().SetVoltage(20000, -20000)

	left, right := r.Voltages()
	if left != 12000 || right != -12000 {
		t.Errorf("expected clamped (12000, -12000), got (%f, %f)", left, right)
	}
}

func TestForwardEncoderAccumulatesArcLength(t *testing.T) {
	r := New()
	r.Drivetrain().SetVoltage(12000, 12000)

	for i := 0; i < 100; i++ {
		r.Step(0.01)
	}

	want := int64(r.MaxSpeed * r.TPU)
	if got := r.XEncoder().Ticks(); got != want {
		t.Errorf("expected %d ticks, got %d", want, got)
	}
	if got := r.YEncoder().Ticks(); got != 0 {
		t.Errorf("lateral encoder should stay zero, got %d", got)
	}
}

func TestIMUHeadingDegrees(t *testing.T) {
	r := New()
	r.SetPose(geo.Pose{Theta: math.Pi / 2})

	if got := r.IMU().Heading(); !almost(got, 90, 1e-9) {
		t.Errorf("expected 90 degrees, got %f", got)
	}
}

func TestIMUSetHeadingBias(t *testing.T) {
	r := New()
	r.SetPose(geo.Pose{Theta: math.Pi / 2})

	m := r.IMU()
	m.SetHeading(0)

	if got := m.Heading(); !almost(got, 0, 1e-9) {
		t.Errorf("expected re-seeded heading 0, got %f", got)
	}
	// The bias persists as the robot keeps turning.
	r.SetPose(geo.Pose{Theta: math.Pi})
	if got := m.Heading(); !almost(got, 90, 1e-9) {
		t.Errorf("expected 90 after a further quarter turn, got %f", got)
	}
}

func TestCalibrateError(t *testing.T) {
	r := New()
	r.CalibrateErr = errors.New("sensor absent")

	if err := r.IMU().Calibrate(); err == nil {
		t.Error("expected calibration error")
	}
}

func TestBrakeModePlumbing(t *testing.T) {
	r := New()
	r.Drivetrain().SetBrakeMode(device.BrakeHold)

	if got := r.BrakeMode(); got != device.BrakeHold {
		t.Errorf("expected hold, got %v", got)
	}
}

func TestArcDriveQuarterTurn(t *testing.T) {
	// Unequal wheel speeds trace an arc; after the heading reaches 90
	// degrees both coordinates are positive and equal to the turn
	// radius within integration error.
	r := New()
	r.Drivetrain().SetVoltage(6000, 12000)

	// v = 45 units/s, w = 30/12 = 2.5 rad/s, radius = 18.
	dt := 0.001
	steps := int(math.Pi / 2 / 2.5 / dt)
	for i := 0; i < steps; i++ {
		r.Step(dt)
	}

	p := r.Pose()
	if !almost(p.Theta, math.Pi/2, 0.01) {
		t.Fatalf("expected quarter turn, got %f", p.Theta)
	}
	if !almost(p.X, 18, 0.2) || !almost(p.Y, 18, 0.2) {
		t.Errorf("expected about (18, 18), got (%f, %f)", p.X, p.Y)
	}
}
