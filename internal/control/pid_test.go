package control

import (
	"math"
	"testing"
)

func TestPIDProportional(t *testing.T) {
	pid := NewPID(Gains{Kp: 2})
	pid.Reset(0)

	if got := pid.Update(10, 0.01); got != 20 {
		t.Errorf("expected pure proportional 20, got %f", got)
	}
}

func TestPIDResetKillsDerivativeSpike(t *testing.T) {
	// After Reset(e), the first Update(e, dt) must contribute zero
	// derivative for any error value.
	for _, err := range []float64{-100, -1, 0, 0.5, 42} {
		pid := NewPID(Gains{Kd: 1000})
		pid.Reset(err)

		out := pid.Update(err, 0.01)
		if math.Abs(out) > 1e-9 {
			t.Errorf("error %f: derivative spike %f after reset", err, out)
		}
	}
}

func TestPIDIntegralAccumulates(t *testing.T) {
	pid := NewPID(Gains{Ki: 1})
	pid.Reset(1)

	var out float64
	for i := 0; i < 10; i++ {
		out = pid.Update(1, 0.1)
	}
	if math.Abs(out-1.0) > 1e-9 {
		t.Errorf("expected integral 1.0 after 10 steps, got %f", out)
	}
}

func TestPIDResetClearsIntegral(t *testing.T) {
	pid := NewPID(Gains{Ki: 1})
	pid.Reset(0)
	for i := 0; i < 5; i++ {
		pid.Update(10, 0.1)
	}

	pid.Reset(0)
	if got := pid.Update(0, 0.1); got != 0 {
		t.Errorf("expected zero output after reset, got %f", got)
	}
}

func TestPIDDerivative(t *testing.T) {
	pid := NewPID(Gains{Kd: 1})
	pid.Reset(0)
	pid.Update(0, 0.1)

	// Error ramps by 1 per 0.1s: derivative 10.
	if got := pid.Update(1, 0.1); math.Abs(got-10) > 1e-9 {
		t.Errorf("expected derivative 10, got %f", got)
	}
}
