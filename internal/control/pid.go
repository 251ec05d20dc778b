package control

// Gains is an immutable PID tuning triple.
type Gains struct {
	Kp float64 `yaml:"kp"`
	Ki float64 `yaml:"ki"`
	Kd float64 `yaml:"kd"`
}

// PID is a discrete PID controller. A single motion owns the instance;
// Reset must be called before the first Update of every motion so stale
// error does not produce a derivative spike.
type PID struct {
	Kp       float64
	Ki       float64
	Kd       float64
	integral float64
	prevErr  float64
}

func NewPID(g Gains) *PID {
	return &PID{
		Kp: g.Kp,
		Ki: g.Ki,
		Kd: g.Kd,
	}
}

// Update advances the controller by dt seconds and returns the control
// output for the given error.
func (p *PID) Update(err, dt float64) float64 {
	derivative := (err - p.prevErr) / dt
	p.integral += err * dt
	p.prevErr = err

	return p.Kp*err + p.Ki*p.integral + p.Kd*derivative
}

// Reset seeds the previous error and clears the integral accumulator.
func (p *PID) Reset(err float64) {
	p.prevErr = err
	p.integral = 0
}
