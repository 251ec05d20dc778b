package device

// Encoder is a rotary encoder on an unpowered tracking wheel.
type Encoder interface {
	// Ticks returns the signed tick count since power-on.
	Ticks() int64
}

// IMU is an inertial heading sensor reporting degrees,
// counterclockwise positive.
type IMU interface {
	// Calibrate blocks until the sensor is ready. Odometry must not be
	// started if it fails.
	Calibrate() error
	Heading() float64
	SetHeading(deg float64)
}

// BrakeMode selects drivetrain behavior at zero commanded speed.
type BrakeMode int

const (
	BrakeCoast BrakeMode = iota
	BrakeHold
)

func (m BrakeMode) String() string {
	switch m {
	case BrakeCoast:
		return "coast"
	case BrakeHold:
		return "hold"
	default:
		return "unknown"
	}
}

// Drivetrain is a differential drive output stage. Voltages are signed
// millivolts per side.
type Drivetrain interface {
	SetVoltage(left, right float64)
	SetBrakeMode(mode BrakeMode)
}
