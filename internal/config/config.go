package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/driveline/internal/chassis"
	"github.com/san-kum/driveline/internal/control"
	"github.com/san-kum/driveline/internal/geo"
)

const (
	DefaultTPU       = 300.0
	DefaultMoveExit  = 1.0
	DefaultTurnExit  = 2.0 // degrees
	DefaultMoveSpeed = 80.0
	DefaultTurnSpeed = 60.0
	DefaultLead      = 0.6
	DefaultAccel     = 0.0
)

// Profile is a per-robot tuning profile: odometry geometry, move/turn
// gain blocks and shared option defaults.
type Profile struct {
	Odom     OdomConfig     `yaml:"odom"`
	Move     MotionConfig   `yaml:"move"`
	Turn     MotionConfig   `yaml:"turn"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

type OdomConfig struct {
	TPU float64 `yaml:"tpu"`
	// OffsetX/OffsetY locate the robot reference point relative to the
	// tracker center, in field units.
	OffsetX float64 `yaml:"offset_x"`
	OffsetY float64 `yaml:"offset_y"`
	// TrackerAngle is the tracker mounting angle in degrees.
	TrackerAngle float64 `yaml:"tracker_angle"`
}

type MotionConfig struct {
	// Exit tolerance: field units for moves, degrees for turns.
	Exit  float64       `yaml:"exit"`
	Speed float64       `yaml:"speed"`
	Lead  float64       `yaml:"lead"`
	Lin   control.Gains `yaml:"lin"`
	Ang   control.Gains `yaml:"ang"`
}

type DefaultsConfig struct {
	Accel     float64 `yaml:"accel"`
	TimeoutMS int     `yaml:"timeout_ms"`
	Async     bool    `yaml:"async"`
}

func DefaultProfile() *Profile {
	return &Profile{
		Odom: OdomConfig{TPU: DefaultTPU},
		Move: MotionConfig{
			Exit:  DefaultMoveExit,
			Speed: DefaultMoveSpeed,
			Lead:  DefaultLead,
			Lin:   control.Gains{Kp: 5, Ki: 0, Kd: 20},
			Ang:   control.Gains{Kp: 40, Ki: 0, Kd: 100},
		},
		Turn: MotionConfig{
			Exit:  DefaultTurnExit,
			Speed: DefaultTurnSpeed,
			Ang:   control.Gains{Kp: 40, Ki: 0, Kd: 120},
		},
		Defaults: DefaultsConfig{Accel: DefaultAccel},
	}
}

func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := DefaultProfile()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, err
	}
	return p, nil
}

func Save(path string, p *Profile) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// MoveOptions converts the move block into per-robot chassis defaults.
func (p *Profile) MoveOptions() chassis.Options {
	return chassis.Options{
		Exit:     chassis.Ptr(p.Move.Exit),
		Speed:    chassis.Ptr(p.Move.Speed),
		Lead:     chassis.Ptr(p.Move.Lead),
		LinGains: chassis.Ptr(p.Move.Lin),
		AngGains: chassis.Ptr(p.Move.Ang),
	}
}

// TurnOptions converts the turn block; the exit tolerance is stored in
// degrees and resolved to radians here.
func (p *Profile) TurnOptions() chassis.Options {
	return chassis.Options{
		Exit:     chassis.Ptr(geo.ToRad(p.Turn.Exit)),
		Speed:    chassis.Ptr(p.Turn.Speed),
		AngGains: chassis.Ptr(p.Turn.Ang),
	}
}

// DefaultOptions converts the shared defaults block.
func (p *Profile) DefaultOptions() chassis.Options {
	o := chassis.Options{
		Accel: chassis.Ptr(p.Defaults.Accel),
		Async: chassis.Ptr(p.Defaults.Async),
	}
	if p.Defaults.TimeoutMS > 0 {
		o.Timeout = chassis.Ptr(time.Duration(p.Defaults.TimeoutMS) * time.Millisecond)
	}
	return o
}
