package chassis

import (
	"fmt"
	"time"

	"github.com/san-kum/driveline/internal/control"
)

// Direction selects how a motion approaches its target. Auto picks
// forward or reverse per tick from the angular error; CW and CCW force
// the rotational sense of a turn.
type Direction int

const (
	Auto Direction = iota
	Forward
	Reverse
	CW
	CCW
)

func (d Direction) String() string {
	switch d {
	case Auto:
		return "auto"
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	case CW:
		return "cw"
	case CCW:
		return "ccw"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Options is a sparse, independently-overridable motion configuration.
// Nil fields fall through to the per-robot defaults and then to the
// hard-coded fallbacks; resolution happens once when a motion starts.
type Options struct {
	// Dir selects forward/reverse approach for moves, or offsets a turn
	// target by pi when Reverse.
	Dir *Direction
	// Turn forces the rotational sense of a turn (CW or CCW).
	Turn *Direction
	// Exit is the error tolerance ending the motion: field units for
	// moves, radians for turns.
	Exit *float64
	// Timeout ends the motion normally after the given duration; zero
	// disables it.
	Timeout *time.Duration
	// Speed is the maximum output magnitude in percent of full scale.
	Speed *float64
	// Accel caps wheel-speed change in percent per second; zero disables
	// slew limiting.
	Accel *float64
	// Lead places the carrot point for pose moves as a fraction of the
	// distance to the target.
	Lead *float64
	// LinGains and AngGains tune the two PID axes.
	LinGains *control.Gains
	AngGains *control.Gains
	// Thru bypasses PID on the controlled axis and drives at full
	// resolved speed; the motion also exits without a hard stop so the
	// next command can chain seamlessly.
	Thru *bool
	// Relative resolves the target against the pose at motion start.
	Relative *bool
	// Async returns immediately and runs the motion in the background.
	Async *bool
}

// Ptr is a convenience for composing Options literals.
func Ptr[T any](v T) *T { return &v }

// merge resolves o against the given fallback chain: the first non-nil
// value per field wins, scanning o first and the chain in order.
func (o Options) merge(chain ...Options) Options {
	out := o
	for _, next := range chain {
		if out.Dir == nil {
			out.Dir = next.Dir
		}
		if out.Turn == nil {
			out.Turn = next.Turn
		}
		if out.Exit == nil {
			out.Exit = next.Exit
		}
		if out.Timeout == nil {
			out.Timeout = next.Timeout
		}
		if out.Speed == nil {
			out.Speed = next.Speed
		}
		if out.Accel == nil {
			out.Accel = next.Accel
		}
		if out.Lead == nil {
			out.Lead = next.Lead
		}
		if out.LinGains == nil {
			out.LinGains = next.LinGains
		}
		if out.AngGains == nil {
			out.AngGains = next.AngGains
		}
		if out.Thru == nil {
			out.Thru = next.Thru
		}
		if out.Relative == nil {
			out.Relative = next.Relative
		}
		if out.Async == nil {
			out.Async = next.Async
		}
	}
	return out
}

// params is a fully resolved Options snapshot, immutable for the
// lifetime of one motion.
type params struct {
	dir      Direction
	turn     Direction
	exit     float64
	timeout  time.Duration
	speed    float64
	accel    float64
	lead     float64
	lin      control.Gains
	ang      control.Gains
	thru     bool
	relative bool
	async    bool
}

// fallback is the last link of every resolution chain; all fields are
// populated so resolve never sees a nil.
var fallback = Options{
	Dir:      Ptr(Auto),
	Turn:     Ptr(Auto),
	Exit:     Ptr(1.0),
	Timeout:  Ptr(time.Duration(0)),
	Speed:    Ptr(80.0),
	Accel:    Ptr(0.0),
	Lead:     Ptr(0.6),
	LinGains: Ptr(control.Gains{Kp: 5}),
	AngGains: Ptr(control.Gains{Kp: 50}),
	Thru:     Ptr(false),
	Relative: Ptr(false),
	Async:    Ptr(false),
}

func resolve(o Options, chain ...Options) params {
	merged := o.merge(append(chain, fallback)...)
	return params{
		dir:      *merged.Dir,
		turn:     *merged.Turn,
		exit:     *merged.Exit,
		timeout:  *merged.Timeout,
		speed:    *merged.Speed,
		accel:    *merged.Accel,
		lead:     *merged.Lead,
		lin:      *merged.LinGains,
		ang:      *merged.AngGains,
		thru:     *merged.Thru,
		relative: *merged.Relative,
		async:    *merged.Async,
	}
}

// first collapses a variadic opts argument; callers pass at most one.
func first(opts []Options) Options {
	if len(opts) == 0 {
		return Options{}
	}
	return opts[0]
}
