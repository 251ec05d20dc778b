package telemetry

import (
	"sync"
	"time"

	"github.com/san-kum/driveline/internal/geo"
)

// Sample is one control tick of a motion: elapsed time, the pose read
// that tick and the wheel speeds commanded.
type Sample struct {
	T     float64 `json:"t"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// Recorder collects samples from the motion loop. It implements the
// chassis observer callback.
type Recorder struct {
	mu      sync.Mutex
	samples []Sample
}

func NewRecorder() *Recorder {
	return &Recorder{samples: make([]Sample, 0, 1024)}
}

func (r *Recorder) OnTick(pose geo.Pose, left, right float64, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, Sample{
		T:     elapsed.Seconds(),
		X:     pose.X,
		Y:     pose.Y,
		Theta: pose.Theta,
		Left:  left,
		Right: right,
	})
}

// Samples returns a copy of the recorded trace.
func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = r.samples[:0]
}
