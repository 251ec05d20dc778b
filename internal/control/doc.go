// Package control provides the feedback controllers consumed by the
// motion executor.
//
//   - [PID]: Proportional-Integral-Derivative controller over a scalar error
//   - [Gains]: immutable tuning triple resolved from options or config
//
// # Usage
//
//	pid := control.NewPID(control.Gains{Kp: 5, Ki: 0, Kd: 30})
//	pid.Reset(initialError)
//	out := pid.Update(err, dt) // called each control tick
//
// There is no integral clamping; callers bound the output themselves.
package control
