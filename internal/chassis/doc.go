// Package chassis turns motion commands into differential wheel output.
//
// A [Chassis] runs at most one motion at a time as a 10 ms control
// loop: read pose, compute linear/angular error, resolve direction, run
// PID (or thru), clamp and mix into wheel speeds, slew-limit, command
// the drivetrain, and test the exit condition. Issuing a new command
// cancels the in-flight motion cooperatively and awaits its loop before
// the replacement touches the motors.
//
// Motion options resolve per call as explicit → per-robot default →
// hard-coded fallback; see [Options].
package chassis
