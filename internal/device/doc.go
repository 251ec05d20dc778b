// Package device defines the hardware capabilities the controller consumes:
// tracking-wheel encoders, an inertial heading sensor, and a differential
// drivetrain. Implementations live with the hardware integration (or in
// simbot for the simulated robot); everything above this package is
// hardware-agnostic.
package device
