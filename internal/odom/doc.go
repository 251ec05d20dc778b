// Package odom implements dead-reckoning pose estimation from two
// perpendicular tracking wheels and an inertial heading sensor.
//
// The [Estimator] runs a 5 ms sampling task that converts encoder ticks
// to field units, applies an arc-chord correction to the inter-sample
// delta, rotates it into the field frame and accumulates it into a
// mutex-guarded pose. Heading is read absolutely from the sensor each
// tick, never integrated.
//
// # Thread safety
//
// Pose accessors and setters are safe for concurrent use from any
// goroutine; the sampling task is the only writer of the integrated
// position.
package odom
