// Package tune searches PID gain grids against simulated point-to-point
// episodes, scoring each candidate by settle time and residual error.
package tune
