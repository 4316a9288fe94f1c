// Package control provides the feedback controller for the room's AC unit.
//
//	ac := control.NewPID(800, 2, 0, 21, 2500) // Kp, Ki, Kd, setpoint °C, capacity W
//	watts := ac.Compute(roomTemp, dt)          // positive cools, negative heats
//
// Tunables are exposed through GetParams/SetParam for live adjustment.
package control
