// Package viz is the terminal front end of a running host.
//
// [Model] is a Bubble Tea program that draws the pot on a braille [Canvas],
// charts pot temperature against the boiling point and shows the room
// state. Key presses become host commands:
//
//	Space - Pause/Resume
//	+/-   - Double/halve the speed multiplier
//	↑/↓   - Heater power
//	[ ]   - AC setpoint
//	R     - Reset the pot
//	T     - Cycle colour themes
//
// [Pick] is a preset menu shown before a live run.
package viz
