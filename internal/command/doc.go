// Package command implements the RC command state for one serial link.
//
// A State holds throttle, roll, pitch and yaw as pulse widths in
// [MinValue, MaxValue]. Every mutation clamps. SendCommand formats the axes
// as "T, R, P, Y\n" and writes the frame once to the link.
//
// Lifecycle: Establish opens the link and sends NeutralFrame first.
// ArmSequence performs the receiver unlock gesture. Release closes the link
// and pulses the microcontroller reset by reopening and closing it, which
// powers the receiver down; defer it right after Establish.
package command
