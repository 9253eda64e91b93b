// Package bmp180 controls a Bosch BMP180 barometric pressure and temperature
// sensor over I²C.
//
// The package never talks to a bus directly. The host supplies a Transport
// (bus init/deinit, register read/write, a millisecond delay and a debug
// sink) and the Dev handle drives the measurement sequence through it:
// write the command, poll the control register until the conversion is done,
// read the result and compensate it with the factory calibration.
//
// # Datasheet
//
// https://ae-bst.resource.bosch.com/media/_tech/media/datasheets/BST-BMP180-DS000-12.pdf
//
// The compensation follows the integer algorithm on page 15 exactly,
// including its 32 bit wraparound. The datasheet's worked example
// (UT=27898, UP=23843, oss=0) yields 15.0°C and 69964Pa.
//
// A Dev does no locking. Callers sharing one between goroutines must
// serialize access themselves.
package bmp180
