package bmp180

import (
	"encoding/binary"
	"fmt"
)

// Calibration holds the factory coefficients from registers 0xAA-0xBF.
type Calibration struct {
	AC1, AC2, AC3 int16
	AC4, AC5, AC6 uint16
	B1, B2        int16
	MB, MC, MD    int16
}

// newCalibration decodes the 22 byte block, big endian pairs in register
// order.
func newCalibration(b []byte) (c Calibration) {
	c.AC1 = int16(binary.BigEndian.Uint16(b[0:]))
	c.AC2 = int16(binary.BigEndian.Uint16(b[2:]))
	c.AC3 = int16(binary.BigEndian.Uint16(b[4:]))
	c.AC4 = binary.BigEndian.Uint16(b[6:])
	c.AC5 = binary.BigEndian.Uint16(b[8:])
	c.AC6 = binary.BigEndian.Uint16(b[10:])
	c.B1 = int16(binary.BigEndian.Uint16(b[12:]))
	c.B2 = int16(binary.BigEndian.Uint16(b[14:]))
	c.MB = int16(binary.BigEndian.Uint16(b[16:]))
	c.MC = int16(binary.BigEndian.Uint16(b[18:]))
	c.MD = int16(binary.BigEndian.Uint16(b[20:]))
	return c
}

// b5 is the temperature term shared by both compensations.
func (c *Calibration) b5(ut uint16) (int32, error) {
	x1 := ((int32(ut) - int32(c.AC6)) * int32(c.AC5)) >> 15
	d := x1 + int32(c.MD)
	if d == 0 {
		return 0, fmt.Errorf("%w: calibration divides by zero (x1+MD)", ErrInvalidParameter)
	}
	x2 := (int32(c.MC) << 11) / d
	return x1 + x2, nil
}

// temperature converts b5 to degrees Celsius. The datasheet result is in
// 0.1°C steps.
func temperature(b5 int32) float64 {
	return float64((b5+8)>>4) * 0.1
}

// compensateRaw turns the 24 bit output register value into the
// oversampling dependent count UP.
func compensateRaw(raw uint32, oss Mode) (int32, error) {
	mask, err := pressureMask(oss)
	if err != nil {
		return 0, err
	}
	return int32((raw >> (8 - uint(oss))) & mask), nil
}

// pressure returns the compensated pressure in Pa.
func (c *Calibration) pressure(up, b5 int32, oss Mode) (uint32, error) {
	s := uint(oss)

	b6 := b5 - 4000
	x1 := (int32(c.B2) * ((b6 * b6) >> 12)) >> 11
	x2 := (int32(c.AC2) * b6) >> 11
	x3 := x1 + x2
	b3 := (((int32(c.AC1)*4 + x3) << s) + 2) >> 2
	x1 = (int32(c.AC3) * b6) >> 13
	x2 = (int32(c.B1) * ((b6 * b6) >> 12)) >> 16
	x3 = ((x1 + x2) + 2) >> 2
	b4 := (uint32(c.AC4) * uint32(x3+32768)) >> 15
	if b4 == 0 {
		return 0, fmt.Errorf("%w: calibration divides by zero (b4)", ErrInvalidParameter)
	}
	b7 := uint32(up-b3) * (50000 >> s)

	var p int32
	if b7 < 0x80000000 {
		p = int32((b7 << 1) / b4)
	} else {
		p = int32((b7 / b4) << 1)
	}
	x1 = (p >> 8) * (p >> 8)
	x1 = (x1 * 3038) >> 16
	x2 = (-7357 * p) >> 16
	return uint32(p + ((x1 + x2 + 3791) >> 4)), nil
}
