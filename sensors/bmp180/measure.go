package bmp180

import "fmt"

// Reading is the result of a combined temperature and pressure read.
type Reading struct {
	RawTemperature uint16
	Celsius        float64
	// RawPressure is the 24 bit output register value as read, before the
	// oversampling shift.
	RawPressure uint32
	Pascals     uint32
}

// ReadTemperature runs one temperature conversion.
func (d *Dev) ReadTemperature() (raw uint16, celsius float64, err error) {
	if err := d.ready(); err != nil {
		return 0, 0, err
	}
	ut, err := d.convertTemperature()
	if err != nil {
		return 0, 0, err
	}
	b5, err := d.cal.b5(ut)
	if err != nil {
		return 0, 0, err
	}
	return ut, temperature(b5), nil
}

// ReadPressure runs a temperature conversion followed by a pressure
// conversion at the current oversampling.
func (d *Dev) ReadPressure() (raw uint32, pa uint32, err error) {
	r, err := d.ReadTemperaturePressure()
	if err != nil {
		return 0, 0, err
	}
	return r.RawPressure, r.Pascals, nil
}

// ReadTemperaturePressure shares one temperature conversion between both
// results.
func (d *Dev) ReadTemperaturePressure() (Reading, error) {
	if err := d.ready(); err != nil {
		return Reading{}, err
	}
	oss := d.oss
	if !oss.Valid() {
		d.t.Debugf("bmp180: oss param error")
		return Reading{}, fmt.Errorf("%w: oversampling %d", ErrInvalidParameter, uint8(oss))
	}

	ut, err := d.convertTemperature()
	if err != nil {
		return Reading{}, err
	}
	raw, err := d.convertPressure(oss)
	if err != nil {
		return Reading{}, err
	}
	up, err := compensateRaw(raw, oss)
	if err != nil {
		d.t.Debugf("bmp180: oss param error")
		return Reading{}, err
	}

	b5, err := d.cal.b5(ut)
	if err != nil {
		return Reading{}, err
	}
	pa, err := d.cal.pressure(up, b5, oss)
	if err != nil {
		return Reading{}, err
	}
	return Reading{
		RawTemperature: ut,
		Celsius:        temperature(b5),
		RawPressure:    raw,
		Pascals:        pa,
	}, nil
}

func (d *Dev) convertTemperature() (uint16, error) {
	if err := d.writeReg(RegCtrlMeas, cmdTemperature); err != nil {
		d.t.Debugf("bmp180: write ctrl meas failed: %v", err)
		return 0, err
	}
	if err := d.waitConversion(); err != nil {
		d.t.Debugf("bmp180: read temperature failed: %v", err)
		return 0, err
	}
	buf := [2]byte{}
	if err := d.t.Read(d.addr, RegOutMSB, buf[:]); err != nil {
		d.t.Debugf("bmp180: read out msb lsb failed: %v", err)
		return 0, fmt.Errorf("%w: read temperature: %v", ErrIO, err)
	}
	return uint16(buf[0])<<8 | uint16(buf[1]), nil
}

func (d *Dev) convertPressure(oss Mode) (uint32, error) {
	if err := d.writeReg(RegCtrlMeas, pressureCommand(oss)); err != nil {
		d.t.Debugf("bmp180: write ctrl meas failed: %v", err)
		return 0, err
	}
	if err := d.waitConversion(); err != nil {
		d.t.Debugf("bmp180: read pressure failed: %v", err)
		return 0, err
	}
	buf := [3]byte{}
	if err := d.t.Read(d.addr, RegOutMSB, buf[:]); err != nil {
		d.t.Debugf("bmp180: read out msb lsb xlsb failed: %v", err)
		return 0, fmt.Errorf("%w: read pressure: %v", ErrIO, err)
	}
	return uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2]), nil
}

// waitConversion polls the control register once per millisecond until the
// conversion bit clears.
func (d *Dev) waitConversion() error {
	for i := 0; i < pollAttempts; i++ {
		d.t.DelayMs(1)
		status, err := d.readReg(RegCtrlMeas)
		if err != nil {
			return err
		}
		if status&ctrlSCO == 0 {
			return nil
		}
	}
	return fmt.Errorf("%w after %d polls", ErrTimeout, pollAttempts)
}
