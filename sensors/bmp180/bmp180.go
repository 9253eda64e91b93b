package bmp180

import (
	"errors"
	"fmt"
)

// Dev is a handle to one BMP180.
//
// The zero value is unlinked; give it a Transport with Link or build it with
// New. Init loads the calibration and marks the handle ready. Deinit clears
// the ready flag but keeps the calibration around until the next Init.
type Dev struct {
	t      Transport
	addr   byte
	inited bool
	oss    Mode
	cal    Calibration
}

// New returns an uninitialized handle talking through t.
func New(t Transport) *Dev {
	d := &Dev{}
	d.Link(t)
	return d
}

// Link attaches the transport. It does not touch the bus.
func (d *Dev) Link(t Transport) {
	d.t = t
	d.addr = Address
}

// Init brings up the bus, checks the chip id and loads the calibration
// block. Every failure after the bus came up releases it again.
func (d *Dev) Init() error {
	if err := d.linked(); err != nil {
		return err
	}
	if err := d.t.Init(); err != nil {
		d.t.Debugf("bmp180: bus init failed: %v", err)
		return fmt.Errorf("%w: bus init: %v", ErrIO, err)
	}

	id := [1]byte{}
	if err := d.t.Read(d.addr, RegID, id[:]); err != nil {
		d.t.Debugf("bmp180: read id failed: %v", err)
		return d.rollback(fmt.Errorf("%w: read id: %v", ErrIO, err))
	}
	if id[0] != ChipID {
		d.t.Debugf("bmp180: id is 0x%02X, want 0x%02X", id[0], ChipID)
		return d.rollback(fmt.Errorf("%w: got 0x%02X", ErrIdentity, id[0]))
	}

	buf := [calibrationLen]byte{}
	if err := d.t.Read(d.addr, RegCalibration, buf[:]); err != nil {
		d.t.Debugf("bmp180: read calibration failed: %v", err)
		return d.rollback(fmt.Errorf("%w: %v", ErrCalibrationRead, err))
	}
	d.cal = newCalibration(buf[:])
	d.inited = true
	return nil
}

func (d *Dev) rollback(cause error) error {
	if err := d.t.Deinit(); err != nil {
		d.t.Debugf("bmp180: bus deinit failed: %v", err)
		return errors.Join(cause, fmt.Errorf("%w: bus deinit: %v", ErrIO, err))
	}
	return cause
}

// Deinit releases the bus. The handle must be initialized.
func (d *Dev) Deinit() error {
	if err := d.ready(); err != nil {
		return err
	}
	if err := d.t.Deinit(); err != nil {
		d.t.Debugf("bmp180: bus deinit failed: %v", err)
		return fmt.Errorf("%w: bus deinit: %v", ErrIO, err)
	}
	d.inited = false
	return nil
}

// Initialized reports whether Init succeeded and Deinit has not run since.
func (d *Dev) Initialized() bool {
	return d != nil && d.inited
}

// SetMode stores the oversampling used by later pressure reads. It never
// touches the bus; an invalid level is reported by the next pressure read.
func (d *Dev) SetMode(m Mode) error {
	if err := d.ready(); err != nil {
		return err
	}
	d.oss = m
	return nil
}

func (d *Dev) Mode() (Mode, error) {
	if err := d.ready(); err != nil {
		return 0, err
	}
	return d.oss, nil
}

// Calibration returns the coefficients read by the last successful Init.
func (d *Dev) Calibration() Calibration {
	if d == nil {
		return Calibration{}
	}
	return d.cal
}

// GetReg reads any register. No meaning is attached to the value.
func (d *Dev) GetReg(reg byte) (byte, error) {
	if err := d.ready(); err != nil {
		return 0, err
	}
	return d.readReg(reg)
}

// SetReg writes any register. No meaning is attached to the value.
func (d *Dev) SetReg(reg, value byte) error {
	if err := d.ready(); err != nil {
		return err
	}
	return d.writeReg(reg, value)
}

// SoftReset triggers a power-on reset sequence. Calibration stays valid, the
// chip only needs a few milliseconds before it answers again.
func (d *Dev) SoftReset() error {
	if err := d.SetReg(RegSoftReset, cmdSoftReset); err != nil {
		return err
	}
	d.t.DelayMs(10)
	return nil
}

func (d *Dev) linked() error {
	if d == nil {
		return ErrNilHandle
	}
	if d.t == nil {
		return fmt.Errorf("%w: transport is nil", ErrLinkage)
	}
	if c, ok := d.t.(checker); ok {
		if err := c.Check(); err != nil {
			return err
		}
	}
	return nil
}

// ready is the precondition of every operation but Init.
func (d *Dev) ready() error {
	if err := d.linked(); err != nil {
		return err
	}
	if !d.inited {
		return ErrNotInitialized
	}
	return nil
}

func (d *Dev) readReg(reg byte) (byte, error) {
	v := [1]byte{}
	if err := d.t.Read(d.addr, reg, v[:]); err != nil {
		return 0, fmt.Errorf("%w: read 0x%02X: %v", ErrIO, reg, err)
	}
	return v[0], nil
}

func (d *Dev) writeReg(reg, value byte) error {
	if err := d.t.Write(d.addr, reg, []byte{value}); err != nil {
		return fmt.Errorf("%w: write 0x%02X: %v", ErrIO, reg, err)
	}
	return nil
}
