package sensors

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ZamarianPatrick/lazypig-barometer/sensors/bmp180"
)

// Conversion times in ms from the datasheet, rounded up.
var conversionTime = map[byte]int{
	0x2E: 5,
	0x34: 5,
	0x74: 8,
	0xB4: 14,
	0xF4: 26,
}

// FakeCalibration is the coefficient set of the datasheet example.
var FakeCalibration = bmp180.Calibration{
	AC1: 408, AC2: -72, AC3: -14383,
	AC4: 32741, AC5: 32757, AC6: 23153,
	B1: 6190, B2: 4,
	MB: -32768, MC: -8711, MD: 2868,
}

// FakeBus emulates a BMP180 register file for running without hardware.
// Conversions stay busy for as many status polls as the real chip needs
// milliseconds.
type FakeBus struct {
	// Delay implements DelayMs; time.Sleep by default.
	Delay func(time.Duration)

	mu      sync.Mutex
	log     *slog.Logger
	open    bool
	regs    [256]byte
	ut      uint16
	up      uint32
	pending int
}

func NewFakeBus(log *slog.Logger) *FakeBus {
	if log == nil {
		log = slog.Default()
	}
	f := &FakeBus{
		Delay: time.Sleep,
		log:   log,
		ut:    27898,
		up:    23843 << 8,
	}
	f.regs[bmp180.RegID] = bmp180.ChipID
	f.SetCalibration(FakeCalibration)
	return f
}

// SetCalibration programs the 22 byte calibration block.
func (f *FakeBus) SetCalibration(c bmp180.Calibration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, v := range []uint16{
		uint16(c.AC1), uint16(c.AC2), uint16(c.AC3),
		c.AC4, c.AC5, c.AC6,
		uint16(c.B1), uint16(c.B2),
		uint16(c.MB), uint16(c.MC), uint16(c.MD),
	} {
		binary.BigEndian.PutUint16(f.regs[bmp180.RegCalibration+2*i:], v)
	}
}

// SetRaw sets the counts the next conversions return. up is the 24 bit
// output register content (MSB, LSB, XLSB).
func (f *FakeBus) SetRaw(ut uint16, up uint32) {
	f.mu.Lock()
	f.ut = ut
	f.up = up & 0xFFFFFF
	f.mu.Unlock()
}

func (f *FakeBus) Raw() (ut uint16, up uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ut, f.up
}

func (f *FakeBus) Init() error {
	f.mu.Lock()
	f.open = true
	f.mu.Unlock()
	return nil
}

func (f *FakeBus) Deinit() error {
	f.mu.Lock()
	f.open = false
	f.mu.Unlock()
	return nil
}

func (f *FakeBus) Read(addr, reg byte, buf []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(addr, reg, len(buf)); err != nil {
		return err
	}
	if reg == bmp180.RegCtrlMeas {
		if f.pending > 0 {
			f.pending--
		} else {
			f.regs[bmp180.RegCtrlMeas] &^= 0x20
		}
	}
	copy(buf, f.regs[reg:])
	return nil
}

func (f *FakeBus) Write(addr, reg byte, buf []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(addr, reg, len(buf)); err != nil {
		return err
	}
	copy(f.regs[reg:], buf)

	switch reg {
	case bmp180.RegSoftReset:
		if buf[0] == 0xB6 {
			f.regs[bmp180.RegCtrlMeas] = 0
			f.pending = 0
		}
	case bmp180.RegCtrlMeas:
		cmd := buf[0]
		f.pending = conversionTime[cmd]
		f.regs[bmp180.RegCtrlMeas] = cmd | 0x20
		switch {
		case cmd == 0x2E:
			binary.BigEndian.PutUint16(f.regs[bmp180.RegOutMSB:], f.ut)
		case cmd&0x3F == 0x34:
			f.regs[bmp180.RegOutMSB] = byte(f.up >> 16)
			f.regs[bmp180.RegOutLSB] = byte(f.up >> 8)
			f.regs[bmp180.RegOutXLSB] = byte(f.up)
		}
	}
	return nil
}

func (f *FakeBus) check(addr, reg byte, n int) error {
	if !f.open {
		return errBusClosed
	}
	if addr != bmp180.Address {
		return fmt.Errorf("no device at address 0x%02X", addr)
	}
	if int(reg)+n > len(f.regs) {
		return fmt.Errorf("register 0x%02X+%d out of range", reg, n)
	}
	return nil
}

func (f *FakeBus) DelayMs(ms uint32) {
	f.Delay(time.Duration(ms) * time.Millisecond)
}

func (f *FakeBus) Debugf(format string, args ...any) {
	f.log.Debug(fmt.Sprintf(format, args...))
}
