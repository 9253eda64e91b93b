package bmp180

import (
	"encoding/binary"
	"fmt"
)

// Coefficients of the datasheet's worked example.
var datasheetCal = Calibration{
	AC1: 408, AC2: -72, AC3: -14383,
	AC4: 32741, AC5: 32757, AC6: 23153,
	B1: 6190, B2: 4,
	MB: -32768, MC: -8711, MD: 2868,
}

func calibrationBlock(c Calibration) []byte {
	b := make([]byte, calibrationLen)
	for i, v := range []uint16{
		uint16(c.AC1), uint16(c.AC2), uint16(c.AC3),
		c.AC4, c.AC5, c.AC6,
		uint16(c.B1), uint16(c.B2),
		uint16(c.MB), uint16(c.MC), uint16(c.MD),
	} {
		binary.BigEndian.PutUint16(b[2*i:], v)
	}
	return b
}

type busWrite struct {
	reg   byte
	value byte
}

// testBus emulates the register file of a BMP180.
type testBus struct {
	regs [256]byte

	ut uint16
	up uint32 // 24 bit output register for a pressure conversion

	busyPolls  int
	alwaysBusy bool
	pending    int

	initErr   error
	deinitErr error
	readErr   map[byte]error
	writeErr  map[byte]error

	inits   int
	deinits int
	delays  int
	writes  []busWrite
	reads   []byte
	debug   []string
}

func newTestBus() *testBus {
	b := &testBus{
		ut:       27898,
		up:       23843 << 8,
		readErr:  map[byte]error{},
		writeErr: map[byte]error{},
	}
	b.regs[RegID] = ChipID
	copy(b.regs[RegCalibration:], calibrationBlock(datasheetCal))
	return b
}

func (b *testBus) Init() error {
	b.inits++
	return b.initErr
}

func (b *testBus) Deinit() error {
	b.deinits++
	return b.deinitErr
}

func (b *testBus) Read(addr, reg byte, buf []byte) error {
	if addr != Address {
		return fmt.Errorf("no device at 0x%02X", addr)
	}
	b.reads = append(b.reads, reg)
	if err := b.readErr[reg]; err != nil {
		return err
	}
	if reg == RegCtrlMeas {
		if b.alwaysBusy || b.pending > 0 {
			if b.pending > 0 {
				b.pending--
			}
			b.regs[RegCtrlMeas] |= ctrlSCO
		} else {
			b.regs[RegCtrlMeas] &^= ctrlSCO
		}
	}
	copy(buf, b.regs[int(reg):])
	return nil
}

func (b *testBus) Write(addr, reg byte, buf []byte) error {
	if addr != Address {
		return fmt.Errorf("no device at 0x%02X", addr)
	}
	for _, v := range buf {
		b.writes = append(b.writes, busWrite{reg: reg, value: v})
	}
	if err := b.writeErr[reg]; err != nil {
		return err
	}
	copy(b.regs[int(reg):], buf)
	if reg != RegCtrlMeas {
		return nil
	}
	b.pending = b.busyPolls
	switch v := buf[0]; {
	case v == cmdTemperature:
		binary.BigEndian.PutUint16(b.regs[RegOutMSB:], b.ut)
	case v&0x3F == cmdPressure:
		b.regs[RegOutMSB] = byte(b.up >> 16)
		b.regs[RegOutLSB] = byte(b.up >> 8)
		b.regs[RegOutXLSB] = byte(b.up)
	}
	return nil
}

func (b *testBus) DelayMs(ms uint32) {
	b.delays += int(ms)
}

func (b *testBus) Debugf(format string, args ...any) {
	b.debug = append(b.debug, fmt.Sprintf(format, args...))
}

func (b *testBus) ctrlWrites() []byte {
	var out []byte
	for _, w := range b.writes {
		if w.reg == RegCtrlMeas {
			out = append(out, w.value)
		}
	}
	return out
}

func (b *testBus) readCount(reg byte) int {
	n := 0
	for _, r := range b.reads {
		if r == reg {
			n++
		}
	}
	return n
}
