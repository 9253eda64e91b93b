package sensors

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

var errBusClosed = errors.New("i2c bus is not open")

// PeriphTransport reaches the sensor through a periph.io I²C bus.
type PeriphTransport struct {
	BusName string
	Log     *slog.Logger

	bus i2c.BusCloser
}

func NewPeriphTransport(busName string, log *slog.Logger) *PeriphTransport {
	if log == nil {
		log = slog.Default()
	}
	return &PeriphTransport{
		BusName: busName,
		Log:     log,
	}
}

func (t *PeriphTransport) Init() error {
	if _, err := host.Init(); err != nil {
		return err
	}
	bus, err := i2creg.Open(t.BusName)
	if err != nil {
		return fmt.Errorf("open i2c bus %q: %w", t.BusName, err)
	}
	t.bus = bus
	t.Log.Debug("i2c bus opened", "bus", bus.String())
	return nil
}

func (t *PeriphTransport) Deinit() error {
	if t.bus == nil {
		return nil
	}
	err := t.bus.Close()
	t.bus = nil
	return err
}

func (t *PeriphTransport) Read(addr, reg byte, buf []byte) error {
	if t.bus == nil {
		return errBusClosed
	}
	dev := i2c.Dev{Bus: t.bus, Addr: uint16(addr)}
	return dev.Tx([]byte{reg}, buf)
}

func (t *PeriphTransport) Write(addr, reg byte, buf []byte) error {
	if t.bus == nil {
		return errBusClosed
	}
	dev := i2c.Dev{Bus: t.bus, Addr: uint16(addr)}
	return dev.Tx(append([]byte{reg}, buf...), nil)
}

func (t *PeriphTransport) DelayMs(ms uint32) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

func (t *PeriphTransport) Debugf(format string, args ...any) {
	t.Log.Debug(fmt.Sprintf(format, args...))
}
