package sensors

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ZamarianPatrick/lazypig-barometer/sensors/bmp180"
	"periph.io/x/conn/v3/physic"
)

// DefaultMode is the oversampling the basic flow configures.
const DefaultMode = bmp180.UltraHigh

// Basic is the minimal init/read/deinit flow around one device.
type Basic struct {
	dev *bmp180.Dev
}

// BasicInit initializes the device behind t and sets DefaultMode.
func BasicInit(t bmp180.Transport) (*Basic, error) {
	dev := bmp180.New(t)
	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("init failed: %w", err)
	}
	if err := dev.SetMode(DefaultMode); err != nil {
		return nil, errors.Join(fmt.Errorf("set mode failed: %w", err), dev.Deinit())
	}
	return &Basic{dev: dev}, nil
}

func (b *Basic) Read() (celsius float64, pa uint32, err error) {
	r, err := b.dev.ReadTemperaturePressure()
	if err != nil {
		return 0, 0, err
	}
	return r.Celsius, r.Pascals, nil
}

func (b *Basic) SetMode(m bmp180.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: mode %d", bmp180.ErrInvalidParameter, uint8(m))
	}
	return b.dev.SetMode(m)
}

func (b *Basic) Deinit() error {
	return b.dev.Deinit()
}

// LogInfo writes the chip descriptor in the same shape the chip's vendor
// tools print it.
func LogInfo(log *slog.Logger, info bmp180.Info) {
	major, minor := info.Version()
	log.Info("bmp180: chip is " + info.ChipName)
	log.Info("bmp180: manufacturer is " + info.Manufacturer)
	log.Info("bmp180: interface is " + info.Interface)
	log.Info(fmt.Sprintf("bmp180: driver version is %d.%d", major, minor))
	log.Info(fmt.Sprintf("bmp180: min supply voltage is %s", info.SupplyVoltageMin))
	log.Info(fmt.Sprintf("bmp180: max supply voltage is %s", info.SupplyVoltageMax))
	log.Info(fmt.Sprintf("bmp180: max current is %s", info.MaxCurrent))
	log.Info(fmt.Sprintf("bmp180: max temperature is %0.1fC", celsius(info.TemperatureMax)))
	log.Info(fmt.Sprintf("bmp180: min temperature is %0.1fC", celsius(info.TemperatureMin)))
}

// RegisterTest checks the identity register and the mode round trip for
// every oversampling level.
func RegisterTest(t bmp180.Transport, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	LogInfo(log, bmp180.GetInfo())
	log.Info("bmp180: start register test")

	dev := bmp180.New(t)
	if err := dev.Init(); err != nil {
		return fmt.Errorf("init failed: %w", err)
	}

	id, err := dev.GetReg(bmp180.RegID)
	if err != nil {
		return errors.Join(fmt.Errorf("get reg failed: %w", err), dev.Deinit())
	}
	if id != bmp180.ChipID {
		return errors.Join(fmt.Errorf("%w: chip id 0x%02X", bmp180.ErrIdentity, id), dev.Deinit())
	}
	log.Info("bmp180: check chip id ok")

	for _, m := range []bmp180.Mode{bmp180.UltraLow, bmp180.Standard, bmp180.High, bmp180.UltraHigh} {
		if err := dev.SetMode(m); err != nil {
			return errors.Join(fmt.Errorf("set mode failed: %w", err), dev.Deinit())
		}
		got, err := dev.Mode()
		if err != nil {
			return errors.Join(fmt.Errorf("get mode failed: %w", err), dev.Deinit())
		}
		if got != m {
			return errors.Join(fmt.Errorf("check mode %s: got %s", m, got), dev.Deinit())
		}
		log.Info(fmt.Sprintf("bmp180: check %s mode ok", m))
	}

	log.Info("bmp180: finish register test")
	return dev.Deinit()
}

// ReadTest performs times combined reads in every oversampling level, one
// per second.
func ReadTest(t bmp180.Transport, times int, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	LogInfo(log, bmp180.GetInfo())
	log.Info("bmp180: start read test")

	dev := bmp180.New(t)
	if err := dev.Init(); err != nil {
		return fmt.Errorf("init failed: %w", err)
	}

	for _, m := range []bmp180.Mode{bmp180.UltraLow, bmp180.Standard, bmp180.High, bmp180.UltraHigh} {
		if err := dev.SetMode(m); err != nil {
			return errors.Join(fmt.Errorf("set %s mode failed: %w", m, err), dev.Deinit())
		}
		log.Info(fmt.Sprintf("bmp180: set %s mode", m))
		for i := 0; i < times; i++ {
			t.DelayMs(1000)
			r, err := dev.ReadTemperaturePressure()
			if err != nil {
				return errors.Join(fmt.Errorf("read failed: %w", err), dev.Deinit())
			}
			log.Info("bmp180: read",
				"temperature", fmt.Sprintf("%0.2fC", r.Celsius),
				"pressure", fmt.Sprintf("%dPa", r.Pascals))
		}
	}

	log.Info("bmp180: finish read test")
	return dev.Deinit()
}

func celsius(t physic.Temperature) float64 {
	return float64(t-physic.ZeroCelsius) / float64(physic.Kelvin)
}
