package bmp180

import "fmt"

// Address is the 7 bit I²C address of the BMP180 (0xEE on the wire).
const Address = 0x77

// ChipID is the value of RegID on every BMP180.
const ChipID = 0x55

const (
	RegCalibration = 0xAA // AC1 MSB, start of the 22 byte calibration block
	RegID          = 0xD0
	RegSoftReset   = 0xE0
	RegCtrlMeas    = 0xF4
	RegOutMSB      = 0xF6
	RegOutLSB      = 0xF7
	RegOutXLSB     = 0xF8
)

const (
	calibrationLen = 22

	cmdTemperature = 0x2E
	cmdPressure    = 0x34
	cmdSoftReset   = 0xB6

	// ctrlSCO is set while a conversion is running.
	ctrlSCO = 0x20

	pollAttempts = 5000
)

// Mode is the pressure oversampling setting.
type Mode uint8

const (
	UltraLow  Mode = 0
	Standard  Mode = 1
	High      Mode = 2
	UltraHigh Mode = 3
)

func (m Mode) String() string {
	switch m {
	case UltraLow:
		return "ultra low"
	case Standard:
		return "standard"
	case High:
		return "high"
	case UltraHigh:
		return "ultra high"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// Valid reports whether m is one of the four oversampling levels.
func (m Mode) Valid() bool {
	return m <= UltraHigh
}

// ParseMode accepts either the level number or its name.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "0", "ultra-low", "ultralow", "ultra low":
		return UltraLow, nil
	case "1", "standard":
		return Standard, nil
	case "2", "high":
		return High, nil
	case "3", "ultra-high", "ultrahigh", "ultra high":
		return UltraHigh, nil
	}
	return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidParameter, s)
}

// pressureCommand is the control register value starting a pressure
// conversion at oversampling m.
func pressureCommand(m Mode) byte {
	return byte(cmdPressure + uint(m)<<6)
}

// pressureMask keeps the valid bits of the shifted pressure count.
func pressureMask(m Mode) (uint32, error) {
	switch m {
	case UltraLow:
		return 0x0000FFFF, nil
	case Standard:
		return 0x0001FFFF, nil
	case High:
		return 0x0003FFFF, nil
	case UltraHigh:
		return 0x0007FFFF, nil
	}
	return 0, fmt.Errorf("%w: oversampling %d", ErrInvalidParameter, uint8(m))
}
