package bmp180

import "periph.io/x/conn/v3/physic"

// Info describes the chip and this driver.
type Info struct {
	ChipName         string
	Manufacturer     string
	Interface        string
	SupplyVoltageMin physic.ElectricPotential
	SupplyVoltageMax physic.ElectricPotential
	MaxCurrent       physic.ElectricCurrent
	TemperatureMin   physic.Temperature
	TemperatureMax   physic.Temperature
	DriverVersion    uint32
}

// DriverVersion is major*1000 + minor*100.
const DriverVersion = 2000

// GetInfo returns the static descriptor. It does not need a device.
func GetInfo() Info {
	return Info{
		ChipName:         "Bosch BMP180",
		Manufacturer:     "Bosch",
		Interface:        "IIC",
		SupplyVoltageMin: 1800 * physic.MilliVolt,
		SupplyVoltageMax: 3600 * physic.MilliVolt,
		MaxCurrent:       650 * physic.MicroAmpere,
		TemperatureMin:   physic.ZeroCelsius - 40*physic.Kelvin,
		TemperatureMax:   physic.ZeroCelsius + 85*physic.Kelvin,
		DriverVersion:    DriverVersion,
	}
}

// Version splits DriverVersion into its major and minor parts.
func (i Info) Version() (major, minor uint32) {
	return i.DriverVersion / 1000, (i.DriverVersion % 1000) / 100
}
