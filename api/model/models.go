package model

import "time"

type Reading struct {
	ID             uint64    `json:"id" gorm:"primaryKey"`
	CreatedAt      time.Time `json:"createdAt" gorm:"index"`
	Mode           uint8     `json:"mode"`
	RawTemperature uint16    `json:"rawTemperature"`
	Temperature    float64   `json:"temperature"`
	RawPressure    uint32    `json:"rawPressure,omitempty"`
	Pressure       uint32    `json:"pressure,omitempty"`
	Altitude       float64   `json:"altitude,omitempty"`
}

type Info struct {
	ChipName          string  `json:"chipName"`
	Manufacturer      string  `json:"manufacturer"`
	Interface         string  `json:"interface"`
	SupplyVoltageMinV float64 `json:"supplyVoltageMinV"`
	SupplyVoltageMaxV float64 `json:"supplyVoltageMaxV"`
	MaxCurrentMA      float64 `json:"maxCurrentMA"`
	TemperatureMinC   float64 `json:"temperatureMinC"`
	TemperatureMaxC   float64 `json:"temperatureMaxC"`
	DriverVersion     string  `json:"driverVersion"`
	ServerVersion     string  `json:"serverVersion"`
}

type Mode struct {
	Mode uint8  `json:"mode"`
	Name string `json:"name"`
}

type Register struct {
	Address uint8 `json:"address"`
	Value   uint8 `json:"value"`
}
