package model

type ModeInput struct {
	Mode *uint8 `json:"mode" binding:"required"`
}

type RegisterInput struct {
	Value *uint8 `json:"value" binding:"required"`
}

type FakeInput struct {
	RawTemperature uint16 `json:"rawTemperature" binding:"required"`
	RawPressure    uint32 `json:"rawPressure" binding:"required"`
}
