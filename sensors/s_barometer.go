package sensors

import (
	"sync"

	"github.com/ZamarianPatrick/lazypig-barometer/sensors/bmp180"
)

type barometer struct {
	dev      *bmp180.Dev
	lock     sync.Locker
	seaLevel float64
}

// NewBarometer wraps an initialized device. lock guards every access to dev
// and must be the same one other users of dev hold.
func NewBarometer(dev *bmp180.Dev, lock sync.Locker, seaLevel float64) Sensor {
	return &barometer{
		dev:      dev,
		lock:     lock,
		seaLevel: seaLevel,
	}
}

func (s *barometer) Name() string {
	return "Barometer"
}

func (s *barometer) Read() (Sample, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	mode, err := s.dev.Mode()
	if err != nil {
		return Sample{}, err
	}
	r, err := s.dev.ReadTemperaturePressure()
	if err != nil {
		return Sample{}, err
	}
	return NewSample(r, mode, s.seaLevel), nil
}
