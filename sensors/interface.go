package sensors

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ZamarianPatrick/lazypig-barometer/sensors/bmp180"
	"periph.io/x/conn/v3/physic"
)

type Sensor interface {
	Name() string
	Read() (Sample, error)
}

// Sample is one compensated measurement.
type Sample struct {
	bmp180.Reading
	Mode     bmp180.Mode
	Env      physic.Env
	Altitude float64
	Time     time.Time
}

func NewSample(r bmp180.Reading, mode bmp180.Mode, seaLevel float64) Sample {
	return Sample{
		Reading: r,
		Mode:    mode,
		Env: physic.Env{
			Temperature: physic.ZeroCelsius + physic.Temperature(math.Round(r.Celsius*1000))*physic.MilliCelsius,
			Pressure:    physic.Pressure(r.Pascals) * physic.Pascal,
		},
		Altitude: Altitude(float64(r.Pascals), seaLevel),
		Time:     time.Now(),
	}
}

type Worker interface {
	Add(sensor Sensor) Worker
	Start()
	Stop()
	DataChannel() chan SensorData
}

type SensorData struct {
	SensorName string
	Sample     Sample
}

type sensorWorker struct {
	mu           sync.Mutex
	stop         chan struct{}
	interval     time.Duration
	sensors      []Sensor
	valueChannel chan SensorData
	log          *slog.Logger
}

func NewWorker(interval time.Duration, log *slog.Logger) Worker {
	if log == nil {
		log = slog.Default()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &sensorWorker{
		interval:     interval,
		valueChannel: make(chan SensorData),
		log:          log,
	}
}

func (sw *sensorWorker) Add(sensor Sensor) Worker {
	sw.mu.Lock()
	sw.sensors = append(sw.sensors, sensor)
	sw.mu.Unlock()
	return sw
}

func (sw *sensorWorker) Start() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.stop != nil {
		return
	}
	stop := make(chan struct{})
	sw.stop = stop

	go func() {
		for {
			sw.mu.Lock()
			sensors := append([]Sensor(nil), sw.sensors...)
			sw.mu.Unlock()

			for _, sensor := range sensors {
				sample, err := sensor.Read()
				if err != nil {
					sw.log.Warn("sensor read failed", "sensor", sensor.Name(), "err", err)
					continue
				}

				select {
				case sw.valueChannel <- SensorData{SensorName: sensor.Name(), Sample: sample}:
				case <-stop:
					return
				}
			}

			select {
			case <-stop:
				return
			case <-time.After(sw.interval):
			}
		}
	}()
}

func (sw *sensorWorker) Stop() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.stop != nil {
		close(sw.stop)
		sw.stop = nil
	}
}

func (sw *sensorWorker) DataChannel() chan SensorData {
	return sw.valueChannel
}

// SeaLevelPressure is the standard atmosphere in Pa.
const SeaLevelPressure = 101325.0

// Altitude returns the height in meters above the level where the pressure
// is seaLevel Pa, using the international barometric formula.
func Altitude(pa, seaLevel float64) float64 {
	if pa <= 0 || seaLevel <= 0 {
		return math.NaN()
	}
	return 44330 * (1 - math.Pow(pa/seaLevel, 1/5.255))
}
