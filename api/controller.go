package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/ZamarianPatrick/lazypig-barometer/api/model"
	"github.com/ZamarianPatrick/lazypig-barometer/sensors"
	"github.com/ZamarianPatrick/lazypig-barometer/sensors/bmp180"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var errFakeDisabled = errors.New("station is not running on the simulated sensor")

type Controller interface {
	DB() *gorm.DB
	Info() bmp180.Info
	Mode() (bmp180.Mode, error)
	SetMode(mode bmp180.Mode) error
	ReadTemperature() (*model.Reading, error)
	ReadPressure() (*model.Reading, error)
	ReadNow() (*model.Reading, error)
	History(limit int) ([]*model.Reading, error)
	Register(reg byte) (byte, error)
	SetRegister(reg, value byte) error
	ReadingChannel(ctx context.Context) chan *model.Reading
	SetFakeRaw(ut uint16, up uint32) error
	Close() error
}

type controller struct {
	db           *gorm.DB
	dev          *bmp180.Dev
	devMu        sync.Mutex
	sensorWorker sensors.Worker
	settings     sensors.StationSettings
	fake         *sensors.FakeBus
	log          *slog.Logger

	mutex           sync.RWMutex
	readingChannels map[string]chan *model.Reading

	done      chan struct{}
	closeOnce sync.Once
}

// NewController opens the sensor described by settings, on the simulated bus
// when settings.Fake is set.
func NewController(settings sensors.StationSettings, log *slog.Logger) (Controller, error) {
	if log == nil {
		log = slog.Default()
	}
	if settings.Fake {
		fake := sensors.NewFakeBus(log)
		return newController(settings, fake, fake, log)
	}
	return newController(settings, sensors.NewPeriphTransport(settings.Bus, log), nil, log)
}

func newController(settings sensors.StationSettings, transport bmp180.Transport, fake *sensors.FakeBus, log *slog.Logger) (*controller, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(settings.Database), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(settings.LogLevel)),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.Reading{}); err != nil {
		return nil, errors.Join(err, closeDB(db))
	}

	dev := bmp180.New(transport)
	if err := dev.Init(); err != nil {
		return nil, errors.Join(fmt.Errorf("bmp180 init: %w", err), closeDB(db))
	}
	if err := dev.SetMode(bmp180.Mode(settings.Mode)); err != nil {
		return nil, errors.Join(err, dev.Deinit(), closeDB(db))
	}

	c := &controller{
		db:              db,
		dev:             dev,
		settings:        settings,
		fake:            fake,
		log:             log,
		readingChannels: make(map[string]chan *model.Reading),
		done:            make(chan struct{}),
	}

	c.sensorWorker = sensors.NewWorker(settings.PollInterval, log).
		Add(sensors.NewBarometer(dev, &c.devMu, settings.SeaLevelPressure))

	c.ReadSensors()
	c.sensorWorker.Start()

	log.Info("barometer ready", "mode", bmp180.Mode(settings.Mode).String(), "fake", fake != nil)
	return c, nil
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.Info
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}

// ReadSensors stores and broadcasts every sample of the worker.
func (c *controller) ReadSensors() {
	go func() {
		ch := c.sensorWorker.DataChannel()
		var last *model.Reading

		for {
			var data sensors.SensorData
			select {
			case <-c.done:
				return
			case data = <-ch:
			}

			reading := newReading(data.Sample)
			if last != nil &&
				math.Abs(float64(last.Pressure)-float64(reading.Pressure)) < 2 &&
				math.Abs(last.Temperature-reading.Temperature) < 0.1 {
				continue
			}
			if err := c.store(reading); err != nil {
				c.log.Error("store reading failed", "err", err)
				continue
			}
			last = reading
		}
	}()
}

func newReading(s sensors.Sample) *model.Reading {
	return &model.Reading{
		CreatedAt:      s.Time,
		Mode:           uint8(s.Mode),
		RawTemperature: s.RawTemperature,
		Temperature:    s.Celsius,
		RawPressure:    s.RawPressure,
		Pressure:       s.Pascals,
		Altitude:       s.Altitude,
	}
}

func (c *controller) store(reading *model.Reading) error {
	if r := c.db.Create(reading); r.Error != nil {
		return r.Error
	}

	c.mutex.RLock()
	for id, out := range c.readingChannels {
		select {
		case out <- reading:
		default:
			c.log.Debug("subscriber too slow, reading dropped", "subscriber", id)
		}
	}
	c.mutex.RUnlock()
	return nil
}

func (c *controller) DB() *gorm.DB {
	return c.db
}

func (c *controller) Info() bmp180.Info {
	return bmp180.GetInfo()
}

func (c *controller) Mode() (bmp180.Mode, error) {
	c.devMu.Lock()
	defer c.devMu.Unlock()
	return c.dev.Mode()
}

func (c *controller) SetMode(mode bmp180.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: mode %d", bmp180.ErrInvalidParameter, uint8(mode))
	}
	c.devMu.Lock()
	defer c.devMu.Unlock()
	return c.dev.SetMode(mode)
}

func (c *controller) ReadTemperature() (*model.Reading, error) {
	c.devMu.Lock()
	defer c.devMu.Unlock()

	mode, err := c.dev.Mode()
	if err != nil {
		return nil, err
	}
	raw, celsius, err := c.dev.ReadTemperature()
	if err != nil {
		return nil, err
	}
	return &model.Reading{
		Mode:           uint8(mode),
		RawTemperature: raw,
		Temperature:    celsius,
	}, nil
}

func (c *controller) ReadPressure() (*model.Reading, error) {
	c.devMu.Lock()
	defer c.devMu.Unlock()

	mode, err := c.dev.Mode()
	if err != nil {
		return nil, err
	}
	raw, pa, err := c.dev.ReadPressure()
	if err != nil {
		return nil, err
	}
	return &model.Reading{
		Mode:        uint8(mode),
		RawPressure: raw,
		Pressure:    pa,
		Altitude:    sensors.Altitude(float64(pa), c.settings.SeaLevelPressure),
	}, nil
}

// ReadNow takes a combined reading outside the poll schedule and stores it.
func (c *controller) ReadNow() (*model.Reading, error) {
	c.devMu.Lock()
	mode, err := c.dev.Mode()
	if err != nil {
		c.devMu.Unlock()
		return nil, err
	}
	r, err := c.dev.ReadTemperaturePressure()
	c.devMu.Unlock()
	if err != nil {
		return nil, err
	}

	reading := newReading(sensors.NewSample(r, mode, c.settings.SeaLevelPressure))
	if err := c.store(reading); err != nil {
		return nil, err
	}
	return reading, nil
}

func (c *controller) History(limit int) ([]*model.Reading, error) {
	var readings []*model.Reading
	r := c.db.Order("id desc").Limit(limit).Find(&readings)
	return readings, r.Error
}

func (c *controller) Register(reg byte) (byte, error) {
	c.devMu.Lock()
	defer c.devMu.Unlock()
	return c.dev.GetReg(reg)
}

func (c *controller) SetRegister(reg, value byte) error {
	c.devMu.Lock()
	defer c.devMu.Unlock()
	return c.dev.SetReg(reg, value)
}

func (c *controller) SetFakeRaw(ut uint16, up uint32) error {
	if c.fake == nil {
		return errFakeDisabled
	}
	c.fake.SetRaw(ut, up)
	return nil
}

func (c *controller) ReadingChannel(ctx context.Context) chan *model.Reading {
	ch := make(chan *model.Reading, 8)
	uuid, _ := uuid.NewUUID()

	c.mutex.Lock()
	c.readingChannels[uuid.String()] = ch
	c.mutex.Unlock()

	go func() {
		<-ctx.Done()
		c.mutex.Lock()
		delete(c.readingChannels, uuid.String())
		c.mutex.Unlock()

		c.log.Debug("reading subscriber closed", "subscriber", uuid.String())
	}()

	return ch
}

func (c *controller) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.sensorWorker.Stop()
		close(c.done)

		c.devMu.Lock()
		err = c.dev.Deinit()
		c.devMu.Unlock()

		err = errors.Join(err, closeDB(c.db))
	})
	return err
}
