package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ZamarianPatrick/lazypig-barometer/api/model"
	"github.com/ZamarianPatrick/lazypig-barometer/sensors/bmp180"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"periph.io/x/conn/v3/physic"
)

const defaultHistoryLimit = 100

type Resolver struct {
	version    string
	controller Controller
	upgrader   websocket.Upgrader
	log        *slog.Logger
}

func NewResolver(version string, controller Controller, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		version:    version,
		controller: controller,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// Router wires every station route onto a new gin engine.
func (r *Resolver) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/info", r.info)
	router.GET("/mode", r.mode)
	router.PUT("/mode", r.setMode)
	router.GET("/temperature", r.temperature)
	router.GET("/pressure", r.pressure)
	router.GET("/reading", r.reading)
	router.GET("/readings", r.readings)
	router.GET("/registers/:reg", r.register)
	router.PUT("/registers/:reg", r.setRegister)
	router.PUT("/fake", r.setFake)
	router.GET("/ws", r.subscribe)

	return router
}

func (r *Resolver) info(c *gin.Context) {
	info := r.controller.Info()
	major, minor := info.Version()
	c.JSON(http.StatusOK, &model.Info{
		ChipName:          info.ChipName,
		Manufacturer:      info.Manufacturer,
		Interface:         info.Interface,
		SupplyVoltageMinV: float64(info.SupplyVoltageMin) / float64(physic.Volt),
		SupplyVoltageMaxV: float64(info.SupplyVoltageMax) / float64(physic.Volt),
		MaxCurrentMA:      float64(info.MaxCurrent) / float64(physic.MilliAmpere),
		TemperatureMinC:   celsius(info.TemperatureMin),
		TemperatureMaxC:   celsius(info.TemperatureMax),
		DriverVersion:     fmt.Sprintf("%d.%d", major, minor),
		ServerVersion:     r.version,
	})
}

func celsius(t physic.Temperature) float64 {
	return float64(t-physic.ZeroCelsius) / float64(physic.Kelvin)
}

func (r *Resolver) mode(c *gin.Context) {
	mode, err := r.controller.Mode()
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, &model.Mode{Mode: uint8(mode), Name: mode.String()})
}

func (r *Resolver) setMode(c *gin.Context) {
	var input model.ModeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode := bmp180.Mode(*input.Mode)
	if err := r.controller.SetMode(mode); err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, &model.Mode{Mode: uint8(mode), Name: mode.String()})
}

func (r *Resolver) temperature(c *gin.Context) {
	r.respond(c, r.controller.ReadTemperature)
}

func (r *Resolver) pressure(c *gin.Context) {
	r.respond(c, r.controller.ReadPressure)
}

func (r *Resolver) reading(c *gin.Context) {
	r.respond(c, r.controller.ReadNow)
}

func (r *Resolver) respond(c *gin.Context, read func() (*model.Reading, error)) {
	reading, err := read()
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reading)
}

func (r *Resolver) readings(c *gin.Context) {
	limit := defaultHistoryLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	readings, err := r.controller.History(limit)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, readings)
}

func (r *Resolver) register(c *gin.Context) {
	reg, ok := registerParam(c)
	if !ok {
		return
	}
	value, err := r.controller.Register(reg)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, &model.Register{Address: reg, Value: value})
}

func (r *Resolver) setRegister(c *gin.Context) {
	reg, ok := registerParam(c)
	if !ok {
		return
	}
	var input model.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := r.controller.SetRegister(reg, *input.Value); err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, &model.Register{Address: reg, Value: *input.Value})
}

// registerParam accepts decimal, 0x hex and 0 octal addresses.
func registerParam(c *gin.Context) (byte, bool) {
	v, err := strconv.ParseUint(c.Param("reg"), 0, 8)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid register " + c.Param("reg")})
		return 0, false
	}
	return byte(v), true
}

func (r *Resolver) setFake(c *gin.Context) {
	var input model.FakeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := r.controller.SetFakeRaw(input.RawTemperature, input.RawPressure); err != nil {
		r.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Resolver) subscribe(c *gin.Context) {
	conn, err := r.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		r.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// The client never sends; reading only detects the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	readings := r.controller.ReadingChannel(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case reading := <-readings:
			if err := conn.WriteJSON(reading); err != nil {
				r.log.Debug("websocket write failed", "err", err)
				return
			}
		}
	}
}

func (r *Resolver) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		r.log.Error("request failed", "path", c.FullPath(), "err", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, bmp180.ErrNotInitialized), errors.Is(err, bmp180.ErrNilHandle):
		return http.StatusServiceUnavailable
	case errors.Is(err, bmp180.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, bmp180.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, bmp180.ErrIO):
		return http.StatusBadGateway
	case errors.Is(err, errFakeDisabled):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
