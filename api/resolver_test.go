package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ZamarianPatrick/lazypig-barometer/api/model"
	"github.com/ZamarianPatrick/lazypig-barometer/sensors"
	"github.com/ZamarianPatrick/lazypig-barometer/sensors/bmp180"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) (*gin.Engine, *controller, *sensors.FakeBus) {
	c, fake := newTestController(t)
	return NewResolver("test", c, discard()).Router(), c, fake
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestInfoRoute(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := do(router, http.MethodGet, "/info", "")
	require.Equal(t, http.StatusOK, w.Code)

	info := decode[model.Info](t, w)
	assert.Equal(t, "Bosch BMP180", info.ChipName)
	assert.Equal(t, "IIC", info.Interface)
	assert.InDelta(t, 1.8, info.SupplyVoltageMinV, 1e-9)
	assert.InDelta(t, 3.6, info.SupplyVoltageMaxV, 1e-9)
	assert.InDelta(t, 0.65, info.MaxCurrentMA, 1e-9)
	assert.InDelta(t, -40, info.TemperatureMinC, 1e-9)
	assert.InDelta(t, 85, info.TemperatureMaxC, 1e-9)
	assert.Equal(t, "2.0", info.DriverVersion)
	assert.Equal(t, "test", info.ServerVersion)
}

func TestModeRoutes(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := do(router, http.MethodGet, "/mode", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.Mode{Mode: 0, Name: "ultra low"}, decode[model.Mode](t, w))

	w = do(router, http.MethodPut, "/mode", `{"mode":3}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.Mode{Mode: 3, Name: "ultra high"}, decode[model.Mode](t, w))

	w = do(router, http.MethodGet, "/mode", "")
	assert.Equal(t, "ultra high", decode[model.Mode](t, w).Name)
}

func TestSetModeRejected(t *testing.T) {
	router, _, _ := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"out of range", `{"mode":4}`},
		{"missing", `{}`},
		{"malformed", `{"mode":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, http.MethodPut, "/mode", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestReadRoutes(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := do(router, http.MethodGet, "/temperature", "")
	require.Equal(t, http.StatusOK, w.Code)
	temp := decode[model.Reading](t, w)
	assert.InDelta(t, 15.0, temp.Temperature, 1e-9)
	assert.Equal(t, uint16(27898), temp.RawTemperature)

	w = do(router, http.MethodGet, "/pressure", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint32(69964), decode[model.Reading](t, w).Pressure)

	w = do(router, http.MethodGet, "/reading", "")
	require.Equal(t, http.StatusOK, w.Code)
	reading := decode[model.Reading](t, w)
	assert.NotZero(t, reading.ID)
	assert.Equal(t, uint32(69964), reading.Pressure)
	assert.InDelta(t, 15.0, reading.Temperature, 1e-9)
}

func TestReadingsRoute(t *testing.T) {
	router, _, _ := newTestRouter(t)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, do(router, http.MethodGet, "/reading", "").Code)
	}

	w := do(router, http.MethodGet, "/readings?limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	readings := decode[[]model.Reading](t, w)
	require.Len(t, readings, 2)
	assert.Greater(t, readings[0].ID, readings[1].ID)

	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/readings?limit=0", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/readings?limit=x", "").Code)
}

func TestRegisterRoutes(t *testing.T) {
	router, _, _ := newTestRouter(t)

	for _, path := range []string{"/registers/0xD0", "/registers/208"} {
		w := do(router, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, model.Register{Address: 0xD0, Value: bmp180.ChipID}, decode[model.Register](t, w))
	}

	w := do(router, http.MethodPut, "/registers/0xF5", `{"value":4}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/registers/0xF5", "")
	assert.Equal(t, uint8(4), decode[model.Register](t, w).Value)

	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/registers/0x100", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/registers/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodPut, "/registers/0xF5", `{}`).Code)
}

func TestFakeRoute(t *testing.T) {
	router, _, fake := newTestRouter(t)

	w := do(router, http.MethodPut, "/fake", `{"rawTemperature":31000,"rawPressure":6103808}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	ut, up := fake.Raw()
	assert.Equal(t, uint16(31000), ut)
	assert.Equal(t, uint32(6103808), up)

	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodPut, "/fake", `{"rawTemperature":1}`).Code)
}

func TestFakeRouteDisabled(t *testing.T) {
	fake := sensors.NewFakeBus(discard())
	fake.Delay = func(time.Duration) {}
	c, err := newController(testSettings(t), fake, nil, discard())
	require.NoError(t, err)
	defer c.Close()

	router := NewResolver("test", c, discard()).Router()
	w := do(router, http.MethodPut, "/fake", `{"rawTemperature":31000,"rawPressure":6103808}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRoutesAfterClose(t *testing.T) {
	router, c, _ := newTestRouter(t)
	require.NoError(t, c.Close())

	assert.Equal(t, http.StatusServiceUnavailable, do(router, http.MethodGet, "/mode", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(router, http.MethodGet, "/temperature", "").Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{bmp180.ErrNotInitialized, http.StatusServiceUnavailable},
		{bmp180.ErrNilHandle, http.StatusServiceUnavailable},
		{fmt.Errorf("%w: mode 9", bmp180.ErrInvalidParameter), http.StatusBadRequest},
		{bmp180.ErrTimeout, http.StatusGatewayTimeout},
		{fmt.Errorf("%w: nack", bmp180.ErrIO), http.StatusBadGateway},
		{errFakeDisabled, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestWebsocketStreamsReadings(t *testing.T) {
	router, _, fake := newTestRouter(t)
	server := httptest.NewServer(router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the handler time to subscribe before the value changes.
	time.Sleep(50 * time.Millisecond)
	fake.SetRaw(31000, 23843<<8)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var reading model.Reading
		require.NoError(t, conn.ReadJSON(&reading))
		if reading.RawTemperature == 31000 {
			assert.Greater(t, reading.Temperature, 15.0)
			return
		}
	}
}
