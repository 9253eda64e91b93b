package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func configFlag(t *testing.T) []string {
	return []string{"-config", filepath.Join(t.TempDir(), "stationSettings.yml")}
}

func TestRunUsage(t *testing.T) {
	code, _, stderr := runCmd(t)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Usage:")

	code, stdout, _ := runCmd(t, "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "test read <n>")

	code, _, stderr = runCmd(t, "calibrate")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Unknown command: calibrate")

	code, _, stderr = runCmd(t, "test")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "test needs reg or read")
}

func TestRunInfo(t *testing.T) {
	code, stdout, _ := runCmd(t, "info")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "bmp180: chip is Bosch BMP180")
	assert.Contains(t, stdout, "bmp180: max temperature is 85.0C")
}

func TestRunPins(t *testing.T) {
	code, stdout, _ := runCmd(t, "pins")
	require.Equal(t, 0, code)
	assert.Equal(t, "bmp180: SCL connected to GPIO3(BCM)\nbmp180: SDA connected to GPIO2(BCM)\n", stdout)
}

func TestRunRegisterTestFake(t *testing.T) {
	args := append([]string{"test", "reg", "-fake"}, configFlag(t)...)
	code, stdout, _ := runCmd(t, args...)
	require.Equal(t, 0, code, stdout)
	assert.Contains(t, stdout, "bmp180: check chip id ok")
	assert.Contains(t, stdout, "bmp180: finish register test")
}

func TestRunReadFake(t *testing.T) {
	args := append([]string{"read", "-fake", "-mode", "ultra-low"}, configFlag(t)...)
	args = append(args, "1")
	code, stdout, _ := runCmd(t, args...)
	require.Equal(t, 0, code, stdout)
	assert.Contains(t, stdout, "bmp180: temperature is 15.00C")
	assert.Contains(t, stdout, "bmp180: pressure is 69964Pa")
}

func TestRunReadArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing count", []string{"read", "-fake"}},
		{"bad count", []string{"read", "-fake", "zero"}},
		{"bad mode", []string{"read", "-fake", "-mode", "turbo", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(append([]string{}, tt.args[:1]...), configFlag(t)...)
			args = append(args, tt.args[1:]...)
			code, _, _ := runCmd(t, args...)
			assert.Equal(t, 1, code)
		})
	}
}
