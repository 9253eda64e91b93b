// Command bmp180 drives a Bosch BMP180 barometer on a Linux I²C bus.
//
// Usage:
//
//	bmp180 <command> [flags] [args]
//
// Commands:
//
//	info           Print the chip and driver descriptor
//	pins           Print the wiring of the I²C lines
//	test reg       Check the chip id and the mode round trip
//	test read <n>  Read n times in every oversampling mode
//	read <n>       Read n times, one second apart
//	serve          Run the HTTP station API
//
// Examples:
//
//	# Read three times from bus 1
//	bmp180 read -bus 1 3
//
//	# Serve the API on the simulated sensor
//	bmp180 serve -fake
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ZamarianPatrick/lazypig-barometer/api"
	"github.com/ZamarianPatrick/lazypig-barometer/sensors"
	"github.com/ZamarianPatrick/lazypig-barometer/sensors/bmp180"
	"github.com/gin-gonic/gin"
)

const version = "1.0.0"

const usage = `bmp180 - Bosch BMP180 barometer tool

Usage:
  bmp180 <command> [flags] [args]

Commands:
  info           Print the chip and driver descriptor
  pins           Print the wiring of the I2C lines
  test reg       Check the chip id and the mode round trip
  test read <n>  Read n times in every oversampling mode
  read <n>       Read n times, one second apart
  serve          Run the HTTP station API

Use "bmp180 <command> -help" for more information about a command.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	config string
	bus    string
	mode   string
	fake   bool
	debug  bool
}

func (o *options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.config, "config", "stationSettings.yml", "Settings file, created with defaults when missing")
	fs.StringVar(&o.bus, "bus", "", "I2C bus name, overrides the settings file")
	fs.StringVar(&o.mode, "mode", "", "Oversampling: ultra-low, standard, high, ultra-high or 0-3")
	fs.BoolVar(&o.fake, "fake", false, "Use the simulated sensor instead of the bus")
	fs.BoolVar(&o.debug, "debug", false, "Log bus traffic")
}

// settings loads the config file and applies the flag overrides.
func (o *options) settings() (sensors.StationSettings, error) {
	settings, err := sensors.LoadSettings(o.config)
	if err != nil {
		return settings, err
	}
	if o.bus != "" {
		settings.Bus = o.bus
	}
	if o.mode != "" {
		m, err := bmp180.ParseMode(o.mode)
		if err != nil {
			return settings, err
		}
		settings.Mode = uint8(m)
	}
	if o.fake {
		settings.Fake = true
	}
	if o.debug {
		settings.LogLevel = "debug"
	}
	return settings, settings.Validate()
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}

func transport(settings sensors.StationSettings, log *slog.Logger) bmp180.Transport {
	if settings.Fake {
		return sensors.NewFakeBus(log)
	}
	return sensors.NewPeriphTransport(settings.Bus, log)
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprint(stderr, usage)
		return 1
	}

	cmd, args := args[0], args[1:]
	if cmd == "test" {
		if len(args) < 1 {
			fmt.Fprintln(stderr, "Error: test needs reg or read")
			return 1
		}
		cmd, args = "test "+args[0], args[1:]
	}

	var opts options
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts.register(fs)

	switch cmd {
	case "info", "pins", "test reg", "test read", "read", "serve":
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(stderr, usage)
		return 1
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if cmd == "info" {
		sensors.LogInfo(newLogger(stdout, "info"), bmp180.GetInfo())
		return 0
	}
	if cmd == "pins" {
		fmt.Fprintln(stdout, "bmp180: SCL connected to GPIO3(BCM)")
		fmt.Fprintln(stdout, "bmp180: SDA connected to GPIO2(BCM)")
		return 0
	}

	settings, err := opts.settings()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	log := newLogger(stdout, settings.LogLevel)

	switch cmd {
	case "test reg":
		err = sensors.RegisterTest(transport(settings, log), log)
	case "test read":
		var times int
		if times, err = timesArg(fs); err == nil {
			err = sensors.ReadTest(transport(settings, log), times, log)
		}
	case "read":
		var times int
		if times, err = timesArg(fs); err == nil {
			err = read(transport(settings, log), bmp180.Mode(settings.Mode), times, log)
		}
	case "serve":
		err = serve(settings, log)
	}

	if err != nil {
		log.Error("bmp180: "+cmd+" failed", "err", err)
		return 1
	}
	return 0
}

func timesArg(fs *flag.FlagSet) (int, error) {
	if fs.NArg() < 1 {
		return 0, errors.New("number of reads required")
	}
	n, err := strconv.Atoi(fs.Arg(0))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid number of reads %q", fs.Arg(0))
	}
	return n, nil
}

func read(t bmp180.Transport, mode bmp180.Mode, times int, log *slog.Logger) error {
	b, err := sensors.BasicInit(t)
	if err != nil {
		return err
	}
	if err := b.SetMode(mode); err != nil {
		return errors.Join(err, b.Deinit())
	}

	for i := 0; i < times; i++ {
		if i > 0 {
			t.DelayMs(1000)
		}
		celsius, pa, err := b.Read()
		if err != nil {
			return errors.Join(err, b.Deinit())
		}
		log.Info(fmt.Sprintf("bmp180: %d/%d", i+1, times))
		log.Info(fmt.Sprintf("bmp180: temperature is %0.2fC", celsius))
		log.Info(fmt.Sprintf("bmp180: pressure is %dPa", pa))
	}
	return b.Deinit()
}

func serve(settings sensors.StationSettings, log *slog.Logger) error {
	gin.SetMode(gin.ReleaseMode)

	controller, err := api.NewController(settings, log)
	if err != nil {
		return err
	}
	defer controller.Close()

	server := &http.Server{
		Addr:              settings.Listen,
		Handler:           api.NewResolver(version, controller, log).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", settings.Listen, "version", version)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
