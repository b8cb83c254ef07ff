// Command ledtree runs the motion activated tree animation, either on a
// Raspberry Pi (-real) or as a terminal simulation.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"lautenbacher.net/ledtree/animation"
	c "lautenbacher.net/ledtree/config"
	"lautenbacher.net/ledtree/logging"
	pl "lautenbacher.net/ledtree/platform"
	"lautenbacher.net/ledtree/sensor"
	u "lautenbacher.net/ledtree/util"
)

type App struct {
	ossignal    chan os.Signal
	configFile  string
	real        bool
	clock       u.Clock
	newPlatform func(conf *c.Config, ossignal chan os.Signal) pl.Platform
	platform    pl.Platform
	shutdownWg  sync.WaitGroup
}

func main() {
	realp := flag.Bool("real", false, "Set to true if program runs on the real hardware")
	cfile := flag.String("config", "", "YAML config file, built in defaults are used if empty")
	flag.Parse()

	ossignal := make(chan os.Signal, 1)
	signal.Notify(ossignal, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	app := NewApp(ossignal)
	app.configFile = *cfile
	app.real = *realp
	os.Exit(app.Run())
}

func NewApp(ossignal chan os.Signal) *App {
	return &App{
		ossignal: ossignal,
		clock:    u.SystemClock{},
	}
}

// Run runs the animation until the process is asked to stop, starting
// over with a freshly read config file on SIGHUP or when the file
// changes. It returns the process exit code.
func (a *App) Run() int {
	defer logging.Close()
	for {
		reload, err := a.runOnce()
		if err != nil {
			slog.Error("ledtree failed", "error", err)
			return 1
		}
		if !reload {
			slog.Info("Exiting...")
			return 0
		}
		slog.Info("Reloading config and restarting...")
	}
}

func (a *App) createPlatform(conf *c.Config) pl.Platform {
	if a.newPlatform != nil {
		return a.newPlatform(conf, a.ossignal)
	}
	if a.real {
		return pl.NewRaspberryPiPlatform(conf)
	}
	return pl.NewTUIPlatform(conf, a.ossignal)
}

func (a *App) runOnce() (bool, error) {
	conf, err := c.ReadConfig(a.configFile)
	if err != nil {
		return false, err
	}

	logCfg := conf.Logging.TUI
	if a.real {
		logCfg = conf.Logging.HW
	}
	if err := logging.Init(!a.real, logCfg); err != nil {
		return false, fmt.Errorf("failed to initialise logging: %w", err)
	}
	slog.Info("Starting ledtree", "config", a.configFile, "real", a.real, "leds", conf.Animation.NumLeds)

	a.platform = a.createPlatform(conf)
	if err := a.platform.Start(); err != nil {
		return false, fmt.Errorf("failed to start platform: %w", err)
	}

	select {
	case <-a.platform.Ready():
	case sig := <-a.ossignal:
		a.platform.Stop()
		return sig == syscall.SIGHUP, nil
	}

	var input sensor.Input = a.platform
	if conf.NightOnly.Enabled {
		slog.Info("Motion sensor only active at night", "latitude", conf.NightOnly.Latitude, "longitude", conf.NightOnly.Longitude)
		input = sensor.NewNightOnly(input, a.clock, conf.NightOnly.Latitude, conf.NightOnly.Longitude)
	}
	monitor := sensor.NewMonitor(input, a.clock, conf.Animation.DebounceTime, conf.Animation.MotionCheckInterval)
	ctrl := animation.NewController(conf.Animation, a.platform, monitor, a.clock, rand.New(rand.NewSource(time.Now().UnixNano())))

	ctx, cancel := context.WithCancel(context.Background())
	a.shutdownWg.Add(1)
	go func() {
		defer a.shutdownWg.Done()
		ctrl.Run(ctx)
	}()

	stopWatch := make(chan struct{})
	changed, err := c.Watch(a.configFile, stopWatch)
	if err != nil {
		slog.Warn("Config file changes will not be picked up", "error", err)
	}

	var reload bool
	select {
	case sig := <-a.ossignal:
		slog.Info("Received signal", "signal", sig.String())
		reload = sig == syscall.SIGHUP
	case <-changed:
		reload = true
	}

	close(stopWatch)
	cancel()
	a.shutdownWg.Wait()

	// Switch the tree off before the platform goes away.
	ctrl.Reset()
	stats := monitor.Stats()
	slog.Info("Motion monitor statistics",
		"polls", stats.Polls, "activations", stats.Activations,
		"confirmed", stats.Confirmed, "rejected", stats.Rejected)
	a.platform.Stop()
	return reload, nil
}
