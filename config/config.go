package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported values for Hardware.LEDType.
const (
	LEDTypeWS2801 = "WS2801"
	LEDTypeAPA102 = "APA102"
	LEDTypeWS2812 = "WS2812"
)

type Config struct {
	Animation  AnimationConfig  `yaml:"Animation"`
	Hardware   HardwareConfig   `yaml:"Hardware"`
	NightOnly  NightOnlyConfig  `yaml:"NightOnly"`
	Simulation SimulationConfig `yaml:"Simulation"`
	Logging    LoggingConfig    `yaml:"Logging"`
}

// AnimationConfig holds the named values the grow / shrink animation
// and the motion monitor run with. Colours are HSV triples in [0, 1].
type AnimationConfig struct {
	NumLeds             int           `yaml:"NumLeds"`
	RocketSpeed         time.Duration `yaml:"RocketSpeed"`
	FadeTrailLength     int           `yaml:"FadeTrailLength"`
	TwinkleSpeed        time.Duration `yaml:"TwinkleSpeed"`
	LedOnDuration       time.Duration `yaml:"LedOnDuration"`
	DebounceTime        time.Duration `yaml:"DebounceTime"`
	MotionCheckInterval time.Duration `yaml:"MotionCheckInterval"`
	LightChangeChance   float64       `yaml:"LightChangeChance"`
	TreeColour          []float64     `yaml:"TreeColour,flow"`
	LightColours        [][]float64   `yaml:"LightColours,flow"`
}

type HardwareConfig struct {
	LEDType          string    `yaml:"LEDType"`
	SPIFrequency     int       `yaml:"SPIFrequency"`
	SensorPin        int       `yaml:"SensorPin"`
	SensorActiveLow  bool      `yaml:"SensorActiveLow"`
	ColorCorrection  []float64 `yaml:"ColorCorrection,flow"`
	APA102Brightness byte      `yaml:"APA102Brightness"`
	WS2812Pin        int       `yaml:"WS2812Pin"`
	WS2812Brightness int       `yaml:"WS2812Brightness"`
}

// NightOnlyConfig restricts the animation to the time between sunset
// and sunrise at the given location.
type NightOnlyConfig struct {
	Enabled   bool    `yaml:"Enabled"`
	Latitude  float64 `yaml:"Latitude"`
	Longitude float64 `yaml:"Longitude"`
}

type SimulationConfig struct {
	// How long a key press keeps the simulated PIR sensor active.
	MotionHold time.Duration `yaml:"MotionHold"`
}

type LoggingConfig struct {
	TUI LogConfig `yaml:"TUI"`
	HW  LogConfig `yaml:"HW"`
}

type LogConfig struct {
	Level  string `yaml:"Level"`
	Format string `yaml:"Format"`
	File   string `yaml:"File"`
}

// Default returns the configuration the tree ships with.
func Default() Config {
	return Config{
		Animation: AnimationConfig{
			NumLeds:             50,
			RocketSpeed:         50 * time.Millisecond,
			FadeTrailLength:     15,
			TwinkleSpeed:        200 * time.Millisecond,
			LedOnDuration:       10 * time.Second,
			DebounceTime:        50 * time.Millisecond,
			MotionCheckInterval: 100 * time.Millisecond,
			LightChangeChance:   0.05,
			TreeColour:          []float64{0.33, 1.0, 0.6},
			LightColours: [][]float64{
				{0.0, 1.0, 1.0},  // red
				{0.16, 1.0, 1.0}, // yellow
				{0.33, 1.0, 1.0}, // green
				{0.5, 1.0, 1.0},  // cyan
				{0.66, 1.0, 1.0}, // blue
				{0.83, 1.0, 1.0}, // magenta
				{0.1, 0.8, 1.0},  // orange
				{0.95, 0.7, 1.0}, // pink
			},
		},
		Hardware: HardwareConfig{
			LEDType:          LEDTypeWS2812,
			SPIFrequency:     1000000,
			SensorPin:        21,
			ColorCorrection:  []float64{1, 1, 1},
			APA102Brightness: 31,
			WS2812Pin:        18,
			WS2812Brightness: 255,
		},
		Simulation: SimulationConfig{
			MotionHold: 3 * time.Second,
		},
		Logging: LoggingConfig{
			TUI: LogConfig{Level: "INFO", Format: "text"},
			HW:  LogConfig{Level: "INFO", Format: "text"},
		},
	}
}

// ReadConfig decodes cfile on top of Default() and validates the
// result. An empty cfile yields the defaults.
func ReadConfig(cfile string) (*Config, error) {
	conf := Default()
	if cfile == "" {
		return &conf, nil
	}

	f, err := os.Open(cfile)
	if err != nil {
		return nil, fmt.Errorf("can't open config file %s: %w", cfile, err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&conf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("can't decode config file %s: %w", cfile, err)
	}

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", cfile, err)
	}
	return &conf, nil
}

// Validate checks all values for consistency and returns every problem
// found joined into one error.
func (c *Config) Validate() error {
	var errs []error

	a := c.Animation
	if a.NumLeds < 0 {
		errs = append(errs, fmt.Errorf("Animation.NumLeds must be non-negative, got %d", a.NumLeds))
	}
	if a.FadeTrailLength < 0 {
		errs = append(errs, fmt.Errorf("Animation.FadeTrailLength must be non-negative, got %d", a.FadeTrailLength))
	}
	for name, d := range map[string]time.Duration{
		"RocketSpeed":         a.RocketSpeed,
		"TwinkleSpeed":        a.TwinkleSpeed,
		"LedOnDuration":       a.LedOnDuration,
		"DebounceTime":        a.DebounceTime,
		"MotionCheckInterval": a.MotionCheckInterval,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("Animation.%s must be non-negative, got %s", name, d))
		}
	}
	if a.LightChangeChance < 0 || a.LightChangeChance > 1 {
		errs = append(errs, fmt.Errorf("Animation.LightChangeChance must be between 0 and 1, got %g", a.LightChangeChance))
	}
	if err := validateHSV("Animation.TreeColour", a.TreeColour); err != nil {
		errs = append(errs, err)
	}
	for i, col := range a.LightColours {
		if err := validateHSV(fmt.Sprintf("Animation.LightColours[%d]", i), col); err != nil {
			errs = append(errs, err)
		}
	}

	hw := c.Hardware
	switch strings.ToUpper(hw.LEDType) {
	case LEDTypeWS2801, LEDTypeAPA102, LEDTypeWS2812:
	default:
		errs = append(errs, fmt.Errorf("Hardware.LEDType must be one of %s, %s or %s, got %q", LEDTypeWS2801, LEDTypeAPA102, LEDTypeWS2812, hw.LEDType))
	}
	if hw.SPIFrequency <= 0 {
		errs = append(errs, fmt.Errorf("Hardware.SPIFrequency must be positive, got %d", hw.SPIFrequency))
	}
	if hw.SensorPin < 0 || hw.SensorPin > 27 {
		errs = append(errs, fmt.Errorf("Hardware.SensorPin must be between 0 and 27, got %d", hw.SensorPin))
	}
	if hw.WS2812Pin < 0 || hw.WS2812Pin > 27 {
		errs = append(errs, fmt.Errorf("Hardware.WS2812Pin must be between 0 and 27, got %d", hw.WS2812Pin))
	}
	if hw.WS2812Brightness < 0 || hw.WS2812Brightness > 255 {
		errs = append(errs, fmt.Errorf("Hardware.WS2812Brightness must be between 0 and 255, got %d", hw.WS2812Brightness))
	}
	if hw.APA102Brightness > 31 {
		errs = append(errs, fmt.Errorf("Hardware.APA102Brightness must be between 0 and 31, got %d", hw.APA102Brightness))
	}
	if len(hw.ColorCorrection) != 3 {
		errs = append(errs, fmt.Errorf("Hardware.ColorCorrection must have exactly 3 elements, got %d", len(hw.ColorCorrection)))
	} else {
		for i, f := range hw.ColorCorrection {
			if f < 0 {
				errs = append(errs, fmt.Errorf("Hardware.ColorCorrection[%d] must be non-negative, got %g", i, f))
			}
		}
	}

	if c.NightOnly.Enabled {
		if c.NightOnly.Latitude < -90 || c.NightOnly.Latitude > 90 {
			errs = append(errs, fmt.Errorf("NightOnly.Latitude must be between -90 and 90, got %g", c.NightOnly.Latitude))
		}
		if c.NightOnly.Longitude < -180 || c.NightOnly.Longitude > 180 {
			errs = append(errs, fmt.Errorf("NightOnly.Longitude must be between -180 and 180, got %g", c.NightOnly.Longitude))
		}
	}

	if c.Simulation.MotionHold < 0 {
		errs = append(errs, fmt.Errorf("Simulation.MotionHold must be non-negative, got %s", c.Simulation.MotionHold))
	}

	return errors.Join(errs...)
}

func validateHSV(name string, hsv []float64) error {
	if len(hsv) != 3 {
		return fmt.Errorf("%s must have exactly 3 elements (hue, saturation, value), got %d", name, len(hsv))
	}
	for i, v := range hsv {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s[%d] must be between 0 and 1, got %g", name, i, v)
		}
	}
	return nil
}
