package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validAnimation = `
Animation:
  NumLeds: 30
  RocketSpeed: 10ms
  FadeTrailLength: 5
  TwinkleSpeed: 100ms
  LedOnDuration: 5s
  DebounceTime: 20ms
  MotionCheckInterval: 40ms
  LightChangeChance: 0.1
  TreeColour: [0.33, 1.0, 0.5]
  LightColours: [[0.0, 1.0, 1.0], [0.5, 1.0, 1.0]]
`

const validHardware = `
Hardware:
  LEDType: "APA102"
  SPIFrequency: 2000000
  SensorPin: 17
  SensorActiveLow: true
  ColorCorrection: [1.0, 0.8, 0.6]
  APA102Brightness: 16
  WS2812Pin: 18
  WS2812Brightness: 128
`

const validRest = `
NightOnly:
  Enabled: true
  Latitude: 52.52
  Longitude: 13.40
Simulation:
  MotionHold: 2s
Logging:
  TUI:
    Level: "DEBUG"
    Format: "text"
    File: "/tmp/ledtree-tui.log"
  HW:
    Level: "WARN"
    Format: "json"
    File: "/var/log/ledtree-hw.log"
`

func getBaseConfig() string {
	return validAnimation + validHardware + validRest
}

func createConfigFile(t *testing.T, configData string) string {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "config.yml")
	err := os.WriteFile(configFile, []byte(configData), 0o644)
	if err != nil {
		t.Fatalf("Failed to write dummy config file: %v", err)
	}
	return configFile
}

func TestDefaultIsValid(t *testing.T) {
	conf := Default()
	assert.NoError(t, conf.Validate(), "the shipped defaults must validate")

	assert.Equal(t, 50, conf.Animation.NumLeds)
	assert.Equal(t, 50*time.Millisecond, conf.Animation.RocketSpeed)
	assert.Equal(t, 15, conf.Animation.FadeTrailLength)
	assert.Equal(t, 200*time.Millisecond, conf.Animation.TwinkleSpeed)
	assert.Equal(t, 10*time.Second, conf.Animation.LedOnDuration)
	assert.Equal(t, 0.05, conf.Animation.LightChangeChance)
	assert.Len(t, conf.Animation.LightColours, 8)
}

func TestReadConfig(t *testing.T) {
	configFile := createConfigFile(t, getBaseConfig())

	conf, err := ReadConfig(configFile)
	require.NoError(t, err, "ReadConfig should not return an error")

	a := conf.Animation
	assert.Equal(t, 30, a.NumLeds)
	assert.Equal(t, 10*time.Millisecond, a.RocketSpeed, "Animation.RocketSpeed should be 10ms")
	assert.Equal(t, 5, a.FadeTrailLength)
	assert.Equal(t, 100*time.Millisecond, a.TwinkleSpeed)
	assert.Equal(t, 5*time.Second, a.LedOnDuration)
	assert.Equal(t, 20*time.Millisecond, a.DebounceTime)
	assert.Equal(t, 40*time.Millisecond, a.MotionCheckInterval)
	assert.Equal(t, 0.1, a.LightChangeChance)
	assert.Equal(t, []float64{0.33, 1.0, 0.5}, a.TreeColour)
	assert.Equal(t, [][]float64{{0.0, 1.0, 1.0}, {0.5, 1.0, 1.0}}, a.LightColours, "palette should replace the default one")

	assert.Equal(t, "APA102", conf.Hardware.LEDType)
	assert.Equal(t, 17, conf.Hardware.SensorPin)
	assert.True(t, conf.Hardware.SensorActiveLow)
	assert.Equal(t, []float64{1.0, 0.8, 0.6}, conf.Hardware.ColorCorrection)
	assert.Equal(t, byte(16), conf.Hardware.APA102Brightness)

	assert.True(t, conf.NightOnly.Enabled)
	assert.Equal(t, 2*time.Second, conf.Simulation.MotionHold)

	assert.Equal(t, "DEBUG", conf.Logging.TUI.Level, "Logging.TUI.Level should be DEBUG")
	assert.Equal(t, "text", conf.Logging.TUI.Format)
	assert.Equal(t, "/tmp/ledtree-tui.log", conf.Logging.TUI.File)
	assert.Equal(t, "WARN", conf.Logging.HW.Level)
	assert.Equal(t, "json", conf.Logging.HW.Format)
	assert.Equal(t, "/var/log/ledtree-hw.log", conf.Logging.HW.File)
}

func TestReadConfig_PartialFileKeepsDefaults(t *testing.T) {
	configFile := createConfigFile(t, "Animation:\n  NumLeds: 12\n")

	conf, err := ReadConfig(configFile)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, 12, conf.Animation.NumLeds)
	assert.Equal(t, def.Animation.RocketSpeed, conf.Animation.RocketSpeed)
	assert.Equal(t, def.Animation.TreeColour, conf.Animation.TreeColour)
	assert.Equal(t, def.Hardware, conf.Hardware)
}

func TestReadConfig_EmptyFileAndNoFile(t *testing.T) {
	configFile := createConfigFile(t, "")
	conf, err := ReadConfig(configFile)
	require.NoError(t, err, "an empty file should yield the defaults")
	assert.Equal(t, Default(), *conf)

	conf, err = ReadConfig("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *conf)
}

func TestReadConfig_MissingFile(t *testing.T) {
	_, err := ReadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "can't open config file")
}

func TestReadConfig_UnknownField(t *testing.T) {
	configFile := createConfigFile(t, "Animation:\n  NumLEDs: 12\n")
	_, err := ReadConfig(configFile)
	assert.Error(t, err, "misspelled keys should be rejected")
	assert.Contains(t, err.Error(), "can't decode config file")
}

func TestReadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr string
	}{
		{"negative led count", "NumLeds: 30", "NumLeds: -1", "Animation.NumLeds must be non-negative"},
		{"negative duration", "RocketSpeed: 10ms", "RocketSpeed: -10ms", "Animation.RocketSpeed must be non-negative"},
		{"chance above one", "LightChangeChance: 0.1", "LightChangeChance: 1.5", "must be between 0 and 1"},
		{"colour out of range", "TreeColour: [0.33, 1.0, 0.5]", "TreeColour: [0.33, 1.0, 2]", "Animation.TreeColour[2] must be between 0 and 1"},
		{"colour too short", "TreeColour: [0.33, 1.0, 0.5]", "TreeColour: [0.33, 1.0]", "must have exactly 3 elements"},
		{"palette entry invalid", "[0.5, 1.0, 1.0]]", "[0.5, -1.0, 1.0]]", "Animation.LightColours[1][1]"},
		{"unknown led type", `LEDType: "APA102"`, `LEDType: "NEOPIXEL"`, "Hardware.LEDType must be one of"},
		{"sensor pin", "SensorPin: 17", "SensorPin: 40", "Hardware.SensorPin must be between 0 and 27"},
		{"apa102 brightness", "APA102Brightness: 16", "APA102Brightness: 32", "Hardware.APA102Brightness must be between 0 and 31"},
		{"colour correction", "ColorCorrection: [1.0, 0.8, 0.6]", "ColorCorrection: [1.0, 0.8]", "Hardware.ColorCorrection must have exactly 3 elements"},
		{"latitude", "Latitude: 52.52", "Latitude: 100", "NightOnly.Latitude must be between -90 and 90"},
		{"motion hold", "MotionHold: 2s", "MotionHold: -2s", "Simulation.MotionHold must be non-negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configData := strings.Replace(getBaseConfig(), tt.from, tt.to, 1)
			assert.NotEqual(t, getBaseConfig(), configData, "test replacement did not apply")
			configFile := createConfigFile(t, configData)

			_, err := ReadConfig(configFile)
			assert.Error(t, err)
			if err != nil {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	conf := Default()
	conf.Animation.NumLeds = -5
	conf.Animation.LightChangeChance = 2
	conf.Hardware.LEDType = "bogus"

	err := conf.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "NumLeds")
	assert.Contains(t, err.Error(), "LightChangeChance")
	assert.Contains(t, err.Error(), "LEDType")
}

func TestValidate_NightOnlyDisabledIgnoresLocation(t *testing.T) {
	conf := Default()
	conf.NightOnly.Latitude = 1000
	assert.NoError(t, conf.Validate())
}
