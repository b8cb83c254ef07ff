package platform

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/stianeikeland/go-rpio/v4"
	c "lautenbacher.net/ledtree/config"
)

// RaspberryPiPlatform reads the PIR sensor from a GPIO pin and drives
// the strip either over SPI (WS2801, APA102) or with the PWM/DMA based
// WS2812 driver.
type RaspberryPiPlatform struct {
	*AbstractPlatform
	ledDriver ledDriver
	sensorPin rpio.Pin
	activeLow bool
	spiOpen   bool
	spiMutex  sync.Mutex
}

func NewRaspberryPiPlatform(conf *c.Config) *RaspberryPiPlatform {
	inst := &RaspberryPiPlatform{
		sensorPin: rpio.Pin(conf.Hardware.SensorPin),
		activeLow: conf.Hardware.SensorActiveLow,
	}
	inst.AbstractPlatform = newAbstractPlatform(conf, inst.rpiDisplayFunc)
	return inst
}

func (s *RaspberryPiPlatform) Start() error {
	hw := s.config.Hardware

	slog.Info("Initialise GPIO...", "sensorPin", hw.SensorPin, "activeLow", hw.SensorActiveLow)
	if err := rpio.Open(); err != nil {
		return fmt.Errorf("failed to open rpio: %w", err)
	}
	s.sensorPin.Input()
	if s.activeLow {
		s.sensorPin.PullUp()
	} else {
		s.sensorPin.PullDown()
	}

	switch strings.ToUpper(hw.LEDType) {
	case c.LEDTypeAPA102, c.LEDTypeWS2801:
		slog.Info("Initialise Spi...", "ledType", hw.LEDType, "frequency", hw.SPIFrequency)
		if err := rpio.SpiBegin(rpio.Spi0); err != nil {
			rpio.Close()
			return fmt.Errorf("failed to begin spi: %w", err)
		}
		rpio.SpiSpeed(hw.SPIFrequency)
		s.spiOpen = true
		if strings.ToUpper(hw.LEDType) == c.LEDTypeAPA102 {
			s.ledDriver = newApa102Driver(hw, s.Len(), s.spiExchange)
		} else {
			s.ledDriver = newWs2801Driver(hw, s.Len(), s.spiExchange)
		}
	case c.LEDTypeWS2812:
		slog.Info("Initialise WS2812...", "pin", hw.WS2812Pin, "brightness", hw.WS2812Brightness)
		driver, err := newWs2811Driver(hw, s.Len())
		if err != nil {
			rpio.Close()
			return err
		}
		s.ledDriver = driver
	default:
		rpio.Close()
		return fmt.Errorf("unknown LED type: %s", hw.LEDType)
	}

	s.startDisplay()
	close(s.readyChan) // For RPi, we are ready immediately.
	return nil
}

func (s *RaspberryPiPlatform) Stop() {
	// Wait for the display goroutine first, it still writes the last frame.
	s.stopDisplay()

	if s.ledDriver != nil {
		s.ledDriver.close()
	}
	if s.spiOpen {
		rpio.SpiEnd(rpio.Spi0)
		s.spiOpen = false
	}
	if err := rpio.Close(); err != nil {
		slog.Error("Error closing rpio", "error", err)
	}
}

// Active reads the PIR pin.
func (s *RaspberryPiPlatform) Active() bool {
	high := s.sensorPin.Read() == rpio.High
	return high != s.activeLow
}

func (s *RaspberryPiPlatform) rpiDisplayFunc(leds []Led) {
	if err := s.ledDriver.write(leds); err != nil {
		slog.Error("Error writing to LED driver", "error", err)
	}
}

func (s *RaspberryPiPlatform) spiExchange(data []byte) {
	s.spiMutex.Lock()
	defer s.spiMutex.Unlock()
	rpio.SpiExchange(data)
}

// ledDriver interface and implementations
type ledDriver interface {
	write(leds []Led) error
	close()
}

type ws2801Driver struct {
	correction []float64
	exchange   func([]byte)
	buffer     []byte
}

func newWs2801Driver(hw c.HardwareConfig, ledsTotal int, exchange func([]byte)) *ws2801Driver {
	return &ws2801Driver{
		correction: hw.ColorCorrection,
		exchange:   exchange,
		buffer:     make([]byte, 3*ledsTotal),
	}
}

func (d *ws2801Driver) write(leds []Led) error {
	if 3*len(leds) > len(d.buffer) {
		return fmt.Errorf("frame of %d leds exceeds the strip length %d", len(leds), len(d.buffer)/3)
	}
	display := d.buffer[:3*len(leds)]
	for idx, led := range leds {
		display[3*idx] = corrected(led.Red, d.correction[0])
		display[(3*idx)+1] = corrected(led.Green, d.correction[1])
		display[(3*idx)+2] = corrected(led.Blue, d.correction[2])
	}
	d.exchange(display)
	return nil
}

func (d *ws2801Driver) close() {}

type apa102Driver struct {
	correction []float64
	brightness byte
	exchange   func([]byte)
	buffer     []byte
}

func newApa102Driver(hw c.HardwareConfig, ledsTotal int, exchange func([]byte)) *apa102Driver {
	return &apa102Driver{
		correction: hw.ColorCorrection,
		brightness: hw.APA102Brightness,
		exchange:   exchange,
		buffer:     make([]byte, apa102FrameSize(ledsTotal)),
	}
}

// apa102FrameSize is start frame, one word per led and an end frame of
// at least n/2 bits.
func apa102FrameSize(n int) int {
	return 4 + (4 * n) + (n / 16) + 1
}

func (d *apa102Driver) write(leds []Led) error {
	requiredSize := apa102FrameSize(len(leds))
	if requiredSize > len(d.buffer) {
		return fmt.Errorf("frame of %d leds exceeds the strip buffer", len(leds))
	}
	display := d.buffer[:requiredSize]

	// Frame start: 4 zero bytes
	copy(display[0:4], []byte{0x00, 0x00, 0x00, 0x00})

	// Fixed general brightness
	brightness := d.brightness | 0xE0

	offset := 4
	for _, led := range leds {
		// protocol: brightness byte, blue, green, red
		display[offset] = brightness
		display[offset+1] = corrected(led.Blue, d.correction[2])
		display[offset+2] = corrected(led.Green, d.correction[1])
		display[offset+3] = corrected(led.Red, d.correction[0])
		offset += 4
	}

	// Frame end: fill the rest of the slice with 0xFF
	for i := offset; i < requiredSize; i++ {
		display[i] = 0xFF
	}

	d.exchange(display)
	return nil
}

func (d *apa102Driver) close() {}
