//go:build ws2811

package platform

import (
	"fmt"

	ws2811 "github.com/rpi-ws281x/rpi-ws281x-go"
	c "lautenbacher.net/ledtree/config"
)

type ws2811Driver struct {
	dev        *ws2811.WS2811
	correction []float64
}

func newWs2811Driver(hw c.HardwareConfig, ledsTotal int) (ledDriver, error) {
	opt := ws2811.DefaultOptions
	opt.Channels = append([]ws2811.ChannelOption(nil), opt.Channels...)
	opt.Channels[0].GpioPin = hw.WS2812Pin
	opt.Channels[0].Brightness = hw.WS2812Brightness
	opt.Channels[0].LedCount = ledsTotal

	dev, err := ws2811.MakeWS2811(&opt)
	if err != nil {
		return nil, fmt.Errorf("failed to create ws2811 device: %w", err)
	}
	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("failed to init ws2811 device: %w", err)
	}
	return &ws2811Driver{dev: dev, correction: hw.ColorCorrection}, nil
}

func (d *ws2811Driver) write(leds []Led) error {
	buf := d.dev.Leds(0)
	for i := range min(len(buf), len(leds)) {
		buf[i] = rgbWord(leds[i], d.correction)
	}
	return d.dev.Render()
}

func (d *ws2811Driver) close() {
	d.dev.Fini()
}
