//go:build !ws2811

package platform

import (
	"errors"

	c "lautenbacher.net/ledtree/config"
)

// The WS2812 driver links against the native rpi_ws281x library and is
// only built with -tags ws2811.
func newWs2811Driver(c.HardwareConfig, int) (ledDriver, error) {
	return nil, errors.New("WS2812 support not compiled in, rebuild with -tags ws2811")
}
