// Package platform abstracts the real hardware (Raspberry Pi with a PIR
// sensor and an LED strip) from the terminal simulation.
package platform

import (
	"lautenbacher.net/ledtree/animation"
	"lautenbacher.net/ledtree/sensor"
)

// Platform is the strip the animation draws on together with the PIR
// input gating it.
type Platform interface {
	animation.Strip
	sensor.Input

	// Start initializes the platform (e.g., opens GPIO/SPI, or starts the TUI).
	Start() error

	// Stop shows any pending frame and cleans up all platform resources.
	Stop()

	// Ready is closed once the platform can display frames.
	Ready() <-chan bool
}
