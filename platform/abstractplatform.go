package platform

import (
	"log/slog"
	"slices"
	"sync"

	"lautenbacher.net/ledtree/animation"
	c "lautenbacher.net/ledtree/config"
	u "lautenbacher.net/ledtree/util"
)

// AbstractPlatform buffers the pixels of the current frame and hands
// every shown frame to a display goroutine. Only the newest frame is
// kept, so a slow output never blocks the animation.
type AbstractPlatform struct {
	config          *c.Config
	leds            []Led
	frames          *u.Mailbox[[]Led]
	displayFunc     func([]Led)
	displayWg       sync.WaitGroup
	displayStopChan chan bool
	readyChan       chan bool
}

func newAbstractPlatform(conf *c.Config, displayFunc func([]Led)) *AbstractPlatform {
	return &AbstractPlatform{
		config:          conf,
		leds:            make([]Led, conf.Animation.NumLeds),
		frames:          u.NewMailbox[[]Led](),
		displayFunc:     displayFunc,
		displayStopChan: make(chan bool),
		readyChan:       make(chan bool),
	}
}

func (s *AbstractPlatform) Len() int {
	return len(s.leds)
}

func (s *AbstractPlatform) SetPixel(index int, col animation.Color) {
	if index < 0 || index >= len(s.leds) {
		return
	}
	s.leds[index] = ledFromColor(col)
}

func (s *AbstractPlatform) Show() {
	s.frames.Post(slices.Clone(s.leds))
}

func (s *AbstractPlatform) Ready() <-chan bool {
	return s.readyChan
}

func (s *AbstractPlatform) startDisplay() {
	s.displayWg.Add(1)
	go s.displayDriver()
}

// stopDisplay ends the display goroutine after it has shown the last
// pending frame.
func (s *AbstractPlatform) stopDisplay() {
	close(s.displayStopChan)
	s.displayWg.Wait()
}

func (s *AbstractPlatform) displayDriver() {
	defer s.displayWg.Done()
	for {
		select {
		case <-s.displayStopChan:
			if leds, ok := s.frames.Take(); ok {
				s.displayFunc(leds)
			}
			slog.Info("Ending DisplayDriver go-routine...")
			return
		case <-s.frames.Ready():
			if leds, ok := s.frames.Take(); ok {
				s.displayFunc(leds)
			}
		}
	}
}
