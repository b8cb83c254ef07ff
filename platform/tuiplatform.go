package platform

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"lautenbacher.net/ledtree/config"
	"lautenbacher.net/ledtree/logging"
	u "lautenbacher.net/ledtree/util"
)

// levelChars fills the two line bar of a cell from the bottom.
var levelChars = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// TUIPlatform simulates the tree in a terminal: the strip is drawn as a
// row of coloured bars and a key press plays the part of the PIR sensor.
type TUIPlatform struct {
	*AbstractPlatform
	tviewapp     *tview.Application
	intro        *tview.TextView
	ledDisplay   *tview.TextView
	activityView *tview.TextView
	logView      *tview.TextView
	ossignalChan chan os.Signal
	logFlushOnce sync.Once

	clock       u.Clock
	motionHold  time.Duration
	motionMutex sync.Mutex
	motionUntil time.Time
	activity    *activityHistory
}

func NewTUIPlatform(conf *config.Config, ossignalchan chan os.Signal) *TUIPlatform {
	inst := &TUIPlatform{
		ossignalChan: ossignalchan,
		clock:        u.SystemClock{},
		motionHold:   conf.Simulation.MotionHold,
		activity:     newActivityHistory(),
	}
	inst.AbstractPlatform = newAbstractPlatform(conf, inst.DisplayLeds)
	return inst
}

func (s *TUIPlatform) Start() error {
	s.initSimulationTUI()
	s.startDisplay()
	return nil
}

func (s *TUIPlatform) Stop() {
	// The display driver queues draws on the tview app, so it has to
	// finish before the app goes away.
	s.stopDisplay()

	if s.tviewapp != nil {
		// Logs written after this point would go to a dead view.
		logging.BufferOutput()
		s.tviewapp.Stop()
	}
}

// Active reports simulated PIR motion: a key press keeps the sensor
// active for the configured hold time.
func (s *TUIPlatform) Active() bool {
	s.motionMutex.Lock()
	active := s.clock.Now().Before(s.motionUntil)
	s.motionMutex.Unlock()

	s.activity.record(active)
	if s.tviewapp != nil {
		summary := s.activity.summary()
		s.tviewapp.QueueUpdateDraw(func() {
			s.activityView.SetText(summary)
		})
	}
	return active
}

func (s *TUIPlatform) triggerMotion() {
	s.motionMutex.Lock()
	defer s.motionMutex.Unlock()
	s.motionUntil = s.clock.Now().Add(s.motionHold)
	slog.Debug("Simulated motion", "until", s.motionUntil.Format(time.TimeOnly))
}

func (s *TUIPlatform) DisplayLeds(leds []Led) {
	top, bottom := renderStrip(leds)
	s.tviewapp.QueueUpdateDraw(func() {
		s.ledDisplay.SetText(" " + top + "\n " + bottom)
	})
}

func (s *TUIPlatform) getIntroText() string {
	line1 := fmt.Sprintf("Hit [#ff0000]m[white] or [#ff0000]space[white] to simulate motion for [#ffff00]%s[white]", s.motionHold)
	line2 := "Hit [#ff0000]q[-] to exit, [#ff0000]r[-] to reload, [#ff0000]Up/Down[-] to scroll logs"
	return fmt.Sprintf("%s\n%s", line1, line2)
}

func (s *TUIPlatform) initSimulationTUI() {
	s.tviewapp = tview.NewApplication()

	// --- Intro Pane ---
	s.intro = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	s.intro.SetText(s.getIntroText())
	s.intro.SetBorder(true).SetTitle(" LEDTREE Simulation ").SetTitleColor(tcell.ColorLightBlue)
	s.intro.SetBackgroundColor(tcell.NewRGBColor(20, 20, 20))

	// --- LED Display Pane ---
	s.ledDisplay = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	s.ledDisplay.SetBorder(true).SetTitle(" Tree ").SetTitleColor(tcell.ColorLightBlue)
	s.ledDisplay.SetBackgroundColor(tcell.NewRGBColor(30, 30, 30))

	// --- PIR Activity Pane ---
	s.activityView = tview.NewTextView().
		SetDynamicColors(true)
	s.activityView.SetBorder(true).SetTitle(" PIR Activity ").SetTitleColor(tcell.ColorLightBlue)
	s.activityView.SetBackgroundColor(tcell.NewRGBColor(30, 30, 30))

	// --- Log Pane ---
	s.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetChangedFunc(func() {
			s.logView.ScrollToEnd()
			s.tviewapp.Draw()
		})
	s.logView.SetBorder(true).SetTitle(" Logs ").SetTitleColor(tcell.ColorLightBlue)
	s.logView.SetBackgroundColor(tcell.NewRGBColor(40, 40, 40))

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(s.intro, 4, 0, false).
		AddItem(s.ledDisplay, 4, 0, false).
		AddItem(s.activityView, 3, 0, false).
		AddItem(s.logView, 0, 1, true)

	// --- Flush logs after first draw ---
	s.tviewapp.SetAfterDrawFunc(func(screen tcell.Screen) {
		s.logFlushOnce.Do(func() {
			logWriter := tview.ANSIWriter(s.logView)
			logging.SetOutput(logWriter)
			close(s.readyChan) // Signal that the TUI is ready
		})
	})

	// --- Input Handling ---
	s.tviewapp.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			s.ossignalChan <- os.Interrupt
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'm', 'M', ' ':
				s.triggerMotion()
				return nil
			case 'q', 'Q':
				s.ossignalChan <- os.Interrupt
				return nil
			case 'r', 'R':
				s.ossignalChan <- syscall.SIGHUP
				return nil
			}
		case tcell.KeyUp:
			row, col := s.logView.GetScrollOffset()
			s.logView.ScrollTo(row-1, col)
			return nil
		case tcell.KeyDown:
			row, col := s.logView.GetScrollOffset()
			s.logView.ScrollTo(row+1, col)
			return nil
		}
		return event
	})

	// --- Start TUI ---
	go func() {
		if err := s.tviewapp.SetRoot(layout, true).Run(); err != nil {
			slog.Error("Error running TUI", "error", err)
			s.ossignalChan <- os.Interrupt
		}
	}()
}

// renderStrip generates the two-line representation of the strip.
func renderStrip(leds []Led) (string, string) {
	var buf1, buf2 strings.Builder
	buf1.Grow(len(leds) * (len("[-][#000000]") + 4))
	buf2.Grow(len(leds) * (len("[-][#000000]") + 4))

	for _, v := range leds {
		if v.IsEmpty() {
			buf1.WriteString(" ")
			buf2.WriteString(" ")
			continue
		}
		colorStr := scaledColor(v)
		topChar, bottomChar := barChars(math.Max(v.Red, math.Max(v.Green, v.Blue)))
		buf1.WriteString(colorStr + topChar + "[-]")
		buf2.WriteString(colorStr + bottomChar + "[-]")
	}
	return buf1.String(), buf2.String()
}

// barChars maps a brightness in [0, 255] to a bar of up to two cells.
func barChars(value float64) (string, string) {
	steps := len(levelChars) - 1
	level := int(math.Round(value / 255 * float64(2*steps)))
	level = max(level, 1) // a lit cell is never blank
	level = min(level, 2*steps)
	if level <= steps {
		return " ", levelChars[level]
	}
	return levelChars[level-steps], levelChars[steps]
}

// scaledColor returns the hue of led at full brightness as a tview tag.
// Brightness is shown by the bar height instead.
func scaledColor(led Led) string {
	maxColor := math.Max(led.Red, math.Max(led.Green, led.Blue))
	if maxColor == 0 {
		return "[#000000]"
	}
	factor := 255 / maxColor
	red := math.Min(led.Red*factor, 255)
	green := math.Min(led.Green*factor, 255)
	blue := math.Min(led.Blue*factor, 255)

	const epsilon = 1e-9

	return fmt.Sprintf("[#%02x%02x%02x]", byte(math.Round(red+epsilon)), byte(math.Round(green+epsilon)), byte(math.Round(blue+epsilon)))
}
