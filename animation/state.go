package animation

import "fmt"

// State is the lifecycle of the animation. It is one of Idle, Growing
// or Shrinking; the sweep position travels with the variant so that
// state and position can never disagree.
type State interface {
	fmt.Stringer
	isState()
}

// Idle: every cell is off and no timer is running.
type Idle struct{}

// Growing sweeps upwards. Position == number of LEDs means the tree is
// fully lit ("active") and sparkles until the motion timeout expires.
type Growing struct {
	Position int
}

// Shrinking sweeps downwards and may be resumed by motion.
type Shrinking struct {
	Position int
}

func (Idle) isState()      {}
func (Growing) isState()   {}
func (Shrinking) isState() {}

func (Idle) String() string        { return "idle" }
func (s Growing) String() string   { return fmt.Sprintf("growing(%d)", s.Position) }
func (s Shrinking) String() string { return fmt.Sprintf("shrinking(%d)", s.Position) }

// positionOf returns the sweep position carried by s, 0 for Idle.
func positionOf(s State) int {
	switch st := s.(type) {
	case Growing:
		return st.Position
	case Shrinking:
		return st.Position
	default:
		return 0
	}
}
