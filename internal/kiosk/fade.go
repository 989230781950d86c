package kiosk

import "fmt"

// FadeState is the opacity phase of the full-screen mode switch.
type FadeState int

const (
	Visible FadeState = iota
	FadingOut
	Hidden
	FadingIn
)

var fadeStateNames = [...]string{"visible", "fading-out", "hidden", "fading-in"}

func (f FadeState) String() string {
	if int(f) < 0 || int(f) >= len(fadeStateNames) {
		return fmt.Sprintf("FadeState(%d)", int(f))
	}
	return fadeStateNames[f]
}

func (f FadeState) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Next returns the state that follows f in the cycle
// visible -> fading-out -> hidden -> fading-in -> visible.
func (f FadeState) Next() FadeState {
	switch f {
	case Visible:
		return FadingOut
	case FadingOut:
		return Hidden
	case Hidden:
		return FadingIn
	default:
		return Visible
	}
}

// Opacity is the target opacity a renderer should animate towards.
func (f FadeState) Opacity() float64 {
	switch f {
	case Visible, FadingIn:
		return 1
	default:
		return 0
	}
}

// Mode is the full-screen content being shown.
type Mode string

const (
	ModeDashboard Mode = "dashboard"
	ModeLogo      Mode = "logo"
	ModeClock     Mode = "clock"
)

// ParseMode accepts the names of the known modes.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeDashboard, ModeLogo, ModeClock:
		return m, nil
	}
	return "", fmt.Errorf("unknown display mode %q", s)
}

// fadeMachine holds the current mode and fade state. Transitions only go
// through advance, so the state never skips a phase.
type fadeMachine struct {
	state FadeState
	mode  Mode
}

func newFadeMachine() fadeMachine {
	return fadeMachine{state: Visible, mode: ModeDashboard}
}

// advance moves to the next fade state. Entering Hidden swaps in target,
// the only point where the mode may change.
func (m *fadeMachine) advance(target Mode) FadeState {
	m.state = m.state.Next()
	if m.state == Hidden {
		m.mode = target
	}
	return m.state
}

// reset returns to a visible dashboard.
func (m *fadeMachine) reset() {
	m.state = Visible
	m.mode = ModeDashboard
}
