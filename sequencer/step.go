package sequencer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	NumPhrases  = 128
	NumRows     = 64
	NumChannels = 8

	// PageSize is one screen of steps; phrases grow and shrink a page at a time
	PageSize = 16
	MaxSteps = 64

	MaxPitch       = 127
	MaxVelocity    = 127
	MaxProbability = 100
	MaxDivisor     = 8
)

var (
	ErrOutOfRange       = errors.New("out of range")
	ErrInvalidLength    = errors.New("invalid phrase length")
	ErrInvalidStep      = errors.New("invalid step")
	ErrInvalidCondition = errors.New("invalid condition")
	ErrPlaying          = errors.New("playback is running")
)

// StepKind says whether a step plays a note
type StepKind uint8

const (
	StepRest StepKind = iota
	StepNote
)

func (k StepKind) String() string {
	if k == StepNote {
		return "note"
	}
	return "rest"
}

func (k StepKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *StepKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "rest":
		*k = StepRest
	case "note":
		*k = StepNote
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidStep, b)
	}
	return nil
}

// Condition fires a step on the K-th of every N attempts
type Condition struct {
	K uint8
	N uint8
}

// Always is the unconditional 1/1
var Always = Condition{K: 1, N: 1}

// ParseCondition parses "k/n" with 1 <= k <= n <= 8
func ParseCondition(s string) (Condition, error) {
	ks, ns, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Condition{}, fmt.Errorf("%w: %q", ErrInvalidCondition, s)
	}
	k, err1 := strconv.Atoi(ks)
	n, err2 := strconv.Atoi(ns)
	if err1 != nil || err2 != nil {
		return Condition{}, fmt.Errorf("%w: %q", ErrInvalidCondition, s)
	}
	if k < 1 || n > MaxDivisor || k > n {
		return Condition{}, fmt.Errorf("%w: %q", ErrInvalidCondition, s)
	}
	return Condition{K: uint8(k), N: uint8(n)}, nil
}

// Valid reports 1 <= K <= N <= 8
func (c Condition) Valid() bool {
	return c.K >= 1 && c.N <= MaxDivisor && c.K <= c.N
}

// IsAlways reports whether c is 1/1
func (c Condition) IsAlways() bool {
	return c == Always
}

func (c Condition) String() string {
	return fmt.Sprintf("%d/%d", c.K, c.N)
}

func (c Condition) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d/%d", ErrInvalidCondition, c.K, c.N)
	}
	return []byte(c.String()), nil
}

func (c *Condition) UnmarshalText(b []byte) error {
	parsed, err := ParseCondition(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

var conditions = func() []Condition {
	var all []Condition
	for n := uint8(1); n <= MaxDivisor; n++ {
		for k := uint8(1); k <= n; k++ {
			all = append(all, Condition{K: k, N: n})
		}
	}
	return all
}()

// Conditions lists every legal condition: 1/1, 1/2, 2/2, 1/3 ... 8/8
func Conditions() []Condition {
	out := make([]Condition, len(conditions))
	copy(out, conditions)
	return out
}

// CycleCondition steps through Conditions() by delta, wrapping
func CycleCondition(c Condition, delta int) Condition {
	idx := 0
	for i, cond := range conditions {
		if cond == c {
			idx = i
			break
		}
	}
	n := len(conditions)
	return conditions[((idx+delta)%n+n)%n]
}

// Step is one slot in a phrase. A rest keeps its velocity, probability
// and condition so they come back when a pitch is entered again.
type Step struct {
	Kind        StepKind  `json:"kind"`
	Pitch       uint8     `json:"pitch"`
	Velocity    uint8     `json:"velocity"`
	Probability uint8     `json:"probability"`
	Condition   Condition `json:"condition"`
}

// RestStep returns the default empty step
func RestStep() Step {
	return Step{
		Kind:        StepRest,
		Velocity:    100,
		Probability: MaxProbability,
		Condition:   Always,
	}
}

// NoteStep returns an unconditional note at full probability
func NoteStep(pitch, velocity uint8) Step {
	return Step{
		Kind:        StepNote,
		Pitch:       pitch,
		Velocity:    velocity,
		Probability: MaxProbability,
		Condition:   Always,
	}
}

// IsNote reports whether the step plays
func (s Step) IsNote() bool {
	return s.Kind == StepNote
}

// Validate checks every field is in range
func (s Step) Validate() error {
	switch {
	case s.Kind != StepRest && s.Kind != StepNote:
		return fmt.Errorf("%w: kind %d", ErrInvalidStep, s.Kind)
	case s.Pitch > MaxPitch:
		return fmt.Errorf("%w: pitch %d", ErrInvalidStep, s.Pitch)
	case s.Velocity > MaxVelocity:
		return fmt.Errorf("%w: velocity %d", ErrInvalidStep, s.Velocity)
	case s.Probability > MaxProbability:
		return fmt.Errorf("%w: probability %d", ErrInvalidStep, s.Probability)
	case !s.Condition.Valid():
		return fmt.Errorf("%w: %d/%d", ErrInvalidCondition, s.Condition.K, s.Condition.N)
	}
	return nil
}
