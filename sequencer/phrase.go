package sequencer

import (
	"fmt"
	"sync"
)

// ValidLengths are the phrase lengths, one to four pages
var ValidLengths = []int{16, 32, 48, 64}

// ValidLength reports whether n is one of ValidLengths
func ValidLength(n int) bool {
	for _, l := range ValidLengths {
		if n == l {
			return true
		}
	}
	return false
}

// Phrase is a copy of a bank entry
type Phrase struct {
	ID    int
	Steps []Step
}

// Length returns the number of steps
func (p Phrase) Length() int {
	return len(p.Steps)
}

// HasNotes reports whether any step plays
func (p Phrase) HasNotes() bool {
	for _, s := range p.Steps {
		if s.IsNote() {
			return true
		}
	}
	return false
}

func defaultSteps() []Step {
	steps := make([]Step, PageSize)
	for i := range steps {
		steps[i] = RestStep()
	}
	return steps
}

// Bank holds all NumPhrases phrases. Entries are never created or
// destroyed, only edited; every method is safe to call while the
// scheduler is reading.
type Bank struct {
	mu      sync.RWMutex
	phrases [NumPhrases][]Step
}

// NewBank creates a bank of empty 16-step phrases
func NewBank() *Bank {
	b := &Bank{}
	for i := range b.phrases {
		b.phrases[i] = defaultSteps()
	}
	return b
}

func checkPhraseID(id int) error {
	if id < 0 || id >= NumPhrases {
		return fmt.Errorf("phrase %d: %w", id, ErrOutOfRange)
	}
	return nil
}

// Get returns a copy of phrase id. Invalid ids return an empty phrase.
func (b *Bank) Get(id int) Phrase {
	if checkPhraseID(id) != nil {
		return Phrase{ID: id}
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	steps := make([]Step, len(b.phrases[id]))
	copy(steps, b.phrases[id])
	return Phrase{ID: id, Steps: steps}
}

// Length returns the current length of phrase id (0 for invalid ids)
func (b *Bank) Length(id int) int {
	if checkPhraseID(id) != nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.phrases[id])
}

// StepAt returns the step under cursor and the phrase length, clamping
// the cursor with cursor mod length. The phrase may have shrunk since the
// cursor last moved.
func (b *Bank) StepAt(id, cursor int) (Step, int) {
	if checkPhraseID(id) != nil {
		return RestStep(), PageSize
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	steps := b.phrases[id]
	n := len(steps)
	idx := cursor % n
	if idx < 0 {
		idx += n
	}
	return steps[idx], n
}

// Resize changes the length of phrase id. Growing tiles the first page
// into the new pages; shrinking drops the tail for good.
func (b *Bank) Resize(id, newLength int) error {
	if err := checkPhraseID(id); err != nil {
		return err
	}
	if !ValidLength(newLength) {
		return fmt.Errorf("%w: %d", ErrInvalidLength, newLength)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	old := b.phrases[id]
	if newLength == len(old) {
		return nil
	}

	steps := make([]Step, newLength)
	if newLength < len(old) {
		copy(steps, old[:newLength])
	} else {
		copy(steps, old)
		for i := len(old); i < newLength; i++ {
			steps[i] = old[i%PageSize]
		}
	}
	// Swap rather than mutate so readers holding the old slice stay consistent
	b.phrases[id] = steps
	return nil
}

func (b *Bank) checkIndex(id, index int) error {
	if err := checkPhraseID(id); err != nil {
		return err
	}
	if index < 0 || index >= len(b.phrases[id]) {
		return fmt.Errorf("phrase %d step %d: %w", id, index, ErrOutOfRange)
	}
	return nil
}

// SetStep replaces one step after validating it
func (b *Bank) SetStep(id, index int, s Step) error {
	if err := s.Validate(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkIndex(id, index); err != nil {
		return err
	}
	b.phrases[id][index] = s
	return nil
}

// UpdateStep edits a step in place. The edit is discarded if the result
// doesn't validate.
func (b *Bank) UpdateStep(id, index int, fn func(*Step)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkIndex(id, index); err != nil {
		return err
	}
	s := b.phrases[id][index]
	fn(&s)
	if err := s.Validate(); err != nil {
		return err
	}
	b.phrases[id][index] = s
	return nil
}

// Replace overwrites a whole phrase (used by project loading)
func (b *Bank) Replace(id int, steps []Step) error {
	if err := checkPhraseID(id); err != nil {
		return err
	}
	if !ValidLength(len(steps)) {
		return fmt.Errorf("phrase %d: %w: %d", id, ErrInvalidLength, len(steps))
	}
	for i, s := range steps {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("phrase %d step %d: %w", id, i, err)
		}
	}
	cp := make([]Step, len(steps))
	copy(cp, steps)

	b.mu.Lock()
	b.phrases[id] = cp
	b.mu.Unlock()
	return nil
}

// Clear resets phrase id to 16 rests
func (b *Bank) Clear(id int) error {
	if err := checkPhraseID(id); err != nil {
		return err
	}
	b.mu.Lock()
	b.phrases[id] = defaultSteps()
	b.mu.Unlock()
	return nil
}

// HasNotes reports whether phrase id has any note steps
func (b *Bank) HasNotes(id int) bool {
	if checkPhraseID(id) != nil {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.phrases[id] {
		if s.IsNote() {
			return true
		}
	}
	return false
}
