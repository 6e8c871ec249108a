package sequencer

import (
	"math/rand"
	"sync"
	"time"
)

// CounterKey identifies one conditional step position. The condition is
// part of the key so editing a step's condition starts a fresh count, and
// the phrase id keeps a reassigned cell from inheriting the old count.
type CounterKey struct {
	Row       int
	Channel   int
	Step      int
	Phrase    int
	Condition Condition
}

// Evaluator decides whether a note step fires: a probability roll
// first, then the rotating k/n condition counter.
type Evaluator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	counters map[CounterKey]uint8
}

// NewEvaluator creates an evaluator drawing from src (time-seeded if nil)
func NewEvaluator(src rand.Source) *Evaluator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Evaluator{
		rng:      rand.New(src),
		counters: make(map[CounterKey]uint8),
	}
}

// ShouldTrigger rolls probability and advances the condition counter.
// The counter only moves when the probability roll passes.
func (e *Evaluator) ShouldTrigger(step Step, key CounterKey) bool {
	if !step.IsNote() {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rng.Intn(100) >= int(step.Probability) {
		return false
	}

	c := step.Condition
	if c.IsAlways() {
		return true
	}
	if !c.Valid() {
		return false
	}

	// 1-based position within the cycle of N
	pos := int(e.counters[key]) + 1
	e.counters[key] = uint8(pos % int(c.N))
	return pos == int(c.K)
}

// ResetCounters forgets all condition state
func (e *Evaluator) ResetCounters() {
	e.mu.Lock()
	e.counters = make(map[CounterKey]uint8)
	e.mu.Unlock()
}

// Counter returns the stored rotating count for key, in [0, N)
func (e *Evaluator) Counter(key CounterKey) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return int(e.counters[key])
}
