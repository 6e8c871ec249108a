package sequencer

import (
	"math/rand"
	"testing"
)

func conditional(k, n uint8) Step {
	s := NoteStep(60, 100)
	s.Condition = Condition{K: k, N: n}
	return s
}

func fires(e *Evaluator, step Step, key CounterKey, attempts int) []int {
	var out []int
	for i := 1; i <= attempts; i++ {
		if e.ShouldTrigger(step, key) {
			out = append(out, i)
		}
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestConditionFiringPattern(t *testing.T) {
	tests := []struct {
		k, n uint8
		want []int
	}{
		{1, 1, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}},
		{1, 2, []int{1, 3, 5, 7, 9, 11}},
		{2, 2, []int{2, 4, 6, 8, 10, 12}},
		{1, 4, []int{1, 5, 9}},
		{2, 4, []int{2, 6, 10}},
		{4, 4, []int{4, 8, 12}},
		{3, 8, []int{3, 11}},
	}
	for _, tt := range tests {
		step := conditional(tt.k, tt.n)
		t.Run(step.Condition.String(), func(t *testing.T) {
			e := seededEvaluator()
			key := CounterKey{Row: 0, Channel: 0, Step: 0, Phrase: 0, Condition: step.Condition}
			if got := fires(e, step, key, 12); !equalInts(got, tt.want) {
				t.Errorf("fired on %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCounterRotatesWithinCycle(t *testing.T) {
	e := seededEvaluator()
	step := conditional(2, 3)
	key := CounterKey{Condition: step.Condition}
	for i := 0; i < 10; i++ {
		e.ShouldTrigger(step, key)
		if c := e.Counter(key); c < 0 || c >= 3 {
			t.Fatalf("counter = %d, want in [0,3)", c)
		}
	}
}

func TestProbabilityBounds(t *testing.T) {
	e := seededEvaluator()
	always := NoteStep(60, 100)
	never := NoteStep(60, 100)
	never.Probability = 0

	for i := 0; i < 1000; i++ {
		if !e.ShouldTrigger(always, CounterKey{}) {
			t.Fatal("probability 100 must always fire")
		}
		if e.ShouldTrigger(never, CounterKey{Step: 1}) {
			t.Fatal("probability 0 must never fire")
		}
	}
}

func TestProbabilityRoughlyHonoured(t *testing.T) {
	e := NewEvaluator(rand.NewSource(42))
	step := NoteStep(60, 100)
	step.Probability = 30

	n := 0
	for i := 0; i < 10000; i++ {
		if e.ShouldTrigger(step, CounterKey{}) {
			n++
		}
	}
	if n < 2500 || n > 3500 {
		t.Errorf("fired %d/10000 at 30%%", n)
	}
}

func TestFailedRollLeavesCounter(t *testing.T) {
	// Intn(100) == 99 with this source, so 50% always fails
	e := NewEvaluator(fixedSource{v: 99 << 32})
	step := conditional(1, 2)
	step.Probability = 50
	key := CounterKey{Condition: step.Condition}

	for i := 0; i < 5; i++ {
		if e.ShouldTrigger(step, key) {
			t.Fatal("roll of 99 should fail at 50%")
		}
	}
	if c := e.Counter(key); c != 0 {
		t.Errorf("counter = %d after failed rolls, want 0", c)
	}
}

func TestRestNeverFires(t *testing.T) {
	e := seededEvaluator()
	if e.ShouldTrigger(RestStep(), CounterKey{}) {
		t.Error("rest fired")
	}
}

func TestCounterKeysIndependent(t *testing.T) {
	e := seededEvaluator()
	step := conditional(1, 2)
	a := CounterKey{Row: 0, Channel: 0, Step: 4, Phrase: 1, Condition: step.Condition}
	b := a
	b.Channel = 1
	c := a
	c.Phrase = 2

	// Advance a twice; b and c still start from the first attempt
	e.ShouldTrigger(step, a)
	e.ShouldTrigger(step, a)
	if !e.ShouldTrigger(step, b) {
		t.Error("other channel inherited a's count")
	}
	if !e.ShouldTrigger(step, c) {
		t.Error("other phrase inherited a's count")
	}
}

func TestResetCounters(t *testing.T) {
	e := seededEvaluator()
	step := conditional(2, 2)
	key := CounterKey{Condition: step.Condition}
	e.ShouldTrigger(step, key)
	e.ResetCounters()
	if e.ShouldTrigger(step, key) {
		t.Error("after reset the first attempt of 2/2 should not fire")
	}
}
