package sequencer

import (
	"errors"
	"testing"
)

func TestNewBankDefaults(t *testing.T) {
	b := NewBank()
	for _, id := range []int{0, 64, NumPhrases - 1} {
		p := b.Get(id)
		if p.Length() != PageSize {
			t.Errorf("phrase %d length = %d, want %d", id, p.Length(), PageSize)
		}
		if p.Steps[0] != RestStep() {
			t.Errorf("phrase %d step 0 = %+v, want default rest", id, p.Steps[0])
		}
	}
}

func TestGetReturnsCopy(t *testing.T) {
	b := NewBank()
	p := b.Get(3)
	p.Steps[0] = NoteStep(60, 100)
	if b.HasNotes(3) {
		t.Error("editing a Get copy changed the bank")
	}
}

func TestResizeGrowTilesFirstPage(t *testing.T) {
	b := NewBank()
	for i := 0; i < PageSize; i++ {
		if err := b.SetStep(0, i, NoteStep(uint8(40+i), 100)); err != nil {
			t.Fatal(err)
		}
	}

	if err := b.Resize(0, 48); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	p := b.Get(0)
	if p.Length() != 48 {
		t.Fatalf("length = %d, want 48", p.Length())
	}
	for i, s := range p.Steps {
		if want := uint8(40 + i%PageSize); s.Pitch != want {
			t.Fatalf("step %d pitch = %d, want %d", i, s.Pitch, want)
		}
	}
}

func TestResizeGrowFrom32TilesOnlyFirstPage(t *testing.T) {
	b := NewBank()
	if err := b.Resize(0, 32); err != nil {
		t.Fatal(err)
	}
	b.SetStep(0, 0, NoteStep(60, 100))
	b.SetStep(0, 16, NoteStep(72, 100))

	if err := b.Resize(0, 64); err != nil {
		t.Fatal(err)
	}
	p := b.Get(0)
	if p.Steps[16].Pitch != 72 {
		t.Errorf("existing step 16 overwritten: %+v", p.Steps[16])
	}
	if p.Steps[32].Pitch != 60 || p.Steps[48].Pitch != 60 {
		t.Errorf("new pages should tile page one: 32=%+v 48=%+v", p.Steps[32], p.Steps[48])
	}
}

func TestResizeShrinkTruncates(t *testing.T) {
	b := NewBank()
	b.Resize(0, 32)
	b.SetStep(0, 20, NoteStep(60, 100))

	if err := b.Resize(0, 16); err != nil {
		t.Fatal(err)
	}
	if b.HasNotes(0) {
		t.Fatal("truncated step survived")
	}
	// Growing again must not bring it back
	b.Resize(0, 32)
	if b.HasNotes(0) {
		t.Error("truncated step reappeared after growing")
	}
}

func TestResizeInvalid(t *testing.T) {
	b := NewBank()
	b.SetStep(5, 0, NoteStep(60, 100))
	for _, n := range []int{0, 8, 17, 80, -16} {
		if err := b.Resize(5, n); !errors.Is(err, ErrInvalidLength) {
			t.Errorf("Resize(5, %d) = %v, want ErrInvalidLength", n, err)
		}
	}
	if b.Length(5) != PageSize || !b.HasNotes(5) {
		t.Error("invalid resize changed the phrase")
	}
	if err := b.Resize(NumPhrases, 32); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Resize(bad id) = %v, want ErrOutOfRange", err)
	}
}

func TestStepAtClampsStaleCursor(t *testing.T) {
	b := NewBank()
	b.Resize(0, 64)
	b.SetStep(0, 5, NoteStep(61, 100))
	b.Resize(0, 16)

	s, n := b.StepAt(0, 37) // cursor from before the shrink
	if n != 16 {
		t.Fatalf("length = %d, want 16", n)
	}
	if !s.IsNote() || s.Pitch != 61 {
		t.Errorf("StepAt(0, 37) = %+v, want step 5", s)
	}
}

func TestSetStepRejectsInvalid(t *testing.T) {
	b := NewBank()
	bad := NoteStep(60, 100)
	bad.Condition = Condition{K: 0, N: 4}
	if err := b.SetStep(0, 0, bad); !errors.Is(err, ErrInvalidCondition) {
		t.Errorf("SetStep = %v, want ErrInvalidCondition", err)
	}
	if err := b.SetStep(0, PageSize, NoteStep(60, 100)); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("SetStep past end = %v, want ErrOutOfRange", err)
	}
	if b.HasNotes(0) {
		t.Error("rejected write landed")
	}
}

func TestUpdateStepDiscardsInvalidEdit(t *testing.T) {
	b := NewBank()
	b.SetStep(0, 0, NoteStep(60, 100))

	err := b.UpdateStep(0, 0, func(s *Step) {
		s.Pitch = 62
		s.Probability = 150
	})
	if !errors.Is(err, ErrInvalidStep) {
		t.Fatalf("UpdateStep = %v, want ErrInvalidStep", err)
	}
	if got := b.Get(0).Steps[0].Pitch; got != 60 {
		t.Errorf("pitch = %d, edit should have been discarded", got)
	}

	if err := b.UpdateStep(0, 0, func(s *Step) { s.Kind = StepRest }); err != nil {
		t.Fatal(err)
	}
	s := b.Get(0).Steps[0]
	if s.IsNote() || s.Velocity != 100 {
		t.Errorf("rest should keep its velocity: %+v", s)
	}
}

func TestReplaceAndClear(t *testing.T) {
	b := NewBank()
	steps := make([]Step, 32)
	for i := range steps {
		steps[i] = NoteStep(50, 90)
	}
	if err := b.Replace(9, steps); err != nil {
		t.Fatal(err)
	}
	steps[0] = RestStep()
	if !b.Get(9).Steps[0].IsNote() {
		t.Error("Replace kept a reference to the caller's slice")
	}
	if err := b.Replace(9, steps[:20]); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("Replace(20 steps) = %v, want ErrInvalidLength", err)
	}

	b.Clear(9)
	if b.Length(9) != PageSize || b.HasNotes(9) {
		t.Error("Clear did not reset the phrase")
	}
}
