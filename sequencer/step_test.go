package sequencer

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseCondition(t *testing.T) {
	tests := []struct {
		in      string
		want    Condition
		wantErr bool
	}{
		{"1/1", Always, false},
		{"2/4", Condition{2, 4}, false},
		{" 8/8 ", Condition{8, 8}, false},
		{"0/4", Condition{}, true},
		{"5/4", Condition{}, true},
		{"1/9", Condition{}, true},
		{"257/1", Condition{}, true},
		{"-1/2", Condition{}, true},
		{"x", Condition{}, true},
		{"1/", Condition{}, true},
		{"", Condition{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCondition(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCondition) {
					t.Fatalf("ParseCondition(%q) err = %v, want ErrInvalidCondition", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCondition(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseCondition(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestConditionsListsEveryLegalValue(t *testing.T) {
	all := Conditions()
	if len(all) != 36 {
		t.Fatalf("len(Conditions()) = %d, want 36", len(all))
	}
	if all[0] != Always || all[len(all)-1] != (Condition{8, 8}) {
		t.Errorf("first/last = %v/%v", all[0], all[len(all)-1])
	}
	for _, c := range all {
		parsed, err := ParseCondition(c.String())
		if err != nil || parsed != c {
			t.Errorf("round trip %v: got %v, %v", c, parsed, err)
		}
	}
}

func TestCycleConditionWraps(t *testing.T) {
	if got := CycleCondition(Always, -1); got != (Condition{8, 8}) {
		t.Errorf("CycleCondition(1/1, -1) = %v, want 8/8", got)
	}
	if got := CycleCondition(Condition{8, 8}, 1); got != Always {
		t.Errorf("CycleCondition(8/8, 1) = %v, want 1/1", got)
	}
	if got := CycleCondition(Always, 2); got != (Condition{2, 2}) {
		t.Errorf("CycleCondition(1/1, 2) = %v, want 2/2", got)
	}
}

func TestStepValidate(t *testing.T) {
	tests := []struct {
		name string
		step Step
		want error
	}{
		{"default rest", RestStep(), nil},
		{"note", NoteStep(60, 100), nil},
		{"pitch", Step{Kind: StepNote, Pitch: 128, Probability: 100, Condition: Always}, ErrInvalidStep},
		{"velocity", Step{Kind: StepNote, Velocity: 200, Probability: 100, Condition: Always}, ErrInvalidStep},
		{"probability", Step{Kind: StepNote, Probability: 101, Condition: Always}, ErrInvalidStep},
		{"condition", Step{Kind: StepNote, Probability: 100, Condition: Condition{3, 2}}, ErrInvalidCondition},
		{"zero condition", Step{Kind: StepRest}, ErrInvalidCondition},
		{"kind", Step{Kind: 7, Condition: Always}, ErrInvalidStep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.step.Validate()
			if tt.want == nil && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStepJSONRejectsBadCondition(t *testing.T) {
	var s Step
	err := json.Unmarshal([]byte(`{"kind":"note","pitch":60,"velocity":100,"probability":100,"condition":"5/4"}`), &s)
	if !errors.Is(err, ErrInvalidCondition) {
		t.Fatalf("Unmarshal err = %v, want ErrInvalidCondition", err)
	}

	err = json.Unmarshal([]byte(`{"kind":"note","pitch":60,"velocity":100,"probability":50,"condition":"3/8"}`), &s)
	if err != nil {
		t.Fatal(err)
	}
	if !s.IsNote() || s.Probability != 50 || s.Condition != (Condition{3, 8}) {
		t.Errorf("decoded %+v", s)
	}
}
