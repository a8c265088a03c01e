package behavior

import (
	"errors"
	"testing"
)

func counter(status Status, hits *int) *Action {
	return NewAction("count", func() Status {
		*hits++
		return status
	})
}

// TestSequenceShortCircuit verifies a failing child stops later side effects.
func TestSequenceShortCircuit(t *testing.T) {
	var c3 int
	seq := NewSequence(
		Always(Success),
		Always(Failure),
		counter(Success, &c3),
	)

	if got := seq.Evaluate(); got != Failure {
		t.Errorf("Evaluate() = %v, want %v", got, Failure)
	}
	if c3 != 0 {
		t.Errorf("third child ran %d times, want 0", c3)
	}
}

// TestFallbackShortCircuit verifies the first success stops later side effects.
func TestFallbackShortCircuit(t *testing.T) {
	var c2, c3 int
	fb := NewFallback(
		Always(Failure),
		counter(Success, &c2),
		counter(Success, &c3),
	)

	if got := fb.Evaluate(); got != Success {
		t.Errorf("Evaluate() = %v, want %v", got, Success)
	}
	if c2 != 1 {
		t.Errorf("second child ran %d times, want 1", c2)
	}
	if c3 != 0 {
		t.Errorf("third child ran %d times, want 0", c3)
	}
}

func TestCompositeResults(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want Status
	}{
		{"sequence all success", NewSequence(Always(Success), Always(Success)), Success},
		{"sequence with failure", NewSequence(Always(Success), Always(Failure)), Failure},
		{"sequence empty", NewSequence(), Success},
		{"sequence running", NewSequence(Always(Success), Always(Running), Always(Failure)), Running},
		{"fallback all failure", NewFallback(Always(Failure), Always(Failure)), Failure},
		{"fallback empty", NewFallback(), Failure},
		{"fallback running", NewFallback(Always(Failure), Always(Running), Always(Success)), Running},
		{"nested", NewFallback(NewSequence(Always(Success), Always(Failure)), Always(Success)), Success},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.Evaluate(); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConditionHasNoSideEffects(t *testing.T) {
	state := 3
	cond := NewCondition("positive", func() bool { return state > 0 })

	for i := 0; i < 5; i++ {
		if got := cond.Evaluate(); got != Success {
			t.Fatalf("Evaluate() = %v, want %v", got, Success)
		}
	}
	if state != 3 {
		t.Errorf("state = %d after repeated evaluation, want 3", state)
	}

	state = 0
	if got := cond.Evaluate(); got != Failure {
		t.Errorf("Evaluate() = %v, want %v", got, Failure)
	}
}

func TestAddChaining(t *testing.T) {
	var hits int
	seq := NewSequence().Add(Always(Success)).Add(counter(Success, &hits))
	fb := NewFallback().Add(Always(Failure)).Add(seq)

	if got := fb.Evaluate(); got != Success {
		t.Errorf("Evaluate() = %v, want %v", got, Success)
	}
	if hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}
	if got := Count(fb); got != 5 {
		t.Errorf("Count() = %d, want 5", got)
	}
}

func TestValidate(t *testing.T) {
	leaf := NewCondition("leaf", func() bool { return true })

	if err := Validate(NewSequence(leaf, Always(Success), Always(Success))); err != nil {
		t.Errorf("Validate(tree) = %v, want nil", err)
	}

	shared := NewFallback(NewSequence(leaf), NewSequence(leaf))
	if err := Validate(shared); !errors.Is(err, ErrSharedNode) {
		t.Errorf("Validate(shared leaf) = %v, want %v", err, ErrSharedNode)
	}

	cyclic := NewSequence()
	cyclic.Add(NewFallback(cyclic))
	if err := Validate(cyclic); !errors.Is(err, ErrSharedNode) {
		t.Errorf("Validate(cycle) = %v, want %v", err, ErrSharedNode)
	}

	if err := Validate(NewSequence(nil)); !errors.Is(err, ErrNilNode) {
		t.Errorf("Validate(nil child) = %v, want %v", err, ErrNilNode)
	}
}

func TestStatusString(t *testing.T) {
	if Success.String() != "success" || Failure.String() != "failure" || Running.String() != "running" {
		t.Errorf("unexpected status names: %v %v %v", Success, Failure, Running)
	}
}
