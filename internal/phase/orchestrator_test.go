package phase

import (
	"context"
	"errors"
	"testing"

	"github.com/nguyentantai21042004/podcast-flow/internal/logger"
)

type stubPhase struct {
	name   string
	state  State
	runErr error
	runs   int
}

func (s *stubPhase) Name() string { return s.name }
func (s *stubPhase) State() State { return s.state }
func (s *stubPhase) Run(_ context.Context) error {
	s.runs++
	if s.runErr != nil {
		return s.runErr
	}
	s.state = StateCompleted
	return nil
}

func TestRunAllExecutesInOrder(t *testing.T) {
	a := &stubPhase{name: "input"}
	b := &stubPhase{name: "split"}
	c := &stubPhase{name: "script"}

	o := NewOrchestrator(logger.New("error"), a, b, c)
	if err := o.RunAll(context.Background()); err != nil {
		t.Fatalf("RunAll() error = %v", err)
	}

	for _, ph := range []*stubPhase{a, b, c} {
		if ph.runs != 1 {
			t.Errorf("phase %s ran %d times, want 1", ph.name, ph.runs)
		}
	}
}

func TestRunAllSkipsCompleted(t *testing.T) {
	a := &stubPhase{name: "input", state: StateCompleted}
	b := &stubPhase{name: "split"}

	o := NewOrchestrator(logger.New("error"), a, b)
	if err := o.RunAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	if a.runs != 0 {
		t.Errorf("completed phase reran %d times", a.runs)
	}
	if b.runs != 1 {
		t.Errorf("pending phase ran %d times, want 1", b.runs)
	}
}

func TestRunAllAbortsChainOnFailure(t *testing.T) {
	a := &stubPhase{name: "input"}
	b := &stubPhase{name: "split", runErr: errors.New("boom")}
	c := &stubPhase{name: "script"}

	o := NewOrchestrator(logger.New("error"), a, b, c)
	err := o.RunAll(context.Background())
	if err == nil {
		t.Fatal("RunAll() expected error")
	}
	if c.runs != 0 {
		t.Errorf("phase after failure ran %d times, want 0", c.runs)
	}
	// Earlier artifacts stay: the first phase completed and is not undone.
	if a.state != StateCompleted {
		t.Errorf("first phase state = %v, want completed", a.state)
	}
}

func TestRunOne(t *testing.T) {
	a := &stubPhase{name: "input", state: StateCompleted}

	o := NewOrchestrator(logger.New("error"), a)

	// RunOne reruns even a completed phase.
	if err := o.RunOne(context.Background(), "input"); err != nil {
		t.Fatalf("RunOne() error = %v", err)
	}
	if a.runs != 1 {
		t.Errorf("phase ran %d times, want 1", a.runs)
	}

	if err := o.RunOne(context.Background(), "nope"); err == nil {
		t.Error("RunOne() expected error for unknown phase")
	}
}

func TestStatusAll(t *testing.T) {
	a := &stubPhase{name: "input", state: StateCompleted}
	b := &stubPhase{name: "split"}

	o := NewOrchestrator(logger.New("error"), a, b)
	statuses := o.StatusAll()

	if len(statuses) != 2 {
		t.Fatalf("len(statuses) = %d, want 2", len(statuses))
	}
	if statuses[0].Name != "input" || statuses[0].State != StateCompleted {
		t.Errorf("statuses[0] = %+v", statuses[0])
	}
	if statuses[1].Name != "split" || statuses[1].State != StateNotStarted {
		t.Errorf("statuses[1] = %+v", statuses[1])
	}
}
