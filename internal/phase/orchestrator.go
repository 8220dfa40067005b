package phase

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/podcast-flow/internal/logger"
)

// Orchestrator sequences phases, skipping those whose artifacts already
// exist and aborting the chain on the first failure. Artifacts written by
// earlier phases are left intact either way.
type Orchestrator struct {
	phases []Phase
	logger logger.Logger
}

// Status pairs a phase name with its artifact-derived state.
type Status struct {
	Name  string
	State State
}

func NewOrchestrator(log logger.Logger, phases ...Phase) *Orchestrator {
	return &Orchestrator{
		phases: phases,
		logger: log,
	}
}

// RunAll executes the phases in order. A phase already completed according
// to its artifacts is skipped, which is what makes an interrupted run
// resumable by simply running again.
func (o *Orchestrator) RunAll(ctx context.Context) error {
	for _, ph := range o.phases {
		if ph.State() == StateCompleted {
			o.logger.Info(ctx, "Phase %s already completed, skipping", ph.Name())
			continue
		}

		o.logger.Info(ctx, "========================================")
		o.logger.Info(ctx, "Phase: %s", ph.Name())
		o.logger.Info(ctx, "========================================")

		if err := ph.Run(ctx); err != nil {
			return fmt.Errorf("%s phase: %w", ph.Name(), err)
		}
	}
	return nil
}

// RunOne executes a single phase by name, regardless of its current state.
// Rerunning a phase supersedes its previous artifacts.
func (o *Orchestrator) RunOne(ctx context.Context, name string) error {
	for _, ph := range o.phases {
		if ph.Name() != name {
			continue
		}
		if err := ph.Run(ctx); err != nil {
			return fmt.Errorf("%s phase: %w", name, err)
		}
		return nil
	}
	return fmt.Errorf("unknown phase: %s", name)
}

// StatusAll reports the derived state of every phase in order.
func (o *Orchestrator) StatusAll() []Status {
	statuses := make([]Status, 0, len(o.phases))
	for _, ph := range o.phases {
		statuses = append(statuses, Status{Name: ph.Name(), State: ph.State()})
	}
	return statuses
}
