package driver

import (
	"errors"
	"fmt"

	"github.com/phil-mansfield/gotraj/particle"
)

// NoEdge is reported in place of both child edges when a particle
// terminates. It is distinct from every real edge tag, which are
// non-negative.
const NoEdge = -999

// ErrStepLimit is returned by SimulateToEnd when a particle exceeds the step
// limit set with SetStepLimit.
var ErrStepLimit = errors.New("step limit exceeded")

// Stepper performs the physics of a single step on particle i. Intersect
// and Scatter may append secondaries to the Store.
type Stepper interface {
	// Prepare selects the next event of particle i.
	Prepare(i int)
	Intersect(i int)
	Scatter(i int)
}

// Store is the view of the particle ensemble needed by Trajectories. Indices
// are stable and the ensemble only grows while a Trajectories method runs.
type Store interface {
	TotalCount() int
	Active(i int) bool
	Get(i int) particle.Particle
	PrimaryTag(i int) uint32
	EdgeTag(i int) int
	// NextScatter and Terminated classify the event chosen by
	// Stepper.Prepare.
	NextScatter(i int) bool
	Terminated(i int) bool
}

// DepositFunc is called by DoIteration for every scattering event which
// changed a particle's energy.
type DepositFunc func(before, after particle.Particle, tag uint32) error

// TrajectoryFunc is called by SimulateToEnd for every scattering event and
// every termination. For terminations, both child edges are NoEdge.
// Otherwise childPrimary is the edge the scattered particle continues on and
// childSecondary is the edge of the secondary created by the event, or
// childPrimary if there is none.
type TrajectoryFunc func(
	before, after particle.Particle, tag uint32,
	parentEdge, childPrimary, childSecondary int,
) error

// Trajectories reports the events of the Stepper it wraps.
//
// Report functions are called synchronously, in increasing particle index
// order and in chronological order for each particle. They must not modify
// the Store. An error returned by a report function stops the driver
// immediately and is returned unchanged.
type Trajectories struct {
	stepper  Stepper
	store    Store
	maxSteps int
}

// NewTrajectories creates a Trajectories driver which steps particles in
// store using stepper.
func NewTrajectories(stepper Stepper, store Store) *Trajectories {
	return &Trajectories{stepper: stepper, store: store}
}

// SetStepLimit bounds the number of steps SimulateToEnd performs on a single
// particle. n <= 0 removes the limit, which is the default.
func (t *Trajectories) SetStepLimit(n int) { t.maxSteps = n }

// step is the state of one particle around a single step.
type step struct {
	before, after       particle.Particle
	scatter, terminated bool
	parentEdge          int
	countBefore         int
}

func (t *Trajectories) step(i int) step {
	t.stepper.Prepare(i)

	s := step{
		scatter:     t.store.NextScatter(i),
		terminated:  t.store.Terminated(i),
		before:      t.store.Get(i),
		parentEdge:  t.store.EdgeTag(i),
		countBefore: t.store.TotalCount(),
	}

	t.stepper.Intersect(i)
	t.stepper.Scatter(i)

	s.after = t.store.Get(i)
	return s
}

// DoIteration performs a single step on every active particle. Particles
// created during the call are not stepped until the next call. report is
// called for scattering events that changed the particle's energy;
// terminations are not reported.
func (t *Trajectories) DoIteration(report DepositFunc) error {
	n := t.store.TotalCount()
	for i := 0; i < n; i++ {
		if !t.store.Active(i) {
			continue
		}

		s := t.step(i)
		if s.scatter && s.before.KinEnergy != s.after.KinEnergy {
			err := report(s.before, s.after, t.store.PrimaryTag(i))
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// SimulateToEnd steps every particle present at the start of the call until
// it is no longer active. Secondaries created during the call are not
// simulated: they only appear through the childSecondary edges of the
// events which created them.
func (t *Trajectories) SimulateToEnd(report TrajectoryFunc) error {
	n := t.store.TotalCount()
	for i := 0; i < n; i++ {
		for steps := 0; t.store.Active(i); steps++ {
			if t.maxSteps > 0 && steps >= t.maxSteps {
				return fmt.Errorf(
					"particle %d took more than %d steps: %w",
					i, t.maxSteps, ErrStepLimit,
				)
			}

			s := t.step(i)

			childPrimary := t.store.EdgeTag(i)
			childSecondary := childPrimary
			if countAfter := t.store.TotalCount(); countAfter != s.countBefore {
				childSecondary = t.store.EdgeTag(countAfter - 1)
			}

			var err error
			if s.scatter {
				err = report(s.before, s.after, t.store.PrimaryTag(i),
					s.parentEdge, childPrimary, childSecondary)
			} else if s.terminated {
				err = report(s.before, s.after, t.store.PrimaryTag(i),
					s.parentEdge, NoEdge, NoEdge)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}
