// Package scheduler runs the permutation compiles of one program concurrently.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.trai.ch/permc/internal/compiler/unified"
	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/permc/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=scheduler.go -destination=mocks/mock_scheduler.go -package=mocks

// ProgramSource hands out program trees. Every tree it returns is owned by the caller.
type ProgramSource interface {
	Checkout() (*unified.Tree, error)
}

// Compiler compiles one permutation of a checked out tree.
type Compiler interface {
	Compile(ctx context.Context, tree *unified.Tree, perm domain.Permutation) (*domain.PermutationResult, error)
}

// Scheduler manages the compiles of every permutation of a program.
type Scheduler struct {
	logger    ports.Logger
	telemetry ports.Telemetry
	tracer    ports.Tracer

	mu       sync.RWMutex
	status   map[int]domain.PermutationStatus
	observer ports.StatusObserver
}

// NewScheduler creates a new Scheduler.
func NewScheduler(
	logger ports.Logger,
	telemetry ports.Telemetry,
	tracer ports.Tracer,
) *Scheduler {
	return &Scheduler{
		logger:    logger,
		telemetry: telemetry,
		tracer:    tracer,
		status:    make(map[int]domain.PermutationStatus),
	}
}

// Observe registers o to receive every status transition of later runs.
func (s *Scheduler) Observe(o ports.StatusObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = o
}

// Status returns the current status of the permutation with the given id.
func (s *Scheduler) Status(id int) domain.PermutationStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status[id]
}

func (s *Scheduler) updateStatus(perm domain.Permutation, status domain.PermutationStatus) {
	s.mu.Lock()
	s.status[perm.ID] = status
	observer := s.observer
	s.mu.Unlock()

	if observer != nil {
		observer.OnStatus(perm.ID, perm.Label(), status)
	}
}

// Run compiles every permutation with compiler, checking a tree out of src for each, with at
// most parallelism compiles in flight. Results are returned in permutation order.
//
// A failed permutation does not stop the others; every failure is reported in the joined
// error. Resource exhaustion and cancellation of ctx abort the permutations still running.
// Whenever the returned error is non-nil the results are nil.
func (s *Scheduler) Run(
	ctx context.Context,
	compiler Compiler,
	src ProgramSource,
	perms []domain.Permutation,
	parallelism int,
) ([]*domain.PermutationResult, error) {
	if parallelism <= 0 {
		parallelism = 1
	}

	labels := make([]string, len(perms))
	for i, perm := range perms {
		labels[i] = perm.Label()
		s.updateStatus(perm, domain.PermutationStatusPending)
	}
	s.tracer.EmitPlan(ctx, labels)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	results := make([]*domain.PermutationResult, len(perms))
	var (
		mu   sync.Mutex
		errs error
	)
	for i, perm := range perms {
		g.Go(func() error {
			res, err := s.compile(gctx, compiler, src, perm)
			if err == nil {
				results[i] = res
				return nil
			}

			var exhausted *domain.ResourceExhaustedError
			if errors.As(err, &exhausted) {
				return err
			}
			if !errors.Is(err, domain.ErrCancelled) {
				err = zerr.With(zerr.Wrap(err, "permutation compile failed"), "permutation", perm.ID)
			}
			mu.Lock()
			errs = errors.Join(errs, err)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if errs != nil {
		return nil, errs
	}
	return results, nil
}

func (s *Scheduler) compile(
	ctx context.Context,
	compiler Compiler,
	src ProgramSource,
	perm domain.Permutation,
) (res *domain.PermutationResult, err error) {
	if err := ctx.Err(); err != nil {
		s.updateStatus(perm, domain.PermutationStatusCancelled)
		return nil, errors.Join(domain.ErrCancelled, err)
	}

	s.updateStatus(perm, domain.PermutationStatusRunning)
	ctx, vertex := s.telemetry.Record(ctx, fmt.Sprintf("permutation %d: %s", perm.ID, perm.Label()))
	defer func() {
		vertex.Complete(err)
		s.finish(perm, res, err)
	}()

	tree, err := src.Checkout()
	if err != nil {
		return nil, err
	}
	vertex.Log(domain.LogLevelDebug, fmt.Sprintf("checked out %d classes", len(tree.Source.Classes)))
	return compiler.Compile(ctx, tree, perm)
}

func (s *Scheduler) finish(perm domain.Permutation, res *domain.PermutationResult, err error) {
	switch {
	case err == nil:
		s.updateStatus(perm, domain.PermutationStatusCompleted)
		s.logger.Info(fmt.Sprintf("permutation %d (%s) compiled into %d fragments",
			perm.ID, perm.Label(), len(res.Fragments)))
	case errors.Is(err, domain.ErrCancelled):
		s.updateStatus(perm, domain.PermutationStatusCancelled)
		s.logger.Warn(fmt.Sprintf("permutation %d (%s) cancelled", perm.ID, perm.Label()))
	default:
		s.updateStatus(perm, domain.PermutationStatusFailed)
		s.logger.Warn(fmt.Sprintf("permutation %d (%s) failed", perm.ID, perm.Label()))
	}
}
