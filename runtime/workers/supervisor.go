package workers

import (
	"chat-client/contract"
	"chat-client/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Supervisor Own a context and a Cancel function
// Run each worker in a goroutine
// Check panics and errors
// Restart workers following the retry policy
// Shutdown properly if parent context is canceled
// Wait for the end of all goroutines via WaitGroup
type Supervisor struct {
	Cancel  context.CancelFunc
	wg      *sync.WaitGroup
	log     *slog.Logger
	policy  RetryPolicy
	workers []contract.Worker
	errs    chan error
}

func NewSupervisor(log *slog.Logger, policy RetryPolicy) *Supervisor {
	return &Supervisor{
		wg:     &sync.WaitGroup{},
		log:    log,
		policy: policy,
		errs:   make(chan error, 8),
	}
}

// Run starts every added worker and blocks until all of them are done.
// If the parent cancels, we Cancel. If WE call s.Cancel(), only our children Cancel.
func (s *Supervisor) Run(ctx context.Context) {
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.Cancel = cancel
	defer s.Cancel()

	for _, worker := range s.workers {
		s.Start(supervisedCtx, worker)
	}
	s.wg.Wait()
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.workers = append(s.workers, worker...)
	return s
}

// Errors reports workers the supervisor gave up on.
func (s *Supervisor) Errors() <-chan error {
	return s.errs
}

// Start runs a worker under supervision.
// The worker is executed in a dedicated goroutine. If its Run method panics or
// fails, the supervisor waits for the next backoff delay and runs it again.
// A failure in one worker must not stop the supervisor itself.
// Once the policy runs out of retries the worker is abandoned and reported on Errors.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	workerName := contract.GetWorkerName(worker)
	retries := s.policy.NewBackOff()

	go func() {
		defer s.wg.Done()

		for {
			if ctx.Err() != nil {
				s.log.Info(fmt.Sprintf("Stopping : %s", workerName))
				return
			}

			startedAt := time.Now()
			err := func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
					}
				}()
				return worker.Run(ctx)
			}()

			if err == nil {
				// Terminated properly, never restart !
				s.log.Info(fmt.Sprintf("Worker finished : %s", workerName))
				return
			}

			if ctx.Err() != nil {
				s.log.Info("Worker stopped (context canceled)", "name", workerName)
				return
			}

			if s.policy.StableAfter > 0 && time.Since(startedAt) >= s.policy.StableAfter {
				retries.Reset()
			}

			delay := retries.NextBackOff()
			if delay == backoff.Stop {
				s.log.Error("Worker keeps failing, giving up", "name", workerName, "error", err)
				s.report(fmt.Errorf("%s: %w: %w", workerName, errors.ErrRetriesExhausted, err))
				return
			}

			s.log.Warn("Worker failed, restarting", "name", workerName, "error", err, "in", delay)
			select {
			case <-ctx.Done():
				// Context canceled: priority stop.
				return
			case <-time.After(delay):
			}
		}
	}()
}

// Stop Cancel all goroutines listening channel for Ctx.Done
// Supervisor will wait for all goroutines to finish
func (s *Supervisor) Stop() {
	if s.Cancel != nil {
		s.Cancel()
	}
}

func (s *Supervisor) report(err error) {
	select {
	case s.errs <- err:
	default:
		s.log.Warn("Supervisor error dropped", "error", err)
	}
}
