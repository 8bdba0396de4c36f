package workers

import (
	"chat-client/errors"
	"chat-client/mocks"
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func fastPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     20 * time.Millisecond,
		Multiplier:      2,
		MaxRetries:      maxRetries,
	}
}

func TestSupervisor_RestartOnPanic(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	workerMock := mocks.NewMockWorker(ctrl)

	var calls atomic.Int32
	workerMock.EXPECT().
		Run(gomock.Any()).
		DoAndReturn(func(ctx context.Context) error {
			calls.Add(1)
			panic("boom")
		}).
		AnyTimes()

	sup := NewSupervisor(log, fastPolicy(0))

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		sup.Add(workerMock).Run(ctx)
		close(done)
	}()
	<-done

	req.GreaterOrEqual(calls.Load(), int32(2))
}

func TestSupervisor_StopOnSuccess(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	workerMock := mocks.NewMockWorker(ctrl)

	// Given a worker running only once
	workerMock.EXPECT().
		Run(gomock.Any()).
		Return(nil).
		Times(1)

	sup := NewSupervisor(log, fastPolicy(0))

	done := make(chan struct{})
	go func() {
		sup.Add(workerMock).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
		// Then supervisor detected a success and stopped
	case <-time.After(500 * time.Millisecond):
		req.Fail("Supervisor should have stopped after worker success")
	}
}

func TestSupervisor_GivesUpAfterMaxRetries(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	workerMock := mocks.NewMockWorker(ctrl)

	// Given a worker that always fails: first run plus three retries
	workerMock.EXPECT().
		Run(gomock.Any()).
		Return(errors.ErrConnectionClosed).
		Times(4)

	sup := NewSupervisor(log, fastPolicy(3))

	done := make(chan struct{})
	go func() {
		sup.Add(workerMock).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		req.Fail("Supervisor should have given up")
	}

	select {
	case err := <-sup.Errors():
		req.ErrorIs(err, errors.ErrRetriesExhausted)
		req.ErrorIs(err, errors.ErrConnectionClosed)
	default:
		req.Fail("Exhausted worker should be reported")
	}
}

func TestSupervisor_StableRunResetsRetries(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	workerMock := mocks.NewMockWorker(ctrl)
	policy := fastPolicy(2)
	policy.StableAfter = 80 * time.Millisecond

	// Given a worker failing twice, then once after a stable run, once more and finally succeeding.
	// Without a reset the third failure would be one retry too many.
	var calls atomic.Int32
	workerMock.EXPECT().
		Run(gomock.Any()).
		DoAndReturn(func(ctx context.Context) error {
			switch calls.Add(1) {
			case 3:
				time.Sleep(2 * policy.StableAfter)
				return errors.ErrConnectionClosed
			case 5:
				return nil
			default:
				return errors.ErrConnectionClosed
			}
		}).
		Times(5)

	sup := NewSupervisor(log, policy)

	done := make(chan struct{})
	go func() {
		sup.Add(workerMock).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		req.Fail("Supervisor should have stopped after worker success")
	}

	req.Equal(int32(5), calls.Load())
	select {
	case err := <-sup.Errors():
		req.Fail("Worker should not have been abandoned", err)
	default:
	}
}

func TestSupervisor_ShortRunsDoNotResetRetries(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	workerMock := mocks.NewMockWorker(ctrl)
	policy := fastPolicy(2)
	policy.StableAfter = time.Second

	// Given a worker failing fast: first run plus two retries
	workerMock.EXPECT().
		Run(gomock.Any()).
		Return(errors.ErrConnectionClosed).
		Times(3)

	sup := NewSupervisor(slog.Default(), policy)
	sup.Add(workerMock).Run(context.Background())

	select {
	case err := <-sup.Errors():
		req.ErrorIs(err, errors.ErrRetriesExhausted)
	default:
		req.Fail("Exhausted worker should be reported")
	}
}

func TestRetryPolicy_NewBackOff(t *testing.T) {
	req := require.New(t)
	policy := RetryPolicy{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     300 * time.Millisecond,
		Multiplier:      2,
		MaxRetries:      4,
	}
	b := policy.NewBackOff()

	req.Equal(100*time.Millisecond, b.NextBackOff())
	req.Equal(200*time.Millisecond, b.NextBackOff())
	req.Equal(300*time.Millisecond, b.NextBackOff())
	req.Equal(300*time.Millisecond, b.NextBackOff())
	req.Less(b.NextBackOff(), time.Duration(0))

	b.Reset()
	req.Equal(100*time.Millisecond, b.NextBackOff())
}
