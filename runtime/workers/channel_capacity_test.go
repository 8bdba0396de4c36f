package workers

import (
	"chat-client/domain/event"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestChannelCapacityWorker_Sample(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	events := make(chan event.DomainEvent, 4)
	events <- event.ConnectionRestored{}
	events <- event.ConnectionRestored{}
	events <- event.ConnectionRestored{}
	unbuffered := make(chan struct{})

	worker := NewChannelCapacityWorker(log, []NamedChannel{
		{Name: "events", Channel: events},
		{Name: "unbuffered", Channel: unbuffered},
		{Name: "not a channel", Channel: 42},
	}, time.Second, 1)

	samples := worker.Sample()
	req.Equal([]ChannelCapacity{
		{ChannelName: "events", Capacity: 4, Length: 3},
		{ChannelName: "unbuffered", Capacity: 0, Length: 0},
	}, samples)

	req.True(worker.LowCapacity(samples[0]))
	req.False(worker.LowCapacity(samples[1]))
	req.False(worker.LowCapacity(ChannelCapacity{Capacity: 4, Length: 2}))
}

func TestChannelCapacityWorker_StopsOnCancel(t *testing.T) {
	req := require.New(t)
	worker := NewChannelCapacityWorker(slog.Default(), nil, 10*time.Millisecond, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req.NoError(worker.Run(ctx))
}
