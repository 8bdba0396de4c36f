package workers

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"
)

type NamedChannel struct {
	Name    string
	Channel any
}

// ChannelCapacity is one sample of a buffered channel.
type ChannelCapacity struct {
	ChannelName string
	Capacity    int
	Length      int
}

// ChannelCapacityWorker periodically samples the length and capacity of channels
// and warns when one is close to full: a full event buffer blocks the live feed.
// Reading len(channel) and cap(channel) is non-blocking, so this won't interfere
// with other goroutines.
type ChannelCapacityWorker struct {
	log                  *slog.Logger
	channels             []NamedChannel
	metricInterval       time.Duration
	lowCapacityThreshold int
}

func NewChannelCapacityWorker(log *slog.Logger,
	channels []NamedChannel, metricInterval time.Duration,
	lowCapacityThreshold int) *ChannelCapacityWorker {
	return &ChannelCapacityWorker{
		log: log, channels: channels,
		metricInterval:       metricInterval,
		lowCapacityThreshold: lowCapacityThreshold,
	}
}

func (w ChannelCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping channel sampling")
			return nil
		case <-ticker.C:
			for _, sample := range w.Sample() {
				w.check(sample)
			}
		}
	}
}

// Sample reads every channel once. Values that are not channels are skipped.
func (w ChannelCapacityWorker) Sample() []ChannelCapacity {
	samples := make([]ChannelCapacity, 0, len(w.channels))
	for _, nc := range w.channels {
		v := reflect.ValueOf(nc.Channel)
		// Verify if this is a channel
		if v.Kind() != reflect.Chan {
			w.log.Error("Provided object is not a channel", "name", nc.Name)
			continue
		}
		samples = append(samples, ChannelCapacity{ChannelName: nc.Name, Capacity: v.Cap(), Length: v.Len()})
	}
	return samples
}

// LowCapacity reports whether the free room of the channel is at or below the threshold.
func (w ChannelCapacityWorker) LowCapacity(sample ChannelCapacity) bool {
	if sample.Capacity <= 0 {
		// In case of unbuffered channel
		return false
	}
	return sample.Capacity-sample.Length <= w.lowCapacityThreshold
}

func (w ChannelCapacityWorker) check(sample ChannelCapacity) {
	w.log.Debug(fmt.Sprintf("Channel %s usage: %d / %d", sample.ChannelName, sample.Length, sample.Capacity))
	if w.LowCapacity(sample) {
		w.log.Warn(fmt.Sprintf("Channel %s capacity left : %d", sample.ChannelName, sample.Capacity-sample.Length))
	}
}
