package workers

import (
	"chat-client/contract"
	"chat-client/domain/event"
	"context"
	"log/slog"
)

// EventFanout hands every event coming from the live feed to the in-process sinks.
//
// Sinks are called one after the other, in the order they were added, so a
// renderer added after a projection always sees the projection already updated.
// A failing sink is logged and does not prevent the next ones from running.
type EventFanout struct {
	Log    *slog.Logger
	Name   contract.WorkerName
	Events <-chan event.DomainEvent
	sinks  []contract.EventSink
}

func NewEventFanout(log *slog.Logger, events <-chan event.DomainEvent) *EventFanout {
	return &EventFanout{Log: log, Events: events}
}

func (w *EventFanout) Add(sinks ...contract.EventSink) *EventFanout {
	w.sinks = append(w.sinks, sinks...)
	return w
}

func (w *EventFanout) WithName(name string) *EventFanout {
	w.Name = contract.WorkerName(name)
	return w
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt, ok := <-w.Events:
			if !ok {
				w.Log.Debug("Event channel closed, stopping fanout")
				return nil
			}
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.Log.Debug("Context done, stopping fanout")
			return nil
		}
	}
}

// Fanout One sink for each event
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range w.sinks {
		if err := sink.Consume(ctx, evt); err != nil {
			w.Log.Warn("Sink failed to consume event", "event", evt.Name(), "error", err)
		}
	}
}
