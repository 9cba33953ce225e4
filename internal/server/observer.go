package server

import (
	"time"

	"github.com/zeusync/robosim/internal/core/events/bus"
	"github.com/zeusync/robosim/internal/core/observability/log"
)

var _ bus.EventBusObserver = (*eventObserver)(nil)

// eventObserver keeps bus metrics enabled and reports slow or failing
// deliveries.
type eventObserver struct {
	logger log.Log
	slow   time.Duration
}

func (o *eventObserver) OnPublish(string, string, bus.Event) {}

func (o *eventObserver) OnDelivered(topic, eventType string, handlers int, err error, duration time.Duration) {
	if err != nil {
		o.logger.Warn("Event delivery failed",
			log.String("topic", topic),
			log.String("event", eventType),
			log.Error(err))
	}
	if o.slow > 0 && duration > o.slow {
		o.logger.Warn("Slow event delivery",
			log.String("topic", topic),
			log.String("event", eventType),
			log.Int("handlers", handlers),
			log.Duration("duration", duration))
	}
}
