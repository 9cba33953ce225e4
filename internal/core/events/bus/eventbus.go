package bus

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type event struct {
	typ    string
	source string
	ts     time.Time
	data   any
	meta   map[string]any
}

func (e event) Type() string             { return e.typ }
func (e event) Source() string           { return e.source }
func (e event) Timestamp() time.Time     { return e.ts }
func (e event) Data() any                { return e.data }
func (e event) Metadata() map[string]any { return e.meta }

// NewEvent builds an Event stamped with the current time.
func NewEvent(typ, source string, data any, metadata map[string]any) Event {
	return event{typ: typ, source: source, ts: time.Now(), data: data, meta: metadata}
}

type subscription struct {
	id        string
	topic     string
	eventType string
	handler   EventHandler
	active    atomic.Bool
	cancel    func()
}

func (s *subscription) ID() string        { return s.id }
func (s *subscription) Topic() string     { return s.topic }
func (s *subscription) EventType() string { return s.eventType }
func (s *subscription) IsActive() bool    { return s.active.Load() }

func (s *subscription) Cancel() error {
	if s.active.Swap(false) && s.cancel != nil {
		s.cancel()
	}
	return nil
}

type inMemoryBus struct {
	mu sync.RWMutex
	// topic -> event type -> subscription id -> subscription
	handlers  map[string]map[string]map[string]*subscription
	metrics   EventBusMetrics
	observers map[EventBusObserver]struct{}
}

func New() EventBus {
	return &inMemoryBus{
		handlers:  map[string]map[string]map[string]*subscription{"": {}},
		observers: make(map[EventBusObserver]struct{}),
	}
}

func (b *inMemoryBus) Publish(event Event) error {
	return b.deliver("", event)
}

func (b *inMemoryBus) PublishToTopic(topic string, event Event) error {
	return b.deliver(topic, event)
}

func (b *inMemoryBus) PublishWithFilters(event Event, filters ...EventFilter) error {
	for _, f := range filters {
		if f(event) {
			continue
		}
		b.mu.Lock()
		if len(b.observers) > 0 {
			b.metrics.DroppedByFilters++
		}
		b.mu.Unlock()
		return nil
	}
	return b.Publish(event)
}

func (b *inMemoryBus) Subscribe(eventType string, handler EventHandler) (Subscription, error) {
	return b.SubscribeTopic("", eventType, handler)
}

func (b *inMemoryBus) SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error) {
	if handler == nil {
		return nil, errors.New("bus: nil handler")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	types := b.handlers[topic]
	if types == nil {
		types = make(map[string]map[string]*subscription)
		b.handlers[topic] = types
	}
	if types[eventType] == nil {
		types[eventType] = make(map[string]*subscription)
	}

	s := &subscription{id: uuid.NewString(), topic: topic, eventType: eventType, handler: handler}
	s.active.Store(true)
	s.cancel = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[topic][eventType], s.id)
	}
	types[eventType][s.id] = s
	return s, nil
}

func (b *inMemoryBus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

func (b *inMemoryBus) PublishAsync(event Event) <-chan error {
	ch := make(chan error, 1)
	go func() {
		ch <- b.Publish(event)
		close(ch)
	}()
	return ch
}

func (b *inMemoryBus) PublishBatch(events ...Event) error {
	var all error
	for _, e := range events {
		if err := b.Publish(e); err != nil {
			all = errors.Join(all, err)
		}
	}
	return all
}

func (b *inMemoryBus) AddObserver(obs EventBusObserver) {
	b.mu.Lock()
	b.observers[obs] = struct{}{}
	b.mu.Unlock()
}

func (b *inMemoryBus) RemoveObserver(obs EventBusObserver) {
	b.mu.Lock()
	delete(b.observers, obs)
	b.mu.Unlock()
}

func (b *inMemoryBus) GetMetrics() EventBusMetrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

func (b *inMemoryBus) GetTopics() []TopicInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]TopicInfo, 0, len(b.handlers))
	for name, types := range b.handlers {
		info := TopicInfo{Name: name, EventTypes: len(types)}
		for _, subs := range types {
			info.Subs += len(subs)
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (b *inMemoryBus) deliver(topic string, event Event) error {
	start := time.Now()
	etype := event.Type()

	b.mu.RLock()
	var subs []*subscription
	if m := b.handlers[topic][etype]; m != nil {
		subs = make([]*subscription, 0, len(m))
		for _, s := range m {
			subs = append(subs, s)
		}
	}
	observers := make([]EventBusObserver, 0, len(b.observers))
	for obs := range b.observers {
		observers = append(observers, obs)
	}
	b.mu.RUnlock()

	for _, obs := range observers {
		obs.OnPublish(topic, etype, event)
	}

	var all error
	delivered := 0
	for _, s := range subs {
		if !s.IsActive() {
			continue
		}
		delivered++
		if err := s.handler(event); err != nil {
			all = errors.Join(all, err)
		}
	}

	if len(observers) == 0 {
		return all
	}

	elapsed := time.Since(start)
	for _, obs := range observers {
		obs.OnDelivered(topic, etype, delivered, all, elapsed)
	}

	b.mu.Lock()
	b.metrics.Published++
	b.metrics.DeliveredHandlers += uint64(delivered)
	if all != nil {
		b.metrics.Errors++
	}
	b.metrics.Topics = uint64(len(b.handlers))
	var active uint64
	for _, types := range b.handlers {
		for _, m := range types {
			active += uint64(len(m))
		}
	}
	b.metrics.SubscribersActive = active
	b.mu.Unlock()

	return all
}
