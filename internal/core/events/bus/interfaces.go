package bus

import "time"

// Event types published by the simulation.
const (
	// TopicSimulation is the topic world and robot events are published on.
	TopicSimulation = "simulation"

	EventTick         = "world.tick"
	EventRobotStalled = "robot.stalled"
	EventRobotFreed   = "robot.freed"
	EventRobotCommand = "robot.command"
	EventRobotAdded   = "robot.added"
)

// EventBus is a synchronous in-process pub/sub bus. Handlers subscribe by
// event type, optionally inside a topic; the default topic is "".
// Publish runs handlers in the caller goroutine and joins their errors.
// All methods are safe for concurrent use.
type EventBus interface {
	Publish(event Event) error
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels sub. A nil sub is ignored.
	Unsubscribe(sub Subscription) error

	// PublishWithFilters drops the event silently when any filter rejects it.
	PublishWithFilters(event Event, filters ...EventFilter) error

	SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error)
	PublishToTopic(topic string, event Event) error

	// PublishAsync delivers in a new goroutine. The returned channel yields the
	// joined handler error (or nil) and is then closed.
	PublishAsync(event Event) <-chan error
	PublishBatch(events ...Event) error

	AddObserver(obs EventBusObserver)
	RemoveObserver(obs EventBusObserver)
	// GetMetrics is only maintained while at least one observer is registered.
	GetMetrics() EventBusMetrics
	GetTopics() []TopicInfo
}

// Event is a read-only message.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
	Metadata() map[string]any
}

type (
	EventHandler func(event Event) error
	EventFilter  func(event Event) bool
)

// Subscription is the handle returned by Subscribe. Cancel may be called more
// than once.
type Subscription interface {
	ID() string
	Topic() string
	EventType() string
	IsActive() bool
	Cancel() error
}

// EventBusObserver is told about every publish. Observers must return quickly.
type EventBusObserver interface {
	OnPublish(topic, eventType string, event Event)
	OnDelivered(topic, eventType string, handlers int, err error, duration time.Duration)
}

type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	DroppedByFilters  uint64
	SubscribersActive uint64
	Topics            uint64
}

type TopicInfo struct {
	Name       string
	EventTypes int
	Subs       int
}

// TickData is the payload of EventTick.
type TickData struct {
	Tick    uint64
	Time    float64
	Robots  int
	Stalled int
}

// RobotData is the payload of robot events.
type RobotData struct {
	Index int
	Name  string
	X, Y  float64
	Dir   float64
}
