package job

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
)

// ProgressListener receives progress events for one job id.
// Listeners run on the publisher's goroutine and must not block or call back into the bus
// for the same job id.
type ProgressListener func(model.ProgressEvent)

// ProgressBus is an in-process publish/subscribe registry keyed by job id.
// Events are delivered synchronously in registration order and are never buffered or replayed.
type ProgressBus struct {
	mu     sync.Mutex
	topics map[string]*progressTopic
	nextID atomic.Uint64
	now    func() time.Time
}

type progressTopic struct {
	mu        sync.Mutex
	listeners []progressSubscription
	// closed is set once the topic has been emptied and is about to leave the registry.
	closed bool
}

type progressSubscription struct {
	id uint64
	fn ProgressListener
}

// NewProgressBus constructs an empty bus.
func NewProgressBus() *ProgressBus {
	return &ProgressBus{
		topics: make(map[string]*progressTopic),
		now:    time.Now,
	}
}

// Subscribe registers fn for jobID and returns a function that removes only this listener.
func (b *ProgressBus) Subscribe(jobID string, fn ProgressListener) func() {
	if fn == nil {
		return func() {}
	}
	id := b.nextID.Add(1)
	for {
		topic := b.topicFor(jobID, true)
		topic.mu.Lock()
		if topic.closed {
			topic.mu.Unlock()
			continue
		}
		topic.listeners = append(topic.listeners, progressSubscription{id: id, fn: fn})
		topic.mu.Unlock()
		break
	}

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(jobID, id) })
	}
}

// Publish delivers an event to every listener currently registered for jobID.
func (b *ProgressBus) Publish(jobID string, progress int, state model.JobState) {
	b.PublishEvent(model.ProgressEvent{JobID: jobID, Progress: progress, State: state})
}

// PublishEvent delivers ev to every listener currently registered for ev.JobID.
func (b *ProgressBus) PublishEvent(ev model.ProgressEvent) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = b.now()
	}
	topic := b.topicFor(ev.JobID, false)
	if topic == nil {
		return
	}
	topic.mu.Lock()
	defer topic.mu.Unlock()
	if topic.closed {
		return
	}
	for _, sub := range topic.listeners {
		sub.fn(ev)
	}
}

// UnsubscribeAll removes every listener registered for jobID.
func (b *ProgressBus) UnsubscribeAll(jobID string) {
	topic := b.topicFor(jobID, false)
	if topic == nil {
		return
	}
	topic.mu.Lock()
	topic.listeners = nil
	topic.closed = true
	topic.mu.Unlock()
	b.dropTopic(jobID, topic)
}

// Listeners returns the number of listeners registered for jobID.
func (b *ProgressBus) Listeners(jobID string) int {
	topic := b.topicFor(jobID, false)
	if topic == nil {
		return 0
	}
	topic.mu.Lock()
	defer topic.mu.Unlock()
	return len(topic.listeners)
}

func (b *ProgressBus) unsubscribe(jobID string, id uint64) {
	topic := b.topicFor(jobID, false)
	if topic == nil {
		return
	}
	topic.mu.Lock()
	for i, sub := range topic.listeners {
		if sub.id == id {
			topic.listeners = append(topic.listeners[:i:i], topic.listeners[i+1:]...)
			break
		}
	}
	empty := len(topic.listeners) == 0 && !topic.closed
	if empty {
		topic.closed = true
	}
	topic.mu.Unlock()
	if empty {
		b.dropTopic(jobID, topic)
	}
}

func (b *ProgressBus) topicFor(jobID string, create bool) *progressTopic {
	b.mu.Lock()
	defer b.mu.Unlock()
	topic, ok := b.topics[jobID]
	if !ok && create {
		topic = &progressTopic{}
		b.topics[jobID] = topic
	}
	return topic
}

func (b *ProgressBus) dropTopic(jobID string, topic *progressTopic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.topics[jobID] == topic {
		delete(b.topics, jobID)
	}
}
