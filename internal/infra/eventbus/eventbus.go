// Package eventbus is the in-memory publish/subscribe bus that carries the
// assistant's signals (content/fix/report ready, error, progress, settings)
// from the orchestrator to whoever renders them: the CLI notifier, the SSE
// stream of the panel API, the MCP server.
//
// Design:
//   - Buffered Go channel per subscription (buffer=100).
//   - Publish is non-blocking: a slow subscriber loses events, the publisher never waits.
//   - Subscribing to AllTopics receives every event regardless of topic.
//   - Unsubscribe closes the channel; SSE clients call it when they disconnect.
package eventbus

import "sync"

// AllTopics is the wildcard topic: its subscribers receive every published event.
const AllTopics = "*"

// Event is a single published message.
type Event struct {
	Topic   string
	Payload any
}

// EventBus is the interface for publishing and subscribing to topics.
type EventBus interface {
	Publish(topic string, payload any)
	Subscribe(topic string) <-chan Event
	Unsubscribe(ch <-chan Event)
}

const defaultBufferSize = 100

// Bus is the in-memory implementation of EventBus.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Event
}

// New returns a new in-memory Bus.
func New() *Bus {
	return &Bus{
		subscribers: make(map[string][]chan Event),
	}
}

// Subscribe registers a new subscriber for topic and returns a read-only channel.
// The caller must consume the channel or lose events once the buffer is full.
func (b *Bus) Subscribe(topic string) <-chan Event {
	ch := make(chan Event, defaultBufferSize)
	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscription owning ch and closes it.
// Unknown channels are ignored.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for topic, subs := range b.subscribers {
		for i, sub := range subs {
			if (<-chan Event)(sub) != ch {
				continue
			}
			b.subscribers[topic] = append(subs[:i:i], subs[i+1:]...)
			if len(b.subscribers[topic]) == 0 {
				delete(b.subscribers, topic)
			}
			close(sub)
			return
		}
	}
}

// Publish sends an Event to all subscribers of topic and to wildcard subscribers.
// The read lock is held while sending so Unsubscribe cannot close a channel mid-send;
// sends never block, so the lock is held briefly.
func (b *Bus) Publish(topic string, payload any) {
	evt := Event{Topic: topic, Payload: payload}
	b.mu.RLock()
	defer b.mu.RUnlock()
	deliver(b.subscribers[topic], evt)
	if topic != AllTopics {
		deliver(b.subscribers[AllTopics], evt)
	}
}

func deliver(subs []chan Event, evt Event) {
	for _, ch := range subs {
		select {
		case ch <- evt:
		default:
			// buffer full: drop event
		}
	}
}
