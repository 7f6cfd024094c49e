// Package events fans out ledger event messages to registered receivers.
// Messages are prefixed with the package that raised them, such as
// "state: MineNewBlock: ...", and a receiver may ask for only some of them.
package events

import (
	"fmt"
	"strings"
	"sync"
)

// messageBuffer is the number of messages a receiver can fall behind
// before messages to it are dropped.
const messageBuffer = 100

// receiver is a registered channel and the topics it asked for.
type receiver struct {
	ch     chan string
	topics []string
}

// wants reports whether the message matches one of the topics. No topics
// means every message.
func (r receiver) wants(msg string) bool {
	if len(r.topics) == 0 {
		return true
	}

	for _, topic := range r.topics {
		if strings.HasPrefix(msg, topic+":") {
			return true
		}
	}

	return false
}

// =============================================================================

// Events maintains the set of receivers keyed by a unique id.
type Events struct {
	m  map[string]receiver
	mu sync.RWMutex
}

// New constructs an Events for registering and receiving events.
func New() *Events {
	return &Events{
		m: make(map[string]receiver),
	}
}

// Shutdown closes and removes every receiver.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, r := range evt.m {
		delete(evt.m, id)
		close(r.ch)
	}
}

// Acquire registers the id and returns the channel its messages are
// delivered on. Topics, such as "state" or "worker", restrict the messages
// to the packages named. Acquiring an existing id returns its channel and
// leaves its topics as they were.
func (evt *Events) Acquire(id string, topics ...string) chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if r, exists := evt.m[id]; exists {
		return r.ch
	}

	var clean []string
	for _, topic := range topics {
		if topic = strings.TrimSpace(topic); topic != "" {
			clean = append(clean, topic)
		}
	}

	r := receiver{
		ch:     make(chan string, messageBuffer),
		topics: clean,
	}
	evt.m[id] = r

	return r.ch
}

// Release closes and removes the receiver registered by Acquire.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	r, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(r.ch)
	return nil
}

// Count returns the number of registered receivers.
func (evt *Events) Count() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.m)
}

// Send delivers the message to every receiver that wants it. Send never
// blocks; a receiver with a full buffer misses the message.
func (evt *Events) Send(msg string) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, r := range evt.m {
		if !r.wants(msg) {
			continue
		}

		select {
		case r.ch <- msg:
		default:
		}
	}
}
