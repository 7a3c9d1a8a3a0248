package mqtt

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultInboxSize is the number of inbound messages buffered between polls.
const DefaultInboxSize = 64

// Message is an inbound publish.
type Message struct {
	// Topic the message was published to.
	Topic string
	// Payload is the raw message body.
	Payload []byte
}

// Handler consumes one inbound message.
type Handler func(ctx context.Context, topic string, payload []byte)

// Inbox is a bounded multi-producer, single-consumer message queue.
//
// Push never blocks, so the MQTT client goroutine is never held up by the
// control loop. When the inbox is full the message is dropped and counted in
// Dropped; a lost location report only takes effect once the scanner reports
// again.
type Inbox struct {
	// messages buffers pending inbound messages.
	messages chan Message
	// dropped counts messages rejected because the inbox was full.
	dropped atomic.Uint64
}

// NewInbox creates an inbox holding up to size messages.
func NewInbox(size int) *Inbox {
	if size <= 0 {
		size = DefaultInboxSize
	}

	return &Inbox{
		messages: make(chan Message, size),
	}
}

// Push enqueues a message without blocking. It returns false when the inbox is full.
func (i *Inbox) Push(m Message) bool {
	select {
	case i.messages <- m:
		return true
	default:
		i.dropped.Add(1)

		return false
	}
}

// Dropped returns how many messages were rejected so far.
func (i *Inbox) Dropped() uint64 {
	return i.dropped.Load()
}

// Len returns the number of pending messages.
func (i *Inbox) Len() int {
	return len(i.messages)
}

// Poll waits up to timeout for a message, then hands every pending message
// to handle in arrival order. It returns the number of messages handled.
// Messages pushed while Poll is draining are left for the next call.
func (i *Inbox) Poll(ctx context.Context, timeout time.Duration, handle Handler) int {
	pending := len(i.messages)

	if pending == 0 {
		if timeout <= 0 {
			return 0
		}

		timer := time.NewTimer(timeout)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return 0
		case <-timer.C:
			return 0
		case m := <-i.messages:
			handle(ctx, m.Topic, m.Payload)

			return 1 + i.drain(ctx, len(i.messages), handle)
		}
	}

	return i.drain(ctx, pending, handle)
}

// drain handles at most n queued messages.
func (i *Inbox) drain(ctx context.Context, n int, handle Handler) int {
	handled := 0

	for range n {
		if ctx.Err() != nil {
			break
		}

		select {
		case m := <-i.messages:
			handle(ctx, m.Topic, m.Payload)

			handled++
		default:
			return handled
		}
	}

	return handled
}
