// Package dispatch fans a single intake stream of submissions out to a fixed
// pool of workers. Every worker sees every message; each worker decides for
// itself whether the message belongs to it by its thread affinity, mirroring
// a broadcast channel with per-subscriber filtering rather than a work-stealing
// queue — this is what gives every chain signer its own non-overlapping
// nonce stream without a central dispatcher needing to know about signers.
package dispatch

import (
	"sync"

	"github.com/rs/zerolog"
)

// Message is one payload moving from intake to a worker.
type Message struct {
	SubmissionID string
	ThreadID     int
	Payload      []byte
	AppAccountID string
	ChainAppID   int32
	UserID       string
}

// Channel is a bounded broadcast channel. When full, Publish drops the
// oldest queued message for that subscriber rather than blocking the
// publisher or rejecting the newest arrival — an overloaded worker must not
// be able to stall intake for every other worker.
type Channel struct {
	mu          sync.Mutex
	subscribers []chan Message
	capacity    int
	log         zerolog.Logger
}

// New creates a broadcast channel with one buffered Go channel per
// subscriber, each sized to capacity.
func New(capacity int, logger zerolog.Logger) *Channel {
	return &Channel{capacity: capacity, log: logger.With().Str("component", "dispatch").Logger()}
}

// Subscribe registers a new subscriber (one per worker) and returns its
// receive-only channel. Must be called before the supervisor starts
// publishing; subscribing after messages are already flowing can miss
// earlier broadcasts.
func (c *Channel) Subscribe() <-chan Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan Message, c.capacity)
	c.subscribers = append(c.subscribers, ch)
	return ch
}

// Publish broadcasts msg to every subscriber. A subscriber whose buffer is
// full has its oldest pending message dropped to make room, logged at warn
// level since it means that worker is falling behind its thread affinity's
// arrival rate.
func (c *Channel) Publish(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ch := range c.subscribers {
		select {
		case ch <- msg:
		default:
			select {
			case dropped := <-ch:
				c.log.Warn().Str("dropped_submission_id", dropped.SubmissionID).Msg("subscriber buffer full, dropped oldest message")
			default:
			}
			select {
			case ch <- msg:
			default:
				c.log.Warn().Str("submission_id", msg.SubmissionID).Msg("subscriber buffer still full after eviction, dropping new message")
			}
		}
	}
}

// BelongsToThread is the filter every worker applies on receipt: a message
// belongs to a worker only if its thread_id maps to that worker's index.
func BelongsToThread(msg Message, workerIndex, workerCount int) bool {
	return msg.ThreadID%workerCount == workerIndex
}
