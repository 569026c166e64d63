package dispatch

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBelongsToThread(t *testing.T) {
	assert.True(t, BelongsToThread(Message{ThreadID: 0}, 0, 4))
	assert.False(t, BelongsToThread(Message{ThreadID: 0}, 1, 4))
	assert.True(t, BelongsToThread(Message{ThreadID: 5}, 1, 4))
}

func TestPublishBroadcastsToAllSubscribers(t *testing.T) {
	ch := New(4, zerolog.Nop())
	a := ch.Subscribe()
	b := ch.Subscribe()

	ch.Publish(Message{SubmissionID: "sub-1"})

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, "sub-1", (<-a).SubmissionID)
	assert.Equal(t, "sub-1", (<-b).SubmissionID)
}

func TestPublishDropsOldestWhenFull(t *testing.T) {
	ch := New(2, zerolog.Nop())
	sub := ch.Subscribe()

	ch.Publish(Message{SubmissionID: "sub-1"})
	ch.Publish(Message{SubmissionID: "sub-2"})
	ch.Publish(Message{SubmissionID: "sub-3"})

	require.Len(t, sub, 2)
	first := <-sub
	second := <-sub
	assert.Equal(t, "sub-2", first.SubmissionID)
	assert.Equal(t, "sub-3", second.SubmissionID)
}
