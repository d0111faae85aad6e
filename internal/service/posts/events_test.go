package posts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posts-service/internal/model"
)

func TestEventHub_PublishSubscribe(t *testing.T) {
	hub := NewEventHub()
	ch := hub.Subscribe()
	require.Equal(t, 1, hub.Subscribers())

	hub.Publish(Event{Type: EventCreated, Post: model.Post{ID: "1"}})

	e := <-ch
	assert.Equal(t, EventCreated, e.Type)
	assert.Equal(t, "1", e.Post.ID)

	hub.Unsubscribe(ch)
	assert.Equal(t, 0, hub.Subscribers())

	_, ok := <-ch
	assert.False(t, ok, "channel must be closed after Unsubscribe")

	// Повторная отписка безопасна
	hub.Unsubscribe(ch)
}

func TestEventHub_DropsForSlowSubscriber(t *testing.T) {
	hub := NewEventHub()
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Publish(Event{Type: EventUpdated})
	}

	assert.Equal(t, subscriberBuffer, len(ch))
}
