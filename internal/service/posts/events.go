package posts

import (
	"sync"

	"posts-service/internal/model"
)

// EventType - вид изменения поста
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// Event - событие изменения поста. Для deleted заполнен только Post.ID.
type Event struct {
	Type EventType
	Post model.Post
}

// subscriberBuffer - размер буфера канала подписчика
const subscriberBuffer = 16

// EventHub управляет подписчиками на события изменения постов
type EventHub struct {
	subscribers map[chan Event]struct{}
	mu          sync.RWMutex
}

// NewEventHub создает новый экземпляр EventHub
func NewEventHub() *EventHub {
	return &EventHub{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe добавляет нового подписчика и возвращает канал для получения событий
func (h *EventHub) Subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe удаляет подписчика и закрывает его канал
func (h *EventHub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[ch]; ok {
		close(ch)
		delete(h.subscribers, ch)
	}
}

// Publish отправляет событие всем подписчикам.
// Если канал подписчика переполнен, событие для него пропускается.
func (h *EventHub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribers возвращает текущее количество подписчиков
func (h *EventHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
