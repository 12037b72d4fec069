package service

import (
	"log"
	"sync"

	"pawstogether/internal/chat/repository"
	"pawstogether/internal/observability"
)

const subscriberBuffer = 64

// MessageSubscription is a live, ordered message stream. The caller owns it
// and must call Cancel; nothing cleans it up implicitly.
type MessageSubscription struct {
	C      <-chan repository.Message
	cancel func()
}

func (s *MessageSubscription) Cancel() { s.cancel() }

// PreviewSubscription is a live stream of preview overwrites for one user.
type PreviewSubscription struct {
	C      <-chan repository.ChatPreview
	cancel func()
}

func (s *PreviewSubscription) Cancel() { s.cancel() }

// notifier fans live events out to in-process subscribers, keyed by
// conversation id (messages) or user id (previews). Same locking discipline
// as a websocket hub: writers take the read lock, membership changes take the
// write lock, so a channel is never closed mid-send.
type notifier struct {
	mu          sync.RWMutex
	nextID      int
	messageSubs map[string]map[int]chan repository.Message
	previewSubs map[string]map[int]chan repository.ChatPreview
}

func newNotifier() *notifier {
	return &notifier{
		messageSubs: make(map[string]map[int]chan repository.Message),
		previewSubs: make(map[string]map[int]chan repository.ChatPreview),
	}
}

// registerMessages adds a live subscriber for the conversation. Callers
// register BEFORE reading history so a message committed while they read
// lands in the live channel instead of vanishing.
func (n *notifier) registerMessages(conversationID string) (chan repository.Message, func()) {
	ch := make(chan repository.Message, subscriberBuffer)

	n.mu.Lock()
	n.nextID++
	id := n.nextID
	if _, ok := n.messageSubs[conversationID]; !ok {
		n.messageSubs[conversationID] = make(map[int]chan repository.Message)
	}
	n.messageSubs[conversationID][id] = ch
	n.mu.Unlock()

	observability.IncSubscribers("messages")

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if subs, ok := n.messageSubs[conversationID]; ok {
			if _, exists := subs[id]; exists {
				delete(subs, id)
				close(ch)
				observability.DecSubscribers("messages")
			}
			if len(subs) == 0 {
				delete(n.messageSubs, conversationID)
			}
		}
	}

	return ch, cancel
}

// registerPreviews is the preview-side twin of registerMessages.
func (n *notifier) registerPreviews(userID string) (chan repository.ChatPreview, func()) {
	ch := make(chan repository.ChatPreview, subscriberBuffer)

	n.mu.Lock()
	n.nextID++
	id := n.nextID
	if _, ok := n.previewSubs[userID]; !ok {
		n.previewSubs[userID] = make(map[int]chan repository.ChatPreview)
	}
	n.previewSubs[userID][id] = ch
	n.mu.Unlock()

	observability.IncSubscribers("previews")

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if subs, ok := n.previewSubs[userID]; ok {
			if _, exists := subs[id]; exists {
				delete(subs, id)
				close(ch)
				observability.DecSubscribers("previews")
			}
			if len(subs) == 0 {
				delete(n.previewSubs, userID)
			}
		}
	}

	return ch, cancel
}

func (n *notifier) publishMessage(conversationID string, msg repository.Message) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for id, ch := range n.messageSubs[conversationID] {
		select {
		case ch <- msg:
		default:
			// slow consumer; drop rather than block the send path
			log.Printf("dropping message for slow subscriber %d on %s", id, conversationID)
		}
	}
}

func (n *notifier) publishPreview(userID string, p repository.ChatPreview) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for id, ch := range n.previewSubs[userID] {
		select {
		case ch <- p:
		default:
			log.Printf("dropping preview for slow subscriber %d on %s", id, userID)
		}
	}
}
