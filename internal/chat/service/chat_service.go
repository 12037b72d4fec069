package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pborman/uuid"

	"pawstogether/internal/chat/repository"
	"pawstogether/internal/common"
	"pawstogether/internal/observability"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrBlankMessage     = errors.New("message content cannot be empty")
	ErrSelfChat         = errors.New("cannot chat with yourself")
)

// NameResolver resolves a user id to a display name. Implementations return
// "" for any failure; "" means "unknown", not an error.
type NameResolver interface {
	ResolveDisplayName(ctx context.Context, userID string) string
}

// ChatService defines the interface exposed to the handler and websocket layers
type ChatService interface {
	ConversationID(a, b string) string
	SendMessage(ctx context.Context, senderID, receiverID, text string) (*repository.Message, error)
	StartAdoptionChat(ctx context.Context, senderID, receiverID, petName string) (*repository.Message, error)
	History(ctx context.Context, userA, userB string) ([]repository.Message, error)
	Previews(ctx context.Context, userID string) ([]repository.ChatPreview, error)
	SubscribeMessages(ctx context.Context, conversationID string) (*MessageSubscription, error)
	SubscribePreviews(ctx context.Context, userID string) (*PreviewSubscription, error)
}

type chatService struct {
	repo     repository.ChatRepository
	names    NameResolver
	notifier *notifier
}

// Constructor used in DI/wire
func NewChatService(r repository.ChatRepository, names NameResolver) ChatService {
	return &chatService{
		repo:     r,
		names:    names,
		notifier: newNotifier(),
	}
}

// ConversationID derives the shared conversation key from the two participant
// ids. Both sides compute the same value: id(a,b) == id(b,a).
func (s *chatService) ConversationID(a, b string) string {
	if a < b {
		return a + "_" + b
	}
	return b + "_" + a
}

// SendMessage validates, builds the message, and commits the four-way fan-out
// as one batch. On any failure nothing is written and the caller keeps its
// compose state for retry.
func (s *chatService) SendMessage(ctx context.Context, senderID, receiverID, text string) (*repository.Message, error) {
	if senderID == "" {
		return nil, ErrNotAuthenticated
	}
	if receiverID == "" {
		return nil, errors.New("receiver ID cannot be empty")
	}
	if senderID == receiverID {
		return nil, ErrSelfChat
	}
	if err := common.ValidateMessageText(text); err != nil {
		return nil, ErrBlankMessage
	}
	text = strings.TrimSpace(text)

	senderName := s.names.ResolveDisplayName(ctx, senderID)
	receiverName := s.names.ResolveDisplayName(ctx, receiverID)

	conversationID := s.ConversationID(senderID, receiverID)
	msg := repository.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Content:        text,
		SenderName:     senderName,
		Timestamp:      time.Now().UnixMilli(),
	}

	fo := &repository.FanOut{
		ConversationID: conversationID,
		Participants:   []string{senderID, receiverID},
		ReceiverName:   receiverName,
		Message:        msg,
		SenderPreview: repository.ChatPreview{
			OwnerID:     senderID,
			UserID:      receiverID,
			UserName:    receiverName,
			LastMessage: text,
			Timestamp:   msg.Timestamp,
		},
		ReceiverPreview: repository.ChatPreview{
			OwnerID:     receiverID,
			UserID:      senderID,
			UserName:    senderName,
			LastMessage: text,
			Timestamp:   msg.Timestamp,
		},
	}

	if err := s.repo.SaveFanOut(ctx, fo); err != nil {
		return nil, err
	}

	observability.IncMessagesSent()

	// live updates fire only after the batch commits
	s.notifier.publishMessage(conversationID, msg)
	s.notifier.publishPreview(senderID, fo.SenderPreview)
	s.notifier.publishPreview(receiverID, fo.ReceiverPreview)

	return &msg, nil
}

// StartAdoptionChat opens a conversation with a canned first message about a
// pet. It goes through the ordinary send path, fan-out included.
func (s *chatService) StartAdoptionChat(ctx context.Context, senderID, receiverID, petName string) (*repository.Message, error) {
	if strings.TrimSpace(petName) == "" {
		return nil, errors.New("pet name cannot be empty")
	}
	text := fmt.Sprintf("Hi! I'm interested in adopting %s. Could we talk about the adoption process?", petName)
	return s.SendMessage(ctx, senderID, receiverID, text)
}

// History returns the full ordered message history between two users.
func (s *chatService) History(ctx context.Context, userA, userB string) ([]repository.Message, error) {
	if userA == "" {
		return nil, ErrNotAuthenticated
	}
	return s.repo.FetchHistory(ctx, s.ConversationID(userA, userB))
}

// Previews returns the user's chat list, newest conversation first.
func (s *chatService) Previews(ctx context.Context, userID string) ([]repository.ChatPreview, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return s.repo.FetchPreviews(ctx, userID)
}

// SubscribeMessages replays the conversation's full ordered history, then
// streams live messages until Cancel is called. The live channel is
// registered before the history read; a message that commits in between is
// therefore delivered live instead of falling into the gap, and a message
// present in both copies is forwarded once (de-dup by id).
func (s *chatService) SubscribeMessages(ctx context.Context, conversationID string) (*MessageSubscription, error) {
	live, cancel := s.notifier.registerMessages(conversationID)
	history, err := s.repo.FetchHistory(ctx, conversationID)
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan repository.Message, len(history)+subscriberBuffer)
	replayed := make(map[string]struct{}, len(history))
	for _, m := range history {
		replayed[m.ID] = struct{}{}
		out <- m
	}

	go func() {
		defer close(out)
		for m := range live {
			if _, dup := replayed[m.ID]; dup {
				// already replayed from history; each id is published once
				delete(replayed, m.ID)
				continue
			}
			select {
			case out <- m:
			default:
				log.Printf("dropping message for slow subscriber on %s", conversationID)
			}
		}
	}()

	return &MessageSubscription{C: out, cancel: cancel}, nil
}

// SubscribePreviews replays the user's preview list, then streams live
// preview updates until Cancel is called. Same register-then-read shape as
// SubscribeMessages; previews are overwrites, so the de-dup key is the
// counterpart plus timestamp.
func (s *chatService) SubscribePreviews(ctx context.Context, userID string) (*PreviewSubscription, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	live, cancel := s.notifier.registerPreviews(userID)
	previews, err := s.repo.FetchPreviews(ctx, userID)
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan repository.ChatPreview, len(previews)+subscriberBuffer)
	replayed := make(map[string]struct{}, len(previews))
	for _, p := range previews {
		replayed[previewDedupKey(p)] = struct{}{}
		out <- p
	}

	go func() {
		defer close(out)
		for p := range live {
			key := previewDedupKey(p)
			if _, dup := replayed[key]; dup {
				delete(replayed, key)
				continue
			}
			select {
			case out <- p:
			default:
				log.Printf("dropping preview for slow subscriber %s", userID)
			}
		}
	}()

	return &PreviewSubscription{C: out, cancel: cancel}, nil
}

func previewDedupKey(p repository.ChatPreview) string {
	return fmt.Sprintf("%s_%d", p.UserID, p.Timestamp)
}
