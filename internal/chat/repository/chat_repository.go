package repository

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pawstogether/internal/dbmongo"
	"pawstogether/internal/observability"
)

// Message is immutable once written: created on send, never mutated, never
// deleted by the app.
type Message struct {
	ID             string `bson:"_id" json:"id"`
	ConversationID string `bson:"conversationId" json:"conversationId"`
	SenderID       string `bson:"senderId" json:"senderId"`
	ReceiverID     string `bson:"receiverId" json:"receiverId"`
	Content        string `bson:"content" json:"content"`
	SenderName     string `bson:"senderName" json:"senderName"`
	Timestamp      int64  `bson:"timestamp" json:"timestamp"` // epoch millis
}

// ChatPreview is the denormalized per-owner summary of a conversation. One
// exists per (owner, counterpart) pair and is overwritten on every message
// touching that pair.
type ChatPreview struct {
	OwnerID     string `bson:"ownerId" json:"-"`
	UserID      string `bson:"userId" json:"userId"` // the counterpart
	UserName    string `bson:"userName" json:"userName"`
	LastMessage string `bson:"lastMessage" json:"lastMessage"`
	Timestamp   int64  `bson:"timestamp" json:"timestamp"`
}

// FanOut is the unit written by one send: the message itself, the shared
// conversation summary, and the two per-participant previews. All four commit
// together or not at all.
type FanOut struct {
	ConversationID  string
	Participants    []string
	ReceiverName    string
	Message         Message
	SenderPreview   ChatPreview
	ReceiverPreview ChatPreview
}

type ChatRepository interface {
	SaveFanOut(ctx context.Context, fo *FanOut) error
	FetchHistory(ctx context.Context, conversationID string) ([]Message, error)
	FetchPreviews(ctx context.Context, ownerID string) ([]ChatPreview, error)
}

type chatRepo struct {
	client   *mongo.Client
	chats    *mongo.Collection
	messages *mongo.Collection
	previews *mongo.Collection
}

func NewChatRepository(mc *dbmongo.MongoClient) ChatRepository {
	return &chatRepo{
		client:   mc.Client,
		chats:    mc.Database.Collection("chats"),
		messages: mc.Database.Collection("messages"),
		previews: mc.Database.Collection("chat_previews"),
	}
}

// SaveFanOut commits all four writes in one transaction so both participants
// observe the send (or its absence) identically.
func (r *chatRepo) SaveFanOut(ctx context.Context, fo *FanOut) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		upsert := options.Replace().SetUpsert(true)

		summary := bson.M{
			"participants":  fo.Participants,
			"lastMessage":   fo.Message.Content,
			"timestamp":     fo.Message.Timestamp,
			"otherUserName": fo.ReceiverName,
		}
		if _, err := r.chats.ReplaceOne(sc, bson.M{"_id": fo.ConversationID}, summary, upsert); err != nil {
			return nil, fmt.Errorf("chat summary upsert failed: %w", err)
		}

		if _, err := r.messages.InsertOne(sc, fo.Message); err != nil {
			return nil, fmt.Errorf("message insert failed: %w", err)
		}

		senderKey := previewKey(fo.SenderPreview.OwnerID, fo.SenderPreview.UserID)
		if _, err := r.previews.ReplaceOne(sc, bson.M{"_id": senderKey}, fo.SenderPreview, upsert); err != nil {
			return nil, fmt.Errorf("sender preview upsert failed: %w", err)
		}

		receiverKey := previewKey(fo.ReceiverPreview.OwnerID, fo.ReceiverPreview.UserID)
		if _, err := r.previews.ReplaceOne(sc, bson.M{"_id": receiverKey}, fo.ReceiverPreview, upsert); err != nil {
			return nil, fmt.Errorf("receiver preview upsert failed: %w", err)
		}

		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("fan-out transaction failed: %w", err)
	}
	return nil
}

// FetchHistory returns the full message history ascending by timestamp.
// A record that fails to decode is skipped, not fatal.
func (r *chatRepo) FetchHistory(ctx context.Context, conversationID string) ([]Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cur, err := r.messages.Find(ctx, bson.M{"conversationId": conversationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("message history query failed: %w", err)
	}
	defer cur.Close(ctx)

	var out []Message
	for cur.Next(ctx) {
		var m Message
		if err := cur.Decode(&m); err != nil {
			log.Printf("skipping malformed message in %s: %v", conversationID, err)
			observability.IncDecodeSkip("messages")
			continue
		}
		out = append(out, m)
	}
	return out, cur.Err()
}

// FetchPreviews returns the owner's chat previews, newest first.
func (r *chatRepo) FetchPreviews(ctx context.Context, ownerID string) ([]ChatPreview, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := r.previews.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("preview query failed: %w", err)
	}
	defer cur.Close(ctx)

	var out []ChatPreview
	for cur.Next(ctx) {
		var p ChatPreview
		if err := cur.Decode(&p); err != nil {
			log.Printf("skipping malformed preview for %s: %v", ownerID, err)
			observability.IncDecodeSkip("chat_previews")
			continue
		}
		out = append(out, p)
	}
	return out, cur.Err()
}

func previewKey(ownerID, userID string) string {
	return ownerID + "_" + userID
}
