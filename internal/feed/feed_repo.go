package feed

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pawstogether/internal/dbmongo"
	"pawstogether/internal/observability"
)

var ErrPostNotFound = errors.New("post not found")

// Comment is append-only and lives inside its parent post; it has no id and
// no deletion path.
type Comment struct {
	UserID    string `bson:"userId" json:"userId"`
	UserName  string `bson:"userName" json:"userName"`
	Text      string `bson:"text" json:"text"`
	Timestamp int64  `bson:"timestamp" json:"timestamp"`
}

// Post carries a denormalized like counter next to the liking-user set.
// Invariant: likes == len(likedBy) after every successful mutation; the repo
// keeps the two in one atomic update so they cannot drift.
type Post struct {
	ID          string    `bson:"_id" json:"id"`
	UserID      string    `bson:"userId" json:"userId"`
	UserName    string    `bson:"userName" json:"userName"`
	MediaURL    string    `bson:"mediaUrl" json:"mediaUrl"`
	Description string    `bson:"description" json:"description"`
	IsVideo     bool      `bson:"isVideo" json:"isVideo"`
	Likes       int       `bson:"likes" json:"likes"`
	LikedBy     []string  `bson:"likedBy" json:"likedBy"`
	Comments    []Comment `bson:"comments" json:"comments"`
	Timestamp   int64     `bson:"timestamp" json:"timestamp"`
}

// --------- POSTS ---------
type Posts interface {
	CreatePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, id string) (*Post, error)
	ListRecent(ctx context.Context, limit int64) ([]Post, error)
	ApplyLike(ctx context.Context, postID, userID string) (bool, error)
	ApplyUnlike(ctx context.Context, postID, userID string) (bool, error)
	AppendComment(ctx context.Context, postID string, c Comment) error
}

type FeedRepository struct {
	posts *mongo.Collection
}

func NewFeedRepository(mc *dbmongo.MongoClient) *FeedRepository {
	return &FeedRepository{posts: mc.Database.Collection("posts")}
}

func (r *FeedRepository) CreatePost(ctx context.Context, post *Post) error {
	if post.LikedBy == nil {
		post.LikedBy = []string{}
	}
	if post.Comments == nil {
		post.Comments = []Comment{}
	}
	_, err := r.posts.InsertOne(ctx, post)
	if err != nil {
		return fmt.Errorf("post insert failed: %w", err)
	}
	return nil
}

func (r *FeedRepository) GetPost(ctx context.Context, id string) (*Post, error) {
	var post Post
	err := r.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("post lookup failed: %w", err)
	}
	return &post, nil
}

// ListRecent returns the newest posts first. Malformed documents are skipped.
func (r *FeedRepository) ListRecent(ctx context.Context, limit int64) ([]Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)
	cur, err := r.posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("post list query failed: %w", err)
	}
	defer cur.Close(ctx)

	var out []Post
	for cur.Next(ctx) {
		var p Post
		if err := cur.Decode(&p); err != nil {
			log.Printf("skipping malformed post: %v", err)
			observability.IncDecodeSkip("posts")
			continue
		}
		out = append(out, p)
	}
	return out, cur.Err()
}

// ApplyLike bumps the counter AND adds the user to the liking set in one
// update call, guarded so a user already present changes nothing. Splitting
// the two across calls would let the count drift from the set; never do that.
func (r *FeedRepository) ApplyLike(ctx context.Context, postID, userID string) (bool, error) {
	filter := bson.M{"_id": postID, "likedBy": bson.M{"$ne": userID}}
	update := bson.M{
		"$inc":      bson.M{"likes": 1},
		"$addToSet": bson.M{"likedBy": userID},
	}
	res, err := r.posts.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("like update failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, r.noMatchReason(ctx, postID)
	}
	return true, nil
}

// ApplyUnlike is the exact mirror of ApplyLike.
func (r *FeedRepository) ApplyUnlike(ctx context.Context, postID, userID string) (bool, error) {
	filter := bson.M{"_id": postID, "likedBy": userID}
	update := bson.M{
		"$inc":  bson.M{"likes": -1},
		"$pull": bson.M{"likedBy": userID},
	}
	res, err := r.posts.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("unlike update failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, r.noMatchReason(ctx, postID)
	}
	return true, nil
}

// AppendComment appends in server-write order, not client-send order.
func (r *FeedRepository) AppendComment(ctx context.Context, postID string, c Comment) error {
	update := bson.M{"$push": bson.M{"comments": c}}
	res, err := r.posts.UpdateOne(ctx, bson.M{"_id": postID}, update)
	if err != nil {
		return fmt.Errorf("comment update failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// noMatchReason distinguishes "post missing" from "already in the desired
// like state"; the latter is a harmless no-op.
func (r *FeedRepository) noMatchReason(ctx context.Context, postID string) error {
	count, err := r.posts.CountDocuments(ctx, bson.M{"_id": postID})
	if err != nil {
		return fmt.Errorf("post existence check failed: %w", err)
	}
	if count == 0 {
		return ErrPostNotFound
	}
	return nil
}
