package feed

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"github.com/pborman/uuid"

	"pawstogether/internal/common"
	"pawstogether/internal/dbmongo"
	"pawstogether/internal/observability"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrEmptyPost        = errors.New("post must have a description or media")
	ErrBlankComment     = errors.New("comment text cannot be empty")
)

// feedLimit mirrors the client query: newest 50 posts.
const feedLimit = 50

// NameResolver resolves a user id to a display name; "" means unknown.
type NameResolver interface {
	ResolveDisplayName(ctx context.Context, userID string) string
}

// MediaUploader is the blob storage collaborator seen from the feed: upload
// bytes, get back a durable id and URL. DeleteFile reclaims a blob whose
// owning document never made it in.
type MediaUploader interface {
	UploadFile(ctx context.Context, filename, mimeType, uploaderID string, content io.Reader) (*dbmongo.MediaFile, error)
	DeleteFile(ctx context.Context, fileID string) error
	MediaURL(fileID string) string
}

type FeedUsecase interface {
	CreatePost(ctx context.Context, userID, description string, media io.Reader, filename, mimeType string) (*Post, error)
	GetFeed(ctx context.Context) ([]Post, error)
	GetPost(ctx context.Context, postID string) (*Post, error)
	Like(ctx context.Context, postID, userID string) error
	Unlike(ctx context.Context, postID, userID string) error
	AddComment(ctx context.Context, postID, userID, text string) (*Comment, error)
}

type FeedService struct {
	postRepo Posts
	media    MediaUploader
	names    NameResolver
}

func NewFeedService(p Posts, m MediaUploader, n NameResolver) *FeedService {
	return &FeedService{
		postRepo: p,
		media:    m,
		names:    n,
	}
}

// CreatePost uploads the media (when present), then stores the post carrying
// the durable media URL.
func (s *FeedService) CreatePost(ctx context.Context, userID, description string, media io.Reader, filename, mimeType string) (*Post, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	description = strings.TrimSpace(description)
	if description == "" && media == nil {
		return nil, ErrEmptyPost
	}

	post := &Post{
		ID:          uuid.New(),
		UserID:      userID,
		UserName:    s.names.ResolveDisplayName(ctx, userID),
		Description: description,
		Timestamp:   time.Now().UnixMilli(),
	}

	var uploadedID string
	if media != nil {
		file, err := s.media.UploadFile(ctx, filename, mimeType, userID, media)
		if err != nil {
			return nil, err
		}
		uploadedID = file.ID
		post.MediaURL = s.media.MediaURL(file.ID)
		post.IsVideo = file.FileType == common.MediaFileTypeVideo
	}

	if err := s.postRepo.CreatePost(ctx, post); err != nil {
		if uploadedID != "" {
			// the post never landed; don't leave the blob orphaned
			if delErr := s.media.DeleteFile(ctx, uploadedID); delErr != nil {
				log.Printf("orphaned media %s cleanup failed: %v", uploadedID, delErr)
			}
		}
		return nil, err
	}
	return post, nil
}

// GetFeed returns the newest posts, newest first.
func (s *FeedService) GetFeed(ctx context.Context) ([]Post, error) {
	return s.postRepo.ListRecent(ctx, feedLimit)
}

func (s *FeedService) GetPost(ctx context.Context, postID string) (*Post, error) {
	return s.postRepo.GetPost(ctx, postID)
}

// Like moves the caller's view of the post from NOT_LIKED to LIKED. The
// repo-level guard makes a duplicate call a no-op on both counter and set.
func (s *FeedService) Like(ctx context.Context, postID, userID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}

	// optimistic client-side check; the guarded update is the real barrier
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if contains(post.LikedBy, userID) {
		return nil
	}

	applied, err := s.postRepo.ApplyLike(ctx, postID, userID)
	if err != nil {
		return err
	}
	if applied {
		observability.IncPostEngagement("like")
	}
	return nil
}

// Unlike moves LIKED back to NOT_LIKED; symmetric to Like.
func (s *FeedService) Unlike(ctx context.Context, postID, userID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}

	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if !contains(post.LikedBy, userID) {
		return nil
	}

	applied, err := s.postRepo.ApplyUnlike(ctx, postID, userID)
	if err != nil {
		return err
	}
	if applied {
		observability.IncPostEngagement("unlike")
	}
	return nil
}

// AddComment appends one comment; ordering among concurrent commenters is
// whatever order the store applied the writes in.
func (s *FeedService) AddComment(ctx context.Context, postID, userID, text string) (*Comment, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if err := common.ValidateMessageText(text); err != nil {
		return nil, ErrBlankComment
	}

	comment := Comment{
		UserID:    userID,
		UserName:  s.names.ResolveDisplayName(ctx, userID),
		Text:      strings.TrimSpace(text),
		Timestamp: time.Now().UnixMilli(),
	}

	if err := s.postRepo.AppendComment(ctx, postID, comment); err != nil {
		return nil, err
	}
	observability.IncPostEngagement("comment")
	return &comment, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
