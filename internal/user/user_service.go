package user

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/pborman/uuid"

	"pawstogether/internal/common"
	"pawstogether/internal/dbmysql"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSelfRating         = errors.New("you cannot rate yourself")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidInput       = errors.New("invalid input")
)

type UserService interface {
	RegisterUser(ctx context.Context, displayName, email, password string) (*dbmysql.User, string, error)
	LoginUser(ctx context.Context, email, password string) (*dbmysql.User, string, error)
	GetProfile(ctx context.Context, userID string) (*dbmysql.User, error)

	SubmitRating(ctx context.Context, fromUserID, toUserID string, stars int, review, serviceType string, isThankYou bool) (*dbmysql.Rating, error)
	GetRatings(ctx context.Context, toUserID string) ([]dbmysql.Rating, error)

	ResolveDisplayName(ctx context.Context, userID string) string
}

type userService struct {
	userRepo   UserRepository
	ratingRepo RatingRepository
}

func NewUserService(userRepo UserRepository, ratingRepo RatingRepository) UserService {
	return &userService{userRepo: userRepo, ratingRepo: ratingRepo}
}

func (s *userService) RegisterUser(ctx context.Context, displayName, email, password string) (*dbmysql.User, string, error) {
	if err := common.ValidateDisplayName(displayName); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := common.ValidateEmail(email); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := common.ValidatePassword(password); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	email = strings.ToLower(strings.TrimSpace(email))

	exists, err := s.userRepo.CheckEmailExists(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", ErrEmailTaken
	}

	hashed, err := common.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	account := &dbmysql.User{
		UserID:       uuid.New(),
		DisplayName:  strings.TrimSpace(displayName),
		Email:        email,
		PasswordHash: hashed,
	}
	if err := s.userRepo.CreateUser(ctx, account); err != nil {
		return nil, "", err
	}

	token, err := common.GenerateToken(account.UserID, account.DisplayName)
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

func (s *userService) LoginUser(ctx context.Context, email, password string) (*dbmysql.User, string, error) {
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	account, err := s.userRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := common.CheckPassword(password, account.PasswordHash); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := common.GenerateToken(account.UserID, account.DisplayName)
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*dbmysql.User, error) {
	account, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return account, nil
}

// SubmitRating stores the rating, then recomputes the rated user's average
// from every rating they have ever received. The full recompute keeps the
// stored average self-correcting even if a write was lost before.
func (s *userService) SubmitRating(ctx context.Context, fromUserID, toUserID string, stars int, review, serviceType string, isThankYou bool) (*dbmysql.Rating, error) {
	if fromUserID == toUserID {
		return nil, ErrSelfRating
	}
	if err := common.ValidateStars(stars); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := s.userRepo.GetUserByID(ctx, toUserID); err != nil {
		return nil, ErrUserNotFound
	}

	rating := &dbmysql.Rating{
		FromUserID:  fromUserID,
		ToUserID:    toUserID,
		Stars:       stars,
		Review:      strings.TrimSpace(review),
		IsThankYou:  isThankYou,
		ServiceType: serviceType,
	}
	if err := s.ratingRepo.CreateRating(ctx, rating); err != nil {
		return nil, err
	}

	if err := s.refreshAverageRating(ctx, toUserID); err != nil {
		// the rating itself is stored; the stale average heals on the next submit
		log.Printf("average rating refresh failed for %s: %v", toUserID, err)
	}
	return rating, nil
}

func (s *userService) GetRatings(ctx context.Context, toUserID string) ([]dbmysql.Rating, error) {
	return s.ratingRepo.GetRatingsForUser(ctx, toUserID)
}

func (s *userService) refreshAverageRating(ctx context.Context, userID string) error {
	ratings, err := s.ratingRepo.GetRatingsForUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(ratings) == 0 {
		return nil
	}
	var sum int
	for _, r := range ratings {
		sum += r.Stars
	}
	average := float32(sum) / float32(len(ratings))
	return s.userRepo.UpdateAverageRating(ctx, userID, average)
}

// ResolveDisplayName is the lookup chat and feed embed into their documents.
// Any failure collapses to "": the write proceeds with a blank name rather
// than failing the whole operation.
func (s *userService) ResolveDisplayName(ctx context.Context, userID string) string {
	if userID == "" {
		return ""
	}
	account, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return ""
	}
	return account.DisplayName
}
