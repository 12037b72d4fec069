package user

import (
	"context"

	"gorm.io/gorm"

	"pawstogether/internal/dbmysql"
)

type RatingRepository interface {
	CreateRating(ctx context.Context, rating *dbmysql.Rating) error
	GetRatingsForUser(ctx context.Context, toUserID string) ([]dbmysql.Rating, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) CreateRating(ctx context.Context, rating *dbmysql.Rating) error {
	return r.db.WithContext(ctx).Create(rating).Error
}

func (r *ratingRepository) GetRatingsForUser(ctx context.Context, toUserID string) ([]dbmysql.Rating, error) {
	var ratings []dbmysql.Rating
	err := r.db.WithContext(ctx).
		Where("to_user_id = ?", toUserID).
		Order("created_at DESC").
		Find(&ratings).Error
	return ratings, err
}
