package user

import (
	"context"

	"gorm.io/gorm"

	"pawstogether/internal/dbmysql"
)

// UserRepository is the account persistence surface. Display-name lookups for
// chat and feed go through GetUserByID.
type UserRepository interface {
	CreateUser(ctx context.Context, user *dbmysql.User) error
	GetUserByID(ctx context.Context, userID string) (*dbmysql.User, error)
	GetUserByEmail(ctx context.Context, email string) (*dbmysql.User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	UpdateAverageRating(ctx context.Context, userID string, average float32) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *dbmysql.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetUserByID(ctx context.Context, userID string) (*dbmysql.User, error) {
	var user dbmysql.User
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*dbmysql.User, error) {
	var user dbmysql.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) UpdateAverageRating(ctx context.Context, userID string, average float32) error {
	return r.db.WithContext(ctx).Model(&dbmysql.User{}).
		Where("user_id = ?", userID).
		Update("average_rating", average).Error
}
