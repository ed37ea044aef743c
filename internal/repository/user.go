package repository

import (
	"context"
	"errors"

	"github.com/Behyna/subscription-engine/internal/model"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("USER_NOT_FOUND")

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := GetTx(ctx, r.db).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
