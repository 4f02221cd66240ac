package storage

import (
	"context"
	"errors"

	"bread-calculator/internal/apperr"
	"bread-calculator/internal/models"

	"gorm.io/gorm"
)

const duplicateUserMessage = "Username or email already exists"

// CreateUser inserts a user. The password must already be hashed.
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).
			Where("username = ? OR email = ?", username, email).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.DuplicateUser(duplicateUserMessage)
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		var appErr *apperr.Error
		switch {
		case errors.As(err, &appErr):
			return nil, appErr
		case errors.Is(err, gorm.ErrDuplicatedKey):
			// lost a race with a concurrent registration
			return nil, apperr.DuplicateUser(duplicateUserMessage)
		default:
			return nil, apperr.Internal("create user", err)
		}
	}
	return &user, nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}
