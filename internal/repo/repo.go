package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kmezhova/online-shop/internal/hash"
	"github.com/kmezhova/online-shop/internal/models"
)

var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrUnknownEmail   = errors.New("unknown email")
	ErrBadPassword    = errors.New("wrong password")
	ErrNotFound       = errors.New("cart item not found")
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) CreateUser(ctx context.Context, email, name, rawPassword string) (*models.User, error) {
	var existing models.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pwHash, err := hash.HashPassword(rawPassword)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        email,
		Name:         name,
		PasswordHash: pwHash,
	}
	if err := r.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) Authenticate(ctx context.Context, email, rawPassword string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownEmail
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, rawPassword) {
		return nil, ErrBadPassword
	}
	return &user, nil
}

func (r *GormRepo) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
