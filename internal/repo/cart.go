package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kmezhova/online-shop/internal/models"
)

// AddItem creates a cart line. With a nil userID the line is stored unclaimed
// and gets a random claim token to be threaded through login or registration.
func (r *GormRepo) AddItem(ctx context.Context, name string, price float64, qty uint, userID *uint) (*models.CartItem, error) {
	item := models.CartItem{
		UserID:   userID,
		Name:     name,
		Price:    price,
		Quantity: qty,
	}
	if userID == nil {
		item.ClaimToken = uuid.NewString()
	}
	if err := r.DB.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ClaimItem attaches the unclaimed line carrying token to userID. The token is
// cleared in the same update, so a second claim with the same token reports
// ErrNotFound instead of re-owning the line.
func (r *GormRepo) ClaimItem(ctx context.Context, token string, userID uint) (*models.CartItem, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	var item models.CartItem
	err := r.DB.WithContext(ctx).
		Where("claim_token = ? AND user_id IS NULL", token).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	item.UserID = &userID
	item.ClaimToken = ""
	if err := r.DB.WithContext(ctx).Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) ItemsOf(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CartSummary recomputes total and line count on every call.
func (r *GormRepo) CartSummary(ctx context.Context, userID uint) (total float64, count int, items []models.CartItem, err error) {
	items, err = r.ItemsOf(ctx, userID)
	if err != nil {
		return 0, 0, nil, err
	}
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total, len(items), items, nil
}

func (r *GormRepo) ownedItem(ctx context.Context, id, userID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) IncrementQty(ctx context.Context, id, userID uint) (*models.CartItem, error) {
	item, err := r.ownedItem(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	item.Quantity += 1
	if err := r.DB.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// DecrementQty lowers the quantity by one, clamping at zero. A line at zero is
// kept until an explicit delete.
func (r *GormRepo) DecrementQty(ctx context.Context, id, userID uint) (*models.CartItem, error) {
	item, err := r.ownedItem(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if item.Quantity == 0 {
		return item, nil
	}
	item.Quantity -= 1
	if err := r.DB.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *GormRepo) DeleteItem(ctx context.Context, id, userID uint) error {
	if _, err := r.ownedItem(ctx, id, userID); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.CartItem{}).Error
}

func (r *GormRepo) Products(ctx context.Context, offset, limit int) ([]models.Product, int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Product
	if err := r.DB.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// SeedProducts fills an empty catalog so the static pages have something to
// show. Returns the full catalog either way for search indexing.
func (r *GormRepo) SeedProducts(ctx context.Context, seed []models.Product) ([]models.Product, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, err
	}
	if total == 0 && len(seed) > 0 {
		if err := r.DB.WithContext(ctx).Create(&seed).Error; err != nil {
			return nil, err
		}
	}

	var all []models.Product
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&all).Error; err != nil {
		return nil, err
	}
	return all, nil
}
