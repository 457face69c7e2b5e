package repository

import (
	"context"
	"errors"

	"glemora/internal/domain/model"
	repo "glemora/internal/repository"

	"gorm.io/gorm"
)

type AddressGormRepository struct {
	db *gorm.DB
}

// DI
func NewAddressGormRepository(db *gorm.DB) *AddressGormRepository {
	return &AddressGormRepository{db: db}
}

// 住所を作成
func (r *AddressGormRepository) Create(ctx context.Context, a model.UserAddress) (model.UserAddress, error) {
	if err := r.db.WithContext(ctx).Create(&a).Error; err != nil {
		return model.UserAddress{}, err
	}
	return a, nil
}

// 住所IDで1件取得
func (r *AddressGormRepository) FindByID(ctx context.Context, id int64) (model.UserAddress, error) {
	var a model.UserAddress
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.UserAddress{}, repo.ErrNotFound
	}
	if err != nil {
		return model.UserAddress{}, err
	}
	return a, nil
}

// ユーザーの住所一覧を返す
func (r *AddressGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.UserAddress, error) {
	var list []model.UserAddress
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, id ASC").
		Find(&list).Error; err != nil {
		return []model.UserAddress{}, err
	}
	return list, nil
}
