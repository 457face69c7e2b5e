package repository

import (
	"context"

	"glemora/internal/domain/model"
)

type AddressRepository interface {
	Create(ctx context.Context, a model.UserAddress) (model.UserAddress, error)
	FindByID(ctx context.Context, id int64) (model.UserAddress, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.UserAddress, error)
}
