package repository

import (
	"context"

	"glemora/internal/domain/model"
)

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)

	// (cart, product, size)が同じ明細は数量加算
	UpsertByCartProductSize(ctx context.Context, cartID int64, productID int64, size string, addQty int64) error
	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error
	IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error)
}
