package repository

import (
	"context"

	"glemora/internal/domain/model"
)

type CartRepository interface {
	// ユーザーの唯一のカートを取得し、無ければ作成。ORDEREDならACTIVEに戻す
	GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error
}
