package repository

import (
	"context"

	"glemora/internal/domain/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, u model.User) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateRole(ctx context.Context, userID int64, role model.Role) error
	Delete(ctx context.Context, userID int64) error
}
