package usecase

import (
	"context"
	"net/http"
	"strings"

	"glemora/internal/domain/model"
	repo "glemora/internal/repository"
)

type CategoryUsecase struct {
	categoryRepo repo.CategoryRepository
	productRepo  repo.ProductRepository
}

func NewCategoryUsecase(categoryRepo repo.CategoryRepository, productRepo repo.ProductRepository) *CategoryUsecase {
	return &CategoryUsecase{categoryRepo: categoryRepo, productRepo: productRepo}
}

type CategoryInput struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Image       string `json:"image"`
}

func (u *CategoryUsecase) List(ctx context.Context) ([]model.Category, error) {
	cs, err := u.categoryRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return cs, nil
}

func (u *CategoryUsecase) Get(ctx context.Context, id int64) (model.Category, error) {
	if id <= 0 {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	c, err := u.categoryRepo.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.Category{}, NewHTTPError(http.StatusNotFound, "category not found")
	}
	if err != nil {
		return model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return c, nil
}

func (u *CategoryUsecase) Create(ctx context.Context, in CategoryInput) (model.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "name is required")
	}
	display := strings.TrimSpace(in.DisplayName)
	if display == "" {
		display = name
	}

	c, err := u.categoryRepo.Create(ctx, model.Category{
		Name:        name,
		DisplayName: display,
		Image:       in.Image,
	})
	if err != nil {
		//name はユニーク
		return model.Category{}, NewHTTPError(http.StatusConflict, "category already exists")
	}
	return c, nil
}

func (u *CategoryUsecase) Update(ctx context.Context, id int64, in CategoryInput) (model.Category, error) {
	if id <= 0 {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "name is required")
	}

	c, err := u.categoryRepo.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.Category{}, NewHTTPError(http.StatusNotFound, "category not found")
	}
	if err != nil {
		return model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	c.Name = name
	if strings.TrimSpace(in.DisplayName) != "" {
		c.DisplayName = strings.TrimSpace(in.DisplayName)
	}
	c.Image = in.Image

	if err := u.categoryRepo.Update(ctx, c); err != nil {
		return model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return c, nil
}

// Delete は商品が紐付いている間は拒否する
func (u *CategoryUsecase) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if _, err := u.categoryRepo.FindByID(ctx, id); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "category not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	n, err := u.productRepo.CountByCategoryID(ctx, id)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if n > 0 {
		return NewHTTPError(http.StatusConflict, "category has products")
	}

	if err := u.categoryRepo.Delete(ctx, id); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
