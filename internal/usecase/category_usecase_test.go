package usecase

import (
	"context"
	"net/http"
	"testing"

	"glemora/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Test: 商品が残っているカテゴリは消せない
func TestCategoryDeleteBlockedWhileInUse(t *testing.T) {
	categories := new(categoryRepoMock)
	products := new(productRepoMock)

	categories.On("FindByID", mock.Anything, int64(7)).Return(model.Category{ID: 7, Name: "shirts"}, nil)
	products.On("CountByCategoryID", mock.Anything, int64(7)).Return(int64(3), nil)

	uc := NewCategoryUsecase(categories, products)

	err := uc.Delete(context.Background(), 7)

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
	categories.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// Test: 空カテゴリは削除できる
func TestCategoryDeleteEmpty(t *testing.T) {
	categories := new(categoryRepoMock)
	products := new(productRepoMock)

	categories.On("FindByID", mock.Anything, int64(7)).Return(model.Category{ID: 7, Name: "shirts"}, nil)
	products.On("CountByCategoryID", mock.Anything, int64(7)).Return(int64(0), nil)
	categories.On("Delete", mock.Anything, int64(7)).Return(nil)

	uc := NewCategoryUsecase(categories, products)

	err := uc.Delete(context.Background(), 7)

	assert.NoError(t, err)
	categories.AssertExpectations(t)
}

// Test: display_name省略時はnameを使う
func TestCategoryCreateDefaultsDisplayName(t *testing.T) {
	categories := new(categoryRepoMock)
	categories.On("Create", mock.Anything, mock.MatchedBy(func(c model.Category) bool {
		return c.Name == "shirts" && c.DisplayName == "shirts"
	})).Return(model.Category{ID: 7, Name: "shirts", DisplayName: "shirts"}, nil)

	uc := NewCategoryUsecase(categories, new(productRepoMock))

	out, err := uc.Create(context.Background(), CategoryInput{Name: "shirts"})

	assert.NoError(t, err)
	assert.Equal(t, "shirts", out.DisplayName)
	categories.AssertExpectations(t)
}
