package usecase

import (
	"context"
	"net/http"
	"testing"

	"glemora/internal/domain/model"
	repo "glemora/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Test: カートは無ければ作られる
func TestGetCartCreatesWhenMissing(t *testing.T) {
	carts := new(cartRepoMock)
	cartItems := new(cartItemRepoMock)
	products := new(productRepoMock)

	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: 1, Status: model.CartStatusActive}, nil)
	cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{}, nil)

	uc := NewCartUsecase(carts, cartItems, products)

	out, err := uc.GetCart(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, int64(10), out.ID)
	assert.Equal(t, string(model.CartStatusActive), out.Status)
	assert.Empty(t, out.Items)
	assert.Equal(t, int64(0), out.Total)
}

// Test: 同一(商品,サイズ)は数量加算で追加される
func TestAddToCartMergesSameProductAndSize(t *testing.T) {
	carts := new(cartRepoMock)
	cartItems := new(cartItemRepoMock)
	products := new(productRepoMock)

	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: 1, Status: model.CartStatusActive}, nil)
	products.On("FindByID", mock.Anything, int64(101)).Return(model.Product{ID: 101, Name: "Shirt", Price: 1000, Stock: 5}, nil)

	// 既に M を 2 個持っている
	cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 101, Quantity: 2, Size: "M"},
	}, nil).Once()

	cartItems.On("UpsertByCartProductSize", mock.Anything, int64(10), int64(101), "M", int64(1)).Return(nil)

	// 返却用の再取得
	cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 101, Quantity: 3, Size: "M"},
	}, nil)

	uc := NewCartUsecase(carts, cartItems, products)

	out, err := uc.AddToCart(context.Background(), 1, AddCartInput{ProductID: 101, Quantity: 1, Size: "M"})

	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(3), out.Items[0].Quantity)
	assert.Equal(t, int64(3000), out.Total)

	cartItems.AssertExpectations(t)
}

// Test: 在庫超過は409
func TestAddToCartExceedsStock(t *testing.T) {
	carts := new(cartRepoMock)
	cartItems := new(cartItemRepoMock)
	products := new(productRepoMock)

	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: 1, Status: model.CartStatusActive}, nil)
	products.On("FindByID", mock.Anything, int64(101)).Return(model.Product{ID: 101, Name: "Shirt", Price: 1000, Stock: 3}, nil)
	cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 101, Quantity: 2, Size: "M"},
	}, nil)

	uc := NewCartUsecase(carts, cartItems, products)

	_, err := uc.AddToCart(context.Background(), 1, AddCartInput{ProductID: 101, Quantity: 2, Size: "M"})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
	assert.Equal(t, "stock exceeded", he.Message)

	cartItems.AssertNotCalled(t, "UpsertByCartProductSize", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// Test: サイズ違いは別明細なので在庫チェックも別数量
func TestAddToCartDifferentSizeIsSeparateLine(t *testing.T) {
	carts := new(cartRepoMock)
	cartItems := new(cartItemRepoMock)
	products := new(productRepoMock)

	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: 1, Status: model.CartStatusActive}, nil)
	products.On("FindByID", mock.Anything, int64(101)).Return(model.Product{ID: 101, Name: "Shirt", Price: 1000, Stock: 3}, nil)

	cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 101, Quantity: 2, Size: "M"},
	}, nil).Once()

	cartItems.On("UpsertByCartProductSize", mock.Anything, int64(10), int64(101), "L", int64(2)).Return(nil)

	cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 101, Quantity: 2, Size: "M"},
		{ID: 2, CartID: 10, ProductID: 101, Quantity: 2, Size: "L"},
	}, nil)

	uc := NewCartUsecase(carts, cartItems, products)

	out, err := uc.AddToCart(context.Background(), 1, AddCartInput{ProductID: 101, Quantity: 2, Size: "L"})

	assert.NoError(t, err)
	assert.Len(t, out.Items, 2)
	cartItems.AssertExpectations(t)
}

// Test: 他人の明細は触れない（存在しない扱い）
func TestUpdateCartItemNotOwned(t *testing.T) {
	carts := new(cartRepoMock)
	cartItems := new(cartItemRepoMock)
	products := new(productRepoMock)

	cartItems.On("IsOwnedByUser", mock.Anything, int64(55), int64(1)).Return(false, nil)

	uc := NewCartUsecase(carts, cartItems, products)

	_, err := uc.UpdateCartItem(context.Background(), 1, 55, UpdateCartItemInput{Quantity: 2})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)

	cartItems.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

// Test: 数量0以下は400
func TestUpdateCartItemInvalidQuantity(t *testing.T) {
	uc := NewCartUsecase(new(cartRepoMock), new(cartItemRepoMock), new(productRepoMock))

	_, err := uc.UpdateCartItem(context.Background(), 1, 55, UpdateCartItemInput{Quantity: 0})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
}

// Test: 明細削除
func TestRemoveCartItem(t *testing.T) {
	carts := new(cartRepoMock)
	cartItems := new(cartItemRepoMock)
	products := new(productRepoMock)

	cartItems.On("IsOwnedByUser", mock.Anything, int64(55), int64(1)).Return(true, nil)
	cartItems.On("DeleteByID", mock.Anything, int64(55)).Return(nil)
	carts.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: 1, Status: model.CartStatusActive}, nil)
	cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{}, nil)

	uc := NewCartUsecase(carts, cartItems, products)

	out, err := uc.RemoveCartItem(context.Background(), 1, 55)

	assert.NoError(t, err)
	assert.Empty(t, out.Items)
	cartItems.AssertExpectations(t)
}

// Test: 削除済み商品の明細は表示から除かれる
func TestGetCartSkipsDeletedProducts(t *testing.T) {
	carts := new(cartRepoMock)
	cartItems := new(cartItemRepoMock)
	products := new(productRepoMock)

	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: 1, Status: model.CartStatusActive}, nil)
	cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 101, Quantity: 1, Size: "M"},
		{ID: 2, CartID: 10, ProductID: 999, Quantity: 1, Size: "M"},
	}, nil)
	products.On("FindByID", mock.Anything, int64(101)).Return(model.Product{ID: 101, Name: "Shirt", Price: 1000, Stock: 5}, nil)
	products.On("FindByID", mock.Anything, int64(999)).Return(model.Product{}, repo.ErrNotFound)

	uc := NewCartUsecase(carts, cartItems, products)

	out, err := uc.GetCart(context.Background(), 1)

	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(1000), out.Total)
}
