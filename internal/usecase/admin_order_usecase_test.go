package usecase

import (
	"context"
	"net/http"
	"testing"

	"glemora/internal/domain/model"
	"glemora/internal/events"
	repo "glemora/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Test: 未知のステータスは400
func TestAdminUpdateStatusInvalidValue(t *testing.T) {
	uc := NewAdminOrderUsecase(&txManagerMock{}, new(auditRepoMock), events.NopPublisher{})

	err := uc.UpdateStatus(context.Background(), 9, 500, AdminUpdateOrderStatusInput{Status: "UNKNOWN"})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, "invalid status", he.Message)
}

// Test: 注文が無い
func TestAdminUpdateStatusOrderNotFound(t *testing.T) {
	orders := new(orderRepoMock)
	orders.On("FindByID", mock.Anything, int64(500)).Return(model.Order{}, repo.ErrNotFound)

	tx := &txManagerMock{Repos: &txReposMock{orders: orders}}
	tx.On("WithinTx", mock.Anything).Return(nil)

	uc := NewAdminOrderUsecase(tx, new(auditRepoMock), events.NopPublisher{})

	err := uc.UpdateStatus(context.Background(), 9, 500, AdminUpdateOrderStatusInput{Status: "CONFIRMED"})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
}

// Test: 同じステータスなら何もしない
func TestAdminUpdateStatusNoop(t *testing.T) {
	orders := new(orderRepoMock)
	audit := new(auditRepoMock)

	orders.On("FindByID", mock.Anything, int64(500)).Return(model.Order{ID: 500, Status: model.OrderStatusConfirmed}, nil)

	tx := &txManagerMock{Repos: &txReposMock{orders: orders}}
	tx.On("WithinTx", mock.Anything).Return(nil)

	uc := NewAdminOrderUsecase(tx, audit, events.NopPublisher{})

	err := uc.UpdateStatus(context.Background(), 9, 500, AdminUpdateOrderStatusInput{Status: "CONFIRMED"})

	assert.NoError(t, err)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// Test: 許可されない遷移は409
func TestAdminUpdateStatusDisallowedTransition(t *testing.T) {
	cases := []struct {
		from model.OrderStatus
		to   string
	}{
		{model.OrderStatusDelivered, "CANCELLED"},
		{model.OrderStatusCancelled, "CONFIRMED"},
		{model.OrderStatusPending, "SHIPPED"},
		{model.OrderStatusShipped, "PENDING"},
	}

	for _, tc := range cases {
		orders := new(orderRepoMock)
		orders.On("FindByID", mock.Anything, int64(500)).Return(model.Order{ID: 500, Status: tc.from}, nil)

		tx := &txManagerMock{Repos: &txReposMock{orders: orders}}
		tx.On("WithinTx", mock.Anything).Return(nil)

		uc := NewAdminOrderUsecase(tx, new(auditRepoMock), events.NopPublisher{})

		err := uc.UpdateStatus(context.Background(), 9, 500, AdminUpdateOrderStatusInput{Status: tc.to})

		he, ok := AsHTTPError(err)
		assert.True(t, ok, "from=%s to=%s", tc.from, tc.to)
		assert.Equal(t, http.StatusConflict, he.Status)
		assert.Equal(t, "invalid status transition", he.Message)

		orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	}
}

// Test: CONFIRMED→SHIPPED。監査ログが残る
func TestAdminUpdateStatusShip(t *testing.T) {
	orders := new(orderRepoMock)
	audit := new(auditRepoMock)

	orders.On("FindByID", mock.Anything, int64(500)).Return(model.Order{ID: 500, Status: model.OrderStatusConfirmed}, nil)
	orders.On("UpdateStatus", mock.Anything, int64(500), model.OrderStatusShipped).Return(nil)

	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 9 &&
			l.Action == model.AuditActionUpdateOrderStatus &&
			l.ResourceID == 500
	})).Return(nil)

	tx := &txManagerMock{Repos: &txReposMock{orders: orders}}
	tx.On("WithinTx", mock.Anything).Return(nil)

	uc := NewAdminOrderUsecase(tx, audit, events.NopPublisher{})

	err := uc.UpdateStatus(context.Background(), 9, 500, AdminUpdateOrderStatusInput{Status: "SHIPPED"})

	assert.NoError(t, err)
	orders.AssertExpectations(t)
	audit.AssertExpectations(t)
}

// Test: キャンセルで在庫が戻る
func TestAdminUpdateStatusCancelRestoresStock(t *testing.T) {
	orders := new(orderRepoMock)
	orderItems := new(orderItemRepoMock)
	inventory := new(inventoryRepoMock)
	audit := new(auditRepoMock)

	orders.On("FindByID", mock.Anything, int64(500)).Return(model.Order{ID: 500, Status: model.OrderStatusConfirmed}, nil)
	orderItems.On("ListByOrderID", mock.Anything, int64(500)).Return([]model.OrderItem{
		{ID: 1, OrderID: 500, ProductID: 101, Quantity: 2},
		{ID: 2, OrderID: 500, ProductID: 102, Quantity: 1},
	}, nil)
	inventory.On("IncreaseStock", mock.Anything, int64(101), int64(2)).Return(nil)
	inventory.On("IncreaseStock", mock.Anything, int64(102), int64(1)).Return(nil)
	orders.On("UpdateStatus", mock.Anything, int64(500), model.OrderStatusCancelled).Return(nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	tx := &txManagerMock{Repos: &txReposMock{orders: orders, orderItems: orderItems, inventory: inventory}}
	tx.On("WithinTx", mock.Anything).Return(nil)

	uc := NewAdminOrderUsecase(tx, audit, events.NopPublisher{})

	err := uc.UpdateStatus(context.Background(), 9, 500, AdminUpdateOrderStatusInput{Status: "CANCELLED"})

	assert.NoError(t, err)
	inventory.AssertExpectations(t)
	orders.AssertExpectations(t)
}

// Test: 削除は明細→本体の順
func TestAdminDeleteOrder(t *testing.T) {
	orders := new(orderRepoMock)
	orderItems := new(orderItemRepoMock)
	audit := new(auditRepoMock)

	orders.On("FindByID", mock.Anything, int64(500)).Return(model.Order{ID: 500, Status: model.OrderStatusCancelled}, nil)
	orderItems.On("DeleteByOrderID", mock.Anything, int64(500)).Return(nil)
	orders.On("Delete", mock.Anything, int64(500)).Return(nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionDeleteOrder && l.ResourceID == 500
	})).Return(nil)

	tx := &txManagerMock{Repos: &txReposMock{orders: orders, orderItems: orderItems}}
	tx.On("WithinTx", mock.Anything).Return(nil)

	uc := NewAdminOrderUsecase(tx, audit, events.NopPublisher{})

	err := uc.Delete(context.Background(), 9, 500)

	assert.NoError(t, err)
	orders.AssertExpectations(t)
	orderItems.AssertExpectations(t)
	audit.AssertExpectations(t)
}

// Test: 削除対象が無い
func TestAdminDeleteOrderNotFound(t *testing.T) {
	orders := new(orderRepoMock)
	orders.On("FindByID", mock.Anything, int64(500)).Return(model.Order{}, repo.ErrNotFound)

	tx := &txManagerMock{Repos: &txReposMock{orders: orders}}
	tx.On("WithinTx", mock.Anything).Return(nil)

	uc := NewAdminOrderUsecase(tx, new(auditRepoMock), events.NopPublisher{})

	err := uc.Delete(context.Background(), 9, 500)

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
}
