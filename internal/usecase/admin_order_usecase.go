package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"glemora/internal/domain/model"
	"glemora/internal/events"
	"glemora/internal/logger"
	repo "glemora/internal/repository"

	"go.uber.org/zap"
)

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
	publisher events.Publisher
}

func NewAdminOrderUsecase(tx repo.TransactionManager, auditRepo repo.AuditLogRepository, publisher events.Publisher) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, auditRepo: auditRepo, publisher: publisher}
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

// 許可するステータス遷移。
// DELIVERED/CANCELLEDは終端
var allowedTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:   {model.OrderStatusConfirmed, model.OrderStatusCancelled},
	model.OrderStatusConfirmed: {model.OrderStatusShipped, model.OrderStatusCancelled},
	model.OrderStatusShipped:   {model.OrderStatusDelivered},
}

func transitionAllowed(from model.OrderStatus, to model.OrderStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// 注文一覧（管理者）
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) ([]OrderOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			owner, err := r.Users().FindByID(ctx, o.UserID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			addr, err := r.Addresses().FindByID(ctx, o.ShippingAddressID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			outs = append(outs, toOrderOutput(o, owner, addr, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// ステータス更新。遷移表に無い遷移は拒否、CANCELLEDなら在庫戻し
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus := model.OrderStatus(strings.TrimSpace(in.Status))
	switch newStatus {
	case model.OrderStatusPending, model.OrderStatusConfirmed, model.OrderStatusShipped,
		model.OrderStatusDelivered, model.OrderStatusCancelled:
		// OK
	default:
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var beforeStatus model.OrderStatus
	changed := false

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 注文取得
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// すでに同じなら何もしない（200）
		if o.Status == newStatus {
			return nil
		}

		if !transitionAllowed(o.Status, newStatus) {
			return NewHTTPError(http.StatusConflict, "invalid status transition")
		}

		// キャンセル時は在庫戻し
		if newStatus == model.OrderStatusCancelled {
			items, err := r.OrderItems().ListByOrderID(ctx, orderID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}

		// ステータス更新
		beforeStatus = o.Status
		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "order not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 監査ログ（UPDATE_ORDER_STATUS）
		beforeJSON := `{"status":"` + string(beforeStatus) + `"}`
		afterJSON := `{"status":"` + string(newStatus) + `"}`
		if err := u.auditRepo.Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   beforeJSON,
			AfterJSON:    afterJSON,
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		changed = true
		return nil
	})

	if err != nil {
		return err
	}

	if changed {
		go u.publishStatusChanged(orderID, beforeStatus, newStatus)
	}
	return nil
}

func (u *AdminOrderUsecase) publishStatusChanged(orderID int64, from model.OrderStatus, to model.OrderStatus) {
	evt := events.OrderStatusChangedEvent{
		OrderID: orderID,
		From:    string(from),
		To:      string(to),
	}
	if err := u.publisher.Publish(context.Background(), events.OrderStatusChanged, evt); err != nil {
		logger.L().Warn("order.status_changed publish failed", zap.Int64("order_id", orderID), zap.Error(err))
	}
}

// 注文削除。明細→本体の順で消す
func (u *AdminOrderUsecase) Delete(ctx context.Context, actorAdminUserID int64, orderID int64) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.OrderItems().DeleteByOrderID(ctx, orderID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Orders().Delete(ctx, orderID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := u.auditRepo.Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionDeleteOrder,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   `{"status":"` + string(o.Status) + `"}`,
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return nil
	})
}

// 期間パラメータはRFC3339で受ける
func ParseDateTimeRFC3339(s string) (*time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, false
	}
	return &t, true
}
