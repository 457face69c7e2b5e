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

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 消費税率（ポリシー定数）
const taxRatePercent = 10

type OrderUsecase struct {
	tx        repo.TransactionManager
	publisher events.Publisher
}

func NewOrderUsecase(tx repo.TransactionManager, publisher events.Publisher) *OrderUsecase {
	return &OrderUsecase{tx: tx, publisher: publisher}
}

type CreateOrderInput struct {
	AddressLine1     string
	AddressLine2     string
	City             string
	State            string
	PostalCode       string
	Country          string
	IsDefaultAddress bool
	ShippingMethod   string
	ShippingCost     int64
	PaymentMethod    string
	Notes            string
}

type OrderItemOutput struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int64  `json:"quantity"`
}

type OrderOutput struct {
	ID              int64             `json:"id"`
	TrackingNumber  string            `json:"tracking_number"`
	OrderDate       time.Time         `json:"order_date"`
	CustomerName    string            `json:"customer_name"`
	CustomerEmail   string            `json:"customer_email"`
	ShippingAddress string            `json:"shipping_address"`
	ShippingMethod  string            `json:"shipping_method"`
	PaymentMethod   string            `json:"payment_method"`
	Subtotal        int64             `json:"subtotal"`
	Tax             int64             `json:"tax"`
	Total           int64             `json:"total"`
	Notes           string            `json:"notes"`
	Status          string            `json:"status"`
	Items           []OrderItemOutput `json:"items"`
}

// CreateOrder はACTIVEカートを注文に変換する。
// 住所作成・在庫減算・注文作成・カート遷移は全て1トランザクション。
// 途中で失敗したら何も残らない（カートはACTIVEのまま、明細も在庫も無傷）
func (u *OrderUsecase) CreateOrder(ctx context.Context, userID int64, in CreateOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.AddressLine1) == "" || strings.TrimSpace(in.City) == "" ||
		strings.TrimSpace(in.PostalCode) == "" || strings.TrimSpace(in.Country) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "address required")
	}
	if in.ShippingCost < 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid shipping_cost")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		user, err := r.Users().FindByID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "user not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//ACTIVEカート取得
		cart, err := r.Carts().FindActiveByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "active cart not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//カート明細取得
		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}

		//配送先住所は注文ごとに新規作成（重複排除しない）
		now := time.Now()
		addr, err := r.Addresses().Create(ctx, model.UserAddress{
			UserID:       userID,
			AddressLine1: strings.TrimSpace(in.AddressLine1),
			AddressLine2: strings.TrimSpace(in.AddressLine2),
			City:         strings.TrimSpace(in.City),
			State:        strings.TrimSpace(in.State),
			PostalCode:   strings.TrimSpace(in.PostalCode),
			Country:      strings.TrimSpace(in.Country),
			IsDefault:    in.IsDefaultAddress,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//在庫を確定時に再チェックして減らす。
		//小計もここで確定した単価（スナップショット）から積む
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		var subtotal int64 = 0

		for _, ci := range cartItems {
			p, err := r.Products().FindByID(ctx, ci.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "invalid product")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			//在庫減算（足りないなら false）
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, ci.ProductID, ci.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusConflict, "out of stock")
			}

			orderItems = append(orderItems, model.OrderItem{
				ProductID:           ci.ProductID,
				ProductNameSnapshot: p.Name,
				UnitPriceSnapshot:   p.Price,
				Quantity:            ci.Quantity,
				CreatedAt:           now,
			})

			subtotal += p.Price * ci.Quantity
		}

		tax := subtotal * taxRatePercent / 100
		total := subtotal + tax + in.ShippingCost

		// 注文作成
		order := model.Order{
			UserID:            userID,
			OrderDate:         now,
			ShippingAddressID: addr.ID,
			ShippingMethod:    in.ShippingMethod,
			PaymentMethod:     in.PaymentMethod,
			Subtotal:          subtotal,
			Tax:               tax,
			Total:             total,
			Notes:             in.Notes,
			Status:            model.OrderStatusPending,
			TrackingNumber:    uuid.NewString(),
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//カートをORDEREDにする。明細は履歴として残す
		if err := r.Carts().UpdateStatus(ctx, cart.ID, model.CartStatusOrdered); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.ID = orderID
		out = toOrderOutput(order, user, addr, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	//commit後にベストエフォートで発行
	go u.publishCreated(out)

	return out, nil
}

func (u *OrderUsecase) publishCreated(o OrderOutput) {
	evt := events.OrderCreatedEvent{
		OrderID:        o.ID,
		TrackingNumber: o.TrackingNumber,
		Total:          o.Total,
		ItemCount:      len(o.Items),
	}
	if err := u.publisher.Publish(context.Background(), events.OrderCreated, evt); err != nil {
		logger.L().Warn("order.created publish failed", zap.Int64("order_id", o.ID), zap.Error(err))
	}
}

// ListUserOrders はユーザー自身の注文一覧（新しい順）
func (u *OrderUsecase) ListUserOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		user, err := r.Users().FindByID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "user not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		orders, err := r.Orders().ListByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			out, err := u.assembleOrder(ctx, r, o, user)
			if err != nil {
				return err
			}
			outs = append(outs, out)
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// GetOrder は1件取得。本人かADMINだけ。他人の注文は「存在しない扱い」
func (u *OrderUsecase) GetOrder(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		caller, err := r.Users().FindByID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "user not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if o.UserID != userID && caller.Role != model.RoleAdmin {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}

		owner := caller
		if o.UserID != caller.ID {
			owner, err = r.Users().FindByID(ctx, o.UserID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		out, err = u.assembleOrder(ctx, r, o, owner)
		return err
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) assembleOrder(ctx context.Context, r repo.TxRepos, o model.Order, owner model.User) (OrderOutput, error) {
	items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	addr, err := r.Addresses().FindByID(ctx, o.ShippingAddressID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toOrderOutput(o, owner, addr, items), nil
}

func toOrderOutput(o model.Order, owner model.User, addr model.UserAddress, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductNameSnapshot,
			UnitPrice:   it.UnitPriceSnapshot,
			Quantity:    it.Quantity,
		})
	}

	return OrderOutput{
		ID:              o.ID,
		TrackingNumber:  o.TrackingNumber,
		OrderDate:       o.OrderDate,
		CustomerName:    owner.Name,
		CustomerEmail:   owner.Email,
		ShippingAddress: formatShippingAddress(addr),
		ShippingMethod:  o.ShippingMethod,
		PaymentMethod:   o.PaymentMethod,
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		Total:           o.Total,
		Notes:           o.Notes,
		Status:          string(o.Status),
		Items:           outItems,
	}
}

// 1行の表示用住所にまとめる
func formatShippingAddress(a model.UserAddress) string {
	parts := []string{a.AddressLine1}
	if a.AddressLine2 != "" {
		parts = append(parts, a.AddressLine2)
	}
	parts = append(parts, a.City, a.State, a.PostalCode, a.Country)

	return strings.Join(parts, ", ")
}
