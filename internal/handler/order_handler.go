package handler

import (
	"net/http"

	"glemora/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /orders（認証必須）。カート確定＝注文作成
type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) RegisterRoutes(auth *echo.Group) {
	auth.POST("/orders", h.create)
	auth.GET("/orders", h.list)
	auth.GET("/orders/:id", h.detail)
}

type createOrderRequest struct {
	AddressLine1     string `json:"address_line1"`
	AddressLine2     string `json:"address_line2"`
	City             string `json:"city"`
	State            string `json:"state"`
	PostalCode       string `json:"postal_code"`
	Country          string `json:"country"`
	IsDefaultAddress bool   `json:"is_default_address"`
	ShippingMethod   string `json:"shipping_method"`
	ShippingCost     int64  `json:"shipping_cost"`
	PaymentMethod    string `json:"payment_method"`
	Notes            string `json:"notes"`
}

func (h *OrderHandler) create(c echo.Context) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	out, err := h.uc.CreateOrder(c.Request().Context(), userID, usecase.CreateOrderInput{
		AddressLine1:     req.AddressLine1,
		AddressLine2:     req.AddressLine2,
		City:             req.City,
		State:            req.State,
		PostalCode:       req.PostalCode,
		Country:          req.Country,
		IsDefaultAddress: req.IsDefaultAddress,
		ShippingMethod:   req.ShippingMethod,
		ShippingCost:     req.ShippingCost,
		PaymentMethod:    req.PaymentMethod,
		Notes:            req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListUserOrders(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetOrder(c.Request().Context(), userID, orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
