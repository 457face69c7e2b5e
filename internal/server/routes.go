package server

import (
	"glemora/internal/config"
	"glemora/internal/handler"
	"glemora/internal/middleware"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Category     *handler.CategoryHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	AdminOrder   *handler.AdminOrderHandler
	AdminAudit   *handler.AdminAuditHandler
}

// RegisterRoutes は /api 以下に全ルートを登録する。
// public: 認証不要 / auth: JWT必須 / admin: JWT + ADMIN
func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	public := e.Group("/api")

	auth := e.Group("/api", middleware.AuthJWT(cfg))
	admin := e.Group("/api", middleware.AuthJWT(cfg), middleware.AdminRoleGuard())

	h.Auth.RegisterRoutes(public)
	h.Product.RegisterRoutes(public)
	h.Category.RegisterRoutes(public, admin)

	h.User.RegisterRoutes(auth, admin)
	h.Cart.RegisterRoutes(auth)
	h.Order.RegisterRoutes(auth)

	h.AdminProduct.RegisterRoutes(admin)
	h.AdminOrder.RegisterRoutes(admin)
	h.AdminAudit.RegisterRoutes(admin)
}
