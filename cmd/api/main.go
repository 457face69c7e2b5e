package main

import (
	"strconv"
	"time"

	"glemora/internal/config"
	"glemora/internal/domain/model"
	"glemora/internal/events"
	"glemora/internal/handler"
	"glemora/internal/infra/cache"
	"glemora/internal/infra/db"
	infraEvents "glemora/internal/infra/events"
	infraRepo "glemora/internal/infra/repository"
	"glemora/internal/logger"
	"glemora/internal/server"
	"glemora/internal/usecase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// accesstokenの有効期限
const accessTokenTTL = 24 * time.Hour

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(userID int64, username string, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":      strconv.FormatInt(userID, 10),
		"username": username,
		"role":     string(role),
		"iat":      now.Unix(),
		"exp":      expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	//.envは無くてもいい（本番は実環境変数）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if err := logger.Init(cfg.GoEnv == "dev"); err != nil {
		panic(err)
	}
	defer logger.Sync()

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		logger.L().Fatal("db connect failed", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.UserAddress{},
		&model.Category{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.AuditLog{},
		&model.InventoryAdjustment{},
	); err != nil {
		logger.L().Fatal("migrate failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//イベント発行（RABBITMQ_URL未設定なら無効）
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		p, err := infraEvents.NewAMQPPublisher(cfg.RabbitMQURL, "glemora.orders")
		if err != nil {
			logger.L().Fatal("amqp connect failed", zap.Error(err))
		}
		publisher = p
		defer publisher.Close()
	}

	//商品キャッシュ（REDIS_ADDR未設定なら無効）
	var productCache usecase.ProductCache
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisProductCache(cfg.RedisAddr, "", 0, logger.L())
		if err != nil {
			logger.L().Fatal("redis connect failed", zap.Error(err))
		}
		productCache = rc
		defer rc.Close()
	}

	//JWT issuer
	issuer := &jwtIssuer{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: accessTokenTTL,
	}

	//Usecase生成
	authUC := usecase.NewAuthUsecase(userRepo, issuer)
	userUC := usecase.NewUserUsecase(userRepo, auditRepo)
	productUC := usecase.NewProductUsecase(productRepo, categoryRepo, inventoryRepo, auditRepo, productCache)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo, productRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, cartItemRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(txManager, publisher)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, auditRepo, publisher)
	auditUC := usecase.NewAuditUsecase(auditRepo)

	//Handler生成とルート登録
	e := server.New()
	server.RegisterRoutes(e, cfg, server.Handlers{
		Auth:         handler.NewAuthHandler(authUC),
		User:         handler.NewUserHandler(userUC),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		Category:     handler.NewCategoryHandler(categoryUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		AdminAudit:   handler.NewAdminAuditHandler(auditUC),
	})

	logger.L().Info("server starting", zap.String("port", cfg.Port))
	if err := server.Start(e, ":"+cfg.Port); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
