package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"glemora/internal/domain/model"
	repo "glemora/internal/repository"
)

// 商品詳細の読み取りキャッシュ。nilでも動く（キャッシュ無し運用）
type ProductCache interface {
	GetProduct(ctx context.Context, productID int64) (model.Product, bool)
	SetProduct(ctx context.Context, p model.Product)
	InvalidateProduct(ctx context.Context, productID int64)
}

type ProductUsecase struct {
	productRepo  repo.ProductRepository
	categoryRepo repo.CategoryRepository
	invRepo      repo.InventoryRepository
	auditRepo    repo.AuditLogRepository
	cache        ProductCache
}

func NewProductUsecase(
	productRepo repo.ProductRepository,
	categoryRepo repo.CategoryRepository,
	invRepo repo.InventoryRepository,
	auditRepo repo.AuditLogRepository,
	cache ProductCache,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		invRepo:      invRepo,
		auditRepo:    auditRepo,
		cache:        cache,
	}
}

type ProductListInput struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	MinPrice   *int64
	MaxPrice   *int64
	Featured   *bool
	Sale       *bool
	Sort       string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// List は公開の商品一覧（検索・絞り込み・ソート・ページング）。
func (u *ProductUsecase) List(ctx context.Context, in ProductListInput) (ProductListOutput, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 || in.Limit > 100 {
		in.Limit = 20
	}
	switch in.Sort {
	case "", "price_asc", "price_desc":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}
	if in.MinPrice != nil && *in.MinPrice < 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid min_price")
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid max_price")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid price range")
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		Q:          strings.TrimSpace(in.Q),
		CategoryID: in.CategoryID,
		MinPrice:   in.MinPrice,
		MaxPrice:   in.MaxPrice,
		Featured:   in.Featured,
		Sale:       in.Sale,
		Sort:       in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

// Get は商品詳細（キャッシュはあれば使う）。
func (u *ProductUsecase) Get(ctx context.Context, id int64) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if u.cache != nil {
		if p, ok := u.cache.GetProduct(ctx, id); ok {
			return p, nil
		}
	}

	p, err := u.productRepo.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if u.cache != nil {
		u.cache.SetProduct(ctx, p)
	}
	return p, nil
}

type ProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Stock       int64  `json:"stock"`
	Image       string `json:"image"`
	Sale        bool   `json:"sale"`
	Featured    bool   `json:"featured"`
	CategoryID  int64  `json:"category_id"`
}

func (u *ProductUsecase) validateProductInput(ctx context.Context, in ProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if in.Price < 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	if in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid stock")
	}
	if in.CategoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid category_id")
	}
	if _, err := u.categoryRepo.FindByID(ctx, in.CategoryID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "category not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// Create は商品登録（管理者）。
func (u *ProductUsecase) Create(ctx context.Context, adminUserID int64, in ProductInput) (model.Product, error) {
	if err := u.validateProductInput(ctx, in); err != nil {
		return model.Product{}, err
	}

	p, err := u.productRepo.Create(ctx, model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Image:       in.Image,
		Sale:        in.Sale,
		Featured:    in.Featured,
		CategoryID:  in.CategoryID,
	})
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

// Update は商品更新（管理者）。在庫を変えた場合は調整履歴と監査ログを残す
func (u *ProductUsecase) Update(ctx context.Context, adminUserID int64, id int64, in ProductInput) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := u.validateProductInput(ctx, in); err != nil {
		return model.Product{}, err
	}

	before, err := u.productRepo.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	updated := before
	updated.Name = strings.TrimSpace(in.Name)
	updated.Description = in.Description
	updated.Price = in.Price
	updated.Stock = in.Stock
	updated.Image = in.Image
	updated.Sale = in.Sale
	updated.Featured = in.Featured
	updated.CategoryID = in.CategoryID

	if err := u.productRepo.Update(ctx, updated); err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if before.Stock != in.Stock {
		u.recordStockChange(ctx, adminUserID, before, in.Stock, "admin product update")
	}

	if u.cache != nil {
		u.cache.InvalidateProduct(ctx, id)
	}
	return updated, nil
}

type UpdateInventoryInput struct {
	Stock  int64  `json:"stock"`
	Reason string `json:"reason"`
}

// UpdateInventory は在庫数の直接設定（管理者）。
func (u *ProductUsecase) UpdateInventory(ctx context.Context, adminUserID int64, productID int64, in UpdateInventoryInput) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Stock < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid stock")
	}

	before, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.invRepo.SetStock(ctx, productID, in.Stock); err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = "manual adjustment"
	}
	u.recordStockChange(ctx, adminUserID, before, in.Stock, reason)

	if u.cache != nil {
		u.cache.InvalidateProduct(ctx, productID)
	}

	before.Stock = in.Stock
	return before, nil
}

// Delete は論理削除（管理者）。注文履歴からは参照され続ける
func (u *ProductUsecase) Delete(ctx context.Context, adminUserID int64, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if _, err := u.productRepo.FindByID(ctx, id); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.productRepo.SoftDelete(ctx, id); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if u.cache != nil {
		u.cache.InvalidateProduct(ctx, id)
	}
	return nil
}

// 在庫変更の履歴（調整＋監査）。失敗しても本処理は巻き戻さない
func (u *ProductUsecase) recordStockChange(ctx context.Context, adminUserID int64, before model.Product, newStock int64, reason string) {
	_ = u.invRepo.CreateAdjustment(ctx, model.InventoryAdjustment{
		ProductID:   before.ID,
		AdminUserID: adminUserID,
		Delta:       newStock - before.Stock,
		Reason:      reason,
	})

	beforeJSON, _ := json.Marshal(map[string]int64{"stock": before.Stock})
	afterJSON, _ := json.Marshal(map[string]int64{"stock": newStock})
	_ = u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionUpdateStock,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   before.ID,
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    string(afterJSON),
	})
}
