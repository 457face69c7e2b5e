package usecase

import (
	"context"
	"time"

	"glemora/internal/domain/model"
	repo "glemora/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// txManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type txManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *txManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type txReposMock struct {
	users      repo.UserRepository
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	carts      repo.CartRepository
	cartItems  repo.CartItemRepository
	inventory  repo.InventoryRepository
	products   repo.ProductRepository
	addresses  repo.AddressRepository
}

func (r *txReposMock) Users() repo.UserRepository           { return r.users }
func (r *txReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *txReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *txReposMock) Carts() repo.CartRepository           { return r.carts }
func (r *txReposMock) CartItems() repo.CartItemRepository   { return r.cartItems }
func (r *txReposMock) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *txReposMock) Products() repo.ProductRepository     { return r.products }
func (r *txReposMock) Addresses() repo.AddressRepository    { return r.addresses }

// =====================
// Repository mocks
// =====================

type userRepoMock struct{ mock.Mock }

func (m *userRepoMock) FindByID(ctx context.Context, id int64) (model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) FindByUsername(ctx context.Context, username string) (model.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) Create(ctx context.Context, u model.User) (model.User, error) {
	args := m.Called(ctx, u)
	created, _ := args.Get(0).(model.User)
	return created, args.Error(1)
}

func (m *userRepoMock) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	us, _ := args.Get(0).([]model.User)
	return us, args.Error(1)
}

func (m *userRepoMock) UpdateRole(ctx context.Context, userID int64, role model.Role) error {
	args := m.Called(ctx, userID, role)
	return args.Error(0)
}

func (m *userRepoMock) Delete(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type orderRepoMock struct{ mock.Mock }

func (m *orderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *orderRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	os, _ := args.Get(0).([]model.Order)
	return os, args.Error(1)
}

func (m *orderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *orderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *orderRepoMock) Delete(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *orderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	os, _ := args.Get(0).([]model.Order)
	return os, args.Get(1).(int64), args.Error(2)
}

type orderItemRepoMock struct{ mock.Mock }

func (m *orderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *orderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *orderItemRepoMock) DeleteByOrderID(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type cartRepoMock struct{ mock.Mock }

func (m *cartRepoMock) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *cartRepoMock) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *cartRepoMock) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	args := m.Called(ctx, cartID, status)
	return args.Error(0)
}

type cartItemRepoMock struct{ mock.Mock }

func (m *cartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *cartItemRepoMock) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartItemID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *cartItemRepoMock) UpsertByCartProductSize(ctx context.Context, cartID int64, productID int64, size string, addQty int64) error {
	args := m.Called(ctx, cartID, productID, size, addQty)
	return args.Error(0)
}

func (m *cartItemRepoMock) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	args := m.Called(ctx, cartItemID, qty)
	return args.Error(0)
}

func (m *cartItemRepoMock) DeleteByID(ctx context.Context, cartItemID int64) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *cartItemRepoMock) IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error) {
	args := m.Called(ctx, cartItemID, userID)
	return args.Bool(0), args.Error(1)
}

type productRepoMock struct{ mock.Mock }

func (m *productRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Get(1).(int64), args.Error(2)
}

func (m *productRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *productRepoMock) CountByCategoryID(ctx context.Context, categoryID int64) (int64, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *productRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *productRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *productRepoMock) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type inventoryRepoMock struct{ mock.Mock }

func (m *inventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	args := m.Called(ctx, productID, newStock)
	return args.Error(0)
}

func (m *inventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *inventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

func (m *inventoryRepoMock) CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error {
	args := m.Called(ctx, adjustment)
	return args.Error(0)
}

type addressRepoMock struct{ mock.Mock }

func (m *addressRepoMock) Create(ctx context.Context, a model.UserAddress) (model.UserAddress, error) {
	args := m.Called(ctx, a)
	created, _ := args.Get(0).(model.UserAddress)
	return created, args.Error(1)
}

func (m *addressRepoMock) FindByID(ctx context.Context, id int64) (model.UserAddress, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(model.UserAddress)
	return a, args.Error(1)
}

func (m *addressRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.UserAddress, error) {
	args := m.Called(ctx, userID)
	as, _ := args.Get(0).([]model.UserAddress)
	return as, args.Error(1)
}

type auditRepoMock struct{ mock.Mock }

func (m *auditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *auditRepoMock) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, f)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type categoryRepoMock struct{ mock.Mock }

func (m *categoryRepoMock) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	cs, _ := args.Get(0).([]model.Category)
	return cs, args.Error(1)
}

func (m *categoryRepoMock) FindByID(ctx context.Context, id int64) (model.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Category)
	return c, args.Error(1)
}

func (m *categoryRepoMock) Create(ctx context.Context, c model.Category) (model.Category, error) {
	args := m.Called(ctx, c)
	created, _ := args.Get(0).(model.Category)
	return created, args.Error(1)
}

func (m *categoryRepoMock) Update(ctx context.Context, c model.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *categoryRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// JWT発行スタブ
type issuerStub struct {
	token string
	err   error
}

func (s *issuerStub) Issue(userID int64, username string, role model.Role, now time.Time) (string, time.Time, error) {
	if s.err != nil {
		return "", time.Time{}, s.err
	}
	return s.token, now.Add(15 * time.Minute), nil
}
