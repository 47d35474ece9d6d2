package httpserver

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cartify/internal/domain"
	"cartify/internal/payment"
	accountsvc "cartify/internal/service/account"
	cartsvc "cartify/internal/service/cart"
	categorysvc "cartify/internal/service/category"
	ordersvc "cartify/internal/service/order"
	productsvc "cartify/internal/service/product"
	webhooksvc "cartify/internal/service/webhook"
	"github.com/gin-gonic/gin"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

const (
	customerID = "00000000-0000-4000-8000-000000000001"
	adminID    = "00000000-0000-4000-8000-0000000000ad"
)

var tokens = map[string]domain.User{
	"customer-token": {ID: customerID, Email: "u1@example.com", Role: domain.RoleCustomer},
	"admin-token":    {ID: adminID, Email: "admin@example.com", Role: domain.RoleAdmin},
}

type stubAccountService struct {
	registerErr error
	loginErr    error
	revoked     string
	deleted     string
	lastLogin   accountsvc.Credentials
}

func (s *stubAccountService) Authenticate(_ context.Context, token string) (*domain.User, error) {
	u, ok := tokens[token]
	if !ok {
		return nil, domain.Unauthorized("invalid or expired token")
	}
	return &u, nil
}

func (s *stubAccountService) Register(_ context.Context, in accountsvc.Credentials) (*domain.User, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &domain.User{ID: "new", Email: in.Email}, nil
}

func (s *stubAccountService) Login(_ context.Context, in accountsvc.Credentials) (*domain.Session, error) {
	s.lastLogin = in
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &domain.Session{AccessToken: "customer-token", ExpiresIn: 3600, User: tokens["customer-token"]}, nil
}

func (s *stubAccountService) ResendConfirmation(context.Context, string) error { return nil }

func (s *stubAccountService) ListUsers(context.Context) ([]domain.User, error) {
	return []domain.User{tokens["customer-token"], tokens["admin-token"]}, nil
}

func (s *stubAccountService) RevokeSessions(_ context.Context, caller domain.User, requested string) (string, error) {
	s.revoked = accountsvc.ResolveTarget(caller, requested)
	return s.revoked, nil
}

func (s *stubAccountService) DeleteAccount(_ context.Context, caller domain.User, requested string) (string, error) {
	s.deleted = accountsvc.ResolveTarget(caller, requested)
	return s.deleted, nil
}

type stubProductService struct {
	products []domain.Product
	err      error
	created  productsvc.Input
}

func (s *stubProductService) List(context.Context, string) ([]domain.Product, error) {
	return s.products, s.err
}

func (s *stubProductService) Get(_ context.Context, id string) (*domain.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubProductService) Create(_ context.Context, in productsvc.Input) (*domain.Product, error) {
	s.created = in
	if in.Price == nil {
		return nil, domain.Validation("invalid price")
	}
	return &domain.Product{ID: "p-new", Name: in.Name, PriceCents: productsvc.ToCents(*in.Price)}, nil
}

func (s *stubProductService) Update(context.Context, string, productsvc.Input) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}

func (s *stubProductService) Delete(context.Context, string) error { return nil }

type stubCategoryService struct{}

func (stubCategoryService) List(context.Context) ([]domain.Category, error) {
	return []domain.Category{{ID: "c1", Name: "Shirts"}}, nil
}

func (stubCategoryService) Get(context.Context, string) (*domain.Category, error) {
	return nil, domain.ErrNotFound
}

func (stubCategoryService) Create(_ context.Context, in categorysvc.Input) (*domain.Category, error) {
	if len(strings.TrimSpace(in.Name)) < 2 {
		return nil, domain.Validation("invalid name")
	}
	return &domain.Category{ID: "c2", Name: in.Name}, nil
}

func (stubCategoryService) Update(context.Context, string, categorysvc.Input) (*domain.Category, error) {
	return nil, domain.ErrNotFound
}

func (stubCategoryService) Delete(context.Context, string) error { return nil }

type stubCartService struct {
	lastUser string
	lastAdd  cartsvc.AddInput
}

func (s *stubCartService) List(_ context.Context, userID string) ([]domain.CartItem, error) {
	s.lastUser = userID
	return []domain.CartItem{{ID: "i1", UserID: userID, ProductID: "p1", Quantity: 2}}, nil
}

func (s *stubCartService) Add(_ context.Context, userID string, in cartsvc.AddInput) (*domain.CartItem, error) {
	s.lastUser = userID
	s.lastAdd = in
	if in.Quantity < 1 {
		return nil, domain.Validation("invalid quantity")
	}
	return &domain.CartItem{ID: "i2", UserID: userID, ProductID: in.ProductID, Quantity: in.Quantity}, nil
}

func (s *stubCartService) SetQuantity(_ context.Context, userID, itemID string, q int) (*domain.CartItem, error) {
	return &domain.CartItem{ID: itemID, UserID: userID, Quantity: q}, nil
}

func (s *stubCartService) Remove(context.Context, string, string) error { return nil }

type stubOrderService struct {
	createErr error
	lastInput ordersvc.CreateInput
	failAll   bool
}

func (s *stubOrderService) Create(_ context.Context, user domain.User, in ordersvc.CreateInput) (*domain.Order, error) {
	s.lastInput = in
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &domain.Order{ID: "o1", UserID: user.ID, Status: domain.OrderStatusPending, TotalCents: 2998, Currency: "INR"}, nil
}

func (s *stubOrderService) ListForUser(_ context.Context, userID string) ([]domain.Order, error) {
	return []domain.Order{{ID: "o1", UserID: userID}}, nil
}

func (s *stubOrderService) GetForUser(context.Context, string, string) (*domain.Order, error) {
	return nil, domain.ErrNotFound
}

func (s *stubOrderService) ListAll(context.Context) ([]domain.Order, error) {
	if s.failAll {
		return nil, context.DeadlineExceeded
	}
	return []domain.Order{{ID: "o1"}, {ID: "o2"}}, nil
}

type stubWebhookService struct {
	status    domain.WebhookStatus
	err       error
	last      webhooksvc.Delivery
	lastLimit int
}

func (s *stubWebhookService) Handle(_ context.Context, d webhooksvc.Delivery) (domain.WebhookStatus, error) {
	s.last = d
	return s.status, s.err
}

func (s *stubWebhookService) ListRecent(_ context.Context, limit int) ([]domain.WebhookEvent, error) {
	s.lastLimit = limit
	return []domain.WebhookEvent{}, nil
}

type stubGateway struct {
	req payment.OrderRequest
	err error
}

func (g *stubGateway) CreateOrder(_ context.Context, req payment.OrderRequest) (*payment.Order, error) {
	g.req = req
	if g.err != nil {
		return nil, g.err
	}
	return &payment.Order{ID: "order_test", Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt}, nil
}

func testDeps() Deps {
	return Deps{
		AccountSvc:  &stubAccountService{},
		ProductSvc:  &stubProductService{},
		CategorySvc: stubCategoryService{},
		CartSvc:     &stubCartService{},
		OrderSvc:    &stubOrderService{},
		PaymentSvc:  payment.NewService(&stubGateway{}, "key_secret", "INR", nil),
		WebhookSvc:  &stubWebhookService{status: domain.WebhookProcessed},
	}
}

func newTestRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, deps)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

func doRequest(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func doRaw(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
