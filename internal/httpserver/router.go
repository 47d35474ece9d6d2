package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"cartify/internal/domain"
	"cartify/internal/payment"
	accountsvc "cartify/internal/service/account"
	cartsvc "cartify/internal/service/cart"
	categorysvc "cartify/internal/service/category"
	ordersvc "cartify/internal/service/order"
	productsvc "cartify/internal/service/product"
	webhooksvc "cartify/internal/service/webhook"
	"cartify/internal/telemetry"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type accountService interface {
	authenticator
	Register(ctx context.Context, in accountsvc.Credentials) (*domain.User, error)
	Login(ctx context.Context, in accountsvc.Credentials) (*domain.Session, error)
	ResendConfirmation(ctx context.Context, email string) error
	ListUsers(ctx context.Context) ([]domain.User, error)
	RevokeSessions(ctx context.Context, caller domain.User, requested string) (string, error)
	DeleteAccount(ctx context.Context, caller domain.User, requested string) (string, error)
}

type productService interface {
	List(ctx context.Context, categoryID string) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, in productsvc.Input) (*domain.Product, error)
	Update(ctx context.Context, id string, in productsvc.Input) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type categoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
	Get(ctx context.Context, id string) (*domain.Category, error)
	Create(ctx context.Context, in categorysvc.Input) (*domain.Category, error)
	Update(ctx context.Context, id string, in categorysvc.Input) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

type cartService interface {
	List(ctx context.Context, userID string) ([]domain.CartItem, error)
	Add(ctx context.Context, userID string, in cartsvc.AddInput) (*domain.CartItem, error)
	SetQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.CartItem, error)
	Remove(ctx context.Context, userID, itemID string) error
}

type orderService interface {
	Create(ctx context.Context, user domain.User, in ordersvc.CreateInput) (*domain.Order, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Order, error)
	GetForUser(ctx context.Context, userID, id string) (*domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
}

type paymentService interface {
	CreateOrder(ctx context.Context, in payment.CreateOrderInput) (*payment.Order, error)
	Verify(in payment.VerifyInput) error
}

type webhookService interface {
	Handle(ctx context.Context, d webhooksvc.Delivery) (domain.WebhookStatus, error)
	ListRecent(ctx context.Context, limit int) ([]domain.WebhookEvent, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries the services behind the HTTP API.
type Deps struct {
	AccountSvc  accountService
	ProductSvc  productService
	CategorySvc categoryService
	CartSvc     cartService
	OrderSvc    orderService
	PaymentSvc  paymentService
	WebhookSvc  webhookService
	Metrics     *telemetry.Metrics

	AllowedOrigins []string
	MetricsHandler http.Handler
}

func (d Deps) validate() error {
	var missing []string
	if d.AccountSvc == nil {
		missing = append(missing, "AccountSvc")
	}
	if d.ProductSvc == nil {
		missing = append(missing, "ProductSvc")
	}
	if d.CategorySvc == nil {
		missing = append(missing, "CategorySvc")
	}
	if d.CartSvc == nil {
		missing = append(missing, "CartSvc")
	}
	if d.OrderSvc == nil {
		missing = append(missing, "OrderSvc")
	}
	if d.PaymentSvc == nil {
		missing = append(missing, "PaymentSvc")
	}
	if d.WebhookSvc == nil {
		missing = append(missing, "WebhookSvc")
	}
	if len(missing) > 0 {
		return fmt.Errorf("httpserver: missing dependencies %v", missing)
	}
	return nil
}

type api struct {
	deps   Deps
	logger *log.Logger
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db pinger, deps Deps) (*gin.Engine, error) {
	if logger == nil {
		return nil, errors.New("httpserver: logger required")
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if deps.Metrics == nil {
		deps.Metrics = telemetry.NopMetrics()
	}

	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.LoggerWithWriter(logger.Writer()),
		gin.CustomRecoveryWithWriter(logger.Writer(), func(c *gin.Context, recovered any) {
			logger.Printf("http: panic %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": internalMessage})
		}),
		cors.New(corsConfig(deps.AllowedOrigins)),
	)

	router.GET("/health", healthHandler)
	router.GET("/ready", readyHandler(db))
	if deps.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	a := &api{deps: deps, logger: logger}
	user := requireUser(deps.AccountSvc, logger)
	admin := []gin.HandlerFunc{user, requireAdmin()}

	authGroup := router.Group("/auth")
	authGroup.POST("/register", a.register)
	authGroup.POST("/signup", a.register)
	authGroup.POST("/login", a.login)
	authGroup.GET("/me", user, a.me)
	authGroup.POST("/resend-confirmation", a.resendConfirmation)

	products := router.Group("/products")
	products.GET("", a.listProducts)
	products.GET("/:id", a.getProduct)
	products.POST("", append(admin, a.createProduct)...)
	products.PUT("/:id", append(admin, a.updateProduct)...)
	products.DELETE("/:id", append(admin, a.deleteProduct)...)

	categories := router.Group("/categories")
	categories.GET("", a.listCategories)
	categories.GET("/:id", a.getCategory)
	categories.POST("", append(admin, a.createCategory)...)
	categories.PUT("/:id", append(admin, a.updateCategory)...)
	categories.DELETE("/:id", append(admin, a.deleteCategory)...)

	cart := router.Group("/cart", user)
	cart.GET("", a.listCart)
	cart.POST("", a.addToCart)
	cart.PUT("/:id", a.updateCartItem)
	cart.DELETE("/:id", a.deleteCartItem)

	orders := router.Group("/orders", user)
	orders.GET("", a.listOrders)
	orders.POST("", a.createOrder)
	orders.GET("/:id", a.getOrder)

	adminGroup := router.Group("/admin", user)
	adminGroup.GET("/users", requireAdmin(), a.adminUsers)
	adminGroup.GET("/orders", requireAdmin(), a.adminOrders)
	adminGroup.GET("/webhooks", requireAdmin(), a.adminWebhooks)
	adminGroup.POST("/revoke-session", a.revokeSession)
	adminGroup.POST("/delete-account", a.deleteAccount)

	router.POST("/payments/order", a.createPaymentOrder)
	router.POST("/payments/verify", a.verifyPayment)
	router.POST("/webhooks/event", a.webhookEvent)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "x-webhook-signature", "x-webhook-id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}
