package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"joyeria-be/internal/address"
	"joyeria-be/internal/auth"
	"joyeria-be/internal/cache"
	"joyeria-be/internal/cart"
	"joyeria-be/internal/category"
	"joyeria-be/internal/config"
	"joyeria-be/internal/db"
	"joyeria-be/internal/discount"
	"joyeria-be/internal/favorite"
	"joyeria-be/internal/logger"
	"joyeria-be/internal/metrics"
	"joyeria-be/internal/middleware"
	"joyeria-be/internal/order"
	"joyeria-be/internal/product"
	"joyeria-be/internal/setting"
	"joyeria-be/internal/tag"
	"joyeria-be/internal/transport"
	"joyeria-be/internal/user"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const (
	shutdownTimeout = 10 * time.Second
	healthTimeout   = 2 * time.Second
)

var (
	initDBFunc      = db.InitDB
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}

type handlers struct {
	health     httprouter.Handle
	users      *user.Handler
	products   *product.Handler
	categories *category.Handler
	tags       *tag.Handler
	carts      *cart.Handler
	discounts  *discount.Handler
	orders     *order.Handler
	settings   *setting.Handler
	favorites  *favorite.Handler
	addresses  *address.Handler
}

func setupRouter(h *handlers) *httprouter.Router {
	r := httprouter.New()
	authed, admin := middleware.RequireAuth, middleware.RequireAdmin

	r.GET("/health", h.health)

	// auth
	r.POST("/auth/register", h.users.Register)
	r.POST("/auth/login", h.users.Login)
	r.POST("/auth/refresh", h.users.Refresh)
	r.POST("/auth/logout", h.users.Logout)
	r.GET("/auth/me", authed(h.users.Me))

	// catalog
	r.GET("/products", h.products.List)
	r.POST("/products", admin(h.products.Create))
	r.GET("/products/:id", h.products.Get)
	r.PUT("/products/:id", admin(h.products.Update))
	r.DELETE("/products/:id", admin(h.products.Delete))
	r.POST("/products/:id/ratings", authed(h.products.Rate))

	r.GET("/categories", h.categories.List)
	r.POST("/categories", admin(h.categories.Create))
	r.GET("/categories/:id", h.categories.Get)
	r.PUT("/categories/:id", admin(h.categories.Update))
	r.DELETE("/categories/:id", admin(h.categories.Delete))

	r.GET("/tags", h.tags.List)
	r.POST("/tags", admin(h.tags.Create))
	r.GET("/tags/:id", h.tags.Get)
	r.PUT("/tags/:id", admin(h.tags.Update))
	r.DELETE("/tags/:id", admin(h.tags.Delete))

	// cart
	r.GET("/cart", authed(h.carts.Get))
	r.DELETE("/cart", authed(h.carts.Clear))
	r.POST("/cart/items", authed(h.carts.AddItem))
	r.PUT("/cart/items/:id", authed(h.carts.UpdateItem))
	r.DELETE("/cart/items/:id", authed(h.carts.RemoveItem))

	// discounts
	r.GET("/discounts", admin(h.discounts.List))
	r.POST("/discounts", admin(h.discounts.Create))
	r.GET("/discounts/:id", admin(h.discounts.Get))
	r.PUT("/discounts/:id", admin(h.discounts.Update))
	r.DELETE("/discounts/:id", admin(h.discounts.Delete))

	// orders
	r.GET("/orders", authed(h.orders.List))
	r.POST("/orders", authed(h.orders.Create))
	r.GET("/orders/:id", authed(h.orders.Get))
	r.PUT("/orders/:id", admin(h.orders.UpdateStatus))
	r.DELETE("/orders/:id", admin(h.orders.Delete))

	// settings
	r.GET("/settings", h.settings.List)
	r.GET("/settings/:key", h.settings.Get)
	r.PUT("/settings/:key", admin(h.settings.Put))
	r.DELETE("/settings/:key", admin(h.settings.Delete))

	// favorites
	r.GET("/favorites", authed(h.favorites.List))
	r.POST("/favorites", authed(h.favorites.Add))
	r.DELETE("/favorites/:productId", authed(h.favorites.Remove))

	// address book
	r.GET("/addresses", authed(h.addresses.List))
	r.POST("/addresses", authed(h.addresses.Create))
	r.GET("/addresses/:id", authed(h.addresses.Get))
	r.PUT("/addresses/:id", authed(h.addresses.Update))
	r.DELETE("/addresses/:id", authed(h.addresses.Delete))
	r.PUT("/addresses/:id/default", authed(h.addresses.SetDefault))

	// users
	r.GET("/users", admin(h.users.List))
	r.GET("/users/:id", admin(h.users.Get))
	r.DELETE("/users/:id", admin(h.users.Delete))

	r.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		transport.WriteJSONError(w, "route not found", http.StatusNotFound)
	})
	r.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		transport.WriteJSONError(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}

type healthBody struct {
	Status   string           `json:"status"`
	Database string           `json:"database"`
	Requests metrics.Snapshot `json:"requests"`
}

func healthHandler(database *sql.DB, m *metrics.HTTP) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		body := healthBody{Status: "ok", Database: "up", Requests: m.Snapshot()}
		code := http.StatusOK
		if err := database.PingContext(ctx); err != nil {
			logger.FromCtx(r.Context()).Warn("health check: database unreachable", zap.Error(err))
			body.Status, body.Database = "degraded", "down"
			code = http.StatusServiceUnavailable
		}
		transport.WriteJSON(w, code, body)
	}
}

// newServer wires repositories, services and handlers into the full
// middleware chain.
func newServer(cfg *config.Config, database *sql.DB, store cache.Store, m *metrics.HTTP, limiter *middleware.RateLimiter) http.Handler {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	productRepo := product.NewRepository(database)

	discountSvc := discount.NewService(discount.NewRepository(database), store)
	productSvc := product.NewService(productRepo, discountSvc)
	cartSvc := cart.NewService(cart.NewRepository(database), productRepo, discountSvc)
	addressSvc := address.NewService(address.NewRepository(database))
	orderSvc := order.NewService(order.NewRepository(database), productRepo, cartSvc, discountSvc, addressSvc)
	favoriteSvc := favorite.NewService(favorite.NewRepository(database), productRepo, discountSvc)
	userSvc := user.NewService(user.NewRepository(database), tokens)

	router := setupRouter(&handlers{
		health:     healthHandler(database, m),
		users:      user.NewHandler(userSvc, cfg.IsProduction()),
		products:   product.NewHandler(productSvc),
		categories: category.NewHandler(category.NewService(category.NewRepository(database))),
		tags:       tag.NewHandler(tag.NewService(tag.NewRepository(database))),
		carts:      cart.NewHandler(cartSvc),
		discounts:  discount.NewHandler(discountSvc),
		orders:     order.NewHandler(orderSvc),
		settings:   setting.NewHandler(setting.NewService(setting.NewRepository(database))),
		favorites:  favorite.NewHandler(favoriteSvc),
		addresses:  address.NewHandler(addressSvc),
	})

	// Auth wraps logging so the access log sees the user id; 429s are logged.
	var h http.Handler = router
	h = limiter.Middleware(h)
	h = middleware.LoggingMiddleware(m)(h)
	h = middleware.AuthMiddleware(tokens)(h)
	h = logger.RequestIDMiddleware(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)
	return h
}

// newCacheStore connects to redis when configured. The discount cache is
// optional, so a failed connection only downgrades to no caching.
func newCacheStore(ctx context.Context, cfg *config.Config) (cache.Store, func()) {
	if cfg.RedisAddr == "" {
		return cache.Nop{}, func() {}
	}

	client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.L().Warn("redis unavailable, discount cache disabled",
			zap.String("addr", cfg.RedisAddr),
			zap.Error(err),
		)
		return cache.Nop{}, func() {}
	}

	logger.L().Info("redis connected", zap.String("addr", cfg.RedisAddr))
	return cache.NewRedis(client), func() { _ = client.Close() }
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	database := initDBFunc(cfg)
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore := newCacheStore(ctx, cfg)
	defer closeStore()

	limiter := middleware.NewRateLimiter(cfg.InternalSecretKey)
	go limiter.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           newServer(cfg, database, store, metrics.NewHTTP(), limiter),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	log.Info("server stopped")
	return nil
}
