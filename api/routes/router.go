package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jtrevino/storefront-backend/api/controllers"
	"github.com/jtrevino/storefront-backend/api/middleware"
	"github.com/jtrevino/storefront-backend/internal/cart"
	"github.com/jtrevino/storefront-backend/internal/catalog"
	"github.com/jtrevino/storefront-backend/internal/checkout"
	"github.com/jtrevino/storefront-backend/internal/orders"
	"github.com/jtrevino/storefront-backend/internal/reviews"
	"github.com/jtrevino/storefront-backend/internal/users"
	"github.com/jtrevino/storefront-backend/internal/wishlist"
	"github.com/jtrevino/storefront-backend/pkg/auth/session"
	"github.com/jtrevino/storefront-backend/pkg/config"
	"github.com/jtrevino/storefront-backend/pkg/db"
	"github.com/jtrevino/storefront-backend/pkg/logger"
	"github.com/jtrevino/storefront-backend/pkg/metrics"
	"github.com/jtrevino/storefront-backend/pkg/redis"
)

// Services bundles the wired service layer handed to the router.
type Services struct {
	Catalog  catalog.Service
	Cart     cart.Service
	Checkout checkout.Service
	Orders   orders.Service
	Reviews  reviews.Service
	Wishlist wishlist.Service
	Users    users.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	svcs Services,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	httpMetrics := metrics.NewHTTPMetrics(registry)

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(svcs.Users, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Users, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Users, cfg.JWT, logg))
		r.With(middleware.Auth(cfg.JWT, sessions, logg)).Post("/logout", controllers.AuthLogout(svcs.Users, logg))
	})

	// Public storefront. OptionalAuth lets signed-in visitors see wishlist
	// state on product pages; CartSession gives guests a cart.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, sessions, logg))
		r.Use(middleware.CartSession(logg))

		r.Get("/home", controllers.Home(svcs.Catalog, logg))
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(svcs.Catalog, logg))
			r.Get("/{slug}", controllers.ProductDetail(svcs.Catalog, svcs.Reviews, svcs.Wishlist, logg))
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(svcs.Catalog, logg))
			r.Get("/{slug}", controllers.CategoryDetail(svcs.Catalog, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartView(svcs.Cart, logg))
			r.Post("/items", controllers.CartAdd(svcs.Cart, logg))
			r.Put("/items", controllers.CartUpdate(svcs.Cart, logg))
			r.Delete("/items/{productId}", controllers.CartRemove(svcs.Cart, logg))
		})
	})

	// Signed-in surface.
	r.Route("/api/v1/account", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Post("/checkout", controllers.Checkout(svcs.Checkout, logg))
		r.Get("/profile", controllers.Profile(svcs.Users, svcs.Orders, logg))
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(svcs.Orders, logg))
		})
		r.Post("/reviews", controllers.ReviewSubmit(svcs.Reviews, logg))
		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistList(svcs.Wishlist, logg))
			r.Post("/toggle", controllers.WishlistToggle(svcs.Wishlist, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(svcs.Orders, logg))
			r.Patch("/{orderId}/status", controllers.AdminOrderStatusUpdate(svcs.Orders, logg))
		})
	})

	return r
}
