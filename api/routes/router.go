package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/webmarket/api/controllers"
	"github.com/angelmondragon/webmarket/api/middleware"
	"github.com/angelmondragon/webmarket/internal/analytics"
	"github.com/angelmondragon/webmarket/internal/auth"
	"github.com/angelmondragon/webmarket/internal/orders"
	"github.com/angelmondragon/webmarket/internal/products"
	"github.com/angelmondragon/webmarket/internal/users"
	"github.com/angelmondragon/webmarket/pkg/auth/session"
	"github.com/angelmondragon/webmarket/pkg/config"
	"github.com/angelmondragon/webmarket/pkg/enums"
	"github.com/angelmondragon/webmarket/pkg/logger"
	"github.com/angelmondragon/webmarket/pkg/metrics"
	pkgredis "github.com/angelmondragon/webmarket/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *pkgredis.Client,
	sessions session.AccessSessionChecker,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	authService auth.Service,
	registerService auth.RegisterService,
	productService products.Service,
	ordersService orders.Service,
	usersService users.Service,
	analyticsService analytics.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.App.AllowedOrigins),
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

	// a nil *Client must not reach the middleware as a non-nil interface
	var idemStore pkgredis.IdempotencyStore
	rateLimit := func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler { return next }
	}
	pingers := map[string]controllers.Pinger{"db": dbP}
	if redisClient != nil {
		idemStore = redisClient
		rateLimit = func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
			return middleware.AuthRateLimit(policy, redisClient, logg)
		}
		pingers["redis"] = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(rateLimit(loginPolicy)).Post("/login", controllers.AuthLogin(authService, logg))
			r.With(rateLimit(registerPolicy)).Post("/register", controllers.AuthRegister(registerService, authService, logg))
			r.Post("/refresh", controllers.AuthRefresh(authService, logg))
			r.Post("/logout", controllers.AuthLogout(authService, cfg.JWT, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(productService, logg))
			r.Get("/{id}", controllers.GetProduct(productService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, sessions, logg))
				r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))
				r.Post("/", controllers.AdminCreateProduct(productService, logg))
				r.Put("/{id}", controllers.AdminUpdateProduct(productService, logg))
				r.Delete("/{id}", controllers.AdminDeleteProduct(productService, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", controllers.CreateOrder(ordersService, logg))
				r.Get("/user/{userId}", controllers.ListUserOrders(ordersService, logg))
				r.Get("/{id}", controllers.GetOrder(ordersService, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))
					r.Get("/", controllers.AdminListOrders(ordersService, logg))
					r.Put("/{id}/status", controllers.AdminUpdateOrderStatus(ordersService, logg))
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/{id}", controllers.GetUser(usersService, logg))
				r.Put("/{id}", controllers.UpdateUser(usersService, logg))
			})

			r.With(middleware.RequireRole(enums.UserRoleAdmin, logg)).
				Get("/admin/analytics", controllers.AdminAnalytics(analyticsService, logg))
		})
	})

	return r
}
