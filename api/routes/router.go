package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/smartsales/api/controllers"
	"github.com/angelmondragon/smartsales/api/middleware"
	"github.com/angelmondragon/smartsales/internal/auth"
	"github.com/angelmondragon/smartsales/internal/cart"
	"github.com/angelmondragon/smartsales/internal/catalog"
	"github.com/angelmondragon/smartsales/internal/checkout"
	"github.com/angelmondragon/smartsales/internal/orders"
	"github.com/angelmondragon/smartsales/internal/users"
	"github.com/angelmondragon/smartsales/pkg/auth/session"
	"github.com/angelmondragon/smartsales/pkg/config"
	"github.com/angelmondragon/smartsales/pkg/enums"
	"github.com/angelmondragon/smartsales/pkg/logger"
	"github.com/angelmondragon/smartsales/pkg/metrics"
	"github.com/angelmondragon/smartsales/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	authService auth.Service,
	cartService cart.Service,
	catalogService *catalog.Service,
	checkoutService checkout.Service,
	ordersService orders.Service,
	usersService users.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS),
	)

	// a nil *redis.Client must not reach the interface-typed middleware
	idempotency := middleware.Idempotency(nil, logg)
	readyDeps := map[string]controllers.Pinger{}
	if redisClient != nil {
		idempotency = middleware.Idempotency(redisClient, logg)
		readyDeps["redis"] = redisClient
	}
	if dbP != nil {
		readyDeps["database"] = dbP
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	authenticated := middleware.Auth(cfg.JWT, sessions, logg)

	r.Get("/", controllers.RoleRedirect(cfg.JWT))
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readyDeps))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			login := controllers.AuthLogin(authService, logg)
			if redisClient != nil {
				r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", login)
			} else {
				r.Post("/login", login)
			}
			r.With(authenticated).Post("/logout", controllers.AuthLogout(authService, logg))
			r.With(authenticated).Get("/session", controllers.AuthSession())
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", controllers.ListHandler(catalogService.ListProducts, logg))
			r.Get("/products/{id}", controllers.GetHandler(catalogService.GetProduct, logg))
			r.Get("/categories", controllers.ListHandler(catalogService.ListCategories, logg))
			r.Get("/brands", controllers.ListHandler(catalogService.ListBrands, logg))
			r.Get("/warranties", controllers.ListHandler(catalogService.ListWarranties, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.VisitorCart(cfg.Cart, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(cartService, logg))
				r.Delete("/", controllers.CartClear(cartService, logg))
				r.Post("/items", controllers.CartAddItem(cartService, catalogService, logg))
				r.Put("/items/{productID}", controllers.CartUpdateItem(cartService, logg))
				r.Delete("/items/{productID}", controllers.CartRemoveItem(cartService, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Use(authenticated)
				r.With(idempotency).Post("/", controllers.CheckoutCreate(cartService, checkoutService, logg))
				r.Get("/verify", controllers.CheckoutVerify(cartService, checkoutService, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/", controllers.OrdersList(ordersService, logg))
			r.Get("/{id}", controllers.OrderGet(ordersService, logg))
			r.With(idempotency).Post("/{id}/refund", controllers.OrderRefund(ordersService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(authenticated, middleware.RequireRole(enums.RoleAdmin, logg), idempotency)

		r.Get("/ping", controllers.AdminPing())

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.ProductCreate(catalogService, logg))
			r.Put("/{id}", controllers.ProductUpdate(catalogService, logg))
			r.Delete("/{id}", controllers.DeleteHandler(catalogService.DeleteProduct, logg))
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/{id}", controllers.GetHandler(catalogService.GetCategory, logg))
			r.Post("/", controllers.CreateHandler(catalogService.CreateCategory, logg))
			r.Put("/{id}", controllers.UpdateHandler(catalogService.UpdateCategory, logg))
			r.Delete("/{id}", controllers.DeleteHandler(catalogService.DeleteCategory, logg))
		})
		r.Route("/brands", func(r chi.Router) {
			r.Get("/{id}", controllers.GetHandler(catalogService.GetBrand, logg))
			r.Post("/", controllers.CreateHandler(catalogService.CreateBrand, logg))
			r.Put("/{id}", controllers.UpdateHandler(catalogService.UpdateBrand, logg))
			r.Delete("/{id}", controllers.DeleteHandler(catalogService.DeleteBrand, logg))
		})
		r.Route("/warranties", func(r chi.Router) {
			r.Get("/{id}", controllers.GetHandler(catalogService.GetWarranty, logg))
			r.Post("/", controllers.CreateHandler(catalogService.CreateWarranty, logg))
			r.Put("/{id}", controllers.UpdateHandler(catalogService.UpdateWarranty, logg))
			r.Delete("/{id}", controllers.DeleteHandler(catalogService.DeleteWarranty, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.UsersList(usersService, logg))
			r.Route("/clientes", func(r chi.Router) {
				r.Post("/", controllers.CreateHandler(usersService.CreateClient, logg))
				r.Get("/{id}", controllers.UserGet(usersService, enums.UserTypeCustomer, logg))
				r.Put("/{id}", controllers.UpdateHandler(usersService.UpdateClient, logg))
				r.Delete("/{id}", controllers.UserDelete(usersService, enums.UserTypeCustomer, logg))
			})
			r.Route("/admins", func(r chi.Router) {
				r.Post("/", controllers.CreateHandler(usersService.CreateAdmin, logg))
				r.Get("/{id}", controllers.UserGet(usersService, enums.UserTypeAdmin, logg))
				r.Put("/{id}", controllers.UpdateHandler(usersService.UpdateAdmin, logg))
				r.Delete("/{id}", controllers.UserDelete(usersService, enums.UserTypeAdmin, logg))
			})
		})
	})

	return r
}
