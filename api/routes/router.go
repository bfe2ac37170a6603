package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fasalbajar/fasalbajar-backend/api/controllers"
	"github.com/fasalbajar/fasalbajar-backend/api/middleware"
	authsvc "github.com/fasalbajar/fasalbajar-backend/internal/auth"
	deliverysvc "github.com/fasalbajar/fasalbajar-backend/internal/deliveries"
	notificationsvc "github.com/fasalbajar/fasalbajar-backend/internal/notifications"
	ordersvc "github.com/fasalbajar/fasalbajar-backend/internal/orders"
	paymentsvc "github.com/fasalbajar/fasalbajar-backend/internal/payments"
	productsvc "github.com/fasalbajar/fasalbajar-backend/internal/products"
	reviewsvc "github.com/fasalbajar/fasalbajar-backend/internal/reviews"
	suppliersvc "github.com/fasalbajar/fasalbajar-backend/internal/suppliers"
	usersvc "github.com/fasalbajar/fasalbajar-backend/internal/users"
	"github.com/fasalbajar/fasalbajar-backend/pkg/auth/session"
	"github.com/fasalbajar/fasalbajar-backend/pkg/config"
	"github.com/fasalbajar/fasalbajar-backend/pkg/enums"
	"github.com/fasalbajar/fasalbajar-backend/pkg/logger"
	"github.com/fasalbajar/fasalbajar-backend/pkg/redis"
)

// Pinger is a backing-store health probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DB     Pinger
	Redis  *redis.Client
	PubSub Pinger

	SessionChecker session.AccessSessionChecker

	Auth          authsvc.Service
	Register      authsvc.RegisterService
	Users         usersvc.Service
	Suppliers     suppliersvc.Service
	Products      productsvc.Service
	Orders        ordersvc.Service
	Deliveries    deliverysvc.Service
	Payments      paymentsvc.Service
	Reviews       reviewsvc.Service
	Notifications notificationsvc.Service
}

// NewRouter builds the chi router with the full marketplace surface.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
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
		r.Get("/ready", controllers.HealthReady(cfg, readinessProbes(deps)))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Register, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(cfg.JWT, deps.Auth, logg))
	})

	// Public catalog and review reads.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductsList(deps.Products, logg))
		r.Get("/{productId}", controllers.ProductsGet(deps.Products, logg))
	})
	r.Get("/api/v1/reviews/entity/{entityId}", controllers.ReviewsListForEntity(deps.Reviews, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))

		r.Route("/users/me", func(r chi.Router) {
			r.Get("/", controllers.UsersMe(deps.Users, logg))
			r.Patch("/", controllers.UsersUpdateProfile(deps.Users, logg))
		})

		r.Route("/farmer", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleFarmer), logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.FarmerProductsList(deps.Products, logg))
				r.Post("/", controllers.FarmerProductCreate(deps.Products, logg))
				r.Patch("/{productId}", controllers.FarmerProductUpdate(deps.Products, logg))
				r.Delete("/{productId}", controllers.FarmerProductDelete(deps.Products, logg))
			})

			r.Route("/order-items", func(r chi.Router) {
				r.Get("/", controllers.FarmerOrderItemsList(deps.Orders, logg))
				r.Post("/{itemId}/decision", controllers.FarmerOrderItemDecide(deps.Orders, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleBuyer), logg))
			r.Post("/", controllers.OrdersCheckout(deps.Orders, logg))
			r.Get("/", controllers.OrdersListMine(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrdersGet(deps.Orders, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleBuyer), logg))
			r.Post("/initiate", controllers.PaymentsInitiate(deps.Payments, logg))
			r.Get("/status/{transactionId}", controllers.PaymentsStatus(deps.Payments, logg))
		})

		r.Route("/supplier", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleSupplier), logg))

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", controllers.SupplierProfileGet(deps.Suppliers, logg))
				r.Put("/", controllers.SupplierProfileSave(deps.Suppliers, logg))
			})
			r.Post("/location", controllers.SupplierLocationReport(deps.Suppliers, logg))

			r.Route("/deliveries", func(r chi.Router) {
				r.Get("/available", controllers.DeliveriesAvailable(deps.Deliveries, logg))
				r.Post("/accept", controllers.DeliveriesAccept(deps.Deliveries, logg))
				r.Patch("/{itemId}/status", controllers.DeliveriesUpdateStatus(deps.Deliveries, logg))
				r.Get("/active", controllers.DeliveriesActive(deps.Deliveries, logg))
				r.Get("/history", controllers.DeliveriesHistory(deps.Deliveries, logg))
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Post("/", controllers.ReviewsCreate(deps.Reviews, logg))
			r.Patch("/{reviewId}", controllers.ReviewsUpdate(deps.Reviews, logg))
			r.Delete("/{reviewId}", controllers.ReviewsDelete(deps.Reviews, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.NotificationsList(deps.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.NotificationMarkRead(deps.Notifications, logg))
			r.Post("/read-all", controllers.NotificationsMarkAllRead(deps.Notifications, logg))
		})
	})

	return r
}

func readinessProbes(deps Deps) map[string]controllers.Pinger {
	probes := map[string]controllers.Pinger{}
	if deps.DB != nil {
		probes["db"] = deps.DB
	}
	if deps.Redis != nil {
		probes["redis"] = deps.Redis
	}
	if deps.PubSub != nil {
		probes["pubsub"] = deps.PubSub
	}
	return probes
}
