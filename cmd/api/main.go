package main

import (
	"context"
	"net/http"
	"os"

	"github.com/fasalbajar/fasalbajar-backend/api/routes"
	"github.com/fasalbajar/fasalbajar-backend/internal/auth"
	"github.com/fasalbajar/fasalbajar-backend/internal/deliveries"
	"github.com/fasalbajar/fasalbajar-backend/internal/notifications"
	"github.com/fasalbajar/fasalbajar-backend/internal/orders"
	"github.com/fasalbajar/fasalbajar-backend/internal/payments"
	"github.com/fasalbajar/fasalbajar-backend/internal/products"
	"github.com/fasalbajar/fasalbajar-backend/internal/reviews"
	"github.com/fasalbajar/fasalbajar-backend/internal/suppliers"
	"github.com/fasalbajar/fasalbajar-backend/internal/users"
	"github.com/fasalbajar/fasalbajar-backend/pkg/auth/session"
	"github.com/fasalbajar/fasalbajar-backend/pkg/config"
	"github.com/fasalbajar/fasalbajar-backend/pkg/db"
	"github.com/fasalbajar/fasalbajar-backend/pkg/esewa"
	"github.com/fasalbajar/fasalbajar-backend/pkg/logger"
	"github.com/fasalbajar/fasalbajar-backend/pkg/migrate"
	"github.com/fasalbajar/fasalbajar-backend/pkg/pubsub"
	"github.com/fasalbajar/fasalbajar-backend/pkg/redis"
	"github.com/joho/godotenv"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pub/sub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pub/sub", err)
		}
	}()

	esewaClient, err := esewa.NewClient(context.Background(), cfg.Esewa, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap esewa client", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	publisher, err := notifications.NewPublisher(pubsubClient.NotificationPublisher(), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification publisher", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	supplierRepo := suppliers.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	userService, err := users.NewService(userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	supplierService, err := suppliers.NewService(supplierRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create supplier service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(products.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.NewRepository(dbClient.DB()), dbClient, publisher)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	deliveryService, err := deliveries.NewService(deliveries.NewRepository(dbClient.DB()), supplierRepo, publisher)
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery service", err)
		os.Exit(1)
	}

	paymentService, err := payments.NewService(payments.NewRepository(dbClient.DB()), dbClient, esewaClient, publisher)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	reviewService, err := reviews.NewService(reviews.NewRepository(dbClient.DB()), userRepo, publisher)
	if err != nil {
		logg.Error(context.Background(), "failed to create review service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			PubSub:         pubsubClient,
			SessionChecker: sessionManager,
			Auth:           authService,
			Register:       registerService,
			Users:          userService,
			Suppliers:      supplierService,
			Products:       productService,
			Orders:         orderService,
			Deliveries:     deliveryService,
			Payments:       paymentService,
			Reviews:        reviewService,
			Notifications:  notificationService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
