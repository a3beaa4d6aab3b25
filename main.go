package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"clothshop/internal/catalog"
	"clothshop/internal/config"
	"clothshop/internal/logging"
	"clothshop/internal/repositories"
	"clothshop/internal/server"
	"clothshop/internal/services"
	"clothshop/internal/webdav"
	"clothshop/pkg/rabbitmq"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.Setup(logging.Config{Mode: cfg.LogMode, Filename: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// --- Order storage ---
	orderRepo, err := newOrderRepository(cfg)
	if err != nil {
		zap.S().Fatalf("Failed to initialize order storage: %v", err)
	}

	// --- Identity ---
	verifier, err := newIdentityVerifier(cfg)
	if err != nil {
		zap.S().Fatalf("Failed to initialize identity store: %v", err)
	}

	// --- Order events (optional) ---
	var publisher services.OrderEventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			zap.S().Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		publisher = mqClient

		if err := mqClient.ConsumeOrderEvents(rabbitmq.LogOrderEvent); err != nil {
			zap.S().Errorf("Failed to start RabbitMQ consumer: %v", err)
		}
	}

	// --- Services ---
	productService := services.NewProductService(catalog.Load(cfg.CatalogPath))
	orderService := services.NewOrderService(orderRepo, publisher)
	authService := services.NewAuthService(verifier, cfg.AdminUser, cfg.AdminPass, cfg.SecretKey)

	app := server.NewApp(server.Deps{
		Products:   productService,
		Orders:     orderService,
		Auth:       authService,
		SecretKey:  cfg.SecretKey,
		RequestLog: true,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zap.S().Infof("Starting server on %s", cfg.ListenAddr())
		if err := app.Listen(cfg.ListenAddr()); err != nil {
			zap.S().Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	zap.S().Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		zap.S().Errorf("Error during Fiber shutdown: %v", err)
	}
	zap.S().Info("Server gracefully stopped")
}

func newOrderRepository(cfg *config.Config) (repositories.OrderRepository, error) {
	if cfg.StorageBackend == config.StorageMemory {
		zap.S().Warn("Using in-memory order storage; orders are lost on restart.")
		return repositories.NewMockOrderRepository(), nil
	}

	client, err := webdav.NewClient(webdav.Config{
		BaseURL:  cfg.WebDAVBase,
		Username: cfg.WebDAVUsername,
		Password: cfg.WebDAVPassword,
		Timeout:  cfg.StorageTimeout,
	})
	if err != nil {
		return nil, err
	}
	var opts []repositories.WebDAVOption
	if cfg.SerializeIndex {
		opts = append(opts, repositories.WithSerializedIndex())
	}
	return repositories.NewWebDAVOrderRepository(client, opts...), nil
}

func newIdentityVerifier(cfg *config.Config) (services.IdentityVerifier, error) {
	if cfg.AuthDSN == "" {
		return services.NewMockIdentityVerifier(services.DemoUsers())
	}

	db, err := repositories.OpenUserDB(cfg.AuthDSN)
	if err != nil {
		return nil, err
	}
	userRepo := repositories.NewGORMUserRepository(db)
	if err := services.SeedUsers(userRepo, services.DemoUsers()); err != nil {
		return nil, err
	}
	return services.NewRepositoryIdentityVerifier(userRepo), nil
}
