package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exportdocs/cmd"
	"exportdocs/internal/adapters/out/kafka"
	"exportdocs/internal/adapters/out/postgres"
	"exportdocs/internal/adapters/out/storage/gridfs"
	"exportdocs/internal/adapters/out/storage/localfs"
	"exportdocs/internal/core/application/usecases/commands"
	"exportdocs/internal/core/domain/model/user"
	"exportdocs/internal/core/ports"
	"exportdocs/internal/pkg/metrics"

	"github.com/labstack/gommon/log"
	"gorm.io/gorm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	configs, err := cmd.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading .env file: %v", err)
	}
	if err = configs.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	gormDB := openDatabase(configs)

	storage, closeStorage := openStorage(ctx, configs)
	defer closeStorage()

	publisher, closePublisher := openPublisher(configs, logger)
	defer closePublisher()

	app, err := cmd.NewCompositionRoot(configs, gormDB, storage, publisher, metrics.New(), logger)
	if err != nil {
		log.Fatalf("Failed to wire application: %v", err)
	}

	seedAdmin(ctx, app, configs, logger)

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		log.Fatal("Failed to start jobs:", err)
	}
	defer jobManager.StopAll()

	startWebServer(ctx, app, configs.HTTPPort, logger)
}

func openDatabase(configs cmd.Config) *gorm.DB {
	dsn := postgres.DSN(configs.DBHost, configs.DBPort, configs.DBUser, configs.DBPassword, configs.DBName, configs.DBSslMode)
	gormDB, err := postgres.Open(dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err = postgres.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	return gormDB
}

func openStorage(ctx context.Context, configs cmd.Config) (ports.ImageStorage, func()) {
	if configs.StorageDriver == "gridfs" {
		client, err := gridfs.Connect(ctx, configs.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		storage := gridfs.New(client.Database(configs.MongoDatabase), gridfs.DefaultBucket)
		return storage, func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}
	}

	storage, err := localfs.New(configs.StorageDir)
	if err != nil {
		log.Fatalf("Failed to prepare storage directory: %v", err)
	}
	return storage, func() {}
}

func openPublisher(configs cmd.Config, logger *slog.Logger) (ports.EventPublisher, func()) {
	if len(configs.KafkaBrokers) == 0 {
		return kafka.NewLogPublisher(logger), func() {}
	}

	publisher := kafka.NewStatusChangedPublisher(configs.KafkaBrokers, configs.KafkaShipmentStatusTopic, logger)
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close Kafka writer", "error", err)
		}
	}
}

// seedAdmin creates the configured superuser on first start.
func seedAdmin(ctx context.Context, app cmd.CompositionRoot, configs cmd.Config, logger *slog.Logger) {
	if configs.AdminUsername == "" {
		return
	}

	createUser, err := commands.NewBootstrapUserCommand(
		configs.AdminUsername, configs.AdminUsername, configs.AdminPassword,
		user.Role{Admin: true, Superuser: true},
	)
	if err != nil {
		log.Fatalf("Invalid admin account: %v", err)
	}

	handler := app.CreateCreateUserCommandHandler()
	if _, err = handler.Handle(ctx, createUser); err != nil {
		if errors.Is(err, ports.ErrDuplicateUsername) {
			return
		}
		log.Fatalf("Failed to create admin account: %v", err)
	}
	logger.InfoContext(ctx, "Admin account created", "username", configs.AdminUsername)
}

func startWebServer(ctx context.Context, app cmd.CompositionRoot, port string, logger *slog.Logger) {
	e, err := app.CreateHTTPServer()
	if err != nil {
		log.Fatalf("Failed to create HTTP server: %v", err)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server listening", "port", port)
	if err = e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		e.Logger.Fatal(err)
	}
}
