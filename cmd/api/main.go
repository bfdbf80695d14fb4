package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	_ "github.com/redmonkez12/profile-api/docs" // Swagger docs (generated)
	"github.com/redmonkez12/profile-api/internal/auth"
	"github.com/redmonkez12/profile-api/internal/avatar"
	"github.com/redmonkez12/profile-api/internal/config"
	"github.com/redmonkez12/profile-api/internal/database"
	httpServer "github.com/redmonkez12/profile-api/internal/http"
	"github.com/redmonkez12/profile-api/internal/logging"
	"github.com/redmonkez12/profile-api/internal/profile"
	"github.com/redmonkez12/profile-api/internal/ratelimit"
	"github.com/redmonkez12/profile-api/internal/storage"
)

// @title           Profile API
// @version         1.0
// @description     Edit-profile service: read, watch and update a user's profile record and avatar.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"storage_driver", cfg.Storage.Driver,
	)

	ctx := context.Background()

	db, err := database.Open(ctx, cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if cfg.Server.IsDevelopment() {
		if err := database.CreateSchema(ctx, db); err != nil {
			return err
		}
	}

	redisClient, err := initRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	images, err := initStorage(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	service := profile.NewService(
		profile.NewRepository(db),
		images,
		profile.NewRedisNotifier(redisClient),
		logger,
		profile.Options{
			PlaceholderImage: cfg.Profile.PlaceholderImage,
			Avatar: avatar.Options{
				MaxEdge:   cfg.Profile.AvatarMaxEdge,
				Quality:   cfg.Profile.AvatarJPEGQuality,
				MaxPixels: cfg.Profile.AvatarMaxPixels,
			},
		},
	)

	saveLimiter := ratelimit.NewLimiter(redisClient, cfg.Profile.SaveLimit, cfg.Profile.SaveLimitWindow)
	profileHandler := profile.NewHandler(service, saveLimiter, cfg.Profile.MaxUploadBytes, cfg.Profile.EventsPingInterval)

	pasetoService, err := auth.NewPasetoService(cfg.Auth.PasetoKey)
	if err != nil {
		return fmt.Errorf("failed to initialize PASETO service: %w", err)
	}
	authMiddleware := auth.NewMiddleware(pasetoService)

	router := httpServer.NewRouter(cfg, profileHandler, authMiddleware, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

// initStorage builds the avatar store for the configured driver
func initStorage(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Driver {
	case config.StorageDriverS3:
		client, err := storage.NewS3Client(ctx, cfg.Endpoint, cfg.Region, cfg.AccessKey, cfg.SecretKey)
		if err != nil {
			return nil, err
		}
		return storage.NewS3Store(client, cfg.Bucket, cfg.PublicBaseURL), nil
	default:
		client, err := storage.NewMinioClient(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.UseSSL)
		if err != nil {
			return nil, err
		}
		store := storage.NewMinioStore(client, cfg.Bucket, cfg.Region, cfg.PublicBaseURL)
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}
}
