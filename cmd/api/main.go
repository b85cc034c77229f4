package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iqueue/staffing/internal/api"
	"github.com/iqueue/staffing/internal/api/handlers"
	"github.com/iqueue/staffing/internal/notify"
	"github.com/iqueue/staffing/internal/repository"
	"github.com/iqueue/staffing/internal/services"
	"github.com/iqueue/staffing/pkg/config"
	"github.com/iqueue/staffing/pkg/database"
	"github.com/iqueue/staffing/pkg/logger"
)

const notifyTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("starting iqueue api",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
	)

	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL, database.DefaultOptions(cfg.AppEnv))
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)
	log.Info("database connected")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer rdb.Close()

	queue := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer queue.Close()

	jwtSecret := []byte(cfg.JWTSecret)
	if len(jwtSecret) == 0 {
		if cfg.AppEnv == "production" {
			log.Fatal("JWT_SECRET must be set in production")
		}
		log.Warn("JWT_SECRET not set, using an insecure development secret")
		jwtSecret = []byte("change-me-in-production-please")
	}

	// Mail is enqueued off the request path; the worker delivers it.
	notifier := notify.NewAsync(notify.NewQueueNotifier(queue), notifyTimeout)
	defer notifier.Wait()

	store := repository.NewStore(db)
	opts := []services.Option{services.WithNotifier(notifier), services.WithLocation(cfg.Location())}
	shiftSvc := services.NewShiftService(store, opts...)
	visSvc := services.NewVisibilityService(store, opts...)
	userSvc := services.NewUserService(store, cfg.DefaultUserPassword)
	importSvc := services.NewImportService(store, shiftSvc, cfg.DefaultUserPassword)
	authSvc := services.NewAuthService(store.Users(), jwtSecret, cfg.JWTTTL)

	health := handlers.NewHealthHandler(map[string]handlers.Check{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
	})

	router := api.NewRouter(api.Dependencies{
		HMACSecret:     jwtSecret,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		AuthHandler:    handlers.NewAuthHandler(authSvc, cfg.JWTTTL),
		ShiftsHandler:  handlers.NewShiftsHandler(shiftSvc, visSvc),
		UsersHandler:   handlers.NewUsersHandler(userSvc, shiftSvc, visSvc),
		AdminHandler:   handlers.NewAdminHandler(userSvc, importSvc),
		HealthHandler:  health,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}
