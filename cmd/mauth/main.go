package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/xxxsen/mauth/internal/config"
	"github.com/xxxsen/mauth/internal/db"
	"github.com/xxxsen/mauth/internal/handler"
	"github.com/xxxsen/mauth/internal/middleware"
	"github.com/xxxsen/mauth/internal/repo"
	"github.com/xxxsen/mauth/internal/service"
	"github.com/xxxsen/mauth/internal/session"
)

func main() {
	var configPath string
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "mauth",
		Short: "mauth account authentication server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run mauth server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded",
				zap.String("config", configPath),
				zap.String("env", cfg.Env),
				zap.String("db_type", cfg.Database.Type),
			)

			accounts, closeStore, err := openAccountRepo(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer closeStore()
			return runServer(cfg, accounts)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json, environment variables override it")
	runCmd.Flags().StringVar(&envFile, "env-file", "", "path to a .env file, defaults to ./.env when present")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func openAccountRepo(ctx context.Context, cfg config.DatabaseConfig) (repo.IAccountRepo, func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	switch cfg.Type {
	case config.DBTypePostgres:
		conn, err := db.OpenPostgres(cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.ApplyMigrations(conn); err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("migrations: %w", err)
		}
		return repo.NewPGAccountRepo(conn), closeSQL(conn), nil
	case config.DBTypeMemory:
		logutil.GetLogger(ctx).Warn("using in-memory account store, data is lost on restart")
		return repo.NewMemoryAccountRepo(), func() {}, nil
	default:
		client, err := db.OpenMongo(ctx, cfg.URI)
		if err != nil {
			return nil, nil, fmt.Errorf("open mongo: %w", err)
		}
		accounts := repo.NewMongoAccountRepo(client.Database(cfg.Name), repo.DefaultAccountCollection)
		if err := accounts.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("ensure indexes: %w", err)
		}
		return accounts, closeMongo(client), nil
	}
}

func closeSQL(conn *sql.DB) func() {
	return func() { _ = conn.Close() }
}

func closeMongo(client *mongo.Client) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}
}

func runServer(cfg *config.Config, accounts repo.IAccountRepo) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.Strings("client_url", cfg.ClientURL),
	)

	secret := []byte(cfg.JWTSecret)
	notifier := service.NewNotifier(service.NewEmailSender(cfg.Mail), service.DefaultSiteName)
	authService := service.NewAuthService(accounts, notifier, service.AuthOptions{
		JWTSecret:    secret,
		TokenTTL:     time.Hour * time.Duration(cfg.JWTTTLHours),
		VerifyOTPTTL: time.Hour * time.Duration(cfg.VerifyOTPTTLHours),
		ResetOTPTTL:  time.Minute * time.Duration(cfg.ResetOTPTTLMinutes),
	})
	cookies := session.CookieOptions{
		Production: cfg.IsProduction(),
		MaxAge:     24 * time.Hour * time.Duration(cfg.CookieMaxAgeDays),
	}

	deps := handler.RouterDeps{
		Auth:         handler.NewAuthHandler(authService, cookies),
		User:         handler.NewUserHandler(authService),
		Guard:        session.NewGuard(secret, nil),
		OTPRateLimit: time.Second * time.Duration(cfg.OTPRateLimitSeconds),
	}

	engine, err := webapi.NewEngine(
		"/api",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.ClientURL),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
