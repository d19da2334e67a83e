// Package bootstrap wires configuration, storage, services and HTTP routing together.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/iatracker/internal/app/controllers"
	appMigrations "github.com/yigit/iatracker/internal/app/migrations"
	appRepos "github.com/yigit/iatracker/internal/app/repositories"
	appRoutes "github.com/yigit/iatracker/internal/app/routes"
	appServices "github.com/yigit/iatracker/internal/app/services"
	"github.com/yigit/iatracker/internal/config"
	"github.com/yigit/iatracker/internal/db"
	appMiddleware "github.com/yigit/iatracker/internal/middleware"
	pkgAuth "github.com/yigit/iatracker/internal/pkg/auth"
	"github.com/yigit/iatracker/internal/pkg/logger"
	"github.com/yigit/iatracker/internal/pkg/validation"
	"github.com/yigit/iatracker/internal/pkg/websocket"
	"github.com/yigit/iatracker/internal/seed"
)

// DefaultConfigPath is used when no path is given on the command line.
const DefaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	Controllers    *appControllers.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	JWTService     *pkgAuth.JWTService
	Hub            *websocket.Hub
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: cfg.Logging.Format == "text",
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to Postgres and, when auto_migrate is set, applies the embedded
// migrations. Outside production the default data is seeded as well.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if !cfg.Database.AutoMigrate {
		return database, nil
	}

	if _, err := Migrate(ctx, database, lgr); err != nil {
		database.Close()
		return nil, err
	}

	if !cfg.IsProduction() {
		if _, err := seed.Run(ctx, appRepos.NewRepositories(database.Pool), "", lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}
	return database, nil
}

// Migrate applies the embedded schema migrations and returns how many ran.
func Migrate(ctx context.Context, database *db.PostgresDB, lgr zerolog.Logger) (int, error) {
	lgr.Info().Msg("Running database migrations...")
	n, err := appMigrations.NewMigrator(database.Pool, lgr).Up(ctx, appMigrations.Files)
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return n, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Int("applied", n).Msg("Database migrations successfully applied.")
	return n, nil
}

// NewJWTService builds the token service from configuration.
func NewJWTService(cfg *config.Config) *pkgAuth.JWTService {
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  config.Duration(cfg.JWT.AccessTokenExpiration),
		RefreshTokenExp: config.Duration(cfg.JWT.RefreshTokenExpiration),
		TokenIssuer:     cfg.JWT.Issuer,
	})
}

// BuildDependencies initializes application repositories, services, and controllers.
// The returned hub must be started with Run before it delivers events.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Logger: lgr, Repos: repos}

	deps.JWTService = NewJWTService(cfg)
	deps.Hub = websocket.NewHub(logger.Component("websocket"), websocket.Options{
		AllowedOrigins: cfg.WebSocket.AllowedOrigins,
		PingInterval:   config.Duration(cfg.WebSocket.PingInterval),
	})

	deps.Services = appServices.NewServices(repos, deps.JWTService, deps.Hub, appServices.Limits{
		PrincipalLowPerformers: cfg.Analytics.PrincipalLowLimit,
		FacultyLowPerformers:   cfg.Analytics.FacultyLowLimit,
		LowMarkBound:           cfg.Analytics.LowMarkBound,
		NotificationList:       cfg.Notifications.DefaultListLimit,
	}, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.Controllers = appControllers.NewControllers(deps.Services, deps.Hub, lgr)
	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := validation.RegisterWithGin(); err != nil {
		lgr.Error().Err(err).Msg("Failed to register validation rules")
	}

	router := gin.New()
	router.Use(appMiddleware.Recovery(lgr), appMiddleware.RequestLogger(lgr))

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)
	return router
}
