package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yigit/iatracker/internal/app/repositories"
	"github.com/yigit/iatracker/internal/bootstrap"
	"github.com/yigit/iatracker/internal/config"
	"github.com/yigit/iatracker/internal/db"
	"github.com/yigit/iatracker/internal/pkg/websocket"
)

// Server holds the state for the HTTP server.
type Server struct {
	config   *config.Config
	router   *gin.Engine
	database *db.PostgresDB
	hub      *websocket.Hub
	logger   zerolog.Logger
	http     *http.Server
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer(ctx context.Context, configPath string) (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	database, err := bootstrap.SetupDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	deps := bootstrap.BuildDependencies(cfg, repositories.NewRepositories(database.Pool), lgr)

	return &Server{
		config:   cfg,
		router:   bootstrap.SetupRouter(cfg, deps, lgr),
		database: database,
		hub:      deps.Hub,
		logger:   lgr,
	}, nil
}

// Run serves HTTP and the websocket hub until ctx is cancelled, then shuts both down.
func (s *Server) Run(ctx context.Context) error {
	s.http = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  config.Duration(s.config.Server.ReadTimeout),
		WriteTimeout: config.Duration(s.config.Server.WriteTimeout),
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info().Msg("Shutdown requested, stopping HTTP server...")
		return s.shutdownHTTP()
	})

	err := g.Wait()
	s.close()
	return err
}

func (s *Server) shutdownHTTP() error {
	ctx, cancel := context.WithTimeout(context.Background(), config.Duration(s.config.Server.ShutdownTimeout))
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Msg("HTTP server shutdown error")
		return err
	}
	s.logger.Info().Msg("HTTP server gracefully stopped.")
	return nil
}

func (s *Server) close() {
	if s.database != nil {
		s.logger.Info().Msg("Closing database connection pool...")
		s.database.Close()
	}
	s.logger.Info().Msg("Server shutdown process complete.")
}
