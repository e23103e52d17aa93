// Package server is the composition root: it wires the database, media
// store, auth stack, services, and handlers onto the router, and owns the
// server lifecycle including graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/devforum/internal/auth"
	"github.com/sakif/devforum/internal/config"
	"github.com/sakif/devforum/internal/handler"
	"github.com/sakif/devforum/internal/mediastore"
	"github.com/sakif/devforum/internal/middleware"
	sqliteRepo "github.com/sakif/devforum/internal/repository/sqlite"
	"github.com/sakif/devforum/internal/service"
)

// Server owns the router and the resources that must be released on
// shutdown.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the whole dependency chain: database → media store → auth →
// services → handlers → routes. Each layer receives interfaces, not the
// layers below it.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// newMediaStore picks the object-storage backend. Without a MinIO endpoint
// the in-memory store serves local development; uploads then don't survive a
// restart, which the log line makes loud.
func (s *Server) newMediaStore() (mediastore.Store, error) {
	if s.cfg.MinIOEndpoint == "" {
		s.logger.Warn("MINIO_ENDPOINT not set, using in-memory media store; uploads will not persist")
		return mediastore.NewMemory(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := mediastore.NewMinIO(ctx, mediastore.MinIOConfig{
		Endpoint:      s.cfg.MinIOEndpoint,
		AccessKey:     s.cfg.MinIOAccessKey,
		SecretKey:     s.cfg.MinIOSecretKey,
		Bucket:        s.cfg.MinIOBucket,
		UseSSL:        s.cfg.MinIOUseSSL,
		PublicBaseURL: s.cfg.MediaBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting media store: %w", err)
	}
	return store, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	media, err := s.newMediaStore()
	if err != nil {
		return err
	}

	tokens, err := auth.NewTokenService(s.cfg.JWTSecret)
	if err != nil {
		return err
	}
	provider := auth.NewGitHubProvider(s.cfg.OAuthClientID, s.cfg.OAuthClientSecret, s.cfg.OAuthCallbackURL)

	posts := service.NewPostService(s.db, s.db, s.db, s.db, media, s.logger)
	comments := service.NewCommentService(s.db, s.db, media, s.logger)
	reports := service.NewReportService(s.db, s.db, s.db, s.db, s.logger)
	categories := service.NewCategoryService(s.db, s.db, s.logger)
	profiles := service.NewProfileService(s.db, media, s.logger)
	authSvc := service.NewAuthService(s.db, tokens, s.logger)

	postHandler := handler.NewPostHandler(posts, s.logger)
	commentHandler := handler.NewCommentHandler(comments, s.logger)
	reportHandler := handler.NewReportHandler(reports, s.logger)
	categoryHandler := handler.NewCategoryHandler(categories, s.logger)
	profileHandler := handler.NewProfileHandler(profiles, s.logger)
	authHandler := handler.NewAuthHandler(provider, authSvc, profiles,
		s.cfg.SecureCookies, s.cfg.RedirectAfterLogin, s.logger)

	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/login", authHandler.HandleLogin)
		r.Get("/callback", authHandler.HandleCallback)
		r.Post("/logout", authHandler.HandleLogout)
	})

	s.router.Route("/api", func(r chi.Router) {
		// Public reads. OptionalAuth attaches identity when present so
		// future personalization doesn't need a route change.
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))
			r.Get("/categories", categoryHandler.HandleList)
			r.Get("/posts", postHandler.HandleList)
			r.Get("/posts/{id}", postHandler.HandleGet)
			r.Get("/posts/{id}/comments", commentHandler.HandleList)
			r.Get("/profiles/{id}", profileHandler.HandleGet)
		})

		// Everything that writes, plus admin surfaces.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/me", authHandler.HandleMe)

			r.Post("/posts", postHandler.HandleCreate)
			r.Put("/posts/{id}", postHandler.HandleEdit)
			r.Delete("/posts/{id}", postHandler.HandleDelete)
			r.Post("/posts/{id}/comments", commentHandler.HandleCreate)

			r.Post("/categories", categoryHandler.HandleCreate)
			r.Delete("/categories/{id}", categoryHandler.HandleDelete)

			r.Post("/reports", reportHandler.HandleFile)
			r.Get("/reports", reportHandler.HandleList)
			r.Patch("/reports/{id}", reportHandler.HandleSetStatus)

			r.Put("/profiles/me", profileHandler.HandleUpdate)
			r.Patch("/profiles/{id}/status", profileHandler.HandleSetStatus)
		})
	})

	return nil
}

// Start runs the server until a shutdown signal arrives, then drains
// in-flight requests and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
