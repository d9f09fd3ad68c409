package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/gana36/billbeam/internal/auth"
	"github.com/gana36/billbeam/internal/config"
	"github.com/gana36/billbeam/internal/extract"
	"github.com/gana36/billbeam/internal/imagestore"
	"github.com/gana36/billbeam/internal/middleware"
	"github.com/gana36/billbeam/internal/service"
	"github.com/gana36/billbeam/internal/session"
	"github.com/gana36/billbeam/internal/storage"
	"github.com/gana36/billbeam/internal/storage/postgres"
	"github.com/gana36/billbeam/internal/storage/sqlite"
	"github.com/gana36/billbeam/pkg/api/apiconnect"
)

// apiPrefix is the path prefix shared by every Connect procedure.
const apiPrefix = "/billbeam.v1."

// app holds the long-lived dependencies of the server.
type app struct {
	cfg       *config.Config
	store     storage.Store
	sessions  *session.Manager
	jwt       *auth.JWTManager
	google    *auth.GoogleAuthenticator
	extractor extract.Extractor
	images    imagestore.Store
	registry  *prometheus.Registry
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		store:    store,
		sessions: session.NewManager(cfg.SessionTTL),
		jwt:      auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
		images:   imagestore.Discard{},
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if cfg.InsecureJWTSecret() {
		slog.Warn("Using the development JWT secret; set JWT_SECRET in production")
	}

	a.google = auth.NewGoogleAuthenticator(auth.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	}, a.jwt, store)
	slog.Info("Google sign-in", "enabled", a.google != nil)

	if cfg.GeminiAPIKey != "" {
		extractor, err := extract.NewGeminiExtractor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.extractor = extractor
		slog.Info("Receipt extraction enabled", "model", cfg.GeminiModel)
	} else {
		slog.Warn("GEMINI_API_KEY not set; receipt capture is disabled")
	}

	if cfg.S3Bucket != "" {
		images, err := imagestore.NewS3Store(ctx, imagestore.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.images = images
		slog.Info("Receipt images archived", "bucket", cfg.S3Bucket)
	}

	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres storage: %w", err)
		}
		slog.Info("Storage initialized", "driver", "postgres")
		return store, nil
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite storage: %w", err)
		}
		slog.Info("Storage initialized", "driver", "sqlite", "database", cfg.DBPath)
		return store, nil
	}
}

// Close stops the session janitor and closes storage.
func (a *app) Close() {
	a.sessions.Close()
	if err := a.store.Close(); err != nil {
		slog.Error("Failed to close storage", "error", err)
	}
}

// handler builds the full HTTP handler. Call it once; it registers metrics.
func (a *app) handler() http.Handler {
	metrics := middleware.NewMetrics(a.registry, func() float64 { return float64(a.sessions.Len()) })

	// Auth runs first so the logger and metrics see the caller.
	interceptors := connect.WithInterceptors(
		middleware.OptionalAuth(a.jwt),
		middleware.LoggingInterceptor(),
		metrics.Interceptor(),
	)
	// Photos arrive base64-encoded inside JSON.
	readMax := connect.WithReadMaxBytes(extract.MaxImageBytes * 2)

	sessionOpts := []service.SessionOption{
		service.WithImageStore(a.images),
		service.WithMetrics(metrics),
	}
	if a.extractor != nil {
		sessionOpts = append(sessionOpts, service.WithExtractor(a.extractor))
	}
	logger := slog.Default().With("component", "auth")

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewSessionServiceHandler(
		service.NewSessionService(a.sessions, a.store, sessionOpts...), interceptors, readMax))
	mux.Handle(apiconnect.NewReceiptServiceHandler(service.NewReceiptService(a.store), interceptors))
	mux.Handle(apiconnect.NewGroupServiceHandler(service.NewGroupService(a.store), interceptors))
	mux.Handle(apiconnect.NewAuthServiceHandler(
		service.NewAuthService(auth.NewPasswordAuthenticator(a.store), a.google, a.jwt, a.store, logger), interceptors))

	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{Registry: a.registry}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/", staticHandler(a.cfg.StaticPath))

	c := cors.New(cors.Options{
		AllowedOrigins: a.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Connect-Protocol-Version", "Connect-Timeout-Ms"},
		ExposedHeaders: []string{"Connect-Protocol-Version", "Connect-Timeout-Ms"},
	})

	return middleware.RequestLogger(c.Handler(mux))
}

// staticHandler serves the web client. Unknown paths get index.html so client-side
// routes such as the Google callback load the app.
func staticHandler(staticPath string) http.Handler {
	staticDir, err := filepath.Abs(staticPath)
	if err != nil {
		staticDir = staticPath
	}
	slog.Info("Serving static files", "path", staticDir)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, apiPrefix) {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(staticDir, filepath.Clean("/"+urlPath))
		if info, err := os.Stat(filePath); err != nil || info.IsDir() {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}

		http.ServeFile(w, r, filePath)
	})
}
