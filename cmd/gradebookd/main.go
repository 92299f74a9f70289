package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mind-engage/mindengage-gradebook/internal/analytics"
	api "github.com/mind-engage/mindengage-gradebook/internal/api/http"
	auth "github.com/mind-engage/mindengage-gradebook/internal/auth/middleware"
	"github.com/mind-engage/mindengage-gradebook/internal/config"
	"github.com/mind-engage/mindengage-gradebook/internal/db"
	"github.com/mind-engage/mindengage-gradebook/internal/gradebook"
	"github.com/mind-engage/mindengage-gradebook/internal/kv"
	"github.com/mind-engage/mindengage-gradebook/internal/logger"
	"github.com/mind-engage/mindengage-gradebook/internal/proficiency"
	"github.com/mind-engage/mindengage-gradebook/internal/rbac"
	"github.com/mind-engage/mindengage-gradebook/internal/standards"
	syncx "github.com/mind-engage/mindengage-gradebook/internal/sync"
)

func main() {
	cfg := config.FromEnv()

	log, err := logger.New(string(cfg.Mode))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.ScaleFile != "" {
		n, err := proficiency.Default().LoadYAMLFile(cfg.ScaleFile)
		if err != nil {
			log.Fatal("load proficiency scales", "file", cfg.ScaleFile, "error", err)
		}
		log.Info("loaded proficiency scales", "file", cfg.ScaleFile, "count", n)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", "error", err)
	}

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatal("db open failed", "error", err)
	}
	defer dbh.Close()
	store := gradebook.NewSQLStore(dbh)

	// --- Cache ---
	var cache kv.Store = kv.NewMemoryStore()
	var rdb *kv.RedisStore
	if cfg.RedisAddr != "" {
		rdb, err = kv.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPrefix)
		if err != nil {
			log.Fatal("redis connect failed", "addr", cfg.RedisAddr, "error", err)
		}
		defer rdb.Close()
		cache = rdb
	}

	settings := gradebook.Settings{
		Weights: standards.Weights{Traditional: cfg.TraditionalWeight, Standards: cfg.StandardsWeight},
		Analytics: analytics.Settings{
			TraditionalWeight: cfg.AnalyticsTraditionalWeight,
			StandardsWeight:   cfg.AnalyticsStandardsWeight,
			Scale:             cfg.Scale,
		},
		MasteryThreshold: cfg.MasteryThreshold,
		Scale:            cfg.Scale,
		CacheTTL:         cfg.CacheTTL,
	}
	opts := []gradebook.Option{
		gradebook.WithSettings(settings),
		gradebook.WithCache(cache),
		gradebook.WithLogger(log),
	}
	if cfg.EnableEventLog {
		opts = append(opts, gradebook.WithEvents(syncx.NewEventRepo(dbh)))
	}
	svc := gradebook.NewService(store, opts...)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.JWTSecret, users(cfg)...)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, api.RequestLogger(log), middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		api.MountGradebook(pr, svc, proficiency.Default())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(r.Context()); err != nil {
				http.Error(w, "cache unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(200)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "db", cfg.DBDriver, "redis", cfg.RedisAddr != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
	log.Info("stopped")
}

// users builds the login accounts: the admin plus every TEACHERS entry.
func users(cfg config.Config) []auth.User {
	out := []auth.User{{Username: cfg.AdminUser, PassHash: cfg.AdminPassHash, Role: rbac.RoleAdmin}}
	for _, t := range cfg.Teachers {
		name, hash, ok := strings.Cut(t, ":")
		if !ok {
			continue
		}
		out = append(out, auth.User{Username: name, PassHash: hash, Role: rbac.RoleTeacher})
	}
	return out
}
