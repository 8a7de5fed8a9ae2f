package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/devsaround/blog-api/internal/config"
	"github.com/devsaround/blog-api/internal/handler"
	"github.com/devsaround/blog-api/internal/httpx"
	"github.com/devsaround/blog-api/internal/middleware"
	"github.com/devsaround/blog-api/internal/repository"
	"github.com/devsaround/blog-api/internal/service"
	"github.com/devsaround/blog-api/internal/token"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := repository.RunMigrations(context.Background(), db); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	tokens := token.NewService(cfg.JWTSecret, cfg.JWTTTL)
	translate := httpx.Translator{Development: cfg.IsDevelopment()}

	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, tokens)
	authHandler := handler.NewAuthHandler(authService, translate)

	postRepo := repository.NewPostRepository(db)
	postService := service.NewPostService(postRepo, service.PostServiceOptions{
		ShowDrafts:      cfg.ShowDrafts,
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
	})
	seeder := service.NewSeeder(postRepo, service.SeederOptions{
		SourceURL:    cfg.SeedSourceURL,
		RequireEmpty: cfg.SeedRequireEmpty,
	})
	postHandler := handler.NewPostHandler(postService, seeder, translate)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.RateLimitRPS(), cfg.RateLimitMax))
			r.Post("/auth/signup", authHandler.HandleSignup)
			r.Post("/auth/login", authHandler.HandleLogin)
		})

		r.Post("/auth/logout", authHandler.HandleLogout)

		r.Get("/posts", postHandler.HandleList)
		r.Get("/posts/id/{id}", postHandler.HandleGetByID)
		r.Get("/posts/{slug}", postHandler.HandleGetBySlug)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokens))
			r.Get("/auth/me", authHandler.HandleMe)

			r.Post("/posts", postHandler.HandleCreate)
			r.Patch("/posts/{id}", postHandler.HandleUpdate)
			r.Delete("/posts/{id}", postHandler.HandleDelete)
			r.Get("/posts/my/posts", postHandler.HandleMyPosts)
			r.Post("/posts/seed", postHandler.HandleSeed)
		})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
