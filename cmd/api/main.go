package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"portfolio/internal/auth"
	"portfolio/internal/authclient"
	"portfolio/internal/config"
	"portfolio/internal/handler"
	"portfolio/internal/httpmiddleware"
	"portfolio/internal/message"
	"portfolio/internal/photo"
	"portfolio/internal/queue"
	"portfolio/internal/storage"
	"portfolio/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	cfg.RequireBackend()

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.EnsureSchema(context.Background()); err != nil {
		return err
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "portfolio:cleanup")
	}

	// Hosted storage and auth clients (nil when not configured)
	var storageClient *storage.Client
	var authClient *authclient.Client
	if cfg.SupabaseURL != "" && cfg.SupabaseAnonKey != "" {
		storageClient = storage.New(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.StorageBucket)
		authClient = authclient.New(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		log.Println("hosted backend configured:", cfg.SupabaseURL)
	}

	var objectStore photo.ObjectStore
	if storageClient != nil {
		objectStore = storageClient
	}
	photos := photo.NewService(photo.NewRepository(db.Client), objectStore, q, cfg.PageSize)
	messages := message.NewService(message.NewRepository(db.Client))
	h := handler.New(photos, messages, authClient, db, redisClient, cfg.SiteBaseURL)

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", h.Healthz)
	r.GET("/sitemap.xml", h.Sitemap)

	v1 := r.Group("/v1")
	v1.GET("/photos", h.ListPhotos)
	v1.GET("/photos/featured", h.FeaturedPhotos)
	v1.GET("/photos/categories", h.ListCategories)
	v1.GET("/photos/:id", h.GetPhoto)
	v1.POST("/contact", h.Contact)

	v1.POST("/auth/login", h.Login)
	v1.POST("/auth/magic-link", h.MagicLink)
	v1.POST("/auth/logout", h.Logout)

	admin := v1.Group("/admin", auth.AdminAuth(cfg.SupabaseJWTKey))
	admin.GET("/photos", h.AdminPhotos)
	admin.POST("/photos", h.CreatePhoto)
	admin.PUT("/photos/:id", h.UpdatePhoto)
	admin.DELETE("/photos/:id", h.DeletePhoto)
	admin.GET("/messages", h.AdminMessages)
	admin.DELETE("/messages/:id", h.DeleteMessage)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced shutdown: %v", err)
	}

	log.Println("server exited")
	return nil
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
