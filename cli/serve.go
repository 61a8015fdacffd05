package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/propscore/leadscore/backend/config"
	"github.com/propscore/leadscore/backend/handler"
	"github.com/propscore/leadscore/backend/middleware"
	"github.com/propscore/leadscore/backend/pkg/logger"
	"github.com/propscore/leadscore/backend/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the lead scoring HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	// Load the classifier artifact. A missing artifact is not fatal: the
	// service starts degraded and /score answers 503 until a model exists.
	var classifier service.Classifier
	artifact, err := service.LoadModelArtifact(context.Background(), &cfg.Model)
	if err != nil {
		slog.Warn("model artifact not loaded, scoring disabled", "error", err)
	} else {
		clf, err := service.NewLogisticClassifier(artifact)
		if err != nil {
			return fmt.Errorf("invalid model artifact: %w", err)
		}
		classifier = clf
		slog.Info("model loaded", "features", len(clf.FeatureNames()))
	}

	rules, err := service.LoadPhraseRules(cfg.Reranker.RulesPath)
	if err != nil {
		return fmt.Errorf("failed to load reranker rules: %w", err)
	}

	reranker := service.NewReranker(rules)
	ledger := service.NewLedger()

	leadHandler := handler.NewLeadHandler(classifier, reranker, ledger)
	authHandler := handler.NewAuthHandler(cfg)

	router := newRouter(cfg, leadHandler, authHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server exited gracefully")
	return nil
}

func newRouter(cfg *config.Config, leadHandler *handler.LeadHandler, authHandler *handler.AuthHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New() // Use New() instead of Default() to avoid default middleware

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(corsMiddleware())
	router.Use(middleware.RateLimit(cfg.RateLimit.Requests,
		time.Duration(cfg.RateLimit.WindowSeconds)*time.Second))

	router.GET("/", leadHandler.Root)
	router.GET("/health", leadHandler.Health)
	router.POST("/score", leadHandler.Score)

	leads := router.Group("/leads")
	if cfg.Auth.Enabled {
		leads.Use(middleware.AuthRequired(&cfg.Auth))
	}
	{
		leads.GET("", leadHandler.List)
		leads.GET("/stats", leadHandler.Stats)
	}

	if cfg.Auth.Enabled {
		api := router.Group("/api")
		api.POST("/auth/login", authHandler.Login)

		protected := api.Group("/")
		protected.Use(middleware.AuthRequired(&cfg.Auth))
		protected.GET("/auth/me", authHandler.GetCurrentUser)
	}

	return router
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
