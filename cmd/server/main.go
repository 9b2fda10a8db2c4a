package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/Shehriyar31/pp-Live/internal/database"
	"github.com/Shehriyar31/pp-Live/internal/events"
	"github.com/Shehriyar31/pp-Live/internal/handlers"
	mW "github.com/Shehriyar31/pp-Live/internal/middleware"
	"github.com/Shehriyar31/pp-Live/internal/services"
)

func main() {
	// Initialize config
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")

	if err := viper.ReadInConfig(); err != nil {
		logrus.Infof("Config file not found, using defaults: %v", err)
	}

	// Initialize infrastructure
	db := database.InitDatabase()
	defer db.Close()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}
	publisher := events.New(redisClient)

	// Initialize services
	ledgerService := services.NewLedgerService(db, publisher)
	referralService := services.NewReferralService(db, ledgerService, publisher)
	requestService := services.NewRequestService(db, ledgerService, referralService, publisher)
	spinnerService := services.NewSpinnerService(db, ledgerService, publisher)
	videoService := services.NewVideoService(db, ledgerService, publisher)
	accountService := services.NewAccountService(db, ledgerService, publisher)
	passwordResetService := services.NewPasswordResetService(db, publisher)

	requestHandler := handlers.NewRequestHandler(requestService)
	spinnerHandler := handlers.NewSpinnerHandler(spinnerService)
	videoHandler := handlers.NewVideoHandler(videoService)
	accountHandler := handlers.NewAccountHandler(accountService, ledgerService, referralService)
	passwordResetHandler := handlers.NewPasswordResetHandler(passwordResetService)

	// Setup router
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Get("/account", accountHandler.Me)
			r.Get("/transactions", accountHandler.Transactions)
			r.Get("/referrals", accountHandler.Referrals)

			r.Post("/requests/deposit", requestHandler.CreateDeposit)
			r.Post("/requests/withdraw", requestHandler.CreateWithdrawal)

			r.Get("/spinner/status", spinnerHandler.Status)
			r.Post("/spinner/spin", spinnerHandler.Spin)

			r.Get("/videos/status", videoHandler.Status)
			r.Post("/videos/click", videoHandler.Click)

			r.Post("/password-resets", passwordResetHandler.Create)

			// Admin endpoints
			r.Group(func(r chi.Router) {
				r.Use(mW.AdminOnly)

				r.Get("/accounts", accountHandler.List)
				r.Get("/accounts/{accountId}", accountHandler.Get)
				r.Put("/accounts/{accountId}/status", accountHandler.UpdateStatus)
				r.Post("/accounts/{accountId}/balance", accountHandler.AdjustBalance)

				r.Get("/requests", requestHandler.List)
				r.Get("/requests/{requestId}", requestHandler.Get)
				r.Put("/requests/{requestId}/approve", requestHandler.Approve)
				r.Put("/requests/{requestId}/reject", requestHandler.Reject)
				r.Delete("/requests/rejected", requestHandler.Cleanup)

				r.Get("/password-resets", passwordResetHandler.List)
				r.Put("/password-resets/{requestId}/approve", passwordResetHandler.Approve)
				r.Put("/password-resets/{requestId}/reject", passwordResetHandler.Reject)
			})
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logrus.Infof("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server stopped")
}
