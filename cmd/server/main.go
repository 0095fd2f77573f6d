package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"intranet/internal/db"
	"intranet/internal/domain/access"
	"intranet/internal/domain/audit"
	"intranet/internal/domain/identity"
	"intranet/internal/domain/payslips"
	"intranet/internal/platform/config"
	"intranet/internal/platform/email"
	"intranet/internal/platform/metrics"
	"intranet/internal/transport/http/api"
	identityhandler "intranet/internal/transport/http/handlers/identity"
	payslipshandler "intranet/internal/transport/http/handlers/payslips"
	"intranet/internal/transport/http/middleware"
)

func main() {
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}

	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	collector := metrics.New()
	mailer := email.New(cfg)
	registry := access.NewRegistry(cfg.DepartmentCodes)
	auditSvc := audit.New(pool)
	userSvc := identity.NewService(identity.NewStore(pool))
	payslipSvc := payslips.NewService(payslips.NewStore(pool))

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Metrics(collector))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		userHandler := identityhandler.NewHandler(userSvc, registry, auditSvc, mailer, cfg)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthRateLimit(cfg.RateLimitPerMinute, time.Minute))
			r.Post("/auth/login", userHandler.HandleLogin)
			r.Post("/auth/register", userHandler.HandleRegister)
			r.Post("/auth/request", userHandler.HandleRequestAccess)
			r.Post("/auth/verify-department", userHandler.HandleVerifyDepartment)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/users", userHandler.HandleListUsers)
			r.Post("/auth/change-password", userHandler.HandleChangePassword)

			payslipHandler := payslipshandler.NewHandler(payslipSvc, auditSvc)
			r.Post("/payslips", payslipHandler.HandleCreate)
			r.Get("/payslips/{id}", payslipHandler.HandleGet)
			r.Get("/payslips/{id}/pdf", payslipHandler.HandlePDF)
			r.Put("/payslips/{id}/amounts", payslipHandler.HandleRecomputeAmounts)
			r.Post("/payslips/{id}/status", payslipHandler.HandleAdvanceStatus)
			r.Get("/employees/{employeeId}/payslips", payslipHandler.HandleListForEmployee)
			r.Get("/employees/{employeeId}/payslips/{month}/{year}", payslipHandler.HandleGetByPeriod)
		})
	})

	if cfg.MetricsEnabled {
		router.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/metricsz", func(w http.ResponseWriter, req *http.Request) {
				api.Success(w, collector.Snapshot(), middleware.GetRequestID(req.Context()))
			})
		})
	}

	log.Printf("intranet server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
