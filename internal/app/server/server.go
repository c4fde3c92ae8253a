package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"scorecard/internal/domain/alerts"
	"scorecard/internal/domain/audit"
	"scorecard/internal/domain/auth"
	"scorecard/internal/domain/imports"
	"scorecard/internal/domain/notifications"
	"scorecard/internal/domain/org"
	"scorecard/internal/domain/reports"
	"scorecard/internal/domain/scorecard"
	"scorecard/internal/platform/config"
	"scorecard/internal/platform/db"
	"scorecard/internal/platform/jobs"
	"scorecard/internal/platform/metrics"
	"scorecard/internal/transport/http/api"
	alertshandler "scorecard/internal/transport/http/handlers/alerts"
	audithandler "scorecard/internal/transport/http/handlers/audit"
	authhandler "scorecard/internal/transport/http/handlers/auth"
	importshandler "scorecard/internal/transport/http/handlers/imports"
	notificationshandler "scorecard/internal/transport/http/handlers/notifications"
	orghandler "scorecard/internal/transport/http/handlers/org"
	reportshandler "scorecard/internal/transport/http/handlers/reports"
	scorecardhandler "scorecard/internal/transport/http/handlers/scorecard"
	"scorecard/internal/transport/http/middleware"
)

func Run() {
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
	auditSvc := audit.New(pool)

	orgSvc := org.NewService(org.NewStore(pool))
	scorecardSvc := scorecard.NewService(scorecard.NewStore(pool), orgSvc)
	notifySvc := notifications.New(notifications.NewStore(pool))
	alertSvc := alerts.NewService(alerts.NewStore(pool), notifySvc)
	importSvc := imports.NewService(imports.NewStore(pool))
	reportSvc := reports.NewService(pool)

	jobSvc := jobs.New(pool, cfg, importSvc, scorecardSvc, collector)
	jobSvc.Start(ctx)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Metrics(collector))
	router.Use(middleware.Auth(cfg.JWTSecret))

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
		authHandler := authhandler.NewHandler(auth.NewStore(pool), cfg.JWTSecret)
		authHandler.RegisterRoutes(r)
		authHandler.RegisterProtectedRoutes(r)

		orghandler.NewHandler(orgSvc, scorecardSvc, auditSvc).RegisterRoutes(r)
		scorecardhandler.NewHandler(scorecardSvc, alertSvc, auditSvc).RegisterRoutes(r)
		importshandler.NewHandler(importSvc, jobSvc, auditSvc).RegisterRoutes(r)
		alertshandler.NewHandler(alertSvc, auditSvc).RegisterRoutes(r)
		notificationshandler.NewHandler(notifySvc).RegisterRoutes(r)
		reportshandler.NewHandler(reportSvc, auditSvc).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc).RegisterRoutes(r)

		if cfg.MetricsEnabled {
			r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
				api.Success(w, collector.Snapshot(), middleware.GetRequestID(req.Context()))
			})
		}
	})

	log.Printf("scorecard server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
