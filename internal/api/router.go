package api

import (
	"log/slog"
	"net/http"
	"time"

	_ "loantracker/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"loantracker/internal/api/handler"
	mw "loantracker/internal/api/middleware"
	"loantracker/internal/config"
	"loantracker/internal/domain/loan"
	"loantracker/internal/domain/scenario"
)

func SetupRouter(loanService loan.LoanService, scenarioService scenario.ScenarioService, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupLoanRoutes(router, loanService, scenarioService, cfg, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupLoanRoutes(router *chi.Mux, loanService loan.LoanService, scenarioService scenario.ScenarioService, cfg *config.Config, logger *slog.Logger) {
	loanHandler := handler.NewLoanHandler(loanService, logger)
	scheduleHandler := handler.NewScheduleHandler(loanService, logger)
	scenarioHandler := handler.NewScenarioHandler(scenarioService, logger)
	authHandler := handler.NewAuthHandler(*cfg, logger)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})

	router.Route("/loans", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", loanHandler.CreateLoan)
		r.Get("/", loanHandler.ListLoans)

		r.Route("/{loanID}", func(r chi.Router) {
			r.Get("/", loanHandler.GetLoan)
			r.Put("/", loanHandler.UpdateLoan)
			r.Delete("/", loanHandler.DeleteLoan)

			r.Get("/schedule", scheduleHandler.GetSchedule)
			r.Post("/schedule/whatif", scheduleHandler.WhatIf)
			r.Get("/payoff-target", scheduleHandler.SolvePayoffTarget)

			r.Post("/rates", loanHandler.AddRateChange)
			r.Post("/rates/preview", scheduleHandler.PreviewRateChange)
			r.Delete("/rates/{rateChangeID}", loanHandler.DeleteRateChange)

			r.Post("/repayment-changes", loanHandler.AddRepaymentChange)
			r.Post("/repayment-changes/preview", scheduleHandler.PreviewRepaymentChange)
			r.Delete("/repayment-changes/{repaymentChangeID}", loanHandler.DeleteRepaymentChange)

			r.Post("/extra-repayments", loanHandler.AddExtraRepayment)
			r.Delete("/extra-repayments/{extraRepaymentID}", loanHandler.DeleteExtraRepayment)

			r.Post("/paid/{periodNumber}", loanHandler.MarkPaid)
			r.Delete("/paid/{periodNumber}", loanHandler.UnmarkPaid)

			r.Route("/scenarios", func(r chi.Router) {
				r.Get("/", scenarioHandler.ListScenarios)
				r.Post("/", scenarioHandler.SaveScenario)
				r.Get("/compare", scenarioHandler.CompareScenarios)
				r.Get("/{scenarioID}", scenarioHandler.GetScenario)
				r.Put("/{scenarioID}", scenarioHandler.UpdateScenario)
				r.Delete("/{scenarioID}", scenarioHandler.DeleteScenario)
			})
		})
	})
}
