package http

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/httprate"
	"github.com/go-chi/jwtauth/v5"
	"github.com/unrolled/secure"
)

type RouterConfig struct {
	AppName        string
	Version        string
	Env            string
	AllowedOrigins []string
	// GenerateRateLimit caps synchronous and queued generation requests per
	// caller per minute.
	GenerateRateLimit int
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, payrollHandler PayrollHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env == "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.AppName),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:      cfg.Env != "production",
	})
	r.Use(secureMiddleware.Handler)

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if cfg.GenerateRateLimit <= 0 {
		cfg.GenerateRateLimit = 10
	}
	generateLimiter := httprate.Limit(cfg.GenerateRateLimit, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			response.TooManyRequests(w, "Too many generation requests, retry later")
		}),
	)

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/payroll", func(r chi.Router) {
				r.Route("/salaries", func(r chi.Router) {
					r.Group(func(r chi.Router) {
						r.Use(generateLimiter)
						r.Post("/generate", payrollHandler.GenerateMonthly)
						r.Post("/generate/async", payrollHandler.EnqueueMonthly)
					})

					r.Get("/", payrollHandler.ListSalaries)
					r.Delete("/", payrollHandler.DeleteSalary)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", payrollHandler.GetSalary)
						r.Post("/recalculate", payrollHandler.RecalculateSalary)
						r.Post("/status", payrollHandler.TransitionSalary)
						r.Post("/installments/{installmentId}/decision", payrollHandler.DecideInstallment)
					})
				})

				r.Post("/employees/{employeeId}/salaries/generate", payrollHandler.GenerateSalary)
				r.Get("/advances", payrollHandler.ListAdvances)
			})
		})
	})
	return r
}

func rateLimitKey(r *http.Request) (string, error) {
	if userID := middleware.UserID(r.Context()); userID != "" {
		return "user:" + userID, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
