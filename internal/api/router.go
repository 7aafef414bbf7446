package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yegors/tailwinds/internal/config"
	"github.com/yegors/tailwinds/internal/metrics"
	"github.com/yegors/tailwinds/pkg/logger"
)

// Router wires the handlers to their routes
type Router struct {
	handler *Handler
	config  *config.Config
	logger  *logger.Logger
}

// NewRouter creates a new router
func NewRouter(weatherService ReportService, cfg *config.Config, log *logger.Logger) *Router {
	return &Router{
		handler: NewHandler(weatherService, cfg, log),
		config:  cfg,
		logger:  log.Named("router"),
	}
}

// Routes builds the HTTP handler tree
func (rt *Router) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	origins := rt.config.Server.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Use(countRequests)
		r.Get("/health", rt.handler.Health)
		r.Get("/config", rt.handler.GetConfig)
		r.Get("/weather", rt.handler.GetWeather)
		r.Post("/weather/refresh", rt.handler.RefreshWeather)
		r.Get("/decode/metar", rt.handler.DecodeMetar)
		r.Post("/decode/taf", rt.handler.DecodeTaf)
	})

	r.Handle("/metrics", promhttp.Handler())

	if dir := rt.config.Server.StaticFilesDir; dir != "" {
		r.Handle("/*", NewStaticFileHandler(dir, rt.logger))
	}

	return r
}

// countRequests records every API request by its route pattern
func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		metrics.RequestCounter.WithLabelValues(route, r.Method).Inc()
	})
}
