// Package httpapi serves the catalog, the calculators and the enquiry form
// over HTTP.
package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sequoia-invest/adviser-tools/internal/catalog"
	"github.com/sequoia-invest/adviser-tools/internal/config"
	"github.com/sequoia-invest/adviser-tools/internal/enquiry"
	"github.com/sequoia-invest/adviser-tools/internal/metrics"
	"github.com/sequoia-invest/adviser-tools/internal/monitoring"
	"github.com/sequoia-invest/adviser-tools/internal/scorer"
	"github.com/sequoia-invest/adviser-tools/internal/store"
)

// Deps are the services behind the API. Store, Enquiries and Stats are
// optional; routes that need a missing one answer 503.
type Deps struct {
	Catalog    *catalog.Catalog
	Risk       *scorer.RiskScorer
	Match      *scorer.MatchScorer
	Projection config.ProjectionConfig
	Store      store.Store
	Enquiries  *enquiry.Service
	Stats      *monitoring.Collector
}

// Server holds the API state shared across requests.
type Server struct {
	cfg      config.ServerConfig
	deps     Deps
	schemas  schemaSet
	limiter  *rate.Limiter
	markdown goldmark.Markdown
}

// New builds a Server. Scorers missing from d are built from the catalog
// with the default match weights.
func New(cfg config.ServerConfig, d Deps) (*Server, error) {
	if d.Catalog == nil {
		return nil, eris.New("httpapi: catalog is required")
	}
	if d.Risk == nil {
		d.Risk = scorer.NewRiskScorer(d.Catalog.RiskQuestions(), d.Catalog.RiskProfiles())
	}
	if d.Match == nil {
		d.Match = scorer.NewMatchScorer(d.Catalog.MatchQuestions(), d.Catalog.Portfolios(), config.DefaultMatchConfig())
	}

	schemas, err := loadSchemas()
	if err != nil {
		return nil, err
	}

	burst := cfg.RateLimitBurst
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(cfg.RateLimitRPS)
	if cfg.RateLimitRPS <= 0 {
		limit = rate.Inf
	}

	return &Server{
		cfg:      cfg,
		deps:     d,
		schemas:  schemas,
		limiter:  rate.NewLimiter(limit, burst),
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(instrument)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(s.timeout()))
		r.Use(s.rateLimit)

		r.Get("/funds", s.listFunds)
		r.Get("/funds/compare", s.compareFunds)
		r.Get("/funds/recommended", s.recommendedFunds)
		r.Get("/funds/{id}", s.getFund)

		r.Get("/risk/questions", s.riskQuestions)
		r.Get("/risk/profiles", s.riskProfiles)
		r.Post("/risk/score", s.scoreRisk)

		r.Get("/match/questions", s.matchQuestions)
		r.Post("/match", s.scoreMatch)

		r.Post("/projection", s.project)
		r.Post("/projection/dfm", s.projectDFM)
		r.Get("/projection/assumptions", s.assumptions)

		r.Get("/insights", s.listInsights)
		r.Get("/insights/{slug}", s.getInsight)
		r.Get("/solutions", s.listSolutions)

		r.Post("/enquiries", s.submitEnquiry)
		r.Get("/assessments", s.listAssessments)
		r.Get("/assessments/{id}", s.getAssessment)
		r.Get("/stats", s.stats)
	})

	return r
}

func (s *Server) corsOrigins() []string {
	if len(s.cfg.CORSOrigins) == 0 {
		return []string{"*"}
	}
	return s.cfg.CORSOrigins
}

func (s *Server) timeout() time.Duration {
	if s.cfg.RequestTimeoutSecs < 1 {
		return 15 * time.Second
	}
	return time.Duration(s.cfg.RequestTimeoutSecs) * time.Second
}

// rateLimit rejects requests once the shared token bucket is empty.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// instrument logs each request and counts it by route pattern.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		metrics.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()

		zap.L().Debug("httpapi: request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
