// Package http serves the web form, the JSON API and the report downloads.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"housesplit/internal/core"
	applog "housesplit/internal/log"
	"housesplit/internal/middleware/ratelimit"
	"housesplit/internal/middleware/security"
	"housesplit/internal/middleware/trace"
	"housesplit/internal/services"
	appweb "housesplit/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options tunes the server. Zero values pick defaults.
type Options struct {
	// Gatherer backs /metrics; defaults to the global registry.
	Gatherer prometheus.Gatherer
	// RequestsPerMinute caps POSTs per client IP.
	RequestsPerMinute int
	Logger            *applog.Logger
}

type Server struct {
	http.Server
	svc          *services.SplitService
	templates    *template.Template
	limiter      *ratelimit.Limiter
	tracer       *trace.Middleware
	started      time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, svc *services.SplitService, opts Options) *Server {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}

	rlConfig := ratelimit.DefaultConfig()
	if opts.RequestsPerMinute > 0 {
		rlConfig.RequestsPerMinute = opts.RequestsPerMinute
	}

	s := &Server{
		svc:     svc,
		limiter: ratelimit.NewLimiter(rlConfig),
		tracer:  trace.NewMiddleware(clientIP),
		started: time.Now(),
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "component", applog.ComponentTemplate, "error", err)
	}
	s.templates = t

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(applog.Middleware(opts.Logger))
	r.Use(applog.ComponentMiddleware(applog.ComponentHTTP))
	r.Use(s.tracer.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(3600)).Handle("/static/*", static)
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	r.Group(func(r chi.Router) {
		r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
		r.Use(s.limiter.Middleware(clientIP))

		r.Get("/", s.handleIndex)
		r.Post("/calculate", s.handleCalculate)
		r.Post("/save", s.handleSave)
		r.Get("/report.txt", s.handleReport(formatText))
		r.Post("/report.txt", s.handleReport(formatText))
		r.Get("/report.csv", s.handleReport(formatCSV))
		r.Post("/report.csv", s.handleReport(formatCSV))
	})

	return r
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// clientIP returns the host part of RemoteAddr, which RealIP has already
// replaced with the forwarded address when present.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

var templateFuncs = template.FuncMap{
	"euros": core.Euros,
}
