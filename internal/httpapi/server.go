// Package httpapi exposes an orchestrator over a small admin API: contract
// discovery, section CRUD, server-rendered forms and structural mutations.
package httpapi

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-sectionform/internal/logging"
	"github.com/goliatone/go-sectionform/pkg/interfaces"
	"github.com/goliatone/go-sectionform/pkg/orchestrator"
	"github.com/goliatone/go-sectionform/pkg/renderers/html"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Server) {
		s.logger = logging.OrNoOp(logger)
	}
}

// WithAssetsFS replaces the browser assets served under /assets.
func WithAssetsFS(assets fs.FS) Option {
	return func(s *Server) {
		if assets != nil {
			s.assets = assets
		}
	}
}

// WithBasePath prefixes the URLs written into rendered forms. Use it when
// the router is mounted below the site root.
func WithBasePath(prefix string) Option {
	return func(s *Server) {
		s.basePath = strings.TrimRight(strings.TrimSpace(prefix), "/")
	}
}

// WithCSRF adds a hidden token input named field to every rendered form.
// token is called once per request.
func WithCSRF(field string, token func(*http.Request) string) Option {
	return func(s *Server) {
		s.csrfField = strings.TrimSpace(field)
		s.csrfToken = token
	}
}

// Server serves the admin API.
type Server struct {
	orch      *orchestrator.Orchestrator
	logger    interfaces.Logger
	assets    fs.FS
	basePath  string
	csrfField string
	csrfToken func(*http.Request) string
}

// New constructs a Server over orch.
func New(orch *orchestrator.Orchestrator, opts ...Option) *Server {
	s := &Server{
		orch:   orch,
		logger: logging.NoOp(),
		assets: html.AssetsFS(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Routes returns the chi router carrying every endpoint.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(methodOverride)

	r.Route("/contracts", func(r chi.Router) {
		r.Get("/", s.HandleListContracts)
		r.Get("/{type}", s.HandleGetContract)
		r.Get("/{type}/schema", s.HandleContractSchema)
		r.Get("/{type}/form", s.HandleContractForm)
		r.Post("/{type}/normalize", s.HandleNormalize)
	})

	r.Get("/pages", s.HandleListPages)

	r.Route("/sections", func(r chi.Router) {
		r.Post("/", s.HandleCreateSection)
		r.Get("/{id}", s.HandleGetSection)
		r.Put("/{id}", s.HandleUpdateSection)
		r.Get("/{id}/form", s.HandleSectionForm)
		r.Post("/{id}/mutations", s.HandleMutation)
	})

	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServerFS(s.assets)))
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) url(parts ...string) string {
	return s.basePath + "/" + strings.Join(parts, "/")
}
