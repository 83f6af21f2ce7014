// Package api serves a family.Store over HTTP.
//
// # Routes
//
//	GET    /health
//	GET    /people              list in insertion order
//	POST   /people              add a person, returns 201 and the record
//	GET    /people/{id}
//	PATCH  /people/{id}         partial update
//	DELETE /people/{id}
//	GET    /layout              compute generations and positions
//	POST   /layout              compute and persist positions
//	GET    /check               audit the graph
//	GET    /render.svg          node-link diagram of the current layout
//
// People are encoded in the same record format as the data file. Errors are
// JSON objects {"code": ..., "message": ...}.
//
// # Concurrency
//
// A family.Store is not safe for concurrent use, so the server serializes
// every store call behind one mutex.
package api

import (
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
)

// Server is the HTTP front end of a store.
type Server struct {
	mu     sync.Mutex
	store  *family.Store
	layout layout.Options
	logger *log.Logger
	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLayout sets the options used by the layout and render routes.
func WithLayout(opts layout.Options) Option {
	return func(s *Server) { s.layout = opts }
}

// NewServer creates a server for store. The store must already be loaded.
func NewServer(store *family.Store, opts ...Option) *Server {
	s := &Server{
		store:  store,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/people", func(r chi.Router) {
		r.Get("/", s.handleListPeople)
		r.Post("/", s.handleAddPerson)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetPerson)
			r.Patch("/", s.handleUpdatePerson)
			r.Delete("/", s.handleDeletePerson)
		})
	})
	r.Get("/layout", s.handleGetLayout)
	r.Post("/layout", s.handleSaveLayout)
	r.Get("/check", s.handleCheck)
	r.Get("/render.svg", s.handleRender)
	return r
}

// NewHTTPServer wraps handler in an http.Server with conservative timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
