package web

import (
	"embed"
	"encoding/json"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/peterkuimelis/voidred/internal/game"
)

//go:embed static
var staticFiles embed.FS

// Options configures the web server.
type Options struct {
	Catalog      *game.Catalog
	Rules        game.Rules
	GameAddr     string   // default TCP host for the websocket bridge
	AllowedHosts []string // other hosts the bridge may dial
	RateLimit    float64  // requests per second per IP, 0 disables
	RateBurst    int
	Logger       zerolog.Logger
}

// Server is the voidred web UI server.
type Server struct {
	router   chi.Router
	catalog  *game.Catalog
	rules    game.Rules
	gameAddr string
	allowed  map[string]bool
	limiter  *RateLimiter
	logger   zerolog.Logger
}

// NewServer creates a new web server.
func NewServer(opts Options) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		catalog:  opts.Catalog,
		rules:    opts.Rules,
		gameAddr: opts.GameAddr,
		allowed:  map[string]bool{opts.GameAddr: true},
		limiter:  NewRateLimiter(opts.RateLimit, opts.RateBurst),
		logger:   opts.Logger,
	}
	for _, h := range opts.AllowedHosts {
		s.allowed[h] = true
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(s.limiter.Middleware)

	staticFS, _ := fs.Sub(staticFiles, "static")

	// Serve index.html at root
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.Copy(w, f)
	})

	// Static CSS/JS
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Get("/cards", s.handleCards)
		r.Get("/themes", s.handleThemes)
		r.Get("/rules", s.handleRules)
		r.Get("/decks", s.handleDecks)
	})

	// WebSocket bridge to a TCP host; long-lived, so outside the timeout.
	s.router.Get("/ws", s.handleWebSocket)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found: "+r.URL.Path)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger logs one line per request with its id, status and latency.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
