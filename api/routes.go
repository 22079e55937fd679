package api

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"status-viewer/account"
	"status-viewer/preset"
	"status-viewer/session"
)

// Deps are the collaborators the HTTP surface is built on.
type Deps struct {
	Sessions *session.Manager
	Presets  *preset.Manager
	Accounts *account.Store
	Static   fs.FS
	Logger   *zap.Logger
	// Registry receives the API metrics and is served at /metrics. A fresh
	// registry is used when nil.
	Registry *prometheus.Registry

	SignupRedirect time.Duration
	SigninRedirect time.Duration
}

func RegisterRoutes(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	h := &handler{
		sessions:       d.Sessions,
		presets:        d.Presets,
		accounts:       d.Accounts,
		log:            log,
		metrics:        newMetrics(reg),
		signupRedirect: d.SignupRedirect,
		signinRedirect: d.SigninRedirect,
	}

	// REST API
	r.Get("/api/sessions", h.listSessions)
	r.Post("/api/sessions", h.createSession)
	r.Route("/api/sessions/{id}", func(r chi.Router) {
		r.Use(h.withSession)
		r.Get("/", h.getSession)
		r.Delete("/", h.endSession)
		r.Post("/screen", h.navigate)

		// Accounts
		r.Post("/signup", h.signUp)
		r.Post("/signin", h.signIn)
		r.Post("/logout", h.logout)

		// WebSocket
		r.Get("/ws", h.handleWS)

		// Catalog view, signed-in only
		r.Group(func(r chi.Router) {
			r.Use(h.requireUser)
			r.Get("/filter", h.getFilter)
			r.Put("/filter", h.putFilter)
			r.Get("/presets", h.listPresets)
			r.Post("/presets", h.savePreset)
			r.Post("/presets/{index}/apply", h.applyPreset)
			r.Delete("/presets/{index}", h.deletePreset)
		})
	})

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	if d.Static != nil {
		registerStatic(r, d.Static)
	}
	return r
}

// registerStatic serves the frontend. The embedded FS keeps its files under
// "static/"; a dev FS rooted at the directory itself is used as-is.
func registerStatic(r chi.Router, staticFS fs.FS) {
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		staticSub = staticFS
	} else if _, statErr := fs.Stat(staticSub, "index.html"); statErr != nil {
		staticSub = staticFS
	}

	// Serve index.html by reading it directly: http.FileServer redirects
	// paths ending in "index.html" to "./".
	r.Get("/", serveFile(staticSub, "index.html"))

	fileServer := http.FileServer(http.FS(staticSub))
	r.Get("/css/*", fileServer.ServeHTTP)
	r.Get("/js/*", fileServer.ServeHTTP)
}

// serveFile returns a handler that reads a single file from fsys and sends it.
func serveFile(fsys fs.FS, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
	}
}

type handler struct {
	sessions *session.Manager
	presets  *preset.Manager
	accounts *account.Store
	log      *zap.Logger
	metrics  *metrics

	signupRedirect time.Duration
	signinRedirect time.Duration
}
