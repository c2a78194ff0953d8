package httpapi

import (
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Router wraps the standard library http.ServeMux.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler returns the router wrapped in request-id and access-log middleware.
func (r *Router) Handler() http.Handler {
	return WithRequestID(WithLogging(r.logger)(r))
}

func only(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			w.Header().Set("Allow", method)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, req)
	}
}

// RegisterCatalogRoutes mounts the catalog and takeoff API.
func (r *Router) RegisterCatalogRoutes(h *CatalogHandler) {
	r.Handle("/api/options", only(http.MethodGet, h.Options))
	r.Handle("/api/options/cache", only(http.MethodDelete, h.InvalidateOptions))
	r.Handle("/api/search", only(http.MethodGet, h.Search))
	r.Handle("/api/calculate", only(http.MethodPost, h.Calculate))
	r.Handle("/api/calculate/export", only(http.MethodPost, h.Export))
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, Ok())
	})
}

// RegisterStaticRoutes serves the search page at / and the calculator at /calculadora.
// With an empty dir nothing is mounted.
func (r *Router) RegisterStaticRoutes(dir string) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); err != nil {
		r.logger.Warn("static dir not readable, pages disabled", zap.String("dir", dir), zap.Error(err))
		return
	}
	page := func(name string) http.HandlerFunc {
		path := filepath.Join(dir, name)
		return only(http.MethodGet, func(w http.ResponseWriter, req *http.Request) {
			http.ServeFile(w, req, path)
		})
	}
	index := page("index.html")
	r.Handle("/", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/" {
			http.NotFound(w, req)
			return
		}
		index(w, req)
	})
	r.Handle("/calculadora", page("calculadora.html"))
}
