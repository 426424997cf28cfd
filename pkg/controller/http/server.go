package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/iract/pkg/controller/http/view"
	"github.com/secmon-lab/iract/pkg/usecase"
	"github.com/secmon-lab/iract/pkg/utils/errutil"
	"github.com/secmon-lab/iract/pkg/utils/logging"
)

const (
	// DefaultDownloadFileName is the attachment name of a downloaded result
	DefaultDownloadFileName = "product.png"
	// DefaultMaxUploadSize bounds one multipart form post
	DefaultMaxUploadSize int64 = 32 << 20
)

type Server struct {
	router           *chi.Mux
	uc               *usecase.UseCases
	renderer         *view.Renderer
	downloadFileName string
	maxUploadSize    int64
	secureCookie     bool
}

type Options func(*Server)

// WithDownloadFileName sets the attachment file name of /download
func WithDownloadFileName(name string) Options {
	return func(s *Server) {
		s.downloadFileName = name
	}
}

// WithMaxUploadSize bounds the size of a form post in bytes. Non-positive sizes keep the default.
func WithMaxUploadSize(size int64) Options {
	return func(s *Server) {
		if size > 0 {
			s.maxUploadSize = size
		}
	}
}

// WithSecureCookie marks the session cookie Secure
func WithSecureCookie(secure bool) Options {
	return func(s *Server) {
		s.secureCookie = secure
	}
}

func New(uc *usecase.UseCases, opts ...Options) (*Server, error) {
	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load views")
	}

	r := chi.NewRouter()
	s := &Server{
		router:           r,
		uc:               uc,
		renderer:         renderer,
		downloadFileName: DefaultDownloadFileName,
		maxUploadSize:    DefaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	// Post creation flow, bound to the browser session
	r.Group(func(r chi.Router) {
		r.Use(sessionMiddleware(uc.Post, s.secureCookie))
		r.Get("/", s.indexHandler)
		r.Post("/select", s.selectHandler)
		r.Post("/form", s.formHandler)
		r.Post("/submit", s.submitHandler)
		r.Post("/reset", s.resetHandler)
		r.Get("/download", s.downloadHandler)
	})

	// Template management
	r.Route("/templates", func(r chi.Router) {
		r.Get("/", s.listTemplatesHandler)
		r.Post("/", s.createTemplateHandler)
		r.Post("/{id}", s.updateTemplateHandler)
		r.Post("/{id}/delete", s.deleteTemplateHandler)
	})

	r.Get("/api/templates", s.apiTemplatesHandler)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}
