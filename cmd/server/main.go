package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"course-discovery/internal/config"
	"course-discovery/internal/courses"
	"course-discovery/internal/domain"
	"course-discovery/internal/providers"
	"course-discovery/internal/providers/udemy"
	"course-discovery/internal/providers/youtube"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server failed:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)

	var ps []providers.Provider
	if cfg.HasYouTube() {
		yt := youtube.New(cfg.YouTubeBaseURL, cfg.YouTubeAPIKey, cfg.RequestSpacing)
		ps = append(ps, providers.WithBreaker(&youtube.Provider{C: yt}, logger))
	}
	if cfg.HasUdemy() {
		ud := udemy.New(cfg.UdemyBaseURL, cfg.UdemyClientID, cfg.UdemyClientSecret, cfg.RequestSpacing)
		ps = append(ps, providers.WithBreaker(&udemy.Provider{C: ud}, logger))
	}
	logger.Info().Int("providers", len(ps)).Msg("providers registered")

	svc := courses.New(ps, logger, courses.Options{
		FetchTimeout: cfg.FetchTimeout,
		MaxResults:   cfg.MaxResults,
		CacheTTL:     cfg.CacheTTL,
		CacheSize:    cfg.CacheSize,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(svc, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}

func newRouter(svc *courses.Service, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler)

	h := handlers{svc: svc}
	r.Route("/api/courses", func(r chi.Router) {
		r.Get("/search", h.search)
		r.Get("/trending", h.trending)
		r.Get("/free", h.free)
		r.Post("/recommendations", h.recommendations)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("took", time.Since(start)).
				Msg("request")
		})
	}
}

type handlers struct {
	svc *courses.Service
}

// envelope is the JSON shape every endpoint responds with.
type envelope struct {
	Success   bool            `json:"success"`
	Total     int             `json:"total"`
	Timestamp time.Time       `json:"timestamp"`
	Courses   []domain.Course `json:"courses,omitempty"`
	Error     string          `json:"error,omitempty"`
}

func (h handlers) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.svc.Search(r.Context(), courses.SearchParams{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Platform: q.Get("platform"),
		Level:    domain.Level(q.Get("level")),
		Price:    courses.PriceFilter(q.Get("price")),
	})
	respond(w, out, err)
}

func (h handlers) trending(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Trending(r.Context(), r.URL.Query().Get("category"))
	respond(w, out, err)
}

func (h handlers) free(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Free(r.Context(), r.URL.Query().Get("q"))
	respond(w, out, err)
}

func (h handlers) recommendations(w http.ResponseWriter, r *http.Request) {
	var profile domain.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{
			Timestamp: time.Now().UTC(),
			Error:     "invalid request body",
		})
		return
	}
	out, err := h.svc.Recommendations(r.Context(), profile)
	respond(w, out, err)
}

func respond(w http.ResponseWriter, out []domain.Course, err error) {
	now := time.Now().UTC()
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, courses.ErrInvalidInput):
			status = http.StatusBadRequest
		case errors.Is(err, courses.ErrUnavailable):
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, envelope{Timestamp: now, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		Success:   true,
		Total:     len(out),
		Timestamp: now,
		Courses:   out,
	})
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
