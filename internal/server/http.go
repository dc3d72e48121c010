package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/autododge/internal/config"
	"github.com/vovakirdan/autododge/internal/sink"
)

// HTTPServer serves the video generation API.
type HTTPServer struct {
	svc    *Service
	logger *log.Logger
	server *http.Server
}

// NewHTTPServer creates an HTTP server listening on addr.
func NewHTTPServer(addr string, svc *Service, logger *log.Logger) *HTTPServer {
	if logger == nil {
		logger = svc.logger
	}
	h := &HTTPServer{svc: svc, logger: logger}
	h.server = &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return h
}

// Handler returns the routed handler wrapped in request logging.
func (h *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /generate_video", h.handleGenerate)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /runs", h.handleRuns)
	return h.loggingMiddleware(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (h *HTTPServer) ListenAndServe(ctx context.Context) error {
	h.logger.Info("starting HTTP server", "address", h.server.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	h.logger.Info("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return h.server.Shutdown(shutdownCtx)
}

func (h *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPServer) handleGenerate(w http.ResponseWriter, r *http.Request) {
	publish := false
	if v := r.URL.Query().Get("upload"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid upload flag %q", v))
			return
		}
		publish = b
	}

	overrides, err := decodeOverrides(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	job, err := h.svc.Generate(r.Context(), overrides, nil)
	if err != nil {
		h.logger.Error("generation failed", "error", err)
		writeError(w, statusFor(err), fmt.Errorf("game generation failed: %w", err))
		return
	}
	defer job.Cleanup(h.logger)

	if publish {
		videoID, err := h.svc.Publish(r.Context(), job)
		if err != nil {
			h.logger.Error("upload failed", "error", err)
			writeError(w, statusFor(err), err)
			return
		}
		w.Header().Set("X-Video-Id", videoID)
	}

	f, err := os.Open(job.Path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", job.Filename()))
	w.Header().Set("X-Seed", strconv.FormatInt(job.Config.Seed, 10))
	w.Header().Set("X-Score", strconv.Itoa(job.Result.Score))
	if job.Result.Truncated {
		w.Header().Set("X-Truncated", "true")
	}
	http.ServeContent(w, r, job.Filename(), info.ModTime(), f)
}

func (h *HTTPServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}

	runs, stats, err := h.svc.RecentRuns(limit)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs, "stats": stats})
}

// loggingMiddleware logs each request with its status and duration.
func (h *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"remote", r.RemoteAddr,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, config.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, ErrUploadDisabled), errors.Is(err, ErrLedgerDisabled),
		errors.Is(err, sink.ErrEncoderUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // Client may have gone away
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
