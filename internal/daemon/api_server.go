package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"lathe/internal/config"
	"lathe/internal/jobs"
	"lathe/internal/logging"
	"lathe/internal/scene"
	"lathe/internal/viewer"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.Paths.APIBind),
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/elements", srv.handleElements)
	mux.HandleFunc("/api/select", srv.handleSelect)
	mux.HandleFunc("/api/viewport", srv.handleViewport)
	mux.HandleFunc("/api/export", srv.handleExport)
	mux.HandleFunc("/api/jobs", srv.handleJobs)
	mux.HandleFunc("/api/event", srv.handleEvent)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.Status())
}

type elementsResponse struct {
	Options []viewer.Option `json:"options"`
}

func (s *apiServer) handleElements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	options := s.daemon.controller.Options()
	refresh := r.URL.Query().Get("refresh") == "1"
	if refresh || len(options) == 0 {
		loaded, err := s.daemon.controller.LoadDirectory(r.Context())
		if err != nil {
			s.writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		options = loaded
	}
	s.writeJSON(w, http.StatusOK, elementsResponse{Options: options})
}

type selectRequest struct {
	Option *int   `json:"option"`
	Label  string `json:"label"`
}

func (s *apiServer) handleSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	index := -1
	switch {
	case req.Option != nil:
		index = *req.Option
	case req.Label != "":
		for i, opt := range s.daemon.controller.Options() {
			if opt.Label == req.Label {
				index = i
				break
			}
		}
		if index < 0 {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("no option labelled %q", req.Label))
			return
		}
	default:
		s.writeError(w, http.StatusBadRequest, "option index or label required")
		return
	}

	// Selections poll beyond the lifetime of this request, so they run on
	// the daemon context rather than the request context.
	if err := s.daemon.controller.Select(s.daemon.ctx, index); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, viewer.ErrSelection) {
			status = http.StatusBadRequest
		}
		s.writeError(w, status, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.controller.Status())
}

type viewportRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *apiServer) handleViewport(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, s.daemon.scene.ViewportState())
	case http.MethodPost:
		var req viewportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Width <= 0 || req.Height <= 0 {
			s.writeError(w, http.StatusBadRequest, "width and height must be positive")
			return
		}
		s.daemon.scene.Resize(req.Width, req.Height)
		s.writeJSON(w, http.StatusOK, s.daemon.scene.ViewportState())
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type exportResponse struct {
	Filename string `json:"filename"`
	Payload  string `json:"payload"`
}

func (s *apiServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	payload, err := s.daemon.scene.Export()
	if err != nil {
		if errors.Is(err, scene.ErrExport) {
			s.writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, exportResponse{
		Filename: s.daemon.controller.Filename(),
		Payload:  payload,
	})
}

func (s *apiServer) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	records, err := s.daemon.store.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"jobs": records})
}

type eventRequest struct {
	Event         string `json:"event"`
	TranslationID string `json:"translationId"`
	WebhookID     string `json:"webhookId"`
}

const translationCompleteEvent = "onshape.model.translation.complete"

// handleEvent receives translation webhook notifications. Model loading is
// driven by polling; the event only settles the job record early when the
// poller has not reached a terminal state yet.
func (s *apiServer) handleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	attrs := []any{
		logging.String(logging.FieldEventType, req.Event),
		logging.String(logging.FieldJobID, req.TranslationID),
	}
	if req.TranslationID != "" {
		if record, err := s.daemon.store.FindByTranslationID(r.Context(), req.TranslationID); err == nil {
			if req.Event == translationCompleteEvent && record.Status == jobs.StatusPending {
				if err := s.daemon.store.MarkComplete(r.Context(), record.ID); err != nil {
					s.log().Warn("failed to settle job from event", logging.Error(err))
				} else {
					record.Status = jobs.StatusComplete
				}
			}
			attrs = append(attrs, logging.String(logging.FieldState, string(record.Status)))
		}
	}
	s.log().Info("translation event received", attrs...)
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
