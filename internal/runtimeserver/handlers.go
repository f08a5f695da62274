package runtimeserver

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/quotegen/internal/logging"
	"github.com/muurk/quotegen/internal/runtime"
	"github.com/muurk/quotegen/internal/version"
)

const (
	// Time allowed to write a frame to the peer
	writeWait = 10 * time.Second

	// Time allowed for the client to send its generate request
	requestWait = 30 * time.Second

	// Largest generate request accepted from a client
	maxMessageSize = 8192
)

// Handler returns the HTTP routes of the runtime protocol
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.instrument)

	r.HandleFunc(runtime.PathHealth, s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc(runtime.PathModels, s.handleListModels).Methods(http.MethodGet)
	r.HandleFunc(runtime.PathModels+"/{id}/load", s.handleLoad).Methods(http.MethodPost)
	r.HandleFunc(runtime.PathModels+"/{id}/download", s.handleDownload).Methods(http.MethodGet)
	r.HandleFunc(runtime.PathGenerate, s.handleGenerate).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, runtime.HealthResponse{Status: "ok", Loaded: s.catalog.Loaded()})
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, runtime.ModelsResponse{Models: s.catalog.List()})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := s.catalog.Get(id); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("model %s not found", id)})
		return
	}

	loaded, reason := s.catalog.Load(id)
	if loaded {
		logging.Info("Model loaded", zap.String("model", id))
	} else {
		logging.Warn("Model load declined", zap.String("model", id), zap.String("reason", reason))
	}
	writeJSON(w, http.StatusOK, runtime.LoadResponse{Loaded: loaded, Error: reason})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	model, ok := s.catalog.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("model %s not found", id)})
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("Download upgrade failed", zap.String("model", id), zap.Error(err))
		return
	}
	release := s.trackConn(conn, r.RemoteAddr)
	defer release()

	ctx := watchClose(r.Context(), conn)

	if !s.beginDownload(id) {
		s.metrics.downloads.WithLabelValues("rejected").Inc()
		_ = s.writeFrame(conn, "download", runtime.Frame{Type: runtime.FrameError, Error: "download already in progress"})
		return
	}
	defer s.endDownload(id)

	if !model.Downloaded {
		steps := s.config.DownloadSteps
		for i := 1; i <= steps; i++ {
			if !sleepCtx(ctx, s.config.StepDelay) {
				s.metrics.downloads.WithLabelValues("aborted").Inc()
				logging.Info("Download aborted by client", zap.String("model", id))
				return
			}
			progress := float64(i) / float64(steps)
			if err := s.writeFrame(conn, "download", runtime.Frame{Type: runtime.FrameProgress, Progress: progress}); err != nil {
				s.metrics.downloads.WithLabelValues("aborted").Inc()
				return
			}
		}
		s.catalog.MarkDownloaded(id)
	} else {
		_ = s.writeFrame(conn, "download", runtime.Frame{Type: runtime.FrameProgress, Progress: 1})
	}

	s.metrics.downloads.WithLabelValues("completed").Inc()
	logging.Info("Model downloaded", zap.String("model", id))
	_ = s.writeFrame(conn, "download", runtime.Frame{Type: runtime.FrameDone})
	closeNormally(conn)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("Generate upgrade failed", zap.Error(err))
		return
	}
	release := s.trackConn(conn, r.RemoteAddr)
	defer release()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(requestWait))

	var req runtime.Frame
	if err := conn.ReadJSON(&req); err != nil {
		s.metrics.generations.WithLabelValues("bad_request").Inc()
		logging.Warn("Failed to read generate request", zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
		return
	}
	_ = conn.SetReadDeadline(time.Time{})
	logging.LogStreamFrame("generate", "received", string(req.Type), len(req.Prompt))

	reply := func(f runtime.Frame) error {
		f.RequestID = req.RequestID
		return s.writeFrame(conn, "generate", f)
	}

	if req.Type != runtime.FrameGenerate || req.Prompt == "" {
		s.metrics.generations.WithLabelValues("bad_request").Inc()
		_ = reply(runtime.Frame{Type: runtime.FrameError, Error: "expected a generate frame with a prompt"})
		return
	}

	active := s.catalog.Loaded()
	if active == "" {
		s.metrics.generations.WithLabelValues("no_model").Inc()
		_ = reply(runtime.Frame{Type: runtime.FrameError, Error: "no model loaded"})
		return
	}

	ctx := watchClose(r.Context(), conn)
	tokens := Truncate(Tokenize(s.phrases.Pick(req.Prompt)), req.MaxTokens)

	logging.Debug("Generating",
		zap.String("request_id", req.RequestID),
		zap.String("model", active),
		zap.Int("tokens", len(tokens)),
	)

	for _, tok := range tokens {
		if !sleepCtx(ctx, s.config.TokenDelay) {
			s.metrics.generations.WithLabelValues("aborted").Inc()
			return
		}
		if err := reply(runtime.Frame{Type: runtime.FrameToken, Text: tok}); err != nil {
			s.metrics.generations.WithLabelValues("aborted").Inc()
			return
		}
		s.metrics.tokens.Inc()
	}

	s.metrics.generations.WithLabelValues("completed").Inc()
	_ = reply(runtime.Frame{Type: runtime.FrameDone})
	closeNormally(conn)
}

func (s *Server) beginDownload(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.downloading[id] {
		return false
	}
	s.downloading[id] = true
	return true
}

func (s *Server) endDownload(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.downloading, id)
}

// writeFrame sends one JSON frame with a write deadline
func (s *Server) writeFrame(conn *websocket.Conn, stream string, f runtime.Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		logging.Debug("Frame write failed", zap.String("stream", stream), zap.Error(err))
		return err
	}
	logging.LogStreamFrame(stream, "sent", string(f.Type), len(data))
	return nil
}

// watchClose returns a context cancelled when the peer closes or breaks the connection.
// It owns the read side of conn from then on.
func watchClose(parent context.Context, conn *websocket.Conn) context.Context {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()
	return ctx
}

// sleepCtx waits for d unless ctx ends first
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func closeNormally(conn *websocket.Conn) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Debug("Failed to write response", zap.Error(err))
	}
}

// statusRecorder captures the response code; it forwards Hijack for websocket upgrades
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

// instrument logs each request and counts it by route template and status
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		w.Header().Set("Server", version.Product("quotegen-runtime"))
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		s.metrics.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, rec.status, time.Since(started))
	})
}
