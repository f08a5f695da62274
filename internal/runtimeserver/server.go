package runtimeserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/muurk/quotegen/internal/discovery"
	"github.com/muurk/quotegen/internal/logging"
	"github.com/muurk/quotegen/internal/version"
)

// Config holds the daemon configuration
type Config struct {
	Host          string
	Port          int
	CatalogPath   string        // YAML catalog file; empty uses the embedded catalog
	DownloadSteps int           // Progress frames per download
	StepDelay     time.Duration // Pause between download progress frames
	TokenDelay    time.Duration // Pause between generated tokens
	Advertise     bool          // Register the service over mDNS
	InstanceName  string        // mDNS instance name; defaults to "quotegen-runtime on <hostname>"
	Seed          uint64        // Phrasebook seed; 0 picks one from the clock
}

// DefaultConfig returns the settings used by "quotegen-runtime serve"
func DefaultConfig() *Config {
	return &Config{
		Host:          "127.0.0.1",
		Port:          8765,
		DownloadSteps: 20,
		StepDelay:     150 * time.Millisecond,
		TokenDelay:    40 * time.Millisecond,
		Advertise:     true,
	}
}

// Server is the stand-in model runtime
type Server struct {
	config   *Config
	catalog  *Catalog
	phrases  *Phrasebook
	metrics  *Metrics
	upgrader websocket.Upgrader

	httpServer *http.Server
	listener   net.Listener

	mu          sync.Mutex
	activeConns map[*websocket.Conn]string
	downloading map[string]bool
	wg          sync.WaitGroup
}

// New creates a server from config, loading the catalog and phrasebook
func New(config *Config) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.DownloadSteps <= 0 {
		config.DownloadSteps = 1
	}

	catalog, err := LoadCatalog(config.CatalogPath)
	if err != nil {
		return nil, err
	}

	seed := config.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	phrases, err := NewPhrasebook(seed)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:      config,
		catalog:     catalog,
		phrases:     phrases,
		metrics:     NewMetrics(),
		activeConns: make(map[*websocket.Conn]string),
		downloading: make(map[string]bool),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	return s, nil
}

// Catalog returns the model catalog served by s
func (s *Server) Catalog() *Catalog {
	return s.catalog
}

// Addr returns the listening address once Listen has succeeded
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Listen binds the configured address. Port 0 picks a free port.
func (s *Server) Listen() error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Run serves until ctx is cancelled, advertising over mDNS when enabled.
// It calls Listen first if needed and shuts down gracefully on return.
func (s *Server) Run(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	logging.Info("Starting quotegen runtime",
		zap.String("addr", s.Addr()),
		zap.Int("models", s.catalog.Count()),
		zap.Bool("mdns", s.config.Advertise),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := s.httpServer.Serve(s.listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	})

	if s.config.Advertise {
		g.Go(func() error {
			txt := version.TXT()
			txt["api"] = "v1"
			txt["models"] = strconv.Itoa(s.catalog.Count())
			ad, err := discovery.Advertise(s.instanceName(), s.listenPort(), txt)
			if err != nil {
				// mDNS is optional; a host without multicast still serves clients
				logging.Warn("mDNS advertisement unavailable", zap.Error(err))
				return nil
			}
			<-gctx.Done()
			ad.Shutdown()
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown stops accepting requests, closes open streams and waits for handlers
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down runtime...")

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	s.mu.Lock()
	for conn, remoteAddr := range s.activeConns {
		logging.Info("Closing active stream", zap.String("remote_addr", remoteAddr))
		_ = conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All streams closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}

	logging.Sync()

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// ActiveStreams returns the number of open websocket streams
func (s *Server) ActiveStreams() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}

func (s *Server) trackConn(conn *websocket.Conn, remoteAddr string) func() {
	s.mu.Lock()
	s.activeConns[conn] = remoteAddr
	s.mu.Unlock()
	s.wg.Add(1)
	s.metrics.streams.Inc()
	logging.LogConnection(remoteAddr, "stream_opened")

	return func() {
		_ = conn.Close()
		s.mu.Lock()
		delete(s.activeConns, conn)
		s.mu.Unlock()
		s.metrics.streams.Dec()
		s.wg.Done()
		logging.LogConnection(remoteAddr, "stream_closed")
	}
}

func (s *Server) instanceName() string {
	if s.config.InstanceName != "" {
		return s.config.InstanceName
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return "quotegen-runtime on " + host
}

func (s *Server) listenPort() int {
	if tcp, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return s.config.Port
}
