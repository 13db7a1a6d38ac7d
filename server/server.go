// Package server exposes scan results over WebSocket and HTTP, and accepts
// injected scans from external tools.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grandcat/zeroconf"
	"github.com/rs/zerolog"

	"github.com/dotside-studios/rccard-agent/buildinfo"
	"github.com/dotside-studios/rccard-agent/nfc"
	"github.com/dotside-studios/rccard-agent/protocol"
)

// Config holds the server configuration
type Config struct {
	Port      int
	Host      string
	APISecret string // Optional API secret for WebSocket, tag input and last result
	MDNS      bool   // Advertise the service over mDNS

	// TLS configuration (optional)
	CertFile string
	KeyFile  string

	// Handler processes injected scans. Nil uses the default extractor.
	Handler *nfc.Handler
	Logger  zerolog.Logger
}

// TLSEnabled returns true if TLS is configured.
func (c Config) TLSEnabled() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

// Server manages the HTTP and WebSocket server
type Server struct {
	config   Config
	logger   zerolog.Logger
	handler  *nfc.Handler
	cache    *nfc.ResultCache
	clients  *ClientManager
	upgrader websocket.Upgrader

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	mdnsServer *zeroconf.Server
	serveDone  chan struct{}
}

// New creates a new server instance
func New(config Config) *Server {
	logger := config.Logger.With().Str("component", "server").Logger()
	handler := config.Handler
	if handler == nil {
		handler = nfc.NewHandler(nil, config.Logger)
	}

	return &Server{
		config:  config,
		logger:  logger,
		handler: handler,
		cache:   nfc.NewResultCache(),
		clients: NewClientManager(logger),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
	}
}

// Clients returns the WebSocket client manager.
func (s *Server) Clients() *ClientManager {
	return s.clients
}

// Routes returns the server's HTTP handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(RouteHealth, enableCORS(s.handleHealthCheck))
	mux.HandleFunc(RouteTag, enableCORS(s.handleTagInput(true)))
	mux.HandleFunc(RouteDecode, enableCORS(s.handleTagInput(false)))
	mux.HandleFunc(RouteLast, enableCORS(s.handleLast))
	mux.HandleFunc(RouteWebSocket, s.handleWebSocket)
	mux.HandleFunc("/", enableCORS(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(buildinfo.DisplayName + " running"))
	}))
	return mux
}

// Publish records a scan result and pushes it to every WebSocket client as
// an onNfcIntent method call.
func (s *Server) Publish(r nfc.Result) {
	if !s.cache.Record(r, time.Now()) {
		s.logger.Debug().Str("tag", r.TagID).Msg("repeat scan")
	}
	s.clients.Broadcast(protocol.NewIntentCall(PayloadFromResult(r)))
}

// Consume publishes results until the channel is closed or ctx is done.
func (s *Server) Consume(ctx context.Context, results <-chan nfc.Result) {
	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-results:
			if !ok {
				return
			}
			s.Publish(r)
		}
	}
}

// Start binds the listening socket and serves in the background. Bind errors
// are returned directly; mDNS failures are logged and ignored.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpServer != nil {
		return fmt.Errorf("server already started")
	}

	addr := net.JoinHostPort(s.config.Host, fmt.Sprintf("%d", s.config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.serveDone = make(chan struct{})

	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		var err error
		if s.config.TLSEnabled() {
			err = srv.ServeTLS(ln, s.config.CertFile, s.config.KeyFile)
		} else {
			err = srv.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}(s.httpServer, s.serveDone)

	s.logger.Info().
		Str("addr", ln.Addr().String()).
		Bool("tls", s.config.TLSEnabled()).
		Msg("server listening")

	if s.config.MDNS {
		if err := s.startMDNS(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to start mDNS service, auto-discovery unavailable")
		}
	}
	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop stops the HTTP server gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mdnsServer != nil {
		s.mdnsServer.Shutdown()
		s.mdnsServer = nil
		s.logger.Info().Msg("mDNS service stopped")
	}

	s.clients.CloseAll()

	if s.httpServer == nil {
		return nil
	}
	err := s.httpServer.Shutdown(ctx)
	<-s.serveDone
	s.httpServer = nil
	s.listener = nil
	return err
}

// startMDNS registers the agent as an mDNS service for auto-discovery
func (s *Server) startMDNS() error {
	scheme := "ws"
	if s.config.TLSEnabled() {
		scheme = "wss"
	}
	txtRecords := []string{
		"version=" + buildinfo.Version,
		"protocol=" + scheme,
		"path=" + RouteWebSocket,
		"method=" + protocol.MethodOnNfcIntent,
	}

	port := s.config.Port
	if tcp, ok := s.listener.Addr().(*net.TCPAddr); ok {
		port = tcp.Port
	}

	server, err := zeroconf.Register(MDNSServiceName, MDNSServiceType, MDNSDomain, port, txtRecords, nil)
	if err != nil {
		return fmt.Errorf("failed to register mDNS service: %w", err)
	}

	s.mdnsServer = server
	s.logger.Info().Str("service", MDNSServiceType).Int("port", port).Msg("mDNS service registered")
	return nil
}

// enableCORS is a middleware that adds CORS headers to responses
func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", CORSAllowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", CORSAllowMethods)
		w.Header().Set("Access-Control-Allow-Headers", CORSAllowHeaders)

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// authorized checks the optional API secret, taken from the "secret" query
// parameter or a bearer token.
func (s *Server) authorized(r *http.Request) bool {
	if s.config.APISecret == "" {
		return true
	}
	if r.URL.Query().Get("secret") == s.config.APISecret {
		return true
	}
	return r.Header.Get("Authorization") == "Bearer "+s.config.APISecret
}

// handleWebSocket upgrades HTTP connections to WebSocket connections and manages
// the client connection lifecycle. Clients only receive; anything they send
// is discarded.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		s.logger.Warn().Str("remote", r.RemoteAddr).Msg("websocket connection rejected: invalid API secret")
		http.Error(w, "Unauthorized: Invalid API secret", http.StatusUnauthorized)
		return
	}

	codec, err := protocol.CodecByName(r.URL.Query().Get("encoding"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade error")
		return
	}

	client := newWSClient(conn, codec)
	s.clients.register(client)
	logger := s.logger.With().Str("client", client.id).Logger()
	logger.Info().Str("remote", r.RemoteAddr).Str("encoding", codec.Name()).Msg("websocket connected")

	defer func() {
		s.clients.unregister(client)
		conn.Close()
		logger.Info().Msg("websocket disconnected")
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// handleHealthCheck provides a health check endpoint (GET /api/v1/health)
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"version":   buildinfo.FullVersion(),
		"clients":   s.clients.Count(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleLast returns the most recently published result (GET /api/v1/last).
func (s *Server) handleLast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid API secret"})
		return
	}
	result, at, ok := s.cache.Last()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "no scan yet"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"payload":   PayloadFromResult(result),
		"scannedAt": at.Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
