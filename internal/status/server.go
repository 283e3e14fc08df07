package status

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/keyward/keyward/internal/accesslist"
	"github.com/keyward/keyward/internal/logging"
	"github.com/keyward/keyward/internal/registry"
	"github.com/keyward/keyward/internal/version"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Send pings with this period to keep idle feed connections alive
	pingPeriod = 30 * time.Second

	// Shutdown grace period for in-flight requests
	shutdownTimeout = 5 * time.Second
)

// Payload is the document served at /v1/status.
type Payload struct {
	Version        string         `json:"version"`
	UptimeSecs     int64          `json:"uptime_secs"`
	AuthorizedKeys int            `json:"authorized_keys"`
	FeedClients    int            `json:"feed_clients"`
	Sync           registry.Stats `json:"sync"`
}

// Server is the read-only HTTP face of the daemon.
type Server struct {
	httpServer *http.Server
	list       *accesslist.List
	syncer     *registry.Syncer
	hub        *Hub
	upgrader   websocket.Upgrader
	started    time.Time
}

// NewServer wires the status endpoints over the given list, syncer,
// and decision hub.
func NewServer(addr string, list *accesslist.List, syncer *registry.Syncer, hub *Hub) *Server {
	s := &Server{
		list:   list,
		syncer: syncer,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The feed serves dashboards anywhere on the operator's
			// LAN; origin checks would only fight them.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		started: time.Now(),
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logging.Info("Status server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	payload := Payload{
		Version:        version.Version,
		UptimeSecs:     int64(time.Since(s.started).Seconds()),
		AuthorizedKeys: s.list.Len(),
		FeedClients:    s.hub.Subscribers(),
		Sync:           s.syncer.Stats(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Warn("Failed to encode status payload", zap.Error(err))
	}
}

// handleEvents upgrades the request and streams decisions until either
// side goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		logging.Debug("Feed upgrade failed", zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
		return
	}
	defer conn.Close()
	logging.Debug("Feed client connected", zap.String("remote_addr", r.RemoteAddr))

	feed, cancel := s.hub.Subscribe()
	defer cancel()

	// The client never sends data, but reading is what surfaces close
	// frames and dead connections.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-gone:
			logging.Debug("Feed client disconnected", zap.String("remote_addr", r.RemoteAddr))
			return
		case d, ok := <-feed:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(d); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
