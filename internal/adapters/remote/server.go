package remote

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"go.trai.ch/hotswap/internal/adapters/protocol"
	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const (
	writeWait       = 10 * time.Second
	shutdownTimeout = 5 * time.Second
	headerTimeout   = 10 * time.Second
)

// LatestBuild exposes the most recent successful build.
type LatestBuild interface {
	Latest() (domain.Event, bool)
}

// Server streams protocol events of one target to connected runners and serves the
// libraries of the latest build.
type Server struct {
	target    domain.Target
	bus       ports.EventBus
	latest    LatestBuild
	logger    ports.Logger
	keepAlive time.Duration
	upgrader  websocket.Upgrader
}

// NewServer creates a Server for target.
func NewServer(
	target domain.Target,
	bus ports.EventBus,
	latest LatestBuild,
	logger ports.Logger,
	keepAlive time.Duration,
) *Server {
	if keepAlive <= 0 {
		keepAlive = domain.DefaultKeepAliveInterval
	}
	return &Server{
		target:    target,
		bus:       bus,
		latest:    latest,
		logger:    logger,
		keepAlive: keepAlive,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
	}
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /target/{triple}", s.handleStream)
	mux.HandleFunc("GET /target/{triple}/files/{name}", s.handleFile)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: headerTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("serving updates for " + s.target.String() + " on " + addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return zerr.With(zerr.Wrap(err, "update server failed"), "address", addr)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) servesTarget(r *http.Request) bool {
	return r.PathValue("triple") == s.target.String()
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if !s.servesTarget(r) {
		http.NotFound(w, r)
		return
	}

	// Subscribe before the upgrade so that a connected client never misses an event.
	sub := s.bus.Subscribe()
	defer sub.Close()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed: " + err.Error())
		return
	}
	defer conn.Close()

	s.logger.Info("runner connected from " + r.RemoteAddr)
	defer s.logger.Info("runner disconnected from " + r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Runners never send data frames; reading only notices the peer closing.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		var ev domain.Event
		select {
		case <-ctx.Done():
			s.writeClose(conn, websocket.CloseGoingAway, "server shutting down")
			return
		case next, ok := <-sub.Events():
			if !ok {
				if err := sub.Err(); err != nil {
					s.logger.Error(zerr.With(err, "remote", r.RemoteAddr))
					s.writeClose(conn, websocket.CloseTryAgainLater, "lagged behind")
					return
				}
				s.writeClose(conn, websocket.CloseNormalClosure, "stream ended")
				return
			}
			ev = next
		case <-ticker.C:
			ev = domain.KeepAlive()
		}

		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, protocol.Marshal(ev)); err != nil {
			s.logger.Debug("write to runner failed: " + err.Error())
			return
		}
	}
}

func (s *Server) writeClose(conn *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	if !s.servesTarget(r) {
		http.NotFound(w, r)
		return
	}

	ev, ok := s.latest.Latest()
	if !ok {
		http.NotFound(w, r)
		return
	}
	rec, ok := ev.Library(r.PathValue("name"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	f, err := os.Open(rec.LocalPath)
	if err != nil {
		s.logger.Error(zerr.With(zerr.Wrap(err, "couldn't open library"), "path", rec.LocalPath))
		http.Error(w, "library unavailable", http.StatusGone)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, "library unavailable", http.StatusGone)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set(DigestHeader, rec.Hash.String())
	http.ServeContent(w, r, rec.Name, info.ModTime(), f)
}

// DigestHeader carries the hex blake3 digest of a served library.
const DigestHeader = "X-Hotswap-Digest"
