package remote

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/websocket"
	"go.trai.ch/hotswap/internal/adapters/protocol"
	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.UpdateSource = (*Client)(nil)

// Client connects a runner to a remote Server. Libraries of each finished build are
// downloaded into a local directory before the runner is told to load them.
type Client struct {
	server      string
	target      domain.Target
	dir         string
	hasher      ports.Hasher
	logger      ports.Logger
	http        *http.Client
	dialer      *websocket.Dialer
	readTimeout time.Duration
}

// NewClient creates a Client that stores libraries in dir.
func NewClient(
	server string,
	target domain.Target,
	dir string,
	hasher ports.Hasher,
	logger ports.Logger,
	keepAlive time.Duration,
) *Client {
	if keepAlive <= 0 {
		keepAlive = domain.DefaultKeepAliveInterval
	}
	return &Client{
		server:      server,
		target:      target,
		dir:         dir,
		hasher:      hasher,
		logger:      logger,
		http:        &http.Client{},
		dialer:      websocket.DefaultDialer,
		readTimeout: 3 * keepAlive,
	}
}

// Updates dials the server and streams runner messages until the connection or ctx ends.
func (c *Client) Updates(ctx context.Context) (<-chan domain.RunnerMessage, error) {
	wsURL, err := URLForTarget(c.server, c.target)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(c.dir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "couldn't create library directory"), "path", c.dir)
	}

	conn, resp, err := c.dialer.DialContext(ctx, wsURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "couldn't connect to update server"), "url", wsURL)
	}
	c.logger.Info("connected to " + wsURL)

	out := make(chan domain.RunnerMessage)
	go c.run(ctx, conn, out)
	return out, nil
}

func (c *Client) run(ctx context.Context, conn *websocket.Conn, out chan<- domain.RunnerMessage) {
	defer close(out)

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer conn.Close()

	send := func(msg domain.RunnerMessage) bool {
		select {
		case out <- msg:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		if err := conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			send(domain.ConnectionClosed(err))
			return
		}
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				err = nil
			}
			send(domain.ConnectionClosed(err))
			return
		}

		ev, err := protocol.Unmarshal(frame)
		if err != nil {
			c.logger.Error(err)
			continue
		}

		msg, ok := c.handle(ctx, ev)
		if ok && !send(msg) {
			return
		}
	}
}

func (c *Client) handle(ctx context.Context, ev domain.Event) (domain.RunnerMessage, bool) {
	switch ev.Kind {
	case domain.EventBuildStarted:
		c.logger.Info("build " + buildLabel(ev.ID) + " started")
	case domain.EventBuildFailed:
		c.logger.Warn("build " + buildLabel(ev.ID) + " failed: " + ev.Reason)
	case domain.EventAssetUpdated:
		return domain.AssetChanged(ev.Name, ev.LocalPath), true
	case domain.EventBuildEnded:
		if err := c.sync(ctx, ev.Libraries); err != nil {
			c.logger.Error(zerr.With(err, "build", uint32(ev.ID)))
			return domain.RunnerMessage{}, false
		}
		return domain.LoadRootLib(ev.ID, filepath.Join(c.dir, ev.RootLibrary)), true
	case domain.EventKeepAlive:
	}
	return domain.RunnerMessage{}, false
}

// sync downloads every library whose local copy is missing or differs.
func (c *Client) sync(ctx context.Context, records []domain.HashedFileRecord) error {
	for _, rec := range records {
		local := filepath.Join(c.dir, rec.Name)
		if digest, err := c.hasher.HashFile(local); err == nil && digest == rec.Hash {
			continue
		}
		if err := c.download(ctx, rec, local); err != nil {
			return err
		}
		c.logger.Debug("downloaded " + rec.Name)
	}
	return nil
}

func (c *Client) download(ctx context.Context, rec domain.HashedFileRecord, dst string) error {
	src, err := fileURL(c.server, c.target, rec.Name)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, http.NoBody)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "couldn't build download request"), "url", src)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "couldn't download library"), "url", src)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return zerr.With(zerr.With(zerr.New("unexpected download status"), "url", src), "status", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "couldn't read library"), "url", src)
	}
	if got := c.hasher.HashBytes(data); got != rec.Hash {
		err := zerr.With(zerr.Wrap(domain.ErrHashMismatch, "downloaded bytes differ"), "library", rec.Name)
		return zerr.With(zerr.With(err, "want", rec.Hash.String()), "got", got.String())
	}

	tmp, err := os.CreateTemp(c.dir, "."+rec.Name+".*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "couldn't create temporary file"), "dir", c.dir)
	}
	defer os.Remove(tmp.Name())

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		return zerr.With(zerr.Wrap(err, "couldn't write library"), "path", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return zerr.With(zerr.Wrap(err, "couldn't install library"), "path", dst)
	}
	return nil
}
