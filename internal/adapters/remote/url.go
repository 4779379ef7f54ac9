// Package remote carries the update protocol between an orchestrator and runners on
// other machines over websockets.
package remote

import (
	"errors"
	"net/url"

	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/zerr"
)

// URLForTarget returns the websocket URL a runner for target connects to.
func URLForTarget(server string, target domain.Target) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", zerr.With(errors.Join(domain.ErrInvalidScheme, err), "server", server)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", zerr.With(zerr.Wrap(domain.ErrInvalidScheme, "unsupported scheme"), "scheme", u.Scheme)
	}
	return u.JoinPath("target", target.String()).String(), nil
}

// fileURL returns the HTTP URL a library of the latest build is served from.
func fileURL(server string, target domain.Target, name string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", zerr.With(errors.Join(domain.ErrInvalidScheme, err), "server", server)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "http"
	case "https", "wss":
		u.Scheme = "https"
	default:
		return "", zerr.With(zerr.Wrap(domain.ErrInvalidScheme, "unsupported scheme"), "scheme", u.Scheme)
	}
	return u.JoinPath("target", target.String(), "files", name).String(), nil
}
