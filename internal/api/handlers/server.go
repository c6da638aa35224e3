// Package handlers implements the gateway's own HTTP surface: the health
// and app-version discovery endpoints plus the reverse proxy that carries
// gated traffic to the backend.
package handlers

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"go.uber.org/zap"

	"github.com/buzznob/appgate/internal/config"
	apperrors "github.com/buzznob/appgate/internal/pkg/errors"
)

// Server holds the handler dependencies.
type Server struct {
	cfg   *config.Config
	log   *zap.Logger
	proxy *httputil.ReverseProxy
}

// NewServer builds the handler set. The upstream URL is parsed once here;
// when no upstream is configured the proxy stays nil and gated routes
// answer 502 until one is set.
func NewServer(cfg *config.Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{cfg: cfg, log: log}

	if cfg.Upstream.URL == "" {
		return s, nil
	}

	target, err := url.Parse(cfg.Upstream.URL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream url: %w", err)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		appErr := apperrors.ErrUpstreamUnavailable(err)
		log.Error("proxy upstream request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(appErr.HTTPStatus)
		fmt.Fprintf(w, `{"code":%q,"message":%q}`, appErr.Code, appErr.Message)
	}
	s.proxy = proxy

	return s, nil
}
