package handlers

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/buzznob/appgate/internal/pkg/errors"
)

// Proxy forwards gated traffic to the upstream backend. Registered as the
// NoRoute handler: everything the gateway does not serve itself goes here.
func (s *Server) Proxy(c *gin.Context) {
	if s.proxy == nil {
		_ = c.Error(apperrors.ErrUpstreamNotConfigured())
		return
	}
	s.proxy.ServeHTTP(c.Writer, c.Request)
}
