package app

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/buzznob/appgate/internal/api/handlers"
	"github.com/buzznob/appgate/internal/api/middleware"
	"github.com/buzznob/appgate/internal/config"
)

// defaultAllowedOrigins is the fallback CORS allowlist when configuration
// supplies none.
var defaultAllowedOrigins = []string{
	"https://app.buzznob.com",
	"https://buzznob.com",
}

func newRouter(cfg *config.Config, server *handlers.Server, gate *middleware.AppVersionGate) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.ErrorHandler())
	router.Use(cors.New(buildCORSConfig(cfg)))
	router.Use(gate.Handler())

	// The gateway's own surface, registered under both mount points so the
	// routes line up with the exemption list however the edge reaches us.
	for _, base := range []string{"", "/api"} {
		router.GET(base+"/health", server.GetHealth)
		router.GET(base+"/app/version", server.GetAppVersion)
	}

	// Everything else belongs to the backend.
	router.NoRoute(server.Proxy)

	return router
}

// buildCORSConfig maps server CORS settings onto gin-contrib defaults.
// A wildcard origin is dropped unless the unsafe flag is set, and unsafe
// mode disables credentials (the CORS spec forbids the combination).
func buildCORSConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, middleware.RequestIDHeader)
	if cfg.Gate.VersionHeader != "" {
		c.AllowHeaders = append(c.AllowHeaders, cfg.Gate.VersionHeader)
	}
	c.AllowCredentials = cfg.Server.AllowCredentials

	if cfg.Server.UnsafeAllowAllOrigins {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
		return c
	}

	origins := make([]string, 0, len(cfg.Server.AllowedOrigins))
	for _, origin := range cfg.Server.AllowedOrigins {
		if origin == "*" {
			continue
		}
		origins = append(origins, origin)
	}
	if len(origins) == 0 {
		origins = defaultAllowedOrigins
	}
	c.AllowOrigins = origins

	return c
}
