// Package app is the composition root for the BuzzNob AppGate.
package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/buzznob/appgate/internal/api/handlers"
	"github.com/buzznob/appgate/internal/api/middleware"
	"github.com/buzznob/appgate/internal/config"
	"github.com/buzznob/appgate/internal/pkg/logger"
)

// Application holds composed application dependencies.
type Application struct {
	Config *config.Config
	Router *gin.Engine
}

// Bootstrap wires the version gate, handlers and router from loaded
// configuration. Requires logger.Init to have run.
func Bootstrap(cfg *config.Config) (*Application, error) {
	gate := middleware.NewAppVersionGate(middleware.GateOptions{
		MinimumVersion:       cfg.Gate.MinimumVersion,
		TransitionMaxVersion: cfg.Gate.TransitionMaxVersion,
		Header:               cfg.Gate.VersionHeader,
		ExemptPrefixes:       cfg.Gate.ExemptPrefixes,
		AppStoreURLs: middleware.AppStoreURLs{
			IOS:     cfg.Gate.AppStore.IOSURL,
			Android: cfg.Gate.AppStore.AndroidURL,
		},
	}, logger.L().Named("gate"))

	server, err := handlers.NewServer(cfg, logger.L().Named("proxy"))
	if err != nil {
		return nil, fmt.Errorf("init handlers: %w", err)
	}

	return &Application{
		Config: cfg,
		Router: newRouter(cfg, server, gate),
	}, nil
}
