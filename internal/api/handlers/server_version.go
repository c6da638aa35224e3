package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/buzznob/appgate/internal/api/middleware"
	"github.com/buzznob/appgate/internal/pkg/version"
)

// AppVersionInfo is the version-discovery payload. The endpoint bypasses
// the gate, so an outdated client can always learn what build it needs and
// where to get it.
type AppVersionInfo struct {
	Success        bool                    `json:"success"`
	MinimumVersion string                  `json:"minimumVersion"`
	AppStoreURLs   middleware.AppStoreURLs `json:"appStoreUrls"`
	CurrentVersion string                  `json:"currentVersion,omitempty"`
	Supported      *bool                   `json:"supported,omitempty"`
}

// GetAppVersion handles GET /app/version. When the client reports its own
// version, the response also says whether that build passes the gate.
func (s *Server) GetAppVersion(c *gin.Context) {
	info := AppVersionInfo{
		Success:        true,
		MinimumVersion: s.cfg.Gate.MinimumVersion,
		AppStoreURLs: middleware.AppStoreURLs{
			IOS:     s.cfg.Gate.AppStore.IOSURL,
			Android: s.cfg.Gate.AppStore.AndroidURL,
		},
	}

	if raw := c.GetHeader(s.cfg.Gate.VersionHeader); raw != "" {
		supported := version.Parse(raw).AtLeast(version.Parse(s.cfg.Gate.MinimumVersion))
		info.CurrentVersion = raw
		info.Supported = &supported
	}

	c.JSON(http.StatusOK, info)
}
