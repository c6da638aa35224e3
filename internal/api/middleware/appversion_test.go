package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testGateOptions() GateOptions {
	return GateOptions{
		MinimumVersion:       "1.0.6",
		TransitionMaxVersion: "1.0.4",
		ExemptPrefixes: []string{
			"/health",
			"/api/health",
			"/app/version",
			"/api/app/version",
			"/auth/",
			"/api/auth/",
		},
		AppStoreURLs: AppStoreURLs{
			IOS:     "https://apps.apple.com/app/buzznob/id6472345678",
			Android: "https://play.google.com/store/apps/details?id=com.buzznob.app",
		},
	}
}

func newGateRouter(gate *AppVersionGate) *gin.Engine {
	router := gin.New()
	router.Use(gate.Handler())
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "forwarded"})
	})
	return router
}

func TestDecide_Policy(t *testing.T) {
	tests := []struct {
		name        string
		minimum     string
		path        string
		version     string
		wantAllowed bool
		wantReason  RejectReason
	}{
		{"supported equal version", "1.0.6", "/api/mining/session", "1.0.6", true, ""},
		{"newer version", "1.0.6", "/api/mining/session", "1.1.0", true, ""},
		{"outdated version", "1.0.6", "/api/mining/session", "1.0.5", false, RejectOutdatedVersion},
		{"malformed version treated as zero", "1.0.6", "/api/mining/session", "abc", false, RejectOutdatedVersion},
		{"missing version after transition", "1.0.6", "/api/mining/session", "", false, RejectMissingVersion},
		{"missing version during transition", "1.0.4", "/api/mining/session", "", true, ""},
		{"missing version below transition max", "1.0.3", "/api/mining/session", "", true, ""},
		{"exempt health bypasses versionless client", "2.0.0", "/health", "", true, ""},
		{"exempt sub-mounted health", "2.0.0", "/api/health", "", true, ""},
		{"exempt auth with outdated version", "2.0.0", "/auth/login", "1.0.1", true, ""},
		{"exempt version discovery", "2.0.0", "/api/app/version", "", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testGateOptions()
			opts.MinimumVersion = tt.minimum
			gate := NewAppVersionGate(opts, zap.NewNop())

			got := gate.Decide(tt.path, tt.version)
			assert.Equal(t, tt.wantAllowed, got.Allowed)
			assert.Equal(t, tt.wantReason, got.Reason)
		})
	}
}

func TestDecide_Idempotent(t *testing.T) {
	gate := NewAppVersionGate(testGateOptions(), zap.NewNop())

	first := gate.Decide("/api/mining/session", "1.0.5")
	second := gate.Decide("/api/mining/session", "1.0.5")
	assert.Equal(t, first, second)
	assert.False(t, first.Allowed)
}

func TestDecide_EmptyTransitionMaxDisablesLeniency(t *testing.T) {
	opts := testGateOptions()
	opts.MinimumVersion = "1.0.0"
	opts.TransitionMaxVersion = ""
	gate := NewAppVersionGate(opts, zap.NewNop())

	got := gate.Decide("/api/mining/session", "")
	assert.False(t, got.Allowed)
	assert.Equal(t, RejectMissingVersion, got.Reason)
}

func TestHandler_OutdatedClientGets426Contract(t *testing.T) {
	gate := NewAppVersionGate(testGateOptions(), zap.NewNop())
	router := newGateRouter(gate)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/mining/session", nil)
	req.Header.Set(DefaultVersionHeader, "1.0.5")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUpgradeRequired, w.Code)

	var body struct {
		Success        bool              `json:"success"`
		Error          string            `json:"error"`
		Message        string            `json:"message"`
		Code           string            `json:"code"`
		MinimumVersion string            `json:"minimumVersion"`
		CurrentVersion string            `json:"currentVersion"`
		AppStoreURLs   map[string]string `json:"appStoreUrls"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.False(t, body.Success)
	assert.Equal(t, "APP_UPDATE_REQUIRED", body.Error)
	assert.Equal(t, "App update required. Please update to version 1.0.6 or later.", body.Message)
	assert.Equal(t, "UPDATE_REQUIRED", body.Code)
	assert.Equal(t, "1.0.6", body.MinimumVersion)
	assert.Equal(t, "1.0.5", body.CurrentVersion)
	assert.Equal(t, "https://apps.apple.com/app/buzznob/id6472345678", body.AppStoreURLs["ios"])
	assert.Equal(t, "https://play.google.com/store/apps/details?id=com.buzznob.app", body.AppStoreURLs["android"])
}

func TestHandler_MissingVersionReportsUnknown(t *testing.T) {
	gate := NewAppVersionGate(testGateOptions(), zap.NewNop())
	router := newGateRouter(gate)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/claims", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUpgradeRequired, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unknown", body["currentVersion"])
	assert.Equal(t, "1.0.6", body["minimumVersion"])
}

func TestHandler_SupportedClientPassesThrough(t *testing.T) {
	gate := NewAppVersionGate(testGateOptions(), zap.NewNop())
	router := newGateRouter(gate)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/mining/session", nil)
	req.Header.Set(DefaultVersionHeader, "1.0.6")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "forwarded")
}

func TestHandler_ExemptPathBypassesGate(t *testing.T) {
	opts := testGateOptions()
	opts.MinimumVersion = "2.0.0"
	gate := NewAppVersionGate(opts, zap.NewNop())

	router := gin.New()
	router.Use(gate.Handler())
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_CustomHeaderName(t *testing.T) {
	opts := testGateOptions()
	opts.Header = "X-BuzzNob-Build"
	gate := NewAppVersionGate(opts, zap.NewNop())
	router := newGateRouter(gate)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/mining/session", nil)
	req.Header.Set("X-BuzzNob-Build", "1.2.0")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_RejectionEmitsWarnEvent(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	gate := NewAppVersionGate(testGateOptions(), zap.New(core))
	router := newGateRouter(gate)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/mining/session", nil)
	req.Header.Set(DefaultVersionHeader, "1.0.5")
	router.ServeHTTP(w, req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zap.WarnLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/api/mining/session", fields["path"])
	assert.Equal(t, "1.0.5", fields["client_version"])
	assert.Equal(t, "1.0.6", fields["minimum_version"])
	assert.Equal(t, string(RejectOutdatedVersion), fields["reason"])
}

func TestHandler_AllowedRequestEmitsNoEvent(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	gate := NewAppVersionGate(testGateOptions(), zap.New(core))
	router := newGateRouter(gate)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, logs.Len())
}
