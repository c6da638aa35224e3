// Package middleware provides HTTP middleware for the BuzzNob AppGate.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/buzznob/appgate/internal/pkg/version"
)

// DefaultVersionHeader is the header mobile clients report their build
// version in.
const DefaultVersionHeader = "X-App-Version"

// RejectReason classifies why the gate refused a request.
type RejectReason string

const (
	// RejectMissingVersion: no version header and the transition window
	// for pre-reporting builds is closed.
	RejectMissingVersion RejectReason = "missing_version"

	// RejectOutdatedVersion: the reported version is below the minimum.
	RejectOutdatedVersion RejectReason = "outdated_version"
)

// Decision is the outcome of evaluating one request against the gate policy.
type Decision struct {
	Allowed bool
	Reason  RejectReason
}

// AppStoreURLs points rejected clients at the store listings.
type AppStoreURLs struct {
	IOS     string `json:"ios"`
	Android string `json:"android"`
}

// GateOptions configures an AppVersionGate. All policy inputs are injected;
// the gate reads no globals and cannot be reconfigured after construction.
type GateOptions struct {
	// MinimumVersion is the lowest client version allowed through.
	MinimumVersion string

	// TransitionMaxVersion bounds the leniency window for builds that
	// predate version reporting: requests without a version header pass
	// while MinimumVersion is at or below this value. Empty disables the
	// window, so versionless requests are always rejected.
	TransitionMaxVersion string

	// Header overrides DefaultVersionHeader when set.
	Header string

	// ExemptPrefixes are request path prefixes that bypass gating entirely
	// (health, version discovery, auth, and other endpoints an outdated
	// client still needs to reach).
	ExemptPrefixes []string

	// AppStoreURLs are included in rejection bodies.
	AppStoreURLs AppStoreURLs
}

// AppVersionGate rejects requests from app builds older than a configured
// minimum. It holds only immutable configuration, so a single instance is
// safe for any number of concurrent requests.
type AppVersionGate struct {
	minimum      version.Version
	minimumRaw   string
	header       string
	exempt       []string
	inTransition bool
	stores       AppStoreURLs
	log          *zap.Logger
}

// NewAppVersionGate builds a gate from options. Rejections are logged at
// warn level through log; pass zap.NewNop() (or nil) to silence them.
func NewAppVersionGate(opts GateOptions, log *zap.Logger) *AppVersionGate {
	if log == nil {
		log = zap.NewNop()
	}
	header := opts.Header
	if header == "" {
		header = DefaultVersionHeader
	}
	minimum := version.Parse(opts.MinimumVersion)
	inTransition := false
	if opts.TransitionMaxVersion != "" {
		inTransition = version.Compare(minimum, version.Parse(opts.TransitionMaxVersion)) <= 0
	}
	return &AppVersionGate{
		minimum:      minimum,
		minimumRaw:   opts.MinimumVersion,
		header:       header,
		exempt:       opts.ExemptPrefixes,
		inTransition: inTransition,
		stores:       opts.AppStoreURLs,
		log:          log,
	}
}

// Decide evaluates the gate policy for one request. It is pure: identical
// inputs always yield identical decisions.
//
// Order matters: exemptions are checked before the version header so that
// health checks and auth stay reachable even for clients that cannot
// report a version at all.
func (g *AppVersionGate) Decide(path, rawVersion string) Decision {
	for _, prefix := range g.exempt {
		if strings.HasPrefix(path, prefix) {
			return Decision{Allowed: true}
		}
	}
	if rawVersion == "" {
		if g.inTransition {
			return Decision{Allowed: true}
		}
		return Decision{Reason: RejectMissingVersion}
	}
	if !version.Parse(rawVersion).AtLeast(g.minimum) {
		return Decision{Reason: RejectOutdatedVersion}
	}
	return Decision{Allowed: true}
}

// updateRequiredBody is the wire contract toward mobile clients.
// Field names are fixed: released builds parse this shape.
type updateRequiredBody struct {
	Success        bool         `json:"success"`
	Error          string       `json:"error"`
	Message        string       `json:"message"`
	Code           string       `json:"code"`
	MinimumVersion string       `json:"minimumVersion"`
	CurrentVersion string       `json:"currentVersion"`
	AppStoreURLs   AppStoreURLs `json:"appStoreUrls"`
}

// Handler returns the Gin middleware enforcing the gate. Rejected requests
// get HTTP 426 with an update-required body; each rejection emits a warn
// event so gate adoption can be monitored without in-process counters.
func (g *AppVersionGate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(g.header)
		decision := g.Decide(c.Request.URL.Path, raw)
		if decision.Allowed {
			c.Next()
			return
		}

		reported := raw
		if reported == "" {
			reported = "unknown"
		}
		g.log.Warn("app version gate rejected request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_version", reported),
			zap.String("minimum_version", g.minimumRaw),
			zap.String("reason", string(decision.Reason)),
		)

		c.AbortWithStatusJSON(http.StatusUpgradeRequired, updateRequiredBody{
			Success:        false,
			Error:          "APP_UPDATE_REQUIRED",
			Message:        "App update required. Please update to version " + g.minimumRaw + " or later.",
			Code:           "UPDATE_REQUIRED",
			MinimumVersion: g.minimumRaw,
			CurrentVersion: reported,
			AppStoreURLs:   g.stores,
		})
	}
}
