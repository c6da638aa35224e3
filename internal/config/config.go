// Package config provides configuration management for the BuzzNob AppGate.
//
// Configuration is loaded from:
// 1. config.yaml file (optional)
// 2. Environment variables (standard names like SERVER_PORT, GATE_MINIMUM_VERSION)
// 3. Default values
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration structure. It is built once at startup
// and never mutated afterwards.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Gate     GateConfig     `mapstructure:"gate"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	AllowedOrigins        []string `mapstructure:"allowed_origins"`
	AllowCredentials      bool     `mapstructure:"allow_credentials"`
	UnsafeAllowAllOrigins bool     `mapstructure:"unsafe_allow_all_origins"`
}

// UpstreamConfig locates the backend the gateway forwards gated traffic to.
type UpstreamConfig struct {
	URL string `mapstructure:"url"`
}

// GateConfig contains the app-version gate policy inputs.
type GateConfig struct {
	// MinimumVersion is the lowest app build allowed through the gate.
	MinimumVersion string `mapstructure:"minimum_version"`

	// TransitionMaxVersion closes the leniency window for versionless
	// clients once MinimumVersion moves past it. Builds up to 1.0.4
	// shipped before the version header existed.
	TransitionMaxVersion string `mapstructure:"transition_max_version"`

	// VersionHeader is the request header carrying the client build version.
	VersionHeader string `mapstructure:"version_header"`

	// ExemptPrefixes lists request path prefixes that bypass the gate.
	ExemptPrefixes []string `mapstructure:"exempt_prefixes"`

	AppStore AppStoreConfig `mapstructure:"app_store"`
}

// AppStoreConfig holds the store listing URLs returned to rejected clients.
type AppStoreConfig struct {
	IOSURL     string `mapstructure:"ios_url"`
	AndroidURL string `mapstructure:"android_url"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// Load reads configuration from file and environment variables.
// Env names map from nested keys: gate.minimum_version → GATE_MINIMUM_VERSION.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/buzznob-appgate")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file is optional, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate checks for critical configuration errors.
func (c *Config) Validate() error {
	if c.Gate.MinimumVersion == "" {
		return fmt.Errorf("gate.minimum_version must not be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Upstream.URL != "" {
		u, err := url.Parse(c.Upstream.URL)
		if err != nil {
			return fmt.Errorf("upstream.url: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("upstream.url %q must be absolute (scheme and host)", c.Upstream.URL)
		}
	}
	return nil
}

// defaultExemptPrefixes lists the endpoints that must stay reachable for
// outdated or pre-gating clients, in both mounted-root and /api sub-mounted
// forms: health check, version discovery, authentication, public referral
// lookup by code, and the username-availability check.
func defaultExemptPrefixes() []string {
	return []string{
		"/health",
		"/api/health",
		"/app/version",
		"/api/app/version",
		"/auth/",
		"/api/auth/",
		"/referrals/code/",
		"/api/referrals/code/",
		"/users/check-username",
		"/api/users/check-username",
	}
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.allowed_origins", []string{
		"https://app.buzznob.com",
		"https://buzznob.com",
	})
	v.SetDefault("server.allow_credentials", true)
	v.SetDefault("server.unsafe_allow_all_origins", false)

	// Upstream backend; empty means gated routes answer 502 until set
	v.SetDefault("upstream.url", "")

	// Gate
	v.SetDefault("gate.minimum_version", "1.0.6")
	v.SetDefault("gate.transition_max_version", "1.0.4")
	v.SetDefault("gate.version_header", "X-App-Version")
	v.SetDefault("gate.exempt_prefixes", defaultExemptPrefixes())
	v.SetDefault("gate.app_store.ios_url", "https://apps.apple.com/app/buzznob/id6472345678")
	v.SetDefault("gate.app_store.android_url", "https://play.google.com/store/apps/details?id=com.buzznob.app")

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
