package pairlock

import (
	"errors"
	"time"
)

// Config defines the engine configuration. Instances are intended to be
// populated before [Builder.Build] and then treated as immutable.
type Config struct {
	Token    TokenConfig
	Registry RegistryConfig
	Binding  BindingConfig
	Notify   NotifyConfig
	Security SecurityConfig
	Metrics  MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls access token signing and refresh token lifetime.
type TokenConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod string // "hs256" (default) or "ed25519"
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
REGISTRY CONFIG
====================================
*/

// RegistryConfig controls the Redis key layout of the pair registry.
type RegistryConfig struct {
	RedisPrefix string
}

/*
====================================
BINDING CONFIG
====================================
*/

// BindingConfig controls fingerprint policy. The device dimension
// (User-Agent) is enforced: a mismatch rejects the refresh. The network
// dimension (source origin) is detected: a mismatch is tolerated but
// reported through the anomaly notifier.
type BindingConfig struct {
	EnforceUserAgent    bool
	DetectNetworkChange bool
}

/*
====================================
NOTIFY CONFIG
====================================
*/

// NotifyConfig controls anomaly notification buffering.
type NotifyConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig holds request throttling knobs.
type SecurityConfig struct {
	EnableRefreshThrottle bool
	MaxRefreshAttempts    int
	RefreshCooldown       time.Duration
}

// MetricsConfig enables the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the configuration the engine ships with. Callers
// must still supply signing key material.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    30 * 24 * time.Hour,
			SigningMethod: "hs256",
			Leeway:        30 * time.Second,
		},
		Registry: RegistryConfig{
			RedisPrefix: "pl",
		},
		Binding: BindingConfig{
			EnforceUserAgent:    true,
			DetectNetworkChange: true,
		},
		Notify: NotifyConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Security: SecurityConfig{
			EnableRefreshThrottle: false,
			MaxRefreshAttempts:    30,
			RefreshCooldown:       time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for inconsistencies that Build must
// refuse.
func (c *Config) Validate() error {
	if c.Token.AccessTTL <= 0 {
		return errors.New("Token AccessTTL must be > 0")
	}
	if c.Token.RefreshTTL <= 0 {
		return errors.New("Token RefreshTTL must be > 0")
	}
	if c.Token.RefreshTTL <= c.Token.AccessTTL {
		return errors.New("Token RefreshTTL must exceed AccessTTL")
	}
	switch c.Token.SigningMethod {
	case "hs256", "ed25519":
	default:
		return errors.New("Token SigningMethod must be hs256 or ed25519")
	}
	if c.Registry.RedisPrefix == "" {
		return errors.New("Registry RedisPrefix must not be empty")
	}
	if c.Notify.Enabled && c.Notify.BufferSize <= 0 {
		return errors.New("Notify BufferSize must be > 0 when notify is enabled")
	}
	if c.Security.EnableRefreshThrottle {
		if c.Security.MaxRefreshAttempts <= 0 {
			return errors.New("Security MaxRefreshAttempts must be > 0 when throttle is enabled")
		}
		if c.Security.RefreshCooldown <= 0 {
			return errors.New("Security RefreshCooldown must be > 0 when throttle is enabled")
		}
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
