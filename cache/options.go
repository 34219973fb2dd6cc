package cache

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// EvictionPolicy selects the auxiliary eviction strategy a cache uses once
// it reaches MaxSize. The zero value is PolicyLRU —
// this is load-bearing: the manager's defaults-merge logic
// treats EvictionPolicy as "set" on a specific configuration only when it
// differs from the type default, so LRU must be the type's zero value.
type EvictionPolicy int

const (
	PolicyLRU EvictionPolicy = iota
	PolicyLFU
	PolicyFIFO
	PolicyRandom
	PolicyNone
)

// String renders the policy the way configuration files and log lines use.
func (p EvictionPolicy) String() string {
	switch p {
	case PolicyLRU:
		return "LRU"
	case PolicyLFU:
		return "LFU"
	case PolicyFIFO:
		return "FIFO"
	case PolicyRandom:
		return "RANDOM"
	case PolicyNone:
		return "NONE"
	default:
		return fmt.Sprintf("EvictionPolicy(%d)", int(p))
	}
}

// Configuration is the recognized configuration surface.
// Unrecognized YAML/JSON fields are ignored by design — struct decoding
// simply drops them.
//
// Optional duration fields use the Go zero value (0) to mean "unset",
// matching how the manager's merge logic treats unset scalar fields:
// a cache-specific Configuration with DefaultTTL == 0
// inherits the global default, not "a TTL of zero duration". Per-call TTLs
// passed directly to PutWithTTL are the one place a literal zero
// duration is actually meaningful (per-entry TTL is authoritative over the
// configured default).
type Configuration struct {
	Name string `yaml:"name" validate:"required"`

	// MaxSize must be > 0; unlike the optional fields, zero is not read
	// as "unset" here; see Validate.
	MaxSize uint64 `yaml:"max_size" validate:"gt=0"`

	DefaultTTL        time.Duration `yaml:"default_ttl" validate:"gte=0"`
	MaxIdle           time.Duration `yaml:"max_idle" validate:"gte=0"`
	ExpireAfterWrite  time.Duration `yaml:"expire_after_write" validate:"gte=0"`
	ExpireAfterAccess time.Duration `yaml:"expire_after_access" validate:"gte=0"`
	RefreshAfterWrite time.Duration `yaml:"refresh_after_write" validate:"gte=0"`

	RecordStats     bool `yaml:"record_stats"`
	AllowNullValues bool `yaml:"allow_null_values"`

	EvictionPolicy   EvictionPolicy `yaml:"eviction_policy"`
	ConcurrencyLevel uint16         `yaml:"concurrency_level"`

	// Hints only; Go has no usable weak/soft reference primitive for a
	// generic cache entry. Stored and surfaced via GetConfiguration but
	// otherwise no-ops.
	WeakKeys   bool `yaml:"weak_keys"`
	WeakValues bool `yaml:"weak_values"`
	SoftValues bool `yaml:"soft_values"`
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration: MaxSize must be positive and no
// duration may be negative. Field errors are wrapped with ErrInvalidConfig
// so callers can errors.Is it while still inspecting the
// validator.FieldError chain via errors.As.
func (c Configuration) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// WithDefaults fills MaxSize/Name-independent zero-value fields with
// library-wide sane defaults. It does not touch Name or MaxSize — those
// are required and must be supplied by the caller (or by manager merge).
func (c Configuration) WithDefaults() Configuration {
	if c.ConcurrencyLevel == 0 {
		c.ConcurrencyLevel = 16
	}
	return c
}

// noConfiguredTTL is effectiveTTL's "no default configured" sentinel. It
// must be negative, not 0: entry.New/SetTTL treat a ttl of exactly 0 as
// "expire immediately" (see spec edge case), so a Configuration that
// simply never set DefaultTTL/ExpireAfterWrite (both zero value) must not
// collapse onto that same 0 and make every Put expire on arrival.
const noConfiguredTTL = time.Duration(-1)

// effectiveTTL resolves the configuration-level absolute-expiry duration:
// DefaultTTL takes precedence, ExpireAfterWrite is its alias when unset,
// noConfiguredTTL (no expiry) when neither is set. A per-call TTL passed
// to PutWithTTL still wins over both.
func (c Configuration) effectiveTTL() time.Duration {
	if c.DefaultTTL > 0 {
		return c.DefaultTTL
	}
	if c.ExpireAfterWrite > 0 {
		return c.ExpireAfterWrite
	}
	return noConfiguredTTL
}

// effectiveIdleTTL resolves the configuration-level idle-expiry duration:
// MaxIdle takes precedence, ExpireAfterAccess is its alias when unset.
func (c Configuration) effectiveIdleTTL() time.Duration {
	if c.MaxIdle > 0 {
		return c.MaxIdle
	}
	return c.ExpireAfterAccess
}
