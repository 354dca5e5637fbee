// Package cache provides answer cache configuration options.
package cache

import (
	"fmt"
	"time"

	"github.com/kart-io/tedrag/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options configures the optional Redis-backed answer cache.
type Options struct {
	// Enabled turns the cache on. Disabled by default.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// TTL is the cache entry lifetime.
	TTL time.Duration `json:"ttl" mapstructure:"ttl"`

	// KeyPrefix namespaces the cache keys in Redis.
	KeyPrefix string `json:"key-prefix" mapstructure:"key-prefix"`

	// Addr is the Redis address (host:port).
	Addr string `json:"addr" mapstructure:"addr"`

	// Password is the Redis password.
	Password string `json:"password" mapstructure:"password"`

	// Database is the Redis database number.
	Database int `json:"database" mapstructure:"database"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Enabled:   false,
		TTL:       1 * time.Hour,
		KeyPrefix: "tedrag:answer:",
		Addr:      "localhost:6379",
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.BoolVar(&o.Enabled, options.Join(prefixes...)+"cache.enabled", o.Enabled, "Enable the Redis answer cache.")
	fs.DurationVar(&o.TTL, options.Join(prefixes...)+"cache.ttl", o.TTL, "Answer cache TTL.")
	fs.StringVar(&o.KeyPrefix, options.Join(prefixes...)+"cache.key-prefix", o.KeyPrefix, "Answer cache key prefix.")
	fs.StringVar(&o.Addr, options.Join(prefixes...)+"cache.addr", o.Addr, "Redis address (host:port).")
	fs.StringVar(&o.Password, options.Join(prefixes...)+"cache.password", o.Password, "Redis password.")
	fs.IntVar(&o.Database, options.Join(prefixes...)+"cache.database", o.Database, "Redis database number.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}

	var errs []error
	if o.Addr == "" {
		errs = append(errs, fmt.Errorf("cache.addr is required when the cache is enabled"))
	}
	if o.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be positive"))
	}
	return errs
}
