package rudder

import (
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/arloliu/rudder/internal/logging"
	"github.com/arloliu/rudder/internal/metrics"
	"github.com/arloliu/rudder/types"
)

// Connection defaults applied by DefaultConfig.
const (
	// DefaultFetchSize is the number of result rows fetched per request.
	DefaultFetchSize = 200

	// DefaultMaxConnections is the per-server pool size limit.
	DefaultMaxConnections = 16
)

// TLSMode selects how the connection layer validates server certificates.
type TLSMode int

const (
	// TLSModeNone disables TLS.
	TLSModeNone TLSMode = iota

	// TLSModeSkipVerify enables TLS without certificate validation.
	// Not recommended for production use.
	TLSModeSkipVerify

	// TLSModeCACertificate enables TLS and validates the server
	// certificate against the CA certificate configured via
	// WithCACertificate.
	TLSModeCACertificate
)

// BackoffConfig describes the exponential-backoff schedule handed to
// layers above this core (for example whole-transaction retry).
//
// The routing core itself never sleeps between failover attempts; it
// rotates to the next candidate immediately. This schedule is only
// exposed through Manager.Backoff for callers to pace their retries.
type BackoffConfig struct {
	// InitialInterval is the first retry delay.
	InitialInterval time.Duration

	// RandomizationFactor jitters each delay by +/- this fraction.
	RandomizationFactor float64

	// Multiplier scales the delay after each attempt.
	Multiplier float64

	// MaxElapsedTime stops the schedule after this total duration.
	// Zero means the schedule never stops on elapsed time.
	MaxElapsedTime time.Duration
}

// DefaultBackoffConfig returns the default retry schedule: 1ms initial
// delay, 0.42 randomization, doubling per attempt, giving up after 60s
// total.
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		InitialInterval:     1 * time.Millisecond,
		RandomizationFactor: 0.42,
		Multiplier:          2.0,
		MaxElapsedTime:      60 * time.Second,
	}
}

// build materializes a fresh stateful backoff from the schedule.
func (b BackoffConfig) build() *backoff.ExponentialBackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = b.InitialInterval
	eb.RandomizationFactor = b.RandomizationFactor
	eb.Multiplier = b.Multiplier
	eb.MaxElapsedTime = b.MaxElapsedTime
	eb.Reset()

	return eb
}

// Config is the immutable bag of connection parameters consumed by the
// routing core and handed read-only to the pool factory.
type Config struct {
	// URI is the bootstrap server address, e.g. "neo4j://localhost:7687".
	URI string

	// User is the username for authenticating with the server.
	User string

	// Password is the password for authenticating with the server.
	Password string

	// DB is the default target database. Empty means the server default.
	DB types.Database

	// FetchSize is the number of result rows fetched per request.
	FetchSize int

	// MaxConnections is the per-server pool size limit.
	MaxConnections int

	// TLS selects certificate validation behavior.
	TLS TLSMode

	// CACertificate is the CA certificate path used when TLS is
	// TLSModeCACertificate.
	CACertificate string

	// RoutingContext is sent with every Route request. Typically carries
	// the original bootstrap address and server-side routing policy hints.
	RoutingContext map[string]string

	// Backoff is the retry schedule exposed via Manager.Backoff.
	Backoff BackoffConfig

	// Logger receives structured log messages. Defaults to a no-op logger.
	Logger types.Logger

	// Metrics receives routing metrics. Defaults to a no-op collector.
	Metrics types.MetricsCollector

	// Strategy is the load-balancing strategy. Defaults to a RoundRobin
	// primed from the initial routing table.
	Strategy LoadBalancingStrategy
}

// DefaultConfig returns a Config with sensible defaults. URI, user and
// password must still be provided via options before the config passes
// Validate.
//
// Returns:
//   - *Config: Configuration with default settings
func DefaultConfig(opts ...Option) *Config {
	c := &Config{
		FetchSize:      DefaultFetchSize,
		MaxConnections: DefaultMaxConnections,
		TLS:            TLSModeNone,
		Backoff:        DefaultBackoffConfig(),
		Logger:         logging.NewNopLogger(),
		Metrics:        metrics.NewNopMetrics(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Validate checks that the required connection parameters are present.
//
// Returns:
//   - error: types.ErrInvalidConfig if URI, user or password is missing
func (c *Config) Validate() error {
	if c.URI == "" || c.User == "" || c.Password == "" {
		return types.ErrInvalidConfig
	}
	if c.FetchSize < 0 || c.MaxConnections <= 0 {
		return types.ErrInvalidConfig
	}
	if c.TLS == TLSModeCACertificate && c.CACertificate == "" {
		return types.ErrInvalidConfig
	}

	return nil
}

// Option configures a Config.
type Option func(*Config)

// WithURI sets the bootstrap server address.
//
// Parameters:
//   - uri: The server address, e.g. "neo4j://localhost:7687"
//
// Returns:
//   - Option: Configuration option
func WithURI(uri string) Option {
	return func(c *Config) {
		c.URI = uri
	}
}

// WithAuth sets the username and password for authentication.
//
// Parameters:
//   - user: The username
//   - password: The password
//
// Returns:
//   - Option: Configuration option
func WithAuth(user, password string) Option {
	return func(c *Config) {
		c.User = user
		c.Password = password
	}
}

// WithDatabase sets the default target database.
//
// Defaults to the server configured default database if not set.
//
// Parameters:
//   - db: The database name
//
// Returns:
//   - Option: Configuration option
func WithDatabase(db types.Database) Option {
	return func(c *Config) {
		c.DB = db
	}
}

// WithFetchSize sets the number of result rows fetched per request.
//
// Defaults to 200 if not set. Use a large fetch size when working with
// large result sets.
//
// Parameters:
//   - n: Rows per fetch
//
// Returns:
//   - Option: Configuration option
func WithFetchSize(n int) Option {
	return func(c *Config) {
		c.FetchSize = n
	}
}

// WithMaxConnections sets the per-server pool size limit.
//
// Defaults to 16 if not set.
//
// Parameters:
//   - n: Maximum pooled connections per server
//
// Returns:
//   - Option: Configuration option
func WithMaxConnections(n int) Option {
	return func(c *Config) {
		c.MaxConnections = n
	}
}

// WithSkipSSLValidation enables TLS without certificate validation.
//
// This is not recommended for production use.
//
// Returns:
//   - Option: Configuration option
func WithSkipSSLValidation() Option {
	return func(c *Config) {
		c.TLS = TLSModeSkipVerify
	}
}

// WithCACertificate enables TLS and validates the server certificate
// against the given CA certificate.
//
// This is required if the server's certificate is not signed by a
// known CA.
//
// Parameters:
//   - path: Path to the CA certificate
//
// Returns:
//   - Option: Configuration option
func WithCACertificate(path string) Option {
	return func(c *Config) {
		c.TLS = TLSModeCACertificate
		c.CACertificate = path
	}
}

// WithRoutingContext sets the routing-context mapping sent with every
// Route request.
//
// Parameters:
//   - context: Routing context entries, e.g. {"address": "host:7687"}
//
// Returns:
//   - Option: Configuration option
func WithRoutingContext(context map[string]string) Option {
	return func(c *Config) {
		c.RoutingContext = context
	}
}

// WithBackoff overrides the retry schedule exposed via Manager.Backoff.
//
// Parameters:
//   - cfg: The backoff schedule
//
// Returns:
//   - Option: Configuration option
func WithBackoff(cfg BackoffConfig) Option {
	return func(c *Config) {
		c.Backoff = cfg
	}
}

// WithLogger sets the structured logger.
//
// If not set, a no-op logger is used that discards all messages.
// The logger interface is compatible with zap.SugaredLogger and
// log/slog (via internal/logging.NewSlogLogger).
//
// Parameters:
//   - logger: The logger implementation
//
// Returns:
//   - Option: Configuration option
func WithLogger(logger types.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics sets the metrics collector.
//
// If not set, a no-op collector is used that discards all metrics.
// Use contrib/metrics/vm.New() for VictoriaMetrics integration.
//
// Parameters:
//   - collector: The metrics collector implementation
//
// Returns:
//   - Option: Configuration option
func WithMetrics(collector types.MetricsCollector) Option {
	return func(c *Config) {
		c.Metrics = collector
	}
}

// WithLoadBalancingStrategy sets the load-balancing strategy.
//
// If not set, the manager builds a policy.RoundRobin primed from the
// initial routing table.
//
// Parameters:
//   - strategy: The strategy to use for server selection
//
// Returns:
//   - Option: Configuration option
func WithLoadBalancingStrategy(strategy LoadBalancingStrategy) Option {
	return func(c *Config) {
		c.Strategy = strategy
	}
}
