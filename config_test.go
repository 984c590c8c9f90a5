package rudder

import (
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/rudder/types"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, DefaultFetchSize, cfg.FetchSize)
	require.Equal(t, DefaultMaxConnections, cfg.MaxConnections)
	require.Equal(t, TLSModeNone, cfg.TLS)
	require.NotNil(t, cfg.Logger)
	require.NotNil(t, cfg.Metrics)
	require.Nil(t, cfg.Strategy)

	require.Equal(t, 1*time.Millisecond, cfg.Backoff.InitialInterval)
	require.Equal(t, 0.42, cfg.Backoff.RandomizationFactor)
	require.Equal(t, 2.0, cfg.Backoff.Multiplier)
	require.Equal(t, 60*time.Second, cfg.Backoff.MaxElapsedTime)
}

func TestConfigOptions(t *testing.T) {
	strategy := &scriptedStrategy{}
	cfg := DefaultConfig(
		WithURI("neo4j://cluster:7687"),
		WithAuth("admin", "secret"),
		WithDatabase("movies"),
		WithFetchSize(500),
		WithMaxConnections(32),
		WithCACertificate("/etc/ssl/ca.pem"),
		WithRoutingContext(map[string]string{"address": "cluster:7687"}),
		WithLoadBalancingStrategy(strategy),
	)

	require.Equal(t, "neo4j://cluster:7687", cfg.URI)
	require.Equal(t, "admin", cfg.User)
	require.Equal(t, "secret", cfg.Password)
	require.Equal(t, types.Database("movies"), cfg.DB)
	require.Equal(t, 500, cfg.FetchSize)
	require.Equal(t, 32, cfg.MaxConnections)
	require.Equal(t, TLSModeCACertificate, cfg.TLS)
	require.Equal(t, "/etc/ssl/ca.pem", cfg.CACertificate)
	require.Equal(t, map[string]string{"address": "cluster:7687"}, cfg.RoutingContext)
	require.Same(t, strategy, cfg.Strategy.(*scriptedStrategy))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{
			name: "complete",
			opts: []Option{WithURI("neo4j://localhost:7687"), WithAuth("user", "password")},
		},
		{
			name:    "missing uri",
			opts:    []Option{WithAuth("user", "password")},
			wantErr: true,
		},
		{
			name:    "missing user",
			opts:    []Option{WithURI("neo4j://localhost:7687"), WithAuth("", "password")},
			wantErr: true,
		},
		{
			name:    "missing password",
			opts:    []Option{WithURI("neo4j://localhost:7687"), WithAuth("user", "")},
			wantErr: true,
		},
		{
			name: "negative fetch size",
			opts: []Option{
				WithURI("neo4j://localhost:7687"), WithAuth("user", "password"),
				WithFetchSize(-1),
			},
			wantErr: true,
		},
		{
			name: "zero max connections",
			opts: []Option{
				WithURI("neo4j://localhost:7687"), WithAuth("user", "password"),
				WithMaxConnections(0),
			},
			wantErr: true,
		},
		{
			name: "ca mode without certificate",
			opts: []Option{
				WithURI("neo4j://localhost:7687"), WithAuth("user", "password"),
				WithCACertificate(""),
			},
			wantErr: true,
		},
		{
			name: "skip verify needs no certificate",
			opts: []Option{
				WithURI("neo4j://localhost:7687"), WithAuth("user", "password"),
				WithSkipSSLValidation(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DefaultConfig(tt.opts...).Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, types.ErrInvalidConfig)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestBackoffBuild(t *testing.T) {
	b := DefaultBackoffConfig().build()

	require.Equal(t, 1*time.Millisecond, b.InitialInterval)
	require.Equal(t, 0.42, b.RandomizationFactor)
	require.Equal(t, 2.0, b.Multiplier)
	require.Equal(t, 60*time.Second, b.MaxElapsedTime)

	// The first delay honors the configured jitter band.
	first := b.NextBackOff()
	require.NotEqual(t, backoff.Stop, first)
	require.GreaterOrEqual(t, first, time.Duration(float64(time.Millisecond)*(1-0.42)))
	require.LessOrEqual(t, first, time.Duration(float64(time.Millisecond)*(1+0.42)))
}
