package config

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurePostgresPool(t *testing.T) {
	tests := []struct {
		name      string
		config    *DatabaseConfig
		wantTLS   bool
		wantMax   int32
		wantLife  time.Duration
		wantError bool
	}{
		{
			name: "local database without TLS",
			config: &DatabaseConfig{
				Host: "localhost", Port: 5432, User: "postgres", Password: "secret",
				Name: "feedback_dev", SSLMode: "disable", MaxConnections: 4, ConnMaxLife: "30m",
			},
			wantMax:  4,
			wantLife: 30 * time.Minute,
		},
		{
			name: "managed database requires TLS",
			config: &DatabaseConfig{
				Host: "db.example.com", Port: 5432, User: "app", Password: "p@ss word",
				Name: "feedback", SSLMode: "require", MaxConnections: 10, ConnMaxLife: "1h",
			},
			wantTLS:  true,
			wantMax:  10,
			wantLife: time.Hour,
		},
		{
			name: "invalid lifetime falls back to default",
			config: &DatabaseConfig{
				Host: "localhost", Port: 5432, User: "postgres",
				Name: "feedback_dev", MaxConnections: 0, ConnMaxLife: "forever",
			},
			wantMax:  10,
			wantLife: time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			poolCfg, err := ConfigurePostgresPool(tt.config)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMax, poolCfg.MaxConns)
			assert.Equal(t, tt.wantLife, poolCfg.MaxConnLifetime)
			assert.Equal(t, tt.config.Name, poolCfg.ConnConfig.Database)
			assert.Equal(t, tt.config.User, poolCfg.ConnConfig.User)
			if tt.wantTLS {
				require.NotNil(t, poolCfg.ConnConfig.TLSConfig)
				assert.Equal(t, tt.config.Host, poolCfg.ConnConfig.TLSConfig.ServerName)
			} else {
				assert.Nil(t, poolCfg.ConnConfig.TLSConfig)
			}
		})
	}
}

func TestConfigureRedisOptions(t *testing.T) {
	opts := ConfigureRedisOptions(&RedisConfig{Address: "cache:6379", DB: 2, PoolSize: 3, UseTLS: true})
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 3, opts.PoolSize)
	assert.NotNil(t, opts.TLSConfig)

	opts = ConfigureRedisOptions(&RedisConfig{Address: "localhost:6379"})
	assert.Nil(t, opts.TLSConfig)
}

func TestTestRedisConnection(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectPing().SetVal("PONG")

	require.NoError(t, TestRedisConnection(context.Background(), client))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTestRedisConnection_ContextCancelled(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectPing().SetErr(assert.AnError)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := TestRedisConnection(ctx, client)
	assert.ErrorIs(t, err, context.Canceled)
}
