package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sifan077/snipr/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnString(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.PostgresConfig
		want string
	}{
		{
			name: "defaults",
			cfg:  config.PostgresConfig{Database: "snipr"},
			want: "postgres://localhost:5432/snipr?sslmode=disable",
		},
		{
			name: "credentials are escaped",
			cfg:  config.PostgresConfig{Host: "db", Port: 6543, User: "app", Password: "p@ss/word", Database: "links", SSLMode: "require"},
			want: "postgres://app:p%40ss%2Fword@db:6543/links?sslmode=require",
		},
		{
			name: "user without password",
			cfg:  config.PostgresConfig{User: "app", Database: "snipr"},
			want: "postgres://app@localhost:5432/snipr?sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConnString(tt.cfg))
		})
	}
}

func TestConnString_ParsesWithPgx(t *testing.T) {
	cfg, err := pgxpool.ParseConfig(ConnString(config.PostgresConfig{Host: "db", User: "app", Password: "p@ss", Database: "snipr"}))
	require.NoError(t, err)

	assert.Equal(t, "db", cfg.ConnConfig.Host)
	assert.Equal(t, "app", cfg.ConnConfig.User)
	assert.Equal(t, "p@ss", cfg.ConnConfig.Password)
	assert.Equal(t, "snipr", cfg.ConnConfig.Database)
}

func TestConnMaxLifetime(t *testing.T) {
	assert.Equal(t, defaultConnMaxLifetime, connMaxLifetime(config.PostgresConfig{}))
	assert.Equal(t, defaultConnMaxLifetime, connMaxLifetime(config.PostgresConfig{MaxConnLifetime: "soon"}))
	assert.Equal(t, 30*time.Minute, connMaxLifetime(config.PostgresConfig{MaxConnLifetime: "30m"}))
}
