package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tomlViper(t *testing.T, body string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("toml")
	require.NoError(t, v.ReadConfig(strings.NewReader(body)))
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(tomlViper(t, `
[jwt]
secret = "dev"
`))
	require.NoError(t, err)

	assert.Equal(t, "supplyfin", cfg.App.Name)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.True(t, cfg.App.IsDevelopment())
	assert.Equal(t, 366, cfg.Calendar.SearchHorizon)
	assert.Equal(t, time.Hour, cfg.Worker.SweepInterval)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.True(t, cfg.HTTP.Compression)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, "postgres://postgres:@localhost:5432/supplyfin?sslmode=disable", cfg.Database.DSN())
}

func TestFromViper_FileAndEnv(t *testing.T) {
	t.Setenv("SUPPLYFIN_DATABASE_PASSWORD", "p@ss word")
	t.Setenv("SUPPLYFIN_WORKER_SWEEP_INTERVAL", "5m")

	cfg, err := FromViper(tomlViper(t, `
[jwt]
secret = "dev"

[database]
host = "db"
dbname = "finance"

[http]
compression = false

[calendar]
search_horizon = 30
`))
	require.NoError(t, err)

	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, "p@ss word", cfg.Database.Password)
	assert.Equal(t, "postgres://postgres:p%40ss%20word@db:5432/finance?sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, 5*time.Minute, cfg.Worker.SweepInterval)
	assert.Equal(t, 30, cfg.Calendar.SearchHorizon)
	assert.False(t, cfg.HTTP.Compression)
}

func TestFromViper_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "secret missing", body: ``, wantErr: "jwt.secret is required"},
		{
			name:    "short production secret",
			body:    "[app]\nenv = \"production\"\n[jwt]\nsecret = \"short\"\n",
			wantErr: "at least 32 characters",
		},
		{
			name:    "unknown driver",
			body:    "[jwt]\nsecret = \"dev\"\n[storage]\ndriver = \"sqlite\"\n",
			wantErr: "storage.driver",
		},
		{
			name:    "min above max",
			body:    "[jwt]\nsecret = \"dev\"\n[database]\nmax_conns = 2\nmin_conns = 5\n",
			wantErr: "cannot exceed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromViper(tomlViper(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
