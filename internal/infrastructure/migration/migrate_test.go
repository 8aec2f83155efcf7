package migration

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "postgres://u:p@db:5432/fin?sslmode=disable", want: "pgx5://u:p@db:5432/fin?sslmode=disable"},
		{in: "postgresql://db/fin", want: "pgx5://db/fin"},
		{in: "pgx5://db/fin", want: "pgx5://db/fin"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DriverURL(tt.in))
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrations, "sql/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrations, "sql/*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}
