package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/encuestas-api/pkg/config"
)

func TestNewPoolConfig_TamañoDesdeConfig(t *testing.T) {
	cfg := config.DBConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", DBName: "encuestas", SSLMode: "disable",
		MaxConns: 7, MinConns: 2, MaxConnLifetime: 20 * time.Minute, MaxConnIdleTime: 3 * time.Minute,
		ApplicationName: "encuestas-api",
	}
	pc, err := newPoolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(7), pc.MaxConns)
	assert.Equal(t, int32(2), pc.MinConns)
	assert.Equal(t, 20*time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, 3*time.Minute, pc.MaxConnIdleTime)
	assert.Equal(t, "encuestas-api", pc.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, "db", pc.ConnConfig.Host)
	assert.NotNil(t, pc.AfterConnect)
}

func TestNewPoolConfig_IPv4Opcional(t *testing.T) {
	base := config.DBConfig{DatabaseURL: "postgres://u:p@127.0.0.1:5432/encuestas?sslmode=disable"}
	pc, err := newPoolConfig(base)
	require.NoError(t, err)
	assert.Positive(t, pc.MaxConns, "sin tamaño explícito quedan los valores de pgxpool")

	base.ForceIPv4 = true
	forced, err := newPoolConfig(base)
	require.NoError(t, err)
	addrs, err := forced.ConnConfig.LookupFunc(context.Background(), "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, []string{"127.0.0.1"}, addrs)
}

func TestNewPoolConfig_DSNInvalido(t *testing.T) {
	_, err := newPoolConfig(config.DBConfig{DatabaseURL: "postgres://u:p@host:no-es-puerto/db"})
	assert.Error(t, err)
}

func TestLookupIPv4_RechazaIPv6(t *testing.T) {
	_, err := lookupIPv4(context.Background(), "::1")
	assert.Error(t, err)
}
