package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_DefaultsDevelopment(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.App.Env)
	assert.True(t, cfg.UsesDevSecret(), "development sin JWT_SECRET usa el secreto de desarrollo")
	assert.Equal(t, cfg.JWT.Secret, cfg.Voting.BallotSecret, "el secreto de papeleta hereda el de JWT")
	assert.Equal(t, 24*60, cfg.JWT.Expiration)
	assert.True(t, cfg.Voting.LegacyEnabled)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxPhotoBytes)
	assert.False(t, cfg.Mail.Enabled())
}

func TestFromViper_ProductionRequiereSecreto(t *testing.T) {
	v := viper.New()
	v.Set("APP_ENV", "production")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestFromViper_TestingUsaSecretoFijo(t *testing.T) {
	v := viper.New()
	v.Set("APP_ENV", "TESTING")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.True(t, cfg.App.IsTesting())
	assert.Equal(t, testJWTSecret, cfg.JWT.Secret)
}

func TestFromViper_ValoresDesdeStrings(t *testing.T) {
	v := viper.New()
	v.Set("DB_PORT", "6543")
	v.Set("VOTING_LEGACY_ENABLED", "false")
	v.Set("AUTH_REQUIRE_EMAIL_CONFIRMATION", "true")
	v.Set("HTTP_PORT", "no-es-numero")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.False(t, cfg.Voting.LegacyEnabled)
	assert.True(t, cfg.Voting.RequireEmailConfirmation)
	assert.Equal(t, 8080, cfg.HTTP.Port, "valor inválido vuelve al default")
}

func TestFromViper_EnvDesconocido(t *testing.T) {
	v := viper.New()
	v.Set("APP_ENV", "staging")
	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "encuestas", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/encuestas?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}

func TestFromViper_PoolDeConexiones(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)
	assert.Equal(t, int32(10), cfg.DB.MaxConns)
	assert.Equal(t, int32(1), cfg.DB.MinConns)
	assert.Equal(t, time.Hour, cfg.DB.MaxConnLifetime)
	assert.Equal(t, "encuestas-api", cfg.DB.ApplicationName)
	assert.False(t, cfg.DB.ForceIPv4)

	v := viper.New()
	v.Set("DB_MAX_CONNS", "4")
	v.Set("DB_MIN_CONNS", "9")
	v.Set("DB_MAX_CONN_IDLE_MINUTES", "5")
	v.Set("DB_FORCE_IPV4", "true")
	cfg, err = fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, int32(4), cfg.DB.MaxConns)
	assert.Equal(t, int32(4), cfg.DB.MinConns, "el mínimo no supera al máximo")
	assert.Equal(t, 5*time.Minute, cfg.DB.MaxConnIdleTime)
	assert.True(t, cfg.DB.ForceIPv4)
}

func TestFromViper_ProxiesDeConfianza(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)
	assert.Empty(t, cfg.HTTP.ProxyHeader, "sin proxy se usa la IP del socket")
	assert.Empty(t, cfg.HTTP.TrustedProxies)

	v := viper.New()
	v.Set("HTTP_PROXY_HEADER", "X-Forwarded-For")
	v.Set("HTTP_TRUSTED_PROXIES", " 10.0.0.1, ,172.16.0.0/12")
	cfg, err = fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "172.16.0.0/12"}, cfg.HTTP.TrustedProxies)

	v = viper.New()
	v.Set("HTTP_PROXY_HEADER", "X-Forwarded-For")
	_, err = fromViper(v)
	assert.Error(t, err, "la cabecera sin proxies de confianza permitiría falsificar la IP")
}
