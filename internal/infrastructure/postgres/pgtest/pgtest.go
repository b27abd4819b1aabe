// Package pgtest abre una base PostgreSQL de pruebas con el esquema recién migrado.
// Sin TEST_DATABASE_URL los tests que lo usan se omiten.
package pgtest

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/encuestas-api/internal/infrastructure/postgres"
	"github.com/jhoicas/encuestas-api/pkg/config"
	"github.com/jhoicas/encuestas-api/pkg/logger"
)

// EnvURL variable con el connection string de la base de pruebas.
const EnvURL = "TEST_DATABASE_URL"

// resetSchema borra todo lo creado por pruebas anteriores, incluida schema_migrations.
const resetSchema = `
	DROP SCHEMA IF EXISTS public CASCADE;
	CREATE SCHEMA public;`

// Open devuelve un pool sobre un esquema vacío con todas las migraciones aplicadas.
// El pool se cierra al terminar el test.
func Open(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv(EnvURL)
	if url == "" {
		t.Skipf("%s no definido: se omiten las pruebas sobre PostgreSQL", EnvURL)
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 4, ApplicationName: "encuestas-tests"})
	require.NoError(t, err, "conectar a %s", EnvURL)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, resetSchema)
	require.NoError(t, err, "limpiar esquema")
	_, err = postgres.Migrate(ctx, pool, logger.Nop())
	require.NoError(t, err, "migrar")
	return pool
}
