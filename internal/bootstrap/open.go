package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/encuestas-api/internal/infrastructure/memory"
	"github.com/jhoicas/encuestas-api/internal/infrastructure/postgres"
	"github.com/jhoicas/encuestas-api/pkg/config"
	"github.com/jhoicas/encuestas-api/pkg/logger"
)

// Backend repositorios abiertos según el perfil. Pool es nil en el perfil testing.
type Backend struct {
	Repos Repositories
	Pool  *pgxpool.Pool
}

// Open abre el almacén del perfil: memoria en testing, PostgreSQL en el resto.
// Con migrate=true aplica las migraciones embebidas antes de devolver.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger, migrate bool) (*Backend, error) {
	if cfg.App.IsTesting() {
		log.Warn().Msg("perfil testing: almacén en memoria, los datos no persisten")
		return &Backend{Repos: MemoryRepositories(memory.NewStore())}, nil
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: conexión a PostgreSQL: %w", err)
	}
	if migrate {
		applied, err := postgres.Migrate(ctx, pool, log)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("bootstrap: migraciones: %w", err)
		}
		log.Info().Strs("applied", applied).Msg("migraciones aplicadas")
	}
	return &Backend{Repos: PostgresRepositories(pool), Pool: pool}, nil
}

// Close libera el pool si existe.
func (b *Backend) Close() {
	if b.Pool != nil {
		b.Pool.Close()
	}
}
