package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/encuestas-api/internal/application/auth"
	"github.com/jhoicas/encuestas-api/internal/application/voting"
	"github.com/jhoicas/encuestas-api/internal/domain/repository"
)

// Ensure TxRunner implements voting.TxRunner and auth.RegistrationTxRunner.
var _ voting.TxRunner = (*TxRunner)(nil)
var _ auth.RegistrationTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunVoting inicia una transacción con los repos de votos y participantes (emisión de papeleta).
func (r *TxRunner) RunVoting(ctx context.Context, fn func(
	votes repository.VoteRepository,
	participants repository.ParticipantRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewVoteRepository(tx), NewParticipantRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunRegistration inicia una transacción con los repos de cuentas y participantes
// (registro y confirmación de email).
func (r *TxRunner) RunRegistration(ctx context.Context, fn func(
	users repository.ParticipantUserRepository,
	participants repository.ParticipantRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewParticipantUserRepository(tx), NewParticipantRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
