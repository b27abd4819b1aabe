package voting

import (
	"context"

	"github.com/jhoicas/encuestas-api/internal/domain/repository"
)

// TxRunner ejecuta la escritura de una papeleta dentro de una transacción.
// Los repositorios recibidos están atados a la transacción.
type TxRunner interface {
	RunVoting(ctx context.Context, fn func(
		votes repository.VoteRepository,
		participants repository.ParticipantRepository,
	) error) error
}
