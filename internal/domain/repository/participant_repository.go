package repository

import (
	"context"

	"github.com/jhoicas/encuestas-api/internal/domain/entity"
)

// ParticipantFilter búsqueda y paginación del padrón.
type ParticipantFilter struct {
	Search string // email, nombre o apellido, sin distinguir mayúsculas
	Limit  int
	Offset int
}

// ParticipantRepository define el puerto de persistencia para Participant.
// Los Get devuelven (nil, nil) cuando no existe el registro.
type ParticipantRepository interface {
	Create(ctx context.Context, p *entity.Participant) error
	GetByID(ctx context.Context, id int64) (*entity.Participant, error)
	GetByEmail(ctx context.Context, email string) (*entity.Participant, error)
	Update(ctx context.Context, p *entity.Participant) error
	// Delete elimina el participante y sus votos.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f ParticipantFilter) ([]*entity.Participant, int64, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*entity.Participant, error)
	// ListWithoutVotes participantes sin ninguna fila en el libro de votos.
	ListWithoutVotes(ctx context.Context) ([]*entity.Participant, error)
	// RefreshHasVoted recalcula has_voted desde el libro de votos y devuelve el valor resultante.
	RefreshHasVoted(ctx context.Context, id int64) (bool, error)
}

// ParticipantUserRepository define el puerto de persistencia para cuentas de participantes.
type ParticipantUserRepository interface {
	Create(ctx context.Context, u *entity.ParticipantUser) error
	GetByID(ctx context.Context, id int64) (*entity.ParticipantUser, error)
	GetByEmail(ctx context.Context, email string) (*entity.ParticipantUser, error)
	GetByConfirmationHash(ctx context.Context, hash string) (*entity.ParticipantUser, error)
	Update(ctx context.Context, u *entity.ParticipantUser) error
}

// AdminRepository define el puerto de persistencia para AdminUser.
type AdminRepository interface {
	Create(ctx context.Context, a *entity.AdminUser) error
	GetByID(ctx context.Context, id int64) (*entity.AdminUser, error)
	GetByEmail(ctx context.Context, email string) (*entity.AdminUser, error)
	Update(ctx context.Context, a *entity.AdminUser) error
}
