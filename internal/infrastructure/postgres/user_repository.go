package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/encuestas-api/internal/domain"
	"github.com/jhoicas/encuestas-api/internal/domain/entity"
	"github.com/jhoicas/encuestas-api/internal/domain/repository"
)

var (
	_ repository.ParticipantUserRepository = (*ParticipantUserRepo)(nil)
	_ repository.AdminRepository           = (*AdminRepo)(nil)
)

// ── Cuentas de participantes ─────────────────────────────────────────────────

// ParticipantUserRepo implementación de ParticipantUserRepository (pool o tx).
type ParticipantUserRepo struct {
	q Querier
}

// NewParticipantUserRepository construye el adaptador de cuentas de participantes.
func NewParticipantUserRepository(q Querier) *ParticipantUserRepo {
	return &ParticipantUserRepo{q: q}
}

const participantUserColumns = `id, email, password_hash, first_name, last_name, participant_id,
	COALESCE(confirmation_token_hash, ''), confirmation_expires_at, is_active, email_confirmed,
	created_at, updated_at, last_login`

// Create persiste una cuenta y asigna su ID.
func (r *ParticipantUserRepo) Create(ctx context.Context, u *entity.ParticipantUser) error {
	query := `
		INSERT INTO participant_users (email, password_hash, first_name, last_name, participant_id,
			confirmation_token_hash, confirmation_expires_at, is_active, email_confirmed, created_at, updated_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		u.Email, u.PasswordHash, u.FirstName, u.LastName, u.ParticipantID,
		nullString(u.ConfirmationTokenHash), u.ConfirmationExpiresAt, u.IsActive, u.EmailConfirmed,
		u.CreatedAt, u.UpdatedAt, u.LastLogin,
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert participant_user: %w", err)
	}
	return nil
}

// GetByID obtiene una cuenta por ID.
func (r *ParticipantUserRepo) GetByID(ctx context.Context, id int64) (*entity.ParticipantUser, error) {
	return r.findOne(ctx, "get participant_user by id", `WHERE id = $1`, id)
}

// GetByEmail obtiene una cuenta por email sin distinguir mayúsculas.
func (r *ParticipantUserRepo) GetByEmail(ctx context.Context, email string) (*entity.ParticipantUser, error) {
	return r.findOne(ctx, "get participant_user by email", `WHERE lower(email) = lower($1)`, email)
}

// GetByConfirmationHash obtiene la cuenta con el token de confirmación pendiente.
func (r *ParticipantUserRepo) GetByConfirmationHash(ctx context.Context, hash string) (*entity.ParticipantUser, error) {
	if hash == "" {
		return nil, nil
	}
	return r.findOne(ctx, "get participant_user by token", `WHERE confirmation_token_hash = $1`, hash)
}

// Update persiste todos los campos mutables de la cuenta.
func (r *ParticipantUserRepo) Update(ctx context.Context, u *entity.ParticipantUser) error {
	query := `
		UPDATE participant_users
		SET password_hash = $2, first_name = $3, last_name = $4, participant_id = $5,
			confirmation_token_hash = $6, confirmation_expires_at = $7, is_active = $8,
			email_confirmed = $9, updated_at = $10, last_login = $11
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		u.ID, u.PasswordHash, u.FirstName, u.LastName, u.ParticipantID,
		nullString(u.ConfirmationTokenHash), u.ConfirmationExpiresAt, u.IsActive,
		u.EmailConfirmed, u.UpdatedAt, u.LastLogin,
	)
	if err != nil {
		return fmt.Errorf("update participant_user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ParticipantUserRepo) findOne(ctx context.Context, op, where string, arg any) (*entity.ParticipantUser, error) {
	var u entity.ParticipantUser
	err := r.q.QueryRow(ctx, `SELECT `+participantUserColumns+` FROM participant_users `+where, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.ParticipantID,
		&u.ConfirmationTokenHash, &u.ConfirmationExpiresAt, &u.IsActive, &u.EmailConfirmed,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLogin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// ── Administradores ──────────────────────────────────────────────────────────

// AdminRepo implementación de AdminRepository sobre PostgreSQL.
type AdminRepo struct {
	q Querier
}

// NewAdminRepository construye el adaptador de administradores.
func NewAdminRepository(q Querier) *AdminRepo {
	return &AdminRepo{q: q}
}

// Create persiste un administrador y asigna su ID.
func (r *AdminRepo) Create(ctx context.Context, a *entity.AdminUser) error {
	query := `
		INSERT INTO admin_users (email, password_hash, full_name, is_active, created_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.q.QueryRow(ctx, query, a.Email, a.PasswordHash, a.FullName, a.IsActive, a.CreatedAt, a.LastLogin).Scan(&a.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert admin_user: %w", err)
	}
	return nil
}

// GetByID obtiene un administrador por ID.
func (r *AdminRepo) GetByID(ctx context.Context, id int64) (*entity.AdminUser, error) {
	return r.findOne(ctx, "get admin by id", `WHERE id = $1`, id)
}

// GetByEmail obtiene un administrador por email sin distinguir mayúsculas.
func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (*entity.AdminUser, error) {
	return r.findOne(ctx, "get admin by email", `WHERE lower(email) = lower($1)`, email)
}

// Update persiste nombre, estado, hash y último login.
func (r *AdminRepo) Update(ctx context.Context, a *entity.AdminUser) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE admin_users SET password_hash = $2, full_name = $3, is_active = $4, last_login = $5
		WHERE id = $1`,
		a.ID, a.PasswordHash, a.FullName, a.IsActive, a.LastLogin,
	)
	if err != nil {
		return fmt.Errorf("update admin_user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AdminRepo) findOne(ctx context.Context, op, where string, arg any) (*entity.AdminUser, error) {
	var a entity.AdminUser
	err := r.q.QueryRow(ctx, `
		SELECT id, email, password_hash, full_name, is_active, created_at, last_login
		FROM admin_users `+where, arg).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.FullName, &a.IsActive, &a.CreatedAt, &a.LastLogin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &a, nil
}
