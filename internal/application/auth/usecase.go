package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/encuestas-api/internal/application/audit"
	"github.com/jhoicas/encuestas-api/internal/application/dto"
	"github.com/jhoicas/encuestas-api/internal/application/notification"
	"github.com/jhoicas/encuestas-api/internal/domain"
	"github.com/jhoicas/encuestas-api/internal/domain/entity"
	"github.com/jhoicas/encuestas-api/internal/domain/identity"
	"github.com/jhoicas/encuestas-api/internal/domain/repository"
	"github.com/jhoicas/encuestas-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// RegistrationOptions política de registro de participantes.
type RegistrationOptions struct {
	RequireEmailConfirmation bool
	ConfirmationTTL          time.Duration
	BaseURL                  string // para el enlace de confirmación
}

// RegistrationTxRunner crea la cuenta y su participante en una sola transacción.
type RegistrationTxRunner interface {
	RunRegistration(ctx context.Context, fn func(
		users repository.ParticipantUserRepository,
		participants repository.ParticipantRepository,
	) error) error
}

// AuthUseCase casos de uso de autenticación de administradores y participantes.
type AuthUseCase struct {
	admins       repository.AdminRepository
	users        repository.ParticipantUserRepository
	participants repository.ParticipantRepository
	tx           RegistrationTxRunner
	audit        *audit.Recorder
	notifier     *notification.Notifier
	jwtCfg       JWTConfig
	regOpts      RegistrationOptions
	now          func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	admins repository.AdminRepository,
	users repository.ParticipantUserRepository,
	participants repository.ParticipantRepository,
	tx RegistrationTxRunner,
	recorder *audit.Recorder,
	notifier *notification.Notifier,
	jwtCfg JWTConfig,
	regOpts RegistrationOptions,
) *AuthUseCase {
	if regOpts.ConfirmationTTL <= 0 {
		regOpts.ConfirmationTTL = 24 * time.Hour
	}
	return &AuthUseCase{
		admins:       admins,
		users:        users,
		participants: participants,
		tx:           tx,
		audit:        recorder,
		notifier:     notifier,
		jwtCfg:       jwtCfg,
		regOpts:      regOpts,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ── Administradores ──────────────────────────────────────────────────────────

// AdminLogin verifica email/password de un admin activo y emite un token con rol admin.
// Email inexistente, password incorrecto y cuenta inactiva responden igual.
func (uc *AuthUseCase) AdminLogin(ctx context.Context, in dto.LoginRequest, ip string) (*dto.AdminLoginResponse, error) {
	email := identity.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.NewValidationError("email", "email y contraseña son requeridos")
	}
	admin, err := uc.admins.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("auth: obtener admin: %w", err)
	}
	if admin == nil || !admin.IsActive || !checkPassword(admin.PasswordHash, in.Password) {
		return nil, domain.ErrInvalidCredentials
	}
	now := uc.now()
	admin.LastLogin = &now
	if err := uc.admins.Update(ctx, admin); err != nil {
		return nil, fmt.Errorf("auth: actualizar último acceso: %w", err)
	}
	token, err := uc.token(admin.ID, jwt.RoleAdmin)
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, audit.Entry{
		AdminID:     &admin.ID,
		Action:      entity.ActionLogin,
		EntityType:  entity.EntityAdmin,
		EntityID:    &admin.ID,
		Description: fmt.Sprintf("Admin %s inició sesión", admin.Email),
		IP:          ip,
	})
	return &dto.AdminLoginResponse{AccessToken: token, Admin: dto.NewAdminResponse(admin)}, nil
}

// VerifyAdmin devuelve el admin del token si sigue activo.
func (uc *AuthUseCase) VerifyAdmin(ctx context.Context, id int64) (*dto.AdminResponse, error) {
	admin, err := uc.admins.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("auth: obtener admin: %w", err)
	}
	if admin == nil || !admin.IsActive {
		return nil, domain.ErrUnauthorized
	}
	resp := dto.NewAdminResponse(admin)
	return &resp, nil
}

// CreateAdmin alta explícita de un administrador. actorID nil cuando lo ejecuta la CLI.
func (uc *AuthUseCase) CreateAdmin(ctx context.Context, in dto.CreateAdminRequest, actorID *int64, ip string) (*dto.AdminResponse, error) {
	email := identity.NormalizeEmail(in.Email)
	if err := identity.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := identity.ValidateName("full_name", in.FullName); err != nil {
		return nil, err
	}
	if err := identity.ValidateMaxLength("full_name", strings.TrimSpace(in.FullName), identity.MaxAdminNameLength); err != nil {
		return nil, err
	}
	if err := identity.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := uc.ensureEmailAvailable(ctx, email); err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	admin := &entity.AdminUser{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(in.FullName),
		IsActive:     true,
		CreatedAt:    uc.now(),
	}
	if err := uc.admins.Create(ctx, admin); err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, audit.Entry{
		AdminID:     actorID,
		Action:      entity.ActionCreate,
		EntityType:  entity.EntityAdmin,
		EntityID:    &admin.ID,
		Description: fmt.Sprintf("Administrador %s creado", admin.Email),
		IP:          ip,
	})
	resp := dto.NewAdminResponse(admin)
	return &resp, nil
}

// ── Participantes ────────────────────────────────────────────────────────────

// RegisterParticipant crea la cuenta y su registro en el padrón en una transacción.
// Con confirmación obligatoria la cuenta queda inactiva y no se emite token.
func (uc *AuthUseCase) RegisterParticipant(ctx context.Context, in dto.ParticipantRegisterRequest, ip string) (*dto.ParticipantRegisterResponse, error) {
	email := identity.NormalizeEmail(in.Email)
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	if email == "" || in.Password == "" || firstName == "" || lastName == "" {
		return nil, domain.NewValidationError("", "faltan campos requeridos")
	}
	if err := identity.ValidateEmail(email); err != nil {
		return nil, err
	}
	for _, f := range [...]struct{ field, value string }{{"first_name", firstName}, {"last_name", lastName}} {
		if err := identity.ValidateName(f.field, f.value); err != nil {
			return nil, err
		}
		if err := identity.ValidateMaxLength(f.field, f.value, identity.MaxPersonNameLength); err != nil {
			return nil, err
		}
	}
	if err := identity.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if in.Password != in.Confirmation() {
		return nil, domain.NewValidationError("password_confirm", "las contraseñas no coinciden")
	}
	if err := uc.ensureEmailAvailable(ctx, email); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	rawToken, tokenHash, err := newConfirmationToken()
	if err != nil {
		return nil, err
	}
	now := uc.now()
	expires := now.Add(uc.regOpts.ConfirmationTTL)
	user := &entity.ParticipantUser{
		Email:                 email,
		PasswordHash:          hash,
		FirstName:             firstName,
		LastName:              lastName,
		ConfirmationTokenHash: tokenHash,
		ConfirmationExpiresAt: &expires,
		IsActive:              !uc.regOpts.RequireEmailConfirmation,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	err = uc.tx.RunRegistration(ctx, func(users repository.ParticipantUserRepository, participants repository.ParticipantRepository) error {
		p := &entity.Participant{Email: email, FirstName: firstName, LastName: lastName, CreatedAt: now, UpdatedAt: now}
		if err := participants.Create(ctx, p); err != nil {
			return err
		}
		user.ParticipantID = &p.ID
		return users.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, audit.Entry{
		Action:      entity.ActionCreate,
		EntityType:  entity.EntityParticipantUser,
		EntityID:    &user.ID,
		Description: fmt.Sprintf("Participante %s registrado", email),
		IP:          ip,
	})
	uc.notifier.SendConfirmation(ctx, email, firstName+" "+lastName, uc.confirmationLink(rawToken), int(uc.regOpts.ConfirmationTTL.Hours()))

	resp := &dto.ParticipantRegisterResponse{
		Message:              "Registro exitoso. Revisa tu correo para confirmar tu cuenta.",
		User:                 dto.NewParticipantUserResponse(user),
		RequiresConfirmation: uc.regOpts.RequireEmailConfirmation,
	}
	if !uc.regOpts.RequireEmailConfirmation {
		token, err := uc.token(user.ID, jwt.RoleParticipant)
		if err != nil {
			return nil, err
		}
		resp.AccessToken = token
	}
	return resp, nil
}

// ParticipantLogin verifica credenciales de una cuenta activa y emite un token con rol participant.
func (uc *AuthUseCase) ParticipantLogin(ctx context.Context, in dto.LoginRequest, ip string) (*dto.ParticipantLoginResponse, error) {
	email := identity.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.NewValidationError("email", "email y contraseña son requeridos")
	}
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("auth: obtener usuario: %w", err)
	}
	if user == nil || !user.IsActive || !checkPassword(user.PasswordHash, in.Password) {
		return nil, domain.ErrInvalidCredentials
	}
	now := uc.now()
	user.LastLogin = &now
	user.UpdatedAt = now
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("auth: actualizar último acceso: %w", err)
	}
	token, err := uc.token(user.ID, jwt.RoleParticipant)
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, audit.Entry{
		Action:      entity.ActionLogin,
		EntityType:  entity.EntityParticipantUser,
		EntityID:    &user.ID,
		Description: fmt.Sprintf("Participante %s inició sesión", user.Email),
		IP:          ip,
	})
	return &dto.ParticipantLoginResponse{AccessToken: token, User: dto.NewParticipantUserResponse(user)}, nil
}

// ConfirmEmail activa la cuenta dueña del token y completa su vínculo con el padrón.
func (uc *AuthUseCase) ConfirmEmail(ctx context.Context, rawToken, ip string) (*dto.ParticipantUserResponse, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, domain.NewValidationError("token", "token requerido")
	}
	user, err := uc.users.GetByConfirmationHash(ctx, hashToken(rawToken))
	if err != nil {
		return nil, fmt.Errorf("auth: buscar token: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: token inválido", domain.ErrNotFound)
	}
	now := uc.now()
	if user.ConfirmationExpired(now) {
		return nil, domain.ErrTokenExpired
	}

	err = uc.tx.RunRegistration(ctx, func(users repository.ParticipantUserRepository, participants repository.ParticipantRepository) error {
		if user.ParticipantID == nil {
			p, err := participants.GetByEmail(ctx, user.Email)
			if err != nil {
				return err
			}
			if p == nil {
				p = &entity.Participant{Email: user.Email, FirstName: user.FirstName, LastName: user.LastName, CreatedAt: now, UpdatedAt: now}
				if err := participants.Create(ctx, p); err != nil {
					return err
				}
			}
			user.ParticipantID = &p.ID
		}
		user.EmailConfirmed = true
		user.IsActive = true
		user.ConfirmationTokenHash = ""
		user.ConfirmationExpiresAt = nil
		user.UpdatedAt = now
		return users.Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, audit.Entry{
		Action:      entity.ActionEmailVerified,
		EntityType:  entity.EntityParticipantUser,
		EntityID:    &user.ID,
		Description: fmt.Sprintf("Email %s confirmado", user.Email),
		IP:          ip,
	})
	resp := dto.NewParticipantUserResponse(user)
	return &resp, nil
}

// CheckEmail indica si el email está libre en las tres tablas de identidad.
func (uc *AuthUseCase) CheckEmail(ctx context.Context, email string) (*dto.CheckEmailResponse, error) {
	email = identity.NormalizeEmail(email)
	if err := identity.ValidateEmail(email); err != nil {
		return nil, err
	}
	err := uc.ensureEmailAvailable(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrEmailAlreadyExists) {
		return nil, err
	}
	return &dto.CheckEmailResponse{Email: email, Available: err == nil}, nil
}

// ensureEmailAvailable unicidad global (participantes, cuentas y admins) sin distinguir mayúsculas.
func (uc *AuthUseCase) ensureEmailAvailable(ctx context.Context, email string) error {
	p, err := uc.participants.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("auth: verificar email: %w", err)
	}
	if p != nil {
		return domain.ErrEmailAlreadyExists
	}
	u, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("auth: verificar email: %w", err)
	}
	if u != nil {
		return domain.ErrEmailAlreadyExists
	}
	a, err := uc.admins.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("auth: verificar email: %w", err)
	}
	if a != nil {
		return domain.ErrEmailAlreadyExists
	}
	return nil
}

func (uc *AuthUseCase) token(id int64, role string) (string, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, strconv.FormatInt(id, 10), role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return "", fmt.Errorf("auth: generar token: %w", err)
	}
	return token, nil
}

func (uc *AuthUseCase) confirmationLink(rawToken string) string {
	return uc.regOpts.BaseURL + "/api/participant-auth/verify?token=" + url.QueryEscape(rawToken)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash de contraseña: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// newConfirmationToken 32 bytes aleatorios; solo el hash SHA-256 se persiste.
func newConfirmationToken() (raw, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("auth: generar token de confirmación: %w", err)
	}
	raw = hex.EncodeToString(b)
	return raw, hashToken(raw), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
