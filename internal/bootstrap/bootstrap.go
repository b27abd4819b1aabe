// Package bootstrap arma los casos de uso sobre un juego de repositorios
// (PostgreSQL o memoria) y produce las dependencias del router HTTP.
package bootstrap

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/encuestas-api/internal/application/audit"
	"github.com/jhoicas/encuestas-api/internal/application/auth"
	"github.com/jhoicas/encuestas-api/internal/application/notification"
	"github.com/jhoicas/encuestas-api/internal/application/ports"
	"github.com/jhoicas/encuestas-api/internal/application/reporting"
	"github.com/jhoicas/encuestas-api/internal/application/usecase"
	"github.com/jhoicas/encuestas-api/internal/application/voting"
	"github.com/jhoicas/encuestas-api/internal/domain/repository"
	"github.com/jhoicas/encuestas-api/internal/infrastructure/memory"
	"github.com/jhoicas/encuestas-api/internal/infrastructure/postgres"
	apphttp "github.com/jhoicas/encuestas-api/internal/interfaces/http"
	"github.com/jhoicas/encuestas-api/pkg/ballot"
	"github.com/jhoicas/encuestas-api/pkg/config"
	"github.com/jhoicas/encuestas-api/pkg/logger"
)

// Repositories adaptadores de persistencia usados por los casos de uso.
type Repositories struct {
	Participants     repository.ParticipantRepository
	ParticipantUsers repository.ParticipantUserRepository
	Admins           repository.AdminRepository
	Positions        repository.PositionRepository
	Candidates       repository.CandidateRepository
	Votes            repository.VoteRepository
	Audit            repository.AuditRepository
	Reports          repository.ReportRepository
	VotingTx         voting.TxRunner
	RegistrationTx   auth.RegistrationTxRunner
}

// PostgresRepositories repositorios sobre el pool.
func PostgresRepositories(pool *pgxpool.Pool) Repositories {
	tx := postgres.NewTxRunner(pool)
	return Repositories{
		Participants:     postgres.NewParticipantRepository(pool),
		ParticipantUsers: postgres.NewParticipantUserRepository(pool),
		Admins:           postgres.NewAdminRepository(pool),
		Positions:        postgres.NewPositionRepository(pool),
		Candidates:       postgres.NewCandidateRepository(pool),
		Votes:            postgres.NewVoteRepository(pool),
		Audit:            postgres.NewAuditRepository(pool),
		Reports:          postgres.NewReportRepository(pool),
		VotingTx:         tx,
		RegistrationTx:   tx,
	}
}

// MemoryRepositories repositorios del perfil testing.
func MemoryRepositories(s *memory.Store) Repositories {
	return Repositories{
		Participants:     s.Participants(),
		ParticipantUsers: s.ParticipantUsers(),
		Admins:           s.Admins(),
		Positions:        s.Positions(),
		Candidates:       s.Candidates(),
		Votes:            s.Votes(),
		Audit:            s.Audit(),
		Reports:          s.Reports(),
		VotingTx:         s,
		RegistrationTx:   s,
	}
}

// Adapters puertos de salida. PDF y XML nil deshabilitan esas exportaciones.
type Adapters struct {
	Mailer ports.Mailer
	Photos ports.PhotoStore
	PDF    ports.ResultsPDFGenerator
	XML    ports.AuditXMLExporter
}

// Services casos de uso listos para el router.
type Services struct {
	Auth         *auth.AuthUseCase
	Participants *usecase.ParticipantUseCase
	Survey       *usecase.SurveyUseCase
	Nomination   *usecase.NominationUseCase
	Voting       *voting.UseCase
	Reporting    *reporting.UseCase
	jwtSecret    string
}

// NewServices construye todos los casos de uso con la configuración dada.
func NewServices(cfg *config.Config, repos Repositories, ad Adapters, log *logger.Logger) (*Services, error) {
	signer, err := ballot.NewSigner(cfg.Voting.BallotSecret)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: firmador de papeletas: %w", err)
	}
	recorder := audit.NewRecorder(repos.Audit, log)
	notifier := notification.NewNotifier(ad.Mailer, log, cfg.App.Name)

	authUC := auth.NewAuthUseCase(
		repos.Admins, repos.ParticipantUsers, repos.Participants, repos.RegistrationTx,
		recorder, notifier,
		auth.JWTConfig{Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer},
		auth.RegistrationOptions{
			RequireEmailConfirmation: cfg.Voting.RequireEmailConfirmation,
			ConfirmationTTL:          time.Duration(cfg.Voting.ConfirmationTTLHours) * time.Hour,
			BaseURL:                  cfg.App.BaseURL,
		},
	)
	return &Services{
		Auth:         authUC,
		Participants: usecase.NewParticipantUseCase(repos.Participants, repos.Reports, recorder, notifier, signer, cfg.App.BaseURL),
		Survey:       usecase.NewSurveyUseCase(repos.Positions, repos.Candidates, recorder, ad.Photos),
		Nomination:   usecase.NewNominationUseCase(repos.ParticipantUsers, repos.Positions, repos.Candidates, recorder, ad.Photos, cfg.Upload.MaxPhotoBytes),
		Voting: voting.NewUseCase(
			repos.Participants, repos.ParticipantUsers, repos.Positions, repos.Candidates, repos.Votes,
			repos.VotingTx, recorder, ad.Photos,
			voting.Options{LegacyEnabled: cfg.Voting.LegacyEnabled, Signer: signer},
		),
		Reporting: reporting.NewUseCase(repos.Reports, repos.Audit, ad.Photos, ad.PDF, ad.XML),
		jwtSecret: cfg.JWT.Secret,
	}, nil
}

// RouterDeps dependencias del router HTTP. photoDir y photoPrefix sirven las fotos como estáticos.
func (s *Services) RouterDeps(photoDir, photoPrefix string) apphttp.RouterDeps {
	return apphttp.RouterDeps{
		AuthUC:        s.Auth,
		ParticipantUC: s.Participants,
		SurveyUC:      s.Survey,
		NominationUC:  s.Nomination,
		VotingUC:      s.Voting,
		ReportingUC:   s.Reporting,
		JWTSecret:     s.jwtSecret,
		PhotoDir:      photoDir,
		PhotoPrefix:   photoPrefix,
	}
}
