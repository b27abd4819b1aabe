package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/encuestas-api/internal/application/auth"
	"github.com/jhoicas/encuestas-api/internal/application/reporting"
	"github.com/jhoicas/encuestas-api/internal/application/usecase"
	"github.com/jhoicas/encuestas-api/internal/application/voting"
	"github.com/jhoicas/encuestas-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	ParticipantUC *usecase.ParticipantUseCase
	SurveyUC      *usecase.SurveyUseCase
	NominationUC  *usecase.NominationUseCase
	VotingUC      *voting.UseCase
	ReportingUC   *reporting.UseCase
	JWTSecret     string
	PhotoDir      string // directorio servido en PhotoPrefix; vacío = sin estáticos
	PhotoPrefix   string
}

// Router registra las rutas de la API.
// Las rutas protegidas llevan el middleware por ruta para no afectar a las públicas del mismo prefijo.
func Router(app *fiber.App, deps RouterDeps) {
	authn := AuthMiddleware(deps.JWTSecret)
	isAdmin := RequireRole(jwt.RoleAdmin)
	isParticipant := RequireRole(jwt.RoleParticipant)

	api := app.Group("/api")

	// Auth de administradores
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/register", authn, isAdmin, authHandler.Register)
	authGroup.Get("/verify", authn, isAdmin, authHandler.Verify)

	// Auth de participantes (público)
	pauth := api.Group("/participant-auth")
	pauth.Post("/register", authHandler.ParticipantRegister)
	pauth.Post("/login", authHandler.ParticipantLogin)
	pauth.Get("/verify", authHandler.ConfirmEmail)
	pauth.Post("/check-email", authHandler.CheckEmail)

	// Padrón
	participantHandler := NewParticipantHandler(deps.ParticipantUC)
	participants := api.Group("/participants")
	participants.Get("/stats", participantHandler.Stats)
	participants.Post("/bulk-upload", authn, isAdmin, participantHandler.BulkUpload)
	participants.Post("/send-invitations", authn, isAdmin, participantHandler.SendInvitations)
	participants.Get("/", authn, isAdmin, participantHandler.List)
	participants.Post("/", authn, isAdmin, participantHandler.Create)
	participants.Get("/:id", authn, isAdmin, participantHandler.Get)
	participants.Put("/:id", authn, isAdmin, participantHandler.Update)
	participants.Delete("/:id", authn, isAdmin, participantHandler.Delete)

	// Configuración de la encuesta (admin)
	surveyHandler := NewSurveyHandler(deps.SurveyUC)
	survey := api.Group("/survey", authn, isAdmin)
	survey.Get("/positions", surveyHandler.ListPositions)
	survey.Post("/positions", surveyHandler.CreatePosition)
	survey.Put("/positions/:id", surveyHandler.UpdatePosition)
	survey.Delete("/positions/:id", surveyHandler.DeletePosition)
	survey.Get("/candidates", surveyHandler.ListCandidates)
	survey.Post("/candidates", surveyHandler.CreateCandidate)
	survey.Put("/candidates/:id", surveyHandler.UpdateCandidate)
	survey.Delete("/candidates/:id", surveyHandler.DeleteCandidate)

	// Votación
	votingHandler := NewVotingHandler(deps.VotingUC)
	reportHandler := NewReportHandler(deps.ReportingUC)
	votingGroup := api.Group("/voting")
	votingGroup.Get("/public/positions", votingHandler.LegacyBallot)
	votingGroup.Post("/public/submit", votingHandler.LegacySubmit)
	votingGroup.Get("/active-surveys", authn, isParticipant, votingHandler.ActiveSurveys)
	votingGroup.Post("/submit-votes", authn, isParticipant, votingHandler.SubmitVotes)
	votingGroup.Get("/vote-status", authn, isParticipant, votingHandler.VoteStatus)
	votingGroup.Get("/user-info", authn, isParticipant, votingHandler.UserInfo)
	votingGroup.Get("/my-votes", authn, isParticipant, votingHandler.MyVotes)

	// Resultados y exportaciones (admin)
	results := votingGroup.Group("/results", authn, isAdmin)
	results.Get("/", reportHandler.Results)
	results.Get("/timeline", reportHandler.Timeline)
	results.Get("/export-csv", reportHandler.ExportCSV)
	results.Get("/audit-log", reportHandler.VoteAuditTrail)
	results.Get("/export-audit", reportHandler.ExportVoteAudit)
	results.Get("/export-pdf", reportHandler.ExportPDF)
	results.Get("/export-audit-xml", reportHandler.ExportAuditXML)
	api.Get("/audit-logs", authn, isAdmin, reportHandler.AuditLogs)

	// Candidatos: postulación (participante) y consulta pública
	candidateHandler := NewCandidateHandler(deps.NominationUC)
	candidates := api.Group("/candidates")
	candidates.Post("/register", authn, isParticipant, candidateHandler.Register)
	candidates.Get("/my-candidates", authn, isParticipant, candidateHandler.MyCandidates)
	candidates.Get("/available-positions", authn, isParticipant, candidateHandler.AvailablePositions)
	candidates.Get("/position/:id", candidateHandler.ByPosition)
	candidates.Get("/:id", candidateHandler.Detail)

	// Resultados públicos
	public := api.Group("/results")
	public.Get("/summary", reportHandler.PublicSummary)
	public.Get("/position/:id", reportHandler.PositionResults)
	public.Get("/statistics", reportHandler.Statistics)
	public.Get("/timeline", reportHandler.PublicTimeline)

	if deps.PhotoDir != "" && deps.PhotoPrefix != "" {
		app.Static(deps.PhotoPrefix, deps.PhotoDir)
	}
}
