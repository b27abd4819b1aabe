package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"

	_ "github.com/jhoicas/encuestas-api/docs"
	"github.com/jhoicas/encuestas-api/internal/bootstrap"
	"github.com/jhoicas/encuestas-api/internal/infrastructure/mail"
	infrapdf "github.com/jhoicas/encuestas-api/internal/infrastructure/pdf"
	"github.com/jhoicas/encuestas-api/internal/infrastructure/storage"
	"github.com/jhoicas/encuestas-api/internal/infrastructure/xmlexport"
	httpRouter "github.com/jhoicas/encuestas-api/internal/interfaces/http"
	"github.com/jhoicas/encuestas-api/pkg/config"
	"github.com/jhoicas/encuestas-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// @title                       Encuestas API
// @version                     1.0
// @description                 Votación de posiciones: padrón, candidatos, votos y resultados.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")
	if cfg.UsesDevSecret() {
		log.Warn().Msg("JWT_SECRET no definido: usando el secreto de desarrollo")
	}

	ctx := context.Background()
	backend, err := bootstrap.Open(ctx, cfg, log, cfg.DB.AutoMigrate)
	if err != nil {
		log.Fatal().Err(err).Msg("almacén de datos")
	}
	defer backend.Close()

	photos, err := storage.NewLocalPhotoStore(cfg.Upload.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("directorio de fotos")
	}

	svc, err := bootstrap.NewServices(cfg, backend.Repos, bootstrap.Adapters{
		Mailer: mail.New(cfg.Mail, log),
		Photos: photos,
		// QR del PDF hacia los resultados públicos
		PDF: infrapdf.NewMarotoPDFGenerator(cfg.App.BaseURL + "/api/results/summary"),
		XML: xmlexport.NewAuditExporter(),
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("casos de uso")
	}

	app := httpRouter.NewApp(httpRouter.ServerOptions{
		AppName:        cfg.App.Name,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		ProxyHeader:    cfg.HTTP.ProxyHeader,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}, log)

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Encuestas API",
		}))
	}

	httpRouter.Router(app, svc.RouterDeps(photos.Dir(), storage.PublicPrefix))

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
