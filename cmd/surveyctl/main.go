// Comando surveyctl: tareas de operación sobre la base de datos de la encuesta.
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/encuestas-api/internal/bootstrap"
	"github.com/jhoicas/encuestas-api/internal/infrastructure/mail"
	"github.com/jhoicas/encuestas-api/pkg/config"
	"github.com/jhoicas/encuestas-api/pkg/logger"
)

// cliIP IP registrada en auditoría para operaciones de consola.
const cliIP = "cli"

type env struct {
	cfg *config.Config
	log *logger.Logger
}

func main() {
	e := &env{}
	root := &cobra.Command{
		Use:           "surveyctl",
		Short:         "Operación de la API de encuestas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.log = logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})
			return nil
		},
	}
	root.AddCommand(newMigrateCmd(e), newCreateAdminCmd(e), newSeedCmd(e))

	if err := root.ExecuteContext(context.Background()); err != nil {
		if e.log != nil {
			e.log.Error().Err(err).Msg("surveyctl")
		} else {
			os.Stderr.WriteString("surveyctl: " + err.Error() + "\n")
		}
		os.Exit(1)
	}
}

// services abre el almacén (con migraciones) y arma los casos de uso.
func (e *env) services(ctx context.Context) (*bootstrap.Services, func(), error) {
	backend, err := bootstrap.Open(ctx, e.cfg, e.log, true)
	if err != nil {
		return nil, nil, err
	}
	svc, err := bootstrap.NewServices(e.cfg, backend.Repos, bootstrap.Adapters{
		Mailer: mail.NewLogMailer(e.log),
	}, e.log)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}
	return svc, backend.Close, nil
}
