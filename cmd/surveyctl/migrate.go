package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jhoicas/encuestas-api/internal/bootstrap"
)

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if e.cfg.App.IsTesting() {
				return errors.New("migrate requiere PostgreSQL (APP_ENV=testing usa memoria)")
			}
			backend, err := bootstrap.Open(cmd.Context(), e.cfg, e.log, true)
			if err != nil {
				return err
			}
			backend.Close()
			return nil
		},
	}
}
