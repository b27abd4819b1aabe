package main

import (
	"github.com/spf13/cobra"

	"github.com/jhoicas/encuestas-api/internal/application/dto"
)

func newCreateAdminCmd(e *env) *cobra.Command {
	var in dto.CreateAdminRequest
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Crea un administrador",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeFn, err := e.services(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			admin, err := svc.Auth.CreateAdmin(cmd.Context(), in, nil, cliIP)
			if err != nil {
				return err
			}
			e.log.Info().Int64("id", admin.ID).Str("email", admin.Email).Msg("administrador creado")
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "email del administrador")
	cmd.Flags().StringVar(&in.FullName, "name", "", "nombre completo")
	cmd.Flags().StringVar(&in.Password, "password", "", "contraseña (mín. 8, mayúscula, minúscula y dígito)")
	for _, f := range []string{"email", "name", "password"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}
