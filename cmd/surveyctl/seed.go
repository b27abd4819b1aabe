package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/encuestas-api/internal/application/dto"
	"github.com/jhoicas/encuestas-api/internal/application/usecase"
	"github.com/jhoicas/encuestas-api/pkg/logger"
)

type demoPosition struct {
	name        string
	description string
	candidates  []string
}

var demoPositions = []demoPosition{
	{"Presidente", "Representante legal y vocero de la junta", []string{"María González", "Carlos Ramírez", "Lucía Herrera"}},
	{"Vicepresidente", "Reemplaza al presidente en sus ausencias", []string{"Andrés Torres", "Paula Medina"}},
	{"Tesorero", "Administra los fondos y presenta el balance", []string{"Jorge Castillo", "Diana Rojas"}},
	{"Secretario", "Lleva las actas y la correspondencia", []string{"Sofía Vargas", "Miguel Ortiz"}},
}

func newSeedCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Carga posiciones y candidatos de ejemplo (idempotente)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeFn, err := e.services(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			return seed(cmd.Context(), svc.Survey, e.log)
		},
	}
}

// seed crea solo lo que falta, comparando nombres sin distinguir mayúsculas.
func seed(ctx context.Context, survey *usecase.SurveyUseCase, log *logger.Logger) error {
	list, err := survey.ListPositions(ctx, dto.PageRequest{Page: 1, PerPage: 100})
	if err != nil {
		return err
	}
	existing := map[string]int64{}
	for _, p := range list.Positions {
		existing[strings.ToLower(p.Name)] = p.ID
	}

	for i, dp := range demoPositions {
		posID, ok := existing[strings.ToLower(dp.name)]
		if !ok {
			p, err := survey.CreatePosition(ctx, dto.PositionRequest{
				Name: dp.name, Description: dp.description, Order: i + 1,
			}, 0, cliIP)
			if err != nil {
				return err
			}
			posID = p.ID
			log.Info().Str("position", dp.name).Msg("posición creada")
		}

		cands, err := survey.ListCandidates(ctx, posID)
		if err != nil {
			return err
		}
		names := map[string]bool{}
		for _, c := range cands {
			names[strings.ToLower(c.Name)] = true
		}
		for j, name := range dp.candidates {
			if names[strings.ToLower(name)] {
				continue
			}
			if _, err := survey.CreateCandidate(ctx, dto.CandidateRequest{
				PositionID: posID, Name: name, Order: j + 1,
			}, 0, cliIP); err != nil {
				return err
			}
			log.Info().Str("position", dp.name).Str("candidate", name).Msg("candidato creado")
		}
	}
	return nil
}
