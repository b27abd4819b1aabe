package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/encuestas-api/internal/application/dto"
	"github.com/jhoicas/encuestas-api/internal/bootstrap"
	"github.com/jhoicas/encuestas-api/internal/infrastructure/mail"
	"github.com/jhoicas/encuestas-api/internal/infrastructure/memory"
	"github.com/jhoicas/encuestas-api/pkg/config"
	"github.com/jhoicas/encuestas-api/pkg/logger"
)

func TestSeed_Idempotente(t *testing.T) {
	ctx := context.Background()
	log := logger.Nop()
	cfg := &config.Config{
		App:    config.AppConfig{Env: config.EnvTesting},
		JWT:    config.JWTConfig{Secret: "s", Expiration: 60, Issuer: "t"},
		Voting: config.VotingConfig{BallotSecret: "s"},
	}
	svc, err := bootstrap.NewServices(cfg, bootstrap.MemoryRepositories(memory.NewStore()),
		bootstrap.Adapters{Mailer: mail.NewLogMailer(log)}, log)
	require.NoError(t, err)

	// una posición ya existente no se duplica
	_, err = svc.Survey.CreatePosition(ctx, dto.PositionRequest{Name: "tesorero"}, 0, cliIP)
	require.NoError(t, err)

	require.NoError(t, seed(ctx, svc.Survey, log))
	require.NoError(t, seed(ctx, svc.Survey, log))

	list, err := svc.Survey.ListPositions(ctx, dto.PageRequest{Page: 1, PerPage: 100})
	require.NoError(t, err)
	assert.Len(t, list.Positions, len(demoPositions))

	cands, err := svc.Survey.ListCandidates(ctx, 0)
	require.NoError(t, err)
	want := 0
	for _, p := range demoPositions {
		want += len(p.candidates)
	}
	assert.Len(t, cands, want)
}
