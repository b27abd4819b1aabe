package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/encuestas-api/internal/domain"
	"github.com/jhoicas/encuestas-api/internal/infrastructure/storage"
)

func TestLocalPhotoStore_SaveAndRemove(t *testing.T) {
	ctx := context.Background()
	s, err := storage.NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "candidate_1_abc.jpg", strings.NewReader("jpegdata")))
	data, err := os.ReadFile(filepath.Join(s.Dir(), "candidate_1_abc.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpegdata", string(data))
	assert.Equal(t, "/uploads/candidates/candidate_1_abc.jpg", s.URL("candidate_1_abc.jpg"))

	require.NoError(t, s.Remove(ctx, "candidate_1_abc.jpg"))
	_, err = os.Stat(filepath.Join(s.Dir(), "candidate_1_abc.jpg"))
	assert.True(t, os.IsNotExist(err))

	// borrar dos veces no falla
	require.NoError(t, s.Remove(ctx, "candidate_1_abc.jpg"))
	require.NoError(t, s.Remove(ctx, ""))
	assert.Equal(t, "", s.URL(""))
}

func TestLocalPhotoStore_RejectsPaths(t *testing.T) {
	s, err := storage.NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)
	for _, name := range []string{"../x.jpg", "a/b.jpg", ".hidden.jpg", ""} {
		err := s.Save(context.Background(), name, strings.NewReader("x"))
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}
}
