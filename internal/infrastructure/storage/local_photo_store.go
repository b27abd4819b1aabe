// Package storage almacenamiento local de fotos de candidatos.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhoicas/encuestas-api/internal/application/ports"
	"github.com/jhoicas/encuestas-api/internal/domain"
)

// PublicPrefix ruta HTTP bajo la que se sirven las fotos.
const PublicPrefix = "/uploads/candidates"

var _ ports.PhotoStore = (*LocalPhotoStore)(nil)

// LocalPhotoStore guarda las fotos en <dir>/candidates.
type LocalPhotoStore struct {
	dir string
}

// NewLocalPhotoStore crea el directorio si no existe.
func NewLocalPhotoStore(baseDir string) (*LocalPhotoStore, error) {
	dir := filepath.Join(baseDir, "candidates")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear %s: %w", dir, err)
	}
	return &LocalPhotoStore{dir: dir}, nil
}

// Dir directorio físico de las fotos (para servirlas como estáticos).
func (s *LocalPhotoStore) Dir() string { return s.dir }

// Save escribe r en un archivo temporal y lo renombra al nombre final.
func (s *LocalPhotoStore) Save(ctx context.Context, name string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(name)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("storage: archivo temporal: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: escribir %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: cerrar %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("storage: guardar %s: %w", name, err)
	}
	return nil
}

// Remove borra la foto. Un archivo inexistente no es error.
func (s *LocalPhotoStore) Remove(_ context.Context, name string) error {
	if name == "" {
		return nil
	}
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: borrar %s: %w", name, err)
	}
	return nil
}

// URL ruta pública de la foto.
func (s *LocalPhotoStore) URL(name string) string {
	if name == "" {
		return ""
	}
	return PublicPrefix + "/" + name
}

// path solo acepta nombres planos (sin separadores ni "..").
func (s *LocalPhotoStore) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return "", domain.NewValidationError("photo", "nombre de archivo inválido")
	}
	return filepath.Join(s.dir, name), nil
}
