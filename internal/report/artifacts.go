package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ArtifactStore хранит файлы, произведённые стадиями одного run:
// документацию, SDK, отчёты безопасности.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore создаёт хранилище артефактов для run.
func NewArtifactStore(root string, runID uuid.UUID) *ArtifactStore {
	return &ArtifactStore{dir: filepath.Join(root, runID.String())}
}

// Dir возвращает каталог run.
func (a *ArtifactStore) Dir() string {
	return a.dir
}

// WriteFile сохраняет артефакт и возвращает его имя относительно
// каталога run.
func (a *ArtifactStore) WriteFile(name, content string) (string, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	path := filepath.Join(a.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create artifact subdir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", name, err)
	}
	return name, nil
}
