package tools

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/shaiso/apiforge/internal/domain"
)

// Ошибки git-сканера.
var (
	// ErrNotARepository — путь не является git-репозиторием.
	ErrNotARepository = errors.New("not a git repository")
)

// Максимум коммитов в инвентаризации.
const maxCommits = 10

// Расширения файлов исходного кода.
var sourceExtensions = map[string]bool{
	".go": true, ".py": true, ".js": true, ".ts": true,
	".java": true, ".rb": true, ".rs": true, ".c": true,
	".cpp": true, ".cs": true, ".php": true,
}

// GitScanner инвентаризирует git-репозиторий: спецификации API,
// исходники, конфигурация, последние коммиты.
type GitScanner struct{}

// NewGitScanner создаёт GitScanner.
func NewGitScanner() *GitScanner {
	return &GitScanner{}
}

// Scan открывает репозиторий и строит инвентаризацию.
func (s *GitScanner) Scan(path string) (*domain.RepoInventory, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotARepository, path)
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}

	inv := &domain.RepoInventory{Path: path}

	head, err := repo.Head()
	if err != nil {
		// Пустой репозиторий без коммитов — валидная инвентаризация.
		return inv, nil
	}
	inv.Branch = head.Name().Short()

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("resolve head commit: %w", err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("resolve tree: %w", err)
	}

	if err := tree.Files().ForEach(func(f *object.File) error {
		s.classify(inv, f.Name)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("walk tree: %w", err)
	}

	commits, err := s.recentCommits(repo)
	if err != nil {
		return nil, err
	}
	inv.Commits = commits

	return inv, nil
}

// classify относит файл к спецификациям API, исходникам или конфигурации.
func (s *GitScanner) classify(inv *domain.RepoInventory, name string) {
	base := strings.ToLower(filepath.Base(name))
	ext := filepath.Ext(base)

	switch {
	case isAPISpec(base, ext):
		inv.APIFiles = append(inv.APIFiles, name)
	case sourceExtensions[ext]:
		inv.SourceFiles++
	case isConfig(base, ext):
		inv.ConfigFiles = append(inv.ConfigFiles, name)
	}
}

func isAPISpec(base, ext string) bool {
	if ext == ".proto" {
		return true
	}
	if ext != ".yaml" && ext != ".yml" && ext != ".json" {
		return false
	}
	return strings.Contains(base, "openapi") ||
		strings.Contains(base, "swagger") ||
		strings.Contains(base, "api")
}

func isConfig(base, ext string) bool {
	switch base {
	case "dockerfile", "docker-compose.yaml", "docker-compose.yml", "makefile", ".env":
		return true
	}
	switch ext {
	case ".toml", ".ini", ".conf", ".env":
		return true
	case ".yaml", ".yml":
		return true
	}
	return false
}

// recentCommits возвращает до maxCommits последних коммитов от HEAD.
func (s *GitScanner) recentCommits(repo *git.Repository) ([]domain.CommitInfo, error) {
	iter, err := repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer iter.Close()

	var commits []domain.CommitInfo
	err = iter.ForEach(func(c *object.Commit) error {
		commits = append(commits, domain.CommitInfo{
			Hash:    c.Hash.String()[:8],
			Author:  c.Author.Name,
			Message: strings.TrimSpace(strings.SplitN(c.Message, "\n", 2)[0]),
			When:    c.Author.When.UTC(),
		})
		if len(commits) >= maxCommits {
			return errStopIteration
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopIteration) {
		return nil, fmt.Errorf("iterate log: %w", err)
	}
	return commits, nil
}

var errStopIteration = errors.New("stop iteration")
