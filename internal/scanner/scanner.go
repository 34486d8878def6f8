// Package scanner discovers analyzable source files under a root directory.
// Paths are returned slash-separated and relative to the root, sorted, so
// every downstream structure keyed by path is deterministic.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/auspexlab/auspex/pkg/config"
	"github.com/auspexlab/auspex/pkg/models"
	"github.com/auspexlab/auspex/pkg/parser"
)

// Scanner walks a tree applying the configured language set, directory
// skips, exclude globs, and optionally the root .gitignore.
type Scanner struct {
	cfg      *config.Config
	skipDirs map[string]struct{}
	excludes []glob.Glob
	ignored  *ignore.GitIgnore
}

var defaultSkipDirs = []string{
	".git", ".hg", ".svn",
	"node_modules", "__pycache__", "vendor", "target",
	"build", "dist", "venv", ".venv",
	".mypy_cache", ".pytest_cache", ".tox",
}

// New creates a scanner for a config. Exclude patterns that fail to compile
// are rejected here rather than silently dropped.
func New(cfg *config.Config) (*Scanner, error) {
	s := &Scanner{
		cfg:      cfg,
		skipDirs: make(map[string]struct{}, len(defaultSkipDirs)+len(cfg.Exclude.Dirs)),
	}
	for _, d := range defaultSkipDirs {
		s.skipDirs[d] = struct{}{}
	}
	for _, d := range cfg.Exclude.Dirs {
		s.skipDirs[d] = struct{}{}
	}
	for _, p := range cfg.Exclude.Patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, err
		}
		s.excludes = append(s.excludes, g)
	}
	return s, nil
}

// Scan walks root and returns the relative paths of files in the configured
// languages. Unreadable entries are skipped, not fatal.
func (s *Scanner) Scan(root string) ([]string, error) {
	if s.cfg.Exclude.Gitignore {
		if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
			s.ignored = gi
		}
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := s.skipDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if s.excluded(rel) {
			return nil
		}

		lang := parser.DetectLanguage(rel)
		if lang == models.LangUnknown || !s.cfg.HasLanguage(string(lang)) {
			return nil
		}

		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func (s *Scanner) excluded(rel string) bool {
	if strings.HasPrefix(filepath.Base(rel), ".") {
		return true
	}
	for _, g := range s.excludes {
		if g.Match(rel) {
			return true
		}
	}
	return s.ignored != nil && s.ignored.MatchesPath(rel)
}
