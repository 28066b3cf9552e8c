package repo

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/gnewscm/gnew/pkg/object"
)

// ignoreFileName holds user ignore patterns, one gitignore-style
// pattern per line. The .gnew directory is excluded unconditionally.
const ignoreFileName = ".gnewignore"

// ignoreMatcher returns the compiled .gnewignore patterns, or nil when
// the file is absent or unreadable.
func (r *Repo) ignoreMatcher() *gitignore.GitIgnore {
	ign, err := gitignore.CompileIgnoreFile(filepath.Join(r.RootDir, ignoreFileName))
	if err != nil {
		return nil
	}
	return ign
}

// WalkWorktree returns the repo-relative paths of every regular file
// under root (or the given subdirectory), sorted, excluding .gnew and
// anything matched by .gnewignore.
func (r *Repo) WalkWorktree(sub string) ([]string, error) {
	return r.walkFiles(sub)
}

func (r *Repo) walkFiles(sub string) ([]string, error) {
	start := r.RootDir
	if sub != "" && sub != "." {
		start = filepath.Join(r.RootDir, filepath.FromSlash(sub))
	}

	ign := r.ignoreMatcher()

	var out []string
	err := filepath.WalkDir(start, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(r.RootDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if rel == GnewDirName || strings.HasPrefix(rel, GnewDirName+"/") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ign != nil && ign.MatchesPath(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if !d.IsDir() && d.Type().IsRegular() {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk worktree: %w", err)
	}

	sort.Strings(out)
	return out, nil
}

// hashWorkFile reads a working-tree file and returns its blob hash
// without storing it.
func (r *Repo) hashWorkFile(rel string) (object.Hash, []byte, error) {
	data, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(rel)))
	if err != nil {
		return "", nil, err
	}
	return object.HashObject(object.KindBlob, data), data, nil
}
