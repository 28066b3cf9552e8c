package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gnewscm/gnew/pkg/object"
)

// CurrentBranch reads .gnew/HEAD and returns the current branch name.
func (r *Repo) CurrentBranch() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.GnewDir, "HEAD"))
	if err != nil {
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	name := strings.TrimSpace(string(data))
	if name == "" {
		return "", fmt.Errorf("read HEAD: %w", ErrReferenceNotFound)
	}
	return name, nil
}

// SetCurrentBranch writes the branch name into .gnew/HEAD.
func (r *Repo) SetCurrentBranch(name string) error {
	if err := os.WriteFile(filepath.Join(r.GnewDir, "HEAD"), []byte(name+"\n"), 0o644); err != nil {
		return fmt.Errorf("write HEAD: %w", err)
	}
	return nil
}

// BranchExists reports whether heads/<name> is present.
func (r *Repo) BranchExists(name string) bool {
	_, err := os.Stat(filepath.Join(r.GnewDir, "heads", name))
	return err == nil
}

// BranchHash reads the commit hash of heads/<name>. A missing branch
// file yields ErrReferenceNotFound.
func (r *Repo) BranchHash(name string) (object.Hash, error) {
	data, err := os.ReadFile(filepath.Join(r.GnewDir, "heads", name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("branch %q: %w", name, ErrReferenceNotFound)
		}
		return "", fmt.Errorf("read branch %q: %w", name, err)
	}
	return object.Hash(strings.TrimSpace(string(data))), nil
}

// UpdateBranch writes a commit hash to heads/<name> atomically via
// temp + rename.
func (r *Repo) UpdateBranch(name string, h object.Hash) error {
	headsDir := filepath.Join(r.GnewDir, "heads")
	if err := os.MkdirAll(headsDir, 0o755); err != nil {
		return fmt.Errorf("update branch %q: mkdir: %w", name, err)
	}

	tmp, err := os.CreateTemp(headsDir, ".head-tmp-*")
	if err != nil {
		return fmt.Errorf("update branch %q: tmpfile: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(string(h) + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("update branch %q: write: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("update branch %q: close: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(headsDir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("update branch %q: rename: %w", name, err)
	}
	return nil
}

// Heads returns all branch refs as name → hash.
func (r *Repo) Heads() (map[string]object.Hash, error) {
	headsDir := filepath.Join(r.GnewDir, "heads")
	entries, err := os.ReadDir(headsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]object.Hash{}, nil
		}
		return nil, fmt.Errorf("list heads: %w", err)
	}

	heads := make(map[string]object.Hash, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		h, err := r.BranchHash(e.Name())
		if err != nil {
			return nil, err
		}
		heads[e.Name()] = h
	}
	return heads, nil
}

// BranchNames returns the branch names sorted alphabetically.
func (r *Repo) BranchNames() ([]string, error) {
	heads, err := r.Heads()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(heads))
	for name := range heads {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// HeadHash resolves the current branch to its commit hash. An unborn
// branch (no commits yet) yields "" with no error.
func (r *Repo) HeadHash() (object.Hash, error) {
	branch, err := r.CurrentBranch()
	if err != nil {
		return "", err
	}
	h, err := r.BranchHash(branch)
	if err != nil {
		if errors.Is(err, ErrReferenceNotFound) {
			return "", nil
		}
		return "", err
	}
	return h, nil
}

// ResolveRev resolves a revision string to a commit hash.
// Supported forms: "HEAD", a branch name, a full commit hash.
func (r *Repo) ResolveRev(rev string) (object.Hash, error) {
	if rev == "HEAD" {
		h, err := r.HeadHash()
		if err != nil {
			return "", err
		}
		if h == "" {
			return "", fmt.Errorf("HEAD: %w", ErrReferenceNotFound)
		}
		return h, nil
	}

	if r.BranchExists(rev) {
		return r.BranchHash(rev)
	}

	if object.ValidHash(rev) && r.Store.Has(object.Hash(rev)) {
		return object.Hash(rev), nil
	}

	return "", fmt.Errorf("%q: %w", rev, ErrReferenceNotFound)
}
