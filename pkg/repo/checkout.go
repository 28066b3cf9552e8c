package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gnewscm/gnew/pkg/object"
)

// CreateBranch creates heads/<name> at the current commit and switches
// HEAD to it. On an unborn branch no ref file is written; HEAD simply
// moves. Fails with ErrBranchExists when the name is taken.
func (r *Repo) CreateBranch(name string) error {
	if r.BranchExists(name) {
		return fmt.Errorf("create branch %q: %w", name, ErrBranchExists)
	}

	head, err := r.HeadHash()
	if err != nil {
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	if head != "" {
		if err := r.UpdateBranch(name, head); err != nil {
			return err
		}
	}
	return r.SetCurrentBranch(name)
}

// Checkout switches the working tree to the given revision. A branch
// name also moves HEAD; a raw commit hash updates the working tree and
// tracklist but leaves HEAD and all branch refs untouched.
//
// Without force, the checkout refuses to overwrite untracked files
// present in the destination tree, and it refuses before any disk
// write happens.
func (r *Repo) Checkout(rev string, force bool) error {
	isBranch := r.BranchExists(rev)

	var target object.Hash
	if isBranch {
		h, err := r.BranchHash(rev)
		if err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
		target = h
	} else if object.ValidHash(rev) && r.Store.Has(object.Hash(rev)) {
		target = object.Hash(rev)
	} else {
		return fmt.Errorf("checkout %q: %w", rev, ErrReferenceNotFound)
	}

	if err := r.materialize(target, force); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	if isBranch {
		if err := r.SetCurrentBranch(rev); err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
	}
	return nil
}

// materialize updates the working tree and tracklist to match the
// target commit's tree. The untracked-overwrite safety check runs
// before anything touches disk.
func (r *Repo) materialize(target object.Hash, force bool) error {
	commit, err := r.Store.ReadCommit(target)
	if err != nil {
		return err
	}
	targetFiles, err := r.FlattenTree(commit.TreeHash)
	if err != nil {
		return err
	}
	targetMap := make(map[string]object.Hash, len(targetFiles))
	for _, f := range targetFiles {
		targetMap[f.Path] = f.Hash
	}

	if !force {
		untracked, err := r.untrackedSet()
		if err != nil {
			return err
		}
		for p := range untracked {
			if _, clobbered := targetMap[p]; clobbered {
				return fmt.Errorf("%q: %w", p, ErrUntrackedOverwrite)
			}
		}
	}

	// Delete files present in the current HEAD tree but not in the
	// target tree.
	head, err := r.HeadHash()
	if err != nil {
		return err
	}
	currentFiles, err := r.CommitTreeMap(head)
	if err != nil {
		return err
	}
	for p := range currentFiles {
		if _, keep := targetMap[p]; keep {
			continue
		}
		abs := filepath.Join(r.RootDir, filepath.FromSlash(p))
		if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %q: %w", p, err)
		}
		r.removeEmptyParents(filepath.Dir(abs))
	}

	// Write every file from the target tree.
	for _, f := range targetFiles {
		abs := filepath.Join(r.RootDir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return fmt.Errorf("mkdir for %q: %w", f.Path, err)
		}
		blob, err := r.Store.ReadBlob(f.Hash)
		if err != nil {
			return fmt.Errorf("read blob for %q: %w", f.Path, err)
		}
		if err := os.WriteFile(abs, blob.Data, 0o644); err != nil {
			return fmt.Errorf("write %q: %w", f.Path, err)
		}
	}

	// The tracklist becomes exactly the target tree's paths.
	paths := make([]string, 0, len(targetFiles))
	for _, f := range targetFiles {
		paths = append(paths, f.Path)
	}
	sort.Strings(paths)
	return r.WriteTracklist(paths)
}

// removeEmptyParents removes empty directories up to (but not
// including) the repository root.
func (r *Repo) removeEmptyParents(dir string) {
	for {
		if dir == r.RootDir || !strings.HasPrefix(dir, r.RootDir) {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		os.Remove(dir)
		dir = filepath.Dir(dir)
	}
}
