package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gnewscm/gnew/pkg/diff3"
	"github.com/gnewscm/gnew/pkg/object"
)

// MergeResult is the outcome of Merge.
type MergeResult struct {
	FastForward bool
	Conflicts   []string // paths with unresolved regions, sorted
}

// Merge merges the given revision into the current branch.
//
//  1. other == ours, or other already in ours' history → nothing to merge.
//  2. ours in other's history → fast-forward the branch ref, update
//     the working tree, no merge commit.
//  3. Otherwise three-way merge against the LCA: per-path dispatch,
//     conflicting files get marker text, the tracklist becomes the
//     union, and MERGE_HEAD records the second parent for the next
//     commit. Merge itself never commits.
func (r *Repo) Merge(rev string) (*MergeResult, error) {
	other, err := r.ResolveRev(rev)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	ours, err := r.HeadHash()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if ours == "" {
		return nil, fmt.Errorf("merge: %w", ErrReferenceNotFound)
	}

	if ours == other {
		return nil, fmt.Errorf("merge: %w", ErrNothingToMerge)
	}
	if err := r.EnsureClean(); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	reached, err := r.IsAncestor(other, ours)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if reached {
		return nil, fmt.Errorf("merge: %w", ErrNothingToMerge)
	}

	ff, err := r.IsAncestor(ours, other)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if ff {
		if err := r.materialize(other, false); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		branch, err := r.CurrentBranch()
		if err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		if err := r.UpdateBranch(branch, other); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		return &MergeResult{FastForward: true}, nil
	}

	base, err := r.MergeBase(ours, other)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	baseFiles, err := r.CommitTreeMap(base)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	ourFiles, err := r.CommitTreeMap(ours)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	theirFiles, err := r.CommitTreeMap(other)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	result := &MergeResult{}
	tracklist, err := r.ReadTracklist()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	trackSet := make(map[string]bool, len(tracklist))
	for _, p := range tracklist {
		trackSet[p] = true
	}

	for _, path := range unionPaths(ourFiles, theirFiles) {
		ourHash, inOurs := ourFiles[path]
		baseHash, inBase := baseFiles[path]
		theirHash, inTheirs := theirFiles[path]

		switch {
		case inOurs && inTheirs && ourHash == theirHash:
			// Same content on both sides; nothing to do.
			continue

		case !inOurs && inTheirs && !inBase:
			// Theirs added it.
			if err := r.writeMergedFile(path, theirHash); err != nil {
				return nil, err
			}
			if !trackSet[path] {
				trackSet[path] = true
				tracklist = append(tracklist, path)
			}

		case inOurs && !inTheirs && inBase && ourHash == baseHash:
			// Ours unchanged, theirs removed it.
			abs := filepath.Join(r.RootDir, filepath.FromSlash(path))
			if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("merge: remove %q: %w", path, err)
			}
			r.removeEmptyParents(filepath.Dir(abs))
			if trackSet[path] {
				delete(trackSet, path)
				tracklist = removePath(tracklist, path)
			}

		case !inOurs && inTheirs && inBase && theirHash == baseHash:
			// Ours removed it, theirs unchanged; stays removed.
			continue

		default:
			// Divergent content: per-line three-way merge. A side that
			// lacks the file contributes empty content, so delete vs
			// modify surfaces as a conflict instead of silent loss.
			baseData, err := r.blobDataOrNil(baseHash)
			if err != nil {
				return nil, fmt.Errorf("merge: %w", err)
			}
			ourData, err := r.blobDataOrNil(ourHash)
			if err != nil {
				return nil, fmt.Errorf("merge: %w", err)
			}
			theirData, err := r.blobDataOrNil(theirHash)
			if err != nil {
				return nil, fmt.Errorf("merge: %w", err)
			}

			merged := diff3.Merge(baseData, ourData, theirData)
			abs := filepath.Join(r.RootDir, filepath.FromSlash(path))
			if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
				return nil, fmt.Errorf("merge: mkdir for %q: %w", path, err)
			}
			if err := os.WriteFile(abs, merged.Merged, 0o644); err != nil {
				return nil, fmt.Errorf("merge: write %q: %w", path, err)
			}
			if !trackSet[path] {
				trackSet[path] = true
				tracklist = append(tracklist, path)
			}
			if merged.HasConflicts {
				result.Conflicts = append(result.Conflicts, path)
			}
		}
	}

	if err := r.WriteTracklist(tracklist); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if err := r.setMergeHead(other); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	sort.Strings(result.Conflicts)
	return result, nil
}

func (r *Repo) writeMergedFile(path string, blobHash object.Hash) error {
	blob, err := r.Store.ReadBlob(blobHash)
	if err != nil {
		return fmt.Errorf("merge: read blob for %q: %w", path, err)
	}
	abs := filepath.Join(r.RootDir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("merge: mkdir for %q: %w", path, err)
	}
	if err := os.WriteFile(abs, blob.Data, 0o644); err != nil {
		return fmt.Errorf("merge: write %q: %w", path, err)
	}
	return nil
}

// blobDataOrNil reads a blob, treating the empty hash as empty content.
func (r *Repo) blobDataOrNil(h object.Hash) ([]byte, error) {
	if h == "" {
		return nil, nil
	}
	blob, err := r.Store.ReadBlob(h)
	if err != nil {
		return nil, err
	}
	return blob.Data, nil
}

func unionPaths(a, b map[string]object.Hash) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for p := range a {
		seen[p] = true
	}
	for p := range b {
		seen[p] = true
	}
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func removePath(paths []string, path string) []string {
	out := paths[:0:0]
	for _, p := range paths {
		if p != path {
			out = append(out, p)
		}
	}
	return out
}
