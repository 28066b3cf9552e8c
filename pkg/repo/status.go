package repo

import (
	"fmt"
	"sort"

	"github.com/gnewscm/gnew/pkg/object"
)

// FileStatus classifies a path against the HEAD tree and tracklist.
type FileStatus int

const (
	StatusClean     FileStatus = iota
	StatusUntracked            // on disk, not tracked
	StatusAdded                // tracked, not in HEAD tree
	StatusModified             // tracked and in HEAD, content differs
	StatusRemoved              // in HEAD tree, no longer tracked
	StatusMissing              // tracked, gone from disk
)

// Code returns the single-character display code for the status.
func (s FileStatus) Code() byte {
	switch s {
	case StatusUntracked:
		return '?'
	case StatusAdded:
		return 'A'
	case StatusModified:
		return 'M'
	case StatusRemoved:
		return 'R'
	case StatusMissing:
		return '!'
	default:
		return ' '
	}
}

// StatusEntry records the status of a single path.
type StatusEntry struct {
	Path   string
	Status FileStatus
}

// Status classifies every relevant path against the HEAD commit's tree
// and the tracklist. Clean paths are included (callers filter for
// display); entries come back sorted by path.
func (r *Repo) Status() ([]StatusEntry, error) {
	headHash, err := r.HeadHash()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	return r.StatusAgainst(headHash)
}

// StatusAgainst classifies paths against an arbitrary commit (or the
// empty tree when commit is "").
func (r *Repo) StatusAgainst(commit object.Hash) ([]StatusEntry, error) {
	headFiles, err := r.CommitTreeMap(commit)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	tracked, err := r.TrackedSet()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	workFiles, err := r.walkFiles("")
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	var entries []StatusEntry
	seen := make(map[string]bool, len(workFiles))

	for _, p := range workFiles {
		seen[p] = true
		headHash, inHead := headFiles[p]

		var st FileStatus
		switch {
		case !inHead && tracked[p]:
			st = StatusAdded
		case !inHead && !tracked[p]:
			st = StatusUntracked
		case inHead && !tracked[p]:
			st = StatusRemoved
		default:
			workHash, _, err := r.hashWorkFile(p)
			if err != nil {
				return nil, fmt.Errorf("status: read %q: %w", p, err)
			}
			if workHash == headHash {
				st = StatusClean
			} else {
				st = StatusModified
			}
		}
		entries = append(entries, StatusEntry{Path: p, Status: st})
	}

	// HEAD files absent from disk: missing if still tracked, removed
	// otherwise.
	for p := range headFiles {
		if seen[p] {
			continue
		}
		st := StatusRemoved
		if tracked[p] {
			st = StatusMissing
		}
		entries = append(entries, StatusEntry{Path: p, Status: st})
	}

	// Tracked files that exist neither on disk nor in HEAD are also
	// missing: they were added and then deleted before a commit.
	for p := range tracked {
		if seen[p] {
			continue
		}
		if _, inHead := headFiles[p]; inHead {
			continue
		}
		entries = append(entries, StatusEntry{Path: p, Status: StatusMissing})
		seen[p] = true
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// untrackedSet returns the paths on disk that are not tracked.
func (r *Repo) untrackedSet() (map[string]bool, error) {
	tracked, err := r.TrackedSet()
	if err != nil {
		return nil, err
	}
	workFiles, err := r.walkFiles("")
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool)
	for _, p := range workFiles {
		if !tracked[p] {
			out[p] = true
		}
	}
	return out, nil
}

// EnsureClean rejects the operation when the working tree has
// uncommitted tracked changes (added, modified, removed, or missing
// paths). Untracked files do not count as dirt.
func (r *Repo) EnsureClean() error {
	entries, err := r.Status()
	if err != nil {
		return err
	}
	for _, e := range entries {
		switch e.Status {
		case StatusClean, StatusUntracked:
		default:
			return fmt.Errorf("%q has uncommitted changes: %w", e.Path, ErrDirtyWorktree)
		}
	}
	return nil
}
