package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gnewscm/gnew/pkg/object"
)

// mergeHeadFile holds the second parent recorded by a pending merge.
const mergeHeadFile = "MERGE_HEAD"

// MergeHead returns the pending merge parent, or "" when no merge is
// in progress.
func (r *Repo) MergeHead() (object.Hash, error) {
	data, err := os.ReadFile(filepath.Join(r.GnewDir, mergeHeadFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read MERGE_HEAD: %w", err)
	}
	return object.Hash(strings.TrimSpace(string(data))), nil
}

func (r *Repo) setMergeHead(h object.Hash) error {
	if err := os.WriteFile(filepath.Join(r.GnewDir, mergeHeadFile), []byte(string(h)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write MERGE_HEAD: %w", err)
	}
	return nil
}

func (r *Repo) clearMergeHead() error {
	err := os.Remove(filepath.Join(r.GnewDir, mergeHeadFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove MERGE_HEAD: %w", err)
	}
	return nil
}

// Commit records a snapshot of the tracked working tree.
//
//  1. Build the root tree from tracklist × working tree.
//  2. Reject an empty delta unless a merge is pending.
//  3. Parents: current HEAD commit (absent for the first commit),
//     plus MERGE_HEAD when concluding a merge.
//  4. Store the commit and advance the current branch ref.
func (r *Repo) Commit(message, author string) (object.Hash, error) {
	treeHash, err := r.WriteTree()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	parentHash, err := r.HeadHash()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	mergeParent, err := r.MergeHead()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	if mergeParent == "" && parentHash != "" {
		parent, err := r.Store.ReadCommit(parentHash)
		if err != nil {
			return "", fmt.Errorf("commit: read parent: %w", err)
		}
		if parent.TreeHash == treeHash {
			return "", fmt.Errorf("commit: %w", ErrNothingToCommit)
		}
	}

	var parents []object.Hash
	if parentHash != "" {
		parents = append(parents, parentHash)
	}
	if mergeParent != "" && mergeParent != parentHash {
		parents = append(parents, mergeParent)
	}

	commitHash, err := r.Store.WriteCommit(&object.CommitObj{
		TreeHash:  treeHash,
		Parents:   parents,
		Author:    author,
		Timestamp: time.Now().Unix(),
		Message:   message,
	})
	if err != nil {
		return "", fmt.Errorf("commit: write: %w", err)
	}

	branch, err := r.CurrentBranch()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if err := r.UpdateBranch(branch, commitHash); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if err := r.clearMergeHead(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	return commitHash, nil
}

// LogEntry pairs a commit with its hash during history walks.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.CommitObj
}

// Log walks the commit history from HEAD following first-parent links,
// newest first. limit <= 0 means unlimited.
func (r *Repo) Log(limit int) ([]LogEntry, error) {
	head, err := r.HeadHash()
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}
	if head == "" {
		return nil, nil
	}
	return r.LogFrom(head, limit)
}

// LogFrom walks first-parent history starting at the given commit.
func (r *Repo) LogFrom(start object.Hash, limit int) ([]LogEntry, error) {
	var entries []LogEntry
	current := start

	for current != "" {
		if limit > 0 && len(entries) == limit {
			break
		}
		c, err := r.Store.ReadCommit(current)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				break
			}
			return nil, fmt.Errorf("log: read commit %s: %w", current, err)
		}
		entries = append(entries, LogEntry{Hash: current, Commit: c})

		if len(c.Parents) == 0 {
			break
		}
		current = c.Parents[0]
	}

	return entries, nil
}
