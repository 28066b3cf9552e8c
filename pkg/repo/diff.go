package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gnewscm/gnew/pkg/diff"
	"github.com/gnewscm/gnew/pkg/object"
)

// DiffCommits builds the file pairs for a tree-vs-tree diff between
// two commits, ordered by path over the union of changed paths.
func (r *Repo) DiffCommits(c1, c2 object.Hash) ([]diff.FilePair, error) {
	fromFiles, err := r.CommitTreeMap(c1)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	toFiles, err := r.CommitTreeMap(c2)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}

	var pairs []diff.FilePair
	for _, path := range unionPaths(fromFiles, toFiles) {
		fromHash, inFrom := fromFiles[path]
		toHash, inTo := toFiles[path]
		if inFrom && inTo && fromHash == toHash {
			continue
		}

		p := diff.FilePair{Path: path, BeforeMissing: !inFrom, AfterMissing: !inTo}
		if inFrom {
			data, err := r.blobDataOrNil(fromHash)
			if err != nil {
				return nil, fmt.Errorf("diff: %w", err)
			}
			p.Before = data
		}
		if inTo {
			data, err := r.blobDataOrNil(toHash)
			if err != nil {
				return nil, fmt.Errorf("diff: %w", err)
			}
			p.After = data
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

// DiffWorktree builds the file pairs for a tree-vs-working-tree diff.
// The tracklist defines which working paths participate: tracked paths
// not in the tree appear as additions, tree paths no longer tracked
// (or gone from disk) as deletions.
func (r *Repo) DiffWorktree(from object.Hash) ([]diff.FilePair, error) {
	fromFiles, err := r.CommitTreeMap(from)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	tracked, err := r.ReadTracklist()
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}

	paths := make(map[string]bool, len(fromFiles)+len(tracked))
	for p := range fromFiles {
		paths[p] = true
	}
	for _, p := range tracked {
		paths[p] = true
	}
	trackSet := make(map[string]bool, len(tracked))
	for _, p := range tracked {
		trackSet[p] = true
	}

	ordered := make([]string, 0, len(paths))
	for p := range paths {
		ordered = append(ordered, p)
	}
	sort.Strings(ordered)

	var pairs []diff.FilePair
	for _, path := range ordered {
		fromHash, inFrom := fromFiles[path]

		var workData []byte
		onDisk := false
		if trackSet[path] {
			data, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(path)))
			if err == nil {
				workData = data
				onDisk = true
			} else if !os.IsNotExist(err) {
				return nil, fmt.Errorf("diff: read %q: %w", path, err)
			}
		}

		switch {
		case inFrom && onDisk:
			if object.HashObject(object.KindBlob, workData) == fromHash {
				continue
			}
			before, err := r.blobDataOrNil(fromHash)
			if err != nil {
				return nil, fmt.Errorf("diff: %w", err)
			}
			pairs = append(pairs, diff.FilePair{Path: path, Before: before, After: workData})
		case inFrom && !onDisk:
			before, err := r.blobDataOrNil(fromHash)
			if err != nil {
				return nil, fmt.Errorf("diff: %w", err)
			}
			pairs = append(pairs, diff.FilePair{Path: path, Before: before, AfterMissing: true})
		case !inFrom && onDisk:
			pairs = append(pairs, diff.FilePair{Path: path, After: workData, BeforeMissing: true})
		}
	}
	return pairs, nil
}
