package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gnewscm/gnew/pkg/object"
)

// TreeFile is a single file in a flattened tree: its full
// slash-separated path and the blob it names.
type TreeFile struct {
	Path string
	Hash object.Hash
}

// WriteTree builds blob and tree objects for every tracked path that
// exists in the working tree and returns the root tree hash. Tracked
// paths missing from disk are skipped; intermediate directories become
// subtree objects.
func (r *Repo) WriteTree() (object.Hash, error) {
	tracklist, err := r.ReadTracklist()
	if err != nil {
		return "", fmt.Errorf("write tree: %w", err)
	}

	// Stage blobs for every tracked file still on disk.
	blobs := make(map[string]object.Hash, len(tracklist))
	for _, p := range tracklist {
		data, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(p)))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("write tree: read %q: %w", p, err)
		}
		h, err := r.Store.WriteBlob(&object.Blob{Data: data})
		if err != nil {
			return "", fmt.Errorf("write tree: blob %q: %w", p, err)
		}
		blobs[p] = h
	}

	return r.buildTreeDir(blobs, "")
}

// buildTreeDir writes the TreeObj for one directory prefix, recursing
// into subdirectories first, and returns its hash.
func (r *Repo) buildTreeDir(blobs map[string]object.Hash, prefix string) (object.Hash, error) {
	files := make(map[string]object.Hash)
	subdirs := make(map[string]struct{})

	for p, h := range blobs {
		var rel string
		if prefix == "" {
			rel = p
		} else {
			if !strings.HasPrefix(p, prefix+"/") {
				continue
			}
			rel = p[len(prefix)+1:]
		}

		slash := strings.IndexByte(rel, '/')
		if slash < 0 {
			files[rel] = h
		} else {
			subdirs[rel[:slash]] = struct{}{}
		}
	}

	names := make([]string, 0, len(files)+len(subdirs))
	for name := range files {
		names = append(names, name)
	}
	for name := range subdirs {
		if _, isFile := files[name]; !isFile {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var entries []object.TreeEntry
	for _, name := range names {
		if h, isFile := files[name]; isFile {
			entries = append(entries, object.TreeEntry{
				Mode: object.ModeFile,
				Name: name,
				Hash: h,
			})
		} else {
			childPrefix := name
			if prefix != "" {
				childPrefix = prefix + "/" + name
			}
			subHash, err := r.buildTreeDir(blobs, childPrefix)
			if err != nil {
				return "", fmt.Errorf("build tree %q: %w", childPrefix, err)
			}
			entries = append(entries, object.TreeEntry{
				Mode: object.ModeDir,
				Name: name,
				Hash: subHash,
			})
		}
	}

	h, err := r.Store.WriteTree(&object.TreeObj{Entries: entries})
	if err != nil {
		return "", fmt.Errorf("write tree (prefix=%q): %w", prefix, err)
	}
	return h, nil
}

// FlattenTree walks a tree object recursively, returning all file
// entries with their full slash-separated paths, sorted by path.
func (r *Repo) FlattenTree(h object.Hash) ([]TreeFile, error) {
	files, err := r.flattenTreeRec(h, "")
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (r *Repo) flattenTreeRec(h object.Hash, prefix string) ([]TreeFile, error) {
	tree, err := r.Store.ReadTree(h)
	if err != nil {
		return nil, fmt.Errorf("flatten tree: %w", err)
	}

	var result []TreeFile
	for _, entry := range tree.Entries {
		full := entry.Name
		if prefix != "" {
			full = prefix + "/" + entry.Name
		}

		if entry.IsDir() {
			sub, err := r.flattenTreeRec(entry.Hash, full)
			if err != nil {
				return nil, err
			}
			result = append(result, sub...)
		} else {
			result = append(result, TreeFile{Path: full, Hash: entry.Hash})
		}
	}
	return result, nil
}

// TreeFileMap flattens a tree into a path → blob hash map. An empty
// tree hash yields an empty map, which stands in for the tree of an
// unborn branch.
func (r *Repo) TreeFileMap(h object.Hash) (map[string]object.Hash, error) {
	m := make(map[string]object.Hash)
	if h == "" {
		return m, nil
	}
	files, err := r.FlattenTree(h)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		m[f.Path] = f.Hash
	}
	return m, nil
}

// CommitTreeMap resolves a commit hash to its flattened tree map. An
// empty commit hash yields an empty map.
func (r *Repo) CommitTreeMap(commit object.Hash) (map[string]object.Hash, error) {
	if commit == "" {
		return map[string]object.Hash{}, nil
	}
	c, err := r.Store.ReadCommit(commit)
	if err != nil {
		return nil, err
	}
	return r.TreeFileMap(c.TreeHash)
}

// TreeFileAt returns the blob hash at path inside the commit's tree.
func (r *Repo) TreeFileAt(commit object.Hash, path string) (object.Hash, error) {
	m, err := r.CommitTreeMap(commit)
	if err != nil {
		return "", err
	}
	h, ok := m[path]
	if !ok {
		return "", fmt.Errorf("%q: %w", path, ErrFileNotFound)
	}
	return h, nil
}
