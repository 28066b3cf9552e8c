package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadTracklist loads the tracked-path set from .gnew/tracklist. Order
// is preserved for display stability; membership is what matters.
func (r *Repo) ReadTracklist() ([]string, error) {
	data, err := os.ReadFile(filepath.Join(r.GnewDir, "tracklist"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read tracklist: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths, nil
}

// WriteTracklist atomically replaces .gnew/tracklist.
func (r *Repo) WriteTracklist(paths []string) error {
	var buf strings.Builder
	for _, p := range paths {
		buf.WriteString(p)
		buf.WriteByte('\n')
	}

	tmp, err := os.CreateTemp(r.GnewDir, ".tracklist-tmp-*")
	if err != nil {
		return fmt.Errorf("write tracklist: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(buf.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write tracklist: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write tracklist: close: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(r.GnewDir, "tracklist")); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write tracklist: rename: %w", err)
	}
	return nil
}

// TrackedSet returns the tracklist as a membership set.
func (r *Repo) TrackedSet() (map[string]bool, error) {
	paths, err := r.ReadTracklist()
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return set, nil
}

// Add inserts paths into the tracklist. A file argument inserts its
// repo-relative path; a directory argument inserts every regular file
// below it, depth-first. The .gnew directory is always excluded.
// An argument that names nothing yields ErrFileNotFound; re-adding a
// tracked path is a no-op.
func (r *Repo) Add(args []string) error {
	tracklist, err := r.ReadTracklist()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	tracked := make(map[string]bool, len(tracklist))
	for _, p := range tracklist {
		tracked[p] = true
	}

	for _, arg := range args {
		rel, err := r.repoRelPath(arg)
		if err != nil {
			return fmt.Errorf("add %q: %w", arg, err)
		}

		abs := filepath.Join(r.RootDir, filepath.FromSlash(rel))
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("add %q: %w", arg, ErrFileNotFound)
		}

		var found []string
		if info.IsDir() {
			found, err = r.walkFiles(rel)
			if err != nil {
				return fmt.Errorf("add %q: %w", arg, err)
			}
			if len(found) == 0 {
				return fmt.Errorf("add %q: %w", arg, ErrFileNotFound)
			}
		} else if info.Mode().IsRegular() {
			if rel == GnewDirName || strings.HasPrefix(rel, GnewDirName+"/") {
				return fmt.Errorf("add %q: %w", arg, ErrFileNotFound)
			}
			found = []string{rel}
		} else {
			return fmt.Errorf("add %q: %w", arg, ErrFileNotFound)
		}

		for _, p := range found {
			if !tracked[p] {
				tracked[p] = true
				tracklist = append(tracklist, p)
			}
		}
	}

	return r.WriteTracklist(tracklist)
}

// Remove deletes paths from the tracklist. The file need not exist on
// disk. A directory argument removes every tracked path beneath it.
// A path matching nothing in the tracklist yields ErrFileNotFound.
func (r *Repo) Remove(args []string) error {
	tracklist, err := r.ReadTracklist()
	if err != nil {
		return fmt.Errorf("remove: %w", err)
	}

	for _, arg := range args {
		rel, err := r.repoRelPath(arg)
		if err != nil {
			return fmt.Errorf("remove %q: %w", arg, err)
		}

		kept := tracklist[:0:0]
		removed := false
		for _, p := range tracklist {
			if p == rel || strings.HasPrefix(p, rel+"/") {
				removed = true
				continue
			}
			kept = append(kept, p)
		}
		if !removed {
			return fmt.Errorf("remove %q: %w", arg, ErrFileNotFound)
		}
		tracklist = kept
	}

	return r.WriteTracklist(tracklist)
}

// repoRelPath converts a path (absolute, or relative to CWD) into a
// slash-separated path relative to the repository root. A relative
// path that does not resolve inside the repo is taken as already
// repo-relative.
func (r *Repo) repoRelPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		rel, err := filepath.Rel(r.RootDir, p)
		if err != nil || strings.HasPrefix(rel, "..") {
			return "", fmt.Errorf("path %q is outside the repository", p)
		}
		return filepath.ToSlash(rel), nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return filepath.ToSlash(filepath.Clean(p)), nil
	}

	abs := filepath.Join(cwd, p)
	rel, err := filepath.Rel(r.RootDir, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(filepath.Clean(p)), nil
	}
	return filepath.ToSlash(rel), nil
}
