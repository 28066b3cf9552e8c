package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gnewscm/gnew/pkg/object"
)

// DefaultBranch is the branch created by Init.
const DefaultBranch = "main"

// Init creates a new gnew repository at path: the .gnew/ directory
// with HEAD naming an unborn "main" branch, an empty heads/ and
// objects/ tree, and an empty tracklist. Returns an error if .gnew/
// already exists.
func Init(path string) (*Repo, error) {
	gnewDir := filepath.Join(path, GnewDirName)

	if _, err := os.Stat(gnewDir); err == nil {
		return nil, fmt.Errorf("init at %s: %w", path, ErrRepositoryExists)
	}

	dirs := []string{
		filepath.Join(gnewDir, "objects"),
		filepath.Join(gnewDir, "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	if err := os.WriteFile(filepath.Join(gnewDir, "HEAD"), []byte(DefaultBranch+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}
	if err := os.WriteFile(filepath.Join(gnewDir, "tracklist"), nil, 0o644); err != nil {
		return nil, fmt.Errorf("init: write tracklist: %w", err)
	}

	return &Repo{
		RootDir: path,
		GnewDir: gnewDir,
		Store:   object.NewStore(gnewDir),
	}, nil
}

// Open searches upward from path for a .gnew/ directory and opens the
// repository.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		gnewDir := filepath.Join(cur, GnewDirName)
		info, err := os.Stat(gnewDir)
		if err == nil && info.IsDir() {
			return &Repo{
				RootDir: cur,
				GnewDir: gnewDir,
				Store:   object.NewStore(gnewDir),
			}, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open %s: %w", path, ErrNoRepository)
		}
		cur = parent
	}
}

// OpenPeer opens the repository rooted exactly at path, without the
// upward walk. Used for filesystem peers in clone/pull/push.
func OpenPeer(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open peer: abs path: %w", err)
	}
	gnewDir := filepath.Join(abs, GnewDirName)
	info, err := os.Stat(gnewDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("open peer %s: %w", path, ErrNoRepository)
	}
	return &Repo{
		RootDir: abs,
		GnewDir: gnewDir,
		Store:   object.NewStore(gnewDir),
	}, nil
}
