package object

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zlib"
)

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123... Each file holds the framed
// object ("kind len\0payload") compressed with zlib.
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given directory (the .gnew
// directory). The objects/ subdirectory is created lazily on first
// write.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// ObjectPath returns the filesystem path for a given hash.
func (s *Store) ObjectPath(h Hash) string {
	return filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if !ValidHash(string(h)) {
		return false
	}
	_, err := os.Stat(s.ObjectPath(h))
	return err == nil
}

// Write stores an object and returns its content hash. Writing an
// already-present object is a no-op. Writes are atomic: the compressed
// frame goes to a temp file which is then renamed into place.
func (s *Store) Write(kind Kind, payload []byte) (Hash, error) {
	h := HashObject(kind, payload)

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}

	dir := filepath.Join(s.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	zw := zlib.NewWriter(tmp)
	if _, err := zw.Write(Frame(kind, payload)); err != nil {
		zw.Close()
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write: %w", err)
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write compress: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write close: %w", err)
	}

	if err := os.Rename(tmpName, s.ObjectPath(h)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write rename: %w", err)
	}

	return h, nil
}

// Read retrieves an object by hash, returning its kind and payload.
// The framed bytes are re-hashed on the way in; a mismatch against the
// requested hash reports the object as corrupt.
func (s *Store) Read(h Hash) (Kind, []byte, error) {
	if !ValidHash(string(h)) {
		return "", nil, fmt.Errorf("object read: invalid hash %q", h)
	}
	f, err := os.Open(s.ObjectPath(h))
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return "", nil, fmt.Errorf("corrupt object %s: %w", h, err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return "", nil, fmt.Errorf("corrupt object %s: %w", h, err)
	}

	kind, payload, err := parseFrame(raw)
	if err != nil {
		return "", nil, fmt.Errorf("corrupt object %s: %w", h, err)
	}
	if got := HashObject(kind, payload); got != h {
		return "", nil, fmt.Errorf("corrupt object %s: content hashes to %s", h, got)
	}
	return kind, payload, nil
}

// parseFrame splits "kind len\0payload" and checks the declared length.
func parseFrame(raw []byte) (Kind, []byte, error) {
	nul := bytes.IndexByte(raw, 0)
	if nul < 0 {
		return "", nil, fmt.Errorf("invalid frame (no NUL)")
	}
	header := string(raw[:nul])
	payload := raw[nul+1:]

	kindStr, lenStr, ok := strings.Cut(header, " ")
	if !ok {
		return "", nil, fmt.Errorf("invalid frame header %q", header)
	}
	kind := Kind(kindStr)
	switch kind {
	case KindBlob, KindTree, KindCommit:
	default:
		return "", nil, fmt.Errorf("unknown object kind %q", kindStr)
	}
	length, err := strconv.Atoi(lenStr)
	if err != nil {
		return "", nil, fmt.Errorf("invalid frame length %q", lenStr)
	}
	if len(payload) != length {
		return "", nil, fmt.Errorf("frame length mismatch (header=%d, actual=%d)", length, len(payload))
	}
	return kind, payload, nil
}

// List returns the hashes of every object present in the store.
func (s *Store) List() ([]Hash, error) {
	objectsDir := filepath.Join(s.root, "objects")
	prefixes, err := os.ReadDir(objectsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list objects: %w", err)
	}

	var out []Hash
	for _, p := range prefixes {
		if !p.IsDir() || len(p.Name()) != 2 {
			continue
		}
		files, err := os.ReadDir(filepath.Join(objectsDir, p.Name()))
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			h := Hash(p.Name() + f.Name())
			if ValidHash(string(h)) {
				out = append(out, h)
			}
		}
	}
	return out, nil
}

// CopyTo copies the container file for h into dst unchanged. Copying
// an object dst already has is a no-op; the write lands via temp +
// rename like any other store write.
func (s *Store) CopyTo(dst *Store, h Hash) error {
	if dst.Has(h) {
		return nil
	}

	src, err := os.Open(s.ObjectPath(h))
	if err != nil {
		return fmt.Errorf("copy object %s: %w", h, err)
	}
	defer src.Close()

	dir := filepath.Join(dst.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("copy object mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("copy object tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("copy object %s: %w", h, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("copy object close: %w", err)
	}
	if err := os.Rename(tmpName, dst.ObjectPath(h)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("copy object rename: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteBlob serializes and stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Write(KindBlob, MarshalBlob(b))
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	kind, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if kind != KindBlob {
		return nil, fmt.Errorf("object %s: kind mismatch: got %q, want %q", h, kind, KindBlob)
	}
	return UnmarshalBlob(data)
}

// WriteTree serializes and stores a TreeObj.
func (s *Store) WriteTree(tr *TreeObj) (Hash, error) {
	data, err := MarshalTree(tr)
	if err != nil {
		return "", err
	}
	return s.Write(KindTree, data)
}

// ReadTree reads and deserializes a TreeObj.
func (s *Store) ReadTree(h Hash) (*TreeObj, error) {
	kind, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if kind != KindTree {
		return nil, fmt.Errorf("object %s: kind mismatch: got %q, want %q", h, kind, KindTree)
	}
	return UnmarshalTree(data)
}

// WriteCommit serializes and stores a CommitObj.
func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	data, err := MarshalCommit(c)
	if err != nil {
		return "", err
	}
	return s.Write(KindCommit, data)
}

// ReadCommit reads and deserializes a CommitObj.
func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	kind, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if kind != KindCommit {
		return nil, fmt.Errorf("object %s: kind mismatch: got %q, want %q", h, kind, KindCommit)
	}
	return UnmarshalCommit(data)
}
