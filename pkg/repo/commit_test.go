package repo

import (
	"errors"
	"testing"

	"github.com/gnewscm/gnew/pkg/object"
)

func TestCommitWritesExactlyThreeObjects(t *testing.T) {
	r := initTestRepo(t)
	h := addAndCommit(t, r, "foo", []byte("foo\n"), "add foo")

	hashes, err := r.Store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(hashes) != 3 {
		t.Errorf("object count after first commit: got %d, want 3 (blob, tree, commit)", len(hashes))
	}

	branchHash, err := r.BranchHash(DefaultBranch)
	if err != nil {
		t.Fatalf("BranchHash: %v", err)
	}
	if string(branchHash) != h {
		t.Errorf("heads/main: got %s, want %s", branchHash, h)
	}
}

func TestCommitParentChain(t *testing.T) {
	r := initTestRepo(t)
	first := addAndCommit(t, r, "foo", []byte("v1\n"), "first")
	second := addAndCommit(t, r, "foo", []byte("v2\n"), "second")

	c, err := r.Store.ReadCommit(object.Hash(second))
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if len(c.Parents) != 1 || string(c.Parents[0]) != first {
		t.Errorf("second commit parents: got %v, want [%s]", c.Parents, first)
	}

	root, err := r.Store.ReadCommit(object.Hash(first))
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if len(root.Parents) != 0 {
		t.Errorf("root commit has parents: %v", root.Parents)
	}
}

func TestCommitRejectsEmptyDelta(t *testing.T) {
	r := initTestRepo(t)
	addAndCommit(t, r, "foo", []byte("foo\n"), "add foo")

	_, err := r.Commit("nothing changed", "test-author")
	if !errors.Is(err, ErrNothingToCommit) {
		t.Errorf("empty-delta commit: got %v, want ErrNothingToCommit", err)
	}
}

func TestCommitRoundTripsTrackedContent(t *testing.T) {
	r := initTestRepo(t)
	h := addAndCommit(t, r, "dir/nested.txt", []byte("nested content\n"), "nested")

	c, err := r.Store.ReadCommit(object.Hash(h))
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	files, err := r.FlattenTree(c.TreeHash)
	if err != nil {
		t.Fatalf("FlattenTree: %v", err)
	}
	if len(files) != 1 || files[0].Path != "dir/nested.txt" {
		t.Fatalf("tree files: %+v", files)
	}
	blob, err := r.Store.ReadBlob(files[0].Hash)
	if err != nil {
		t.Fatalf("ReadBlob: %v", err)
	}
	if string(blob.Data) != "nested content\n" {
		t.Errorf("blob content: got %q", blob.Data)
	}
}

func TestLogFollowsFirstParent(t *testing.T) {
	r := initTestRepo(t)
	h1 := addAndCommit(t, r, "f", []byte("1\n"), "one")
	h2 := addAndCommit(t, r, "f", []byte("2\n"), "two")
	h3 := addAndCommit(t, r, "f", []byte("3\n"), "three")

	entries, err := r.Log(0)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("log length: got %d, want 3", len(entries))
	}
	want := []string{h3, h2, h1}
	for i, e := range entries {
		if string(e.Hash) != want[i] {
			t.Errorf("log[%d]: got %s, want %s", i, e.Hash, want[i])
		}
	}

	limited, err := r.Log(2)
	if err != nil {
		t.Fatalf("Log(2): %v", err)
	}
	if len(limited) != 2 || string(limited[0].Hash) != h3 {
		t.Errorf("limited log: %+v", limited)
	}
}

func TestLogOnUnbornBranchIsEmpty(t *testing.T) {
	r := initTestRepo(t)
	entries, err := r.Log(0)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("unborn branch log: got %d entries", len(entries))
	}
}

func TestWriteTreeSkipsMissingTrackedFiles(t *testing.T) {
	r := initTestRepo(t)
	writeWorkFile(t, r, "a.txt", []byte("a\n"))
	writeWorkFile(t, r, "b.txt", []byte("b\n"))
	if err := r.Add([]string{"a.txt", "b.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := removeWorkFile(r, "b.txt"); err != nil {
		t.Fatalf("rm: %v", err)
	}

	root, err := r.WriteTree()
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	files, err := r.FlattenTree(root)
	if err != nil {
		t.Fatalf("FlattenTree: %v", err)
	}
	if len(files) != 1 || files[0].Path != "a.txt" {
		t.Errorf("tree files: %+v", files)
	}
}
