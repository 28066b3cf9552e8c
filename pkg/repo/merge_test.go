package repo

import (
	"errors"
	"strings"
	"testing"

	"github.com/gnewscm/gnew/pkg/object"
)

func TestMergeSelfFails(t *testing.T) {
	r := initTestRepo(t)
	addAndCommit(t, r, "f", []byte("x\n"), "x")

	_, err := r.Merge(DefaultBranch)
	if !errors.Is(err, ErrNothingToMerge) {
		t.Errorf("merge with self: got %v, want ErrNothingToMerge", err)
	}
}

func TestMergeAncestorFails(t *testing.T) {
	r := initTestRepo(t)
	first := addAndCommit(t, r, "f", []byte("1\n"), "one")
	addAndCommit(t, r, "f", []byte("2\n"), "two")

	_, err := r.Merge(first)
	if !errors.Is(err, ErrNothingToMerge) {
		t.Errorf("merge with ancestor: got %v, want ErrNothingToMerge", err)
	}
}

func TestMergeFastForward(t *testing.T) {
	r := initTestRepo(t)
	addAndCommit(t, r, "f.txt", []byte("base\n"), "base")

	if err := r.CreateBranch("ahead"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	tip := addAndCommit(t, r, "f.txt", []byte("advanced\n"), "advance")

	if err := r.Checkout(DefaultBranch, false); err != nil {
		t.Fatalf("Checkout(main): %v", err)
	}

	before, err := r.Store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	result, err := r.Merge("ahead")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if !result.FastForward {
		t.Fatal("expected a fast-forward merge")
	}

	branchHash, err := r.BranchHash(DefaultBranch)
	if err != nil {
		t.Fatalf("BranchHash: %v", err)
	}
	if string(branchHash) != tip {
		t.Errorf("main after fast-forward: got %s, want %s", branchHash, tip)
	}
	if got := readWorkFile(t, r, "f.txt"); got != "advanced\n" {
		t.Errorf("working tree after fast-forward: %q", got)
	}

	// A fast-forward creates no new objects.
	after, err := r.Store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(after) != len(before) {
		t.Errorf("fast-forward created objects: %d -> %d", len(before), len(after))
	}
}

func TestMergeNonConflicting(t *testing.T) {
	r := initTestRepo(t)
	addAndCommit(t, r, "foo", []byte("init\n"), "init")

	if err := r.CreateBranch("branch1"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	addAndCommit(t, r, "foo", []byte("change on branch1\ninit\n"), "top edit")

	if err := r.Checkout(DefaultBranch, false); err != nil {
		t.Fatalf("Checkout(main): %v", err)
	}
	addAndCommit(t, r, "foo", []byte("init\nchange on main\n"), "bottom edit")

	result, err := r.Merge("branch1")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if result.FastForward || len(result.Conflicts) != 0 {
		t.Fatalf("unexpected merge result: %+v", result)
	}

	want := "change on branch1\ninit\nchange on main\n"
	if got := readWorkFile(t, r, "foo"); got != want {
		t.Errorf("merged content:\n  got:  %q\n  want: %q", got, want)
	}

	// No commit was created; MERGE_HEAD carries the second parent.
	mh, err := r.MergeHead()
	if err != nil {
		t.Fatalf("MergeHead: %v", err)
	}
	branch1, err := r.BranchHash("branch1")
	if err != nil {
		t.Fatalf("BranchHash: %v", err)
	}
	if mh != branch1 {
		t.Errorf("MERGE_HEAD: got %s, want %s", mh, branch1)
	}
}

func TestMergeCommitRecordsBothParents(t *testing.T) {
	r := initTestRepo(t)
	addAndCommit(t, r, "foo", []byte("init\n"), "init")

	if err := r.CreateBranch("branch1"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	addAndCommit(t, r, "bar", []byte("bar\n"), "add bar")

	if err := r.Checkout(DefaultBranch, false); err != nil {
		t.Fatalf("Checkout(main): %v", err)
	}
	ours := addAndCommit(t, r, "baz", []byte("baz\n"), "add baz")

	if _, err := r.Merge("branch1"); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	theirs, err := r.BranchHash("branch1")
	if err != nil {
		t.Fatalf("BranchHash: %v", err)
	}

	mergeHash, err := r.Commit("merge branch1", "test-author")
	if err != nil {
		t.Fatalf("Commit after merge: %v", err)
	}

	c, err := r.Store.ReadCommit(mergeHash)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if len(c.Parents) != 2 {
		t.Fatalf("merge commit parents: got %v", c.Parents)
	}
	if string(c.Parents[0]) != ours || c.Parents[1] != theirs {
		t.Errorf("parent order: got %v, want [%s %s]", c.Parents, ours, theirs)
	}

	// MERGE_HEAD is consumed by the commit.
	mh, err := r.MergeHead()
	if err != nil {
		t.Fatalf("MergeHead: %v", err)
	}
	if mh != "" {
		t.Errorf("MERGE_HEAD survived the commit: %s", mh)
	}
}

func TestMergeConflict(t *testing.T) {
	r := initTestRepo(t)
	addAndCommit(t, r, "foo", []byte("foo\n"), "init")

	if err := r.CreateBranch("branch1"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	addAndCommit(t, r, "foo", []byte("foo on branch1\n"), "theirs")

	if err := r.Checkout(DefaultBranch, false); err != nil {
		t.Fatalf("Checkout(main): %v", err)
	}
	addAndCommit(t, r, "foo", []byte("foo on main\n"), "ours")

	result, err := r.Merge("branch1")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(result.Conflicts) != 1 || result.Conflicts[0] != "foo" {
		t.Fatalf("conflicts: got %v, want [foo]", result.Conflicts)
	}

	got := readWorkFile(t, r, "foo")
	for _, marker := range []string{"<<<<<<< ours", "||||||| original", "=======", ">>>>>>> theirs"} {
		if !strings.Contains(got, marker) {
			t.Errorf("conflict file missing marker %q:\n%s", marker, got)
		}
	}
	if !strings.Contains(got, "foo on main\n") || !strings.Contains(got, "foo on branch1\n") {
		t.Errorf("conflict file missing side content:\n%s", got)
	}
}

func TestMergeTakesTheirNewFile(t *testing.T) {
	r := initTestRepo(t)
	addAndCommit(t, r, "shared", []byte("s\n"), "init")

	if err := r.CreateBranch("adder"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	addAndCommit(t, r, "new.txt", []byte("from adder\n"), "add new")

	if err := r.Checkout(DefaultBranch, false); err != nil {
		t.Fatalf("Checkout(main): %v", err)
	}
	addAndCommit(t, r, "ours.txt", []byte("ours\n"), "ours")

	result, err := r.Merge("adder")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(result.Conflicts) != 0 {
		t.Fatalf("conflicts: %v", result.Conflicts)
	}

	if got := readWorkFile(t, r, "new.txt"); got != "from adder\n" {
		t.Errorf("their new file: %q", got)
	}
	set, err := r.TrackedSet()
	if err != nil {
		t.Fatalf("TrackedSet: %v", err)
	}
	for _, p := range []string{"shared", "ours.txt", "new.txt"} {
		if !set[p] {
			t.Errorf("tracklist missing %q after merge: %v", p, set)
		}
	}
}

func TestMergeHonorsTheirDeletion(t *testing.T) {
	r := initTestRepo(t)
	addAndCommit(t, r, "doomed.txt", []byte("d\n"), "init")
	addAndCommit(t, r, "keep.txt", []byte("k\n"), "keep")

	if err := r.CreateBranch("deleter"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := r.Remove([]string{"doomed.txt"}); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := removeWorkFile(r, "doomed.txt"); err != nil {
		t.Fatalf("rm: %v", err)
	}
	if _, err := r.Commit("delete doomed", "test-author"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := r.Checkout(DefaultBranch, false); err != nil {
		t.Fatalf("Checkout(main): %v", err)
	}
	addAndCommit(t, r, "other.txt", []byte("o\n"), "unrelated")

	result, err := r.Merge("deleter")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(result.Conflicts) != 0 {
		t.Fatalf("conflicts: %v", result.Conflicts)
	}

	set, err := r.TrackedSet()
	if err != nil {
		t.Fatalf("TrackedSet: %v", err)
	}
	if set["doomed.txt"] {
		t.Error("deleted file still tracked after merge")
	}
	if _, ok := set["keep.txt"]; !ok {
		t.Error("unrelated file lost from tracklist")
	}
}

func TestMergeByCommitHash(t *testing.T) {
	r := initTestRepo(t)
	addAndCommit(t, r, "f", []byte("base\n"), "base")

	if err := r.CreateBranch("side"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	side := addAndCommit(t, r, "side.txt", []byte("s\n"), "side")

	if err := r.Checkout(DefaultBranch, false); err != nil {
		t.Fatalf("Checkout(main): %v", err)
	}
	addAndCommit(t, r, "main.txt", []byte("m\n"), "main work")

	if _, err := r.Merge(side); err != nil {
		t.Fatalf("Merge by hash: %v", err)
	}
	mh, err := r.MergeHead()
	if err != nil {
		t.Fatalf("MergeHead: %v", err)
	}
	if mh != object.Hash(side) {
		t.Errorf("MERGE_HEAD: got %s, want %s", mh, side)
	}
}
