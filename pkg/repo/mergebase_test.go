package repo

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/gnewscm/gnew/pkg/object"
)

// buildFork commits a root on main, then diverges: one commit on
// "left" (main) and one on "right". Returns root, left, right hashes.
func buildFork(t *testing.T) (*Repo, object.Hash, object.Hash, object.Hash) {
	t.Helper()
	r := initTestRepo(t)
	root := addAndCommit(t, r, "f.txt", []byte("root\n"), "root")

	if err := r.CreateBranch("right"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	right := addAndCommit(t, r, "r.txt", []byte("right\n"), "right")

	if err := r.Checkout(DefaultBranch, false); err != nil {
		t.Fatalf("Checkout(main): %v", err)
	}
	left := addAndCommit(t, r, "l.txt", []byte("left\n"), "left")

	return r, object.Hash(root), object.Hash(left), object.Hash(right)
}

func TestMergeBaseOfFork(t *testing.T) {
	r, root, left, right := buildFork(t)

	base, err := r.MergeBase(left, right)
	if err != nil {
		t.Fatalf("MergeBase: %v", err)
	}
	if base != root {
		t.Errorf("merge base: got %s, want %s", base, root)
	}
}

func TestMergeBaseIsSymmetric(t *testing.T) {
	r, _, left, right := buildFork(t)

	ab, err := r.MergeBase(left, right)
	if err != nil {
		t.Fatalf("MergeBase(l, r): %v", err)
	}
	ba, err := r.MergeBase(right, left)
	if err != nil {
		t.Fatalf("MergeBase(r, l): %v", err)
	}
	if ab != ba {
		t.Errorf("merge base asymmetric: %s vs %s", ab, ba)
	}
}

func TestMergeBaseOfAncestorIsAncestor(t *testing.T) {
	r := initTestRepo(t)
	first := object.Hash(addAndCommit(t, r, "f", []byte("1\n"), "one"))
	second := object.Hash(addAndCommit(t, r, "f", []byte("2\n"), "two"))

	base, err := r.MergeBase(first, second)
	if err != nil {
		t.Fatalf("MergeBase: %v", err)
	}
	if base != first {
		t.Errorf("merge base of linear history: got %s, want %s", base, first)
	}

	base, err = r.MergeBase(second, second)
	if err != nil {
		t.Fatalf("MergeBase(self): %v", err)
	}
	if base != second {
		t.Errorf("merge base of a commit with itself: got %s", base)
	}
}

func TestMergeBaseDisjointHistories(t *testing.T) {
	r := initTestRepo(t)
	a := object.Hash(addAndCommit(t, r, "a", []byte("a\n"), "a"))

	// A second root with no shared ancestry, written directly.
	treeHash, err := r.Store.WriteTree(&object.TreeObj{})
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	b, err := r.Store.WriteCommit(&object.CommitObj{
		TreeHash: treeHash, Author: "t", Timestamp: 1, Message: "orphan",
	})
	if err != nil {
		t.Fatalf("WriteCommit: %v", err)
	}

	base, err := r.MergeBase(a, b)
	if err != nil {
		t.Fatalf("MergeBase: %v", err)
	}
	if base != "" {
		t.Errorf("disjoint histories produced a base: %s", base)
	}
}

// Property: over random fork trees (every commit has one parent, so
// the lowest common ancestor is unique), MergeBase is symmetric, its
// result is an ancestor of both inputs, and the base of a commit with
// one of its own ancestors is that ancestor.
func TestPropertyMergeBaseSymmetric(t *testing.T) {
	r := initTestRepo(t)
	treeHash, err := r.Store.WriteTree(&object.TreeObj{})
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 12).Draw(t, "commits")

		commits := make([]object.Hash, 0, n)
		parentIdx := make([]int, 0, n)
		for i := 0; i < n; i++ {
			c := &object.CommitObj{
				TreeHash:  treeHash,
				Author:    "prop",
				Timestamp: int64(i),
				Message:   fmt.Sprintf("c%d", i),
			}
			pi := -1
			if i > 0 {
				pi = rapid.IntRange(0, i-1).Draw(t, fmt.Sprintf("parent-%d", i))
				c.Parents = []object.Hash{commits[pi]}
			}
			h, err := r.Store.WriteCommit(c)
			if err != nil {
				t.Fatalf("WriteCommit: %v", err)
			}
			commits = append(commits, h)
			parentIdx = append(parentIdx, pi)
		}

		ai := rapid.IntRange(0, n-1).Draw(t, "a")
		bi := rapid.IntRange(0, n-1).Draw(t, "b")
		a, b := commits[ai], commits[bi]

		ab, err := r.MergeBase(a, b)
		if err != nil {
			t.Fatalf("MergeBase(a, b): %v", err)
		}
		ba, err := r.MergeBase(b, a)
		if err != nil {
			t.Fatalf("MergeBase(b, a): %v", err)
		}
		if ab != ba {
			t.Fatalf("asymmetric base: %s vs %s", ab, ba)
		}

		// Every pair shares at least the root, and the base must sit
		// in both histories.
		if ab == "" {
			t.Fatal("no base found in a single-root tree")
		}
		for _, tip := range []object.Hash{a, b} {
			ok, err := r.IsAncestor(ab, tip)
			if err != nil {
				t.Fatalf("IsAncestor: %v", err)
			}
			if !ok {
				t.Fatalf("base %s is not an ancestor of %s", ab, tip)
			}
		}

		// Walk some steps up from a; the base with that ancestor is
		// the ancestor itself.
		anc := ai
		for steps := rapid.IntRange(0, n).Draw(t, "steps"); steps > 0 && parentIdx[anc] >= 0; steps-- {
			anc = parentIdx[anc]
		}
		base, err := r.MergeBase(a, commits[anc])
		if err != nil {
			t.Fatalf("MergeBase(a, ancestor): %v", err)
		}
		if base != commits[anc] {
			t.Fatalf("base with own ancestor: got %s, want %s", base, commits[anc])
		}
	})
}

func TestIsAncestor(t *testing.T) {
	r, root, left, right := buildFork(t)

	cases := []struct {
		anc, desc object.Hash
		want      bool
	}{
		{root, left, true},
		{root, right, true},
		{left, right, false},
		{right, left, false},
		{left, left, true},
		{left, root, false},
	}
	for _, c := range cases {
		got, err := r.IsAncestor(c.anc, c.desc)
		if err != nil {
			t.Fatalf("IsAncestor(%s, %s): %v", c.anc, c.desc, err)
		}
		if got != c.want {
			t.Errorf("IsAncestor(%s, %s): got %v, want %v", c.anc, c.desc, got, c.want)
		}
	}
}
