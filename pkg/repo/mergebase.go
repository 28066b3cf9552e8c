package repo

import (
	"fmt"

	"github.com/gnewscm/gnew/pkg/object"
)

// MergeBase finds a lowest common ancestor of two commits by a
// synchronized breadth-first search: both frontiers advance one commit
// per step, each visited hash is marked with the side that reached it,
// and the first hash seen from both sides wins. When several bases
// exist this picks the one discovered earliest; with no shared history
// it returns "".
func (r *Repo) MergeBase(a, b object.Hash) (object.Hash, error) {
	if a == "" || b == "" {
		return "", nil
	}
	if a == b {
		return a, nil
	}

	visitedA := map[object.Hash]bool{a: true}
	visitedB := map[object.Hash]bool{b: true}
	queueA := []object.Hash{a}
	queueB := []object.Hash{b}

	for len(queueA) > 0 || len(queueB) > 0 {
		if len(queueA) > 0 {
			h := queueA[0]
			queueA = queueA[1:]
			if visitedB[h] {
				return h, nil
			}
			parents, err := r.commitParents(h)
			if err != nil {
				return "", err
			}
			for _, p := range parents {
				if !visitedA[p] {
					visitedA[p] = true
					queueA = append(queueA, p)
				}
			}
		}

		if len(queueB) > 0 {
			h := queueB[0]
			queueB = queueB[1:]
			if visitedA[h] {
				return h, nil
			}
			parents, err := r.commitParents(h)
			if err != nil {
				return "", err
			}
			for _, p := range parents {
				if !visitedB[p] {
					visitedB[p] = true
					queueB = append(queueB, p)
				}
			}
		}
	}

	return "", nil
}

// IsAncestor reports whether ancestor is reachable from descendant by
// following parent links (a commit is its own ancestor).
func (r *Repo) IsAncestor(ancestor, descendant object.Hash) (bool, error) {
	if ancestor == "" || descendant == "" {
		return false, nil
	}
	if ancestor == descendant {
		return true, nil
	}

	visited := map[object.Hash]bool{descendant: true}
	queue := []object.Hash{descendant}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if h == ancestor {
			return true, nil
		}
		parents, err := r.commitParents(h)
		if err != nil {
			return false, err
		}
		for _, p := range parents {
			if !visited[p] {
				visited[p] = true
				queue = append(queue, p)
			}
		}
	}
	return false, nil
}

func (r *Repo) commitParents(h object.Hash) ([]object.Hash, error) {
	c, err := r.Store.ReadCommit(h)
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", h, err)
	}
	return c.Parents, nil
}
