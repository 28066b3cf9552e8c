package object

import (
	"fmt"
	"sort"
	"strings"
)

// ReachableSet returns all object hashes reachable from roots by
// following commit → tree → blob references. Roots missing from the
// store are ignored, which lets callers pass ref values that point at
// objects a peer has not transferred yet.
func (s *Store) ReachableSet(roots []Hash) (map[Hash]struct{}, error) {
	roots = uniqueHashes(roots)
	out := make(map[Hash]struct{}, len(roots))
	if len(roots) == 0 {
		return out, nil
	}

	stack := make([]Hash, 0, len(roots))
	stack = append(stack, roots...)
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if h == "" {
			continue
		}
		if _, ok := out[h]; ok {
			continue
		}
		if !s.Has(h) {
			continue
		}
		out[h] = struct{}{}

		kind, data, err := s.Read(h)
		if err != nil {
			return nil, fmt.Errorf("reachable set read %s: %w", h, err)
		}
		refs, err := referencedHashes(kind, data)
		if err != nil {
			return nil, fmt.Errorf("reachable set parse %s (%s): %w", h, kind, err)
		}
		stack = append(stack, refs...)
	}

	return out, nil
}

func referencedHashes(kind Kind, data []byte) ([]Hash, error) {
	switch kind {
	case KindBlob:
		return nil, nil
	case KindCommit:
		commit, err := UnmarshalCommit(data)
		if err != nil {
			return nil, err
		}
		refs := make([]Hash, 0, 1+len(commit.Parents))
		refs = append(refs, commit.TreeHash)
		refs = append(refs, commit.Parents...)
		return refs, nil
	case KindTree:
		tree, err := UnmarshalTree(data)
		if err != nil {
			return nil, err
		}
		refs := make([]Hash, 0, len(tree.Entries))
		for _, e := range tree.Entries {
			refs = append(refs, e.Hash)
		}
		return refs, nil
	default:
		return nil, fmt.Errorf("unsupported object kind %q", kind)
	}
}

func uniqueHashes(in []Hash) []Hash {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[Hash]struct{}, len(in))
	out := make([]Hash, 0, len(in))
	for _, h := range in {
		h = Hash(strings.TrimSpace(string(h)))
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
