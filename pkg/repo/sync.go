package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gnewscm/gnew/pkg/object"
)

// Clone copies a peer repository into dest: all objects, all branch
// refs, HEAD set to the peer's current branch, and the working tree
// materialized at that branch's commit. Fails when dest already
// contains a .gnew directory.
func Clone(src, dest string) (*Repo, error) {
	peer, err := OpenPeer(src)
	if err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}

	if _, err := os.Stat(filepath.Join(dest, GnewDirName)); err == nil {
		return nil, fmt.Errorf("clone into %s: %w", dest, ErrRepositoryExists)
	}

	r, err := Init(dest)
	if err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}

	hashes, err := peer.Store.List()
	if err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}
	for _, h := range hashes {
		if err := peer.Store.CopyTo(r.Store, h); err != nil {
			return nil, fmt.Errorf("clone: %w", err)
		}
	}

	heads, err := peer.Heads()
	if err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}
	for name, h := range heads {
		if err := r.UpdateBranch(name, h); err != nil {
			return nil, fmt.Errorf("clone: %w", err)
		}
	}

	branch, err := peer.CurrentBranch()
	if err != nil {
		branch = DefaultBranch
	}
	if err := r.SetCurrentBranch(branch); err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}

	if head, err := r.HeadHash(); err == nil && head != "" {
		if err := r.materialize(head, true); err != nil {
			return nil, fmt.Errorf("clone: %w", err)
		}
	}

	return r, nil
}

// Pull fetches from a peer repository. For the current branch (or
// every remote branch with all=true) it copies the objects reachable
// from the remote ref, then fast-forwards the local ref when local
// history allows it; otherwise the current branch gets a three-way
// merge (per Merge), and any other branch fails the pull. A branch
// that cannot fast-forward does not stop the remaining branches.
func (r *Repo) Pull(src string, all bool) error {
	if err := r.EnsureClean(); err != nil {
		return fmt.Errorf("pull: %w", err)
	}

	peer, err := OpenPeer(src)
	if err != nil {
		return fmt.Errorf("pull: %w", err)
	}

	current, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("pull: %w", err)
	}

	var branches []string
	if all {
		remoteHeads, err := peer.Heads()
		if err != nil {
			return fmt.Errorf("pull: %w", err)
		}
		for name := range remoteHeads {
			branches = append(branches, name)
		}
		sort.Strings(branches)
	} else {
		branches = []string{current}
	}

	var blocked []string
	for _, branch := range branches {
		remoteHash, err := peer.BranchHash(branch)
		if err != nil {
			return fmt.Errorf("pull: %w", err)
		}

		if err := transferObjects(peer.Store, r.Store, remoteHash); err != nil {
			return fmt.Errorf("pull: %w", err)
		}

		localHash, err := r.BranchHash(branch)
		if err != nil {
			localHash = ""
		}

		if localHash == remoteHash {
			continue
		}

		ff := localHash == ""
		if !ff {
			ff, err = r.IsAncestor(localHash, remoteHash)
			if err != nil {
				return fmt.Errorf("pull: %w", err)
			}
		}

		switch {
		case ff:
			if err := r.UpdateBranch(branch, remoteHash); err != nil {
				return fmt.Errorf("pull: %w", err)
			}
			if branch == current {
				if err := r.materialize(remoteHash, true); err != nil {
					return fmt.Errorf("pull: %w", err)
				}
			}
		case branch == current:
			if _, err := r.Merge(string(remoteHash)); err != nil {
				return fmt.Errorf("pull: %w", err)
			}
		default:
			blocked = append(blocked, branch)
		}
	}

	if len(blocked) > 0 {
		return fmt.Errorf("pull: branches %q cannot fast-forward", blocked)
	}
	return nil
}

// Push sends local history to a peer repository. A branch whose remote
// ref is not an ancestor of the local ref is rejected before any ref
// moves; there is no force push.
func (r *Repo) Push(src string, all bool) error {
	peer, err := OpenPeer(src)
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}

	current, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}

	var branches []string
	if all {
		branches, err = r.BranchNames()
		if err != nil {
			return fmt.Errorf("push: %w", err)
		}
	} else {
		branches = []string{current}
	}

	type update struct {
		branch string
		hash   object.Hash
	}
	var updates []update

	// Validate every ref update before transferring anything.
	for _, branch := range branches {
		localHash, err := r.BranchHash(branch)
		if err != nil {
			return fmt.Errorf("push: %w", err)
		}

		remoteHash, err := peer.BranchHash(branch)
		if err != nil {
			remoteHash = ""
		}
		if remoteHash == localHash {
			continue
		}
		if remoteHash != "" {
			// The remote head must sit in local history; anything else
			// means the remote has commits we have not pulled.
			ok, err := r.IsAncestor(remoteHash, localHash)
			if err != nil {
				return fmt.Errorf("push: %w", err)
			}
			if !ok {
				return fmt.Errorf("push branch %q: %w", branch, ErrPushRejected)
			}
		}
		updates = append(updates, update{branch: branch, hash: localHash})
	}

	remoteCurrent, err := peer.CurrentBranch()
	if err != nil {
		remoteCurrent = ""
	}

	for _, u := range updates {
		if err := transferObjects(r.Store, peer.Store, u.hash); err != nil {
			return fmt.Errorf("push: %w", err)
		}
		if err := peer.UpdateBranch(u.branch, u.hash); err != nil {
			return fmt.Errorf("push: %w", err)
		}
		if u.branch == remoteCurrent {
			if err := peer.materialize(u.hash, true); err != nil {
				return fmt.Errorf("push: %w", err)
			}
		}
	}

	return nil
}

// transferObjects copies every object reachable from root in src that
// dst does not already hold. Objects are plain container-file copies.
func transferObjects(src, dst *object.Store, root object.Hash) error {
	reachable, err := src.ReachableSet([]object.Hash{root})
	if err != nil {
		return err
	}

	hashes := make([]object.Hash, 0, len(reachable))
	for h := range reachable {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })

	for _, h := range hashes {
		if dst.Has(h) {
			continue
		}
		if err := src.CopyTo(dst, h); err != nil {
			return err
		}
	}
	return nil
}
