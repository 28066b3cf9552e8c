package repo

import "errors"

// Sentinel errors behind the stable "fatal:" diagnostics. The CLI
// prints whatever message reaches the top level, so the text here is
// the user-visible wording.
var (
	ErrFileNotFound       = errors.New("file not found")
	ErrReferenceNotFound  = errors.New("reference not found")
	ErrBranchExists       = errors.New("branch already exists")
	ErrRepositoryExists   = errors.New("repository already exists")
	ErrNoRepository       = errors.New("not a gnew repository")
	ErrNothingToMerge     = errors.New("nothing to merge")
	ErrNothingToCommit    = errors.New("nothing to commit")
	ErrPushRejected       = errors.New("push rejected")
	ErrUntrackedOverwrite = errors.New("untracked files would be overwritten")
	ErrDirtyWorktree      = errors.New("commit or remove changes first")
)
