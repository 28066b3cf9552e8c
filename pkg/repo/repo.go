// Package repo implements the gnew repository: the working tree, the
// tracklist, references, and the operations that tie them to the
// object store.
package repo

import (
	"github.com/gnewscm/gnew/pkg/object"
)

// GnewDirName is the repository directory inside the working tree.
const GnewDirName = ".gnew"

// Repo represents an opened gnew repository.
type Repo struct {
	RootDir string        // working directory root
	GnewDir string        // .gnew/ directory
	Store   *object.Store // content-addressed object store
}
