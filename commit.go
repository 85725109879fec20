package cutty

import "time"

// Commit describes the revision a version-controlled tree was mounted at.
type Commit struct {
	Date time.Time

	// ID is the full commit identifier (a SHA-1 for git, the node ID for
	// Mercurial).
	ID string

	// Revision is the revision the commit was resolved from, such as a
	// branch or tag name. When no revision was requested, it names the
	// current branch where one exists, and is otherwise the ID.
	Revision string

	Message string
	Author  Signature
}

// Signature identifies the author of a commit.
type Signature struct {
	Name  string
	Email string
}

// ShortID returns the first 7 characters of the commit ID.
func (c *Commit) ShortID() string {
	if len(c.ID) <= 7 {
		return c.ID
	}

	return c.ID[:7]
}
