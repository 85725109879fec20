// Package hgfs fetches Mercurial repositories and mounts their working
// copies, by running the hg executable.
//
// A fetch clones the remote repository without a working copy, or pulls into
// an existing clone, and then updates the working copy to the requested
// revision (tip by default). The mounted tree is the working copy on disk,
// including its .hg directory, along with the metadata of the checked out
// changeset.
//
// hg is run with HGPLAIN set, so user configuration doesn't change its
// output.
package hgfs
