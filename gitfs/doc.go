// Package gitfs mounts the tree of a git commit as a read-only
// cutty.Filesystem, and maintains local mirrors of remote repositories.
//
// The filesystem reads the object database directly. No work tree is checked
// out, so for local repositories, files not committed (i.e. "dirty" or
// untracked files) are not visible, and mounting never modifies the
// repository.
//
// This filesystem's behaviour complies with fstest.TestFS, through
// cutty.DirFS.
//
// # Mounting
//
// Open opens a repository (bare, or a work tree) and resolves a revision to a
// commit. Revisions are anything go-git can resolve: branch and tag names,
// full or abbreviated hashes, and expressions like 'HEAD~1'. An empty revision
// means HEAD. Mount additionally discovers the repository containing a
// directory, and roots the tree at that directory.
//
// Symbolic links committed to the repository are followed as long as they
// stay within the tree.
//
// # Fetching
//
// A Fetcher keeps a bare mirror of a remote repository in a local directory:
// the first fetch clones, later fetches update every branch and tag, pruning
// refs deleted upstream. Valid schemes are 'git', 'file', 'http', 'https',
// 'ssh', and the same prefixed with 'git+' (e.g. 'git+ssh://example.com').
//
// Scheme may be one of:
//
// - 'git': use the classic Git protocol, as served by 'git daemon'
//
// - 'file': use the local filesystem (repo can be bare or not)
//
// - 'http'/'https': use the Smart HTTP protocol
//
// - 'ssh': use the SSH protocol
//
// See https://git-scm.com/book/en/v2/Git-on-the-Server-The-Protocols for more
// on these protocols.
//
// The userinfo subcomponent of the URL (i.e. 'user:password@...') can be used
// for authenticated schemes like 'https' and 'ssh'. The fragment is ignored.
//
// # Authentication
//
// The authentication mechanisms used by the Fetcher are dependent on the URL
// scheme. A number of Authenticators are provided in this package. See the
// documentation for the Authenticator type for more information.
//
// # Environment Variables
//
// The Authenticators in this package optionally support the use of environment
// variables to provide credentials. These are:
//
// - GIT_HTTP_PASSWORD: the password to use for HTTP Basic Authentication
//
// - GIT_HTTP_PASSWORD_FILE: the path to a file containing the password to use
// for HTTP Basic Authentication
//
// - GIT_HTTP_TOKEN: the token to use for HTTP token authentication
//
// - GIT_HTTP_TOKEN_FILE: the path to a file containing the token to use for
// HTTP token authentication
//
// - GIT_SSH_KEY: the (optionally Base64-encoded) PEM-encoded private key to use
// for SSH public key authentication
//
// - GIT_SSH_KEY_FILE: the path to a file containing the PEM-encoded private key
// to use for SSH public key authentication
package gitfs
