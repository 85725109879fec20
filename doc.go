// Package cutty contains the filesystem abstraction used to navigate project
// templates: immutable paths (PurePath), paths bound to a backend (Path), and
// the read-only Filesystem capability interface implemented by the disk,
// in-memory, zip and git backends in this module's sub-packages.
//
// Templates are located and mounted by the provider package. See
// autoprovider for the default set of providers.
package cutty
