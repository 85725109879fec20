package cutty

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrEmptyComponent is returned for a path component that is empty.
	ErrEmptyComponent = errors.New("empty path component")
	// ErrSeparatorInComponent is returned for a path component containing a
	// path separator.
	ErrSeparatorInComponent = errors.New("path separator in path component")
	// ErrReservedComponent is returned for the components "." and "..".
	ErrReservedComponent = errors.New("reserved path component")
)

// InvalidComponentError describes a component rejected by NewPurePath.
type InvalidComponentError struct {
	Err       error
	Component string
}

func (e *InvalidComponentError) Error() string {
	return fmt.Sprintf("invalid path component %q: %s", e.Component, e.Err)
}

func (e *InvalidComponentError) Unwrap() error {
	return e.Err
}

// PurePath is an immutable sequence of path components, not bound to any
// filesystem. The zero value is the root path.
type PurePath struct {
	parts []string
}

// NewPurePath returns a path made of the given components. Components are
// validated, not normalized: empty components, components containing a
// separator, and "." or ".." are rejected with an *InvalidComponentError.
func NewPurePath(parts ...string) (PurePath, error) {
	for _, part := range parts {
		if err := validComponent(part); err != nil {
			return PurePath{}, err
		}
	}

	return PurePath{parts: slices.Clone(parts)}, nil
}

// ParsePurePath parses a slash-separated relative path. The empty string and
// "." denote the root.
func ParsePurePath(s string) (PurePath, error) {
	if s == "" || s == "." {
		return PurePath{}, nil
	}

	return NewPurePath(strings.Split(s, "/")...)
}

func validComponent(part string) error {
	switch {
	case part == "":
		return &InvalidComponentError{Component: part, Err: ErrEmptyComponent}
	case part == "." || part == "..":
		return &InvalidComponentError{Component: part, Err: ErrReservedComponent}
	case strings.ContainsAny(part, `/\`):
		return &InvalidComponentError{Component: part, Err: ErrSeparatorInComponent}
	}

	return nil
}

// Parts returns a copy of the path's components.
func (p PurePath) Parts() []string {
	return slices.Clone(p.parts)
}

// Len returns the number of components.
func (p PurePath) Len() int {
	return len(p.parts)
}

// IsRoot reports whether p has no components.
func (p PurePath) IsRoot() bool {
	return len(p.parts) == 0
}

// Join returns a new path with the given components appended.
func (p PurePath) Join(parts ...string) (PurePath, error) {
	for _, part := range parts {
		if err := validComponent(part); err != nil {
			return PurePath{}, err
		}
	}

	return PurePath{parts: concat(p.parts, parts)}, nil
}

// JoinPath appends the components of q to p.
func (p PurePath) JoinPath(q PurePath) PurePath {
	return PurePath{parts: concat(p.parts, q.parts)}
}

func concat(a, b []string) []string {
	parts := make([]string, 0, len(a)+len(b))
	parts = append(parts, a...)

	return append(parts, b...)
}

// Parent returns the path without its last component. The parent of the root
// is the root.
func (p PurePath) Parent() PurePath {
	if p.IsRoot() {
		return p
	}

	return PurePath{parts: p.parts[:len(p.parts)-1:len(p.parts)-1]}
}

// Name returns the final component, or "" for the root.
func (p PurePath) Name() string {
	if p.IsRoot() {
		return ""
	}

	return p.parts[len(p.parts)-1]
}

// Suffix returns the extension of the final component, including the dot.
func (p PurePath) Suffix() string {
	name := p.Name()

	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return ""
	}

	return name[i:]
}

// Stem returns the final component without its suffix.
func (p PurePath) Stem() string {
	return strings.TrimSuffix(p.Name(), p.Suffix())
}

// String returns the slash-separated form of p, "." for the root.
func (p PurePath) String() string {
	if p.IsRoot() {
		return "."
	}

	return strings.Join(p.parts, "/")
}

// Equal reports whether p and q have the same components.
func (p PurePath) Equal(q PurePath) bool {
	return slices.Equal(p.parts, q.parts)
}

// Compare orders paths component by component. A path sorts before any path
// it is a prefix of.
func (p PurePath) Compare(q PurePath) int {
	return slices.Compare(p.parts, q.parts)
}

// HasPrefix reports whether q is p or an ancestor of p.
func (p PurePath) HasPrefix(q PurePath) bool {
	return len(q.parts) <= len(p.parts) && slices.Equal(p.parts[:len(q.parts)], q.parts)
}
