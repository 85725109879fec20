package internal

import (
	"io/fs"
	"time"
)

// A few convenience functions and types intended for use only inside this
// module for now.

// FileInfo creates a static fs.FileInfo with the given properties.
// The result is also a fs.DirEntry and can be safely cast.
func FileInfo(name string, size int64, mode fs.FileMode, modTime time.Time) fs.FileInfo {
	return &staticFileInfo{
		name:    name,
		size:    size,
		mode:    mode,
		modTime: modTime,
	}
}

// DirInfo creates a fs.FileInfo for a read-only directory with the given
// name. Use FileInfo to set other values.
func DirInfo(name string, modTime time.Time) fs.FileInfo {
	return FileInfo(name, 0, fs.ModeDir|0o555, modTime)
}

type staticFileInfo struct {
	modTime time.Time
	name    string
	size    int64
	mode    fs.FileMode
}

var (
	_ fs.FileInfo = (*staticFileInfo)(nil)
	_ fs.DirEntry = (*staticFileInfo)(nil)
)

func (fi staticFileInfo) IsDir() bool                 { return fi.Mode().IsDir() }
func (fi staticFileInfo) Mode() fs.FileMode           { return fi.mode }
func (fi *staticFileInfo) ModTime() time.Time         { return fi.modTime }
func (fi staticFileInfo) Name() string                { return fi.name }
func (fi staticFileInfo) Size() int64                 { return fi.size }
func (fi staticFileInfo) Sys() interface{}            { return nil }
func (fi *staticFileInfo) Info() (fs.FileInfo, error) { return fi, nil }
func (fi staticFileInfo) Type() fs.FileMode           { return fi.Mode().Type() }

// RenamedFileInfo returns fi reporting the given name. Backends describe the
// root of a tree with whatever name the medium uses (a directory's base name,
// "/"); views rooted elsewhere need the name relative to their own root.
func RenamedFileInfo(fi fs.FileInfo, name string) fs.FileInfo {
	if fi.Name() == name {
		return fi
	}

	return &renamedFileInfo{FileInfo: fi, name: name}
}

type renamedFileInfo struct {
	fs.FileInfo
	name string
}

func (fi *renamedFileInfo) Name() string { return fi.name }

// FileInfoDirEntry adapts a fs.FileInfo into a fs.DirEntry. If it doesn't
// already implement fs.DirEntry, it will be wrapped to always return the
// same fs.FileInfo.
func FileInfoDirEntry(fi fs.FileInfo) fs.DirEntry {
	de, ok := fi.(fs.DirEntry)
	if ok {
		return de
	}

	return &fileinfoDirEntry{fi}
}

// a wrapper to make a fs.FileInfo into an fs.DirEntry
type fileinfoDirEntry struct {
	fs.FileInfo
}

var _ fs.DirEntry = (*fileinfoDirEntry)(nil)

func (fi *fileinfoDirEntry) Info() (fs.FileInfo, error) { return fi, nil }
func (fi *fileinfoDirEntry) Type() fs.FileMode          { return fi.Mode().Type() }
