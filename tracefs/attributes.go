package tracefs

import (
	"time"

	"go.opentelemetry.io/otel/attribute"
)

const (
	typeKey = attribute.Key("fs.type")
	pathKey = attribute.Key("fs.path")

	direntKey  = attribute.Key("dir.entries")
	sizeKey    = attribute.Key("file.size")
	permsKey   = attribute.Key("file.perms")
	modTimeKey = attribute.Key("file.modtime")

	bytesReadKey = attribute.Key("file.bytes_read")
	linkKey      = attribute.Key("link.target")

	accessModeKey    = attribute.Key("access.mode")
	accessGrantedKey = attribute.Key("access.granted")
)

// The type of filesystem being operated on.
//
// Type: string
// Required: No
// Examples: "*gitfs.FS", "*zipfs.FS", "*diskfs.FS"
func Type(name string) attribute.KeyValue {
	return typeKey.String(name)
}

// The path being operated on.
//
// Type: string
// Required: Yes
// Examples: "README.md", "{{ cookiecutter.name }}/setup.py"
func Path(name string) attribute.KeyValue {
	return pathKey.String(name)
}

// The number of entries in a directory.
//
// Type: int
// Required: No
// Examples: 3, 0
func DirEntries(n int) attribute.KeyValue {
	return direntKey.Int(n)
}

// The size of a file.
//
// Type: int64
// Required: No
// Examples: 1024, 0
func FileSize(n int64) attribute.KeyValue {
	return sizeKey.Int64(n)
}

// The permissions of a file.
//
// Type: string
// Required: No
// Examples: "-rw-r--r--", "drwxr-xr-x"
func FilePerms(perms string) attribute.KeyValue {
	return permsKey.String(perms)
}

// The modification time of a file.
//
// Type: time.Time
// Required: No
// Examples: "2021-08-21T11:10:00Z", "2021-08-21T11:10:00-07:00"
func FileModTime(t time.Time) attribute.KeyValue {
	return modTimeKey.String(t.Format(time.RFC3339))
}

// The number of bytes read from a file.
//
// Type: int
// Required: No
// Examples: 1024, 0
func FileBytesRead(n int) attribute.KeyValue {
	return bytesReadKey.Int(n)
}

// The target of a symbolic link.
//
// Type: string
// Required: No
// Examples: "README.md", "../shared/LICENSE"
func LinkTarget(target string) attribute.KeyValue {
	return linkKey.String(target)
}

// The access modes requested, as a bit set of cutty.AccessMode values.
//
// Type: int
// Required: No
// Examples: 1 (execute), 4 (read)
func AccessMode(mode int) attribute.KeyValue {
	return accessModeKey.Int(mode)
}

// Whether the requested access modes are available.
//
// Type: bool
// Required: No
// Examples: true, false
func AccessGranted(ok bool) attribute.KeyValue {
	return accessGrantedKey.Bool(ok)
}
