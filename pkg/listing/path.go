package listing

import "strings"

// Root is the remote server root.
const Root = "/"

// IsFile reports whether a remote path names a file.
// The feed server has no type information in NLST output, so any last
// segment containing a dot is a file and everything else is a directory.
func IsFile(p string) bool {
	return strings.Contains(Base(p), ".")
}

// Segments splits a remote path on "/", dropping the empty parts produced by
// leading or trailing slashes.
func Segments(p string) []string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// Base returns the last segment of a remote path.
func Base(p string) string {
	segs := Segments(p)
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

// Join constructs a child path from parent + name.
func Join(parent, name string) string {
	if parent == "" || parent == Root {
		return Root + name
	}
	return strings.TrimSuffix(parent, "/") + "/" + name
}

// ElectionSegment returns the election identifier a path belongs to: the
// second "/"-delimited field of a rooted path, i.e. its first real segment.
func ElectionSegment(p string) (string, bool) {
	fields := strings.Split(p, "/")
	if len(fields) < 2 || fields[1] == "" {
		return "", false
	}
	return fields[1], true
}
