package errors

import (
	"fmt"
	"sort"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *AusecError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *AusecError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// Connection creates a transport or login failure error
func Connection(addr string, err error) *AusecError {
	return Wrap(err, ErrCodeConnection, fmt.Sprintf("cannot talk to server %s", addr)).
		WithDetail("addr", addr)
}

// DepthExceeded reports a remote tree deeper than the configured guard.
// It is a connection-class failure: a well-behaved server never gets here.
func DepthExceeded(path string, maxDepth int) *AusecError {
	return New(ErrCodeConnection,
		fmt.Sprintf("remote tree exceeds max depth %d at %s", maxDepth, path)).
		WithDetail("path", path).
		WithDetail("max_depth", maxDepth)
}

// EmptyListing creates an error for a server that lists nothing
func EmptyListing(addr string) *AusecError {
	return New(ErrCodeEmptyListing, "no files found on the remote server").
		WithDetail("addr", addr)
}

// NoElection creates an error for a listing with no election segment
func NoElection() *AusecError {
	return New(ErrCodeNoElection, "no election found in the remote listing")
}

// AmbiguousElection creates an error listing every candidate election
func AmbiguousElection(candidates []string) *AusecError {
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)
	return New(ErrCodeAmbiguousElection,
		fmt.Sprintf("found %d elections %v, pick one with an override", len(sorted), sorted)).
		WithDetail("candidates", sorted)
}

// OverrideNotFound creates an error for an override absent from the listing
func OverrideNotFound(override string, candidates []string) *AusecError {
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)
	return New(ErrCodeOverrideNotFound,
		fmt.Sprintf("election '%s' is not on the server", override)).
		WithDetail("override", override).
		WithDetail("candidates", sorted)
}

// NoMatch creates an error for a selection filter with no hits
func NoMatch(dir, suffix, role string) *AusecError {
	return New(ErrCodeNoMatch,
		fmt.Sprintf("no %s file ending in '%s' under %s", role, suffix, dir)).
		WithDetail("dir", dir).
		WithDetail("suffix", suffix).
		WithDetail("role", role)
}

// Download creates a transfer failure error
func Download(remotePath string, err error) *AusecError {
	return Wrap(err, ErrCodeDownload, fmt.Sprintf("download of %s failed", remotePath)).
		WithDetail("remote_path", remotePath)
}

// MemberNotFound creates an error for a zip member that does not exist
func MemberNotFound(archive, member string) *AusecError {
	return New(ErrCodeMemberNotFound,
		fmt.Sprintf("member '%s' not found in %s", member, archive)).
		WithDetail("archive", archive).
		WithDetail("member", member)
}

// ArchiveCorrupt creates an error for an archive that cannot be read
func ArchiveCorrupt(archive string, err error) *AusecError {
	return Wrap(err, ErrCodeArchiveCorrupt, fmt.Sprintf("cannot read archive %s", archive)).
		WithDetail("archive", archive)
}

// InvalidInput creates an invalid argument error
func InvalidInput(reason string) *AusecError {
	return New(ErrCodeInvalidInput, reason)
}
