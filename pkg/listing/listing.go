// Package listing holds the flat, sorted view of the remote feed server and
// the selection logic that runs over it: election resolution and
// latest-file selection.
package listing

import (
	"sort"
	"strings"

	"github.com/grovetools/ausec/errors"
	"github.com/sirupsen/logrus"
)

// RolePreload and RoleResults name the two tracked bundles.
const (
	RolePreload = "preload"
	RoleResults = "results"
)

// Listing is every remote path found in one session, sorted byte-wise.
// It is built once by the lister and never mutated afterwards.
type Listing []string

// New copies paths into a sorted Listing.
func New(paths []string) Listing {
	l := make(Listing, len(paths))
	copy(l, paths)
	sort.Strings(l)
	return l
}

// Elections returns the distinct election identifiers in the listing, sorted.
func (l Listing) Elections() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range l {
		id, ok := ElectionSegment(p)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ResolveElection picks the election every later path is built from.
//
// An override must be one of the identifiers in the listing. Without one the
// listing must contain exactly one identifier.
func ResolveElection(l Listing, override string) (string, error) {
	candidates := l.Elections()

	if override != "" {
		for _, c := range candidates {
			if c == override {
				return override, nil
			}
		}
		return "", errors.OverrideNotFound(override, candidates)
	}

	switch len(candidates) {
	case 0:
		return "", errors.NoElection()
	case 1:
		return candidates[0], nil
	default:
		return "", errors.AmbiguousElection(candidates)
	}
}

// Matches returns the sorted entries that contain dir and end with suffix.
//
// The directory test is a substring match, not a prefix match: "/E1/Light"
// also matches "/X/E1/Light/...". The feed layout never produces such
// collisions, so the looser test is kept.
func (l Listing) Matches(dir, suffix string) []string {
	var out []string
	for _, p := range l {
		if strings.Contains(p, dir) && strings.HasSuffix(p, suffix) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// SelectLatest returns the bare file name of the lexicographically greatest
// entry under dir ending in suffix. Feed file names carry zero-padded
// timestamps, so the greatest name is the most recent bundle.
//
// More than one preload candidate is unexpected but tolerated: a warning is
// logged and the greatest one is used.
func SelectLatest(log logrus.FieldLogger, l Listing, dir, role, suffix string) (string, error) {
	matches := l.Matches(dir, suffix)
	if len(matches) == 0 {
		return "", errors.NoMatch(dir, suffix, role)
	}

	latest := matches[len(matches)-1]
	if role == RolePreload && len(matches) > 1 && log != nil {
		log.WithFields(logrus.Fields{
			"dir":        dir,
			"candidates": len(matches),
			"selected":   Base(latest),
		}).Warn("More than one preload bundle on the server, using the latest")
	}
	if log != nil {
		log.WithFields(logrus.Fields{"role": role, "file": Base(latest)}).Debug("Selected file")
	}
	return Base(latest), nil
}
