package remote

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/grovetools/ausec/errors"
	"github.com/grovetools/ausec/logging"
	"github.com/grovetools/ausec/pkg/listing"
	"github.com/grovetools/ausec/pkg/metrics"
	"github.com/moby/patternmatcher"
	"github.com/sirupsen/logrus"
)

// DefaultMaxDepth bounds the tree walk. The feed layout is four levels deep.
const DefaultMaxDepth = 8

// Lister walks the remote tree.
type Lister struct {
	dialer   Dialer
	maxDepth int
	matcher  *patternmatcher.PatternMatcher
	log      logrus.FieldLogger
}

// ListerOption configures a Lister.
type ListerOption func(*Lister)

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(n int) ListerOption {
	return func(l *Lister) {
		if n > 0 {
			l.maxDepth = n
		}
	}
}

// WithLogger replaces the component logger.
func WithLogger(log logrus.FieldLogger) ListerOption {
	return func(l *Lister) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLister builds a Lister. Exclude patterns use .dockerignore syntax and
// are matched against paths without their leading slash.
func NewLister(dialer Dialer, exclude []string, opts ...ListerOption) (*Lister, error) {
	l := &Lister{
		dialer:   dialer,
		maxDepth: DefaultMaxDepth,
		log:      logging.NewLogger("remote"),
	}
	if len(exclude) > 0 {
		pm, err := patternmatcher.New(exclude)
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("invalid exclude pattern: %v", err))
		}
		l.matcher = pm
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// ListTree opens one session and returns every path under the root, sorted.
// A name containing a "." is a file; anything else is descended into.
func (l *Lister) ListTree(ctx context.Context) (listing.Listing, error) {
	start := time.Now()
	found, err := l.listTree(ctx)
	metrics.RecordListing(len(found), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	l.log.WithFields(logrus.Fields{
		"entries":  len(found),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Info("Listed remote tree")
	return found, nil
}

func (l *Lister) listTree(ctx context.Context) (listing.Listing, error) {
	l.log.WithField("addr", l.dialer.Addr()).Info("Connecting to feed server")
	conn, err := Open(ctx, l.dialer)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var found []string
	if err := l.walk(ctx, conn, listing.Root, 1, &found); err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, errors.EmptyListing(l.dialer.Addr())
	}
	return listing.New(found), nil
}

func (l *Lister) walk(ctx context.Context, conn Conn, dir string, depth int, found *[]string) error {
	if err := ctx.Err(); err != nil {
		return errors.Connection(l.dialer.Addr(), err)
	}
	if depth > l.maxDepth {
		return errors.DepthExceeded(dir, l.maxDepth)
	}

	names, err := conn.NameList(dir)
	if err != nil {
		return errors.Connection(l.dialer.Addr(), fmt.Errorf("list %s: %w", dir, err))
	}
	l.log.WithFields(logrus.Fields{"dir": dir, "names": len(names)}).Debug("Listed directory")

	for _, name := range names {
		// Some servers answer NLST with full paths.
		name = path.Base(strings.TrimRight(name, "/"))
		if name == "." || name == ".." || name == "/" || name == "" {
			continue
		}

		full := listing.Join(dir, name)
		if l.excluded(full) {
			l.log.WithField("path", full).Trace("Excluded")
			continue
		}
		*found = append(*found, full)

		if !listing.IsFile(name) {
			if err := l.walk(ctx, conn, full, depth+1, found); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *Lister) excluded(p string) bool {
	if l.matcher == nil {
		return false
	}
	ok, err := l.matcher.MatchesOrParentMatches(strings.TrimPrefix(p, "/"))
	return err == nil && ok
}
