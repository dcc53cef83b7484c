// Package loader runs one session against the feed server: list the remote
// tree, resolve the election, fetch the preload and latest results bundles,
// and extract the three election documents from them.
package loader

import (
	"context"
	"fmt"

	"github.com/grovetools/ausec/logging"
	"github.com/grovetools/ausec/pkg/archive"
	"github.com/grovetools/ausec/pkg/cache"
	"github.com/grovetools/ausec/pkg/listing"
	"github.com/grovetools/ausec/pkg/profiling"
	"github.com/sirupsen/logrus"
)

// BundleSuffix is the extension of every bundle the loader fetches.
const BundleSuffix = ".zip"

// PreloadDir is where the one-off preload bundle for an election lives.
func PreloadDir(election string) string {
	return fmt.Sprintf("/%s/Detailed/Preload", election)
}

// ResultsDir is where the periodically republished results bundles live.
func ResultsDir(election string) string {
	return fmt.Sprintf("/%s/Standard/Light", election)
}

// EventMember is the election event document inside the preload bundle.
func EventMember(election string) string {
	return fmt.Sprintf("xml/eml-110-event-%s.xml", election)
}

// CandidatesMember is the candidate list inside the preload bundle.
func CandidatesMember(election string) string {
	return fmt.Sprintf("xml/eml-230-candidates-%s.xml", election)
}

// ResultsMember is the results document inside a results bundle.
func ResultsMember(election string) string {
	return fmt.Sprintf("xml/aec-mediafeed-results-standard-light-%s.xml", election)
}

// Lister produces the remote listing.
type Lister interface {
	ListTree(ctx context.Context) (listing.Listing, error)
}

// Data is everything one full session produces.
type Data struct {
	Election     string            `json:"election"`
	PreloadFile  string            `json:"preload_file"`
	ResultsFile  string            `json:"results_file"`
	ElectionInfo string            `json:"-"`
	Candidates   string            `json:"-"`
	Results      string            `json:"-"`
	Tracked      map[string]string `json:"tracked"`
}

// Loader holds the state of one session. It is not safe for concurrent use;
// run a new Loader for every session.
type Loader struct {
	lister   Lister
	cache    *cache.Cache
	override string
	log      logrus.FieldLogger

	listing  listing.Listing
	election string
	preload  string
	results  string
}

// Option configures a Loader.
type Option func(*Loader)

// WithElection selects an election explicitly instead of requiring the
// server to publish exactly one.
func WithElection(id string) Option {
	return func(l *Loader) { l.override = id }
}

// WithLogger replaces the component logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// New creates a Loader. Nothing is contacted until the first call.
func New(lister Lister, c *cache.Cache, opts ...Option) *Loader {
	l := &Loader{
		lister: lister,
		cache:  c,
		log:    logging.NewLogger("loader"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load runs the whole session. The first failure aborts it.
func (l *Loader) Load(ctx context.Context) (*Data, error) {
	defer profiling.Start("load").Stop()

	election, err := l.Election(ctx)
	if err != nil {
		return nil, err
	}
	info, err := l.ElectionInfo(ctx)
	if err != nil {
		return nil, err
	}
	candidates, err := l.Candidates(ctx)
	if err != nil {
		return nil, err
	}
	results, err := l.Results(ctx)
	if err != nil {
		return nil, err
	}

	return &Data{
		Election:     election,
		PreloadFile:  l.preload,
		ResultsFile:  l.results,
		ElectionInfo: info,
		Candidates:   candidates,
		Results:      results,
		Tracked:      l.cache.Tracked(),
	}, nil
}

// Listing returns the remote listing, walking the server on first use.
func (l *Loader) Listing(ctx context.Context) (listing.Listing, error) {
	if l.listing != nil {
		return l.listing, nil
	}
	span := profiling.Start("list")
	found, err := l.lister.ListTree(ctx)
	span.Stop()
	if err != nil {
		return nil, err
	}
	l.listing = found
	return found, nil
}

// Election returns the resolved election identifier.
func (l *Loader) Election(ctx context.Context) (string, error) {
	if l.election != "" {
		return l.election, nil
	}
	found, err := l.Listing(ctx)
	if err != nil {
		return "", err
	}
	election, err := listing.ResolveElection(found, l.override)
	if err != nil {
		return "", err
	}
	l.election = election
	l.log.WithField("election", election).Info("Election root")
	return election, nil
}

// ElectionInfo returns the election event document from the preload bundle.
func (l *Loader) ElectionInfo(ctx context.Context) (string, error) {
	return l.fromPreload(ctx, EventMember)
}

// Candidates returns the candidate document from the preload bundle.
func (l *Loader) Candidates(ctx context.Context) (string, error) {
	return l.fromPreload(ctx, CandidatesMember)
}

// Results returns the results document from the latest results bundle. The
// bundle is chosen once per Loader; later calls reuse it.
func (l *Loader) Results(ctx context.Context) (string, error) {
	election, err := l.Election(ctx)
	if err != nil {
		return "", err
	}
	if l.results == "" {
		path, err := l.fetch(ctx, ResultsDir(election), listing.RoleResults)
		if err != nil {
			return "", err
		}
		l.results = path
	}
	return extract(l.results, ResultsMember(election))
}

func (l *Loader) fromPreload(ctx context.Context, member func(string) string) (string, error) {
	election, err := l.Election(ctx)
	if err != nil {
		return "", err
	}
	if l.preload == "" {
		path, err := l.fetch(ctx, PreloadDir(election), listing.RolePreload)
		if err != nil {
			return "", err
		}
		l.preload = path
	}
	return extract(l.preload, member(election))
}

func extract(archivePath, member string) (string, error) {
	defer profiling.Start("extract " + member).Stop()
	return archive.ExtractText(archivePath, member)
}

func (l *Loader) fetch(ctx context.Context, dir, role string) (string, error) {
	found, err := l.Listing(ctx)
	if err != nil {
		return "", err
	}
	name, err := listing.SelectLatest(l.log, found, dir, role, BundleSuffix)
	if err != nil {
		return "", err
	}
	l.log.WithFields(logrus.Fields{"role": role, "file": name}).Info("Latest file")

	defer profiling.Start("download " + role).Stop()
	return l.cache.EnsureDownloaded(ctx, dir, name, role)
}
