package cmd

import (
	"github.com/grovetools/ausec/cli"
	"github.com/grovetools/ausec/config"
	"github.com/grovetools/ausec/pkg/cache"
	"github.com/grovetools/ausec/pkg/loader"
	"github.com/grovetools/ausec/pkg/remote"
	"github.com/spf13/cobra"
)

// newDialer builds the dialer every session uses. Tests swap it for an
// in-memory server.
var newDialer = func(cfg *config.Config) (remote.Dialer, error) {
	timeout, err := cfg.Server.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return &remote.FTPDialer{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		User:        cfg.Server.User,
		Password:    cfg.Server.Password,
		Timeout:     timeout,
		DisableEPSV: cfg.Server.DisableEPSV,
	}, nil
}

// sessionFlags are the overrides shared by commands that talk to the server.
type sessionFlags struct {
	election string
	cacheDir string
}

func (f *sessionFlags) add(cmd *cobra.Command, withCache bool) {
	cmd.Flags().StringVar(&f.election, "election", "", "Election identifier to use when the server carries more than one")
	if withCache {
		cmd.Flags().StringVar(&f.cacheDir, "cache-dir", "", "Directory downloaded bundles are kept in")
	}
}

// loadConfig loads the configuration and applies the command-line overrides.
func (f *sessionFlags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := cli.LoadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if f.election != "" {
		cfg.Election = f.election
	}
	if f.cacheDir != "" {
		cfg.CacheDir = f.cacheDir
	}
	return cfg, nil
}

func newLister(cfg *config.Config) (*remote.Lister, error) {
	dialer, err := newDialer(cfg)
	if err != nil {
		return nil, err
	}
	return remote.NewLister(dialer, cfg.Listing.Exclude, remote.WithMaxDepth(cfg.Listing.MaxDepth))
}

// newLoader wires a fresh lister, cache and loader for one session.
func newLoader(cfg *config.Config) (*loader.Loader, error) {
	lister, err := newLister(cfg)
	if err != nil {
		return nil, err
	}
	dialer, err := newDialer(cfg)
	if err != nil {
		return nil, err
	}
	c := cache.New(cfg.ResolvedCacheDir(), dialer)
	return loader.New(lister, c, loader.WithElection(cfg.Election)), nil
}
