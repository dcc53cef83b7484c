// Package cache keeps downloaded feed bundles in a flat local directory keyed
// by file name. A file that is already present is never transferred again.
package cache

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/grovetools/ausec/errors"
	"github.com/grovetools/ausec/logging"
	"github.com/grovetools/ausec/pkg/listing"
	"github.com/grovetools/ausec/pkg/metrics"
	"github.com/grovetools/ausec/pkg/remote"
	"github.com/sirupsen/logrus"
)

const partSuffix = ".part"

// Cache manages locally cached bundles and the role of each one. It belongs
// to one session and is not safe for concurrent use.
type Cache struct {
	dir     string
	dialer  remote.Dialer
	log     logrus.FieldLogger
	tracked map[string]string
}

// New creates a cache over dir. The directory is created on first download.
func New(dir string, dialer remote.Dialer) *Cache {
	return &Cache{
		dir:     dir,
		dialer:  dialer,
		log:     logging.NewLogger("cache"),
		tracked: make(map[string]string),
	}
}

// WithLogger replaces the component logger.
func (c *Cache) WithLogger(log logrus.FieldLogger) *Cache {
	if log != nil {
		c.log = log
	}
	return c
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Path returns where fileName is stored, whether or not it exists yet.
func (c *Cache) Path(fileName string) string {
	return filepath.Join(c.dir, fileName)
}

// EnsureDownloaded makes remoteDir/fileName available locally and returns its
// local path. An existing local file is trusted as-is; its content is never
// compared against the server.
//
// The first path recorded for a role is kept for the lifetime of the Cache.
func (c *Cache) EnsureDownloaded(ctx context.Context, remoteDir, fileName, role string) (string, error) {
	if err := validateName(fileName); err != nil {
		return "", err
	}

	target := c.Path(fileName)
	log := c.log.WithFields(logrus.Fields{"role": role, "file": fileName})

	if _, err := os.Stat(target); err == nil {
		log.Info("File already cached, skipping download")
		metrics.RecordCacheHit(role)
	} else {
		remotePath := listing.Join(remoteDir, fileName)
		log.WithField("remote_dir", remoteDir).Info("Downloading file")

		start := time.Now()
		n, err := c.fetch(ctx, remotePath, target)
		metrics.RecordDownload(role, n, time.Since(start), err)
		if err != nil {
			return "", err
		}
		log.WithField("bytes", n).Debug("Download complete")
	}

	c.track(role, target)
	return target, nil
}

func (c *Cache) fetch(ctx context.Context, remotePath, target string) (int64, error) {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return 0, errors.Download(remotePath, fmt.Errorf("create cache dir: %w", err))
	}

	conn, err := remote.Open(ctx, c.dialer)
	if err != nil {
		return 0, errors.Download(remotePath, err)
	}
	defer conn.Close()

	r, err := conn.Retr(remotePath)
	if err != nil {
		return 0, errors.Download(remotePath, err)
	}
	closed := false
	defer func() {
		if !closed {
			r.Close()
		}
	}()

	// Write to a temp file so an interrupted transfer is never mistaken for
	// a cached one.
	tempPath := target + partSuffix
	f, err := os.Create(tempPath)
	if err != nil {
		return 0, errors.Download(remotePath, fmt.Errorf("create temp file: %w", err))
	}

	written, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(tempPath)
		return 0, errors.Download(remotePath, fmt.Errorf("write content: %w", err))
	}

	// An aborted transfer only surfaces as the final reply, read on Close.
	closed = true
	if err := r.Close(); err != nil {
		f.Close()
		os.Remove(tempPath)
		return 0, errors.Download(remotePath, fmt.Errorf("transfer incomplete: %w", err))
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return 0, errors.Download(remotePath, fmt.Errorf("write content: %w", err))
	}

	if err := os.Rename(tempPath, target); err != nil {
		os.Remove(tempPath)
		return 0, errors.Download(remotePath, fmt.Errorf("rename temp file: %w", err))
	}
	return written, nil
}

func (c *Cache) track(role, target string) {
	existing, ok := c.tracked[role]
	switch {
	case !ok:
		c.tracked[role] = target
	case existing != target:
		c.log.WithFields(logrus.Fields{
			"role":    role,
			"tracked": existing,
			"offered": target,
		}).Warn("Role already tracked, keeping the first file")
	}
}

// Tracked returns a copy of the role to local path mapping.
func (c *Cache) Tracked() map[string]string {
	out := make(map[string]string, len(c.tracked))
	for k, v := range c.tracked {
		out[k] = v
	}
	return out
}

// Lookup returns the local path tracked for role.
func (c *Cache) Lookup(role string) (string, bool) {
	p, ok := c.tracked[role]
	return p, ok
}

// Files lists the bundles present in the cache directory, sorted.
func (c *Cache) Files() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), partSuffix) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return errors.InvalidInput(fmt.Sprintf("file name must be a bare name: %q", name))
	}
	return nil
}
