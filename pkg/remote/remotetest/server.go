// Package remotetest provides an in-memory feed server for tests.
package remotetest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/grovetools/ausec/pkg/remote"
)

// Server is an in-memory remote tree. Directories are implied by the files
// and directories added beneath them.
type Server struct {
	mu    sync.Mutex
	dirs  map[string]map[string]struct{}
	files map[string][]byte

	// DialErr, when set, fails every Dial.
	DialErr error
	// ListErr fails NameList for specific directories.
	ListErr map[string]error
	// RetrErr fails Retr for specific files.
	RetrErr map[string]error
	// CloseErr is returned when the reader for a file is closed, the way an
	// FTP server reports an aborted transfer after the data stream ends.
	CloseErr map[string]error
	// FullPaths makes NameList answer with absolute paths.
	FullPaths bool

	dials      int
	open       int
	retrievals map[string]int
}

// NewServer returns an empty server.
func NewServer() *Server {
	return &Server{
		dirs:       map[string]map[string]struct{}{"/": {}},
		files:      make(map[string][]byte),
		ListErr:    make(map[string]error),
		RetrErr:    make(map[string]error),
		CloseErr:   make(map[string]error),
		retrievals: make(map[string]int),
	}
}

// AddDir creates a directory and its parents.
func (s *Server) AddDir(p string) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addDir(p)
	return s
}

// AddFile stores a file, creating its parents.
func (s *Server) AddFile(p string, data []byte) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	parent, name := split(p)
	s.addDir(parent)
	s.dirs[parent][name] = struct{}{}
	s.files[p] = data
	return s
}

// RemoveFile deletes a file.
func (s *Server) RemoveFile(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	parent, name := split(p)
	delete(s.dirs[parent], name)
	delete(s.files, p)
}

func (s *Server) addDir(p string) {
	if p == "/" {
		return
	}
	if _, ok := s.dirs[p]; ok {
		return
	}
	parent, name := split(p)
	s.addDir(parent)
	s.dirs[parent][name] = struct{}{}
	s.dirs[p] = map[string]struct{}{}
}

func split(p string) (string, string) {
	p = "/" + strings.Trim(p, "/")
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/", p[1:]
	}
	return p[:i], p[i+1:]
}

// Dials returns how many sessions were opened.
func (s *Server) Dials() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dials
}

// Open returns how many sessions are still open.
func (s *Server) Open() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Retrievals returns how many times a file was retrieved.
func (s *Server) Retrievals(p string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retrievals[p]
}

// Dialer returns a remote.Dialer backed by the server.
func (s *Server) Dialer() remote.Dialer {
	return &dialer{s: s}
}

type dialer struct {
	s *Server
}

func (d *dialer) Addr() string { return "remotetest:21" }

func (d *dialer) Dial(ctx context.Context) (remote.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	if d.s.DialErr != nil {
		return nil, d.s.DialErr
	}
	d.s.dials++
	d.s.open++
	return &conn{s: d.s}, nil
}

type conn struct {
	s      *Server
	closed bool
}

func (c *conn) NameList(p string) ([]string, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.closed {
		return nil, fmt.Errorf("connection closed")
	}
	if err := c.s.ListErr[p]; err != nil {
		return nil, err
	}
	entries, ok := c.s.dirs[p]
	if !ok {
		return nil, fmt.Errorf("550 %s: no such directory", p)
	}
	names := make([]string, 0, len(entries))
	for name := range entries {
		if c.s.FullPaths {
			name = strings.TrimSuffix(p, "/") + "/" + name
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (c *conn) Retr(p string) (io.ReadCloser, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.closed {
		return nil, fmt.Errorf("connection closed")
	}
	if err := c.s.RetrErr[p]; err != nil {
		return nil, err
	}
	data, ok := c.s.files[p]
	if !ok {
		return nil, fmt.Errorf("550 %s: no such file", p)
	}
	c.s.retrievals[p]++
	return &response{Reader: bytes.NewReader(data), err: c.s.CloseErr[p]}, nil
}

type response struct {
	io.Reader
	err error
}

func (r *response) Close() error {
	return r.err
}

func (c *conn) Close() error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if !c.closed {
		c.closed = true
		c.s.open--
	}
	return nil
}
