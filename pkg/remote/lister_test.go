package remote_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/grovetools/ausec/errors"
	"github.com/grovetools/ausec/pkg/listing"
	"github.com/grovetools/ausec/pkg/remote"
	"github.com/grovetools/ausec/pkg/remote/remotetest"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedServer() *remotetest.Server {
	return remotetest.NewServer().
		AddFile("/E1/Detailed/Preload/preload-1.zip", []byte("p")).
		AddFile("/E1/Standard/Light/results-20240101.zip", []byte("r1")).
		AddFile("/E1/Standard/Light/results-20240102.zip", []byte("r2"))
}

func newLister(t *testing.T, srv *remotetest.Server, exclude []string, opts ...remote.ListerOption) *remote.Lister {
	t.Helper()
	log, _ := test.NewNullLogger()
	opts = append(opts, remote.WithLogger(log))
	l, err := remote.NewLister(srv.Dialer(), exclude, opts...)
	require.NoError(t, err)
	return l
}

func TestListTree(t *testing.T) {
	srv := feedServer()
	got, err := newLister(t, srv, nil).ListTree(context.Background())
	require.NoError(t, err)

	assert.Equal(t, listing.Listing{
		"/E1",
		"/E1/Detailed",
		"/E1/Detailed/Preload",
		"/E1/Detailed/Preload/preload-1.zip",
		"/E1/Standard",
		"/E1/Standard/Light",
		"/E1/Standard/Light/results-20240101.zip",
		"/E1/Standard/Light/results-20240102.zip",
	}, got)
	assert.Equal(t, 1, srv.Dials(), "one session per listing")
	assert.Equal(t, 0, srv.Open(), "session closed after listing")
}

func TestListTreeInvariants(t *testing.T) {
	srv := feedServer().AddDir("/E1/Verbose/empty").AddFile("/E1/Standard/readme.txt", nil)
	got, err := newLister(t, srv, nil).ListTree(context.Background())
	require.NoError(t, err)

	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1], got[i], "listing must be strictly sorted")
	}
	for _, p := range got {
		// Every non-root prefix of every entry is itself an entry.
		segs := listing.Segments(p)
		prefix := ""
		for _, seg := range segs[:len(segs)-1] {
			prefix = listing.Join(prefix, seg)
			assert.Contains(t, got, prefix)
		}
	}
	// Files are never descended into.
	assert.Contains(t, got, "/E1/Standard/readme.txt")
}

func TestListTreeFullPathNames(t *testing.T) {
	srv := feedServer()
	srv.FullPaths = true
	got, err := newLister(t, srv, nil).ListTree(context.Background())
	require.NoError(t, err)
	assert.Contains(t, got, "/E1/Standard/Light/results-20240102.zip")
	assert.Len(t, got, 8)
}

func TestListTreeEmpty(t *testing.T) {
	_, err := newLister(t, remotetest.NewServer(), nil).ListTree(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeEmptyListing))
}

func TestListTreeDialFailure(t *testing.T) {
	srv := feedServer()
	srv.DialErr = fmt.Errorf("connection refused")
	_, err := newLister(t, srv, nil).ListTree(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConnection))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestListTreeNameListFailureClosesSession(t *testing.T) {
	srv := feedServer()
	srv.ListErr["/E1/Standard"] = fmt.Errorf("550 permission denied")

	_, err := newLister(t, srv, nil).ListTree(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConnection))
	assert.Equal(t, 0, srv.Open())
}

func TestListTreeDepthGuard(t *testing.T) {
	srv := remotetest.NewServer().AddDir("/a/b/c/d/e")

	_, err := newLister(t, srv, nil, remote.WithMaxDepth(3)).ListTree(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConnection))
	ae, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, 3, ae.Details["max_depth"])
	assert.Equal(t, 0, srv.Open())

	got, err := newLister(t, srv, nil, remote.WithMaxDepth(6)).ListTree(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestListTreeExclude(t *testing.T) {
	srv := feedServer().AddFile("/E1/Verbose/verbose-1.zip", []byte("v"))

	got, err := newLister(t, srv, []string{"*/Verbose", "**/results-20240101.zip"}).ListTree(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, got, "/E1/Verbose")
	assert.NotContains(t, got, "/E1/Verbose/verbose-1.zip")
	assert.NotContains(t, got, "/E1/Standard/Light/results-20240101.zip")
	assert.Contains(t, got, "/E1/Standard/Light/results-20240102.zip")
}

func TestNewListerRejectsBadPattern(t *testing.T) {
	_, err := remote.NewLister(remotetest.NewServer().Dialer(), []string{"[unclosed"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestListTreeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newLister(t, feedServer(), nil).ListTree(ctx)
	require.Error(t, err)
}

func TestFTPDialerAddr(t *testing.T) {
	assert.Equal(t, "mediafeed.aec.gov.au:21", (&remote.FTPDialer{Host: "mediafeed.aec.gov.au"}).Addr())
	assert.Equal(t, "localhost:2121", (&remote.FTPDialer{Host: "localhost", Port: 2121}).Addr())
}
