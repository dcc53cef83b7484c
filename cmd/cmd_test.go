package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/grovetools/ausec/config"
	"github.com/grovetools/ausec/errors"
	"github.com/grovetools/ausec/pkg/loader"
	"github.com/grovetools/ausec/pkg/remote"
	"github.com/grovetools/ausec/pkg/remote/remotetest"
	"github.com/grovetools/ausec/state"
	"github.com/grovetools/ausec/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func preloadZip(t *testing.T, election string) []byte {
	return testutil.ZipBytes(t, map[string]string{
		loader.EventMember(election):      "<event/>",
		loader.CandidatesMember(election): "<candidates/>",
	})
}

func resultsZip(t *testing.T, election, body string) []byte {
	return testutil.ZipBytes(t, map[string]string{loader.ResultsMember(election): body})
}

func feedServer(t *testing.T) *remotetest.Server {
	return remotetest.NewServer().
		AddFile("/E1/Detailed/Preload/preload-1.zip", preloadZip(t, "E1")).
		AddFile("/E1/Standard/Light/results-20240101.zip", resultsZip(t, "E1", "<old/>")).
		AddFile("/E1/Standard/Light/results-20240102.zip", resultsZip(t, "E1", "<new/>"))
}

// useServer points every command at srv and isolates config and cache
// lookups in temporary directories. It returns the AUSEC_HOME used.
func useServer(t *testing.T, srv *remotetest.Server) string {
	t.Helper()

	orig := newDialer
	newDialer = func(*config.Config) (remote.Dialer, error) { return srv.Dialer(), nil }
	t.Cleanup(func() { newDialer = orig })

	home := t.TempDir()
	t.Setenv("AUSEC_HOME", home)
	t.Setenv(config.EnvElection, "")
	t.Setenv(config.EnvCacheDir, "")
	t.Setenv(config.EnvFTPHost, "")
	testutil.Chdir(t, t.TempDir())
	return home
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestFetchJSON(t *testing.T) {
	useServer(t, feedServer(t))
	cacheDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "docs")

	out, err := execute(t, "fetch", "--json", "--cache-dir", cacheDir, "--out", outDir)
	require.NoError(t, err)

	var got struct {
		Election    string            `json:"election"`
		PreloadFile string            `json:"preload_file"`
		ResultsFile string            `json:"results_file"`
		Tracked     map[string]string `json:"tracked"`
		Written     []string          `json:"written"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, "E1", got.Election)
	assert.Equal(t, filepath.Join(cacheDir, "preload-1.zip"), got.PreloadFile)
	assert.Equal(t, filepath.Join(cacheDir, "results-20240102.zip"), got.ResultsFile)
	assert.Equal(t, got.ResultsFile, got.Tracked["results"])
	require.Len(t, got.Written, 3)

	body, err := os.ReadFile(filepath.Join(outDir, filepath.Base(loader.ResultsMember("E1"))))
	require.NoError(t, err)
	assert.Equal(t, "<new/>", string(body))
}

func TestFetchPretty(t *testing.T) {
	useServer(t, feedServer(t))

	out, err := execute(t, "fetch", "--cache-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "Fetched election E1")
	assert.Contains(t, out, "results-20240102.zip")
}

func TestFetchElectionOverride(t *testing.T) {
	srv := feedServer(t).
		AddFile("/E2/Detailed/Preload/preload-1.zip", preloadZip(t, "E2")).
		AddFile("/E2/Standard/Light/results-20240301.zip", resultsZip(t, "E2", "<e2/>"))
	useServer(t, srv)

	_, err := execute(t, "fetch", "--cache-dir", t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeAmbiguousElection))

	out, err := execute(t, "fetch", "--json", "--cache-dir", t.TempDir(), "--election", "E2")
	require.NoError(t, err)
	assert.Contains(t, out, `"election": "E2"`)
}

func TestFetchUsesCacheDirFromEnv(t *testing.T) {
	srv := feedServer(t)
	useServer(t, srv)
	cacheDir := t.TempDir()
	t.Setenv(config.EnvCacheDir, cacheDir)

	_, err := execute(t, "fetch")
	require.NoError(t, err)
	_, err = execute(t, "fetch")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(cacheDir, "preload-1.zip"))
	assert.Equal(t, 1, srv.Retrievals("/E1/Standard/Light/results-20240102.zip"))
}

func TestList(t *testing.T) {
	useServer(t, feedServer(t))

	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "/E1/Detailed/Preload/preload-1.zip\n")
	assert.Contains(t, out, "/E1\n")

	out, err = execute(t, "list", "--tree")
	require.NoError(t, err)
	assert.Contains(t, out, "E1/\n")

	out, err = execute(t, "list", "--json", "--dir", "/E1/Standard/Light")
	require.NoError(t, err)
	var got candidatesOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Matches, 2)
	assert.Equal(t, "results-20240102.zip", got.Latest)
}

func TestListTreeRootedAtDir(t *testing.T) {
	useServer(t, feedServer(t))

	out, err := execute(t, "list", "--tree", "--dir", "/E1/Standard")
	require.NoError(t, err)
	assert.Equal(t, "Light/\n  results-20240101.zip\n  results-20240102.zip\n", out)

	_, err = execute(t, "list", "--tree", "--dir", "/E9")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestListCached(t *testing.T) {
	srv := feedServer(t)
	useServer(t, srv)
	cacheDir := t.TempDir()

	out, err := execute(t, "list", "--cached", "--cache-dir", cacheDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing cached")

	_, err = execute(t, "fetch", "--cache-dir", cacheDir)
	require.NoError(t, err)
	dials := srv.Dials()

	out, err = execute(t, "list", "--cached", "--members", "--json", "--cache-dir", cacheDir)
	require.NoError(t, err)
	var got []cachedBundle
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "preload-1.zip", got[0].Name)
	assert.Equal(t, []string{loader.EventMember("E1"), loader.CandidatesMember("E1")}, got[0].Members)
	assert.Equal(t, "results-20240102.zip", got[1].Name)
	assert.Equal(t, filepath.Join(cacheDir, "results-20240102.zip"), got[1].Path)
	assert.Equal(t, dials, srv.Dials(), "the cache listing never contacts the server")

	_, err = execute(t, "list", "--members")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestElections(t *testing.T) {
	useServer(t, feedServer(t).AddDir("/E2/Standard"))

	out, err := execute(t, "elections", "--json")
	require.NoError(t, err)
	var got electionsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"E1", "E2"}, got.Elections)
	assert.Empty(t, got.Resolved)

	out, err = execute(t, "elections", "--election", "E2")
	require.NoError(t, err)
	assert.Contains(t, out, "E2 (selected)")

	_, err = execute(t, "elections", "--election", "E9")
	assert.True(t, errors.Is(err, errors.ErrCodeOverrideNotFound))
}

func TestWatcherReportsNewResults(t *testing.T) {
	srv := feedServer(t)
	useServer(t, srv)

	cfg := &config.Config{CacheDir: t.TempDir()}
	cfg.SetDefaults()
	log, hook := test.NewNullLogger()
	outDir := t.TempDir()
	store := state.NewStore(t.TempDir())
	w := &watcher{cfg: cfg, outDir: outDir, store: store, log: log}
	ctx := context.Background()

	assert.True(t, w.session(ctx), "first session always reports")
	assert.False(t, w.session(ctx), "same bundle")

	srv.AddFile("/E1/Standard/Light/results-20240103.zip", resultsZip(t, "E1", "<newer/>"))
	assert.True(t, w.session(ctx))
	assert.Equal(t, "New results bundle", hook.LastEntry().Message)

	body, err := os.ReadFile(filepath.Join(outDir, filepath.Base(loader.ResultsMember("E1"))))
	require.NoError(t, err)
	assert.Equal(t, "<newer/>", string(body))

	saved, err := store.GetString("results.E1")
	require.NoError(t, err)
	assert.Equal(t, "results-20240103.zip", saved)

	srv.DialErr = assert.AnError
	assert.False(t, w.session(ctx))
	assert.Equal(t, "Session failed", hook.LastEntry().Message)
}

func TestWatcherRemembersAcrossRestarts(t *testing.T) {
	srv := feedServer(t)
	useServer(t, srv)

	cfg := &config.Config{CacheDir: t.TempDir()}
	cfg.SetDefaults()
	log, _ := test.NewNullLogger()
	store := state.NewStore(t.TempDir())
	ctx := context.Background()

	first := &watcher{cfg: cfg, store: store, log: log}
	assert.True(t, first.session(ctx))

	outDir := t.TempDir()
	restarted := &watcher{cfg: cfg, outDir: outDir, store: store, log: log}
	assert.False(t, restarted.session(ctx), "bundle was already seen before the restart")
	assert.FileExists(t, filepath.Join(outDir, filepath.Base(loader.ResultsMember("E1"))),
		"documents are written on the first round regardless")
}

func TestWatcherTracksResultsPerElection(t *testing.T) {
	srv := feedServer(t).
		AddFile("/E2/Detailed/Preload/preload-2.zip", preloadZip(t, "E2")).
		AddFile("/E2/Standard/Light/results-20240301.zip", resultsZip(t, "E2", "<e2/>"))
	useServer(t, srv)

	cfg := &config.Config{CacheDir: t.TempDir(), Election: "E1"}
	cfg.SetDefaults()
	log, hook := test.NewNullLogger()
	w := &watcher{cfg: cfg, log: log}
	ctx := context.Background()

	assert.True(t, w.session(ctx))

	cfg.Election = "E2"
	assert.True(t, w.session(ctx))
	assert.Equal(t, "Initial results bundle", hook.LastEntry().Message,
		"another election's bundle is not reported as a change")

	cfg.Election = "E1"
	assert.False(t, w.session(ctx))
}

func TestWatchCommandStopsAfterSessions(t *testing.T) {
	srv := feedServer(t)
	useServer(t, srv)

	cacheDir := t.TempDir()
	done := make(chan error, 1)
	go func() {
		_, err := execute(t, "watch", "--cache-dir", cacheDir, "--interval", "1ms", "--sessions", "2")
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("watch did not stop")
	}
	// Three dials for the first session, then a listing with both bundles cached.
	assert.Equal(t, 4, srv.Dials())
}

func TestWatchRejectsBadInterval(t *testing.T) {
	useServer(t, feedServer(t))
	_, err := execute(t, "watch", "--interval", "soon")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestConfigCommand(t *testing.T) {
	useServer(t, feedServer(t))

	out, err := execute(t, "config", "--schema")
	require.NoError(t, err)
	assert.Contains(t, out, "ausec Configuration")

	out, err = execute(t, "config", "--json")
	require.NoError(t, err)
	var got config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, config.DefaultHost, got.Server.Host)

	testutil.WriteFile(t, ".", "ausec.yml", "version: \"1.0\"\nelection: E1\n")
	out, err = execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "# Source: ")
	assert.Contains(t, out, "election: E1")
}

func TestPaths(t *testing.T) {
	home := useServer(t, feedServer(t))

	out, err := execute(t, "paths")
	require.NoError(t, err)
	var got PathsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, filepath.Join(home, "cache", "ausec"), got.CacheDir)
	assert.Equal(t, filepath.Join(home, "state", "ausec"), got.StateDir)
	assert.Empty(t, got.ProjectConfig)
}
