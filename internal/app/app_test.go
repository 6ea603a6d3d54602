package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/edward-yakop/go-pubdoc/api/document"
	"github.com/edward-yakop/go-pubdoc/internal/config"
	"github.com/edward-yakop/go-pubdoc/internal/core"
	"github.com/edward-yakop/go-pubdoc/internal/export"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{config.EnvDomain, config.EnvURL, config.EnvPattern} {
		t.Setenv(k, "")
	}
}

func newServer(t *testing.T, doc []byte) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/list/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<p><a download href="/upload/list.doc">list</a></p>`))
	})
	mux.HandleFunc("/upload/list.doc", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
		_, _ = w.Write(doc)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestParseOptionCreatesStateDir(t *testing.T) {
	clearEnv(t)
	stateDir := filepath.Join(t.TempDir(), ".ex")

	opt, err := ParseOption(ArgsList{StateDir: stateDir})
	require.NoError(t, err)
	assert.DirExists(t, stateDir)
	assert.Equal(t, filepath.Join(stateDir, "cache"), opt.Document.CacheFile)
	assert.Equal(t, document.DefaultDomain, opt.Document.Domain)
	assert.True(t, opt.Progress)

	// second call on an existing directory
	_, err = ParseOption(ArgsList{StateDir: stateDir})
	require.NoError(t, err)
}

func TestParseOptionFlagsOverrideFile(t *testing.T) {
	clearEnv(t)
	stateDir := t.TempDir()
	require.NoError(t, os.WriteFile(config.FilePath(stateDir), []byte("domain: http://file.test\nurl: /file/\n"), 0644))

	opt, err := ParseOption(ArgsList{StateDir: stateDir, URL: "/flag/", Output: export.Stdout})
	require.NoError(t, err)
	assert.Equal(t, "http://file.test", opt.Document.Domain)
	assert.Equal(t, "/flag/", opt.Document.URL)
	assert.False(t, opt.Progress, "no bar when the document goes to stdout")
}

func TestParseOptionNegativeTimeout(t *testing.T) {
	clearEnv(t)
	opt, err := ParseOption(ArgsList{StateDir: t.TempDir(), Timeout: -1})
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), opt.Timeout)

	app := NewApp(opt)
	assert.Zero(t, app.net.(*core.HTTPDownload).Timeout())
}

func TestExecuteWritesOutputAndMetrics(t *testing.T) {
	clearEnv(t)
	doc := bytes.Repeat([]byte("entry\n"), 300)
	server := newServer(t, doc)
	dir := t.TempDir()
	out := filepath.Join(dir, "out", "list.doc")
	metricsFile := filepath.Join(dir, "pubdoc.prom")

	opt, err := ParseOption(ArgsList{
		StateDir:    filepath.Join(dir, "state"),
		Domain:      server.URL,
		URL:         "/list/",
		Output:      out,
		MetricsFile: metricsFile,
		NoProgress:  true,
	})
	require.NoError(t, err)

	require.NoError(t, NewApp(opt).Execute(context.Background()))

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, doc, written)

	cached, err := os.ReadFile(opt.Document.CacheFile)
	require.NoError(t, err)
	assert.Equal(t, doc, cached)

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "pubdoc_cache_misses_total 1")

	// same document again is served from the slot
	require.NoError(t, NewApp(opt).Execute(context.Background()))
	prom, err = os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "pubdoc_cache_hits_total 1")
}

func TestExecuteStdout(t *testing.T) {
	clearEnv(t)
	doc := []byte("plain document body")
	server := newServer(t, doc)

	opt, err := ParseOption(ArgsList{
		StateDir: t.TempDir(),
		Domain:   server.URL,
		URL:      "/list/",
		Output:   export.Stdout,
	})
	require.NoError(t, err)

	var stdout bytes.Buffer
	app := NewApp(opt)
	app.stdout = &stdout
	require.NoError(t, app.Execute(context.Background()))
	assert.Equal(t, doc, stdout.Bytes())
}

func TestExecuteFailureRecordsMetrics(t *testing.T) {
	clearEnv(t)
	server := newServer(t, []byte("doc"))
	dir := t.TempDir()
	metricsFile := filepath.Join(dir, "pubdoc.prom")

	opt, err := ParseOption(ArgsList{
		StateDir:    dir,
		Domain:      server.URL,
		URL:         "/list/",
		Re:          `<a nothing="([^"]+)">`,
		MetricsFile: metricsFile,
	})
	require.NoError(t, err)

	err = NewApp(opt).Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, document.KindLinkNotFound, document.KindOf(err))

	var stageErr *document.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, document.ResolvingLink, stageErr.Stage)

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "pubdoc_last_run_success 0")
	assert.Contains(t, string(prom), `kind="LinkNotFound"`)
}

func TestExecuteExportFailureRecordsMetrics(t *testing.T) {
	clearEnv(t)
	server := newServer(t, []byte("doc"))
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	metricsFile := filepath.Join(dir, "pubdoc.prom")

	opt, err := ParseOption(ArgsList{
		StateDir:    filepath.Join(dir, "state"),
		Domain:      server.URL,
		URL:         "/list/",
		Output:      filepath.Join(blocker, "out", "list.doc"),
		MetricsFile: metricsFile,
		NoProgress:  true,
	})
	require.NoError(t, err)

	err = NewApp(opt).Execute(context.Background())
	require.Error(t, err)

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "pubdoc_cache_misses_total 1")
	assert.Contains(t, string(prom), "pubdoc_downloaded_bytes_total 3")
	assert.Contains(t, string(prom), "pubdoc_last_run_success 0")
	assert.Contains(t, string(prom), `stage="exporting"`)
}
