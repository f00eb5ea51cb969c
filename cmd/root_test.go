package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListPrintsEnabledMonitors(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
monitors:
  arizmendi:
    enabled: false
  standard_fare:
    url: https://example.com/lunch
`)
	out, err := execute(t, "list", "--config", path)
	require.NoError(t, err)
	require.Contains(t, out, "StandardFareMonitor")
	require.Contains(t, out, "https://example.com/lunch")
	require.NotContains(t, out, "ArizmendiMonitor")
}

func TestRunWritesErrorLinesToStderr(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(http.NotFound))
	t.Cleanup(srv.Close)

	path := writeConfig(t, `
logging:
  development: false
monitors:
  arizmendi:
    enabled: false
  standard_fare:
    url: `+srv.URL+`
`)
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"run", "--config", path})

	require.NoError(t, cmd.Execute())
	require.Empty(t, stdout.String())
	require.Contains(t, stderr.String(), "StandardFareMonitor - [ERROR]: Response from url:"+srv.URL+" was not successful.\n")
}

func TestInvalidConfigFails(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
scheduler:
  max_workers: 0
`)
	_, err := execute(t, "list", "--config", path)
	require.ErrorContains(t, err, "scheduler.max_workers")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}
