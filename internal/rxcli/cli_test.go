package rxcli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/rxconsole/internal/testutil"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, kv := range os.Environ() {
		if key, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(key, "RXCONSOLE_") {
			t.Setenv(key, "")
		}
	}
}

func newTestApp() *app {
	return &app{
		build:      BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-01"},
		isTerminal: func() bool { return false },
		stderr:     io.Discard,
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLIContext(t, context.Background(), args...)
}

func runCLIContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	cmd := newTestApp().rootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	isolateEnv(t)
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	require.Equal(t, "rxconsole 1.2.3 (commit abc123, built 2026-01-01)\n", out)
}

func TestExportWritesCSV(t *testing.T) {
	isolateEnv(t)
	b := testutil.NewBackend(t)
	dir := t.TempDir()

	out, err := runCLI(t, "export", "--api-base", b.URL(), "--limit", "20", "--out", dir)
	require.NoError(t, err)

	path := strings.TrimSpace(out)
	require.Equal(t, dir, filepath.Dir(path))
	require.True(t, strings.HasPrefix(filepath.Base(path), "rx_messages_"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, `"id","timestamp","device","msg_id","message"`, lines[0])
	require.Contains(t, lines[1], `"RX1","7","hello world"`)
	require.Equal(t, `"1","2024-01-01T00:00:00Z","RX2","6","older"`, lines[2])

	require.Equal(t, []string{"role=RX&limit=20"}, b.Queries())
}

func TestExportEmptyListWritesNothing(t *testing.T) {
	isolateEnv(t)
	b := testutil.NewBackend(t)
	b.SetMessages(`[]`)
	dir := t.TempDir()

	out, err := runCLI(t, "export", "--api-base", b.URL(), "--out", dir)
	require.NoError(t, err)
	require.Equal(t, "no messages\n", out)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestExportFailsWhenBackendFails(t *testing.T) {
	isolateEnv(t)
	b := testutil.NewBackend(t)
	b.SetStatus(http.StatusBadGateway)

	_, err := runCLI(t, "export", "--api-base", b.URL(), "--out", t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "poll cycle failed")
	require.Contains(t, err.Error(), "502")
}

func TestStatsJSON(t *testing.T) {
	isolateEnv(t)
	b := testutil.NewBackend(t)

	out, err := runCLI(t, "stats", "--json", "--api-base", b.URL())
	require.NoError(t, err)

	var report StatsReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, 2, report.Messages)
	require.Equal(t, 1, report.RatePerMinute)
	require.Equal(t, float64(1234), report.Today)
	require.Equal(t, float64(56789), report.Total)
	require.Equal(t, "hello\nworld", report.LastPreview)
	require.Equal(t, map[string]float64{"received_today": 1234, "total_received": 56789}, report.Stats)
	require.NotEmpty(t, report.CycleID)
}

func TestStatsTable(t *testing.T) {
	isolateEnv(t)
	b := testutil.NewBackend(t)

	out, err := runCLI(t, "stats", "--api-base", b.URL())
	require.NoError(t, err)
	require.Contains(t, out, "Today:")
	require.Contains(t, out, "1,234")
	require.Contains(t, out, "56,789")
	require.Contains(t, out, "received_today:")
}

func TestInvalidLimitFlagIsRejected(t *testing.T) {
	isolateEnv(t)
	b := testutil.NewBackend(t)

	_, err := runCLI(t, "stats", "--api-base", b.URL(), "--limit", "30")
	require.Error(t, err)
	require.Contains(t, err.Error(), "sync.limit")
}

func TestConfigFileAndLogFile(t *testing.T) {
	isolateEnv(t)
	b := testutil.NewBackend(t)
	dir := t.TempDir()
	logFile := filepath.Join(dir, "logs", "rxconsole.log")
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
api:
  base_url: %s
sync:
  limit: 100
export:
  dir: %s
logging:
  level: debug
  format: json
  file: %s
`, b.URL(), filepath.Join(dir, "exports"), logFile)), 0o644))

	out, err := runCLI(t, "--config", cfgPath, "export")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "exports"), filepath.Dir(strings.TrimSpace(out)))
	require.Equal(t, []string{"role=RX&limit=100"}, b.Queries())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	require.Contains(t, string(data), "csv exported")
	require.Contains(t, string(data), "loaded config file")
}

func TestTailPrintsUpdates(t *testing.T) {
	isolateEnv(t)
	b := testutil.NewBackend(t)

	out, err := runCLI(t, "tail", "--count", "1", "--api-base", b.URL())
	require.NoError(t, err)
	require.Contains(t, out, "messages=2")
	require.Contains(t, out, "rate=1/min")
	require.Contains(t, out, "today=1,234")
	require.Contains(t, out, "total=56,789")
	require.Contains(t, out, `last="hello world"`)
}

func TestRootFallsBackToTailWithoutTerminal(t *testing.T) {
	isolateEnv(t)
	b := testutil.NewBackend(t)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	out, err := runCLIContext(t, ctx, "--api-base", b.URL())
	require.NoError(t, err)
	require.Contains(t, out, "messages=2")
	require.NotEmpty(t, b.Queries())
}

func TestEnvTokenIsSentAsBearer(t *testing.T) {
	isolateEnv(t)
	b := testutil.NewBackend(t)
	t.Setenv("RXCONSOLE_API_TOKEN", "s3cret-token")

	_, err := runCLI(t, "stats", "--api-base", b.URL())
	require.NoError(t, err)

	headers := b.Headers()
	require.Len(t, headers, 2)
	for _, h := range headers {
		require.Equal(t, "Bearer s3cret-token", h.Get("Authorization"))
		require.NotEmpty(t, h.Get("X-Request-ID"))
	}
	require.Equal(t, headers[0].Get("X-Request-ID"), headers[1].Get("X-Request-ID"), "one id per cycle")
}

func TestConfigShowAndInit(t *testing.T) {
	isolateEnv(t)
	t.Setenv("RXCONSOLE_API_TOKEN", "hidden-token")

	out, err := runCLI(t, "config", "show", "--limit", "200", "--api-base", "https://rx.example.com")
	require.NoError(t, err)
	require.Contains(t, out, "base_url: https://rx.example.com")
	require.Contains(t, out, "limit: 200")
	require.NotContains(t, out, "hidden-token")

	target := filepath.Join(t.TempDir(), "rx", "config.yaml")
	out, err = runCLI(t, "config", "init", "--path", target, "--limit", "20")
	require.NoError(t, err)
	require.Equal(t, target+"\n", out)

	_, err = runCLI(t, "config", "init", "--path", target)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")

	out, err = runCLI(t, "--config", target, "config", "show")
	require.NoError(t, err)
	require.Contains(t, out, "# loaded from "+target)
	require.Contains(t, out, "limit: 20")
}
