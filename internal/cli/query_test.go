package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCommand executes the root command with args and returns its combined
// output. Every call builds a fresh command tree, so state only survives
// through the data directory, the same way separate process runs would.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// mustRun executes the root command and fails the test on error.
func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCommand(t, args...)
	require.NoError(t, err)
	return out
}

// seedEvents creates the events table with three rows under dir.
func seedEvents(t *testing.T, dir string) {
	t.Helper()
	mustRun(t, "query", "--data-dir", dir, "CREATE TABLE events (id Int64, name String, value Float64) KEY id")
	mustRun(t, "query", "--data-dir", dir, "INSERT INTO events VALUES (1, 'alpha', 1.5), (2, 'beta', 2.5), (3, 'gamma', 10)")
}

func TestQueryCommandRoundTrip(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, "query", "--data-dir", dir, "CREATE TABLE events (id Int64, name String, value Float64) KEY id")
	assert.Equal(t, "OK\n", out)

	out = mustRun(t, "query", "--data-dir", dir, "INSERT INTO events VALUES (1, 'alpha', 1.5), (2, 'beta', 2.5), (3, 'gamma', 10)")
	assert.Equal(t, "OK. 3 rows inserted.\n", out)

	out = mustRun(t, "query", "--data-dir", dir, "SELECT id, name FROM events WHERE id >= 2")
	assert.Equal(t, "id\tname\n2\tbeta\n3\tgamma\n", out)
}

func TestQueryCommandGolden(t *testing.T) {
	dir := t.TempDir()
	seedEvents(t, dir)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	pretty := mustRun(t, "query", "--data-dir", dir, "--format", "pretty", "SELECT * FROM events")
	g.Assert(t, "query_pretty", []byte(pretty))

	jsonOut := mustRun(t, "query", "--data-dir", dir, "--format", "json", "SELECT * FROM events")
	g.Assert(t, "query_json", []byte(jsonOut))
}

func TestQueryCommandErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := runCommand(t, "query", "--data-dir", dir, "SELEC * FROM x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse error")

	_, err = runCommand(t, "query", "--data-dir", dir, "SELECT * FROM missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table missing not found")
}

func TestSegmentsCommand(t *testing.T) {
	dir := t.TempDir()
	seedEvents(t, dir)
	mustRun(t, "query", "--data-dir", dir, "INSERT INTO events VALUES (4, 'delta', 4.5)")

	out := mustRun(t, "segments", "--data-dir", dir)

	var tables []tableSegmentsJSON
	require.NoError(t, json.Unmarshal([]byte(out), &tables))
	require.Len(t, tables, 1)

	events := tables[0]
	assert.Equal(t, "events", events.Table)
	assert.Equal(t, "id", events.Key)
	assert.Equal(t, uint64(4), events.Rows)
	require.Len(t, events.Segments, 2)

	first := events.Segments[0]
	assert.Equal(t, uint64(3), first.Rows)
	assert.Equal(t, 1, first.Blocks)
	assert.Equal(t, "1", first.MinKey)
	assert.Equal(t, "3", first.MaxKey)
	assert.Greater(t, first.SizeBytes, uint64(0))

	second := events.Segments[1]
	assert.Equal(t, "4", second.MinKey)
	assert.Equal(t, "4", second.MaxKey)
}

func TestSegmentsCommandUnknownTable(t *testing.T) {
	dir := t.TempDir()
	seedEvents(t, dir)

	_, err := runCommand(t, "segments", "--data-dir", dir, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table missing not found")
}

func TestCompactCommand(t *testing.T) {
	dir := t.TempDir()
	seedEvents(t, dir)
	mustRun(t, "query", "--data-dir", dir, "INSERT INTO events VALUES (4, 'delta', 4.5)")

	out := mustRun(t, "compact", "--data-dir", dir)
	assert.Equal(t, "events: merged 2 segments (4 rows)\n", out)

	out = mustRun(t, "compact", "--data-dir", dir)
	assert.Equal(t, "events: nothing to compact\n", out)

	out = mustRun(t, "query", "--data-dir", dir, "SELECT id FROM events")
	assert.Equal(t, "id\n1\n2\n3\n4\n", out)
}

func TestServeCommandShutdown(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"serve", "--data-dir", dir, "--listen", "127.0.0.1:0"})

	done := make(chan error, 1)
	go func() {
		done <- cmd.ExecuteContext(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not stop after context cancellation")
	}
}
