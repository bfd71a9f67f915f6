package canwork

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/canwork/testhelpers"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const fixtureSnapshot = `{
  "1": {"depotFile": "//proj/Content/Maps/L_Lobby.umap", "user": "alice"},
  "2": {"depotFile": "//proj/Content/Maps/L_Lobby.umap", "user": "bob"},
  "3": {"depotFile": "//proj/Source/Game/Player.cpp", "user": "alice"},
  "4": {"depotFile": "//proj/Source/Game/Player.h"}
}`

func newTestChecker(t *testing.T, content string) (*Checker, string) {
	t.Helper()
	b := testhelpers.NewTestConfigBuilder(t)
	if content != "" {
		b.WithSnapshot(content)
	}
	cfg := b.Build()
	return NewFromConfig(cfg), cfg.Snapshot.File
}

func TestCheck_Held(t *testing.T) {
	c, path := newTestChecker(t, fixtureSnapshot)

	r := c.Check(context.Background(), "  L_Lobby.umap ")

	assert.Equal(t, StatusHeld, r.Status)
	assert.False(t, r.CanWork())
	assert.Equal(t, "L_Lobby.umap", r.Query)
	assert.Equal(t, path, r.SnapshotPath)
	assert.Equal(t, 4, r.Entries)
	assert.Equal(t, []HolderPaths{
		{Holder: "alice", Paths: []string{"Content/Maps/L_Lobby.umap"}},
		{Holder: "bob", Paths: []string{"Content/Maps/L_Lobby.umap"}},
	}, r.Holders)
	assert.Empty(t, r.Suggestions)
}

func TestCheck_MissingUserReportedAsUnknown(t *testing.T) {
	c, _ := newTestChecker(t, fixtureSnapshot)

	r := c.Check(context.Background(), "Player.h")

	require.Equal(t, StatusHeld, r.Status)
	assert.Equal(t, []HolderPaths{{Holder: "unknown", Paths: []string{"Source/Game/Player.h"}}}, r.Holders)
}

func TestCheck_NonStringWatcherFieldsStillHeld(t *testing.T) {
	c, _ := newTestChecker(t, `{
  "1": {"depotFile": "//proj/Assets/foo.txt", "user": "alice", "change": 12345, "action": 1}
}`)

	r := c.Check(context.Background(), "foo.txt")

	assert.Equal(t, StatusHeld, r.Status)
	assert.False(t, r.CanWork())
	assert.Equal(t, []HolderPaths{{Holder: "alice", Paths: []string{"Assets/foo.txt"}}}, r.Holders)
}

func TestCheck_NoMatchWithSuggestions(t *testing.T) {
	c, _ := newTestChecker(t, fixtureSnapshot)

	r := c.Check(context.Background(), "L_Loby.umap")

	assert.Equal(t, StatusNoMatch, r.Status)
	assert.True(t, r.CanWork())
	assert.Empty(t, r.Holders)
	require.NotEmpty(t, r.Suggestions)
	assert.Equal(t, "Content/Maps/L_Lobby.umap", r.Suggestions[0].Path)
}

func TestCheck_IgnoredPathsAreNotHeld(t *testing.T) {
	cfg := testhelpers.NewTestConfigBuilder(t).
		WithIgnore("source/**/*.h").
		WithSnapshot(fixtureSnapshot).
		Build()
	c := NewFromConfig(cfg)
	ctx := context.Background()

	assert.Equal(t, StatusNoMatch, c.Check(ctx, "Player.h").Status)
	assert.Equal(t, StatusHeld, c.Check(ctx, "Player.cpp").Status)

	r := c.Check(ctx, "Player")
	require.Equal(t, StatusHeld, r.Status)
	assert.Equal(t, []HolderPaths{{Holder: "alice", Paths: []string{"Source/Game/Player.cpp"}}}, r.Holders)
}

func TestCheck_SourceUnavailable(t *testing.T) {
	c, path := newTestChecker(t, "")

	r := c.Check(context.Background(), "L_Lobby.umap")

	assert.Equal(t, StatusSourceUnavailable, r.Status)
	assert.Equal(t, path, r.SnapshotPath)
	assert.Zero(t, r.Entries)
}

func TestCheck_MalformedDegradesToNoMatch(t *testing.T) {
	c, _ := newTestChecker(t, "[1, 2, 3]")

	r := c.Check(context.Background(), "L_Lobby.umap")

	assert.Equal(t, StatusNoMatch, r.Status)
	assert.Empty(t, r.Holders)
}

func TestCheck_SeesSnapshotUpdates(t *testing.T) {
	c, path := newTestChecker(t, `{}`)
	ctx := context.Background()

	assert.Equal(t, StatusNoMatch, c.Check(ctx, "Player.cpp").Status)

	testhelpers.WriteSnapshot(t, path, fixtureSnapshot)
	assert.Equal(t, StatusHeld, c.Check(ctx, "Player.cpp").Status)

	require.NoError(t, os.Remove(path))
	assert.Equal(t, StatusSourceUnavailable, c.Check(ctx, "Player.cpp").Status)
}

func TestCheck_ConcurrentQueriesAreIndependent(t *testing.T) {
	c, _ := newTestChecker(t, fixtureSnapshot)

	queries := []string{"L_Lobby.umap", "Player.cpp", "nothing.txt", "Player.h"}
	reports := make([]*Report, 64)

	g, ctx := errgroup.WithContext(context.Background())
	for i := range reports {
		g.Go(func() error {
			reports[i] = c.Check(ctx, queries[i%len(queries)])
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for i, r := range reports {
		want := c.Check(context.Background(), queries[i%len(queries)])
		assert.Equal(t, want.Status, r.Status, "query %d", i)
		assert.Equal(t, want.Holders, r.Holders, "query %d", i)
	}
}

func TestCheck_CanceledContext(t *testing.T) {
	c, _ := newTestChecker(t, fixtureSnapshot)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := c.Check(ctx, "L_Lobby.umap")
	assert.Equal(t, StatusNoMatch, r.Status)
}

func TestReport_JSON(t *testing.T) {
	c, _ := newTestChecker(t, fixtureSnapshot)

	data, err := json.Marshal(c.Check(context.Background(), "Player.cpp"))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "held", decoded["status"])
	assert.Equal(t, "Player.cpp", decoded["query"])
	assert.NotContains(t, decoded, "suggestions")
}

func TestOutcome_String(t *testing.T) {
	for o, want := range map[Outcome]string{
		StatusNoMatch:           "can_work",
		StatusHeld:              "held",
		StatusSourceUnavailable: "snapshot_unavailable",
		Outcome(42):             "unknown",
	} {
		assert.Equal(t, want, o.String(), fmt.Sprintf("outcome %d", int(o)))
	}
}
