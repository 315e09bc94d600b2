package service

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xonix-directory/internal/config"
	"github.com/xonix-directory/internal/domain"
	"github.com/xonix-directory/internal/savestate"
	"github.com/xonix-directory/internal/social"
)

const goodPassword = "secret#123"

func newTestDirectory(t *testing.T) (*Directory, *config.Config) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.DataDir = t.TempDir()
	d, err := NewDirectory(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return d, cfg
}

func mustRegister(t *testing.T, d *Directory, username string) string {
	t.Helper()
	id, err := d.Register(username, goodPassword)
	require.NoError(t, err)
	return id
}

func TestRegisterAndAuthenticate(t *testing.T) {
	d, _ := newTestDirectory(t)

	id := mustRegister(t, d, "alice  ")
	assert.Equal(t, "0", id)
	assert.True(t, d.Authenticate("alice", goodPassword))
	assert.False(t, d.Authenticate("alice", "wrong#123"))
	assert.False(t, d.Authenticate("nobody", goodPassword))

	_, err := d.Register("alice", goodPassword)
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
	_, err = d.Register("bad name", goodPassword)
	assert.ErrorIs(t, err, domain.ErrInvalidUsername)
	_, err = d.Register("bob", "short")
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	p, err := d.Login("alice", goodPassword)
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	_, err = d.Login("alice", "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	assert.Equal(t, 1.0, testutil.ToFloat64(d.Metrics().Registrations))
	assert.True(t, d.UsernameExists("alice"))
	assert.True(t, d.IDExists(id))
}

func TestFindAgreesWithScanAcrossSessions(t *testing.T) {
	d, cfg := newTestDirectory(t)
	names := []string{"alice", "bob", "carol", "dave", "erin", "frank"}
	for _, n := range names {
		mustRegister(t, d, n)
	}

	reopened, err := NewDirectory(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	for _, n := range names {
		id := reopened.FindIDByUsername(n)
		require.NotEmpty(t, id)
		assert.Equal(t, reopened.registry.ScanIDByUsername(n), id)
	}
	assert.Empty(t, reopened.FindIDByUsername("zed"))
}

func TestFriendRequestAcceptRoundTrip(t *testing.T) {
	d, _ := newTestDirectory(t)
	a := mustRegister(t, d, "alice")
	b := mustRegister(t, d, "bob")

	require.NoError(t, d.SendFriendRequest(a, "bob"))
	assert.ErrorIs(t, d.SendFriendRequest(a, "bob"), domain.ErrRequestAlreadyPending)
	pending, err := d.PendingRequests(b)
	require.NoError(t, err)
	assert.Equal(t, []string{a}, pending)

	require.NoError(t, d.AcceptFriendRequest(b, a))

	aFriends, err := d.Friends(a)
	require.NoError(t, err)
	bFriends, err := d.Friends(b)
	require.NoError(t, err)
	assert.Equal(t, []string{b}, aFriends)
	assert.Equal(t, []string{a}, bFriends)

	pending, err = d.PendingRequests(b)
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.ErrorIs(t, d.SendFriendRequest(b, "alice"), domain.ErrAlreadyFriends)
	assert.ErrorIs(t, d.SendFriendRequest(a, "ghost"), domain.ErrNotFound)
	assert.ErrorIs(t, d.SendFriendRequest(a, "alice"), domain.ErrSelfRequest)
}

func TestFriendRequestReject(t *testing.T) {
	d, _ := newTestDirectory(t)
	a := mustRegister(t, d, "alice")
	b := mustRegister(t, d, "bob")

	require.NoError(t, d.SendFriendRequest(a, "bob"))
	require.NoError(t, d.RejectFriendRequest(b, a))

	pending, err := d.PendingRequests(b)
	require.NoError(t, err)
	assert.NotContains(t, pending, a)
	friends, err := d.Friends(a)
	require.NoError(t, err)
	assert.NotContains(t, friends, b)
}

func TestAcceptLatestFriendRequest(t *testing.T) {
	d, _ := newTestDirectory(t)
	a := mustRegister(t, d, "alice")
	b := mustRegister(t, d, "bob")
	c := mustRegister(t, d, "carol")

	require.NoError(t, d.SendFriendRequest(a, "carol"))
	require.NoError(t, d.SendFriendRequest(b, "carol"))

	got, err := d.AcceptLatestFriendRequest(c)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	pending, err := d.PendingRequests(c)
	require.NoError(t, err)
	assert.Equal(t, []string{a}, pending)
}

func TestRecordMatchResultNeverDowngrades(t *testing.T) {
	d, _ := newTestDirectory(t)
	id := mustRegister(t, d, "alice")

	_, err := d.RecordMatchResult(id, social.MatchResult{Opponent: domain.OpponentPC, Score: 100, Difficulty: 2, PowerUps: 3})
	require.NoError(t, err)
	p, err := d.RecordMatchResult(id, social.MatchResult{Opponent: "bob", Won: true, Score: 80, Difficulty: 4, PowerUps: 1})
	require.NoError(t, err)

	assert.Equal(t, 100, p.HighScore)
	assert.Equal(t, 2, p.HighScoreLevel)
	assert.Equal(t, 1, p.PowerUps)

	stored, err := d.LoadRecord(id)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"vs bob - WIN (Score: 80)",
		"Single Player - Score: 100 (Level 2)",
	}, stored.MatchHistory)
}

func TestRebuildAndGetTop(t *testing.T) {
	d, _ := newTestDirectory(t)
	scores := map[string]int{"alice": 30, "bob": 0, "carol": 90, "dave": 60}
	for name, score := range scores {
		id := mustRegister(t, d, name)
		if score > 0 {
			_, err := d.RecordMatchResult(id, social.MatchResult{Opponent: domain.OpponentPC, Score: score, Difficulty: 3})
			require.NoError(t, err)
		}
	}

	top := d.RebuildAndGetTop()
	require.Len(t, top, 3)
	assert.Equal(t, "carol", top[0].Username)
	assert.Equal(t, "dave", top[1].Username)
	assert.Equal(t, "alice", top[2].Username)
	assert.Equal(t, "Hard", top[0].LevelName)
}

func TestMatchmakingThroughFacade(t *testing.T) {
	d, _ := newTestDirectory(t)
	for name, score := range map[string]int{"p50": 50, "p40": 40, "p30": 30} {
		id := mustRegister(t, d, name)
		_, err := d.RecordMatchResult(id, social.MatchResult{Opponent: domain.OpponentPC, Score: score, Difficulty: 1})
		require.NoError(t, err)
	}

	for _, name := range []string{"p30", "p50", "p40"} {
		_, err := d.JoinMatchmaking(name)
		require.NoError(t, err)
	}
	_, err := d.JoinMatchmaking("p50")
	assert.ErrorIs(t, err, domain.ErrAlreadyQueued)
	assert.Equal(t, 3, d.Room().Queue().Len())

	assert.Equal(t, 1, d.CreateMatches())
	m, err := d.NextMatch()
	require.NoError(t, err)
	assert.Equal(t, "p50", m.P1Username)
	assert.Equal(t, "p40", m.P2Username)

	waiting := d.Room().WaitingList()
	require.Len(t, waiting, 1)
	assert.Equal(t, "p30", waiting[0].Username)
	assert.True(t, d.LeaveMatchmaking(waiting[0].PlayerID))
}

func TestThemePreferenceThroughFacade(t *testing.T) {
	d, _ := newTestDirectory(t)
	id := mustRegister(t, d, "alice")

	require.NoError(t, d.Catalog().SavePreference(id, 3))
	assert.Equal(t, 3, d.Catalog().LoadPreference(id))

	p, err := d.LoadRecord(id)
	require.NoError(t, err)
	assert.Equal(t, 3, p.PreferredTheme)
	assert.Equal(t, "alice", p.Username)
}

func TestPasswordCheckedAsStored(t *testing.T) {
	d, _ := newTestDirectory(t)

	_, err := d.Register("alice", "Abcdef1!      ")
	assert.ErrorIs(t, err, domain.ErrWeakPassword)
	assert.False(t, d.UsernameExists("alice"))
}

func TestLineBreaksNeverReachRecords(t *testing.T) {
	d, cfg := newTestDirectory(t)
	cfg.Auth.AllowWeakPasswords = true
	id := mustRegister(t, d, "alice")

	_, err := d.Register("carol", "x\ny")
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)
	assert.ErrorIs(t, d.ChangePassword(id, "a\rb"), domain.ErrInvalidPassword)

	_, err = d.RecordMatchResult(id, social.MatchResult{Opponent: "bob\nmallory", Score: 10})
	assert.ErrorIs(t, err, domain.ErrInvalidOpponent)

	assert.True(t, d.Authenticate("alice", goodPassword))
	p, err := d.LoadRecord(id)
	require.NoError(t, err)
	assert.Empty(t, p.MatchHistory)
}

func TestChangePassword(t *testing.T) {
	d, _ := newTestDirectory(t)
	id := mustRegister(t, d, "alice")

	assert.ErrorIs(t, d.ChangePassword(id, "weak"), domain.ErrWeakPassword)
	require.NoError(t, d.ChangePassword(id, "n3w-pass!"))
	assert.True(t, d.Authenticate("alice", "n3w-pass!"))
	assert.False(t, d.Authenticate("alice", goodPassword))
}

func TestSaveGameRequiresKnownPlayer(t *testing.T) {
	d, _ := newTestDirectory(t)
	id := mustRegister(t, d, "alice")

	st := &savestate.State{
		PlayerID: id,
		Score:    10,
		Level:    1,
		Enemies:  []savestate.Enemy{},
		Grid:     [][]int{{1, 1}},
		Tiles:    []savestate.Tile{{Row: 0, Col: 1, State: 1}},
	}
	saveID, err := d.SaveGame(st)
	require.NoError(t, err)

	ids, err := d.ListSaves(id)
	require.NoError(t, err)
	assert.Equal(t, []string{saveID}, ids)

	loaded, err := d.LoadGame(saveID)
	require.NoError(t, err)
	assert.Equal(t, 10, loaded.Score)

	_, err = d.SaveGame(&savestate.State{PlayerID: "99"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCorruptRecordIsNotFatal(t *testing.T) {
	d, cfg := newTestDirectory(t)
	id := mustRegister(t, d, "alice")
	mustRegister(t, d, "bob")
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Storage.DataDir, id+".txt"), []byte("alice\n"), 0o644))

	_, err := d.LoadRecord(id)
	assert.True(t, domain.IsNotFoundError(err))
	assert.False(t, d.Authenticate("alice", goodPassword))
	assert.Len(t, d.Players(), 1)

	report, err := d.Reconcile(false)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, report.Corrupt)
}

func TestFlushMetrics(t *testing.T) {
	d, cfg := newTestDirectory(t)
	require.NoError(t, d.FlushMetrics())

	cfg.Metrics.TextfilePath = filepath.Join(t.TempDir(), "xonix.prom")
	mustRegister(t, d, "alice")
	require.NoError(t, d.FlushMetrics())
	_, err := os.Stat(cfg.Metrics.TextfilePath)
	assert.NoError(t, err)
}
