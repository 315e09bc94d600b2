package social

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xonix-directory/internal/domain"
)

// memStore keeps cloned records so callers never share collections
type memStore struct {
	records  map[string]*domain.Player
	saves    int
	failSave map[string]bool
}

func newMemStore(ids ...string) *memStore {
	s := &memStore{records: map[string]*domain.Player{}, failSave: map[string]bool{}}
	for _, id := range ids {
		s.records[id] = domain.NewPlayer(id, "user"+id, "pw", "t")
	}
	return s
}

func (s *memStore) Load(id string) (*domain.Player, error) {
	p, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("player %s: %w", id, domain.ErrNotFound)
	}
	return p.Clone(), nil
}

func (s *memStore) Save(p *domain.Player) error {
	if s.failSave[p.ID] {
		return domain.ErrStorageWrite
	}
	s.saves++
	s.records[p.ID] = p.Clone()
	return nil
}

func newTestGraph(s *memStore) *Graph {
	return NewGraph(s, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFriendRequestRoundTrip(t *testing.T) {
	s := newMemStore("A", "B")
	g := newTestGraph(s)

	require.NoError(t, g.SendRequest("A", "B"))
	pending, err := g.PendingRequests("B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, pending)

	require.NoError(t, g.Accept("B", "A"))

	assert.Equal(t, []string{"A"}, s.records["B"].Friends)
	assert.Equal(t, []string{"B"}, s.records["A"].Friends)
	assert.NotContains(t, s.records["B"].PendingRequests, "A")
}

func TestRejectLeavesPlayersUnlinked(t *testing.T) {
	s := newMemStore("A", "B")
	g := newTestGraph(s)

	require.NoError(t, g.SendRequest("A", "B"))
	require.NoError(t, g.Reject("B", "A"))

	assert.Empty(t, s.records["A"].Friends)
	assert.Empty(t, s.records["B"].Friends)
	assert.NotContains(t, s.records["B"].PendingRequests, "A")
}

func TestDuplicateRequestIsNotStoredTwice(t *testing.T) {
	s := newMemStore("A", "B")
	g := newTestGraph(s)

	require.NoError(t, g.SendRequest("A", "B"))
	err := g.SendRequest("A", "B")
	assert.ErrorIs(t, err, domain.ErrRequestAlreadyPending)
	assert.Len(t, s.records["B"].PendingRequests, 1)

	added, err := g.AddFriendRequest("B", "A")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Len(t, s.records["B"].PendingRequests, 1)
}

func TestRequestBetweenFriendsIsRejected(t *testing.T) {
	s := newMemStore("A", "B")
	g := newTestGraph(s)
	require.NoError(t, g.SendRequest("A", "B"))
	require.NoError(t, g.Accept("B", "A"))

	assert.ErrorIs(t, g.SendRequest("B", "A"), domain.ErrAlreadyFriends)
	added, err := g.AddFriendRequest("A", "B")
	require.NoError(t, err)
	assert.False(t, added)
	assert.ErrorIs(t, g.SendRequest("A", "A"), domain.ErrSelfRequest)
	assert.True(t, domain.IsNotFoundError(g.SendRequest("A", "Z")))
}

func TestPendingRequestsMostRecentFirst(t *testing.T) {
	s := newMemStore("A", "B", "C", "D")
	g := newTestGraph(s)
	for _, from := range []string{"B", "C", "D"} {
		require.NoError(t, g.SendRequest(from, "A"))
	}
	assert.Equal(t, []string{"D", "C", "B"}, s.records["A"].PendingRequests)

	requester, err := g.AcceptLatest("A")
	require.NoError(t, err)
	assert.Equal(t, "D", requester)
	assert.Equal(t, []string{"C", "B"}, s.records["A"].PendingRequests)
	assert.Equal(t, []string{"D"}, s.records["A"].Friends)
	assert.Equal(t, []string{"A"}, s.records["D"].Friends)
}

func TestAcceptLatestWithNothingPending(t *testing.T) {
	g := newTestGraph(newMemStore("A"))
	_, err := g.AcceptLatest("A")
	assert.ErrorIs(t, err, domain.ErrEmpty)
}

func TestAcceptWithoutRequestStillLinks(t *testing.T) {
	s := newMemStore("A", "B")
	g := newTestGraph(s)

	require.NoError(t, g.Accept("B", "A"))
	require.NoError(t, g.Accept("B", "A"))

	assert.Equal(t, []string{"A"}, s.records["B"].Friends)
	assert.Equal(t, []string{"B"}, s.records["A"].Friends)
}

func TestAcceptPartialFailureIsOneSided(t *testing.T) {
	s := newMemStore("A", "B")
	g := newTestGraph(s)
	require.NoError(t, g.SendRequest("A", "B"))
	s.failSave["A"] = true

	err := g.Accept("B", "A")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStorageWrite))

	assert.Equal(t, []string{"A"}, s.records["B"].Friends)
	assert.Empty(t, s.records["A"].Friends)
}

func TestRecordMatchResultNeverDowngrades(t *testing.T) {
	s := newMemStore("A")
	g := newTestGraph(s)

	p, err := g.RecordMatchResult("A", MatchResult{Opponent: domain.OpponentPC, Score: 100, PowerUps: 3, Difficulty: 2})
	require.NoError(t, err)
	assert.Equal(t, 100, p.HighScore)
	assert.Equal(t, 2, p.HighScoreLevel)

	p, err = g.RecordMatchResult("A", MatchResult{Opponent: "bob", Won: false, Score: 80, PowerUps: 1, Difficulty: 4})
	require.NoError(t, err)
	assert.Equal(t, 100, p.HighScore)
	assert.Equal(t, 2, p.HighScoreLevel)
	assert.Equal(t, 1, p.PowerUps)

	assert.Equal(t, []string{
		"vs bob - LOSE (Score: 80)",
		"Single Player - Score: 100 (Level 2)",
	}, s.records["A"].MatchHistory)
}

func TestRecordMatchResultRejectsBadOpponent(t *testing.T) {
	s := newMemStore("A")
	g := newTestGraph(s)

	for _, opponent := range []string{"bob\nmallory", "bob\r", "two words", ""} {
		_, err := g.RecordMatchResult("A", MatchResult{Opponent: opponent, Score: 10})
		assert.ErrorIs(t, err, domain.ErrInvalidOpponent, "%q", opponent)
	}
	assert.Empty(t, s.records["A"].MatchHistory)
	assert.Zero(t, s.records["A"].HighScore)
}

func TestFormatHistory(t *testing.T) {
	assert.Equal(t, "vs eve - WIN (Score: 55)", FormatHistory(MatchResult{Opponent: "eve", Won: true, Score: 55}))
	assert.Equal(t, "Single Player - Score: 10 (Level 5)", FormatHistory(MatchResult{Opponent: "PC", Score: 10, Difficulty: 5}))
}
