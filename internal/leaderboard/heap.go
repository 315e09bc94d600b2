package leaderboard

import (
	"log/slog"

	"github.com/xonix-directory/internal/domain"
)

// DefaultCapacity is the number of ranked slots
const DefaultCapacity = 10

type entry struct {
	playerID string
	username string
	score    int
	level    int
}

// Board keeps the top-N players in a bounded min-heap. The root is the
// weakest ranked player so a newcomer only has to beat it.
type Board struct {
	heap     []entry
	capacity int
	sorted   []domain.LeaderboardEntry
	logger   *slog.Logger
}

// New creates an empty board holding at most capacity players
func New(capacity int, logger *slog.Logger) *Board {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Board{
		heap:     make([]entry, 0, capacity),
		capacity: capacity,
		logger:   logger,
	}
}

// Capacity returns the maximum number of ranked players
func (b *Board) Capacity() int {
	return b.capacity
}

// Len returns the number of ranked players
func (b *Board) Len() int {
	return len(b.heap)
}

// Full reports whether every slot is taken
func (b *Board) Full() bool {
	return len(b.heap) >= b.capacity
}

// Clear empties the board
func (b *Board) Clear() {
	b.heap = b.heap[:0]
	b.sorted = nil
}

// Contains reports whether a player already holds a slot
func (b *Board) Contains(playerID string) bool {
	for _, e := range b.heap {
		if e.playerID == playerID {
			return true
		}
	}
	return false
}

// Min returns the weakest ranked entry
func (b *Board) Min() (domain.LeaderboardEntry, bool) {
	if len(b.heap) == 0 {
		return domain.LeaderboardEntry{}, false
	}
	return toEntry(b.heap[0], 0), true
}

// Insert adds a player while the board has room
func (b *Board) Insert(p *domain.Player) bool {
	if b.Full() {
		return false
	}
	b.heap = append(b.heap, fromPlayer(p))
	b.siftUp(len(b.heap) - 1)
	b.sorted = nil
	return true
}

// ReplaceMin swaps the weakest entry for p when p scores strictly higher
func (b *Board) ReplaceMin(p *domain.Player) bool {
	if len(b.heap) == 0 || p.HighScore <= b.heap[0].score {
		return false
	}
	b.heap[0] = fromPlayer(p)
	b.siftDown(0)
	b.sorted = nil
	return true
}

// Offer inserts p under capacity, otherwise competes for the minimum slot.
// Zero scores and players already ranked are skipped.
func (b *Board) Offer(p *domain.Player) bool {
	if p == nil || p.HighScore == 0 || b.Contains(p.ID) {
		return false
	}
	if !b.Full() {
		return b.Insert(p)
	}
	return b.ReplaceMin(p)
}

// Rebuild clears the board and offers every player in order
func (b *Board) Rebuild(players []*domain.Player) {
	b.Clear()
	for _, p := range players {
		b.Offer(p)
	}
	b.logger.Debug("leaderboard rebuilt", "candidates", len(players), "ranked", len(b.heap))
}

// SortedDescending returns the ranked players, best first. The result is
// cached until the next mutation.
func (b *Board) SortedDescending() []domain.LeaderboardEntry {
	if b.sorted != nil {
		return b.sorted
	}

	work := make([]entry, len(b.heap))
	copy(work, b.heap)

	// selection sort; n is at most the board capacity
	for i := 0; i < len(work); i++ {
		best := i
		for j := i + 1; j < len(work); j++ {
			if work[j].score > work[best].score {
				best = j
			}
		}
		work[i], work[best] = work[best], work[i]
	}

	out := make([]domain.LeaderboardEntry, len(work))
	for i, e := range work {
		out[i] = toEntry(e, i+1)
	}
	b.sorted = out
	return out
}

func (b *Board) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if b.heap[parent].score <= b.heap[i].score {
			return
		}
		b.heap[parent], b.heap[i] = b.heap[i], b.heap[parent]
		i = parent
	}
}

func (b *Board) siftDown(i int) {
	n := len(b.heap)
	for {
		smallest := i
		left, right := 2*i+1, 2*i+2
		if left < n && b.heap[left].score < b.heap[smallest].score {
			smallest = left
		}
		if right < n && b.heap[right].score < b.heap[smallest].score {
			smallest = right
		}
		if smallest == i {
			return
		}
		b.heap[i], b.heap[smallest] = b.heap[smallest], b.heap[i]
		i = smallest
	}
}

func fromPlayer(p *domain.Player) entry {
	return entry{
		playerID: p.ID,
		username: p.Username,
		score:    p.HighScore,
		level:    p.HighScoreLevel,
	}
}

func toEntry(e entry, rank int) domain.LeaderboardEntry {
	return domain.LeaderboardEntry{
		Rank:      rank,
		PlayerID:  e.playerID,
		Username:  e.username,
		Score:     e.score,
		Level:     e.level,
		LevelName: domain.LevelName(e.level),
	}
}
