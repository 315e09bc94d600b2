package matchmaking

import (
	"fmt"
	"log/slog"

	"github.com/xonix-directory/internal/domain"
)

// PlayerSource resolves the players allowed into the room
type PlayerSource interface {
	FindIDByUsername(username string) string
	Authenticate(username, password string) bool
	Load(id string) (*domain.Player, error)
}

// Room pairs waiting players by skill. Matches wait in the buffer until
// NextMatch hands them out.
type Room struct {
	players PlayerSource
	queue   *WaitingQueue
	buffer  *MatchBuffer
	logger  *slog.Logger
}

// NewRoom creates an empty game room
func NewRoom(players PlayerSource, queueCapacity, bufferCapacity int, logger *slog.Logger) *Room {
	return &Room{
		players: players,
		queue:   NewWaitingQueue(queueCapacity),
		buffer:  NewMatchBuffer(bufferCapacity),
		logger:  logger,
	}
}

// Queue returns the waiting queue
func (r *Room) Queue() *WaitingQueue {
	return r.queue
}

// Buffer returns the match buffer
func (r *Room) Buffer() *MatchBuffer {
	return r.buffer
}

// Join queues a registered player using their current high score
func (r *Room) Join(username string) (domain.QueuedPlayer, error) {
	id := r.players.FindIDByUsername(username)
	if id == "" {
		return domain.QueuedPlayer{}, fmt.Errorf("player %q: %w", username, domain.ErrNotFound)
	}
	p, err := r.players.Load(id)
	if err != nil {
		return domain.QueuedPlayer{}, fmt.Errorf("loading player %q: %w", username, err)
	}

	qp := domain.QueuedPlayer{PlayerID: p.ID, Score: p.HighScore, Username: p.Username}
	if err := r.queue.Join(qp); err != nil {
		return domain.QueuedPlayer{}, err
	}
	r.logger.Info("player joined game room", "player_id", qp.PlayerID, "score", qp.Score, "waiting", r.queue.Len())
	return qp, nil
}

// JoinWithCredentials authenticates before queueing
func (r *Room) JoinWithCredentials(username, password string) (domain.QueuedPlayer, error) {
	if !r.players.Authenticate(username, password) {
		return domain.QueuedPlayer{}, domain.ErrInvalidCredentials
	}
	return r.Join(username)
}

// Leave removes a waiting player by id
func (r *Room) Leave(playerID string) bool {
	if !r.queue.Leave(playerID) {
		return false
	}
	r.logger.Info("player left game room", "player_id", playerID, "waiting", r.queue.Len())
	return true
}

// CreateMatches repeatedly pairs the two strongest waiting players and
// returns how many matches were created. An odd player keeps waiting, and
// pairing stops early when the buffer is full so no pair is dropped.
func (r *Room) CreateMatches() int {
	created := 0
	for r.queue.Len() >= 2 && !r.buffer.Full() {
		a, _ := r.queue.ExtractTop()
		b, _ := r.queue.ExtractTop()
		m := domain.NewMatch(a, b)
		// buffer has room, checked by the loop condition
		_ = r.buffer.Enqueue(m)
		created++
		r.logger.Info("match created",
			"match_id", m.ID,
			"p1", m.P1Username, "p1_score", m.P1Score,
			"p2", m.P2Username, "p2_score", m.P2Score,
		)
	}
	if r.queue.Len() >= 2 {
		r.logger.Warn("match buffer full, players left waiting", "waiting", r.queue.Len())
	}
	return created
}

// NextMatch hands out the oldest created match
func (r *Room) NextMatch() (domain.Match, error) {
	return r.buffer.Dequeue()
}

// WaitingList returns the waiting players, strongest first
func (r *Room) WaitingList() []domain.QueuedPlayer {
	scratch := &WaitingQueue{heap: r.queue.Players(), capacity: r.queue.capacity}
	out := make([]domain.QueuedPlayer, 0, scratch.Len())
	for scratch.Len() > 0 {
		p, _ := scratch.ExtractTop()
		out = append(out, p)
	}
	return out
}

// Matches returns the pending matches, oldest first
func (r *Room) Matches() []domain.Match {
	return r.buffer.Matches()
}

// ClearAll empties the queue and the buffer
func (r *Room) ClearAll() {
	r.queue.Clear()
	r.buffer.Clear()
	r.logger.Info("game room cleared")
}
