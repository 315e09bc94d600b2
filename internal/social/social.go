// Package social implements friend requests, friendships and match history
// on top of the player records that own them. Every operation is one
// load-mutate-save per record it touches.
package social

import (
	"fmt"
	"log/slog"

	"github.com/xonix-directory/internal/domain"
)

// RecordStore loads and saves whole player records
type RecordStore interface {
	Load(id string) (*domain.Player, error)
	Save(p *domain.Player) error
}

// Graph applies social and history mutations to records
type Graph struct {
	store  RecordStore
	logger *slog.Logger
}

// NewGraph creates a graph backed by store
func NewGraph(store RecordStore, logger *slog.Logger) *Graph {
	return &Graph{store: store, logger: logger}
}

// AddFriendRequest records requesterID as pending on owner's record.
// It is a no-op returning false when requesterID is already a friend or
// already pending.
func (g *Graph) AddFriendRequest(ownerID, requesterID string) (bool, error) {
	owner, err := g.store.Load(ownerID)
	if err != nil {
		return false, err
	}
	if !owner.PushRequest(requesterID) {
		return false, nil
	}
	if err := g.store.Save(owner); err != nil {
		return false, err
	}
	return true, nil
}

// SendRequest validates both players and files a request from sender on
// receiver's record
func (g *Graph) SendRequest(senderID, receiverID string) error {
	if senderID == receiverID {
		return domain.ErrSelfRequest
	}
	sender, err := g.store.Load(senderID)
	if err != nil {
		return fmt.Errorf("loading sender: %w", err)
	}
	receiver, err := g.store.Load(receiverID)
	if err != nil {
		return fmt.Errorf("loading receiver: %w", err)
	}

	if sender.IsFriend(receiverID) || receiver.IsFriend(senderID) {
		return domain.ErrAlreadyFriends
	}
	if receiver.HasPendingRequest(senderID) {
		return domain.ErrRequestAlreadyPending
	}

	receiver.PushRequest(senderID)
	if err := g.store.Save(receiver); err != nil {
		return err
	}
	g.logger.Info("friend request sent", "sender_id", senderID, "receiver_id", receiverID)
	return nil
}

// Accept removes the pending request and links both players.
// The two records are saved separately; a failure between the saves leaves
// a one-sided friendship that is reported but not repaired.
func (g *Graph) Accept(acceptorID, requesterID string) error {
	acceptor, err := g.store.Load(acceptorID)
	if err != nil {
		return fmt.Errorf("loading acceptor: %w", err)
	}
	acceptor.RemoveRequest(requesterID)
	acceptor.AddFriend(requesterID)
	if err := g.store.Save(acceptor); err != nil {
		return err
	}

	requester, err := g.store.Load(requesterID)
	if err != nil {
		g.logger.Warn("friendship left one-sided", "acceptor_id", acceptorID, "requester_id", requesterID, "error", err)
		return fmt.Errorf("loading requester: %w", err)
	}
	requester.AddFriend(acceptorID)
	if err := g.store.Save(requester); err != nil {
		g.logger.Warn("friendship left one-sided", "acceptor_id", acceptorID, "requester_id", requesterID, "error", err)
		return err
	}

	g.logger.Info("friend request accepted", "acceptor_id", acceptorID, "requester_id", requesterID)
	return nil
}

// AcceptLatest accepts the most recent pending request on acceptor's record
func (g *Graph) AcceptLatest(acceptorID string) (string, error) {
	acceptor, err := g.store.Load(acceptorID)
	if err != nil {
		return "", err
	}
	requesterID, ok := acceptor.PopRequest()
	if !ok {
		return "", fmt.Errorf("pending requests: %w", domain.ErrEmpty)
	}
	return requesterID, g.Accept(acceptorID, requesterID)
}

// Reject drops requesterID from rejecter's pending requests only
func (g *Graph) Reject(rejecterID, requesterID string) error {
	rejecter, err := g.store.Load(rejecterID)
	if err != nil {
		return err
	}
	rejecter.RemoveRequest(requesterID)
	return g.store.Save(rejecter)
}

// Friends returns the friend ids of playerID in insertion order
func (g *Graph) Friends(playerID string) ([]string, error) {
	p, err := g.store.Load(playerID)
	if err != nil {
		return nil, err
	}
	return p.Friends, nil
}

// PendingRequests returns requester ids, most recent first
func (g *Graph) PendingRequests(playerID string) ([]string, error) {
	p, err := g.store.Load(playerID)
	if err != nil {
		return nil, err
	}
	return p.PendingRequests, nil
}

// MatchResult describes one finished game from the owner's side
type MatchResult struct {
	Opponent   string
	Won        bool
	Score      int
	PowerUps   int
	Difficulty int
}

// FormatHistory renders the history line for r
func FormatHistory(r MatchResult) string {
	if r.Opponent == domain.OpponentPC {
		return fmt.Sprintf("Single Player - Score: %d (Level %d)", r.Score, r.Difficulty)
	}
	outcome := "LOSE"
	if r.Won {
		outcome = "WIN"
	}
	return fmt.Sprintf("vs %s - %s (Score: %d)", r.Opponent, outcome, r.Score)
}

// RecordMatchResult prepends a history line, raises the high score when
// beaten, overwrites power-ups and saves
func (g *Graph) RecordMatchResult(ownerID string, r MatchResult) (*domain.Player, error) {
	if r.Opponent != domain.OpponentPC && !domain.ValidUsername(r.Opponent) {
		return nil, fmt.Errorf("opponent %q: %w", r.Opponent, domain.ErrInvalidOpponent)
	}
	if r.Difficulty == 0 {
		r.Difficulty = 1
	}
	owner, err := g.store.Load(ownerID)
	if err != nil {
		return nil, err
	}

	owner.PushMatch(FormatHistory(r))
	if owner.ApplyScore(r.Score, r.Difficulty) {
		g.logger.Info("new high score", "player_id", ownerID, "score", r.Score, "level", r.Difficulty)
	}
	owner.PowerUps = r.PowerUps

	if err := g.store.Save(owner); err != nil {
		return owner, err
	}
	return owner, nil
}
