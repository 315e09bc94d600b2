package domain

import "strings"

// DefaultThemeID is the theme assigned when a record has no usable preference
const DefaultThemeID = 1

// OpponentPC labels a single-player session in match history
const OpponentPC = "PC"

// Player is the full persisted profile of one player.
// Friends keeps insertion order. PendingRequests and MatchHistory are
// ordered most recent first.
type Player struct {
	ID              string   `json:"id"`
	Username        string   `json:"username"`
	Password        string   `json:"-"`
	RegisteredAt    string   `json:"registered_at"`
	HighScore       int      `json:"high_score"`
	HighScoreLevel  int      `json:"high_score_level"`
	PowerUps        int      `json:"power_ups"`
	PreferredTheme  int      `json:"preferred_theme"`
	Friends         []string `json:"friends"`
	PendingRequests []string `json:"pending_requests"`
	MatchHistory    []string `json:"match_history"`
}

// NewPlayer returns an empty record as created on registration
func NewPlayer(id, username, password, registeredAt string) *Player {
	return &Player{
		ID:              id,
		Username:        username,
		Password:        password,
		RegisteredAt:    registeredAt,
		HighScoreLevel:  1,
		PreferredTheme:  DefaultThemeID,
		Friends:         []string{},
		PendingRequests: []string{},
		MatchHistory:    []string{},
	}
}

// IsFriend reports whether id is in the friend list
func (p *Player) IsFriend(id string) bool {
	return indexOf(p.Friends, id) >= 0
}

// HasPendingRequest reports whether id has a request awaiting this player
func (p *Player) HasPendingRequest(id string) bool {
	return indexOf(p.PendingRequests, id) >= 0
}

// AddFriend appends id to the friend list. It returns false if already present.
func (p *Player) AddFriend(id string) bool {
	if p.IsFriend(id) {
		return false
	}
	p.Friends = append(p.Friends, id)
	return true
}

// PushRequest records a request from id as the most recent one.
// It returns false if id is already a friend or already pending.
func (p *Player) PushRequest(id string) bool {
	if p.IsFriend(id) || p.HasPendingRequest(id) {
		return false
	}
	p.PendingRequests = prepend(p.PendingRequests, id)
	return true
}

// RemoveRequest drops the first pending request from id, if any
func (p *Player) RemoveRequest(id string) bool {
	i := indexOf(p.PendingRequests, id)
	if i < 0 {
		return false
	}
	p.PendingRequests = append(p.PendingRequests[:i:i], p.PendingRequests[i+1:]...)
	return true
}

// PopRequest removes and returns the most recent pending request
func (p *Player) PopRequest() (string, bool) {
	if len(p.PendingRequests) == 0 {
		return "", false
	}
	id := p.PendingRequests[0]
	p.PendingRequests = p.PendingRequests[1:]
	return id, true
}

// PushMatch records a history line as the most recent one
func (p *Player) PushMatch(line string) {
	p.MatchHistory = prepend(p.MatchHistory, line)
}

// ApplyScore raises the high score when score beats it.
// The level only moves together with the score.
func (p *Player) ApplyScore(score, level int) bool {
	if score <= p.HighScore {
		return false
	}
	p.HighScore = score
	p.HighScoreLevel = level
	return true
}

// Clone returns a deep copy so callers can't alias the collections
func (p *Player) Clone() *Player {
	c := *p
	c.Friends = append([]string(nil), p.Friends...)
	c.PendingRequests = append([]string(nil), p.PendingRequests...)
	c.MatchHistory = append([]string(nil), p.MatchHistory...)
	return &c
}

// ValidUsername reports whether name is non-empty and free of whitespace
func ValidUsername(name string) bool {
	return name != "" && !strings.ContainsAny(name, " \t\r\n")
}

func indexOf(list []string, v string) int {
	for i, item := range list {
		if item == v {
			return i
		}
	}
	return -1
}

func prepend(list []string, v string) []string {
	out := make([]string, 0, len(list)+1)
	out = append(out, v)
	return append(out, list...)
}
