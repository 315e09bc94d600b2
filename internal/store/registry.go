package store

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xonix-directory/internal/auth"
	"github.com/xonix-directory/internal/domain"
	"github.com/xonix-directory/internal/index"
)

// Registry keeps the id list and the username index consistent with the
// record files. It is owned by one session and rebuilt from disk at startup.
type Registry struct {
	repo   *Repository
	index  *index.UsernameIndex
	creds  auth.Credentials
	ids    []string
	logger *slog.Logger
}

// OpenRegistry loads the id list and builds the username index.
// An unreadable id list degrades to an empty directory.
func OpenRegistry(repo *Repository, idx *index.UsernameIndex, creds auth.Credentials, logger *slog.Logger) *Registry {
	r := &Registry{
		repo:   repo,
		index:  idx,
		creds:  creds,
		logger: logger,
	}

	ids, err := repo.LoadIDs()
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Info("no id list found, starting with an empty directory")
		} else {
			logger.Warn("failed to read id list, starting with an empty directory", "error", err)
		}
		ids = nil
	}
	r.ids = ids
	r.rebuildIndex()
	return r
}

// rebuildIndex maps every loadable record's username to its id
func (r *Registry) rebuildIndex() {
	r.index.Clear()
	for i, id := range r.ids {
		p, err := r.repo.Load(id)
		if err != nil {
			r.logger.Warn("skipping player while building index", "player_id", id, "error", err)
			continue
		}
		r.index.Insert(p.Username, p.ID, i)
	}
	r.logger.Debug("username index built", "players", len(r.ids), "indexed", r.index.Len())
}

// Repository returns the underlying record store
func (r *Registry) Repository() *Repository {
	return r.repo
}

// Index returns the username index
func (r *Registry) Index() *index.UsernameIndex {
	return r.index
}

// Load reads a player record
func (r *Registry) Load(id string) (*domain.Player, error) {
	return r.repo.Load(id)
}

// IDs returns a copy of the known player ids in registration order
func (r *Registry) IDs() []string {
	return append([]string(nil), r.ids...)
}

// Count returns the number of known player ids
func (r *Registry) Count() int {
	return len(r.ids)
}

// IDExists reports whether id is in the id list
func (r *Registry) IDExists(id string) bool {
	for _, known := range r.ids {
		if known == id {
			return true
		}
	}
	return false
}

// FindIDByUsername resolves username through the index, falling back to a
// scan of every record when the index misses. A scan hit re-indexes the
// username.
func (r *Registry) FindIDByUsername(username string) string {
	if id := r.index.PlayerID(username); id != "" {
		return id
	}

	i, p := r.scan(username)
	if p == nil {
		return ""
	}
	r.logger.Warn("username missing from index, healed by scan", "username", username, "player_id", p.ID)
	r.index.Insert(p.Username, p.ID, i)
	return p.ID
}

// ScanIDByUsername resolves username by reading every record
func (r *Registry) ScanIDByUsername(username string) string {
	_, p := r.scan(username)
	if p == nil {
		return ""
	}
	return p.ID
}

func (r *Registry) scan(username string) (int, *domain.Player) {
	for i, id := range r.ids {
		p, err := r.repo.Load(id)
		if err != nil {
			continue
		}
		if p.Username == username {
			return i, p
		}
	}
	return -1, nil
}

// UsernameExists reports whether any record carries username
func (r *Registry) UsernameExists(username string) bool {
	return r.FindIDByUsername(username) != ""
}

// Authenticate loads the record for username and checks password
func (r *Registry) Authenticate(username, password string) bool {
	id := r.FindIDByUsername(username)
	if id == "" {
		return false
	}
	p, err := r.repo.Load(id)
	if err != nil {
		return false
	}
	return r.creds.Verify(p.Password, password)
}

// NextID returns max numeric id + 1. Non-digit characters in ids are
// ignored so hand-edited lists with gaps never collide.
func (r *Registry) NextID() string {
	next := 0
	for _, id := range r.ids {
		n := 0
		for i := 0; i < len(id); i++ {
			if c := id[i]; c >= '0' && c <= '9' {
				n = n*10 + int(c-'0')
			}
		}
		if n >= next {
			next = n + 1
		}
	}
	return strconv.Itoa(next)
}

// Register creates and persists an empty record for username.
// The record is written before the index and id list are touched.
func (r *Registry) Register(username, password, registeredAt string) (string, error) {
	if !domain.ValidUsername(username) {
		return "", domain.ErrInvalidUsername
	}
	if err := checkStorable(password); err != nil {
		return "", err
	}
	if r.index.Exists(username) {
		return "", domain.ErrDuplicateUsername
	}

	stored, err := r.creds.Hash(password)
	if err != nil {
		return "", err
	}

	id := r.NextID()
	p := domain.NewPlayer(id, username, stored, registeredAt)
	if err := r.repo.Save(p); err != nil {
		return "", fmt.Errorf("registering %s: %w", username, err)
	}

	r.ids = append(r.ids, id)
	r.index.Insert(username, id, len(r.ids)-1)

	if err := r.repo.SaveIDs(r.ids); err != nil {
		return id, fmt.Errorf("registering %s: %w", username, err)
	}

	r.logger.Info("player registered", "player_id", id, "username", username)
	return id, nil
}

// ChangePassword replaces the stored credential for id
func (r *Registry) ChangePassword(id, password string) error {
	if err := checkStorable(password); err != nil {
		return err
	}
	p, err := r.repo.Load(id)
	if err != nil {
		return err
	}
	stored, err := r.creds.Hash(password)
	if err != nil {
		return err
	}
	p.Password = stored
	return r.repo.Save(p)
}

// checkStorable rejects passwords that cannot be kept on one record line
func checkStorable(password string) error {
	if strings.ContainsAny(password, "\r\n") {
		return domain.ErrInvalidPassword
	}
	return nil
}

// Adopt appends ids that have record files but are missing from the id
// list, indexes them and persists the list
func (r *Registry) Adopt(ids []string) error {
	added := 0
	for _, id := range ids {
		if r.IDExists(id) {
			continue
		}
		p, err := r.repo.Load(id)
		if err != nil {
			r.logger.Warn("cannot adopt player", "player_id", id, "error", err)
			continue
		}
		r.ids = append(r.ids, id)
		r.index.Insert(p.Username, p.ID, len(r.ids)-1)
		added++
	}
	if added == 0 {
		return nil
	}
	r.logger.Info("adopted orphan records into id list", "count", added)
	return r.repo.SaveIDs(r.ids)
}
