package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xonix-directory/internal/codec"
	"github.com/xonix-directory/internal/config"
	"github.com/xonix-directory/internal/domain"
)

const recordExt = ".txt"

// Repository provides flat-file access to player records and the id list.
// Nothing is cached: every Load re-reads the file.
type Repository struct {
	dataDir     string
	playersPath string
	logger      *slog.Logger
}

// NewRepository creates a repository rooted at cfg.DataDir
func NewRepository(cfg *config.StorageConfig, logger *slog.Logger) (*Repository, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &Repository{
		dataDir:     cfg.DataDir,
		playersPath: cfg.PlayersPath(),
		logger:      logger,
	}, nil
}

// DataDir returns the directory holding record files
func (r *Repository) DataDir() string {
	return r.dataDir
}

// recordPath returns the file for a player id
func (r *Repository) recordPath(id string) (string, bool) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", false
	}
	return filepath.Join(r.dataDir, id+recordExt), true
}

// Load parses one record from disk
func (r *Repository) Load(id string) (*domain.Player, error) {
	path, ok := r.recordPath(id)
	if !ok {
		return nil, fmt.Errorf("player %q: %w", id, domain.ErrNotFound)
	}

	var p *domain.Player
	err := codec.ReadFile(path, func(rd *codec.Reader) error {
		var err error
		p, err = decodePlayer(id, rd)
		return err
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("player %s: %w", id, domain.ErrNotFound)
		}
		r.logger.Warn("corrupt player record", "player_id", id, "error", err)
		return nil, fmt.Errorf("player %s: %w: %v", id, domain.ErrCorruptRecord, err)
	}
	return p, nil
}

// Save overwrites the record file in full
func (r *Repository) Save(p *domain.Player) error {
	path, ok := r.recordPath(p.ID)
	if !ok {
		return fmt.Errorf("player %q: invalid id: %w", p.ID, domain.ErrStorageWrite)
	}
	if err := codec.WriteFile(path, func(w *codec.Writer) { encodePlayer(w, p) }); err != nil {
		r.logger.Error("failed to save player record", "player_id", p.ID, "error", err)
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	return nil
}

// Exists reports whether a record file is present for id
func (r *Repository) Exists(id string) bool {
	path, ok := r.recordPath(id)
	if !ok {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// LoadIDs reads the global id list
func (r *Repository) LoadIDs() ([]string, error) {
	var ids []string
	err := codec.ReadFile(r.playersPath, func(rd *codec.Reader) error {
		var err error
		ids, err = rd.List()
		return err
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("id list: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("id list: %w: %v", domain.ErrCorruptRecord, err)
	}
	return ids, nil
}

// SaveIDs rewrites the global id list
func (r *Repository) SaveIDs(ids []string) error {
	if err := codec.WriteFile(r.playersPath, func(w *codec.Writer) { w.List(ids) }); err != nil {
		r.logger.Error("failed to save id list", "error", err)
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	return nil
}

// RecordIDs lists ids that have a record file on disk, sorted
func (r *Repository) RecordIDs() ([]string, error) {
	entries, err := os.ReadDir(r.dataDir)
	if err != nil {
		return nil, fmt.Errorf("listing data directory: %w", err)
	}
	playersFile := filepath.Base(r.playersPath)

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == playersFile || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, recordExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, recordExt))
	}
	sort.Strings(ids)
	return ids, nil
}

func encodePlayer(w *codec.Writer, p *domain.Player) {
	w.Line(p.Username)
	w.Line(p.Password)
	w.Line(p.RegisteredAt)
	w.Int(p.HighScore)
	w.Int(p.HighScoreLevel)
	w.Int(p.PowerUps)
	w.List(p.Friends)
	w.List(p.MatchHistory)
	w.List(p.PendingRequests)
	w.Int(p.PreferredTheme)
}

func decodePlayer(id string, rd *codec.Reader) (*domain.Player, error) {
	p := &domain.Player{ID: id}
	var err error

	if p.Username, err = rd.Line(); err != nil {
		return nil, err
	}
	if p.Password, err = rd.Line(); err != nil {
		return nil, err
	}
	if p.RegisteredAt, err = rd.Line(); err != nil {
		return nil, err
	}
	if p.HighScore, err = rd.Int(); err != nil {
		return nil, err
	}
	if p.HighScoreLevel, err = rd.Int(); err != nil {
		return nil, err
	}
	if p.PowerUps, err = rd.Int(); err != nil {
		return nil, err
	}
	if p.Friends, err = rd.List(); err != nil {
		return nil, err
	}
	if p.MatchHistory, err = rd.List(); err != nil {
		return nil, err
	}
	if p.PendingRequests, err = rd.List(); err != nil {
		return nil, err
	}

	// older records have no trailing preference line
	p.PreferredTheme = domain.DefaultThemeID
	if theme, ok := rd.OptionalInt(); ok && theme >= 1 {
		p.PreferredTheme = theme
	}
	return p, nil
}
