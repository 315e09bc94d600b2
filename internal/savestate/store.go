package savestate

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xonix-directory/internal/codec"
	"github.com/xonix-directory/internal/config"
	"github.com/xonix-directory/internal/domain"
)

const (
	saveExt         = ".sav"
	idTimeLayout    = "20060102_150405"
	stampTimeLayout = "2006-01-02 15:04:05"
)

// Store keeps save files and a per-player index of save ids
type Store struct {
	dir      string
	maxSaves int
	now      func() time.Time
	logger   *slog.Logger
}

// NewStore creates a store under cfg's saves directory
func NewStore(cfg *config.StorageConfig, logger *slog.Logger) (*Store, error) {
	dir := cfg.SavesPath()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating saves directory: %w", err)
	}
	return &Store{
		dir:      dir,
		maxSaves: cfg.MaxSaves,
		now:      time.Now,
		logger:   logger,
	}, nil
}

// NewSaveID builds the id for a save made by playerID at t
func NewSaveID(playerID string, t time.Time) string {
	return playerID + "_" + t.Format(idTimeLayout)
}

func validName(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}

func (s *Store) savePath(saveID string) string {
	return filepath.Join(s.dir, saveID+saveExt)
}

func (s *Store) indexPath(playerID string) string {
	return filepath.Join(s.dir, "index_"+playerID+".txt")
}

// Save writes st, filling in the save id and timestamp when empty, and
// records the id in the player's save index
func (s *Store) Save(st *State) (string, error) {
	if !validName(st.PlayerID) {
		return "", fmt.Errorf("player %q: %w", st.PlayerID, domain.ErrInvalidSave)
	}
	now := s.now()
	if st.SaveID == "" {
		st.SaveID = NewSaveID(st.PlayerID, now)
	}
	if !validName(st.SaveID) {
		return "", fmt.Errorf("save %q: %w", st.SaveID, domain.ErrInvalidSave)
	}
	if st.Timestamp == "" {
		st.Timestamp = now.Format(stampTimeLayout)
	}

	if err := codec.WriteFile(s.savePath(st.SaveID), func(w *codec.Writer) { encodeState(w, st) }); err != nil {
		s.logger.Error("failed to write save", "save_id", st.SaveID, "error", err)
		return "", fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}

	if err := s.addToIndex(st.PlayerID, st.SaveID); err != nil {
		s.logger.Warn("save written but index not updated", "save_id", st.SaveID, "error", err)
		return st.SaveID, err
	}

	s.logger.Info("game saved", "save_id", st.SaveID, "player_id", st.PlayerID, "tiles", len(st.Tiles))
	return st.SaveID, nil
}

// Load reads a save by id
func (s *Store) Load(saveID string) (*State, error) {
	if !validName(saveID) {
		return nil, fmt.Errorf("save %q: %w", saveID, domain.ErrNotFound)
	}

	var st *State
	err := codec.ReadFile(s.savePath(saveID), func(rd *codec.Reader) error {
		var err error
		st, err = decodeState(rd)
		return err
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("save %s: %w", saveID, domain.ErrNotFound)
		}
		if errors.Is(err, domain.ErrInvalidSave) {
			return nil, err
		}
		return nil, fmt.Errorf("save %s: %w: %v", saveID, domain.ErrInvalidSave, err)
	}
	return st, nil
}

// List returns a player's save ids, oldest first
func (s *Store) List(playerID string) ([]string, error) {
	if !validName(playerID) {
		return nil, nil
	}
	data, err := os.ReadFile(s.indexPath(playerID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading save index: %w", err)
	}

	var ids []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ids = append(ids, line)
		if len(ids) == s.maxSaves {
			break
		}
	}
	return ids, nil
}

// addToIndex appends saveID once; a full index is left unchanged
func (s *Store) addToIndex(playerID, saveID string) error {
	ids, err := s.List(playerID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == saveID {
			return nil
		}
	}
	if len(ids) >= s.maxSaves {
		s.logger.Warn("save index full", "player_id", playerID, "max", s.maxSaves)
		return nil
	}
	ids = append(ids, saveID)

	err = codec.WriteFile(s.indexPath(playerID), func(w *codec.Writer) {
		for _, id := range ids {
			w.Line(id)
		}
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	return nil
}
