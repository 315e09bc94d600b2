package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xonix-directory/internal/auth"
	"github.com/xonix-directory/internal/catalog"
	"github.com/xonix-directory/internal/config"
	"github.com/xonix-directory/internal/domain"
	"github.com/xonix-directory/internal/index"
	"github.com/xonix-directory/internal/leaderboard"
	"github.com/xonix-directory/internal/matchmaking"
	"github.com/xonix-directory/internal/metrics"
	"github.com/xonix-directory/internal/savestate"
	"github.com/xonix-directory/internal/social"
	"github.com/xonix-directory/internal/store"
	"github.com/xonix-directory/internal/worker"
)

// Directory is the single entry point for one session. It owns the
// in-memory structures rebuilt from the record files at startup.
type Directory struct {
	config   *config.Config
	repo     *store.Repository
	registry *store.Registry
	graph    *social.Graph
	catalog  *catalog.Catalog
	board    *leaderboard.Board
	room     *matchmaking.Room
	saves    *savestate.Store
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewDirectory opens the data directory and builds every component
func NewDirectory(cfg *config.Config, logger *slog.Logger) (*Directory, error) {
	repo, err := store.NewRepository(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("opening record store: %w", err)
	}
	saves, err := savestate.NewStore(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("opening save store: %w", err)
	}

	registry := store.OpenRegistry(repo, index.New(cfg.Index.BucketCount), auth.NewCredentials(&cfg.Auth), logger)

	d := &Directory{
		config:   cfg,
		repo:     repo,
		registry: registry,
		graph:    social.NewGraph(repo, logger),
		catalog:  catalog.NewDefault(repo, logger),
		board:    leaderboard.New(cfg.Leaderboard.Capacity, logger),
		room:     matchmaking.NewRoom(registry, cfg.Matchmaking.QueueCapacity, cfg.Matchmaking.BufferCapacity, logger),
		saves:    saves,
		metrics:  metrics.New(),
		logger:   logger,
	}
	d.metrics.Players.Set(float64(registry.Count()))

	logger.Info("directory opened",
		"data_dir", cfg.Storage.DataDir,
		"players", registry.Count(),
		"themes", d.catalog.Len(),
	)
	return d, nil
}

// observe counts failed writes
func (d *Directory) observe(err error) error {
	if err != nil && errors.Is(err, domain.ErrStorageWrite) {
		d.metrics.StorageErrors.Inc()
	}
	return err
}

// Authenticate checks a username and password pair
func (d *Directory) Authenticate(username, password string) bool {
	ok := d.registry.Authenticate(username, password)
	d.metrics.Login(ok)
	if !ok {
		d.logger.Info("login failed", "username", username)
	}
	return ok
}

// Login authenticates and returns the player's record
func (d *Directory) Login(username, password string) (*domain.Player, error) {
	if !d.Authenticate(username, password) {
		return nil, domain.ErrInvalidCredentials
	}
	return d.PlayerByUsername(username)
}

// Register validates the credentials and creates an empty record
func (d *Directory) Register(username, password string) (string, error) {
	username, err := auth.NormalizeUsername(username)
	if err != nil {
		return "", err
	}
	if err := d.checkPassword(password); err != nil {
		return "", err
	}

	id, err := d.registry.Register(username, password, time.Now().Format(time.TimeOnly))
	if err != nil {
		return id, d.observe(err)
	}
	d.metrics.Registrations.Inc()
	d.metrics.Players.Set(float64(d.registry.Count()))
	return id, nil
}

func (d *Directory) checkPassword(password string) error {
	if d.config.Auth.AllowWeakPasswords {
		return nil
	}
	return auth.CheckPasswordStrength(password, d.config.Auth.MinPasswordLength, d.config.Auth.MaxPasswordLength)
}

// ChangePassword replaces a player's password
func (d *Directory) ChangePassword(id, password string) error {
	if err := d.checkPassword(password); err != nil {
		return err
	}
	if err := d.registry.ChangePassword(id, password); err != nil {
		return d.observe(fmt.Errorf("changing password: %w", err))
	}
	d.logger.Info("password changed", "player_id", id)
	return nil
}

// FindIDByUsername returns the player id for username or ""
func (d *Directory) FindIDByUsername(username string) string {
	return d.registry.FindIDByUsername(username)
}

// UsernameExists reports whether username is taken
func (d *Directory) UsernameExists(username string) bool {
	return d.registry.UsernameExists(username)
}

// IDExists reports whether id is in the id list
func (d *Directory) IDExists(id string) bool {
	return d.registry.IDExists(id)
}

// LoadRecord reads a player record fresh from disk
func (d *Directory) LoadRecord(id string) (*domain.Player, error) {
	return d.repo.Load(id)
}

// PlayerByUsername resolves and loads a player
func (d *Directory) PlayerByUsername(username string) (*domain.Player, error) {
	id := d.registry.FindIDByUsername(username)
	if id == "" {
		return nil, fmt.Errorf("player %q: %w", username, domain.ErrNotFound)
	}
	return d.repo.Load(id)
}

// Players loads every readable record in id-list order
func (d *Directory) Players() []*domain.Player {
	ids := d.registry.IDs()
	players := make([]*domain.Player, 0, len(ids))
	for _, id := range ids {
		p, err := d.repo.Load(id)
		if err != nil {
			d.logger.Warn("skipping unreadable player", "player_id", id, "error", err)
			continue
		}
		players = append(players, p)
	}
	return players
}

// SendFriendRequest files a request from senderID to the player named
// receiverUsername
func (d *Directory) SendFriendRequest(senderID, receiverUsername string) error {
	receiverID := d.registry.FindIDByUsername(receiverUsername)
	if receiverID == "" {
		return fmt.Errorf("player %q: %w", receiverUsername, domain.ErrNotFound)
	}
	if err := d.graph.SendRequest(senderID, receiverID); err != nil {
		return d.observe(err)
	}
	d.metrics.FriendRequests.WithLabelValues("sent").Inc()
	return nil
}

// AcceptFriendRequest makes acceptorID and requesterID friends
func (d *Directory) AcceptFriendRequest(acceptorID, requesterID string) error {
	if err := d.graph.Accept(acceptorID, requesterID); err != nil {
		return d.observe(err)
	}
	d.metrics.FriendRequests.WithLabelValues("accepted").Inc()
	return nil
}

// AcceptLatestFriendRequest accepts the most recent pending request
func (d *Directory) AcceptLatestFriendRequest(acceptorID string) (string, error) {
	requesterID, err := d.graph.AcceptLatest(acceptorID)
	if err != nil {
		return "", d.observe(err)
	}
	d.metrics.FriendRequests.WithLabelValues("accepted").Inc()
	return requesterID, nil
}

// RejectFriendRequest drops a pending request
func (d *Directory) RejectFriendRequest(rejecterID, requesterID string) error {
	if err := d.graph.Reject(rejecterID, requesterID); err != nil {
		return d.observe(err)
	}
	d.metrics.FriendRequests.WithLabelValues("rejected").Inc()
	return nil
}

// Friends returns a player's friend ids
func (d *Directory) Friends(id string) ([]string, error) {
	return d.graph.Friends(id)
}

// PendingRequests returns a player's pending requester ids, most recent first
func (d *Directory) PendingRequests(id string) ([]string, error) {
	return d.graph.PendingRequests(id)
}

// RecordMatchResult appends a finished game to the owner's history
func (d *Directory) RecordMatchResult(ownerID string, r social.MatchResult) (*domain.Player, error) {
	p, err := d.graph.RecordMatchResult(ownerID, r)
	if err != nil {
		return p, d.observe(err)
	}
	mode := "multiplayer"
	if r.Opponent == domain.OpponentPC {
		mode = "single"
	}
	d.metrics.MatchesRecorded.WithLabelValues(mode).Inc()
	return p, nil
}

// Catalog returns the theme catalog
func (d *Directory) Catalog() *catalog.Catalog {
	return d.catalog
}

// Leaderboard returns the top-N board
func (d *Directory) Leaderboard() *leaderboard.Board {
	return d.board
}

// RebuildAndGetTop re-reads every record and returns the ranking, best first
func (d *Directory) RebuildAndGetTop() []domain.LeaderboardEntry {
	d.board.Rebuild(d.Players())
	d.metrics.RankedPlayers.Set(float64(d.board.Len()))
	return d.board.SortedDescending()
}

// Room returns the game room
func (d *Directory) Room() *matchmaking.Room {
	return d.room
}

// JoinMatchmaking queues a player by username
func (d *Directory) JoinMatchmaking(username string) (domain.QueuedPlayer, error) {
	qp, err := d.room.Join(username)
	if err != nil {
		return qp, err
	}
	d.metrics.WaitingPlayers.Set(float64(d.room.Queue().Len()))
	return qp, nil
}

// LeaveMatchmaking removes a waiting player
func (d *Directory) LeaveMatchmaking(playerID string) bool {
	ok := d.room.Leave(playerID)
	d.metrics.WaitingPlayers.Set(float64(d.room.Queue().Len()))
	return ok
}

// CreateMatches pairs waiting players and returns how many matches were made
func (d *Directory) CreateMatches() int {
	n := d.room.CreateMatches()
	d.metrics.MatchesCreated.Add(float64(n))
	d.metrics.WaitingPlayers.Set(float64(d.room.Queue().Len()))
	d.metrics.PendingMatches.Set(float64(d.room.Buffer().Len()))
	return n
}

// NextMatch hands out the oldest created match
func (d *Directory) NextMatch() (domain.Match, error) {
	m, err := d.room.NextMatch()
	if err != nil {
		return m, err
	}
	d.metrics.PendingMatches.Set(float64(d.room.Buffer().Len()))
	return m, nil
}

// SaveGame writes a game snapshot for a known player
func (d *Directory) SaveGame(st *savestate.State) (string, error) {
	if !d.registry.IDExists(st.PlayerID) {
		return "", fmt.Errorf("player %s: %w", st.PlayerID, domain.ErrNotFound)
	}
	id, err := d.saves.Save(st)
	return id, d.observe(err)
}

// LoadGame reads a game snapshot
func (d *Directory) LoadGame(saveID string) (*savestate.State, error) {
	return d.saves.Load(saveID)
}

// ListSaves returns a player's save ids
func (d *Directory) ListSaves(playerID string) ([]string, error) {
	return d.saves.List(playerID)
}

// Index returns the username index for diagnostics
func (d *Directory) Index() *index.UsernameIndex {
	return d.registry.Index()
}

// Reconcile compares the id list with the record files
func (d *Directory) Reconcile(repair bool) (worker.Report, error) {
	report, err := worker.NewReconciler(d.registry, d.logger).RunOnce(repair)
	if err != nil {
		return report, err
	}
	d.metrics.Players.Set(float64(d.registry.Count()))
	return report, nil
}

// Metrics returns the session's metrics
func (d *Directory) Metrics() *metrics.Metrics {
	return d.metrics
}

// FlushMetrics writes the metrics textfile when one is configured
func (d *Directory) FlushMetrics() error {
	path := d.config.Metrics.TextfilePath
	if path == "" {
		return nil
	}
	return d.metrics.WriteTextfile(path)
}
