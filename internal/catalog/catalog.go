package catalog

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

// DefaultThemes is the stock catalog
var DefaultThemes = []Theme{
	{ID: 1, Name: "Forest", Description: "A lush green forest theme.", ColorTag: "Green", AssetPath: "assets/backgrounds/Forest-background.jpg"},
	{ID: 2, Name: "Desert", Description: "A sandy desert theme.", ColorTag: "Brown", AssetPath: "assets/backgrounds/desert-background.jpg"},
	{ID: 3, Name: "Ocean", Description: "A deep blue ocean theme.", ColorTag: "Blue", AssetPath: "assets/backgrounds/Ocean-background.jpg"},
	{ID: 4, Name: "Mountain", Description: "A rocky mountain theme.", ColorTag: "Gray", AssetPath: "assets/backgrounds/mountain-background.jpg"},
	{ID: 5, Name: "City", Description: "A bustling city theme.", ColorTag: "Red", AssetPath: "assets/backgrounds/city-background.jpg"},
}

// RGBA is a display color for a theme's color tag
type RGBA struct {
	R, G, B, A uint8
}

// Catalog is the session's theme tree plus preference persistence
type Catalog struct {
	tree   *Tree
	store  RecordStore
	logger *slog.Logger
}

// New creates a catalog seeded with themes
func New(store RecordStore, logger *slog.Logger, themes ...Theme) *Catalog {
	c := &Catalog{tree: NewTree(), store: store, logger: logger}
	for _, th := range themes {
		c.Add(th)
	}
	return c
}

// NewDefault creates a catalog holding DefaultThemes
func NewDefault(store RecordStore, logger *slog.Logger) *Catalog {
	return New(store, logger, DefaultThemes...)
}

// Add inserts a theme; the first theme with a given id wins
func (c *Catalog) Add(th Theme) bool {
	if !c.tree.Insert(th) {
		c.logger.Debug("duplicate theme id ignored", "theme_id", th.ID, "name", th.Name)
		return false
	}
	return true
}

// Browse lists every theme by ascending id
func (c *Catalog) Browse() []Theme {
	return c.tree.InOrder()
}

// Find looks a theme up by id
func (c *Catalog) Find(id int) (Theme, error) {
	th, ok := c.tree.FindByID(id)
	if !ok {
		return Theme{}, fmt.Errorf("theme %d: %w", id, domain.ErrThemeNotFound)
	}
	return th, nil
}

// FindByName looks a theme up by exact name
func (c *Catalog) FindByName(name string) (Theme, error) {
	th, ok := c.tree.FindByName(name)
	if !ok {
		return Theme{}, fmt.Errorf("theme %q: %w", name, domain.ErrThemeNotFound)
	}
	return th, nil
}

// Len returns the number of themes
func (c *Catalog) Len() int {
	return c.tree.Len()
}

// Tree exposes the underlying tree for diagnostics
func (c *Catalog) Tree() *Tree {
	return c.tree
}

// Resolve maps a stored preference to a theme id present in the catalog
func (c *Catalog) Resolve(themeID int) int {
	if _, ok := c.tree.FindByID(themeID); ok {
		return themeID
	}
	return domain.DefaultThemeID
}

// LoadPreference returns the player's theme, or the default theme when the
// record is missing or the stored id is outside the catalog
func (c *Catalog) LoadPreference(playerID string) int {
	p, err := c.store.Load(playerID)
	if err != nil {
		return domain.DefaultThemeID
	}
	return c.Resolve(p.PreferredTheme)
}

// SavePreference rewrites the player's record with a new theme id
func (c *Catalog) SavePreference(playerID string, themeID int) error {
	if _, err := c.Find(themeID); err != nil {
		return err
	}
	p, err := c.store.Load(playerID)
	if err != nil {
		return err
	}
	p.PreferredTheme = themeID
	if err := c.store.Save(p); err != nil {
		return err
	}
	c.logger.Debug("theme preference saved", "player_id", playerID, "theme_id", themeID)
	return nil
}

// BackgroundColor maps a color tag to its display color
func BackgroundColor(tag string) RGBA {
	switch tag {
	case "Green":
		return RGBA{0, 100, 0, 255}
	case "Brown":
		return RGBA{139, 119, 101, 255}
	case "Blue":
		return RGBA{0, 0, 128, 255}
	case "Gray":
		return RGBA{70, 70, 70, 255}
	case "Red":
		return RGBA{139, 0, 0, 255}
	default:
		return RGBA{20, 20, 20, 255}
	}
}
