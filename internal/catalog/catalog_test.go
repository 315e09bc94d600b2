package catalog

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xonix-directory/internal/domain"
)

type memStore map[string]*domain.Player

func (m memStore) Load(id string) (*domain.Player, error) {
	p, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("player %s: %w", id, domain.ErrNotFound)
	}
	return p.Clone(), nil
}

func (m memStore) Save(p *domain.Player) error {
	m[p.ID] = p.Clone()
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// checkAVL verifies ordering and balance for every node and returns the
// subtree height
func checkAVL(t *testing.T, tr *Tree, i, lo, hi int) int {
	t.Helper()
	if i == nilNode {
		return 0
	}
	n := tr.nodes[i]
	require.Greater(t, n.theme.ID, lo)
	require.Less(t, n.theme.ID, hi)
	lh := checkAVL(t, tr, n.left, lo, n.theme.ID)
	rh := checkAVL(t, tr, n.right, n.theme.ID, hi)
	diff := lh - rh
	require.LessOrEqual(t, diff, 1, "node %d left-heavy", n.theme.ID)
	require.GreaterOrEqual(t, diff, -1, "node %d right-heavy", n.theme.ID)
	h := max(lh, rh) + 1
	require.Equal(t, h, n.height, "stale height at node %d", n.theme.ID)
	return h
}

func TestRotationCases(t *testing.T) {
	tests := []struct {
		name     string
		ids      []int
		wantRoot int
	}{
		{"left-left", []int{3, 2, 1}, 2},
		{"left-right", []int{3, 1, 2}, 2},
		{"right-right", []int{1, 2, 3}, 2},
		{"right-left", []int{1, 3, 2}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTree()
			for _, id := range tt.ids {
				tr.Insert(Theme{ID: id})
			}
			assert.Equal(t, tt.wantRoot, tr.nodes[tr.root].theme.ID)
			assert.Equal(t, 2, tr.Height())
			checkAVL(t, tr, tr.root, math.MinInt, math.MaxInt)
		})
	}
}

func TestRandomInsertionsStayBalancedAndSorted(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		tr := NewTree()
		seen := map[int]bool{}
		n := 1 + rng.Intn(300)
		for len(seen) < n {
			id := rng.Intn(10000)
			assert.Equal(t, !seen[id], tr.Insert(Theme{ID: id, Name: fmt.Sprint(id)}))
			seen[id] = true
		}

		require.Equal(t, n, tr.Len())
		checkAVL(t, tr, tr.root, math.MinInt, math.MaxInt)

		ordered := tr.InOrder()
		require.Len(t, ordered, n)
		for i := 1; i < len(ordered); i++ {
			require.Less(t, ordered[i-1].ID, ordered[i].ID)
		}

		bound := 1.44 * math.Log2(float64(n+2))
		assert.LessOrEqual(t, float64(tr.Height()), bound)
	}
}

func TestSequentialInsertionsStayBalanced(t *testing.T) {
	tr := NewTree()
	for id := 1; id <= 1024; id++ {
		tr.Insert(Theme{ID: id})
	}
	checkAVL(t, tr, tr.root, math.MinInt, math.MaxInt)
	assert.Equal(t, 11, tr.Height())
}

func TestDuplicateIDFirstWriteWins(t *testing.T) {
	c := NewDefault(memStore{}, testLogger())
	assert.False(t, c.Add(Theme{ID: 1, Name: "Lava"}))

	th, err := c.Find(1)
	require.NoError(t, err)
	assert.Equal(t, "Forest", th.Name)
	assert.Equal(t, 5, c.Len())
}

func TestBrowseAndFind(t *testing.T) {
	c := NewDefault(memStore{}, testLogger())

	themes := c.Browse()
	require.Len(t, themes, 5)
	for i, th := range themes {
		assert.Equal(t, i+1, th.ID)
	}

	th, err := c.FindByName("Ocean")
	require.NoError(t, err)
	assert.Equal(t, 3, th.ID)
	assert.Equal(t, "Blue", th.ColorTag)

	_, err = c.FindByName("Swamp")
	assert.ErrorIs(t, err, domain.ErrThemeNotFound)
	_, err = c.Find(42)
	assert.ErrorIs(t, err, domain.ErrThemeNotFound)

	lo, ok := c.Tree().MinID()
	require.True(t, ok)
	hi, _ := c.Tree().MaxID()
	assert.Equal(t, 1, lo)
	assert.Equal(t, 5, hi)
}

func TestPreferences(t *testing.T) {
	store := memStore{"1": domain.NewPlayer("1", "alice", "pw", "t")}
	c := NewDefault(store, testLogger())

	assert.Equal(t, 1, c.LoadPreference("1"))
	require.NoError(t, c.SavePreference("1", 4))
	assert.Equal(t, 4, c.LoadPreference("1"))
	assert.Equal(t, 4, store["1"].PreferredTheme)
	assert.Equal(t, "alice", store["1"].Username)

	assert.ErrorIs(t, c.SavePreference("1", 9), domain.ErrThemeNotFound)
	assert.ErrorIs(t, c.SavePreference("2", 3), domain.ErrNotFound)

	// out-of-catalog values written by hand fall back to the default
	store["1"].PreferredTheme = 77
	assert.Equal(t, 1, c.LoadPreference("1"))
	assert.Equal(t, 1, c.LoadPreference("missing"))
}

func TestBackgroundColor(t *testing.T) {
	assert.Equal(t, RGBA{0, 0, 128, 255}, BackgroundColor("Blue"))
	assert.Equal(t, RGBA{20, 20, 20, 255}, BackgroundColor("Purple"))
}
