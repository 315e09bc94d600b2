// Package catalog holds the selectable visual themes in an AVL tree keyed
// by theme id, plus per-player theme preferences.
package catalog

// Theme is one selectable visual theme
type Theme struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ColorTag    string `json:"color_tag"`
	AssetPath   string `json:"asset_path"`
}

const nilNode = -1

// node lives in Tree.nodes; children are arena indexes
type node struct {
	theme       Theme
	left, right int
	height      int
}

// Tree is an AVL tree over an arena of nodes
type Tree struct {
	nodes []node
	root  int
}

// NewTree returns an empty tree
func NewTree() *Tree {
	return &Tree{root: nilNode}
}

// Len returns the number of themes
func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) height(i int) int {
	if i == nilNode {
		return 0
	}
	return t.nodes[i].height
}

func (t *Tree) update(i int) {
	t.nodes[i].height = max(t.height(t.nodes[i].left), t.height(t.nodes[i].right)) + 1
}

func (t *Tree) balanceFactor(i int) int {
	return t.height(t.nodes[i].left) - t.height(t.nodes[i].right)
}

func (t *Tree) rotateRight(i int) int {
	pivot := t.nodes[i].left
	t.nodes[i].left = t.nodes[pivot].right
	t.nodes[pivot].right = i
	t.update(i)
	t.update(pivot)
	return pivot
}

func (t *Tree) rotateLeft(i int) int {
	pivot := t.nodes[i].right
	t.nodes[i].right = t.nodes[pivot].left
	t.nodes[pivot].left = i
	t.update(i)
	t.update(pivot)
	return pivot
}

// rebalance restores the AVL property at i and returns the subtree root.
// Left-heavy: single right rotation when the left child leans left or is
// balanced, otherwise left-right. Right-heavy mirrors it.
func (t *Tree) rebalance(i int) int {
	t.update(i)
	bf := t.balanceFactor(i)

	if bf > 1 {
		l := t.nodes[i].left
		if t.height(t.nodes[l].left) >= t.height(t.nodes[l].right) {
			return t.rotateRight(i)
		}
		t.nodes[i].left = t.rotateLeft(l)
		return t.rotateRight(i)
	}

	if bf < -1 {
		r := t.nodes[i].right
		if t.height(t.nodes[r].right) >= t.height(t.nodes[r].left) {
			return t.rotateLeft(i)
		}
		t.nodes[i].right = t.rotateRight(r)
		return t.rotateLeft(i)
	}

	return i
}

// Insert adds theme keyed by its id. A duplicate id is ignored and Insert
// returns false.
func (t *Tree) Insert(theme Theme) bool {
	inserted := false
	t.root = t.insert(t.root, theme, &inserted)
	return inserted
}

func (t *Tree) insert(i int, theme Theme, inserted *bool) int {
	if i == nilNode {
		t.nodes = append(t.nodes, node{theme: theme, left: nilNode, right: nilNode, height: 1})
		*inserted = true
		return len(t.nodes) - 1
	}

	switch {
	case theme.ID < t.nodes[i].theme.ID:
		child := t.insert(t.nodes[i].left, theme, inserted)
		t.nodes[i].left = child
	case theme.ID > t.nodes[i].theme.ID:
		child := t.insert(t.nodes[i].right, theme, inserted)
		t.nodes[i].right = child
	default:
		return i
	}

	return t.rebalance(i)
}

// FindByID walks the tree by id
func (t *Tree) FindByID(id int) (Theme, bool) {
	i := t.root
	for i != nilNode {
		n := t.nodes[i]
		switch {
		case id < n.theme.ID:
			i = n.left
		case id > n.theme.ID:
			i = n.right
		default:
			return n.theme, true
		}
	}
	return Theme{}, false
}

// FindByName visits every node in pre-order; name is not the key
func (t *Tree) FindByName(name string) (Theme, bool) {
	return t.findByName(t.root, name)
}

func (t *Tree) findByName(i int, name string) (Theme, bool) {
	if i == nilNode {
		return Theme{}, false
	}
	if t.nodes[i].theme.Name == name {
		return t.nodes[i].theme, true
	}
	if th, ok := t.findByName(t.nodes[i].left, name); ok {
		return th, true
	}
	return t.findByName(t.nodes[i].right, name)
}

// InOrder returns themes in ascending id order
func (t *Tree) InOrder() []Theme {
	out := make([]Theme, 0, len(t.nodes))
	t.walk(t.root, func(th Theme) { out = append(out, th) })
	return out
}

func (t *Tree) walk(i int, visit func(Theme)) {
	if i == nilNode {
		return
	}
	t.walk(t.nodes[i].left, visit)
	visit(t.nodes[i].theme)
	t.walk(t.nodes[i].right, visit)
}

// Height returns the height of the whole tree
func (t *Tree) Height() int {
	return t.height(t.root)
}

// MinID returns the smallest id
func (t *Tree) MinID() (int, bool) {
	return t.extreme(func(n node) int { return n.left })
}

// MaxID returns the largest id
func (t *Tree) MaxID() (int, bool) {
	return t.extreme(func(n node) int { return n.right })
}

func (t *Tree) extreme(next func(node) int) (int, bool) {
	if t.root == nilNode {
		return 0, false
	}
	i := t.root
	for next(t.nodes[i]) != nilNode {
		i = next(t.nodes[i])
	}
	return t.nodes[i].theme.ID, true
}
