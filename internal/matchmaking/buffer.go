package matchmaking

import "github.com/xonix-directory/internal/domain"

// MatchBuffer is a fixed-size FIFO ring of created matches. A full buffer
// rejects new matches instead of overwriting the oldest.
type MatchBuffer struct {
	slots []domain.Match
	front int
	count int
}

// NewMatchBuffer creates an empty buffer
func NewMatchBuffer(capacity int) *MatchBuffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MatchBuffer{slots: make([]domain.Match, capacity)}
}

// Len returns the number of buffered matches
func (b *MatchBuffer) Len() int {
	return b.count
}

// Capacity returns the number of slots
func (b *MatchBuffer) Capacity() int {
	return len(b.slots)
}

// Full reports whether every slot is taken
func (b *MatchBuffer) Full() bool {
	return b.count == len(b.slots)
}

// Enqueue appends a match at the back
func (b *MatchBuffer) Enqueue(m domain.Match) error {
	if b.Full() {
		return domain.ErrBufferFull
	}
	b.slots[(b.front+b.count)%len(b.slots)] = m
	b.count++
	return nil
}

// Dequeue removes the oldest match
func (b *MatchBuffer) Dequeue() (domain.Match, error) {
	if b.count == 0 {
		return domain.Match{}, domain.ErrEmpty
	}
	m := b.slots[b.front]
	b.slots[b.front] = domain.Match{}
	b.front = (b.front + 1) % len(b.slots)
	b.count--
	return m, nil
}

// Peek returns the oldest match without removing it
func (b *MatchBuffer) Peek() (domain.Match, error) {
	if b.count == 0 {
		return domain.Match{}, domain.ErrEmpty
	}
	return b.slots[b.front], nil
}

// At returns the i-th oldest match
func (b *MatchBuffer) At(i int) (domain.Match, bool) {
	if i < 0 || i >= b.count {
		return domain.Match{}, false
	}
	return b.slots[(b.front+i)%len(b.slots)], true
}

// Matches returns the buffered matches oldest first
func (b *MatchBuffer) Matches() []domain.Match {
	out := make([]domain.Match, 0, b.count)
	for i := 0; i < b.count; i++ {
		m, _ := b.At(i)
		out = append(out, m)
	}
	return out
}

// Clear empties the buffer
func (b *MatchBuffer) Clear() {
	for i := range b.slots {
		b.slots[i] = domain.Match{}
	}
	b.front, b.count = 0, 0
}
