package matchmaking

import (
	"fmt"

	"github.com/xonix-directory/internal/domain"
)

// DefaultCapacity sizes both the waiting queue and the match buffer
const DefaultCapacity = 20

// WaitingQueue is a bounded max-heap of players keyed by score
type WaitingQueue struct {
	heap     []domain.QueuedPlayer
	capacity int
}

// NewWaitingQueue creates an empty queue
func NewWaitingQueue(capacity int) *WaitingQueue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &WaitingQueue{
		heap:     make([]domain.QueuedPlayer, 0, capacity),
		capacity: capacity,
	}
}

// Len returns the number of waiting players
func (q *WaitingQueue) Len() int {
	return len(q.heap)
}

// Capacity returns the maximum number of waiting players
func (q *WaitingQueue) Capacity() int {
	return q.capacity
}

// Contains reports whether a player is waiting
func (q *WaitingQueue) Contains(playerID string) bool {
	return q.find(playerID) >= 0
}

func (q *WaitingQueue) find(playerID string) int {
	for i, p := range q.heap {
		if p.PlayerID == playerID {
			return i
		}
	}
	return -1
}

// Join adds a player to the queue
func (q *WaitingQueue) Join(p domain.QueuedPlayer) error {
	if q.Contains(p.PlayerID) {
		return fmt.Errorf("player %s: %w", p.PlayerID, domain.ErrAlreadyQueued)
	}
	if len(q.heap) >= q.capacity {
		return domain.ErrQueueFull
	}
	q.heap = append(q.heap, p)
	q.siftUp(len(q.heap) - 1)
	return nil
}

// Leave removes a player; it reports false when the player was not waiting
func (q *WaitingQueue) Leave(playerID string) bool {
	i := q.find(playerID)
	if i < 0 {
		return false
	}
	last := len(q.heap) - 1
	q.heap[i] = q.heap[last]
	q.heap = q.heap[:last]
	if i < last {
		q.siftUp(i)
		q.siftDown(i)
	}
	return true
}

// Peek returns the highest-scoring waiting player
func (q *WaitingQueue) Peek() (domain.QueuedPlayer, error) {
	if len(q.heap) == 0 {
		return domain.QueuedPlayer{}, domain.ErrEmpty
	}
	return q.heap[0], nil
}

// ExtractTop removes and returns the highest-scoring waiting player
func (q *WaitingQueue) ExtractTop() (domain.QueuedPlayer, error) {
	if len(q.heap) == 0 {
		return domain.QueuedPlayer{}, domain.ErrEmpty
	}
	top := q.heap[0]
	last := len(q.heap) - 1
	q.heap[0] = q.heap[last]
	q.heap = q.heap[:last]
	q.siftDown(0)
	return top, nil
}

// At returns the player stored at heap position i
func (q *WaitingQueue) At(i int) (domain.QueuedPlayer, bool) {
	if i < 0 || i >= len(q.heap) {
		return domain.QueuedPlayer{}, false
	}
	return q.heap[i], true
}

// Players returns the waiting players in heap order
func (q *WaitingQueue) Players() []domain.QueuedPlayer {
	return append([]domain.QueuedPlayer(nil), q.heap...)
}

// Clear empties the queue
func (q *WaitingQueue) Clear() {
	q.heap = q.heap[:0]
}

func (q *WaitingQueue) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if q.heap[parent].Score >= q.heap[i].Score {
			return
		}
		q.heap[parent], q.heap[i] = q.heap[i], q.heap[parent]
		i = parent
	}
}

func (q *WaitingQueue) siftDown(i int) {
	n := len(q.heap)
	for {
		largest := i
		left, right := 2*i+1, 2*i+2
		if left < n && q.heap[left].Score > q.heap[largest].Score {
			largest = left
		}
		if right < n && q.heap[right].Score > q.heap[largest].Score {
			largest = right
		}
		if largest == i {
			return
		}
		q.heap[i], q.heap[largest] = q.heap[largest], q.heap[i]
		i = largest
	}
}
