// Package index maps usernames to player ids with a chained hash table.
package index

import (
	"fmt"
	"io"
)

// DefaultBucketCount is prime so the rolling hash spreads well
const DefaultBucketCount = 53

// Entry is one username mapping. Position is a hint into the directory's
// id list and is refreshed on re-insertion.
type Entry struct {
	Username string
	PlayerID string
	Position int
	next     *Entry
}

// UsernameIndex is a fixed-size table of chained entries
type UsernameIndex struct {
	buckets []*Entry
	count   int
}

// New creates an index with bucketCount buckets
func New(bucketCount int) *UsernameIndex {
	if bucketCount <= 0 {
		bucketCount = DefaultBucketCount
	}
	return &UsernameIndex{buckets: make([]*Entry, bucketCount)}
}

// Hash is a polynomial rolling hash (h = h*31 + c) reduced modulo the
// bucket count
func Hash(username string, bucketCount int) int {
	var h uint64
	for i := 0; i < len(username); i++ {
		h = h*31 + uint64(username[i])
	}
	return int(h % uint64(bucketCount))
}

func (x *UsernameIndex) bucket(username string) int {
	return Hash(username, len(x.buckets))
}

// Insert adds username or updates the existing entry in place
func (x *UsernameIndex) Insert(username, playerID string, position int) {
	b := x.bucket(username)
	for e := x.buckets[b]; e != nil; e = e.next {
		if e.Username == username {
			e.PlayerID = playerID
			e.Position = position
			return
		}
	}
	x.buckets[b] = &Entry{Username: username, PlayerID: playerID, Position: position, next: x.buckets[b]}
	x.count++
}

// Search returns a copy of the entry for username
func (x *UsernameIndex) Search(username string) (Entry, bool) {
	for e := x.buckets[x.bucket(username)]; e != nil; e = e.next {
		if e.Username == username {
			return Entry{Username: e.Username, PlayerID: e.PlayerID, Position: e.Position}, true
		}
	}
	return Entry{}, false
}

// PlayerID returns the id for username or ""
func (x *UsernameIndex) PlayerID(username string) string {
	e, ok := x.Search(username)
	if !ok {
		return ""
	}
	return e.PlayerID
}

// Position returns the id-list hint for username or -1
func (x *UsernameIndex) Position(username string) int {
	e, ok := x.Search(username)
	if !ok {
		return -1
	}
	return e.Position
}

// Exists reports whether username is indexed
func (x *UsernameIndex) Exists(username string) bool {
	_, ok := x.Search(username)
	return ok
}

// Remove unlinks username from its chain
func (x *UsernameIndex) Remove(username string) bool {
	b := x.bucket(username)
	var prev *Entry
	for e := x.buckets[b]; e != nil; e = e.next {
		if e.Username == username {
			if prev == nil {
				x.buckets[b] = e.next
			} else {
				prev.next = e.next
			}
			x.count--
			return true
		}
		prev = e
	}
	return false
}

// Clear drops every entry
func (x *UsernameIndex) Clear() {
	for i := range x.buckets {
		x.buckets[i] = nil
	}
	x.count = 0
}

// Len returns the number of live entries
func (x *UsernameIndex) Len() int {
	return x.count
}

// BucketCount returns the table size
func (x *UsernameIndex) BucketCount() int {
	return len(x.buckets)
}

// Buckets returns the non-empty buckets keyed by bucket number, each chain
// in lookup order. Diagnostics only.
func (x *UsernameIndex) Buckets() map[int][]Entry {
	out := make(map[int][]Entry)
	for i, head := range x.buckets {
		for e := head; e != nil; e = e.next {
			out[i] = append(out[i], Entry{Username: e.Username, PlayerID: e.PlayerID, Position: e.Position})
		}
	}
	return out
}

// Dump writes a human-readable listing of non-empty buckets
func (x *UsernameIndex) Dump(w io.Writer) error {
	for i, head := range x.buckets {
		if head == nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "Bucket %d:", i); err != nil {
			return err
		}
		for e := head; e != nil; e = e.next {
			if _, err := fmt.Fprintf(w, " [%s -> ID:%s, Idx:%d]", e.Username, e.PlayerID, e.Position); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Total entries: %d\n", x.count)
	return err
}
