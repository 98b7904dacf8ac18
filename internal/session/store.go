package session

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"zymeboard/internal/errors"

	gocache "github.com/patrickmn/go-cache"
	"github.com/tidwall/gjson"
)

// emptySlot is what a session that never wrote anything reads back
var emptySlot = json.RawMessage("[]")

// state is the per-session datum. Values in the cache are never mutated;
// writers replace them.
type state struct {
	Shared    json.RawMessage
	Selection []int
}

// Store keeps one in-memory slot per session. Slots expire after the idle
// TTL and are never persisted.
type Store struct {
	mu    sync.Mutex
	items *gocache.Cache
	ttl   time.Duration
}

// NewStore creates a store whose slots expire after ttl without access
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	items := gocache.New(ttl, ttl/2)
	items.OnEvicted(func(key string, _ interface{}) {
		log.Printf("[Session] Slot %s expired", key)
	})
	return &Store{items: items, ttl: ttl}
}

// TTL returns the idle expiry of a slot
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// load returns the session state and refreshes its expiry
func (s *Store) load(id ID) state {
	v, ok := s.items.Get(id.String())
	if !ok {
		return state{}
	}
	st := v.(state)
	s.items.SetDefault(id.String(), st)
	return st
}

// Shared returns the session's shared datum, or [] when nothing was written
func (s *Store) Shared(id ID) json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.load(id)
	if len(st.Shared) == 0 {
		return emptySlot
	}
	return append(json.RawMessage(nil), st.Shared...)
}

// SetShared replaces the session's shared datum with any JSON value
func (s *Store) SetShared(id ID, value json.RawMessage) error {
	if !gjson.ValidBytes(value) {
		return errors.InvalidInput("shared data must be valid JSON")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.load(id)
	st.Shared = append(json.RawMessage(nil), value...)
	s.items.SetDefault(id.String(), st)
	return nil
}

// Selection returns the selected row indices of the session
func (s *Store) Selection(id ID) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.load(id).Selection...)
}

// SetSelection stores row indices after checking each against rows. Duplicates
// are dropped and the order of first appearance is kept.
func (s *Store) SetSelection(id ID, indices []int, rows int) ([]int, error) {
	seen := make(map[int]bool, len(indices))
	clean := make([]int, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= rows {
			return nil, errors.InvalidInput("selection index out of range")
		}
		if !seen[i] {
			seen[i] = true
			clean = append(clean, i)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.load(id)
	st.Selection = clean
	s.items.SetDefault(id.String(), st)
	return append([]int(nil), clean...), nil
}

// Len returns the number of live slots
func (s *Store) Len() int {
	return s.items.ItemCount()
}
