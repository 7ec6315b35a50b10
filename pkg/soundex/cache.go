package soundex

import (
	"container/list"
	"sync"
)

// Cache memoizes word to code lookups for an Encoder.
type Cache interface {
	Get(word string) (Code, bool)
	Put(word string, code Code)
	Len() int
	Reset()
}

type memoEntry struct {
	word string
	code Code
}

// Memo is a Cache that keeps at most maxWords entries and evicts the least
// recently used word when full. A non-positive size means unbounded.
type Memo struct {
	words    map[string]*list.Element
	order    *list.List
	maxWords int
	hits     int64
	misses   int64
	mu       sync.Mutex
}

// NewMemo creates a Memo holding up to maxWords codes.
func NewMemo(maxWords int) *Memo {
	capHint := maxWords
	if capHint <= 0 {
		capHint = 256
	}
	return &Memo{
		words:    make(map[string]*list.Element, capHint),
		order:    list.New(),
		maxWords: maxWords,
	}
}

func (m *Memo) Get(word string) (Code, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.words[word]
	if !ok {
		m.misses++
		return "", false
	}
	m.hits++
	m.order.MoveToFront(el)
	return el.Value.(*memoEntry).code, true
}

func (m *Memo) Put(word string, code Code) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.words[word]; ok {
		el.Value.(*memoEntry).code = code
		m.order.MoveToFront(el)
		return
	}
	if m.maxWords > 0 && len(m.words) >= m.maxWords {
		m.evictLRU()
	}
	m.words[word] = m.order.PushFront(&memoEntry{word: word, code: code})
}

func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.words)
}

// Reset drops every cached code and the hit counters.
func (m *Memo) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.words = make(map[string]*list.Element, len(m.words))
	m.order.Init()
	m.hits, m.misses = 0, 0
}

// Stats reports the cache size and hit counters.
func (m *Memo) Stats() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]int{
		"cachedWords": len(m.words),
		"maxWords":    m.maxWords,
		"hits":        int(m.hits),
		"misses":      int(m.misses),
	}
}

func (m *Memo) evictLRU() {
	oldest := m.order.Back()
	if oldest == nil {
		return
	}
	m.order.Remove(oldest)
	delete(m.words, oldest.Value.(*memoEntry).word)
}
