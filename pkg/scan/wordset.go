package scan

import (
	"github.com/tchap/go-patricia/v2/patricia"
)

// wordSet holds distinct words with the offset of their first occurrence.
type wordSet struct {
	trie *patricia.Trie
	size int
}

func newWordSet() *wordSet {
	return &wordSet{trie: patricia.NewTrie()}
}

// add records word at offset, keeping the smallest offset seen.
func (ws *wordSet) add(word string, offset int64) {
	key := patricia.Prefix(word)
	item := ws.trie.Get(key)
	if item == nil {
		ws.trie.Insert(key, offset)
		ws.size++
		return
	}
	if item.(int64) > offset {
		ws.trie.Set(key, offset)
	}
}

// union folds other into ws.
func (ws *wordSet) union(other *wordSet) error {
	if other == nil {
		return nil
	}
	return other.trie.Visit(func(p patricia.Prefix, item patricia.Item) error {
		ws.add(string(p), item.(int64))
		return nil
	})
}

// each calls fn for every word in key order.
func (ws *wordSet) each(fn func(word string, offset int64) error) error {
	return ws.trie.Visit(func(p patricia.Prefix, item patricia.Item) error {
		return fn(string(p), item.(int64))
	})
}

func (ws *wordSet) count() int {
	return ws.size
}
