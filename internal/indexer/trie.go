package indexer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// trieNode holds one child per distinct byte and the line offsets of every
// record whose key ends exactly at this node.
type trieNode struct {
	children map[byte]*trieNode
	offsets  []int64
}

// Trie maps folded column values to the line-start offsets of the records
// that produced them. Keys must be folded with FoldKey by the caller.
// Edges are bytes, so invalid UTF-8 keeps one edge per distinct byte.
//
// A Trie is not safe for concurrent Insert. Once built it is read-only and
// Search may be called from any number of goroutines.
type Trie struct {
	root    *trieNode
	nodes   int
	entries int
}

// NewTrie returns an empty trie.
func NewTrie() *Trie {
	return &Trie{root: &trieNode{}, nodes: 1}
}

// Insert records offset under key, creating missing nodes along the way.
func (t *Trie) Insert(key string, offset int64) {
	node := t.root
	for i := 0; i < len(key); i++ {
		child, ok := node.children[key[i]]
		if !ok {
			if node.children == nil {
				node.children = make(map[byte]*trieNode)
			}
			child = &trieNode{}
			node.children[key[i]] = child
			t.nodes++
		}
		node = child
	}
	node.offsets = append(node.offsets, offset)
	t.entries++
}

// Search returns the offsets of every key equal to or starting with prefix.
// The order is unspecified. An unknown prefix yields nil.
func (t *Trie) Search(prefix string) []int64 {
	node := t.root
	for i := 0; i < len(prefix); i++ {
		next, ok := node.children[prefix[i]]
		if !ok {
			return nil
		}
		node = next
	}

	var offsets []int64
	stack := []*trieNode{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		offsets = append(offsets, n.offsets...)
		for _, child := range n.children {
			stack = append(stack, child)
		}
	}
	return offsets
}

// Len returns the number of stored offsets.
func (t *Trie) Len() int {
	return t.entries
}

// Nodes returns the number of nodes, root included.
func (t *Trie) Nodes() int {
	return t.nodes
}

// FoldKey lowercases s for trie storage and lookup. Bytes that are not part
// of a valid UTF-8 sequence are copied through unchanged.
func FoldKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteByte(s[i])
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		i += size
	}
	return b.String()
}
