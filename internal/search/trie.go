package search

import "strings"

type trieResult struct {
	word string
	id   string
}

type trieNode struct {
	children map[rune]*trieNode
	results  []trieResult
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[rune]*trieNode)}
}

// trie maps lowercased labels to the entry ids ending there. Prefix lookup
// walks the prefix then collects results depth-first, capped at limit.
type trie struct {
	root *trieNode
}

func newTrie() *trie {
	return &trie{root: newTrieNode()}
}

func (t *trie) insert(word string, id string) {
	normalized := strings.ToLower(strings.TrimSpace(word))
	if normalized == "" {
		return
	}

	node := t.root
	for _, ch := range normalized {
		next, ok := node.children[ch]
		if !ok {
			next = newTrieNode()
			node.children[ch] = next
		}
		node = next
	}
	node.results = append(node.results, trieResult{word: normalized, id: id})
}

func (t *trie) searchPrefix(prefix string, limit int) []trieResult {
	normalized := strings.ToLower(strings.TrimSpace(prefix))
	if normalized == "" {
		return nil
	}

	node := t.root
	for _, ch := range normalized {
		next, ok := node.children[ch]
		if !ok {
			return nil
		}
		node = next
	}

	out := make([]trieResult, 0, limit)
	stack := []*trieNode{node}
	for len(stack) > 0 && len(out) < limit {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, r := range current.results {
			out = append(out, r)
			if len(out) >= limit {
				break
			}
		}
		if len(out) >= limit {
			break
		}
		for _, child := range current.children {
			stack = append(stack, child)
		}
	}
	return out
}
