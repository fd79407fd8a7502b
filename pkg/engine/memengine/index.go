package memengine

import (
	"sort"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// wordIndex holds lowercase words with their frequencies.
type wordIndex struct {
	trie *patricia.Trie
}

func newWordIndex(words map[string]int) *wordIndex {
	idx := &wordIndex{trie: patricia.NewTrie()}
	for w, f := range words {
		idx.add(w, f)
	}
	return idx
}

func (idx *wordIndex) add(word string, freq int) {
	key := patricia.Prefix(strings.ToLower(word))
	if item := idx.trie.Get(key); item != nil {
		if old, ok := item.(int); ok && old >= freq {
			return
		}
	}
	idx.trie.Set(key, freq)
}

// bump raises the frequency of word by one, inserting it if absent.
func (idx *wordIndex) bump(word string) {
	key := patricia.Prefix(strings.ToLower(word))
	freq := 1
	if item := idx.trie.Get(key); item != nil {
		if old, ok := item.(int); ok {
			freq = old + 1
		}
	}
	idx.trie.Set(key, freq)
}

func (idx *wordIndex) contains(word string) bool {
	return idx.trie.Get(patricia.Prefix(strings.ToLower(word))) != nil
}

// candidate is a word found under a prefix.
type candidate struct {
	word     string
	freq     int
	priority int
}

// search visits every word strictly longer than the prefix.
func (idx *wordIndex) search(lowerPrefix string, priority int, out map[string]candidate) {
	err := idx.trie.VisitSubtree(patricia.Prefix(lowerPrefix), func(p patricia.Prefix, item patricia.Item) error {
		word := string(p)
		if word == lowerPrefix {
			return nil
		}
		freq, ok := item.(int)
		if !ok {
			log.Errorf("Unknown item type: %T for word %s", item, word)
			return nil
		}
		if prev, seen := out[word]; seen && (prev.freq > freq || (prev.freq == freq && prev.priority <= priority)) {
			return nil
		}
		out[word] = candidate{word: word, freq: freq, priority: priority}
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting trie subtree: %v", err)
	}
}

// rank orders candidates by frequency, then dictionary priority, then spelling.
func rank(found map[string]candidate, limit int) []candidate {
	list := make([]candidate, 0, len(found))
	for _, c := range found {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].freq != list[j].freq {
			return list[i].freq > list[j].freq
		}
		if list[i].priority != list[j].priority {
			return list[i].priority < list[j].priority
		}
		return list[i].word < list[j].word
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}

// applyCapitalization copies upper case positions of the typed prefix onto word.
func applyCapitalization(word, typed string) string {
	typedRunes := []rune(typed)
	wordRunes := []rune(word)
	for i := 0; i < len(wordRunes) && i < len(typedRunes); i++ {
		if unicode.IsUpper(typedRunes[i]) {
			wordRunes[i] = unicode.ToUpper(wordRunes[i])
		}
	}
	return string(wordRunes)
}
