// Package comments turns discussion trees into indented display lists.
package comments

import "github.com/desertthunder/rmp/internal/models"

// MaxDisplayed caps how many entries a thread view renders.
const MaxDisplayed = 50

// Entry is a comment positioned in a flattened thread.
type Entry struct {
	models.Comment
	Depth int `json:"depth"`
}

// Flatten walks the forest depth-first, each parent before its replies, and
// returns at most limit entries. A limit of zero or less means no limit.
//
// Roots have depth 0; replies are one deeper than their parent.
func Flatten(nodes []models.Comment, limit int) []Entry {
	size := Count(nodes)
	if limit > 0 && limit < size {
		size = limit
	}
	out := make([]Entry, 0, size)
	var walk func(cs []models.Comment, depth int) bool
	walk = func(cs []models.Comment, depth int) bool {
		for _, c := range cs {
			if limit > 0 && len(out) >= limit {
				return false
			}
			entry := Entry{Comment: c, Depth: depth}
			entry.Replies = nil
			out = append(out, entry)
			if !walk(c.Replies, depth+1) {
				return false
			}
		}
		return true
	}
	walk(nodes, 0)
	return out
}

// ForDisplay flattens a thread and keeps the first [MaxDisplayed] entries.
func ForDisplay(nodes []models.Comment) []Entry {
	return Flatten(nodes, MaxDisplayed)
}

// Count returns the number of comments in the forest.
func Count(nodes []models.Comment) int {
	n := 0
	for _, c := range nodes {
		n += 1 + Count(c.Replies)
	}
	return n
}
