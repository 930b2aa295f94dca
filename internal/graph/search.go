package graph

import (
	"strings"

	"github.com/dmitrijs2005/mindmap/internal/models"
)

// Search returns nodes whose title or description contains keyword,
// ignoring case. A blank keyword matches every node.
func (e *Editor) Search(keyword string) []models.Node {
	keyword = strings.ToLower(strings.TrimSpace(keyword))

	var out []models.Node
	for _, n := range e.Nodes() {
		if keyword == "" || matches(n, keyword) {
			out = append(out, n)
		}
	}
	return out
}

func matches(n models.Node, lowered string) bool {
	if strings.Contains(strings.ToLower(n.Title), lowered) {
		return true
	}
	return n.Description != nil && strings.Contains(strings.ToLower(*n.Description), lowered)
}
