package taxonomy

import "github.com/google/uuid"

// Node is a rendered view of a tag and its visible descendants.
type Node struct {
	Name     string `json:"name"`
	Points   int    `json:"points"`
	Learned  int    `json:"learned"`
	Children []Node `json:"children,omitempty"`
}

// Tree returns the forest restricted to tags whose subtree satisfies pred.
// A nil pred keeps every tag.
func (t *Taxonomy) Tree(pred Predicate) []Node {
	var visible map[string]bool
	if pred != nil {
		visible = t.Visible(pred)
	}
	seen := make(map[uuid.UUID]bool)
	return t.buildNodes(uuid.Nil, visible, seen)
}

func (t *Taxonomy) buildNodes(parent uuid.UUID, visible map[string]bool, seen map[uuid.UUID]bool) []Node {
	var nodes []Node
	for _, tag := range t.childrenOfID(parent) {
		if seen[tag.id] || (visible != nil && !visible[tag.name]) {
			continue
		}
		seen[tag.id] = true
		n := Node{Name: tag.name, Points: len(tag.KnowledgePoints)}
		for _, p := range tag.KnowledgePoints {
			if p.Learned {
				n.Learned++
			}
		}
		n.Children = t.buildNodes(tag.id, visible, seen)
		nodes = append(nodes, n)
	}
	return nodes
}
