// Package taxonomy holds the ability forest: named tags with optional
// single parents, each owning an ordered list of knowledge points.
//
// Parent links are stored by a stable internal id rather than by name, so
// renaming a tag never detaches its children. Names stay the public key:
// every operation addresses tags by exact, case-sensitive name.
package taxonomy

import (
	"github.com/google/uuid"
	"github.com/lazypower/kaizen/internal/civil"
)

// AbilityTag is a node in the taxonomy. Its name and parent are only
// changed through Taxonomy methods so the name index and the acyclic
// invariant hold.
type AbilityTag struct {
	id     uuid.UUID
	name   string
	parent uuid.UUID // uuid.Nil for roots

	KnowledgePoints []*KnowledgePoint
}

// ID returns the tag's stable identifier. It survives renames but is not
// persisted; it is reassigned on every load.
func (t *AbilityTag) ID() uuid.UUID { return t.id }

// Name returns the tag's unique name.
func (t *AbilityTag) Name() string { return t.name }

// IsRoot reports whether the tag has no parent.
func (t *AbilityTag) IsRoot() bool { return t.parent == uuid.Nil }

// KnowledgePoint is an atomic topic tracked through the learn/recall cycle.
type KnowledgePoint struct {
	Content    string      `json:"content"`
	Learned    bool        `json:"learned"`
	LastRecall *civil.Date `json:"last_recall"`
	NextRecall *civil.Date `json:"next_recall"`

	// RecallCount counts successful recalls after learning started.
	RecallCount int `json:"recall_count,omitempty"`
}

// IsDue reports whether a learned point is scheduled on or before today.
func (p *KnowledgePoint) IsDue(today civil.Date) bool {
	return p.Learned && p.NextRecall != nil && !p.NextRecall.After(today)
}

func (p *KnowledgePoint) clone() *KnowledgePoint {
	cp := *p
	if p.LastRecall != nil {
		d := *p.LastRecall
		cp.LastRecall = &d
	}
	if p.NextRecall != nil {
		d := *p.NextRecall
		cp.NextRecall = &d
	}
	return &cp
}

// normalize drops zero dates, which legacy files store as "".
func (p *KnowledgePoint) normalize() {
	if p.LastRecall != nil && p.LastRecall.IsZero() {
		p.LastRecall = nil
	}
	if p.NextRecall != nil && p.NextRecall.IsZero() {
		p.NextRecall = nil
	}
}
