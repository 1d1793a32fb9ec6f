package taxonomy

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Taxonomy is an insertion-ordered forest of ability tags. It is not safe
// for concurrent use; callers own one instance per session.
type Taxonomy struct {
	order  []uuid.UUID
	byID   map[uuid.UUID]*AbilityTag
	byName map[string]uuid.UUID
}

// New returns an empty taxonomy.
func New() *Taxonomy {
	return &Taxonomy{
		byID:   make(map[uuid.UUID]*AbilityTag),
		byName: make(map[string]uuid.UUID),
	}
}

// Len returns the number of tags.
func (t *Taxonomy) Len() int { return len(t.order) }

// Get returns the tag with the given name.
func (t *Taxonomy) Get(name string) (*AbilityTag, bool) {
	id, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return t.byID[id], true
}

func (t *Taxonomy) mustGet(name string) (*AbilityTag, error) {
	tag, ok := t.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTag, name)
	}
	return tag, nil
}

// Tags returns every tag in insertion order.
func (t *Taxonomy) Tags() []*AbilityTag {
	tags := make([]*AbilityTag, 0, len(t.order))
	for _, id := range t.order {
		tags = append(tags, t.byID[id])
	}
	return tags
}

// Names returns every tag name in insertion order.
func (t *Taxonomy) Names() []string {
	names := make([]string, 0, len(t.order))
	for _, id := range t.order {
		names = append(names, t.byID[id].name)
	}
	return names
}

// ParentOf returns the parent's name, or "" for a root or unknown tag.
func (t *Taxonomy) ParentOf(name string) string {
	tag, ok := t.Get(name)
	if !ok || tag.parent == uuid.Nil {
		return ""
	}
	if p, ok := t.byID[tag.parent]; ok {
		return p.name
	}
	return ""
}

// Add inserts a new tag. parent may be "" for a root.
func (t *Taxonomy) Add(name, parent string) (*AbilityTag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if _, exists := t.byName[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	parentID := uuid.Nil
	if parent != "" {
		p, ok := t.Get(parent)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParent, parent)
		}
		parentID = p.id
	}

	tag := &AbilityTag{id: uuid.New(), name: name, parent: parentID}
	t.insert(tag)
	return tag, nil
}

func (t *Taxonomy) insert(tag *AbilityTag) {
	t.order = append(t.order, tag.id)
	t.byID[tag.id] = tag
	t.byName[tag.name] = tag.id
}

// Rename changes a tag's name. Children keep their link because parents
// are referenced by id.
func (t *Taxonomy) Rename(oldName, newName string) error {
	tag, err := t.mustGet(oldName)
	if err != nil {
		return err
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrEmptyName
	}
	if newName == oldName {
		return nil
	}
	if _, exists := t.byName[newName]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, newName)
	}

	delete(t.byName, oldName)
	tag.name = newName
	t.byName[newName] = tag.id
	return nil
}

// Reparent moves a tag under newParent, or to the root level when
// newParent is "". It fails with ErrCycle when newParent is the tag itself
// or one of its descendants.
func (t *Taxonomy) Reparent(name, newParent string) error {
	tag, err := t.mustGet(name)
	if err != nil {
		return err
	}
	if newParent == "" {
		tag.parent = uuid.Nil
		return nil
	}
	p, ok := t.Get(newParent)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParent, newParent)
	}
	if t.isAncestorOrSelf(tag.id, p.id) {
		return fmt.Errorf("%w: %q is %q or one of its descendants", ErrCycle, newParent, name)
	}
	tag.parent = p.id
	return nil
}

// isAncestorOrSelf walks up from id and reports whether candidate is on
// the chain, id included.
func (t *Taxonomy) isAncestorOrSelf(candidate, id uuid.UUID) bool {
	seen := make(map[uuid.UUID]bool)
	for cur := id; cur != uuid.Nil && !seen[cur]; {
		if cur == candidate {
			return true
		}
		seen[cur] = true
		tag, ok := t.byID[cur]
		if !ok {
			return false
		}
		cur = tag.parent
	}
	return false
}

// Remove deletes a tag together with its knowledge points. Tags that still
// have children cannot be removed.
func (t *Taxonomy) Remove(name string) error {
	tag, err := t.mustGet(name)
	if err != nil {
		return err
	}
	if children := t.ChildrenOf(name); len(children) > 0 {
		return fmt.Errorf("%w: %q has %d", ErrHasChildren, name, len(children))
	}

	delete(t.byName, tag.name)
	delete(t.byID, tag.id)
	for i, id := range t.order {
		if id == tag.id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

// ChildrenOf returns the direct children of name in insertion order.
func (t *Taxonomy) ChildrenOf(name string) []*AbilityTag {
	tag, ok := t.Get(name)
	if !ok {
		return nil
	}
	return t.childrenOfID(tag.id)
}

func (t *Taxonomy) childrenOfID(id uuid.UUID) []*AbilityTag {
	var children []*AbilityTag
	for _, cid := range t.order {
		if c := t.byID[cid]; c.parent == id {
			children = append(children, c)
		}
	}
	return children
}

// Roots returns the tags without a parent, in insertion order.
func (t *Taxonomy) Roots() []*AbilityTag {
	return t.childrenOfID(uuid.Nil)
}

// Predicate selects tags, e.g. for search filtering.
type Predicate func(*AbilityTag) bool

// NameContains matches tags whose name contains term, ignoring case.
// An empty term matches everything.
func NameContains(term string) Predicate {
	term = strings.ToLower(strings.TrimSpace(term))
	return func(tag *AbilityTag) bool {
		return term == "" || strings.Contains(strings.ToLower(tag.name), term)
	}
}

// SubtreeMatches reports whether name or any of its descendants satisfies
// pred. Unknown names never match.
func (t *Taxonomy) SubtreeMatches(name string, pred Predicate) bool {
	root, ok := t.Get(name)
	if !ok {
		return false
	}
	seen := make(map[uuid.UUID]bool)
	stack := []*AbilityTag{root}
	for len(stack) > 0 {
		tag := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[tag.id] {
			continue
		}
		seen[tag.id] = true
		if pred(tag) {
			return true
		}
		stack = append(stack, t.childrenOfID(tag.id)...)
	}
	return false
}

// Visible returns the set of tag names that stay on screen under a
// hierarchical filter: every match plus all of its ancestors.
func (t *Taxonomy) Visible(pred Predicate) map[string]bool {
	visible := make(map[string]bool)
	for _, id := range t.order {
		tag := t.byID[id]
		if !pred(tag) {
			continue
		}
		for _, name := range t.chain(tag) {
			visible[name] = true
		}
	}
	return visible
}

// AncestorChain returns the names from the root down to name inclusive.
// If a parent link is broken the chain stops there and the partial chain
// is returned; only an unknown starting name is an error.
func (t *Taxonomy) AncestorChain(name string) ([]string, error) {
	tag, err := t.mustGet(name)
	if err != nil {
		return nil, err
	}
	return t.chain(tag), nil
}

func (t *Taxonomy) chain(tag *AbilityTag) []string {
	var rev []string
	seen := make(map[uuid.UUID]bool)
	for cur := tag; cur != nil && !seen[cur.id]; {
		seen[cur.id] = true
		rev = append(rev, cur.name)
		if cur.parent == uuid.Nil {
			break
		}
		cur = t.byID[cur.parent]
	}
	chain := make([]string, len(rev))
	for i, n := range rev {
		chain[len(rev)-1-i] = n
	}
	return chain
}

// AddPoint appends a new, unlearned knowledge point to a tag.
func (t *Taxonomy) AddPoint(tagName, content string) (*KnowledgePoint, error) {
	tag, err := t.mustGet(tagName)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	p := &KnowledgePoint{Content: content}
	tag.KnowledgePoints = append(tag.KnowledgePoints, p)
	return p, nil
}

// Point returns the knowledge point at index within a tag.
func (t *Taxonomy) Point(tagName string, index int) (*KnowledgePoint, error) {
	tag, err := t.mustGet(tagName)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(tag.KnowledgePoints) {
		return nil, fmt.Errorf("%w: %q has %d, got %d", ErrPointIndex, tagName, len(tag.KnowledgePoints), index)
	}
	return tag.KnowledgePoints[index], nil
}

// RemovePoint deletes the knowledge point at index within a tag.
func (t *Taxonomy) RemovePoint(tagName string, index int) error {
	if _, err := t.Point(tagName, index); err != nil {
		return err
	}
	tag, _ := t.Get(tagName)
	tag.KnowledgePoints = append(tag.KnowledgePoints[:index], tag.KnowledgePoints[index+1:]...)
	return nil
}

// Walk calls fn for every knowledge point, tags in insertion order and
// points in list order. Returning false stops the walk.
func (t *Taxonomy) Walk(fn func(tag *AbilityTag, index int, p *KnowledgePoint) bool) {
	for _, id := range t.order {
		tag := t.byID[id]
		for i, p := range tag.KnowledgePoints {
			if !fn(tag, i, p) {
				return
			}
		}
	}
}

// Clone returns a deep copy. Tag ids are preserved.
func (t *Taxonomy) Clone() *Taxonomy {
	cp := New()
	for _, id := range t.order {
		src := t.byID[id]
		tag := &AbilityTag{id: src.id, name: src.name, parent: src.parent}
		if src.KnowledgePoints != nil {
			tag.KnowledgePoints = make([]*KnowledgePoint, len(src.KnowledgePoints))
			for i, p := range src.KnowledgePoints {
				tag.KnowledgePoints[i] = p.clone()
			}
		}
		cp.insert(tag)
	}
	return cp
}
