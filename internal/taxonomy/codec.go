package taxonomy

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lazypower/kaizen/internal/logger"
)

// Record is the persisted shape of a tag.
type Record struct {
	Name            string           `json:"name"`
	Parent          *string          `json:"parent"`
	KnowledgePoints []KnowledgePoint `json:"knowledge_points"`
}

// Records encodes the taxonomy in insertion order.
func (t *Taxonomy) Records() []Record {
	recs := make([]Record, 0, len(t.order))
	for _, id := range t.order {
		tag := t.byID[id]
		rec := Record{
			Name:            tag.name,
			KnowledgePoints: make([]KnowledgePoint, 0, len(tag.KnowledgePoints)),
		}
		if p, ok := t.byID[tag.parent]; ok {
			name := p.name
			rec.Parent = &name
		}
		for _, kp := range tag.KnowledgePoints {
			rec.KnowledgePoints = append(rec.KnowledgePoints, *kp.clone())
		}
		recs = append(recs, rec)
	}
	return recs
}

// FromRecords rebuilds a taxonomy from persisted records. Damaged input
// degrades instead of failing: duplicate names keep the first record,
// and a tag whose parent is missing or would close a cycle becomes a root.
// Each repair is logged.
func FromRecords(recs []Record) *Taxonomy {
	t := New()
	parents := make(map[uuid.UUID]string)

	for _, rec := range recs {
		if rec.Name == "" {
			logger.Warn("taxonomy: skipping tag without a name")
			continue
		}
		if _, dup := t.byName[rec.Name]; dup {
			logger.Warn("taxonomy: skipping duplicate tag", "name", rec.Name)
			continue
		}
		tag := &AbilityTag{id: uuid.New(), name: rec.Name}
		for i := range rec.KnowledgePoints {
			kp := rec.KnowledgePoints[i].clone()
			kp.normalize()
			tag.KnowledgePoints = append(tag.KnowledgePoints, kp)
		}
		t.insert(tag)
		if rec.Parent != nil && *rec.Parent != "" {
			parents[tag.id] = *rec.Parent
		}
	}

	for _, id := range t.order {
		parentName, ok := parents[id]
		if !ok {
			continue
		}
		tag := t.byID[id]
		p, ok := t.Get(parentName)
		if !ok {
			logger.Warn("taxonomy: parent not found, keeping tag as root", "name", tag.name, "parent", parentName)
			continue
		}
		if t.isAncestorOrSelf(tag.id, p.id) {
			logger.Warn("taxonomy: parent link would form a cycle, keeping tag as root", "name", tag.name, "parent", parentName)
			continue
		}
		tag.parent = p.id
	}
	return t
}

// MarshalJSON encodes the taxonomy as an array of records.
func (t *Taxonomy) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Records())
}

// UnmarshalJSON replaces t with the decoded records.
func (t *Taxonomy) UnmarshalJSON(data []byte) error {
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return err
	}
	*t = *FromRecords(recs)
	return nil
}

// TagRef is a by-name reference to a tag as embedded in other records.
type TagRef struct {
	Name   string  `json:"name"`
	Parent *string `json:"parent"`
}

// TagRefs is a list of tag references. Decoding accepts a single object in
// place of an array, which older files store for one-tag fields.
type TagRefs []TagRef

// MarshalJSON always writes an array, never null.
func (r TagRefs) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]TagRef(r))
}

func (r *TagRefs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*r = nil
	case data[0] == '{':
		var one TagRef
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*r = TagRefs{one}
	case data[0] == '[':
		var many []TagRef
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		*r = many
	default:
		return fmt.Errorf("tag refs: unexpected JSON %.20s", data)
	}
	return nil
}

// Names returns the referenced names in order.
func (r TagRefs) Names() []string {
	names := make([]string, len(r))
	for i, ref := range r {
		names[i] = ref.Name
	}
	return names
}

// Rename rewrites references to oldName, both as a name and as a parent.
// It reports whether anything changed.
func (r TagRefs) Rename(oldName, newName string) bool {
	changed := false
	for i := range r {
		if r[i].Name == oldName {
			r[i].Name = newName
			changed = true
		}
		if r[i].Parent != nil && *r[i].Parent == oldName {
			name := newName
			r[i].Parent = &name
			changed = true
		}
	}
	return changed
}

// Resolve refreshes each reference's parent from the live taxonomy.
// References to tags that no longer exist are kept as they are.
func (r TagRefs) Resolve(t *Taxonomy) {
	for i := range r {
		if _, ok := t.Get(r[i].Name); !ok {
			continue
		}
		if parent := t.ParentOf(r[i].Name); parent != "" {
			r[i].Parent = &parent
		} else {
			r[i].Parent = nil
		}
	}
}

// RefsTo builds references for the named tags. Unknown names are an error.
func (t *Taxonomy) RefsTo(names ...string) (TagRefs, error) {
	refs := make(TagRefs, 0, len(names))
	for _, name := range names {
		if _, ok := t.Get(name); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTag, name)
		}
		ref := TagRef{Name: name}
		if parent := t.ParentOf(name); parent != "" {
			ref.Parent = &parent
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
