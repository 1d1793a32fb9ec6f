package taxonomy

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/lazypower/kaizen/internal/civil"
)

func TestRecordsRoundTrip(t *testing.T) {
	tax := abc(t)
	p, _ := tax.AddPoint("B", "select statement")
	p.Learned = true
	p.LastRecall = civil.Ptr(civil.MustParse("2024-01-01"))
	p.NextRecall = civil.Ptr(civil.MustParse("2024-01-02"))
	p.RecallCount = 2
	tax.AddPoint("B", "unbuffered channels")

	data, err := json.Marshal(tax)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded Taxonomy
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(decoded.Records(), tax.Records()) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded.Records(), tax.Records())
	}
}

func TestRecordWireFormat(t *testing.T) {
	tax := New()
	mustAdd(t, tax, "Go", "")
	mustAdd(t, tax, "Chan", "Go")
	tax.AddPoint("Chan", "close")

	data, err := json.Marshal(tax.Records())
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"name":"Go","parent":null,"knowledge_points":[]},` +
		`{"name":"Chan","parent":"Go","knowledge_points":[{"content":"close","learned":false,"last_recall":null,"next_recall":null}]}]`
	if string(data) != want {
		t.Errorf("wire format:\n got %s\nwant %s", data, want)
	}
}

func TestFromRecordsRepairsDamage(t *testing.T) {
	raw := `[
		{"name": "A", "parent": null},
		{"name": "B", "parent": "A", "knowledge_points": [{"content": "x", "learned": true, "last_recall": "", "next_recall": "2024-02-01"}]},
		{"name": "A", "parent": "B"},
		{"name": "Orphan", "parent": "Gone"},
		{"name": "P", "parent": "Q"},
		{"name": "Q", "parent": "P"}
	]`
	var recs []Record
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		t.Fatal(err)
	}
	tax := FromRecords(recs)

	if got := tax.Names(); !reflect.DeepEqual(got, []string{"A", "B", "Orphan", "P", "Q"}) {
		t.Errorf("Names = %v", got)
	}
	if tax.ParentOf("B") != "A" {
		t.Error("B should stay under A")
	}
	if tax.ParentOf("Orphan") != "" {
		t.Error("Orphan should become a root")
	}
	// P links to Q first; Q -> P would close the loop and is dropped.
	if tax.ParentOf("P") != "Q" || tax.ParentOf("Q") != "" {
		t.Errorf("P parent %q, Q parent %q", tax.ParentOf("P"), tax.ParentOf("Q"))
	}

	p, _ := tax.Point("B", 0)
	if p.LastRecall != nil {
		t.Errorf("empty last_recall should decode to nil, got %v", p.LastRecall)
	}
	if p.NextRecall == nil || p.NextRecall.String() != "2024-02-01" {
		t.Errorf("next_recall = %v", p.NextRecall)
	}
}

func TestTagRefsSingleObject(t *testing.T) {
	var doc struct {
		Tags TagRefs `json:"tags"`
	}
	if err := json.Unmarshal([]byte(`{"tags": {"name": "Go", "parent": null}}`), &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(doc.Tags) != 1 || doc.Tags[0].Name != "Go" {
		t.Errorf("Tags = %+v", doc.Tags)
	}

	if err := json.Unmarshal([]byte(`{"tags": [{"name": "A"}, {"name": "B", "parent": "A"}]}`), &doc); err != nil {
		t.Fatalf("Unmarshal array: %v", err)
	}
	if got := doc.Tags.Names(); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("Names = %v", got)
	}

	if err := json.Unmarshal([]byte(`{"tags": 7}`), &doc); err == nil {
		t.Error("expected error for scalar tags")
	}
}

func TestTagRefsMarshalNil(t *testing.T) {
	var doc struct {
		Tags TagRefs `json:"tags"`
	}
	data, _ := json.Marshal(doc)
	if string(data) != `{"tags":[]}` {
		t.Errorf("got %s", data)
	}
}

func TestTagRefsRenameAndResolve(t *testing.T) {
	tax := abc(t)
	refs, err := tax.RefsTo("B", "C")
	if err != nil {
		t.Fatal(err)
	}
	if !refs.Rename("B", "Bee") {
		t.Error("Rename reported no change")
	}
	if refs[0].Name != "Bee" || *refs[1].Parent != "Bee" {
		t.Errorf("refs = %+v", refs)
	}

	tax.Rename("B", "Bee")
	tax.Reparent("C", "A")
	refs.Resolve(tax)
	if *refs[1].Parent != "A" {
		t.Errorf("resolved parent = %q, want A", *refs[1].Parent)
	}

	if _, err := tax.RefsTo("missing"); err == nil {
		t.Error("RefsTo(missing) should fail")
	}
}
