package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Reconstructor rebuilds a single component from its record. Children are
// handled by the caller. Implementations return an error wrapping
// ErrUnknownComponentType when the type tag is not registered.
type Reconstructor interface {
	Reconstruct(rec NodeRecord) (*Component, error)
}

// SkippedNode is a node dropped during load under SkipUnknown. Descendants
// lists the ids of the subtree dropped with it, in pre-order.
type SkippedNode struct {
	ParentID    string
	NodeID      string
	Type        string
	Descendants []string
	Err         error
}

// LoadResult is the outcome of rebuilding a document from its record.
type LoadResult struct {
	Document *Document
	Skipped  []SkippedNode
}

// Record projects d into its plain JSON form. It does not modify d.
func (d *Document) Record() DocumentRecord {
	rec := DocumentRecord{
		ID:              d.id,
		Name:            d.name,
		Region:          d.region.Record(),
		Relationships:   make([]RelationshipRecord, len(d.relationships)),
		TerraformSource: d.terraformSource,
	}
	for i, r := range d.relationships {
		rec.Relationships[i] = r.Record()
	}
	if d.sourceFiles != nil {
		rec.SourceFiles = &SourceFiles{
			RootFolder: d.sourceFiles.RootFolder,
			Files:      append([]string{}, d.sourceFiles.Files...),
		}
	}
	return rec
}

// MarshalJSON implements json.Marshaler.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Record())
}

// FromRecord rebuilds a document, dispatching every node to r. Relationships
// are taken as stored and not checked against the tree.
func FromRecord(rec DocumentRecord, r Reconstructor, opts ...Option) (*LoadResult, error) {
	s := defaultSettings()
	for _, o := range opts {
		o(&s)
	}

	region, err := r.Reconstruct(rec.Region)
	if err != nil {
		return nil, fmt.Errorf("region: %w", err)
	}
	if !region.IsContainer() {
		return nil, fmt.Errorf("region %s: %w", rec.Region.ID, ErrNotContainer)
	}

	res := &LoadResult{}
	if err := rebuildChildren(region, rec.Region.Children, r, s, res); err != nil {
		return nil, err
	}

	d := &Document{
		id:              rec.ID,
		name:            rec.Name,
		region:          region,
		relationships:   make([]Relationship, 0, len(rec.Relationships)),
		terraformSource: rec.TerraformSource,
		settings:        s,
	}
	for _, rr := range rec.Relationships {
		d.relationships = append(d.relationships, relationshipFromRecord(rr))
	}
	if rec.SourceFiles != nil {
		d.SetSourceFiles(rec.SourceFiles.RootFolder, rec.SourceFiles.Files)
	}
	res.Document = d
	return res, nil
}

func rebuildChildren(parent *Component, children []NodeRecord, r Reconstructor, s settings, res *LoadResult) error {
	for _, childRec := range children {
		child, err := r.Reconstruct(childRec)
		if err != nil {
			if s.unknownType == FailOnUnknown {
				return fmt.Errorf("node %s: %w", childRec.ID, err)
			}
			s.log.Warn("skipping node", "node_id", childRec.ID, "type", childRec.Type, "parent_id", parent.id, "error", err)
			res.Skipped = append(res.Skipped, SkippedNode{
				ParentID:    parent.id,
				NodeID:      childRec.ID,
				Type:        childRec.Type,
				Descendants: descendantIDs(childRec.Children, nil),
				Err:         err,
			})
			continue
		}
		if err := parent.AddChild(child); err != nil {
			return fmt.Errorf("node %s under %s: %w", childRec.ID, parent.id, err)
		}
		if len(childRec.Children) > 0 {
			if err := rebuildChildren(child, childRec.Children, r, s, res); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s SkippedNode) String() string {
	msg := fmt.Sprintf("%s (%s)", s.NodeID, s.Type)
	if len(s.Descendants) > 0 {
		msg += fmt.Sprintf(" with %d descendant(s) %s", len(s.Descendants), strings.Join(s.Descendants, ", "))
	}
	return msg + ": " + s.Err.Error()
}

func descendantIDs(children []NodeRecord, out []string) []string {
	for _, ch := range children {
		out = append(out, ch.ID)
		out = descendantIDs(ch.Children, out)
	}
	return out
}

// Marshal encodes d as indented JSON.
func Marshal(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes d as indented JSON to w.
func Write(d *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d.Record()); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes d to path as JSON.
func WriteFile(d *Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(d, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Unmarshal decodes JSON produced by Marshal. Unknown keys are ignored and
// numbers decode as json.Number so integers keep their exact value.
func Unmarshal(data []byte, r Reconstructor, opts ...Option) (*LoadResult, error) {
	return Read(bytes.NewReader(data), r, opts...)
}

// Read decodes a document from rd.
func Read(rd io.Reader, r Reconstructor, opts ...Option) (*LoadResult, error) {
	var rec DocumentRecord
	dec := json.NewDecoder(rd)
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return FromRecord(rec, r, opts...)
}

// ReadFile decodes the document stored at path.
func ReadFile(path string, r Reconstructor, opts ...Option) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, r, opts...)
}
