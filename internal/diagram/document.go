// Package diagram holds the infrastructure diagram document: a containment
// tree of components rooted at a region, plus a flat set of relationships
// between component ids.
//
// A Document is not safe for concurrent mutation. Callers serialize access.
package diagram

import (
	"fmt"
	"slices"
)

// Default region attributes for a new document.
const (
	DefaultRegionName = "Default Region"
	DefaultAWSRegion  = "us-east-1"
)

// Document is the aggregate root of a diagram.
type Document struct {
	id              string
	name            string
	region          *Component
	relationships   []Relationship
	terraformSource string
	sourceFiles     *SourceFiles

	settings settings
}

// New returns an empty document with a default region.
func New(name string, opts ...Option) *Document {
	s := defaultSettings()
	for _, o := range opts {
		o(&s)
	}
	return &Document{
		id:       s.newID(),
		name:     name,
		region:   NewRegion(s.newID(), DefaultRegionName, DefaultAWSRegion),
		settings: s,
	}
}

func (d *Document) ID() string   { return d.id }
func (d *Document) Name() string { return d.name }

// NewID draws a fresh identifier from the document's IDSource.
func (d *Document) NewID() string { return d.settings.newID() }

// Region returns the root container.
func (d *Document) Region() *Component { return d.region }

// Relationships returns a copy of the relationship set.
func (d *Document) Relationships() []Relationship {
	return slices.Clone(d.relationships)
}

// TerraformSource returns the raw source text the diagram was built from.
func (d *Document) TerraformSource() string { return d.terraformSource }

// SetTerraformSource stores raw source text. It is not interpreted.
func (d *Document) SetTerraformSource(src string) { d.terraformSource = src }

// SourceFiles returns the provenance record, or nil.
func (d *Document) SourceFiles() *SourceFiles { return d.sourceFiles }

// SetSourceFiles records where the diagram came from. File existence is not checked.
func (d *Document) SetSourceFiles(rootFolder string, files []string) {
	d.sourceFiles = &SourceFiles{RootFolder: rootFolder, Files: slices.Clone(files)}
}

// AddComponent appends c to the container with id parentID, or to the
// region when parentID is empty. The first container found by a pre-order
// search wins.
//
// If no container matches, the result depends on the MissingParentPolicy:
// with FallbackToRoot c is appended to the region and a *ParentNotFoundError
// with FellBackToRoot set is returned; with FailOnMissingParent nothing is
// inserted. Either error wraps ErrParentNotFound.
//
// Ids already present in the tree, or repeated within c's own subtree, are
// rejected with ErrDuplicateComponent.
func (d *Document) AddComponent(c *Component, parentID string) error {
	if c == nil {
		return fmt.Errorf("add component: nil component")
	}
	var dup string
	seen := make(map[string]bool)
	c.walk(nil, func(n, _ *Component) bool {
		if dup != "" {
			return false
		}
		if seen[n.id] || d.contains(n.id) {
			dup = n.id
			return false
		}
		seen[n.id] = true
		return true
	})
	if dup != "" {
		return fmt.Errorf("add %s: %w: %s", c.id, ErrDuplicateComponent, dup)
	}

	if parentID == "" {
		return d.region.AddChild(c)
	}
	parent := d.region.findContainer(parentID)
	if parent != nil {
		return parent.AddChild(c)
	}

	perr := &ParentNotFoundError{ComponentID: c.id, ParentID: parentID}
	if d.settings.missingParent == FailOnMissingParent {
		if existing, ok := d.FindComponentByID(parentID); ok && !existing.IsContainer() {
			return fmt.Errorf("add %s to %s: %w", c.id, parentID, ErrNotContainer)
		}
		return perr
	}
	perr.FellBackToRoot = true
	d.settings.log.Warn("parent container not found, appending to region",
		"component_id", c.id, "parent_id", parentID)
	if err := d.region.AddChild(c); err != nil {
		return err
	}
	return perr
}

// RemoveComponent removes the component with the given id, together with its
// subtree, and prunes every relationship touching any removed id. The region cannot be
// removed. Removing an absent id is a no-op.
func (d *Document) RemoveComponent(id string) bool {
	if id == d.region.id {
		return false
	}
	removed, ok := d.region.remove(id)
	if !ok {
		return false
	}
	gone := make(map[string]struct{})
	removed.walk(nil, func(n, _ *Component) bool {
		gone[n.id] = struct{}{}
		return true
	})
	before := len(d.relationships)
	d.relationships = slices.DeleteFunc(d.relationships, func(r Relationship) bool {
		_, src := gone[r.SourceID]
		_, dst := gone[r.TargetID]
		return src || dst
	})
	if pruned := before - len(d.relationships); pruned > 0 {
		d.settings.log.Debug("pruned relationships of removed component",
			"component_id", id, "count", pruned)
	}
	return true
}

// FindComponentByID returns the component with the given id. The region
// itself is returned for its own id. The boolean is false when nothing matches.
func (d *Document) FindComponentByID(id string) (*Component, bool) {
	if id == d.region.id {
		return d.region, true
	}
	if c := d.region.find(id); c != nil {
		return c, true
	}
	return nil, false
}

func (d *Document) contains(id string) bool {
	_, ok := d.FindComponentByID(id)
	return ok
}

// ParentOf returns the container directly holding id. The region has no parent.
func (d *Document) ParentOf(id string) (*Component, bool) {
	p := d.region.findParent(id)
	return p, p != nil
}

// AddRelationship links two existing components. If either id is missing
// nothing is stored and an *EndpointNotFoundError is returned. An empty type
// defaults to DependsOn.
func (d *Document) AddRelationship(sourceID, targetID string, typ RelationshipType, label string) (Relationship, error) {
	var missing []string
	if !d.contains(sourceID) {
		missing = append(missing, sourceID)
	}
	if !d.contains(targetID) {
		missing = append(missing, targetID)
	}
	if len(missing) > 0 {
		return Relationship{}, &EndpointNotFoundError{SourceID: sourceID, TargetID: targetID, Missing: missing}
	}
	if typ == "" {
		typ = DependsOn
	}
	r := Relationship{
		ID:       d.settings.newID(),
		SourceID: sourceID,
		TargetID: targetID,
		Type:     typ,
		Label:    label,
	}
	d.relationships = append(d.relationships, r)
	return r, nil
}

// RemoveRelationship deletes the relationship with the given id. Absent ids are a no-op.
func (d *Document) RemoveRelationship(id string) bool {
	before := len(d.relationships)
	d.relationships = slices.DeleteFunc(d.relationships, func(r Relationship) bool {
		return r.ID == id
	})
	return len(d.relationships) != before
}

// RelationshipsWithSource returns relationships whose source is id.
func (d *Document) RelationshipsWithSource(id string) []Relationship {
	var out []Relationship
	for _, r := range d.relationships {
		if r.SourceID == id {
			out = append(out, r)
		}
	}
	return out
}

// RelationshipsWithTarget returns relationships whose target is id.
func (d *Document) RelationshipsWithTarget(id string) []Relationship {
	var out []Relationship
	for _, r := range d.relationships {
		if r.TargetID == id {
			out = append(out, r)
		}
	}
	return out
}

// Walk visits the region and every descendant in pre-order with its parent
// (nil for the region). Returning false skips the subtree.
func (d *Document) Walk(fn func(c, parent *Component) bool) {
	d.region.walk(nil, fn)
}

// Components returns every component below the region in pre-order.
func (d *Document) Components() []*Component {
	var out []*Component
	d.Walk(func(c, parent *Component) bool {
		if parent != nil {
			out = append(out, c)
		}
		return true
	})
	return out
}
