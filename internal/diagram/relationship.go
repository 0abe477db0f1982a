package diagram

// RelationshipType is the kind of a Relationship.
type RelationshipType string

const (
	// DependsOn: the source needs the target to exist first.
	DependsOn RelationshipType = "depends_on"
	// References: the source reads an attribute of the target.
	References RelationshipType = "references"
	// ConnectsTo: the source is attached to the target (e.g. security group -> instance).
	ConnectsTo RelationshipType = "connects_to"
	// Contains: logical containment outside the tree (e.g. db_subnet_group -> rds_instance).
	Contains RelationshipType = "contains"
)

// Relationship is a directed, typed edge between two component ids. It does
// not own either endpoint.
type Relationship struct {
	ID       string
	SourceID string
	TargetID string
	Type     RelationshipType
	Label    string
}

// Dependency returns the component that must exist first (dependency) and
// the one that needs it (dependent).
func (r Relationship) Dependency() (dependency, dependent string) {
	switch r.Type {
	case ConnectsTo, Contains:
		return r.SourceID, r.TargetID
	default:
		return r.TargetID, r.SourceID
	}
}

// Touches reports whether id is either endpoint.
func (r Relationship) Touches(id string) bool {
	return r.SourceID == id || r.TargetID == id
}

// Record returns the JSON form of r.
func (r Relationship) Record() RelationshipRecord {
	return RelationshipRecord{
		ID:       r.ID,
		SourceID: r.SourceID,
		TargetID: r.TargetID,
		Type:     string(r.Type),
		Label:    r.Label,
	}
}

func relationshipFromRecord(rec RelationshipRecord) Relationship {
	return Relationship{
		ID:       rec.ID,
		SourceID: rec.SourceID,
		TargetID: rec.TargetID,
		Type:     RelationshipType(rec.Type),
		Label:    rec.Label,
	}
}
