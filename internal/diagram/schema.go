package diagram

// DocumentRecord is the plain JSON form of a Document.
type DocumentRecord struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Region          NodeRecord           `json:"region"`
	Relationships   []RelationshipRecord `json:"relationships"`
	TerraformSource string               `json:"terraformSource,omitempty"`
	SourceFiles     *SourceFiles         `json:"sourceFiles,omitempty"`
}

// NodeRecord is the JSON form of a single component. Children is only
// populated for container kinds.
type NodeRecord struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Attributes map[string]any `json:"attributes"`
	Children   []NodeRecord   `json:"children,omitempty"`
}

// RelationshipRecord is the JSON form of a Relationship.
type RelationshipRecord struct {
	ID       string `json:"id"`
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
	Type     string `json:"type"`
	Label    string `json:"label,omitempty"`
}

// SourceFiles records where the diagram was derived from.
type SourceFiles struct {
	RootFolder string   `json:"rootFolder"`
	Files      []string `json:"files"`
}
