package diagram

import (
	"fmt"
)

// ValidationError is a single structural problem found in a document.
type ValidationError struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"` // error
	NodeID     string `json:"node_id,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

func schemaError(nodeID, msg, suggestion string) ValidationError {
	return ValidationError{Type: "schema_error", Severity: "error", NodeID: nodeID, Message: msg, Suggestion: suggestion}
}

// Validate checks tree and referential invariants. Kind-specific attribute
// checks are done by the resource handlers.
func Validate(d *Document) []ValidationError {
	if d == nil {
		return []ValidationError{schemaError("", "document is nil", "")}
	}

	var errs []ValidationError
	if d.region.typ != TypeRegion {
		errs = append(errs, schemaError(d.region.id,
			fmt.Sprintf("root component has type %q", d.region.typ), "The root must be a region"))
	}

	seen := make(map[string]bool)
	d.Walk(func(c, parent *Component) bool {
		switch {
		case c.id == "":
			errs = append(errs, schemaError("", "component has empty id", "Set component.id"))
		case seen[c.id]:
			errs = append(errs, schemaError(c.id, "duplicate component id: "+c.id, "Use unique ids for each component"))
		default:
			seen[c.id] = true
		}
		if c.typ == "" {
			errs = append(errs, schemaError(c.id, "component.type is required", "Set component.type (e.g. vpc, ec2_instance)"))
		}
		if parent != nil && c.typ == TypeRegion {
			errs = append(errs, schemaError(c.id, "nested region", "Only the root may be a region"))
		}
		if !c.container && len(c.children) > 0 {
			errs = append(errs, schemaError(c.id, "leaf component holds children", "Move the children to a container"))
		}
		return true
	})

	relSeen := make(map[string]bool)
	for i, r := range d.relationships {
		if r.ID == "" {
			errs = append(errs, schemaError("", fmt.Sprintf("relationship at index %d has empty id", i), "Set relationship.id"))
		} else if relSeen[r.ID] {
			errs = append(errs, schemaError("", "duplicate relationship id: "+r.ID, "Use unique relationship ids"))
		} else {
			relSeen[r.ID] = true
		}
		if r.Type == "" {
			errs = append(errs, schemaError("", fmt.Sprintf("relationship %s has empty type", r.ID), "Set relationship.type (e.g. depends_on)"))
		}
		if !seen[r.SourceID] {
			errs = append(errs, schemaError(r.SourceID, "relationship source not found: "+r.SourceID, "Reference an existing component id"))
		}
		if !seen[r.TargetID] {
			errs = append(errs, schemaError(r.TargetID, "relationship target not found: "+r.TargetID, "Reference an existing component id"))
		}
	}
	return errs
}
