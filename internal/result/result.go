package result

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Error is a validation or generation failure tied to a component.
type Error struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	NodeID     string `json:"node_id,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Warning is a best-practice or non-fatal finding.
type Warning struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	NodeID     string `json:"node_id,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Required reports a missing required attribute.
func Required(nodeID, attr, suggestion string) Error {
	return Error{
		Type: "validation_error", Severity: SeverityError, NodeID: nodeID,
		Message: attr + " is required", Suggestion: suggestion,
	}
}

// Advise builds a best-practice warning.
func Advise(nodeID, msg, suggestion string) Warning {
	return Warning{
		Type: "best_practice", Severity: SeverityWarning, NodeID: nodeID,
		Message: msg, Suggestion: suggestion,
	}
}

// ExportResult is the outcome of exporting a document to Terraform.
type ExportResult struct {
	Success        bool              `json:"success"`
	TerraformFiles map[string][]byte `json:"-"` // filename -> content
	Errors         []Error           `json:"errors,omitempty"`
	Warnings       []Warning         `json:"warnings,omitempty"`
}
