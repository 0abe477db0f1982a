package handler

import (
	"github.com/tfdiagram/tfdiagram/internal/diagram"
	"github.com/tfdiagram/tfdiagram/internal/result"
)

// regionHandler validates the root. The region renders as the provider
// configuration rather than a resource, so GenerateHCL returns nothing.
type regionHandler struct{}

func init() {
	builtin(diagram.TypeRegion, "", true, regionHandler{})
}

func (regionHandler) ResourceType() string { return diagram.TypeRegion }

func (regionHandler) Validate(c *diagram.Component) ([]result.Error, []result.Warning) {
	var warns []result.Warning
	if diagram.GetStr(c.Attributes(), diagram.AttrRegion) == "" {
		warns = append(warns, result.Advise(c.ID(), "region has no AWS region name",
			"Set attributes.region (defaults to "+diagram.DefaultAWSRegion+")"))
	}
	return nil, warns
}

func (regionHandler) GenerateHCL(*diagram.Component, *diagram.Document, RefMap) ([]byte, error) {
	return nil, nil
}
