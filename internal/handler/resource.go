package handler

import (
	"github.com/tfdiagram/tfdiagram/internal/diagram"
	"github.com/tfdiagram/tfdiagram/internal/result"
	"github.com/tfdiagram/tfdiagram/internal/terraform"
)

// TypeResource is the catch-all kind for Terraform resources without a
// dedicated kind. The Terraform type lives in the tf_type attribute.
const TypeResource = "resource"

// reserved attributes are diagram bookkeeping and never rendered.
var reserved = map[string]bool{
	diagram.AttrLabel: true,
	AttrResourceName:  true,
	AttrTFType:        true,
	AttrSourceFile:    true,
}

type resourceHandler struct{}

func init() {
	builtin(TypeResource, "", false, resourceHandler{})
}

func (resourceHandler) ResourceType() string { return TypeResource }

func (resourceHandler) Validate(c *diagram.Component) ([]result.Error, []result.Warning) {
	if diagram.GetStr(c.Attributes(), AttrTFType) == "" {
		return []result.Error{result.Required(c.ID(), AttrTFType, "Set attributes.tf_type (e.g. aws_sqs_queue)")}, nil
	}
	return nil, nil
}

func (resourceHandler) GenerateHCL(c *diagram.Component, d *diagram.Document, refs RefMap) ([]byte, error) {
	block := terraform.ResourceBlock(TerraformType(c), selfName(c, refs))
	body := block.Body()

	p := c.Attributes()
	for _, k := range terraform.SortedKeys(p) {
		if reserved[k] {
			continue
		}
		terraform.SetAttributeAny(body, k, p[k])
	}
	return terraform.BlockToBytes(block), nil
}
