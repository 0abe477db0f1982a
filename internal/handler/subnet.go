package handler

import (
	"github.com/tfdiagram/tfdiagram/internal/diagram"
	"github.com/tfdiagram/tfdiagram/internal/result"
	"github.com/tfdiagram/tfdiagram/internal/terraform"
)

// TypeSubnet is a container placed inside a vpc.
const TypeSubnet = "subnet"

type subnetHandler struct{}

func init() {
	builtin(TypeSubnet, "aws_subnet", true, subnetHandler{})
}

func (subnetHandler) ResourceType() string { return TypeSubnet }

func (subnetHandler) Validate(c *diagram.Component) ([]result.Error, []result.Warning) {
	var errs []result.Error
	if diagram.GetStr(c.Attributes(), "cidr_block") == "" {
		errs = append(errs, result.Required(c.ID(), "cidr_block", "Set attributes.cidr_block"))
	}
	return errs, nil
}

func (subnetHandler) GenerateHCL(c *diagram.Component, d *diagram.Document, refs RefMap) ([]byte, error) {
	block := terraform.ResourceBlock("aws_subnet", selfName(c, refs))
	body := block.Body()

	p := c.Attributes()
	terraform.SetAttributeStr(body, "cidr_block", diagram.GetStr(p, "cidr_block"))
	terraform.SetAttributeStr(body, "availability_zone", diagram.GetStr(p, "availability_zone"))
	if diagram.GetBool(p, "map_public_ip_on_launch") {
		terraform.SetAttributeBool(body, "map_public_ip_on_launch", true)
	}

	// vpc_id comes from the enclosing vpc
	if addr, ok := parentRef(c, d, refs, TypeVPC); ok {
		body.SetAttributeTraversal("vpc_id", terraform.RefTraversal(addr, "id"))
	}
	terraform.SetAttributeMap(body, "tags", nameTags(c))

	return terraform.BlockToBytes(block), nil
}
