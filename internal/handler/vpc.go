package handler

import (
	"github.com/tfdiagram/tfdiagram/internal/diagram"
	"github.com/tfdiagram/tfdiagram/internal/result"
	"github.com/tfdiagram/tfdiagram/internal/terraform"
)

// TypeVPC holds subnets, security groups and anything placed in the network.
const TypeVPC = "vpc"

type vpcHandler struct{}

func init() {
	builtin(TypeVPC, "aws_vpc", true, vpcHandler{})
}

func (vpcHandler) ResourceType() string { return TypeVPC }

func (vpcHandler) Validate(c *diagram.Component) ([]result.Error, []result.Warning) {
	var errs []result.Error
	var warns []result.Warning
	p := c.Attributes()
	if diagram.GetStr(p, "cidr_block") == "" {
		errs = append(errs, result.Required(c.ID(), "cidr_block", "Set attributes.cidr_block (e.g. 10.0.0.0/16)"))
	}
	if !diagram.GetBool(p, "enable_dns_support") {
		warns = append(warns, result.Advise(c.ID(), "DNS support is disabled", "Set attributes.enable_dns_support to true"))
	}
	return errs, warns
}

func (vpcHandler) GenerateHCL(c *diagram.Component, d *diagram.Document, refs RefMap) ([]byte, error) {
	block := terraform.ResourceBlock("aws_vpc", selfName(c, refs))
	body := block.Body()

	p := c.Attributes()
	terraform.SetAttributeStr(body, "cidr_block", diagram.GetStr(p, "cidr_block"))
	terraform.SetAttributeBool(body, "enable_dns_hostnames", diagram.GetBool(p, "enable_dns_hostnames"))
	terraform.SetAttributeBool(body, "enable_dns_support", diagram.GetBool(p, "enable_dns_support"))
	terraform.SetAttributeMap(body, "tags", nameTags(c))

	return terraform.BlockToBytes(block), nil
}
