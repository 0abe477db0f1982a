package handler

import (
	"github.com/tfdiagram/tfdiagram/internal/diagram"
	"github.com/tfdiagram/tfdiagram/internal/result"
	"github.com/tfdiagram/tfdiagram/internal/terraform"
)

// TypeEC2Instance is usually placed inside a subnet.
const TypeEC2Instance = "ec2_instance"

type ec2Handler struct{}

func init() {
	builtin(TypeEC2Instance, "aws_instance", false, ec2Handler{})
}

func (ec2Handler) ResourceType() string { return TypeEC2Instance }

func (ec2Handler) Validate(c *diagram.Component) ([]result.Error, []result.Warning) {
	var errs []result.Error
	p := c.Attributes()
	if diagram.GetStr(p, "ami") == "" {
		errs = append(errs, result.Required(c.ID(), "ami", "Set attributes.ami"))
	}
	if diagram.GetStr(p, "instance_type") == "" {
		errs = append(errs, result.Required(c.ID(), "instance_type", "Set attributes.instance_type (e.g. t3.micro)"))
	}
	return errs, nil
}

func (ec2Handler) GenerateHCL(c *diagram.Component, d *diagram.Document, refs RefMap) ([]byte, error) {
	block := terraform.ResourceBlock("aws_instance", selfName(c, refs))
	body := block.Body()

	p := c.Attributes()
	terraform.SetAttributeStr(body, "ami", diagram.GetStr(p, "ami"))
	terraform.SetAttributeStr(body, "instance_type", diagram.GetStr(p, "instance_type"))
	terraform.SetAttributeStr(body, "key_name", diagram.GetStr(p, "key_name"))

	if addr, ok := parentRef(c, d, refs, TypeSubnet); ok {
		body.SetAttributeTraversal("subnet_id", terraform.RefTraversal(addr, "id"))
	}
	setRefList(body, "vpc_security_group_ids", incomingRefs(c, d, refs, diagram.ConnectsTo, TypeSecurityGroup), "id")
	terraform.SetAttributeMap(body, "tags", nameTags(c))

	return terraform.BlockToBytes(block), nil
}
