package handler

import (
	"github.com/tfdiagram/tfdiagram/internal/diagram"
	"github.com/tfdiagram/tfdiagram/internal/result"
	"github.com/tfdiagram/tfdiagram/internal/terraform"
)

// TypeDBSubnetGroup spans the subnets it references.
const TypeDBSubnetGroup = "db_subnet_group"

type dbSubnetGroupHandler struct{}

func init() {
	builtin(TypeDBSubnetGroup, "aws_db_subnet_group", false, dbSubnetGroupHandler{})
}

func (dbSubnetGroupHandler) ResourceType() string { return TypeDBSubnetGroup }

func (dbSubnetGroupHandler) Validate(c *diagram.Component) ([]result.Error, []result.Warning) {
	var errs []result.Error
	p := c.Attributes()
	if diagram.GetStr(p, "name") == "" && diagram.GetStr(p, diagram.AttrLabel) == "" {
		errs = append(errs, result.Required(c.ID(), "name or label", "Set attributes.name or attributes.label"))
	}
	return errs, nil
}

func (dbSubnetGroupHandler) GenerateHCL(c *diagram.Component, d *diagram.Document, refs RefMap) ([]byte, error) {
	block := terraform.ResourceBlock("aws_db_subnet_group", selfName(c, refs))
	body := block.Body()

	p := c.Attributes()
	name := diagram.GetStr(p, "name")
	if name == "" {
		name = diagram.GetStr(p, diagram.AttrLabel)
	}
	terraform.SetAttributeStr(body, "name", name)

	// subnet_ids from relationships pointing at subnets
	var subnets []string
	for _, r := range d.RelationshipsWithSource(c.ID()) {
		target, ok := d.FindComponentByID(r.TargetID)
		if !ok || target.Type() != TypeSubnet {
			continue
		}
		if addr, ok := refs[target.ID()]; ok {
			subnets = append(subnets, addr)
		}
	}
	setRefList(body, "subnet_ids", subnets, "id")
	terraform.SetAttributeMap(body, "tags", nameTags(c))

	return terraform.BlockToBytes(block), nil
}
