package handler

import (
	"github.com/tfdiagram/tfdiagram/internal/diagram"
	"github.com/tfdiagram/tfdiagram/internal/result"
	"github.com/tfdiagram/tfdiagram/internal/terraform"
	"github.com/zclconf/go-cty/cty"
)

// TypeRDSInstance is a managed database. Its subnet group is linked with a
// contains relationship from a db_subnet_group.
const TypeRDSInstance = "rds_instance"

type rdsHandler struct{}

func init() {
	builtin(TypeRDSInstance, "aws_db_instance", false, rdsHandler{})
}

func (rdsHandler) ResourceType() string { return TypeRDSInstance }

func (rdsHandler) Validate(c *diagram.Component) ([]result.Error, []result.Warning) {
	var errs []result.Error
	var warns []result.Warning
	p := c.Attributes()
	if diagram.GetStr(p, "engine") == "" {
		errs = append(errs, result.Required(c.ID(), "engine", "Set attributes.engine (e.g. postgres)"))
	}
	if diagram.GetStr(p, "instance_class") == "" {
		errs = append(errs, result.Required(c.ID(), "instance_class", "Set attributes.instance_class (e.g. db.t3.micro)"))
	}
	if diagram.GetInt(p, "allocated_storage") == 0 {
		errs = append(errs, result.Required(c.ID(), "allocated_storage", "Set attributes.allocated_storage (GB)"))
	}
	if diagram.GetStr(p, "password") != "" {
		warns = append(warns, result.Advise(c.ID(), "password stored in diagram", "Use manage_master_user_password or a secret reference"))
	}
	return errs, warns
}

func (rdsHandler) GenerateHCL(c *diagram.Component, d *diagram.Document, refs RefMap) ([]byte, error) {
	block := terraform.ResourceBlock("aws_db_instance", selfName(c, refs))
	body := block.Body()

	p := c.Attributes()
	terraform.SetAttributeStr(body, "engine", diagram.GetStr(p, "engine"))
	terraform.SetAttributeStr(body, "engine_version", diagram.GetStr(p, "engine_version"))
	terraform.SetAttributeStr(body, "instance_class", diagram.GetStr(p, "instance_class"))
	terraform.SetAttributeInt(body, "allocated_storage", diagram.GetInt(p, "allocated_storage"))
	terraform.SetAttributeStr(body, "storage_type", diagram.GetStr(p, "storage_type"))
	terraform.SetAttributeStr(body, "db_name", diagram.GetStr(p, "db_name"))
	terraform.SetAttributeStr(body, "username", diagram.GetStr(p, "username"))
	if pw := diagram.GetStr(p, "password"); pw != "" {
		body.SetAttributeValue("password", cty.StringVal(pw))
	}
	if diagram.GetBool(p, "skip_final_snapshot") {
		terraform.SetAttributeBool(body, "skip_final_snapshot", true)
	}
	if n := diagram.GetInt(p, "backup_retention_period"); n > 0 {
		terraform.SetAttributeInt(body, "backup_retention_period", n)
	}
	terraform.SetAttributeBool(body, "multi_az", diagram.GetBool(p, "multi_az"))

	if groups := incomingRefs(c, d, refs, diagram.Contains, TypeDBSubnetGroup); len(groups) > 0 {
		body.SetAttributeTraversal("db_subnet_group_name", terraform.RefTraversal(groups[0], "name"))
	}
	setRefList(body, "vpc_security_group_ids", incomingRefs(c, d, refs, diagram.ConnectsTo, TypeSecurityGroup), "id")
	terraform.SetAttributeMap(body, "tags", nameTags(c))

	return terraform.BlockToBytes(block), nil
}
