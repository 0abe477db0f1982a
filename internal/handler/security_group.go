package handler

import (
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/tfdiagram/tfdiagram/internal/diagram"
	"github.com/tfdiagram/tfdiagram/internal/result"
	"github.com/tfdiagram/tfdiagram/internal/terraform"
	"github.com/zclconf/go-cty/cty"
)

// TypeSecurityGroup attaches to instances and databases through connects_to
// relationships.
const TypeSecurityGroup = "security_group"

type securityGroupHandler struct{}

func init() {
	builtin(TypeSecurityGroup, "aws_security_group", false, securityGroupHandler{})
}

func (securityGroupHandler) ResourceType() string { return TypeSecurityGroup }

func (securityGroupHandler) Validate(c *diagram.Component) ([]result.Error, []result.Warning) {
	var errs []result.Error
	var warns []result.Warning
	p := c.Attributes()
	if diagram.GetStr(p, "name") == "" && diagram.GetStr(p, diagram.AttrLabel) == "" {
		errs = append(errs, result.Required(c.ID(), "name or label", "Set attributes.name or attributes.label"))
	}
	for _, r := range ruleList(p, "ingress") {
		for _, cidr := range diagram.GetStrList(r, "cidr_blocks") {
			if cidr == "0.0.0.0/0" && diagram.GetInt(r, "from_port") == 22 {
				warns = append(warns, result.Advise(c.ID(), "SSH open to the world", "Restrict ingress cidr_blocks for port 22"))
			}
		}
	}
	return errs, warns
}

func (securityGroupHandler) GenerateHCL(c *diagram.Component, d *diagram.Document, refs RefMap) ([]byte, error) {
	block := terraform.ResourceBlock("aws_security_group", selfName(c, refs))
	body := block.Body()

	p := c.Attributes()
	sgName := diagram.GetStr(p, "name")
	if sgName == "" {
		sgName = diagram.GetStr(p, diagram.AttrLabel)
	}
	terraform.SetAttributeStr(body, "name", sgName)
	terraform.SetAttributeStr(body, "description", diagram.GetStr(p, "description"))

	if addr, ok := parentRef(c, d, refs, TypeVPC); ok {
		body.SetAttributeTraversal("vpc_id", terraform.RefTraversal(addr, "id"))
	}

	for _, r := range ruleList(p, "ingress") {
		appendRule(body, "ingress", r)
	}
	egress := ruleList(p, "egress")
	for _, r := range egress {
		appendRule(body, "egress", r)
	}
	if _, hasEgress := p["egress"]; !hasEgress {
		appendRule(body, "egress", map[string]any{
			"from_port":   0,
			"to_port":     0,
			"protocol":    "-1",
			"cidr_blocks": []any{"0.0.0.0/0"},
		})
	}

	terraform.SetAttributeMap(body, "tags", nameTags(c))
	return terraform.BlockToBytes(block), nil
}

func ruleList(p map[string]any, key string) []map[string]any {
	raw, _ := p[key].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		if rm, ok := r.(map[string]any); ok {
			out = append(out, rm)
		}
	}
	return out
}

func appendRule(body *hclwrite.Body, blockType string, rule map[string]any) {
	rb := body.AppendNewBlock(blockType, nil).Body()
	if _, ok := rule["from_port"]; ok {
		rb.SetAttributeValue("from_port", cty.NumberIntVal(int64(diagram.GetInt(rule, "from_port"))))
	}
	if _, ok := rule["to_port"]; ok {
		rb.SetAttributeValue("to_port", cty.NumberIntVal(int64(diagram.GetInt(rule, "to_port"))))
	}
	terraform.SetAttributeStr(rb, "protocol", diagram.GetStr(rule, "protocol"))
	if cidrs := diagram.GetStrList(rule, "cidr_blocks"); len(cidrs) > 0 {
		list := make([]cty.Value, len(cidrs))
		for i, s := range cidrs {
			list[i] = cty.StringVal(s)
		}
		rb.SetAttributeValue("cidr_blocks", cty.ListVal(list))
	}
}
