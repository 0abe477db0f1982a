package handler

import (
	"github.com/tfdiagram/tfdiagram/internal/diagram"
	"github.com/tfdiagram/tfdiagram/internal/result"
	"github.com/tfdiagram/tfdiagram/internal/terraform"
	"github.com/zclconf/go-cty/cty"
)

// TypeLambdaFunction is a serverless function. Inside a subnet it gets a vpc_config.
const TypeLambdaFunction = "lambda_function"

type lambdaHandler struct{}

func init() {
	builtin(TypeLambdaFunction, "aws_lambda_function", false, lambdaHandler{})
}

func (lambdaHandler) ResourceType() string { return TypeLambdaFunction }

func (lambdaHandler) Validate(c *diagram.Component) ([]result.Error, []result.Warning) {
	var errs []result.Error
	var warns []result.Warning
	p := c.Attributes()
	if diagram.GetStr(p, "runtime") == "" {
		errs = append(errs, result.Required(c.ID(), "runtime", "Set attributes.runtime (e.g. python3.12)"))
	}
	if diagram.GetStr(p, "handler") == "" {
		errs = append(errs, result.Required(c.ID(), "handler", "Set attributes.handler (e.g. index.handler)"))
	}
	if diagram.GetStr(p, "role") == "" {
		warns = append(warns, result.Advise(c.ID(), "no execution role", "Set attributes.role to an IAM role ARN"))
	}
	return errs, warns
}

func (lambdaHandler) GenerateHCL(c *diagram.Component, d *diagram.Document, refs RefMap) ([]byte, error) {
	block := terraform.ResourceBlock("aws_lambda_function", selfName(c, refs))
	body := block.Body()

	p := c.Attributes()
	fnName := diagram.GetStr(p, "function_name")
	if fnName == "" {
		fnName = diagram.GetStr(p, diagram.AttrLabel)
	}
	terraform.SetAttributeStr(body, "function_name", fnName)
	terraform.SetAttributeStr(body, "runtime", diagram.GetStr(p, "runtime"))
	terraform.SetAttributeStr(body, "handler", diagram.GetStr(p, "handler"))
	terraform.SetAttributeStr(body, "role", diagram.GetStr(p, "role"))
	terraform.SetAttributeStr(body, "filename", diagram.GetStr(p, "filename"))
	mem := diagram.GetInt(p, "memory_size")
	if mem == 0 {
		mem = 128
	}
	terraform.SetAttributeInt(body, "memory_size", mem)
	timeout := diagram.GetInt(p, "timeout")
	if timeout == 0 {
		timeout = 3
	}
	terraform.SetAttributeInt(body, "timeout", timeout)

	if env := diagram.GetStrMap(p, "environment_variables"); len(env) > 0 {
		vars := make(map[string]cty.Value, len(env))
		for k, v := range env {
			vars[k] = cty.StringVal(v)
		}
		body.AppendNewBlock("environment", nil).Body().SetAttributeValue("variables", cty.MapVal(vars))
	}

	if addr, ok := parentRef(c, d, refs, TypeSubnet); ok {
		vpc := body.AppendNewBlock("vpc_config", nil).Body()
		setRefList(vpc, "subnet_ids", []string{addr}, "id")
		setRefList(vpc, "security_group_ids", incomingRefs(c, d, refs, diagram.ConnectsTo, TypeSecurityGroup), "id")
	}
	terraform.SetAttributeMap(body, "tags", nameTags(c))

	return terraform.BlockToBytes(block), nil
}
