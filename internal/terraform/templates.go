package terraform

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// VersionsTF returns content for versions.tf (terraform block + aws provider).
func VersionsTF() []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	tfBody := body.AppendNewBlock("terraform", nil).Body()
	tfBody.SetAttributeValue("required_version", cty.StringVal(">= 1.0"))
	reqProv := tfBody.AppendNewBlock("required_providers", nil)
	reqProv.Body().SetAttributeValue("aws", cty.ObjectVal(map[string]cty.Value{
		"source":  cty.StringVal("hashicorp/aws"),
		"version": cty.StringVal("~> 5.0"),
	}))

	body.AppendNewline()
	provBlock := body.AppendNewBlock("provider", []string{"aws"})
	provBlock.Body().SetAttributeTraversal("region", varTraversal("aws_region"))

	return f.Bytes()
}

// VariablesTF returns content for variables.tf with aws_region defaulting to
// the diagram's region.
func VariablesTF(defaultRegion string) []byte {
	f := hclwrite.NewEmptyFile()
	regionBody := f.Body().AppendNewBlock("variable", []string{"aws_region"}).Body()
	regionBody.SetAttributeValue("description", cty.StringVal("AWS region"))
	regionBody.SetAttributeTraversal("type", hcl.Traversal{hcl.TraverseRoot{Name: "string"}})
	regionBody.SetAttributeValue("default", cty.StringVal(defaultRegion))
	return f.Bytes()
}

// Output is a single output block: name = address.attr.
type Output struct {
	Name    string
	Address string
	Attr    string
}

// OutputsTF renders one output per entry.
func OutputsTF(outputs []Output) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	for i, o := range outputs {
		if i > 0 {
			body.AppendNewline()
		}
		ob := body.AppendNewBlock("output", []string{o.Name}).Body()
		ob.SetAttributeTraversal("value", RefTraversal(o.Address, o.Attr))
	}
	return f.Bytes()
}

// Tfvars renders terraform.tfvars for the region.
func Tfvars(region string) []byte {
	f := hclwrite.NewEmptyFile()
	f.Body().SetAttributeValue("aws_region", cty.StringVal(region))
	return f.Bytes()
}

// varTraversal builds hcl.Traversal for var.name (e.g. var.aws_region).
func varTraversal(name string) hcl.Traversal {
	return hcl.Traversal{
		hcl.TraverseRoot{Name: "var"},
		hcl.TraverseAttr{Name: name},
	}
}

// RefTraversal builds the traversal for a resource address and attribute
// (e.g. aws_vpc.main + id -> aws_vpc.main.id). An empty attr is omitted.
func RefTraversal(addr, attr string) hcl.Traversal {
	var t hcl.Traversal
	start := 0
	for i := 0; i <= len(addr); i++ {
		if i < len(addr) && addr[i] != '.' {
			continue
		}
		part := addr[start:i]
		if len(t) == 0 {
			t = append(t, hcl.TraverseRoot{Name: part})
		} else {
			t = append(t, hcl.TraverseAttr{Name: part})
		}
		start = i + 1
	}
	if attr != "" {
		t = append(t, hcl.TraverseAttr{Name: attr})
	}
	return t
}
