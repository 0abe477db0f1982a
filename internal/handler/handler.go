package handler

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/tfdiagram/tfdiagram/internal/diagram"
	"github.com/tfdiagram/tfdiagram/internal/registry"
	"github.com/tfdiagram/tfdiagram/internal/terraform"
)

// RefMap is an alias for registry.RefMap so handlers can use refs without importing registry in every signature.
type RefMap = registry.RefMap

// Attribute keys written by the Terraform importer.
const (
	AttrResourceName = "resource_name"
	AttrTFType       = "tf_type"
	AttrSourceFile   = "source_file"
)

type kind struct {
	tag       string
	tfType    string
	container bool
	handler   registry.ResourceHandler
}

// builtins is filled by the init functions of the kind files.
var builtins []kind

func builtin(tag, tfType string, container bool, h registry.ResourceHandler) {
	builtins = append(builtins, kind{tag: tag, tfType: tfType, container: container, handler: h})
}

// RegisterAll registers a factory and handler for every built-in kind.
func RegisterAll(r *registry.Registry) {
	for _, k := range builtins {
		r.Register(k.tag, factory(k.container))
		if k.handler != nil {
			r.RegisterHandler(k.tag, k.handler)
		}
	}
}

// NewRegistry returns a registry that loads the built-in kinds on first use.
func NewRegistry() *registry.Registry {
	return registry.New(RegisterAll)
}

func factory(container bool) registry.Factory {
	return func(rec diagram.NodeRecord) (*diagram.Component, error) {
		if rec.ID == "" {
			return nil, fmt.Errorf("%s node has empty id", rec.Type)
		}
		if container {
			return diagram.NewContainer(rec.ID, rec.Type, rec.Attributes), nil
		}
		return diagram.NewComponent(rec.ID, rec.Type, rec.Attributes), nil
	}
}

// IsContainerKind reports whether the built-in kind holds children.
func IsContainerKind(tag string) bool {
	for _, k := range builtins {
		if k.tag == tag {
			return k.container
		}
	}
	return false
}

// TerraformType maps a component kind to its Terraform resource type. The
// generic "resource" kind carries its type in the tf_type attribute.
func TerraformType(c *diagram.Component) string {
	if t := diagram.GetStr(c.Attributes(), AttrTFType); t != "" {
		return t
	}
	for _, k := range builtins {
		if k.tag == c.Type() && k.tfType != "" {
			return k.tfType
		}
	}
	return "aws_" + c.Type()
}

// KindForTerraformType maps a Terraform resource type back to a built-in
// kind, falling back to the generic "resource" kind.
func KindForTerraformType(tfType string) string {
	for _, k := range builtins {
		if k.tfType == tfType && k.tag != TypeResource {
			return k.tag
		}
	}
	return TypeResource
}

// ResourceName returns the Terraform-safe local name for c.
func ResourceName(c *diagram.Component) string {
	if n := diagram.GetStr(c.Attributes(), AttrResourceName); n != "" {
		return terraform.SanitizeName(n)
	}
	if l := diagram.GetStr(c.Attributes(), diagram.AttrLabel); l != "" {
		return terraform.SanitizeName(l)
	}
	return terraform.SanitizeName("r_" + c.ID())
}

// selfName returns the local name assigned to c in refs.
func selfName(c *diagram.Component, refs RefMap) string {
	if addr, ok := refs[c.ID()]; ok {
		if i := strings.LastIndexByte(addr, '.'); i >= 0 {
			return addr[i+1:]
		}
	}
	return ResourceName(c)
}

// parentRef returns the address of c's container when it is of kind tag.
func parentRef(c *diagram.Component, d *diagram.Document, refs RefMap, tag string) (string, bool) {
	p, ok := d.ParentOf(c.ID())
	if !ok || p.Type() != tag {
		return "", false
	}
	addr, ok := refs[p.ID()]
	return addr, ok
}

// incomingRefs returns addresses of components of kind tag linked to c by
// relationships of type typ with c as target.
func incomingRefs(c *diagram.Component, d *diagram.Document, refs RefMap, typ diagram.RelationshipType, tag string) []string {
	var out []string
	for _, r := range d.RelationshipsWithTarget(c.ID()) {
		if r.Type != typ {
			continue
		}
		src, ok := d.FindComponentByID(r.SourceID)
		if !ok || src.Type() != tag {
			continue
		}
		if addr, ok := refs[src.ID()]; ok {
			out = append(out, addr)
		}
	}
	return out
}

// setRefList sets name = [addr.attr, ...].
func setRefList(body *hclwrite.Body, name string, addrs []string, attr string) {
	if len(addrs) == 0 {
		return
	}
	tokens := make([]hclwrite.Tokens, len(addrs))
	for i, addr := range addrs {
		tokens[i] = hclwrite.TokensForTraversal(terraform.RefTraversal(addr, attr))
	}
	body.SetAttributeRaw(name, hclwrite.TokensForTuple(tokens))
}

// nameTags returns the tags attribute with Name defaulted to the label.
func nameTags(c *diagram.Component) map[string]string {
	tags := diagram.GetStrMap(c.Attributes(), "tags")
	label := diagram.GetStr(c.Attributes(), diagram.AttrLabel)
	if label == "" {
		return tags
	}
	if tags == nil {
		tags = make(map[string]string)
	}
	if _, has := tags["Name"]; !has {
		tags["Name"] = label
	}
	return tags
}
