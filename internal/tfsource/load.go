// Package tfsource reads a folder of Terraform configuration and turns it
// into a diagram document. It also answers which files a given file depends on.
package tfsource

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/tfdiagram/tfdiagram/internal/logger"
	"github.com/zclconf/go-cty/cty"
)

// Resource is a single `resource "type" "name"` block.
type Resource struct {
	Type string
	Name string
	// File is the path relative to the project root.
	File string
	// Attributes holds the attributes whose value is a literal. Nested
	// blocks appear as lists of objects under the block type.
	Attributes map[string]any
	// Refs maps an attribute path (e.g. "vpc_id", "vpc_config.subnet_ids")
	// to the resource addresses it references, in source order.
	Refs map[string][]string
}

// Address is the Terraform address, e.g. aws_vpc.main.
func (r *Resource) Address() string { return r.Type + "." + r.Name }

// Project is the parsed content of a configuration folder.
type Project struct {
	Root      string
	Files     []string // relative to Root, sorted
	Resources []*Resource
	// Region is the literal region of the aws provider, if any.
	Region string
	// Source is the concatenated raw text of every file.
	Source string
}

// Resource returns the resource with the given address.
func (p *Project) Resource(addr string) (*Resource, bool) {
	for _, r := range p.Resources {
		if r.Address() == addr {
			return r, true
		}
	}
	return nil, false
}

// skipDirs are never descended into.
var skipDirs = map[string]bool{".terraform": true, ".git": true}

// FindFiles recursively lists *.tf files under root, sorted.
func FindFiles(ctx context.Context, root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".tf") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

// Load parses every .tf file under root.
func Load(ctx context.Context, root string) (*Project, error) {
	return LoadWithLogger(ctx, root, logger.Default)
}

// LoadWithLogger is Load with an explicit logger.
func LoadWithLogger(ctx context.Context, root string, log *slog.Logger) (*Project, error) {
	log.Debug("loading terraform sources", "root", root)

	paths, err := FindFiles(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("find terraform files in %s: %w", root, err)
	}
	p := &Project{Root: root}
	if len(paths) == 0 {
		log.Warn("no .tf files found, returning empty project", "root", root)
		return p, nil
	}

	parser := hclparse.NewParser()
	var src bytes.Buffer
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		file, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse %s: %w", path, diags)
		}
		body, ok := file.Body.(*hclsyntax.Body)
		if !ok {
			return nil, fmt.Errorf("%s: not native HCL syntax", path)
		}
		p.Files = append(p.Files, rel)
		fmt.Fprintf(&src, "# %s\n", rel)
		src.Write(file.Bytes)
		if !bytes.HasSuffix(file.Bytes, []byte("\n")) {
			src.WriteByte('\n')
		}

		for _, block := range body.Blocks {
			switch {
			case block.Type == "resource" && len(block.Labels) == 2:
				p.Resources = append(p.Resources, decodeResource(block, rel))
			case block.Type == "provider" && len(block.Labels) == 1 && block.Labels[0] == "aws":
				if attr, ok := block.Body.Attributes["region"]; ok {
					if v, ok := literal(attr.Expr); ok {
						if s, ok := v.(string); ok && p.Region == "" {
							p.Region = s
						}
					}
				}
			}
		}
	}
	p.Source = src.String()
	log.Info("loaded terraform sources", "root", root, "files", len(p.Files), "resources", len(p.Resources))
	return p, nil
}

func decodeResource(block *hclsyntax.Block, file string) *Resource {
	r := &Resource{
		Type:       block.Labels[0],
		Name:       block.Labels[1],
		File:       file,
		Attributes: make(map[string]any),
		Refs:       make(map[string][]string),
	}
	collect(block.Body, "", r.Attributes, r.Refs)
	return r
}

// collect walks a body, storing literal attributes in attrs and resource
// references in refs keyed by dotted attribute path.
func collect(body *hclsyntax.Body, prefix string, attrs map[string]any, refs map[string][]string) {
	names := make([]string, 0, len(body.Attributes))
	for name := range body.Attributes {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		attr := body.Attributes[name]
		if addrs := references(attr.Expr); len(addrs) > 0 {
			refs[prefix+name] = addrs
			continue
		}
		if v, ok := literal(attr.Expr); ok && attrs != nil {
			attrs[name] = v
		}
	}
	for _, nested := range body.Blocks {
		var nestedAttrs map[string]any
		if attrs != nil {
			nestedAttrs = make(map[string]any)
		}
		collect(nested.Body, prefix+nested.Type+".", nestedAttrs, refs)
		if attrs != nil && len(nestedAttrs) > 0 {
			list, _ := attrs[nested.Type].([]any)
			attrs[nested.Type] = append(list, nestedAttrs)
		}
	}
}

// notResources are traversal roots that never name a managed resource.
var notResources = map[string]bool{
	"var": true, "local": true, "data": true, "module": true, "each": true,
	"count": true, "path": true, "self": true, "terraform": true,
}

// references returns the resource addresses an expression refers to.
func references(expr hclsyntax.Expression) []string {
	var out []string
	for _, t := range expr.Variables() {
		root := t.RootName()
		if notResources[root] || len(t) < 2 {
			continue
		}
		name, ok := t[1].(hcl.TraverseAttr)
		if !ok {
			continue
		}
		addr := root + "." + name.Name
		if !slices.Contains(out, addr) {
			out = append(out, addr)
		}
	}
	return out
}

// literal evaluates an expression without variables or functions.
func literal(expr hclsyntax.Expression) (any, bool) {
	if len(expr.Variables()) > 0 {
		return nil, false
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, false
	}
	return fromCty(v)
}

// fromCty converts a known cty value to the JSON-like Go form used by
// component attributes.
func fromCty(v cty.Value) (any, bool) {
	if v.IsNull() || !v.IsKnown() {
		return nil, false
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), true
	case ty == cty.Bool:
		return v.True(), true
	case ty == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return f, true
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		for k, ev := range v.AsValueMap() {
			if gv, ok := fromCty(ev); ok {
				out[k] = gv
			}
		}
		return out, true
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for _, ev := range v.AsValueSlice() {
			if gv, ok := fromCty(ev); ok {
				out = append(out, gv)
			}
		}
		return out, true
	default:
		return nil, false
	}
}
