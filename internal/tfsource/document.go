package tfsource

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"

	"github.com/tfdiagram/tfdiagram/internal/diagram"
	"github.com/tfdiagram/tfdiagram/internal/handler"
)

// Attribute paths whose reference places a resource inside a container,
// most specific first.
var containmentAttrs = []string{"subnet_id", "vpc_config.subnet_ids", "vpc_id"}

// Attribute paths whose security group references become connects_to.
var securityGroupAttrs = map[string]bool{
	"vpc_security_group_ids":        true,
	"security_groups":               true,
	"vpc_config.security_group_ids": true,
}

// Document builds a diagram from the project. Components are created through
// r so the registered factories apply. name defaults to the root folder name.
func (p *Project) Document(name string, r diagram.Reconstructor, opts ...diagram.Option) (*diagram.Document, error) {
	if name == "" {
		name = filepath.Base(p.Root)
	}
	d := diagram.New(name, opts...)
	if p.Region != "" {
		d.Region().SetAttr(diagram.AttrRegion, p.Region)
		d.Region().SetAttr(diagram.AttrLabel, p.Region)
	}

	comps := make(map[string]*diagram.Component, len(p.Resources))
	for _, res := range p.Resources {
		c, err := r.Reconstruct(nodeRecord(d.NewID(), res))
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w", res.Address(), err)
		}
		comps[res.Address()] = c
	}

	b := &builder{project: p, doc: d, comps: comps, placed: make(map[string]bool)}
	for _, res := range p.Resources {
		if err := b.place(res, make(map[string]bool)); err != nil {
			return nil, err
		}
	}
	for _, res := range p.Resources {
		if err := b.relate(res); err != nil {
			return nil, err
		}
	}

	d.SetSourceFiles(p.Root, p.Files)
	d.SetTerraformSource(p.Source)
	return d, nil
}

func nodeRecord(id string, res *Resource) diagram.NodeRecord {
	attrs := make(map[string]any, len(res.Attributes)+4)
	for k, v := range res.Attributes {
		attrs[k] = v
	}
	attrs[diagram.AttrLabel] = res.Name
	attrs[handler.AttrResourceName] = res.Name
	attrs[handler.AttrSourceFile] = res.File
	kind := handler.KindForTerraformType(res.Type)
	if kind == handler.TypeResource {
		attrs[handler.AttrTFType] = res.Type
	}
	return diagram.NodeRecord{ID: id, Type: kind, Attributes: attrs}
}

type builder struct {
	project *Project
	doc     *diagram.Document
	comps   map[string]*diagram.Component
	placed  map[string]bool
}

// container returns the address of the container res belongs in, if any.
func (b *builder) container(res *Resource) (string, bool) {
	for _, attr := range containmentAttrs {
		for _, addr := range res.Refs[attr] {
			if c, ok := b.comps[addr]; ok && c.IsContainer() && addr != res.Address() {
				return addr, true
			}
		}
	}
	return "", false
}

// place adds res to the document after its container. Containment cycles
// fall back to the region.
func (b *builder) place(res *Resource, visiting map[string]bool) error {
	addr := res.Address()
	if b.placed[addr] {
		return nil
	}
	visiting[addr] = true
	parentID := ""
	if parentAddr, ok := b.container(res); ok && !visiting[parentAddr] {
		parent, _ := b.project.Resource(parentAddr)
		if err := b.place(parent, visiting); err != nil {
			return err
		}
		parentID = b.comps[parentAddr].ID()
	}
	b.placed[addr] = true
	if err := b.doc.AddComponent(b.comps[addr], parentID); err != nil && !errors.Is(err, diagram.ErrParentNotFound) {
		return fmt.Errorf("place %s: %w", addr, err)
	}
	return nil
}

// relate turns the remaining references of res into relationships.
func (b *builder) relate(res *Resource) error {
	self := b.comps[res.Address()]
	parentAddr, _ := b.container(res)
	seen := make(map[string]bool)
	for _, attr := range slices.Sorted(maps.Keys(res.Refs)) {
		for _, addr := range res.Refs[attr] {
			target, ok := b.comps[addr]
			if !ok || addr == res.Address() {
				continue
			}
			if addr == parentAddr && slices.Contains(containmentAttrs, attr) {
				continue
			}
			src, dst, typ := self, target, diagram.DependsOn
			switch {
			case securityGroupAttrs[attr] && target.Type() == handler.TypeSecurityGroup:
				src, dst, typ = target, self, diagram.ConnectsTo
			case attr == "db_subnet_group_name" && target.Type() == handler.TypeDBSubnetGroup:
				src, dst, typ = target, self, diagram.Contains
			}
			key := src.ID() + "|" + dst.ID() + "|" + string(typ)
			if seen[key] {
				continue
			}
			seen[key] = true
			if _, err := b.doc.AddRelationship(src.ID(), dst.ID(), typ, attr); err != nil {
				return fmt.Errorf("relate %s -> %s: %w", res.Address(), addr, err)
			}
		}
	}
	return nil
}
