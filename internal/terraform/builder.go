package terraform

import (
	"bytes"
)

// File names produced by Builder.
const (
	FileVersions  = "versions.tf"
	FileVariables = "variables.tf"
	FileMain      = "main.tf"
	FileOutputs   = "outputs.tf"
	FileTfvars    = "terraform.tfvars"
)

// Builder collects rendered resource blocks and the surrounding files.
type Builder struct {
	resources  [][]byte
	files      map[string][]byte
	emitTfvars bool
}

// NewBuilder returns an empty Builder.
func NewBuilder(emitTfvars bool) *Builder {
	return &Builder{files: make(map[string][]byte), emitTfvars: emitTfvars}
}

// AddResource appends a rendered block to main.tf. Empty blocks are ignored.
func (b *Builder) AddResource(block []byte) {
	if len(block) == 0 {
		return
	}
	b.resources = append(b.resources, block)
}

// SetFile sets the content of one of the auxiliary files.
func (b *Builder) SetFile(name string, content []byte) {
	b.files[name] = content
}

// Build returns filename -> content. Empty files are omitted.
func (b *Builder) Build() map[string][]byte {
	out := make(map[string][]byte, len(b.files)+1)
	for name, content := range b.files {
		if len(bytes.TrimSpace(content)) == 0 {
			continue
		}
		if name == FileTfvars && !b.emitTfvars {
			continue
		}
		out[name] = content
	}
	if len(b.resources) > 0 {
		out[FileMain] = bytes.Join(b.resources, []byte("\n"))
	}
	return out
}
