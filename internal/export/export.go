// Package export renders a diagram document as Terraform configuration.
package export

import (
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/tfdiagram/tfdiagram/internal/dependency"
	"github.com/tfdiagram/tfdiagram/internal/diagram"
	"github.com/tfdiagram/tfdiagram/internal/handler"
	"github.com/tfdiagram/tfdiagram/internal/logger"
	"github.com/tfdiagram/tfdiagram/internal/registry"
	"github.com/tfdiagram/tfdiagram/internal/result"
	"github.com/tfdiagram/tfdiagram/internal/terraform"
)

// Exporter turns documents into Terraform files.
type Exporter struct {
	opts Options
	reg  *registry.Registry
	log  *slog.Logger
}

// New returns an exporter using reg for resource handlers.
func New(reg *registry.Registry, opts Options) *Exporter {
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = runtime.NumCPU()
	}
	if opts.MaxParallel > 32 {
		opts.MaxParallel = 32
	}
	return &Exporter{opts: opts, reg: reg, log: logger.Default}
}

// WithLogger replaces the exporter's logger.
func (e *Exporter) WithLogger(l *slog.Logger) *Exporter {
	e.log = l
	return e
}

type componentResult struct {
	id    string
	hcl   []byte
	errs  []result.Error
	warns []result.Warning
}

// Export validates d, orders its components by dependency and renders them.
// Findings are reported in the result; the error return is reserved for
// failures outside the document.
func (e *Exporter) Export(d *diagram.Document) (*result.ExportResult, error) {
	out := &result.ExportResult{Success: true}

	// 1. Structural validation
	out.Errors = ValidationErrors(d)
	if len(out.Errors) > 0 {
		out.Success = false
		return out, nil
	}

	region := d.Region()
	if h, ok := e.reg.Handler(region.Type()); ok {
		_, warns := h.Validate(region)
		out.Warnings = append(out.Warnings, warns...)
	}

	// 2. Dependency order and tiers
	_, tiers, err := dependency.Resolve(d)
	if err != nil {
		out.Success = false
		out.Errors = append(out.Errors, result.Error{
			Type: "dependency_error", Severity: result.SeverityError,
			Message: err.Error(), Suggestion: "Remove circular relationships",
		})
		return out, nil
	}

	// 3. Addresses for every component, unique per Terraform type
	refs := Addresses(d)
	byID := make(map[string]*diagram.Component)
	for _, c := range d.Components() {
		byID[c.ID()] = c
	}

	// 4. Render tier by tier; within a tier run handlers in parallel
	var blocks [][]byte
	sem := make(chan struct{}, e.opts.MaxParallel)
	for _, tier := range tiers {
		results := make([]componentResult, len(tier))
		var wg sync.WaitGroup
		for i, id := range tier {
			c := byID[id]
			h, ok := e.reg.Handler(c.Type())
			if !ok {
				results[i] = componentResult{id: id, errs: []result.Error{{
					Type: "validation_error", Severity: result.SeverityError, NodeID: id,
					Message:    "unsupported component type: " + c.Type(),
					Suggestion: "Use one of: " + strings.Join(e.reg.ListRegisteredTypes(), ", "),
				}}}
				continue
			}
			wg.Add(1)
			sem <- struct{}{}
			go func(i int, c *diagram.Component, h registry.ResourceHandler) {
				defer wg.Done()
				defer func() { <-sem }()
				res := componentResult{id: c.ID()}
				res.errs, res.warns = h.Validate(c)
				hcl, genErr := h.GenerateHCL(c, d, refs)
				if genErr != nil {
					res.errs = append(res.errs, result.Error{
						Type: "generation_error", Severity: result.SeverityError, NodeID: c.ID(),
						Message: genErr.Error(),
					})
				} else {
					res.hcl = hcl
				}
				results[i] = res
			}(i, c, h)
		}
		wg.Wait()

		// Results are indexed by tier position so main.tf stays in dependency order
		for _, res := range results {
			out.Errors = append(out.Errors, res.errs...)
			out.Warnings = append(out.Warnings, res.warns...)
			if len(res.errs) > 0 {
				out.Success = false
			}
			if len(res.hcl) > 0 {
				blocks = append(blocks, res.hcl)
			}
		}
	}

	if !out.Success {
		e.log.Info("export failed", "document_id", d.ID(), "errors", len(out.Errors))
		return out, nil
	}

	// 5. Assemble files
	awsRegion := diagram.GetStr(region.Attributes(), diagram.AttrRegion)
	if awsRegion == "" {
		awsRegion = diagram.DefaultAWSRegion
	}
	b := terraform.NewBuilder(e.opts.EmitTfvars)
	b.SetFile(terraform.FileVersions, terraform.VersionsTF())
	b.SetFile(terraform.FileVariables, terraform.VariablesTF(awsRegion))
	b.SetFile(terraform.FileTfvars, terraform.Tfvars(awsRegion))
	if e.opts.Outputs {
		b.SetFile(terraform.FileOutputs, terraform.OutputsTF(outputs(d, refs)))
	}
	for _, block := range blocks {
		b.AddResource(block)
	}
	out.TerraformFiles = b.Build()
	e.log.Debug("export complete", "document_id", d.ID(), "resources", len(blocks))
	return out, nil
}

// ValidationErrors reports the structural problems of d as result errors.
func ValidationErrors(d *diagram.Document) []result.Error {
	var errs []result.Error
	for _, ve := range diagram.Validate(d) {
		errs = append(errs, result.Error{
			Type: ve.Type, Severity: ve.Severity, NodeID: ve.NodeID,
			Message: ve.Message, Suggestion: ve.Suggestion,
		})
	}
	return errs
}

// Addresses assigns a Terraform address to every component below the region.
// Colliding names get the sanitized id appended.
func Addresses(d *diagram.Document) registry.RefMap {
	refs := make(registry.RefMap)
	used := make(map[string]bool)
	for _, c := range d.Components() {
		addr := handler.TerraformType(c) + "." + handler.ResourceName(c)
		if used[addr] {
			addr += "_" + terraform.SanitizeName(c.ID())
		}
		used[addr] = true
		refs[c.ID()] = addr
	}
	return refs
}

var outputKinds = map[string]bool{
	handler.TypeVPC:         true,
	handler.TypeSubnet:      true,
	handler.TypeEC2Instance: true,
}

func outputs(d *diagram.Document, refs registry.RefMap) []terraform.Output {
	var out []terraform.Output
	for _, c := range d.Components() {
		if !outputKinds[c.Type()] {
			continue
		}
		addr := refs[c.ID()]
		name := strings.ReplaceAll(strings.TrimPrefix(addr, "aws_"), ".", "_") + "_id"
		out = append(out, terraform.Output{Name: name, Address: addr, Attr: "id"})
	}
	return out
}
