package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tfdiagram/tfdiagram/internal/diagram"
	"github.com/tfdiagram/tfdiagram/internal/export"
	"github.com/tfdiagram/tfdiagram/internal/result"
	"github.com/tfdiagram/tfdiagram/internal/schema"
)

// errFindings is returned when a command reported errors on its output.
var errFindings = errors.New("document has errors")

func (c *CLI) validateCommand() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "validate <document.json|->",
		Short: "Check a document against the schema, the tree invariants and the kind rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			if err := schema.Validate(data); err != nil {
				return err
			}
			res, err := diagram.Unmarshal(data, c.reg, c.documentOptions()...)
			if err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}

			errs := export.ValidationErrors(res.Document)
			var warns []result.Warning
			for _, sk := range res.Skipped {
				warns = append(warns, result.Advise(sk.NodeID, "skipped under "+sk.ParentID+": "+sk.String(),
					"Register the component type or remove the node"))
			}
			for _, comp := range append([]*diagram.Component{res.Document.Region()}, res.Document.Components()...) {
				h, ok := c.reg.Handler(comp.Type())
				if !ok {
					continue
				}
				e, w := h.Validate(comp)
				errs = append(errs, e...)
				warns = append(warns, w...)
			}

			report := result.ExportResult{Success: len(errs) == 0, Errors: errs, Warnings: warns}
			if err := printFindings(cmd.OutOrStdout(), report, jsonOut); err != nil {
				return err
			}
			if !report.Success {
				return errFindings
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output findings as JSON")
	return cmd
}

func printFindings(w io.Writer, r result.ExportResult, jsonOut bool) error {
	if jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "ERROR [%s] %s\n", e.NodeID, e.Message)
		if e.Suggestion != "" {
			fmt.Fprintf(w, "  suggestion: %s\n", e.Suggestion)
		}
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "WARN [%s] %s\n", warn.NodeID, warn.Message)
	}
	if r.Success {
		fmt.Fprintln(w, "ok")
	}
	return nil
}
