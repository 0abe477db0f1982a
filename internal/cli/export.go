package cli

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/tfdiagram/tfdiagram/internal/export"
)

func (c *CLI) exportCommand() *cobra.Command {
	var (
		output  string
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "export <document.json|->",
		Short: "Generate Terraform files from a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.loadDocument(cmd, args[0])
			if err != nil {
				return err
			}
			out, err := export.New(c.reg, c.cfg.ExportOptions()).WithLogger(c.log).Export(res.Document)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if !out.Success {
				if err := printFindings(cmd.OutOrStdout(), *out, jsonOut); err != nil {
					return err
				}
				return errFindings
			}

			if err := os.MkdirAll(output, 0o755); err != nil {
				return fmt.Errorf("mkdir: %w", err)
			}
			for _, name := range slices.Sorted(maps.Keys(out.TerraformFiles)) {
				path := filepath.Join(output, name)
				if err := os.WriteFile(path, out.TerraformFiles[name], 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
			}
			for _, w := range out.Warnings {
				c.log.Warn(w.Message, "node_id", w.NodeID, "suggestion", w.Suggestion)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "output", "output directory for Terraform files")
	f.BoolVar(&jsonOut, "json", false, "output errors as JSON")
	f.Bool("tfvars", true, "generate terraform.tfvars")
	f.Int("parallel", 0, "max parallel components per tier (0 = auto)")
	_ = c.v.BindPFlag("export.emit_tfvars", f.Lookup("tfvars"))
	_ = c.v.BindPFlag("export.max_parallel", f.Lookup("parallel"))
	return cmd
}
