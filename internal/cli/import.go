package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tfdiagram/tfdiagram/internal/diagram"
	"github.com/tfdiagram/tfdiagram/internal/tfsource"
)

func (c *CLI) importCommand() *cobra.Command {
	var (
		output string
		name   string
	)
	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Build a diagram document from a Terraform folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := tfsource.LoadWithLogger(cmd.Context(), args[0], c.log)
			if err != nil {
				return err
			}
			d, err := project.Document(name, c.reg, c.documentOptions()...)
			if err != nil {
				return fmt.Errorf("build document: %w", err)
			}
			var buf bytes.Buffer
			if err := diagram.Write(d, &buf); err != nil {
				return err
			}
			c.log.Info("imported", "root", args[0], "components", len(d.Components()),
				"relationships", len(d.Relationships()))
			return writeOutput(cmd, output, buf.Bytes())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&name, "name", "", "document name (default: folder name)")
	return cmd
}
