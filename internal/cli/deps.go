package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tfdiagram/tfdiagram/internal/tfsource"
)

func (c *CLI) depsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deps <dir> <file.tf>",
		Short: "List the files a Terraform file depends on, transitively",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := tfsource.LoadWithLogger(cmd.Context(), args[0], c.log)
			if err != nil {
				return err
			}
			for _, f := range tfsource.NewResolver(project, 0).DependentFiles(args[1]) {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
}
