package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tfdiagram/tfdiagram/internal/jcs"
)

func (c *CLI) digestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "digest <document.json|->",
		Short: "Print the sha256 of the canonical (RFC 8785) form of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.loadDocument(cmd, args[0])
			if err != nil {
				return err
			}
			digest, err := jcs.Digest(res.Document)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), digest)
			return nil
		},
	}
}
