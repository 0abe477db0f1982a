package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tfdiagram/tfdiagram/internal/diagram"
)

func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <document.json|->",
		Short: "Print the component tree and relationships of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.loadDocument(cmd, args[0])
			if err != nil {
				return err
			}
			printTree(cmd.OutOrStdout(), res.Document)
			for _, sk := range res.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "skipped under %s: %s\n", sk.ParentID, sk)
			}
			return nil
		},
	}
}

func printTree(w io.Writer, d *diagram.Document) {
	fmt.Fprintf(w, "%s (%s)\n", d.Name(), d.ID())
	depth := map[string]int{}
	d.Walk(func(n, parent *diagram.Component) bool {
		level := 0
		if parent != nil {
			level = depth[parent.ID()] + 1
		}
		depth[n.ID()] = level
		fmt.Fprintf(w, "%s- %s [%s] %s\n", strings.Repeat("  ", level), n.Label(), n.Type(), n.ID())
		return true
	})

	rels := d.Relationships()
	if len(rels) == 0 {
		return
	}
	fmt.Fprintln(w, "relationships:")
	for _, r := range rels {
		src, dst := r.SourceID, r.TargetID
		if c, ok := d.FindComponentByID(src); ok {
			src = c.Label()
		}
		if c, ok := d.FindComponentByID(dst); ok {
			dst = c.Label()
		}
		line := fmt.Sprintf("  %s -%s-> %s", src, r.Type, dst)
		if r.Label != "" {
			line += " (" + r.Label + ")"
		}
		fmt.Fprintln(w, line)
	}
}
