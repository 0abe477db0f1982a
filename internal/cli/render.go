package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tfdiagram/tfdiagram/internal/diagram"
	"github.com/tfdiagram/tfdiagram/internal/render"
	"github.com/tfdiagram/tfdiagram/internal/tfsource"
)

func (c *CLI) renderCommand() *cobra.Command {
	var (
		output    string
		format    string
		detailed  bool
		highlight string
	)
	cmd := &cobra.Command{
		Use:   "render <document.json|->",
		Short: "Render a document as Graphviz DOT or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.loadDocument(cmd, args[0])
			if err != nil {
				return err
			}
			d := res.Document

			opts := render.Options{Detailed: detailed}
			if highlight != "" {
				ids, err := c.highlightSet(cmd, d, highlight)
				if err != nil {
					return err
				}
				opts.Highlight = ids
			}

			dot := render.ToDOT(d, opts)
			switch format {
			case "dot":
				return writeOutput(cmd, output, []byte(dot))
			case "svg":
				svg, err := render.RenderSVG(cmd.Context(), dot)
				if err != nil {
					return err
				}
				return writeOutput(cmd, output, svg)
			default:
				return fmt.Errorf("unknown format %q (want dot or svg)", format)
			}
		},
	}
	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	f.StringVarP(&format, "format", "f", "dot", "output format: dot or svg")
	f.BoolVar(&detailed, "detailed", false, "show component types in labels")
	f.StringVar(&highlight, "highlight", "", "highlight components from this file and the files it depends on")
	return cmd
}

// highlightSet re-reads the document's source folder and returns the ids of
// components defined in file or in any file it depends on.
func (c *CLI) highlightSet(cmd *cobra.Command, d *diagram.Document, file string) (map[string]bool, error) {
	src := d.SourceFiles()
	if src == nil || src.RootFolder == "" {
		return nil, fmt.Errorf("--highlight needs a document imported from a folder")
	}
	project, err := tfsource.LoadWithLogger(cmd.Context(), src.RootFolder, c.log)
	if err != nil {
		return nil, err
	}
	files := tfsource.NewResolver(project, 0).DependentFiles(file)
	root := filepath.Clean(src.RootFolder)
	if !filepath.IsAbs(file) && !strings.HasPrefix(filepath.Clean(file), root+string(filepath.Separator)) {
		file = filepath.Join(root, file)
	}
	files = append(files, file)
	return render.HighlightFiles(d, src.RootFolder, files), nil
}
