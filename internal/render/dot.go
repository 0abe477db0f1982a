// Package render draws a diagram document with Graphviz. Containers become
// clusters and relationships become labelled edges.
package render

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/tfdiagram/tfdiagram/internal/diagram"
	"github.com/tfdiagram/tfdiagram/internal/handler"
)

// Options configures DOT generation.
type Options struct {
	// Detailed adds the component type under each label.
	Detailed bool
	// Highlight holds component ids drawn with an accent fill.
	Highlight map[string]bool
}

// edgeStyles maps relationship types to DOT edge attributes.
var edgeStyles = map[diagram.RelationshipType]string{
	diagram.DependsOn:  `style=solid`,
	diagram.References: `style=dashed`,
	diagram.ConnectsTo: `style=bold, color="#1f6feb"`,
	diagram.Contains:   `style=dotted, arrowhead=diamond`,
}

// ToDOT converts a document to Graphviz DOT. The region and every other
// container become nested clusters; leaves become boxes.
func ToDOT(d *diagram.Document, opts Options) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", d.Name())
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	writeCluster(&buf, d.Region(), opts, 1)

	rels := d.Relationships()
	if len(rels) > 0 {
		buf.WriteString("\n")
	}
	for _, r := range rels {
		from, _ := d.FindComponentByID(r.SourceID)
		to, _ := d.FindComponentByID(r.TargetID)
		if from == nil || to == nil {
			continue
		}
		attrs := []string{edgeStyles[r.Type]}
		if attrs[0] == "" {
			attrs[0] = "style=solid"
		}
		text := string(r.Type)
		if r.Label != "" {
			text = r.Label
		}
		attrs = append(attrs, fmt.Sprintf("label=%q", text))
		// Edges touching a cluster attach to its anchor node.
		if from.IsContainer() {
			attrs = append(attrs, fmt.Sprintf("ltail=%q", clusterName(from)))
		}
		if to.IsContainer() {
			attrs = append(attrs, fmt.Sprintf("lhead=%q", clusterName(to)))
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", nodeName(from), nodeName(to), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeCluster(buf *bytes.Buffer, c *diagram.Component, opts Options, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(buf, "%ssubgraph %q {\n", indent, clusterName(c))
	fmt.Fprintf(buf, "%s  label=%q;\n", indent, label(c, opts.Detailed))
	if opts.Highlight[c.ID()] {
		fmt.Fprintf(buf, "%s  style=\"rounded,filled\";\n%s  fillcolor=\"#fff3c4\";\n", indent, indent)
	} else {
		fmt.Fprintf(buf, "%s  style=\"rounded\";\n", indent)
	}
	// Invisible anchor so edges can reach the cluster.
	fmt.Fprintf(buf, "%s  %q [shape=point, style=invis, label=\"\"];\n", indent, nodeName(c))
	for _, child := range c.Children() {
		if child.IsContainer() {
			writeCluster(buf, child, opts, depth+1)
			continue
		}
		attrs := []string{fmt.Sprintf("label=%q", label(child, opts.Detailed))}
		if opts.Highlight[child.ID()] {
			attrs = append(attrs, `fillcolor="#fff3c4"`)
		}
		fmt.Fprintf(buf, "%s  %q [%s];\n", indent, nodeName(child), strings.Join(attrs, ", "))
	}
	fmt.Fprintf(buf, "%s}\n", indent)
}

func clusterName(c *diagram.Component) string { return "cluster_" + c.ID() }

func nodeName(c *diagram.Component) string {
	if c.IsContainer() {
		return "anchor_" + c.ID()
	}
	return c.ID()
}

func label(c *diagram.Component, detailed bool) string {
	l := c.Label()
	if l == "" {
		l = c.ID()
	}
	if detailed {
		l += "\n(" + c.Type() + ")"
	}
	return l
}

// HighlightFiles returns the ids of components whose source file is one of
// files. Paths are compared after cleaning, relative to root when root is set.
func HighlightFiles(d *diagram.Document, root string, files []string) map[string]bool {
	want := make(map[string]bool, len(files))
	for _, f := range files {
		if root != "" {
			if rel, err := filepath.Rel(root, f); err == nil && !strings.HasPrefix(rel, "..") {
				f = rel
			}
		}
		want[filepath.ToSlash(filepath.Clean(f))] = true
	}
	out := make(map[string]bool)
	for _, c := range d.Components() {
		src := diagram.GetStr(c.Attributes(), handler.AttrSourceFile)
		if src != "" && want[filepath.ToSlash(filepath.Clean(src))] {
			out[c.ID()] = true
		}
	}
	return out
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag so the drawing scales from its viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
