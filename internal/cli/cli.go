// Package cli implements the tfdiagram command-line interface.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tfdiagram/tfdiagram/internal/config"
	"github.com/tfdiagram/tfdiagram/internal/diagram"
	"github.com/tfdiagram/tfdiagram/internal/handler"
	"github.com/tfdiagram/tfdiagram/internal/logger"
	"github.com/tfdiagram/tfdiagram/internal/registry"
)

// Version is set at build time.
var Version = "dev"

// CLI holds shared state for all commands.
type CLI struct {
	v       *viper.Viper
	cfg     config.Config
	log     *slog.Logger
	reg     *registry.Registry
	stderr  io.Writer
	cfgFile string
}

// New returns a CLI writing logs to stderr.
func New(stderr io.Writer) *CLI {
	return &CLI{
		v:      viper.New(),
		cfg:    config.Defaults(),
		log:    logger.New(stderr, "info", "text"),
		reg:    handler.NewRegistry(),
		stderr: stderr,
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "tfdiagram",
		Short:        "tfdiagram turns Terraform folders into infrastructure diagrams and back",
		Long:         `tfdiagram builds a diagram document (a region-rooted containment tree plus typed relationships) from Terraform sources, validates and renders it, and exports it back to Terraform.`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.loadConfig()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&c.cfgFile, "config", "c", "", "config file (default: ./"+config.FileName+".yaml)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: json or text")
	pf.String("missing-parent", "", "missing parent policy: root or fail")
	pf.String("unknown-type", "", "unknown component type policy: skip or fail")
	_ = c.v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = c.v.BindPFlag("log.format", pf.Lookup("log-format"))
	_ = c.v.BindPFlag("policy.missing_parent", pf.Lookup("missing-parent"))
	_ = c.v.BindPFlag("policy.unknown_type", pf.Lookup("unknown-type"))

	root.AddCommand(c.importCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.digestCommand())
	root.AddCommand(c.depsCommand())
	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.v, c.cfgFile)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.log = cfg.Logger(c.stderr)
	return nil
}

func (c *CLI) documentOptions() []diagram.Option {
	return c.cfg.DocumentOptions(c.log)
}

// readInput reads a file, or stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// loadDocument reads and rebuilds a document with the configured policies.
func (c *CLI) loadDocument(cmd *cobra.Command, path string) (*diagram.LoadResult, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	res, err := diagram.Unmarshal(data, c.reg, c.documentOptions()...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return res, nil
}

// writeOutput writes data to path, or to the command's stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
