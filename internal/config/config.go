// Package config loads tfdiagram settings from defaults, an optional YAML
// file, TFDIAGRAM_* environment variables and bound flags, in rising order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/tfdiagram/tfdiagram/internal/diagram"
	"github.com/tfdiagram/tfdiagram/internal/export"
	"github.com/tfdiagram/tfdiagram/internal/logger"
)

// EnvPrefix prefixes every environment override, e.g. TFDIAGRAM_LOG_LEVEL.
const EnvPrefix = "TFDIAGRAM"

// FileName is the config file looked up in the working directory.
const FileName = ".tfdiagram"

// Policy values accepted in the config file.
const (
	MissingParentRoot = "root"
	MissingParentFail = "fail"
	UnknownTypeSkip   = "skip"
	UnknownTypeFail   = "fail"
)

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" (default) or "text"
}

type PolicyConfig struct {
	MissingParent string `mapstructure:"missing_parent"` // "root" (default) or "fail"
	UnknownType   string `mapstructure:"unknown_type"`   // "skip" (default) or "fail"
}

type ExportConfig struct {
	EmitTfvars  bool `mapstructure:"emit_tfvars"`
	MaxParallel int  `mapstructure:"max_parallel"`
	Outputs     bool `mapstructure:"outputs"`
}

// Config is the full set of settings.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Policy PolicyConfig `mapstructure:"policy"`
	Export ExportConfig `mapstructure:"export"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	exp := export.DefaultOptions()
	return Config{
		Log:    LogConfig{Level: "info", Format: "json"},
		Policy: PolicyConfig{MissingParent: MissingParentRoot, UnknownType: UnknownTypeSkip},
		Export: ExportConfig{
			EmitTfvars:  exp.EmitTfvars,
			MaxParallel: exp.MaxParallel,
			Outputs:     exp.Outputs,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("policy.missing_parent", d.Policy.MissingParent)
	v.SetDefault("policy.unknown_type", d.Policy.UnknownType)
	v.SetDefault("export.emit_tfvars", d.Export.EmitTfvars)
	v.SetDefault("export.max_parallel", d.Export.MaxParallel)
	v.SetDefault("export.outputs", d.Export.Outputs)
}

// Load reads configuration into v and decodes it. When file is empty,
// .tfdiagram.yaml in the working directory is used if present. A missing
// default file is not an error; a missing explicit file is.
func Load(v *viper.Viper, file string) (Config, error) {
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown policy names and negative parallelism.
func (c Config) Validate() error {
	switch strings.ToLower(c.Policy.MissingParent) {
	case MissingParentRoot, MissingParentFail:
	default:
		return fmt.Errorf("policy.missing_parent: unknown value %q (want %s or %s)",
			c.Policy.MissingParent, MissingParentRoot, MissingParentFail)
	}
	switch strings.ToLower(c.Policy.UnknownType) {
	case UnknownTypeSkip, UnknownTypeFail:
	default:
		return fmt.Errorf("policy.unknown_type: unknown value %q (want %s or %s)",
			c.Policy.UnknownType, UnknownTypeSkip, UnknownTypeFail)
	}
	if c.Export.MaxParallel < 0 {
		return fmt.Errorf("export.max_parallel must be >= 0, got %d", c.Export.MaxParallel)
	}
	return nil
}

// Logger builds the configured logger writing to w.
func (c Config) Logger(w io.Writer) *slog.Logger {
	return logger.New(w, c.Log.Level, c.Log.Format)
}

// DocumentOptions maps the policies onto diagram options.
func (c Config) DocumentOptions(log *slog.Logger) []diagram.Option {
	opts := []diagram.Option{diagram.WithLogger(log)}
	if strings.EqualFold(c.Policy.MissingParent, MissingParentFail) {
		opts = append(opts, diagram.WithMissingParentPolicy(diagram.FailOnMissingParent))
	}
	if strings.EqualFold(c.Policy.UnknownType, UnknownTypeFail) {
		opts = append(opts, diagram.WithUnknownTypePolicy(diagram.FailOnUnknown))
	}
	return opts
}

// ExportOptions maps the export section onto exporter options.
func (c Config) ExportOptions() export.Options {
	return export.Options{
		EmitTfvars:  c.Export.EmitTfvars,
		MaxParallel: c.Export.MaxParallel,
		Outputs:     c.Export.Outputs,
	}
}
