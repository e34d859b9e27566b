// Package manifest annotates tools from declarative configuration
// files, so parameter descriptions can be curated without recompiling.
package manifest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/gentools/registry"
	"github.com/effective-security/gentools/toolfn"
	"github.com/effective-security/x/configloader"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config describes a set of tools.
type Config struct {
	Tools []ToolConfig `json:"tools" yaml:"tools" toml:"tools" validate:"dive"`
}

// ToolConfig describes the annotations of one tool.
type ToolConfig struct {
	Name        string            `json:"name" yaml:"name" toml:"name" validate:"required"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	OutputLabel string            `json:"output_label,omitempty" yaml:"output_label,omitempty" toml:"output_label,omitempty"`
	Parameters  []ParameterConfig `json:"parameters,omitempty" yaml:"parameters,omitempty" toml:"parameters,omitempty" validate:"dive"`
}

// ParameterConfig describes one tool parameter.
// Type accepts the well-known labels and passes unknown ones through.
type ParameterConfig struct {
	Name        string `json:"name" yaml:"name" toml:"name" validate:"required"`
	Type        string `json:"type" yaml:"type" toml:"type" validate:"required"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Optional    bool   `json:"optional,omitempty" yaml:"optional,omitempty" toml:"optional,omitempty"`
}

// Load reads a manifest from a YAML, JSON or TOML file.
// YAML and JSON files support environment variable expansion.
func Load(file string) (*Config, error) {
	cfg := new(Config)
	if file == "" {
		return cfg, nil
	}

	if strings.EqualFold(filepath.Ext(file), ".toml") {
		bs, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if err := toml.Unmarshal(bs, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to parse manifest %q", file)
		}
		return cfg, nil
	}

	err := configloader.UnmarshalAndExpand(file, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes an in-memory YAML or JSON manifest.
func Parse(data []byte) (*Config, error) {
	cfg := new(Config)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse manifest")
	}
	return cfg, nil
}

// Validate checks the manifest structure.
func (c *Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// Apply annotates already-registered tools by name. Every tool named
// in the manifest must be registered. Conflicts with annotations
// already on a tool emit the usual warnings.
func (c *Config) Apply(r *registry.Registry) error {
	if err := c.Validate(); err != nil {
		return err
	}
	for _, tc := range c.Tools {
		t, ok := r.Lookup(tc.Name)
		if !ok {
			return errors.WithMessagef(registry.ErrToolNotFound, "%q", tc.Name)
		}
		tc.annotate(t)
	}
	return nil
}

// Build constructs tools from the manifest given a name to function
// table, and registers them into a new registry.
func (c *Config) Build(fns map[string]toolfn.Func, opts ...registry.Option) (*registry.Registry, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	r := registry.New(opts...)
	for _, tc := range c.Tools {
		fn, ok := fns[tc.Name]
		if !ok {
			return nil, errors.Newf("no function for tool %q", tc.Name)
		}
		t := toolfn.NewNamed(tc.Name, fn)
		tc.annotate(t)
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (tc *ToolConfig) annotate(t *toolfn.Tool) {
	if tc.Description != "" {
		t.WithDescription(tc.Description)
	}
	if tc.OutputLabel != "" {
		t.WithOutputLabel(tc.OutputLabel)
	}
	for _, p := range tc.Parameters {
		t.WithParameterSpec(p.Name, toolfn.ParameterSpec{
			Type:        toolfn.ParamType(p.Type),
			Description: p.Description,
			Required:    !p.Optional,
		})
	}
}
