package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/iancoleman/strcase"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsonprop/mapper"
)

// Config is the contents of a .jsonprop.yml file after defaults and
// command-line overrides are applied.
type Config struct {
	Schema     string           `yaml:"schema"`
	Model      string           `yaml:"model"`
	KeyCase    string           `yaml:"key_case"`
	Package    string           `yaml:"package"`
	RootName   string           `yaml:"root_name"`
	Output     OutputConfig     `yaml:"output"`
	Converters ConvertersConfig `yaml:"converters"`
	Naming     NamingConfig     `yaml:"naming"`
	Types      TypesConfig      `yaml:"types"`
	Arrays     ArraysConfig     `yaml:"arrays"`
	Formatting FormattingConfig `yaml:"formatting"`
	Dev        DevConfig        `yaml:"dev"`
}

// OutputConfig controls how mapped JSON is written
type OutputConfig struct {
	Indent   string `yaml:"indent"`
	SortKeys bool   `yaml:"sort_keys"`
}

// ConvertersConfig names extra ids for the built-in converters
type ConvertersConfig struct {
	// Aliases maps a new converter id to an existing one, e.g. "iso8601: time".
	Aliases map[string]string `yaml:"aliases"`
}

// NamingConfig controls Go field names chosen by infer
type NamingConfig struct {
	FieldMappings map[string]string `yaml:"field_mappings"`
}

// TypesConfig overrides inferred field types
type TypesConfig struct {
	Mappings []TypeMapping `yaml:"mappings"`
}

// TypeMapping forces the schema type (and optionally a converter) of every
// JSON key matching Pattern
type TypeMapping struct {
	Pattern   string `yaml:"pattern"`
	Type      string `yaml:"type"`
	Converter string `yaml:"converter,omitempty"`

	// compiled regex (not serialized)
	regex *regexp.Regexp
}

// ArraysConfig controls array handling in infer
type ArraysConfig struct {
	MergeDifferentObjects bool `yaml:"merge_different_objects"`
	SingularizeNames      bool `yaml:"singularize_names"`
}

// FormattingConfig controls gofmt of generated code
type FormattingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		KeyCase:  string(mapper.KeyCaseIdentity),
		Package:  "models",
		RootName: "Root",
		Output: OutputConfig{
			SortKeys: true,
		},
		Converters: ConvertersConfig{
			Aliases: make(map[string]string),
		},
		Naming: NamingConfig{
			FieldMappings: make(map[string]string),
		},
		Types: TypesConfig{
			Mappings: []TypeMapping{},
		},
		Arrays: ArraysConfig{
			MergeDifferentObjects: true,
			SingularizeNames:      true,
		},
		Formatting: FormattingConfig{
			Enabled: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configNames are tried in order in each directory.
var configNames = []string{".jsonprop.yml", ".jsonprop.yaml", "jsonprop.yml", "jsonprop.yaml"}

// FindConfigFile returns the first config file found in the working
// directory or its parents, or "" when there is none.
func FindConfigFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if path, ok := lo.Find(lo.Map(configNames, func(name string, _ int) string {
			return filepath.Join(dir, name)
		}), isFile); ok {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Validate checks the key case and compiles the type mapping patterns.
func (c *Config) Validate() error {
	kc, err := mapper.ParseKeyCase(c.KeyCase)
	if err != nil {
		return fmt.Errorf("invalid key_case: %w", err)
	}
	c.KeyCase = string(kc)

	for i := range c.Types.Mappings {
		mapping := &c.Types.Mappings[i]
		regex, err := regexp.Compile(mapping.Pattern)
		if err != nil {
			return fmt.Errorf("invalid type mapping pattern '%s': %w", mapping.Pattern, err)
		}
		mapping.regex = regex
	}
	return nil
}

// MapperKeyCase returns the configured key case.
func (c *Config) MapperKeyCase() mapper.KeyCase {
	kc, err := mapper.ParseKeyCase(c.KeyCase)
	if err != nil {
		return mapper.KeyCaseIdentity
	}
	return kc
}

// ApplyConverterAliases registers every alias on reg under the converter it
// points to. Aliases are applied in sorted order so an alias may not point to
// another alias.
func (c *Config) ApplyConverterAliases(reg *mapper.Registry) error {
	aliases := lo.Keys(c.Converters.Aliases)
	sort.Strings(aliases)

	for _, alias := range aliases {
		target := c.Converters.Aliases[alias]
		conv, ok := reg.Converter(target)
		if !ok {
			return fmt.Errorf("converter alias '%s': %w: %q", alias, mapper.ErrUnknownConverter, target)
		}
		if err := reg.RegisterConverter(alias, conv); err != nil {
			return fmt.Errorf("converter alias '%s': %w", alias, err)
		}
	}
	return nil
}

// MatchesField checks if this type mapping matches the given JSON key
func (tm *TypeMapping) MatchesField(key string) bool {
	if tm.regex == nil {
		regex, err := regexp.Compile(tm.Pattern)
		if err != nil {
			return false
		}
		tm.regex = regex
	}
	return tm.regex.MatchString(key)
}

// GetFieldName returns the Go field name for a JSON key, applying naming rules
func (c *Config) GetFieldName(jsonKey string) string {
	if mapped, exists := c.Naming.FieldMappings[jsonKey]; exists {
		return mapped
	}
	return strcase.ToCamel(jsonKey)
}

// FindTypeMapping finds the first type mapping that matches the JSON key
func (c *Config) FindTypeMapping(key string) (TypeMapping, bool) {
	for i := range c.Types.Mappings {
		if c.Types.Mappings[i].MatchesField(key) {
			return c.Types.Mappings[i], true
		}
	}
	return TypeMapping{}, false
}

// Overrides holds values given on the command line. Empty strings and a
// false Debug leave the config file value in place.
type Overrides struct {
	Schema   string
	Model    string
	KeyCase  string
	Package  string
	RootName string
	Indent   string
	Debug    bool
}

// LoadConfigWithCLI loads configPath, if set, and applies cli on top.
func LoadConfigWithCLI(configPath string, cli Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if cli.Schema != "" {
		cfg.Schema = cli.Schema
	}
	if cli.Model != "" {
		cfg.Model = cli.Model
	}
	if cli.KeyCase != "" {
		cfg.KeyCase = cli.KeyCase
	}
	if cli.Package != "" {
		cfg.Package = cli.Package
	}
	if cli.RootName != "" {
		cfg.RootName = cli.RootName
	}
	if cli.Indent != "" {
		cfg.Output.Indent = cli.Indent
	}
	if cli.Debug {
		cfg.Dev.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
