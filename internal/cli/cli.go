// Package cli implements the jsonprop command line.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"github.com/mcncl/jsonprop/internal/analyzer"
	"github.com/mcncl/jsonprop/internal/codec"
	"github.com/mcncl/jsonprop/internal/config"
	"github.com/mcncl/jsonprop/internal/errors"
	"github.com/mcncl/jsonprop/internal/formatter"
	"github.com/mcncl/jsonprop/internal/generator"
	"github.com/mcncl/jsonprop/internal/logging"
	"github.com/mcncl/jsonprop/internal/models"
	"github.com/mcncl/jsonprop/internal/parser"
	"github.com/mcncl/jsonprop/internal/schema"
	"github.com/mcncl/jsonprop/mapper"
)

// Version information
const Version = "0.1.0"

// localImportPrefix groups jsonprop imports last in generated code.
const localImportPrefix = "github.com/mcncl/jsonprop"

// Runtime holds the streams a command reads and writes.
type Runtime struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Exit is called by kong after --help. Defaults to os.Exit.
	Exit func(int)
}

// Globals are flags shared by every command.
type Globals struct {
	Config  string `help:"Path to a config file. Defaults to the nearest .jsonprop.yml." type:"path"`
	Debug   bool   `help:"Enable debug logging." short:"d"`
	KeyCase string `help:"Key case for fields without an explicit JSON name: identity, camel, pascal, snake, kebab or screaming_snake." name:"key-case"`
}

// CLI defines the command-line interface
type CLI struct {
	Globals

	Map     MapCmd     `cmd:"" help:"Map a JSON document through a model from a schema file."`
	Infer   InferCmd   `cmd:"" help:"Infer a model schema from a JSON sample."`
	Gen     GenCmd     `cmd:"" help:"Generate Go model structs from a schema file."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Run parses args and executes the selected command.
func Run(args []string, rt *Runtime) error {
	if rt.Exit == nil {
		rt.Exit = os.Exit
	}

	var cli CLI
	p, err := kong.New(&cli,
		kong.Name("jsonprop"),
		kong.Description("Map JSON documents onto annotated models, and infer or generate those models."),
		kong.Writers(rt.Stdout, rt.Stderr),
		kong.Exit(rt.Exit),
		kong.UsageOnError(),
		kong.Bind(&cli.Globals, rt),
	)
	if err != nil {
		return err
	}

	ctx, err := p.Parse(args)
	if err != nil {
		return errors.NewInputError("invalid command line", err)
	}
	return ctx.Run()
}

// load resolves the configuration for one command and builds its logger.
func (g *Globals) load(rt *Runtime, overrides config.Overrides) (*config.Config, *zap.Logger, error) {
	path := g.Config
	if path == "" {
		path = config.FindConfigFile()
	}
	overrides.KeyCase = g.KeyCase
	overrides.Debug = g.Debug

	cfg, err := config.LoadConfigWithCLI(path, overrides)
	if err != nil {
		return nil, nil, errors.NewConfigurationError("failed to load configuration", err)
	}
	logger := logging.NewWithWriter(cfg.Dev.Debug, rt.Stderr)
	if path != "" {
		logger.Debug("loaded config", zap.String("path", path))
	}
	return cfg, logger, nil
}

// registry returns a fresh registry carrying the configured converter aliases.
func registry(cfg *config.Config) (*mapper.Registry, error) {
	reg := mapper.NewRegistry()
	if err := cfg.ApplyConverterAliases(reg); err != nil {
		return nil, errors.NewConfigurationError("invalid converter aliases", err)
	}
	return reg, nil
}

// InputFlags select where the JSON document comes from.
type InputFlags struct {
	Input       string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Interactive bool   `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
}

// MapCmd maps a document through a schema model.
type MapCmd struct {
	InputFlags

	Schema string `help:"Path to the model schema file." short:"s" type:"path"`
	Model  string `help:"Model to map the document to. Defaults to the schema's root model." short:"m"`
	Output string `help:"Path to output JSON file. If not specified, writes to stdout." short:"o" type:"path"`
	Dump   bool   `help:"Dump the deserialized instance to stderr."`
	Indent string `help:"Indent output JSON with this string."`
}

// Run executes the map command.
func (c *MapCmd) Run(g *Globals, rt *Runtime) error {
	cfg, logger, err := g.load(rt, config.Overrides{Schema: c.Schema, Model: c.Model, Indent: c.Indent})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Schema == "" {
		return errors.NewInputError("no schema file: please specify one with -s or in the config file", nil)
	}
	reg, err := registry(cfg)
	if err != nil {
		return err
	}
	s, err := schema.Load(cfg.Schema)
	if err != nil {
		return err
	}
	set, err := s.Build(reg)
	if err != nil {
		return err
	}
	logger.Debug("built schema", zap.String("path", cfg.Schema), zap.Strings("models", set.Names()))

	modelName := cfg.Model
	if modelName == "" {
		modelName = s.Root()
	}
	if modelName == "" {
		return errors.NewInputError("schema has several models and none is marked root", errors.ErrNoModel)
	}
	class, err := set.Class(modelName)
	if err != nil {
		return err
	}

	ir, err := c.read(rt)
	if err != nil {
		return err
	}

	m := mapper.NewMapperWithOptions(reg, mapper.Options{Logger: logger, KeyCase: cfg.MapperKeyCase()})
	instance := m.Deserialize(class, ir.Root)
	if instance == nil {
		logger.Warn("document is not an object, writing null", zap.String("model", modelName))
	}
	if c.Dump {
		spew.Fdump(rt.Stderr, instance)
	}

	var out any
	if instance != nil {
		out = m.Serialize(instance)
	}
	data, err := codec.New(codec.Options{Indent: cfg.Output.Indent, SortKeys: cfg.Output.SortKeys}).Marshal(out)
	if err != nil {
		return errors.NewOutputError("failed to encode mapped document", err)
	}
	return writeOutput(rt, c.Output, append(data, '\n'), "Mapped JSON")
}

// InferCmd infers a schema from a sample document.
type InferCmd struct {
	InputFlags

	Output   string `help:"Path to output schema file. If not specified, writes to stdout." short:"o" type:"path"`
	RootName string `help:"Name for the root model." short:"r"`
}

// Run executes the infer command.
func (c *InferCmd) Run(g *Globals, rt *Runtime) error {
	cfg, logger, err := g.load(rt, config.Overrides{RootName: c.RootName})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ir, err := c.read(rt)
	if err != nil {
		return err
	}

	defs, err := analyzer.NewAnalyzerWithConfig(cfg).Analyze(ir, cfg.RootName)
	if err != nil {
		return err
	}
	s := schema.FromAnalysis(defs)

	// The inferred schema must be usable by map and gen.
	reg, err := registry(cfg)
	if err != nil {
		return err
	}
	if _, err := s.Build(reg); err != nil {
		return errors.NewAnalysisError("inferred schema is not valid", err)
	}
	logger.Debug("inferred models", zap.Int("count", len(defs)))

	data, err := s.Marshal()
	if err != nil {
		return err
	}
	return writeOutput(rt, c.Output, data, "Model schema")
}

// GenCmd generates Go code for a schema.
type GenCmd struct {
	Schema   string `help:"Path to the model schema file." short:"s" type:"path"`
	Package  string `help:"Package name for generated code." short:"p"`
	Output   string `help:"Path to output Go file. If not specified, writes to stdout." short:"o" type:"path"`
	NoFormat bool   `help:"Do not format the generated code."`
}

// Run executes the gen command.
func (c *GenCmd) Run(g *Globals, rt *Runtime) error {
	cfg, logger, err := g.load(rt, config.Overrides{Schema: c.Schema, Package: c.Package})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Schema == "" {
		return errors.NewInputError("no schema file: please specify one with -s or in the config file", nil)
	}
	s, err := schema.Load(cfg.Schema)
	if err != nil {
		return err
	}
	reg, err := registry(cfg)
	if err != nil {
		return err
	}

	code, err := generator.NewGenerator(reg).GenerateModels(s, cfg.Package)
	if err != nil {
		return err
	}
	if cfg.Formatting.Enabled && !c.NoFormat {
		f := &formatter.Formatter{LocalPrefix: localImportPrefix}
		if code, err = f.Format(code); err != nil {
			return err
		}
	}
	logger.Debug("generated models", zap.String("package", cfg.Package), zap.Int("bytes", len(code)))
	return writeOutput(rt, c.Output, []byte(code), "Generated Go code")
}

// VersionCmd prints the version.
type VersionCmd struct{}

// Run executes the version command.
func (c *VersionCmd) Run(rt *Runtime) error {
	_, err := fmt.Fprintf(rt.Stdout, "jsonprop version %s\n", Version)
	return err
}

// read parses JSON from the input file or stdin
func (f *InputFlags) read(rt *Runtime) (models.IntermediateRepresentation, error) {
	if f.Input != "" {
		return parser.ParseFile(f.Input)
	}

	if file, ok := rt.Stdin.(*os.File); ok {
		info, err := file.Stat()
		if err != nil {
			return models.IntermediateRepresentation{}, errors.NewInputError("failed to access stdin", err)
		}
		if info.Mode()&os.ModeCharDevice != 0 {
			if f.Interactive {
				return readInteractiveInput(rt)
			}
			return models.IntermediateRepresentation{}, errors.NewInputError("no input provided", errors.ErrNoInput)
		}
	}

	data, err := io.ReadAll(rt.Stdin)
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError("failed to read from stdin", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return parser.ParseBytes(data)
}

// readInteractiveInput lets users paste JSON and finish with Ctrl+D (EOF).
func readInteractiveInput(rt *Runtime) (models.IntermediateRepresentation, error) {
	fmt.Fprintln(rt.Stderr, "jsonprop interactive mode")
	fmt.Fprintln(rt.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(rt.Stdin)
	var sb strings.Builder
	for {
		line, err := reader.ReadString('\n')
		sb.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.IntermediateRepresentation{}, errors.NewInputError("error reading input", err)
		}
	}

	if strings.TrimSpace(sb.String()) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}
	fmt.Fprintln(rt.Stderr, "\nProcessing JSON...")
	return parser.ParseString(sb.String())
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(rt *Runtime, path string, data []byte, what string) error {
	if path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
		fmt.Fprintf(rt.Stderr, "%s written to %s\n", what, path)
		return nil
	}

	if _, err := rt.Stdout.Write(data); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
