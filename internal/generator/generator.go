package generator

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/mcncl/jsonprop/internal/errors"
	"github.com/mcncl/jsonprop/internal/models"
	"github.com/mcncl/jsonprop/internal/schema"
	"github.com/mcncl/jsonprop/mapper"
)

// MapperImport is the import path of the mapper package used by generated code.
const MapperImport = "github.com/mcncl/jsonprop/mapper"

// Generator writes Go model declarations for a schema.
type Generator struct {
	registry *mapper.Registry
}

// NewGenerator creates a Generator that checks converter ids against
// registry. A nil registry means one with only the built-in converters.
func NewGenerator(registry *mapper.Registry) *Generator {
	if registry == nil {
		registry = mapper.NewRegistry()
	}
	return &Generator{registry: registry}
}

// GenerateModels renders one struct per model plus a RegisterModels function
// that records their descriptors on a registry. Models are emitted in
// dependency order. The output is valid Go but not gofmt-aligned.
func (g *Generator) GenerateModels(s *schema.Schema, packageName string) (string, error) {
	if packageName == "" {
		return "", errors.NewGenerateError("package name is empty", nil)
	}

	// Building on a scratch copy of the converters checks every tag the
	// generated code will carry.
	scratch := mapper.NewRegistry()
	for _, id := range g.registry.ConverterIDs() {
		conv, _ := g.registry.Converter(id)
		if err := scratch.RegisterConverter(id, conv); err != nil {
			return "", errors.NewGenerateError("failed to copy converters", err)
		}
	}
	set, err := s.Build(scratch)
	if err != nil {
		return "", errors.NewGenerateError("schema cannot be built", err)
	}

	var body bytes.Buffer
	imports := map[string]bool{MapperImport: true}
	for _, name := range set.Names() {
		def, _ := s.Model(name)
		class, err := set.Class(name)
		if err != nil {
			return "", errors.NewGenerateError("schema cannot be built", err)
		}
		writeModel(&body, def, class, imports)
		body.WriteString("\n")
	}
	writeRegister(&body, set.Names())

	var buf bytes.Buffer
	buf.WriteString("// Code generated by jsonprop. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", packageName)
	writeImports(&buf, lo.Keys(imports))
	buf.Write(body.Bytes())
	return buf.String(), nil
}

func writeModel(buf *bytes.Buffer, def models.ModelDef, class mapper.Class, imports map[string]bool) {
	if def.IsRoot {
		fmt.Fprintf(buf, "// %s is the root model.\n", def.Name)
	}
	fmt.Fprintf(buf, "type %s struct {\n", def.Name)
	for i, f := range def.Fields {
		sf := class.Field(i)
		typeName := schema.GoTypeName(f.Type)
		if strings.Contains(typeName, "time.") {
			imports["time"] = true
		}
		if strings.Contains(typeName, "json.") {
			imports["encoding/json"] = true
		}

		if f.Comment != "" {
			fmt.Fprintf(buf, "\t// %s\n", f.Comment)
		}
		fmt.Fprintf(buf, "\t%s %s", sf.Name, typeName)
		if tag, ok := sf.Tag.Lookup(mapper.TagName); ok {
			fmt.Fprintf(buf, " `%s:%s`", mapper.TagName, strconv.Quote(tag))
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
}

func writeRegister(buf *bytes.Buffer, names []string) {
	buf.WriteString("// RegisterModels records the field descriptors of every model on reg.\n")
	buf.WriteString("func RegisterModels(reg *mapper.Registry) error {\n")
	buf.WriteString("\tfor _, class := range []mapper.Class{\n")
	for _, name := range names {
		fmt.Fprintf(buf, "\t\tmapper.ClassOf[%s](),\n", name)
	}
	buf.WriteString("\t} {\n")
	buf.WriteString("\t\tif err := reg.RegisterTags(class); err != nil {\n")
	buf.WriteString("\t\t\treturn err\n")
	buf.WriteString("\t\t}\n")
	buf.WriteString("\t}\n")
	buf.WriteString("\treturn nil\n")
	buf.WriteString("}\n")
}

// writeImports writes standard library imports first, followed by the rest
// with a blank line in between.
func writeImports(buf *bytes.Buffer, imports []string) {
	std, thirdParty := lo.FilterReject(imports, func(imp string, _ int) bool {
		return !strings.Contains(strings.SplitN(imp, "/", 2)[0], ".")
	})
	sort.Strings(std)
	sort.Strings(thirdParty)

	buf.WriteString("import (\n")
	for _, imp := range std {
		fmt.Fprintf(buf, "\t%q\n", imp)
	}
	if len(std) > 0 && len(thirdParty) > 0 {
		buf.WriteString("\n")
	}
	for _, imp := range thirdParty {
		fmt.Fprintf(buf, "\t%q\n", imp)
	}
	buf.WriteString(")\n\n")
}
