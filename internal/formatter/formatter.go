package formatter

import (
	"bytes"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"sort"
	"strconv"
	"strings"

	"github.com/mcncl/jsonprop/internal/errors"
)

// Formatter formats generated Go source according to standard conventions
type Formatter struct {
	// LocalPrefix groups imports with this path prefix after third-party
	// imports, like goimports -local.
	LocalPrefix string
}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format runs gofmt over code and regroups its import block into standard
// library, third-party and local groups.
func (f *Formatter) Format(code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", nil
	}

	formatted, err := format.Source([]byte(code))
	if err != nil {
		return "", errors.NewFormatError("failed to parse Go code", err)
	}

	grouped, err := f.groupImports(formatted)
	if err != nil {
		return "", err
	}
	return string(grouped), nil
}

// groupImports rewrites a parenthesized import declaration so that
// each group is sorted and groups are separated by blank lines.
func (f *Formatter) groupImports(src []byte) ([]byte, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", src, parser.ImportsOnly|parser.ParseComments)
	if err != nil {
		return nil, errors.NewFormatError("failed to parse Go code", err)
	}
	var decls []*ast.GenDecl
	for _, decl := range file.Decls {
		if g, ok := decl.(*ast.GenDecl); ok && g.Tok == token.IMPORT {
			decls = append(decls, g)
		}
	}
	// A single import block is regrouped; anything else is left to gofmt.
	if len(decls) != 1 || !decls[0].Lparen.IsValid() {
		return src, nil
	}
	lparen, rparen := decls[0].Lparen, decls[0].Rparen

	// Imports carrying comments are left as written.
	groups := make([][]string, 3)
	for _, spec := range file.Imports {
		if spec.Doc != nil || spec.Comment != nil {
			return src, nil
		}
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			return src, nil
		}
		line := spec.Path.Value
		if spec.Name != nil {
			line = spec.Name.Name + " " + line
		}
		g := f.group(path)
		groups[g] = append(groups[g], line)
	}

	var block bytes.Buffer
	block.WriteString("(\n")
	first := true
	for _, lines := range groups {
		if len(lines) == 0 {
			continue
		}
		if !first {
			block.WriteString("\n")
		}
		first = false
		sort.Strings(lines)
		for _, line := range lines {
			block.WriteString("\t" + line + "\n")
		}
	}
	block.WriteString(")")

	start := fset.Position(lparen).Offset
	end := fset.Position(rparen).Offset + 1
	out := make([]byte, 0, len(src)+2)
	out = append(out, src[:start]...)
	out = append(out, block.Bytes()...)
	out = append(out, src[end:]...)

	result, err := format.Source(out)
	if err != nil {
		return nil, errors.NewFormatError("failed to regroup imports", err)
	}
	return result, nil
}

func (f *Formatter) group(path string) int {
	switch {
	case f.LocalPrefix != "" && strings.HasPrefix(path, f.LocalPrefix):
		return 2
	case strings.Contains(strings.SplitN(path, "/", 2)[0], "."):
		return 1
	default:
		return 0
	}
}
