package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	stderrors "errors"

	"github.com/mcncl/jsonprop/internal/codec"
	"github.com/mcncl/jsonprop/internal/errors"
	"github.com/mcncl/jsonprop/internal/models"
)

// Parse reads exactly one JSON document from reader and returns it as an
// IntermediateRepresentation whose objects and arrays are models types.
func Parse(reader io.Reader) (models.IntermediateRepresentation, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError("failed to read input", err)
	}
	return ParseBytes(data)
}

// ParseBytes parses a single JSON document held in memory.
func ParseBytes(data []byte) (models.IntermediateRepresentation, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.IntermediateRepresentation{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}

	decoder := codec.NewDecoder(bytes.NewReader(data))
	var root any
	if err := decoder.Decode(&root); err != nil {
		return models.IntermediateRepresentation{}, errors.NewParsingError(
			fmt.Sprintf("failed to decode JSON: %v", err),
			errors.ErrInvalidJSON,
		)
	}

	// Only whitespace may follow the document.
	if decoder.More() {
		var trailing any
		if err := decoder.Decode(&trailing); err != nil && !stderrors.Is(err, io.EOF) {
			return models.IntermediateRepresentation{}, errors.NewParsingError("invalid trailing data after first JSON value", err)
		}
		return models.IntermediateRepresentation{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	}

	// A stray closing bracket ends the stream without a value; catch it here.
	if !codec.Valid(data) {
		return models.IntermediateRepresentation{}, errors.NewParsingError("JSON syntax error", errors.ErrInvalidJSON)
	}

	_, isArray := root.(models.JSONArray)
	return models.IntermediateRepresentation{Root: root, RootIsArray: isArray}, nil
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.IntermediateRepresentation, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return ParseBytes([]byte(jsonString))
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (models.IntermediateRepresentation, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.IntermediateRepresentation{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("failed to read file '%s'", filePath),
			err,
		)
	}
	if len(data) == 0 {
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return ParseBytes(data)
}
