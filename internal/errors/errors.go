// Package errors defines the typed errors shared by the mapper and the CLI.
package errors

import (
	"errors"
	"fmt"
)

// Input and parsing errors
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON     = errors.New("invalid JSON format")
	ErrMultipleJSON    = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrFileNotFound    = errors.New("file not found")
	ErrFileEmpty       = errors.New("file is empty")
	ErrNoInput         = errors.New("no input provided: please specify a file with -i or pipe JSON data to stdin")
	ErrInvalidFilePath = errors.New("invalid file path")
)

// Model configuration errors
var (
	ErrInvalidDescriptor = errors.New("field metadata must be a name string or a descriptor")
	ErrInvalidClass      = errors.New("class must be a struct type")
	ErrUnknownField      = errors.New("field is not an exported field of the class")
	ErrUnknownConverter  = errors.New("converter is not registered")
	ErrInvalidTag        = errors.New("invalid jsonprop struct tag")
	ErrUnknownModel      = errors.New("model is not defined in the schema")
	ErrModelCycle        = errors.New("model references form a cycle")
	ErrNoModel           = errors.New("no model selected: please specify one with -m or in the config file")
)

// ErrorType says which stage of a run failed.
type ErrorType string

const (
	ErrorTypeInput         ErrorType = "input"
	ErrorTypeParsing       ErrorType = "parsing"
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeSchema        ErrorType = "schema"
	ErrorTypeMapping       ErrorType = "mapping"
	ErrorTypeAnalysis      ErrorType = "analysis"
	ErrorTypeGenerate      ErrorType = "generate"
	ErrorTypeFormat        ErrorType = "format"
	ErrorTypeOutput        ErrorType = "output"
	ErrorTypeUnknown       ErrorType = "unknown"
)

// labels prefix the message of each error type in UserFriendlyError.
var labels = map[ErrorType]string{
	ErrorTypeInput:         "Input error",
	ErrorTypeParsing:       "JSON parsing error",
	ErrorTypeConfiguration: "Model configuration error",
	ErrorTypeSchema:        "Schema error",
	ErrorTypeMapping:       "Mapping error",
	ErrorTypeAnalysis:      "Schema inference error",
	ErrorTypeGenerate:      "Code generation error",
	ErrorTypeFormat:        "Code formatting error",
	ErrorTypeOutput:        "Output error",
}

// hints are shown for bare sentinels, checked in order.
var hints = []struct {
	err  error
	text string
}{
	{ErrEmptyInput, "The input is empty. Please provide valid JSON data."},
	{ErrInvalidJSON, "The input contains invalid JSON. Please check your JSON syntax."},
	{ErrMultipleJSON, "Multiple JSON values found. Please provide a single JSON object or array."},
	{ErrFileNotFound, "The specified file could not be found. Please check the file path."},
	{ErrFileEmpty, "The specified file is empty. Please provide a file with valid JSON content."},
	{ErrNoInput, "No input provided. Please specify a file with -i or pipe JSON data to stdin."},
	{ErrInvalidFilePath, "Invalid file path. Please provide a valid file path."},
	{ErrNoModel, "No model selected. Please specify one with -m or in the config file."},
}

// AppError is a typed error carrying a message and an optional cause.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any *AppError of the same Type, so callers can test the stage
// with errors.Is(err, &AppError{Type: ErrorTypeSchema}).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.Type == t.Type
}

func newError(t ErrorType, message string, err error) *AppError {
	return &AppError{Type: t, Message: message, Err: err}
}

// NewInputError reports a problem reading input.
func NewInputError(message string, err error) *AppError {
	return newError(ErrorTypeInput, message, err)
}

// NewParsingError reports malformed JSON text.
func NewParsingError(message string, err error) *AppError {
	return newError(ErrorTypeParsing, message, err)
}

// NewConfigurationError reports invalid field metadata or tool configuration.
// Model loading stops on it.
func NewConfigurationError(message string, err error) *AppError {
	return newError(ErrorTypeConfiguration, message, err)
}

// NewSchemaError reports an invalid model schema.
func NewSchemaError(message string, err error) *AppError {
	return newError(ErrorTypeSchema, message, err)
}

// NewMappingError reports a model instance that cannot be turned into JSON.
func NewMappingError(message string, err error) *AppError {
	return newError(ErrorTypeMapping, message, err)
}

func NewAnalysisError(message string, err error) *AppError {
	return newError(ErrorTypeAnalysis, message, err)
}

func NewGenerateError(message string, err error) *AppError {
	return newError(ErrorTypeGenerate, message, err)
}

func NewFormatError(message string, err error) *AppError {
	return newError(ErrorTypeFormat, message, err)
}

func NewOutputError(message string, err error) *AppError {
	return newError(ErrorTypeOutput, message, err)
}

// UserFriendlyError renders err for the command line.
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		label, ok := labels[appErr.Type]
		if !ok {
			label = "Error"
		}
		return fmt.Sprintf("%s: %s", label, appErr.Message)
	}

	for _, h := range hints {
		if errors.Is(err, h.err) {
			return "Error: " + h.text
		}
	}
	return fmt.Sprintf("Error: %v", err)
}
