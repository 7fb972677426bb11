// Package codec turns in-memory JSON values into JSON text and back.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/mcncl/jsonprop/internal/models"
)

// Options control how values are encoded.
type Options struct {
	// Indent is the per-level indentation. Empty means compact output.
	Indent string
	// SortKeys orders object keys alphabetically.
	SortKeys bool
}

// DefaultOptions returns compact output with sorted keys.
func DefaultOptions() Options {
	return Options{SortKeys: true}
}

// Codec encodes and decodes JSON documents.
type Codec struct {
	api    jsoniter.API
	indent string
}

// New creates a Codec. Numbers are always decoded as json.Number so integer
// precision is kept until a value reaches a typed field.
func New(opts Options) *Codec {
	api := jsoniter.Config{
		EscapeHTML:             false,
		SortMapKeys:            opts.SortKeys,
		ValidateJsonRawMessage: true,
		UseNumber:              true,
	}.Froze()
	return &Codec{api: api, indent: opts.Indent}
}

var std = New(DefaultOptions())

// Marshal encodes v with the codec's options. Indented output is the compact
// encoding passed through json.Indent, so any indent string works.
func (c *Codec) Marshal(v any) ([]byte, error) {
	data, err := c.api.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	if c.indent == "" {
		return data, nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", c.indent); err != nil {
		return nil, fmt.Errorf("failed to indent JSON: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a single JSON document into a models.JSONValue tree
// made of models.JSONObject, models.JSONArray and scalars. Numbers are
// json.Number.
func (c *Codec) Unmarshal(data []byte) (models.JSONValue, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("failed to decode JSON: empty input")
	}
	var v any
	if err := c.api.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	return v, nil
}

// Valid reports whether data holds exactly one well-formed JSON value,
// scalars included.
func (c *Codec) Valid(data []byte) bool {
	var v any
	return c.api.Unmarshal(data, &v) == nil
}

// NewDecoder returns a streaming decoder reading from r with the codec's
// settings.
func (c *Codec) NewDecoder(r io.Reader) *jsoniter.Decoder {
	return c.api.NewDecoder(r)
}

// Marshal encodes v compactly with sorted keys.
func Marshal(v any) ([]byte, error) {
	return std.Marshal(v)
}

// Valid reports whether data holds exactly one well-formed JSON value.
func Valid(data []byte) bool {
	return std.Valid(data)
}

// NewDecoder returns a streaming decoder using the default codec.
func NewDecoder(r io.Reader) *jsoniter.Decoder {
	return std.NewDecoder(r)
}

// Unmarshal decodes data with the default codec.
func Unmarshal(data []byte) (models.JSONValue, error) {
	return std.Unmarshal(data)
}
