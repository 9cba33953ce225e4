// Package config loads scenario documents describing a world, its robots
// and how long to run them.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/creasty/defaults"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

var (
	ErrSchema            = errors.New("config: scenario does not match schema")
	ErrUnsupportedFormat = errors.New("config: unsupported scenario format")
)

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// Format is a scenario encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadFile reads a scenario from disk, choosing the decoder by extension.
func LoadFile(path string) (*Scenario, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f, format)
}

// Load reads, validates and defaults a scenario.
func Load(r io.Reader, format Format) (*Scenario, error) {
	switch format {
	case FormatJSON:
		return LoadJSON(r)
	case FormatYAML:
		return LoadYAML(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// LoadJSON loads a scenario from a JSON reader.
func LoadJSON(r io.Reader) (*Scenario, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	if err = validate(gojsonschema.NewBytesLoader(data)); err != nil {
		return nil, err
	}

	var s Scenario
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err = dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode json scenario: %w", err)
	}
	return finish(&s)
}

// LoadYAML loads a scenario from a YAML reader.
func LoadYAML(r io.Reader) (*Scenario, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var doc any
	if err = yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml scenario: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	if err = validate(gojsonschema.NewGoLoader(doc)); err != nil {
		return nil, err
	}

	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err = dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml scenario: %w", err)
	}
	return finish(&s)
}

func validate(doc gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(schemaLoader, doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrSchema, strings.Join(msgs, "; "))
}

func finish(s *Scenario) (*Scenario, error) {
	if err := defaults.Set(s); err != nil {
		return nil, fmt.Errorf("scenario defaults: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
