// Package catalog loads catalog items from JSON/YAML files or SQLite and
// keeps an atomically swapped snapshot of each domain for the searchers.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/fandex/internal/models"
)

// ErrUnsupportedFormat is returned for catalog files that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported catalog format")

// ErrUnknownDomain aliases the models sentinel so callers of this package can match it.
var ErrUnknownDomain = models.ErrUnknownDomain

// Format is a catalog file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf returns the format implied by a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Decode parses a list of items of domain d. JSON input may be a bare array
// or an object with an "items" array; YAML input likewise.
func Decode(d models.Domain, format Format, data []byte) ([]models.CatalogItem, error) {
	if _, err := models.NewItem(d); err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		return decodeJSON(d, data)
	case FormatYAML:
		return decodeYAML(d, data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func decodeJSON(d models.Domain, data []byte) ([]models.CatalogItem, error) {
	var raw []json.RawMessage
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("failed to parse catalog: %w", err)
		}
		raw = wrapped.Items
	} else if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	items := make([]models.CatalogItem, 0, len(raw))
	for i, r := range raw {
		if isJSONNull(r) {
			continue
		}
		item, _ := models.NewItem(d)
		if err := json.Unmarshal(r, item); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func isJSONNull(r json.RawMessage) bool {
	trimmed := bytes.TrimSpace(r)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeYAML(d models.Domain, data []byte) ([]models.CatalogItem, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(root.Content) == 0 {
		return []models.CatalogItem{}, nil
	}
	list := root.Content[0]
	if list.Kind == yaml.MappingNode {
		list = nil
		for i := 0; i+1 < len(root.Content[0].Content); i += 2 {
			if root.Content[0].Content[i].Value == "items" {
				list = root.Content[0].Content[i+1]
			}
		}
		if list == nil {
			return []models.CatalogItem{}, nil
		}
	}
	if isYAMLNull(list) {
		return []models.CatalogItem{}, nil
	}
	if list.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("failed to parse catalog: expected a list of items, line %d", list.Line)
	}

	items := make([]models.CatalogItem, 0, len(list.Content))
	for i, n := range list.Content {
		if isYAMLNull(n) {
			continue
		}
		item, _ := models.NewItem(d)
		if err := n.Decode(item); err != nil {
			return nil, fmt.Errorf("item %d (line %d): %w", i, n.Line, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func isYAMLNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

// Validate rejects items without an id or title and duplicate ids.
func Validate(items []models.CatalogItem) error {
	seen := make(map[string]int, len(items))
	for i, item := range items {
		if models.IsNil(item) {
			continue
		}
		id := strings.TrimSpace(item.ItemID())
		if id == "" {
			return fmt.Errorf("item %d has no id", i)
		}
		if strings.TrimSpace(item.ItemTitle()) == "" {
			return fmt.Errorf("item %q has no title", id)
		}
		if prev, dup := seen[id]; dup {
			return fmt.Errorf("duplicate id %q at items %d and %d", id, prev, i)
		}
		seen[id] = i
	}
	return nil
}

// ReadFile decodes a catalog file without validating it.
func ReadFile(d models.Domain, path string) ([]models.CatalogItem, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	items, err := Decode(d, format, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// FileSource loads a domain from a JSON or YAML file.
type FileSource struct {
	domain models.Domain
	path   string
}

// NewFileSource creates a file source. The format is checked up front.
func NewFileSource(d models.Domain, path string) (*FileSource, error) {
	if _, err := FormatOf(path); err != nil {
		return nil, err
	}
	return &FileSource{domain: d, path: path}, nil
}

func (s *FileSource) Domain() models.Domain { return s.domain }
func (s *FileSource) String() string        { return "file:" + s.path }

// Path returns the file path, for the watcher.
func (s *FileSource) Path() string { return s.path }

// Load reads and validates the file.
func (s *FileSource) Load(_ context.Context) ([]models.CatalogItem, error) {
	items, err := ReadFile(s.domain, s.path)
	if err != nil {
		return nil, err
	}
	if err := Validate(items); err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return items, nil
}
