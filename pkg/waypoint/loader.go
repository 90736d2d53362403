package waypoint

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/teslashibe/go-wayfinder/pkg/band"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.json
var embeddedGraphs embed.FS

// DefaultGraphName is the embedded graph loaded by Default.
const DefaultGraphName = "campus"

// entry is one node as written in a graph file.
type entry struct {
	Code     string `json:"code" yaml:"code"`
	Text     string `json:"text" yaml:"text"`
	Voice    string `json:"voice" yaml:"voice"`
	Category string `json:"category" yaml:"category"`
	Next     string `json:"next" yaml:"next"`
}

// document is a whole graph file: color key -> entries.
type document map[string][]entry

// Default loads the embedded campus graph.
func Default() (*Graph, error) {
	return LoadEmbedded(DefaultGraphName)
}

// LoadEmbedded loads a graph shipped with the binary.
func LoadEmbedded(name string) (*Graph, error) {
	data, err := embeddedGraphs.ReadFile(fmt.Sprintf("data/%s.json", name))
	if err != nil {
		return nil, fmt.Errorf("graph %q not found: %w", name, err)
	}
	return Parse(data)
}

// ListEmbedded returns the names of all embedded graphs.
func ListEmbedded() ([]string, error) {
	entries, err := embeddedGraphs.ReadDir("data")
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded graphs: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// LoadFile loads and validates a JSON or YAML graph file, chosen by extension.
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return Parse(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Parse builds and validates a graph from JSON.
func Parse(data []byte) (*Graph, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse graph JSON: %w", err)
	}
	return build(doc)
}

// ParseYAML builds and validates a graph from YAML.
func ParseYAML(data []byte) (*Graph, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse graph YAML: %w", err)
	}
	return build(doc)
}

func build(doc document) (*Graph, error) {
	parts := make(map[band.Band][]Node, len(doc))
	var errs []error

	// Sorted keys keep error output stable.
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		b, err := band.Parse(key)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidColor, key))
			continue
		}
		for i, e := range doc[key] {
			code := strings.TrimSpace(e.Code)
			if code == "" || strings.TrimSpace(e.Text) == "" {
				errs = append(errs, &ValidationError{
					Code:  code,
					Color: b,
					Err:   ErrInvalidNode,
					Info:  fmt.Sprintf("entry %d needs code and text", i),
				})
				continue
			}
			parts[b] = append(parts[b], Node{
				Code:     code,
				Text:     e.Text,
				Voice:    e.Voice,
				Category: e.Category,
				Next:     strings.TrimSpace(e.Next),
			})
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	g := New(parts)
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
