// Package snapshot encodes a plan's task set for export and import.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/todopath/todopath/internal/domain"
)

// Version is the document version written by Encode.
const Version = 1

// Format names an encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts "yaml", "yml" or "json", case-insensitively.
// The empty string selects YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown snapshot format %q", s)
	}
}

// FormatForPath picks the encoding from a file name's extension.
func FormatForPath(path string) Format {
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Document is the exported form of a plan. Only source fields of each task
// are included; schedules are recomputed on import.
type Document struct {
	Version    int                   `yaml:"version" json:"version"`
	Project    string                `yaml:"project,omitempty" json:"project,omitempty"`
	ExportedAt time.Time             `yaml:"exported_at" json:"exported_at"`
	Tasks      []domain.TaskSnapshot `yaml:"tasks" json:"tasks"`
}

// New creates a document for the given tasks.
func New(project string, tasks []domain.TaskSnapshot, at time.Time) Document {
	if tasks == nil {
		tasks = []domain.TaskSnapshot{}
	}
	return Document{
		Version:    Version,
		Project:    project,
		ExportedAt: at.UTC(),
		Tasks:      tasks,
	}
}

// Encode writes doc in the given format.
func Encode(w io.Writer, doc Document, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}
		return enc.Close()
	}
}

// Decode reads a document in the given format and checks its version.
func Decode(r io.Reader, format Format) (Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&doc)
	default:
		err = yaml.NewDecoder(r).Decode(&doc)
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if doc.Version != Version {
		return Document{}, fmt.Errorf("unsupported snapshot version %d", doc.Version)
	}
	for i := range doc.Tasks {
		if doc.Tasks[i].Dependencies == nil {
			doc.Tasks[i].Dependencies = []string{}
		}
	}
	return doc, nil
}
