package todo

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	yaml "gopkg.in/yaml.v3"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// ExportFormats returns the supported export formats.
func ExportFormats() []string {
	return []string{FormatJSON, FormatYAML, FormatTOML}
}

// tomlDocument wraps the task list, since a TOML document must be a table.
type tomlDocument struct {
	Tasks []Task `toml:"tasks"`
}

// Export writes every task to w in the given format. It does not modify
// the store.
func (s *Store) Export(w io.Writer, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		data, err := json.MarshalIndent(s.tasks, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		data = append(data, '\n')
		_, err = w.Write(data)
		return err
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s.tasks); err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(tomlDocument{Tasks: s.tasks}); err != nil {
			return fmt.Errorf("marshal toml: %w", err)
		}
		return nil
	default:
		return &ValidationError{
			Path: "format",
			Err:  fmt.Errorf("export format must be one of: %s (got %q)", strings.Join(ExportFormats(), ", "), format),
		}
	}
}
