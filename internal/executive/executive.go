// Package executive provides the configured list of sales executives and
// their display colors.
package executive

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultColor is used for executives without a configured color.
const DefaultColor = "#64748b"

// Executive is a sales representative who owns part of the roster.
type Executive struct {
	Name  string `yaml:"name" json:"name"`
	Color string `yaml:"color" json:"color"`
}

// Directory is an ordered list of executives.
type Directory []Executive

type file struct {
	Executives Directory `yaml:"executives"`
}

// Load reads a directory from a YAML file of the form:
//
//	executives:
//	  - name: LUIS
//	    color: "#2563eb"
func Load(path string) (Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading executives file: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing executives file: %w", err)
	}

	seen := make(map[string]bool)
	dir := make(Directory, 0, len(f.Executives))
	for _, e := range f.Executives {
		if e.Name == "" {
			return nil, fmt.Errorf("parsing executives file: entry without a name")
		}
		if seen[e.Name] {
			continue
		}
		seen[e.Name] = true
		if e.Color == "" {
			e.Color = DefaultColor
		}
		dir = append(dir, e)
	}
	return dir, nil
}

// FromNames builds a directory with default colors, sorted by name.
// Blank and repeated names are skipped.
func FromNames(names []string) Directory {
	seen := make(map[string]bool)
	dir := make(Directory, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		dir = append(dir, Executive{Name: n, Color: DefaultColor})
	}
	sort.Slice(dir, func(i, j int) bool { return dir[i].Name < dir[j].Name })
	return dir
}

// Names returns the executive names in order.
func (d Directory) Names() []string {
	names := make([]string, len(d))
	for i, e := range d {
		names[i] = e.Name
	}
	return names
}

// Color returns the display color of name.
func (d Directory) Color(name string) string {
	for _, e := range d {
		if e.Name == name {
			return e.Color
		}
	}
	return DefaultColor
}
