// Package themes holds the predefined word lists a room can draw its secret
// word from.
package themes

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed themes.yaml
var builtin []byte

type themeEntry struct {
	Name  string   `yaml:"name"`
	Words []string `yaml:"words"`
}

type catalogFile struct {
	Themes []themeEntry `yaml:"themes"`
}

// Catalog maps theme names to their candidate words. The first theme of the
// source document is the default list.
type Catalog struct {
	order []string
	lists map[string][]string
}

// Builtin returns the catalog compiled into the binary.
func Builtin() *Catalog {
	c, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("themes: builtin catalog: %v", err))
	}
	return c
}

// LoadFile reads a catalog from a YAML file with the same layout as the
// builtin one.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read themes file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse themes: %w", err)
	}
	if len(f.Themes) == 0 {
		return nil, errors.New("parse themes: no themes defined")
	}

	c := &Catalog{lists: make(map[string][]string, len(f.Themes))}
	for _, t := range f.Themes {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return nil, errors.New("parse themes: theme without a name")
		}
		if _, dup := c.lists[name]; dup {
			return nil, fmt.Errorf("parse themes: duplicate theme %q", name)
		}
		if len(t.Words) == 0 {
			return nil, fmt.Errorf("parse themes: theme %q has no words", name)
		}
		c.order = append(c.order, name)
		c.lists[name] = t.Words
	}
	return c, nil
}

func (c *Catalog) Lookup(name string) ([]string, bool) {
	words, ok := c.lists[name]
	return words, ok
}

func (c *Catalog) Default() (string, []string) {
	name := c.order[0]
	return name, c.lists[name]
}

// Names lists the themes in document order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}
