// Package defs loads style definition tables from YAML files.
//
// A file names an optional target sheet and any number of rule sets. Each
// set maps slot keys to definitions, written either as the positional
// tuple [class, css, rtlClass, rtlCss] or as a mapping with the same
// fields. Sets under "atomic" map CSS properties to values and are turned
// into atomic classes. Key order in the file is kept.
//
//	sheet: main
//	sets:
//	  root:
//	    size: [sz-sm, ".sz-sm{width:8px}"]
//	    color: {class: a, css: ".a{color:red}", rtlClass: b, rtlCss: ".b{color:blue}"}
//	atomic:
//	  badge:
//	    margin-left: 4px
package defs

import (
	"fmt"
	"os"

	"github.com/recera/rulesheet/pkg/styling"
	"gopkg.in/yaml.v3"
)

// Set is one named rule set
type Set struct {
	Name        string
	Definitions *styling.Definitions
}

// File is a parsed definitions file
type File struct {
	Path  string
	Sheet string
	Sets  []Set
}

// Load reads and parses a definitions file
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Parse parses definitions from YAML
func Parse(data []byte) (*File, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	f := &File{}
	if len(doc.Content) == 0 {
		return f, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, nodeErr(root, "expected a mapping at top level")
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "sheet":
			f.Sheet = value.Value
		case "sets":
			sets, err := parseSets(value, parseTupleSet)
			if err != nil {
				return nil, err
			}
			f.Sets = append(f.Sets, sets...)
		case "atomic":
			sets, err := parseSets(value, parseAtomicSet)
			if err != nil {
				return nil, err
			}
			f.Sets = append(f.Sets, sets...)
		default:
			return nil, nodeErr(key, "unknown key %q", key.Value)
		}
	}
	return f, nil
}

// Merged returns every set's definitions in file order. A slot key that
// repeats across sets is prefixed with its set name.
func (f *File) Merged() *styling.Definitions {
	out := &styling.Definitions{}
	for _, set := range f.Sets {
		for _, slot := range set.Definitions.Slots() {
			key := slot.Key
			if _, taken := out.Get(key); taken {
				key = set.Name + "." + key
			}
			out.Set(key, slot.Definition)
		}
	}
	return out
}

func parseSets(node *yaml.Node, parse func(*yaml.Node) (*styling.Definitions, error)) ([]Set, error) {
	if node.Kind != yaml.MappingNode {
		return nil, nodeErr(node, "expected a mapping of rule sets")
	}

	var sets []Set
	for i := 0; i+1 < len(node.Content); i += 2 {
		name, body := node.Content[i], node.Content[i+1]
		defs, err := parse(body)
		if err != nil {
			return nil, fmt.Errorf("set %q: %w", name.Value, err)
		}
		sets = append(sets, Set{Name: name.Value, Definitions: defs})
	}
	return sets, nil
}

func parseTupleSet(node *yaml.Node) (*styling.Definitions, error) {
	if node.Kind != yaml.MappingNode {
		return nil, nodeErr(node, "expected a mapping of slots")
	}

	defs := &styling.Definitions{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		slot, body := node.Content[i], node.Content[i+1]

		var def styling.Definition
		switch body.Kind {
		case yaml.SequenceNode:
			var fields []string
			if err := body.Decode(&fields); err != nil {
				return nil, fmt.Errorf("slot %q: %w", slot.Value, err)
			}
			if len(fields) > 4 {
				return nil, nodeErr(body, "slot %q has %d fields, at most 4 allowed", slot.Value, len(fields))
			}
			def = styling.Tuple(fields...)
		case yaml.MappingNode:
			var m struct {
				Class    string `yaml:"class"`
				CSS      string `yaml:"css"`
				RTLClass string `yaml:"rtlClass"`
				RTLCSS   string `yaml:"rtlCss"`
			}
			if err := body.Decode(&m); err != nil {
				return nil, fmt.Errorf("slot %q: %w", slot.Value, err)
			}
			def = styling.Definition{ClassName: m.Class, CSS: m.CSS, RTLClassName: m.RTLClass, RTLCSS: m.RTLCSS}
		default:
			return nil, nodeErr(body, "slot %q must be a list or a mapping", slot.Value)
		}
		defs.Set(slot.Value, def)
	}
	return defs, nil
}

func parseAtomicSet(node *yaml.Node) (*styling.Definitions, error) {
	if node.Kind != yaml.MappingNode {
		return nil, nodeErr(node, "expected a mapping of properties")
	}

	var decls styling.Declarations
	for i := 0; i+1 < len(node.Content); i += 2 {
		prop, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return nil, nodeErr(value, "property %q must have a scalar value", prop.Value)
		}
		decls = append(decls, styling.Decl(prop.Value, value.Value))
	}
	return styling.Atomize(decls), nil
}

func nodeErr(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("line %d: %s", n.Line, fmt.Sprintf(format, args...))
}
