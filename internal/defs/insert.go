package defs

import (
	"fmt"
	"strings"

	"github.com/recera/rulesheet/pkg/styling"
)

// Insert inserts every set of f into reg, in file order, and returns the
// class string of each set. Sets go to the sheet f names, or to the
// registry default.
func (f *File) Insert(reg *styling.Registry, rtl bool) (map[string]string, error) {
	sheet := reg.DefaultSheet()
	if f.Sheet != "" {
		sheet = reg.Sheet(f.Sheet)
	}

	classes := make(map[string]string, len(f.Sets))
	for _, set := range f.Sets {
		cls, err := reg.InsertStyles(set.Definitions, rtl, sheet)
		if err != nil {
			return classes, fmt.Errorf("set %q: %w", set.Name, err)
		}
		classes[set.Name] = strings.TrimSpace(cls)
	}
	return classes, nil
}

// InsertAll inserts files in order and merges their class maps. A set
// name may only be defined once across files.
func InsertAll(reg *styling.Registry, files []*File, rtl bool) (map[string]string, error) {
	classes := make(map[string]string)
	owner := make(map[string]string)

	for _, f := range files {
		for _, set := range f.Sets {
			if prev, ok := owner[set.Name]; ok {
				return nil, fmt.Errorf("set %q defined in both %s and %s", set.Name, prev, f.Path)
			}
			owner[set.Name] = f.Path
		}

		got, err := f.Insert(reg, rtl)
		if err != nil {
			if f.Path != "" {
				return nil, fmt.Errorf("%s: %w", f.Path, err)
			}
			return nil, err
		}
		for k, v := range got {
			classes[k] = v
		}
	}
	return classes, nil
}

// LoadAll loads every path in order
func LoadAll(paths []string) ([]*File, error) {
	files := make([]*File, 0, len(paths))
	for _, p := range paths {
		f, err := Load(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}
