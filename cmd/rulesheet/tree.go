package main

import (
	"fmt"

	"github.com/recera/rulesheet/internal/defs"
	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"
)

func newTreeCommand(a *app) *cobra.Command {
	var files []string
	var rtl bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print sheets, rule sets and slots as a tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("rtl") {
				rtl = a.cfg.Styles.RTL
			}
			paths, err := a.definitionFiles(files)
			if err != nil {
				return err
			}
			loaded, err := defs.LoadAll(paths)
			if err != nil {
				return err
			}
			out, err := renderTree(a, loaded, rtl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "Definition file (repeatable)")
	cmd.Flags().BoolVar(&rtl, "rtl", false, "Show right-to-left variants")
	return cmd
}

// renderTree inserts files and prints sheet → set → slot, marking slots
// whose class was already in the cache when the set was inserted
func renderTree(a *app, files []*defs.File, rtl bool) (string, error) {
	reg := a.registry()
	defer reg.Close()

	root := treeprint.New()
	root.SetValue("rulesheet")

	sheets := make(map[string]treeprint.Tree)
	for _, f := range files {
		name := f.Sheet
		if name == "" {
			name = a.cfg.Styles.DefaultSheet
		}
		branch, ok := sheets[name]
		if !ok {
			branch = root.AddBranch(name)
			sheets[name] = branch
		}

		for _, set := range f.Sets {
			setBranch := branch.AddBranch(set.Name)
			sheet := reg.Sheet(name)
			for _, slot := range set.Definitions.Slots() {
				class := slot.Definition.Class(rtl)
				meta := "new"
				if reg.CacheFor(sheet).Has(class) {
					meta = "cached"
				}
				setBranch.AddMetaNode(meta, fmt.Sprintf("%s: .%s  %s", slot.Key, class, slot.Definition.Rule(rtl)))
			}
			if _, err := reg.InsertStyles(set.Definitions, rtl, sheet); err != nil {
				return "", fmt.Errorf("set %q: %w", set.Name, err)
			}
		}
	}
	return root.String(), nil
}
