package main

import (
	"github.com/recera/rulesheet/cmd/rulesheet/internal/ui"
	"github.com/recera/rulesheet/internal/defs"
	"github.com/recera/rulesheet/pkg/styling"
	"github.com/spf13/cobra"
)

func newInspectCommand(a *app) *cobra.Command {
	var files []string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Browse the rules definition files insert",
		Long: `Inserts the definition files twice, left-to-right and right-to-left, and
opens a terminal table of the inserted rules. Press r to switch direction
and / to filter.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := a.definitionFiles(files)
			if err != nil {
				return err
			}
			loaded, err := defs.LoadAll(paths)
			if err != nil {
				return err
			}

			ltr, err := insertionRows(a, loaded, false)
			if err != nil {
				return err
			}
			rtl, err := insertionRows(a, loaded, true)
			if err != nil {
				return err
			}
			return ui.Run(ltr, rtl)
		},
	}

	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "Definition file (repeatable)")
	return cmd
}

// insertionRows inserts files into a fresh registry and records every
// rule that reached a sheet
func insertionRows(a *app, files []*defs.File, rtl bool) ([]ui.Row, error) {
	reg := a.registry()
	defer reg.Close()

	var rows []ui.Row
	unsubscribe := reg.Subscribe(func(ins styling.Insertion) {
		rows = append(rows, ui.Row{
			Sheet: ins.Sheet,
			Index: ins.Index,
			Slot:  ins.Slot,
			Class: ins.ClassName,
			CSS:   ins.CSS,
		})
	})
	defer unsubscribe()

	if _, err := defs.InsertAll(reg, files, rtl); err != nil {
		return nil, err
	}
	return rows, nil
}
