package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newCacheCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the build artifact cache",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cached build artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.artifactCache()
			if err != nil {
				return err
			}
			defer store.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tSIZE\tHITS\tLAST USED\tSOURCES")
			for _, key := range store.Keys() {
				e, ok := store.Lookup(key)
				if !ok {
					continue
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%d\n", key, e.Size, e.AccessCount, e.LastAccess.Format(time.RFC3339), len(e.Sources))
			}
			return w.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Remove expired artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.artifactCache()
			if err != nil {
				return err
			}
			defer store.Close()

			n := store.Prune()
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "pruned %d artifacts\n", n)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm KEY...",
		Short: "Remove artifacts by key",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.artifactCache()
			if err != nil {
				return err
			}
			defer store.Close()

			for _, key := range args {
				if err := store.Delete(key); err != nil {
					return fmt.Errorf("remove %s: %w", key, err)
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.artifactCache()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Clear(); err != nil {
				return err
			}
			a.log.With("dir", store.Dir()).Info("artifact cache cleared")
			return nil
		},
	})

	return cmd
}
