package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newLoadCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Print the saved blocks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			loaded := svc.Load(cmd.Context())
			if loaded.Warning != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", loaded.Warning)
			} else if !loaded.FromStore {
				fmt.Fprintln(cmd.ErrOrStderr(), "Nothing saved yet, showing sample data")
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(loaded.Blocks)
			case "text":
				fmt.Fprintf(out, "# Families\n%s\n\n# Stays\n%s\n\n# Expenses\n%s\n",
					loaded.Blocks.Families, loaded.Blocks.Stays, loaded.Blocks.Expenses)
				return nil
			default:
				return fmt.Errorf("unknown output format %q: must be text or json", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "text", "Output format: text or json")
	return cmd
}

func newSaveCmd() *cobra.Command {
	var files blockFiles
	cmd := &cobra.Command{
		Use:     "save",
		Short:   "Save blocks to the configured backend",
		Example: "  DATA_BACKEND=sqlite splitctl save -f families.txt -s stays.txt -e expenses.txt",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			blocks, err := files.read()
			if err != nil {
				return err
			}

			svc, closeFn, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			ref, err := svc.Save(cmd.Context(), blocks)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Saved", ref)
			return nil
		},
	}
	files.register(cmd)
	return cmd
}
