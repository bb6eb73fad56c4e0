package main

import (
	"encoding/json"
	"fmt"
	"io"

	"housesplit/internal/core"
	"housesplit/internal/ledger"
	"housesplit/internal/report"
	"housesplit/internal/services"
	"housesplit/internal/slots/memory"

	"github.com/spf13/cobra"
)

func newCalcCmd() *cobra.Command {
	var (
		files  blockFiles
		format string
		saved  bool
	)
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate balances and settlements",
		Long: `Calculate person-night balances and the payments that settle them.
Reads the three blocks from files, or with --saved from the configured backend.`,
		Example: `  splitctl calc -f families.txt -s stays.txt -e expenses.txt
  splitctl calc --saved -o csv > expense_report.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var blocks core.Blocks
			svc := services.NewSplitService(memory.New(), services.Options{Backend: "memory"})
			switch {
			case saved:
				stored, closeFn, err := openService(ctx)
				if err != nil {
					return err
				}
				defer closeFn()
				loaded := stored.Load(ctx)
				if loaded.Warning != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", loaded.Warning)
				}
				blocks, svc = loaded.Blocks, stored
			case files.empty():
				return fmt.Errorf("provide --families, --stays and --expenses, or --saved")
			default:
				b, err := files.read()
				if err != nil {
					return err
				}
				blocks = b
			}

			res, err := svc.Calculate(ctx, blocks)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), res, format)
		},
	}
	files.register(cmd)
	cmd.Flags().StringVarP(&format, "output", "o", "text", "Output format: text, csv or json")
	cmd.Flags().BoolVar(&saved, "saved", false, "Use the blocks saved in the configured backend")
	return cmd
}

func writeResult(w io.Writer, res *ledger.Result, format string) error {
	switch format {
	case "text":
		_, err := fmt.Fprintln(w, report.Text(res))
		return err
	case "csv":
		out, err := report.CSV(res)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report.NewSummary(res))
	default:
		return fmt.Errorf("unknown output format %q: must be text, csv or json", format)
	}
}
