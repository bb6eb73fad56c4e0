package main

import (
	"context"
	"fmt"
	"os"

	"housesplit/internal/backend"
	"housesplit/internal/cli"
	"housesplit/internal/config"
	"housesplit/internal/core"
	applog "housesplit/internal/log"
	"housesplit/internal/metrics"
	"housesplit/internal/services"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "splitctl",
		Short: "Split holiday house costs by person-nights",
		Long: `splitctl computes who owes whom for a shared holiday house.
Families, stays and expenses are plain text files in the same line
formats as the web form. Saved data lives in the configured backend
(DATA_BACKEND=memory|sqlite|sheets).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCalcCmd(), newLoadCmd(), newSaveCmd())
	return root
}

// blockFiles are the --families/--stays/--expenses flags shared by commands.
type blockFiles struct {
	families string
	stays    string
	expenses string
}

func (f *blockFiles) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.families, "families", "f", "", "File with Family:Member1,Member2 lines")
	cmd.Flags().StringVarP(&f.stays, "stays", "s", "", "File with Member,Nights lines")
	cmd.Flags().StringVarP(&f.expenses, "expenses", "e", "", "File with Family,Type,Amount,Description lines")
}

func (f *blockFiles) empty() bool {
	return f.families == "" && f.stays == "" && f.expenses == ""
}

// read loads the three files. Every one of them is required.
func (f *blockFiles) read() (core.Blocks, error) {
	var b core.Blocks
	for _, item := range []struct {
		flag string
		path string
		dst  *string
	}{
		{"families", f.families, &b.Families},
		{"stays", f.stays, &b.Stays},
		{"expenses", f.expenses, &b.Expenses},
	} {
		if item.path == "" {
			return core.Blocks{}, fmt.Errorf("--%s is required", item.flag)
		}
		data, err := os.ReadFile(item.path)
		if err != nil {
			return core.Blocks{}, fmt.Errorf("read %s: %w", item.flag, err)
		}
		*item.dst = string(data)
	}
	return b, nil
}

// openService builds a SplitService over the configured backend. The
// returned close func releases the backend.
func openService(ctx context.Context) (*services.SplitService, func(), error) {
	config.LoadEnvFile()
	cfg := config.Load()
	if cfg.LogLevel == "" || cfg.LogLevel == "info" {
		cfg.LogLevel = "warn"
	}
	logger := cli.SetupLogger(applog.ComponentCLI, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s backend: %w", bcfg.Type, err)
	}

	svc := services.NewSplitService(res.Store, services.Options{
		Backend:   res.Type.String(),
		Publisher: res.SyncPublisher(),
		Metrics:   metrics.New(nil),
	})
	closeFn := func() {
		if err := res.Close(); err != nil {
			logger.Warn("Backend cleanup failed", applog.FieldError, err)
		}
	}
	return svc, closeFn, nil
}
