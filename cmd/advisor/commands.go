package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stock-advisor/internal/display"
	"stock-advisor/internal/logger"
)

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "advisor",
		Short: "Stock advisor - buy/hold/sell signals and a position ledger",
		Long: `advisor evaluates a watch-list of stocks with technical indicators, reconciles them
with a technical-summary page and a language model, and tracks the resulting positions
until they reach the revenue target.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Configuration file path")

	rootCmd.AddCommand(newRunCmd(&configPath))
	rootCmd.AddCommand(newEvaluateCmd(&configPath))
	rootCmd.AddCommand(newLedgerCmd(&configPath))
	return rootCmd
}

func newRunCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Analyse the watch-list once, update the ledger and publish the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(ctx, *configPath)
			if err != nil {
				return err
			}
			compressOldLogs(ctx, cfg)

			a, err := initializeApp(ctx, cfg)
			if err != nil {
				logger.ErrorWithErr(ctx, "Failed to initialize advisor", err)
				return err
			}
			defer a.Close()

			report, err := a.advisor.Run(ctx)
			if report != nil {
				fmt.Fprintln(cmd.OutOrStdout(), display.Run(report))
			}
			return err
		},
	}
}

func newEvaluateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:     "evaluate SYMBOL",
		Short:   "Print the technical evaluation of one symbol",
		Example: `  advisor evaluate AAPL`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(ctx, *configPath)
			if err != nil {
				return err
			}
			a, err := initializeApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ev, err := a.advisor.Evaluate(ctx, strings.ToUpper(strings.TrimSpace(args[0])))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), display.Evaluation(ev))
			return nil
		},
	}
}

func newLedgerCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ledger",
		Short: "Show the stored positions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(ctx, *configPath)
			if err != nil {
				return err
			}
			repo, err := openLedger(cfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			l, err := repo.Load(ctx)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), display.Ledger(l.Rows()))
			return nil
		},
	}
}
