package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/citemap/citemap/pkg/logging"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "citemap",
		Short: "Aggregate literature search results from multiple backends",
		Long: `citemap queries several literature search backends (PubMed, arXiv,
bioRxiv, Semantic Scholar, Web of Science), deduplicates the hits across
backends and merges duplicate records field by field.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logging.SetDefault(logging.NewConsole())
			} else {
				logging.SetDefault(logging.Nop)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable log output")
	cmd.PersistentFlags().Int("workers", 4, "concurrent source fetches")
	cmd.PersistentFlags().Duration("timeout", 0, "overall search deadline (0 disables)")
	cmd.PersistentFlags().StringP("output", "o", "table", "output format: table, json or yaml")

	_ = viper.BindPFlag("workers", cmd.PersistentFlags().Lookup("workers"))
	_ = viper.BindPFlag("timeout", cmd.PersistentFlags().Lookup("timeout"))

	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newSourcesCmd())

	return cmd
}

func clientTimeout() time.Duration {
	return viper.GetDuration("timeout")
}
