package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	citemap "github.com/citemap/citemap"
	"github.com/citemap/citemap/pkg/search"
	"github.com/citemap/citemap/pkg/sources"
)

func newSearchCmd() *cobra.Command {
	var (
		sourceNames []string
		numResults  int
		year        string
		sort        string
		field       string
		noProgress  bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the configured literature backends",
		Example: `  citemap search "synthetic biology"
  citemap search --sources pubmed,arxiv --year 2020-2023 "gene circuits"
  citemap search -o json -n 100 "crispr delivery"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []citemap.Option{
				citemap.WithWorkers(viper.GetInt("workers")),
				citemap.WithTimeout(clientTimeout()),
			}
			if !noProgress && cmd.Flag("output").Value.String() == "table" {
				opts = append(opts, citemap.WithProgress(printProgress))
			}

			client, err := citemap.New(opts...)
			if err != nil {
				return err
			}

			searchOpts := []sources.Option{sources.WithNumResults(numResults)}
			if year != "" {
				searchOpts = append(searchOpts, sources.WithYear(year))
			}
			if sort != "" {
				searchOpts = append(searchOpts, sources.WithSort(sort))
			}
			if field != "" {
				searchOpts = append(searchOpts, sources.WithField(field))
			}

			result, err := client.Search(cmd.Context(), args[0], sourceNames, searchOpts...)
			if err != nil {
				return err
			}

			return renderResult(cmd.OutOrStdout(), result, cmd.Flag("output").Value.String())
		},
	}

	cmd.Flags().StringSliceVarP(&sourceNames, "sources", "s", nil, "sources to search (default all registered)")
	cmd.Flags().IntVarP(&numResults, "num-results", "n", sources.DefaultResults, "max results per source")
	cmd.Flags().StringVarP(&year, "year", "y", "", "publication year filter (YYYY, YYYY-, -YYYY, YYYY-YYYY)")
	cmd.Flags().StringVar(&sort, "sort", "", "backend-specific sort order")
	cmd.Flags().StringVar(&field, "field", "", "backend-specific search field")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "suppress progress output")

	return cmd
}

// printProgress writes a one line progress summary to stderr as sources
// advance.
func printProgress(p search.Progress) {
	var states []string
	for source, state := range p.PerSourceState {
		states = append(states, fmt.Sprintf("%s=%s", source, state))
	}
	fmt.Fprintf(os.Stderr, "\r%d/%d sources done, %d results [%s]",
		p.CompletedSources+p.FailedSources, p.TotalSources, p.ResultsCount,
		strings.Join(states, " "))
	if p.Done() {
		fmt.Fprintln(os.Stderr)
	}
}
