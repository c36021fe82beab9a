package main

import (
	"github.com/Sternrassler/biodiv-client/pkg/checklistbank"
	"github.com/Sternrassler/biodiv-client/pkg/pagination"
	"github.com/Sternrassler/biodiv-client/pkg/query"
	"github.com/spf13/cobra"
)

func cmdDatasets(a *app) *cobra.Command {
	var (
		filters    []string
		size       int
		sequential bool
	)

	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List ChecklistBank datasets as JSON lines",
		Example: `  biodiv datasets --filter alias=COL
  biodiv datasets --filter type=TAXONOMIC --filter license=CC0 --size 5000 --concurrency 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := query.NewDatasetFilter()
			if err := applyFilters(f, filters); err != nil {
				return err
			}

			svc := checklistbank.NewService(a.client, pagination.Config{MaxConcurrency: a.cfg.Concurrency})

			ctx := cmd.Context()
			stop := pagination.StartProgress(ctx, a.cfg.ProgressInterval, a.logger)
			defer stop()

			var (
				results pagination.ResultSet
				err     error
			)
			if sequential {
				results, err = svc.SearchDatasets(ctx, f, sizeArg(size))
			} else {
				results, err = svc.SearchDatasetsConcurrent(ctx, f, sizeArg(size), a.cfg.Concurrency)
			}
			stop()
			if err != nil {
				return err
			}

			a.logger.Info().Int("datasets", len(results)).Msg("Datasets fetched")
			return writeJSONLines(a.out, results)
		},
	}

	cmd.Flags().StringArrayVar(&filters, "filter", nil, "dataset filter as key=value (repeatable)")
	cmd.Flags().IntVar(&size, "size", -1, "maximum number of datasets (-1 for all)")
	cmd.Flags().BoolVar(&sequential, "sequential", false, "fetch one page at a time")

	return cmd
}
