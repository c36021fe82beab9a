package main

import (
	"github.com/Sternrassler/biodiv-client/pkg/gbif"
	"github.com/Sternrassler/biodiv-client/pkg/pagination"
	"github.com/Sternrassler/biodiv-client/pkg/query"
	"github.com/spf13/cobra"
)

func cmdTaxa(a *app) *cobra.Command {
	var (
		rank      string
		childRank string
		filters   []string
		size      int
	)

	cmd := &cobra.Command{
		Use:   "taxa NAME",
		Short: "List accepted GBIF taxa below a name as JSON lines",
		Example: `  biodiv taxa Insecta --rank class --child-rank family
  biodiv taxa Apidae --rank family --child-rank species --size 100`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := gbif.NewService(a.client, pagination.Config{MaxConcurrency: a.cfg.Concurrency})
			ctx := cmd.Context()

			match, err := svc.NameBackbone(ctx, args[0], query.Rank(rank))
			if err != nil {
				return err
			}

			f := query.NewNameLookupFilter(match.UsageKey, query.Rank(childRank))
			if err := applyFilters(f, filters); err != nil {
				return err
			}

			stop := pagination.StartProgress(ctx, a.cfg.ProgressInterval, a.logger)
			usages, err := svc.NameLookup(ctx, f, sizeArg(size))
			stop()
			if err != nil {
				return err
			}

			a.logger.Info().
				Int("usage_key", match.UsageKey).
				Int("taxa", len(usages)).
				Msg("Taxa fetched")
			return writeJSONLines(a.out, usages)
		},
	}

	cmd.Flags().StringVar(&rank, "rank", "class", "rank of NAME")
	cmd.Flags().StringVar(&childRank, "child-rank", "family", "rank of the listed taxa")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "species search filter as key=value (repeatable)")
	cmd.Flags().IntVar(&size, "size", -1, "maximum number of taxa (-1 for all)")

	return cmd
}
