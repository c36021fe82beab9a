package main

import (
	"fmt"

	"github.com/Sternrassler/biodiv-client/pkg/checklistbank"
	"github.com/Sternrassler/biodiv-client/pkg/pagination"
	"github.com/Sternrassler/biodiv-client/pkg/query"
	"github.com/spf13/cobra"
)

func cmdKey(a *app) *cobra.Command {
	var rank string

	cmd := &cobra.Command{
		Use:     "key NAME",
		Short:   "Print the ChecklistBank dataset key and taxon ID of a name",
		Example: "  biodiv key Insecta --rank class",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := checklistbank.NewService(a.client, pagination.Config{MaxConcurrency: a.cfg.Concurrency})

			datasetKey, taxonID, err := svc.GetKey(cmd.Context(), query.Rank(rank), args[0])
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(a.out, "%d\t%s\n", datasetKey, taxonID)
			return err
		},
	}

	cmd.Flags().StringVar(&rank, "rank", "class", "taxon rank")

	return cmd
}

func cmdMatch(a *app) *cobra.Command {
	var filters []string

	cmd := &cobra.Command{
		Use:     "match NAME",
		Short:   "Match a scientific name exactly against a ChecklistBank dataset",
		Example: "  biodiv match Insecta --filter rank=class\n  biodiv match Apis --filter key=3 --filter family=Apidae",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := query.NewTaxonMatchFilter(args[0])
			if err := applyFilters(f, filters); err != nil {
				return err
			}

			svc := checklistbank.NewService(a.client, pagination.Config{MaxConcurrency: a.cfg.Concurrency})

			match, err := svc.MatchTaxon(cmd.Context(), f)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(a.out, string(match))
			return err
		},
	}

	cmd.Flags().StringArrayVar(&filters, "filter", nil, "match parameter as key=value (repeatable)")

	return cmd
}
