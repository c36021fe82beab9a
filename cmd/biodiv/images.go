package main

import (
	"strconv"

	"github.com/Sternrassler/biodiv-client/pkg/gbif"
	"github.com/Sternrassler/biodiv-client/pkg/pagination"
	"github.com/spf13/cobra"
)

func cmdImages(a *app) *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:     "images TAXON_KEY",
		Short:   "List GBIF occurrence image URLs for a taxon key",
		Example: "  biodiv images 1334757 --n 5",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taxonKey, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}

			svc := gbif.NewService(a.client, pagination.Config{MaxConcurrency: a.cfg.Concurrency})

			images, err := svc.RequestImages(cmd.Context(), taxonKey, n)
			if err != nil {
				return err
			}
			return writeJSONLines(a.out, images)
		},
	}

	cmd.Flags().IntVar(&n, "n", 10, "number of images")

	return cmd
}
