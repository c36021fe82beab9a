package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Sternrassler/biodiv-client/pkg/gbif"
	"github.com/Sternrassler/biodiv-client/pkg/pagination"
	"github.com/Sternrassler/biodiv-client/pkg/query"
	"github.com/Sternrassler/biodiv-client/pkg/quiz"
	"github.com/spf13/cobra"
)

func cmdQuiz(a *app) *cobra.Command {
	var (
		rank        string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:     "quiz NAME",
		Short:   "Build a family identification question for the families below NAME",
		Example: "  biodiv quiz Insecta --rank class --interactive",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := gbif.NewService(a.client, pagination.Config{MaxConcurrency: a.cfg.Concurrency})
			builder := &quiz.Builder{Taxa: svc, Images: svc}

			q, err := builder.Next(cmd.Context(), args[0], query.Rank(rank))
			if err != nil {
				return err
			}

			if !interactive {
				return json.NewEncoder(a.out).Encode(q)
			}
			return ask(a, q)
		},
	}

	cmd.Flags().StringVar(&rank, "rank", "class", "rank of NAME")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "prompt for an answer on stdin")

	return cmd
}

// ask prompts until a valid choice number is entered and reports the result.
func ask(a *app, q *quiz.Question) error {
	fmt.Fprintf(a.out, "Image: %s\nWhich family is this?\n", q.ImageURL)
	for i, c := range q.Choices {
		fmt.Fprintf(a.out, "  %d) %s\n", i+1, c)
	}

	scanner := bufio.NewScanner(a.in)
	for {
		fmt.Fprint(a.out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return fmt.Errorf("no answer given")
		}

		n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil || n < 1 || n > len(q.Choices) {
			fmt.Fprintf(a.out, "Enter a number from 1 to %d.\n", len(q.Choices))
			continue
		}

		if q.Check(q.Choices[n-1]) {
			fmt.Fprintf(a.out, "Correct! %s (%s)\n", q.Correct, q.SpeciesName)
		} else {
			fmt.Fprintf(a.out, "Wrong, it was %s (%s)\n", q.Correct, q.SpeciesName)
		}
		return nil
	}
}
