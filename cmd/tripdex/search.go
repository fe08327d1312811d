package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/tripdex/internal/domain/facet"
	"github.com/kailas-cloud/tripdex/internal/domain/search/filter"
	"github.com/kailas-cloud/tripdex/internal/domain/search/request"
)

type searchFlags struct {
	topK    int
	weights map[string]string
	country string
	budget  string
	season  string
}

func newSearchCmd(env *string) *cobra.Command {
	var f searchFlags
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank destinations for a free-text query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), *env, strings.Join(args, " "), f, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&f.topK, "top-k", "k", 0, "number of results (defaults to search.default_top_k)")
	cmd.Flags().StringToStringVarP(&f.weights, "weight", "w", nil, "facet weight, repeatable: --weight activities=0.6 --weight scenery=0.4")
	cmd.Flags().StringVar(&f.country, "country", "", "only destinations in this country")
	cmd.Flags().StringVar(&f.budget, "budget", "", "Budget-Friendly, Mid-Range or Luxury")
	cmd.Flags().StringVar(&f.season, "season", "", "only destinations best visited in this season")
	return cmd
}

func runSearch(ctx context.Context, env, query string, f searchFlags, out io.Writer) error {
	a, err := newApp(ctx, env)
	if err != nil {
		return err
	}
	defer a.Close()

	topK := f.topK
	if topK == 0 {
		topK = a.cfg.Search.DefaultTopK
	}
	weights, err := parseWeightFlags(f.weights)
	if err != nil {
		return err
	}
	filters, err := filter.New(f.country, f.budget, f.season)
	if err != nil {
		return err
	}
	req, err := request.New(query, topK, weights, filters)
	if err != nil {
		return err
	}

	results, err := a.planner.Search(ctx, &req)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if weights == nil {
		weights = a.planner.Weights()
	}
	_, err = fmt.Fprint(out, renderResults(query, weights, results))
	return err
}

// parseWeightFlags returns nil for no flags so the planner's defaults apply.
func parseWeightFlags(raw map[string]string) (facet.Weights, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	parsed := make(map[string]float64, len(raw))
	for name, v := range raw {
		x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("weight %s: %w", name, err)
		}
		parsed[name] = x
	}
	return facet.ParseWeights(parsed)
}

func newWeightsCmd(env *string) *cobra.Command {
	return &cobra.Command{
		Use:   "weights",
		Short: "Print the configured default facet weights",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), *env)
			if err != nil {
				return err
			}
			defer a.Close()
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderWeights(a.planner.Weights()))
			return err
		},
	}
}
