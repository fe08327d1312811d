// Command tripdex builds the destination index and serves ranked travel recommendations.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/tripdex/internal/version"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var env string
	root := &cobra.Command{
		Use:           "tripdex",
		Short:         "Multi-facet travel destination search",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version.Version, version.Commit, version.Date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&env, "env", "", "config environment (defaults to $ENV or \"local\")")

	root.AddCommand(
		newServeCmd(&env),
		newBuildCmd(&env),
		newSearchCmd(&env),
		newWeightsCmd(&env),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tripdex %s\ncommit: %s\nbuilt:  %s\n",
				version.Version, version.Commit, version.Date)
		},
	}
}
