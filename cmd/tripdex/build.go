package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newBuildCmd(env *string) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Rebuild the destination index from the source directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd.Context(), *env, cmd.OutOrStdout())
		},
	}
}

func runBuild(ctx context.Context, env string, out io.Writer) error {
	a, err := newApp(ctx, env)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.planner.Rebuild(ctx)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	_, err = fmt.Fprint(out, renderBuildReport(report))
	return err
}
