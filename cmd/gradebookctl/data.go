package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mind-engage/mindengage-gradebook/internal/gradebook"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import SNAPSHOT",
		Short: "Load a JSON snapshot into the gradebook database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := readSnapshot(args[0])
			if err != nil {
				return err
			}
			svc, done, err := a.dbService(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			sum, err := svc.Import(cmd.Context(), snap, gradebook.ImportOptions{LegacyScores: a.v.GetBool("legacy-scores")})
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), sum)
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the gradebook database as a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, done, err := a.dbService(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			snap, err := svc.Export(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), snap)
		},
	}
}

func newEventsCmd(a *app) *cobra.Command {
	var since int64
	var limit int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the gradebook change log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, events, done, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			evs, err := events.Since(cmd.Context(), since, limit)
			if err != nil {
				return fmt.Errorf("read events: %w", err)
			}
			return a.render(cmd.OutOrStdout(), evs)
		},
	}
	cmd.Flags().Int64Var(&since, "since", 0, "Only events after this sequence number")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of events")
	return cmd
}
