package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vidgen/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show submissions recorded in the local journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(j *journal.Journal) error {
				entries, err := j.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					if entries == nil {
						entries = []journal.Entry{}
					}
					return writeJSON(cmd, entries)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No submissions recorded")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Task", "Kind", "Template", "Scenes", "Status", "Submitted", "Result"},
					historyRows(entries),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show (0 for all)")
	historyCmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit entries as JSON")

	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))

	return historyCmd
}

func historyRows(entries []journal.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		result := e.Output
		if e.Error != "" {
			result = truncate(e.Error, 60)
		}
		if e.Local {
			result = "(not sent) " + result
		}
		rows = append(rows, []string{
			e.TaskID,
			string(e.Kind),
			e.Template,
			fmt.Sprintf("%d", e.Scenes),
			e.Status.String(),
			formatTimestamp(e.SubmittedAt),
			result,
		})
	}
	return rows
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete journal entries older than a given age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			return ctx.withJournal(func(j *journal.Journal) error {
				removed, err := j.Prune(cmd.Context(), time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d journal entries older than %s\n", removed, olderThan)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Minimum age of entries to delete")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every journal entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(j *journal.Journal) error {
				removed, err := j.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d journal entries\n", removed)
				return nil
			})
		},
	}
}
