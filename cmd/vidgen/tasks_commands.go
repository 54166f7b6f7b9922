package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"vidgen/internal/journal"
	"vidgen/internal/tasks"
)

func newTasksCommand(ctx *commandContext) *cobra.Command {
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect and manage render tasks",
	}

	tasksCmd.AddCommand(newTasksListCommand(ctx))
	tasksCmd.AddCommand(newTasksShowCommand(ctx))
	tasksCmd.AddCommand(newTasksDeleteCommand(ctx))
	tasksCmd.AddCommand(newTasksWatchCommand(ctx))

	return tasksCmd
}

func (c *commandContext) newOrchestrator(opts ...tasks.Option) (*tasks.Orchestrator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.loggerValue()
	if err != nil {
		return nil, err
	}
	client, err := c.gatewayClient()
	if err != nil {
		return nil, err
	}
	return tasks.NewFromConfig(cfg, client, logger, opts...), nil
}

func newTasksListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks known to the render service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := ctx.newOrchestrator()
			if err != nil {
				return err
			}
			defer orch.Close()

			list, err := orch.List(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, list)
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No render tasks")
				return nil
			}
			fmt.Fprintln(out, renderTable(taskHeaders, taskRows(list, time.Now()), taskAligns))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit tasks as JSON")
	return cmd
}

func newTasksShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show the current state of one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.gatewayClient()
			if err != nil {
				return err
			}
			job, err := client.GetJob(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			task := tasks.FromJob(job)
			if jsonOutput {
				return writeJSON(cmd, task)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderTaskLine(task, colorize))
			fmt.Fprintf(out, "%sSubmitted: %s\n", statusIndent, formatTimestamp(task.SubmittedAt))
			if task.CompletedAt != nil {
				fmt.Fprintf(out, "%sFinished:  %s\n", statusIndent, formatTimestamp(*task.CompletedAt))
			}
			if task.DownloadURL != "" {
				fmt.Fprintf(out, "%sDownload:  %s\n", statusIndent, task.DownloadURL)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the task as JSON")
	return cmd
}

func newTasksDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete tasks on the render service",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := ctx.newOrchestrator()
			if err != nil {
				return err
			}
			defer orch.Close()

			out := cmd.OutOrStdout()
			for _, id := range args {
				id = strings.TrimSpace(id)
				if err := orch.Delete(cmd.Context(), id); err != nil {
					return fmt.Errorf("delete %s: %w", id, err)
				}
				fmt.Fprintf(out, "Deleted task %s\n", id)
			}
			return nil
		},
	}
}

func newTasksWatchCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "watch ID...",
		Short: "Follow tasks until each completes or fails",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			var outMu sync.Mutex
			observer := func(t tasks.Task) {
				if jsonOutput {
					return
				}
				outMu.Lock()
				defer outMu.Unlock()
				fmt.Fprintln(out, renderTaskLine(t, colorize))
			}

			return ctx.withJournal(func(j *journal.Journal) error {
				orch, err := ctx.newOrchestrator(tasks.WithRecorder(j), tasks.WithObserver(observer))
				if err != nil {
					return err
				}
				defer orch.Close()

				finals := make([]tasks.Task, len(args))
				g, gctx := errgroup.WithContext(cmd.Context())
				for i, id := range args {
					id = strings.TrimSpace(id)
					g.Go(func() error {
						if _, err := orch.Track(gctx, id); err != nil {
							return fmt.Errorf("track %s: %w", id, err)
						}
						final, err := orch.Wait(gctx, id)
						if err != nil {
							return err
						}
						finals[i] = final
						return nil
					})
				}
				if err := g.Wait(); err != nil {
					return err
				}

				if jsonOutput {
					return writeJSON(cmd, finals)
				}
				failed := 0
				for _, t := range finals {
					if t.Status == tasks.StatusFailed {
						failed++
					}
				}
				outMu.Lock()
				defer outMu.Unlock()
				fmt.Fprintln(out, renderTable(taskHeaders, taskRows(finals, time.Now()), taskAligns))
				if failed > 0 {
					return fmt.Errorf("%d of %d task(s) failed", failed, len(finals))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the final tasks as JSON")
	return cmd
}
