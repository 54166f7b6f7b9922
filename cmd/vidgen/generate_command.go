package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"vidgen/internal/codec"
	"vidgen/internal/journal"
	"vidgen/internal/logging"
	"vidgen/internal/project"
	"vidgen/internal/services"
	"vidgen/internal/session"
	"vidgen/internal/tasks"
)

type generateOptions struct {
	wait       bool
	jsonOutput bool
	outputPath string
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate FILE",
		Short: "Render a project on the render service",
		Long: "Video projects are queued as render tasks; use --wait to follow the task\n" +
			"until it finishes. Image projects render synchronously and are saved to\n" +
			"--output (default: the project path with an image extension).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readProject(args[0], "")
			if err != nil {
				return err
			}
			if err := project.Validate(p); err != nil {
				return err
			}
			if p.Kind == project.KindImage {
				return generateImage(cmd, ctx, p, args[0], opts)
			}
			return generateVideo(cmd, ctx, p, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.wait, "wait", false, "Follow a video task until it completes or fails")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Emit the resulting task or journal entry as JSON")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Save the rendered file here (videos require --wait)")
	return cmd
}

func generateVideo(cmd *cobra.Command, ctx *commandContext, p project.Project, opts generateOptions) error {
	if opts.outputPath != "" && !opts.wait {
		return fmt.Errorf("--output for video projects requires --wait")
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.loggerValue()
	if err != nil {
		return err
	}
	lock, err := session.Acquire(cfg, logger)
	if err != nil {
		return err
	}
	defer lock.Release()

	client, err := ctx.gatewayClient()
	if err != nil {
		return err
	}

	return ctx.withJournal(func(j *journal.Journal) error {
		out := cmd.OutOrStdout()
		colorize := shouldColorize(out)

		var outMu sync.Mutex
		observer := func(t tasks.Task) {
			if !opts.wait || opts.jsonOutput {
				return
			}
			outMu.Lock()
			defer outMu.Unlock()
			fmt.Fprintln(out, renderTaskLine(t, colorize))
		}

		orch := tasks.NewFromConfig(cfg, client, logger, tasks.WithRecorder(j), tasks.WithObserver(observer))
		defer orch.Close()

		task, err := orch.Submit(cmd.Context(), p)
		if err != nil {
			return err
		}
		if !opts.wait {
			if opts.jsonOutput {
				return writeJSON(cmd, task)
			}
			fmt.Fprintf(out, "Submitted task %s (%s)\n", task.ID, task.Status)
			fmt.Fprintf(out, "Follow it with `vidgen tasks watch %s`\n", task.ID)
			return nil
		}

		final, err := orch.Wait(cmd.Context(), task.ID)
		if err != nil {
			return err
		}
		if final.Status == tasks.StatusFailed {
			if opts.jsonOutput {
				if err := writeJSON(cmd, final); err != nil {
					return err
				}
			}
			return fmt.Errorf("task %s failed: %w", final.ID, final.Err())
		}

		if opts.outputPath != "" {
			data, err := client.Download(cmd.Context(), final.DownloadURL)
			if err != nil {
				return err
			}
			if _, err := writeOutput(cmd, opts.outputPath, data); err != nil {
				return err
			}
			logger.Info("render downloaded",
				logging.String(logging.FieldTaskID, final.ID),
				logging.String("path", opts.outputPath),
				logging.Int("bytes", len(data)),
			)
		}

		if opts.jsonOutput {
			return writeJSON(cmd, final)
		}
		outMu.Lock()
		defer outMu.Unlock()
		if opts.outputPath != "" {
			fmt.Fprintf(out, "Saved video to %s\n", opts.outputPath)
		} else if final.DownloadURL != "" {
			fmt.Fprintf(out, "Download: %s\n", final.DownloadURL)
		}
		return nil
	})
}

func generateImage(cmd *cobra.Command, ctx *commandContext, p project.Project, source string, opts generateOptions) error {
	if !project.CanGenerate(p) {
		return services.Wrap(services.ErrValidation, "generate", "image",
			"project has no text or background to render", nil)
	}
	env, err := codec.NewEnvelope(p)
	if err != nil {
		return err
	}
	client, err := ctx.gatewayClient()
	if err != nil {
		return err
	}
	logger, err := ctx.loggerValue()
	if err != nil {
		return err
	}

	data, contentType, err := client.GenerateImage(cmd.Context(), env)
	if err != nil {
		return err
	}
	target := strings.TrimSpace(opts.outputPath)
	if target == "" {
		target = strings.TrimSuffix(source, filepath.Ext(source)) + imageExtension(contentType)
	}
	if _, err := writeOutput(cmd, target, data); err != nil {
		return err
	}

	return ctx.withJournal(func(j *journal.Journal) error {
		entry, err := j.RecordImage(cmd.Context(), p, target)
		if err != nil {
			logging.WarnWithContext(logger, "journal write failed", "journal_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "image render missing from history"),
			)
		}
		if opts.jsonOutput {
			return writeJSON(cmd, entry)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved image to %s (%s, %d bytes)\n", target, contentType, len(data))
		return nil
	})
}

func imageExtension(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
