package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vidgen/internal/fileutil"
	"vidgen/internal/logging"
	"vidgen/internal/preview"
	"vidgen/internal/project"
)

const watchPollInterval = 250 * time.Millisecond

type previewOptions struct {
	scene      int
	text       int
	watch      bool
	outputPath string
}

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	opts := previewOptions{text: -1}

	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Render a low-cost preview of a scene, text element, or image",
		Long: "Without --watch a single preview is requested and reported. With --watch\n" +
			"the file is re-read whenever it changes and every change is debounced\n" +
			"before a new preview is requested; stop with Ctrl-C.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, ctx, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.scene, "scene", 0, "Scene index to preview")
	cmd.Flags().IntVar(&opts.text, "text", -1, "Preview only this text element of the scene")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Re-render whenever the file changes")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Write the decoded preview image here")
	return cmd
}

func runPreview(cmd *cobra.Command, ctx *commandContext, path string, opts previewOptions) error {
	p, err := readProject(path, "")
	if err != nil {
		return err
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.loggerValue()
	if err != nil {
		return err
	}
	client, err := ctx.gatewayClient()
	if err != nil {
		return err
	}

	sched := preview.NewFromConfig(cfg, client, logger)
	defer sched.Close()

	target := previewTarget(p.Kind, opts)
	updates := make(chan preview.State, 64)
	surface := sched.Register(target.String(), target, func(s preview.State) {
		select {
		case updates <- s:
		default:
		}
	})

	surface.Edit(p)
	surface.Refresh()

	if !opts.watch {
		sched.Drain()
		state := surface.State()
		if state.Err != nil {
			return fmt.Errorf("preview %s: %w", target, state.Err)
		}
		return reportPreview(cmd.OutOrStdout(), target, state, opts.outputPath)
	}

	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	fmt.Fprintf(out, "Watching %s (%s); press Ctrl-C to stop\n", path, target)

	changes := make(chan []byte)
	watchErr := make(chan error, 1)
	watchCtx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() {
		watchErr <- watchFile(watchCtx, path, watchPollInterval, changes)
	}()

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case err := <-watchErr:
			return err
		case data := <-changes:
			edited, err := parseProject(path, data, "")
			if err != nil {
				fmt.Fprintln(out, renderStatusLine(target.String(), statusWarn, err.Error(), colorize))
				continue
			}
			surface.Edit(edited)
		case state := <-updates:
			switch {
			case state.Loading:
				continue
			case state.Err != nil:
				fmt.Fprintln(out, renderStatusLine(target.String(), statusError, state.Err.Error(), colorize))
			default:
				fmt.Fprintln(out, renderStatusLine(target.String(), statusOK, describeArtifact(state), colorize))
				if opts.outputPath != "" {
					if err := writePreviewImage(opts.outputPath, state.Artifact); err != nil {
						logging.WarnWithContext(logger, "preview not written", "preview_write_failed",
							logging.Error(err),
							logging.String("path", opts.outputPath),
						)
					}
				}
			}
		}
	}
}

func previewTarget(kind project.Kind, opts previewOptions) preview.Target {
	switch {
	case kind == project.KindImage:
		return preview.WholeImage()
	case opts.text >= 0:
		return preview.TextElement(opts.scene, opts.text)
	default:
		return preview.WholeScene(opts.scene)
	}
}

func reportPreview(out io.Writer, target preview.Target, state preview.State, outputPath string) error {
	if state.Artifact == "" {
		fmt.Fprintf(out, "%s: nothing to preview\n", target)
		return nil
	}
	if outputPath != "" {
		if err := writePreviewImage(outputPath, state.Artifact); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: preview written to %s\n", target, outputPath)
		return nil
	}
	fmt.Fprintf(out, "%s: %s\n", target, describeArtifact(state))
	return nil
}

func describeArtifact(state preview.State) string {
	if state.Artifact == "" {
		return "cleared"
	}
	mediaType, _, _ := strings.Cut(strings.TrimPrefix(state.Artifact, "data:"), ";")
	return fmt.Sprintf("%s preview #%d (%d bytes encoded)", mediaType, state.Seq, len(state.Artifact))
}

// writePreviewImage decodes a base64 data URL and writes the image bytes.
func writePreviewImage(path, artifact string) error {
	_, encoded, ok := strings.Cut(artifact, ";base64,")
	if !ok || !strings.HasPrefix(artifact, "data:") {
		return errors.New("preview is not a base64 data url")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("decode preview: %w", err)
	}
	return fileutil.WriteAtomic(path, data, 0o644)
}

// watchFile sends the file contents on changes every time its size or
// modification time moves. The initial state is not sent.
func watchFile(ctx context.Context, path string, interval time.Duration, changes chan<- []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	lastMod, lastSize := info.ModTime(), info.Size()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		info, err := os.Stat(path)
		if err != nil {
			// Editors often replace files by rename; try again next tick.
			continue
		}
		if info.ModTime().Equal(lastMod) && info.Size() == lastSize {
			continue
		}
		lastMod, lastSize = info.ModTime(), info.Size()
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		select {
		case changes <- data:
		case <-ctx.Done():
			return nil
		}
	}
}
