package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidgen/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check local state and render service connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			if jsonOutput {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("vidgen doctor", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, r := range results {
					kind := statusOK
					if !r.Passed {
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
				}
			}

			if !preflight.Failed(results) {
				return nil
			}
			failed := 0
			for _, r := range results {
				if !r.Passed {
					failed++
				}
			}
			return fmt.Errorf("%d check(s) failed", failed)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit check results as JSON")
	return cmd
}
