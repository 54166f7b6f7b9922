package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"vidgen/internal/gateway"
	"vidgen/internal/project"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "List fonts, effects, and templates available for projects",
	}

	catalogCmd.AddCommand(newCatalogFontsCommand(ctx))
	catalogCmd.AddCommand(newCatalogEffectsCommand(ctx, "animations", "List text animations", (*gateway.Client).ListAnimations))
	catalogCmd.AddCommand(newCatalogEffectsCommand(ctx, "transitions", "List scene transitions", (*gateway.Client).ListTransitions))
	catalogCmd.AddCommand(newCatalogTemplatesCommand())

	return catalogCmd
}

func newCatalogFontsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "fonts",
		Short: "List fonts installed on the render service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.gatewayClient()
			if err != nil {
				return err
			}
			fonts, err := client.ListFonts(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, fonts)
			}
			rows := make([][]string, 0, len(fonts))
			for _, f := range fonts {
				rows = append(rows, []string{f.Name, f.Type, f.Path})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Name", "Type", "Path"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit fonts as JSON")
	return cmd
}

type effectLister func(*gateway.Client, context.Context) ([]gateway.Effect, error)

func newCatalogEffectsCommand(ctx *commandContext, use, short string, list effectLister) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.gatewayClient()
			if err != nil {
				return err
			}
			effects, err := list(client, cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, effects)
			}
			rows := make([][]string, 0, len(effects))
			for _, e := range effects {
				rows = append(rows, []string{e.Name, e.Description})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Name", "Description"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the list as JSON")
	return cmd
}

func newCatalogTemplatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "templates",
		Short:       "List output templates",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			list := project.Templates()
			rows := make([][]string, 0, len(list))
			for _, t := range list {
				rows = append(rows, []string{
					t.Name,
					t.Label(),
					fmt.Sprintf("%dx%d", t.Width, t.Height),
					t.AspectRatio,
					fmt.Sprintf("%d", t.FPS),
					t.Description,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Name", "Label", "Size", "Aspect", "FPS", "Description"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}
