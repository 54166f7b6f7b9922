package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vidgen/internal/codec"
	"vidgen/internal/project"
)

func newProjectCommand() *cobra.Command {
	projectCmd := &cobra.Command{
		Use:         "project",
		Short:       "Create, convert, and check project files",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}

	projectCmd.AddCommand(newProjectNewCommand())
	projectCmd.AddCommand(newProjectExportCommand())
	projectCmd.AddCommand(newProjectImportCommand())
	projectCmd.AddCommand(newProjectCheckCommand())

	return projectCmd
}

func newProjectNewCommand() *cobra.Command {
	var kindFlag, templateFlag, outputPath string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Write a default project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(kindFlag)
			if err != nil {
				return err
			}
			p := project.NewVideo()
			if kind == project.KindImage {
				p = project.NewImage()
			}
			if name := strings.TrimSpace(templateFlag); name != "" {
				if _, ok := project.LookupTemplate(name); !ok {
					return fmt.Errorf("unknown template %q (see `vidgen catalog templates`)", name)
				}
				p.Template = name
			}

			data, err := codec.Marshal(p)
			if err != nil {
				return err
			}
			wrote, err := writeOutput(cmd, outputPath, data)
			if err != nil {
				return err
			}
			if wrote {
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s project at %s\n", p.Kind, outputPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", string(project.KindVideo), "Project kind: video or image")
	cmd.Flags().StringVar(&templateFlag, "template", "", "Output template name")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination file (default stdout)")
	return cmd
}

func newProjectExportCommand() *cobra.Command {
	var formatFlag, outputPath string

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Export a project as a normalized JSON or YAML download",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readProject(args[0], "")
			if err != nil {
				return err
			}
			format := codec.FormatJSON
			switch {
			case strings.TrimSpace(formatFlag) != "":
				format, err = codec.ParseFormat(formatFlag)
				if err != nil {
					return err
				}
			case strings.TrimSpace(outputPath) != "" && outputPath != "-":
				format = codec.FormatFromPath(outputPath)
			}

			data, err := codec.Export(p, format)
			if err != nil {
				return err
			}
			wrote, err := writeOutput(cmd, outputPath, data)
			if err != nil {
				return err
			}
			if wrote {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %s project to %s (%s)\n", p.Kind, outputPath, format)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Export format: json or yaml (default from --output extension, else json)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination file (default stdout)")
	return cmd
}

func newProjectImportCommand() *cobra.Command {
	var kindFlag, outputPath string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a JSON or YAML document as a canonical project file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(kindFlag)
			if err != nil {
				return err
			}
			p, err := readProject(args[0], kind)
			if err != nil {
				return err
			}
			data, err := codec.Marshal(p)
			if err != nil {
				return err
			}
			wrote, err := writeOutput(cmd, outputPath, data)
			if err != nil {
				return err
			}
			if wrote {
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s project with %d scene(s) to %s\n", p.Kind, len(p.Scenes), outputPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", "", "Force the project kind instead of detecting it")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination file (default stdout)")
	return cmd
}

type sceneSummary struct {
	Index     int      `json:"index"`
	Duration  *float64 `json:"duration,omitempty"`
	Narrated  bool     `json:"narrated"`
	Texts     int      `json:"text_elements"`
	FirstAuto int      `json:"first_auto_index"`
}

type checkReport struct {
	Kind        project.Kind   `json:"kind"`
	Template    string         `json:"template"`
	Valid       bool           `json:"valid"`
	Problems    []string       `json:"problems,omitempty"`
	CanGenerate bool           `json:"can_generate"`
	Scenes      []sceneSummary `json:"scenes"`
}

func newProjectCheckCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Validate a project and summarize what would be rendered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readProject(args[0], "")
			if err != nil {
				return err
			}
			report := buildCheckReport(p)
			if jsonOutput {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				printCheckReport(cmd, report)
			}
			if !report.Valid {
				return fmt.Errorf("%s: %d problem(s) found", args[0], len(report.Problems))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the report as JSON")
	return cmd
}

func buildCheckReport(p project.Project) checkReport {
	report := checkReport{
		Kind:        p.Kind,
		Template:    p.Template,
		Valid:       true,
		CanGenerate: project.CanGenerate(p),
	}
	for _, problem := range project.Problems(p) {
		report.Valid = false
		report.Problems = append(report.Problems, problem.Error())
	}
	for i, scene := range p.Scenes {
		report.Scenes = append(report.Scenes, sceneSummary{
			Index:     i,
			Duration:  scene.Duration,
			Narrated:  scene.Narration != nil,
			Texts:     len(scene.TextElements),
			FirstAuto: project.FirstAutoIndex(scene.TextElements),
		})
	}
	return report
}

func printCheckReport(cmd *cobra.Command, report checkReport) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader(fmt.Sprintf("%s project (%s)", report.Kind, report.Template), colorize) {
		fmt.Fprintln(out, line)
	}
	if report.Valid {
		fmt.Fprintln(out, renderStatusLine("Structure", statusOK, "valid", colorize))
	} else {
		for _, problem := range report.Problems {
			fmt.Fprintln(out, renderStatusLine("Structure", statusError, problem, colorize))
		}
	}
	if report.CanGenerate {
		fmt.Fprintln(out, renderStatusLine("Renderable", statusOK, "yes", colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("Renderable", statusWarn, "no text or background to render", colorize))
	}

	rows := make([][]string, 0, len(report.Scenes))
	for _, s := range report.Scenes {
		duration := "narration"
		if !s.Narrated {
			duration = "-"
			if s.Duration != nil {
				duration = fmt.Sprintf("%.1fs", *s.Duration)
			}
		}
		firstAuto := "-"
		if s.FirstAuto >= 0 {
			firstAuto = fmt.Sprintf("%d", s.FirstAuto)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.Index),
			duration,
			yesNo(s.Narrated),
			fmt.Sprintf("%d", s.Texts),
			firstAuto,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Scene", "Duration", "Narrated", "Texts", "First Auto"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignRight, alignRight},
	))
}
