package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"vidgen/internal/codec"
	"vidgen/internal/fileutil"
	"vidgen/internal/project"
)

func readProject(path string, kind project.Kind) (project.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return project.Project{}, fmt.Errorf("read project: %w", err)
	}
	return parseProject(path, data, kind)
}

func parseProject(path string, data []byte, kind project.Kind) (project.Project, error) {
	p, err := codec.ParseDocument(data, kind)
	if err != nil {
		return project.Project{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) (bool, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return false, err
	}
	if err := fileutil.WriteAtomic(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

func parseKind(value string) (project.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return "", nil
	case string(project.KindVideo):
		return project.KindVideo, nil
	case string(project.KindImage):
		return project.KindImage, nil
	default:
		return "", fmt.Errorf("unknown project kind %q (want video or image)", value)
	}
}
