package preflight

import (
	"context"

	"vidgen/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes every check for the given config. The journal check only
// runs when the state directory is usable.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	state := CheckDirectoryAccess("State directory", cfg.Paths.StateDir)
	results = append(results, state)
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))

	if state.Passed {
		results = append(results, CheckJournal(cfg))
		results = append(results, CheckSessionLock(cfg))
	}

	results = append(results, CheckRenderService(ctx, cfg))
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
